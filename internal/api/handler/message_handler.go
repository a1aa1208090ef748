package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"dhs-academy/backend/internal/dto"
	"dhs-academy/backend/internal/service"
	"dhs-academy/backend/pkg/response"
)

// MessageHandler 内部消息 HTTP 处理器
type MessageHandler struct {
	messageSvc service.MessageService
}

// NewMessageHandler 创建 MessageHandler
func NewMessageHandler(messageSvc service.MessageService) *MessageHandler {
	return &MessageHandler{messageSvc: messageSvc}
}

// Send 发送消息
// POST /api/v1/messages
func (h *MessageHandler) Send(c *gin.Context) {
	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	msg, err := h.messageSvc.Send(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleMessageError(c, err)
		return
	}
	response.Created(c, msg)
}

// Inbox 收件箱
// GET /api/v1/messages/inbox
func (h *MessageHandler) Inbox(c *gin.Context) {
	var req dto.InboxRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.InvalidParams(c)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, total, err := h.messageSvc.Inbox(c.Request.Context(), &req, callerID)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Outbox 已发送
// GET /api/v1/messages/outbox
func (h *MessageHandler) Outbox(c *gin.Context) {
	var req dto.PaginationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.InvalidParams(c)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, total, err := h.messageSvc.Outbox(c.Request.Context(), &req, callerID)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// UnreadCount 未读数
// GET /api/v1/messages/unread-count
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	n, err := h.messageSvc.UnreadCount(c.Request.Context(), callerID)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, dto.UnreadCountResponse{Unread: n})
}

// Get 消息详情（仅收发双方）
// GET /api/v1/messages/:id
func (h *MessageHandler) Get(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	msg, err := h.messageSvc.Get(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		h.handleMessageError(c, err)
		return
	}
	response.OK(c, msg)
}

// MarkRead 标记已读（仅收件人）
// PUT /api/v1/messages/:id/read
func (h *MessageHandler) MarkRead(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.messageSvc.MarkRead(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleMessageError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *MessageHandler) handleMessageError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMessageNotFound):
		response.NotFound(c, 18001, "Message introuvable")
	case errors.Is(err, service.ErrRecipientNotFound):
		response.BadRequest(c, 18002, "Destinataire introuvable ou désactivé")
	case errors.Is(err, service.ErrMessageForbidden):
		response.Forbidden(c, 18003, "Accès au message refusé")
	default:
		response.InternalError(c)
	}
}
