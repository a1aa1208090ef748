package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"dhs-academy/backend/internal/dto"
	"dhs-academy/backend/internal/service"
	"dhs-academy/backend/pkg/response"
)

// InvitationHandler 私有竞赛邀请 HTTP 处理器
type InvitationHandler struct {
	invitationSvc service.InvitationService
}

// NewInvitationHandler 创建 InvitationHandler
func NewInvitationHandler(invitationSvc service.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitationSvc: invitationSvc}
}

// Issue 批量签发邀请
// POST /api/v1/competitions/:id/invitations
func (h *InvitationHandler) Issue(c *gin.Context) {
	var req dto.IssueInvitationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	issued, err := h.invitationSvc.Issue(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleInvitationError(c, err)
		return
	}
	response.Created(c, gin.H{"list": issued})
}

// List 竞赛邀请列表（不含密码）
// GET /api/v1/competitions/:id/invitations
func (h *InvitationHandler) List(c *gin.Context) {
	list, err := h.invitationSvc.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleInvitationError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// Login 邀请登录，成功即消费邀请
// POST /api/v1/public/invitations/login
func (h *InvitationHandler) Login(c *gin.Context) {
	var req dto.InvitationLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}

	result, err := h.invitationSvc.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleInvitationError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *InvitationHandler) handleInvitationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInvitation):
		response.Unauthorized(c, 20001, "Identifiant ou mot de passe d'invitation incorrect")
	case errors.Is(err, service.ErrInvitationUsed):
		response.Conflict(c, 20002, "Invitation déjà utilisée")
	case errors.Is(err, service.ErrCompetitionNotPrivate):
		response.BadRequest(c, 20003, "Seules les compétitions privées acceptent des invitations")
	case errors.Is(err, service.ErrTooManyInvitations):
		response.BadRequest(c, 20004, "Trop d'invitations dans une seule demande")
	case errors.Is(err, service.ErrCompetitionNotFound):
		response.NotFound(c, 19001, "Compétition introuvable")
	case errors.Is(err, service.ErrCompetitionNotOpen):
		response.Conflict(c, 19003, "La compétition n'est pas ouverte")
	default:
		response.InternalError(c)
	}
}
