package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"dhs-academy/backend/internal/dto"
	"dhs-academy/backend/internal/service"
	"dhs-academy/backend/pkg/response"
)

// UserHandler 工作人员管理 HTTP 处理器
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// CreateUser 创建工作人员，返回一次性临时密码
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	callerRole, ok := MustGetRole(c)
	if !ok {
		return
	}

	result, err := h.userSvc.Create(c.Request.Context(), &req, callerID, callerRole)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.Created(c, result)
}

// ListUsers 工作人员列表
// GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	var req dto.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.InvalidParams(c)
		return
	}

	users, total, err := h.userSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, users, total, req.GetPage(), req.GetPageSize())
}

// GetUser 工作人员详情
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// UpdateUser 更新工作人员资料或启停状态
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.userSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// AssignRole 分配角色
// PUT /api/v1/users/:id/role
func (h *UserHandler) AssignRole(c *gin.Context) {
	var req dto.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	callerRole, ok := MustGetRole(c)
	if !ok {
		return
	}

	if err := h.userSvc.AssignRole(c.Request.Context(), c.Param("id"), &req, callerID, callerRole); err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, nil)
}

// ResetPassword 重置密码，返回新的临时密码
// POST /api/v1/users/:id/reset-password
func (h *UserHandler) ResetPassword(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.userSvc.ResetPassword(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *UserHandler) handleUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, "Utilisateur introuvable")
	case errors.Is(err, service.ErrIdentifierExists):
		response.Conflict(c, 12002, "Cet identifiant est déjà utilisé")
	case errors.Is(err, service.ErrUserSelfRoleChange):
		response.BadRequest(c, 12003, "Vous ne pouvez pas modifier votre propre rôle")
	case errors.Is(err, service.ErrUserSelfDeactivate):
		response.BadRequest(c, 12004, "Vous ne pouvez pas désactiver votre propre compte")
	case errors.Is(err, service.ErrNoPermission):
		response.Forbidden(c, 12005, "Action non autorisée")
	default:
		response.InternalError(c)
	}
}
