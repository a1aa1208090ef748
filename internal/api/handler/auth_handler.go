package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dhs-academy/backend/internal/dto"
	"dhs-academy/backend/internal/service"
	"dhs-academy/backend/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login 工作人员登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req, c.ClientIP())
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// RefreshToken 刷新 Token（旋转 Refresh Token）
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}

	result, err := h.authSvc.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// Logout 登出，当前 Access Token 加入黑名单
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, expiresAt := tokenMeta(c)
	if err := h.authSvc.Logout(c.Request.Context(), jti, expiresAt); err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}

// GetCurrentUser 当前登录用户
// GET /api/v1/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.authSvc.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, user)
}

// ChangePassword 修改本人密码
// PUT /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleAuthError 统一处理认证模块业务错误
func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, 11001, "Identifiant ou mot de passe incorrect")
	case errors.Is(err, service.ErrUserInactive):
		response.Forbidden(c, 11002, "Compte désactivé")
	case errors.Is(err, service.ErrTooManyLoginAttempts):
		response.TooManyRequests(c, 11003, "Trop de tentatives de connexion, réessayez plus tard")
	case errors.Is(err, service.ErrInvalidRefreshToken):
		response.Unauthorized(c, 11004, "Jeton de rafraîchissement invalide")
	case errors.Is(err, service.ErrWrongOldPassword):
		response.BadRequest(c, 11005, "Ancien mot de passe incorrect")
	case errors.Is(err, service.ErrUserNotFound):
		response.Unauthorized(c, 11006, "Utilisateur introuvable")
	default:
		response.InternalError(c)
	}
}
