package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"dhs-academy/backend/internal/api/middleware"
	"dhs-academy/backend/internal/service"
	"dhs-academy/backend/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	return mustGetString(c, middleware.CtxUserID)
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	return mustGetString(c, middleware.CtxRole)
}

func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, response.CodeUnauthenticated, "Authentification requise")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, response.CodeUnauthenticated, "Authentification requise")
		return "", false
	}
	return s, true
}

// participantFromContext 读取 ParticipantAuth 注入的参赛身份，未登录时返回 nil
func participantFromContext(c *gin.Context) *service.Participant {
	compID := c.GetString(middleware.CtxCompetitionID)
	invID := c.GetString(middleware.CtxInvitationID)
	if compID == "" || invID == "" {
		return nil
	}
	return &service.Participant{CompetitionID: compID, InvitationID: invID}
}

// tokenMeta 读取当前 Access Token 的 jti 与过期时间（登出使用）
func tokenMeta(c *gin.Context) (string, time.Time) {
	jti := c.GetString(middleware.CtxTokenJTI)
	exp, _ := c.Get(middleware.CtxTokenExp)
	expiresAt, _ := exp.(time.Time)
	return jti, expiresAt
}
