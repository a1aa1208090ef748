package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"dhs-academy/backend/pkg/jwt"
	"dhs-academy/backend/pkg/response"
)

// TokenBlacklist 黑名单查询接口（Redis 实现见 pkg/redis）
type TokenBlacklist interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// 上下文键
const (
	CtxUserID        = "user_id"
	CtxRole          = "role"
	CtxTokenJTI      = "token_jti"
	CtxTokenExp      = "token_exp"
	CtxCompetitionID = "participant_competition_id"
	CtxInvitationID  = "participant_invitation_id"
)

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并验证 Access Token
// blacklist 为 nil 时跳过黑名单检查（Redis 不可用降级）
func JWTAuth(jwtMgr *jwt.Manager, blacklist TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			response.Unauthorized(c, response.CodeUnauthenticated, "Authentification requise")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(raw)
		if err != nil {
			response.Unauthorized(c, response.CodeUnauthenticated, "Jeton invalide ou expiré")
			c.Abort()
			return
		}

		if claims.TokenType != jwt.TokenAccess {
			response.Unauthorized(c, response.CodeUnauthenticated, "Type de jeton invalide")
			c.Abort()
			return
		}

		if blacklist != nil {
			revoked, err := blacklist.IsBlacklisted(c.Request.Context(), claims.ID)
			// Redis 出错时降级放行
			if err == nil && revoked {
				response.Unauthorized(c, response.CodeUnauthenticated, "Jeton révoqué")
				c.Abort()
				return
			}
		}

		// 将用户信息注入上下文
		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRole, claims.Role)
		c.Set(CtxTokenJTI, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(CtxTokenExp, claims.ExpiresAt.Time)
		}

		c.Next()
	}
}

// ParticipantAuth 私有竞赛参赛者认证（可选）
// 无认证头时直接放行；携带认证头时必须是有效的 participant token
func ParticipantAuth(jwtMgr *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}

		raw, ok := bearerToken(c)
		if !ok {
			response.Unauthorized(c, response.CodeUnauthenticated, "En-tête d'authentification invalide")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(raw)
		if err != nil || claims.TokenType != jwt.TokenParticipant {
			response.Unauthorized(c, response.CodeUnauthenticated, "Jeton participant invalide ou expiré")
			c.Abort()
			return
		}

		c.Set(CtxCompetitionID, claims.CompetitionID)
		c.Set(CtxInvitationID, claims.InvitationID)
		c.Next()
	}
}

// RoleAuth 角色权限中间件
// 检查当前用户是否具有指定角色之一
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(CtxRole)
		if !exists {
			response.Unauthorized(c, response.CodeUnauthenticated, "Authentification requise")
			c.Abort()
			return
		}

		userRole, _ := role.(string)
		for _, r := range allowedRoles {
			if userRole == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, response.CodeForbidden, "Accès refusé")
		c.Abort()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
