package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"dhs-academy/backend/config"
)

var (
	ErrTokenExpired = errors.New("token 已过期")
	ErrTokenInvalid = errors.New("token 无效")
)

// Token 类型
const (
	TokenAccess      = "access"
	TokenRefresh     = "refresh"
	TokenParticipant = "participant" // 私有竞赛邀请登录后签发
)

const issuer = "dhs-academy"

// Claims 自定义 JWT 声明
type Claims struct {
	UserID        string `json:"user_id,omitempty"`
	Role          string `json:"role,omitempty"`
	TokenType     string `json:"token_type"`
	CompetitionID string `json:"competition_id,omitempty"` // 仅 participant token
	InvitationID  string `json:"invitation_id,omitempty"`  // 仅 participant token
	jwtv5.RegisteredClaims
}

// Manager JWT 管理器
type Manager struct {
	secret          []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	participantTTL  time.Duration
}

// NewManager 创建 JWT 管理器
func NewManager(cfg *config.AuthConfig) *Manager {
	return &Manager{
		secret:          []byte(cfg.JWTSecret),
		accessTokenTTL:  cfg.AccessTokenTTL,
		refreshTokenTTL: cfg.RefreshTokenTTL,
		participantTTL:  cfg.ParticipantTTL,
	}
}

// AccessTokenTTL 返回 Access Token 有效期
func (m *Manager) AccessTokenTTL() time.Duration { return m.accessTokenTTL }

// ParticipantTTL 返回参赛 Token 有效期
func (m *Manager) ParticipantTTL() time.Duration { return m.participantTTL }

// GenerateAccessToken 生成工作人员 Access Token
func (m *Manager) GenerateAccessToken(userID, role string) (string, error) {
	return m.sign(Claims{UserID: userID, Role: role, TokenType: TokenAccess}, m.accessTokenTTL)
}

// GenerateRefreshToken 生成工作人员 Refresh Token
func (m *Manager) GenerateRefreshToken(userID, role string) (string, error) {
	return m.sign(Claims{UserID: userID, Role: role, TokenType: TokenRefresh}, m.refreshTokenTTL)
}

// GenerateParticipantToken 生成私有竞赛参赛 Token（绑定竞赛与邀请）
func (m *Manager) GenerateParticipantToken(competitionID, invitationID string) (string, error) {
	return m.sign(Claims{
		TokenType:     TokenParticipant,
		CompetitionID: competitionID,
		InvitationID:  invitationID,
	}, m.participantTTL)
}

func (m *Manager) sign(claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwtv5.RegisteredClaims{
		ID:        uuid.New().String(),
		IssuedAt:  jwtv5.NewNumericDate(now),
		ExpiresAt: jwtv5.NewNumericDate(now.Add(ttl)),
		Issuer:    issuer,
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseToken 解析并验证 Token
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwtv5.ParseWithClaims(tokenString, &Claims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	}, jwtv5.WithIssuer(issuer))

	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
