package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"dhs-academy/backend/config"
	"dhs-academy/backend/internal/dto"
	"dhs-academy/backend/internal/model"
	"dhs-academy/backend/internal/repository"
	"dhs-academy/backend/pkg/jwt"
)

var (
	ErrInvalidCredentials   = errors.New("标识或密码错误")
	ErrUserNotFound         = errors.New("用户不存在")
	ErrUserInactive         = errors.New("账号已停用")
	ErrTooManyLoginAttempts = errors.New("登录失败次数过多，请稍后再试")
	ErrInvalidRefreshToken  = errors.New("Refresh Token 无效")
	ErrWrongOldPassword     = errors.New("原密码错误")
)

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest, ip string) (*dto.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	// Logout 将当前 Access Token 的 jti 加入黑名单直至其过期
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	// GetCurrentUser 每次调用都重新校验账号是否仍处于激活状态
	GetCurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest, ip string) (*dto.TokenResponse, error) {
	// 1. 同一标识在窗口内失败次数过多时直接拒绝
	if limit := s.cfg.Auth.LoginRateLimit; limit > 0 {
		since := time.Now().Add(-s.cfg.Auth.LoginRateWindow)
		failures, err := s.repo.LoginAttempt.CountFailuresSince(ctx, req.Identifier, since)
		if err != nil {
			s.logger.Error("查询登录失败次数失败", zap.Error(err))
			return nil, err
		}
		if failures >= int64(limit) {
			return nil, ErrTooManyLoginAttempts
		}
	}

	// 2. 查询用户
	user, err := s.repo.User.GetByIdentifier(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.recordAttempt(ctx, req.Identifier, ip, false)
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 3. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.recordAttempt(ctx, req.Identifier, ip, false)
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		s.recordAttempt(ctx, req.Identifier, ip, false)
		return nil, ErrUserInactive
	}

	// 4. 记录成功登录并更新最后登录时间
	s.recordAttempt(ctx, req.Identifier, ip, true)
	now := time.Now()
	if err := s.repo.User.TouchLastLogin(ctx, user.UserID, now); err != nil {
		s.logger.Warn("更新最后登录时间失败", zap.String("user_id", user.UserID), zap.Error(err))
	} else {
		user.LastLoginAt = &now
	}

	return s.issueTokens(user)
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil || claims.TokenType != jwt.TokenRefresh {
		return nil, ErrInvalidRefreshToken
	}

	if s.blacklist != nil {
		revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("查询 Token 黑名单失败，按未吊销处理", zap.Error(err))
		} else if revoked {
			return nil, ErrInvalidRefreshToken
		}
	}

	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// 轮换：旧 Refresh Token 作废
	if s.blacklist != nil && claims.ExpiresAt != nil {
		if err := s.blacklist.BlacklistToken(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
			s.logger.Warn("吊销旧 Refresh Token 失败", zap.Error(err))
		}
	}

	return s.issueTokens(user)
}

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.blacklist == nil || jti == "" {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, time.Until(expiresAt)); err != nil {
		s.logger.Error("加入 Token 黑名单失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) GetCurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", userID), zap.Error(err))
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return toUserResponse(user), nil
}

func (s *authService) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrWrongOldPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return err
	}

	user.PasswordHash = string(hash)
	user.MustChangePassword = false
	user.StampUpdated(userID)

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新密码失败", zap.String("id", userID), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *authService) issueTokens(user *model.User) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Role)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.UserID, user.Role)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:         *toUserResponse(user),
	}, nil
}

// recordAttempt 记录登录尝试；写入失败不影响登录结果
func (s *authService) recordAttempt(ctx context.Context, identifier, ip string, success bool) {
	attempt := &model.LoginAttempt{
		Identifier: identifier,
		IP:         ip,
		Success:    success,
		CreatedAt:  time.Now(),
	}
	if err := s.repo.LoginAttempt.Create(ctx, attempt); err != nil {
		s.logger.Warn("记录登录尝试失败", zap.String("identifier", identifier), zap.Error(err))
	}
}

func toUserResponse(u *model.User) *dto.UserResponse {
	resp := &dto.UserResponse{
		ID:                 u.UserID,
		Identifier:         u.Identifier,
		DisplayName:        u.DisplayName,
		Email:              u.Email,
		Role:               u.Role,
		IsActive:           u.IsActive,
		MustChangePassword: u.MustChangePassword,
		CreatedAt:          formatTime(u.CreatedAt),
	}
	if u.LastLoginAt != nil {
		resp.LastLoginAt = formatTime(*u.LastLoginAt)
	}
	return resp
}
