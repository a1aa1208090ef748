package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"dhs-academy/backend/config"
	"dhs-academy/backend/internal/dto"
	"dhs-academy/backend/internal/model"
	"dhs-academy/backend/internal/repository"
	"dhs-academy/backend/pkg/credential"
)

// ── 用户模块业务错误 ──

var (
	ErrIdentifierExists   = errors.New("登录标识已存在")
	ErrUserSelfRoleChange = errors.New("不能修改自己的角色")
	ErrUserSelfDeactivate = errors.New("不能停用自己的账号")
	ErrNoPermission       = errors.New("无权操作")
)

// UserService 工作人员管理业务接口
type UserService interface {
	Create(ctx context.Context, req *dto.CreateUserRequest, callerID, callerRole string) (*dto.CreateUserResponse, error)
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateUserRequest, callerID string) (*dto.UserResponse, error)
	AssignRole(ctx context.Context, id string, req *dto.AssignRoleRequest, callerID, callerRole string) error
	ResetPassword(ctx context.Context, id string, callerID string) (*dto.ResetPasswordResponse, error)
}

type userService struct {
	cfg      *config.Config
	repo     *repository.Repository
	activity ActivityService
	logger   *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(cfg *config.Config, repo *repository.Repository, activity ActivityService, logger *zap.Logger) UserService {
	return &userService{cfg: cfg, repo: repo, activity: activity, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest, callerID, callerRole string) (*dto.CreateUserResponse, error) {
	// 仅 admin 可创建 admin
	if req.Role == model.RoleAdmin && callerRole != model.RoleAdmin {
		return nil, ErrNoPermission
	}

	if _, err := s.repo.User.GetByIdentifier(ctx, req.Identifier); err == nil {
		return nil, ErrIdentifierExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	tempPassword, hash, err := s.newTempPassword()
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Identifier:         req.Identifier,
		DisplayName:        req.DisplayName,
		Email:              req.Email,
		PasswordHash:       hash,
		Role:               req.Role,
		IsActive:           true,
		MustChangePassword: true,
	}
	user.StampCreated(callerID)

	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	s.activity.Record(callerID, ActionCreate, EntityUser, user.UserID, map[string]interface{}{
		"identifier": user.Identifier,
		"role":       user.Role,
	})

	return &dto.CreateUserResponse{
		User:         *toUserResponse(user),
		TempPassword: tempPassword,
	}, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toUserResponse(user), nil
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	filters := &repository.UserListFilters{
		Role:     req.Role,
		Keyword:  req.Keyword,
		IsActive: req.IsActive,
	}

	users, total, err := s.repo.User.List(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出用户失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, *toUserResponse(&users[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *userService) Update(ctx context.Context, id string, req *dto.UpdateUserRequest, callerID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.Email != nil {
		user.Email = req.Email
	}
	if req.IsActive != nil {
		if !*req.IsActive && id == callerID {
			return nil, ErrUserSelfDeactivate
		}
		user.IsActive = *req.IsActive
	}
	user.StampUpdated(callerID)

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.activity.Record(callerID, ActionUpdate, EntityUser, id, nil)
	return toUserResponse(user), nil
}

// ────────────────────── AssignRole ──────────────────────

func (s *userService) AssignRole(ctx context.Context, id string, req *dto.AssignRoleRequest, callerID, callerRole string) error {
	if id == callerID {
		return ErrUserSelfRoleChange
	}
	if req.Role == model.RoleAdmin && callerRole != model.RoleAdmin {
		return ErrNoPermission
	}

	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	// direction 不能降级 admin
	if user.Role == model.RoleAdmin && callerRole != model.RoleAdmin {
		return ErrNoPermission
	}

	user.Role = req.Role
	user.StampUpdated(callerID)
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("分配角色失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.activity.Record(callerID, ActionUpdate, EntityUser, id, map[string]interface{}{"role": req.Role})
	return nil
}

// ────────────────────── ResetPassword ──────────────────────

func (s *userService) ResetPassword(ctx context.Context, id string, callerID string) (*dto.ResetPasswordResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	tempPassword, hash, err := s.newTempPassword()
	if err != nil {
		return nil, err
	}

	user.PasswordHash = hash
	user.MustChangePassword = true
	user.StampUpdated(callerID)
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("重置密码失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return &dto.ResetPasswordResponse{TempPassword: tempPassword}, nil
}

// newTempPassword 生成临时密码及其 bcrypt 哈希
func (s *userService) newTempPassword() (string, string, error) {
	plain, err := credential.Password(s.cfg.Auth.TempPasswordLength)
	if err != nil {
		s.logger.Error("生成临时密码失败", zap.Error(err))
		return "", "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return "", "", err
	}
	return plain, string(hash), nil
}
