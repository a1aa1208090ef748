package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"dhs-academy/backend/internal/model"
)

// UserListFilters 工作人员列表筛选条件
type UserListFilters struct {
	Role     string
	Keyword  string // 模糊匹配 identifier / display_name
	IsActive *bool
}

// UserRepository 工作人员数据访问接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	List(ctx context.Context, filters *UserListFilters, offset, limit int) ([]model.User, int64, error)
	// TouchLastLogin 仅更新最后登录时间，不触碰其他字段
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

// userRepo UserRepository 的 GORM 实现
type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("identifier = ?", identifier).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepo) List(ctx context.Context, filters *UserListFilters, offset, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	db := r.db.WithContext(ctx).Model(&model.User{})
	if filters != nil {
		if filters.Role != "" {
			db = db.Where("role = ?", filters.Role)
		}
		if filters.IsActive != nil {
			db = db.Where("is_active = ?", *filters.IsActive)
		}
		if filters.Keyword != "" {
			kw := "%" + filters.Keyword + "%"
			db = db.Where("identifier ILIKE ? OR display_name ILIKE ?", kw, kw)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepo) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// LoginAttemptRepository 登录尝试记录数据访问接口
type LoginAttemptRepository interface {
	Create(ctx context.Context, attempt *model.LoginAttempt) error
	CountFailuresSince(ctx context.Context, identifier string, since time.Time) (int64, error)
	// DeleteBefore 清理早于 before 的记录，返回删除行数
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

type loginAttemptRepo struct {
	db *gorm.DB
}

// NewLoginAttemptRepo 创建 LoginAttemptRepository 实例
func NewLoginAttemptRepo(db *gorm.DB) LoginAttemptRepository {
	return &loginAttemptRepo{db: db}
}

func (r *loginAttemptRepo) Create(ctx context.Context, attempt *model.LoginAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *loginAttemptRepo) CountFailuresSince(ctx context.Context, identifier string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.LoginAttempt{}).
		Where("identifier = ? AND success = ? AND created_at >= ?", identifier, false, since).
		Count(&count).Error
	return count, err
}

func (r *loginAttemptRepo) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("created_at < ?", before).
		Delete(&model.LoginAttempt{})
	return res.RowsAffected, res.Error
}
