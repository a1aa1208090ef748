package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"dhs-academy/backend/internal/model"
)

// ActivityLogFilters 审计日志筛选条件
type ActivityLogFilters struct {
	UserID     string
	EntityType string
	EntityID   string
	Since      *time.Time
}

// ActivityLogRepository 审计日志数据访问接口（只追加）
type ActivityLogRepository interface {
	Create(ctx context.Context, log *model.ActivityLog) error
	List(ctx context.Context, filters *ActivityLogFilters, offset, limit int) ([]model.ActivityLog, int64, error)
}

type activityLogRepo struct {
	db *gorm.DB
}

// NewActivityLogRepo 创建 ActivityLogRepository 实例
func NewActivityLogRepo(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepo{db: db}
}

func (r *activityLogRepo) Create(ctx context.Context, log *model.ActivityLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *activityLogRepo) List(ctx context.Context, filters *ActivityLogFilters, offset, limit int) ([]model.ActivityLog, int64, error) {
	var logs []model.ActivityLog
	var total int64

	db := r.db.WithContext(ctx).Model(&model.ActivityLog{})
	if filters != nil {
		if filters.UserID != "" {
			db = db.Where("user_id = ?", filters.UserID)
		}
		if filters.EntityType != "" {
			db = db.Where("entity_type = ?", filters.EntityType)
		}
		if filters.EntityID != "" {
			db = db.Where("entity_id = ?", filters.EntityID)
		}
		if filters.Since != nil {
			db = db.Where("created_at >= ?", *filters.Since)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("User").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
