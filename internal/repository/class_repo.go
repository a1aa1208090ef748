package repository

import (
	"context"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"dhs-academy/backend/internal/model"
)

// ClassListFilters 班级列表筛选条件
type ClassListFilters struct {
	InstructorID string
	Status       string
}

// ClassRepository 班级数据访问接口
type ClassRepository interface {
	Create(ctx context.Context, class *model.Class) error
	GetByID(ctx context.Context, id string) (*model.Class, error)
	Update(ctx context.Context, class *model.Class) error
	Delete(ctx context.Context, id string, deletedBy string) error
	List(ctx context.Context, filters *ClassListFilters, offset, limit int) ([]model.Class, int64, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]model.Class, error)
	// SetCandidates 整体替换成员列表（保持顺序）
	SetCandidates(ctx context.Context, id string, candidateIDs []string, updatedBy string) error
	// UpdateStatus 条件更新 from → to，未命中返回 ErrStaleState
	UpdateStatus(ctx context.Context, id, from, to, updatedBy string) error
}

type classRepo struct {
	db *gorm.DB
}

// NewClassRepo 创建 ClassRepository 实例
func NewClassRepo(db *gorm.DB) ClassRepository {
	return &classRepo{db: db}
}

func (r *classRepo) Create(ctx context.Context, class *model.Class) error {
	return r.db.WithContext(ctx).Omit("Instructor").Create(class).Error
}

func (r *classRepo) GetByID(ctx context.Context, id string) (*model.Class, error) {
	var class model.Class
	err := r.db.WithContext(ctx).
		Preload("Instructor").
		Where("class_id = ?", id).
		First(&class).Error
	if err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *classRepo) Update(ctx context.Context, class *model.Class) error {
	return r.db.WithContext(ctx).Omit("Instructor").Save(class).Error
}

func (r *classRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Class{}).
		Where("class_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *classRepo) List(ctx context.Context, filters *ClassListFilters, offset, limit int) ([]model.Class, int64, error) {
	var classes []model.Class
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Class{})
	if filters != nil {
		if filters.InstructorID != "" {
			db = db.Where("instructor_id = ?", filters.InstructorID)
		}
		if filters.Status != "" {
			db = db.Where("status = ?", filters.Status)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Instructor").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&classes).Error; err != nil {
		return nil, 0, err
	}

	return classes, total, nil
}

func (r *classRepo) ListByCandidate(ctx context.Context, candidateID string) ([]model.Class, error) {
	var classes []model.Class
	err := r.db.WithContext(ctx).
		Where("? = ANY(candidate_ids)", candidateID).
		Order("created_at DESC").
		Find(&classes).Error
	return classes, err
}

func (r *classRepo) SetCandidates(ctx context.Context, id string, candidateIDs []string, updatedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Class{}).
		Where("class_id = ?", id).
		Updates(map[string]interface{}{
			"candidate_ids": pq.StringArray(candidateIDs),
			"updated_by":    updatedBy,
			"updated_at":    gorm.Expr("NOW()"),
		}).Error
}

func (r *classRepo) UpdateStatus(ctx context.Context, id, from, to, updatedBy string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Class{}).
		Where("class_id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_by": updatedBy,
			"updated_at": gorm.Expr("NOW()"),
		})
	return affected(res)
}
