package repository

import (
	"context"

	"gorm.io/gorm"

	"dhs-academy/backend/internal/model"
)

// FormRepository 申请表单数据访问接口
type FormRepository interface {
	Create(ctx context.Context, form *model.ApplicationForm) error
	GetByID(ctx context.Context, id string) (*model.ApplicationForm, error)
	Update(ctx context.Context, form *model.ApplicationForm) error
	Delete(ctx context.Context, id string, deletedBy string) error
	List(ctx context.Context, openOnly bool) ([]model.ApplicationForm, error)
}

type formRepo struct {
	db *gorm.DB
}

// NewFormRepo 创建 FormRepository 实例
func NewFormRepo(db *gorm.DB) FormRepository {
	return &formRepo{db: db}
}

func (r *formRepo) Create(ctx context.Context, form *model.ApplicationForm) error {
	return r.db.WithContext(ctx).Create(form).Error
}

func (r *formRepo) GetByID(ctx context.Context, id string) (*model.ApplicationForm, error) {
	var form model.ApplicationForm
	err := r.db.WithContext(ctx).
		Where("form_id = ?", id).
		First(&form).Error
	if err != nil {
		return nil, err
	}
	return &form, nil
}

func (r *formRepo) Update(ctx context.Context, form *model.ApplicationForm) error {
	return r.db.WithContext(ctx).Save(form).Error
}

func (r *formRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.ApplicationForm{}).
		Where("form_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *formRepo) List(ctx context.Context, openOnly bool) ([]model.ApplicationForm, error) {
	var forms []model.ApplicationForm
	db := r.db.WithContext(ctx)
	if openOnly {
		db = db.Where("is_open = ?", true)
	}
	err := db.Order("created_at DESC").Find(&forms).Error
	return forms, err
}

// ApplicationListFilters 申请列表筛选条件
type ApplicationListFilters struct {
	FormID string
	Status string
}

// ApplicationRepository 申请记录数据访问接口
type ApplicationRepository interface {
	Create(ctx context.Context, app *model.Application) error
	GetByID(ctx context.Context, id string) (*model.Application, error)
	List(ctx context.Context, filters *ApplicationListFilters, offset, limit int) ([]model.Application, int64, error)
	// Review 以 status='pending' 为条件写入审核结果，未命中返回 ErrStaleState
	Review(ctx context.Context, app *model.Application) error
	SetCandidate(ctx context.Context, id, candidateID string) error
}

type applicationRepo struct {
	db *gorm.DB
}

// NewApplicationRepo 创建 ApplicationRepository 实例
func NewApplicationRepo(db *gorm.DB) ApplicationRepository {
	return &applicationRepo{db: db}
}

func (r *applicationRepo) Create(ctx context.Context, app *model.Application) error {
	return r.db.WithContext(ctx).Omit("Form").Create(app).Error
}

func (r *applicationRepo) GetByID(ctx context.Context, id string) (*model.Application, error) {
	var app model.Application
	err := r.db.WithContext(ctx).
		Preload("Form").
		Where("application_id = ?", id).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepo) List(ctx context.Context, filters *ApplicationListFilters, offset, limit int) ([]model.Application, int64, error) {
	var apps []model.Application
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Application{})
	if filters != nil {
		if filters.FormID != "" {
			db = db.Where("form_id = ?", filters.FormID)
		}
		if filters.Status != "" {
			db = db.Where("status = ?", filters.Status)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("submitted_at DESC").
		Find(&apps).Error; err != nil {
		return nil, 0, err
	}

	return apps, total, nil
}

func (r *applicationRepo) Review(ctx context.Context, app *model.Application) error {
	res := r.db.WithContext(ctx).
		Model(&model.Application{}).
		Where("application_id = ? AND status = ?", app.ApplicationID, model.ApplicationPending).
		Updates(map[string]interface{}{
			"status":      app.Status,
			"reviewed_by": app.ReviewedBy,
			"reviewed_at": app.ReviewedAt,
			"review_note": app.ReviewNote,
		})
	return affected(res)
}

func (r *applicationRepo) SetCandidate(ctx context.Context, id, candidateID string) error {
	return r.db.WithContext(ctx).
		Model(&model.Application{}).
		Where("application_id = ?", id).
		UpdateColumn("candidate_id", candidateID).Error
}
