package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"dhs-academy/backend/internal/model"
)

// CandidateListFilters 候选人列表筛选条件
type CandidateListFilters struct {
	Keyword     string // 模糊匹配姓名 / server_id
	Status      string
	IsCertified *bool
	ClassID     string
}

// CandidateRepository 候选人数据访问接口
type CandidateRepository interface {
	Create(ctx context.Context, candidate *model.Candidate) error
	// GetByID 同时预加载全部评分
	GetByID(ctx context.Context, id string) (*model.Candidate, error)
	Update(ctx context.Context, candidate *model.Candidate) error
	Delete(ctx context.Context, id string, deletedBy string) error
	List(ctx context.Context, filters *CandidateListFilters, offset, limit int) ([]model.Candidate, int64, error)
	// ListWithScores 不分页返回候选人及其评分（资格筛选、导出使用）
	ListWithScores(ctx context.Context, filters *CandidateListFilters) ([]model.Candidate, error)
	// Certify 条件更新 is_certified=false → true，未命中返回 ErrStaleState
	Certify(ctx context.Context, id, certifiedBy string, at time.Time) error
}

type candidateRepo struct {
	db *gorm.DB
}

// NewCandidateRepo 创建 CandidateRepository 实例
func NewCandidateRepo(db *gorm.DB) CandidateRepository {
	return &candidateRepo{db: db}
}

func (r *candidateRepo) Create(ctx context.Context, candidate *model.Candidate) error {
	return r.db.WithContext(ctx).Create(candidate).Error
}

func (r *candidateRepo) GetByID(ctx context.Context, id string) (*model.Candidate, error) {
	var candidate model.Candidate
	err := r.db.WithContext(ctx).
		Preload("Scores").
		Where("candidate_id = ?", id).
		First(&candidate).Error
	if err != nil {
		return nil, err
	}
	return &candidate, nil
}

func (r *candidateRepo) Update(ctx context.Context, candidate *model.Candidate) error {
	// Omit 关联，避免 Save 级联写入评分
	return r.db.WithContext(ctx).Omit("Scores").Save(candidate).Error
}

func (r *candidateRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Candidate{}).
		Where("candidate_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *candidateRepo) filtered(ctx context.Context, filters *CandidateListFilters) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&model.Candidate{})
	if filters == nil {
		return db
	}
	if filters.Keyword != "" {
		kw := "%" + filters.Keyword + "%"
		db = db.Where("first_name ILIKE ? OR last_name ILIKE ? OR server_id ILIKE ?", kw, kw, kw)
	}
	if filters.Status != "" {
		db = db.Where("status = ?", filters.Status)
	}
	if filters.IsCertified != nil {
		db = db.Where("is_certified = ?", *filters.IsCertified)
	}
	if filters.ClassID != "" {
		db = db.Where("candidate_id::text IN (SELECT unnest(candidate_ids) FROM classes WHERE class_id = ?)", filters.ClassID)
	}
	return db
}

func (r *candidateRepo) List(ctx context.Context, filters *CandidateListFilters, offset, limit int) ([]model.Candidate, int64, error) {
	var candidates []model.Candidate
	var total int64

	db := r.filtered(ctx, filters)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("last_name ASC, first_name ASC").
		Find(&candidates).Error; err != nil {
		return nil, 0, err
	}

	return candidates, total, nil
}

func (r *candidateRepo) ListWithScores(ctx context.Context, filters *CandidateListFilters) ([]model.Candidate, error) {
	var candidates []model.Candidate
	err := r.filtered(ctx, filters).
		Preload("Scores").
		Order("last_name ASC, first_name ASC").
		Find(&candidates).Error
	return candidates, err
}

func (r *candidateRepo) Certify(ctx context.Context, id, certifiedBy string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.Candidate{}).
		Where("candidate_id = ? AND is_certified = ?", id, false).
		Updates(map[string]interface{}{
			"is_certified":       true,
			"certified_by":       certifiedBy,
			"certification_date": at,
			"updated_by":         certifiedBy,
			"updated_at":         at,
		})
	return affected(res)
}
