package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dhs-academy/backend/internal/model"
)

// ScoreRepository 子模块评分数据访问接口
type ScoreRepository interface {
	// Upsert 按 (candidate_id, sub_module_id) 写入或覆盖评分
	Upsert(ctx context.Context, score *model.SubModuleScore) error
	ListByCandidate(ctx context.Context, candidateID string) ([]model.SubModuleScore, error)
	Delete(ctx context.Context, candidateID, subModuleID string) error
	// SubModuleStats 某子模块已录入的评分条数与最高分（修改满分、删除子模块前校验）
	SubModuleStats(ctx context.Context, subModuleID string) (count int64, highest float64, err error)
}

type scoreRepo struct {
	db *gorm.DB
}

// NewScoreRepo 创建 ScoreRepository 实例
func NewScoreRepo(db *gorm.DB) ScoreRepository {
	return &scoreRepo{db: db}
}

func (r *scoreRepo) Upsert(ctx context.Context, score *model.SubModuleScore) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "candidate_id"}, {Name: "sub_module_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"score", "max_score", "graded_by", "comment", "graded_at", "updated_at", "updated_by"}),
		}).
		Create(score).Error
}

func (r *scoreRepo) ListByCandidate(ctx context.Context, candidateID string) ([]model.SubModuleScore, error) {
	var scores []model.SubModuleScore
	err := r.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Order("graded_at ASC").
		Find(&scores).Error
	return scores, err
}

func (r *scoreRepo) Delete(ctx context.Context, candidateID, subModuleID string) error {
	res := r.db.WithContext(ctx).
		Where("candidate_id = ? AND sub_module_id = ?", candidateID, subModuleID).
		Delete(&model.SubModuleScore{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *scoreRepo) SubModuleStats(ctx context.Context, subModuleID string) (int64, float64, error) {
	var row struct {
		Count   int64
		Highest float64
	}
	err := r.db.WithContext(ctx).
		Model(&model.SubModuleScore{}).
		Select("COUNT(*) AS count, COALESCE(MAX(score), 0) AS highest").
		Where("sub_module_id = ?", subModuleID).
		Scan(&row).Error
	return row.Count, row.Highest, err
}

// AppreciationRepository 模块评语数据访问接口
type AppreciationRepository interface {
	// Upsert 复合主键 (candidate_id, module_id) 冲突时覆盖评语
	Upsert(ctx context.Context, a *model.ModuleAppreciation) error
	ListByCandidate(ctx context.Context, candidateID string) ([]model.ModuleAppreciation, error)
}

type appreciationRepo struct {
	db *gorm.DB
}

// NewAppreciationRepo 创建 AppreciationRepository 实例
func NewAppreciationRepo(db *gorm.DB) AppreciationRepository {
	return &appreciationRepo{db: db}
}

func (r *appreciationRepo) Upsert(ctx context.Context, a *model.ModuleAppreciation) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "candidate_id"}, {Name: "module_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"comment", "author_id", "updated_at", "updated_by"}),
		}).
		Create(a).Error
}

func (r *appreciationRepo) ListByCandidate(ctx context.Context, candidateID string) ([]model.ModuleAppreciation, error) {
	var list []model.ModuleAppreciation
	err := r.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Find(&list).Error
	return list, err
}
