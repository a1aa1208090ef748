package repository

import (
	"context"

	"gorm.io/gorm"

	"dhs-academy/backend/internal/model"
)

// CurriculumRepository 培训大纲（模块 / 子模块）数据访问接口
type CurriculumRepository interface {
	CreateModule(ctx context.Context, module *model.Module) error
	GetModule(ctx context.Context, id string) (*model.Module, error)
	UpdateModule(ctx context.Context, module *model.Module) error
	DeleteModule(ctx context.Context, id string, deletedBy string) error
	// ListModules 按 position 返回模块，子模块同样按 position 排序
	ListModules(ctx context.Context) ([]model.Module, error)

	CreateSubModule(ctx context.Context, sub *model.SubModule) error
	GetSubModule(ctx context.Context, id string) (*model.SubModule, error)
	UpdateSubModule(ctx context.Context, sub *model.SubModule) error
	DeleteSubModule(ctx context.Context, id string, deletedBy string) error
	CountSubModules(ctx context.Context, moduleID string) (int64, error)
}

type curriculumRepo struct {
	db *gorm.DB
}

// NewCurriculumRepo 创建 CurriculumRepository 实例
func NewCurriculumRepo(db *gorm.DB) CurriculumRepository {
	return &curriculumRepo{db: db}
}

func (r *curriculumRepo) CreateModule(ctx context.Context, module *model.Module) error {
	return r.db.WithContext(ctx).Omit("SubModules").Create(module).Error
}

func (r *curriculumRepo) GetModule(ctx context.Context, id string) (*model.Module, error) {
	var module model.Module
	err := r.db.WithContext(ctx).
		Preload("SubModules", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("module_id = ?", id).
		First(&module).Error
	if err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *curriculumRepo) UpdateModule(ctx context.Context, module *model.Module) error {
	return r.db.WithContext(ctx).Omit("SubModules").Save(module).Error
}

func (r *curriculumRepo) DeleteModule(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Module{}).
		Where("module_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *curriculumRepo) ListModules(ctx context.Context) ([]model.Module, error) {
	var modules []model.Module
	err := r.db.WithContext(ctx).
		Preload("SubModules", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("position ASC").
		Find(&modules).Error
	return modules, err
}

func (r *curriculumRepo) CreateSubModule(ctx context.Context, sub *model.SubModule) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *curriculumRepo) GetSubModule(ctx context.Context, id string) (*model.SubModule, error) {
	var sub model.SubModule
	err := r.db.WithContext(ctx).
		Where("sub_module_id = ?", id).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *curriculumRepo) UpdateSubModule(ctx context.Context, sub *model.SubModule) error {
	return r.db.WithContext(ctx).Save(sub).Error
}

func (r *curriculumRepo) DeleteSubModule(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.SubModule{}).
		Where("sub_module_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *curriculumRepo) CountSubModules(ctx context.Context, moduleID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.SubModule{}).
		Where("module_id = ?", moduleID).
		Count(&count).Error
	return count, err
}
