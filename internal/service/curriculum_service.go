package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"dhs-academy/backend/internal/dto"
	"dhs-academy/backend/internal/model"
	"dhs-academy/backend/internal/repository"
)

// ── 培训大纲业务错误 ──

var (
	ErrModuleNotFound      = errors.New("模块不存在")
	ErrSubModuleNotFound   = errors.New("子模块不存在")
	ErrModuleHasSubModules = errors.New("模块下存在子模块，无法删除")
	ErrInvalidSubModuleMax = errors.New("子模块满分必须大于 0")
	ErrSubModuleHasScores  = errors.New("子模块已有评分记录，无法删除")
	ErrMaxBelowScores      = errors.New("子模块满分低于已录入的最高分")
)

// CurriculumService 模块与子模块管理
type CurriculumService interface {
	// GetTree 返回按 position 排序的模块及其子模块
	GetTree(ctx context.Context) ([]model.Module, error)
	CreateModule(ctx context.Context, req *dto.CreateModuleRequest, callerID string) (*model.Module, error)
	UpdateModule(ctx context.Context, id string, req *dto.UpdateModuleRequest, callerID string) (*model.Module, error)
	DeleteModule(ctx context.Context, id string, callerID string) error
	CreateSubModule(ctx context.Context, moduleID string, req *dto.CreateSubModuleRequest, callerID string) (*model.SubModule, error)
	UpdateSubModule(ctx context.Context, id string, req *dto.UpdateSubModuleRequest, callerID string) (*model.SubModule, error)
	DeleteSubModule(ctx context.Context, id string, callerID string) error
}

type curriculumService struct {
	repo     *repository.Repository
	activity ActivityService
	logger   *zap.Logger
}

// NewCurriculumService 创建 CurriculumService 实例
func NewCurriculumService(repo *repository.Repository, activity ActivityService, logger *zap.Logger) CurriculumService {
	return &curriculumService{repo: repo, activity: activity, logger: logger}
}

func (s *curriculumService) GetTree(ctx context.Context) ([]model.Module, error) {
	modules, err := s.repo.Curriculum.ListModules(ctx)
	if err != nil {
		s.logger.Error("查询培训大纲失败", zap.Error(err))
		return nil, err
	}
	return modules, nil
}

// ────────────────────── Module ──────────────────────

func (s *curriculumService) CreateModule(ctx context.Context, req *dto.CreateModuleRequest, callerID string) (*model.Module, error) {
	m := &model.Module{
		Name:        req.Name,
		Description: req.Description,
		Position:    req.Position,
	}
	m.StampCreated(callerID)

	if err := s.repo.Curriculum.CreateModule(ctx, m); err != nil {
		s.logger.Error("创建模块失败", zap.Error(err))
		return nil, err
	}
	s.activity.Record(callerID, ActionCreate, EntityModule, m.ModuleID, map[string]interface{}{"name": m.Name})
	return m, nil
}

func (s *curriculumService) UpdateModule(ctx context.Context, id string, req *dto.UpdateModuleRequest, callerID string) (*model.Module, error) {
	m, err := s.getModule(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		m.Name = *req.Name
	}
	if req.Description != nil {
		m.Description = *req.Description
	}
	if req.Position != nil {
		m.Position = *req.Position
	}
	m.StampUpdated(callerID)

	if err := s.repo.Curriculum.UpdateModule(ctx, m); err != nil {
		s.logger.Error("更新模块失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	s.activity.Record(callerID, ActionUpdate, EntityModule, id, nil)
	return m, nil
}

func (s *curriculumService) DeleteModule(ctx context.Context, id string, callerID string) error {
	if _, err := s.getModule(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.Curriculum.CountSubModules(ctx, id)
	if err != nil {
		s.logger.Error("统计子模块失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrModuleHasSubModules
	}

	if err := s.repo.Curriculum.DeleteModule(ctx, id, callerID); err != nil {
		s.logger.Error("删除模块失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.activity.Record(callerID, ActionDelete, EntityModule, id, nil)
	return nil
}

// ────────────────────── SubModule ──────────────────────

func (s *curriculumService) CreateSubModule(ctx context.Context, moduleID string, req *dto.CreateSubModuleRequest, callerID string) (*model.SubModule, error) {
	if req.MaxScore <= 0 {
		return nil, ErrInvalidSubModuleMax
	}
	if _, err := s.getModule(ctx, moduleID); err != nil {
		return nil, err
	}

	sub := &model.SubModule{
		ModuleID:    moduleID,
		Name:        req.Name,
		Description: req.Description,
		MaxScore:    req.MaxScore,
		Position:    req.Position,
	}
	sub.StampCreated(callerID)

	if err := s.repo.Curriculum.CreateSubModule(ctx, sub); err != nil {
		s.logger.Error("创建子模块失败", zap.Error(err))
		return nil, err
	}
	s.activity.Record(callerID, ActionCreate, EntitySubModule, sub.SubModuleID, map[string]interface{}{
		"module_id": moduleID,
		"max_score": sub.MaxScore,
	})
	return sub, nil
}

func (s *curriculumService) UpdateSubModule(ctx context.Context, id string, req *dto.UpdateSubModuleRequest, callerID string) (*model.SubModule, error) {
	sub, err := s.getSubModule(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		sub.Name = *req.Name
	}
	if req.Description != nil {
		sub.Description = *req.Description
	}
	if req.MaxScore != nil {
		if *req.MaxScore <= 0 {
			return nil, ErrInvalidSubModuleMax
		}
		if *req.MaxScore < sub.MaxScore {
			_, highest, err := s.repo.Score.SubModuleStats(ctx, id)
			if err != nil {
				s.logger.Error("查询子模块评分失败", zap.String("id", id), zap.Error(err))
				return nil, err
			}
			if highest > *req.MaxScore {
				return nil, ErrMaxBelowScores
			}
		}
		sub.MaxScore = *req.MaxScore
	}
	if req.Position != nil {
		sub.Position = *req.Position
	}
	sub.StampUpdated(callerID)

	if err := s.repo.Curriculum.UpdateSubModule(ctx, sub); err != nil {
		s.logger.Error("更新子模块失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	s.activity.Record(callerID, ActionUpdate, EntitySubModule, id, nil)
	return sub, nil
}

func (s *curriculumService) DeleteSubModule(ctx context.Context, id string, callerID string) error {
	if _, err := s.getSubModule(ctx, id); err != nil {
		return err
	}
	// 已评分的子模块删除后，其分数会脱离满分基数
	count, _, err := s.repo.Score.SubModuleStats(ctx, id)
	if err != nil {
		s.logger.Error("查询子模块评分失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrSubModuleHasScores
	}
	if err := s.repo.Curriculum.DeleteSubModule(ctx, id, callerID); err != nil {
		s.logger.Error("删除子模块失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.activity.Record(callerID, ActionDelete, EntitySubModule, id, nil)
	return nil
}

func (s *curriculumService) getModule(ctx context.Context, id string) (*model.Module, error) {
	m, err := s.repo.Curriculum.GetModule(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrModuleNotFound
		}
		s.logger.Error("查询模块失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return m, nil
}

func (s *curriculumService) getSubModule(ctx context.Context, id string) (*model.SubModule, error) {
	sub, err := s.repo.Curriculum.GetSubModule(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubModuleNotFound
		}
		s.logger.Error("查询子模块失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return sub, nil
}
