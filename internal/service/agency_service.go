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

// ── 机构 / 职级业务错误 ──

var (
	ErrAgencyNotFound   = errors.New("机构不存在")
	ErrAgencyNameExists = errors.New("机构名称已存在")
	ErrAgencyHasAgents  = errors.New("机构下存在警员，无法删除")
	ErrGradeNotFound    = errors.New("职级不存在")
	ErrGradeHasAgents   = errors.New("职级下存在警员，无法删除")
)

// AgencyService 机构与职级管理
type AgencyService interface {
	Create(ctx context.Context, req *dto.CreateAgencyRequest, callerID string) (*model.Agency, error)
	GetByID(ctx context.Context, id string) (*model.Agency, error)
	List(ctx context.Context) ([]model.Agency, error)
	Update(ctx context.Context, id string, req *dto.UpdateAgencyRequest, callerID string) (*model.Agency, error)
	Delete(ctx context.Context, id string, callerID string) error

	CreateGrade(ctx context.Context, agencyID string, req *dto.CreateGradeRequest, callerID string) (*model.Grade, error)
	ListGrades(ctx context.Context, agencyID string) ([]model.Grade, error)
	UpdateGrade(ctx context.Context, id string, req *dto.UpdateGradeRequest, callerID string) (*model.Grade, error)
	DeleteGrade(ctx context.Context, id string, callerID string) error
}

type agencyService struct {
	repo     *repository.Repository
	activity ActivityService
	logger   *zap.Logger
}

// NewAgencyService 创建 AgencyService 实例
func NewAgencyService(repo *repository.Repository, activity ActivityService, logger *zap.Logger) AgencyService {
	return &agencyService{repo: repo, activity: activity, logger: logger}
}

// ────────────────────── Agency ──────────────────────

func (s *agencyService) Create(ctx context.Context, req *dto.CreateAgencyRequest, callerID string) (*model.Agency, error) {
	// 检查名称唯一性
	existing, err := s.repo.Agency.GetByName(ctx, req.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询机构失败", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, ErrAgencyNameExists
	}

	agency := &model.Agency{
		Name:        req.Name,
		Acronym:     req.Acronym,
		Description: req.Description,
	}
	agency.StampCreated(callerID)

	if err := s.repo.Agency.Create(ctx, agency); err != nil {
		s.logger.Error("创建机构失败", zap.Error(err))
		return nil, err
	}
	s.activity.Record(callerID, ActionCreate, EntityAgency, agency.AgencyID, map[string]interface{}{"name": agency.Name})
	return agency, nil
}

func (s *agencyService) GetByID(ctx context.Context, id string) (*model.Agency, error) {
	agency, err := s.repo.Agency.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAgencyNotFound
		}
		s.logger.Error("查询机构失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return agency, nil
}

func (s *agencyService) List(ctx context.Context) ([]model.Agency, error) {
	list, err := s.repo.Agency.List(ctx)
	if err != nil {
		s.logger.Error("列出机构失败", zap.Error(err))
		return nil, err
	}
	return list, nil
}

func (s *agencyService) Update(ctx context.Context, id string, req *dto.UpdateAgencyRequest, callerID string) (*model.Agency, error) {
	agency, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != agency.Name {
		existing, err := s.repo.Agency.GetByName(ctx, *req.Name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil && existing.AgencyID != id {
			return nil, ErrAgencyNameExists
		}
		agency.Name = *req.Name
	}
	if req.Acronym != nil {
		agency.Acronym = *req.Acronym
	}
	if req.Description != nil {
		agency.Description = *req.Description
	}
	agency.StampUpdated(callerID)

	if err := s.repo.Agency.Update(ctx, agency); err != nil {
		s.logger.Error("更新机构失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	s.activity.Record(callerID, ActionUpdate, EntityAgency, id, nil)
	return agency, nil
}

func (s *agencyService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.Agency.CountAgents(ctx, id)
	if err != nil {
		s.logger.Error("统计机构警员失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrAgencyHasAgents
	}

	if err := s.repo.Agency.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除机构失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.activity.Record(callerID, ActionDelete, EntityAgency, id, nil)
	return nil
}

// ────────────────────── Grade ──────────────────────

func (s *agencyService) CreateGrade(ctx context.Context, agencyID string, req *dto.CreateGradeRequest, callerID string) (*model.Grade, error) {
	if _, err := s.GetByID(ctx, agencyID); err != nil {
		return nil, err
	}

	grade := &model.Grade{
		AgencyID:  agencyID,
		Name:      req.Name,
		RankOrder: req.RankOrder,
	}
	grade.StampCreated(callerID)

	if err := s.repo.Grade.Create(ctx, grade); err != nil {
		s.logger.Error("创建职级失败", zap.Error(err))
		return nil, err
	}
	s.activity.Record(callerID, ActionCreate, EntityGrade, grade.GradeID, map[string]interface{}{"agency_id": agencyID})
	return grade, nil
}

func (s *agencyService) ListGrades(ctx context.Context, agencyID string) ([]model.Grade, error) {
	if _, err := s.GetByID(ctx, agencyID); err != nil {
		return nil, err
	}
	grades, err := s.repo.Grade.ListByAgency(ctx, agencyID)
	if err != nil {
		s.logger.Error("列出职级失败", zap.String("agency_id", agencyID), zap.Error(err))
		return nil, err
	}
	return grades, nil
}

func (s *agencyService) UpdateGrade(ctx context.Context, id string, req *dto.UpdateGradeRequest, callerID string) (*model.Grade, error) {
	grade, err := s.getGrade(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		grade.Name = *req.Name
	}
	if req.RankOrder != nil {
		grade.RankOrder = *req.RankOrder
	}
	grade.StampUpdated(callerID)

	if err := s.repo.Grade.Update(ctx, grade); err != nil {
		s.logger.Error("更新职级失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	s.activity.Record(callerID, ActionUpdate, EntityGrade, id, nil)
	return grade, nil
}

func (s *agencyService) DeleteGrade(ctx context.Context, id string, callerID string) error {
	if _, err := s.getGrade(ctx, id); err != nil {
		return err
	}
	count, err := s.repo.Grade.CountAgents(ctx, id)
	if err != nil {
		s.logger.Error("统计职级警员失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrGradeHasAgents
	}
	if err := s.repo.Grade.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除职级失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.activity.Record(callerID, ActionDelete, EntityGrade, id, nil)
	return nil
}

func (s *agencyService) getGrade(ctx context.Context, id string) (*model.Grade, error) {
	grade, err := s.repo.Grade.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGradeNotFound
		}
		s.logger.Error("查询职级失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return grade, nil
}
