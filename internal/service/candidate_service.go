package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"dhs-academy/backend/internal/dto"
	"dhs-academy/backend/internal/model"
	"dhs-academy/backend/internal/repository"
	pkgerrors "dhs-academy/backend/pkg/errors"
)

// ── 候选人模块业务错误 ──

var (
	ErrCandidateNotFound         = errors.New("候选人不存在")
	ErrCandidateNotEligible      = errors.New("候选人总进度未达到认证要求")
	ErrCandidateAlreadyCertified = errors.New("候选人已认证")
	ErrScoreOutOfRange           = errors.New("评分超出子模块分值范围")
	ErrScoreNotFound             = errors.New("评分记录不存在")
)

// CandidateService 候选人、评分与认证
type CandidateService interface {
	Create(ctx context.Context, req *dto.CreateCandidateRequest, callerID string) (*model.Candidate, error)
	GetByID(ctx context.Context, id string) (*model.Candidate, error)
	List(ctx context.Context, req *dto.CandidateListRequest) ([]model.Candidate, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateCandidateRequest, callerID string) (*model.Candidate, error)
	Delete(ctx context.Context, id string, callerID string) error

	// Progress 总体进度 + 模块明细 + 认证资格
	Progress(ctx context.Context, id string) (*dto.CandidateProgressResponse, error)
	RecordScore(ctx context.Context, candidateID string, req *dto.RecordScoreRequest, callerID string) (*model.SubModuleScore, error)
	ListScores(ctx context.Context, candidateID string) ([]model.SubModuleScore, error)
	DeleteScore(ctx context.Context, candidateID, subModuleID, callerID string) error
	SetAppreciation(ctx context.Context, candidateID string, req *dto.SetAppreciationRequest, callerID string) (*model.ModuleAppreciation, error)

	// Certify 进度达标且未认证时认证候选人，不可撤销
	Certify(ctx context.Context, id string, callerID string) (*model.Candidate, error)
	ListEligible(ctx context.Context) ([]dto.EligibleCandidateResponse, error)
}

type candidateService struct {
	repo     *repository.Repository
	activity ActivityService
	logger   *zap.Logger
}

// NewCandidateService 创建 CandidateService 实例
func NewCandidateService(repo *repository.Repository, activity ActivityService, logger *zap.Logger) CandidateService {
	return &candidateService{repo: repo, activity: activity, logger: logger}
}

// ────────────────────── CRUD ──────────────────────

func (s *candidateService) Create(ctx context.Context, req *dto.CreateCandidateRequest, callerID string) (*model.Candidate, error) {
	c := &model.Candidate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		ServerID:  req.ServerID,
		Email:     req.Email,
		Status:    model.CandidateStatusActive,
		Notes:     req.Notes,
	}
	c.StampCreated(callerID)

	if err := s.repo.Candidate.Create(ctx, c); err != nil {
		s.logger.Error("创建候选人失败", zap.Error(err))
		return nil, err
	}
	s.activity.Record(callerID, ActionCreate, EntityCandidate, c.CandidateID, map[string]interface{}{"name": c.FullName()})
	return c, nil
}

func (s *candidateService) GetByID(ctx context.Context, id string) (*model.Candidate, error) {
	c, err := s.repo.Candidate.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCandidateNotFound
		}
		s.logger.Error("查询候选人失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return c, nil
}

func (s *candidateService) List(ctx context.Context, req *dto.CandidateListRequest) ([]model.Candidate, int64, error) {
	filters := &repository.CandidateListFilters{
		Keyword:     req.Keyword,
		Status:      req.Status,
		IsCertified: req.IsCertified,
		ClassID:     req.ClassID,
	}
	list, total, err := s.repo.Candidate.List(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出候选人失败", zap.Error(err))
		return nil, 0, err
	}
	return list, total, nil
}

func (s *candidateService) Update(ctx context.Context, id string, req *dto.UpdateCandidateRequest, callerID string) (*model.Candidate, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		c.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		c.LastName = *req.LastName
	}
	if req.ServerID != nil {
		c.ServerID = *req.ServerID
	}
	if req.Email != nil {
		c.Email = req.Email
	}
	if req.Status != nil {
		c.Status = *req.Status
	}
	if req.Notes != nil {
		c.Notes = *req.Notes
	}
	c.StampUpdated(callerID)

	if err := s.repo.Candidate.Update(ctx, c); err != nil {
		s.logger.Error("更新候选人失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	s.activity.Record(callerID, ActionUpdate, EntityCandidate, id, nil)
	return c, nil
}

func (s *candidateService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Candidate.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除候选人失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.activity.Record(callerID, ActionDelete, EntityCandidate, id, nil)
	return nil
}

// ────────────────────── Progress ──────────────────────

func (s *candidateService) Progress(ctx context.Context, id string) (*dto.CandidateProgressResponse, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	modules, err := s.repo.Curriculum.ListModules(ctx)
	if err != nil {
		s.logger.Error("查询培训大纲失败", zap.Error(err))
		return nil, err
	}

	appreciations, err := s.repo.Appreciation.ListByCandidate(ctx, id)
	if err != nil {
		s.logger.Error("查询模块评语失败", zap.String("candidate_id", id), zap.Error(err))
		return nil, err
	}

	progress := CalculateCandidateProgress(c.Scores, modules)
	return &dto.CandidateProgressResponse{
		CandidateID: c.CandidateID,
		FullName:    c.FullName(),
		IsCertified: c.IsCertified,
		Eligible:    IsCertificationEligible(c, progress),
		Progress:    progress,
		Modules:     ModuleBreakdown(c.Scores, modules, appreciations),
	}, nil
}

// ────────────────────── Scores ──────────────────────

func (s *candidateService) RecordScore(ctx context.Context, candidateID string, req *dto.RecordScoreRequest, callerID string) (*model.SubModuleScore, error) {
	if _, err := s.GetByID(ctx, candidateID); err != nil {
		return nil, err
	}

	sub, err := s.repo.Curriculum.GetSubModule(ctx, req.SubModuleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubModuleNotFound
		}
		s.logger.Error("查询子模块失败", zap.String("id", req.SubModuleID), zap.Error(err))
		return nil, err
	}

	// 0 ≤ score ≤ 子模块满分
	score := *req.Score
	if score < 0 || score > sub.MaxScore {
		return nil, ErrScoreOutOfRange
	}

	rec := &model.SubModuleScore{
		CandidateID: candidateID,
		SubModuleID: sub.SubModuleID,
		Score:       score,
		MaxScore:    sub.MaxScore,
		GradedBy:    &callerID,
		Comment:     req.Comment,
		GradedAt:    time.Now(),
	}
	rec.StampCreated(callerID)

	if err := s.repo.Score.Upsert(ctx, rec); err != nil {
		s.logger.Error("录入评分失败", zap.String("candidate_id", candidateID), zap.Error(err))
		return nil, err
	}

	s.activity.Record(callerID, ActionScore, EntityCandidate, candidateID, map[string]interface{}{
		"sub_module_id": sub.SubModuleID,
		"score":         score,
		"max_score":     sub.MaxScore,
	})
	return rec, nil
}

func (s *candidateService) ListScores(ctx context.Context, candidateID string) ([]model.SubModuleScore, error) {
	if _, err := s.GetByID(ctx, candidateID); err != nil {
		return nil, err
	}
	scores, err := s.repo.Score.ListByCandidate(ctx, candidateID)
	if err != nil {
		s.logger.Error("查询评分失败", zap.String("candidate_id", candidateID), zap.Error(err))
		return nil, err
	}
	return scores, nil
}

func (s *candidateService) DeleteScore(ctx context.Context, candidateID, subModuleID, callerID string) error {
	if err := s.repo.Score.Delete(ctx, candidateID, subModuleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrScoreNotFound
		}
		s.logger.Error("删除评分失败", zap.String("candidate_id", candidateID), zap.Error(err))
		return err
	}
	s.activity.Record(callerID, ActionDelete, EntityCandidate, candidateID, map[string]interface{}{"sub_module_id": subModuleID})
	return nil
}

func (s *candidateService) SetAppreciation(ctx context.Context, candidateID string, req *dto.SetAppreciationRequest, callerID string) (*model.ModuleAppreciation, error) {
	if _, err := s.GetByID(ctx, candidateID); err != nil {
		return nil, err
	}
	if _, err := s.repo.Curriculum.GetModule(ctx, req.ModuleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrModuleNotFound
		}
		return nil, err
	}

	a := &model.ModuleAppreciation{
		CandidateID: candidateID,
		ModuleID:    req.ModuleID,
		Comment:     req.Comment,
		AuthorID:    callerID,
	}
	a.StampCreated(callerID)

	if err := s.repo.Appreciation.Upsert(ctx, a); err != nil {
		s.logger.Error("保存模块评语失败", zap.String("candidate_id", candidateID), zap.Error(err))
		return nil, err
	}
	return a, nil
}

// ────────────────────── Certification ──────────────────────

func (s *candidateService) Certify(ctx context.Context, id string, callerID string) (*model.Candidate, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.IsCertified {
		return nil, ErrCandidateAlreadyCertified
	}

	modules, err := s.repo.Curriculum.ListModules(ctx)
	if err != nil {
		s.logger.Error("查询培训大纲失败", zap.Error(err))
		return nil, err
	}
	progress := CalculateCandidateProgress(c.Scores, modules)
	if !IsCertificationEligible(c, progress) {
		return nil, ErrCandidateNotEligible
	}

	// 条件更新，仅 is_certified=false 时生效
	now := time.Now()
	if err := s.repo.Candidate.Certify(ctx, id, callerID, now); err != nil {
		if errors.Is(err, pkgerrors.ErrStaleState) {
			return nil, ErrCandidateAlreadyCertified
		}
		s.logger.Error("认证候选人失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	c.IsCertified = true
	c.CertifiedBy = &callerID
	c.CertificationDate = &now

	s.activity.Record(callerID, ActionCertify, EntityCandidate, id, map[string]interface{}{
		"percentage": progress.Percentage,
	})
	return c, nil
}

func (s *candidateService) ListEligible(ctx context.Context) ([]dto.EligibleCandidateResponse, error) {
	notCertified := false
	candidates, err := s.repo.Candidate.ListWithScores(ctx, &repository.CandidateListFilters{
		Status:      model.CandidateStatusActive,
		IsCertified: &notCertified,
	})
	if err != nil {
		s.logger.Error("查询候选人失败", zap.Error(err))
		return nil, err
	}

	modules, err := s.repo.Curriculum.ListModules(ctx)
	if err != nil {
		s.logger.Error("查询培训大纲失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.EligibleCandidateResponse, 0)
	for i := range candidates {
		c := &candidates[i]
		progress := CalculateCandidateProgress(c.Scores, modules)
		if !IsCertificationEligible(c, progress) {
			continue
		}
		result = append(result, dto.EligibleCandidateResponse{
			CandidateID: c.CandidateID,
			FullName:    c.FullName(),
			ServerID:    c.ServerID,
			Progress:    progress,
		})
	}
	return result, nil
}
