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
)

// ── 警员 / 处分业务错误 ──

var (
	ErrAgentNotFound         = errors.New("警员不存在")
	ErrBadgeNumberExists     = errors.New("警号已存在")
	ErrGradeNotInAgency      = errors.New("职级不属于该机构")
	ErrAgentTerminated       = errors.New("警员已被开除，状态不可再变更")
	ErrSuspensionNeedsEndsAt = errors.New("停职处分必须指定截止时间")
)

// AgentService 警员与处分记录管理
type AgentService interface {
	Create(ctx context.Context, req *dto.CreateAgentRequest, callerID string) (*model.PoliceAgent, error)
	GetByID(ctx context.Context, id string) (*model.PoliceAgent, error)
	List(ctx context.Context, req *dto.AgentListRequest) ([]model.PoliceAgent, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateAgentRequest, callerID string) (*model.PoliceAgent, error)
	ChangeStatus(ctx context.Context, id, status, callerID string) error
	// IssueDiscipline 签发处分；suspension / termination 同步变更警员状态
	IssueDiscipline(ctx context.Context, agentID string, req *dto.IssueDisciplineRequest, callerID string) (*model.DisciplinaryRecord, error)
	ListDiscipline(ctx context.Context, agentID string) ([]model.DisciplinaryRecord, error)
}

type agentService struct {
	repo     *repository.Repository
	activity ActivityService
	logger   *zap.Logger
}

// NewAgentService 创建 AgentService 实例
func NewAgentService(repo *repository.Repository, activity ActivityService, logger *zap.Logger) AgentService {
	return &agentService{repo: repo, activity: activity, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *agentService) Create(ctx context.Context, req *dto.CreateAgentRequest, callerID string) (*model.PoliceAgent, error) {
	if err := s.checkBadge(ctx, req.BadgeNumber, ""); err != nil {
		return nil, err
	}
	if err := s.checkPlacement(ctx, req.AgencyID, req.GradeID); err != nil {
		return nil, err
	}
	if req.CandidateID != nil {
		if _, err := s.repo.Candidate.GetByID(ctx, *req.CandidateID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCandidateNotFound
			}
			return nil, err
		}
	}

	agent := &model.PoliceAgent{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		BadgeNumber: req.BadgeNumber,
		ServerID:    req.ServerID,
		AgencyID:    req.AgencyID,
		GradeID:     req.GradeID,
		CandidateID: req.CandidateID,
		Status:      model.AgentStatusActive,
		JoinedAt:    req.JoinedAt,
	}
	agent.StampCreated(callerID)

	if err := s.repo.Agent.Create(ctx, agent); err != nil {
		s.logger.Error("创建警员失败", zap.Error(err))
		return nil, err
	}
	s.activity.Record(callerID, ActionCreate, EntityAgent, agent.AgentID, map[string]interface{}{
		"badge_number": agent.BadgeNumber,
		"agency_id":    agent.AgencyID,
	})
	return agent, nil
}

// ────────────────────── Read ──────────────────────

func (s *agentService) GetByID(ctx context.Context, id string) (*model.PoliceAgent, error) {
	agent, err := s.repo.Agent.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAgentNotFound
		}
		s.logger.Error("查询警员失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return agent, nil
}

func (s *agentService) List(ctx context.Context, req *dto.AgentListRequest) ([]model.PoliceAgent, int64, error) {
	filters := &repository.AgentListFilters{
		AgencyID: req.AgencyID,
		GradeID:  req.GradeID,
		Status:   req.Status,
		Keyword:  req.Keyword,
	}
	list, total, err := s.repo.Agent.List(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出警员失败", zap.Error(err))
		return nil, 0, err
	}
	return list, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *agentService) Update(ctx context.Context, id string, req *dto.UpdateAgentRequest, callerID string) (*model.PoliceAgent, error) {
	agent, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.BadgeNumber != nil && *req.BadgeNumber != agent.BadgeNumber {
		if err := s.checkBadge(ctx, *req.BadgeNumber, id); err != nil {
			return nil, err
		}
		agent.BadgeNumber = *req.BadgeNumber
	}

	// 机构或职级任一变化都需重新校验归属
	agencyID, gradeID := agent.AgencyID, agent.GradeID
	if req.AgencyID != nil {
		agencyID = *req.AgencyID
	}
	if req.GradeID != nil {
		gradeID = *req.GradeID
	}
	if agencyID != agent.AgencyID || gradeID != agent.GradeID {
		if err := s.checkPlacement(ctx, agencyID, gradeID); err != nil {
			return nil, err
		}
		agent.AgencyID, agent.GradeID = agencyID, gradeID
		agent.Agency, agent.Grade = nil, nil
	}

	if req.FirstName != nil {
		agent.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		agent.LastName = *req.LastName
	}
	if req.ServerID != nil {
		agent.ServerID = *req.ServerID
	}
	agent.StampUpdated(callerID)

	if err := s.repo.Agent.Update(ctx, agent); err != nil {
		s.logger.Error("更新警员失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	s.activity.Record(callerID, ActionUpdate, EntityAgent, id, nil)
	return agent, nil
}

func (s *agentService) ChangeStatus(ctx context.Context, id, status, callerID string) error {
	agent, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if agent.Status == model.AgentStatusTerminated {
		return ErrAgentTerminated
	}
	if err := s.repo.Agent.UpdateStatus(ctx, id, status, callerID); err != nil {
		s.logger.Error("更新警员状态失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.activity.Record(callerID, ActionStatus, EntityAgent, id, map[string]interface{}{
		"from": agent.Status,
		"to":   status,
	})
	return nil
}

// ────────────────────── Discipline ──────────────────────

func (s *agentService) IssueDiscipline(ctx context.Context, agentID string, req *dto.IssueDisciplineRequest, callerID string) (*model.DisciplinaryRecord, error) {
	agent, err := s.GetByID(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if agent.Status == model.AgentStatusTerminated {
		return nil, ErrAgentTerminated
	}
	if req.Type == model.DisciplineSuspension && (req.EndsAt == nil || !req.EndsAt.After(time.Now())) {
		return nil, ErrSuspensionNeedsEndsAt
	}

	record := &model.DisciplinaryRecord{
		AgentID:   agentID,
		Type:      req.Type,
		Reason:    req.Reason,
		IssuedBy:  callerID,
		CreatedAt: time.Now(),
	}
	if req.Type == model.DisciplineSuspension {
		record.EndsAt = req.EndsAt
	}

	newStatus := ""
	switch req.Type {
	case model.DisciplineSuspension:
		newStatus = model.AgentStatusSuspended
	case model.DisciplineTermination:
		newStatus = model.AgentStatusTerminated
	}

	// 处分记录与状态变更在同一事务内提交
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Disciplinary.Create(ctx, record); err != nil {
			return err
		}
		if newStatus != "" {
			return tx.Agent.UpdateStatus(ctx, agentID, newStatus, callerID)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("签发处分失败", zap.String("agent_id", agentID), zap.Error(err))
		return nil, err
	}

	s.activity.Record(callerID, ActionIssue, EntityDiscipline, record.RecordID, map[string]interface{}{
		"agent_id": agentID,
		"type":     req.Type,
	})
	return record, nil
}

func (s *agentService) ListDiscipline(ctx context.Context, agentID string) ([]model.DisciplinaryRecord, error) {
	if _, err := s.GetByID(ctx, agentID); err != nil {
		return nil, err
	}
	records, err := s.repo.Disciplinary.ListByAgent(ctx, agentID)
	if err != nil {
		s.logger.Error("查询处分记录失败", zap.String("agent_id", agentID), zap.Error(err))
		return nil, err
	}
	return records, nil
}

// ── 内部辅助方法 ──

func (s *agentService) checkBadge(ctx context.Context, badge, selfID string) error {
	existing, err := s.repo.Agent.GetByBadge(ctx, badge)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询警号失败", zap.Error(err))
		return err
	}
	if existing != nil && existing.AgentID != selfID {
		return ErrBadgeNumberExists
	}
	return nil
}

// checkPlacement 校验机构存在且职级属于该机构
func (s *agentService) checkPlacement(ctx context.Context, agencyID, gradeID string) error {
	if _, err := s.repo.Agency.GetByID(ctx, agencyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAgencyNotFound
		}
		return err
	}
	grade, err := s.repo.Grade.GetByID(ctx, gradeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGradeNotFound
		}
		return err
	}
	if grade.AgencyID != agencyID {
		return ErrGradeNotInAgency
	}
	return nil
}
