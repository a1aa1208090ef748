package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"dhs-academy/backend/internal/dto"
	"dhs-academy/backend/internal/model"
	"dhs-academy/backend/internal/repository"
)

// 审计动作
const (
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionScore   = "score"
	ActionCertify = "certify"
	ActionAccept  = "accept"
	ActionReject  = "reject"
	ActionIssue   = "issue"
	ActionStatus  = "status"
)

// 审计实体类型
const (
	EntityUser          = "user"
	EntityCandidate     = "candidate"
	EntityModule        = "module"
	EntitySubModule     = "sub_module"
	EntityClass         = "class"
	EntityAgency        = "agency"
	EntityGrade         = "grade"
	EntityAgent         = "police_agent"
	EntityDiscipline    = "disciplinary_record"
	EntityCompetition   = "competition"
	EntityParticipation = "participation"
	EntityInvitation    = "invitation"
	EntityForm          = "application_form"
	EntityApplication   = "application"
)

const activityWriteTimeout = 5 * time.Second

// ActivityService 审计日志业务接口
type ActivityService interface {
	// Record 异步写入审计日志，失败只记录日志，不影响调用方
	Record(userID, action, entityType, entityID string, details map[string]interface{})
	List(ctx context.Context, req *dto.ActivityLogListRequest) ([]model.ActivityLog, int64, error)
	// Wait 等待在途写入完成（优雅关闭与测试使用）
	Wait()
}

type activityService struct {
	repo   *repository.Repository
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewActivityService 创建 ActivityService 实例
func NewActivityService(repo *repository.Repository, logger *zap.Logger) ActivityService {
	return &activityService{repo: repo, logger: logger}
}

func (s *activityService) Record(userID, action, entityType, entityID string, details map[string]interface{}) {
	entry := &model.ActivityLog{
		Action:     action,
		EntityType: entityType,
		Details:    datatypes.JSONMap(details),
		CreatedAt:  time.Now(),
	}
	if userID != "" {
		entry.UserID = &userID
	}
	if entityID != "" {
		entry.EntityID = &entityID
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		// 请求上下文可能已结束，使用独立超时上下文
		ctx, cancel := context.WithTimeout(context.Background(), activityWriteTimeout)
		defer cancel()
		if err := s.repo.ActivityLog.Create(ctx, entry); err != nil {
			s.logger.Warn("写入审计日志失败",
				zap.String("action", action),
				zap.String("entity_type", entityType),
				zap.Error(err),
			)
		}
	}()
}

func (s *activityService) List(ctx context.Context, req *dto.ActivityLogListRequest) ([]model.ActivityLog, int64, error) {
	filters := &repository.ActivityLogFilters{
		UserID:     req.UserID,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		Since:      req.Since,
	}
	logs, total, err := s.repo.ActivityLog.List(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询审计日志失败", zap.Error(err))
		return nil, 0, err
	}
	return logs, total, nil
}

func (s *activityService) Wait() {
	s.wg.Wait()
}
