package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"dhs-academy/backend/internal/dto"
	"dhs-academy/backend/internal/model"
	"dhs-academy/backend/internal/repository"
	pkgerrors "dhs-academy/backend/pkg/errors"
	"dhs-academy/backend/pkg/webhook"
)

// ── 班级模块业务错误 ──

var (
	ErrClassNotFound           = errors.New("班级不存在")
	ErrClassNotActive          = errors.New("班级已结束，无法修改")
	ErrClassInvalidStatus      = errors.New("班级状态变更不合法")
	ErrInstructorNotFound      = errors.New("指定的讲师不存在或已停用")
	ErrCandidateAlreadyInClass = errors.New("候选人已在班级中")
	ErrCandidateNotInClass     = errors.New("候选人不在班级中")
)

// ClassService 班级管理
type ClassService interface {
	Create(ctx context.Context, req *dto.CreateClassRequest, callerID string) (*model.Class, error)
	GetByID(ctx context.Context, id string) (*model.Class, error)
	List(ctx context.Context, req *dto.ClassListRequest) ([]model.Class, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateClassRequest, callerID string) (*model.Class, error)
	Delete(ctx context.Context, id string, callerID string) error
	AddCandidate(ctx context.Context, id, candidateID, callerID string) (*model.Class, error)
	RemoveCandidate(ctx context.Context, id, candidateID, callerID string) (*model.Class, error)
	// ChangeStatus 仅允许 active → completed | cancelled
	ChangeStatus(ctx context.Context, id, status, callerID string) (*model.Class, error)
}

type classService struct {
	repo     *repository.Repository
	activity ActivityService
	notifier Notifier
	logger   *zap.Logger
}

// NewClassService 创建 ClassService 实例
func NewClassService(repo *repository.Repository, activity ActivityService, notifier Notifier, logger *zap.Logger) ClassService {
	return &classService{repo: repo, activity: activity, notifier: notifier, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *classService) Create(ctx context.Context, req *dto.CreateClassRequest, callerID string) (*model.Class, error) {
	if err := s.checkInstructor(ctx, req.InstructorID); err != nil {
		return nil, err
	}

	// 去重并保持顺序
	ids := make([]string, 0, len(req.CandidateIDs))
	seen := make(map[string]struct{}, len(req.CandidateIDs))
	for _, id := range req.CandidateIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		if err := s.checkCandidate(ctx, id); err != nil {
			return nil, err
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	class := &model.Class{
		Name:         req.Name,
		Description:  req.Description,
		InstructorID: req.InstructorID,
		CandidateIDs: ids,
		Status:       model.ClassStatusActive,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
	}
	class.StampCreated(callerID)

	if err := s.repo.Class.Create(ctx, class); err != nil {
		s.logger.Error("创建班级失败", zap.Error(err))
		return nil, err
	}

	s.activity.Record(callerID, ActionCreate, EntityClass, class.ClassID, map[string]interface{}{
		"name":            class.Name,
		"candidate_count": len(ids),
	})
	s.notifier.ClassCreated(webhook.ClassCreatedEvent{
		ClassID:        class.ClassID,
		Name:           class.Name,
		InstructorID:   class.InstructorID,
		CandidateCount: len(ids),
		CreatedAt:      class.CreatedAt,
	})
	return class, nil
}

// ────────────────────── Read ──────────────────────

func (s *classService) GetByID(ctx context.Context, id string) (*model.Class, error) {
	class, err := s.repo.Class.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		s.logger.Error("查询班级失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return class, nil
}

func (s *classService) List(ctx context.Context, req *dto.ClassListRequest) ([]model.Class, int64, error) {
	filters := &repository.ClassListFilters{InstructorID: req.InstructorID, Status: req.Status}
	list, total, err := s.repo.Class.List(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出班级失败", zap.Error(err))
		return nil, 0, err
	}
	return list, total, nil
}

// ────────────────────── Update / Delete ──────────────────────

func (s *classService) Update(ctx context.Context, id string, req *dto.UpdateClassRequest, callerID string) (*model.Class, error) {
	class, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if class.Status != model.ClassStatusActive {
		return nil, ErrClassNotActive
	}

	if req.Name != nil {
		class.Name = *req.Name
	}
	if req.Description != nil {
		class.Description = *req.Description
	}
	if req.InstructorID != nil && *req.InstructorID != class.InstructorID {
		if err := s.checkInstructor(ctx, *req.InstructorID); err != nil {
			return nil, err
		}
		class.InstructorID = *req.InstructorID
		class.Instructor = nil
	}
	if req.StartDate != nil {
		class.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		class.EndDate = req.EndDate
	}
	class.StampUpdated(callerID)

	if err := s.repo.Class.Update(ctx, class); err != nil {
		s.logger.Error("更新班级失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	s.activity.Record(callerID, ActionUpdate, EntityClass, id, nil)
	return class, nil
}

func (s *classService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Class.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除班级失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.activity.Record(callerID, ActionDelete, EntityClass, id, nil)
	return nil
}

// ────────────────────── Members ──────────────────────

func (s *classService) AddCandidate(ctx context.Context, id, candidateID, callerID string) (*model.Class, error) {
	class, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if class.Status != model.ClassStatusActive {
		return nil, ErrClassNotActive
	}
	if class.HasCandidate(candidateID) {
		return nil, ErrCandidateAlreadyInClass
	}
	if err := s.checkCandidate(ctx, candidateID); err != nil {
		return nil, err
	}

	ids := append(append([]string{}, class.CandidateIDs...), candidateID)
	if err := s.repo.Class.SetCandidates(ctx, id, ids, callerID); err != nil {
		s.logger.Error("更新班级成员失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	class.CandidateIDs = ids

	s.activity.Record(callerID, ActionUpdate, EntityClass, id, map[string]interface{}{"added": candidateID})
	return class, nil
}

func (s *classService) RemoveCandidate(ctx context.Context, id, candidateID, callerID string) (*model.Class, error) {
	class, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if class.Status != model.ClassStatusActive {
		return nil, ErrClassNotActive
	}
	if !class.HasCandidate(candidateID) {
		return nil, ErrCandidateNotInClass
	}

	ids := make([]string, 0, len(class.CandidateIDs))
	for _, cid := range class.CandidateIDs {
		if cid != candidateID {
			ids = append(ids, cid)
		}
	}
	if err := s.repo.Class.SetCandidates(ctx, id, ids, callerID); err != nil {
		s.logger.Error("更新班级成员失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	class.CandidateIDs = ids

	s.activity.Record(callerID, ActionUpdate, EntityClass, id, map[string]interface{}{"removed": candidateID})
	return class, nil
}

// ────────────────────── Status ──────────────────────

func (s *classService) ChangeStatus(ctx context.Context, id, status, callerID string) (*model.Class, error) {
	if status != model.ClassStatusCompleted && status != model.ClassStatusCancelled {
		return nil, ErrClassInvalidStatus
	}
	class, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if class.Status != model.ClassStatusActive {
		return nil, ErrClassInvalidStatus
	}

	if err := s.repo.Class.UpdateStatus(ctx, id, model.ClassStatusActive, status, callerID); err != nil {
		if errors.Is(err, pkgerrors.ErrStaleState) {
			return nil, ErrClassInvalidStatus
		}
		s.logger.Error("更新班级状态失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	class.Status = status

	s.activity.Record(callerID, ActionStatus, EntityClass, id, map[string]interface{}{"status": status})
	return class, nil
}

// ── 内部辅助方法 ──

func (s *classService) checkInstructor(ctx context.Context, userID string) error {
	u, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInstructorNotFound
		}
		s.logger.Error("查询讲师失败", zap.String("id", userID), zap.Error(err))
		return err
	}
	if !u.IsActive {
		return ErrInstructorNotFound
	}
	return nil
}

func (s *classService) checkCandidate(ctx context.Context, candidateID string) error {
	if _, err := s.repo.Candidate.GetByID(ctx, candidateID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCandidateNotFound
		}
		s.logger.Error("查询候选人失败", zap.String("id", candidateID), zap.Error(err))
		return err
	}
	return nil
}
