package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"dhs-academy/backend/internal/dto"
	"dhs-academy/backend/internal/model"
	"dhs-academy/backend/internal/repository"
	pkgerrors "dhs-academy/backend/pkg/errors"
)

// ── 竞赛模块业务错误 ──

var (
	ErrCompetitionNotFound          = errors.New("竞赛不存在")
	ErrCompetitionNotDraft          = errors.New("竞赛已发布，无法修改题目")
	ErrCompetitionNotOpen           = errors.New("竞赛未开放或已截止")
	ErrCompetitionInvalidStatus     = errors.New("竞赛状态变更不合法")
	ErrCompetitionNoQuestions       = errors.New("竞赛没有题目，无法发布")
	ErrCompetitionInvalidWindow     = errors.New("竞赛开放时间必须早于截止时间")
	ErrQuestionNotFound             = errors.New("题目不存在")
	ErrQuestionInvalid              = errors.New("题目配置不合法")
	ErrCorrectionOutOfRange         = errors.New("人工给分超出题目分值范围")
	ErrParticipationNotFound        = errors.New("参赛记录不存在")
	ErrParticipationAlreadyResolved = errors.New("参赛记录已批改")
	ErrParticipantRequired          = errors.New("私有竞赛需要邀请登录")
	ErrAlreadyParticipated          = errors.New("该邀请已提交过答卷")
	ErrParticipantNameRequired      = errors.New("参赛者姓名不能为空")
)

// Participant 私有竞赛参赛身份（来自参赛 Token）
type Participant struct {
	CompetitionID string
	InvitationID  string
}

// CompetitionService 竞赛、题目、答卷与批改
type CompetitionService interface {
	Create(ctx context.Context, req *dto.CreateCompetitionRequest, callerID string) (*model.Competition, error)
	GetByID(ctx context.Context, id string) (*model.Competition, error)
	List(ctx context.Context, req *dto.CompetitionListRequest) ([]model.Competition, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateCompetitionRequest, callerID string) (*model.Competition, error)
	Delete(ctx context.Context, id string, callerID string) error
	// ChangeStatus draft → open → closed
	ChangeStatus(ctx context.Context, id, status, callerID string) (*model.Competition, error)

	AddQuestion(ctx context.Context, competitionID string, req *dto.QuestionRequest, callerID string) (*model.Question, error)
	UpdateQuestion(ctx context.Context, questionID string, req *dto.QuestionRequest, callerID string) (*model.Question, error)
	DeleteQuestion(ctx context.Context, questionID string, callerID string) error

	ListParticipations(ctx context.Context, competitionID string, req *dto.ParticipationListRequest) ([]model.Participation, int64, error)
	GetParticipation(ctx context.Context, id string) (*model.Participation, error)
	// Accept pending → accepted，合并人工给分并持久化总分；入学测试同事务创建候选人
	Accept(ctx context.Context, id string, req *dto.AcceptParticipationRequest, callerID string) (*model.Participation, error)
	// Reject pending → rejected，不修改分数
	Reject(ctx context.Context, id string, callerID string) (*model.Participation, error)

	// ── 公开接口 ──

	ListOpenPublic(ctx context.Context) ([]dto.PublicCompetitionResponse, error)
	// GetPublic 返回不含答案的竞赛；私有竞赛要求参赛身份匹配
	GetPublic(ctx context.Context, id string, participant *Participant) (*dto.PublicCompetitionResponse, error)
	Submit(ctx context.Context, id string, req *dto.SubmitParticipationRequest, participant *Participant) (*dto.ParticipationResultResponse, error)
	// GetResult 批改前仅返回状态
	GetResult(ctx context.Context, participationID string) (*dto.ParticipationResultResponse, error)
}

type competitionService struct {
	repo     *repository.Repository
	activity ActivityService
	logger   *zap.Logger
	now      func() time.Time
}

// NewCompetitionService 创建 CompetitionService 实例
func NewCompetitionService(repo *repository.Repository, activity ActivityService, logger *zap.Logger) CompetitionService {
	return &competitionService{repo: repo, activity: activity, logger: logger, now: time.Now}
}

// ────────────────────── Competition CRUD ──────────────────────

func (s *competitionService) Create(ctx context.Context, req *dto.CreateCompetitionRequest, callerID string) (*model.Competition, error) {
	if req.OpensAt != nil && req.ClosesAt != nil && !req.OpensAt.Before(*req.ClosesAt) {
		return nil, ErrCompetitionInvalidWindow
	}

	comp := &model.Competition{
		Title:          req.Title,
		Description:    req.Description,
		Visibility:     req.Visibility,
		IsEntryTest:    req.IsEntryTest,
		Status:         model.CompetitionStatusDraft,
		PassPercentage: 50,
		OpensAt:        req.OpensAt,
		ClosesAt:       req.ClosesAt,
	}
	if req.PassPercentage != nil {
		comp.PassPercentage = *req.PassPercentage
	}
	comp.StampCreated(callerID)

	if err := s.repo.Competition.Create(ctx, comp); err != nil {
		s.logger.Error("创建竞赛失败", zap.Error(err))
		return nil, err
	}
	s.activity.Record(callerID, ActionCreate, EntityCompetition, comp.CompetitionID, map[string]interface{}{"title": comp.Title})
	return comp, nil
}

func (s *competitionService) GetByID(ctx context.Context, id string) (*model.Competition, error) {
	comp, err := s.repo.Competition.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompetitionNotFound
		}
		s.logger.Error("查询竞赛失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return comp, nil
}

func (s *competitionService) List(ctx context.Context, req *dto.CompetitionListRequest) ([]model.Competition, int64, error) {
	filters := &repository.CompetitionListFilters{Status: req.Status, Visibility: req.Visibility, Keyword: req.Keyword}
	list, total, err := s.repo.Competition.List(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出竞赛失败", zap.Error(err))
		return nil, 0, err
	}
	return list, total, nil
}

func (s *competitionService) Update(ctx context.Context, id string, req *dto.UpdateCompetitionRequest, callerID string) (*model.Competition, error) {
	comp, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		comp.Title = *req.Title
	}
	if req.Description != nil {
		comp.Description = *req.Description
	}
	if req.Visibility != nil {
		comp.Visibility = *req.Visibility
	}
	if req.IsEntryTest != nil {
		comp.IsEntryTest = *req.IsEntryTest
	}
	if req.PassPercentage != nil {
		comp.PassPercentage = *req.PassPercentage
	}
	if req.OpensAt != nil {
		comp.OpensAt = req.OpensAt
	}
	if req.ClosesAt != nil {
		comp.ClosesAt = req.ClosesAt
	}
	if comp.OpensAt != nil && comp.ClosesAt != nil && !comp.OpensAt.Before(*comp.ClosesAt) {
		return nil, ErrCompetitionInvalidWindow
	}
	comp.StampUpdated(callerID)

	if err := s.repo.Competition.Update(ctx, comp); err != nil {
		s.logger.Error("更新竞赛失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	s.activity.Record(callerID, ActionUpdate, EntityCompetition, id, nil)
	return comp, nil
}

func (s *competitionService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Competition.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除竞赛失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.activity.Record(callerID, ActionDelete, EntityCompetition, id, nil)
	return nil
}

func (s *competitionService) ChangeStatus(ctx context.Context, id, status, callerID string) (*model.Competition, error) {
	comp, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch {
	case comp.Status == model.CompetitionStatusDraft && status == model.CompetitionStatusOpen:
		if len(comp.Questions) == 0 {
			return nil, ErrCompetitionNoQuestions
		}
	case comp.Status == model.CompetitionStatusOpen && status == model.CompetitionStatusClosed:
	default:
		return nil, ErrCompetitionInvalidStatus
	}

	comp.Status = status
	comp.StampUpdated(callerID)
	if err := s.repo.Competition.Update(ctx, comp); err != nil {
		s.logger.Error("更新竞赛状态失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	s.activity.Record(callerID, ActionStatus, EntityCompetition, id, map[string]interface{}{"status": status})
	return comp, nil
}

// ────────────────────── Questions ──────────────────────

func (s *competitionService) AddQuestion(ctx context.Context, competitionID string, req *dto.QuestionRequest, callerID string) (*model.Question, error) {
	comp, err := s.GetByID(ctx, competitionID)
	if err != nil {
		return nil, err
	}
	if comp.Status != model.CompetitionStatusDraft {
		return nil, ErrCompetitionNotDraft
	}

	q := &model.Question{CompetitionID: competitionID}
	if err := applyQuestion(q, req); err != nil {
		return nil, err
	}
	q.StampCreated(callerID)

	if err := s.repo.Competition.CreateQuestion(ctx, q); err != nil {
		s.logger.Error("创建题目失败", zap.Error(err))
		return nil, err
	}
	return q, nil
}

func (s *competitionService) UpdateQuestion(ctx context.Context, questionID string, req *dto.QuestionRequest, callerID string) (*model.Question, error) {
	q, err := s.getDraftQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if err := applyQuestion(q, req); err != nil {
		return nil, err
	}
	q.StampUpdated(callerID)

	if err := s.repo.Competition.UpdateQuestion(ctx, q); err != nil {
		s.logger.Error("更新题目失败", zap.String("id", questionID), zap.Error(err))
		return nil, err
	}
	return q, nil
}

func (s *competitionService) DeleteQuestion(ctx context.Context, questionID string, callerID string) error {
	if _, err := s.getDraftQuestion(ctx, questionID); err != nil {
		return err
	}
	if err := s.repo.Competition.DeleteQuestion(ctx, questionID); err != nil {
		s.logger.Error("删除题目失败", zap.String("id", questionID), zap.Error(err))
		return err
	}
	return nil
}

func (s *competitionService) getDraftQuestion(ctx context.Context, questionID string) (*model.Question, error) {
	q, err := s.repo.Competition.GetQuestion(ctx, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	comp, err := s.GetByID(ctx, q.CompetitionID)
	if err != nil {
		return nil, err
	}
	if comp.Status != model.CompetitionStatusDraft {
		return nil, ErrCompetitionNotDraft
	}
	return q, nil
}

// applyQuestion 校验并写入题目配置
func applyQuestion(q *model.Question, req *dto.QuestionRequest) error {
	switch req.Type {
	case model.QuestionSingleChoice, model.QuestionMultipleChoice:
		if len(req.Options) < 2 || len(req.CorrectOptions) == 0 {
			return ErrQuestionInvalid
		}
		if req.Type == model.QuestionSingleChoice && len(dedupeSorted(req.CorrectOptions)) != 1 {
			return ErrQuestionInvalid
		}
	case model.QuestionTrueFalse:
		if len(req.Options) == 0 {
			req.Options = []string{"Vrai", "Faux"}
		}
		if len(req.Options) != 2 || len(dedupeSorted(req.CorrectOptions)) != 1 {
			return ErrQuestionInvalid
		}
	}
	for _, idx := range req.CorrectOptions {
		if idx < 0 || idx >= len(req.Options) {
			return ErrQuestionInvalid
		}
	}

	q.Position = req.Position
	q.Type = req.Type
	q.Prompt = req.Prompt
	q.Options = req.Options
	q.CorrectOptions = req.CorrectOptions
	q.CorrectText = req.CorrectText
	q.MaxPoints = req.MaxPoints
	return nil
}

// ────────────────────── Correction ──────────────────────

func (s *competitionService) ListParticipations(ctx context.Context, competitionID string, req *dto.ParticipationListRequest) ([]model.Participation, int64, error) {
	if _, err := s.GetByID(ctx, competitionID); err != nil {
		return nil, 0, err
	}
	list, total, err := s.repo.Participation.ListByCompetition(ctx, competitionID, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出参赛记录失败", zap.String("competition_id", competitionID), zap.Error(err))
		return nil, 0, err
	}
	return list, total, nil
}

func (s *competitionService) GetParticipation(ctx context.Context, id string) (*model.Participation, error) {
	p, err := s.repo.Participation.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParticipationNotFound
		}
		s.logger.Error("查询参赛记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (s *competitionService) Accept(ctx context.Context, id string, req *dto.AcceptParticipationRequest, callerID string) (*model.Participation, error) {
	p, err := s.GetParticipation(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != model.ParticipationPending {
		return nil, ErrParticipationAlreadyResolved
	}

	comp, err := s.GetByID(ctx, p.CompetitionID)
	if err != nil {
		return nil, err
	}

	answers, total, err := ResolveCorrection(p.Answers, req.Overrides, comp.Questions)
	if err != nil {
		return nil, err
	}

	now := s.now()
	p.Status = model.ParticipationAccepted
	p.Answers = answers
	p.TotalScore = total
	p.CorrectedBy = &callerID
	p.CorrectedAt = &now

	createCandidate := comp.IsEntryTest && (req.CreateCandidate == nil || *req.CreateCandidate)

	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Participation.Resolve(ctx, p); err != nil {
			return err
		}
		if !createCandidate {
			return nil
		}
		first, last := splitName(p.ParticipantName)
		c := &model.Candidate{
			FirstName: first,
			LastName:  last,
			ServerID:  p.ServerID,
			Email:     p.Email,
			Status:    model.CandidateStatusActive,
		}
		c.StampCreated(callerID)
		if err := tx.Candidate.Create(ctx, c); err != nil {
			return err
		}
		if err := tx.Participation.SetCandidate(ctx, p.ParticipationID, c.CandidateID); err != nil {
			return err
		}
		p.CandidateID = &c.CandidateID
		return nil
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrStaleState) {
			return nil, ErrParticipationAlreadyResolved
		}
		s.logger.Error("批改参赛记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	details := map[string]interface{}{"total_score": total, "max_score": p.MaxScore}
	if p.CandidateID != nil {
		details["candidate_id"] = *p.CandidateID
	}
	s.activity.Record(callerID, ActionAccept, EntityParticipation, id, details)
	return p, nil
}

func (s *competitionService) Reject(ctx context.Context, id string, callerID string) (*model.Participation, error) {
	p, err := s.GetParticipation(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != model.ParticipationPending {
		return nil, ErrParticipationAlreadyResolved
	}

	now := s.now()
	p.Status = model.ParticipationRejected
	p.CorrectedBy = &callerID
	p.CorrectedAt = &now

	// answers 与 total_score 原样写回
	if err := s.repo.Participation.Resolve(ctx, p); err != nil {
		if errors.Is(err, pkgerrors.ErrStaleState) {
			return nil, ErrParticipationAlreadyResolved
		}
		s.logger.Error("驳回参赛记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	s.activity.Record(callerID, ActionReject, EntityParticipation, id, nil)
	return p, nil
}

// ────────────────────── Public ──────────────────────

func (s *competitionService) ListOpenPublic(ctx context.Context) ([]dto.PublicCompetitionResponse, error) {
	list, err := s.repo.Competition.ListOpenPublic(ctx, s.now())
	if err != nil {
		s.logger.Error("查询公开竞赛失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.PublicCompetitionResponse, 0, len(list))
	for i := range list {
		resp := toPublicCompetition(&list[i], false)
		result = append(result, *resp)
	}
	return result, nil
}

func (s *competitionService) GetPublic(ctx context.Context, id string, participant *Participant) (*dto.PublicCompetitionResponse, error) {
	comp, err := s.openCompetition(ctx, id, participant)
	if err != nil {
		return nil, err
	}
	return toPublicCompetition(comp, true), nil
}

func (s *competitionService) Submit(ctx context.Context, id string, req *dto.SubmitParticipationRequest, participant *Participant) (*dto.ParticipationResultResponse, error) {
	comp, err := s.openCompetition(ctx, id, participant)
	if err != nil {
		return nil, err
	}

	p := &model.Participation{
		CompetitionID:   comp.CompetitionID,
		ParticipantName: strings.TrimSpace(req.ParticipantName),
		Email:           req.Email,
		ServerID:        req.ServerID,
		MaxScore:        comp.MaxScore(),
		Status:          model.ParticipationPending,
		SubmittedAt:     s.now(),
	}

	if comp.Visibility == model.CompetitionPrivate {
		// 每个邀请仅允许一份答卷
		if _, err := s.repo.Participation.GetByInvitation(ctx, participant.InvitationID); err == nil {
			return nil, ErrAlreadyParticipated
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		inv, err := s.repo.Invitation.GetByID(ctx, participant.InvitationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParticipantRequired
			}
			return nil, err
		}
		p.InvitationID = &inv.InvitationID
		p.ParticipantName = inv.CandidateName
		if p.Email == nil {
			p.Email = inv.Email
		}
	}
	if p.ParticipantName == "" {
		return nil, ErrParticipantNameRequired
	}

	answers, total := GradeSubmission(comp.Questions, req.Answers)
	p.Answers = answers
	p.TotalScore = total

	if err := s.repo.Participation.Create(ctx, p); err != nil {
		// 并发提交时预检查均通过，由 invitation_id 唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyParticipated
		}
		s.logger.Error("提交答卷失败", zap.String("competition_id", id), zap.Error(err))
		return nil, err
	}

	return &dto.ParticipationResultResponse{
		ParticipationID: p.ParticipationID,
		CompetitionID:   p.CompetitionID,
		ParticipantName: p.ParticipantName,
		Status:          p.Status,
	}, nil
}

func (s *competitionService) GetResult(ctx context.Context, participationID string) (*dto.ParticipationResultResponse, error) {
	p, err := s.GetParticipation(ctx, participationID)
	if err != nil {
		return nil, err
	}

	resp := &dto.ParticipationResultResponse{
		ParticipationID: p.ParticipationID,
		CompetitionID:   p.CompetitionID,
		ParticipantName: p.ParticipantName,
		Status:          p.Status,
	}
	if p.Status == model.ParticipationAccepted {
		resp.TotalScore = p.TotalScore
		resp.MaxScore = p.MaxScore
		resp.Percentage = CompetitionPercentage(p.TotalScore, p.MaxScore)
		if p.Competition != nil {
			passed := resp.Percentage >= p.Competition.PassPercentage
			resp.Passed = &passed
		}
	}
	return resp, nil
}

// openCompetition 校验竞赛处于开放窗口内，私有竞赛需匹配参赛身份
func (s *competitionService) openCompetition(ctx context.Context, id string, participant *Participant) (*model.Competition, error) {
	comp, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if comp.Status != model.CompetitionStatusOpen ||
		(comp.OpensAt != nil && now.Before(*comp.OpensAt)) ||
		(comp.ClosesAt != nil && now.After(*comp.ClosesAt)) {
		return nil, ErrCompetitionNotOpen
	}
	if comp.Visibility == model.CompetitionPrivate &&
		(participant == nil || participant.CompetitionID != comp.CompetitionID) {
		return nil, ErrParticipantRequired
	}
	return comp, nil
}

func toPublicCompetition(c *model.Competition, withQuestions bool) *dto.PublicCompetitionResponse {
	resp := &dto.PublicCompetitionResponse{
		CompetitionID: c.CompetitionID,
		Title:         c.Title,
		Description:   c.Description,
		Visibility:    c.Visibility,
		IsEntryTest:   c.IsEntryTest,
		ClosesAt:      c.ClosesAt,
		MaxScore:      c.MaxScore(),
	}
	if withQuestions {
		resp.Questions = make([]dto.PublicQuestion, 0, len(c.Questions))
		for _, q := range c.Questions {
			resp.Questions = append(resp.Questions, dto.PublicQuestion{
				QuestionID: q.QuestionID,
				Position:   q.Position,
				Type:       q.Type,
				Prompt:     q.Prompt,
				Options:    q.Options,
				MaxPoints:  q.MaxPoints,
			})
		}
	}
	return resp
}

// splitName 将 "名 姓..." 拆为名与姓
func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
