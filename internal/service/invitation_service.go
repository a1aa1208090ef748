package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"dhs-academy/backend/config"
	"dhs-academy/backend/internal/dto"
	"dhs-academy/backend/internal/model"
	"dhs-academy/backend/internal/repository"
	"dhs-academy/backend/pkg/credential"
	pkgerrors "dhs-academy/backend/pkg/errors"
	"dhs-academy/backend/pkg/jwt"
)

// ── 邀请模块业务错误 ──

var (
	ErrInvalidInvitation     = errors.New("邀请标识或密码错误")
	ErrInvitationUsed        = errors.New("邀请已被使用")
	ErrCompetitionNotPrivate = errors.New("仅私有竞赛可签发邀请")
	ErrTooManyInvitations    = errors.New("单次签发邀请数量超出上限")
)

// InvitationService 私有竞赛邀请签发与一次性登录
type InvitationService interface {
	// Issue 批量签发邀请，明文密码仅在返回值中出现一次
	Issue(ctx context.Context, competitionID string, req *dto.IssueInvitationsRequest, callerID string) ([]dto.IssuedInvitation, error)
	List(ctx context.Context, competitionID string) ([]model.Invitation, error)
	// Login 校验凭据后以单条条件更新消费邀请，第二次登录必然失败
	Login(ctx context.Context, req *dto.InvitationLoginRequest) (*dto.InvitationLoginResponse, error)
}

type invitationService struct {
	cfg      *config.Config
	repo     *repository.Repository
	jwtMgr   *jwt.Manager
	activity ActivityService
	logger   *zap.Logger
	hashCost int
	now      func() time.Time
}

// NewInvitationService 创建 InvitationService 实例
func NewInvitationService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	activity ActivityService,
	logger *zap.Logger,
) InvitationService {
	return &invitationService{
		cfg:      cfg,
		repo:     repo,
		jwtMgr:   jwtMgr,
		activity: activity,
		logger:   logger,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// ────────────────────── Issue ──────────────────────

func (s *invitationService) Issue(ctx context.Context, competitionID string, req *dto.IssueInvitationsRequest, callerID string) ([]dto.IssuedInvitation, error) {
	if limit := s.cfg.Competition.MaxInvitations; limit > 0 && len(req.Invitees) > limit {
		return nil, ErrTooManyInvitations
	}

	comp, err := s.repo.Competition.GetByID(ctx, competitionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompetitionNotFound
		}
		s.logger.Error("查询竞赛失败", zap.String("id", competitionID), zap.Error(err))
		return nil, err
	}
	if comp.Visibility != model.CompetitionPrivate {
		return nil, ErrCompetitionNotPrivate
	}

	invitations := make([]model.Invitation, 0, len(req.Invitees))
	passwords := make([]string, 0, len(req.Invitees))
	for _, in := range req.Invitees {
		identifier, err := credential.Identifier(s.cfg.Competition.IdentifierPrefix)
		if err != nil {
			s.logger.Error("生成邀请标识失败", zap.Error(err))
			return nil, err
		}
		password, err := credential.Password(s.cfg.Competition.PasswordLength)
		if err != nil {
			s.logger.Error("生成邀请密码失败", zap.Error(err))
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
		if err != nil {
			s.logger.Error("密码哈希失败", zap.Error(err))
			return nil, err
		}

		inv := model.Invitation{
			CompetitionID:   competitionID,
			CandidateName:   in.Name,
			Email:           in.Email,
			LoginIdentifier: identifier,
			PasswordHash:    string(hash),
			Status:          model.InvitationCreated,
		}
		inv.StampCreated(callerID)
		invitations = append(invitations, inv)
		passwords = append(passwords, password)
	}

	if err := s.repo.Invitation.BatchCreate(ctx, invitations); err != nil {
		s.logger.Error("批量签发邀请失败", zap.String("competition_id", competitionID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.IssuedInvitation, 0, len(invitations))
	for i, inv := range invitations {
		result = append(result, dto.IssuedInvitation{
			InvitationID:    inv.InvitationID,
			CandidateName:   inv.CandidateName,
			Email:           inv.Email,
			LoginIdentifier: inv.LoginIdentifier,
			Password:        passwords[i],
		})
	}

	s.activity.Record(callerID, ActionIssue, EntityInvitation, competitionID, map[string]interface{}{
		"count": len(result),
	})
	return result, nil
}

func (s *invitationService) List(ctx context.Context, competitionID string) ([]model.Invitation, error) {
	list, err := s.repo.Invitation.ListByCompetition(ctx, competitionID)
	if err != nil {
		s.logger.Error("列出邀请失败", zap.String("competition_id", competitionID), zap.Error(err))
		return nil, err
	}
	return list, nil
}

// ────────────────────── Login ──────────────────────

func (s *invitationService) Login(ctx context.Context, req *dto.InvitationLoginRequest) (*dto.InvitationLoginResponse, error) {
	inv, err := s.repo.Invitation.GetByIdentifier(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidInvitation
		}
		s.logger.Error("查询邀请失败", zap.Error(err))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(inv.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidInvitation
	}
	if inv.Status != model.InvitationCreated {
		return nil, ErrInvitationUsed
	}

	// 竞赛未开放时不消费邀请
	comp, err := s.repo.Competition.GetByID(ctx, inv.CompetitionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, err
	}
	now := s.now()
	if comp.Status != model.CompetitionStatusOpen ||
		(comp.OpensAt != nil && now.Before(*comp.OpensAt)) ||
		(comp.ClosesAt != nil && now.After(*comp.ClosesAt)) {
		return nil, ErrCompetitionNotOpen
	}

	// 单条条件更新 WHERE status='created'，并发登录只有一个成功
	if err := s.repo.Invitation.MarkUsed(ctx, inv.InvitationID, now); err != nil {
		if errors.Is(err, pkgerrors.ErrStaleState) {
			return nil, ErrInvitationUsed
		}
		s.logger.Error("消费邀请失败", zap.String("id", inv.InvitationID), zap.Error(err))
		return nil, err
	}

	token, err := s.jwtMgr.GenerateParticipantToken(inv.CompetitionID, inv.InvitationID)
	if err != nil {
		s.logger.Error("生成参赛 Token 失败", zap.Error(err))
		return nil, err
	}

	return &dto.InvitationLoginResponse{
		ParticipantToken: token,
		ExpiresIn:        int(s.jwtMgr.ParticipantTTL().Seconds()),
		CompetitionID:    inv.CompetitionID,
		CandidateName:    inv.CandidateName,
	}, nil
}
