package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"dhs-academy/backend/config"
	"dhs-academy/backend/internal/repository"
	"dhs-academy/backend/pkg/jwt"
	"dhs-academy/backend/pkg/webhook"
)

// TokenBlacklist Token 黑名单存储（Redis 实现见 pkg/redis）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// Notifier 外发通知（Webhook 实现见 pkg/webhook）
type Notifier interface {
	ClassCreated(evt webhook.ClassCreatedEvent)
	Relay(content string)
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth        AuthService
	User        UserService
	Activity    ActivityService
	Curriculum  CurriculumService
	Candidate   CandidateService
	Class       ClassService
	Agency      AgencyService
	Agent       AgentService
	Message     MessageService
	Competition CompetitionService
	Invitation  InvitationService
	Application ApplicationService
	Export      ExportService
}

// Deps 构造 Service 聚合所需的外部依赖；Blacklist 与 Notifier 可为 nil
type Deps struct {
	Config    *config.Config
	Repo      *repository.Repository
	JWT       *jwt.Manager
	Blacklist TokenBlacklist
	Notifier  Notifier
	Logger    *zap.Logger
}

// NewService 创建 Service 聚合
func NewService(d Deps) *Service {
	notifier := d.Notifier
	if notifier == nil {
		notifier = noopNotifier{}
	}
	activity := NewActivityService(d.Repo, d.Logger)

	return &Service{
		Auth:        NewAuthService(d.Config, d.Repo, d.JWT, d.Blacklist, d.Logger),
		User:        NewUserService(d.Config, d.Repo, activity, d.Logger),
		Activity:    activity,
		Curriculum:  NewCurriculumService(d.Repo, activity, d.Logger),
		Candidate:   NewCandidateService(d.Repo, activity, d.Logger),
		Class:       NewClassService(d.Repo, activity, notifier, d.Logger),
		Agency:      NewAgencyService(d.Repo, activity, d.Logger),
		Agent:       NewAgentService(d.Repo, activity, d.Logger),
		Message:     NewMessageService(d.Repo, notifier, d.Logger),
		Competition: NewCompetitionService(d.Repo, activity, d.Logger),
		Invitation:  NewInvitationService(d.Config, d.Repo, d.JWT, activity, d.Logger),
		Application: NewApplicationService(d.Repo, activity, d.Logger),
		Export:      NewExportService(d.Repo, d.Logger),
	}
}

type noopNotifier struct{}

func (noopNotifier) ClassCreated(webhook.ClassCreatedEvent) {}
func (noopNotifier) Relay(string)                           {}

// formatTime 统一响应中的时间格式
func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}
