package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User          UserRepository
	LoginAttempt  LoginAttemptRepository
	ActivityLog   ActivityLogRepository
	Candidate     CandidateRepository
	Curriculum    CurriculumRepository
	Score         ScoreRepository
	Appreciation  AppreciationRepository
	Class         ClassRepository
	Agency        AgencyRepository
	Grade         GradeRepository
	Agent         AgentRepository
	Disciplinary  DisciplinaryRepository
	Message       MessageRepository
	Competition   CompetitionRepository
	Participation ParticipationRepository
	Invitation    InvitationRepository
	Form          FormRepository
	Application   ApplicationRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:            db,
		User:          NewUserRepo(db),
		LoginAttempt:  NewLoginAttemptRepo(db),
		ActivityLog:   NewActivityLogRepo(db),
		Candidate:     NewCandidateRepo(db),
		Curriculum:    NewCurriculumRepo(db),
		Score:         NewScoreRepo(db),
		Appreciation:  NewAppreciationRepo(db),
		Class:         NewClassRepo(db),
		Agency:        NewAgencyRepo(db),
		Grade:         NewGradeRepo(db),
		Agent:         NewAgentRepo(db),
		Disciplinary:  NewDisciplinaryRepo(db),
		Message:       NewMessageRepo(db),
		Competition:   NewCompetitionRepo(db),
		Participation: NewParticipationRepo(db),
		Invitation:    NewInvitationRepo(db),
		Form:          NewFormRepo(db),
		Application:   NewApplicationRepo(db),
	}
}

// WithTx 在同一数据库事务中执行 fn，fn 返回错误时整体回滚
// 未绑定 *gorm.DB 的聚合（测试中手工组装）直接以自身执行 fn
func (r *Repository) WithTx(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
