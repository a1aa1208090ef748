package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"dhs-academy/backend/internal/model"
)

// CompetitionListFilters 竞赛列表筛选条件
type CompetitionListFilters struct {
	Status     string
	Visibility string
	Keyword    string
}

// CompetitionRepository 竞赛与题目数据访问接口
type CompetitionRepository interface {
	Create(ctx context.Context, comp *model.Competition) error
	// GetByID 同时按 position 预加载题目
	GetByID(ctx context.Context, id string) (*model.Competition, error)
	Update(ctx context.Context, comp *model.Competition) error
	Delete(ctx context.Context, id string, deletedBy string) error
	List(ctx context.Context, filters *CompetitionListFilters, offset, limit int) ([]model.Competition, int64, error)
	// ListOpenPublic 当前时间可参加的公开竞赛
	ListOpenPublic(ctx context.Context, now time.Time) ([]model.Competition, error)

	CreateQuestion(ctx context.Context, q *model.Question) error
	GetQuestion(ctx context.Context, id string) (*model.Question, error)
	UpdateQuestion(ctx context.Context, q *model.Question) error
	DeleteQuestion(ctx context.Context, id string) error
}

type competitionRepo struct {
	db *gorm.DB
}

// NewCompetitionRepo 创建 CompetitionRepository 实例
func NewCompetitionRepo(db *gorm.DB) CompetitionRepository {
	return &competitionRepo{db: db}
}

func orderedQuestions(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *competitionRepo) Create(ctx context.Context, comp *model.Competition) error {
	return r.db.WithContext(ctx).Omit("Questions").Create(comp).Error
}

func (r *competitionRepo) GetByID(ctx context.Context, id string) (*model.Competition, error) {
	var comp model.Competition
	err := r.db.WithContext(ctx).
		Preload("Questions", orderedQuestions).
		Where("competition_id = ?", id).
		First(&comp).Error
	if err != nil {
		return nil, err
	}
	return &comp, nil
}

func (r *competitionRepo) Update(ctx context.Context, comp *model.Competition) error {
	return r.db.WithContext(ctx).Omit("Questions").Save(comp).Error
}

func (r *competitionRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Competition{}).
		Where("competition_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *competitionRepo) List(ctx context.Context, filters *CompetitionListFilters, offset, limit int) ([]model.Competition, int64, error) {
	var comps []model.Competition
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Competition{})
	if filters != nil {
		if filters.Status != "" {
			db = db.Where("status = ?", filters.Status)
		}
		if filters.Visibility != "" {
			db = db.Where("visibility = ?", filters.Visibility)
		}
		if filters.Keyword != "" {
			db = db.Where("title ILIKE ?", "%"+filters.Keyword+"%")
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&comps).Error; err != nil {
		return nil, 0, err
	}

	return comps, total, nil
}

func (r *competitionRepo) ListOpenPublic(ctx context.Context, now time.Time) ([]model.Competition, error) {
	var comps []model.Competition
	err := r.db.WithContext(ctx).
		Preload("Questions", orderedQuestions).
		Where("visibility = ? AND status = ?", model.CompetitionPublic, model.CompetitionStatusOpen).
		Where("(opens_at IS NULL OR opens_at <= ?) AND (closes_at IS NULL OR closes_at > ?)", now, now).
		Order("created_at DESC").
		Find(&comps).Error
	return comps, err
}

func (r *competitionRepo) CreateQuestion(ctx context.Context, q *model.Question) error {
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *competitionRepo) GetQuestion(ctx context.Context, id string) (*model.Question, error) {
	var q model.Question
	err := r.db.WithContext(ctx).
		Where("question_id = ?", id).
		First(&q).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *competitionRepo) UpdateQuestion(ctx context.Context, q *model.Question) error {
	return r.db.WithContext(ctx).Save(q).Error
}

func (r *competitionRepo) DeleteQuestion(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("question_id = ?", id).
		Delete(&model.Question{}).Error
}

// ── 参赛记录 ──

// ParticipationRepository 参赛记录数据访问接口
type ParticipationRepository interface {
	Create(ctx context.Context, p *model.Participation) error
	GetByID(ctx context.Context, id string) (*model.Participation, error)
	GetByInvitation(ctx context.Context, invitationID string) (*model.Participation, error)
	ListByCompetition(ctx context.Context, competitionID, status string, offset, limit int) ([]model.Participation, int64, error)
	ListAllByCompetition(ctx context.Context, competitionID string) ([]model.Participation, error)
	// Resolve 以 status='pending' 为条件写入批改结果（状态、答案、总分、批改人）
	// 未命中返回 ErrStaleState，终态记录永不回退
	Resolve(ctx context.Context, p *model.Participation) error
	SetCandidate(ctx context.Context, id, candidateID string) error
}

type participationRepo struct {
	db *gorm.DB
}

// NewParticipationRepo 创建 ParticipationRepository 实例
func NewParticipationRepo(db *gorm.DB) ParticipationRepository {
	return &participationRepo{db: db}
}

func (r *participationRepo) Create(ctx context.Context, p *model.Participation) error {
	return r.db.WithContext(ctx).Omit("Competition").Create(p).Error
}

func (r *participationRepo) GetByID(ctx context.Context, id string) (*model.Participation, error) {
	var p model.Participation
	err := r.db.WithContext(ctx).
		Preload("Competition").
		Where("participation_id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *participationRepo) GetByInvitation(ctx context.Context, invitationID string) (*model.Participation, error) {
	var p model.Participation
	err := r.db.WithContext(ctx).
		Where("invitation_id = ?", invitationID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *participationRepo) ListByCompetition(ctx context.Context, competitionID, status string, offset, limit int) ([]model.Participation, int64, error) {
	var list []model.Participation
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Participation{}).Where("competition_id = ?", competitionID)
	if status != "" {
		db = db.Where("status = ?", status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("submitted_at DESC").
		Find(&list).Error; err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

func (r *participationRepo) ListAllByCompetition(ctx context.Context, competitionID string) ([]model.Participation, error) {
	var list []model.Participation
	err := r.db.WithContext(ctx).
		Where("competition_id = ?", competitionID).
		Order("total_score DESC, submitted_at ASC").
		Find(&list).Error
	return list, err
}

func (r *participationRepo) Resolve(ctx context.Context, p *model.Participation) error {
	res := r.db.WithContext(ctx).
		Model(&model.Participation{}).
		Where("participation_id = ? AND status = ?", p.ParticipationID, model.ParticipationPending).
		Updates(map[string]interface{}{
			"status":       p.Status,
			"answers":      p.Answers,
			"total_score":  p.TotalScore,
			"corrected_by": p.CorrectedBy,
			"corrected_at": p.CorrectedAt,
		})
	return affected(res)
}

func (r *participationRepo) SetCandidate(ctx context.Context, id, candidateID string) error {
	return r.db.WithContext(ctx).
		Model(&model.Participation{}).
		Where("participation_id = ?", id).
		UpdateColumn("candidate_id", candidateID).Error
}

// ── 邀请 ──

// InvitationRepository 私有竞赛邀请数据访问接口
type InvitationRepository interface {
	BatchCreate(ctx context.Context, invitations []model.Invitation) error
	GetByID(ctx context.Context, id string) (*model.Invitation, error)
	GetByIdentifier(ctx context.Context, identifier string) (*model.Invitation, error)
	ListByCompetition(ctx context.Context, competitionID string) ([]model.Invitation, error)
	// MarkUsed 单条原子条件更新 created → used，未命中返回 ErrStaleState
	MarkUsed(ctx context.Context, id string, at time.Time) error
}

type invitationRepo struct {
	db *gorm.DB
}

// NewInvitationRepo 创建 InvitationRepository 实例
func NewInvitationRepo(db *gorm.DB) InvitationRepository {
	return &invitationRepo{db: db}
}

func (r *invitationRepo) BatchCreate(ctx context.Context, invitations []model.Invitation) error {
	if len(invitations) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(invitations, 100).Error
}

func (r *invitationRepo) GetByID(ctx context.Context, id string) (*model.Invitation, error) {
	var inv model.Invitation
	err := r.db.WithContext(ctx).
		Where("invitation_id = ?", id).
		First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *invitationRepo) GetByIdentifier(ctx context.Context, identifier string) (*model.Invitation, error) {
	var inv model.Invitation
	err := r.db.WithContext(ctx).
		Where("login_identifier = ?", identifier).
		First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *invitationRepo) ListByCompetition(ctx context.Context, competitionID string) ([]model.Invitation, error) {
	var list []model.Invitation
	err := r.db.WithContext(ctx).
		Where("competition_id = ?", competitionID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *invitationRepo) MarkUsed(ctx context.Context, id string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.Invitation{}).
		Where("invitation_id = ? AND status = ?", id, model.InvitationCreated).
		Updates(map[string]interface{}{
			"status":     model.InvitationUsed,
			"used_at":    at,
			"updated_at": at,
		})
	return affected(res)
}
