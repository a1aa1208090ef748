package repository

import (
	"context"

	"gorm.io/gorm"

	"dhs-academy/backend/internal/model"
)

// ── 机构 ──

// AgencyRepository 执法机构数据访问接口
type AgencyRepository interface {
	Create(ctx context.Context, agency *model.Agency) error
	// GetByID 同时预加载职级（按 rank_order）
	GetByID(ctx context.Context, id string) (*model.Agency, error)
	GetByName(ctx context.Context, name string) (*model.Agency, error)
	List(ctx context.Context) ([]model.Agency, error)
	Update(ctx context.Context, agency *model.Agency) error
	Delete(ctx context.Context, id string, deletedBy string) error
	CountAgents(ctx context.Context, agencyID string) (int64, error)
}

type agencyRepo struct {
	db *gorm.DB
}

// NewAgencyRepo 创建 AgencyRepository 实例
func NewAgencyRepo(db *gorm.DB) AgencyRepository {
	return &agencyRepo{db: db}
}

func orderedGrades(db *gorm.DB) *gorm.DB {
	return db.Order("rank_order ASC")
}

func (r *agencyRepo) Create(ctx context.Context, agency *model.Agency) error {
	return r.db.WithContext(ctx).Omit("Grades").Create(agency).Error
}

func (r *agencyRepo) GetByID(ctx context.Context, id string) (*model.Agency, error) {
	var agency model.Agency
	err := r.db.WithContext(ctx).
		Preload("Grades", orderedGrades).
		Where("agency_id = ?", id).
		First(&agency).Error
	if err != nil {
		return nil, err
	}
	return &agency, nil
}

func (r *agencyRepo) GetByName(ctx context.Context, name string) (*model.Agency, error) {
	var agency model.Agency
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&agency).Error
	if err != nil {
		return nil, err
	}
	return &agency, nil
}

func (r *agencyRepo) List(ctx context.Context) ([]model.Agency, error) {
	var agencies []model.Agency
	err := r.db.WithContext(ctx).
		Preload("Grades", orderedGrades).
		Order("name ASC").
		Find(&agencies).Error
	return agencies, err
}

func (r *agencyRepo) Update(ctx context.Context, agency *model.Agency) error {
	return r.db.WithContext(ctx).Omit("Grades").Save(agency).Error
}

func (r *agencyRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Agency{}).
		Where("agency_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *agencyRepo) CountAgents(ctx context.Context, agencyID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.PoliceAgent{}).
		Where("agency_id = ?", agencyID).
		Count(&count).Error
	return count, err
}

// ── 职级 ──

// GradeRepository 职级数据访问接口
type GradeRepository interface {
	Create(ctx context.Context, grade *model.Grade) error
	GetByID(ctx context.Context, id string) (*model.Grade, error)
	ListByAgency(ctx context.Context, agencyID string) ([]model.Grade, error)
	Update(ctx context.Context, grade *model.Grade) error
	Delete(ctx context.Context, id string, deletedBy string) error
	CountAgents(ctx context.Context, gradeID string) (int64, error)
}

type gradeRepo struct {
	db *gorm.DB
}

// NewGradeRepo 创建 GradeRepository 实例
func NewGradeRepo(db *gorm.DB) GradeRepository {
	return &gradeRepo{db: db}
}

func (r *gradeRepo) Create(ctx context.Context, grade *model.Grade) error {
	return r.db.WithContext(ctx).Create(grade).Error
}

func (r *gradeRepo) GetByID(ctx context.Context, id string) (*model.Grade, error) {
	var grade model.Grade
	err := r.db.WithContext(ctx).
		Where("grade_id = ?", id).
		First(&grade).Error
	if err != nil {
		return nil, err
	}
	return &grade, nil
}

func (r *gradeRepo) ListByAgency(ctx context.Context, agencyID string) ([]model.Grade, error) {
	var grades []model.Grade
	err := orderedGrades(r.db.WithContext(ctx).Where("agency_id = ?", agencyID)).
		Find(&grades).Error
	return grades, err
}

func (r *gradeRepo) Update(ctx context.Context, grade *model.Grade) error {
	return r.db.WithContext(ctx).Save(grade).Error
}

func (r *gradeRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Grade{}).
		Where("grade_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *gradeRepo) CountAgents(ctx context.Context, gradeID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.PoliceAgent{}).
		Where("grade_id = ?", gradeID).
		Count(&count).Error
	return count, err
}

// ── 警员 ──

// AgentListFilters 警员列表筛选条件
type AgentListFilters struct {
	AgencyID string
	GradeID  string
	Status   string
	Keyword  string // 模糊匹配姓名 / 警号
}

// AgentRepository 警员数据访问接口
type AgentRepository interface {
	Create(ctx context.Context, agent *model.PoliceAgent) error
	GetByID(ctx context.Context, id string) (*model.PoliceAgent, error)
	GetByBadge(ctx context.Context, badge string) (*model.PoliceAgent, error)
	List(ctx context.Context, filters *AgentListFilters, offset, limit int) ([]model.PoliceAgent, int64, error)
	Update(ctx context.Context, agent *model.PoliceAgent) error
	UpdateStatus(ctx context.Context, id, status, updatedBy string) error
}

type agentRepo struct {
	db *gorm.DB
}

// NewAgentRepo 创建 AgentRepository 实例
func NewAgentRepo(db *gorm.DB) AgentRepository {
	return &agentRepo{db: db}
}

func (r *agentRepo) Create(ctx context.Context, agent *model.PoliceAgent) error {
	return r.db.WithContext(ctx).Omit("Agency", "Grade").Create(agent).Error
}

func (r *agentRepo) GetByID(ctx context.Context, id string) (*model.PoliceAgent, error) {
	var agent model.PoliceAgent
	err := r.db.WithContext(ctx).
		Preload("Agency").
		Preload("Grade").
		Where("agent_id = ?", id).
		First(&agent).Error
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *agentRepo) GetByBadge(ctx context.Context, badge string) (*model.PoliceAgent, error) {
	var agent model.PoliceAgent
	err := r.db.WithContext(ctx).
		Where("badge_number = ?", badge).
		First(&agent).Error
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *agentRepo) List(ctx context.Context, filters *AgentListFilters, offset, limit int) ([]model.PoliceAgent, int64, error) {
	var agents []model.PoliceAgent
	var total int64

	db := r.db.WithContext(ctx).Model(&model.PoliceAgent{})
	if filters != nil {
		if filters.AgencyID != "" {
			db = db.Where("agency_id = ?", filters.AgencyID)
		}
		if filters.GradeID != "" {
			db = db.Where("grade_id = ?", filters.GradeID)
		}
		if filters.Status != "" {
			db = db.Where("status = ?", filters.Status)
		}
		if filters.Keyword != "" {
			kw := "%" + filters.Keyword + "%"
			db = db.Where("first_name ILIKE ? OR last_name ILIKE ? OR badge_number ILIKE ?", kw, kw, kw)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Agency").Preload("Grade").
		Offset(offset).Limit(limit).
		Order("last_name ASC").
		Find(&agents).Error; err != nil {
		return nil, 0, err
	}

	return agents, total, nil
}

func (r *agentRepo) Update(ctx context.Context, agent *model.PoliceAgent) error {
	return r.db.WithContext(ctx).Omit("Agency", "Grade").Save(agent).Error
}

func (r *agentRepo) UpdateStatus(ctx context.Context, id, status, updatedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.PoliceAgent{}).
		Where("agent_id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_by": updatedBy,
			"updated_at": gorm.Expr("NOW()"),
		}).Error
}

// ── 处分记录 ──

// DisciplinaryRepository 处分记录数据访问接口（只追加）
type DisciplinaryRepository interface {
	Create(ctx context.Context, record *model.DisciplinaryRecord) error
	ListByAgent(ctx context.Context, agentID string) ([]model.DisciplinaryRecord, error)
}

type disciplinaryRepo struct {
	db *gorm.DB
}

// NewDisciplinaryRepo 创建 DisciplinaryRepository 实例
func NewDisciplinaryRepo(db *gorm.DB) DisciplinaryRepository {
	return &disciplinaryRepo{db: db}
}

func (r *disciplinaryRepo) Create(ctx context.Context, record *model.DisciplinaryRecord) error {
	return r.db.WithContext(ctx).Omit("Agent", "Issuer").Create(record).Error
}

func (r *disciplinaryRepo) ListByAgent(ctx context.Context, agentID string) ([]model.DisciplinaryRecord, error) {
	var records []model.DisciplinaryRecord
	err := r.db.WithContext(ctx).
		Preload("Issuer").
		Where("agent_id = ?", agentID).
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}
