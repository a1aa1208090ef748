package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"dhs-academy/backend/internal/model"
	"dhs-academy/backend/internal/repository"
	pkgerrors "dhs-academy/backend/pkg/errors"
	"dhs-academy/backend/pkg/webhook"
)

// ── 测试用 ID 生成 ──

var (
	idMu  sync.Mutex
	idSeq int
)

func nextID(prefix string) string {
	idMu.Lock()
	defer idMu.Unlock()
	idSeq++
	return fmt.Sprintf("%s-%d", prefix, idSeq)
}

func paginate[T any](all []T, offset, limit int) []T {
	if offset >= len(all) {
		return nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

// mockRepos 持有全部内存 Repository，便于测试直接构造数据
type mockRepos struct {
	user          *mockUserRepo
	attempt       *mockLoginAttemptRepo
	activity      *mockActivityLogRepo
	candidate     *mockCandidateRepo
	curriculum    *mockCurriculumRepo
	score         *mockScoreRepo
	appreciation  *mockAppreciationRepo
	class         *mockClassRepo
	agency        *mockAgencyRepo
	grade         *mockGradeRepo
	agent         *mockAgentRepo
	disciplinary  *mockDisciplinaryRepo
	message       *mockMessageRepo
	competition   *mockCompetitionRepo
	participation *mockParticipationRepo
	invitation    *mockInvitationRepo
	form          *mockFormRepo
	application   *mockApplicationRepo
}

// newMockRepository 组装未绑定数据库的 Repository 聚合（WithTx 直接执行回调）
func newMockRepository() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		user:          &mockUserRepo{users: map[string]*model.User{}},
		attempt:       &mockLoginAttemptRepo{},
		activity:      &mockActivityLogRepo{},
		candidate:     &mockCandidateRepo{candidates: map[string]*model.Candidate{}},
		curriculum:    &mockCurriculumRepo{modules: map[string]*model.Module{}, subs: map[string]*model.SubModule{}},
		appreciation:  &mockAppreciationRepo{items: map[string]*model.ModuleAppreciation{}},
		class:         &mockClassRepo{classes: map[string]*model.Class{}},
		agency:        &mockAgencyRepo{agencies: map[string]*model.Agency{}, agentCount: map[string]int64{}},
		grade:         &mockGradeRepo{grades: map[string]*model.Grade{}, agentCount: map[string]int64{}},
		agent:         &mockAgentRepo{agents: map[string]*model.PoliceAgent{}},
		disciplinary:  &mockDisciplinaryRepo{},
		message:       &mockMessageRepo{messages: map[string]*model.Message{}},
		competition:   &mockCompetitionRepo{comps: map[string]*model.Competition{}, questions: map[string]*model.Question{}},
		participation: &mockParticipationRepo{items: map[string]*model.Participation{}},
		invitation:    &mockInvitationRepo{items: map[string]*model.Invitation{}},
		form:          &mockFormRepo{forms: map[string]*model.ApplicationForm{}},
		application:   &mockApplicationRepo{items: map[string]*model.Application{}},
	}
	m.score = &mockScoreRepo{scores: map[string]*model.SubModuleScore{}, candidates: m.candidate}
	m.participation.competitions = m.competition

	repo := &repository.Repository{
		User:          m.user,
		LoginAttempt:  m.attempt,
		ActivityLog:   m.activity,
		Candidate:     m.candidate,
		Curriculum:    m.curriculum,
		Score:         m.score,
		Appreciation:  m.appreciation,
		Class:         m.class,
		Agency:        m.agency,
		Grade:         m.grade,
		Agent:         m.agent,
		Disciplinary:  m.disciplinary,
		Message:       m.message,
		Competition:   m.competition,
		Participation: m.participation,
		Invitation:    m.invitation,
		Form:          m.form,
		Application:   m.application,
	}
	return repo, m
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = nextID("user")
	}
	user.CreatedAt = time.Now()
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByIdentifier(_ context.Context, identifier string) (*model.User, error) {
	for _, u := range m.users {
		if u.Identifier == identifier {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) List(_ context.Context, filters *repository.UserListFilters, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.users {
		if filters != nil {
			if filters.Role != "" && u.Role != filters.Role {
				continue
			}
			if filters.Keyword != "" && !strings.Contains(u.DisplayName, filters.Keyword) && !strings.Contains(u.Identifier, filters.Keyword) {
				continue
			}
			if filters.IsActive != nil && u.IsActive != *filters.IsActive {
				continue
			}
		}
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Identifier < all[j].Identifier })
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (m *mockUserRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	if u, ok := m.users[id]; ok {
		u.LastLoginAt = &at
		return nil
	}
	return gorm.ErrRecordNotFound
}

// ── Mock LoginAttemptRepository ──

type mockLoginAttemptRepo struct {
	attempts []model.LoginAttempt
}

func (m *mockLoginAttemptRepo) Create(_ context.Context, a *model.LoginAttempt) error {
	m.attempts = append(m.attempts, *a)
	return nil
}

func (m *mockLoginAttemptRepo) CountFailuresSince(_ context.Context, identifier string, since time.Time) (int64, error) {
	var n int64
	for _, a := range m.attempts {
		if a.Identifier == identifier && !a.Success && !a.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *mockLoginAttemptRepo) DeleteBefore(_ context.Context, before time.Time) (int64, error) {
	kept := m.attempts[:0]
	var removed int64
	for _, a := range m.attempts {
		if a.CreatedAt.Before(before) {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	m.attempts = kept
	return removed, nil
}

// ── Mock ActivityLogRepository（异步写入，需加锁）──

type mockActivityLogRepo struct {
	mu   sync.Mutex
	logs []model.ActivityLog
}

func (m *mockActivityLogRepo) Create(_ context.Context, log *model.ActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockActivityLogRepo) List(_ context.Context, filters *repository.ActivityLogFilters, offset, limit int) ([]model.ActivityLog, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.ActivityLog
	for _, l := range m.logs {
		if filters != nil && filters.EntityType != "" && l.EntityType != filters.EntityType {
			continue
		}
		all = append(all, l)
	}
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (m *mockActivityLogRepo) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.logs))
	for _, l := range m.logs {
		out = append(out, l.EntityType+":"+l.Action)
	}
	return out
}

// ── Mock CandidateRepository ──

type mockCandidateRepo struct {
	candidates map[string]*model.Candidate
}

func (m *mockCandidateRepo) Create(_ context.Context, c *model.Candidate) error {
	if c.CandidateID == "" {
		c.CandidateID = nextID("cand")
	}
	m.candidates[c.CandidateID] = c
	return nil
}

func (m *mockCandidateRepo) GetByID(_ context.Context, id string) (*model.Candidate, error) {
	if c, ok := m.candidates[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCandidateRepo) Update(_ context.Context, c *model.Candidate) error {
	m.candidates[c.CandidateID] = c
	return nil
}

func (m *mockCandidateRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.candidates, id)
	return nil
}

func (m *mockCandidateRepo) match(c *model.Candidate, f *repository.CandidateListFilters) bool {
	if f == nil {
		return true
	}
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.IsCertified != nil && c.IsCertified != *f.IsCertified {
		return false
	}
	if f.Keyword != "" && !strings.Contains(c.FullName()+" "+c.ServerID, f.Keyword) {
		return false
	}
	return true
}

func (m *mockCandidateRepo) List(_ context.Context, filters *repository.CandidateListFilters, offset, limit int) ([]model.Candidate, int64, error) {
	var all []model.Candidate
	for _, c := range m.candidates {
		if m.match(c, filters) {
			all = append(all, *c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CandidateID < all[j].CandidateID })
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (m *mockCandidateRepo) ListWithScores(ctx context.Context, filters *repository.CandidateListFilters) ([]model.Candidate, error) {
	list, _, err := m.List(ctx, filters, 0, 0)
	return list, err
}

func (m *mockCandidateRepo) Certify(_ context.Context, id, certifiedBy string, at time.Time) error {
	c, ok := m.candidates[id]
	if !ok || c.IsCertified {
		return pkgerrors.ErrStaleState
	}
	c.IsCertified = true
	c.CertifiedBy = &certifiedBy
	c.CertificationDate = &at
	return nil
}

// ── Mock CurriculumRepository ──

type mockCurriculumRepo struct {
	modules map[string]*model.Module
	subs    map[string]*model.SubModule
}

func (m *mockCurriculumRepo) CreateModule(_ context.Context, mod *model.Module) error {
	if mod.ModuleID == "" {
		mod.ModuleID = nextID("mod")
	}
	m.modules[mod.ModuleID] = mod
	return nil
}

func (m *mockCurriculumRepo) GetModule(_ context.Context, id string) (*model.Module, error) {
	if mod, ok := m.modules[id]; ok {
		return mod, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCurriculumRepo) UpdateModule(_ context.Context, mod *model.Module) error {
	m.modules[mod.ModuleID] = mod
	return nil
}

func (m *mockCurriculumRepo) DeleteModule(_ context.Context, id string, _ string) error {
	delete(m.modules, id)
	return nil
}

// ListModules 组装模块树（与数据库实现一样按 position 排序）
func (m *mockCurriculumRepo) ListModules(_ context.Context) ([]model.Module, error) {
	var result []model.Module
	for _, mod := range m.modules {
		cp := *mod
		cp.SubModules = nil
		for _, sub := range m.subs {
			if sub.ModuleID == mod.ModuleID {
				cp.SubModules = append(cp.SubModules, *sub)
			}
		}
		sort.Slice(cp.SubModules, func(i, j int) bool { return cp.SubModules[i].Position < cp.SubModules[j].Position })
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Position < result[j].Position })
	return result, nil
}

func (m *mockCurriculumRepo) CreateSubModule(_ context.Context, sub *model.SubModule) error {
	if sub.SubModuleID == "" {
		sub.SubModuleID = nextID("sub")
	}
	m.subs[sub.SubModuleID] = sub
	return nil
}

func (m *mockCurriculumRepo) GetSubModule(_ context.Context, id string) (*model.SubModule, error) {
	if sub, ok := m.subs[id]; ok {
		return sub, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCurriculumRepo) UpdateSubModule(_ context.Context, sub *model.SubModule) error {
	m.subs[sub.SubModuleID] = sub
	return nil
}

func (m *mockCurriculumRepo) DeleteSubModule(_ context.Context, id string, _ string) error {
	delete(m.subs, id)
	return nil
}

func (m *mockCurriculumRepo) CountSubModules(_ context.Context, moduleID string) (int64, error) {
	var n int64
	for _, sub := range m.subs {
		if sub.ModuleID == moduleID {
			n++
		}
	}
	return n, nil
}

// ── Mock ScoreRepository（同步回写候选人的 Scores 以模拟预加载）──

type mockScoreRepo struct {
	scores     map[string]*model.SubModuleScore
	candidates *mockCandidateRepo
}

func scoreKey(candidateID, subModuleID string) string { return candidateID + "/" + subModuleID }

func (m *mockScoreRepo) Upsert(_ context.Context, s *model.SubModuleScore) error {
	key := scoreKey(s.CandidateID, s.SubModuleID)
	if existing, ok := m.scores[key]; ok {
		s.ScoreID = existing.ScoreID
	} else if s.ScoreID == "" {
		s.ScoreID = nextID("score")
	}
	m.scores[key] = s
	m.sync(s.CandidateID)
	return nil
}

func (m *mockScoreRepo) ListByCandidate(_ context.Context, candidateID string) ([]model.SubModuleScore, error) {
	var out []model.SubModuleScore
	for _, s := range m.scores {
		if s.CandidateID == candidateID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubModuleID < out[j].SubModuleID })
	return out, nil
}

func (m *mockScoreRepo) Delete(_ context.Context, candidateID, subModuleID string) error {
	key := scoreKey(candidateID, subModuleID)
	if _, ok := m.scores[key]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.scores, key)
	m.sync(candidateID)
	return nil
}

func (m *mockScoreRepo) SubModuleStats(_ context.Context, subModuleID string) (int64, float64, error) {
	var (
		count   int64
		highest float64
	)
	for _, s := range m.scores {
		if s.SubModuleID != subModuleID {
			continue
		}
		count++
		if s.Score > highest {
			highest = s.Score
		}
	}
	return count, highest, nil
}

func (m *mockScoreRepo) sync(candidateID string) {
	if c, ok := m.candidates.candidates[candidateID]; ok {
		c.Scores, _ = m.ListByCandidate(context.Background(), candidateID)
	}
}

// ── Mock AppreciationRepository ──

type mockAppreciationRepo struct {
	items map[string]*model.ModuleAppreciation
}

func (m *mockAppreciationRepo) Upsert(_ context.Context, a *model.ModuleAppreciation) error {
	m.items[a.CandidateID+"/"+a.ModuleID] = a
	return nil
}

func (m *mockAppreciationRepo) ListByCandidate(_ context.Context, candidateID string) ([]model.ModuleAppreciation, error) {
	var out []model.ModuleAppreciation
	for _, a := range m.items {
		if a.CandidateID == candidateID {
			out = append(out, *a)
		}
	}
	return out, nil
}

// ── Mock ClassRepository ──

type mockClassRepo struct {
	classes map[string]*model.Class
}

func (m *mockClassRepo) Create(_ context.Context, c *model.Class) error {
	if c.ClassID == "" {
		c.ClassID = nextID("class")
	}
	c.CreatedAt = time.Now()
	m.classes[c.ClassID] = c
	return nil
}

func (m *mockClassRepo) GetByID(_ context.Context, id string) (*model.Class, error) {
	if c, ok := m.classes[id]; ok {
		cp := *c
		cp.CandidateIDs = append([]string{}, c.CandidateIDs...)
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassRepo) Update(_ context.Context, c *model.Class) error {
	m.classes[c.ClassID] = c
	return nil
}

func (m *mockClassRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.classes, id)
	return nil
}

func (m *mockClassRepo) List(_ context.Context, filters *repository.ClassListFilters, offset, limit int) ([]model.Class, int64, error) {
	var all []model.Class
	for _, c := range m.classes {
		if filters != nil {
			if filters.InstructorID != "" && c.InstructorID != filters.InstructorID {
				continue
			}
			if filters.Status != "" && c.Status != filters.Status {
				continue
			}
		}
		all = append(all, *c)
	}
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (m *mockClassRepo) ListByCandidate(_ context.Context, candidateID string) ([]model.Class, error) {
	var out []model.Class
	for _, c := range m.classes {
		if c.HasCandidate(candidateID) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockClassRepo) SetCandidates(_ context.Context, id string, candidateIDs []string, _ string) error {
	c, ok := m.classes[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.CandidateIDs = append([]string{}, candidateIDs...)
	return nil
}

func (m *mockClassRepo) UpdateStatus(_ context.Context, id, from, to, _ string) error {
	c, ok := m.classes[id]
	if !ok || c.Status != from {
		return pkgerrors.ErrStaleState
	}
	c.Status = to
	return nil
}

// ── Mock AgencyRepository / GradeRepository ──

type mockAgencyRepo struct {
	agencies   map[string]*model.Agency
	agentCount map[string]int64
}

func (m *mockAgencyRepo) Create(_ context.Context, a *model.Agency) error {
	if a.AgencyID == "" {
		a.AgencyID = nextID("agency")
	}
	m.agencies[a.AgencyID] = a
	return nil
}

func (m *mockAgencyRepo) GetByID(_ context.Context, id string) (*model.Agency, error) {
	if a, ok := m.agencies[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAgencyRepo) GetByName(_ context.Context, name string) (*model.Agency, error) {
	for _, a := range m.agencies {
		if a.Name == name {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAgencyRepo) List(_ context.Context) ([]model.Agency, error) {
	var out []model.Agency
	for _, a := range m.agencies {
		out = append(out, *a)
	}
	return out, nil
}

func (m *mockAgencyRepo) Update(_ context.Context, a *model.Agency) error {
	m.agencies[a.AgencyID] = a
	return nil
}

func (m *mockAgencyRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.agencies, id)
	return nil
}

func (m *mockAgencyRepo) CountAgents(_ context.Context, agencyID string) (int64, error) {
	return m.agentCount[agencyID], nil
}

type mockGradeRepo struct {
	grades     map[string]*model.Grade
	agentCount map[string]int64
}

func (m *mockGradeRepo) Create(_ context.Context, g *model.Grade) error {
	if g.GradeID == "" {
		g.GradeID = nextID("grade")
	}
	m.grades[g.GradeID] = g
	return nil
}

func (m *mockGradeRepo) GetByID(_ context.Context, id string) (*model.Grade, error) {
	if g, ok := m.grades[id]; ok {
		return g, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGradeRepo) ListByAgency(_ context.Context, agencyID string) ([]model.Grade, error) {
	var out []model.Grade
	for _, g := range m.grades {
		if g.AgencyID == agencyID {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RankOrder < out[j].RankOrder })
	return out, nil
}

func (m *mockGradeRepo) Update(_ context.Context, g *model.Grade) error {
	m.grades[g.GradeID] = g
	return nil
}

func (m *mockGradeRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.grades, id)
	return nil
}

func (m *mockGradeRepo) CountAgents(_ context.Context, gradeID string) (int64, error) {
	return m.agentCount[gradeID], nil
}

// ── Mock AgentRepository / DisciplinaryRepository ──

type mockAgentRepo struct {
	agents map[string]*model.PoliceAgent
}

func (m *mockAgentRepo) Create(_ context.Context, a *model.PoliceAgent) error {
	if a.AgentID == "" {
		a.AgentID = nextID("agent")
	}
	m.agents[a.AgentID] = a
	return nil
}

func (m *mockAgentRepo) GetByID(_ context.Context, id string) (*model.PoliceAgent, error) {
	if a, ok := m.agents[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAgentRepo) GetByBadge(_ context.Context, badge string) (*model.PoliceAgent, error) {
	for _, a := range m.agents {
		if a.BadgeNumber == badge {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAgentRepo) List(_ context.Context, filters *repository.AgentListFilters, offset, limit int) ([]model.PoliceAgent, int64, error) {
	var all []model.PoliceAgent
	for _, a := range m.agents {
		if filters != nil && filters.AgencyID != "" && a.AgencyID != filters.AgencyID {
			continue
		}
		all = append(all, *a)
	}
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (m *mockAgentRepo) Update(_ context.Context, a *model.PoliceAgent) error {
	m.agents[a.AgentID] = a
	return nil
}

func (m *mockAgentRepo) UpdateStatus(_ context.Context, id, status, _ string) error {
	a, ok := m.agents[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.Status = status
	return nil
}

type mockDisciplinaryRepo struct {
	records []model.DisciplinaryRecord
}

func (m *mockDisciplinaryRepo) Create(_ context.Context, r *model.DisciplinaryRecord) error {
	if r.RecordID == "" {
		r.RecordID = nextID("disc")
	}
	m.records = append(m.records, *r)
	return nil
}

func (m *mockDisciplinaryRepo) ListByAgent(_ context.Context, agentID string) ([]model.DisciplinaryRecord, error) {
	var out []model.DisciplinaryRecord
	for _, r := range m.records {
		if r.AgentID == agentID {
			out = append(out, r)
		}
	}
	return out, nil
}

// ── Mock MessageRepository ──

type mockMessageRepo struct {
	messages map[string]*model.Message
}

func (m *mockMessageRepo) Create(_ context.Context, msg *model.Message) error {
	if msg.MessageID == "" {
		msg.MessageID = nextID("msg")
	}
	m.messages[msg.MessageID] = msg
	return nil
}

func (m *mockMessageRepo) GetByID(_ context.Context, id string) (*model.Message, error) {
	if msg, ok := m.messages[id]; ok {
		return msg, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMessageRepo) ListInbox(_ context.Context, recipientID string, unreadOnly bool, offset, limit int) ([]model.Message, int64, error) {
	var all []model.Message
	for _, msg := range m.messages {
		if msg.RecipientID == recipientID && (!unreadOnly || !msg.IsRead) {
			all = append(all, *msg)
		}
	}
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (m *mockMessageRepo) ListOutbox(_ context.Context, senderID string, offset, limit int) ([]model.Message, int64, error) {
	var all []model.Message
	for _, msg := range m.messages {
		if msg.SenderID == senderID {
			all = append(all, *msg)
		}
	}
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (m *mockMessageRepo) MarkRead(_ context.Context, id, recipientID string, at time.Time) error {
	if msg, ok := m.messages[id]; ok && msg.RecipientID == recipientID && !msg.IsRead {
		msg.IsRead = true
		msg.ReadAt = &at
	}
	return nil
}

func (m *mockMessageRepo) CountUnread(_ context.Context, recipientID string) (int64, error) {
	var n int64
	for _, msg := range m.messages {
		if msg.RecipientID == recipientID && !msg.IsRead {
			n++
		}
	}
	return n, nil
}

// ── Mock CompetitionRepository ──

type mockCompetitionRepo struct {
	comps     map[string]*model.Competition
	questions map[string]*model.Question
}

func (m *mockCompetitionRepo) Create(_ context.Context, c *model.Competition) error {
	if c.CompetitionID == "" {
		c.CompetitionID = nextID("comp")
	}
	m.comps[c.CompetitionID] = c
	return nil
}

func (m *mockCompetitionRepo) GetByID(_ context.Context, id string) (*model.Competition, error) {
	c, ok := m.comps[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	cp.Questions = nil
	for _, q := range m.questions {
		if q.CompetitionID == id {
			cp.Questions = append(cp.Questions, *q)
		}
	}
	sort.Slice(cp.Questions, func(i, j int) bool { return cp.Questions[i].Position < cp.Questions[j].Position })
	return &cp, nil
}

func (m *mockCompetitionRepo) Update(_ context.Context, c *model.Competition) error {
	cp := *c
	cp.Questions = nil
	m.comps[c.CompetitionID] = &cp
	return nil
}

func (m *mockCompetitionRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.comps, id)
	return nil
}

func (m *mockCompetitionRepo) List(_ context.Context, _ *repository.CompetitionListFilters, offset, limit int) ([]model.Competition, int64, error) {
	var all []model.Competition
	for _, c := range m.comps {
		all = append(all, *c)
	}
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (m *mockCompetitionRepo) ListOpenPublic(ctx context.Context, now time.Time) ([]model.Competition, error) {
	var out []model.Competition
	for id, c := range m.comps {
		if c.Visibility != model.CompetitionPublic || c.Status != model.CompetitionStatusOpen {
			continue
		}
		if c.ClosesAt != nil && !c.ClosesAt.After(now) {
			continue
		}
		full, _ := m.GetByID(ctx, id)
		out = append(out, *full)
	}
	return out, nil
}

func (m *mockCompetitionRepo) CreateQuestion(_ context.Context, q *model.Question) error {
	if q.QuestionID == "" {
		q.QuestionID = nextID("q")
	}
	m.questions[q.QuestionID] = q
	return nil
}

func (m *mockCompetitionRepo) GetQuestion(_ context.Context, id string) (*model.Question, error) {
	if q, ok := m.questions[id]; ok {
		return q, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCompetitionRepo) UpdateQuestion(_ context.Context, q *model.Question) error {
	m.questions[q.QuestionID] = q
	return nil
}

func (m *mockCompetitionRepo) DeleteQuestion(_ context.Context, id string) error {
	delete(m.questions, id)
	return nil
}

// ── Mock ParticipationRepository ──

type mockParticipationRepo struct {
	items        map[string]*model.Participation
	competitions *mockCompetitionRepo
	createErr    error // 非 nil 时 Create 直接返回该错误
}

func (m *mockParticipationRepo) Create(_ context.Context, p *model.Participation) error {
	if m.createErr != nil {
		return m.createErr
	}
	// 与 invitation_id 唯一索引一致
	if p.InvitationID != nil {
		for _, existing := range m.items {
			if existing.InvitationID != nil && *existing.InvitationID == *p.InvitationID {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	if p.ParticipationID == "" {
		p.ParticipationID = nextID("part")
	}
	cp := *p
	m.items[p.ParticipationID] = &cp
	return nil
}

func (m *mockParticipationRepo) GetByID(_ context.Context, id string) (*model.Participation, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	if c, ok := m.competitions.comps[p.CompetitionID]; ok {
		cp.Competition = c
	}
	return &cp, nil
}

func (m *mockParticipationRepo) GetByInvitation(_ context.Context, invitationID string) (*model.Participation, error) {
	for _, p := range m.items {
		if p.InvitationID != nil && *p.InvitationID == invitationID {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockParticipationRepo) ListByCompetition(_ context.Context, competitionID, status string, offset, limit int) ([]model.Participation, int64, error) {
	var all []model.Participation
	for _, p := range m.items {
		if p.CompetitionID == competitionID && (status == "" || p.Status == status) {
			all = append(all, *p)
		}
	}
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (m *mockParticipationRepo) ListAllByCompetition(ctx context.Context, competitionID string) ([]model.Participation, error) {
	list, _, err := m.ListByCompetition(ctx, competitionID, "", 0, 0)
	return list, err
}

func (m *mockParticipationRepo) Resolve(_ context.Context, p *model.Participation) error {
	stored, ok := m.items[p.ParticipationID]
	if !ok || stored.Status != model.ParticipationPending {
		return pkgerrors.ErrStaleState
	}
	stored.Status = p.Status
	stored.Answers = p.Answers
	stored.TotalScore = p.TotalScore
	stored.CorrectedBy = p.CorrectedBy
	stored.CorrectedAt = p.CorrectedAt
	return nil
}

func (m *mockParticipationRepo) SetCandidate(_ context.Context, id, candidateID string) error {
	if p, ok := m.items[id]; ok {
		p.CandidateID = &candidateID
	}
	return nil
}

// ── Mock InvitationRepository ──

type mockInvitationRepo struct {
	mu    sync.Mutex
	items map[string]*model.Invitation
}

func (m *mockInvitationRepo) BatchCreate(_ context.Context, invitations []model.Invitation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range invitations {
		if invitations[i].InvitationID == "" {
			invitations[i].InvitationID = nextID("inv")
		}
		cp := invitations[i]
		m.items[cp.InvitationID] = &cp
	}
	return nil
}

func (m *mockInvitationRepo) GetByID(_ context.Context, id string) (*model.Invitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inv, ok := m.items[id]; ok {
		cp := *inv
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInvitationRepo) GetByIdentifier(_ context.Context, identifier string) (*model.Invitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inv := range m.items {
		if inv.LoginIdentifier == identifier {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInvitationRepo) ListByCompetition(_ context.Context, competitionID string) ([]model.Invitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Invitation
	for _, inv := range m.items {
		if inv.CompetitionID == competitionID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

// MarkUsed 与数据库条件更新一致：仅 created 状态可消费
func (m *mockInvitationRepo) MarkUsed(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.items[id]
	if !ok || inv.Status != model.InvitationCreated {
		return pkgerrors.ErrStaleState
	}
	inv.Status = model.InvitationUsed
	inv.UsedAt = &at
	return nil
}

// ── Mock FormRepository / ApplicationRepository ──

type mockFormRepo struct {
	forms map[string]*model.ApplicationForm
}

func (m *mockFormRepo) Create(_ context.Context, f *model.ApplicationForm) error {
	if f.FormID == "" {
		f.FormID = nextID("form")
	}
	m.forms[f.FormID] = f
	return nil
}

func (m *mockFormRepo) GetByID(_ context.Context, id string) (*model.ApplicationForm, error) {
	if f, ok := m.forms[id]; ok {
		return f, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockFormRepo) Update(_ context.Context, f *model.ApplicationForm) error {
	m.forms[f.FormID] = f
	return nil
}

func (m *mockFormRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.forms, id)
	return nil
}

func (m *mockFormRepo) List(_ context.Context, openOnly bool) ([]model.ApplicationForm, error) {
	var out []model.ApplicationForm
	for _, f := range m.forms {
		if !openOnly || f.IsOpen {
			out = append(out, *f)
		}
	}
	return out, nil
}

type mockApplicationRepo struct {
	items map[string]*model.Application
}

func (m *mockApplicationRepo) Create(_ context.Context, a *model.Application) error {
	if a.ApplicationID == "" {
		a.ApplicationID = nextID("app")
	}
	cp := *a
	m.items[a.ApplicationID] = &cp
	return nil
}

func (m *mockApplicationRepo) GetByID(_ context.Context, id string) (*model.Application, error) {
	if a, ok := m.items[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockApplicationRepo) List(_ context.Context, filters *repository.ApplicationListFilters, offset, limit int) ([]model.Application, int64, error) {
	var all []model.Application
	for _, a := range m.items {
		if filters != nil && filters.Status != "" && a.Status != filters.Status {
			continue
		}
		all = append(all, *a)
	}
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (m *mockApplicationRepo) Review(_ context.Context, a *model.Application) error {
	stored, ok := m.items[a.ApplicationID]
	if !ok || stored.Status != model.ApplicationPending {
		return pkgerrors.ErrStaleState
	}
	stored.Status = a.Status
	stored.ReviewedBy = a.ReviewedBy
	stored.ReviewedAt = a.ReviewedAt
	stored.ReviewNote = a.ReviewNote
	return nil
}

func (m *mockApplicationRepo) SetCandidate(_ context.Context, id, candidateID string) error {
	if a, ok := m.items[id]; ok {
		a.CandidateID = &candidateID
	}
	return nil
}

// ── Mock Notifier ──

type mockNotifier struct {
	mu      sync.Mutex
	classes []string
	relays  []string
}

func (n *mockNotifier) ClassCreated(evt webhook.ClassCreatedEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.classes = append(n.classes, evt.ClassID)
}

func (n *mockNotifier) Relay(content string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.relays = append(n.relays, content)
}
