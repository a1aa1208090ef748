package dto

import "time"

// ── 竞赛模块 DTO ──

// CreateCompetitionRequest 创建竞赛请求（初始状态 draft）
type CreateCompetitionRequest struct {
	Title          string     `json:"title"           binding:"required,max=200"`
	Description    string     `json:"description"     binding:"omitempty,max=4000"`
	Visibility     string     `json:"visibility"      binding:"required,oneof=public private"`
	IsEntryTest    bool       `json:"is_entry_test"`
	PassPercentage *int       `json:"pass_percentage" binding:"omitempty,min=0,max=100"`
	OpensAt        *time.Time `json:"opens_at"`
	ClosesAt       *time.Time `json:"closes_at"`
}

// UpdateCompetitionRequest 更新竞赛请求
type UpdateCompetitionRequest struct {
	Title          *string    `json:"title"           binding:"omitempty,max=200"`
	Description    *string    `json:"description"     binding:"omitempty,max=4000"`
	Visibility     *string    `json:"visibility"      binding:"omitempty,oneof=public private"`
	IsEntryTest    *bool      `json:"is_entry_test"`
	PassPercentage *int       `json:"pass_percentage" binding:"omitempty,min=0,max=100"`
	OpensAt        *time.Time `json:"opens_at"`
	ClosesAt       *time.Time `json:"closes_at"`
}

// CompetitionListRequest 竞赛列表查询参数
type CompetitionListRequest struct {
	PaginationRequest
	Status     string `form:"status"     binding:"omitempty,oneof=draft open closed"`
	Visibility string `form:"visibility" binding:"omitempty,oneof=public private"`
	Keyword    string `form:"keyword"    binding:"omitempty,max=100"`
}

// CompetitionStatusRequest 竞赛状态变更请求
type CompetitionStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=open closed"`
}

// QuestionRequest 新增 / 更新题目请求
type QuestionRequest struct {
	Position       int      `json:"position"        binding:"omitempty,min=0"`
	Type           string   `json:"type"            binding:"required,oneof=single_choice multiple_choice true_false short_answer open scenario"`
	Prompt         string   `json:"prompt"          binding:"required,max=4000"`
	Options        []string `json:"options"         binding:"omitempty,dive,max=500"`
	CorrectOptions []int    `json:"correct_options" binding:"omitempty,dive,min=0"`
	CorrectText    string   `json:"correct_text"    binding:"omitempty,max=500"`
	MaxPoints      float64  `json:"max_points"      binding:"required,gt=0"`
}

// ParticipationListRequest 参赛记录查询参数
type ParticipationListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=pending accepted rejected"`
}

// AcceptParticipationRequest 通过批改请求：overrides 为人工给分（question_id → 分数）
// CreateCandidate 仅对入学测试生效，缺省为 true
type AcceptParticipationRequest struct {
	Overrides       map[string]float64 `json:"overrides"`
	CreateCandidate *bool              `json:"create_candidate"`
}

// ── 公开竞赛 ──

// PublicQuestion 公开题目（不含答案）
type PublicQuestion struct {
	QuestionID string   `json:"question_id"`
	Position   int      `json:"position"`
	Type       string   `json:"type"`
	Prompt     string   `json:"prompt"`
	Options    []string `json:"options,omitempty"`
	MaxPoints  float64  `json:"max_points"`
}

// PublicCompetitionResponse 公开竞赛详情（不含答案）
type PublicCompetitionResponse struct {
	CompetitionID string           `json:"competition_id"`
	Title         string           `json:"title"`
	Description   string           `json:"description,omitempty"`
	Visibility    string           `json:"visibility"`
	IsEntryTest   bool             `json:"is_entry_test"`
	ClosesAt      *time.Time       `json:"closes_at,omitempty"`
	MaxScore      float64          `json:"max_score"`
	Questions     []PublicQuestion `json:"questions,omitempty"`
}

// AnswerInput 单题作答
type AnswerInput struct {
	QuestionID string `json:"question_id" binding:"required,uuid"`
	Selected   []int  `json:"selected"    binding:"omitempty,dive,min=0"`
	Text       string `json:"text"        binding:"omitempty,max=10000"`
}

// SubmitParticipationRequest 提交参赛答卷请求
type SubmitParticipationRequest struct {
	ParticipantName string        `json:"participant_name" binding:"omitempty,max=100"`
	Email           *string       `json:"email"            binding:"omitempty,email"`
	ServerID        string        `json:"server_id"        binding:"omitempty,max=50"`
	Answers         []AnswerInput `json:"answers"          binding:"required,dive"`
}

// ParticipationResultResponse 参赛结果（批改后公开）
type ParticipationResultResponse struct {
	ParticipationID string  `json:"participation_id"`
	CompetitionID   string  `json:"competition_id"`
	ParticipantName string  `json:"participant_name"`
	Status          string  `json:"status"`
	TotalScore      float64 `json:"total_score,omitempty"`
	MaxScore        float64 `json:"max_score,omitempty"`
	Percentage      int     `json:"percentage,omitempty"`
	Passed          *bool   `json:"passed,omitempty"`
}

// ── 邀请 ──

// InviteeInput 批量签发邀请的单条输入
type InviteeInput struct {
	Name  string  `json:"name"  binding:"required,max=100"`
	Email *string `json:"email" binding:"omitempty,email"`
}

// IssueInvitationsRequest 批量签发邀请请求
type IssueInvitationsRequest struct {
	Invitees []InviteeInput `json:"invitees" binding:"required,min=1,dive"`
}

// IssuedInvitation 新签发的邀请，明文密码仅返回一次
type IssuedInvitation struct {
	InvitationID    string  `json:"invitation_id"`
	CandidateName   string  `json:"candidate_name"`
	Email           *string `json:"email,omitempty"`
	LoginIdentifier string  `json:"login_identifier"`
	Password        string  `json:"password"`
}

// InvitationLoginRequest 邀请登录请求
type InvitationLoginRequest struct {
	Identifier string `json:"identifier" binding:"required,max=50"`
	Password   string `json:"password"   binding:"required"`
}

// InvitationLoginResponse 邀请登录响应：参赛 Token 绑定竞赛与邀请
type InvitationLoginResponse struct {
	ParticipantToken string `json:"participant_token"`
	ExpiresIn        int    `json:"expires_in"`
	CompetitionID    string `json:"competition_id"`
	CandidateName    string `json:"candidate_name"`
}
