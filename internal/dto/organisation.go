package dto

import "time"

// ── 机构 / 职级 / 警员 / 处分 DTO ──

// CreateAgencyRequest 创建机构请求
type CreateAgencyRequest struct {
	Name        string `json:"name"        binding:"required,max=100"`
	Acronym     string `json:"acronym"     binding:"omitempty,max=20"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}

// UpdateAgencyRequest 更新机构请求
type UpdateAgencyRequest struct {
	Name        *string `json:"name"        binding:"omitempty,max=100"`
	Acronym     *string `json:"acronym"     binding:"omitempty,max=20"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}

// CreateGradeRequest 创建职级请求
type CreateGradeRequest struct {
	Name      string `json:"name"       binding:"required,max=100"`
	RankOrder int    `json:"rank_order" binding:"omitempty,min=0"`
}

// UpdateGradeRequest 更新职级请求
type UpdateGradeRequest struct {
	Name      *string `json:"name"       binding:"omitempty,max=100"`
	RankOrder *int    `json:"rank_order" binding:"omitempty,min=0"`
}

// CreateAgentRequest 创建警员请求
type CreateAgentRequest struct {
	FirstName   string     `json:"first_name"   binding:"required,max=50"`
	LastName    string     `json:"last_name"    binding:"required,max=50"`
	BadgeNumber string     `json:"badge_number" binding:"required,max=20"`
	ServerID    string     `json:"server_id"    binding:"omitempty,max=50"`
	AgencyID    string     `json:"agency_id"    binding:"required,uuid"`
	GradeID     string     `json:"grade_id"     binding:"required,uuid"`
	CandidateID *string    `json:"candidate_id" binding:"omitempty,uuid"`
	JoinedAt    *time.Time `json:"joined_at"`
}

// UpdateAgentRequest 更新警员请求（机构与职级需同时校验归属）
type UpdateAgentRequest struct {
	FirstName   *string `json:"first_name"   binding:"omitempty,max=50"`
	LastName    *string `json:"last_name"    binding:"omitempty,max=50"`
	BadgeNumber *string `json:"badge_number" binding:"omitempty,max=20"`
	ServerID    *string `json:"server_id"    binding:"omitempty,max=50"`
	AgencyID    *string `json:"agency_id"    binding:"omitempty,uuid"`
	GradeID     *string `json:"grade_id"     binding:"omitempty,uuid"`
}

// AgentListRequest 警员列表查询参数
type AgentListRequest struct {
	PaginationRequest
	AgencyID string `form:"agency_id" binding:"omitempty,uuid"`
	GradeID  string `form:"grade_id"  binding:"omitempty,uuid"`
	Status   string `form:"status"    binding:"omitempty,oneof=active inactive suspended terminated"`
	Keyword  string `form:"keyword"   binding:"omitempty,max=50"`
}

// AgentStatusRequest 警员状态变更请求
type AgentStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive suspended terminated"`
}

// IssueDisciplineRequest 签发处分请求
type IssueDisciplineRequest struct {
	Type   string     `json:"type"    binding:"required,oneof=warning reprimand suspension termination"`
	Reason string     `json:"reason"  binding:"required,max=4000"`
	EndsAt *time.Time `json:"ends_at"`
}
