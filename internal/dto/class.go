package dto

import "time"

// ── 班级模块 DTO ──

// CreateClassRequest 创建班级请求
type CreateClassRequest struct {
	Name         string     `json:"name"          binding:"required,max=100"`
	Description  string     `json:"description"   binding:"omitempty,max=2000"`
	InstructorID string     `json:"instructor_id" binding:"required,uuid"`
	CandidateIDs []string   `json:"candidate_ids" binding:"omitempty,dive,uuid"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
}

// UpdateClassRequest 更新班级请求
type UpdateClassRequest struct {
	Name         *string    `json:"name"          binding:"omitempty,max=100"`
	Description  *string    `json:"description"   binding:"omitempty,max=2000"`
	InstructorID *string    `json:"instructor_id" binding:"omitempty,uuid"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
}

// ClassListRequest 班级列表查询参数
type ClassListRequest struct {
	PaginationRequest
	InstructorID string `form:"instructor_id" binding:"omitempty,uuid"`
	Status       string `form:"status"        binding:"omitempty,oneof=active completed cancelled"`
}

// ClassMemberRequest 班级成员增减请求
type ClassMemberRequest struct {
	CandidateID string `json:"candidate_id" binding:"required,uuid"`
}

// ClassStatusRequest 班级状态变更请求
type ClassStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=completed cancelled"`
}
