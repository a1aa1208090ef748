package dto

import "time"

// ActivityLogListRequest 审计日志查询参数
type ActivityLogListRequest struct {
	PaginationRequest
	UserID     string     `form:"user_id"     binding:"omitempty,uuid"`
	EntityType string     `form:"entity_type" binding:"omitempty,max=50"`
	EntityID   string     `form:"entity_id"   binding:"omitempty,uuid"`
	Since      *time.Time `form:"since"       time_format:"2006-01-02T15:04:05Z07:00"`
}
