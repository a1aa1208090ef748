package model

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog 操作审计日志 — 对应 activity_logs（只追加）
type ActivityLog struct {
	ActivityLogID string            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"activity_log_id"`
	UserID        *string           `gorm:"type:uuid;index"                                json:"user_id,omitempty"`
	Action        string            `gorm:"type:varchar(50);not null"                      json:"action"`
	EntityType    string            `gorm:"type:varchar(50);not null;index"                json:"entity_type"`
	EntityID      *string           `gorm:"type:uuid"                                      json:"entity_id,omitempty"`
	Details       datatypes.JSONMap `gorm:"type:jsonb"                                     json:"details,omitempty"`
	CreatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP;index"       json:"created_at"`

	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (ActivityLog) TableName() string { return "activity_logs" }
