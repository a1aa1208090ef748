package model

import (
	"time"

	"gorm.io/datatypes"
)

// 动态表单字段类型
const (
	FieldText     = "text"
	FieldTextarea = "textarea"
	FieldEmail    = "email"
	FieldNumber   = "number"
	FieldSelect   = "select"
	FieldCheckbox = "checkbox"
)

// 申请审核状态：pending → accepted | rejected
const (
	ApplicationPending  = "pending"
	ApplicationAccepted = "accepted"
	ApplicationRejected = "rejected"
)

// FormField 动态表单字段定义（存于 fields JSONB）
type FormField struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
}

// ApplicationForm 申请表单表 — 对应 application_forms
type ApplicationForm struct {
	FormID      string                         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"form_id"`
	Title       string                         `gorm:"type:varchar(200);not null"                     json:"title"`
	Description string                         `gorm:"type:text"                                      json:"description,omitempty"`
	Fields      datatypes.JSONSlice[FormField] `gorm:"type:jsonb;not null"                            json:"fields"`
	IsOpen      bool                           `gorm:"not null;default:false"                         json:"is_open"`
	SoftDeleteModel
}

// TableName 指定表名
func (ApplicationForm) TableName() string { return "application_forms" }

// Application 申请记录表 — 对应 applications
type Application struct {
	ApplicationID string            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"application_id"`
	FormID        string            `gorm:"type:uuid;not null;index"                       json:"form_id"`
	ApplicantName string            `gorm:"type:varchar(100);not null"                     json:"applicant_name"`
	Email         *string           `gorm:"type:varchar(255)"                              json:"email,omitempty"`
	ServerID      string            `gorm:"type:varchar(50);not null"                      json:"server_id"`
	Answers       datatypes.JSONMap `gorm:"type:jsonb;not null"                            json:"answers"`
	Status        string            `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	ReviewedBy    *string           `gorm:"type:uuid"                                      json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time        `json:"reviewed_at,omitempty"`
	ReviewNote    string            `gorm:"type:text"                                      json:"review_note,omitempty"`
	CandidateID   *string           `gorm:"type:uuid"                                      json:"candidate_id,omitempty"`
	SubmittedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"submitted_at"`

	// 关联
	Form *ApplicationForm `gorm:"foreignKey:FormID;references:FormID" json:"form,omitempty"`
}

// TableName 指定表名
func (Application) TableName() string { return "applications" }
