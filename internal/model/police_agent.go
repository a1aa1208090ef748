package model

import "time"

// 警员状态
const (
	AgentStatusActive     = "active"
	AgentStatusInactive   = "inactive"
	AgentStatusSuspended  = "suspended"
	AgentStatusTerminated = "terminated"
)

// PoliceAgent 警员表 — 对应 police_agents
type PoliceAgent struct {
	AgentID     string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"agent_id"`
	FirstName   string     `gorm:"type:varchar(50);not null"                      json:"first_name"`
	LastName    string     `gorm:"type:varchar(50);not null"                      json:"last_name"`
	BadgeNumber string     `gorm:"type:varchar(20);not null;uniqueIndex"          json:"badge_number"`
	ServerID    string     `gorm:"type:varchar(50)"                               json:"server_id,omitempty"`
	AgencyID    string     `gorm:"type:uuid;not null;index"                       json:"agency_id"`
	GradeID     string     `gorm:"type:uuid;not null"                             json:"grade_id"`
	CandidateID *string    `gorm:"type:uuid"                                      json:"candidate_id,omitempty"`
	Status      string     `gorm:"type:varchar(20);not null;default:'active'"     json:"status"`
	JoinedAt    *time.Time `gorm:"type:date"                                      json:"joined_at,omitempty"`
	SoftDeleteModel

	// 关联
	Agency *Agency `gorm:"foreignKey:AgencyID;references:AgencyID" json:"agency,omitempty"`
	Grade  *Grade  `gorm:"foreignKey:GradeID;references:GradeID"   json:"grade,omitempty"`
}

// TableName 指定表名
func (PoliceAgent) TableName() string { return "police_agents" }

// 处分类型
const (
	DisciplineWarning     = "warning"
	DisciplineReprimand   = "reprimand"
	DisciplineSuspension  = "suspension"
	DisciplineTermination = "termination"
)

// DisciplinaryRecord 处分记录表 — 对应 disciplinary_records
type DisciplinaryRecord struct {
	RecordID  string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"record_id"`
	AgentID   string     `gorm:"type:uuid;not null;index"                       json:"agent_id"`
	Type      string     `gorm:"type:varchar(20);not null"                      json:"type"`
	Reason    string     `gorm:"type:text;not null"                             json:"reason"`
	IssuedBy  string     `gorm:"type:uuid;not null"                             json:"issued_by"`
	EndsAt    *time.Time `json:"ends_at,omitempty"` // 停职截止时间，仅 suspension 使用
	CreatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Agent  *PoliceAgent `gorm:"foreignKey:AgentID;references:AgentID"   json:"agent,omitempty"`
	Issuer *User        `gorm:"foreignKey:IssuedBy;references:UserID"   json:"issuer,omitempty"`
}

// TableName 指定表名
func (DisciplinaryRecord) TableName() string { return "disciplinary_records" }
