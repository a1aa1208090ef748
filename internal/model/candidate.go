package model

import "time"

// 候选人状态
const (
	CandidateStatusActive   = "active"
	CandidateStatusArchived = "archived"
)

// Candidate 培训候选人表 — 对应 candidates
type Candidate struct {
	CandidateID       string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"candidate_id"`
	FirstName         string     `gorm:"type:varchar(50);not null"                      json:"first_name"`
	LastName          string     `gorm:"type:varchar(50);not null"                      json:"last_name"`
	ServerID          string     `gorm:"type:varchar(50);not null;index"                json:"server_id"`
	Email             *string    `gorm:"type:varchar(255)"                              json:"email,omitempty"`
	Status            string     `gorm:"type:varchar(20);not null;default:'active'"     json:"status"`
	IsCertified       bool       `gorm:"not null;default:false"                         json:"is_certified"`
	CertifiedBy       *string    `gorm:"type:uuid"                                      json:"certified_by,omitempty"`
	CertificationDate *time.Time `json:"certification_date,omitempty"`
	ApplicationID     *string    `gorm:"type:uuid"                                      json:"application_id,omitempty"`
	Notes             string     `gorm:"type:text"                                      json:"notes,omitempty"`
	SoftDeleteModel

	// 关联
	Scores []SubModuleScore `gorm:"foreignKey:CandidateID;references:CandidateID" json:"scores,omitempty"`
}

// TableName 指定表名
func (Candidate) TableName() string { return "candidates" }

// FullName 返回 "名 姓" 形式的展示名
func (c *Candidate) FullName() string {
	return c.FirstName + " " + c.LastName
}
