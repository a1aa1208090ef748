package model

import (
	"time"

	"github.com/lib/pq"
)

// 班级状态：active → completed | cancelled（终态不可逆）
const (
	ClassStatusActive    = "active"
	ClassStatusCompleted = "completed"
	ClassStatusCancelled = "cancelled"
)

// Class 培训班级表 — 对应 classes，candidate_ids 保持加入顺序
type Class struct {
	ClassID      string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"class_id"`
	Name         string         `gorm:"type:varchar(100);not null"                     json:"name"`
	Description  string         `gorm:"type:text"                                      json:"description,omitempty"`
	InstructorID string         `gorm:"type:uuid;not null;index"                       json:"instructor_id"`
	CandidateIDs pq.StringArray `gorm:"type:text[];not null;default:'{}'"              json:"candidate_ids"`
	Status       string         `gorm:"type:varchar(20);not null;default:'active'"     json:"status"`
	StartDate    *time.Time     `gorm:"type:date"                                      json:"start_date,omitempty"`
	EndDate      *time.Time     `gorm:"type:date"                                      json:"end_date,omitempty"`
	SoftDeleteModel

	// 关联
	Instructor *User `gorm:"foreignKey:InstructorID;references:UserID" json:"instructor,omitempty"`
}

// TableName 指定表名
func (Class) TableName() string { return "classes" }

// HasCandidate 判断候选人是否已在班级中
func (c *Class) HasCandidate(candidateID string) bool {
	for _, id := range c.CandidateIDs {
		if id == candidateID {
			return true
		}
	}
	return false
}
