package model

import "time"

// SubModuleScore 子模块评分表 — 对应 sub_module_scores
// (candidate_id, sub_module_id) 唯一，重复评分走 upsert
type SubModuleScore struct {
	ScoreID     string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"score_id"`
	CandidateID string    `gorm:"type:uuid;not null;uniqueIndex:uq_score_pair"   json:"candidate_id"`
	SubModuleID string    `gorm:"type:uuid;not null;uniqueIndex:uq_score_pair"   json:"sub_module_id"`
	Score       float64   `gorm:"type:numeric(6,2);not null"                     json:"score"`
	MaxScore    float64   `gorm:"type:numeric(6,2);not null"                     json:"max_score"`
	GradedBy    *string   `gorm:"type:uuid"                                      json:"graded_by,omitempty"`
	Comment     string    `gorm:"type:text"                                      json:"comment,omitempty"`
	GradedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"graded_at"`
	BaseModel
}

// TableName 指定表名
func (SubModuleScore) TableName() string { return "sub_module_scores" }

// ModuleAppreciation 模块评语表 — 对应 module_appreciations，复合主键
type ModuleAppreciation struct {
	CandidateID string `gorm:"type:uuid;primaryKey" json:"candidate_id"`
	ModuleID    string `gorm:"type:uuid;primaryKey" json:"module_id"`
	Comment     string `gorm:"type:text;not null"   json:"comment"`
	AuthorID    string `gorm:"type:uuid;not null"   json:"author_id"`
	BaseModel
}

// TableName 指定表名
func (ModuleAppreciation) TableName() string { return "module_appreciations" }
