package model

// Agency 执法机构表 — 对应 agencies
type Agency struct {
	AgencyID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"agency_id"`
	Name        string `gorm:"type:varchar(100);not null;uniqueIndex"         json:"name"`
	Acronym     string `gorm:"type:varchar(20)"                               json:"acronym,omitempty"`
	Description string `gorm:"type:text"                                      json:"description,omitempty"`
	SoftDeleteModel

	// 关联
	Grades []Grade `gorm:"foreignKey:AgencyID;references:AgencyID" json:"grades,omitempty"`
}

// TableName 指定表名
func (Agency) TableName() string { return "agencies" }

// Grade 职级表 — 对应 grades，rank_order 越小职级越高
type Grade struct {
	GradeID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"grade_id"`
	AgencyID  string `gorm:"type:uuid;not null;index"                       json:"agency_id"`
	Name      string `gorm:"type:varchar(100);not null"                     json:"name"`
	RankOrder int    `gorm:"not null;default:0"                             json:"rank_order"`
	SoftDeleteModel
}

// TableName 指定表名
func (Grade) TableName() string { return "grades" }
