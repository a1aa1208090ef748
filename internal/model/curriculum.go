package model

// Module 培训模块表 — 对应 modules
type Module struct {
	ModuleID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"module_id"`
	Name        string `gorm:"type:varchar(100);not null"                     json:"name"`
	Description string `gorm:"type:text"                                      json:"description,omitempty"`
	Position    int    `gorm:"not null;default:0"                             json:"position"`
	SoftDeleteModel

	// 关联（按 position 排序预加载）
	SubModules []SubModule `gorm:"foreignKey:ModuleID;references:ModuleID" json:"sub_modules,omitempty"`
}

// TableName 指定表名
func (Module) TableName() string { return "modules" }

// SubModule 子模块表 — 对应 sub_modules，max_score 为该子模块评分上限
type SubModule struct {
	SubModuleID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"sub_module_id"`
	ModuleID    string  `gorm:"type:uuid;not null;index"                       json:"module_id"`
	Name        string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Description string  `gorm:"type:text"                                      json:"description,omitempty"`
	MaxScore    float64 `gorm:"type:numeric(6,2);not null"                     json:"max_score"`
	Position    int     `gorm:"not null;default:0"                             json:"position"`
	SoftDeleteModel
}

// TableName 指定表名
func (SubModule) TableName() string { return "sub_modules" }
