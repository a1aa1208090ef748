package dto

// ── 培训大纲 DTO ──

// CreateModuleRequest 创建模块请求
type CreateModuleRequest struct {
	Name        string `json:"name"        binding:"required,max=100"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	Position    int    `json:"position"    binding:"omitempty,min=0"`
}

// UpdateModuleRequest 更新模块请求
type UpdateModuleRequest struct {
	Name        *string `json:"name"        binding:"omitempty,max=100"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Position    *int    `json:"position"    binding:"omitempty,min=0"`
}

// CreateSubModuleRequest 创建子模块请求
type CreateSubModuleRequest struct {
	Name        string  `json:"name"        binding:"required,max=100"`
	Description string  `json:"description" binding:"omitempty,max=2000"`
	MaxScore    float64 `json:"max_score"   binding:"required,gt=0"`
	Position    int     `json:"position"    binding:"omitempty,min=0"`
}

// UpdateSubModuleRequest 更新子模块请求
type UpdateSubModuleRequest struct {
	Name        *string  `json:"name"        binding:"omitempty,max=100"`
	Description *string  `json:"description" binding:"omitempty,max=2000"`
	MaxScore    *float64 `json:"max_score"   binding:"omitempty,gt=0"`
	Position    *int     `json:"position"    binding:"omitempty,min=0"`
}
