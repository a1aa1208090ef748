package dto

// ── 候选人模块 DTO ──

// CreateCandidateRequest 创建候选人请求
type CreateCandidateRequest struct {
	FirstName string  `json:"first_name" binding:"required,max=50"`
	LastName  string  `json:"last_name"  binding:"required,max=50"`
	ServerID  string  `json:"server_id"  binding:"required,max=50"`
	Email     *string `json:"email"      binding:"omitempty,email"`
	Notes     string  `json:"notes"      binding:"omitempty,max=2000"`
}

// UpdateCandidateRequest 更新候选人请求（认证状态不可经此修改）
type UpdateCandidateRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=50"`
	LastName  *string `json:"last_name"  binding:"omitempty,max=50"`
	ServerID  *string `json:"server_id"  binding:"omitempty,max=50"`
	Email     *string `json:"email"      binding:"omitempty,email"`
	Status    *string `json:"status"     binding:"omitempty,oneof=active archived"`
	Notes     *string `json:"notes"      binding:"omitempty,max=2000"`
}

// CandidateListRequest 候选人列表查询参数
type CandidateListRequest struct {
	PaginationRequest
	Keyword     string `form:"keyword"      binding:"omitempty,max=50"`
	Status      string `form:"status"       binding:"omitempty,oneof=active archived"`
	IsCertified *bool  `form:"is_certified"`
	ClassID     string `form:"class_id"     binding:"omitempty,uuid"`
}

// RecordScoreRequest 录入子模块评分请求
type RecordScoreRequest struct {
	SubModuleID string   `json:"sub_module_id" binding:"required,uuid"`
	Score       *float64 `json:"score"         binding:"required,min=0"`
	Comment     string   `json:"comment"       binding:"omitempty,max=2000"`
}

// SetAppreciationRequest 模块评语请求
type SetAppreciationRequest struct {
	ModuleID string `json:"module_id" binding:"required,uuid"`
	Comment  string `json:"comment"   binding:"required,max=4000"`
}

// ProgressSummary 候选人总体进度
type ProgressSummary struct {
	TotalScore       float64 `json:"total_score"`
	MaxPossibleScore float64 `json:"max_possible_score"`
	Percentage       int     `json:"percentage"`
}

// SubModuleProgress 子模块评分明细
type SubModuleProgress struct {
	SubModuleID string  `json:"sub_module_id"`
	Name        string  `json:"name"`
	Score       float64 `json:"score"`
	MaxScore    float64 `json:"max_score"`
	Graded      bool    `json:"graded"`
	Comment     string  `json:"comment,omitempty"`
}

// ModuleProgress 单个模块的进度汇总
type ModuleProgress struct {
	ModuleID     string              `json:"module_id"`
	Name         string              `json:"name"`
	TotalScore   float64             `json:"total_score"`
	MaxScore     float64             `json:"max_score"`
	Percentage   int                 `json:"percentage"`
	Appreciation string              `json:"appreciation,omitempty"`
	SubModules   []SubModuleProgress `json:"sub_modules"`
}

// CandidateProgressResponse 候选人进度响应
type CandidateProgressResponse struct {
	CandidateID string           `json:"candidate_id"`
	FullName    string           `json:"full_name"`
	IsCertified bool             `json:"is_certified"`
	Eligible    bool             `json:"eligible"`
	Progress    ProgressSummary  `json:"progress"`
	Modules     []ModuleProgress `json:"modules"`
}

// EligibleCandidateResponse 可认证候选人列表项
type EligibleCandidateResponse struct {
	CandidateID string          `json:"candidate_id"`
	FullName    string          `json:"full_name"`
	ServerID    string          `json:"server_id"`
	Progress    ProgressSummary `json:"progress"`
}
