package dto

// ── 申请表单 DTO ──

// FormFieldInput 表单字段定义
type FormFieldInput struct {
	Key      string   `json:"key"      binding:"required,max=50"`
	Label    string   `json:"label"    binding:"required,max=200"`
	Type     string   `json:"type"     binding:"required,oneof=text textarea email number select checkbox"`
	Required bool     `json:"required"`
	Options  []string `json:"options"  binding:"omitempty,dive,max=200"`
}

// CreateFormRequest 创建表单请求
type CreateFormRequest struct {
	Title       string           `json:"title"       binding:"required,max=200"`
	Description string           `json:"description" binding:"omitempty,max=4000"`
	Fields      []FormFieldInput `json:"fields"      binding:"required,min=1,dive"`
	IsOpen      bool             `json:"is_open"`
}

// UpdateFormRequest 更新表单请求
type UpdateFormRequest struct {
	Title       *string          `json:"title"       binding:"omitempty,max=200"`
	Description *string          `json:"description" binding:"omitempty,max=4000"`
	Fields      []FormFieldInput `json:"fields"      binding:"omitempty,dive"`
	IsOpen      *bool            `json:"is_open"`
}

// SubmitApplicationRequest 提交申请请求，answers 以字段 key 为键
type SubmitApplicationRequest struct {
	ApplicantName string                 `json:"applicant_name" binding:"required,max=100"`
	Email         *string                `json:"email"          binding:"omitempty,email"`
	ServerID      string                 `json:"server_id"      binding:"required,max=50"`
	Answers       map[string]interface{} `json:"answers"        binding:"required"`
}

// ApplicationListRequest 申请列表查询参数
type ApplicationListRequest struct {
	PaginationRequest
	FormID string `form:"form_id" binding:"omitempty,uuid"`
	Status string `form:"status"  binding:"omitempty,oneof=pending accepted rejected"`
}

// ReviewApplicationRequest 审核申请请求
type ReviewApplicationRequest struct {
	Note string `json:"note" binding:"omitempty,max=2000"`
}

// SubmitApplicationResponse 提交申请响应
type SubmitApplicationResponse struct {
	ApplicationID string `json:"application_id"`
	Status        string `json:"status"`
}
