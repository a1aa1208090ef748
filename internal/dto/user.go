package dto

// ── 用户模块 DTO ──

// CreateUserRequest 创建工作人员请求（临时密码由服务端生成）
type CreateUserRequest struct {
	Identifier  string  `json:"identifier"   binding:"required,min=3,max=50"`
	DisplayName string  `json:"display_name" binding:"required,min=2,max=100"`
	Email       *string `json:"email"        binding:"omitempty,email"`
	Role        string  `json:"role"         binding:"required,oneof=instructor direction admin"`
}

// CreateUserResponse 创建工作人员响应，临时密码仅返回一次
type CreateUserResponse struct {
	User         UserResponse `json:"user"`
	TempPassword string       `json:"temp_password"`
}

// UserListRequest 工作人员列表查询参数
type UserListRequest struct {
	PaginationRequest
	Role     string `form:"role"      binding:"omitempty,oneof=instructor direction admin"`
	Keyword  string `form:"keyword"   binding:"omitempty,max=50"`
	IsActive *bool  `form:"is_active"`
}

// UpdateUserRequest 更新工作人员请求
type UpdateUserRequest struct {
	DisplayName *string `json:"display_name" binding:"omitempty,min=2,max=100"`
	Email       *string `json:"email"        binding:"omitempty,email"`
	IsActive    *bool   `json:"is_active"`
}

// AssignRoleRequest 分配角色请求
type AssignRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=instructor direction admin"`
}

// ResetPasswordResponse 重置密码响应
type ResetPasswordResponse struct {
	TempPassword string `json:"temp_password"`
}
