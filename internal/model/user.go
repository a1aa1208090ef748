package model

import "time"

// 工作人员角色：instructor < direction < admin
const (
	RoleInstructor = "instructor"
	RoleDirection  = "direction"
	RoleAdmin      = "admin"
)

// User 工作人员账号表 — 对应 users
type User struct {
	UserID             string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Identifier         string     `gorm:"type:varchar(50);not null;uniqueIndex"          json:"identifier"`
	DisplayName        string     `gorm:"type:varchar(100);not null"                     json:"display_name"`
	Email              *string    `gorm:"type:varchar(255)"                              json:"email,omitempty"`
	PasswordHash       string     `gorm:"type:varchar(255);not null"                     json:"-"`
	Role               string     `gorm:"type:varchar(20);not null;default:'instructor'" json:"role"`
	IsActive           bool       `gorm:"not null;default:true"                          json:"is_active"`
	MustChangePassword bool       `gorm:"not null;default:false"                         json:"must_change_password"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// LoginAttempt 登录尝试记录 — 对应 login_attempts（定时清理）
type LoginAttempt struct {
	LoginAttemptID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"login_attempt_id"`
	Identifier     string    `gorm:"type:varchar(50);not null;index"                json:"identifier"`
	IP             string    `gorm:"type:varchar(64)"                               json:"ip"`
	Success        bool      `gorm:"not null"                                       json:"success"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index"       json:"created_at"`
}

// TableName 指定表名
func (LoginAttempt) TableName() string { return "login_attempts" }
