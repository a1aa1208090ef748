package dto

// ── 内部消息 DTO ──

// SendMessageRequest 发送消息请求
type SendMessageRequest struct {
	RecipientID string `json:"recipient_id" binding:"required,uuid"`
	Subject     string `json:"subject"      binding:"required,max=200"`
	Body        string `json:"body"         binding:"required,max=10000"`
}

// InboxRequest 收件箱查询参数
type InboxRequest struct {
	PaginationRequest
	UnreadOnly bool `form:"unread_only"`
}

// UnreadCountResponse 未读数响应
type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}
