package model

import "time"

// Message 内部消息表 — 对应 messages
type Message struct {
	MessageID   string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"message_id"`
	SenderID    string     `gorm:"type:uuid;not null;index"                       json:"sender_id"`
	RecipientID string     `gorm:"type:uuid;not null;index"                       json:"recipient_id"`
	Subject     string     `gorm:"type:varchar(200);not null"                     json:"subject"`
	Body        string     `gorm:"type:text;not null"                             json:"body"`
	IsRead      bool       `gorm:"not null;default:false"                         json:"is_read"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Sender    *User `gorm:"foreignKey:SenderID;references:UserID"    json:"sender,omitempty"`
	Recipient *User `gorm:"foreignKey:RecipientID;references:UserID" json:"recipient,omitempty"`
}

// TableName 指定表名
func (Message) TableName() string { return "messages" }
