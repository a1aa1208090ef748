package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"dhs-academy/backend/internal/model"
)

// MessageRepository 内部消息数据访问接口
type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	GetByID(ctx context.Context, id string) (*model.Message, error)
	ListInbox(ctx context.Context, recipientID string, unreadOnly bool, offset, limit int) ([]model.Message, int64, error)
	ListOutbox(ctx context.Context, senderID string, offset, limit int) ([]model.Message, int64, error)
	// MarkRead 仅对收件人本人的未读消息生效，重复调用无副作用
	MarkRead(ctx context.Context, id, recipientID string, at time.Time) error
	CountUnread(ctx context.Context, recipientID string) (int64, error)
}

type messageRepo struct {
	db *gorm.DB
}

// NewMessageRepo 创建 MessageRepository 实例
func NewMessageRepo(db *gorm.DB) MessageRepository {
	return &messageRepo{db: db}
}

func (r *messageRepo) Create(ctx context.Context, msg *model.Message) error {
	return r.db.WithContext(ctx).Omit("Sender", "Recipient").Create(msg).Error
}

func (r *messageRepo) GetByID(ctx context.Context, id string) (*model.Message, error) {
	var msg model.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Recipient").
		Where("message_id = ?", id).
		First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepo) page(db *gorm.DB, preload string, offset, limit int) ([]model.Message, int64, error) {
	var msgs []model.Message
	var total int64

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Preload(preload).
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&msgs).Error; err != nil {
		return nil, 0, err
	}
	return msgs, total, nil
}

func (r *messageRepo) ListInbox(ctx context.Context, recipientID string, unreadOnly bool, offset, limit int) ([]model.Message, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.Message{}).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		db = db.Where("is_read = ?", false)
	}
	return r.page(db, "Sender", offset, limit)
}

func (r *messageRepo) ListOutbox(ctx context.Context, senderID string, offset, limit int) ([]model.Message, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.Message{}).Where("sender_id = ?", senderID)
	return r.page(db, "Recipient", offset, limit)
}

func (r *messageRepo) MarkRead(ctx context.Context, id, recipientID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("message_id = ? AND recipient_id = ? AND is_read = ?", id, recipientID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": at,
		}).Error
}

func (r *messageRepo) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}
