package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"dhs-academy/backend/internal/dto"
	"dhs-academy/backend/internal/model"
	"dhs-academy/backend/internal/repository"
)

var (
	ErrMessageNotFound   = errors.New("消息不存在")
	ErrRecipientNotFound = errors.New("收件人不存在或已停用")
	ErrMessageForbidden  = errors.New("无权查看该消息")
)

// MessageService 工作人员之间的内部消息
type MessageService interface {
	Send(ctx context.Context, req *dto.SendMessageRequest, senderID string) (*model.Message, error)
	Get(ctx context.Context, id, callerID string) (*model.Message, error)
	Inbox(ctx context.Context, req *dto.InboxRequest, callerID string) ([]model.Message, int64, error)
	Outbox(ctx context.Context, req *dto.PaginationRequest, callerID string) ([]model.Message, int64, error)
	MarkRead(ctx context.Context, id, callerID string) error
	UnreadCount(ctx context.Context, callerID string) (int64, error)
}

type messageService struct {
	repo     *repository.Repository
	notifier Notifier
	logger   *zap.Logger
}

// NewMessageService 创建 MessageService 实例
func NewMessageService(repo *repository.Repository, notifier Notifier, logger *zap.Logger) MessageService {
	return &messageService{repo: repo, notifier: notifier, logger: logger}
}

func (s *messageService) Send(ctx context.Context, req *dto.SendMessageRequest, senderID string) (*model.Message, error) {
	recipient, err := s.repo.User.GetByID(ctx, req.RecipientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipientNotFound
		}
		s.logger.Error("查询收件人失败", zap.Error(err))
		return nil, err
	}
	if !recipient.IsActive {
		return nil, ErrRecipientNotFound
	}

	msg := &model.Message{
		SenderID:    senderID,
		RecipientID: recipient.UserID,
		Subject:     req.Subject,
		Body:        req.Body,
		CreatedAt:   time.Now(),
	}
	if err := s.repo.Message.Create(ctx, msg); err != nil {
		s.logger.Error("发送消息失败", zap.Error(err))
		return nil, err
	}

	// 转发到 Discord（未配置时为空操作）
	s.notifier.Relay(fmt.Sprintf("Nouveau message pour %s : %s", recipient.DisplayName, msg.Subject))
	return msg, nil
}

func (s *messageService) Get(ctx context.Context, id, callerID string) (*model.Message, error) {
	msg, err := s.repo.Message.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		s.logger.Error("查询消息失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if msg.SenderID != callerID && msg.RecipientID != callerID {
		return nil, ErrMessageForbidden
	}
	return msg, nil
}

func (s *messageService) Inbox(ctx context.Context, req *dto.InboxRequest, callerID string) ([]model.Message, int64, error) {
	list, total, err := s.repo.Message.ListInbox(ctx, callerID, req.UnreadOnly, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询收件箱失败", zap.Error(err))
		return nil, 0, err
	}
	return list, total, nil
}

func (s *messageService) Outbox(ctx context.Context, req *dto.PaginationRequest, callerID string) ([]model.Message, int64, error) {
	list, total, err := s.repo.Message.ListOutbox(ctx, callerID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询发件箱失败", zap.Error(err))
		return nil, 0, err
	}
	return list, total, nil
}

// MarkRead 仅收件人可标记；重复标记为空操作
func (s *messageService) MarkRead(ctx context.Context, id, callerID string) error {
	msg, err := s.repo.Message.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMessageNotFound
		}
		return err
	}
	if msg.RecipientID != callerID {
		return ErrMessageForbidden
	}
	if err := s.repo.Message.MarkRead(ctx, id, callerID, time.Now()); err != nil {
		s.logger.Error("标记已读失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *messageService) UnreadCount(ctx context.Context, callerID string) (int64, error) {
	n, err := s.repo.Message.CountUnread(ctx, callerID)
	if err != nil {
		s.logger.Error("统计未读消息失败", zap.Error(err))
		return 0, err
	}
	return n, nil
}
