package services

import (
	"context"
	"errors"

	"musteat-service/internal/models"
	"musteat-service/internal/repositories/postgres"

	"gorm.io/gorm"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrNotMessageOwner = errors.New("not the message owner")
)

type MessageService interface {
	List(ctx context.Context, userID, messageType string) (*models.MessageList, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, messageID string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID, messageID string) error
}

type messageService struct {
	messages postgres.MessageRepository
}

func NewMessageService(messages postgres.MessageRepository) MessageService {
	return &messageService{messages: messages}
}

func (s *messageService) List(ctx context.Context, userID, messageType string) (*models.MessageList, error) {
	if userID == "" {
		return nil, ErrInvalidArgument
	}
	messages, err := s.messages.ListByReceiver(ctx, userID, messageType)
	if err != nil {
		return nil, err
	}
	counts, err := s.messages.CountByType(ctx, userID)
	if err != nil {
		return nil, err
	}
	unread, err := s.messages.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.MessageList{
		Messages:    messages,
		UnreadCount: int(unread),
		Counts:      counts,
	}, nil
}

func (s *messageService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, ErrInvalidArgument
	}
	return s.messages.CountUnread(ctx, userID)
}

func (s *messageService) MarkRead(ctx context.Context, userID, messageID string) error {
	message, err := s.owned(ctx, userID, messageID)
	if err != nil {
		return err
	}
	if message.Read {
		return nil
	}
	return s.messages.MarkRead(ctx, messageID)
}

func (s *messageService) MarkAllRead(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrInvalidArgument
	}
	return s.messages.MarkAllRead(ctx, userID)
}

func (s *messageService) Delete(ctx context.Context, userID, messageID string) error {
	if _, err := s.owned(ctx, userID, messageID); err != nil {
		return err
	}
	return s.messages.Delete(ctx, messageID)
}

// owned fetches the message and checks the caller is its receiver.
func (s *messageService) owned(ctx context.Context, userID, messageID string) (*models.Message, error) {
	if userID == "" || messageID == "" {
		return nil, ErrInvalidArgument
	}
	message, err := s.messages.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	if message.ReceiverID != userID {
		return nil, ErrNotMessageOwner
	}
	return message, nil
}
