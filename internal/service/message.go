package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/damkaswim/storefront/internal/domain"
	"github.com/damkaswim/storefront/internal/event"
	"github.com/damkaswim/storefront/internal/mailer"
	"github.com/damkaswim/storefront/internal/repository"
	apperrors "github.com/damkaswim/storefront/pkg/errors"
)

// MessageService implements the contact form and its admin inbox.
type MessageService struct {
	messages    repository.MessageRepository
	subscribers repository.SubscriberRepository
	sender      mailer.Sender
	producer    *event.Producer
	logger      *slog.Logger
}

// NewMessageService creates a new contact message service.
func NewMessageService(
	messages repository.MessageRepository,
	subscribers repository.SubscriberRepository,
	sender mailer.Sender,
	producer *event.Producer,
	logger *slog.Logger,
) *MessageService {
	return &MessageService{
		messages:    messages,
		subscribers: subscribers,
		sender:      sender,
		producer:    producer,
		logger:      logger,
	}
}

// SubmitContactInput holds a contact form submission.
type SubmitContactInput struct {
	Name       string
	Email      string
	Phone      string
	Subject    string
	Body       string
	Newsletter bool
}

// SubmitContact records a new contact message. When the sender opted in, the
// email is also added to the newsletter list.
func (s *MessageService) SubmitContact(ctx context.Context, input *SubmitContactInput) (*domain.ContactMessage, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if strings.TrimSpace(input.Email) == "" {
		return nil, apperrors.InvalidInput("email is required")
	}
	if strings.TrimSpace(input.Body) == "" {
		return nil, apperrors.InvalidInput("message body is required")
	}

	now := time.Now().UTC()
	message := &domain.ContactMessage{
		ID:         uuid.New().String(),
		Name:       strings.TrimSpace(input.Name),
		Email:      strings.TrimSpace(input.Email),
		Phone:      input.Phone,
		Subject:    input.Subject,
		Body:       input.Body,
		Newsletter: input.Newsletter,
		Status:     domain.MessageStatusNew,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.messages.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("create contact message: %w", err)
	}

	if input.Newsletter {
		if err := s.Subscribe(ctx, message.Email); err != nil {
			s.logger.ErrorContext(ctx, "failed to subscribe contact to newsletter",
				slog.String("message_id", message.ID),
				slog.String("error", err.Error()),
			)
			// The message itself was saved; the opt-in is best effort.
		}
	}

	if err := s.producer.PublishMessageReceived(ctx, message); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish message.received event",
			slog.String("message_id", message.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "contact message received",
		slog.String("message_id", message.ID),
		slog.String("subject", message.Subject),
	)

	return message, nil
}

// Subscribe adds an email to the newsletter list. Subscribing twice is a
// no-op.
func (s *MessageService) Subscribe(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperrors.InvalidInput("email is required")
	}

	sub := &domain.Subscriber{
		ID:        uuid.New().String(),
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.subscribers.Subscribe(ctx, sub); err != nil {
		return fmt.Errorf("subscribe to newsletter: %w", err)
	}
	return nil
}

// ListSubscribers returns newsletter subscribers plus the total count.
func (s *MessageService) ListSubscribers(ctx context.Context, limit, offset int) ([]domain.Subscriber, int, error) {
	subscribers, total, err := s.subscribers.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list subscribers: %w", err)
	}
	return subscribers, total, nil
}

// GetMessage retrieves a contact message by its ID.
func (s *MessageService) GetMessage(ctx context.Context, id string) (*domain.ContactMessage, error) {
	message, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get message by id: %w", err)
	}
	return message, nil
}

// ListMessages returns messages matching the filter plus the total count.
func (s *MessageService) ListMessages(ctx context.Context, filter repository.MessageFilter) ([]domain.ContactMessage, int, error) {
	if filter.Status != "" && !domain.IsValidMessageStatus(filter.Status) {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("unknown message status %q", filter.Status))
	}

	messages, total, err := s.messages.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list messages: %w", err)
	}
	return messages, total, nil
}

// UpdateMessageStatus sets the status of a message.
func (s *MessageService) UpdateMessageStatus(ctx context.Context, id, status string) error {
	if !domain.IsValidMessageStatus(status) {
		return apperrors.InvalidInput(fmt.Sprintf("unknown message status %q", status))
	}

	if err := s.messages.UpdateStatus(ctx, id, status); err != nil {
		return fmt.Errorf("update message status: %w", err)
	}

	s.logger.InfoContext(ctx, "message status updated",
		slog.String("message_id", id),
		slog.String("status", status),
	)
	return nil
}

// ReplyInput holds an admin reply to a contact message.
type ReplyInput struct {
	Subject string
	Body    string
}

// Reply sends an email reply to the message sender and marks the message
// replied. The reply is only recorded after the mail was accepted.
func (s *MessageService) Reply(ctx context.Context, id string, input *ReplyInput) (*domain.ContactMessage, error) {
	if strings.TrimSpace(input.Subject) == "" {
		return nil, apperrors.InvalidInput("reply subject is required")
	}
	if strings.TrimSpace(input.Body) == "" {
		return nil, apperrors.InvalidInput("reply body is required")
	}

	message, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get message by id: %w", err)
	}

	if err := s.sender.Send(ctx, mailer.Email{
		To:      message.Email,
		Subject: input.Subject,
		Body:    input.Body,
	}); err != nil {
		return nil, fmt.Errorf("send reply: %w", err)
	}

	repliedAt := time.Now().UTC()
	if err := s.messages.SaveReply(ctx, id, input.Subject, input.Body, repliedAt); err != nil {
		return nil, fmt.Errorf("save reply: %w", err)
	}

	message.Status = domain.MessageStatusReplied
	message.ReplySubject = input.Subject
	message.ReplyBody = input.Body
	message.RepliedAt = &repliedAt
	message.UpdatedAt = repliedAt

	s.logger.InfoContext(ctx, "message replied",
		slog.String("message_id", id),
		slog.String("to", message.Email),
	)

	return message, nil
}

// DeleteMessage removes a contact message.
func (s *MessageService) DeleteMessage(ctx context.Context, id string) error {
	if err := s.messages.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	s.logger.InfoContext(ctx, "message deleted", slog.String("message_id", id))
	return nil
}
