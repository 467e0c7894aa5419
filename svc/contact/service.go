package contact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/applytrack/pkg/email"
	"github.com/dmitrymomot/applytrack/pkg/logger"
)

// SuccessMessage is shown to the visitor after a message is accepted.
const SuccessMessage = "Your message has been sent successfully."

type Service struct {
	store    Store
	mailer   email.Sender
	notifyTo string
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithNotifyTo sets the support address that receives new messages. Without
// it no notification is sent.
func WithNotifyTo(addr string) Option {
	return func(s *Service) {
		s.notifyTo = addr
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService panics on a nil store. A nil mailer disables notifications.
func NewService(store Store, mailer email.Sender, opts ...Option) *Service {
	if store == nil {
		panic("contact: store is required")
	}
	s := &Service{
		store:  store,
		mailer: mailer,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("contact"))
	return s
}

// Create validates and stores the message, then notifies support. The
// message is kept even if the notification fails.
func (s *Service) Create(ctx context.Context, in Input) (*Message, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	m := &Message{
		ID:        uuid.New(),
		Name:      in.Name,
		Email:     in.Email,
		Subject:   in.Subject,
		Message:   in.Message,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateMessage(ctx, m); err != nil {
		return nil, errors.Join(ErrSaveMessage, err)
	}

	if err := s.notify(ctx, m); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "contact notification failed, message stored",
			slog.String("message_id", m.ID.String()),
			logger.Error(err),
		)
	}
	return m, nil
}

func (s *Service) notify(ctx context.Context, m *Message) error {
	if s.mailer == nil || s.notifyTo == "" {
		return nil
	}
	return s.mailer.SendEmail(ctx, email.SendEmailParams{
		SendTo:   s.notifyTo,
		ReplyTo:  m.Email,
		Subject:  "New Contact Form: " + m.Subject,
		BodyText: notificationBody(m),
		Tag:      "contact",
	})
}

func notificationBody(m *Message) string {
	return fmt.Sprintf("From: %s <%s>\nSubject: %s\nReceived: %s\n\n%s\n",
		m.Name, m.Email, m.Subject, m.CreatedAt.Format(time.RFC1123), m.Message)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Message, error) {
	return s.store.GetMessage(ctx, id)
}

func (s *Service) List(ctx context.Context, status Status, limit int) ([]Message, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.store.ListMessages(ctx, status, limit)
}

// SetStatus moves a message through the support workflow.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	return s.store.UpdateStatus(ctx, id, status)
}
