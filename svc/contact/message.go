// Package contact accepts messages from the public contact form, stores
// them for the support inbox and notifies support by email.
package contact

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/applytrack/pkg/validator"
)

// Status tracks how far support has handled a message.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRead      Status = "read"
	StatusResponded Status = "responded"
	StatusArchived  Status = "archived"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusRead, StatusResponded, StatusArchived:
		return true
	}
	return false
}

// Message is a stored contact form submission.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Input is what a visitor submits.
type Input struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Subject string `json:"subject" form:"subject"`
	Message string `json:"message" form:"message"`
}

// Validate requires every field and a well-formed email.
func (in Input) Validate() error {
	return validator.Apply(
		validator.Required("name", in.Name),
		validator.MaxLen("name", in.Name, 200),
		validator.Required("email", in.Email),
		validator.ValidEmail("email", in.Email),
		validator.Required("subject", in.Subject),
		validator.MaxLen("subject", in.Subject, 300),
		validator.Required("message", in.Message),
		validator.MaxLen("message", in.Message, 10000),
	)
}
