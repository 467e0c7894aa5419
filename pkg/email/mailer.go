// Package email delivers transactional email through Postmark, or writes it
// to disk during development.
package email

import (
	"context"

	"github.com/dmitrymomot/applytrack/pkg/validator"
)

// Sender delivers one message.
type Sender interface {
	SendEmail(ctx context.Context, params SendEmailParams) error
}

type SendEmailParams struct {
	SendTo   string `json:"send_to"`
	ReplyTo  string `json:"reply_to,omitempty"`
	Subject  string `json:"subject"`
	BodyText string `json:"body_text"`
	Tag      string `json:"tag,omitempty"`
}

func (p SendEmailParams) Validate() error {
	return validator.Apply(
		validator.Required("send_to", p.SendTo),
		validator.ValidEmail("send_to", p.SendTo),
		validator.ValidEmail("reply_to", p.ReplyTo),
		validator.Required("subject", p.Subject),
		validator.Required("body_text", p.BodyText),
	)
}

// New picks the Postmark sender when configured and the dev sender otherwise.
func New(cfg Config) (Sender, error) {
	if cfg.Enabled() {
		return NewPostmarkClient(cfg)
	}
	return NewDevSender(cfg.DevDir), nil
}
