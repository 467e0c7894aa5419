package email

// Config holds email delivery settings. Without a Postmark server token
// messages are written to DevDir instead of being sent.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL" envDefault:"noreply@applytrack.app"`
	SupportEmail         string `env:"SUPPORT_EMAIL" envDefault:"support@applytrack.app"`
	DevDir               string `env:"EMAIL_DEV_DIR" envDefault:"tmp/emails"`
}

// Enabled reports whether real delivery is configured.
func (c Config) Enabled() bool { return c.PostmarkServerToken != "" }
