package email

// Config holds the fallback email settings. All fields are optional: without
// a recipient the email fallback is disabled, and without Postmark tokens
// messages are written to DevDir instead of being sent.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL"`
	SupportEmail         string `env:"SUPPORT_EMAIL"`
	NotifyTo             string `env:"NOTIFY_EMAIL_TO"`
	DevDir               string `env:"EMAIL_DEV_DIR" envDefault:"./tmp/emails"`
}

// Enabled reports whether a fallback recipient is configured.
func (c Config) Enabled() bool {
	return c.NotifyTo != ""
}

// UsePostmark reports whether both Postmark tokens are present.
func (c Config) UsePostmark() bool {
	return c.PostmarkServerToken != "" && c.PostmarkAccountToken != ""
}
