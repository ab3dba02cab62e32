package email

// Config holds email transport settings. Without Postmark tokens the
// transport falls back to DevSender writing into DevDir.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL,required"`
	SupportEmail         string `env:"SUPPORT_EMAIL,required"`
	DevDir               string `env:"EMAIL_DEV_DIR" envDefault:"./tmp/emails"`
}

// PostmarkConfigured reports whether both Postmark tokens are set.
func (c Config) PostmarkConfigured() bool {
	return c.PostmarkServerToken != "" && c.PostmarkAccountToken != ""
}
