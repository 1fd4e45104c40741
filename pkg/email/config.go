package email

import "time"

// Provider names accepted by EMAIL_PROVIDER
const (
	ProviderPostmark = "postmark"
	ProviderSMTP     = "smtp"
	ProviderSES      = "ses"
	ProviderDev      = "dev"
)

// Config holds email service configuration.
// Only the settings of the selected provider are checked; SenderEmail is
// always required because it establishes the sender identity.
type Config struct {
	Provider     string `env:"EMAIL_PROVIDER" envDefault:"dev"`
	SenderEmail  string `env:"SENDER_EMAIL,required"`
	SupportEmail string `env:"SUPPORT_EMAIL"`

	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`

	SMTPHost     string        `env:"SMTP_HOST"`
	SMTPPort     int           `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string        `env:"SMTP_USERNAME"`
	SMTPPassword string        `env:"SMTP_PASSWORD"`
	SMTPSSL      bool          `env:"SMTP_SSL" envDefault:"false"`
	SMTPTimeout  time.Duration `env:"SMTP_TIMEOUT" envDefault:"30s"`

	SESRegion string `env:"SES_REGION" envDefault:"us-east-1"`

	DevDir string `env:"EMAIL_DEV_DIR" envDefault:"./tmp/emails"`
}
