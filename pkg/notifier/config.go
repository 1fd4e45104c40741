package notifier

import (
	"time"

	"github.com/dmitrymomot/alertkit/pkg/queue"
)

// Config holds the pipeline settings that are not provider specific
type Config struct {
	// AdminEmails receive CONTACT_REQUEST emails
	AdminEmails []string `env:"ADMIN_EMAILS" envSeparator:","`

	EmailRetention    time.Duration `env:"EMAIL_DLQ_RETENTION" envDefault:"336h"`
	PushRetention     time.Duration `env:"PUSH_DLQ_RETENTION" envDefault:"72h"`
	WhatsAppRetention time.Duration `env:"WHATSAPP_DLQ_RETENTION" envDefault:"168h"`

	Queue queue.Config
}
