package whatsapp

import "time"

// Provider names accepted by WHATSAPP_PROVIDER
const (
	ProviderMSG91 = "msg91"
	ProviderLog   = "log"
)

// Config holds the WhatsApp provider settings
type Config struct {
	Provider string `env:"WHATSAPP_PROVIDER" envDefault:"log"`

	// Language and Namespace apply to jobs that do not set their own
	Language  string `env:"WHATSAPP_LANGUAGE" envDefault:"en"`
	Namespace string `env:"WHATSAPP_NAMESPACE"`

	MSG91AuthKey          string        `env:"MSG91_AUTH_KEY"`
	MSG91IntegratedNumber string        `env:"MSG91_INTEGRATED_NUMBER"`
	MSG91Endpoint         string        `env:"MSG91_ENDPOINT" envDefault:"https://api.msg91.com/api/v5/whatsapp/whatsapp-outbound-message/bulk/"`
	SendTimeout           time.Duration `env:"WHATSAPP_SEND_TIMEOUT" envDefault:"10s"`
}
