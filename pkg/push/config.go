package push

import "time"

// Provider names accepted by PUSH_PROVIDER
const (
	ProviderFCM = "fcm"
	ProviderLog = "log"
)

// Config holds the push provider settings
type Config struct {
	Provider string `env:"PUSH_PROVIDER" envDefault:"log"`

	// FCMProjectID defaults to the project of the service account
	FCMProjectID       string        `env:"FCM_PROJECT_ID"`
	FCMCredentialsFile string        `env:"FCM_CREDENTIALS_FILE"`
	FCMCredentialsJSON string        `env:"FCM_CREDENTIALS_JSON"`
	FCMEndpoint        string        `env:"FCM_ENDPOINT" envDefault:"https://fcm.googleapis.com"`
	SendTimeout        time.Duration `env:"PUSH_SEND_TIMEOUT" envDefault:"10s"`
}
