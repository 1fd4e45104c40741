package push

// Job is the payload of a push queue task. Empty DeviceTokens means
// "all active tokens of UserID at send time".
type Job struct {
	UserID       string            `json:"user_id"`
	Title        string            `json:"title"`
	Body         string            `json:"body"`
	Data         map[string]string `json:"data,omitempty"`
	DeviceTokens []string          `json:"device_tokens,omitempty"`
}

// Message is one notification for one device
type Message struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// Result summarises a processed job
type Result struct {
	Sent       int
	Invalid    int
	Failed     int
	MessageIDs []string
}
