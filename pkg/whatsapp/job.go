package whatsapp

// MetaDedupeKey is the Job.Meta entry identifying the business fact a message
// is about. It is carried through to logs; nothing deduplicates on it.
const MetaDedupeKey = "dedupeKey"

// Job is the payload of a whatsapp queue task
type Job struct {
	To        string            `json:"to"`
	Template  string            `json:"template"`
	Language  string            `json:"language,omitempty"`
	Namespace string            `json:"namespace,omitempty"`
	Variables []string          `json:"variables,omitempty"`
	Meta      map[string]string `json:"meta,omitempty"`
}

// DedupeKey returns the advisory dedupe key, if any
func (j Job) DedupeKey() string {
	return j.Meta[MetaDedupeKey]
}

// TemplateMessage is one template message for one phone number
type TemplateMessage struct {
	To        string
	Template  string
	Language  string
	Namespace string
	Variables []string
}

// Result of a delivered job
type Result struct {
	To        string
	MessageID string
}
