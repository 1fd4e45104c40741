package email

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Recipients is a list of addresses. It decodes from a JSON string or an
// array of strings and always encodes as an array.
type Recipients []string

// UnmarshalJSON implements json.Unmarshaler
func (r *Recipients) UnmarshalJSON(b []byte) error {
	var single string
	if err := json.Unmarshal(b, &single); err == nil {
		*r = compact([]string{single})
		return nil
	}

	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return fmt.Errorf("recipients must be a string or an array of strings: %w", err)
	}
	*r = compact(list)
	return nil
}

func compact(in []string) Recipients {
	out := make(Recipients, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Job is the payload of an email queue task
type Job struct {
	To       Recipients     `json:"to"`
	Template Template       `json:"template"`
	Payload  map[string]any `json:"payload,omitempty"`
	Subject  string         `json:"subject,omitempty"`
}

// Result is returned by a successful send
type Result struct {
	MessageID string
}
