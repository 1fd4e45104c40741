package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Message is the JSON value of an alert record on the ingestion topic
type Message struct {
	EventType string         `json:"event_type"`
	Channels  []string       `json:"channels"`
	Data      map[string]any `json:"data,omitempty"`
}

// Decode parses a record value. Numbers in Data stay json.Number so amounts
// and ids keep their exact text.
func Decode(value []byte) (Message, error) {
	var m Message
	dec := json.NewDecoder(bytes.NewReader(value))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	if strings.TrimSpace(m.EventType) == "" {
		return Message{}, fmt.Errorf("%w: event_type is empty", ErrInvalidMessage)
	}
	return m, nil
}

// Encode renders the record value for m
func Encode(m Message) ([]byte, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	return b, nil
}
