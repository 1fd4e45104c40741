package alert

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Channel is one delivery medium
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelPush     Channel = "push"
	ChannelWhatsApp Channel = "whatsapp"
)

// Channels lists every supported channel
func Channels() []Channel {
	return []Channel{ChannelEmail, ChannelPush, ChannelWhatsApp}
}

// ParseChannel validates a channel name
func ParseChannel(s string) (Channel, error) {
	c := Channel(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Channels(), c) {
		return "", fmt.Errorf("%w: %q", ErrUnknownChannel, s)
	}
	return c, nil
}

func (c Channel) String() string { return string(c) }

// Event types published by the domain modules
const (
	EventUserRegistered   = "USER_REGISTERED"
	EventBookingCreated   = "BOOKING_CREATED"
	EventBookingConfirmed = "BOOKING_CONFIRMED"
	EventBookingCancelled = "BOOKING_CANCELLED"
	EventPaymentReceived  = "PAYMENT_RECEIVED"
	EventContactRequest   = "CONTACT_REQUEST"
)

// Well-known Data keys
const (
	KeyUserID      = "userId"
	KeyEmail       = "email"
	KeyName        = "name"
	KeyMobile      = "mobile"
	KeyBookingID   = "bookingId"
	KeyBookingDate = "bookingDate"
	KeyAmount      = "amount"
	KeyCurrency    = "currency"
	KeyReason      = "reason"
	KeySubject     = "subject"
	KeyMessage     = "message"
)

// Event is a domain notification request. It is never persisted.
type Event struct {
	Type     string    `json:"event_type"`
	Channels []Channel `json:"channels"`
	Data     Data      `json:"data"`
}

// NewEvent validates the ingestion fields and builds an Event.
// Duplicate channels are collapsed.
func NewEvent(eventType string, channels []string, data map[string]any) (Event, error) {
	eventType = strings.TrimSpace(eventType)
	if eventType == "" {
		return Event{}, ErrEmptyEventType
	}

	parsed := make([]Channel, 0, len(channels))
	for _, name := range channels {
		c, err := ParseChannel(name)
		if err != nil {
			return Event{}, err
		}
		if !slices.Contains(parsed, c) {
			parsed = append(parsed, c)
		}
	}

	return Event{Type: eventType, Channels: parsed, Data: Data(data)}, nil
}

// HasChannel reports whether the event targets c.
// A nil or empty channel list targets nothing.
func (e Event) HasChannel(c Channel) bool {
	return slices.Contains(e.Channels, c)
}

// clone gives each router its own shallow copy of the data map
func (e Event) clone() Event {
	return Event{
		Type:     e.Type,
		Channels: slices.Clone(e.Channels),
		Data:     maps.Clone(e.Data),
	}
}
