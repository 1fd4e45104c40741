package ingest

import "time"

// Config holds the Kafka ingestion settings. Ingestion is off without brokers.
type Config struct {
	Brokers  []string      `env:"KAFKA_BROKERS" envSeparator:","`
	Topic    string        `env:"KAFKA_TOPIC" envDefault:"alerts"`
	GroupID  string        `env:"KAFKA_GROUP_ID" envDefault:"alertd"`
	MaxWait  time.Duration `env:"KAFKA_MAX_WAIT" envDefault:"500ms"`
	MaxBytes int           `env:"KAFKA_MAX_BYTES" envDefault:"10000000"`
}

const (
	defaultMaxWait  = 500 * time.Millisecond
	defaultMaxBytes = 10e6
)

// Enabled reports whether any broker is configured
func (c Config) Enabled() bool {
	return len(c.Brokers) > 0
}

// withDefaults fills the fetch limits a hand-built Config leaves at zero
func (c Config) withDefaults() Config {
	if c.MaxWait <= 0 {
		c.MaxWait = defaultMaxWait
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = defaultMaxBytes
	}
	return c
}
