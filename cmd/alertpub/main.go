// Command alertpub writes one alert event to the Kafka ingestion topic.
//
//	alertpub -event BOOKING_CREATED -channels email,whatsapp -data '{"bookingId":"B-1","email":"a@b.com"}'
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/dmitrymomot/alertkit/pkg/alert"
	"github.com/dmitrymomot/alertkit/pkg/config"
	"github.com/dmitrymomot/alertkit/pkg/ingest"
)

func main() {
	event := flag.String("event", "", "event type, e.g. USER_REGISTERED")
	channels := flag.String("channels", "email", "comma separated channels")
	data := flag.String("data", "{}", "event data as a JSON object")
	timeout := flag.Duration("timeout", 10*time.Second, "write timeout")
	flag.Parse()

	if err := run(*event, *channels, *data, *timeout); err != nil {
		fmt.Fprintln(os.Stderr, "alertpub:", err)
		os.Exit(1)
	}
}

func run(eventType, channelList, rawData string, timeout time.Duration) error {
	var channels []string
	for c := range strings.SplitSeq(channelList, ",") {
		if c = strings.TrimSpace(c); c != "" {
			channels = append(channels, c)
		}
	}

	var data map[string]any
	dec := json.NewDecoder(bytes.NewReader([]byte(rawData)))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		return fmt.Errorf("parse -data: %w", err)
	}

	// validate locally so typos never reach the topic
	if _, err := alert.NewEvent(eventType, channels, data); err != nil {
		return err
	}

	cfg, err := config.Load[ingest.Config]()
	if err != nil {
		return err
	}
	writer, err := ingest.NewWriter(cfg)
	if err != nil {
		return err
	}
	producer := ingest.NewProducer(writer)
	defer func() { _ = producer.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := producer.PublishEvent(ctx, eventType, channels, data); err != nil {
		return err
	}
	fmt.Printf("published %s to %s\n", eventType, cfg.Topic)
	return nil
}
