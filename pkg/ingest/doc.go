// Package ingest connects the alert bus to a Kafka topic (segmentio/kafka-go).
//
// Records carry JSON values:
//
//	{"event_type":"BOOKING_CONFIRMED","channels":["email","push"],"data":{"userId":"u1"}}
//
// Consumer reads them with a consumer group and calls the bus PublishEvent.
// Delivery is at-least-once: the offset is committed only after the bus
// accepted the event. Records that do not decode, or name an unknown
// channel, are logged and committed so they cannot block the partition.
//
// Producer writes the same records for services that emit alerts remotely.
package ingest
