// Package metrics exports the alert pipeline state to Prometheus.
//
// A single Collector is created at startup and handed to the bus
// (alert.WithBusObserver), the channel enqueuers and workers
// (queue.WithEnqueuerObserver, queue.WithObserver), every provider circuit
// breaker (webhook.WithStateChangeHook(c.CircuitStateChanged)) and the Kafka
// ingester. Handler serves GET /metrics.
package metrics
