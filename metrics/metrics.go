package metrics

import (
	"context"
	"time"
)

// Metrics represents the stored state of the receiver.
type Metrics struct {
	// Received maps webhook_id to its total received counter
	Received map[string]int64 `json:"received"`

	// AuditRecords maps webhook_id to the number of audit records kept for it
	AuditRecords map[string]int64 `json:"audit_records"`

	// RelayQueueLength is the number of events waiting for a delivery retry
	RelayQueueLength int64 `json:"relay_queue_length"`

	// Timestamp when metrics were collected
	Timestamp time.Time `json:"timestamp"`
}

// Collector reads store-backed metrics. Each store has its own implementation.
type Collector interface {
	// GetReceivedCounts returns total_received per webhook
	GetReceivedCounts(ctx context.Context) (map[string]int64, error)

	// GetAuditCounts returns the number of audit records per webhook
	GetAuditCounts(ctx context.Context) (map[string]int64, error)
}

// QueueLen reports the in-process relay backlog
type QueueLen interface {
	Len() int
}

// Collect gathers a full snapshot from collector and queue. Either may be nil.
func Collect(ctx context.Context, collector Collector, queue QueueLen) (Metrics, error) {
	m := Metrics{
		Received:     map[string]int64{},
		AuditRecords: map[string]int64{},
		Timestamp:    time.Now(),
	}
	if queue != nil {
		m.RelayQueueLength = int64(queue.Len())
	}
	if collector == nil {
		return m, nil
	}

	received, err := collector.GetReceivedCounts(ctx)
	if err != nil {
		return Metrics{}, err
	}
	audit, err := collector.GetAuditCounts(ctx)
	if err != nil {
		return Metrics{}, err
	}
	m.Received = received
	m.AuditRecords = audit
	return m, nil
}
