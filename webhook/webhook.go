package webhook

import "time"

/* Config is the per-producer webhook configuration (WebhookConfig)
 * Uses value semantics as it represents data, not behavior
 */
type Config struct {
	ID             string            `json:"id"`
	AccountID      string            `json:"account_id"`
	Secret         string            `json:"-"`
	IsActive       bool              `json:"is_active"`
	FieldMapping   map[string]string `json:"field_mapping,omitempty"`
	Actions        []string          `json:"actions,omitempty"`
	TotalReceived  int64             `json:"total_received"`
	LastReceivedAt time.Time         `json:"last_received_at,omitempty"`
	LastPayload    []byte            `json:"-"`
}

// Account is the owning account and connection of a Config
type Account struct {
	ID           string `json:"id"`
	ConnectionID string `json:"connection_id"`
	Name         string `json:"name"`
}

/* IdempotencyRecord marks an external request as seen
 * (WebhookID, ExternalRequestID) is unique in every store
 */
type IdempotencyRecord struct {
	WebhookID         string
	ExternalRequestID string
	ReceivedPayload   []byte
	CreatedAt         time.Time
}

// Contact is the canonical record produced by field mapping
type Contact struct {
	Phone  string         `json:"phone"`
	Name   string         `json:"name,omitempty"`
	Email  string         `json:"email,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`
}

// ActionOutcome is the result of running one configured action
type ActionOutcome struct {
	Action string `json:"action"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
}

// ResultRecord is the audit entry written for every processed call
type ResultRecord struct {
	ID        string
	WebhookID string
	RequestID string
	ContactID string
	Actions   []ActionOutcome
	CreatedAt time.Time
}

// Result is what the receiver reports back to the producer
type Result struct {
	Accepted  bool            `json:"accepted"`
	Duplicate bool            `json:"duplicate,omitempty"`
	Error     string          `json:"error,omitempty"`
	ContactID string          `json:"contact_id,omitempty"`
	Actions   []ActionOutcome `json:"actions,omitempty"`
}
