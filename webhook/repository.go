package webhook

import (
	"context"
	"time"
)

/* Small, focused interfaces
 * Each store (Redis, Postgres) implements all of them through Repository
 */

// ConfigReader resolves configs and their owning accounts
type ConfigReader interface {
	/* GetConfig returns ErrConfigNotFound when id is unknown */
	GetConfig(ctx context.Context, id string) (Config, error)
	/* GetAccount returns ErrAccountNotFound when id is unknown */
	GetAccount(ctx context.Context, id string) (Account, error)
}

// ConfigWriter stores configs and accounts, used to seed the store
type ConfigWriter interface {
	SaveConfig(ctx context.Context, config Config) error
	SaveAccount(ctx context.Context, account Account) error
}

// ReceiptWriter keeps per-config receive statistics
type ReceiptWriter interface {
	/* RecordReceipt increments the received counter and keeps the last raw payload */
	RecordReceipt(ctx context.Context, webhookID string, payload []byte, at time.Time) error
}

// IdempotencyStore guards against replayed requests
type IdempotencyStore interface {
	/* ClaimRequest atomically inserts the record if absent
	 * Returns false when (WebhookID, ExternalRequestID) already exists
	 */
	ClaimRequest(ctx context.Context, record IdempotencyRecord) (bool, error)
}

// ResultWriter persists audit records
type ResultWriter interface {
	SaveResult(ctx context.Context, record ResultRecord) error
}

// ContactWriter upserts contacts keyed by (account, phone)
type ContactWriter interface {
	UpsertContact(ctx context.Context, accountID string, contact Contact) (string, error)
}

// Repository composes every store capability the receiver needs
type Repository interface {
	ConfigReader
	ConfigWriter
	ReceiptWriter
	IdempotencyStore
	ResultWriter
	ContactWriter
	Close(ctx context.Context) error
}
