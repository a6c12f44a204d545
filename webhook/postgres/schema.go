package postgres

import (
	"context"
	"fmt"
)

// Tables in creation order
var Tables = []string{"webhook_accounts", "webhook_configs", "webhook_idempotency", "webhook_results", "contacts"}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS webhook_accounts (
		id TEXT PRIMARY KEY,
		connection_id TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS webhook_configs (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		secret TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		field_mapping JSONB,
		actions JSONB,
		total_received BIGINT NOT NULL DEFAULT 0,
		last_received_at TIMESTAMPTZ,
		last_payload BYTEA
	)`,
	`CREATE TABLE IF NOT EXISTS webhook_idempotency (
		webhook_id TEXT NOT NULL,
		external_request_id TEXT NOT NULL,
		received_payload BYTEA,
		created_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (webhook_id, external_request_id)
	)`,
	`CREATE TABLE IF NOT EXISTS webhook_results (
		id TEXT PRIMARY KEY,
		webhook_id TEXT NOT NULL,
		request_id TEXT NOT NULL DEFAULT '',
		contact_id TEXT NOT NULL DEFAULT '',
		actions JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS webhook_results_webhook_id_idx ON webhook_results (webhook_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS contacts (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		phone TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		fields JSONB,
		updated_at TIMESTAMPTZ NOT NULL,
		UNIQUE (account_id, phone)
	)`,
}

// CreateTables creates the receiver tables. The service itself never runs
// this; it is used by cmd/migrate-postgres and the integration tests.
func (r *Repository) CreateTables(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating tables: %w", err)
		}
	}
	return nil
}

// DropTables removes the receiver tables (useful for tests)
func (r *Repository) DropTables(ctx context.Context) error {
	for i := len(Tables) - 1; i >= 0; i-- {
		if _, err := r.DB.ExecContext(ctx, "DROP TABLE IF EXISTS "+Tables[i]+" CASCADE"); err != nil {
			return fmt.Errorf("dropping table %s: %w", Tables[i], err)
		}
	}
	return nil
}
