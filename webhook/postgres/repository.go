package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/marcelsud/message-relay/webhook"
)

/* PostgreSQL implementation of webhook.Repository
 * Idempotency relies on the (webhook_id, external_request_id) primary key:
 * ClaimRequest inserts with ON CONFLICT DO NOTHING and checks the affected rows.
 */

type Repository struct {
	DB *sql.DB
}

// NewRepository creates a PostgreSQL repository with the default pool (25, 5, 5 min)
func NewRepository(connectionString string) (*Repository, error) {
	return NewRepositoryWithPoolConfig(connectionString, 25, 5, 5)
}

// NewRepositoryWithPoolConfig creates a PostgreSQL repository with a custom pool
// maxOpenConns: maximum simultaneous connections (0 = unlimited)
// maxIdleConns: maximum idle connections kept in the pool
// maxLifeMinutes: maximum minutes a connection may be reused
func NewRepositoryWithPoolConfig(connectionString string, maxOpenConns, maxIdleConns, maxLifeMinutes int) (*Repository, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	if maxIdleConns > 0 {
		db.SetMaxIdleConns(maxIdleConns)
	}
	if maxLifeMinutes > 0 {
		db.SetConnMaxLifetime(time.Duration(maxLifeMinutes) * time.Minute)
	}

	return &Repository{
		DB: db,
	}, nil
}

// SaveConfig inserts or replaces a webhook config, keeping its receive statistics
func (r *Repository) SaveConfig(ctx context.Context, c webhook.Config) error {
	mappingJSON, err := json.Marshal(c.FieldMapping)
	if err != nil {
		return fmt.Errorf("marshaling field mapping: %w", err)
	}
	actionsJSON, err := json.Marshal(c.Actions)
	if err != nil {
		return fmt.Errorf("marshaling actions: %w", err)
	}

	query := `
		INSERT INTO webhook_configs (id, account_id, secret, is_active, field_mapping, actions)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET account_id = EXCLUDED.account_id, secret = EXCLUDED.secret, is_active = EXCLUDED.is_active,
			field_mapping = EXCLUDED.field_mapping, actions = EXCLUDED.actions
	`

	_, err = r.DB.ExecContext(ctx, query, c.ID, c.AccountID, c.Secret, c.IsActive, string(mappingJSON), string(actionsJSON))
	if err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	return nil
}

// GetConfig retrieves a webhook config by ID
func (r *Repository) GetConfig(ctx context.Context, id string) (webhook.Config, error) {
	query := `
		SELECT id, account_id, secret, is_active, field_mapping, actions, total_received, last_received_at, last_payload
		FROM webhook_configs WHERE id = $1
	`

	var (
		c            webhook.Config
		mappingJSON  []byte
		actionsJSON  []byte
		lastReceived sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&c.ID,
		&c.AccountID,
		&c.Secret,
		&c.IsActive,
		&mappingJSON,
		&actionsJSON,
		&c.TotalReceived,
		&lastReceived,
		&c.LastPayload,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return webhook.Config{}, webhook.ErrConfigNotFound
	}
	if err != nil {
		return webhook.Config{}, fmt.Errorf("selecting config: %w", err)
	}

	if lastReceived.Valid {
		c.LastReceivedAt = lastReceived.Time
	}
	if len(mappingJSON) > 0 {
		if err := json.Unmarshal(mappingJSON, &c.FieldMapping); err != nil {
			return webhook.Config{}, fmt.Errorf("unmarshaling field mapping: %w", err)
		}
	}
	if len(actionsJSON) > 0 {
		if err := json.Unmarshal(actionsJSON, &c.Actions); err != nil {
			return webhook.Config{}, fmt.Errorf("unmarshaling actions: %w", err)
		}
	}

	return c, nil
}

// SaveAccount inserts or replaces an account
func (r *Repository) SaveAccount(ctx context.Context, a webhook.Account) error {
	query := `
		INSERT INTO webhook_accounts (id, connection_id, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET connection_id = EXCLUDED.connection_id, name = EXCLUDED.name
	`

	if _, err := r.DB.ExecContext(ctx, query, a.ID, a.ConnectionID, a.Name); err != nil {
		return fmt.Errorf("saving account: %w", err)
	}
	return nil
}

// GetAccount retrieves an account by ID
func (r *Repository) GetAccount(ctx context.Context, id string) (webhook.Account, error) {
	query := "SELECT id, connection_id, name FROM webhook_accounts WHERE id = $1"

	var a webhook.Account
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.ConnectionID, &a.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return webhook.Account{}, webhook.ErrAccountNotFound
	}
	if err != nil {
		return webhook.Account{}, fmt.Errorf("selecting account: %w", err)
	}

	return a, nil
}

// RecordReceipt bumps the received counter and keeps the last raw payload
func (r *Repository) RecordReceipt(ctx context.Context, webhookID string, payload []byte, at time.Time) error {
	query := `
		UPDATE webhook_configs
		SET total_received = total_received + 1, last_received_at = $1, last_payload = $2
		WHERE id = $3
	`

	result, err := r.DB.ExecContext(ctx, query, at, payload, webhookID)
	if err != nil {
		return fmt.Errorf("recording receipt: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rows == 0 {
		return webhook.ErrConfigNotFound
	}

	return nil
}

// ClaimRequest inserts the idempotency record unless it already exists
func (r *Repository) ClaimRequest(ctx context.Context, rec webhook.IdempotencyRecord) (bool, error) {
	query := `
		INSERT INTO webhook_idempotency (webhook_id, external_request_id, received_payload, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (webhook_id, external_request_id) DO NOTHING
	`

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result, err := r.DB.ExecContext(ctx, query, rec.WebhookID, rec.ExternalRequestID, rec.ReceivedPayload, createdAt)
	if err != nil {
		return false, fmt.Errorf("claiming request: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}

	return rows == 1, nil
}

// SaveResult inserts an audit record
func (r *Repository) SaveResult(ctx context.Context, rec webhook.ResultRecord) error {
	actionsJSON, err := json.Marshal(rec.Actions)
	if err != nil {
		return fmt.Errorf("marshaling actions: %w", err)
	}

	query := `
		INSERT INTO webhook_results (id, webhook_id, request_id, contact_id, actions, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = r.DB.ExecContext(ctx, query, rec.ID, rec.WebhookID, rec.RequestID, rec.ContactID, string(actionsJSON), rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving result: %w", err)
	}

	return nil
}

// Results returns the latest audit records of a config, newest first
func (r *Repository) Results(ctx context.Context, webhookID string, limit int) ([]webhook.ResultRecord, error) {
	query := `
		SELECT id, webhook_id, request_id, contact_id, actions, created_at
		FROM webhook_results WHERE webhook_id = $1
		ORDER BY created_at DESC LIMIT $2
	`

	rows, err := r.DB.QueryContext(ctx, query, webhookID, limit)
	if err != nil {
		return nil, fmt.Errorf("selecting results: %w", err)
	}
	defer rows.Close()

	var records []webhook.ResultRecord
	for rows.Next() {
		var (
			rec         webhook.ResultRecord
			actionsJSON []byte
		)
		if err := rows.Scan(&rec.ID, &rec.WebhookID, &rec.RequestID, &rec.ContactID, &actionsJSON, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		if err := json.Unmarshal(actionsJSON, &rec.Actions); err != nil {
			return nil, fmt.Errorf("unmarshaling actions: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating results: %w", err)
	}

	return records, nil
}

// UpsertContact creates or updates the contact keyed by (account, phone).
// Empty name, email or fields never overwrite stored values.
func (r *Repository) UpsertContact(ctx context.Context, accountID string, c webhook.Contact) (string, error) {
	if c.Phone == "" {
		return "", errors.New("contact phone is required")
	}

	// jsonb parameters go over the wire as text; nil becomes SQL NULL
	var fields interface{}
	if len(c.Fields) > 0 {
		raw, err := json.Marshal(c.Fields)
		if err != nil {
			return "", fmt.Errorf("marshaling contact fields: %w", err)
		}
		fields = string(raw)
	}

	query := `
		INSERT INTO contacts (id, account_id, phone, name, email, fields, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (account_id, phone) DO UPDATE
		SET name = COALESCE(NULLIF(EXCLUDED.name, ''), contacts.name),
			email = COALESCE(NULLIF(EXCLUDED.email, ''), contacts.email),
			fields = COALESCE(EXCLUDED.fields, contacts.fields),
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`

	var id string
	err := r.DB.QueryRowContext(ctx, query, uuid.New().String(), accountID, c.Phone, c.Name, c.Email, fields, time.Now()).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upserting contact: %w", err)
	}

	return id, nil
}

// Close closes the database connection
func (r *Repository) Close(ctx context.Context) error {
	if r.DB != nil {
		return r.DB.Close()
	}
	return nil
}
