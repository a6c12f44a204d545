package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/marcelsud/message-relay/webhook"
	"github.com/redis/go-redis/v9"
)

/* Redis implementation of webhook.Repository
 * Uses Redis Hashes for configs, accounts and contacts
 * Uses SET NX for idempotency claims and a Redis Stream per config for audit records
 */

const (
	configPrefix      = "webhook:config"      // webhook:config:{webhook_id}
	accountPrefix     = "webhook:account"     // webhook:account:{account_id}
	idempotencyPrefix = "webhook:idempotency" // webhook:idempotency:{webhook_id}:{request_id}
	resultsPrefix     = "webhook:results"     // stream webhook:results:{webhook_id}
	contactPrefix     = "contact"             // contact:{account_id}:{phone}

	// DefaultIdempotencyTTL keeps claimed request ids forever; a positive TTL is opt-in
	DefaultIdempotencyTTL time.Duration = 0

	// resultsMaxLen caps each audit stream (approximate trimming)
	resultsMaxLen = 10000
)

type Repository struct {
	client         *redis.Client
	idempotencyTTL time.Duration
}

// NewRepository creates a new Redis repository
func NewRepository(addr, password string, db int) (*Repository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	return &Repository{
		client:         client,
		idempotencyTTL: DefaultIdempotencyTTL,
	}, nil
}

// SetIdempotencyTTL changes how long claimed request ids are kept; zero keeps them forever
func (r *Repository) SetIdempotencyTTL(ttl time.Duration) {
	r.idempotencyTTL = ttl
}

// SaveConfig stores a webhook config hash
func (r *Repository) SaveConfig(ctx context.Context, c webhook.Config) error {
	mappingJSON, err := json.Marshal(c.FieldMapping)
	if err != nil {
		return fmt.Errorf("marshaling field mapping: %w", err)
	}
	actionsJSON, err := json.Marshal(c.Actions)
	if err != nil {
		return fmt.Errorf("marshaling actions: %w", err)
	}

	err = r.client.HSet(ctx, configKey(c.ID), map[string]interface{}{
		"id":            c.ID,
		"account_id":    c.AccountID,
		"secret":        c.Secret,
		"is_active":     strconv.FormatBool(c.IsActive),
		"field_mapping": string(mappingJSON),
		"actions":       string(actionsJSON),
	}).Err()
	if err != nil {
		return fmt.Errorf("storing config: %w", err)
	}

	return nil
}

// GetConfig retrieves a webhook config by ID
func (r *Repository) GetConfig(ctx context.Context, id string) (webhook.Config, error) {
	data, err := r.client.HGetAll(ctx, configKey(id)).Result()
	if err != nil {
		return webhook.Config{}, fmt.Errorf("getting config: %w", err)
	}
	if len(data) == 0 || data["id"] == "" {
		return webhook.Config{}, webhook.ErrConfigNotFound
	}

	c := webhook.Config{
		ID:            data["id"],
		AccountID:     data["account_id"],
		Secret:        data["secret"],
		IsActive:      data["is_active"] == "true",
		TotalReceived: parseInt64(data["total_received"]),
		LastPayload:   []byte(data["last_payload"]),
	}
	if ts := parseInt64(data["last_received_at"]); ts > 0 {
		c.LastReceivedAt = time.UnixMilli(ts)
	}

	if raw := data["field_mapping"]; raw != "" && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &c.FieldMapping); err != nil {
			return webhook.Config{}, fmt.Errorf("unmarshaling field mapping: %w", err)
		}
	}
	if raw := data["actions"]; raw != "" && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &c.Actions); err != nil {
			return webhook.Config{}, fmt.Errorf("unmarshaling actions: %w", err)
		}
	}

	return c, nil
}

// SaveAccount stores an account hash
func (r *Repository) SaveAccount(ctx context.Context, a webhook.Account) error {
	err := r.client.HSet(ctx, accountKey(a.ID), map[string]interface{}{
		"id":            a.ID,
		"connection_id": a.ConnectionID,
		"name":          a.Name,
	}).Err()
	if err != nil {
		return fmt.Errorf("storing account: %w", err)
	}
	return nil
}

// GetAccount retrieves an account by ID
func (r *Repository) GetAccount(ctx context.Context, id string) (webhook.Account, error) {
	data, err := r.client.HGetAll(ctx, accountKey(id)).Result()
	if err != nil {
		return webhook.Account{}, fmt.Errorf("getting account: %w", err)
	}
	if len(data) == 0 {
		return webhook.Account{}, webhook.ErrAccountNotFound
	}

	return webhook.Account{
		ID:           data["id"],
		ConnectionID: data["connection_id"],
		Name:         data["name"],
	}, nil
}

// RecordReceipt bumps the received counter and keeps the last raw payload
func (r *Repository) RecordReceipt(ctx context.Context, webhookID string, payload []byte, at time.Time) error {
	key := configKey(webhookID)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, key, "total_received", 1)
		pipe.HSet(ctx, key, map[string]interface{}{
			"last_received_at": at.UnixMilli(),
			"last_payload":     payload,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("recording receipt: %w", err)
	}

	return nil
}

// ClaimRequest sets the idempotency key only if it does not exist yet
func (r *Repository) ClaimRequest(ctx context.Context, rec webhook.IdempotencyRecord) (bool, error) {
	value, err := json.Marshal(map[string]interface{}{
		"webhook_id":          rec.WebhookID,
		"external_request_id": rec.ExternalRequestID,
		"received_payload":    string(rec.ReceivedPayload),
		"created_at":          rec.CreatedAt.Unix(),
	})
	if err != nil {
		return false, fmt.Errorf("marshaling idempotency record: %w", err)
	}

	claimed, err := r.client.SetNX(ctx, idempotencyKey(rec.WebhookID, rec.ExternalRequestID), value, r.idempotencyTTL).Result()
	if err != nil {
		return false, fmt.Errorf("claiming request: %w", err)
	}

	return claimed, nil
}

// SaveResult appends an audit record to the config's results stream
func (r *Repository) SaveResult(ctx context.Context, rec webhook.ResultRecord) error {
	actionsJSON, err := json.Marshal(rec.Actions)
	if err != nil {
		return fmt.Errorf("marshaling actions: %w", err)
	}

	_, err = r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: resultsKey(rec.WebhookID),
		MaxLen: resultsMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"id":         rec.ID,
			"request_id": rec.RequestID,
			"contact_id": rec.ContactID,
			"actions":    string(actionsJSON),
			"created_at": rec.CreatedAt.Unix(),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("adding result to stream: %w", err)
	}

	return nil
}

// Results returns the latest audit records of a config, newest first
func (r *Repository) Results(ctx context.Context, webhookID string, limit int64) ([]webhook.ResultRecord, error) {
	msgs, err := r.client.XRevRangeN(ctx, resultsKey(webhookID), "+", "-", limit).Result()
	if err != nil {
		return nil, fmt.Errorf("reading results stream: %w", err)
	}

	records := make([]webhook.ResultRecord, 0, len(msgs))
	for _, msg := range msgs {
		rec := webhook.ResultRecord{
			ID:        stringValue(msg.Values["id"]),
			WebhookID: webhookID,
			RequestID: stringValue(msg.Values["request_id"]),
			ContactID: stringValue(msg.Values["contact_id"]),
			CreatedAt: time.Unix(parseInt64(stringValue(msg.Values["created_at"])), 0),
		}
		if raw := stringValue(msg.Values["actions"]); raw != "" {
			if err := json.Unmarshal([]byte(raw), &rec.Actions); err != nil {
				return nil, fmt.Errorf("unmarshaling actions: %w", err)
			}
		}
		records = append(records, rec)
	}

	return records, nil
}

// UpsertContact creates or updates the contact keyed by (account, phone).
// The contact id is assigned once and kept on later updates.
func (r *Repository) UpsertContact(ctx context.Context, accountID string, c webhook.Contact) (string, error) {
	if c.Phone == "" {
		return "", errors.New("contact phone is required")
	}
	key := contactKey(accountID, c.Phone)

	fields := map[string]interface{}{
		"account_id": accountID,
		"phone":      c.Phone,
		"updated_at": time.Now().Unix(),
	}
	if c.Name != "" {
		fields["name"] = c.Name
	}
	if c.Email != "" {
		fields["email"] = c.Email
	}
	if len(c.Fields) > 0 {
		extra, err := json.Marshal(c.Fields)
		if err != nil {
			return "", fmt.Errorf("marshaling contact fields: %w", err)
		}
		fields["fields"] = string(extra)
	}

	var id *redis.StringCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSetNX(ctx, key, "id", uuid.New().String())
		pipe.HSet(ctx, key, fields)
		id = pipe.HGet(ctx, key, "id")
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("upserting contact: %w", err)
	}

	return id.Val(), nil
}

// GetContact retrieves a contact by account and phone
func (r *Repository) GetContact(ctx context.Context, accountID, phone string) (webhook.Contact, string, error) {
	data, err := r.client.HGetAll(ctx, contactKey(accountID, phone)).Result()
	if err != nil {
		return webhook.Contact{}, "", fmt.Errorf("getting contact: %w", err)
	}
	if len(data) == 0 {
		return webhook.Contact{}, "", fmt.Errorf("contact not found: %s", phone)
	}

	c := webhook.Contact{
		Phone: data["phone"],
		Name:  data["name"],
		Email: data["email"],
	}
	if raw := data["fields"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &c.Fields); err != nil {
			return webhook.Contact{}, "", fmt.Errorf("unmarshaling contact fields: %w", err)
		}
	}

	return c, data["id"], nil
}

// Close closes the Redis connection
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Close()
}

// GetClient returns the underlying Redis client for advanced operations
func (r *Repository) GetClient() *redis.Client {
	return r.client
}

// Helper functions

func configKey(id string) string { return fmt.Sprintf("%s:%s", configPrefix, id) }

func accountKey(id string) string { return fmt.Sprintf("%s:%s", accountPrefix, id) }

func idempotencyKey(webhookID, requestID string) string {
	return fmt.Sprintf("%s:%s:%s", idempotencyPrefix, webhookID, requestID)
}

func resultsKey(webhookID string) string { return fmt.Sprintf("%s:%s", resultsPrefix, webhookID) }

func contactKey(accountID, phone string) string {
	return fmt.Sprintf("%s:%s:%s", contactPrefix, accountID, phone)
}

// ConfigKey and ResultsKey expose key names to the metrics collector
func ConfigKey(webhookID string) string { return configKey(webhookID) }

func ResultsKey(webhookID string) string { return resultsKey(webhookID) }

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return s
}

func parseInt64(s string) int64 {
	var result int64
	fmt.Sscanf(s, "%d", &result)
	return result
}
