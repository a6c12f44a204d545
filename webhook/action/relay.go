package action

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/marcelsud/message-relay/media"
	"github.com/marcelsud/message-relay/webhook"
	"github.com/marcelsud/message-relay/webhook/payload"
)

const (
	// RelayForwardName is the id used in Config.Actions
	RelayForwardName = "relay.forward"

	// DefaultEventType is the type of events forwarded downstream
	DefaultEventType = "contact.received"
)

// Enqueuer accepts payloads for best-effort delivery
type Enqueuer interface {
	EnqueueAndDeliver(ctx context.Context, payload []byte)
}

// ForwardData is the data section of a forwarded event
type ForwardData struct {
	WebhookID    string            `json:"webhook_id"`
	AccountID    string            `json:"account_id"`
	ConnectionID string            `json:"connection_id,omitempty"`
	RequestID    string            `json:"request_id,omitempty"`
	ContactID    string            `json:"contact_id,omitempty"`
	Contact      webhook.Contact   `json:"contact"`
	Attachments  map[string]string `json:"attachments,omitempty"`
	Payload      json.RawMessage   `json:"payload"`
}

// RelayForward hands a normalized event to the delivery queue. Delivery
// failures never surface here; the queue retries and logs them.
type RelayForward struct {
	Queue     Enqueuer
	EventType string
}

func NewRelayForward(queue Enqueuer, eventType string) *RelayForward {
	if eventType == "" {
		eventType = DefaultEventType
	}
	return &RelayForward{Queue: queue, EventType: eventType}
}

func (a *RelayForward) Name() string { return RelayForwardName }

func (a *RelayForward) Run(ctx context.Context, inv *webhook.Invocation) error {
	event, err := payload.NewEvent(a.EventType, ForwardData{
		WebhookID:    inv.Config.ID,
		AccountID:    inv.Account.ID,
		ConnectionID: inv.Account.ConnectionID,
		RequestID:    inv.RequestID,
		ContactID:    inv.ContactID,
		Contact:      inv.Contact,
		Attachments:  inv.Attachments,
		Payload:      json.RawMessage(inv.Raw),
	})
	if err != nil {
		return fmt.Errorf("building event: %w", err)
	}

	body, err := event.Bytes()
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	a.Queue.EnqueueAndDeliver(ctx, body)
	return nil
}

// Builtins returns the built-in actions wired to their collaborators
func Builtins(contacts webhook.ContactWriter, fetcher Fetcher, decrypter *media.Decrypter, queue Enqueuer, eventType string) []webhook.Action {
	return []webhook.Action{
		NewContactUpsert(contacts),
		NewMediaDecrypt(fetcher, decrypter),
		NewRelayForward(queue, eventType),
	}
}
