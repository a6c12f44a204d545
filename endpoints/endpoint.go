package endpoints

import (
	"fmt"
	"strings"

	"github.com/marcelsud/message-relay/webhook"
	"github.com/marcelsud/message-relay/webhook/mapping"
)

/* Endpoint is one inbound webhook as declared in endpoints.yaml
 * It becomes a webhook.Config once seeded into the store
 */
type Endpoint struct {
	WebhookID    string
	AccountID    string
	Secret       string
	Active       bool
	FieldMapping map[string]string
	Actions      []string
}

// Validate checks the endpoint on its own; cross references are checked by the Loader
func (e *Endpoint) Validate() error {
	if e.WebhookID == "" {
		return fmt.Errorf("webhook_id cannot be empty")
	}
	if strings.ContainsAny(e.WebhookID, "/ ") {
		return fmt.Errorf("webhook_id %q cannot contain slashes or spaces", e.WebhookID)
	}
	if e.AccountID == "" {
		return fmt.Errorf("account_id cannot be empty for webhook %s", e.WebhookID)
	}
	if len(e.FieldMapping) > 0 {
		if _, ok := e.FieldMapping[mapping.Phone]; !ok {
			return fmt.Errorf("field_mapping must map %q for webhook %s", mapping.Phone, e.WebhookID)
		}
		for field, expr := range e.FieldMapping {
			if _, err := mapping.ParsePath(expr); err != nil {
				return fmt.Errorf("invalid path for field %s of webhook %s: %w", field, e.WebhookID, err)
			}
		}
	}
	seen := make(map[string]bool, len(e.Actions))
	for _, a := range e.Actions {
		if a == "" {
			return fmt.Errorf("empty action for webhook %s", e.WebhookID)
		}
		if seen[a] {
			return fmt.Errorf("action %s listed twice for webhook %s", a, e.WebhookID)
		}
		seen[a] = true
	}
	return nil
}

// Config converts the endpoint into the stored webhook configuration
func (e *Endpoint) Config() webhook.Config {
	return webhook.Config{
		ID:           e.WebhookID,
		AccountID:    e.AccountID,
		Secret:       e.Secret,
		IsActive:     e.Active,
		FieldMapping: e.FieldMapping,
		Actions:      e.Actions,
	}
}
