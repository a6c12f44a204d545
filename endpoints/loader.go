package endpoints

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/marcelsud/message-relay/webhook"
	"gopkg.in/yaml.v3"
)

/* Loader manages the endpoint catalog from endpoints.yaml
 * Provides in-memory lookup and seeds the store at startup
 */

// File represents the structure of endpoints.yaml
type File struct {
	Accounts []AccountConfig  `yaml:"accounts"`
	Webhooks []EndpointConfig `yaml:"webhooks"`
}

// AccountConfig represents a single account in the YAML file
type AccountConfig struct {
	ID           string `yaml:"id"`
	ConnectionID string `yaml:"connection_id"`
	Name         string `yaml:"name"`
}

// EndpointConfig represents a single webhook in the YAML file
type EndpointConfig struct {
	WebhookID    string            `yaml:"webhook_id"`
	AccountID    string            `yaml:"account_id"`
	Secret       string            `yaml:"secret"`
	Active       *bool             `yaml:"active"` // Default: true
	FieldMapping map[string]string `yaml:"field_mapping"`
	Actions      []string          `yaml:"actions"`
}

// Loader holds the loaded endpoints and accounts
type Loader struct {
	endpoints    map[string]*Endpoint
	accounts     map[string]webhook.Account
	knownActions map[string]bool
}

// NewLoader creates a new endpoint loader. When knownActions is non-empty,
// every configured action must be one of them.
func NewLoader(knownActions ...string) *Loader {
	known := make(map[string]bool, len(knownActions))
	for _, a := range knownActions {
		known[a] = true
	}
	return &Loader{
		endpoints:    make(map[string]*Endpoint),
		accounts:     make(map[string]webhook.Account),
		knownActions: known,
	}
}

// Load reads and parses the endpoints file
func (l *Loader) Load(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading endpoints file: %w", err)
	}
	return l.Parse(data)
}

// Parse validates and loads YAML content
func (l *Loader) Parse(data []byte) error {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing endpoints YAML: %w", err)
	}

	for _, ac := range file.Accounts {
		if ac.ID == "" {
			return fmt.Errorf("validating account: id cannot be empty")
		}
		if _, dup := l.accounts[ac.ID]; dup {
			return fmt.Errorf("validating account: duplicate id %s", ac.ID)
		}
		l.accounts[ac.ID] = webhook.Account{ID: ac.ID, ConnectionID: ac.ConnectionID, Name: ac.Name}
	}

	for _, ec := range file.Webhooks {
		active := true
		if ec.Active != nil {
			active = *ec.Active
		}

		endpoint := &Endpoint{
			WebhookID:    ec.WebhookID,
			AccountID:    ec.AccountID,
			Secret:       ec.Secret,
			Active:       active,
			FieldMapping: ec.FieldMapping,
			Actions:      ec.Actions,
		}

		if err := endpoint.Validate(); err != nil {
			return fmt.Errorf("validating endpoint: %w", err)
		}
		if _, ok := l.accounts[endpoint.AccountID]; !ok {
			return fmt.Errorf("validating endpoint: unknown account %s for webhook %s", endpoint.AccountID, endpoint.WebhookID)
		}
		if _, dup := l.endpoints[endpoint.WebhookID]; dup {
			return fmt.Errorf("validating endpoint: duplicate webhook_id %s", endpoint.WebhookID)
		}
		if len(l.knownActions) > 0 {
			for _, a := range endpoint.Actions {
				if !l.knownActions[a] {
					return fmt.Errorf("validating endpoint: unknown action %s for webhook %s", a, endpoint.WebhookID)
				}
			}
		}

		l.endpoints[endpoint.WebhookID] = endpoint
	}

	return nil
}

// Get retrieves an endpoint by its webhook ID
func (l *Loader) Get(webhookID string) (*Endpoint, error) {
	endpoint, exists := l.endpoints[webhookID]
	if !exists {
		return nil, fmt.Errorf("endpoint not found: %s", webhookID)
	}
	return endpoint, nil
}

// List returns all loaded endpoints ordered by webhook ID
func (l *Loader) List() []*Endpoint {
	list := make([]*Endpoint, 0, len(l.endpoints))
	for _, endpoint := range l.endpoints {
		list = append(list, endpoint)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].WebhookID < list[j].WebhookID })
	return list
}

// Accounts returns all loaded accounts ordered by ID
func (l *Loader) Accounts() []webhook.Account {
	list := make([]webhook.Account, 0, len(l.accounts))
	for _, a := range l.accounts {
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// Exists checks if a webhook ID exists
func (l *Loader) Exists(webhookID string) bool {
	_, exists := l.endpoints[webhookID]
	return exists
}

// Seed writes every account and endpoint into the store. Receive
// statistics already stored are left alone.
func (l *Loader) Seed(ctx context.Context, store webhook.ConfigWriter) error {
	for _, a := range l.Accounts() {
		if err := store.SaveAccount(ctx, a); err != nil {
			return fmt.Errorf("seeding account %s: %w", a.ID, err)
		}
	}
	for _, e := range l.List() {
		if err := store.SaveConfig(ctx, e.Config()); err != nil {
			return fmt.Errorf("seeding webhook %s: %w", e.WebhookID, err)
		}
	}
	return nil
}
