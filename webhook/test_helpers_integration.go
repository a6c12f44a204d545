//go:build integration

package webhook

import (
	"fmt"
	"testing"
	"time"
)

// GenerateID generates a unique webhook config ID for testing
func GenerateID(t *testing.T, index int) string {
	t.Helper()
	return fmt.Sprintf("test-webhook-%d-%d", index, time.Now().UnixNano())
}

// NewTestConfig returns an active config owned by accountID
func NewTestConfig(id, accountID string) Config {
	return Config{
		ID:           id,
		AccountID:    accountID,
		Secret:       "whsec_test",
		IsActive:     true,
		FieldMapping: map[string]string{"phone": "contact.phone"},
		Actions:      []string{"contact.upsert", "relay.forward"},
	}
}
