package endpoints_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/marcelsud/message-relay/endpoints"
	"github.com/marcelsud/message-relay/webhook"
	"github.com/marcelsud/message-relay/webhook/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const validFile = `
accounts:
  - id: "acme"
    connection_id: "conn-1"
    name: "Acme"
webhooks:
  - webhook_id: "forms"
    account_id: "acme"
    secret: "whsec_abc"
    field_mapping:
      phone: "$.data.phone"
      name: "data.name"
    actions: ["contact.upsert", "relay.forward"]
  - webhook_id: "legacy"
    account_id: "acme"
    active: false
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "endpoints.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoader_Load(t *testing.T) {
	t.Run("success - valid endpoints file", func(t *testing.T) {
		loader := endpoints.NewLoader("contact.upsert", "relay.forward")
		err := loader.Load(writeFile(t, validFile))
		require.NoError(t, err)

		assert.Len(t, loader.List(), 2)
		assert.True(t, loader.Exists("forms"))

		forms, err := loader.Get("forms")
		require.NoError(t, err)
		assert.True(t, forms.Active)
		assert.Equal(t, "whsec_abc", forms.Secret)
		assert.Equal(t, []string{"contact.upsert", "relay.forward"}, forms.Actions)

		legacy, err := loader.Get("legacy")
		require.NoError(t, err)
		assert.False(t, legacy.Active)

		assert.Equal(t, []webhook.Account{{ID: "acme", ConnectionID: "conn-1", Name: "Acme"}}, loader.Accounts())
	})

	t.Run("repository sample file is valid", func(t *testing.T) {
		loader := endpoints.NewLoader("contact.upsert", "media.decrypt", "relay.forward")
		require.NoError(t, loader.Load("../endpoints.yaml"))
		assert.NotEmpty(t, loader.List())
	})

	t.Run("error - file not found", func(t *testing.T) {
		err := endpoints.NewLoader().Load("/nonexistent/endpoints.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading endpoints file")
	})

	t.Run("error - invalid YAML", func(t *testing.T) {
		err := endpoints.NewLoader().Load(writeFile(t, "webhooks: [::"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing endpoints YAML")
	})

	t.Run("error - unknown webhook id", func(t *testing.T) {
		loader := endpoints.NewLoader()
		require.NoError(t, loader.Load(writeFile(t, validFile)))

		_, err := loader.Get("nope")
		require.Error(t, err)
		assert.False(t, loader.Exists("nope"))
	})
}

func TestLoader_Validation(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{
			name: "missing webhook id",
			content: `
accounts: [{id: "a"}]
webhooks: [{account_id: "a"}]`,
			want: "webhook_id cannot be empty",
		},
		{
			name: "unknown account",
			content: `
accounts: [{id: "a"}]
webhooks: [{webhook_id: "w", account_id: "b"}]`,
			want: "unknown account b",
		},
		{
			name: "mapping without phone",
			content: `
accounts: [{id: "a"}]
webhooks: [{webhook_id: "w", account_id: "a", field_mapping: {name: "n"}}]`,
			want: `must map "phone"`,
		},
		{
			name: "bad path",
			content: `
accounts: [{id: "a"}]
webhooks: [{webhook_id: "w", account_id: "a", field_mapping: {phone: "a..b"}}]`,
			want: "invalid path for field phone",
		},
		{
			name: "duplicate webhook",
			content: `
accounts: [{id: "a"}]
webhooks: [{webhook_id: "w", account_id: "a"}, {webhook_id: "w", account_id: "a"}]`,
			want: "duplicate webhook_id w",
		},
		{
			name: "unknown action",
			content: `
accounts: [{id: "a"}]
webhooks: [{webhook_id: "w", account_id: "a", actions: ["crm.sync"]}]`,
			want: "unknown action crm.sync",
		},
		{
			name: "slash in id",
			content: `
accounts: [{id: "a"}]
webhooks: [{webhook_id: "w/x", account_id: "a"}]`,
			want: "cannot contain slashes",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := endpoints.NewLoader("contact.upsert").Parse([]byte(tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoader_Seed(t *testing.T) {
	ctx := context.Background()

	t.Run("success - accounts then configs", func(t *testing.T) {
		loader := endpoints.NewLoader()
		require.NoError(t, loader.Parse([]byte(validFile)))

		repo := mocks.NewRepository(t)
		repo.On("SaveAccount", ctx, webhook.Account{ID: "acme", ConnectionID: "conn-1", Name: "Acme"}).Return(nil)
		repo.On("SaveConfig", ctx, mock.MatchedBy(func(c webhook.Config) bool {
			return c.ID == "forms" && c.IsActive && c.FieldMapping["phone"] == "$.data.phone"
		})).Return(nil)
		repo.On("SaveConfig", ctx, mock.MatchedBy(func(c webhook.Config) bool {
			return c.ID == "legacy" && !c.IsActive
		})).Return(nil)

		require.NoError(t, loader.Seed(ctx, repo))
	})

	t.Run("error - store failure", func(t *testing.T) {
		loader := endpoints.NewLoader()
		require.NoError(t, loader.Parse([]byte(validFile)))

		repo := mocks.NewRepository(t)
		repo.On("SaveAccount", ctx, mock.Anything).Return(errors.New("down"))

		err := loader.Seed(ctx, repo)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "seeding account acme")
	})
}
