package mapping_test

import (
	"testing"

	"github.com/marcelsud/message-relay/webhook/mapping"
	"github.com/marcelsud/message-relay/webhook/payload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, body string) any {
	t.Helper()
	doc, err := payload.Parse([]byte(body))
	require.NoError(t, err)
	return doc
}

func TestParsePath(t *testing.T) {
	cases := []struct {
		expr string
		want []string
	}{
		{"contact.phone", []string{"contact", "phone"}},
		{"$.contact.phone", []string{"contact", "phone"}},
		{"contacts[0].wa_id", []string{"contacts", "0", "wa_id"}},
		{"matrix[1][2]", []string{"matrix", "1", "2"}},
		{`data["full name"]`, []string{"data", "full name"}},
		{"/contacts/0/wa_id", []string{"contacts", "0", "wa_id"}},
		{"/a~1b/c~0d", []string{"a/b", "c~d"}},
	}

	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			got, err := mapping.ParsePath(tc.expr)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("errors", func(t *testing.T) {
		for _, expr := range []string{"", "a..b", "a[0", "a[]"} {
			_, err := mapping.ParsePath(expr)
			assert.Error(t, err, expr)
		}
	})
}

func TestResolve(t *testing.T) {
	doc := parse(t, `{
		"contacts": [{"wa_id": "5511999999999", "profile": {"name": "Ana"}}],
		"count": 2,
		"empty": null
	}`)

	v, ok := mapping.Resolve(doc, "contacts[0].profile.name")
	require.True(t, ok)
	assert.Equal(t, "Ana", v)

	v, ok = mapping.Resolve(doc, "/contacts/0/wa_id")
	require.True(t, ok)
	assert.Equal(t, "5511999999999", v)

	_, ok = mapping.Resolve(doc, "contacts[3].wa_id")
	assert.False(t, ok)

	_, ok = mapping.Resolve(doc, "count.value")
	assert.False(t, ok)

	_, ok = mapping.Resolve(doc, "empty")
	assert.False(t, ok)
}

func TestMap(t *testing.T) {
	doc := parse(t, `{
		"entry": {"from": "+55 (11) 99999-9999", "profile": {"name": "Ana"}},
		"mail": "Ana@Example.com",
		"plan": {"tier": "gold"}
	}`)

	t.Run("success - configured paths", func(t *testing.T) {
		f := mapping.Map(map[string]string{
			"phone": "entry.from",
			"name":  "$.entry.profile.name",
			"email": "/mail",
			"plan":  "plan.tier",
		}, doc)

		assert.Equal(t, "+5511999999999", f.Phone)
		assert.Equal(t, "Ana", f.Name)
		assert.Equal(t, "ana@example.com", f.Email)
		assert.Equal(t, map[string]any{"plan": "gold"}, f.Extra)
	})

	t.Run("unresolved phone stays empty", func(t *testing.T) {
		f := mapping.Map(map[string]string{"phone": "entry.wa_id"}, doc)
		assert.Empty(t, f.Phone)
	})

	t.Run("numeric phone", func(t *testing.T) {
		f := mapping.Map(map[string]string{"phone": "n"}, parse(t, `{"n": 5511988887777}`))
		assert.Equal(t, "5511988887777", f.Phone)
	})
}

func TestGuess(t *testing.T) {
	t.Run("top level keys", func(t *testing.T) {
		f := mapping.Guess(parse(t, `{"phoneNumber": "5511999999999", "full_name": "Ana", "email": "ana@example.com"}`))
		assert.Equal(t, "5511999999999", f.Phone)
		assert.Equal(t, "Ana", f.Name)
		assert.Equal(t, "ana@example.com", f.Email)
	})

	t.Run("one level of nesting", func(t *testing.T) {
		f := mapping.Guess(parse(t, `{"event": "message", "contact": {"wa_id": "5511999999999@s.whatsapp.net", "pushName": "Bia"}}`))
		assert.Equal(t, "5511999999999", f.Phone)
		assert.Equal(t, "Bia", f.Name)
	})

	t.Run("top level wins over nested", func(t *testing.T) {
		f := mapping.Guess(parse(t, `{"phone": "111", "contact": {"phone": "222"}}`))
		assert.Equal(t, "111", f.Phone)
	})

	t.Run("phone preferred over from", func(t *testing.T) {
		f := mapping.Guess(parse(t, `{"from": "111", "phone": "222"}`))
		assert.Equal(t, "222", f.Phone)
	})

	t.Run("two levels deep is not scanned", func(t *testing.T) {
		f := mapping.Guess(parse(t, `{"data": {"contact": {"phone": "5511999999999"}}}`))
		assert.Empty(t, f.Phone)
	})

	t.Run("email needs an at sign", func(t *testing.T) {
		f := mapping.Guess(parse(t, `{"phone": "1", "email": "not-an-email"}`))
		assert.Empty(t, f.Email)
	})

	t.Run("non-object payload", func(t *testing.T) {
		f := mapping.Guess(parse(t, `["5511999999999"]`))
		assert.Empty(t, f.Phone)
	})
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+5511999999999", mapping.NormalizePhone(" +55 11 99999-9999 "))
	assert.Equal(t, "5511999999999", mapping.NormalizePhone("5511999999999@s.whatsapp.net"))
	assert.Equal(t, "", mapping.NormalizePhone("+"))
	assert.Equal(t, "", mapping.NormalizePhone("unknown"))
}
