package signature

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecret(t *testing.T) {
	t.Run("success - minimum size", func(t *testing.T) {
		secret, err := GenerateSecret(MinSecretBytes)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(secret, SecretPrefix))

		raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, SecretPrefix))
		require.NoError(t, err)
		assert.Len(t, raw, MinSecretBytes)
	})

	t.Run("error - too small", func(t *testing.T) {
		_, err := GenerateSecret(MinSecretBytes - 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret size must be between")
	})

	t.Run("error - too large", func(t *testing.T) {
		_, err := GenerateSecret(MaxSecretBytes + 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret size must be between")
	})

	t.Run("randomness - generates different secrets", func(t *testing.T) {
		secret1, err1 := GenerateSecret(32)
		secret2, err2 := GenerateSecret(32)
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.NotEqual(t, secret1, secret2)
	})
}

func TestSign(t *testing.T) {
	// echo -n '{"id":"1"}' | openssl dgst -sha256 -hmac secret
	got := Sign("secret", []byte(`{"id":"1"}`))

	assert.Equal(t, "6146142a2ce0159e84c0767881e4ec80bc397da62526e7d19f70795eb79460c0", got)
	assert.NotEqual(t, got, Sign("other", []byte(`{"id":"1"}`)))
}

func TestVerify(t *testing.T) {
	body := []byte(`{"phone":"+5511999999999"}`)
	secret := "whsec_test"
	raw := Compute(secret, body)

	t.Run("hex", func(t *testing.T) {
		assert.True(t, Verify(secret, body, Sign(secret, body)))
	})

	t.Run("hex with prefix", func(t *testing.T) {
		assert.True(t, Verify(secret, body, "sha256="+Sign(secret, body)))
	})

	t.Run("upper case hex", func(t *testing.T) {
		assert.True(t, Verify(secret, body, strings.ToUpper(Sign(secret, body))))
	})

	t.Run("base64", func(t *testing.T) {
		assert.True(t, Verify(secret, body, base64.StdEncoding.EncodeToString(raw)))
		assert.True(t, Verify(secret, body, base64.RawURLEncoding.EncodeToString(raw)))
	})

	t.Run("wrong secret", func(t *testing.T) {
		assert.False(t, Verify("other", body, Sign(secret, body)))
	})

	t.Run("tampered body", func(t *testing.T) {
		assert.False(t, Verify(secret, []byte(`{"phone":"+5511000000000"}`), Sign(secret, body)))
	})

	t.Run("garbage header", func(t *testing.T) {
		assert.False(t, Verify(secret, body, "not-a-signature"))
		assert.False(t, Verify(secret, body, "   "))
	})
}

func TestDecode(t *testing.T) {
	t.Run("error - empty", func(t *testing.T) {
		_, err := Decode("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "signature is empty")
	})

	t.Run("error - short base64", func(t *testing.T) {
		_, err := Decode(base64.StdEncoding.EncodeToString([]byte("short")))
		require.Error(t, err)
	})
}
