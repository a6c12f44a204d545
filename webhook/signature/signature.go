package signature

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// Header carries the HMAC-SHA256 signature of the raw request body
	Header = "X-Webhook-Signature"

	// SecretPrefix marks secrets generated by this package
	SecretPrefix = "whsec_"

	// MinSecretBytes is the minimum recommended secret size (192 bits)
	MinSecretBytes = 24

	// MaxSecretBytes is the maximum recommended secret size (512 bits)
	MaxSecretBytes = 64

	hexPrefix = "sha256="
)

// GenerateSecret creates a new random signing secret of size bytes,
// encoded as whsec_<base64>
func GenerateSecret(size int) (string, error) {
	if size < MinSecretBytes || size > MaxSecretBytes {
		return "", fmt.Errorf("secret size must be between %d and %d bytes", MinSecretBytes, MaxSecretBytes)
	}

	bytes := make([]byte, size)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating random bytes: %w", err)
	}

	return SecretPrefix + base64.StdEncoding.EncodeToString(bytes), nil
}

// Compute returns the raw HMAC-SHA256 of body keyed by secret
func Compute(secret string, body []byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return mac.Sum(nil)
}

// Sign returns the hex encoded signature producers are expected to send
func Sign(secret string, body []byte) string {
	return hex.EncodeToString(Compute(secret, body))
}

// Decode parses a signature header value. Accepted forms:
// <hex>, sha256=<hex> and standard or URL-safe base64.
func Decode(header string) ([]byte, error) {
	value := strings.TrimSpace(header)
	if value == "" {
		return nil, fmt.Errorf("signature is empty")
	}
	value = strings.TrimPrefix(value, hexPrefix)

	if len(value) == hex.EncodedLen(sha256.Size) {
		if raw, err := hex.DecodeString(value); err == nil {
			return raw, nil
		}
	}

	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.URLEncoding, base64.RawStdEncoding, base64.RawURLEncoding} {
		if raw, err := enc.DecodeString(value); err == nil && len(raw) == sha256.Size {
			return raw, nil
		}
	}

	return nil, fmt.Errorf("signature is neither hex nor base64 sha256")
}

// Verify checks header against the HMAC-SHA256 of body using constant-time comparison
func Verify(secret string, body []byte, header string) bool {
	provided, err := Decode(header)
	if err != nil {
		return false
	}
	return hmac.Equal(provided, Compute(secret, body))
}
