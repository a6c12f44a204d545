package media

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/rs/zerolog"
)

// MacSize is the length of the truncated HMAC-SHA256 tag appended to the ciphertext
const MacSize = 10

/* Decrypter decodes provider encrypted media
 * MAC and content hash mismatches are logged, never returned.
 */
type Decrypter struct {
	logger zerolog.Logger
}

// NewDecrypter creates a Decrypter that reports soft verification failures on logger
func NewDecrypter(logger zerolog.Logger) *Decrypter {
	return &Decrypter{logger: logger.With().Str("component", "media").Logger()}
}

// Decrypt decodes encrypted using the base64 media key. expectedSHA256 is the
// optional base64 SHA-256 of the plaintext.
func (d *Decrypter) Decrypt(encrypted []byte, mediaKeyB64 string, t Type, expectedSHA256 string) ([]byte, error) {
	mediaKey, err := base64.StdEncoding.DecodeString(mediaKeyB64)
	if err != nil {
		return nil, &DecodeError{Op: "decode key", Err: fmt.Errorf("%w: %v", ErrInvalidKeyLength, err)}
	}
	if len(mediaKey) != MediaKeySize {
		return nil, &DecodeError{Op: "decode key", Err: fmt.Errorf("%w: got %d bytes", ErrInvalidKeyLength, len(mediaKey))}
	}
	if len(encrypted) < MacSize {
		return nil, &DecodeError{Op: "split", Err: fmt.Errorf("%w: got %d bytes", ErrTruncated, len(encrypted))}
	}

	keys, err := DeriveKeys(mediaKey, t)
	if err != nil {
		return nil, err
	}

	body := encrypted[:len(encrypted)-MacSize]
	tag := encrypted[len(encrypted)-MacSize:]

	if !hmac.Equal(tag, Sign(keys, body)) {
		d.logger.Warn().
			Str("media_type", t.String()).
			Int("size", len(encrypted)).
			Msg("media mac mismatch, decrypting anyway")
	}

	plaintext, err := decryptCBC(keys, body)
	if err != nil {
		return nil, err
	}

	if expectedSHA256 != "" {
		sum := sha256.Sum256(plaintext)
		if got := base64.StdEncoding.EncodeToString(sum[:]); got != expectedSHA256 {
			d.logger.Warn().
				Str("media_type", t.String()).
				Str("expected_sha256", expectedSHA256).
				Str("actual_sha256", got).
				Msg("media content hash mismatch")
		}
	}

	return plaintext, nil
}

// Sign returns the truncated HMAC-SHA256 of iv || body
func Sign(keys Keys, body []byte) []byte {
	mac := hmac.New(sha256.New, keys.MacKey)
	mac.Write(keys.IV)
	mac.Write(body)
	return mac.Sum(nil)[:MacSize]
}

func decryptCBC(keys Keys, body []byte) ([]byte, error) {
	block, err := aes.NewCipher(keys.CipherKey)
	if err != nil {
		return nil, &DecodeError{Op: "decrypt", Err: fmt.Errorf("%w: %v", ErrCipher, err)}
	}
	if len(body) == 0 || len(body)%aes.BlockSize != 0 {
		return nil, &DecodeError{Op: "decrypt", Err: fmt.Errorf("%w: body of %d bytes is not a whole number of blocks", ErrCipher, len(body))}
	}

	out := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, keys.IV).CryptBlocks(out, body)

	return unpad(out)
}

func unpad(b []byte) ([]byte, error) {
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, &DecodeError{Op: "decrypt", Err: fmt.Errorf("%w: bad padding", ErrCipher)}
	}
	if !bytes.Equal(b[len(b)-n:], bytes.Repeat([]byte{byte(n)}, n)) {
		return nil, &DecodeError{Op: "decrypt", Err: fmt.Errorf("%w: bad padding", ErrCipher)}
	}
	return b[:len(b)-n], nil
}
