package media

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// MediaKeySize is the size of the provider supplied media key
	MediaKeySize = 32

	// ExpandedKeySize is how many bytes HKDF expands the media key into
	ExpandedKeySize = 112

	ivSize        = 16
	cipherKeySize = 32
	macKeySize    = 32
)

// Keys is the key material derived from one media key. It is never persisted.
type Keys struct {
	IV        []byte
	CipherKey []byte
	MacKey    []byte
}

// Expand runs HKDF-SHA256 over the media key with an all-zero 32 byte salt
// and returns length bytes of output
func Expand(mediaKey []byte, info string, length int) ([]byte, error) {
	salt := make([]byte, sha256.Size)
	reader := hkdf.New(sha256.New, mediaKey, salt, []byte(info))

	out := make([]byte, length)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, fmt.Errorf("expanding media key: %w", err)
	}
	return out, nil
}

// DeriveKeys expands a 32 byte media key into IV, cipher key and MAC key.
// The result depends only on the key and the type.
func DeriveKeys(mediaKey []byte, t Type) (Keys, error) {
	if len(mediaKey) != MediaKeySize {
		return Keys{}, &DecodeError{Op: "derive", Err: fmt.Errorf("%w: got %d bytes", ErrInvalidKeyLength, len(mediaKey))}
	}

	expanded, err := Expand(mediaKey, t.Info(), ExpandedKeySize)
	if err != nil {
		return Keys{}, &DecodeError{Op: "derive", Err: err}
	}

	// bytes 80..112 are unused
	return Keys{
		IV:        expanded[:ivSize],
		CipherKey: expanded[ivSize : ivSize+cipherKeySize],
		MacKey:    expanded[ivSize+cipherKeySize : ivSize+cipherKeySize+macKeySize],
	}, nil
}
