package media

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidKeyLength = errors.New("media key must be 32 bytes")
	ErrTruncated        = errors.New("ciphertext shorter than mac tag")
	ErrCipher           = errors.New("cipher failure")
)

// DecodeError reports a structural failure while decoding media.
// MAC and content hash mismatches are never reported as a DecodeError.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("media %s: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
