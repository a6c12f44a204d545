package webhook

import "errors"

var (
	// ErrConfigNotFound is returned when no config exists for a webhook id
	ErrConfigNotFound = errors.New("webhook config not found")

	// ErrConfigInactive is returned when the config exists but is disabled
	ErrConfigInactive = errors.New("webhook config is inactive")

	// ErrInvalidPayload is returned when the body is not valid JSON
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrInvalidSignature is returned when the signature header does not match the body
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrMissingPhone is returned when mapping could not resolve a phone number
	ErrMissingPhone = errors.New("missing phone")

	// ErrAccountNotFound is returned when the owning account cannot be resolved
	ErrAccountNotFound = errors.New("account not found")
)
