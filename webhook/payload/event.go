package payload

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// eventTypePattern: full-stop delimited segments of [a-zA-Z0-9_]
var eventTypePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+(\.[a-zA-Z0-9_]+)*$`)

// Event is the envelope relayed downstream.
// ID stays the same across delivery retries so receivers can drop repeats.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewEvent wraps data in an envelope of the given type, stamped now in UTC
func NewEvent(eventType string, data any) (Event, error) {
	if err := ValidateEventType(eventType); err != nil {
		return Event{}, err
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, fmt.Errorf("marshaling data: %w", err)
	}

	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      raw,
	}, nil
}

// Bytes returns the JSON-encoded event
func (e Event) Bytes() ([]byte, error) {
	return json.Marshal(e)
}

// ValidateEventType rejects types NewEvent cannot build, such as "contact-received"
func ValidateEventType(eventType string) error {
	if eventType == "" {
		return fmt.Errorf("event type cannot be empty")
	}

	if !eventTypePattern.MatchString(eventType) {
		return fmt.Errorf("event type must be full-stop delimited [a-zA-Z0-9_] segments: %q", eventType)
	}

	return nil
}
