package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// RequestIDFields are the payload fields consulted, in order, for an idempotency key
var RequestIDFields = []string{"id", "uuid", "event_id"}

// Parse decodes an arbitrary JSON body. Numbers are kept as json.Number so
// long phone numbers survive untouched.
func Parse(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding body: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decoding body: trailing data after JSON value")
	}
	return doc, nil
}

// RequestID returns the first non-empty well-known id field of a JSON object
func RequestID(doc any) string {
	obj, ok := doc.(map[string]any)
	if !ok {
		return ""
	}
	for _, field := range RequestIDFields {
		if s := Scalar(obj[field]); s != "" {
			return s
		}
	}
	return ""
}

// Scalar renders strings, numbers and booleans as text. Anything else is "".
func Scalar(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}
