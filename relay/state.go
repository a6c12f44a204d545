package relay

import "fmt"

/* State represents where a queued delivery is in its lifecycle
 * Pending -> InFlight -> Delivered | RetryScheduled (back to Pending) | Exhausted
 */
type State int

const (
	Pending State = iota + 1
	InFlight
	Delivered
	RetryScheduled
	Exhausted
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case InFlight:
		return "in-flight"
	case Delivered:
		return "delivered"
	case RetryScheduled:
		return "retry-scheduled"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Validate checks if the state is valid
func (s State) Validate() error {
	if s < Pending || s > Exhausted {
		return fmt.Errorf("invalid state: %d", s)
	}
	return nil
}

// IsFinal returns true if the item has left the queue for good
func (s State) IsFinal() bool {
	return s == Delivered || s == Exhausted
}
