package relay

import "time"

/* Item is one pending forwarding attempt
 * Owned exclusively by the queue once a producer hands the payload off
 */
type Item struct {
	ID          string
	Payload     []byte
	RetryCount  int
	NextRetryAt time.Time
	AddedAt     time.Time
	State       State
}

// Due reports whether the item may be attempted at now
func (i *Item) Due(now time.Time) bool {
	return !now.Before(i.NextRetryAt)
}
