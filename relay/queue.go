package relay

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Options tunes retry behavior. Zero values fall back to the defaults.
type Options struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Timeout      time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxRetries <= 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.InitialDelay <= 0 {
		o.InitialDelay = DefaultInitialDelay
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = DefaultMaxDelay
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// Observer is notified of delivery outcomes, typically to record metrics
type Observer interface {
	Attempted(ctx context.Context, ok bool)
	Exhausted(ctx context.Context)
}

type nopObserver struct{}

func (nopObserver) Attempted(context.Context, bool) {}
func (nopObserver) Exhausted(context.Context)       {}

/* Queue is an in-process, best-effort delivery queue
 * The first attempt runs in the caller's goroutine; retries run in a single
 * background drain loop. Nothing survives a restart.
 */
type Queue struct {
	sender   Sender
	opts     Options
	logger   zerolog.Logger
	observer Observer

	mu       sync.Mutex
	items    []*Item // ordered by NextRetryAt
	draining bool
	closed   bool

	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
}

// NewQueue creates a queue delivering through sender
func NewQueue(sender Sender, opts Options, logger zerolog.Logger) *Queue {
	return &Queue{
		sender:   sender,
		opts:     opts.withDefaults(),
		logger:   logger.With().Str("component", "relay").Logger(),
		observer: nopObserver{},
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// SetObserver replaces the outcome observer
func (q *Queue) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	q.observer = o
}

// EnqueueAndDeliver attempts delivery right away and queues the payload for
// retry on failure. It never blocks longer than one attempt's timeout and
// never reports delivery failures to the caller.
func (q *Queue) EnqueueAndDeliver(ctx context.Context, payload []byte) {
	now := time.Now()
	item := &Item{
		ID:          uuid.New().String(),
		Payload:     payload,
		NextRetryAt: now,
		AddedAt:     now,
		State:       Pending,
	}
	q.attempt(context.WithoutCancel(ctx), item)
}

// Len returns the number of items waiting for a retry
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops the drain loop. Pending retries are dropped.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	dropped := len(q.items)
	q.items = nil
	close(q.done)
	q.mu.Unlock()

	q.wg.Wait()
	if dropped > 0 {
		q.logger.Warn().Int("dropped", dropped).Msg("relay queue closed with pending retries")
	}
}

func (q *Queue) attempt(ctx context.Context, item *Item) {
	item.State = InFlight

	attemptCtx, cancel := context.WithTimeout(q.logger.WithContext(ctx), q.opts.Timeout)
	err := q.sender.Send(attemptCtx, item.Payload)
	cancel()

	q.observer.Attempted(ctx, err == nil)

	if err == nil {
		item.State = Delivered
		q.logger.Debug().
			Str("item_id", item.ID).
			Int("retry_count", item.RetryCount).
			Msg("event delivered")
		return
	}

	item.RetryCount++
	if item.RetryCount >= q.opts.MaxRetries {
		item.State = Exhausted
		q.observer.Exhausted(ctx)
		q.logger.Error().
			Err(err).
			Str("item_id", item.ID).
			Int("retry_count", item.RetryCount).
			Time("added_at", item.AddedAt).
			Msg("event delivery exhausted, dropping")
		return
	}

	delay := Backoff(item.RetryCount-1, q.opts.InitialDelay, q.opts.MaxDelay)
	item.State = RetryScheduled
	item.NextRetryAt = time.Now().Add(delay)
	q.logger.Warn().
		Err(err).
		Str("item_id", item.ID).
		Int("retry_count", item.RetryCount).
		Dur("backoff", delay).
		Msg("event delivery failed, retry scheduled")

	q.schedule(item)
}

// schedule inserts item in NextRetryAt order and makes sure exactly one
// drain loop is running
func (q *Queue) schedule(item *Item) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		q.logger.Warn().Str("item_id", item.ID).Msg("relay queue closed, dropping retry")
		return
	}

	item.State = Pending
	i := sort.Search(len(q.items), func(i int) bool {
		return q.items[i].NextRetryAt.After(item.NextRetryAt)
	})
	q.items = append(q.items, nil)
	copy(q.items[i+1:], q.items[i:])
	q.items[i] = item

	select {
	case q.wake <- struct{}{}:
	default:
	}

	if !q.draining {
		q.draining = true
		q.wg.Add(1)
		go q.drain()
	}
}

func (q *Queue) drain() {
	defer q.wg.Done()

	for {
		q.mu.Lock()
		if q.closed || len(q.items) == 0 {
			q.draining = false
			q.mu.Unlock()
			return
		}

		head := q.items[0]
		if wait := time.Until(head.NextRetryAt); wait > 0 {
			q.mu.Unlock()
			if !q.sleep(wait) {
				q.mu.Lock()
				q.draining = false
				q.mu.Unlock()
				return
			}
			continue
		}

		q.items[0] = nil
		q.items = q.items[1:]
		q.mu.Unlock()

		q.attempt(context.Background(), head)
		runtime.Gosched()
	}
}

// sleep waits for d, an earlier wake-up or shutdown. It returns false on shutdown.
func (q *Queue) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-q.wake:
		return true
	case <-q.done:
		return false
	}
}
