package chi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/marcelsud/message-relay/endpoints"
	"github.com/marcelsud/message-relay/metrics"
	"github.com/marcelsud/message-relay/webhook"
)

const (
	defaultMaxBodyBytes = 1 << 20
	defaultTimeout      = 60 * time.Second
)

// Recorder counts receiver outcomes, typically into metrics
type Recorder interface {
	RecordRequest(ctx context.Context, outcome string)
	RecordAction(ctx context.Context, action string, ok bool)
}

type nopRecorder struct{}

func (nopRecorder) RecordRequest(context.Context, string)     {}
func (nopRecorder) RecordAction(context.Context, string, bool) {}

// QueueLen reports the relay backlog
type QueueLen interface {
	Len() int
}

// StatsSource returns a point-in-time snapshot of stored counters
type StatsSource interface {
	Snapshot(ctx context.Context) (metrics.Metrics, error)
}

// Options holds the optional parts of the API. Zero values are valid.
type Options struct {
	Recorder       Recorder
	MetricsHandler http.Handler
	Queue          QueueLen
	Stats          StatsSource
	MaxBodyBytes   int64
	Timeout        time.Duration
	TextLogs       bool
}

// WebhookHandlers sets up the webhook API routes
func WebhookHandlers(ctx context.Context, webhookService webhook.UseCase, loader *endpoints.Loader, opts Options) *chi.Mux {
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	logger := httplog.NewLogger("message-relay", httplog.Options{
		JSON: !opts.TextLogs,
	})

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.Timeout))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}

	r.Route("/v1", func(r chi.Router) {
		// Configured webhooks
		r.Get("/webhooks", getWebhooks(loader).ServeHTTP)

		// Inbound producer calls
		r.Post("/webhooks/{webhook_id}", postWebhook(webhookService, opts.Recorder, opts.MaxBodyBytes).ServeHTTP)

		if opts.Queue != nil {
			r.Get("/relay/queue", getRelayQueue(opts.Queue).ServeHTTP)
		}

		if opts.Stats != nil {
			r.Get("/stats", getStats(opts.Stats).ServeHTTP)
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusNotFound, "route not found")
	})

	return r
}
