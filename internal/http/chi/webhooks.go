package chi

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog"
	"github.com/marcelsud/message-relay/endpoints"
	"github.com/marcelsud/message-relay/webhook"
)

/* HTTP layer DTOs for webhook API
 * Separate from domain entities to avoid leaking internal structure
 */

// endpointResponse represents a configured webhook in the API
type endpointResponse struct {
	WebhookID string   `json:"webhook_id"`
	AccountID string   `json:"account_id"`
	Active    bool     `json:"active"`
	Signed    bool     `json:"signed"`
	Mapped    bool     `json:"mapped"`
	Actions   []string `json:"actions"`
}

// queueResponse reports the relay backlog
type queueResponse struct {
	Pending int `json:"pending"`
}

// postWebhook handles POST /v1/webhooks/{webhook_id}
func postWebhook(webhookService webhook.UseCase, recorder Recorder, maxBodyBytes int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		webhookID := chi.URLParam(r, "webhook_id")
		if webhookID == "" {
			WriteError(w, http.StatusBadRequest, "webhook_id is required")
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				recorder.RecordRequest(ctx, "too_large")
				WriteError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			WriteError(w, http.StatusBadRequest, "failed to read request body")
			return
		}
		defer r.Body.Close()

		headers := make(map[string]string, len(r.Header))
		for key, values := range r.Header {
			if len(values) > 0 {
				headers[key] = values[0]
			}
		}

		result, err := webhookService.Handle(ctx, webhookID, body, headers)
		for _, outcome := range result.Actions {
			recorder.RecordAction(ctx, outcome.Action, outcome.OK)
		}

		switch {
		case err == nil:
			outcome := "accepted"
			if result.Duplicate {
				outcome = "duplicate"
			}
			recorder.RecordRequest(ctx, outcome)
			writeJSON(w, http.StatusOK, result)
		case errors.Is(err, webhook.ErrMissingPhone):
			recorder.RecordRequest(ctx, "missing_phone")
			writeJSON(w, http.StatusBadRequest, result)
		case errors.Is(err, webhook.ErrConfigNotFound):
			recorder.RecordRequest(ctx, "not_found")
			WriteError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, webhook.ErrConfigInactive):
			recorder.RecordRequest(ctx, "inactive")
			WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, webhook.ErrInvalidSignature):
			recorder.RecordRequest(ctx, "invalid_signature")
			WriteError(w, http.StatusUnauthorized, err.Error())
		case errors.Is(err, webhook.ErrInvalidPayload):
			recorder.RecordRequest(ctx, "invalid_payload")
			WriteError(w, http.StatusBadRequest, err.Error())
		default:
			recorder.RecordRequest(ctx, "error")
			httplog.LogEntrySetField(ctx, "handle_error", err.Error())
			WriteError(w, http.StatusInternalServerError, "internal error")
		}
	})
}

// getWebhooks handles GET /v1/webhooks
func getWebhooks(loader *endpoints.Loader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		all := loader.List()

		responses := make([]endpointResponse, 0, len(all))
		for _, e := range all {
			responses = append(responses, endpointResponse{
				WebhookID: e.WebhookID,
				AccountID: e.AccountID,
				Active:    e.Active,
				Signed:    e.Secret != "",
				Mapped:    len(e.FieldMapping) > 0,
				Actions:   e.Actions,
			})
		}

		writeJSON(w, http.StatusOK, responses)
	})
}

// getRelayQueue handles GET /v1/relay/queue
func getRelayQueue(queue QueueLen) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, queueResponse{Pending: queue.Len()})
	})
}

// getStats handles GET /v1/stats
func getStats(stats StatsSource) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := stats.Snapshot(r.Context())
		if err != nil {
			httplog.LogEntrySetField(r.Context(), "stats_error", err.Error())
			WriteError(w, http.StatusInternalServerError, "collecting stats")
			return
		}
		writeJSON(w, http.StatusOK, snapshot)
	})
}
