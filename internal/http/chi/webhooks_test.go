package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/marcelsud/message-relay/endpoints"
	"github.com/marcelsud/message-relay/metrics"
	"github.com/marcelsud/message-relay/webhook"
	"github.com/marcelsud/message-relay/webhook/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	outcome string
	action  string
	ok      bool
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (f *fakeRecorder) RecordRequest(_ context.Context, outcome string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordedCall{outcome: outcome})
}

func (f *fakeRecorder) RecordAction(_ context.Context, action string, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordedCall{action: action, ok: ok})
}

func (f *fakeRecorder) outcomes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if c.outcome != "" {
			out = append(out, c.outcome)
		}
	}
	return out
}

type fakeStats struct {
	err error
}

func (f fakeStats) Snapshot(context.Context) (metrics.Metrics, error) {
	return metrics.Metrics{Received: map[string]int64{"forms": 2}, RelayQueueLength: 3}, f.err
}

type fixedQueue int

func (q fixedQueue) Len() int { return int(q) }

func newLoader(t *testing.T) *endpoints.Loader {
	t.Helper()
	loader := endpoints.NewLoader()
	require.NoError(t, loader.Parse([]byte(`
accounts:
  - id: "acme"
webhooks:
  - webhook_id: "forms"
    account_id: "acme"
    secret: "whsec_abc"
    field_mapping:
      phone: "data.phone"
    actions: ["contact.upsert"]
`)))
	return loader
}

func post(h http.Handler, path string, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestPostWebhook(t *testing.T) {
	ctx := context.Background()
	body := `{"data":{"phone":"+5511999999999"}}`

	t.Run("success - accepted", func(t *testing.T) {
		s := mocks.NewUseCase(t)
		rec := &fakeRecorder{}
		s.On("Handle", mock.Anything, "forms", []byte(body), mock.MatchedBy(func(h map[string]string) bool {
			return h["X-Request-Id"] == "req-1"
		})).Return(webhook.Result{
			Accepted:  true,
			ContactID: "c-1",
			Actions:   []webhook.ActionOutcome{{Action: "contact.upsert", OK: true}},
		}, nil)

		h := WebhookHandlers(ctx, s, newLoader(t), Options{Recorder: rec})
		w := post(h, "/v1/webhooks/forms", body, map[string]string{"X-Request-ID": "req-1"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		var result webhook.Result
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.True(t, result.Accepted)
		assert.Equal(t, "c-1", result.ContactID)
		assert.Equal(t, []string{"accepted"}, rec.outcomes())
		assert.Contains(t, rec.calls, recordedCall{action: "contact.upsert", ok: true})
	})

	t.Run("success - duplicate", func(t *testing.T) {
		s := mocks.NewUseCase(t)
		rec := &fakeRecorder{}
		s.On("Handle", mock.Anything, "forms", mock.Anything, mock.Anything).
			Return(webhook.Result{Accepted: true, Duplicate: true}, nil)

		h := WebhookHandlers(ctx, s, newLoader(t), Options{Recorder: rec})
		w := post(h, "/v1/webhooks/forms", body, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"accepted":true,"duplicate":true}`, w.Body.String())
		assert.Equal(t, []string{"duplicate"}, rec.outcomes())
	})

	t.Run("missing phone returns the result with 400", func(t *testing.T) {
		s := mocks.NewUseCase(t)
		s.On("Handle", mock.Anything, "forms", mock.Anything, mock.Anything).
			Return(webhook.Result{Accepted: false, Error: "missing phone"}, webhook.ErrMissingPhone)

		h := WebhookHandlers(ctx, s, newLoader(t), Options{})
		w := post(h, "/v1/webhooks/forms", `{}`, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"accepted":false,"error":"missing phone"}`, w.Body.String())
	})

	errorCases := []struct {
		name    string
		err     error
		status  int
		outcome string
	}{
		{"unknown webhook", webhook.ErrConfigNotFound, http.StatusNotFound, "not_found"},
		{"inactive webhook", webhook.ErrConfigInactive, http.StatusBadRequest, "inactive"},
		{"bad signature", webhook.ErrInvalidSignature, http.StatusUnauthorized, "invalid_signature"},
		{"malformed body", errors.Join(webhook.ErrInvalidPayload, errors.New("unexpected EOF")), http.StatusBadRequest, "invalid_payload"},
		{"store failure", errors.New("connection refused"), http.StatusInternalServerError, "error"},
	}
	for _, tc := range errorCases {
		t.Run("error - "+tc.name, func(t *testing.T) {
			s := mocks.NewUseCase(t)
			rec := &fakeRecorder{}
			s.On("Handle", mock.Anything, "forms", mock.Anything, mock.Anything).Return(webhook.Result{}, tc.err)

			h := WebhookHandlers(ctx, s, newLoader(t), Options{Recorder: rec})
			w := post(h, "/v1/webhooks/forms", body, nil)

			assert.Equal(t, tc.status, w.Code)
			var resp errorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tc.status, resp.Code)
			assert.NotEmpty(t, resp.Message)
			assert.Equal(t, []string{tc.outcome}, rec.outcomes())
		})
	}

	t.Run("internal errors are not leaked", func(t *testing.T) {
		s := mocks.NewUseCase(t)
		s.On("Handle", mock.Anything, "forms", mock.Anything, mock.Anything).
			Return(webhook.Result{}, errors.New("dial tcp 10.0.0.1:6379"))

		h := WebhookHandlers(ctx, s, newLoader(t), Options{})
		w := post(h, "/v1/webhooks/forms", body, nil)

		assert.NotContains(t, w.Body.String(), "10.0.0.1")
	})

	t.Run("error - body too large", func(t *testing.T) {
		s := mocks.NewUseCase(t)

		h := WebhookHandlers(ctx, s, newLoader(t), Options{MaxBodyBytes: 8})
		w := post(h, "/v1/webhooks/forms", body, nil)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		s.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGetWebhooks(t *testing.T) {
	s := mocks.NewUseCase(t)
	h := WebhookHandlers(context.Background(), s, newLoader(t), Options{})

	req := httptest.NewRequest(http.MethodGet, "/v1/webhooks", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var results []endpointResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "forms", results[0].WebhookID)
	assert.True(t, results[0].Signed)
	assert.True(t, results[0].Mapped)
	assert.NotContains(t, w.Body.String(), "whsec_abc")
}

func TestOperationalRoutes(t *testing.T) {
	s := mocks.NewUseCase(t)
	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("relay_queue_length 0\n"))
	})
	h := WebhookHandlers(context.Background(), s, newLoader(t), Options{
		MetricsHandler: metricsHandler,
		Queue:          fixedQueue(3),
		Stats:          fakeStats{},
	})

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	t.Run("health", func(t *testing.T) {
		w := get("/health")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
	})

	t.Run("metrics", func(t *testing.T) {
		w := get("/metrics")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, bytes.Contains(w.Body.Bytes(), []byte("relay_queue_length")))
	})

	t.Run("relay queue", func(t *testing.T) {
		w := get("/v1/relay/queue")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"pending":3}`, w.Body.String())
	})

	t.Run("stats", func(t *testing.T) {
		w := get("/v1/stats")
		assert.Equal(t, http.StatusOK, w.Code)
		var snapshot metrics.Metrics
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snapshot))
		assert.Equal(t, int64(2), snapshot.Received["forms"])
		assert.Equal(t, int64(3), snapshot.RelayQueueLength)
	})

	t.Run("unknown route", func(t *testing.T) {
		w := get("/v1/nope")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestGetStats_Error(t *testing.T) {
	s := mocks.NewUseCase(t)
	h := WebhookHandlers(context.Background(), s, newLoader(t), Options{Stats: fakeStats{err: errors.New("redis down")}})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/stats", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "redis down")
}
