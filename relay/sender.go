package relay

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/marcelsud/message-relay/webhook/signature"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// maxDrainBytes bounds how much of a response body is read for connection reuse
const maxDrainBytes = 64 << 10

// Sender performs one delivery attempt
type Sender interface {
	Send(ctx context.Context, payload []byte) error
}

// HTTPSender POSTs payloads to the downstream automation endpoint.
// Any 2xx is a success; the response body is ignored. A body that cannot
// be drained is logged through the logger carried by ctx.
type HTTPSender struct {
	client *http.Client
	url    string
	secret string
}

// NewHTTPSender creates a sender for url. When secret is non-empty every
// request carries an HMAC-SHA256 signature of the body.
func NewHTTPSender(url, secret string, timeout time.Duration) *HTTPSender {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPSender{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		url:    url,
		secret: secret,
	}
}

// Send delivers payload once
func (s *HTTPSender) Send(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating delivery request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.secret != "" {
		req.Header.Set(signature.Header, signature.Sign(s.secret, payload))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting event: %w", err)
	}
	defer resp.Body.Close()
	if _, err := io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes)); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Int("status", resp.StatusCode).Msg("draining response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("downstream returned status %d", resp.StatusCode)
	}
	return nil
}
