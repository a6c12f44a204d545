package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultMaxSize bounds how much encrypted media a single download may read
const DefaultMaxSize = 64 << 20

// Downloader fetches encrypted media blobs from provider URLs
type Downloader struct {
	client  *http.Client
	maxSize int64
}

// NewDownloader creates a Downloader with the given per request timeout
func NewDownloader(timeout time.Duration, maxSize int64) *Downloader {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Downloader{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		maxSize: maxSize,
	}
}

// Download returns the raw encrypted bytes stored at url
func (d *Downloader) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating media request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("downloading media: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, d.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading media body: %w", err)
	}
	if int64(len(data)) > d.maxSize {
		return nil, fmt.Errorf("media larger than %d bytes", d.maxSize)
	}

	return data, nil
}
