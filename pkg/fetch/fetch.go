// Package fetch retrieves glyph images from content-delivery endpoints with a
// bounded per-endpoint deadline and ordered fallback across endpoints.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"

	"github.com/glyphkit/glyphcache/pkg/glyph"
)

const (
	// userAgent matches a browser profile; some asset hosts reject
	// default library agents.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	// maxImageBytes caps a single response body. Glyph rasters are tens of
	// kilobytes; anything near this limit is not a glyph.
	maxImageBytes = 4 << 20

	// Transient errors within one endpoint's deadline are retried briefly
	// before moving on.
	attemptsPerVariant = 2
	initialRetryDelay  = 50 * time.Millisecond
	maxRetryDelay      = 500 * time.Millisecond
)

// ErrExhausted reports that every configured endpoint failed or timed out for
// a fetch. It wraps the last underlying failure.
var ErrExhausted = errors.New("all endpoints exhausted")

// errNotFound marks a definitive 404 for one URL variant; retrying the same
// URL cannot help, but another variant or endpoint still can.
var errNotFound = errors.New("not found")

// Fetcher downloads glyph images, trying endpoint base URLs in priority
// order. Each endpoint gets its own deadline, so the worst case across full
// fallback is timeout multiplied by the endpoint count.
type Fetcher struct {
	client    *http.Client
	endpoints []string
	timeout   time.Duration
}

// New creates a fetcher over the given ordered endpoint bases. The timeout is
// the per-endpoint attempt budget and must be positive; validating
// configuration is the caller's concern.
func New(endpoints []string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		// Timeouts are enforced per attempt via context deadlines; the
		// client itself stays unlimited.
		client:    &http.Client{},
		endpoints: endpoints,
		timeout:   timeout,
	}
}

// Fetch retrieves the image bytes for key. Endpoints are tried in priority
// order; the first non-empty success short-circuits. When every endpoint is
// exhausted the returned error wraps ErrExhausted and the last failure.
func (f *Fetcher) Fetch(ctx context.Context, key glyph.Key) ([]byte, error) {
	variants := key.PathVariants()
	if len(f.endpoints) == 0 {
		return nil, fmt.Errorf("%w: no endpoints configured", ErrExhausted)
	}

	var lastErr error
	for _, base := range f.endpoints {
		attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
		data, err := f.fetchFromEndpoint(attemptCtx, base, variants)
		cancel()
		if err == nil {
			return data, nil
		}
		lastErr = err
		slog.Debug("glyph endpoint failed, falling back", "endpoint", base, "key", key, "error", err)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("%w for %s: %w", ErrExhausted, key, lastErr)
}

// fetchFromEndpoint tries each URL variant against one endpoint base within
// the shared attempt deadline.
func (f *Fetcher) fetchFromEndpoint(ctx context.Context, base string, variants []string) ([]byte, error) {
	var lastErr error
	for _, variant := range variants {
		url := base + "/" + variant + ".png"

		var data []byte
		err := retry.Do(
			func() error {
				body, err := f.get(ctx, url)
				if err != nil {
					return err
				}
				data = body
				return nil
			},
			retry.Context(ctx),
			retry.Attempts(attemptsPerVariant),
			retry.DelayType(retry.BackOffDelay),
			retry.Delay(initialRetryDelay),
			retry.MaxDelay(maxRetryDelay),
			retry.LastErrorOnly(true),
			retry.RetryIf(func(err error) bool {
				return !errors.Is(err, errNotFound)
			}),
		)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, fmt.Errorf("endpoint attempt aborted: %w", lastErr)
		}
	}
	return nil, lastErr
}

// get performs a single HTTP request and validates the response.
func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", url, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Debug("closing response body", "url", url, "error", err)
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", errNotFound, url)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("reading body from %s: %w", url, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty body from %s", url)
	}
	return data, nil
}
