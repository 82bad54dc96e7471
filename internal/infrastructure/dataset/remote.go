package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/medalt/backend/internal/domain"
	"github.com/medalt/backend/internal/logging"
	"golang.org/x/time/rate"
)

const (
	defaultFetchTimeout = 30 * time.Second
	defaultMaxAttempts  = 3
	maxDatasetBytes     = 64 << 20
)

// RemoteFetcher downloads dataset files over HTTP with rate limiting and retries
type RemoteFetcher struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	maxAttempts int
	maxBytes    int64
	backoff     func(attempt int) time.Duration
}

// NewRemoteFetcher creates a fetcher allowing one request per second with a burst of 3
func NewRemoteFetcher() *RemoteFetcher {
	return &RemoteFetcher{
		httpClient: &http.Client{
			Timeout: defaultFetchTimeout,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(1), 3),
		maxAttempts: defaultMaxAttempts,
		maxBytes:    maxDatasetBytes,
		backoff:     exponentialBackoff,
	}
}

func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(1<<(attempt-1)) * 500 * time.Millisecond
}

// Fetch downloads the body at rawURL. Transient failures are retried; 404 and
// oversized bodies are not.
func (f *RemoteFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	log := logging.Component("dataset")

	var lastErr error
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		if err := f.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		body, status, err := f.doRequest(ctx, rawURL)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Str("url", rawURL).Msg("dataset request failed")
			lastErr = err
		} else if status == http.StatusOK {
			if int64(len(body)) > f.maxBytes {
				log.Error().Int64("limit", f.maxBytes).Str("url", rawURL).Msg("dataset body over size limit")
				return nil, fmt.Errorf("%w: dataset exceeds %d bytes", domain.ErrRemoteFetchFailure, f.maxBytes)
			}
			return body, nil
		} else {
			log.Warn().Int("status", status).Int("attempt", attempt).Str("url", rawURL).Msg("dataset request returned error status")
			lastErr = fmt.Errorf("%w: status %d", domain.ErrRemoteFetchFailure, status)
			if status == http.StatusNotFound {
				return nil, lastErr
			}
		}

		if attempt == f.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.backoff(attempt)):
		}
	}

	log.Error().Err(lastErr).Str("url", rawURL).Msg("all dataset download attempts failed")
	return nil, lastErr
}

// doRequest reads at most one byte past maxBytes so Fetch can tell an oversized
// body from one that fits exactly.
func (f *RemoteFetcher) doRequest(ctx context.Context, rawURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "MedAlt/1.0")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrRemoteFetchFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read body: %v", domain.ErrRemoteFetchFailure, err)
	}
	return body, resp.StatusCode, nil
}
