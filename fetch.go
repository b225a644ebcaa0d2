package showcase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	// DefaultFetchAttempts bounds the catalog fetch retries.
	DefaultFetchAttempts = 3
	defaultRetryDelay    = 250 * time.Millisecond
	maxCatalogBytes      = 8 << 20
)

// CatalogFetcher retrieves raw catalog JSON. Implementations wrap transient
// failures with Retryable so FetchComposition tries again.
type CatalogFetcher interface {
	Fetch(ctx context.Context, source string) ([]byte, error)
}

// HTTPFetcher fetches catalogs over HTTP(S). Sources without a scheme are
// read from the local filesystem.
type HTTPFetcher struct {
	Client *http.Client
}

// Fetch implements CatalogFetcher.
func (f HTTPFetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, Retryable(fmt.Errorf("fetch catalog: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, Retryable(fmt.Errorf("fetch catalog: %s", resp.Status))
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch catalog: %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes))
	if err != nil {
		return nil, Retryable(fmt.Errorf("read catalog body: %w", err))
	}
	return data, nil
}

// Retry runs a catalog fetch, passing fn the attempt number starting at 1.
// Failures marked with Retryable are tried again, at most attempts times in
// total, waiting delay before the second attempt and twice as long before
// each one after that. Any other error ends the loop at once. A cancelled
// ctx stops the wait and returns ctx.Err().
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func(attempt int) error) error {
	attempts = max(attempts, 1)
	for attempt := 1; ; attempt++ {
		err := fn(attempt)
		if err == nil || !IsRetryable(err) || attempt == attempts {
			return err
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}

// FetchOptions controls FetchComposition.
type FetchOptions struct {
	Attempts int
	Delay    time.Duration
	// OnRetry is called with each failed attempt that will be retried.
	OnRetry func(attempt int, err error)
}

// FetchComposition fetches and parses a catalog, retrying transient
// failures. Parse errors are never retried.
func FetchComposition(ctx context.Context, f CatalogFetcher, source string, opts FetchOptions) (*Composition, error) {
	if opts.Attempts <= 0 {
		opts.Attempts = DefaultFetchAttempts
	}
	if opts.Delay <= 0 {
		opts.Delay = defaultRetryDelay
	}
	var data []byte
	err := Retry(ctx, opts.Attempts, opts.Delay, func(attempt int) error {
		var err error
		data, err = f.Fetch(ctx, source)
		if err != nil && IsRetryable(err) && attempt < opts.Attempts && opts.OnRetry != nil {
			opts.OnRetry(attempt, err)
		}
		return err
	})
	if err != nil {
		var re *RetryableError
		if errors.As(err, &re) {
			err = re.Err
		}
		return nil, fmt.Errorf("load composition %s: %w", source, err)
	}
	return ParseComposition(data)
}
