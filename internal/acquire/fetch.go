package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"github.com/mskrss/background-pingu/internal/cachemanager"
	"github.com/mskrss/background-pingu/internal/logging"
)

// maxLogBytes caps how much of a remote log is read.
const maxLogBytes = 32 << 20

// FetcherConfig configures a Fetcher.
type FetcherConfig struct {
	// Timeout bounds each HTTP attempt. Default: 5 seconds.
	Timeout time.Duration
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// BaseDelay and MaxDelay bound the exponential backoff between attempts.
	BaseDelay time.Duration
	MaxDelay  time.Duration
	// CacheTTL is how long fetched logs are kept. Zero disables caching.
	CacheTTL time.Duration
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// DefaultFetcherConfig returns the defaults used by the CLI.
func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		Timeout:    5 * time.Second,
		MaxRetries: 2,
		BaseDelay:  200 * time.Millisecond,
		MaxDelay:   2 * time.Second,
		CacheTTL:   cachemanager.DefaultExpiration,
	}
}

func normalizeFetcherConfig(cfg FetcherConfig) FetcherConfig {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 200 * time.Millisecond
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		cfg.MaxDelay = cfg.BaseDelay
	}
	return cfg
}

// Fetcher downloads logs from paste sites with retries and a TTL cache.
// It is safe for concurrent use.
type Fetcher struct {
	client   *http.Client
	executor failsafe.Executor[*http.Response]
	cache    cachemanager.CacheManager[string, string]
	cacheTTL time.Duration
}

// shouldRetry retries transport errors, server errors and rate limits.
func shouldRetry(resp *http.Response, err error) bool {
	if err != nil {
		return true
	}
	if resp == nil {
		return true
	}
	switch resp.StatusCode {
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusTooManyRequests:
		return true
	default:
		return false
	}
}

// NewFetcher creates a Fetcher.
//
//nolint:bodyclose // false positive: [*http.Response] is a generic type parameter, not an actual response
func NewFetcher(cfg FetcherConfig) *Fetcher {
	cfg = normalizeFetcherConfig(cfg)

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	retry := retrypolicy.NewBuilder[*http.Response]().
		HandleIf(shouldRetry).
		WithBackoff(cfg.BaseDelay, cfg.MaxDelay).
		WithMaxRetries(cfg.MaxRetries).
		WithJitterFactor(0.1).
		ReturnLastFailure().
		OnRetry(func(e failsafe.ExecutionEvent[*http.Response]) {
			logging.Debug("retrying log fetch", "attempt", e.Attempts(), "error", e.LastError())
		}).
		Build()

	f := &Fetcher{
		client:   client,
		executor: failsafe.With[*http.Response](retry),
		cacheTTL: cfg.CacheTTL,
	}
	if cfg.CacheTTL > 0 {
		f.cache = cachemanager.NewInMemoryCacheManager[string, string]("logs", cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	return f
}

// Fetch resolves link and downloads the log it points to. The text has its
// carriage returns removed.
func (f *Fetcher) Fetch(ctx context.Context, link string) (string, error) {
	direct, err := ResolveLink(link)
	if err != nil {
		return "", err
	}
	if f.cache != nil {
		if text, ok := f.cache.GetWithRefresh(ctx, direct, f.cacheTTL); ok {
			logging.Debug("log cache hit", "url", direct)
			return text, nil
		}
	}

	text, err := f.download(ctx, direct)
	if err != nil {
		logging.WarnContext(ctx, "log fetch failed", "url", direct, "error", err)
		return "", err
	}
	if f.cache != nil {
		f.cache.Set(ctx, direct, text, f.cacheTTL)
	}
	logging.InfoContext(ctx, "fetched log", "url", direct, "bytes", len(text))
	return text, nil
}

func (f *Fetcher) download(ctx context.Context, url string) (string, error) {
	resp, err := f.executor.WithContext(ctx).Get(func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := f.client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			// Only the status is needed from failed attempts.
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
			resp.Body.Close()
		}
		return resp, nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: %s: %w", ErrFetchFailed, url, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s: status %d", ErrFetchFailed, url, resp.StatusCode)
	}
	defer resp.Body.Close()

	return ReadAll(io.LimitReader(resp.Body, maxLogBytes))
}
