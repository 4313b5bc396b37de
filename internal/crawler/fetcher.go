package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// FetcherConfig controls HTTPFetcher behavior.
type FetcherConfig struct {
	Timeout    time.Duration
	MaxRetries int
	UserAgent  string
}

// HTTPFetcher performs single-URL GETs with per-attempt proxy rotation.
// Transport failures invalidate the proxy they used and consume a retry;
// non-200 statuses are terminal and never retried.
type HTTPFetcher struct {
	cfg     FetcherConfig
	proxies *ProxyPool
	logger  *zap.Logger

	mu      sync.Mutex
	clients map[string]*http.Client
}

// NewHTTPFetcher constructs a fetcher drawing proxies from the given pool.
func NewHTTPFetcher(cfg FetcherConfig, proxies *ProxyPool, logger *zap.Logger) *HTTPFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPFetcher{
		cfg:     cfg,
		proxies: proxies,
		logger:  logger,
		clients: make(map[string]*http.Client),
	}
}

// Fetch attempts to retrieve rawURL up to MaxRetries+1 times, sequentially.
// A cancelled context aborts immediately without consuming a retry or
// invalidating the in-use proxy.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	attempts := f.cfg.MaxRetries + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		proxy, _ := f.proxies.Pick()
		f.logger.Debug("fetching",
			zap.String("url", rawURL),
			zap.Int("attempt", attempt),
			zap.Int("attempts", attempts),
			zap.String("proxy", proxy),
		)

		body, err := f.attempt(ctx, rawURL, proxy)
		if err == nil {
			f.logger.Debug("fetched", zap.String("url", rawURL), zap.Int("bytes", len(body)))
			return body, nil
		}

		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			// Status errors are terminal for the URL, with no retry.
			FetchErrors.Inc()
			f.logger.Warn("fetch returned error status",
				zap.String("url", rawURL),
				zap.Int("status", statusErr.Code),
			)
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err
		f.logger.Warn("fetch attempt failed",
			zap.String("url", rawURL),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if proxy != "" && f.proxies.MarkInvalid(proxy) {
			ProxiesInvalidated.Inc()
			f.logger.Debug("proxy marked invalid", zap.String("proxy", proxy))
		}
		if attempt < attempts {
			FetchRetries.Inc()
		}
	}
	FetchErrors.Inc()
	return nil, fmt.Errorf("all %d attempts failed for %s: %w", attempts, rawURL, lastErr)
}

func (f *HTTPFetcher) attempt(ctx context.Context, rawURL, proxy string) ([]byte, error) {
	client, err := f.clientFor(proxy)
	if err != nil {
		return nil, fmt.Errorf("proxy %s: %w", proxy, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// clientFor returns a cached client for the given proxy endpoint, building one
// on first use. The empty proxy means a direct connection.
func (f *HTTPFetcher) clientFor(proxy string) (*http.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if client, ok := f.clients[proxy]; ok {
		return client, nil
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        128,
		MaxIdleConnsPerHost: 32,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		ForceAttemptHTTP2:   true,
	}
	if proxy != "" {
		proxyURL, err := url.Parse(ensureProxyScheme(proxy))
		if err != nil {
			return nil, fmt.Errorf("parse proxy endpoint: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	client := &http.Client{
		Timeout:   f.cfg.Timeout,
		Transport: transport,
	}
	f.clients[proxy] = client
	return client, nil
}

func ensureProxyScheme(proxy string) string {
	if strings.Contains(proxy, "://") {
		return proxy
	}
	return "http://" + proxy
}
