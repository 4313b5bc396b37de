package crawler

import (
	"context"
	"fmt"
)

// State represents the lifecycle state of a crawl run.
type State string

// Crawl run states reported via logs and the status endpoint.
const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateDraining  State = "draining"
	StateCompleted State = "completed"
)

// StatusError reports a non-200 HTTP response. Status errors are terminal for
// a URL: they are never retried, unlike transport failures.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d", e.Code)
}

// Snapshot is a point-in-time view of a crawl run, served by the status
// endpoint.
type Snapshot struct {
	RunID          string `json:"run_id"`
	State          State  `json:"state"`
	Generation     int    `json:"generation"`
	Crawled        int    `json:"crawled"`
	Pending        int    `json:"pending"`
	ActiveProxies  int    `json:"active_proxies"`
	InvalidProxies int    `json:"invalid_proxies"`
}

// Fetcher retrieves the raw body of a URL, applying whatever retry and proxy
// policy the implementation owns.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// Archiver persists a fetched page body keyed by its URL.
type Archiver interface {
	Save(rawURL string, body []byte) error
}

// LinkExtractor pulls raw href candidates out of a page body. Implementations
// must tolerate malformed markup without failing.
type LinkExtractor interface {
	Extract(body []byte) []string
}
