package crawler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// EngineConfig controls the crawl orchestration.
type EngineConfig struct {
	StartURL    string
	Concurrency int
	GracePeriod time.Duration
}

// Engine drives a level-synchronous breadth-first crawl: one generation of
// URLs is dispatched to a bounded worker pool, and the next generation is the
// union of the new in-scope URLs every worker discovered. Generation N+1 never
// starts before generation N fully resolves.
type Engine struct {
	cfg       EngineConfig
	fetcher   Fetcher
	store     *URLStore
	archive   Archiver
	extractor LinkExtractor
	proxies   *ProxyPool
	logger    *zap.Logger
	runID     uuid.UUID

	mu         sync.Mutex
	state      State
	generation int
}

// NewEngine wires the crawl components together and assigns the run a fresh ID.
func NewEngine(
	cfg EngineConfig,
	fetcher Fetcher,
	store *URLStore,
	archive Archiver,
	extractor LinkExtractor,
	proxies *ProxyPool,
	logger *zap.Logger,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	runID := uuid.New()
	return &Engine{
		cfg:       cfg,
		fetcher:   fetcher,
		store:     store,
		archive:   archive,
		extractor: extractor,
		proxies:   proxies,
		logger:    logger.With(zap.String("run_id", runID.String())),
		runID:     runID,
		state:     StateIdle,
	}
}

// RunID returns the unique identifier of this crawl run.
func (e *Engine) RunID() string {
	return e.runID.String()
}

// Snapshot reports the current run state for the status endpoint.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	state := e.state
	generation := e.generation
	e.mu.Unlock()

	trusted, invalid := e.proxies.Counts()
	return Snapshot{
		RunID:          e.runID.String(),
		State:          state,
		Generation:     generation,
		Crawled:        e.store.CrawledCount(),
		Pending:        e.store.PendingCount(),
		ActiveProxies:  trusted,
		InvalidProxies: invalid,
	}
}

// Run crawls from the start URL until the frontier empties or ctx is
// cancelled. Cancellation is a normal termination path: in-flight fetches are
// drained within the configured grace period and Run returns nil.
func (e *Engine) Run(ctx context.Context) error {
	e.setState(StateRunning)
	e.logger.Info("starting crawl", zap.String("start_url", e.cfg.StartURL))

	frontier := []string{e.cfg.StartURL}
	for len(frontier) > 0 && ctx.Err() == nil {
		generation := e.nextGeneration()
		e.logger.Info("dispatching generation",
			zap.Int("generation", generation),
			zap.Int("urls", len(frontier)),
		)

		frontier = e.runGeneration(ctx, frontier)

		e.logger.Info("generation completed",
			zap.Int("generation", generation),
			zap.Int("processed_total", e.store.CrawledCount()),
		)
		if trusted, invalid := e.proxies.Counts(); trusted+invalid > 0 {
			e.logger.Info("proxy status", zap.Int("active", trusted), zap.Int("invalid", invalid))
		}
	}

	e.setState(StateCompleted)
	e.logger.Info("crawl finished", zap.Int("urls_processed", e.store.CrawledCount()))
	return nil
}

// runGeneration processes one frontier with a bounded worker pool and returns
// the union of the discovered deltas. On cancellation it stops waiting for
// stragglers after the grace period; tasks not yet started observe the context
// and return without claiming anything.
func (e *Engine) runGeneration(ctx context.Context, frontier []string) []string {
	var (
		mu   sync.Mutex
		next []string
	)

	g := new(errgroup.Group)
	g.SetLimit(e.cfg.Concurrency)
	for _, rawURL := range frontier {
		rawURL := rawURL
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			delta := e.processURL(ctx, rawURL)
			if len(delta) > 0 {
				mu.Lock()
				next = append(next, delta...)
				mu.Unlock()
			}
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		e.setState(StateDraining)
		e.logger.Info("shutdown requested, draining in-flight fetches",
			zap.Duration("grace_period", e.cfg.GracePeriod),
		)
		select {
		case <-done:
		case <-time.After(e.cfg.GracePeriod):
			e.logger.Warn("grace period elapsed with fetches still outstanding")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	return append([]string(nil), next...)
}

// processURL claims, fetches, archives, and mines a single URL for new
// in-scope links. Any failure along the way is logged and yields an empty
// delta; nothing at the per-URL level aborts the crawl.
func (e *Engine) processURL(ctx context.Context, rawURL string) []string {
	if !e.store.Claim(rawURL) {
		e.logger.Debug("url already processed", zap.String("url", rawURL))
		return nil
	}
	e.logger.Info("crawling", zap.String("url", rawURL))

	body, err := e.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		e.logger.Warn("fetch failed", zap.String("url", rawURL), zap.Error(err))
		return nil
	}
	PagesFetched.Inc()

	if err := e.archive.Save(rawURL, body); err != nil {
		SaveErrors.Inc()
		e.logger.Error("save failed", zap.String("url", rawURL), zap.Error(err))
	} else {
		PagesSaved.Inc()
	}

	links := e.extractor.Extract(body)
	accepted := make([]string, 0, len(links))
	for _, href := range links {
		resolved, ok := Resolve(rawURL, href)
		if !ok {
			continue
		}
		if !InScope(e.cfg.StartURL, resolved) {
			e.logger.Debug("skipping out-of-scope url", zap.String("url", resolved))
			continue
		}
		accepted = append(accepted, resolved)
	}

	delta := e.store.MarkPending(accepted)
	LinksDiscovered.Add(float64(len(delta)))
	e.logger.Info("discovered links",
		zap.String("url", rawURL),
		zap.Int("found", len(links)),
		zap.Int("new", len(delta)),
	)
	return delta
}

func (e *Engine) setState(state State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	// Draining is terminal-bound: never flip back to Running mid-drain.
	if e.state == StateDraining && state == StateRunning {
		return
	}
	e.state = state
}

func (e *Engine) nextGeneration() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	return e.generation
}
