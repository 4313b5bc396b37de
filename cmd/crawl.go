package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/recrawl/recrawl/internal/api"
	"github.com/recrawl/recrawl/internal/config"
	"github.com/recrawl/recrawl/internal/crawler"
	"github.com/recrawl/recrawl/internal/logging"
)

// newCrawlCmd creates and configures the 'crawl' subcommand. Flags bind into
// Viper so every knob can also come from the config file or RECRAWL_* env vars.
func newCrawlCmd() *cobra.Command {
	v := config.NewViper()
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Starts the recursive crawl",
		Long: `Crawls breadth-first from the start URL, generation by generation,
saving each fetched page to the output directory under its percent-encoded
URL. Only URLs prefixed by the start URL are followed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCrawl(cmd.Context(), v)
		},
	}

	flags := cmd.Flags()
	flags.String("start-url", "", "URL to start crawling from")
	flags.String("output-dir", "", "directory to save the crawled pages")
	flags.Int("concurrency", 10, "maximum number of concurrent workers")
	flags.Int("max-retries", 1, "maximum number of retries for failed requests")
	flags.Int("timeout", 60, "timeout for HTTP requests in seconds")
	flags.String("user-agent", "", "user agent string to use for requests")
	flags.String("proxy-file", "", "path to a newline-delimited proxy list file")
	flags.String("log-level", "info", "log verbosity (debug, info, warn, error)")

	bindings := map[string]string{
		"crawler.start_url":       "start-url",
		"crawler.output_dir":      "output-dir",
		"crawler.concurrency":     "concurrency",
		"crawler.max_retries":     "max-retries",
		"crawler.timeout_seconds": "timeout",
		"crawler.user_agent":      "user-agent",
		"crawler.proxy_file":      "proxy-file",
		"logging.level":           "log-level",
	}
	for key, flag := range bindings {
		cobra.CheckErr(v.BindPFlag(key, flags.Lookup(flag)))
	}

	return cmd
}

func runCrawl(ctx context.Context, v *viper.Viper) error {
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var proxies []string
	if cfg.Crawler.ProxyFile != "" {
		proxies, err = crawler.LoadProxyList(cfg.Crawler.ProxyFile)
		if err != nil {
			return fmt.Errorf("load proxy file: %w", err)
		}
		logger.Info("loaded proxies",
			zap.Int("count", len(proxies)),
			zap.String("file", cfg.Crawler.ProxyFile),
		)
	}
	pool := crawler.NewProxyPool(proxies)

	archive, err := crawler.NewFileArchive(cfg.Crawler.OutputDir, logger)
	if err != nil {
		return fmt.Errorf("prepare output dir: %w", err)
	}
	existing, err := archive.ListExisting()
	if err != nil {
		logger.Warn("listing existing files failed", zap.Error(err))
	}
	store := crawler.NewURLStore(existing)

	fetcher := crawler.NewHTTPFetcher(crawler.FetcherConfig{
		Timeout:    cfg.Crawler.RequestTimeout(),
		MaxRetries: cfg.Crawler.MaxRetries,
		UserAgent:  cfg.Crawler.UserAgent,
	}, pool, logger)

	engine := crawler.NewEngine(crawler.EngineConfig{
		StartURL:    cfg.Crawler.StartURL,
		Concurrency: cfg.Crawler.Concurrency,
		GracePeriod: cfg.Crawler.GracePeriod(),
	}, fetcher, store, archive, crawler.NewGoqueryExtractor(), pool, logger)

	logger.Info("initialized crawler",
		zap.String("run_id", engine.RunID()),
		zap.String("start_url", cfg.Crawler.StartURL),
		zap.String("output_dir", cfg.Crawler.OutputDir),
		zap.Int("concurrency", cfg.Crawler.Concurrency),
		zap.Int("max_retries", cfg.Crawler.MaxRetries),
		zap.Duration("timeout", cfg.Crawler.RequestTimeout()),
		zap.Int("already_saved", len(existing)),
	)

	var srv *http.Server
	if cfg.Server.Enabled {
		statusServer := api.NewServer(engine, logger.Named("api"))
		srv = &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           statusServer.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("status server started", zap.Int("port", cfg.Server.Port))
			if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				logger.Error("status server error", zap.Error(serveErr))
			}
		}()
	}

	runErr := engine.Run(ctx)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if serr := srv.Shutdown(shutdownCtx); serr != nil {
			logger.Error("status server shutdown error", zap.Error(serr))
		}
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("run crawler: %w", runErr)
	}
	return nil
}
