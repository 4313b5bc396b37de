package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
crawler:
  start_url: https://example.com/docs
  output_dir: /tmp/pages
  concurrency: 4
  max_retries: 3
  timeout_seconds: 30
  grace_period_seconds: 2
  user_agent: test-agent
  proxy_file: proxies.txt
logging:
  level: debug
  development: true
server:
  enabled: true
  port: 8081
`
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0o600))

	cfg, err := Load(NewViper(), path)
	require.NoError(t, err)

	require.Equal(t, "https://example.com/docs", cfg.Crawler.StartURL)
	require.Equal(t, "/tmp/pages", cfg.Crawler.OutputDir)
	require.Equal(t, 4, cfg.Crawler.Concurrency)
	require.Equal(t, 3, cfg.Crawler.MaxRetries)
	require.Equal(t, 30*time.Second, cfg.Crawler.RequestTimeout())
	require.Equal(t, 2*time.Second, cfg.Crawler.GracePeriod())
	require.Equal(t, "test-agent", cfg.Crawler.UserAgent)
	require.Equal(t, "proxies.txt", cfg.Crawler.ProxyFile)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.True(t, cfg.Logging.Development)
	require.True(t, cfg.Server.Enabled)
	require.Equal(t, 8081, cfg.Server.Port)
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	v := NewViper()
	v.Set("crawler.start_url", "https://example.com/")
	v.Set("crawler.output_dir", "out")

	cfg, err := Load(v, "")
	require.NoError(t, err)

	require.Equal(t, 10, cfg.Crawler.Concurrency)
	require.Equal(t, 1, cfg.Crawler.MaxRetries)
	require.Equal(t, 60, cfg.Crawler.TimeoutSeconds)
	require.Equal(t, 5, cfg.Crawler.GracePeriodSeconds)
	require.Contains(t, cfg.Crawler.UserAgent, "Mozilla/5.0")
	require.Equal(t, "info", cfg.Logging.Level)
	require.False(t, cfg.Server.Enabled)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := func() Config {
		return Config{
			Crawler: CrawlerConfig{
				StartURL:       "https://example.com/",
				OutputDir:      "out",
				Concurrency:    10,
				TimeoutSeconds: 60,
				UserAgent:      "agent",
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing start url", func(c *Config) { c.Crawler.StartURL = "" }, "start_url"},
		{"missing output dir", func(c *Config) { c.Crawler.OutputDir = "" }, "output_dir"},
		{"zero concurrency", func(c *Config) { c.Crawler.Concurrency = 0 }, "concurrency"},
		{"negative retries", func(c *Config) { c.Crawler.MaxRetries = -1 }, "max_retries"},
		{"zero timeout", func(c *Config) { c.Crawler.TimeoutSeconds = 0 }, "timeout_seconds"},
		{"server without port", func(c *Config) { c.Server.Enabled = true }, "server.port"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}
