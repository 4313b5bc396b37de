// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Crawler CrawlerConfig `mapstructure:"crawler"`
	Logging LoggingConfig `mapstructure:"logging"`
	Server  ServerConfig  `mapstructure:"server"`
}

// CrawlerConfig governs the crawl run itself.
type CrawlerConfig struct {
	StartURL           string `mapstructure:"start_url"`
	OutputDir          string `mapstructure:"output_dir"`
	Concurrency        int    `mapstructure:"concurrency"`
	MaxRetries         int    `mapstructure:"max_retries"`
	TimeoutSeconds     int    `mapstructure:"timeout_seconds"`
	GracePeriodSeconds int    `mapstructure:"grace_period_seconds"`
	UserAgent          string `mapstructure:"user_agent"`
	ProxyFile          string `mapstructure:"proxy_file"`
}

// LoggingConfig toggles zap output style and verbosity.
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// ServerConfig controls the optional status/metrics HTTP server.
type ServerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// NewViper returns a Viper instance wired with defaults and the RECRAWL env
// prefix. The caller may bind CLI flags onto it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("RECRAWL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// Load builds a Config from the given Viper instance, optionally merging a
// config file first.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("crawler.concurrency", 10)
	v.SetDefault("crawler.max_retries", 1)
	v.SetDefault("crawler.timeout_seconds", 60)
	v.SetDefault("crawler.grace_period_seconds", 5)
	v.SetDefault("crawler.user_agent", defaultUserAgent)
	v.SetDefault("crawler.proxy_file", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.development", false)
	v.SetDefault("server.enabled", false)
	v.SetDefault("server.port", 9090)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Crawler.StartURL == "" {
		return fmt.Errorf("crawler.start_url must be set")
	}
	if c.Crawler.OutputDir == "" {
		return fmt.Errorf("crawler.output_dir must be set")
	}
	if c.Crawler.Concurrency <= 0 {
		return fmt.Errorf("crawler.concurrency must be > 0")
	}
	if c.Crawler.MaxRetries < 0 {
		return fmt.Errorf("crawler.max_retries must be >= 0")
	}
	if c.Crawler.TimeoutSeconds <= 0 {
		return fmt.Errorf("crawler.timeout_seconds must be > 0")
	}
	if c.Crawler.GracePeriodSeconds < 0 {
		return fmt.Errorf("crawler.grace_period_seconds must be >= 0")
	}
	if c.Crawler.UserAgent == "" {
		return fmt.Errorf("crawler.user_agent must be set")
	}
	if c.Server.Enabled && c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0 when the server is enabled")
	}
	return nil
}

// RequestTimeout converts the per-request timeout into a duration.
func (c CrawlerConfig) RequestTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GracePeriod converts the shutdown grace period into a duration.
func (c CrawlerConfig) GracePeriod() time.Duration {
	return time.Duration(c.GracePeriodSeconds) * time.Second
}
