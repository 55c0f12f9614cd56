// Package config loads and validates pipeline configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tabrun/tabfetch/internal/pipeline"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Pool    PoolConfig            `mapstructure:"pool"`
	HTTP    HTTPConfig            `mapstructure:"http"`
	Parse   pipeline.ParseOptions `mapstructure:"parse"`
	Report  ReportConfig          `mapstructure:"report"`
	Server  ServerConfig          `mapstructure:"server"`
	Logging LoggingConfig         `mapstructure:"logging"`
	Sources SourcesConfig         `mapstructure:"sources"`
}

// PoolConfig governs the worker pool.
type PoolConfig struct {
	Workers int `mapstructure:"workers"`
}

// HTTPConfig configures the shared fetch client.
type HTTPConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
}

// ReportConfig controls per-item reporting behavior.
type ReportConfig struct {
	ParseDelayMs  int `mapstructure:"parse_delay_ms"`
	PreviewFields int `mapstructure:"preview_fields"`
}

// ServerConfig controls the optional in-run observability endpoint.
type ServerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// SourcesConfig carries the locator list consumed by the run.
type SourcesConfig struct {
	Locators []string `mapstructure:"locators"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TABFETCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

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
	v.SetDefault("pool.workers", 5)
	v.SetDefault("http.timeout_seconds", 5)
	v.SetDefault("http.user_agent", "tabfetch/0.1 (+https://github.com/tabrun/tabfetch)")
	v.SetDefault("parse.encoding", "utf-8")
	v.SetDefault("parse.lazy_quotes", true)
	v.SetDefault("parse.trim_header", true)
	v.SetDefault("report.parse_delay_ms", 500)
	v.SetDefault("report.preview_fields", 5)
	v.SetDefault("server.enabled", false)
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)
	v.SetDefault("sources.locators", DefaultLocators())
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Pool.Workers <= 0 {
		return fmt.Errorf("pool.workers must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Report.ParseDelayMs < 0 {
		return fmt.Errorf("report.parse_delay_ms must be >= 0")
	}
	if c.Server.Enabled && c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0 when server is enabled")
	}
	if len(c.Sources.Locators) == 0 {
		return fmt.Errorf("sources.locators must not be empty")
	}
	return nil
}

// FetchTimeout returns the configured per-fetch budget.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// ParseDelay returns the simulated post-parse processing duration.
func (c Config) ParseDelay() time.Duration {
	return time.Duration(c.Report.ParseDelayMs) * time.Millisecond
}

// Locators converts the configured source list into pipeline locators,
// preserving list order.
func (c Config) Locators() []pipeline.Locator {
	out := make([]pipeline.Locator, 0, len(c.Sources.Locators))
	for _, s := range c.Sources.Locators {
		out = append(out, pipeline.Locator(s))
	}
	return out
}
