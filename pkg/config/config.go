// Package config handles configuration loading for the filings library.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete configuration for the retrieval layer.
type Config struct {
	EDGAR      EDGAR      `mapstructure:"edgar"      yaml:"edgar"`
	Guardrails Guardrails `mapstructure:"guardrails" yaml:"guardrails"`
	Summarizer Summarizer `mapstructure:"summarizer" yaml:"summarizer"`
	Database   Database   `mapstructure:"database"   yaml:"database"`
	Logging    Logging    `mapstructure:"logging"    yaml:"logging"`
}

// EDGAR holds the SEC endpoint hosts and access-policy settings. The hosts
// are configurable so tests can point the client at mock servers, and the
// User-Agent is per-deployment because SEC policy ties traffic to a real
// responsible party.
type EDGAR struct {
	DataURL      string `mapstructure:"data_url"       yaml:"data_url"`       // submissions JSON API
	ArchiveURL   string `mapstructure:"archive_url"    yaml:"archive_url"`    // filing document archive
	CatalogURL   string `mapstructure:"catalog_url"    yaml:"catalog_url"`    // company_tickers.json
	FullIndexURL string `mapstructure:"full_index_url" yaml:"full_index_url"` // quarterly master indexes
	BrowseURL    string `mapstructure:"browse_url"     yaml:"browse_url"`     // browse-edgar (Atom feeds)

	// UserAgent is the mandatory contact-identifying string sent with every
	// request, e.g. "Acme Research admin@acme.example".
	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`

	TimeoutSec       int  `mapstructure:"timeout_sec"        yaml:"timeout_sec"`
	RateLimit        int  `mapstructure:"rate_limit"         yaml:"rate_limit"` // requests per second
	FetchConcurrency int  `mapstructure:"fetch_concurrency"  yaml:"fetch_concurrency"`
	CacheTTLSec      int  `mapstructure:"cache_ttl_sec"      yaml:"cache_ttl_sec"`

	// ReportDateFallback controls the date-range locator's behavior when a
	// filing's report-period date cannot be recovered from the submissions
	// feed: substitute the filing date (true) or leave the field empty.
	ReportDateFallback bool `mapstructure:"report_date_fallback" yaml:"report_date_fallback"`
}

// Timeout returns the HTTP timeout as a duration.
func (e EDGAR) Timeout() time.Duration { return time.Duration(e.TimeoutSec) * time.Second }

// CacheTTL returns the catalog/submissions cache TTL as a duration.
func (e EDGAR) CacheTTL() time.Duration { return time.Duration(e.CacheTTLSec) * time.Second }

// Guardrails holds the orchestrator's retrieval ceilings. These are
// tunables, not constants: they exist to keep a single conversation's
// traffic inside what a compliant EDGAR client should produce.
type Guardrails struct {
	MaxFilingsPerRequest      int `mapstructure:"max_filings_per_request"      yaml:"max_filings_per_request"`
	MaxFilingsPerConversation int `mapstructure:"max_filings_per_conversation" yaml:"max_filings_per_conversation"`
	MaxDateSpanYears          int `mapstructure:"max_date_span_years"          yaml:"max_date_span_years"`
}

// Summarizer configures the fire-and-forget downstream summarization service.
type Summarizer struct {
	URL       string `mapstructure:"url"        yaml:"url"`
	QueueSize int    `mapstructure:"queue_size" yaml:"queue_size"`
}

// Database holds the filing store connection settings.
type Database struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// Logging holds log output configuration.
type Logging struct {
	Level string `mapstructure:"level" yaml:"level"` // "debug", "info", "warn", "error"
}

// Load reads configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.filings/config.yaml (home directory)
//  3. /etc/filings/config.yaml (system)
//
// Environment variables override config file values.
// Format: FILINGS_<SECTION>_<KEY>, e.g., FILINGS_EDGAR_USER_AGENT
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".filings"))
	v.AddConfigPath("/etc/filings")

	v.SetEnvPrefix("FILINGS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file not required to exist; defaults + env vars suffice.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("FILINGS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration defaults without touching file or
// environment sources. Library embedders usually start here and override
// the fields they care about.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	// EDGAR endpoints
	v.SetDefault("edgar.data_url", "https://data.sec.gov")
	v.SetDefault("edgar.archive_url", "https://www.sec.gov/Archives")
	v.SetDefault("edgar.catalog_url", "https://www.sec.gov/files/company_tickers.json")
	v.SetDefault("edgar.full_index_url", "https://www.sec.gov/Archives/edgar/full-index")
	v.SetDefault("edgar.browse_url", "https://www.sec.gov/cgi-bin/browse-edgar")
	v.SetDefault("edgar.user_agent", "finsight-filings/1.0 (ops@finsight.example)")

	// Access policy: 10 req/s per SEC webmaster FAQ, 30s request budget.
	v.SetDefault("edgar.timeout_sec", 30)
	v.SetDefault("edgar.rate_limit", 10)
	v.SetDefault("edgar.fetch_concurrency", 1) // sequential; up to 4 preserves ordering
	v.SetDefault("edgar.cache_ttl_sec", 600)
	v.SetDefault("edgar.report_date_fallback", true)

	// Guardrails
	v.SetDefault("guardrails.max_filings_per_request", 10)
	v.SetDefault("guardrails.max_filings_per_conversation", 30)
	v.SetDefault("guardrails.max_date_span_years", 2)

	// Summarizer
	v.SetDefault("summarizer.queue_size", 64)

	// Logging
	v.SetDefault("logging.level", "info")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
