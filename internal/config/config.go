// Package config provides configuration types and defaults for photon.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/photonhq/photon/internal/gateway"
	"github.com/photonhq/photon/internal/log"
	"github.com/photonhq/photon/internal/tracing"
)

// Config holds all configuration options for photon.
type Config struct {
	API        APIConfig      `mapstructure:"api"`
	Search     SearchConfig   `mapstructure:"search"`
	Workflow   WorkflowConfig `mapstructure:"workflow"`
	UI         UIConfig       `mapstructure:"ui"`
	AutoReload bool           `mapstructure:"auto_reload"`
	Tracing    TracingConfig  `mapstructure:"tracing"`
}

// APIConfig points photon at the remote search, generation and execution
// services.
type APIConfig struct {
	BaseURL            string        `mapstructure:"base_url" yaml:"base_url"`
	APIKey             string        `mapstructure:"api_key" yaml:"api_key"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	RateLimitPerMinute int           `mapstructure:"rate_limit_per_minute" yaml:"rate_limit_per_minute"`
}

// SearchConfig controls dataset search.
type SearchConfig struct {
	Limit    int           `mapstructure:"limit"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"` // 0 disables caching
}

// WorkflowConfig controls notebook generation and execution.
type WorkflowConfig struct {
	ExecutionTimeoutSeconds int    `mapstructure:"execution_timeout_seconds"`
	ExportDir               string `mapstructure:"export_dir"`
	DefaultTitle            string `mapstructure:"default_title"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	MarkdownStyle string `mapstructure:"markdown_style"` // "dark" (default) or "light"
	ShowStatusBar bool   `mapstructure:"show_status_bar"`
}

// TracingConfig holds distributed tracing options.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the export backend: "none", "file", "stdout" or "otlp".
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for the "file" exporter.
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector address for the "otlp" exporter.
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate is the fraction of traces kept, between 0.0 and 1.0.
	SampleRate float64 `mapstructure:"sample_rate"`
}

const (
	// DefaultBaseURL is where the services run in a local development setup.
	DefaultBaseURL = "http://localhost:8001"

	// DefaultSearchLimit is the number of results requested per search.
	DefaultSearchLimit = 5

	// MaxSearchLimit bounds search.limit.
	MaxSearchLimit = 100

	// DefaultSearchCacheTTL is how long identical searches are served locally.
	DefaultSearchCacheTTL = 10 * time.Minute
)

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		API: APIConfig{
			BaseURL:            DefaultBaseURL,
			RequestTimeout:     gateway.DefaultRequestTimeout,
			RateLimitPerMinute: gateway.DefaultRateLimitPerMinute,
		},
		Search: SearchConfig{
			Limit:    DefaultSearchLimit,
			CacheTTL: DefaultSearchCacheTTL,
		},
		Workflow: WorkflowConfig{
			ExecutionTimeoutSeconds: 120,
			ExportDir:               ".",
			DefaultTitle:            gateway.DefaultTitle,
		},
		UI: UIConfig{
			MarkdownStyle: "dark",
			ShowStatusBar: true,
		},
		AutoReload: true,
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived from config dir at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/photon/traces/traces.jsonl or empty string if home dir unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "photon", "traces", "traces.jsonl")
}

// Validate checks the whole configuration and reports every problem found.
func (c Config) Validate() error {
	return errors.Join(
		ValidateAPI(c.API),
		ValidateSearch(c.Search),
		ValidateWorkflow(c.Workflow),
		ValidateUI(c.UI),
		ValidateTracing(c.Tracing),
	)
}

// ValidateAPI checks the api section.
func ValidateAPI(api APIConfig) error {
	raw := strings.TrimSpace(api.BaseURL)
	if raw == "" {
		return fmt.Errorf("api.base_url is required")
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url must be an http or https URL, got %q", api.BaseURL)
	}
	if api.RequestTimeout < 0 {
		return fmt.Errorf("api.request_timeout must not be negative, got %s", api.RequestTimeout)
	}
	if api.RateLimitPerMinute < 0 {
		return fmt.Errorf("api.rate_limit_per_minute must not be negative, got %d", api.RateLimitPerMinute)
	}
	return nil
}

// ValidateSearch checks the search section.
func ValidateSearch(s SearchConfig) error {
	if s.Limit < 1 || s.Limit > MaxSearchLimit {
		return fmt.Errorf("search.limit must be between 1 and %d, got %d", MaxSearchLimit, s.Limit)
	}
	if s.CacheTTL < 0 {
		return fmt.Errorf("search.cache_ttl must not be negative, got %s", s.CacheTTL)
	}
	return nil
}

// ValidateWorkflow checks the workflow section.
func ValidateWorkflow(w WorkflowConfig) error {
	if w.ExecutionTimeoutSeconds < 1 {
		return fmt.Errorf("workflow.execution_timeout_seconds must be at least 1, got %d", w.ExecutionTimeoutSeconds)
	}
	return nil
}

// ValidateUI checks the ui section. An empty markdown style means "dark".
func ValidateUI(ui UIConfig) error {
	switch ui.MarkdownStyle {
	case "", "dark", "light":
		return nil
	}
	return fmt.Errorf("ui.markdown_style must be \"dark\" or \"light\", got %q", ui.MarkdownStyle)
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if tracing.Enabled {
		if tracing.Exporter == "file" && tracing.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// Gateway returns the gateway client settings for this configuration.
func (c Config) Gateway() gateway.Config {
	return gateway.Config{
		BaseURL:            strings.TrimSpace(c.API.BaseURL),
		APIKey:             c.API.APIKey,
		RequestTimeout:     c.API.RequestTimeout,
		RateLimitPerMinute: c.API.RateLimitPerMinute,
	}
}

// TracingProvider returns the tracing settings for this configuration.
// An empty file path falls back to DefaultTracesFilePath.
func (c Config) TracingProvider() tracing.Config {
	tc := tracing.DefaultConfig()
	tc.Enabled = c.Tracing.Enabled
	if c.Tracing.Exporter != "" {
		tc.Exporter = c.Tracing.Exporter
	}
	tc.FilePath = c.Tracing.FilePath
	if tc.FilePath == "" {
		tc.FilePath = DefaultTracesFilePath()
	}
	if c.Tracing.OTLPEndpoint != "" {
		tc.OTLPEndpoint = c.Tracing.OTLPEndpoint
	}
	tc.SampleRate = c.Tracing.SampleRate
	return tc
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Photon Configuration

# Remote services used for search, notebook generation and execution
api:
  base_url: http://localhost:8001
  # api_key: ""              # Sent as the x-api-key header (or set PHOTON_API_KEY)
  request_timeout: 30s       # Bound for search, generate and health requests
  rate_limit_per_minute: 120 # Client-side pacing; 0 disables

# Dataset search
search:
  limit: 5        # Results per query (1-100)
  cache_ttl: 10m  # Serve identical queries from memory; 0s disables

# Notebook workflow
workflow:
  execution_timeout_seconds: 120  # Remote execution bound
  export_dir: "."                 # Where exported notebooks and figures are written
  default_title: Generated Workflow

# UI settings
ui:
  markdown_style: dark    # Markdown rendering style: "dark" (default) or "light"
  show_status_bar: true   # Show status bar at bottom

# Reload api settings when this file changes
auto_reload: true

# Distributed tracing of requests to the remote services
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/photon/traces/traces.jsonl  # Output file for file exporter
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
