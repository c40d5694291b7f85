package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// PHOTON_SEARCH_LIMIT for search.limit.
const EnvPrefix = "PHOTON"

// Config file locations, in lookup order after an explicit --config.
const (
	LocalConfigPath = ".photon/config.yaml"
	userConfigDir   = ".config/photon"
)

// UserConfigPath returns ~/.config/photon/config.yaml, or "" when the home
// directory is unknown.
func UserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, userConfigDir, "config.yaml")
}

// SetDefaults registers every default with v. Registering a key also makes
// it eligible for AutomaticEnv.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.api_key", d.API.APIKey)
	v.SetDefault("api.request_timeout", d.API.RequestTimeout)
	v.SetDefault("api.rate_limit_per_minute", d.API.RateLimitPerMinute)
	v.SetDefault("search.limit", d.Search.Limit)
	v.SetDefault("search.cache_ttl", d.Search.CacheTTL)
	v.SetDefault("workflow.execution_timeout_seconds", d.Workflow.ExecutionTimeoutSeconds)
	v.SetDefault("workflow.export_dir", d.Workflow.ExportDir)
	v.SetDefault("workflow.default_title", d.Workflow.DefaultTitle)
	v.SetDefault("ui.markdown_style", d.UI.MarkdownStyle)
	v.SetDefault("ui.show_status_bar", d.UI.ShowStatusBar)
	v.SetDefault("auto_reload", d.AutoReload)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
}

// BindEnv enables PHOTON_* overrides on v. PHOTON_API_URL and
// PHOTON_API_KEY are accepted as short forms for the API settings.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("api.base_url", EnvPrefix+"_API_URL", EnvPrefix+"_API_BASE_URL")
	_ = v.BindEnv("api.api_key", EnvPrefix+"_API_KEY", EnvPrefix+"_API_API_KEY")
}

// NewViper returns a viper instance with defaults and env overrides set up.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	BindEnv(v)
	return v
}

// Decode unmarshals v into a Config. Durations accept Go syntax ("30s").
func Decode(v *viper.Viper) (Config, error) {
	cfg := Defaults()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// Load reads the file at path with defaults and env overrides applied, then
// validates the result. It is used when the config file changes while the
// UI is running.
func Load(path string) (Config, error) {
	v := NewViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg, err := Decode(v)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Resolve picks the config file to read: explicit wins, then
// .photon/config.yaml in the working directory, then the user config. The
// second result reports whether the file exists.
func Resolve(explicit string) (string, bool) {
	if explicit != "" {
		_, err := os.Stat(explicit)
		return explicit, err == nil
	}
	if _, err := os.Stat(LocalConfigPath); err == nil {
		return LocalConfigPath, true
	}
	if p := UserConfigPath(); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}
