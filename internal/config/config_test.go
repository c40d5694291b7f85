package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	require.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	require.Equal(t, 30*time.Second, cfg.API.RequestTimeout)
	require.Equal(t, 120, cfg.API.RateLimitPerMinute)
	require.Equal(t, 5, cfg.Search.Limit)
	require.Equal(t, 10*time.Minute, cfg.Search.CacheTTL)
	require.Equal(t, 120, cfg.Workflow.ExecutionTimeoutSeconds)
	require.Equal(t, "Generated Workflow", cfg.Workflow.DefaultTitle)
	require.Equal(t, "dark", cfg.UI.MarkdownStyle)
	require.True(t, cfg.UI.ShowStatusBar)
	require.True(t, cfg.AutoReload)
	require.False(t, cfg.Tracing.Enabled)
	require.NoError(t, cfg.Validate())
}

func TestValidateAPI(t *testing.T) {
	tests := []struct {
		name    string
		api     APIConfig
		wantErr string
	}{
		{"valid http", APIConfig{BaseURL: "http://localhost:8001"}, ""},
		{"valid https with path", APIConfig{BaseURL: "https://api.example.com/v1"}, ""},
		{"empty", APIConfig{}, "api.base_url is required"},
		{"blank", APIConfig{BaseURL: "   "}, "api.base_url is required"},
		{"wrong scheme", APIConfig{BaseURL: "ftp://example.com"}, "http or https"},
		{"no host", APIConfig{BaseURL: "http://"}, "http or https"},
		{"negative timeout", APIConfig{BaseURL: "http://x", RequestTimeout: -time.Second}, "api.request_timeout"},
		{"negative rate", APIConfig{BaseURL: "http://x", RateLimitPerMinute: -1}, "api.rate_limit_per_minute"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAPI(tt.api)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateSearch(t *testing.T) {
	require.NoError(t, ValidateSearch(SearchConfig{Limit: 1}))
	require.NoError(t, ValidateSearch(SearchConfig{Limit: MaxSearchLimit}))
	require.ErrorContains(t, ValidateSearch(SearchConfig{Limit: 0}), "search.limit")
	require.ErrorContains(t, ValidateSearch(SearchConfig{Limit: MaxSearchLimit + 1}), "search.limit")
	require.ErrorContains(t, ValidateSearch(SearchConfig{Limit: 5, CacheTTL: -time.Minute}), "search.cache_ttl")
}

func TestValidateWorkflow(t *testing.T) {
	require.NoError(t, ValidateWorkflow(WorkflowConfig{ExecutionTimeoutSeconds: 1}))
	require.ErrorContains(t, ValidateWorkflow(WorkflowConfig{}), "workflow.execution_timeout_seconds")
}

func TestValidateUI(t *testing.T) {
	for _, style := range []string{"", "dark", "light"} {
		require.NoError(t, ValidateUI(UIConfig{MarkdownStyle: style}), style)
	}
	require.ErrorContains(t, ValidateUI(UIConfig{MarkdownStyle: "neon"}), "ui.markdown_style")
}

func TestValidateTracing(t *testing.T) {
	tests := []struct {
		name    string
		cfg     TracingConfig
		wantErr string
	}{
		{"zero", TracingConfig{}, ""},
		{"disabled file without path", TracingConfig{Exporter: "file"}, ""},
		{"sample rate too high", TracingConfig{SampleRate: 1.5}, "sample_rate"},
		{"sample rate negative", TracingConfig{SampleRate: -0.1}, "sample_rate"},
		{"unknown exporter", TracingConfig{Exporter: "jaeger"}, "tracing.exporter"},
		{"file needs path", TracingConfig{Enabled: true, Exporter: "file"}, "tracing.file_path"},
		{"otlp needs endpoint", TracingConfig{Enabled: true, Exporter: "otlp"}, "tracing.otlp_endpoint"},
		{"stdout", TracingConfig{Enabled: true, Exporter: "stdout", SampleRate: 0.5}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTracing(tt.cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestConfig_ValidateJoinsErrors(t *testing.T) {
	cfg := Defaults()
	cfg.API.BaseURL = ""
	cfg.Search.Limit = 0
	cfg.UI.MarkdownStyle = "neon"

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "api.base_url")
	require.Contains(t, err.Error(), "search.limit")
	require.Contains(t, err.Error(), "ui.markdown_style")
}

func TestConfig_Gateway(t *testing.T) {
	cfg := Defaults()
	cfg.API.BaseURL = "  https://api.example.com  "
	cfg.API.APIKey = "k"

	gw := cfg.Gateway()
	require.Equal(t, "https://api.example.com", gw.BaseURL)
	require.Equal(t, "k", gw.APIKey)
	require.Equal(t, cfg.API.RequestTimeout, gw.RequestTimeout)
	require.Equal(t, cfg.API.RateLimitPerMinute, gw.RateLimitPerMinute)
}

func TestConfig_TracingProvider(t *testing.T) {
	cfg := Defaults()
	cfg.Tracing.Enabled = true
	cfg.Tracing.Exporter = "stdout"
	cfg.Tracing.SampleRate = 0.25

	tc := cfg.TracingProvider()
	require.True(t, tc.Enabled)
	require.Equal(t, "stdout", tc.Exporter)
	require.Equal(t, 0.25, tc.SampleRate)
	require.Equal(t, DefaultTracesFilePath(), tc.FilePath)
	require.Equal(t, "photon", tc.ServiceName)

	cfg.Tracing.FilePath = "/tmp/traces.jsonl"
	cfg.Tracing.Exporter = ""
	tc = cfg.TracingProvider()
	require.Equal(t, "/tmp/traces.jsonl", tc.FilePath)
	require.Equal(t, "file", tc.Exporter)
}

func TestDefaultTracesFilePath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	require.Equal(t, filepath.Join(home, ".config", "photon", "traces", "traces.jsonl"), DefaultTracesFilePath())
}

func TestWriteDefaultConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "photon", "config.yaml")
	require.NoError(t, WriteDefaultConfig(configPath))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	require.Equal(t, DefaultConfigTemplate(), string(data))

	// The template must decode to the defaults.
	cfg := loadWithViper(t, configPath)
	require.Equal(t, Defaults(), cfg)
}
