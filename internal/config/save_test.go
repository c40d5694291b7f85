package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func loadWithViper(t *testing.T, path string) Config {
	t.Helper()
	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	cfg := Defaults()
	require.NoError(t, v.Unmarshal(&cfg))
	return cfg
}

func TestSaveAPI_CreatesNewFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	err := SaveAPI(configPath, APIConfig{
		BaseURL:            "https://api.example.com",
		APIKey:             "secret",
		RequestTimeout:     15 * time.Second,
		RateLimitPerMinute: 60,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "base_url: https://api.example.com")
	require.Contains(t, string(data), "api_key: secret")
	require.Contains(t, string(data), "request_timeout: 15s")
	require.Contains(t, string(data), "rate_limit_per_minute: 60")

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSaveAPI_PreservesOtherSections(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	initial := `# Remote services
api:
  base_url: http://localhost:8001
# Dataset search
search:
  limit: 7 # per query
auto_reload: false
`
	require.NoError(t, os.WriteFile(configPath, []byte(initial), 0o600))

	err := SaveAPI(configPath, APIConfig{BaseURL: "https://prod.example.com", RateLimitPerMinute: 30})
	require.NoError(t, err)

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	content := string(data)
	require.Contains(t, content, "# Dataset search")
	require.Contains(t, content, "# per query")
	require.Contains(t, content, "auto_reload: false")
	require.NotContains(t, content, "localhost:8001")
	require.NotContains(t, content, "api_key")

	cfg := loadWithViper(t, configPath)
	require.Equal(t, "https://prod.example.com", cfg.API.BaseURL)
	require.Equal(t, 30, cfg.API.RateLimitPerMinute)
	require.Equal(t, 7, cfg.Search.Limit)
	require.False(t, cfg.AutoReload)
}

func TestSaveAPI_AppendsMissingSection(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("ui:\n  markdown_style: light\n"), 0o600))

	require.NoError(t, SaveAPI(configPath, APIConfig{BaseURL: "http://10.0.0.5:9000"}))

	cfg := loadWithViper(t, configPath)
	require.Equal(t, "http://10.0.0.5:9000", cfg.API.BaseURL)
	require.Equal(t, "light", cfg.UI.MarkdownStyle)
}

func TestSaveAPI_Roundtrip(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(configPath))

	want := APIConfig{
		BaseURL:            "https://api.example.com/v1",
		APIKey:             "12345",
		RequestTimeout:     2 * time.Minute,
		RateLimitPerMinute: 0,
	}
	require.NoError(t, SaveAPI(configPath, want))

	cfg := loadWithViper(t, configPath)
	require.Equal(t, want, cfg.API)
	// Numeric-looking keys stay strings.
	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	require.Contains(t, string(data), `api_key: "12345"`)
}

func TestSaveAPI_RejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	err := SaveAPI(configPath, APIConfig{BaseURL: "ftp://example.com"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "api.base_url")

	_, statErr := os.Stat(configPath)
	require.True(t, os.IsNotExist(statErr), "nothing should be written")
}

func TestSaveAPI_MalformedFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("api: [unclosed"), 0o600))

	err := SaveAPI(configPath, APIConfig{BaseURL: "http://localhost:8001"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "parsing config")
}

func TestSaveAPI_TopLevelNotMapping(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("- a\n- b\n"), 0o600))

	err := SaveAPI(configPath, APIConfig{BaseURL: "http://localhost:8001"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "not a mapping")
}

func TestSaveAPI_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, SaveAPI(configPath, APIConfig{BaseURL: "http://localhost:8001"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		require.False(t, strings.HasPrefix(e.Name(), ".photon.yaml.tmp"), "leftover %s", e.Name())
	}
}
