package tracing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.False(t, cfg.Enabled, "tracing should be disabled by default")
	require.Equal(t, "file", cfg.Exporter)
	require.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	require.Equal(t, 1.0, cfg.SampleRate)
	require.Equal(t, "photon", cfg.ServiceName)
}

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, provider)
	require.False(t, provider.Enabled())

	ctx, span := StartClientSpan(context.Background(), provider.Tracer(), "gateway.search")
	require.NotNil(t, ctx)
	EndSpan(span, nil)

	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_FileExporterWritesGatewaySpan(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "traces.jsonl")

	provider, err := NewProvider(Config{
		Enabled:     true,
		Exporter:    "file",
		FilePath:    tracePath,
		SampleRate:  1.0,
		ServiceName: "photon-test",
	})
	require.NoError(t, err)
	require.True(t, provider.Enabled())

	ctx, span := StartClientSpan(context.Background(), provider.Tracer(), SpanPrefixGateway+"search")
	require.NotEmpty(t, TraceID(ctx), "span context should carry a trace ID")
	EndSpan(span, nil)

	require.NoError(t, provider.Shutdown(context.Background()))

	content, err := os.ReadFile(tracePath)
	require.NoError(t, err)
	require.Contains(t, string(content), `"name":"gateway.search"`)
	require.Contains(t, string(content), `"service":"photon-test"`)
	require.Contains(t, string(content), `"kind":"CLIENT"`)
}

func TestNewProvider_NoneExporter(t *testing.T) {
	provider, err := NewProvider(Config{Enabled: true, Exporter: "none", SampleRate: 1.0})
	require.NoError(t, err)
	require.True(t, provider.Enabled())

	ctx, span := provider.Tracer().Start(context.Background(), "x")
	require.NotEmpty(t, TraceID(ctx))
	span.End()

	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_FileExporter_MissingPath(t *testing.T) {
	provider, err := NewProvider(Config{Enabled: true, Exporter: "file"})
	require.Error(t, err)
	require.Nil(t, provider)
	require.Contains(t, err.Error(), "file_path required")
}

func TestNewProvider_UnsupportedExporter(t *testing.T) {
	provider, err := NewProvider(Config{Enabled: true, Exporter: "zipkin"})
	require.Error(t, err)
	require.Nil(t, provider)
	require.Contains(t, err.Error(), "unsupported exporter")
}

func TestTraceID_NoSpan(t *testing.T) {
	require.Equal(t, "", TraceID(context.Background()))
}
