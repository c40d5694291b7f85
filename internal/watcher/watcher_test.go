package watcher_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photonhq/photon/internal/pubsub"
	"github.com/photonhq/photon/internal/watcher"
)

func startWatcher(t *testing.T, path string) (*watcher.Watcher, <-chan pubsub.Event[watcher.Change]) {
	t.Helper()
	w, err := watcher.New(watcher.Config{Path: path, DebounceDur: 50 * time.Millisecond})
	require.NoError(t, err, "failed to create watcher")

	ctx, cancel := context.WithCancel(context.Background())
	ch := w.Subscribe(ctx)
	require.NoError(t, w.Start(), "failed to start watcher")

	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})
	return w, ch
}

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1"), 0o644))

	_, changes := startWatcher(t, path)

	// Rapid writes should coalesce into single notification
	for i := 0; i < 10; i++ {
		require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("a: %d", i)), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case ev := <-changes:
		assert.Equal(t, pubsub.UpdatedEvent, ev.Type)
		assert.False(t, ev.Payload.Removed)
		assert.Equal(t, filepath.Base(path), filepath.Base(ev.Payload.Path))
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification but got timeout")
	}

	select {
	case <-changes:
		t.Fatal("unexpected second notification")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_IgnoresIrrelevantFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	otherPath := filepath.Join(dir, "other.txt")
	require.NoError(t, os.WriteFile(path, []byte("a: 1"), 0o644))
	require.NoError(t, os.WriteFile(otherPath, []byte("initial"), 0o644))

	_, changes := startWatcher(t, path)

	require.NoError(t, os.WriteFile(otherPath, []byte("other content"), 0o644))

	select {
	case <-changes:
		t.Fatal("should not notify for unrelated files")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_AtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1"), 0o644))

	_, changes := startWatcher(t, path)

	tmp := filepath.Join(dir, ".config.yaml.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("a: 2"), 0o644))
	require.NoError(t, os.Rename(tmp, path))

	select {
	case ev := <-changes:
		assert.Equal(t, pubsub.UpdatedEvent, ev.Type)
		assert.False(t, ev.Payload.Removed)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification for renamed-over file")
	}
}

func TestWatcher_Removed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1"), 0o644))

	_, changes := startWatcher(t, path)

	require.NoError(t, os.Remove(path))

	select {
	case ev := <-changes:
		assert.Equal(t, pubsub.DeletedEvent, ev.Type)
		assert.True(t, ev.Payload.Removed)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification for removal")
	}
}

func TestWatcher_Stop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1"), 0o644))

	w, err := watcher.New(watcher.Config{Path: path, DebounceDur: 50 * time.Millisecond})
	require.NoError(t, err)
	changes := w.Subscribe(context.Background())
	require.NoError(t, w.Start())

	done := make(chan struct{})
	go func() {
		assert.NoError(t, w.Stop(), "Stop returned error")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Stop() timed out - possible deadlock")
	}

	_, open := <-changes
	assert.False(t, open, "subscription should close on Stop")
}

func TestWatcher_StartMissingDirectory(t *testing.T) {
	w, err := watcher.New(watcher.DefaultConfig(filepath.Join(t.TempDir(), "missing", "config.yaml")))
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	require.Error(t, w.Start())
}

func TestDefaultConfig(t *testing.T) {
	cfg := watcher.DefaultConfig("/etc/photon/config.yaml")

	assert.Equal(t, "/etc/photon/config.yaml", cfg.Path)
	assert.Equal(t, 300*time.Millisecond, cfg.DebounceDur)
}
