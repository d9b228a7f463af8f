package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatch(t *testing.T, path string) <-chan struct{} {
	t.Helper()
	changed := make(chan struct{}, 8)
	w := New(path, func() { changed <- struct{}{} }).WithDebounce(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)
	})

	// give fsnotify time to register the directory
	time.Sleep(50 * time.Millisecond)
	return changed
}

func TestWatchWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mibwalk.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1\n"), 0644))

	changed := startWatch(t, path)

	// a burst of writes debounces into one call
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("a: 2\n"), 0644))
	}

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
	select {
	case <-changed:
		t.Fatal("burst reported more than once")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatchIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mibwalk.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1\n"), 0644))

	changed := startWatch(t, path)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("b: 1\n"), 0644))

	select {
	case <-changed:
		t.Fatal("change reported for another file")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatchReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mibwalk.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1\n"), 0644))

	changed := startWatch(t, path)

	tmp := filepath.Join(dir, ".mibwalk.yaml.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("a: 3\n"), 0644))
	require.NoError(t, os.Rename(tmp, path))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("replace not reported")
	}
}

func TestWatchMissingDir(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "gone", "mibwalk.yaml"), func() {})
	assert.Error(t, w.Watch(context.Background()))
}
