package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWatcher(t *testing.T, debounce time.Duration) *FileWatcher {
	t.Helper()
	fw, err := NewFileWatcher(debounce, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fw.Close() })
	return fw
}

func TestWatchReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "start.map")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	fw := newWatcher(t, 20*time.Millisecond)
	changed := make(chan string, 4)
	require.NoError(t, fw.Watch([]string{path}, func(p string) { changed <- p }))
	fw.Start()

	require.NoError(t, os.WriteFile(path, []byte("{ }"), 0o644))

	select {
	case got := <-changed:
		want, _ := filepath.Abs(path)
		assert.Equal(t, want, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatchDebounces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "start.map")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	fw := newWatcher(t, 300*time.Millisecond)
	var calls atomic.Int32
	require.NoError(t, fw.Watch([]string{path}, func(string) { calls.Add(1) }))
	fw.Start()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte('a' + i)}, 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 5*time.Second, 20*time.Millisecond)
	time.Sleep(500 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatchIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "start.map")
	other := filepath.Join(dir, "other.map")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	fw := newWatcher(t, 10*time.Millisecond)
	var calls atomic.Int32
	require.NoError(t, fw.Watch([]string{path}, func(string) { calls.Add(1) }))
	fw.Start()

	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestUnwatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "start.map")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	fw := newWatcher(t, 10*time.Millisecond)
	var calls atomic.Int32
	require.NoError(t, fw.Watch([]string{path}, func(string) { calls.Add(1) }))
	require.NoError(t, fw.Unwatch(path))
	require.NoError(t, fw.Unwatch(path))
	fw.Start()

	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestWatchMissingDirectory(t *testing.T) {
	fw := newWatcher(t, time.Millisecond)
	err := fw.Watch([]string{filepath.Join(t.TempDir(), "nope", "start.map")}, func(string) {})
	assert.Error(t, err)
}

func TestCloseIsIdempotent(t *testing.T) {
	fw, err := NewFileWatcher(time.Millisecond, nil)
	require.NoError(t, err)
	fw.Start()
	assert.NoError(t, fw.Close())
	assert.NoError(t, fw.Close())
}
