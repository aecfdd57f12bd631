package watch

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestFileWatcherRecompilesOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "relc.model.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lists: {}\n"), 0o644))

	var mu sync.Mutex
	var seen []string
	fw, err := NewFileWatcher(path, 20*time.Millisecond, zaptest.NewLogger(t), func(p string) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, p)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, fw.Start())
	defer fw.Stop()

	// Other files in the directory are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("lists:\n  A:\n"), 0o644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) >= 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, fw.path, seen[0])
	mu.Unlock()
}

func TestFileWatcherSkipsUnchangedContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "relc.model.yaml")
	content := []byte("lists: {}\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	var calls atomic.Int32
	fw, err := NewFileWatcher(path, 10*time.Millisecond, nil, func(string) error {
		calls.Add(1)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, fw.Start())
	defer fw.Stop()

	require.NoError(t, os.WriteFile(path, content, 0o644))
	fw.fire()
	assert.Equal(t, int32(0), calls.Load())
}

func TestFileWatcherRelevant(t *testing.T) {
	fw := &FileWatcher{path: filepath.Join("/tmp", "m.yaml")}

	tests := []struct {
		event fsnotify.Event
		want  bool
	}{
		{fsnotify.Event{Name: "/tmp/m.yaml", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "/tmp/m.yaml", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "/tmp/m.yaml", Op: fsnotify.Rename}, true},
		{fsnotify.Event{Name: "/tmp/m.yaml", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "/tmp/m.yaml", Op: fsnotify.Remove}, false},
		{fsnotify.Event{Name: "/tmp/other.yaml", Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: "/tmp/./m.yaml", Op: fsnotify.Write}, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, fw.relevant(tt.event), tt.event.String())
	}
}

func TestFileWatcherStopTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.yaml")
	fw, err := NewFileWatcher(path, 0, nil, func(string) error { return nil })
	require.NoError(t, err)
	require.NoError(t, fw.Start())

	require.NoError(t, fw.Stop())
	assert.NoError(t, fw.Stop())
}

func TestDebouncerCoalesces(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(30 * time.Millisecond)
	d.SetCallback(func() { calls.Add(1) })

	d.Trigger()
	d.Trigger()
	d.Trigger()

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	d.Trigger()
	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestDebouncerStopDropsPending(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(20 * time.Millisecond)
	d.SetCallback(func() { calls.Add(1) })

	d.Trigger()
	d.Stop()
	d.Trigger()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestFingerprint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.yaml")
	f := NewFingerprint()

	_, err := f.Changed(path)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))
	changed, err := f.Changed(path)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = f.Changed(path)
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, os.WriteFile(path, []byte("b"), 0o644))
	changed, err = f.Changed(path)
	require.NoError(t, err)
	assert.True(t, changed)

	hash, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, HashContent([]byte("b")), hash)
}
