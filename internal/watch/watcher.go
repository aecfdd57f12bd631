// Package watch recompiles a model file whenever it changes on disk.
package watch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDelay is how long the watcher waits for writes to settle
const DefaultDelay = 100 * time.Millisecond

// FileWatcher monitors one file and calls onChange after its content changes.
// The parent directory is watched so that editors replacing the file by rename
// are still seen.
type FileWatcher struct {
	path        string
	watcher     *fsnotify.Watcher
	debouncer   *Debouncer
	fingerprint *Fingerprint
	onChange    func(path string) error
	logger      *zap.Logger
	stopChan    chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

// NewFileWatcher creates a watcher for path. A nil logger discards logs.
func NewFileWatcher(path string, delay time.Duration, logger *zap.Logger, onChange func(path string) error) (*FileWatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if delay <= 0 {
		delay = DefaultDelay
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	fw := &FileWatcher{
		path:        abs,
		watcher:     watcher,
		debouncer:   NewDebouncer(delay),
		fingerprint: NewFingerprint(),
		onChange:    onChange,
		logger:      logger,
		stopChan:    make(chan struct{}),
	}
	fw.debouncer.SetCallback(fw.fire)
	return fw, nil
}

// Start records the current content and begins watching
func (fw *FileWatcher) Start() error {
	// A missing file is fine: its creation counts as a change
	if _, err := fw.fingerprint.Changed(fw.path); err != nil {
		fw.logger.Debug("model file not readable yet", zap.String("path", fw.path), zap.Error(err))
	}

	dir := filepath.Dir(fw.path)
	if err := fw.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}
	fw.logger.Info("watching model file", zap.String("path", fw.path))

	fw.wg.Add(1)
	go fw.watch()
	return nil
}

// Stop stops the watcher. It is safe to call more than once.
func (fw *FileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		close(fw.stopChan)
		fw.wg.Wait()
		fw.debouncer.Stop()
		err = fw.watcher.Close()
	})
	return err
}

// watch is the main event loop
func (fw *FileWatcher) watch() {
	defer fw.wg.Done()

	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if fw.relevant(event) {
				fw.logger.Debug("model file event", zap.String("op", event.Op.String()))
				fw.debouncer.Trigger()
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("watch error", zap.Error(err))

		case <-fw.stopChan:
			return
		}
	}
}

// relevant reports whether an event may have changed the watched file
func (fw *FileWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != fw.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

// fire runs onChange if the content differs from the last run
func (fw *FileWatcher) fire() {
	changed, err := fw.fingerprint.Changed(fw.path)
	if err != nil {
		fw.logger.Debug("model file not readable", zap.String("path", fw.path), zap.Error(err))
		return
	}
	if !changed {
		fw.logger.Debug("model file content unchanged", zap.String("path", fw.path))
		return
	}

	if err := fw.onChange(fw.path); err != nil {
		fw.logger.Error("error handling model change", zap.Error(err))
	}
}
