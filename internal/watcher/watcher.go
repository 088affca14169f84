// Package watcher reports attachments newly added to a vault.
//
// Create events pass through the ignore patterns, the attachment policy
// and an age guard, are debounced per path, and reach the handler once the
// file size has settled. Handler calls are serialized.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"pasterename/internal/logging"
)

// WatchConfig contains watcher settings.
type WatchConfig struct {
	Debounce        time.Duration // Delay before processing (default: 500ms)
	StableThreshold time.Duration // File size stability threshold (default: 200ms)
	// MaxAge drops events for files modified longer ago than this, which
	// are replays of existing files rather than new attachments
	// (default: 1s, 0 disables). Files moved in with mv keep their old
	// time and are dropped as well.
	MaxAge         time.Duration
	IgnorePatterns []string // Glob patterns to ignore (e.g., "*.tmp", "*.part", "*.download")
	Attachments    AttachmentPolicy
}

// DefaultWatchConfig returns a WatchConfig with sensible defaults.
func DefaultWatchConfig() *WatchConfig {
	return &WatchConfig{
		Debounce:        500 * time.Millisecond,
		StableThreshold: 200 * time.Millisecond,
		MaxAge:          time.Second,
		IgnorePatterns:  DefaultIgnorePatterns(),
	}
}

// WatchSummary contains stats from the watch session.
type WatchSummary struct {
	FilesRenamed int
	FilesSkipped int
	FilesFailed  int
	Duration     time.Duration
}

// FileHandler processes one new attachment and reports whether it was
// renamed.
type FileHandler func(path string) (renamed bool, err error)

// Watcher monitors directory trees for new attachments.
type Watcher struct {
	config      *WatchConfig
	fileHandler FileHandler
	fsWatcher   *fsnotify.Watcher
	fileFilter  *FileFilter
	debouncer   *Debouncer
	stability   *StabilityChecker
	logger      zerolog.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	wg        sync.WaitGroup
	inflight  sync.WaitGroup
	handlerMu sync.Mutex
	startTime time.Time

	// now supplies the time for the age guard.
	now func() time.Time

	mu           sync.Mutex
	stopped      bool
	filesRenamed int
	filesSkipped int
	filesFailed  int
}

// New creates a new Watcher with the given configuration.
// If config is nil, default configuration is used.
// The fileHandler is called for each new attachment.
func New(config *WatchConfig, fileHandler FileHandler) *Watcher {
	if config == nil {
		config = DefaultWatchConfig()
	}
	w := &Watcher{
		config:      config,
		fileHandler: fileHandler,
		fileFilter:  NewFileFilter(config.IgnorePatterns),
		logger:      logging.GetLogger("watcher"),
		done:        make(chan struct{}),
		now:         time.Now,
	}
	w.debouncer = NewDebouncer(config.Debounce, w.process)
	if config.StableThreshold > 0 {
		w.stability = NewStabilityChecker(config.StableThreshold)
	}
	return w
}

// Start begins watching the given directories and all their
// non-hidden subdirectories. Directories created later are added as they
// appear. The watcher runs until Stop() is called.
func (w *Watcher) Start(dirs []string) error {
	var err error
	w.fsWatcher, err = fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	for _, dir := range dirs {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			w.fsWatcher.Close()
			return err
		}
		if err := w.addTree(absDir); err != nil {
			w.fsWatcher.Close()
			return err
		}
	}

	w.startTime = time.Now()
	w.done = make(chan struct{})
	w.ctx, w.cancel = context.WithCancel(context.Background())

	w.wg.Add(1)
	go w.processEvents()

	w.logger.Info().Strs("dirs", dirs).Msg("Watching for new attachments")
	return nil
}

// addTree watches root and every directory below it, skipping hidden
// directories such as .obsidian and .trash.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			w.logger.Warn().Err(err).Str("dir", p).Msg("Cannot watch directory")
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(p); err != nil {
			if p == root {
				return err
			}
			w.logger.Warn().Err(err).Str("dir", p).Msg("Cannot watch directory")
		}
		return nil
	})
}

// Stop shuts down the watcher and returns a summary of the session. It
// waits for a rename already in progress.
func (w *Watcher) Stop() *WatchSummary {
	w.mu.Lock()
	w.stopped = true
	w.mu.Unlock()

	if w.cancel != nil {
		w.cancel()
	}
	if n := w.debouncer.CancelAll(); n > 0 {
		w.logger.Info().Int("attachments", n).Msg("Dropped attachments still waiting for their debounce delay")
	}
	close(w.done)
	w.wg.Wait()
	w.inflight.Wait()

	if w.fsWatcher != nil {
		w.fsWatcher.Close()
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	return &WatchSummary{
		FilesRenamed: w.filesRenamed,
		FilesSkipped: w.filesSkipped,
		FilesFailed:  w.filesFailed,
		Duration:     time.Since(w.startTime),
	}
}

// Suppress makes the watcher ignore the create event for path. The
// handler calls it for files it produced itself.
func (w *Watcher) Suppress(path string) {
	w.debouncer.Suppress(filepath.Clean(path))
}

// processEvents handles file system events from fsnotify.
func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			switch {
			case event.Has(fsnotify.Create):
				w.handleCreate(event.Name)
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				w.debouncer.Cancel(event.Name)
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("File watcher error")
		}
	}
}

// handleCreate decides whether a created path is a new attachment and
// schedules it.
func (w *Watcher) handleCreate(path string) {
	path = filepath.Clean(path)

	info, err := os.Lstat(path)
	if err != nil {
		return
	}
	if info.IsDir() {
		if !isHidden(info.Name()) {
			if err := w.addTree(path); err != nil {
				w.logger.Warn().Err(err).Str("dir", path).Msg("Cannot watch new directory")
			}
		}
		return
	}
	if !info.Mode().IsRegular() {
		return
	}

	if w.fileFilter.ShouldIgnore(path) {
		w.logger.Debug().Str("path", path).Msg("Ignoring temporary file")
		return
	}
	if !w.config.Attachments.Handles(path) {
		w.logger.Debug().Str("path", path).Msg("Not an attachment to rename")
		return
	}
	if w.config.MaxAge > 0 && w.now().Sub(info.ModTime()) > w.config.MaxAge {
		w.logger.Debug().Str("path", path).Time("modified", info.ModTime()).Msg("Ignoring existing file")
		return
	}

	if !w.debouncer.Add(path) {
		w.logger.Debug().Str("path", path).Msg("Ignoring file produced by the handler")
	}
}

// process waits for the file to settle and runs the handler.
func (w *Watcher) process(path string) {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.inflight.Add(1)
	w.mu.Unlock()
	defer w.inflight.Done()

	if w.stability != nil {
		if err := w.stability.WaitForStable(w.ctx, path); err != nil {
			switch {
			case errors.Is(err, ErrFileNotFound):
				w.logger.Debug().Str("path", path).Msg("Attachment disappeared before processing")
			case errors.Is(err, context.Canceled):
			default:
				w.logger.Warn().Err(err).Str("path", path).Msg("Attachment did not settle")
				w.count(false, err)
			}
			return
		}
	}

	if w.fileHandler == nil {
		w.count(true, nil)
		return
	}

	w.handlerMu.Lock()
	defer w.handlerMu.Unlock()
	// A previous handler call may have produced this path.
	if w.debouncer.Take(path) {
		w.logger.Debug().Str("path", path).Msg("Ignoring file produced by the handler")
		return
	}
	renamed, err := w.fileHandler(path)
	w.count(renamed, err)
}

func (w *Watcher) count(renamed bool, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case err != nil:
		w.filesFailed++
	case renamed:
		w.filesRenamed++
	default:
		w.filesSkipped++
	}
}

// GetConfig returns the current watcher configuration.
func (w *Watcher) GetConfig() *WatchConfig {
	return w.config
}

// IsRunning returns true if the watcher is currently running.
func (w *Watcher) IsRunning() bool {
	select {
	case <-w.done:
		return false
	default:
		return w.fsWatcher != nil
	}
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
