package workspace

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// FileWatcher re-converts files as they change.
//
// Writes and creates are debounced per file; removes and renames delete the
// file's output. New directories are watched as they appear. Every source
// is invalidated in the converter's FileCache before it is read again.
//
// **Usage:**
//
//	watcher, err := NewFileWatcher(converter, DefaultWatchOptions(), logger)
//	if err != nil {
//	    return err
//	}
//	if err := watcher.Start("/path/to/app"); err != nil {
//	    return err
//	}
//	defer watcher.Stop()
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	converter *Converter
	logger    *slog.Logger
	options   WatchOptions
	root      string

	debounceTimers map[string]*time.Timer
	debounceMu     sync.Mutex

	stopChan chan struct{}
	stopped  bool
	mu       sync.Mutex
}

// NewFileWatcher creates a watcher around a converter.
func NewFileWatcher(converter *Converter, options WatchOptions, logger *slog.Logger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	if options.DebounceMs <= 0 {
		options.DebounceMs = DefaultWatchOptions().DebounceMs
	}

	return &FileWatcher{
		watcher:        watcher,
		converter:      converter,
		logger:         logger,
		options:        options,
		debounceTimers: make(map[string]*time.Timer),
		stopChan:       make(chan struct{}),
	}, nil
}

// Start watches root and every directory below it that is not excluded.
func (fw *FileWatcher) Start(rootPath string) error {
	fw.mu.Lock()
	if fw.stopped {
		fw.mu.Unlock()
		return fmt.Errorf("watcher already stopped")
	}
	fw.mu.Unlock()

	root, err := filepath.Abs(rootPath)
	if err != nil {
		return fmt.Errorf("failed to resolve root: %w", err)
	}
	fw.root = root

	if err := fw.addTree(root); err != nil {
		return fmt.Errorf("failed to setup watches: %w", err)
	}

	fw.logger.Info("File watcher started", "root", root)

	go fw.eventLoop()

	return nil
}

func (fw *FileWatcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != fw.root && (fw.shouldIgnore(path) || fw.converter.IsOutput(path)) {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			if path == fw.root {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
			fw.logger.Warn("Failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

// Stop stops watching and cancels pending conversions. Idempotent.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.stopped {
		return nil
	}

	fw.stopped = true
	close(fw.stopChan)

	fw.debounceMu.Lock()
	for _, timer := range fw.debounceTimers {
		timer.Stop()
	}
	fw.debounceTimers = make(map[string]*time.Timer)
	fw.debounceMu.Unlock()

	err := fw.watcher.Close()
	fw.logger.Info("File watcher stopped")
	return err
}

func (fw *FileWatcher) eventLoop() {
	for {
		select {
		case <-fw.stopChan:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Error("File watcher error", "error", err)
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if fw.shouldIgnore(path) || fw.converter.IsOutput(path) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := fw.addTree(path); err != nil {
				fw.logger.Warn("Failed to watch new directory", "path", path, "error", err)
			}
			return
		}
	}

	if !fw.isSource(path) {
		return
	}

	fw.logger.Debug("File event", "op", event.Op.String(), "file", path)

	switch {
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		fw.debounceConvert(path)

	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		fw.removeFile(path)
	}
}

// debounceConvert (re)starts the file's timer; only the last event in a
// burst converts.
func (fw *FileWatcher) debounceConvert(path string) {
	fw.debounceMu.Lock()
	defer fw.debounceMu.Unlock()

	if timer, exists := fw.debounceTimers[path]; exists {
		timer.Stop()
	}

	fw.debounceTimers[path] = time.AfterFunc(
		time.Duration(fw.options.DebounceMs)*time.Millisecond,
		func() {
			fw.convertFile(path)

			fw.debounceMu.Lock()
			delete(fw.debounceTimers, path)
			fw.debounceMu.Unlock()
		},
	)
}

func (fw *FileWatcher) convertFile(path string) {
	fw.converter.Cache().Invalidate(path)

	report, err := fw.converter.ConvertFile(fw.root, path)
	if err != nil {
		fe := fileError(path, err)
		fw.logger.Warn("Failed to convert changed file", "file", path, "error", err)
		if fw.options.OnConvert != nil {
			fw.options.OnConvert(nil, &fe)
		}
		return
	}

	fw.logger.Debug("File converted",
		"file", path,
		"changed", report.Changed,
		"rewrites", report.Rewrites)
	if fw.options.OnConvert != nil {
		fw.options.OnConvert(report, nil)
	}
}

func (fw *FileWatcher) removeFile(path string) {
	fw.debounceMu.Lock()
	if timer, exists := fw.debounceTimers[path]; exists {
		timer.Stop()
		delete(fw.debounceTimers, path)
	}
	fw.debounceMu.Unlock()

	fw.converter.Cache().Invalidate(path)

	// A rename fires for the old name; the new name arrives as a Create.
	if _, err := os.Stat(path); err == nil {
		return
	}
	if err := fw.converter.RemoveOutput(fw.root, path); err != nil {
		fw.logger.Warn("Failed to remove output", "file", path, "error", err)
		return
	}
	fw.logger.Debug("Output removed", "file", path)
}

func (fw *FileWatcher) isSource(path string) bool {
	rel, err := filepath.Rel(fw.root, path)
	if err != nil {
		return false
	}
	return fw.converter.included(filepath.ToSlash(rel))
}

func (fw *FileWatcher) shouldIgnore(path string) bool {
	rel, err := filepath.Rel(fw.root, path)
	if err != nil {
		return true
	}
	rel = filepath.ToSlash(rel)

	if fw.converter.excluded(rel) {
		return true
	}
	for _, pattern := range fw.options.IgnorePatterns {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

// GetStats returns file watcher statistics.
func (fw *FileWatcher) GetStats() FileWatcherStats {
	fw.debounceMu.Lock()
	pending := len(fw.debounceTimers)
	fw.debounceMu.Unlock()

	fw.mu.Lock()
	running := !fw.stopped
	fw.mu.Unlock()

	return FileWatcherStats{
		PendingConversions: pending,
		IsRunning:          running,
	}
}

// FileWatcherStats contains file watcher statistics.
type FileWatcherStats struct {
	PendingConversions int
	IsRunning          bool
}
