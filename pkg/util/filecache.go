package util

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/edsrzf/mmap-go"
)

// ErrCacheFull is returned by FileCache.Get when a configured limit would be
// exceeded. Read falls back to an uncached read in that case.
var ErrCacheFull = errors.New("file cache limit reached")

// FileCache serves source files from read-only memory maps.
//
// Files are mapped lazily on first access and stay mapped until they are
// invalidated or the cache is closed. When mmap fails the file is read into
// memory instead. Safe for concurrent use.
type FileCache interface {
	// Get returns the mapped file, loading it on first access.
	Get(filePath string) (*MappedFile, error)

	// Read returns a private copy of the file contents. The copy stays valid
	// after Invalidate or Close.
	Read(filePath string) ([]byte, error)

	// Invalidate unmaps a file so the next access sees the current contents.
	Invalidate(filePath string)

	// Size returns number of currently cached files.
	Size() int

	// Stats returns current cache metrics.
	Stats() FileCacheStats

	// Close unmaps all files and releases resources.
	Close() error
}

// FileCacheConfig controls FileCache behavior. Zero limits mean unlimited.
type FileCacheConfig struct {
	MaxFiles    int
	MaxMemoryMB int
	Logger      *slog.Logger
}

// DefaultFileCacheConfig returns limits suitable for a typical front-end
// source tree.
func DefaultFileCacheConfig() *FileCacheConfig {
	return &FileCacheConfig{
		MaxFiles:    10000,
		MaxMemoryMB: 2048,
	}
}

// MappedFile is a cached file.
type MappedFile struct {
	Path string

	// Data is the mapped region (or the fallback bytes). Nil for empty files.
	Data mmap.MMap

	// file is nil for fallback entries.
	file     *os.File
	mapped   bool
	Size     int64
	MappedAt time.Time
}

func (mf *MappedFile) release() error {
	var errs []error
	if mf.mapped && mf.Data != nil {
		if err := mf.Data.Unmap(); err != nil {
			errs = append(errs, fmt.Errorf("unmap %q: %w", mf.Path, err))
		}
	}
	if mf.file != nil {
		if err := mf.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %q: %w", mf.Path, err))
		}
	}
	return errors.Join(errs...)
}

// FileCacheStats tracks cache performance metrics.
type FileCacheStats struct {
	FilesLoaded   int64
	FilesCached   int
	CacheHits     int64
	CacheMisses   int64
	MmapFailures  int64
	Invalidations int64
	TotalBytes    int64
}

// NewFileCache creates a new FileCache. A nil config uses
// DefaultFileCacheConfig().
func NewFileCache(config *FileCacheConfig) FileCache {
	if config == nil {
		config = DefaultFileCacheConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &fileCache{
		config: *config,
		files:  make(map[string]*MappedFile),
		logger: logger,
	}
}

type fileCache struct {
	config FileCacheConfig
	logger *slog.Logger

	files map[string]*MappedFile
	mu    sync.RWMutex

	stats   FileCacheStats
	statsMu sync.Mutex
}

func (fc *fileCache) Get(filePath string) (*MappedFile, error) {
	fc.mu.RLock()
	if mf, ok := fc.files[filePath]; ok {
		fc.mu.RUnlock()
		fc.record(func(s *FileCacheStats) { s.CacheHits++ })
		return mf, nil
	}
	fc.mu.RUnlock()

	fc.mu.Lock()
	defer fc.mu.Unlock()

	if mf, ok := fc.files[filePath]; ok {
		fc.record(func(s *FileCacheStats) { s.CacheHits++ })
		return mf, nil
	}
	fc.record(func(s *FileCacheStats) { s.CacheMisses++ })

	stat, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file %q: %w", filePath, err)
	}
	if err := fc.checkLimitsLocked(stat.Size()); err != nil {
		return nil, err
	}

	mf, err := fc.load(filePath)
	if err != nil {
		return nil, err
	}

	fc.files[filePath] = mf
	fc.record(func(s *FileCacheStats) { s.FilesLoaded++ })
	return mf, nil
}

func (fc *fileCache) Read(filePath string) ([]byte, error) {
	fc.mu.RLock()
	mf, ok := fc.files[filePath]
	if ok {
		out := make([]byte, len(mf.Data))
		copy(out, mf.Data)
		fc.mu.RUnlock()
		fc.record(func(s *FileCacheStats) { s.CacheHits++ })
		return out, nil
	}
	fc.mu.RUnlock()

	if _, err := fc.Get(filePath); err != nil {
		if errors.Is(err, ErrCacheFull) {
			return os.ReadFile(filePath)
		}
		return nil, err
	}

	// Copy under the read lock so a concurrent Invalidate cannot unmap the
	// region mid-copy.
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	mf, ok = fc.files[filePath]
	if !ok {
		return os.ReadFile(filePath)
	}
	out := make([]byte, len(mf.Data))
	copy(out, mf.Data)
	return out, nil
}

func (fc *fileCache) Invalidate(filePath string) {
	fc.mu.Lock()
	mf, ok := fc.files[filePath]
	if ok {
		delete(fc.files, filePath)
	}
	fc.mu.Unlock()

	if !ok {
		return
	}
	if err := mf.release(); err != nil {
		fc.logger.Warn("failed to release cached file", "path", filePath, "error", err)
	}
	fc.record(func(s *FileCacheStats) { s.Invalidations++ })
}

// checkLimitsLocked must be called while holding mu.Lock.
func (fc *fileCache) checkLimitsLocked(newFileSize int64) error {
	if fc.config.MaxFiles > 0 && len(fc.files) >= fc.config.MaxFiles {
		return fmt.Errorf("%w: %d files (limit %d)", ErrCacheFull, len(fc.files), fc.config.MaxFiles)
	}

	if fc.config.MaxMemoryMB > 0 {
		limit := int64(fc.config.MaxMemoryMB) * 1024 * 1024
		if total := fc.totalBytesLocked() + newFileSize; total >= limit {
			return fmt.Errorf("%w: %d bytes (limit %d MB)", ErrCacheFull, total, fc.config.MaxMemoryMB)
		}
	}

	return nil
}

// load maps a file read-only, falling back to os.ReadFile.
func (fc *fileCache) load(filePath string) (*MappedFile, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", filePath, err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file %q: %w", filePath, err)
	}

	// Zero-length files cannot be mapped.
	if stat.Size() == 0 {
		file.Close()
		return &MappedFile{Path: filePath, MappedAt: time.Now()}, nil
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		file.Close()
		fc.logger.Warn("mmap failed, using fallback", "file", filePath, "error", err)
		fc.record(func(s *FileCacheStats) { s.MmapFailures++ })

		raw, readErr := os.ReadFile(filePath)
		if readErr != nil {
			return nil, fmt.Errorf("mmap failed (%v) and read failed for %q: %w", err, filePath, readErr)
		}
		return &MappedFile{
			Path:     filePath,
			Data:     mmap.MMap(raw),
			Size:     int64(len(raw)),
			MappedAt: time.Now(),
		}, nil
	}

	return &MappedFile{
		Path:     filePath,
		Data:     data,
		file:     file,
		mapped:   true,
		Size:     stat.Size(),
		MappedAt: time.Now(),
	}, nil
}

func (fc *fileCache) Size() int {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return len(fc.files)
}

func (fc *fileCache) Stats() FileCacheStats {
	fc.mu.RLock()
	cached := len(fc.files)
	total := fc.totalBytesLocked()
	fc.mu.RUnlock()

	fc.statsMu.Lock()
	defer fc.statsMu.Unlock()

	stats := fc.stats
	stats.FilesCached = cached
	stats.TotalBytes = total
	return stats
}

func (fc *fileCache) totalBytesLocked() int64 {
	var total int64
	for _, mf := range fc.files {
		total += mf.Size
	}
	return total
}

func (fc *fileCache) Close() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	var errs []error
	for path, mf := range fc.files {
		if err := mf.release(); err != nil {
			fc.logger.Warn("failed to release cached file", "path", path, "error", err)
			errs = append(errs, err)
		}
	}
	fc.files = make(map[string]*MappedFile)

	fc.statsMu.Lock()
	stats := fc.stats
	fc.statsMu.Unlock()
	fc.logger.Debug("FileCache closed",
		"files_loaded", stats.FilesLoaded,
		"cache_hits", stats.CacheHits,
		"mmap_failures", stats.MmapFailures)

	return errors.Join(errs...)
}

func (fc *fileCache) record(update func(*FileCacheStats)) {
	fc.statsMu.Lock()
	update(&fc.stats)
	fc.statsMu.Unlock()
}
