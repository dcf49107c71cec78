// Package workspace converts whole source trees: discovery, a parallel
// worker pool, output placement, and incremental re-conversion on change.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gnana997/hooks2vue/pkg/parser"
	"github.com/gnana997/hooks2vue/pkg/rewrite"
	"github.com/gnana997/hooks2vue/pkg/util"
)

// Converter transforms every matching file under a root.
//
// **Pipeline:**
//  1. Discovery - walk the tree, apply include/exclude globs, skip outputs
//  2. Conversion - transform files on a worker pool
//  3. Collection - aggregate per-file reports and errors
//
// Sources are read through a FileCache; the watcher invalidates entries
// before re-converting a changed file.
//
// **Usage:**
//
//	conv := NewConverter(transformer, cache, DefaultConvertOptions(), logger)
//	stats, err := conv.ConvertTree(ctx, "/path/to/app", func(done, total int, file string) {
//	    fmt.Printf("%d/%d %s\n", done, total, file)
//	})
type Converter struct {
	transformer *rewrite.Transformer
	cache       util.FileCache
	options     ConvertOptions
	logger      *slog.Logger
}

// NewConverter creates a converter. A nil cache reads files through a
// default util.FileCache.
func NewConverter(t *rewrite.Transformer, cache util.FileCache, options ConvertOptions, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	if cache == nil {
		cache = util.NewFileCache(&util.FileCacheConfig{Logger: logger})
	}
	if options.Suffix == "" && options.OutDir == "" {
		options.Suffix = DefaultConvertOptions().Suffix
	}

	return &Converter{
		transformer: t,
		cache:       cache,
		options:     options,
		logger:      logger,
	}
}

// Options returns the converter's options.
func (c *Converter) Options() ConvertOptions {
	return c.options
}

// Cache returns the file cache sources are read through.
func (c *Converter) Cache() util.FileCache {
	return c.cache
}

// ConvertTree discovers and converts every matching file under root.
// Per-file failures are collected in the stats; the returned error is
// reserved for discovery and pool failures.
func (c *Converter) ConvertTree(ctx context.Context, root string, progress ProgressCallback) (*ConvertStats, error) {
	startTime := time.Now()
	stats := &ConvertStats{StartTime: startTime}

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}

	c.logger.Info("Starting conversion", "root", root, "out_dir", c.options.OutDir, "dry_run", c.options.DryRun)

	discoveryStart := time.Now()
	files, err := c.Discover(root)
	if err != nil {
		return nil, fmt.Errorf("file discovery failed: %w", err)
	}
	stats.FilesDiscovered = len(files)
	stats.DiscoveryTimeMs = time.Since(discoveryStart).Milliseconds()

	c.logger.Info("File discovery complete",
		"files_found", len(files),
		"duration_ms", stats.DiscoveryTimeMs)

	if len(files) == 0 {
		c.logger.Warn("No files found matching criteria")
		stats.EndTime = time.Now()
		stats.TotalTimeMs = time.Since(startTime).Milliseconds()
		return stats, nil
	}

	convertStart := time.Now()
	if err := c.convertParallel(ctx, root, files, stats, progress); err != nil {
		return nil, fmt.Errorf("file conversion failed: %w", err)
	}
	stats.ConvertTimeMs = time.Since(convertStart).Milliseconds()

	sort.Slice(stats.Files, func(i, j int) bool { return stats.Files[i].Path < stats.Files[j].Path })
	sort.Slice(stats.Errors, func(i, j int) bool { return stats.Errors[i].FilePath < stats.Errors[j].FilePath })

	stats.EndTime = time.Now()
	stats.TotalTimeMs = time.Since(startTime).Milliseconds()
	if stats.ConvertTimeMs > 0 {
		stats.FilesPerSecond = float64(len(stats.Files)) / (float64(stats.ConvertTimeMs) / 1000.0)
	}

	c.logger.Info("Conversion complete",
		"files_changed", stats.FilesChanged,
		"files_unchanged", stats.FilesUnchanged,
		"files_failed", stats.FilesFailed,
		"rewrites", stats.Rewrites,
		"duration_ms", stats.TotalTimeMs,
		"files_per_second", fmt.Sprintf("%.1f", stats.FilesPerSecond))

	return stats, nil
}

// Discover returns the absolute paths of the files ConvertTree would convert,
// in walk order.
func (c *Converter) Discover(root string) ([]string, error) {
	for _, pattern := range c.options.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
	}
	for _, pattern := range c.options.Include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include pattern: %s", pattern)
		}
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	outDir := c.absOutDir()

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			c.logger.Warn("Walk error", "path", path, "error", err)
			return nil
		}

		if d.IsDir() && outDir != "" && path == outDir {
			return filepath.SkipDir
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if rel != "." && c.excluded(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}
		if c.included(rel) && !c.IsOutput(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

func (c *Converter) excluded(rel string) bool {
	for _, pattern := range c.options.Exclude {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

func (c *Converter) included(rel string) bool {
	if len(c.options.Include) == 0 {
		_, err := parser.DetectDialect(rel)
		return err == nil
	}
	for _, pattern := range c.options.Include {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

// IsOutput reports whether path is a file this converter writes in place.
func (c *Converter) IsOutput(path string) bool {
	if c.options.OutDir != "" {
		outDir := c.absOutDir()
		abs, err := filepath.Abs(path)
		return err == nil && (abs == outDir || strings.HasPrefix(abs, outDir+string(filepath.Separator)))
	}
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.HasSuffix(stem, c.options.Suffix)
}

func (c *Converter) absOutDir() string {
	if c.options.OutDir == "" {
		return ""
	}
	abs, err := filepath.Abs(c.options.OutDir)
	if err != nil {
		return c.options.OutDir
	}
	return abs
}

// OutputPath returns where the conversion of path is written. path must be
// inside root.
func (c *Converter) OutputPath(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", fmt.Errorf("failed to relate %s to %s: %w", path, root, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside %s", path, root)
	}

	if c.options.OutDir != "" {
		return filepath.Join(c.absOutDir(), rel), nil
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + c.options.Suffix + ext, nil
}

// ConvertFile transforms one file and writes its output. Transform
// failures are returned as *rewrite.Error (wrapped).
func (c *Converter) ConvertFile(root, path string) (*FileReport, error) {
	d, err := parser.DetectDialect(path)
	if err != nil {
		return nil, err
	}

	src, err := c.cache.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	result, err := c.transformer.Transform(src, rewrite.Options{
		Dialect:        d,
		RewriteImports: c.options.RewriteImports,
	})
	if err != nil {
		return nil, fmt.Errorf("transform failed: %w", err)
	}

	output, err := c.OutputPath(root, path)
	if err != nil {
		return nil, err
	}

	report := &FileReport{
		Path:     path,
		Output:   output,
		Changed:  result.Changed,
		APIs:     result.APIs,
		BytesIn:  len(src),
		BytesOut: len(result.Code),
	}
	for _, n := range result.Rewrites {
		report.Rewrites += n
	}

	if c.options.DryRun {
		return report, nil
	}

	// In place, an unchanged file has no output; drop a stale one.
	if c.options.OutDir == "" && !result.Changed {
		if err := os.Remove(output); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to remove stale output: %w", err)
		}
		return report, nil
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(output, []byte(result.Code), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write output: %w", err)
	}
	report.Written = true

	return report, nil
}

// RemoveOutput deletes the output of a source file that no longer exists.
func (c *Converter) RemoveOutput(root, path string) error {
	output, err := c.OutputPath(root, path)
	if err != nil {
		return err
	}
	if err := os.Remove(output); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// fileError turns a ConvertFile failure into a FileError, lifting the
// position out of a transform error.
func fileError(path string, err error) FileError {
	fe := FileError{FilePath: path, Error: err}
	var rerr *rewrite.Error
	if errors.As(err, &rerr) {
		fe.Line = rerr.Line
		fe.Column = rerr.Column
	}
	return fe
}

// convertParallel runs files through a worker pool.
func (c *Converter) convertParallel(
	ctx context.Context,
	root string,
	files []string,
	stats *ConvertStats,
	progress ProgressCallback,
) error {
	total := len(files)

	numWorkers := util.GetOptimalPoolSizeWithOverride(c.options.Workers)
	stats.WorkerCount = numWorkers

	pool := NewWorkerPool(ctx, numWorkers, c, c.logger)
	pool.Start()
	defer pool.Stop()

	finished := atomic.Int32{}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The collector must run before submission starts, or a full jobs
	// channel blocks Submit with nobody draining results.
	done := make(chan struct{})
	go func() {
		defer close(done)

		for {
			select {
			case <-ctx.Done():
				return

			case result, ok := <-pool.Results():
				if !ok {
					return
				}
				r := *result.Report
				stats.Files = append(stats.Files, r)
				if r.Changed {
					stats.FilesChanged++
				} else {
					stats.FilesUnchanged++
				}
				if r.Written {
					stats.FilesWritten++
				}
				stats.Rewrites += r.Rewrites
				stats.BytesIn += int64(r.BytesIn)
				stats.BytesOut += int64(r.BytesOut)

				count := finished.Add(1)
				if progress != nil {
					progress(int(count), total, result.FilePath)
				}
				if int(count) >= total {
					cancel()
					return
				}

			case fileErr, ok := <-pool.Errors():
				if !ok {
					return
				}
				stats.Errors = append(stats.Errors, fileErr)
				stats.FilesFailed++

				c.logger.Warn("File conversion failed",
					"file", fileErr.FilePath,
					"error", fileErr.Error)

				count := finished.Add(1)
				if progress != nil {
					progress(int(count), total, fileErr.FilePath)
				}
				if int(count) >= total {
					cancel()
					return
				}
			}
		}
	}()

	for i, file := range files {
		if err := pool.Submit(FileJob{Root: root, FilePath: file, JobID: i}); err != nil {
			if ctx.Err() != nil {
				break
			}
			return fmt.Errorf("failed to submit job for %s: %w", file, err)
		}
	}
	pool.FinishSubmitting()

	<-done
	if int(finished.Load()) < total {
		stats.Cancelled = true
		c.logger.Warn("Conversion cancelled", "finished", finished.Load(), "total", total)
	}

	return nil
}
