package workspace

import (
	"time"
)

// ConvertOptions configures a tree conversion.
type ConvertOptions struct {
	// Include patterns (doublestar glob syntax, relative to the root).
	Include []string

	// Exclude patterns. A matching directory is skipped entirely.
	Exclude []string

	// OutDir mirrors the tree under this directory. When empty, outputs are
	// written next to their inputs with Suffix inserted before the extension.
	OutDir string

	// Suffix marks output files, e.g. Counter.jsx -> Counter.vue.jsx.
	// Files already carrying it are never converted.
	// Default: ".vue"
	Suffix string

	// Workers is the worker pool size (0 = util.GetOptimalPoolSize()).
	Workers int

	// DryRun transforms without writing anything.
	DryRun bool

	// RewriteImports is passed through to every transform.
	RewriteImports bool
}

// DefaultConvertOptions returns recommended conversion options.
func DefaultConvertOptions() ConvertOptions {
	return ConvertOptions{
		Include: []string{
			"**/*.{js,jsx,mjs,cjs}",
			"**/*.{ts,tsx,mts,cts}",
		},
		Exclude: []string{
			"**/node_modules/**",
			"**/.git/**",
			"dist/**",
			"build/**",
			"coverage/**",
			".next/**",
			"**/*.d.ts",
		},
		Suffix:         ".vue",
		RewriteImports: true,
	}
}

// FileReport describes one converted file.
type FileReport struct {
	Path   string
	Output string

	// Changed is false when no rule matched.
	Changed bool

	// Written is false for dry runs and for unchanged files converted in
	// place (there is nothing to write next to the input).
	Written  bool
	Rewrites int
	APIs     []string
	BytesIn  int
	BytesOut int
}

// FileError is a file that could not be converted. Line and Column are set
// when the transform itself rejected the source.
type FileError struct {
	FilePath string
	Line     int
	Column   int
	Error    error
}

// ConvertStats summarizes a tree conversion.
type ConvertStats struct {
	FilesDiscovered int
	FilesChanged    int
	FilesUnchanged  int
	FilesFailed     int
	FilesWritten    int

	BytesIn  int64
	BytesOut int64

	// Rewrites is the total number of rule applications.
	Rewrites int

	WorkerCount int

	DiscoveryTimeMs int64
	ConvertTimeMs   int64
	TotalTimeMs     int64
	FilesPerSecond  float64

	// Files and Errors are sorted by path.
	Files  []FileReport
	Errors []FileError

	// Cancelled is set when the context ended the run early.
	Cancelled bool

	StartTime time.Time
	EndTime   time.Time
}

// ProgressCallback is called after each file completes, successfully or not.
type ProgressCallback func(done, total int, currentFile string)

// WatchOptions configures FileWatcher.
type WatchOptions struct {
	// DebounceMs groups rapid changes to one file into a single conversion.
	// Default: 200ms
	DebounceMs int

	// IgnorePatterns are doublestar globs matched against paths relative to
	// the watched root, in addition to the conversion excludes.
	IgnorePatterns []string

	// OnConvert, if set, is called after every re-conversion triggered by a
	// change. Exactly one of report and ferr is non-nil.
	OnConvert func(report *FileReport, ferr *FileError)
}

// DefaultWatchOptions returns recommended watch options.
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		DebounceMs: 200,
		IgnorePatterns: []string{
			"**/*.swp",
			"**/*.tmp",
			"**/*~",
		},
	}
}
