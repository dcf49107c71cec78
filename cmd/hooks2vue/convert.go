package main

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/gnana997/hooks2vue/pkg/util"
	"github.com/gnana997/hooks2vue/pkg/workspace"
)

// convertFlags override the convert section of the config when set.
type convertFlags struct {
	include   []string
	exclude   []string
	outDir    string
	suffix    string
	workers   int
	dryRun    bool
	noImports bool
}

func (f *convertFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.include, "include", nil, "include globs (replaces convert.include)")
	cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "exclude globs (replaces convert.exclude)")
	cmd.Flags().StringVar(&f.outDir, "out-dir", "", "mirror outputs under this directory instead of writing next to inputs")
	cmd.Flags().StringVar(&f.suffix, "suffix", "", `output suffix inserted before the extension (default ".vue")`)
	cmd.Flags().IntVar(&f.workers, "workers", 0, "worker count (default: 2 x CPUs)")
	cmd.Flags().BoolVar(&f.noImports, "no-imports", false, "leave React imports untouched")
}

func (f *convertFlags) apply(cmd *cobra.Command, opts workspace.ConvertOptions) workspace.ConvertOptions {
	changed := cmd.Flags().Changed
	if changed("include") {
		opts.Include = f.include
	}
	if changed("exclude") {
		opts.Exclude = f.exclude
	}
	if changed("out-dir") {
		opts.OutDir = f.outDir
	}
	if changed("suffix") {
		opts.Suffix = f.suffix
	}
	if changed("workers") {
		opts.Workers = f.workers
	}
	if f.noImports {
		opts.RewriteImports = false
	}
	opts.DryRun = f.dryRun
	return opts
}

func (a *app) newConverter(opts workspace.ConvertOptions) *workspace.Converter {
	cache := util.NewFileCache(&util.FileCacheConfig{
		MaxFiles:    util.DefaultFileCacheConfig().MaxFiles,
		MaxMemoryMB: util.DefaultFileCacheConfig().MaxMemoryMB,
		Logger:      a.logger,
	})
	return workspace.NewConverter(a.transformer, cache, opts, a.logger)
}

func convertCmd(flags *rootFlags) *cobra.Command {
	cf := &convertFlags{}

	cmd := &cobra.Command{
		Use:   "convert <dir>",
		Short: "Transform every source file under a directory",
		Long: `Transform every matching file under a directory in parallel and print a
summary. Outputs go next to their inputs (Counter.jsx -> Counter.vue.jsx) or,
with --out-dir, into a mirrored tree. Exits non-zero if any file failed.

Examples:
  hooks2vue convert src
  hooks2vue convert --out-dir vue-src src
  hooks2vue convert --dry-run --include '**/*.tsx' src`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			conv := a.newConverter(cf.apply(cmd, a.cfg.ConvertOptions()))
			defer conv.Cache().Close()

			stats, err := conv.ConvertTree(cmd.Context(), args[0], nil)
			if err != nil {
				return err
			}

			root, _ := filepath.Abs(args[0])
			printSummary(cmd.OutOrStdout(), root, stats)

			if stats.Cancelled {
				return fmt.Errorf("conversion cancelled")
			}
			if stats.FilesFailed > 0 {
				return fmt.Errorf("%d of %d files failed", stats.FilesFailed, stats.FilesDiscovered)
			}
			return nil
		},
	}

	cf.register(cmd)
	cmd.Flags().BoolVar(&cf.dryRun, "dry-run", false, "transform without writing outputs")

	return cmd
}

func watchCmd(flags *rootFlags) *cobra.Command {
	cf := &convertFlags{}
	var debounceMs int

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Convert a directory, then re-convert files as they change",
		Long: `Convert a directory like "convert", then keep watching it. Changed files are
re-converted after a short debounce; deleting a source deletes its output.
Stops on interrupt.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			conv := a.newConverter(cf.apply(cmd, a.cfg.ConvertOptions()))
			defer conv.Cache().Close()

			out := cmd.OutOrStdout()
			stats, err := conv.ConvertTree(cmd.Context(), args[0], nil)
			if err != nil {
				return err
			}
			root, _ := filepath.Abs(args[0])
			printSummary(out, root, stats)

			opts := workspace.DefaultWatchOptions()
			opts.DebounceMs = a.cfg.Watch.DebounceMs
			if cmd.Flags().Changed("debounce") {
				opts.DebounceMs = debounceMs
			}
			opts.OnConvert = func(report *workspace.FileReport, ferr *workspace.FileError) {
				printWatchEvent(out, root, report, ferr)
			}

			watcher, err := workspace.NewFileWatcher(conv, opts, a.logger)
			if err != nil {
				return err
			}
			if err := watcher.Start(root); err != nil {
				return err
			}
			defer watcher.Stop()

			fmt.Fprintf(out, "watching %s (ctrl-c to stop)\n", root)
			<-cmd.Context().Done()
			return nil
		},
	}

	cf.register(cmd)
	cmd.Flags().IntVar(&debounceMs, "debounce", 0, "debounce in milliseconds (overrides watch.debounce_ms)")

	return cmd
}

func relTo(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}

func errorLocation(root string, fe workspace.FileError) string {
	if fe.Line > 0 {
		return fmt.Sprintf("%s:%d:%d", relTo(root, fe.FilePath), fe.Line, fe.Column)
	}
	return relTo(root, fe.FilePath)
}

func printWatchEvent(w io.Writer, root string, report *workspace.FileReport, ferr *workspace.FileError) {
	stamp := time.Now().Format("15:04:05")
	switch {
	case ferr != nil:
		fmt.Fprintf(w, "%s error     %s: %v\n", stamp, errorLocation(root, *ferr), ferr.Error)
	case report.Changed:
		fmt.Fprintf(w, "%s converted %s (%d rewrites)\n", stamp, relTo(root, report.Path), report.Rewrites)
	default:
		fmt.Fprintf(w, "%s unchanged %s\n", stamp, relTo(root, report.Path))
	}
}

// printSummary renders one row per file and a totals footer.
func printSummary(w io.Writer, root string, stats *workspace.ConvertStats) {
	if stats.FilesDiscovered == 0 {
		fmt.Fprintln(w, "no matching files")
		return
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false

	tbl.AppendHeader(table.Row{"File", "Status", "Rewrites", "In", "Out"})
	for _, f := range stats.Files {
		status := "unchanged"
		if f.Changed {
			status = "converted"
		}
		tbl.AppendRow(table.Row{
			relTo(root, f.Path),
			status,
			f.Rewrites,
			humanize.Bytes(uint64(f.BytesIn)),
			humanize.Bytes(uint64(f.BytesOut)),
		})
	}
	for _, fe := range stats.Errors {
		tbl.AppendRow(table.Row{relTo(root, fe.FilePath), "failed", "", "", ""})
	}

	tbl.AppendFooter(table.Row{
		fmt.Sprintf("%d files", stats.FilesDiscovered),
		fmt.Sprintf("%d converted, %d failed", stats.FilesChanged, stats.FilesFailed),
		stats.Rewrites,
		humanize.Bytes(uint64(stats.BytesIn)),
		humanize.Bytes(uint64(stats.BytesOut)),
	})
	tbl.Render()

	for _, fe := range stats.Errors {
		fmt.Fprintf(w, "%s: %v\n", errorLocation(root, fe), fe.Error)
	}
	fmt.Fprintf(w, "done in %s with %d workers\n", time.Duration(stats.TotalTimeMs)*time.Millisecond, stats.WorkerCount)
}
