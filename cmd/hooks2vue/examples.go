package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/gnana997/hooks2vue/pkg/catalog"
	"github.com/gnana997/hooks2vue/pkg/playground"
)

// loadCatalog returns the bundled catalog, or the one at path.
func loadCatalog(path string) (*catalog.QueryService, error) {
	if path == "" {
		return catalog.LoadBundledQuery()
	}
	return catalog.LoadAndQuery(path)
}

func (a *app) newPlayground() (*playground.Playground, error) {
	return playground.New(a.transformer, playground.Config{
		CacheSize:      a.cfg.Cache.Size,
		RewriteImports: a.cfg.Transform.RewriteImports,
		Logger:         a.logger,
	})
}

func examplesCmd(flags *rootFlags) *cobra.Command {
	var catalogPath, hook, search string
	var transform bool

	cmd := &cobra.Command{
		Use:   "examples [name]",
		Short: "List bundled examples or print one",
		Long: `Without a name, list the example catalog (filtered by --hook or --search).
With a name, print that example's React source, or with --transform its Vue
rewrite.

Examples:
  hooks2vue examples
  hooks2vue examples --hook useEffect
  hooks2vue examples --transform counter`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			qs, err := loadCatalog(catalogPath)
			if err != nil {
				return fmt.Errorf("failed to load catalog: %w", err)
			}
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				if search != "" {
					printSearch(out, qs.SearchExamples(search))
					return nil
				}
				printExamples(out, qs.ListExamples(hook, ""))
				return nil
			}

			ex, ok := qs.GetExample(args[0])
			if !ok {
				return fmt.Errorf("unknown example %q", args[0])
			}
			if !transform {
				_, err := io.WriteString(out, ex.Code)
				return err
			}

			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			pg, err := a.newPlayground()
			if err != nil {
				return err
			}
			result, err := pg.Transform(ex.Code, ex.Language)
			if err != nil {
				return err
			}
			if result.Error != nil {
				return fmt.Errorf("%s:%d:%d: %s", ex.Name, result.Error.Line, result.Error.Column, result.Error.Message)
			}
			_, err = io.WriteString(out, result.Code)
			return err
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "example catalog YAML (default: bundled)")
	cmd.Flags().StringVar(&hook, "hook", "", "only list examples using this hook")
	cmd.Flags().StringVar(&search, "search", "", "search names, descriptions, hooks and code")
	cmd.Flags().BoolVarP(&transform, "transform", "t", false, "print the Vue rewrite instead of the source")

	return cmd
}

func printExamples(w io.Writer, examples []catalog.Example) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false

	tbl.AppendHeader(table.Row{"Name", "Hooks", "Lang", "Title"})
	for _, ex := range examples {
		tbl.AppendRow(table.Row{ex.Name, strings.Join(ex.Hooks, ", "), ex.Language, ex.Title})
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("%d examples", len(examples))})
	tbl.Render()
}

func printSearch(w io.Writer, results []catalog.ExampleSearchResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "no examples found")
		return
	}
	for _, r := range results {
		fmt.Fprintf(w, "%-16s %-12s %s\n", r.Example.Name, r.MatchReason, r.Example.Title)
	}
}
