package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gnana997/hooks2vue/pkg/parser"
	"github.com/gnana997/hooks2vue/pkg/playground"
	"github.com/gnana997/hooks2vue/pkg/rewrite"
)

const stdinName = "-"

func transformCmd(flags *rootFlags) *cobra.Command {
	var lang, output string
	var noImports bool

	cmd := &cobra.Command{
		Use:   "transform [file|-]",
		Short: "Transform one file or stdin",
		Long: `Transform one file (or stdin when the argument is "-" or missing) and print
the result.

Examples:
  hooks2vue transform Counter.jsx
  hooks2vue transform --lang tsx - < Form.tsx
  hooks2vue transform -o Counter.vue.jsx Counter.jsx`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			name, src, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			result, err := a.transform(name, src, lang, !noImports)
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, result.Code)
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "source dialect: js, jsx, ts, tsx (default: from extension)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&noImports, "no-imports", false, "leave React imports untouched")

	return cmd
}

func diffCmd(flags *rootFlags) *cobra.Command {
	var lang string
	var contextLines int
	var noColor, noImports bool

	cmd := &cobra.Command{
		Use:   "diff [file|-]",
		Short: "Show what a transform would change",
		Long: `Transform one file (or stdin) and print a line diff of the input against the
output. Prints nothing when no rule applies.

Examples:
  hooks2vue diff Counter.jsx
  hooks2vue diff --context 1 --no-color Counter.jsx`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			name, src, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			result, err := a.transform(name, src, lang, !noImports)
			if err != nil {
				return err
			}

			d := playground.Diff(string(src), result.Code)
			out := d.Unified(playground.RenderOptions{
				Context: contextLines,
				Color:   !noColor && !color.NoColor,
			})
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "source dialect: js, jsx, ts, tsx (default: from extension)")
	cmd.Flags().IntVarP(&contextLines, "context", "C", 3, "unchanged lines shown around each change")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	cmd.Flags().BoolVar(&noImports, "no-imports", false, "leave React imports untouched")

	return cmd
}

// transform runs one source through the pipeline. Transform failures come
// back as "name:line:col: message".
func (a *app) transform(name string, src []byte, lang string, rewriteImports bool) (*rewrite.Result, error) {
	d, err := a.resolveDialect(name, lang)
	if err != nil {
		return nil, err
	}

	result, err := a.transformer.Transform(src, rewrite.Options{
		Dialect:        d,
		RewriteImports: rewriteImports && a.cfg.Transform.RewriteImports,
	})
	var rerr *rewrite.Error
	if errors.As(err, &rerr) {
		return nil, fmt.Errorf("%s:%d:%d: %s", name, rerr.Line, rerr.Column, rerr.Message)
	}
	if err != nil {
		return nil, err
	}

	a.logger.Debug("Transformed", "input", name, "dialect", d.String(), "changed", result.Changed, "rewrites", result.Rewrites)
	return result, nil
}

// resolveDialect picks the dialect from the flag, then the config, then the
// file extension. Stdin without either is JavaScript.
func (a *app) resolveDialect(name, lang string) (parser.Dialect, error) {
	if lang == "" {
		lang = a.cfg.Transform.Language
	}
	if lang != "" {
		return parser.ParseDialect(lang)
	}
	if name == stdinName {
		return parser.ParseDialect("")
	}
	return parser.DetectDialect(name)
}

func readInput(cmd *cobra.Command, args []string) (string, []byte, error) {
	if len(args) == 0 || args[0] == stdinName {
		src, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return stdinName, src, nil
	}

	src, err := os.ReadFile(args[0])
	if err != nil {
		return "", nil, fmt.Errorf("failed to read file %s: %w", args[0], err)
	}
	return args[0], src, nil
}

func writeOutput(cmd *cobra.Command, output, code string) error {
	if output == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), code)
		return err
	}
	if err := os.WriteFile(output, []byte(code), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
