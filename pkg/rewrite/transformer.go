// Package rewrite implements the React hooks to Vue Composition API rewrite.
//
// Source is parsed with tree-sitter, a symbol-table pass binds useState and
// useRef results to their scopes, and a single pre-order walk offers every
// node to the hook rules. Rules emit edits against the original bytes; the
// output is produced by splicing those edits in, so code the rules do not
// touch keeps its exact formatting.
package rewrite

import (
	"fmt"
	"log/slog"

	"github.com/gnana997/hooks2vue/pkg/parser"
	"github.com/gnana997/hooks2vue/pkg/parser/queries"
)

// Options controls one transform.
type Options struct {
	Dialect parser.Dialect
	// RewriteImports replaces fully consumed React imports with an import
	// of the Vue APIs the output uses.
	RewriteImports bool
}

// DefaultOptions transforms JavaScript (with JSX) and rewrites imports.
func DefaultOptions() Options {
	return Options{
		Dialect:        parser.Dialect{Language: parser.LanguageJavaScript},
		RewriteImports: true,
	}
}

// Result is the output of a successful transform.
type Result struct {
	Code    string
	Changed bool
	// Rewrites counts mutations per rule name.
	Rewrites map[string]int
	// APIs lists the Vue functions the output calls, sorted.
	APIs []string
}

// Transformer runs the rule set over source text. It holds no per-call
// state and is safe for concurrent use.
//
// Usage:
//
//	t := NewTransformer(parserManager, queryManager, logger)
//	result, err := t.Transform(source, rewrite.DefaultOptions())
//	var rerr *rewrite.Error
//	if errors.As(err, &rerr) {
//	    // rerr.Line, rerr.Column, rerr.Message
//	}
type Transformer struct {
	parserManager *parser.ParserManager
	queryManager  *queries.QueryManager
	dispatcher    *Dispatcher
	logger        *slog.Logger
}

// NewTransformer creates a transformer with the default rules.
func NewTransformer(pm *parser.ParserManager, qm *queries.QueryManager, logger *slog.Logger) *Transformer {
	if logger == nil {
		logger = slog.Default()
	}

	return &Transformer{
		parserManager: pm,
		queryManager:  qm,
		dispatcher:    NewDispatcher(DefaultRules()...),
		logger:        logger,
	}
}

// Transform rewrites source. Malformed source fails with an *Error wrapping
// ErrParse; a run-once effect whose callback has an expression body fails
// with an *Error wrapping ErrUnsupportedBody. No partial output is returned
// on error.
func (t *Transformer) Transform(source []byte, opts Options) (*Result, error) {
	tree, err := t.parserManager.Parse(source, opts.Dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s source: %w", opts.Dialect, err)
	}
	defer tree.Close()

	if issue := parser.SyntaxError(tree, source); issue != nil {
		return nil, &Error{Line: issue.Line, Column: issue.Column, Message: issue.Message, Err: ErrParse}
	}

	hookMatches, err := t.queryManager.Run(tree, opts.Dialect, queries.QueryTypeHooks, source)
	if err != nil {
		return nil, fmt.Errorf("failed to run hooks query: %w", err)
	}

	root := tree.RootNode()
	symbols := BuildSymbolTable(root, source, hookMatches)

	report, err := t.dispatcher.Run(root, source, symbols)
	if err != nil {
		return nil, err
	}

	edits := report.Edits
	if opts.RewriteImports && len(report.Consumed) > 0 {
		importMatches, err := t.queryManager.Run(tree, opts.Dialect, queries.QueryTypeImports, source)
		if err != nil {
			return nil, fmt.Errorf("failed to run imports query: %w", err)
		}
		edits = append(edits, rewriteImports(importMatches, source, symbols, report)...)
	}

	out := Apply(source, edits)
	result := &Result{
		Code:     string(out),
		Changed:  string(out) != string(source),
		Rewrites: report.Counts,
		APIs:     report.APIs(),
	}

	t.logger.Debug("transformed source",
		"dialect", opts.Dialect.String(),
		"edits", len(edits),
		"rewrites", len(report.Counts),
		"apis", result.APIs)

	return result, nil
}

// TransformFile rewrites a file's contents, picking the grammar from the
// path's extension.
func (t *Transformer) TransformFile(path string, source []byte, opts Options) (*Result, error) {
	d, err := parser.DetectDialect(path)
	if err != nil {
		return nil, err
	}
	opts.Dialect = d
	return t.Transform(source, opts)
}
