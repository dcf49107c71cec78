// Package queries provides tree-sitter query compilation, caching, and execution.
package queries

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/hooks2vue/pkg/parser"
	"github.com/gnana997/hooks2vue/pkg/parser/queries/hooks"
	"github.com/gnana997/hooks2vue/pkg/parser/queries/imports"
)

// QueryType identifies which query to execute.
type QueryType int

const (
	// QueryTypeHooks finds useState/useRef declarators for the symbol table.
	QueryTypeHooks QueryType = iota
	// QueryTypeImports finds `import ... from 'react'` statements.
	QueryTypeImports
)

// String returns the string representation of a QueryType.
func (qt QueryType) String() string {
	switch qt {
	case QueryTypeHooks:
		return "hooks"
	case QueryTypeImports:
		return "imports"
	default:
		return "unknown"
	}
}

// queryKey identifies a compiled query. TSX is part of the key because the
// TSX grammar has its own symbol table and a query compiled for one grammar
// cannot run on trees of the other.
type queryKey struct {
	dialect parser.Dialect
	qtype   QueryType
}

// QueryManager compiles queries lazily and caches them per dialect.
//
// Usage:
//
//	qm := NewQueryManager(parserManager, logger)
//	defer qm.Close()
//
//	query, err := qm.GetQuery(dialect, QueryTypeHooks)
//	if err != nil {
//	    return err
//	}
//	matches, err := qm.ExecuteQuery(tree, query, source)
type QueryManager struct {
	parserManager *parser.ParserManager
	cache         map[queryKey]*ts.Query
	mutex         sync.RWMutex
	logger        *slog.Logger
}

// NewQueryManager creates a new query manager. Logger can be nil.
func NewQueryManager(pm *parser.ParserManager, logger *slog.Logger) *QueryManager {
	if logger == nil {
		logger = slog.Default()
	}

	return &QueryManager{
		parserManager: pm,
		cache:         make(map[queryKey]*ts.Query),
		logger:        logger,
	}
}

// GetQuery returns the compiled query for the dialect and type, compiling it
// on first use. Safe for concurrent use.
func (qm *QueryManager) GetQuery(d parser.Dialect, qtype QueryType) (*ts.Query, error) {
	key := queryKey{dialect: d, qtype: qtype}

	qm.mutex.RLock()
	query, exists := qm.cache[key]
	qm.mutex.RUnlock()
	if exists {
		return query, nil
	}

	qm.mutex.Lock()
	defer qm.mutex.Unlock()

	if query, exists = qm.cache[key]; exists {
		return query, nil
	}

	queryString, err := queryString(qtype)
	if err != nil {
		return nil, err
	}

	lang, err := qm.parserManager.Language(d)
	if err != nil {
		return nil, fmt.Errorf("failed to get grammar for %s: %w", d, err)
	}

	query, qerr := ts.NewQuery(lang, queryString)
	if qerr != nil {
		return nil, fmt.Errorf("failed to compile %s query for %s: %s", qtype, d, qerr.Message)
	}

	qm.cache[key] = query
	qm.logger.Debug("compiled query", "dialect", d.String(), "type", qtype.String())

	return query, nil
}

func queryString(qtype QueryType) (string, error) {
	switch qtype {
	case QueryTypeHooks:
		return hooks.Queries, nil
	case QueryTypeImports:
		return imports.ReactQueries, nil
	default:
		return "", fmt.Errorf("unknown query type: %d", qtype)
	}
}

// Run compiles (or fetches) the query and executes it on tree.
func (qm *QueryManager) Run(tree *ts.Tree, d parser.Dialect, qtype QueryType, source []byte) ([]QueryMatch, error) {
	query, err := qm.GetQuery(d, qtype)
	if err != nil {
		return nil, err
	}
	return qm.ExecuteQuery(tree, query, source)
}

// ExecuteQuery runs a compiled query over the whole tree and returns its
// matches with captures split into category and field.
func (qm *QueryManager) ExecuteQuery(tree *ts.Tree, query *ts.Query, source []byte) ([]QueryMatch, error) {
	if tree == nil {
		return nil, fmt.Errorf("tree is nil")
	}
	if query == nil {
		return nil, fmt.Errorf("query is nil")
	}

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	iter := cursor.Matches(query, tree.RootNode(), source)
	captureNames := query.CaptureNames()

	var matches []QueryMatch
	for {
		match := iter.Next()
		if match == nil {
			break
		}

		captures := make([]QueryCapture, 0, len(match.Captures))
		for _, capture := range match.Captures {
			var name string
			if int(capture.Index) < len(captureNames) {
				name = captureNames[capture.Index]
			}
			category, field := parseCaptureName(name)

			node := capture.Node
			captures = append(captures, QueryCapture{
				Name:     name,
				Category: category,
				Field:    field,
				Node:     &node,
				Text:     node.Utf8Text(source),
				Location: nodeLocation(&node),
			})
		}

		matches = append(matches, QueryMatch{
			PatternIndex: uint32(match.PatternIndex),
			Captures:     captures,
		})
	}

	return matches, nil
}

// Close releases all compiled queries.
func (qm *QueryManager) Close() error {
	qm.mutex.Lock()
	defer qm.mutex.Unlock()

	qm.logger.Debug("closing QueryManager", "queries_compiled", len(qm.cache))

	for key, query := range qm.cache {
		query.Close()
		delete(qm.cache, key)
	}
	return nil
}

// QueryMatch is a single pattern match.
type QueryMatch struct {
	PatternIndex uint32
	Captures     []QueryCapture
}

// Capture returns the first capture with the given category and field.
func (m QueryMatch) Capture(category, field string) (QueryCapture, bool) {
	for _, c := range m.Captures {
		if c.Category == category && c.Field == field {
			return c, true
		}
	}
	return QueryCapture{}, false
}

// Category returns the category shared by the match's captures ("state",
// "ref", "import"), or "" when the match has none.
func (m QueryMatch) Category() string {
	if len(m.Captures) == 0 {
		return ""
	}
	return m.Captures[0].Category
}

// QueryCapture is one captured node of a match.
type QueryCapture struct {
	// Name is the full capture name, e.g. "state.pattern".
	Name string
	// Category is the part before the dot ("state").
	Category string
	// Field is the part after the dot ("pattern"), empty without a dot.
	Field string

	Node     *ts.Node
	Text     string
	Location Location
}

// Location represents a position in source code.
type Location struct {
	StartLine   uint32 // 1-based
	StartColumn uint32 // 1-based
	EndLine     uint32
	EndColumn   uint32
	StartByte   uint32 // 0-based
	EndByte     uint32
}

// parseCaptureName splits "state.pattern" into ("state", "pattern").
func parseCaptureName(name string) (category, field string) {
	category, field, _ = strings.Cut(name, ".")
	return category, field
}

func nodeLocation(node *ts.Node) Location {
	start := node.StartPosition()
	end := node.EndPosition()

	return Location{
		StartLine:   uint32(start.Row + 1),
		StartColumn: uint32(start.Column + 1),
		EndLine:     uint32(end.Row + 1),
		EndColumn:   uint32(end.Column + 1),
		StartByte:   uint32(node.StartByte()),
		EndByte:     uint32(node.EndByte()),
	}
}
