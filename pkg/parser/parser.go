package parser

import (
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	ts "github.com/tree-sitter/go-tree-sitter"
	ts_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	ts_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// ParserManager hands out tree-sitter parsers for every supported dialect.
//
// Pools are created lazily, one per dialect, and sized with
// util.GetOptimalPoolSize so that the conversion worker pool never waits on
// a parser. Callers own the returned trees and must Close them; the manager
// itself must be closed via Close.
//
// Example:
//
//	manager := NewParserManager(logger)
//	defer manager.Close()
//
//	tree, err := manager.Parse([]byte("const [a, setA] = useState(1);"), Dialect{Language: LanguageJavaScript})
//	if err != nil {
//	    return err
//	}
//	defer tree.Close()
type ParserManager struct {
	pools  map[Dialect]*parserPool
	mutex  sync.RWMutex
	logger *slog.Logger

	parsesCalled int
}

// NewParserManager creates a new ParserManager. A nil logger falls back to
// slog.Default().
func NewParserManager(logger *slog.Logger) *ParserManager {
	if logger == nil {
		logger = slog.Default()
	}

	return &ParserManager{
		pools:  make(map[Dialect]*parserPool),
		logger: logger,
	}
}

// Parse parses source with the grammar of the given dialect.
//
// A tree is returned even when the source has syntax errors; use SyntaxError
// to locate the first one. Safe for concurrent use.
func (pm *ParserManager) Parse(source []byte, d Dialect) (*ts.Tree, error) {
	if d.Language == LanguageUnknown {
		return nil, fmt.Errorf("cannot parse: %w", ErrUnknownLanguage)
	}

	pm.mutex.Lock()
	pm.parsesCalled++
	pm.mutex.Unlock()

	pool, err := pm.getOrCreatePool(d)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool for %s: %w", d, err)
	}

	parser, err := pool.acquire()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire parser: %w", err)
	}
	tree := parser.Parse(source, nil)
	pool.release(parser)

	if tree == nil {
		return nil, fmt.Errorf("parser returned nil tree for %s", d)
	}

	if tree.RootNode().HasError() {
		pm.logger.Debug("parse tree contains errors", "dialect", d.String())
	}

	return tree, nil
}

// ParseFile parses source using the dialect detected from filePath.
func (pm *ParserManager) ParseFile(source []byte, filePath string) (*ts.Tree, error) {
	d, err := DetectDialect(filePath)
	if err != nil {
		return nil, err
	}
	return pm.Parse(source, d)
}

// Close releases every pooled parser. The manager cannot be used afterwards.
func (pm *ParserManager) Close() error {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	pm.logger.Debug("closing ParserManager", "parses_called", pm.parsesCalled)

	for d, pool := range pm.pools {
		pool.close()
		delete(pm.pools, d)
	}
	return nil
}

// getOrCreatePool returns the pool for d, creating it under the write lock
// with double-checked locking.
func (pm *ParserManager) getOrCreatePool(d Dialect) (*parserPool, error) {
	pm.mutex.RLock()
	pool, exists := pm.pools[d]
	pm.mutex.RUnlock()
	if exists {
		return pool, nil
	}

	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	if pool, exists = pm.pools[d]; exists {
		return pool, nil
	}

	langPtr, err := languagePointer(d)
	if err != nil {
		return nil, err
	}

	size := getDefaultPoolSize()
	pool = newParserPool(d, langPtr, size, pm.logger)
	pm.pools[d] = pool

	pm.logger.Debug("created parser pool", "dialect", d.String(), "max_size", size)
	return pool, nil
}

// Language returns the tree-sitter grammar for d. QueryManager compiles its
// queries against it.
func (pm *ParserManager) Language(d Dialect) (*ts.Language, error) {
	ptr, err := languagePointer(d)
	if err != nil {
		return nil, err
	}
	return ts.NewLanguage(ptr), nil
}

func languagePointer(d Dialect) (unsafe.Pointer, error) {
	switch d.Language {
	case LanguageTypeScript:
		if d.TSX {
			return ts_typescript.LanguageTSX(), nil
		}
		return ts_typescript.LanguageTypescript(), nil
	case LanguageJavaScript:
		return ts_javascript.Language(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownLanguage, d.Language)
	}
}

// GetStats returns parser usage statistics.
func (pm *ParserManager) GetStats() ParserStats {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()

	created := 0
	for _, pool := range pm.pools {
		created += pool.getCreatedCount()
	}

	return ParserStats{
		ParsersCreated: created,
		ParsesCalled:   pm.parsesCalled,
		Pools:          len(pm.pools),
	}
}

// ParserStats contains parser usage statistics.
type ParserStats struct {
	ParsersCreated int
	ParsesCalled   int
	Pools          int
}
