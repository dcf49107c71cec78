// Package playground runs the hook rewrite interactively: transform a
// snippet, report failures as editor markers, and diff input against output.
package playground

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gnana997/hooks2vue/pkg/parser"
	"github.com/gnana997/hooks2vue/pkg/rewrite"
)

// Config configures a Playground.
type Config struct {
	// CacheSize is the number of outcomes kept in the LRU cache.
	// Default: 256
	CacheSize int

	// RewriteImports is passed through to every transform.
	RewriteImports bool

	Logger *slog.Logger
}

// DefaultConfig returns the default playground configuration.
func DefaultConfig() Config {
	return Config{
		CacheSize:      256,
		RewriteImports: true,
	}
}

// Marker is a transform failure positioned for an editor. Line and Column
// are 1-based.
type Marker struct {
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message"`
}

// Outcome is the result of one playground run. Exactly one of Code and
// Error is meaningful: a failed transform has Error set and Code empty.
type Outcome struct {
	Code     string         `json:"code"`
	Changed  bool           `json:"changed"`
	Rewrites map[string]int `json:"rewrites,omitempty"`
	APIs     []string       `json:"apis,omitempty"`
	Error    *Marker        `json:"error,omitempty"`
}

// Stats reports cache effectiveness.
type Stats struct {
	Entries     int
	CacheHits   int64
	CacheMisses int64
	Failures    int64
}

// Playground memoizes transforms of recently seen snippets. Safe for
// concurrent use.
//
// Usage:
//
//	pg, err := playground.New(transformer, playground.DefaultConfig())
//	out, err := pg.Transform(code, "tsx")
//	if out.Error != nil {
//	    // show out.Error.Line / Column / Message in the editor
//	}
type Playground struct {
	transformer    *rewrite.Transformer
	cache          *lru.Cache[string, *Outcome]
	rewriteImports bool
	logger         *slog.Logger

	hits     atomic.Int64
	misses   atomic.Int64
	failures atomic.Int64
}

// New creates a playground around a transformer.
func New(t *rewrite.Transformer, config Config) (*Playground, error) {
	if config.CacheSize <= 0 {
		config.CacheSize = DefaultConfig().CacheSize
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cache, err := lru.New[string, *Outcome](config.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create outcome cache: %w", err)
	}

	return &Playground{
		transformer:    t,
		cache:          cache,
		rewriteImports: config.RewriteImports,
		logger:         logger,
	}, nil
}

// Transform rewrites code written in the named language (js, jsx, ts, tsx;
// empty means js). Parse failures and rule violations are reported through
// Outcome.Error; the returned error is reserved for bad arguments.
func (p *Playground) Transform(code, language string) (*Outcome, error) {
	d, err := parser.ParseDialect(language)
	if err != nil {
		return nil, err
	}
	return p.TransformDialect(code, d)
}

// TransformDialect is Transform with an already resolved dialect.
func (p *Playground) TransformDialect(code string, d parser.Dialect) (*Outcome, error) {
	key := cacheKey(d, p.rewriteImports, code)
	if out, ok := p.cache.Get(key); ok {
		p.hits.Add(1)
		return out, nil
	}
	p.misses.Add(1)

	opts := rewrite.Options{Dialect: d, RewriteImports: p.rewriteImports}
	result, err := p.transformer.Transform([]byte(code), opts)

	var out *Outcome
	var rerr *rewrite.Error
	switch {
	case err == nil:
		out = &Outcome{
			Code:     result.Code,
			Changed:  result.Changed,
			Rewrites: result.Rewrites,
			APIs:     result.APIs,
		}
	case errors.As(err, &rerr):
		p.failures.Add(1)
		out = &Outcome{Error: &Marker{Line: rerr.Line, Column: rerr.Column, Message: rerr.Message}}
		p.logger.Debug("playground transform failed",
			"dialect", d.String(), "line", rerr.Line, "column", rerr.Column, "error", rerr.Message)
	default:
		return nil, err
	}

	p.cache.Add(key, out)
	return out, nil
}

// Stats returns a snapshot of cache metrics.
func (p *Playground) Stats() Stats {
	return Stats{
		Entries:     p.cache.Len(),
		CacheHits:   p.hits.Load(),
		CacheMisses: p.misses.Load(),
		Failures:    p.failures.Load(),
	}
}

// Purge drops every cached outcome.
func (p *Playground) Purge() {
	p.cache.Purge()
}

func cacheKey(d parser.Dialect, rewriteImports bool, code string) string {
	h := sha256.New()
	h.Write([]byte(d.String()))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatBool(rewriteImports)))
	h.Write([]byte{0})
	h.Write([]byte(code))
	return hex.EncodeToString(h.Sum(nil))
}
