package catalog

import (
	"strings"

	"github.com/gnana997/hooks2vue/pkg/parser"
)

// QueryService provides read-only query methods over a loaded catalog.
type QueryService struct {
	Catalog *Catalog
	Index   *CatalogIndex
}

// NewQueryService creates a QueryService from a validated catalog and its index.
func NewQueryService(cat *Catalog, idx *CatalogIndex) *QueryService {
	return &QueryService{Catalog: cat, Index: idx}
}

// LoadAndQuery loads a catalog from file and returns a ready-to-use QueryService.
func LoadAndQuery(path string) (*QueryService, error) {
	cat, idx, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	return NewQueryService(cat, idx), nil
}

// LoadBundledQuery returns a QueryService over the embedded catalog.
func LoadBundledQuery() (*QueryService, error) {
	cat, idx, err := LoadBundled()
	if err != nil {
		return nil, err
	}
	return NewQueryService(cat, idx), nil
}

// ListExamples returns examples filtered by hook and/or keyword.
// Both filters are optional (pass "" to skip) and combine with AND logic.
// The keyword matches case-insensitively against Name, Title and Description.
func (q *QueryService) ListExamples(hook, keyword string) []Example {
	var candidates []*Example

	if hook != "" {
		candidates = q.Index.ExamplesByHook[hook]
	} else {
		candidates = make([]*Example, 0, len(q.Catalog.Examples))
		for i := range q.Catalog.Examples {
			candidates = append(candidates, &q.Catalog.Examples[i])
		}
	}

	keyword = strings.ToLower(keyword)
	result := make([]Example, 0)

	for _, ex := range candidates {
		if keyword != "" && !containsFold(keyword, ex.Name, ex.Title, ex.Description) {
			continue
		}
		result = append(result, *ex)
	}

	return result
}

// GetExample looks up an example by name.
func (q *QueryService) GetExample(name string) (*Example, bool) {
	ex, ok := q.Index.ExampleByName[name]
	return ex, ok
}

// DefaultExample returns the catalog's default example, or the first one when
// no default is set. The bool is false for an empty catalog.
func (q *QueryService) DefaultExample() (*Example, bool) {
	if q.Catalog.Default != "" {
		return q.GetExample(q.Catalog.Default)
	}
	if len(q.Catalog.Examples) == 0 {
		return nil, false
	}
	return &q.Catalog.Examples[0], true
}

// Dialect returns the grammar an example is written in.
func (q *QueryService) Dialect(ex *Example) (parser.Dialect, error) {
	return parser.ParseDialect(ex.Language)
}

// SearchExamples performs a case-insensitive search across example names,
// titles, descriptions and code. Returns matches with the reason for the match.
func (q *QueryService) SearchExamples(query string) []ExampleSearchResult {
	query = strings.ToLower(query)
	if query == "" {
		return nil
	}

	var results []ExampleSearchResult
	for i := range q.Catalog.Examples {
		ex := &q.Catalog.Examples[i]

		switch {
		case containsFold(query, ex.Name):
			results = append(results, ExampleSearchResult{Example: ex, MatchReason: "name"})
		case containsFold(query, ex.Title, ex.Description):
			results = append(results, ExampleSearchResult{Example: ex, MatchReason: "description"})
		case containsFold(query, ex.Hooks...):
			results = append(results, ExampleSearchResult{Example: ex, MatchReason: "hook"})
		case containsFold(query, ex.Code):
			results = append(results, ExampleSearchResult{Example: ex, MatchReason: "code"})
		}
	}

	return results
}

// containsFold reports whether any field contains the lower-case needle.
func containsFold(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
