package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/hooks2vue/pkg/parser"
)

// --- helpers ---

func testQueryService() *QueryService {
	cat := &Catalog{
		Name:    "test",
		Version: "1.0",
		Examples: []Example{
			{
				Name:        "counter",
				Title:       "Counter",
				Description: "A clickable counter",
				Hooks:       []string{"useState"},
				Language:    "jsx",
				Code:        "const [n, setN] = useState(0);",
			},
			{
				Name:        "timer",
				Title:       "Timer",
				Description: "Interval with cleanup",
				Hooks:       []string{"useState", "useEffect"},
				Language:    "tsx",
				Code:        "useEffect(() => { return () => clearInterval(id); }, []);",
			},
			{
				Name:        "theme",
				Title:       "Theme",
				Description: "Context lookup",
				Hooks:       []string{"useContext"},
				Language:    "js",
				Code:        "const theme = useContext(ThemeContext);",
			},
		},
	}
	return NewQueryService(cat, cat.BuildIndex())
}

func exampleNames(examples []Example) []string {
	names := make([]string, 0, len(examples))
	for _, ex := range examples {
		names = append(names, ex.Name)
	}
	return names
}

// --- ListExamples ---

func TestListExamples(t *testing.T) {
	q := testQueryService()

	tests := []struct {
		name    string
		hook    string
		keyword string
		want    []string
	}{
		{"all", "", "", []string{"counter", "timer", "theme"}},
		{"by hook", "useState", "", []string{"counter", "timer"}},
		{"by keyword", "", "CLEANUP", []string{"timer"}},
		{"hook and keyword", "useState", "click", []string{"counter"}},
		{"no match", "useMemo", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exampleNames(q.ListExamples(tt.hook, tt.keyword)))
		})
	}
}

// --- GetExample / DefaultExample ---

func TestGetExample(t *testing.T) {
	q := testQueryService()

	ex, ok := q.GetExample("timer")
	require.True(t, ok)
	assert.Equal(t, "Timer", ex.Title)

	_, ok = q.GetExample("missing")
	assert.False(t, ok)
}

func TestDefaultExample(t *testing.T) {
	q := testQueryService()

	ex, ok := q.DefaultExample()
	require.True(t, ok)
	assert.Equal(t, "counter", ex.Name)

	q.Catalog.Default = "theme"
	ex, ok = q.DefaultExample()
	require.True(t, ok)
	assert.Equal(t, "theme", ex.Name)

	empty := NewQueryService(&Catalog{}, (&Catalog{}).BuildIndex())
	_, ok = empty.DefaultExample()
	assert.False(t, ok)
}

func TestDialect(t *testing.T) {
	q := testQueryService()
	ex, _ := q.GetExample("timer")

	d, err := q.Dialect(ex)
	require.NoError(t, err)
	assert.Equal(t, parser.Dialect{Language: parser.LanguageTypeScript, TSX: true}, d)
}

// --- SearchExamples ---

func TestSearchExamples(t *testing.T) {
	q := testQueryService()

	tests := []struct {
		query  string
		want   []string
		reason string
	}{
		{"count", []string{"counter"}, "name"},
		{"interval", []string{"timer"}, "description"},
		{"usecontext", []string{"theme"}, "hook"},
		{"clearinterval", []string{"timer"}, "code"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			results := q.SearchExamples(tt.query)
			var names []string
			for _, r := range results {
				names = append(names, r.Example.Name)
				assert.Equal(t, tt.reason, r.MatchReason)
			}
			assert.Equal(t, tt.want, names)
		})
	}

	assert.Nil(t, q.SearchExamples(""))
}

func TestLoadBundledQuery(t *testing.T) {
	q, err := LoadBundledQuery()
	require.NoError(t, err)

	ex, ok := q.DefaultExample()
	require.True(t, ok)
	assert.NotEmpty(t, ex.Code)
}
