package parser

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	jsDialect  = Dialect{Language: LanguageJavaScript}
	tsDialect  = Dialect{Language: LanguageTypeScript}
	tsxDialect = Dialect{Language: LanguageTypeScript, TSX: true}
)

func testManager(t *testing.T) *ParserManager {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	manager := NewParserManager(logger)
	t.Cleanup(func() { manager.Close() })
	return manager
}

func TestParseDialects(t *testing.T) {
	manager := testManager(t)

	testCases := []struct {
		name     string
		dialect  Dialect
		source   string
		contains string
	}{
		{"javascript", jsDialect, "const [count, setCount] = useState(0);", "array_pattern"},
		{"jsx", jsDialect, "const App = () => <div>{count}</div>;", "jsx_element"},
		{"typescript", tsDialect, "const [name, setName] = useState<string>('');", "type_arguments"},
		{"tsx", tsxDialect, "const App = (): JSX.Element => <span ref={inputRef} />;", "jsx_self_closing_element"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tree, err := manager.Parse([]byte(tc.source), tc.dialect)
			require.NoError(t, err)
			require.NotNil(t, tree)
			defer tree.Close()

			root := tree.RootNode()
			assert.Equal(t, "program", root.Kind())
			assert.False(t, root.HasError())
			assert.Contains(t, root.ToSexp(), tc.contains)
		})
	}
}

func TestParseFile(t *testing.T) {
	manager := testManager(t)

	for _, name := range []string{"Counter.jsx", "Counter.js", "Counter.ts", "Counter.tsx"} {
		t.Run(name, func(t *testing.T) {
			tree, err := manager.ParseFile([]byte("const x = 1;"), name)
			require.NoError(t, err)
			defer tree.Close()
			assert.Equal(t, "program", tree.RootNode().Kind())
		})
	}

	_, err := manager.ParseFile([]byte("x"), "README.md")
	assert.ErrorIs(t, err, ErrUnknownLanguage)
}

func TestLazyInitialization(t *testing.T) {
	manager := testManager(t)

	assert.Equal(t, 0, manager.GetStats().ParsersCreated)

	source := []byte("const x: number = 1;")
	for i := 0; i < 2; i++ {
		tree, err := manager.Parse(source, tsDialect)
		require.NoError(t, err)
		tree.Close()
	}

	stats := manager.GetStats()
	assert.Equal(t, 1, stats.ParsersCreated, "sequential parses reuse one parser")
	assert.Equal(t, 2, stats.ParsesCalled)
	assert.Equal(t, 1, stats.Pools)

	tree, err := manager.Parse([]byte("const y = 2;"), jsDialect)
	require.NoError(t, err)
	tree.Close()

	stats = manager.GetStats()
	assert.Equal(t, 2, stats.ParsersCreated)
	assert.Equal(t, 2, stats.Pools)
}

func TestParseUnknownLanguage(t *testing.T) {
	manager := testManager(t)

	tree, err := manager.Parse([]byte("text"), Dialect{Language: LanguageUnknown})
	assert.ErrorIs(t, err, ErrUnknownLanguage)
	assert.Nil(t, tree)
}

func TestSyntaxError(t *testing.T) {
	manager := testManager(t)

	testCases := []struct {
		name   string
		source string
		line   int
		clean  bool
	}{
		{name: "clean", source: "const [a, setA] = useState(1);\nsetA(2);\n", clean: true},
		{name: "stray token", source: "const a = 1;\nconst b = ;\n", line: 2},
		{name: "unclosed call", source: "useEffect(() => {\n  run(\n", line: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			src := []byte(tc.source)
			tree, err := manager.Parse(src, jsDialect)
			require.NoError(t, err)
			defer tree.Close()

			issue := SyntaxError(tree, src)
			if tc.clean {
				assert.Nil(t, issue)
				return
			}
			require.NotNil(t, issue)
			assert.GreaterOrEqual(t, issue.Line, tc.line)
			assert.GreaterOrEqual(t, issue.Column, 1)
			assert.NotEmpty(t, issue.Message)
		})
	}
}

func TestDetectDialect(t *testing.T) {
	testCases := []struct {
		path     string
		expected Dialect
		wantErr  bool
	}{
		{path: "a.js", expected: jsDialect},
		{path: "a.jsx", expected: jsDialect},
		{path: "a.mjs", expected: jsDialect},
		{path: "a.ts", expected: tsDialect},
		{path: "a.TSX", expected: tsxDialect},
		{path: "a.vue", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			d, err := DetectDialect(tc.path)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrUnknownLanguage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, d)
		})
	}
}

func TestParseDialect(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"", "js", false},
		{"JavaScript", "js", false},
		{"jsx", "js", false},
		{"ts", "ts", false},
		{"typescript", "ts", false},
		{"tsx", "tsx", false},
		{"python", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			d, err := ParseDialect(tc.input)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrUnknownLanguage)
				assert.Equal(t, LanguageUnknown, ParseLanguageString(tc.input))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, d.String())
		})
	}
}

func TestClose(t *testing.T) {
	manager := NewParserManager(nil)

	for _, d := range []Dialect{jsDialect, tsDialect, tsxDialect} {
		tree, err := manager.Parse([]byte("const x = 1;"), d)
		require.NoError(t, err)
		tree.Close()
	}

	require.NoError(t, manager.Close())
	assert.Empty(t, manager.pools)
}
