package rewrite

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/hooks2vue/pkg/parser"
	"github.com/gnana997/hooks2vue/pkg/parser/queries"
	"github.com/gnana997/hooks2vue/pkg/util"
)

func testTransformer(t *testing.T) *Transformer {
	t.Helper()
	pm := parser.NewParserManager(util.NopLogger())
	qm := queries.NewQueryManager(pm, util.NopLogger())
	t.Cleanup(func() {
		qm.Close()
		pm.Close()
	})
	return NewTransformer(pm, qm, util.NopLogger())
}

func transformJS(t *testing.T, tr *Transformer, src string) string {
	t.Helper()
	result, err := tr.Transform([]byte(src), DefaultOptions())
	require.NoError(t, err)
	return result.Code
}

func TestTransform_Scenarios(t *testing.T) {
	tr := testTransformer(t)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "primitive state and setter",
			input:    "const [input, setInput] = useState('abc'); setInput('def');",
			expected: "const input = ref('abc'); input.value = 'def';",
		},
		{
			name:     "reference state and setter",
			input:    "const [items, setItems] = useState([]); setItems([...items, 5]);",
			expected: "const items = reactive([]); items = [...items, 5];",
		},
		{
			name:     "identity updater",
			input:    "const [any, setAny] = useState(0); setAny(c => c);",
			expected: "const any = ref(0); any.value = any.value;",
		},
		{
			name:     "increment updater",
			input:    "const [x, setX] = useState(1); setX(c => c + 1);",
			expected: "const x = ref(1); x.value = x.value + 1;",
		},
		{
			name:     "updater with block body",
			input:    "const [n, setN] = useState(1); setN(prev => { return prev * 2; });",
			expected: "const n = ref(1); n.value = n.value * 2;",
		},
		{
			name:     "parameterless updater",
			input:    "const [n, setN] = useState(1); setN(() => 0);",
			expected: "const n = ref(1); n.value = 0;",
		},
		{
			name:     "reference updater",
			input:    "const [list, setList] = useState([]); setList(prev => [...prev, 1]);",
			expected: "const list = reactive([]); list = [...list, 1];",
		},
		{
			name:     "setter argument reads state",
			input:    "const [n, setN] = useState(0); setN(n + 1);",
			expected: "const n = ref(0); n.value = n.value + 1;",
		},
		{
			name:     "updater parameter shadowed in nested function",
			input:    "const [n, setN] = useState(0); setN(p => p + [1].map(p => p).length);",
			expected: "const n = ref(0); n.value = n.value + [1].map(p => p).length;",
		},
		{
			name:     "primitive reads",
			input:    "const [name, setName] = useState(''); console.log(name); const o = { name };",
			expected: "const name = ref(''); console.log(name.value); const o = { name: name.value };",
		},
		{
			name:     "negative number and null are primitive",
			input:    "const [a, setA] = useState(-1); const [b, setB] = useState(null);",
			expected: "const a = ref(-1); const b = ref(null);",
		},
		{
			name:     "object and call initializers are reference",
			input:    "const [a, setA] = useState({ x: 1 }); const [b, setB] = useState(load());",
			expected: "const a = reactive({ x: 1 }); const b = reactive(load());",
		},
		{
			name:     "useRef and current",
			input:    "const inputRef = useRef(null); inputRef.current.focus();",
			expected: "const inputRef = ref(null); inputRef.value.focus();",
		},
		{
			name:     "useMemo drops deps",
			input:    "const [count, setCount] = useState(2); const doubled = useMemo(() => count * 2, [count]);",
			expected: "const count = ref(2); const doubled = computed(() => count.value * 2);",
		},
		{
			name:     "useMemo with empty deps",
			input:    "const total = useMemo(() => items.length, []);",
			expected: "const total = computed(() => items.length);",
		},
		{
			name:     "useCallback unwraps",
			input:    "const [count, setCount] = useState(0); const inc = useCallback(() => setCount(c => c + 1), []);",
			expected: "const count = ref(0); const inc = () => count.value = count.value + 1;",
		},
		{
			name:     "useEffect without deps",
			input:    "const [title, setTitle] = useState(''); useEffect(() => { document.title = title; });",
			expected: "const title = ref(''); watchEffect(() => { document.title = title.value; });",
		},
		{
			name:     "useEffect with deps",
			input:    "const [count, setCount] = useState(0); useEffect(() => { console.log(count); }, [count]);",
			expected: "const count = ref(0); watch([count], () => { console.log(count.value); });",
		},
		{
			name:     "useContext",
			input:    "const theme = useContext(ThemeContext);",
			expected: "const theme = inject(ThemeContext);",
		},
		{
			name:     "setter in expression position is parenthesized",
			input:    "const [n, setN] = useState(0); const r = 1 + setN(2);",
			expected: "const n = ref(0); const r = 1 + (n.value = 2);",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, transformJS(t, tr, tt.input))
		})
	}
}

func TestTransform_MountEffect(t *testing.T) {
	tr := testTransformer(t)

	t.Run("cleanup becomes onUnmounted", func(t *testing.T) {
		input := `function Feed() {
  useEffect(() => {
    subscribe(onMessage);
    return () => unsubscribe(onMessage);
  }, []);
}
`
		expected := `function Feed() {
  onMounted(() => {
    subscribe(onMessage);
  });
  onUnmounted(() => unsubscribe(onMessage));
}
`
		result, err := tr.Transform([]byte(input), DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, expected, result.Code)
		assert.Equal(t, []string{APIOnMounted, APIOnUnmounted}, result.APIs)
	})

	t.Run("cleanup over callback locals stays in onMounted", func(t *testing.T) {
		input := `function Clock() {
  useEffect(() => {
    const id = setInterval(tick, 1000);
    return () => clearInterval(id);
  }, []);
}
`
		expected := `function Clock() {
  onMounted(() => {
    const id = setInterval(tick, 1000);
    onUnmounted(() => clearInterval(id));
  });
}
`
		result, err := tr.Transform([]byte(input), DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, expected, result.Code)
		assert.Equal(t, []string{APIOnMounted, APIOnUnmounted}, result.APIs)
	})

	t.Run("returned local function stays in onMounted", func(t *testing.T) {
		input := "useEffect(() => { const stop = start(); return stop; }, []);"
		expected := "onMounted(() => { const stop = start(); onUnmounted(stop); });"
		assert.Equal(t, expected, transformJS(t, tr, input))
	})

	t.Run("cleanup with its own parameters is hoisted", func(t *testing.T) {
		input := `function F() {
  useEffect(() => {
    go();
    return id => stop(id);
  }, []);
}`
		expected := `function F() {
  onMounted(() => {
    go();
  });
  onUnmounted(id => stop(id));
}`
		assert.Equal(t, expected, transformJS(t, tr, input))
	})

	t.Run("without return", func(t *testing.T) {
		input := "useEffect(() => { start(); }, []);"
		assert.Equal(t, "onMounted(() => { start(); });", transformJS(t, tr, input))
	})

	t.Run("bare return is dropped", func(t *testing.T) {
		input := "useEffect(() => {\n  start();\n  return;\n}, []);"
		assert.Equal(t, "onMounted(() => {\n  start();\n});", transformJS(t, tr, input))
	})

	t.Run("expression body is fatal", func(t *testing.T) {
		_, err := tr.Transform([]byte("useEffect(() => 1, []);"), DefaultOptions())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnsupportedBody))

		var rerr *Error
		require.True(t, errors.As(err, &rerr))
		assert.Equal(t, 1, rerr.Line)
		assert.Equal(t, 17, rerr.Column)
	})
}

func TestTransform_SetterAsValue(t *testing.T) {
	tr := testTransformer(t)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "jsx handler",
			input:    "const [d, setD] = useState(''); const el = <input onChange={setD} />;",
			expected: "const d = ref(''); const el = <input onChange={v => d.value = v} />;",
		},
		{
			name:     "callback argument",
			input:    "const [items, setItems] = useState([]); load().then(setItems);",
			expected: "const items = reactive([]); load().then(v => items = v);",
		},
		{
			name:     "shorthand property",
			input:    "const [v, setV] = useState(0); register({ setV });",
			expected: "const v = ref(0); register({ setV: next => v.value = next });",
		},
		{
			name:     "member access is parenthesized",
			input:    "const [n, setN] = useState(0); const f = setN.bind(null);",
			expected: "const n = ref(0); const f = (v => n.value = v).bind(null);",
		},
		{
			name:     "state name shadowed",
			input:    "const [n, setN] = useState(0);\nfunction g(n) { return [setN]; }",
			expected: "const n = ref(0);\nfunction g(n) { return [setN]; }",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, transformJS(t, tr, tt.input))
		})
	}
}

func TestTransform_LeavesUnmatchedShapes(t *testing.T) {
	tr := testTransformer(t)

	tests := []struct {
		name  string
		input string
	}{
		{"no hooks", "const a = 1;\nfunction f(x) { return x * 2; }\n"},
		{"useState without arguments", "const [a, setA] = useState();"},
		{"three element pattern", "const [a, setA, extra] = useState(0);"},
		{"member call", "const [a, setA] = React.useState(0);"},
		{"unresolved setter", "setCount(1);"},
		{"useMemo with non-function", "const v = useMemo(compute, []);"},
		{"useCallback with non-function", "const f = useCallback(handler, [a]);"},
		{"useContext without arguments", "const c = useContext();"},
		{"useEffect with non-function", "useEffect(run, []);"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tr.Transform([]byte(tt.input), DefaultOptions())
			require.NoError(t, err)
			assert.Equal(t, tt.input, result.Code)
			assert.False(t, result.Changed)
		})
	}
}

func TestTransform_Scoping(t *testing.T) {
	tr := testTransformer(t)

	t.Run("setter before declaration is untouched", func(t *testing.T) {
		input := "function f() { setN(1); const [n, setN] = useState(0); }"
		expected := "function f() { setN(1); const n = ref(0); }"
		assert.Equal(t, expected, transformJS(t, tr, input))
	})

	t.Run("read before declaration in the same body is untouched", func(t *testing.T) {
		input := "function f() { log(n); const [n, setN] = useState(0); }"
		expected := "function f() { log(n); const n = ref(0); }"
		assert.Equal(t, expected, transformJS(t, tr, input))
	})

	t.Run("function declared before state reads it later", func(t *testing.T) {
		input := "function App() { function show() { return n; } const [n, setN] = useState(0); }"
		expected := "function App() { function show() { return n.value; } const n = ref(0); }"
		assert.Equal(t, expected, transformJS(t, tr, input))
	})

	t.Run("arrow declared before state sets it later", func(t *testing.T) {
		input := "function App() { const inc = () => setN(n + 1); const [n, setN] = useState(0); }"
		expected := "function App() { const inc = () => n.value = n.value + 1; const n = ref(0); }"
		assert.Equal(t, expected, transformJS(t, tr, input))
	})

	t.Run("shadowing parameter", func(t *testing.T) {
		input := "const [count, setCount] = useState(0);\nfunction show(count) { return count; }\nshow(count);"
		expected := "const count = ref(0);\nfunction show(count) { return count; }\nshow(count.value);"
		assert.Equal(t, expected, transformJS(t, tr, input))
	})

	t.Run("shadowing setter", func(t *testing.T) {
		input := "const [n, setN] = useState(0);\nfunction g(setN) { setN(5); }"
		expected := "const n = ref(0);\nfunction g(setN) { setN(5); }"
		assert.Equal(t, expected, transformJS(t, tr, input))
	})

	t.Run("nested scope resolves outward", func(t *testing.T) {
		input := "function App() {\n  const [on, setOn] = useState(false);\n  const toggle = () => { setOn(v => !v); };\n}"
		expected := "function App() {\n  const on = ref(false);\n  const toggle = () => { on.value = !on.value; };\n}"
		assert.Equal(t, expected, transformJS(t, tr, input))
	})

	t.Run("separate components keep separate bindings", func(t *testing.T) {
		input := "function A() { const [v, setV] = useState(0); setV(1); }\nfunction B() { const [v, setV] = useState([]); setV([2]); }"
		expected := "function A() { const v = ref(0); v.value = 1; }\nfunction B() { const v = reactive([]); v = [2]; }"
		assert.Equal(t, expected, transformJS(t, tr, input))
	})

	t.Run("state name shadowed at setter call", func(t *testing.T) {
		input := "const [n, setN] = useState(0);\nfunction g() { let n = 5; setN(1); }"
		expected := "const n = ref(0);\nfunction g() { let n = 5; setN(1); }"
		assert.Equal(t, expected, transformJS(t, tr, input))
	})

	t.Run("updater substitution would be captured", func(t *testing.T) {
		input := "const [n, setN] = useState(0); setN(p => [1].map(n => n + p).length);"
		expected := "const n = ref(0); setN(p => [1].map(n => n + p).length);"
		assert.Equal(t, expected, transformJS(t, tr, input))
	})

	t.Run("redeclared name is ambiguous", func(t *testing.T) {
		input := "const [n, setN] = useState(0); var n; setN(1);"
		expected := "const n = ref(0); var n; setN(1);"
		assert.Equal(t, expected, transformJS(t, tr, input))
	})
}

func TestTransform_Imports(t *testing.T) {
	tr := testTransformer(t)

	t.Run("consumed import becomes vue import", func(t *testing.T) {
		input := `import React, { useState, useEffect } from 'react';

export function Counter() {
  const [count, setCount] = useState(0);
  useEffect(() => {
    console.log(count);
  }, [count]);
  return <button onClick={() => setCount(count + 1)}>{count}</button>;
}
`
		expected := `import { ref, watch } from 'vue';

export function Counter() {
  const count = ref(0);
  watch([count], () => {
    console.log(count.value);
  });
  return <button onClick={() => count.value = count.value + 1}>{count.value}</button>;
}
`
		result, err := tr.Transform([]byte(input), DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, expected, result.Code)
		assert.Equal(t, map[string]int{"useState": 1, "useEffect": 1, "setter": 1, "state-read": 3}, result.Rewrites)
	})

	t.Run("quote style and missing semicolon are kept", func(t *testing.T) {
		input := "import { useRef } from \"react\"\nconst r = useRef(0)\n"
		expected := "import { ref } from \"vue\"\nconst r = ref(0)\n"
		assert.Equal(t, expected, transformJS(t, tr, input))
	})

	t.Run("import with other bindings is kept", func(t *testing.T) {
		input := "import { useState, memo } from 'react';\nconst [a, setA] = useState(1);\n"
		expected := "import { useState, memo } from 'react';\nimport { ref } from 'vue';\nconst a = ref(1);\n"
		assert.Equal(t, expected, transformJS(t, tr, input))
	})

	t.Run("partially consumed hook keeps import", func(t *testing.T) {
		input := "import { useState } from 'react';\nconst [a, setA] = useState(1);\nconst [b] = useState(2);\n"
		expected := "import { useState } from 'react';\nimport { ref } from 'vue';\nconst a = ref(1);\nconst [b] = useState(2);\n"
		assert.Equal(t, expected, transformJS(t, tr, input))
	})

	t.Run("import without vue usage is removed", func(t *testing.T) {
		input := "import { useCallback } from 'react';\nconst f = useCallback(() => 1, []);\n"
		expected := "const f = () => 1;\n"
		assert.Equal(t, expected, transformJS(t, tr, input))
	})

	t.Run("disabled", func(t *testing.T) {
		input := "import { useRef } from 'react';\nconst r = useRef(0);\n"
		opts := DefaultOptions()
		opts.RewriteImports = false
		result, err := tr.Transform([]byte(input), opts)
		require.NoError(t, err)
		assert.Equal(t, "import { useRef } from 'react';\nconst r = ref(0);\n", result.Code)
	})
}

func TestTransform_TypeScript(t *testing.T) {
	tr := testTransformer(t)

	input := `import { useState, useRef } from 'react';

export function Field(): JSX.Element {
  const [value, setValue] = useState<string>('');
  const input = useRef<HTMLInputElement>(null);
  return <input ref={input} value={value} onChange={e => setValue(e.target.value)} />;
}
`
	expected := `import { ref } from 'vue';

export function Field(): JSX.Element {
  const value = ref<string>('');
  const input = ref<HTMLInputElement>(null);
  return <input ref={input} value={value.value} onChange={e => value.value = e.target.value} />;
}
`
	result, err := tr.TransformFile("Field.tsx", []byte(input), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, expected, result.Code)
	assert.Equal(t, []string{APIRef}, result.APIs)
}

func TestTransform_ParseError(t *testing.T) {
	tr := testTransformer(t)

	_, err := tr.Transform([]byte("const [a, setA = useState(0);\n"), DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParse))

	var rerr *Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, 1, rerr.Line)
	assert.Positive(t, rerr.Column)
	assert.NotEmpty(t, rerr.Message)
}

func TestTransform_UnknownExtension(t *testing.T) {
	tr := testTransformer(t)

	_, err := tr.TransformFile("notes.txt", []byte("x"), DefaultOptions())
	assert.ErrorIs(t, err, parser.ErrUnknownLanguage)
}

func TestTransform_Idempotent(t *testing.T) {
	tr := testTransformer(t)

	inputs := []string{
		"const [input, setInput] = useState('abc'); setInput('def');",
		"const r = useRef(0); r.current = 1; useEffect(() => { r.current++; }, [r]);",
		"const v = useMemo(() => 1, []); const f = useCallback(() => v, [v]);",
	}
	for _, input := range inputs {
		once := transformJS(t, tr, input)
		assert.Equal(t, once, transformJS(t, tr, once), "input: %s", input)
	}
}

func TestTransform_Concurrent(t *testing.T) {
	tr := testTransformer(t)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := tr.Transform([]byte("const [a, setA] = useState(0); setA(a + 1);"), DefaultOptions())
			if err != nil {
				errs <- err
				return
			}
			if result.Code != "const a = ref(0); a.value = a.value + 1;" {
				errs <- errors.New("unexpected output: " + result.Code)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
