package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/hooks2vue/pkg/parser"
	"github.com/gnana997/hooks2vue/pkg/parser/queries"
	"github.com/gnana997/hooks2vue/pkg/rewrite"
	"github.com/gnana997/hooks2vue/pkg/util"
)

const counterSource = `import { useState } from 'react';

export function Counter() {
  const [count, setCount] = useState(0);
  return <button onClick={() => setCount(count + 1)}>{count}</button>;
}
`

const counterOutput = `import { ref } from 'vue';

export function Counter() {
  const count = ref(0);
  return <button onClick={() => count.value = count.value + 1}>{count.value}</button>;
}
`

// --- helpers ---

func newTestConverter(t *testing.T, options ConvertOptions) *Converter {
	t.Helper()
	logger := util.NopLogger()
	pm := parser.NewParserManager(logger)
	qm := queries.NewQueryManager(pm, logger)
	cache := util.NewFileCache(&util.FileCacheConfig{Logger: logger})
	t.Cleanup(func() {
		cache.Close()
		qm.Close()
		pm.Close()
	})

	return NewConverter(rewrite.NewTransformer(pm, qm, logger), cache, options, logger)
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func sampleTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"src/Counter.jsx":             counterSource,
		"src/Counter.vue.jsx":         "stale output",
		"src/util.js":                 "export const add = (a, b) => a + b;\n",
		"src/broken.ts":               "const = ;\n",
		"src/types.d.ts":              "declare const x: number;\n",
		"node_modules/react/index.js": "module.exports = {};\n",
		"README.md":                   "# app\n",
	})
	return root
}

func relPaths(t *testing.T, root string, paths []string) []string {
	t.Helper()
	rels := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		rels = append(rels, filepath.ToSlash(rel))
	}
	return rels
}

// --- Discover ---

func TestDiscover(t *testing.T) {
	root := sampleTree(t)
	conv := newTestConverter(t, DefaultConvertOptions())

	files, err := conv.Discover(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"src/Counter.jsx", "src/broken.ts", "src/util.js"}, relPaths(t, root, files))
}

func TestDiscover_InvalidPattern(t *testing.T) {
	opts := DefaultConvertOptions()
	opts.Include = []string{"src/[a"}
	conv := newTestConverter(t, opts)

	_, err := conv.Discover(t.TempDir())
	assert.ErrorContains(t, err, "invalid include pattern")
}

func TestDiscover_SkipsOutDir(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"src/Counter.jsx": counterSource,
		"out/Counter.jsx": counterOutput,
	})

	opts := DefaultConvertOptions()
	opts.OutDir = filepath.Join(root, "out")
	conv := newTestConverter(t, opts)

	files, err := conv.Discover(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/Counter.jsx"}, relPaths(t, root, files))
}

// --- OutputPath / IsOutput ---

func TestOutputPath(t *testing.T) {
	root := filepath.FromSlash("/app")

	t.Run("suffix", func(t *testing.T) {
		conv := newTestConverter(t, DefaultConvertOptions())
		out, err := conv.OutputPath(root, filepath.FromSlash("/app/src/Counter.tsx"))
		require.NoError(t, err)
		assert.Equal(t, filepath.FromSlash("/app/src/Counter.vue.tsx"), out)

		assert.True(t, conv.IsOutput(out))
		assert.False(t, conv.IsOutput(filepath.FromSlash("/app/src/Counter.tsx")))
	})

	t.Run("out dir", func(t *testing.T) {
		opts := DefaultConvertOptions()
		opts.OutDir = filepath.FromSlash("/dist")
		conv := newTestConverter(t, opts)

		out, err := conv.OutputPath(root, filepath.FromSlash("/app/src/Counter.tsx"))
		require.NoError(t, err)
		assert.Equal(t, filepath.FromSlash("/dist/src/Counter.tsx"), out)
		assert.True(t, conv.IsOutput(out))
	})

	t.Run("outside root", func(t *testing.T) {
		conv := newTestConverter(t, DefaultConvertOptions())
		_, err := conv.OutputPath(root, filepath.FromSlash("/elsewhere/a.js"))
		assert.ErrorContains(t, err, "outside")
	})
}

// --- ConvertTree ---

func TestConvertTree(t *testing.T) {
	root := sampleTree(t)
	conv := newTestConverter(t, DefaultConvertOptions())

	var calls int
	stats, err := conv.ConvertTree(context.Background(), root, func(done, total int, _ string) {
		calls++
		assert.Equal(t, 3, total)
		assert.Equal(t, calls, done)
	})
	require.NoError(t, err)

	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, stats.FilesDiscovered)
	assert.Equal(t, 1, stats.FilesChanged)
	assert.Equal(t, 1, stats.FilesUnchanged)
	assert.Equal(t, 1, stats.FilesFailed)
	assert.Equal(t, 1, stats.FilesWritten)
	assert.Positive(t, stats.Rewrites)
	assert.False(t, stats.Cancelled)

	assert.Equal(t, counterOutput, readFile(t, filepath.Join(root, "src", "Counter.vue.jsx")))
	assert.NoFileExists(t, filepath.Join(root, "src", "util.vue.js"))
	assert.NoFileExists(t, filepath.Join(root, "src", "broken.vue.ts"))

	require.Len(t, stats.Files, 2)
	assert.Equal(t, filepath.Join(root, "src", "Counter.jsx"), stats.Files[0].Path)
	assert.Equal(t, []string{"ref"}, stats.Files[0].APIs)

	require.Len(t, stats.Errors, 1)
	assert.Equal(t, filepath.Join(root, "src", "broken.ts"), stats.Errors[0].FilePath)
	assert.Equal(t, 1, stats.Errors[0].Line)
	assert.ErrorIs(t, stats.Errors[0].Error, rewrite.ErrParse)
}

func TestConvertTree_OutDir(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"src/Counter.jsx": counterSource,
		"src/util.js":     "export const add = (a, b) => a + b;\n",
	})

	opts := DefaultConvertOptions()
	opts.OutDir = filepath.Join(root, "vue")
	conv := newTestConverter(t, opts)

	stats, err := conv.ConvertTree(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.FilesWritten, "unchanged files are mirrored too")
	assert.Equal(t, counterOutput, readFile(t, filepath.Join(root, "vue", "src", "Counter.jsx")))
	assert.Equal(t, "export const add = (a, b) => a + b;\n", readFile(t, filepath.Join(root, "vue", "src", "util.js")))

	// A second run does not pick up its own outputs.
	stats, err = conv.ConvertTree(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.FilesDiscovered)
}

func TestConvertTree_DryRun(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"Counter.jsx": counterSource})

	opts := DefaultConvertOptions()
	opts.DryRun = true
	conv := newTestConverter(t, opts)

	stats, err := conv.ConvertTree(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesChanged)
	assert.Equal(t, 0, stats.FilesWritten)
	assert.Equal(t, int64(len(counterOutput)), stats.BytesOut)
	assert.NoFileExists(t, filepath.Join(root, "Counter.vue.jsx"))
}

func TestConvertTree_Empty(t *testing.T) {
	conv := newTestConverter(t, DefaultConvertOptions())

	stats, err := conv.ConvertTree(context.Background(), t.TempDir(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.FilesDiscovered)
	assert.Empty(t, stats.Files)
}

func TestConvertTree_Cancelled(t *testing.T) {
	root := t.TempDir()
	files := make(map[string]string)
	for i := 0; i < 64; i++ {
		files[fmt.Sprintf("c%02d.jsx", i)] = counterSource
	}
	writeFiles(t, root, files)

	opts := DefaultConvertOptions()
	opts.Workers = 2
	conv := newTestConverter(t, opts)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := conv.ConvertTree(ctx, root, nil)
	require.NoError(t, err)
	assert.True(t, stats.Cancelled)
	assert.Less(t, len(stats.Files)+len(stats.Errors), 64)
}

// --- ConvertFile ---

func TestConvertFile_RemovesStaleOutput(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"Counter.jsx": counterSource})
	conv := newTestConverter(t, DefaultConvertOptions())
	src := filepath.Join(root, "Counter.jsx")

	report, err := conv.ConvertFile(root, src)
	require.NoError(t, err)
	assert.True(t, report.Written)
	assert.FileExists(t, report.Output)

	// Hooks removed from the source: the output goes away.
	writeFiles(t, root, map[string]string{"Counter.jsx": "export const Counter = () => null;\n"})
	conv.Cache().Invalidate(src)

	report, err = conv.ConvertFile(root, src)
	require.NoError(t, err)
	assert.False(t, report.Changed)
	assert.False(t, report.Written)
	assert.NoFileExists(t, report.Output)
}

func TestConvertFile_UnknownExtension(t *testing.T) {
	conv := newTestConverter(t, DefaultConvertOptions())
	_, err := conv.ConvertFile("/app", "/app/styles.css")
	assert.ErrorIs(t, err, parser.ErrUnknownLanguage)
}

func TestRemoveOutput(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.vue.js": "x"})
	conv := newTestConverter(t, DefaultConvertOptions())

	require.NoError(t, conv.RemoveOutput(root, filepath.Join(root, "a.js")))
	assert.NoFileExists(t, filepath.Join(root, "a.vue.js"))

	// Missing outputs are not an error.
	assert.NoError(t, conv.RemoveOutput(root, filepath.Join(root, "a.js")))
}

// --- WorkerPool ---

func TestWorkerPool_Errors(t *testing.T) {
	conv := newTestConverter(t, DefaultConvertOptions())

	pool := NewWorkerPool(context.Background(), 4, conv, util.NopLogger())
	pool.Start()
	defer pool.Stop()

	missing := []string{"/nowhere/a.ts", "/nowhere/b.ts", "/nowhere/c.ts"}
	for i, file := range missing {
		require.NoError(t, pool.Submit(FileJob{Root: "/nowhere", FilePath: file, JobID: i}))
	}
	pool.FinishSubmitting()

	errorCount := 0
	for range missing {
		select {
		case <-pool.Results():
			t.Fatal("missing files must not produce results")
		case fe := <-pool.Errors():
			assert.ErrorContains(t, fe.Error, "failed to read file")
			errorCount++
		}
	}

	assert.Equal(t, len(missing), errorCount)
	stats := pool.GetStats()
	assert.Equal(t, int64(3), stats.JobsSubmitted)
	assert.Equal(t, int64(3), stats.JobsFailed)
}

func TestWorkerPool_SubmitAfterStop(t *testing.T) {
	conv := newTestConverter(t, DefaultConvertOptions())
	pool := NewWorkerPool(context.Background(), 1, conv, util.NopLogger())
	pool.Start()
	pool.Stop()
	pool.Stop()

	assert.Error(t, pool.Submit(FileJob{FilePath: "a.js"}))
}
