package playground

import (
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op is the kind of a diff hunk.
type Op string

const (
	OpEqual  Op = "equal"
	OpInsert Op = "insert"
	OpDelete Op = "delete"
)

// Hunk is a run of lines with the same Op. OldStart and NewStart are the
// 1-based line numbers of the hunk's first line in each text.
type Hunk struct {
	Op       Op       `json:"op"`
	Lines    []string `json:"lines"`
	OldStart int      `json:"old_start"`
	NewStart int      `json:"new_start"`
}

// DiffResult is a line diff of a transform's input against its output.
type DiffResult struct {
	Hunks    []Hunk `json:"hunks"`
	Inserted int    `json:"inserted"`
	Deleted  int    `json:"deleted"`
}

// Empty reports whether both texts were identical.
func (d *DiffResult) Empty() bool {
	return d.Inserted == 0 && d.Deleted == 0
}

// Diff computes a line-level diff.
func Diff(before, after string) *DiffResult {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	result := &DiffResult{}
	oldLine, newLine := 1, 1
	for _, d := range diffs {
		text := splitLines(d.Text)
		if len(text) == 0 {
			continue
		}
		h := Hunk{Lines: text, OldStart: oldLine, NewStart: newLine}
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			h.Op = OpEqual
			oldLine += len(text)
			newLine += len(text)
		case diffmatchpatch.DiffInsert:
			h.Op = OpInsert
			newLine += len(text)
			result.Inserted += len(text)
		case diffmatchpatch.DiffDelete:
			h.Op = OpDelete
			oldLine += len(text)
			result.Deleted += len(text)
		}
		result.Hunks = append(result.Hunks, h)
	}
	return result
}

// splitLines splits text into lines without their terminators.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

// RenderOptions controls Unified output.
type RenderOptions struct {
	// Context is the number of unchanged lines kept around each change.
	Context int
	Color   bool
}

// Unified renders the diff with +/- line prefixes. Long runs of unchanged
// lines are cut down to Context lines on each side, and an
// `@@ -old +new @@` marker shows where the output resumes.
func (d *DiffResult) Unified(opts RenderOptions) string {
	add := color.New(color.FgGreen)
	del := color.New(color.FgRed)
	sep := color.New(color.FgCyan)
	if !opts.Color {
		add.DisableColor()
		del.DisableColor()
		sep.DisableColor()
	}

	if d.Empty() {
		return ""
	}

	var b strings.Builder
	for i, h := range d.Hunks {
		switch h.Op {
		case OpInsert:
			for _, l := range h.Lines {
				b.WriteString(add.Sprint("+"+l) + "\n")
			}
		case OpDelete:
			for _, l := range h.Lines {
				b.WriteString(del.Sprint("-"+l) + "\n")
			}
		case OpEqual:
			head, tail := opts.Context, opts.Context
			if i == 0 {
				head = 0
			}
			if i == len(d.Hunks)-1 {
				tail = 0
			}
			if len(h.Lines) <= head+tail {
				writeContext(&b, h.Lines)
				continue
			}
			writeContext(&b, h.Lines[:head])
			if tail == 0 {
				continue
			}
			skip := len(h.Lines) - tail
			b.WriteString(sep.Sprintf("@@ -%d +%d @@", h.OldStart+skip, h.NewStart+skip) + "\n")
			writeContext(&b, h.Lines[skip:])
		}
	}
	return b.String()
}

func writeContext(b *strings.Builder, lines []string) {
	for _, l := range lines {
		b.WriteString(" " + l + "\n")
	}
}
