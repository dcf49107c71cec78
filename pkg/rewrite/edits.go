package rewrite

import (
	"bytes"
	"sort"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// Piece is one part of a replacement: literal text or a range of the
// original source.
type Piece struct {
	text       string
	start, end uint
	kind       pieceKind
}

type pieceKind int

const (
	pieceText pieceKind = iota
	// pieceSource renders the range with the edits nested inside it applied.
	pieceSource
	// pieceRaw copies the range verbatim, ignoring nested edits.
	pieceRaw
)

// Fragment is a replacement built from pieces. Trees are immutable, so the
// rules describe new nodes as fragments that reference the old source.
type Fragment []Piece

// Text is a literal fragment.
func Text(s string) Fragment {
	return Fragment{{text: s, kind: pieceText}}
}

// Source refers to the text of n after every edit inside it is applied.
func Source(n *ts.Node) Fragment {
	return Fragment{{start: n.StartByte(), end: n.EndByte(), kind: pieceSource}}
}

// Raw refers to the original text of n.
func Raw(n *ts.Node) Fragment {
	return Fragment{{start: n.StartByte(), end: n.EndByte(), kind: pieceRaw}}
}

// Concat joins fragments.
func Concat(parts ...Fragment) Fragment {
	var out Fragment
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Edit replaces the source bytes [Start, End) with Replacement. Start == End
// is an insertion.
type Edit struct {
	Start, End  uint
	Replacement Fragment
}

// Replace replaces the whole of n.
func Replace(n *ts.Node, f Fragment) Edit {
	return Edit{Start: n.StartByte(), End: n.EndByte(), Replacement: f}
}

// ReplaceRange replaces an arbitrary byte range.
func ReplaceRange(start, end uint, f Fragment) Edit {
	return Edit{Start: start, End: end, Replacement: f}
}

// Insert inserts f before the byte at offset at.
func Insert(at uint, f Fragment) Edit {
	return Edit{Start: at, End: at, Replacement: f}
}

// Delete removes [start, end).
func Delete(start, end uint) Edit {
	return Edit{Start: start, End: end}
}

// Apply regenerates source with edits spliced in. Bytes outside every edit
// are copied unchanged.
//
// An edit nested inside another edit is only emitted when the outer
// replacement refers to its range through a Source piece. Edits that
// partially overlap an already emitted edit are dropped.
func Apply(src []byte, edits []Edit) []byte {
	if len(edits) == 0 {
		return append([]byte(nil), src...)
	}

	sorted := append([]Edit(nil), edits...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		// Insertions at a position go before edits starting there.
		ai, bi := a.Start == a.End, b.Start == b.End
		if ai != bi {
			return ai
		}
		return a.End > b.End
	})

	r := renderer{src: src, edits: sorted}
	var buf bytes.Buffer
	buf.Grow(len(src))
	r.render(&buf, 0, uint(len(src)), -1)
	return buf.Bytes()
}

type renderer struct {
	src   []byte
	edits []Edit
}

// render writes src[lo:hi] with the edits contained in that range applied.
// skip is the edit whose replacement is being expanded.
func (r *renderer) render(buf *bytes.Buffer, lo, hi uint, skip int) {
	pos := lo
	for i, e := range r.edits {
		if i == skip || e.Start < pos || e.End > hi {
			continue
		}
		if e.Start > hi {
			break
		}
		buf.Write(r.src[pos:e.Start])
		r.emit(buf, i)
		pos = e.End
	}
	buf.Write(r.src[pos:hi])
}

func (r *renderer) emit(buf *bytes.Buffer, i int) {
	for _, p := range r.edits[i].Replacement {
		switch p.kind {
		case pieceText:
			buf.WriteString(p.text)
		case pieceRaw:
			buf.Write(r.src[p.start:p.end])
		case pieceSource:
			r.render(buf, p.start, p.end, i)
		}
	}
}
