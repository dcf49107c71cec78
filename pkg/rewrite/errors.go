package rewrite

import (
	"errors"
	"fmt"

	ts "github.com/tree-sitter/go-tree-sitter"
)

var (
	// ErrParse marks source that does not parse cleanly.
	ErrParse = errors.New("parse error")
	// ErrUnsupportedBody marks a function whose body is not a block where a
	// block is required.
	ErrUnsupportedBody = errors.New("unsupported function body")
)

// Error is a positioned transform failure. Line and Column are 1-based.
type Error struct {
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func errorAt(n *ts.Node, kind error, format string, args ...any) *Error {
	pos := n.StartPosition()
	return &Error{
		Line:    int(pos.Row) + 1,
		Column:  int(pos.Column) + 1,
		Message: fmt.Sprintf(format, args...),
		Err:     kind,
	}
}
