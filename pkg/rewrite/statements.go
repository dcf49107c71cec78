package rewrite

import (
	ts "github.com/tree-sitter/go-tree-sitter"
)

// Removal describes a function body with one statement taken out.
type Removal struct {
	// Body is the statement block of the function.
	Body *ts.Node
	// Removed is the first statement of the requested kind, nil if none.
	Removed *ts.Node
	// Remaining lists the other top-level statements in order.
	Remaining []*ts.Node
}

// RemoveFirstStatement splits the first top-level statement of the given
// kind out of fn's body. Nested statements are not searched. A function
// whose body is an expression fails with ErrUnsupportedBody.
func RemoveFirstStatement(fn *ts.Node, kind string) (Removal, error) {
	body := fn.ChildByFieldName("body")
	if body == nil || body.Kind() != "statement_block" {
		at := fn
		if body != nil {
			at = body
		}
		return Removal{}, errorAt(at, ErrUnsupportedBody,
			"cannot remove %s: function body is not a block statement", kind)
	}

	r := Removal{Body: body}
	for _, stmt := range namedChildren(body) {
		if r.Removed == nil && stmt.Kind() == kind {
			r.Removed = stmt
			continue
		}
		r.Remaining = append(r.Remaining, stmt)
	}
	return r, nil
}

// RemoveReturnStatement removes the first top-level return statement.
func RemoveReturnStatement(fn *ts.Node) (Removal, error) {
	return RemoveFirstStatement(fn, "return_statement")
}

// returnedValue is the expression of a return statement, nil for a bare
// `return;`.
func returnedValue(stmt *ts.Node) *ts.Node {
	if stmt == nil {
		return nil
	}
	if values := namedChildren(stmt); len(values) > 0 {
		return values[0]
	}
	return nil
}
