package rewrite

import (
	ts "github.com/tree-sitter/go-tree-sitter"
)

// namedChildren returns the named children of n, skipping comments.
func namedChildren(n *ts.Node) []*ts.Node {
	if n == nil {
		return nil
	}
	count := n.NamedChildCount()
	out := make([]*ts.Node, 0, count)
	for i := uint(0); i < count; i++ {
		child := n.NamedChild(i)
		if child == nil || child.Kind() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return out
}

// isFunctionValue reports whether n is a function usable as an expression.
func isFunctionValue(n *ts.Node) bool {
	if n == nil {
		return false
	}
	switch n.Kind() {
	case "arrow_function", "function_expression", "function":
		return true
	}
	return false
}

// isFunctionScope reports whether n introduces parameters.
func isFunctionScope(n *ts.Node) bool {
	switch n.Kind() {
	case "arrow_function", "function_expression", "function", "function_declaration",
		"generator_function", "generator_function_declaration", "method_definition":
		return true
	}
	return false
}

// isScopeNode reports whether n opens a lexical scope in the symbol table.
func isScopeNode(n *ts.Node) bool {
	if isFunctionScope(n) {
		return true
	}
	switch n.Kind() {
	case "program", "statement_block", "for_statement", "for_in_statement", "catch_clause", "class_body":
		return true
	}
	return false
}

func isAsync(fn *ts.Node) bool {
	for i := uint(0); i < fn.ChildCount(); i++ {
		child := fn.Child(i)
		if child != nil && child.Kind() == "async" {
			return true
		}
	}
	return false
}

// parameterNodes lists the parameter declarations of a function.
func parameterNodes(fn *ts.Node) []*ts.Node {
	if p := fn.ChildByFieldName("parameter"); p != nil {
		return []*ts.Node{p}
	}
	return namedChildren(fn.ChildByFieldName("parameters"))
}

// singleParameter returns the name of the only parameter of fn when it is a
// plain identifier (optionally type-annotated) without a default value.
func singleParameter(fn *ts.Node, src []byte) (string, bool) {
	params := parameterNodes(fn)
	if len(params) != 1 {
		return "", false
	}

	p := params[0]
	switch p.Kind() {
	case "identifier":
		return p.Utf8Text(src), true
	case "required_parameter":
		if p.ChildByFieldName("value") != nil {
			return "", false
		}
		pattern := p.ChildByFieldName("pattern")
		if pattern != nil && pattern.Kind() == "identifier" {
			return pattern.Utf8Text(src), true
		}
	}
	return "", false
}

// patternNames appends every identifier a binding pattern declares.
func patternNames(n *ts.Node, src []byte, out []string) []string {
	if n == nil {
		return out
	}

	switch n.Kind() {
	case "identifier", "shorthand_property_identifier_pattern":
		return append(out, n.Utf8Text(src))
	case "required_parameter", "optional_parameter":
		return patternNames(n.ChildByFieldName("pattern"), src, out)
	case "assignment_pattern", "object_assignment_pattern":
		return patternNames(n.ChildByFieldName("left"), src, out)
	case "pair_pattern":
		return patternNames(n.ChildByFieldName("value"), src, out)
	case "array_pattern", "object_pattern", "rest_pattern", "formal_parameters":
		for _, child := range namedChildren(n) {
			out = patternNames(child, src, out)
		}
	}
	return out
}

// closeParen returns the ")" token of an arguments node.
func closeParen(args *ts.Node) *ts.Node {
	for i := args.ChildCount(); i > 0; i-- {
		child := args.Child(i - 1)
		if child != nil && child.Kind() == ")" {
			return child
		}
	}
	return nil
}
