package parser

import (
	"fmt"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// SyntaxIssue is the first ERROR or MISSING node of a tree, with a 1-based
// position.
type SyntaxIssue struct {
	Line    int
	Column  int
	Message string
	Node    *ts.Node
}

// SyntaxError returns the first ERROR or MISSING node in pre-order, or nil
// when the tree is clean.
func SyntaxError(tree *ts.Tree, source []byte) *SyntaxIssue {
	if tree == nil {
		return nil
	}
	root := tree.RootNode()
	if !root.HasError() {
		return nil
	}

	node := firstErrorNode(root)
	if node == nil {
		// HasError without a reachable ERROR node; report the root.
		node = root
	}

	pos := node.StartPosition()
	return &SyntaxIssue{
		Line:    int(pos.Row) + 1,
		Column:  int(pos.Column) + 1,
		Message: describeErrorNode(node, source),
		Node:    node,
	}
}

func firstErrorNode(node *ts.Node) *ts.Node {
	if node.IsError() || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if found := firstErrorNode(child); found != nil {
			return found
		}
	}
	return nil
}

func describeErrorNode(node *ts.Node, source []byte) string {
	if node.IsMissing() {
		return fmt.Sprintf("missing %s", node.Kind())
	}

	text := strings.TrimSpace(node.Utf8Text(source))
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	const maxSnippet = 24
	if len(text) > maxSnippet {
		text = text[:maxSnippet] + "..."
	}
	if text == "" {
		return "unexpected end of input"
	}
	return fmt.Sprintf("unexpected %q", text)
}
