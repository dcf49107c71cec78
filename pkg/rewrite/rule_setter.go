package rewrite

import (
	ts "github.com/tree-sitter/go-tree-sitter"
)

// setterRule turns `setValue(next)` into an assignment to the state binding.
// Updater functions are inlined: `setValue(c => c + 1)` becomes
// `value.value = value.value + 1`.
type setterRule struct{}

func (setterRule) Name() string    { return "setter" }
func (setterRule) Kinds() []string { return []string{"call_expression"} }

func (setterRule) Apply(ctx *Context, node *ts.Node) (*Mutation, error) {
	callee := node.ChildByFieldName("function")
	if callee == nil || callee.Kind() != "identifier" {
		return nil, nil
	}
	b := ctx.Resolve(callee)
	if b == nil || b.Kind != HookState || b.Setter != ctx.Text(callee) {
		return nil, nil
	}
	// The assignment target is spelled with the state name, which must
	// reach the same binding from here.
	if ctx.Scope.Resolve(b.Name) != b {
		return nil, nil
	}

	argList := node.ChildByFieldName("arguments")
	if argList == nil || argList.Kind() != "arguments" {
		return nil, nil
	}
	args := namedChildren(argList)
	if len(args) != 1 || args[0].Kind() == "spread_element" {
		return nil, nil
	}
	arg := args[0]

	edits := []Edit{}
	rhs := Source(arg)
	if isFunctionValue(arg) {
		expr, param, ok := updaterExpression(arg, ctx.Source)
		if !ok {
			return nil, nil
		}
		rhs = Source(expr)
		if param != "" {
			subst, ok := substituteParam(ctx, arg, expr, param, b)
			if !ok {
				return nil, nil
			}
			edits = append(edits, subst...)
		}
	}

	assign := Assignment(b.Accessor(), rhs)
	if needsParens(node) {
		assign = Parenthesized(assign)
	}
	return &Mutation{Edits: append([]Edit{Replace(node, assign)}, edits...)}, nil
}

// setterValueRule replaces a setter passed around as a value with an
// equivalent function: `onChange={setValue}` becomes
// `onChange={v => value.value = v}`. Calls are left to setterRule.
type setterValueRule struct{}

func (setterValueRule) Name() string { return "setter-value" }
func (setterValueRule) Kinds() []string {
	return []string{"identifier", "shorthand_property_identifier"}
}

// Parents under which an arrow function needs no parentheses.
var functionValueContexts = map[string]bool{
	"arguments":                true,
	"jsx_expression":           true,
	"variable_declarator":      true,
	"pair":                     true,
	"array":                    true,
	"return_statement":         true,
	"parenthesized_expression": true,
}

func (setterValueRule) Apply(ctx *Context, node *ts.Node) (*Mutation, error) {
	parent := node.Parent()
	if parent == nil || nonReadParents[parent.Kind()] || isDepsArray(parent, ctx.Source) {
		return nil, nil
	}
	if parent.Kind() == "call_expression" {
		if callee := parent.ChildByFieldName("function"); callee != nil && callee.Id() == node.Id() {
			return nil, nil
		}
	}

	name := ctx.Text(node)
	b := ctx.Resolve(node)
	if b == nil || b.Kind != HookState || b.Setter != name {
		return nil, nil
	}
	if ctx.Scope.Resolve(b.Name) != b {
		return nil, nil
	}

	param := "v"
	if b.Name == param {
		param = "next"
	}
	fn := Concat(Text(param+" => "), Assignment(b.Accessor(), Text(param)))

	switch {
	case node.Kind() == "shorthand_property_identifier":
		fn = Concat(Text(name+": "), fn)
	case parent.Kind() == "assignment_expression":
		if right := parent.ChildByFieldName("right"); right == nil || right.Id() != node.Id() {
			return nil, nil
		}
	case !functionValueContexts[parent.Kind()]:
		fn = Parenthesized(fn)
	}
	return &Mutation{Edits: []Edit{Replace(node, fn)}}, nil
}

// updaterExpression returns the value an updater function computes and its
// parameter name ("" for a parameterless updater). The body must be an
// expression or a block holding a single `return <expr>`.
func updaterExpression(fn *ts.Node, src []byte) (*ts.Node, string, bool) {
	if isAsync(fn) {
		return nil, "", false
	}

	var param string
	if params := parameterNodes(fn); len(params) > 0 {
		name, ok := singleParameter(fn, src)
		if !ok {
			return nil, "", false
		}
		param = name
	}

	body := fn.ChildByFieldName("body")
	if body == nil {
		return nil, "", false
	}
	if body.Kind() != "statement_block" {
		return body, param, true
	}

	stmts := namedChildren(body)
	if len(stmts) != 1 || stmts[0].Kind() != "return_statement" {
		return nil, "", false
	}
	value := returnedValue(stmts[0])
	if value == nil {
		return nil, "", false
	}
	return value, param, true
}

// substituteParam replaces every reference to the updater parameter inside
// expr with the binding's accessor. References shadowed by a nested
// declaration of the same name are left alone. It fails when a nested
// declaration would capture the state name at a substitution site.
func substituteParam(ctx *Context, fn, expr *ts.Node, param string, b *Binding) ([]Edit, bool) {
	fnScope, ok := ctx.Symbols.ScopeAt(fn)
	if !ok {
		return nil, false
	}

	var edits []Edit
	captured := false
	var walk func(n *ts.Node, cur *Scope)
	walk = func(n *ts.Node, cur *Scope) {
		if s, ok := ctx.Symbols.ScopeAt(n); ok {
			cur = s
		}
		switch n.Kind() {
		case "identifier", "shorthand_property_identifier":
			if ctx.Text(n) != param || declaringScope(cur, param) != fnScope {
				return
			}
			if declaresBetween(cur, fnScope, b.Name) {
				captured = true
				return
			}
			if n.Kind() == "identifier" {
				edits = append(edits, Replace(n, b.Accessor()))
			} else {
				edits = append(edits, Replace(n, Concat(Text(param+": "), b.Accessor())))
			}
			return
		}
		for _, child := range allChildren(n) {
			walk(child, cur)
		}
	}
	walk(expr, fnScope)
	return edits, !captured
}

// declaringScope returns the innermost scope from s outward that declares
// name.
func declaringScope(s *Scope, name string) *Scope {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.locals[name] > 0 || len(cur.hooks[name]) > 0 {
			return cur
		}
	}
	return nil
}

// declaresBetween reports whether a scope from inner up to, but excluding,
// outer declares name.
func declaresBetween(inner, outer *Scope, name string) bool {
	for cur := inner; cur != nil && cur != outer; cur = cur.parent {
		if cur.locals[name] > 0 || len(cur.hooks[name]) > 0 {
			return true
		}
	}
	return false
}

// Parents under which a bare assignment expression parses the same as the
// call it replaces.
var assignmentContexts = map[string]bool{
	"expression_statement":     true,
	"parenthesized_expression": true,
	"sequence_expression":      true,
	"arguments":                true,
}

func needsParens(call *ts.Node) bool {
	parent := call.Parent()
	if parent == nil {
		return false
	}
	if assignmentContexts[parent.Kind()] {
		return false
	}
	if parent.Kind() == "arrow_function" {
		if body := parent.ChildByFieldName("body"); body != nil && body.Id() == call.Id() {
			return false
		}
	}
	return true
}
