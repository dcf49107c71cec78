package rewrite

import (
	ts "github.com/tree-sitter/go-tree-sitter"
)

// effectRule maps useEffect onto the Vue lifecycle and watcher APIs:
//
//	useEffect(fn)         -> watchEffect(fn)
//	useEffect(fn, [])     -> onMounted(fn) plus onUnmounted(cleanup)
//	useEffect(fn, [a, b]) -> watch([a, b], fn)
type effectRule struct{}

func (effectRule) Name() string    { return "useEffect" }
func (effectRule) Kinds() []string { return []string{"call_expression"} }

func (effectRule) Apply(ctx *Context, node *ts.Node) (*Mutation, error) {
	hc, ok := Classify(node, ctx.Source)
	if !ok || hc.Kind != HookEffect || len(hc.Args) == 0 || len(hc.Args) > 2 {
		return nil, nil
	}
	fn := hc.Args[0]
	if !isFunctionValue(fn) {
		return nil, nil
	}

	if len(hc.Args) == 1 {
		return &Mutation{
			Edits:    []Edit{Replace(node, CallExpr(Text(APIWatchEffect), Source(fn)))},
			APIs:     []string{APIWatchEffect},
			Consumes: HookEffect,
		}, nil
	}

	deps := hc.Args[1]
	if deps.Kind() == "spread_element" {
		return nil, nil
	}
	if deps.Kind() == "array" && len(namedChildren(deps)) == 0 {
		return mountEffect(ctx, node, fn)
	}

	// Deps are watched as reactive sources, so they keep their original
	// spelling without .value.
	return &Mutation{
		Edits:    []Edit{Replace(node, CallExpr(Text(APIWatch), Raw(deps), Source(fn)))},
		APIs:     []string{APIWatch},
		Consumes: HookEffect,
	}, nil
}

// mountEffect rewrites a run-once effect. The callback's first top-level
// return is dropped; a returned cleanup becomes an onUnmounted call after
// the effect statement. A cleanup that closes over locals of the callback
// is registered in place of the return instead, inside onMounted.
func mountEffect(ctx *Context, call, fn *ts.Node) (*Mutation, error) {
	removal, err := RemoveReturnStatement(fn)
	if err != nil {
		return nil, err
	}

	m := &Mutation{
		Edits:    []Edit{Replace(call, CallExpr(Text(APIOnMounted), Source(fn)))},
		APIs:     []string{APIOnMounted},
		Consumes: HookEffect,
	}
	if removal.Removed == nil {
		return m, nil
	}

	cleanup := returnedValue(removal.Removed)
	if cleanup != nil && usesCallbackLocals(ctx, fn, cleanup) {
		m.Edits = append(m.Edits, Replace(removal.Removed, Concat(
			CallExpr(Text(APIOnUnmounted), Source(cleanup)),
			Text(";"),
		)))
		m.APIs = append(m.APIs, APIOnUnmounted)
		return m, nil
	}

	stmt := call.Parent()
	if cleanup != nil && (stmt == nil || stmt.Kind() != "expression_statement") {
		// Nowhere to put onUnmounted without changing what the
		// expression evaluates to.
		return nil, nil
	}

	m.Edits = append(m.Edits, deleteStatement(removal.Removed, ctx.Source))
	if cleanup != nil {
		indent := lineIndent(ctx.Source, stmt.StartByte())
		m.Edits = append(m.Edits, Insert(stmt.EndByte(), Concat(
			Text("\n"+indent),
			CallExpr(Text(APIOnUnmounted), Source(cleanup)),
			Text(";"),
		)))
		m.APIs = append(m.APIs, APIOnUnmounted)
	}
	return m, nil
}

// usesCallbackLocals reports whether expr, written at the top level of fn's
// body, refers to a parameter of fn or a name declared directly in its body.
func usesCallbackLocals(ctx *Context, fn, expr *ts.Node) bool {
	fnScope, ok := ctx.Symbols.ScopeAt(fn)
	if !ok {
		return false
	}
	bodyScope := fnScope
	if body := fn.ChildByFieldName("body"); body != nil {
		if s, ok := ctx.Symbols.ScopeAt(body); ok {
			bodyScope = s
		}
	}

	found := false
	var walk func(n *ts.Node, cur *Scope)
	walk = func(n *ts.Node, cur *Scope) {
		if found {
			return
		}
		if s, ok := ctx.Symbols.ScopeAt(n); ok {
			cur = s
		}
		switch n.Kind() {
		case "identifier", "shorthand_property_identifier":
			if d := declaringScope(cur, ctx.Text(n)); d == bodyScope || d == fnScope {
				found = true
			}
			return
		}
		for _, child := range allChildren(n) {
			walk(child, cur)
		}
	}
	walk(expr, bodyScope)
	return found
}
