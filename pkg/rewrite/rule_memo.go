package rewrite

import (
	ts "github.com/tree-sitter/go-tree-sitter"
)

// memoRule turns useMemo(fn, deps) into computed(fn).
type memoRule struct{}

func (memoRule) Name() string    { return "useMemo" }
func (memoRule) Kinds() []string { return []string{"call_expression"} }

func (memoRule) Apply(ctx *Context, node *ts.Node) (*Mutation, error) {
	hc, ok := Classify(node, ctx.Source)
	if !ok || hc.Kind != HookMemo || len(hc.Args) == 0 || !isFunctionValue(hc.Args[0]) {
		return nil, nil
	}

	callee := Text(APIComputed)
	if typeArgs := node.ChildByFieldName("type_arguments"); typeArgs != nil {
		callee = Concat(callee, Source(typeArgs))
	}
	return &Mutation{
		Edits:    []Edit{Replace(node, CallExpr(callee, Source(hc.Args[0])))},
		APIs:     []string{APIComputed},
		Consumes: HookMemo,
	}, nil
}

// callbackRule unwraps useCallback(fn, deps) to fn.
type callbackRule struct{}

func (callbackRule) Name() string    { return "useCallback" }
func (callbackRule) Kinds() []string { return []string{"call_expression"} }

func (callbackRule) Apply(ctx *Context, node *ts.Node) (*Mutation, error) {
	hc, ok := Classify(node, ctx.Source)
	if !ok || hc.Kind != HookCallback || len(hc.Args) == 0 || !isFunctionValue(hc.Args[0]) {
		return nil, nil
	}
	return &Mutation{
		Edits:    []Edit{Replace(node, Source(hc.Args[0]))},
		Consumes: HookCallback,
	}, nil
}

// contextRule turns useContext(Ctx) into inject(Ctx).
type contextRule struct{}

func (contextRule) Name() string    { return "useContext" }
func (contextRule) Kinds() []string { return []string{"call_expression"} }

func (contextRule) Apply(ctx *Context, node *ts.Node) (*Mutation, error) {
	hc, ok := Classify(node, ctx.Source)
	if !ok || hc.Kind != HookContext || len(hc.Args) != 1 || hc.Args[0].Kind() == "spread_element" {
		return nil, nil
	}
	return &Mutation{
		Edits:    []Edit{Replace(node, retarget(APIInject, hc))},
		APIs:     []string{APIInject},
		Consumes: HookContext,
	}, nil
}
