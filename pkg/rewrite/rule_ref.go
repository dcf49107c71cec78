package rewrite

import (
	ts "github.com/tree-sitter/go-tree-sitter"
)

// refRule turns useRef(init) into ref(init).
type refRule struct{}

func (refRule) Name() string    { return "useRef" }
func (refRule) Kinds() []string { return []string{"call_expression"} }

func (refRule) Apply(ctx *Context, node *ts.Node) (*Mutation, error) {
	hc, ok := Classify(node, ctx.Source)
	if !ok || hc.Kind != HookRef || len(hc.Args) > 1 {
		return nil, nil
	}
	return &Mutation{
		Edits:    []Edit{Replace(node, retarget(APIRef, hc))},
		APIs:     []string{APIRef},
		Consumes: HookRef,
	}, nil
}

// refCurrentRule maps `r.current` to `r.value` for identifiers bound by
// useRef.
type refCurrentRule struct{}

func (refCurrentRule) Name() string    { return "ref-current" }
func (refCurrentRule) Kinds() []string { return []string{"member_expression"} }

func (refCurrentRule) Apply(ctx *Context, node *ts.Node) (*Mutation, error) {
	object := node.ChildByFieldName("object")
	property := node.ChildByFieldName("property")
	if object == nil || property == nil || object.Kind() != "identifier" {
		return nil, nil
	}
	if property.Kind() != "property_identifier" || ctx.Text(property) != "current" {
		return nil, nil
	}
	b := ctx.Resolve(object)
	if b == nil || b.Kind != HookRef {
		return nil, nil
	}
	return &Mutation{Edits: []Edit{Replace(property, Text("value"))}}, nil
}
