package rewrite

import (
	ts "github.com/tree-sitter/go-tree-sitter"
)

// stateDeclRule turns `[value, setValue] = useState(init)` into
// `value = ref(init)` or `value = reactive(init)`.
type stateDeclRule struct{}

func (stateDeclRule) Name() string    { return "useState" }
func (stateDeclRule) Kinds() []string { return []string{"variable_declarator"} }

func (stateDeclRule) Apply(ctx *Context, node *ts.Node) (*Mutation, error) {
	b, ok := ctx.Symbols.BindingFor(node)
	if !ok || b.Kind != HookState {
		return nil, nil
	}
	hc, ok := Classify(node.ChildByFieldName("value"), ctx.Source)
	if !ok || hc.Kind != HookState {
		return nil, nil
	}

	api := APIReactive
	if b.Primitive() {
		api = APIRef
	}
	return &Mutation{
		Edits:    []Edit{Replace(node, VariableDeclarator(b.Name, retarget(api, hc)))},
		APIs:     []string{api},
		Consumes: HookState,
	}, nil
}

// stateReadRule qualifies reads of primitive state with .value.
type stateReadRule struct{}

func (stateReadRule) Name() string { return "state-read" }
func (stateReadRule) Kinds() []string {
	return []string{"identifier", "shorthand_property_identifier"}
}

// Parents whose identifier children are names, not reads.
var nonReadParents = map[string]bool{
	"import_specifier":         true,
	"export_specifier":         true,
	"namespace_import":         true,
	"namespace_export":         true,
	"import_clause":            true,
	"jsx_opening_element":      true,
	"jsx_closing_element":      true,
	"jsx_self_closing_element": true,
	"jsx_attribute":            true,
	"nested_identifier":        true,
}

func (stateReadRule) Apply(ctx *Context, node *ts.Node) (*Mutation, error) {
	parent := node.Parent()
	if parent != nil && (nonReadParents[parent.Kind()] || isDepsArray(parent, ctx.Source)) {
		return nil, nil
	}

	name := ctx.Text(node)
	b := ctx.Resolve(node)
	if b == nil || b.Name != name || !b.Primitive() {
		return nil, nil
	}

	if node.Kind() == "shorthand_property_identifier" {
		return &Mutation{Edits: []Edit{
			Replace(node, Concat(Text(name+": "), b.Accessor())),
		}}, nil
	}
	return &Mutation{Edits: []Edit{Replace(node, b.Accessor())}}, nil
}

// isDepsArray reports whether n is the dependency array of a useMemo,
// useCallback or useEffect call. Those arrays are dropped or passed to
// watch as reactive sources, so their elements are not reads.
func isDepsArray(n *ts.Node, src []byte) bool {
	if n.Kind() != "array" {
		return false
	}
	args := n.Parent()
	if args == nil || args.Kind() != "arguments" {
		return false
	}
	hc, ok := Classify(args.Parent(), src)
	if !ok || len(hc.Args) < 2 || hc.Args[1].Id() != n.Id() {
		return false
	}
	switch hc.Kind {
	case HookMemo, HookCallback, HookEffect:
		return true
	}
	return false
}
