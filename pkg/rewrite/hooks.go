package rewrite

import (
	ts "github.com/tree-sitter/go-tree-sitter"
)

// HookKind tags a recognized React hook.
type HookKind int

const (
	HookNone HookKind = iota
	HookState
	HookRef
	HookMemo
	HookCallback
	HookEffect
	HookContext
)

var hookNames = map[string]HookKind{
	"useState":    HookState,
	"useRef":      HookRef,
	"useMemo":     HookMemo,
	"useCallback": HookCallback,
	"useEffect":   HookEffect,
	"useContext":  HookContext,
}

// String returns the React name of the hook.
func (k HookKind) String() string {
	switch k {
	case HookState:
		return "useState"
	case HookRef:
		return "useRef"
	case HookMemo:
		return "useMemo"
	case HookCallback:
		return "useCallback"
	case HookEffect:
		return "useEffect"
	case HookContext:
		return "useContext"
	default:
		return "none"
	}
}

// HookKindFromName maps a callee name to its hook kind.
func HookKindFromName(name string) HookKind {
	return hookNames[name]
}

// Vue Composition API functions the rules emit.
const (
	APIRef         = "ref"
	APIReactive    = "reactive"
	APIComputed    = "computed"
	APIWatch       = "watch"
	APIWatchEffect = "watchEffect"
	APIOnMounted   = "onMounted"
	APIOnUnmounted = "onUnmounted"
	APIInject      = "inject"
)

// HookCall is a call expression whose callee names a hook.
type HookCall struct {
	Kind   HookKind
	Call   *ts.Node
	Callee *ts.Node
	// ArgList is the arguments node, parentheses included.
	ArgList *ts.Node
	Args    []*ts.Node
}

// Classify recognizes hook calls by callee name. Anything else, including
// member calls such as React.useState, is reported as no match.
func Classify(call *ts.Node, src []byte) (HookCall, bool) {
	if call == nil || call.Kind() != "call_expression" {
		return HookCall{}, false
	}

	callee := call.ChildByFieldName("function")
	if callee == nil || callee.Kind() != "identifier" {
		return HookCall{}, false
	}
	kind := HookKindFromName(callee.Utf8Text(src))
	if kind == HookNone {
		return HookCall{}, false
	}

	args := call.ChildByFieldName("arguments")
	if args == nil || args.Kind() != "arguments" {
		return HookCall{}, false
	}

	return HookCall{
		Kind:    kind,
		Call:    call,
		Callee:  callee,
		ArgList: args,
		Args:    namedChildren(args),
	}, true
}

// Category is the syntactic class of a useState initial value.
type Category int

const (
	// CategoryPrimitive values are wrapped in ref() and read through .value.
	CategoryPrimitive Category = iota
	// CategoryReference values are wrapped in reactive() and read directly.
	CategoryReference
)

func (c Category) String() string {
	if c == CategoryPrimitive {
		return "primitive"
	}
	return "reference"
}

// ClassifyInitial decides the category of an initial value from its syntax
// alone: literals of primitive type (and signed numbers) are primitive,
// everything else is a reference.
func ClassifyInitial(n *ts.Node, src []byte) Category {
	switch n.Kind() {
	case "number", "string", "template_string", "true", "false", "null", "undefined":
		return CategoryPrimitive
	case "identifier":
		if n.Utf8Text(src) == "undefined" {
			return CategoryPrimitive
		}
	case "unary_expression":
		op := n.ChildByFieldName("operator")
		arg := n.ChildByFieldName("argument")
		if op != nil && arg != nil && arg.Kind() == "number" {
			switch op.Utf8Text(src) {
			case "-", "+":
				return CategoryPrimitive
			}
		}
	case "parenthesized_expression":
		if inner := namedChildren(n); len(inner) == 1 {
			return ClassifyInitial(inner[0], src)
		}
	}
	return CategoryReference
}
