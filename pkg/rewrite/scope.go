package rewrite

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/hooks2vue/pkg/parser/queries"
)

// Binding is a hook result bound to a name: the `[value, setValue]` pair of
// useState or the identifier holding a useRef.
type Binding struct {
	Kind     HookKind
	Name     string
	Setter   string
	Category Category

	Declarator *ts.Node

	scope *Scope
}

// Primitive reports whether reads of the binding need a .value suffix.
func (b *Binding) Primitive() bool {
	return b.Kind == HookState && b.Category == CategoryPrimitive
}

// Accessor is how the binding's current value is read in Vue:
// `name.value` for primitive state, `name` otherwise.
func (b *Binding) Accessor() Fragment {
	if b.Primitive() {
		return MemberExpr(Text(b.Name), "value")
	}
	return Text(b.Name)
}

// declaredBefore reports whether n starts after the binding's declarator.
func (b *Binding) declaredBefore(n *ts.Node) bool {
	return n.StartByte() >= b.Declarator.EndByte()
}

// reachedThroughFunction reports whether a function scope lies between s
// and the scope declaring the binding. Code in such a function runs after
// the declaration, wherever it is written.
func (b *Binding) reachedThroughFunction(s *Scope) bool {
	for cur := s; cur != nil && cur != b.scope; cur = cur.parent {
		if isFunctionScope(cur.node) {
			return true
		}
	}
	return false
}

// Scope is one lexical scope: the program, a function, a block, a loop
// header or a catch clause.
type Scope struct {
	node   *ts.Node
	parent *Scope
	hooks  map[string][]*Binding
	locals map[string]int
}

func newScope(node *ts.Node, parent *Scope) *Scope {
	return &Scope{
		node:   node,
		parent: parent,
		hooks:  make(map[string][]*Binding),
		locals: make(map[string]int),
	}
}

func (s *Scope) addBinding(b *Binding) {
	b.scope = s
	s.hooks[b.Name] = append(s.hooks[b.Name], b)
	if b.Setter != "" {
		s.hooks[b.Setter] = append(s.hooks[b.Setter], b)
	}
}

func (s *Scope) declare(names ...string) {
	for _, name := range names {
		s.locals[name]++
	}
}

// Resolve finds the hook binding name refers to from this scope. The
// innermost scope declaring the name decides: it must hold exactly one hook
// binding and no other declaration of the name, otherwise nil.
func (s *Scope) Resolve(name string) *Binding {
	for cur := s; cur != nil; cur = cur.parent {
		hooks, locals := cur.hooks[name], cur.locals[name]
		if len(hooks) == 0 && locals == 0 {
			continue
		}
		if len(hooks) == 1 && locals == 0 {
			return hooks[0]
		}
		return nil
	}
	return nil
}

// SymbolTable holds the scopes of one source file. It is built in a pass
// before any rewriting.
type SymbolTable struct {
	root     *Scope
	scopes   map[uintptr]*Scope
	bindings map[uintptr]*Binding
	uses     map[string]int
}

// BuildSymbolTable records every scope, declaration and hook binding of the
// tree. hookMatches are the results of the hooks query.
func BuildSymbolTable(root *ts.Node, src []byte, hookMatches []queries.QueryMatch) *SymbolTable {
	st := &SymbolTable{
		scopes:   make(map[uintptr]*Scope),
		bindings: make(map[uintptr]*Binding),
		uses:     make(map[string]int),
	}

	for _, m := range hookMatches {
		if b := bindingFromMatch(m, src); b != nil {
			st.bindings[b.Declarator.Id()] = b
		}
	}

	st.root = newScope(root, nil)
	st.scopes[root.Id()] = st.root
	for _, child := range allChildren(root) {
		st.collect(child, st.root, src)
	}
	return st
}

// bindingFromMatch validates a hooks query match. Destructurings other than
// exactly two identifiers, and useState without arguments, bind nothing.
func bindingFromMatch(m queries.QueryMatch, src []byte) *Binding {
	switch m.Category() {
	case "state":
		decl, ok1 := m.Capture("state", "declarator")
		pattern, ok2 := m.Capture("state", "pattern")
		args, ok3 := m.Capture("state", "args")
		if !ok1 || !ok2 || !ok3 {
			return nil
		}
		names := namedChildren(pattern.Node)
		if len(names) != 2 || names[0].Kind() != "identifier" || names[1].Kind() != "identifier" {
			return nil
		}
		initial := namedChildren(args.Node)
		if len(initial) == 0 {
			return nil
		}
		return &Binding{
			Kind:       HookState,
			Name:       names[0].Utf8Text(src),
			Setter:     names[1].Utf8Text(src),
			Category:   ClassifyInitial(initial[0], src),
			Declarator: decl.Node,
		}

	case "ref":
		decl, ok1 := m.Capture("ref", "declarator")
		name, ok2 := m.Capture("ref", "name")
		if !ok1 || !ok2 {
			return nil
		}
		return &Binding{
			Kind:       HookRef,
			Name:       name.Text,
			Category:   CategoryReference,
			Declarator: decl.Node,
		}
	}
	return nil
}

func (st *SymbolTable) collect(n *ts.Node, cur *Scope, src []byte) {
	switch n.Kind() {
	case "identifier", "shorthand_property_identifier":
		st.uses[n.Utf8Text(src)]++
	case "variable_declarator":
		if b, ok := st.bindings[n.Id()]; ok {
			cur.addBinding(b)
		} else {
			cur.declare(patternNames(n.ChildByFieldName("name"), src, nil)...)
		}
	case "function_declaration", "generator_function_declaration", "class_declaration":
		if name := n.ChildByFieldName("name"); name != nil {
			cur.declare(name.Utf8Text(src))
		}
	case "import_specifier":
		local := n.ChildByFieldName("alias")
		if local == nil {
			local = n.ChildByFieldName("name")
		}
		if local != nil {
			st.root.declare(local.Utf8Text(src))
		}
	case "import_clause", "namespace_import":
		for _, child := range namedChildren(n) {
			if child.Kind() == "identifier" {
				st.root.declare(child.Utf8Text(src))
			}
		}
	}

	if isScopeNode(n) {
		s := newScope(n, cur)
		st.scopes[n.Id()] = s

		switch {
		case isFunctionScope(n):
			for _, p := range parameterNodes(n) {
				s.declare(patternNames(p, src, nil)...)
			}
			// A named function expression sees its own name.
			if n.Kind() == "function_expression" || n.Kind() == "function" || n.Kind() == "generator_function" {
				if name := n.ChildByFieldName("name"); name != nil {
					s.declare(name.Utf8Text(src))
				}
			}
		case n.Kind() == "catch_clause":
			s.declare(patternNames(n.ChildByFieldName("parameter"), src, nil)...)
		case n.Kind() == "for_in_statement":
			s.declare(patternNames(n.ChildByFieldName("left"), src, nil)...)
		}
		cur = s
	}

	for _, child := range allChildren(n) {
		st.collect(child, cur, src)
	}
}

// Root returns the program scope.
func (st *SymbolTable) Root() *Scope { return st.root }

// ScopeAt returns the scope n opens, if any.
func (st *SymbolTable) ScopeAt(n *ts.Node) (*Scope, bool) {
	s, ok := st.scopes[n.Id()]
	return s, ok
}

// BindingFor returns the binding recorded for a declarator.
func (st *SymbolTable) BindingFor(declarator *ts.Node) (*Binding, bool) {
	b, ok := st.bindings[declarator.Id()]
	return b, ok
}

// Uses returns how many identifier nodes spell name, declarations included.
func (st *SymbolTable) Uses(name string) int {
	return st.uses[name]
}

func allChildren(n *ts.Node) []*ts.Node {
	count := n.ChildCount()
	out := make([]*ts.Node, 0, count)
	for i := uint(0); i < count; i++ {
		if child := n.Child(i); child != nil {
			out = append(out, child)
		}
	}
	return out
}
