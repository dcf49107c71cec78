package rewrite

import (
	"sort"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// Context is what a rule sees while the dispatcher visits a node.
type Context struct {
	Source  []byte
	Symbols *SymbolTable
	// Scope is the innermost scope enclosing the visited node.
	Scope *Scope
}

// Text returns the source text of n.
func (c *Context) Text(n *ts.Node) string {
	return n.Utf8Text(c.Source)
}

// Resolve returns the binding an identifier refers to. Within the declaring
// function body the binding must come first; from a nested function it
// may be declared later.
func (c *Context) Resolve(ident *ts.Node) *Binding {
	b := c.Scope.Resolve(c.Text(ident))
	if b == nil {
		return nil
	}
	if !b.declaredBefore(ident) && !b.reachedThroughFunction(c.Scope) {
		return nil
	}
	return b
}

// Mutation is the result of one rule firing on one node.
type Mutation struct {
	Edits []Edit
	// APIs are the Vue functions the replacement calls.
	APIs []string
	// Consumes is the hook whose call the mutation removed, HookNone for
	// rewrites that do not replace a hook call.
	Consumes HookKind
}

// Rule is a stateless pattern-match-and-rewrite step. Apply returns nil
// when the node does not match; an error aborts the whole transform.
type Rule interface {
	Name() string
	Kinds() []string
	Apply(ctx *Context, node *ts.Node) (*Mutation, error)
}

// Report is the combined outcome of a dispatcher run.
type Report struct {
	Edits []Edit
	// Counts maps rule names to the number of mutations they performed.
	Counts map[string]int
	// Consumed counts removed hook calls per hook name.
	Consumed map[string]int
	apis     map[string]struct{}
}

// APIs returns the sorted Vue API names used by the mutations.
func (r *Report) APIs() []string {
	out := make([]string, 0, len(r.apis))
	for api := range r.apis {
		out = append(out, api)
	}
	sort.Strings(out)
	return out
}

func (r *Report) add(rule Rule, m *Mutation) {
	r.Edits = append(r.Edits, m.Edits...)
	r.Counts[rule.Name()]++
	if m.Consumes != HookNone {
		r.Consumed[m.Consumes.String()]++
	}
	for _, api := range m.APIs {
		r.apis[api] = struct{}{}
	}
}

// Dispatcher offers every node to the rules registered for its kind.
type Dispatcher struct {
	byKind map[string][]Rule
}

// NewDispatcher registers rules in order. For a given node kind, earlier
// rules take precedence.
func NewDispatcher(rules ...Rule) *Dispatcher {
	d := &Dispatcher{byKind: make(map[string][]Rule)}
	for _, r := range rules {
		for _, kind := range r.Kinds() {
			d.byKind[kind] = append(d.byKind[kind], r)
		}
	}
	return d
}

// DefaultRules returns the hook rules in registration order.
func DefaultRules() []Rule {
	return []Rule{
		stateDeclRule{},
		setterRule{},
		refRule{},
		memoRule{},
		callbackRule{},
		effectRule{},
		contextRule{},
		stateReadRule{},
		setterValueRule{},
		refCurrentRule{},
	}
}

// Run walks the tree once in pre-order. The first matching rule for a node
// mutates it and the remaining rules are not consulted.
func (d *Dispatcher) Run(root *ts.Node, src []byte, symbols *SymbolTable) (*Report, error) {
	report := &Report{
		Counts:   make(map[string]int),
		Consumed: make(map[string]int),
		apis:     make(map[string]struct{}),
	}
	ctx := &Context{Source: src, Symbols: symbols, Scope: symbols.Root()}
	visited := make(map[uintptr]struct{})

	if err := d.visit(ctx, root, report, visited); err != nil {
		return nil, err
	}
	return report, nil
}

func (d *Dispatcher) visit(ctx *Context, n *ts.Node, report *Report, visited map[uintptr]struct{}) error {
	outer := ctx.Scope
	if s, ok := ctx.Symbols.ScopeAt(n); ok {
		ctx.Scope = s
	}
	defer func() { ctx.Scope = outer }()

	if _, seen := visited[n.Id()]; !seen {
		visited[n.Id()] = struct{}{}
		for _, rule := range d.byKind[n.Kind()] {
			m, err := rule.Apply(ctx, n)
			if err != nil {
				return err
			}
			if m != nil {
				report.add(rule, m)
				break
			}
		}
	}

	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		if err := d.visit(ctx, child, report, visited); err != nil {
			return err
		}
	}
	return nil
}
