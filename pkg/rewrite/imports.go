package rewrite

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/hooks2vue/pkg/parser/queries"
)

// reactImport is one `import ... from 'react'` statement.
type reactImport struct {
	statement *ts.Node
	source    *ts.Node
	// rewritable is set when every binding the import introduces is gone
	// from the output.
	rewritable bool
}

// rewriteImports swaps React imports whose bindings were all consumed for a
// single import of the Vue APIs the rewrite used.
//
// An import is rewritable when it has no namespace import, no aliased or
// non-hook named specifiers, a default binding that is never referenced, and
// every reference to each imported hook was replaced. The first rewritable
// import becomes the Vue import and later ones are deleted. When nothing is
// rewritable the Vue import is added after the first React import.
func rewriteImports(matches []queries.QueryMatch, src []byte, symbols *SymbolTable, report *Report) []Edit {
	var found []reactImport
	for _, m := range matches {
		stmt, ok1 := m.Capture("import", "statement")
		clause, ok2 := m.Capture("import", "clause")
		source, ok3 := m.Capture("import", "source")
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		found = append(found, reactImport{
			statement:  stmt.Node,
			source:     source.Node.Parent(),
			rewritable: importConsumed(stmt.Node, clause.Node, src, symbols, report),
		})
	}
	if len(found) == 0 {
		return nil
	}

	apis := report.APIs()
	var edits []Edit
	placed := len(apis) == 0
	for _, imp := range found {
		if !imp.rewritable {
			continue
		}
		if placed {
			edits = append(edits, deleteStatement(imp.statement, src))
			continue
		}
		edits = append(edits, Replace(imp.statement, Text(vueImport(apis, imp, src))))
		placed = true
	}

	if !placed {
		first := found[0]
		indent := lineIndent(src, first.statement.StartByte())
		edits = append(edits, Insert(first.statement.EndByte(),
			Text("\n"+indent+vueImport(apis, first, src))))
	}
	return edits
}

func importConsumed(stmt, clause *ts.Node, src []byte, symbols *SymbolTable, report *Report) bool {
	// `import type { ... }` carries no runtime bindings to replace.
	for _, child := range allChildren(stmt) {
		if child.Kind() == "type" || child.Kind() == "typeof" {
			return false
		}
	}

	for _, part := range namedChildren(clause) {
		switch part.Kind() {
		case "identifier":
			if symbols.Uses(part.Utf8Text(src)) != 1 {
				return false
			}
		case "named_imports":
			for _, spec := range namedChildren(part) {
				if spec.Kind() != "import_specifier" || spec.ChildByFieldName("alias") != nil {
					return false
				}
				nameNode := spec.ChildByFieldName("name")
				if nameNode == nil {
					return false
				}
				name := nameNode.Utf8Text(src)
				if HookKindFromName(name) == HookNone {
					return false
				}
				if symbols.Uses(name)-1 != report.Consumed[name] {
					return false
				}
			}
		default:
			return false
		}
	}
	return true
}

// vueImport renders the replacement import in the quoting and semicolon
// style of the statement it replaces.
func vueImport(apis []string, imp reactImport, src []byte) string {
	quote := byte('\'')
	if imp.source != nil {
		if text := imp.source.Utf8Text(src); text != "" {
			quote = text[0]
		}
	}

	var b strings.Builder
	b.WriteString("import { ")
	b.WriteString(strings.Join(apis, ", "))
	b.WriteString(" } from ")
	b.WriteString(StringLiteral("vue", quote))
	if strings.HasSuffix(strings.TrimSpace(imp.statement.Utf8Text(src)), ";") {
		b.WriteByte(';')
	}
	return b.String()
}
