package rewrite

import (
	"fmt"
	"strconv"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// Literal builds a literal from a Go value.
func Literal(v any) (Fragment, error) {
	switch val := v.(type) {
	case nil:
		return Text("null"), nil
	case bool:
		return Text(strconv.FormatBool(val)), nil
	case string:
		return Text(StringLiteral(val, '\'')), nil
	case int:
		return Text(strconv.Itoa(val)), nil
	case int64:
		return Text(strconv.FormatInt(val, 10)), nil
	case float64:
		return Text(strconv.FormatFloat(val, 'g', -1, 64)), nil
	default:
		return nil, fmt.Errorf("no literal form for %T", v)
	}
}

// StringLiteral quotes s with the given quote character.
func StringLiteral(s string, quote byte) string {
	var b strings.Builder
	b.WriteByte(quote)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case quote, '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(quote)
	return b.String()
}

// CallExpr builds `callee(arg, ...)`.
func CallExpr(callee Fragment, args ...Fragment) Fragment {
	out := Concat(callee, Text("("))
	for i, a := range args {
		if i > 0 {
			out = append(out, Text(", ")...)
		}
		out = append(out, a...)
	}
	return append(out, Text(")")...)
}

// MemberExpr builds `object.property`.
func MemberExpr(object Fragment, property string) Fragment {
	return Concat(object, Text("."+property))
}

// Assignment builds `target = value`.
func Assignment(target, value Fragment) Fragment {
	return Concat(target, Text(" = "), value)
}

// VariableDeclarator builds `name = init`, the part of a declaration after
// const/let.
func VariableDeclarator(name string, init Fragment) Fragment {
	return Concat(Text(name+" = "), init)
}

// Parenthesized wraps f in parentheses.
func Parenthesized(f Fragment) Fragment {
	return Concat(Text("("), f, Text(")"))
}

// retarget renames the callee of a hook call while keeping its type
// arguments and argument list: useRef<T>(x) becomes ref<T>(x).
func retarget(api string, hc HookCall) Fragment {
	out := Text(api)
	if typeArgs := hc.Call.ChildByFieldName("type_arguments"); typeArgs != nil {
		out = append(out, Source(typeArgs)...)
	}
	return append(out, Source(hc.ArgList)...)
}

// lineIndent returns the leading whitespace of the line containing offset.
func lineIndent(src []byte, offset uint) string {
	start := offset
	for start > 0 && src[start-1] != '\n' {
		start--
	}
	end := start
	for end < uint(len(src)) && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	return string(src[start:end])
}

// deleteStatement removes stmt. When the statement sits alone on its line
// the whole line goes, newline included.
func deleteStatement(stmt *ts.Node, src []byte) Edit {
	start, end := stmt.StartByte(), stmt.EndByte()

	lineStart := start
	for lineStart > 0 && (src[lineStart-1] == ' ' || src[lineStart-1] == '\t') {
		lineStart--
	}
	lineEnd := end
	for lineEnd < uint(len(src)) && (src[lineEnd] == ' ' || src[lineEnd] == '\t' || src[lineEnd] == '\r') {
		lineEnd++
	}

	ownLine := (lineStart == 0 || src[lineStart-1] == '\n') &&
		(lineEnd == uint(len(src)) || src[lineEnd] == '\n')
	if !ownLine {
		return Delete(start, end)
	}
	if lineEnd < uint(len(src)) {
		lineEnd++
	}
	return Delete(lineStart, lineEnd)
}
