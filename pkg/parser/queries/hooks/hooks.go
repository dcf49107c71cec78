// Package hooks holds the tree-sitter patterns that locate React hook
// bindings. The JavaScript, TypeScript and TSX grammars share these node
// names, so one set of patterns serves every dialect.
package hooks

// Queries captures the declarators the symbol-table pass binds.
//
// Captures:
//   - @state.* - `const [value, setValue] = useState(...)`
//   - @ref.*   - `const name = useRef(...)`
//
// The pattern shape (exactly two identifiers) is checked in Go so that
// malformed destructurings can be reported as locals instead.
const Queries = `
; const [value, setValue] = useState(initial)
(variable_declarator
  name: (array_pattern) @state.pattern
  value: (call_expression
    function: (identifier) @state.hook
    arguments: (arguments) @state.args)
  (#eq? @state.hook "useState")
) @state.declarator

; const inputRef = useRef(initial)
(variable_declarator
  name: (identifier) @ref.name
  value: (call_expression
    function: (identifier) @ref.hook)
  (#eq? @ref.hook "useRef")
) @ref.declarator
`
