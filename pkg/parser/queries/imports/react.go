// Package imports holds the tree-sitter patterns for module imports.
package imports

// ReactQueries captures every `import ... from 'react'` statement.
//
// Captures:
//   - @import.statement - the whole import statement
//   - @import.clause    - default/named/namespace bindings
//   - @import.source    - the module name without quotes
const ReactQueries = `
(import_statement
  (import_clause) @import.clause
  source: (string (string_fragment) @import.source)
  (#eq? @import.source "react")
) @import.statement
`
