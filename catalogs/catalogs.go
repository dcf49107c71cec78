// Package catalogs provides the example sources bundled with the binary.
package catalogs

import _ "embed"

// ExamplesYAML is the bundled hook example catalog, embedded at build time.
//
//go:embed examples.yaml
var ExamplesYAML []byte
