package parser

import (
	"github.com/gnana997/hooks2vue/pkg/util"
)

// getDefaultPoolSize returns the parser pool size per dialect.
//
// It MUST match the workspace worker pool size (both use
// util.GetOptimalPoolSize) so that workers do not block waiting for parsers.
func getDefaultPoolSize() int {
	return util.GetOptimalPoolSize()
}
