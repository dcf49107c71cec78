package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/hooks2vue/pkg/parser"
)

func languageParam() mcp.ToolOption {
	return mcp.WithString("language",
		mcp.Description("Source dialect. Defaults to js."),
		mcp.Enum(parser.SupportedDialectNames()...),
	)
}

func transformCodeTool() mcp.Tool {
	return mcp.NewTool("transform_code",
		mcp.WithDescription("Rewrite React hook calls (useState, useRef, useMemo, useCallback, useEffect, useContext) "+
			"into Vue Composition API calls. Returns the rewritten code, per-rule rewrite counts and the Vue APIs used, "+
			"or an error marker with line and column."),
		mcp.WithString("code", mcp.Required(), mcp.Description("React source code")),
		languageParam(),
	)
}

func diffCodeTool() mcp.Tool {
	return mcp.NewTool("diff_code",
		mcp.WithDescription("Transform code and return a unified line diff of input against output."),
		mcp.WithString("code", mcp.Required(), mcp.Description("React source code")),
		languageParam(),
		mcp.WithNumber("context", mcp.Description("Unchanged lines kept around each change. Defaults to 3.")),
	)
}

func listExamplesTool() mcp.Tool {
	return mcp.NewTool("list_examples",
		mcp.WithDescription("List bundled React examples, optionally filtered by hook and keyword."),
		mcp.WithString("hook", mcp.Description("Only examples using this hook, e.g. useEffect")),
		mcp.WithString("keyword", mcp.Description("Case-insensitive match on name, title and description")),
	)
}

func getExampleTool() mcp.Tool {
	return mcp.NewTool("get_example",
		mcp.WithDescription("Return one bundled example's source. With transform=true the transform result is included."),
		mcp.WithString("name", mcp.Description("Example name. Defaults to the catalog's default example.")),
		mcp.WithBoolean("transform", mcp.Description("Also run the transform on the example")),
	)
}

func searchExamplesTool() mcp.Tool {
	return mcp.NewTool("search_examples",
		mcp.WithDescription("Search examples by name, description, hook or code."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search text")),
	)
}
