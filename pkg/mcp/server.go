// Package mcp serves the playground and the example catalog to MCP clients.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/hooks2vue/pkg/catalog"
	"github.com/gnana997/hooks2vue/pkg/mcplog"
	"github.com/gnana997/hooks2vue/pkg/playground"
)

const serverName = "hooks2vue"

// Server implements the MCP server for hooks2vue, exposing transform, diff
// and example lookup tools.
type Server struct {
	mcpServer  *server.MCPServer
	playground *playground.Playground
	query      *catalog.QueryService
	logger     *mcplog.Logger // nil disables call logging
}

// NewServer creates an MCP server. logger may be nil.
func NewServer(pg *playground.Playground, qs *catalog.QueryService, logger *mcplog.Logger, version string) *Server {
	s := &Server{playground: pg, query: qs, logger: logger}

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if logger != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}

	s.mcpServer = server.NewMCPServer(serverName, version, opts...)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: transformCodeTool(), Handler: s.handleTransformCode},
		server.ServerTool{Tool: diffCodeTool(), Handler: s.handleDiffCode},
		server.ServerTool{Tool: listExamplesTool(), Handler: s.handleListExamples},
		server.ServerTool{Tool: getExampleTool(), Handler: s.handleGetExample},
		server.ServerTool{Tool: searchExamplesTool(), Handler: s.handleSearchExamples},
	)

	return s
}

// MCPServer returns the underlying mcp-go server, for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
