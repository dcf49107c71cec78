package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/hooks2vue/pkg/catalog"
	"github.com/gnana997/hooks2vue/pkg/playground"
)

const defaultDiffContext = 3

type exampleSummary struct {
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Hooks       []string `json:"hooks"`
	Language    string   `json:"language"`
}

type exampleDetail struct {
	*catalog.Example
	Result *playground.Outcome `json:"result,omitempty"`
}

type diffResponse struct {
	Changed  bool     `json:"changed"`
	Diff     string   `json:"diff"`
	Inserted int      `json:"inserted"`
	Deleted  int      `json:"deleted"`
	APIs     []string `json:"apis,omitempty"`
}

type searchHit struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	MatchReason string `json:"match_reason"`
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// outcomeResult encodes an outcome; a transform failure is flagged as a
// tool error but still carries the marker payload.
func outcomeResult(out *playground.Outcome) (*mcp.CallToolResult, error) {
	result, err := jsonResult(out)
	if err != nil {
		return nil, err
	}
	result.IsError = out.Error != nil
	return result, nil
}

func (s *Server) handleTransformCode(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := req.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := s.playground.Transform(code, req.GetString("language", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return outcomeResult(out)
}

func (s *Server) handleDiffCode(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := req.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lines := req.GetInt("context", defaultDiffContext)
	if lines < 0 {
		return mcp.NewToolResultError("context must not be negative"), nil
	}

	out, err := s.playground.Transform(code, req.GetString("language", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if out.Error != nil {
		return outcomeResult(out)
	}

	d := playground.Diff(code, out.Code)
	return jsonResult(diffResponse{
		Changed:  out.Changed,
		Diff:     d.Unified(playground.RenderOptions{Context: lines}),
		Inserted: d.Inserted,
		Deleted:  d.Deleted,
		APIs:     out.APIs,
	})
}

func (s *Server) handleListExamples(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	examples := s.query.ListExamples(req.GetString("hook", ""), req.GetString("keyword", ""))

	summaries := make([]exampleSummary, 0, len(examples))
	for _, ex := range examples {
		summaries = append(summaries, exampleSummary{
			Name:        ex.Name,
			Title:       ex.Title,
			Description: ex.Description,
			Hooks:       ex.Hooks,
			Language:    ex.Language,
		})
	}
	return jsonResult(summaries)
}

func (s *Server) handleGetExample(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")

	var ex *catalog.Example
	var ok bool
	if name == "" {
		ex, ok = s.query.DefaultExample()
	} else {
		ex, ok = s.query.GetExample(name)
	}
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("example %q not found", name)), nil
	}

	detail := exampleDetail{Example: ex}
	if req.GetBool("transform", false) {
		out, err := s.playground.Transform(ex.Code, ex.Language)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		detail.Result = out
	}
	return jsonResult(detail)
}

func (s *Server) handleSearchExamples(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	results := s.query.SearchExamples(query)
	if len(results) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("no examples found for %q", query)), nil
	}

	hits := make([]searchHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, searchHit{Name: r.Example.Name, Title: r.Example.Title, MatchReason: r.MatchReason})
	}
	return jsonResult(hits)
}
