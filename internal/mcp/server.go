package mcpserver

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"blocksgraph/internal/layout"
	"blocksgraph/internal/service"
)

// Server is the MCP server for the block graph.
// It exposes tools so AI agents can inspect and edit the canvas.
type Server struct {
	mcp    *server.MCPServer
	graph  *service.Graph
	layout *layout.Engine
}

// Deps holds the dependencies passed from the app layer.
type Deps struct {
	Graph  *service.Graph
	Layout *layout.Engine
}

// New creates and configures a new MCP server with all tools.
func New(deps Deps) *Server {
	s := &Server{
		graph:  deps.Graph,
		layout: deps.Layout,
	}
	if s.layout == nil {
		s.layout = layout.NewEngine(0)
	}

	s.mcp = server.NewMCPServer(
		"blocksgraph-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.registerGraphTools()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Println("[MCP] Starting stdio server...")
	return server.ServeStdio(s.mcp)
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// getString extracts a required string argument.
func getString(args map[string]any, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

// getFloat extracts a numeric argument, with a default when absent.
func getFloat(args map[string]any, key string, def float64) float64 {
	if v, ok := args[key].(float64); ok {
		return v
	}
	return def
}
