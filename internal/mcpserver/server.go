// Package mcpserver exposes the tool registry over the Model Context
// Protocol's stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/makhatib/mcp-microsoft365/internal/tools"
)

// Server wraps an MCP server whose tools mirror the registry.
type Server struct {
	mcp *mcp.Server
	log zerolog.Logger
}

// New builds an MCP server advertising every registered operation in
// registration order.
func New(reg *tools.Registry, version string, log zerolog.Logger) (*Server, error) {
	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "mcp-microsoft365",
		Version: version,
	}, nil)

	for _, def := range reg.Definitions() {
		schema, err := inputSchema(def.Schema)
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", def.Name, err)
		}
		srv.AddTool(&mcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: schema,
		}, handler(reg, def.Name))
	}

	log.Info().Int("tools", reg.Len()).Msg("MCP server ready")
	return &Server{mcp: srv, log: log}, nil
}

// Run serves MCP over stdio until the context is cancelled or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info().Msg("serving MCP over stdio")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// handler bridges one MCP tool call into the registry's dispatch boundary.
// Failures come back as IsError results, never protocol errors.
func handler(reg *tools.Registry, name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args map[string]any
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				return textResult("invalid arguments: "+err.Error(), true), nil
			}
		}
		res := reg.Invoke(ctx, name, args)
		return textResult(res.Text, res.IsError), nil
	}
}

func textResult(text string, isError bool) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: isError,
	}
}

// inputSchema converts an operation's schema document into the SDK's
// schema type.
func inputSchema(s *tools.Schema) (*jsonschema.Schema, error) {
	data, err := json.Marshal(s.JSONSchema())
	if err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}
	var out jsonschema.Schema
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	return &out, nil
}
