// CLAUDE:SUMMARY Registers the domscope_inspect MCP tool.
package inspect

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/domscope/kit"
)

// RegisterMCP registers the inspection tool on an MCP server.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "domscope_inspect",
		Description: "Inspect the scope tree of an HTML fragment. Returns every scope with its named references, child scopes and duplicate-name warnings.",
		InputSchema: inputSchema(map[string]any{
			"html":             map[string]any{"type": "string", "description": "HTML fragment to inspect"},
			"ref_attr":         map[string]any{"type": "string", "description": "Reference attribute (default \"ref\")"},
			"scope_attr":       map[string]any{"type": "string", "description": "Scope attribute (default \"scope-ref\")"},
			"auto_name_prefix": map[string]any{"type": "string", "description": "Prefix of generated scope names (default \"$\")"},
			"include_root":     map[string]any{"type": "boolean", "description": "Expose the root element as the \"root\" reference"},
			"sanitize":         map[string]any{"type": "boolean", "description": "Sanitize the markup before parsing"},
			"markdown":         map[string]any{"type": "boolean", "description": "Render every reference as Markdown"},
			"annotation": map[string]any{
				"type":                 "object",
				"additionalProperties": map[string]any{"type": "string"},
				"description":          "Expected element type per reference name, e.g. {\"title\": \"HTMLHeadingElement\"}",
			},
		}, []string{"html"}),
	}

	kit.RegisterMCPTool(srv, tool, s.endpoint(), kit.DecodeJSON[Request]())
}

// endpoint is the transport-neutral form of Inspect.
func (s *Service) endpoint() kit.Endpoint {
	ep := func(ctx context.Context, req any) (any, error) {
		return s.Inspect(ctx, req.(*Request))
	}
	return kit.Chain(kit.Logging(s.logger, "inspect"))(ep)
}

// inputSchema builds a JSON Schema object with type "object".
func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}
