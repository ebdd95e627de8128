// Package mcp exposes the Moltbook command table as Model Context Protocol
// tools served over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hyperengineering/moltbook"
	"github.com/hyperengineering/moltbook/internal/commands"
	"github.com/hyperengineering/moltbook/internal/credentials"
)

// ToolPrefix is prepended to every command name to form its tool name.
const ToolPrefix = "moltbook_"

// Server wraps the MCP server with one tool per Moltbook command.
type Server struct {
	client    *moltbook.Client
	registry  *commands.Registry
	store     *credentials.Store
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithCredentialStore saves keys issued by moltbook_register to store.
// Registration is refused while store holds a working credential.
func WithCredentialStore(store *credentials.Store) Option {
	return func(s *Server) {
		s.store = store
	}
}

// ToolResult represents the result of a tool call.
type ToolResult struct {
	Content string
	IsError bool
}

// ToolInfo represents a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

// NewServer creates an MCP server with every command in reg registered.
func NewServer(client *moltbook.Client, reg *commands.Registry, version string, opts ...Option) *Server {
	if version == "" {
		version = "dev"
	}
	s := &Server{
		client:   client,
		registry: reg,
		mcpServer: server.NewMCPServer(
			"moltbook",
			version,
			server.WithToolCapabilities(true),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	return s
}

// Run serves on stdin and stdout until stdin closes.
func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

// HandleMessage processes a raw JSON-RPC message and returns a response.
// This is primarily for testing the MCP protocol layer.
func (s *Server) HandleMessage(ctx context.Context, message json.RawMessage) mcp.JSONRPCMessage {
	return s.mcpServer.HandleMessage(ctx, message)
}

// ListTools returns all registered tools in menu order.
func (s *Server) ListTools() []ToolInfo {
	cmds := s.registry.All()
	out := make([]ToolInfo, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, ToolInfo{Name: ToolPrefix + c.Name, Description: describe(c)})
	}
	return out
}

// CallTool executes a tool by name with the given arguments.
// Failures are reported in the result, not as an error, so the model sees
// them.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (*ToolResult, error) {
	c, ok := s.registry.ByName(strings.TrimPrefix(name, ToolPrefix))
	if !ok || !strings.HasPrefix(name, ToolPrefix) {
		return &ToolResult{Content: fmt.Sprintf("unknown tool: %s", name), IsError: true}, nil
	}

	saveIssued := c.Name == commands.NameRegister && s.store != nil
	if saveIssued {
		if err := s.store.CheckVacant(); err != nil {
			return &ToolResult{Content: formatError(err), IsError: true}, nil
		}
	}

	res, err := c.Execute(ctx, s.client, args)
	if err != nil {
		return &ToolResult{Content: formatError(err), IsError: true}, nil
	}
	if saveIssued {
		if cred, ok := credentials.FromRegistration(res.Fields); ok {
			if err := s.store.Save(cred); err != nil {
				return &ToolResult{Content: formatError(err), IsError: true}, nil
			}
			res.Fields["saved_to"] = s.store.Path()
		}
	}
	return &ToolResult{Content: formatResult(res)}, nil
}

func (s *Server) registerTools() {
	for _, c := range s.registry.All() {
		s.mcpServer.AddTool(newTool(c), s.handlerFor(ToolPrefix+c.Name))
	}
}

func (s *Server) handlerFor(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := s.CallTool(ctx, name, req.GetArguments())
		if err != nil {
			return nil, err
		}
		return toMCPResult(result), nil
	}
}

func newTool(c commands.Command) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(describe(c))}
	for _, p := range c.Params {
		opts = append(opts, toolParam(p))
	}
	return mcp.NewTool(ToolPrefix+c.Name, opts...)
}

func describe(c commands.Command) string {
	d := c.Label()
	if c.Public {
		d += " (no API key needed)"
	}
	return d
}

// toolParam maps a command parameter onto a JSON schema property. A
// conditional parameter is never marked required because whether it applies
// depends on other arguments.
func toolParam(p commands.Param) mcp.ToolOption {
	props := []mcp.PropertyOption{mcp.Description(p.Help)}
	if p.Required() && p.When == nil {
		props = append(props, mcp.Required())
	}

	switch p.Kind {
	case commands.KindInt:
		if p.Max > 0 {
			props = append(props, mcp.Min(float64(p.Min)), mcp.Max(float64(p.Max)))
		}
		if n, err := strconv.Atoi(p.Default); err == nil {
			props = append(props, mcp.DefaultNumber(float64(n)))
		}
		return mcp.WithNumber(p.Name, props...)
	case commands.KindBool:
		if b, err := p.Parse(p.Default); err == nil && p.Default != "" {
			props = append(props, mcp.DefaultBool(b.(bool)))
		}
		return mcp.WithBoolean(p.Name, props...)
	default:
		if p.Default != "" {
			props = append(props, mcp.DefaultString(p.Default))
		}
		return mcp.WithString(p.Name, props...)
	}
}

func toMCPResult(r *ToolResult) *mcp.CallToolResult {
	result := &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: r.Content,
			},
		},
	}
	if r.IsError {
		result.IsError = true
	}
	return result
}

// formatResult renders the normalized response with secrets masked.
func formatResult(res *moltbook.Result) string {
	data, err := json.MarshalIndent(moltbook.RedactFields(res.Fields), "", "  ")
	if err != nil {
		return fmt.Sprintf("status %d", res.StatusCode)
	}
	return string(data)
}

// formatError renders a failure as JSON the model can act on.
func formatError(err error) string {
	out := map[string]any{"ok": false, "error": err.Error()}

	var argErr *commands.ArgError
	var apiErr *moltbook.APIError
	switch {
	case errors.As(err, &argErr):
		out["kind"] = "argument"
		out["param"] = argErr.Param
	case errors.As(err, &apiErr):
		out["kind"] = apiErr.Kind.String()
		out["error"] = apiErr.Message
		if apiErr.StatusCode != 0 {
			out["status_code"] = apiErr.StatusCode
		}
		if len(apiErr.Details) > 0 {
			out["details"] = moltbook.RedactFields(apiErr.Details)
		}
		if h := apiErr.Hint(); h != "" {
			out["hint"] = h
		}
	}

	data, mErr := json.MarshalIndent(out, "", "  ")
	if mErr != nil {
		return err.Error()
	}
	return string(data)
}
