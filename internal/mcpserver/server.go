// Package mcpserver exposes the tool dispatcher, schema resources and
// prompt templates over the Model Context Protocol.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"findata-mcp/internal/apperr"
	"findata-mcp/observability"
	"findata-mcp/tools"
)

const (
	Name    = "findata-mcp"
	Version = "1.0.0"
)

// Instructions is sent to clients on initialize
const Instructions = "Financial data tools: company profiles and search, quarterly financial reports, " +
	"side-by-side comparisons, daily stock prices, stock screening, analyst ratings and sector overviews. " +
	"Schema resources describe the underlying tables. Calls share a rate limit budget."

// Caller runs one tool call
type Caller interface {
	Call(ctx context.Context, req tools.Request) tools.Response
}

// New builds an MCP server with every tool, resource and prompt registered
func New(caller Caller) (*server.MCPServer, error) {
	s := server.NewMCPServer(Name, Version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithPromptCapabilities(false),
		server.WithInstructions(Instructions),
		server.WithRecovery(),
	)

	for _, def := range tools.Catalog {
		schema, err := json.Marshal(def.InputSchema())
		if err != nil {
			return nil, fmt.Errorf("failed to encode schema for %s: %w", def.Name, err)
		}
		s.AddTool(mcp.NewToolWithRawSchema(string(def.Name), def.Description, schema), toolHandler(caller, string(def.Name)))
	}

	for _, res := range tools.Resources() {
		s.AddResource(
			mcp.NewResource(res.URI, res.Name,
				mcp.WithResourceDescription(res.Description),
				mcp.WithMIMEType(res.MIMEType),
			),
			readResource,
		)
	}

	for _, p := range tools.Prompts {
		opts := []mcp.PromptOption{mcp.WithPromptDescription(p.Description)}
		for _, a := range p.Args {
			argOpts := []mcp.ArgumentOption{mcp.ArgumentDescription(a.Description)}
			if a.Required {
				argOpts = append(argOpts, mcp.RequiredArgument())
			}
			opts = append(opts, mcp.WithArgument(a.Name, argOpts...))
		}
		s.AddPrompt(mcp.NewPrompt(p.Name, opts...), promptHandler(p))
	}

	return s, nil
}

// toolHandler adapts the dispatcher. Typed failures become tool errors
// the model can read; they are never protocol errors.
func toolHandler(caller Caller, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resp := caller.Call(ctx, tools.Request{
			Tool:      name,
			Args:      req.GetArguments(),
			CallerKey: sessionKey(ctx),
		})
		if !resp.OK {
			return mcp.NewToolResultError(errorText(resp.Error)), nil
		}
		return mcp.NewToolResultText(resp.Text), nil
	}
}

func errorText(e *tools.ErrorBody) string {
	switch {
	case e == nil:
		return string(apperr.KindUpstream) + ": internal error"
	case e.RetryAfterSeconds > 0:
		return fmt.Sprintf("%s: %s (retry after %d seconds)", e.Kind, e.Message, e.RetryAfterSeconds)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

// sessionKey scopes rate limiting to the MCP session when there is one
func sessionKey(ctx context.Context) string {
	if session := server.ClientSessionFromContext(ctx); session != nil {
		return session.SessionID()
	}
	return ""
}

func readResource(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	text, ok := tools.ReadResource(req.Params.URI)
	if !ok {
		return nil, fmt.Errorf("unknown resource %q", req.Params.URI)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: req.Params.URI, MIMEType: "text/plain", Text: text},
	}, nil
}

func promptHandler(p tools.Prompt) server.PromptHandlerFunc {
	return func(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		text, err := p.Render(req.Params.Arguments)
		if err != nil {
			return nil, err
		}
		return mcp.NewGetPromptResult(p.Description, []mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
		}), nil
	}
}

// ServeStdio serves JSON-RPC over stdin/stdout until ctx is done or
// the input closes. Protocol errors are logged through the app logger.
func ServeStdio(ctx context.Context, s *server.MCPServer, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s)
	stdio.SetErrorLogger(log.New(logWriter{}, "", 0))

	observability.Info("serving MCP over stdio")
	if err := stdio.Listen(ctx, in, out); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// NewSSE builds the SSE transport. baseURL is advertised to clients in
// the endpoint event.
func NewSSE(s *server.MCPServer, baseURL string) *server.SSEServer {
	return server.NewSSEServer(s, server.WithBaseURL(baseURL))
}

// logWriter forwards the stdio server's logger to the app logger
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	observability.Warn("mcp stdio", "message", string(p))
	return len(p), nil
}
