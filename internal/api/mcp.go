package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/grokvibe/internal/vibe"
)

// MCPPreferences reads and writes per-user default vibes.
type MCPPreferences interface {
	Vibe(ctx context.Context, userID string) vibe.Vibe
	SetVibe(ctx context.Context, userID string, v vibe.Vibe) bool
}

// MCPCompleter sends a prompt to the completion API.
type MCPCompleter interface {
	Complete(ctx context.Context, prompt string) (string, bool)
}

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Preferences MCPPreferences
	Completer   MCPCompleter
	Version     string
}

// NewMCPServer creates an MCP server exposing the rewrite and default-vibe
// operations as tools.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"grokvibe",
		deps.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("grokvibe rewrites text in a chosen vibe: "+vibe.Names()+"."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("rewrite",
			mcp.WithDescription("Rewrite text in a vibe. Without a vibe the user's default is used."),
			mcp.WithString("text", mcp.Description("Text to rewrite"), mcp.Required()),
			mcp.WithString("vibe", mcp.Description("One of: "+vibe.Names())),
			mcp.WithString("user", mcp.Description("Slack user id whose default vibe applies")),
			mcp.WithBoolean("reverse", mcp.Description("Strip the polish instead of adding it")),
		),
		mcpRewrite(deps),
	)

	s.AddTool(
		mcp.NewTool("get_vibe",
			mcp.WithDescription("Return a user's default vibe."),
			mcp.WithString("user", mcp.Description("Slack user id"), mcp.Required()),
		),
		mcpGetVibe(deps),
	)

	s.AddTool(
		mcp.NewTool("set_vibe",
			mcp.WithDescription("Set a user's default vibe."),
			mcp.WithString("user", mcp.Description("Slack user id"), mcp.Required()),
			mcp.WithString("vibe", mcp.Description("One of: "+vibe.Names()), mcp.Required()),
		),
		mcpSetVibe(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"vibes://list",
			"Available vibes",
			mcp.WithResourceDescription("The fixed set of vibe identifiers"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceVibes,
	)

	return s
}

func mcpRewrite(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := req.RequireString("text")
		if err != nil || strings.TrimSpace(text) == "" {
			return mcpError("text is required"), nil
		}
		reverse := req.GetBool("reverse", false)

		var v vibe.Vibe
		switch name, user := req.GetString("vibe", ""), req.GetString("user", ""); {
		case name != "":
			parsed, ok := vibe.Parse(name)
			if !ok {
				return mcpError(fmt.Sprintf("unknown vibe %q; valid: %s", name, vibe.Names())), nil
			}
			v = parsed
		case user != "":
			v = deps.Preferences.Vibe(ctx, user)
		default:
			v = vibe.Default
		}

		out, ok := deps.Completer.Complete(ctx, vibe.BuildPrompt(text, v, reverse))
		if !ok {
			return mcpError("translation unavailable"), nil
		}
		return mcpText(out), nil
	}
}

func mcpGetVibe(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		user, err := req.RequireString("user")
		if err != nil {
			return mcpError("user is required"), nil
		}
		return mcpText(string(deps.Preferences.Vibe(ctx, user))), nil
	}
}

func mcpSetVibe(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		user, err := req.RequireString("user")
		if err != nil {
			return mcpError("user is required"), nil
		}
		name, err := req.RequireString("vibe")
		if err != nil {
			return mcpError("vibe is required"), nil
		}
		v, ok := vibe.Parse(name)
		if !ok {
			return mcpError(fmt.Sprintf("unknown vibe %q; valid: %s", name, vibe.Names())), nil
		}
		if !deps.Preferences.SetVibe(ctx, user, v) {
			return mcpError("preference store unavailable"), nil
		}
		return mcpText(fmt.Sprintf("Default vibe for %s set to %s", user, v)), nil
	}
}

func mcpResourceVibes(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	b, err := json.Marshal(vibe.All())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal vibes: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
