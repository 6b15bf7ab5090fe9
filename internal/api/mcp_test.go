package api

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalambet/grokvibe/internal/vibe"
)

// --- mocks ---

type mockPrefs struct {
	mu   sync.Mutex
	data map[string]vibe.Vibe
	fail bool
}

func newMockPrefs() *mockPrefs { return &mockPrefs{data: make(map[string]vibe.Vibe)} }

func (m *mockPrefs) Vibe(_ context.Context, user string) vibe.Vibe {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[user]; ok {
		return v
	}
	return vibe.Default
}

func (m *mockPrefs) SetVibe(_ context.Context, user string, v vibe.Vibe) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return false
	}
	m.data[user] = v
	return true
}

type mockCompleter struct {
	prompts []string
	text    string
	ok      bool
}

func (m *mockCompleter) Complete(_ context.Context, prompt string) (string, bool) {
	m.prompts = append(m.prompts, prompt)
	return m.text, m.ok
}

// --- helpers ---

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content, "no content in result")
	tc, ok := result.Content[0].(mcp.TextContent)
	require.Truef(t, ok, "expected TextContent, got %T", result.Content[0])
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// --- tests ---

func TestMCPTool_RewriteExplicitVibe(t *testing.T) {
	c := &mockCompleter{text: "Jacked in.", ok: true}
	deps := MCPDeps{Preferences: newMockPrefs(), Completer: c}

	result, err := mcpRewrite(deps)(context.Background(), makeCallToolRequest("rewrite", map[string]any{
		"text": "logging in", "vibe": "CYBERPUNK",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, toolText(t, result))
	assert.Equal(t, "Jacked in.", toolText(t, result))
	require.Len(t, c.prompts, 1)
	assert.Equal(t, vibe.BuildPrompt("logging in", vibe.Cyberpunk, false), c.prompts[0])
}

func TestMCPTool_RewriteUserDefaultAndReverse(t *testing.T) {
	prefs := newMockPrefs()
	prefs.data["U1"] = vibe.Nerdy
	c := &mockCompleter{text: "ok", ok: true}
	deps := MCPDeps{Preferences: prefs, Completer: c}

	_, err := mcpRewrite(deps)(context.Background(), makeCallToolRequest("rewrite", map[string]any{
		"text": "hello", "user": "U1",
	}))
	require.NoError(t, err)
	_, err = mcpRewrite(deps)(context.Background(), makeCallToolRequest("rewrite", map[string]any{
		"text": "hello", "reverse": true,
	}))
	require.NoError(t, err)

	require.Len(t, c.prompts, 2)
	assert.Equal(t, vibe.BuildPrompt("hello", vibe.Nerdy, false), c.prompts[0])
	assert.Equal(t, vibe.BuildPrompt("hello", "", true), c.prompts[1])
}

func TestMCPTool_RewriteErrors(t *testing.T) {
	c := &mockCompleter{ok: false}
	deps := MCPDeps{Preferences: newMockPrefs(), Completer: c}

	result, err := mcpRewrite(deps)(context.Background(), makeCallToolRequest("rewrite", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = mcpRewrite(deps)(context.Background(), makeCallToolRequest("rewrite", map[string]any{"text": "x", "vibe": "shouty"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, toolText(t, result), "unknown vibe")
	assert.Empty(t, c.prompts)

	result, err = mcpRewrite(deps)(context.Background(), makeCallToolRequest("rewrite", map[string]any{"text": "x"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, "translation unavailable", toolText(t, result))
}

func TestMCPTool_SetAndGetVibe(t *testing.T) {
	deps := MCPDeps{Preferences: newMockPrefs(), Completer: &mockCompleter{}}

	result, err := mcpSetVibe(deps)(context.Background(), makeCallToolRequest("set_vibe", map[string]any{
		"user": "U9", "vibe": "uk_slang",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, toolText(t, result))

	result, err = mcpGetVibe(deps)(context.Background(), makeCallToolRequest("get_vibe", map[string]any{"user": "U9"}))
	require.NoError(t, err)
	assert.Equal(t, "uk_slang", toolText(t, result))
}

func TestMCPTool_SetVibeRejectsUnknown(t *testing.T) {
	prefs := newMockPrefs()
	deps := MCPDeps{Preferences: prefs, Completer: &mockCompleter{}}

	result, err := mcpSetVibe(deps)(context.Background(), makeCallToolRequest("set_vibe", map[string]any{
		"user": "U9", "vibe": "bogus",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Empty(t, prefs.data)
}

func TestMCPTool_SetVibeStoreDown(t *testing.T) {
	prefs := newMockPrefs()
	prefs.fail = true
	deps := MCPDeps{Preferences: prefs, Completer: &mockCompleter{}}

	result, err := mcpSetVibe(deps)(context.Background(), makeCallToolRequest("set_vibe", map[string]any{
		"user": "U9", "vibe": "pro",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestMCPResource_Vibes(t *testing.T) {
	contents, err := mcpResourceVibes(context.Background(), mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{URI: "vibes://list"},
	})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	tc, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)

	var got []string
	require.NoError(t, json.Unmarshal([]byte(tc.Text), &got))
	assert.Equal(t, []string{"pro", "nerdy", "cyberpunk", "uk_slang", "unfiltered"}, got)
}

func TestNewMCPServer(t *testing.T) {
	s := NewMCPServer(MCPDeps{Preferences: newMockPrefs(), Completer: &mockCompleter{}, Version: "test"})
	assert.NotNil(t, s)
}
