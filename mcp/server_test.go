package mcp_test

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hyperengineering/moltbook"
	"github.com/hyperengineering/moltbook/internal/commands"
	"github.com/hyperengineering/moltbook/internal/credentials"
	moltbookmcp "github.com/hyperengineering/moltbook/mcp"
)

const (
	testKey   = "moltbook_sk_0123456789abcdef"
	issuedKey = "moltbook_sk_issued9876543210"
)

type hit struct {
	method string
	path   string
	query  string
	body   string
}

// newTestServer returns an MCP server whose client talks to a local TLS
// server impersonating the API host.
func newTestServer(t *testing.T, opts ...moltbookmcp.Option) (*moltbookmcp.Server, func() []hit) {
	t.Helper()

	var mu sync.Mutex
	var hits []hit
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		hits = append(hits, hit{r.Method, r.URL.EscapedPath(), r.URL.RawQuery, string(body)})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/agents/me":
			_, _ = w.Write([]byte(`{"success":true,"agent":{"name":"shellbot","api_key":"` + testKey + `"}}`))
		case "/api/v1/agents/register":
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"success":true,"agent":{"name":"newbot","api_key":"` + issuedKey + `"}}`))
		case "/api/v1/posts/missing":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"error":"Post not found","hint":"Check the post id"}`))
		default:
			_, _ = w.Write([]byte(`{"success":true}`))
		}
	}))
	t.Cleanup(srv.Close)

	tr := srv.Client().Transport.(*http.Transport).Clone()
	tr.TLSClientConfig.ServerName = "example.com"
	addr := srv.Listener.Addr().String()
	tr.DialContext = func(ctx context.Context, network, _ string) (net.Conn, error) {
		var d net.Dialer
		return d.DialContext(ctx, network, addr)
	}

	client, err := moltbook.New(moltbook.Config{APIKey: testKey, Timeout: 5 * time.Second}, moltbook.WithTransport(tr))
	if err != nil {
		t.Fatalf("moltbook.New() returned error: %v", err)
	}

	return moltbookmcp.NewServer(client, commands.Default(), "test", opts...), func() []hit {
		mu.Lock()
		defer mu.Unlock()
		return append([]hit(nil), hits...)
	}
}

// =============================================================================
// Server Initialization Tests
// =============================================================================

func TestServer_ToolsList(t *testing.T) {
	server, _ := newTestServer(t)
	tools := server.ListTools()

	if len(tools) != len(commands.Default().All()) {
		t.Fatalf("ListTools() returned %d tools, want one per command", len(tools))
	}

	names := make(map[string]bool)
	for _, tool := range tools {
		if !strings.HasPrefix(tool.Name, moltbookmcp.ToolPrefix) {
			t.Errorf("tool %q lacks the %q prefix", tool.Name, moltbookmcp.ToolPrefix)
		}
		if tool.Description == "" {
			t.Errorf("tool %q has no description", tool.Name)
		}
		names[tool.Name] = true
	}

	for _, want := range []string{"moltbook_me", "moltbook_create_post", "moltbook_search", "moltbook_dm_send", "moltbook_register"} {
		if !names[want] {
			t.Errorf("tool %q not registered", want)
		}
	}
}

// =============================================================================
// Tool Execution Tests
// =============================================================================

func TestTool_Me_RedactsKey(t *testing.T) {
	server, hits := newTestServer(t)

	result, err := server.CallTool(context.Background(), "moltbook_me", nil)
	if err != nil {
		t.Fatalf("CallTool() returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("CallTool() returned error result: %s", result.Content)
	}
	if strings.Contains(result.Content, testKey) {
		t.Errorf("result leaks the API key: %s", result.Content)
	}
	if !strings.Contains(result.Content, `"shellbot"`) {
		t.Errorf("result missing agent name: %s", result.Content)
	}

	got := hits()
	if len(got) != 1 || got[0].method != http.MethodGet || got[0].path != "/api/v1/agents/me" {
		t.Errorf("requests = %+v, want one GET /api/v1/agents/me", got)
	}
}

func TestTool_Search_NumberArguments(t *testing.T) {
	server, hits := newTestServer(t)

	// JSON numbers arrive as float64.
	result, err := server.CallTool(context.Background(), "moltbook_search", map[string]any{
		"q":     "memory tools",
		"limit": float64(5),
	})
	if err != nil {
		t.Fatalf("CallTool() returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("CallTool() returned error result: %s", result.Content)
	}

	got := hits()
	if len(got) != 1 {
		t.Fatalf("got %d requests, want 1", len(got))
	}
	if got[0].path != "/api/v1/search" {
		t.Errorf("path = %q, want /api/v1/search", got[0].path)
	}
	if !strings.Contains(got[0].query, "limit=5") || !strings.Contains(got[0].query, "q=memory+tools") {
		t.Errorf("query = %q, want q and limit", got[0].query)
	}
}

func TestTool_CreatePost_LinkBoolean(t *testing.T) {
	server, hits := newTestServer(t)

	result, err := server.CallTool(context.Background(), "moltbook_create_post", map[string]any{
		"title": "A link",
		"link":  true,
		"url":   "https://example.org/",
	})
	if err != nil {
		t.Fatalf("CallTool() returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("CallTool() returned error result: %s", result.Content)
	}

	got := hits()
	if len(got) != 1 {
		t.Fatalf("got %d requests, want 1", len(got))
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(got[0].body), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body["url"] != "https://example.org/" || body["submolt"] != "general" {
		t.Errorf("body = %v, want url and default submolt", body)
	}
	if _, ok := body["content"]; ok {
		t.Errorf("link post should not carry content: %v", body)
	}
}

func TestTool_MissingArgument(t *testing.T) {
	server, hits := newTestServer(t)

	result, err := server.CallTool(context.Background(), "moltbook_get_post", map[string]any{})
	if err != nil {
		t.Fatalf("CallTool() returned error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected an error result for a missing post_id")
	}
	if !strings.Contains(result.Content, `"param": "post_id"`) {
		t.Errorf("error should name the parameter: %s", result.Content)
	}
	if n := len(hits()); n != 0 {
		t.Errorf("sent %d requests, want none", n)
	}
}

func TestTool_ProtocolError(t *testing.T) {
	server, _ := newTestServer(t)

	result, err := server.CallTool(context.Background(), "moltbook_get_post", map[string]any{"post_id": "missing"})
	if err != nil {
		t.Fatalf("CallTool() returned error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected an error result for a 404")
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(result.Content), &out); err != nil {
		t.Fatalf("error content is not JSON: %v", err)
	}
	if out["status_code"] != float64(404) {
		t.Errorf("status_code = %v, want 404", out["status_code"])
	}
	if out["kind"] != "protocol" {
		t.Errorf("kind = %v, want protocol", out["kind"])
	}
	if out["error"] != "Post not found" {
		t.Errorf("error = %v, want server message", out["error"])
	}
	if out["hint"] != "Check the post id" {
		t.Errorf("hint = %v, want server hint", out["hint"])
	}
}

func TestTool_Register_SavesIssuedKey(t *testing.T) {
	store := credentials.NewStore(filepath.Join(t.TempDir(), "credentials.json"))
	server, hits := newTestServer(t, moltbookmcp.WithCredentialStore(store))

	result, err := server.CallTool(context.Background(), "moltbook_register", map[string]any{"name": "newbot"})
	if err != nil {
		t.Fatalf("CallTool() returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", result.Content)
	}
	if strings.Contains(result.Content, issuedKey) {
		t.Error("the issued key must be masked in the result")
	}
	if !strings.Contains(result.Content, store.Path()) {
		t.Errorf("result should report where the key was saved:\n%s", result.Content)
	}

	cred, err := store.Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cred.APIKey != issuedKey || cred.AgentName != "newbot" {
		t.Errorf("saved %v, want issued key for newbot", cred)
	}
	if n := len(hits()); n != 1 {
		t.Errorf("got %d requests, want 1", n)
	}
}

func TestTool_Register_RefusesToReplaceSavedKey(t *testing.T) {
	store := credentials.NewStore(filepath.Join(t.TempDir(), "credentials.json"))
	if err := store.Save(credentials.Credential{APIKey: testKey, AgentName: "shellbot"}); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}
	server, hits := newTestServer(t, moltbookmcp.WithCredentialStore(store))

	result, err := server.CallTool(context.Background(), "moltbook_register", map[string]any{"name": "newbot"})
	if err != nil {
		t.Fatalf("CallTool() returned error: %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected an error result, got %s", result.Content)
	}
	if n := len(hits()); n != 0 {
		t.Errorf("got %d requests, want none before the refusal", n)
	}
	cred, err := store.Load()
	if err != nil || cred.APIKey != testKey {
		t.Errorf("saved credential changed: %v, %v", cred, err)
	}
}

func TestTool_Unknown(t *testing.T) {
	server, _ := newTestServer(t)

	for _, name := range []string{"moltbook_nope", "me", "other_me"} {
		result, err := server.CallTool(context.Background(), name, nil)
		if err != nil {
			t.Fatalf("CallTool(%q) returned error: %v", name, err)
		}
		if !result.IsError {
			t.Errorf("CallTool(%q) should be an error result", name)
		}
	}
}

// =============================================================================
// Protocol-Level Tests
// =============================================================================

func TestProtocol_Initialize(t *testing.T) {
	server, _ := newTestServer(t)

	initRequest := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test-client","version":"1.0.0"}}}`
	respMap := roundTrip(t, server, initRequest)

	if _, hasError := respMap["error"]; hasError {
		t.Fatalf("Initialize response has error: %v", respMap["error"])
	}
	result, ok := respMap["result"].(map[string]any)
	if !ok {
		t.Fatal("Initialize response missing result")
	}
	serverInfo, ok := result["serverInfo"].(map[string]any)
	if !ok {
		t.Fatal("Initialize result missing serverInfo")
	}
	if serverInfo["name"] != "moltbook" {
		t.Errorf("serverInfo.name = %v, want moltbook", serverInfo["name"])
	}
	if serverInfo["version"] != "test" {
		t.Errorf("serverInfo.version = %v, want test", serverInfo["version"])
	}
}

func TestProtocol_ToolsListSchema(t *testing.T) {
	server, _ := newTestServer(t)

	roundTrip(t, server, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test-client","version":"1.0.0"}}}`)
	respMap := roundTrip(t, server, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)

	result, ok := respMap["result"].(map[string]any)
	if !ok {
		t.Fatalf("tools/list response missing result: %v", respMap)
	}
	tools, _ := result["tools"].([]any)

	var getPost map[string]any
	for _, raw := range tools {
		tool, _ := raw.(map[string]any)
		if tool["name"] == "moltbook_get_post" {
			getPost = tool
		}
	}
	if getPost == nil {
		t.Fatal("moltbook_get_post not listed")
	}

	schema, _ := getPost["inputSchema"].(map[string]any)
	required, _ := schema["required"].([]any)
	if len(required) != 1 || required[0] != "post_id" {
		t.Errorf("required = %v, want [post_id]", required)
	}
}

func TestProtocol_UnknownMethod(t *testing.T) {
	server, _ := newTestServer(t)

	respMap := roundTrip(t, server, `{"jsonrpc":"2.0","id":1,"method":"nonexistent/method","params":{}}`)

	errorObj, hasError := respMap["error"].(map[string]any)
	if !hasError {
		t.Fatal("Response should have error for unknown method")
	}
	if code, _ := errorObj["code"].(float64); int(code) != -32601 {
		t.Errorf("Error code = %v, want -32601 (METHOD_NOT_FOUND)", errorObj["code"])
	}
}

func roundTrip(t *testing.T, server *moltbookmcp.Server, message string) map[string]any {
	t.Helper()

	response := server.HandleMessage(context.Background(), []byte(message))
	if response == nil {
		t.Fatalf("HandleMessage() returned nil for %s", message)
	}
	respBytes, err := json.Marshal(response)
	if err != nil {
		t.Fatalf("Failed to marshal response: %v", err)
	}
	var respMap map[string]any
	if err := json.Unmarshal(respBytes, &respMap); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	return respMap
}
