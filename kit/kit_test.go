package kit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()

	if got := GetRequestID(ctx); got != "" {
		t.Errorf("GetRequestID(empty) = %q", got)
	}
	if got := GetTransport(ctx); got != "http" {
		t.Errorf("GetTransport(empty) = %q, want http default", got)
	}

	ctx = WithRequestID(ctx, "req-123")
	ctx = WithTransport(ctx, "mcp")
	if got := GetRequestID(ctx); got != "req-123" {
		t.Errorf("GetRequestID = %q", got)
	}
	if got := GetTransport(ctx); got != "mcp" {
		t.Errorf("GetTransport = %q", got)
	}
}

func toolSession(t *testing.T, register func(*mcp.Server)) *mcp.ClientSession {
	t.Helper()
	impl := &mcp.Implementation{Name: "kit-test", Version: "0.1.0"}
	srv := mcp.NewServer(impl, nil)
	register(srv)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	client := mcp.NewClient(impl, nil)
	session, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func TestRegisterMCPTool(t *testing.T) {
	type echoReq struct {
		Msg string `json:"msg"`
	}

	session := toolSession(t, func(srv *mcp.Server) {
		tool := &mcp.Tool{
			Name: "echo",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{"msg": map[string]any{"type": "string"}},
			},
		}
		endpoint := func(ctx context.Context, req any) (any, error) {
			r := req.(*echoReq)
			if r.Msg == "boom" {
				return nil, errors.New("exploded")
			}
			return map[string]any{"echo": r.Msg, "transport": GetTransport(ctx)}, nil
		}
		decode := func(req *mcp.CallToolRequest) (*MCPDecodeResult, error) {
			var r echoReq
			if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
				return nil, err
			}
			return &MCPDecodeResult{Request: &r}, nil
		}
		RegisterMCPTool(srv, tool, endpoint, decode)
	})

	t.Run("success", func(t *testing.T) {
		result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
			Name:      "echo",
			Arguments: map[string]any{"msg": "hello"},
		})
		if err != nil {
			t.Fatal(err)
		}
		if err := result.GetError(); err != nil {
			t.Fatalf("tool error: %v", err)
		}
		tc := result.Content[0].(*mcp.TextContent)
		var resp struct {
			Echo      string `json:"echo"`
			Transport string `json:"transport"`
		}
		if err := json.Unmarshal([]byte(tc.Text), &resp); err != nil {
			t.Fatal(err)
		}
		if resp.Echo != "hello" {
			t.Errorf("echo = %q", resp.Echo)
		}
		if resp.Transport != "mcp" {
			t.Errorf("transport = %q, want mcp", resp.Transport)
		}
	})

	t.Run("endpoint failure becomes tool error", func(t *testing.T) {
		result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
			Name:      "echo",
			Arguments: map[string]any{"msg": "boom"},
		})
		if err != nil {
			t.Fatalf("protocol error: %v", err)
		}
		if !result.IsError {
			t.Error("expected tool error")
		}
	})
}
