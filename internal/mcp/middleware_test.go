package mcp

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/malort/internal/mcp/tools"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestLoggingMiddleware_ToolError(t *testing.T) {
	logs := captureLogs(t)
	handler := LoggingMiddleware()(func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
		return nil, tools.ErrNotFound("run", "r1")
	})

	req := &sdkmcp.CallToolRequest{Params: &sdkmcp.CallToolParamsRaw{Name: "malort_conflicts"}}
	_, err := handler(context.Background(), "tools/call", req)
	require.Error(t, err)

	out := logs.String()
	assert.Contains(t, out, "method call failed")
	assert.Contains(t, out, "tool=malort_conflicts")
	assert.Contains(t, out, "code=NOT_FOUND")
}

func TestLoggingMiddleware_Resource(t *testing.T) {
	logs := captureLogs(t)
	handler := LoggingMiddleware()(func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
		return &sdkmcp.ReadResourceResult{}, nil
	})

	req := &sdkmcp.ReadResourceRequest{Params: &sdkmcp.ReadResourceParams{URI: "malort://run/r1/stats"}}
	_, err := handler(context.Background(), "resources/read", req)
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "uri=malort://run/r1/stats")
}
