package mcpsrv

import (
	"context"
	"testing"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/malort/internal/config"
)

type pingInput struct{}

type pingOutput struct {
	Runs int `json:"runs"`
}

func TestNewServer_Options(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Load()
	cfg.LogLevel = "error"

	var seen *Deps
	s, err := NewServer(
		WithConfig(cfg),
		WithDataRoot(dir),
		WithLogFile(dir+"/logs/malort.log"),
		WithDepsTool(&mcp.Tool{Name: "runs", Description: "Cached runs"},
			func(d *Deps) func(context.Context, *mcp.CallToolRequest, pingInput) (*mcp.CallToolResult, pingOutput, error) {
				seen = d
				return func(ctx context.Context, req *mcp.CallToolRequest, in pingInput) (*mcp.CallToolResult, pingOutput, error) {
					return nil, pingOutput{Runs: d.Cache.Len()}, nil
				}
			}),
		WithPrompt(&mcp.Prompt{Name: "hello"}, func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			return &mcp.GetPromptResult{}, nil
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	assert.Equal(t, dir, s.Deps().Config.DataRoot)
	assert.Same(t, s.Deps(), seen)
	assert.NotNil(t, s.MCPServer())
	assert.NotNil(t, s.Deps().Analyzer)
}

func TestNewServer_WithoutBuiltins(t *testing.T) {
	cfg := config.Load()
	cfg.LogFile = ""
	s, err := NewServer(WithConfig(cfg), WithLogLevel("error"), WithoutBuiltinTools(), WithoutBuiltinPrompts())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	assert.Equal(t, 0, s.Deps().Cache.Len())
}
