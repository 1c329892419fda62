package prompts

import (
	"context"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func promptText(t *testing.T, res *sdkmcp.GetPromptResult) string {
	t.Helper()
	require.Len(t, res.Messages, 1)
	text, ok := res.Messages[0].Content.(*sdkmcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestHandleDesignTable_Arguments(t *testing.T) {
	handler := HandleDesignTable(&Config{DefaultMapper: "redshift", DataRoot: "/srv/data"})
	res, err := handler(context.Background(), &sdkmcp.GetPromptRequest{
		Params: &sdkmcp.GetPromptParams{
			Name:      "design_table",
			Arguments: map[string]string{"path": "events", "table": "analytics.events", "mapper": "postgres"},
		},
	})
	require.NoError(t, err)

	text := promptText(t, res)
	assert.Contains(t, text, `malort_analyze(path="events")`)
	assert.Contains(t, text, `table="analytics.events", mapper="postgres"`)
	assert.Contains(t, text, "`/srv/data`")
}

func TestHandleDesignTable_Defaults(t *testing.T) {
	handler := HandleDesignTable(&Config{})
	res, err := handler(context.Background(), &sdkmcp.GetPromptRequest{Params: &sdkmcp.GetPromptParams{Name: "design_table"}})
	require.NoError(t, err)

	text := promptText(t, res)
	assert.Contains(t, text, `malort_analyze(path="<path>")`)
	assert.Contains(t, text, `mapper="redshift"`)
}
