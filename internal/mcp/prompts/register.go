package prompts

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all prompts with the MCP server.
func Register(srv *sdkmcp.Server, cfg *Config) {
	// Prompt 1: Design a warehouse table from a directory of JSON
	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        "design_table",
		Description: "RECOMMENDED: Design a warehouse table for a directory of JSON documents. Walks through analysis, type conflicts, column types and the final CREATE TABLE without fetching full statistics resources.",
		Arguments: []*sdkmcp.PromptArgument{
			{
				Name:        "path",
				Description: "Directory holding the JSON documents, relative to the data root",
				Required:    false,
			},
			{
				Name:        "table",
				Description: "Name of the table to create (e.g., 'events' or 'analytics.events')",
				Required:    false,
			},
			{
				Name:        "mapper",
				Description: "Column type mapper: redshift or postgres",
				Required:    false,
			},
		},
	}, HandleDesignTable(cfg))
}
