package prompts

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandleDesignTable implements the table design workflow.
func HandleDesignTable(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		path := "<path>"
		table := "<table>"
		mapper := cfg.DefaultMapper
		if req != nil && req.Params != nil {
			if v := req.Params.Arguments["path"]; v != "" {
				path = v
			}
			if v := req.Params.Arguments["table"]; v != "" {
				table = v
			}
			if v := req.Params.Arguments["mapper"]; v != "" {
				mapper = v
			}
		}
		if mapper == "" {
			mapper = "redshift"
		}

		var sb strings.Builder

		sb.WriteString("# Design a Table from JSON Documents\n\n")
		sb.WriteString("You are a data engineer preparing a warehouse load. ")
		sb.WriteString("Your goal is a CREATE TABLE statement and jsonpaths manifest that fit every document in the directory.\n\n")

		sb.WriteString("## Context Usage Guide\n\n")
		sb.WriteString("- **Tools** return summaries and page through fields - use these for most analysis\n")
		sb.WriteString("- **Resources** (`malort://run/{run_id}/stats`) return the full statistics map - high context cost for wide documents\n")
		fmt.Fprintf(&sb, "- Paths are resolved under the data root `%s`\n\n", cfg.DataRoot)

		sb.WriteString("## Workflow Steps\n\n")
		sb.WriteString("1. **Analyze** - Collect statistics for every field\n")
		sb.WriteString("   - Files ending in `.json` hold one document; other files are split on the delimiter (newline by default)\n")
		sb.WriteString("   - Use `selector` (a jq expression such as `.records[]`) when records are nested inside each document\n")
		sb.WriteString("   - Set `skip_malformed: true` only if a few broken rows are expected\n\n")
		sb.WriteString("2. **Resolve conflicts** - Fields seen with more than one type cannot become a single column\n")
		sb.WriteString("   - Decide per field: cast to varchar, split into two columns, or drop\n\n")
		sb.WriteString("3. **Review column types** - Check the inferred types and cleaned column names\n")
		sb.WriteString("   - Use `malort_field_stats` with a `prefix` to see samples, precision and presence frequency\n")
		sb.WriteString("   - Fields with low frequency or many nulls should stay nullable\n\n")
		sb.WriteString("4. **Generate DDL** - Produce the validated CREATE TABLE statement\n\n")

		sb.WriteString("## Suggested Tools\n\n")
		sb.WriteString("```\n")
		fmt.Fprintf(&sb, "malort_analyze(path=\"%s\")\n", path)
		sb.WriteString("malort_conflicts(run_id=\"<run_id>\")\n")
		fmt.Fprintf(&sb, "malort_column_types(run_id=\"<run_id>\", mapper=\"%s\")\n", mapper)
		fmt.Fprintf(&sb, "malort_create_table(run_id=\"<run_id>\", table=\"%s\", mapper=\"%s\")\n", table, mapper)
		sb.WriteString("malort_jsonpaths(run_id=\"<run_id>\")\n")
		sb.WriteString("```\n\n")

		sb.WriteString("## Expected Output Format\n\n")
		sb.WriteString("1. **Summary**: documents analyzed, fields found, conflicts\n")
		sb.WriteString("2. **Conflict decisions**: one line per conflicting field\n")
		sb.WriteString("3. **DDL**: the final CREATE TABLE statement\n")
		sb.WriteString("4. **Manifest**: the jsonpaths file, in column order\n\n")

		sb.WriteString("## If Things Go Wrong\n\n")
		sb.WriteString("- **NOT_FOUND on analyze?** The path does not exist under the data root\n")
		sb.WriteString("- **INVALID_INPUT on analyze?** A document is malformed; the message names the file and index\n")
		sb.WriteString("- **Too large for char?** A string field exceeds the mapper's limit; store it outside the table or truncate\n")

		return &sdkmcp.GetPromptResult{
			Description: "Design a table from JSON documents",
			Messages: []*sdkmcp.PromptMessage{
				{
					Role:    "user",
					Content: &sdkmcp.TextContent{Text: sb.String()},
				},
			},
		}, nil
	}
}
