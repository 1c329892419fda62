package tools

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all tools with the MCP server.
func Register(srv *sdkmcp.Server, d *Deps) {
	// Tool 1: malort_analyze
	AddTool(srv, &sdkmcp.Tool{
		Name:        "malort_analyze",
		Description: "Walk every JSON document in a directory and collect per-field statistics (count, mean, min, max, string samples, float precision). Files ending in .json hold one document; other files hold delimited documents. Returns a run_id for the other malort tools plus a summary listing fields with conflicting types.",
	}, ToolAnalyze(d))

	// Tool 2: malort_field_stats
	AddTool(srv, &sdkmcp.Tool{
		Name:        "malort_field_stats",
		Description: "List statistics rows of an analysis run, one per field path and type, with the inferred column type and presence/null/distinct profile. Requires run_id from malort_analyze. Use prefix to narrow to a subtree.",
	}, ToolFieldStats(d))

	// Tool 3: malort_column_types
	AddTool(srv, &sdkmcp.Tool{
		Name:        "malort_column_types",
		Description: "Infer a database column type (redshift or postgres) and a cleaned column name for every field of an analysis run. Fields seen with more than one type report 'Multiple types detected.'.",
	}, ToolColumnTypes(d))

	// Tool 4: malort_conflicts
	AddTool(srv, &sdkmcp.Tool{
		Name:        "malort_conflicts",
		Description: "List the fields of an analysis run observed under more than one type, with the count of each type.",
	}, ToolConflicts(d))

	// Tool 5: malort_jsonpaths
	AddTool(srv, &sdkmcp.Tool{
		Name:        "malort_jsonpaths",
		Description: "Build the jsonpaths manifest ({\"jsonpaths\": [\"$['a']['b']\", ...]}) for loading the analyzed documents with COPY ... FORMAT JSON.",
	}, ToolJSONPaths(d))

	// Tool 6: malort_create_table
	AddTool(srv, &sdkmcp.Tool{
		Name:        "malort_create_table",
		Description: "Generate a CREATE TABLE statement from an analysis run. The statement is validated with the Postgres parser; conflicting or oversized fields are reported in skipped instead of becoming columns.",
	}, ToolCreateTable(d))

	// Tool 7: malort_json_schema
	AddTool(srv, &sdkmcp.Tool{
		Name:        "malort_json_schema",
		Description: "Export the record shape of an analysis run as a JSON Schema (Draft 2020-12). Fields present and non-null in every document are marked required.",
	}, ToolJSONSchema(d))

	// Tool 8: malort_validate
	AddTool(srv, &sdkmcp.Tool{
		Name:        "malort_validate",
		Description: "Check JSON documents against the JSON Schema of an analysis run, e.g. new exports against the shape of an older run. Reports matching, failing and malformed documents with the most common errors.",
	}, ToolValidate(d))
}
