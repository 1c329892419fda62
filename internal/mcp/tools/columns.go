package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/malort/internal/ddl"
	"github.com/usestring/malort/pkg/manifest"
)

// ColumnTypesInput is the input for malort_column_types.
type ColumnTypesInput struct {
	RunID  string `json:"run_id" jsonschema:"Run ID returned by malort_analyze"`
	Mapper string `json:"mapper,omitempty" jsonschema:"Column type mapper: redshift or postgres (default from config)"`
}

// ColumnType is the inferred column of one field path.
type ColumnType struct {
	Path   string `json:"path"`
	Column string `json:"column"`
	Type   string `json:"type"`
}

// ColumnTypesOutput is the output of malort_column_types.
type ColumnTypesOutput struct {
	Mapper  string       `json:"mapper"`
	Columns []ColumnType `json:"columns,omitempty"`
}

// ToolColumnTypes infers a column type for every field path of a run.
func ToolColumnTypes(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ColumnTypesInput) (*sdkmcp.CallToolResult, ColumnTypesOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ColumnTypesInput) (*sdkmcp.CallToolResult, ColumnTypesOutput, error) {
		res, err := d.Result(input.RunID)
		if err != nil {
			return nil, ColumnTypesOutput{}, err
		}
		mapper, err := d.Mapper(input.Mapper)
		if err != nil {
			return nil, ColumnTypesOutput{}, err
		}

		types := res.ColumnTypes(mapper)
		out := ColumnTypesOutput{Mapper: mapper.Name()}
		for _, path := range res.Stats.Paths() {
			out.Columns = append(out.Columns, ColumnType{
				Path:   path,
				Column: manifest.ColumnName(path),
				Type:   types[path],
			})
		}
		return nil, out, nil
	}
}

// JSONPathsInput is the input for malort_jsonpaths.
type JSONPathsInput struct {
	RunID string `json:"run_id" jsonschema:"Run ID returned by malort_analyze"`
}

// JSONPathsOutput is the jsonpaths manifest of a run.
type JSONPathsOutput struct {
	JSONPaths []string `json:"jsonpaths,omitempty"`
}

// ToolJSONPaths builds the jsonpaths manifest for COPY ... FORMAT JSON.
func ToolJSONPaths(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input JSONPathsInput) (*sdkmcp.CallToolResult, JSONPathsOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input JSONPathsInput) (*sdkmcp.CallToolResult, JSONPathsOutput, error) {
		res, err := d.Result(input.RunID)
		if err != nil {
			return nil, JSONPathsOutput{}, err
		}
		return nil, JSONPathsOutput{JSONPaths: res.JSONPaths().Paths}, nil
	}
}

// CreateTableInput is the input for malort_create_table.
type CreateTableInput struct {
	RunID  string `json:"run_id" jsonschema:"Run ID returned by malort_analyze"`
	Table  string `json:"table" jsonschema:"Table name, optionally schema-qualified"`
	Mapper string `json:"mapper,omitempty" jsonschema:"Column type mapper: redshift or postgres (default from config)"`
}

// CreateTableOutput is the output of malort_create_table.
type CreateTableOutput struct {
	SQL     string        `json:"sql"`
	Columns []ddl.Column  `json:"columns,omitempty"`
	Skipped []ddl.Skipped `json:"skipped,omitempty"`
}

// ToolCreateTable generates a validated CREATE TABLE statement for a run.
func ToolCreateTable(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input CreateTableInput) (*sdkmcp.CallToolResult, CreateTableOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input CreateTableInput) (*sdkmcp.CallToolResult, CreateTableOutput, error) {
		if input.Table == "" {
			return nil, CreateTableOutput{}, ErrInvalidInput("table is required")
		}
		res, err := d.Result(input.RunID)
		if err != nil {
			return nil, CreateTableOutput{}, err
		}
		mapper, err := d.Mapper(input.Mapper)
		if err != nil {
			return nil, CreateTableOutput{}, err
		}

		table, sql, err := ddl.Generate(input.Table, res.Stats, mapper)
		if err != nil {
			return nil, CreateTableOutput{}, &CodedError{Code: ErrCodeAnalysisError, Message: "failed to generate table", Cause: err}
		}
		return nil, CreateTableOutput{SQL: sql, Columns: table.Columns, Skipped: table.Skipped}, nil
	}
}
