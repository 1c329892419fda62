package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	schemaexport "github.com/usestring/malort/pkg/jsonschema"
)

// JSONSchemaInput is the input for malort_json_schema.
type JSONSchemaInput struct {
	RunID                string `json:"run_id" jsonschema:"Run ID returned by malort_analyze"`
	Title                string `json:"title,omitempty" jsonschema:"Title of the root schema"`
	AdditionalProperties *bool  `json:"additional_properties,omitempty" jsonschema:"Set additionalProperties on every object (default: unset)"`
}

// JSONSchemaOutput is the output of malort_json_schema.
type JSONSchemaOutput struct {
	Schema any `json:"schema"`
}

// ToolJSONSchema exports the record shape of a run as a JSON Schema.
func ToolJSONSchema(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input JSONSchemaInput) (*sdkmcp.CallToolResult, JSONSchemaOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input JSONSchemaInput) (*sdkmcp.CallToolResult, JSONSchemaOutput, error) {
		res, err := d.Result(input.RunID)
		if err != nil {
			return nil, JSONSchemaOutput{}, err
		}

		schema := schemaexport.Export(res.Stats, &schemaexport.ExportOptions{
			Title:                input.Title,
			Profile:              res.Profile,
			AdditionalProperties: input.AdditionalProperties,
		})
		v, err := ToAny(schema)
		if err != nil {
			return nil, JSONSchemaOutput{}, err
		}
		return nil, JSONSchemaOutput{Schema: v}, nil
	}
}
