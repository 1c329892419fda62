package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/malort/internal/schema"
)

// ValidateInput is the input for malort_validate.
type ValidateInput struct {
	RunID       string `json:"run_id" jsonschema:"Run ID whose JSON Schema the documents are checked against"`
	Path        string `json:"path,omitempty" jsonschema:"Directory of JSON files to check, relative to the data root (default: the directory of the run)"`
	Delimiter   string `json:"delimiter,omitempty" jsonschema:"Document delimiter for non-.json files (default: newline)"`
	Selector    string `json:"selector,omitempty" jsonschema:"Optional jq expression selecting the records inside each document"`
	MaxFailures int    `json:"max_failures,omitempty" jsonschema:"Max failing documents listed (default: 20)"`
}

// ValidationSummary summarizes a check.
type ValidationSummary struct {
	Documents int  `json:"documents"`
	Matching  int  `json:"matching"`
	Failed    int  `json:"failed"`
	Malformed int  `json:"malformed"`
	AllMatch  bool `json:"all_match"`
}

// ValidateOutput is the output of malort_validate.
type ValidateOutput struct {
	Summary      ValidationSummary    `json:"summary"`
	Failures     []schema.Failure     `json:"failures,omitzero"`
	CommonErrors []schema.CommonError `json:"common_errors,omitempty"`
}

// ToolValidate checks documents against the JSON Schema of a run, e.g. a new
// day of exports against the shape learned from last week.
func ToolValidate(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ValidateInput) (*sdkmcp.CallToolResult, ValidateOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ValidateInput) (*sdkmcp.CallToolResult, ValidateOutput, error) {
		res, err := d.Result(input.RunID)
		if err != nil {
			return nil, ValidateOutput{}, err
		}

		root := input.Path
		if root == "" {
			root = res.Root
		}
		sel, err := compileSelector(input.Selector)
		if err != nil {
			return nil, ValidateOutput{}, err
		}
		delimiter := input.Delimiter
		if delimiter == "" {
			delimiter = d.Config.Delimiter
		}

		v, err := schema.FromExport(res.Schema(""))
		if err != nil {
			return nil, ValidateOutput{}, WrapAnalysisError(err)
		}
		report, err := schema.Check(ctx, d.FS, root, v, schema.CheckOptions{
			Delimiter:   delimiter,
			Selector:    sel,
			Workers:     d.Config.Workers,
			MaxFailures: clampLimit(input.MaxFailures, 20, d.Config.MaxFieldLimit),
		})
		if err != nil {
			return nil, ValidateOutput{}, WrapAnalysisError(err)
		}

		return nil, ValidateOutput{
			Summary: ValidationSummary{
				Documents: report.Documents,
				Matching:  report.Matching,
				Failed:    report.Failed,
				Malformed: report.Malformed,
				AllMatch:  report.AllMatch(),
			},
			Failures:     report.Failures,
			CommonErrors: report.CommonErrors,
		}, nil
	}
}
