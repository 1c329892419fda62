package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/malort/internal/analyze"
)

// AnalyzeInput is the input for malort_analyze.
type AnalyzeInput struct {
	Path            string `json:"path,omitempty" jsonschema:"Directory of JSON files to analyze, relative to the data root (default: the data root itself)"`
	Delimiter       string `json:"delimiter,omitempty" jsonschema:"Document delimiter for non-.json files (default: newline)"`
	ParseTimestamps *bool  `json:"parse_timestamps,omitempty" jsonschema:"Detect ISO-8601 strings as datetimes (default: true)"`
	Selector        string `json:"selector,omitempty" jsonschema:"Optional jq expression selecting the records inside each document, e.g. .items[]"`
	SkipMalformed   *bool  `json:"skip_malformed,omitempty" jsonschema:"Skip documents that fail to parse instead of failing the run"`
	Seed            uint64 `json:"seed,omitempty" jsonschema:"Non-zero seed for reproducible string samples"`
}

// AnalyzeOutput is the output of malort_analyze.
type AnalyzeOutput struct {
	RunID     string   `json:"run_id"`
	Documents int64    `json:"documents"`
	Skipped   int64    `json:"skipped"`
	Files     int      `json:"files"`
	Bytes     string   `json:"bytes"`
	ElapsedMs int64    `json:"elapsed_ms"`
	Fields    int      `json:"fields"`
	Conflicts []string `json:"conflicts,omitempty"`
	Hint      string   `json:"hint"`
}

// ToolAnalyze runs an analysis and caches the result under a new run ID.
func ToolAnalyze(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input AnalyzeInput) (*sdkmcp.CallToolResult, AnalyzeOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input AnalyzeInput) (*sdkmcp.CallToolResult, AnalyzeOutput, error) {
		root := input.Path
		if root == "" {
			root = "/"
		}

		sel, err := compileSelector(input.Selector)
		if err != nil {
			return nil, AnalyzeOutput{}, err
		}
		if sel == nil && d.Config.Selector != "" {
			if sel, err = compileSelector(d.Config.Selector); err != nil {
				return nil, AnalyzeOutput{}, err
			}
		}

		opts := analyze.Options{
			Delimiter:       d.Config.Delimiter,
			ParseTimestamps: d.Config.ParseTimestamps,
			Workers:         d.Config.Workers,
			SkipMalformed:   d.Config.SkipMalformed,
			Selector:        sel,
			Seed:            d.Config.Seed,
		}
		if input.Delimiter != "" {
			opts.Delimiter = input.Delimiter
		}
		if input.ParseTimestamps != nil {
			opts.ParseTimestamps = *input.ParseTimestamps
		}
		if input.SkipMalformed != nil {
			opts.SkipMalformed = *input.SkipMalformed
		}
		if input.Seed != 0 {
			opts.Seed = input.Seed
		}

		res, err := d.Analyze(ctx, root, opts)
		if err != nil {
			return nil, AnalyzeOutput{}, WrapAnalysisError(err)
		}

		runID := uuid.NewString()
		d.Cache.Put(runID, res)

		slog.Debug("analysis cached",
			slog.String("run_id", runID),
			slog.String("root", root),
			slog.Int("cached_runs", d.Cache.Len()),
		)

		return nil, AnalyzeOutput{
			RunID:     runID,
			Documents: res.Count,
			Skipped:   res.Skipped,
			Files:     res.Files,
			Bytes:     humanize.Bytes(uint64(res.Bytes)),
			ElapsedMs: res.Elapsed.Milliseconds(),
			Fields:    len(res.Stats),
			Conflicts: res.ConflictingTypes().Paths(),
			Hint:      fmt.Sprintf("Use malort_field_stats(run_id=%q) for per-field statistics or malort_create_table(run_id=%q, table=...) for DDL.", runID, runID),
		}, nil
	}
}
