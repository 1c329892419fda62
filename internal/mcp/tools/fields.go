package tools

import (
	"context"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/malort/internal/report"
)

// FieldStatsInput is the input for malort_field_stats.
type FieldStatsInput struct {
	RunID  string `json:"run_id" jsonschema:"Run ID returned by malort_analyze"`
	Prefix string `json:"prefix,omitempty" jsonschema:"Only fields whose dotted path starts with this prefix"`
	Mapper string `json:"mapper,omitempty" jsonschema:"Column type mapper: redshift or postgres (default from config)"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Max rows to return (default: 50, max: 1000)"`
	Offset int    `json:"offset,omitempty" jsonschema:"Rows to skip for paging"`
}

// FieldStatsOutput is the output of malort_field_stats.
type FieldStatsOutput struct {
	Rows      []report.Row `json:"rows,omitempty"`
	Total     int          `json:"total"`
	Truncated bool         `json:"truncated"`
}

// ToolFieldStats returns one row per field path and type of a run.
func ToolFieldStats(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input FieldStatsInput) (*sdkmcp.CallToolResult, FieldStatsOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input FieldStatsInput) (*sdkmcp.CallToolResult, FieldStatsOutput, error) {
		res, err := d.Result(input.RunID)
		if err != nil {
			return nil, FieldStatsOutput{}, err
		}
		mapper, err := d.Mapper(input.Mapper)
		if err != nil {
			return nil, FieldStatsOutput{}, err
		}
		if input.Offset < 0 {
			return nil, FieldStatsOutput{}, ErrInvalidInput("offset must not be negative")
		}

		var rows []report.Row
		for _, r := range report.Rows(res.Stats, res.Profile, mapper) {
			if strings.HasPrefix(r.Key, input.Prefix) {
				rows = append(rows, r)
			}
		}

		out := FieldStatsOutput{Total: len(rows)}
		if input.Offset >= len(rows) {
			return nil, out, nil
		}
		rows = rows[input.Offset:]

		limit := clampLimit(input.Limit, d.Config.DefaultFieldLimit, d.Config.MaxFieldLimit)
		if len(rows) > limit {
			rows = rows[:limit]
			out.Truncated = true
		}
		out.Rows = rows
		return nil, out, nil
	}
}

// ConflictsInput is the input for malort_conflicts.
type ConflictsInput struct {
	RunID string `json:"run_id" jsonschema:"Run ID returned by malort_analyze"`
}

// TypeCount is the observation count of one type of a field.
type TypeCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

// Conflict is a field observed under more than one type.
type Conflict struct {
	Path    string      `json:"path"`
	BaseKey string      `json:"base_key"`
	Types   []TypeCount `json:"types"`
}

// ConflictsOutput is the output of malort_conflicts.
type ConflictsOutput struct {
	Conflicts []Conflict `json:"conflicts,omitempty"`
	Count     int        `json:"count"`
}

// ToolConflicts lists the fields of a run with conflicting types.
func ToolConflicts(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ConflictsInput) (*sdkmcp.CallToolResult, ConflictsOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ConflictsInput) (*sdkmcp.CallToolResult, ConflictsOutput, error) {
		res, err := d.Result(input.RunID)
		if err != nil {
			return nil, ConflictsOutput{}, err
		}

		conflicts := res.ConflictingTypes()
		var out ConflictsOutput
		for _, path := range conflicts.Paths() {
			e := conflicts[path]
			c := Conflict{Path: path, BaseKey: e.BaseKey}
			for _, tag := range e.TypeTags() {
				c.Types = append(c.Types, TypeCount{Type: string(tag), Count: e.Types[tag].Count})
			}
			out.Conflicts = append(out.Conflicts, c)
		}
		out.Count = len(out.Conflicts)
		return nil, out, nil
	}
}
