package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/malort/internal/mcp/tools"
	schemaexport "github.com/usestring/malort/pkg/jsonschema"
)

// Resource URI scheme: malort://
// Supported URIs:
//   malort://run/{run_id}/stats
//   malort://run/{run_id}/profile
//   malort://run/{run_id}/schema

const resourceScheme = "malort://"

// registerResources registers resource templates and handlers.
func (s *Server) registerResources() {
	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: "malort://run/{run_id}/stats",
		Name:        "Statistics Map",
		Description: "The complete statistics map of an analysis run, keyed by dotted field path. High context cost for wide documents - malort_field_stats pages the same data. Saved maps can be combined with `malort merge`.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.4,
		},
	}, s.handleResourceStats)

	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: "malort://run/{run_id}/profile",
		Name:        "Field Profile",
		Description: "Presence frequency, null count, distinct estimate and string length quantiles for every field of an analysis run.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.5,
		},
	}, s.handleResourceProfile)

	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: "malort://run/{run_id}/schema",
		Name:        "JSON Schema",
		Description: "JSON Schema of the analyzed records. Same as malort_json_schema with default options.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.4,
		},
	}, s.handleResourceSchema)
}

// Resource handlers

func (s *Server) handleResourceStats(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	params, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}
	res, err := s.deps.Result(params["run_id"])
	if err != nil {
		return nil, err
	}
	return toResourceResult(req.Params.URI, res.Stats)
}

func (s *Server) handleResourceProfile(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	params, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}
	res, err := s.deps.Result(params["run_id"])
	if err != nil {
		return nil, err
	}
	if res.Profile == nil {
		return nil, tools.ErrNotFound("profile", params["run_id"])
	}
	return toResourceResult(req.Params.URI, res.Profile.Summaries())
}

func (s *Server) handleResourceSchema(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	params, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}
	res, err := s.deps.Result(params["run_id"])
	if err != nil {
		return nil, err
	}
	schema := schemaexport.Export(res.Stats, &schemaexport.ExportOptions{Profile: res.Profile})
	return toResourceResult(req.Params.URI, schema)
}

// Helper functions

// parseResourceURI extracts parameters from a malort:// URI.
func parseResourceURI(uri string) (map[string]string, error) {
	if !strings.HasPrefix(uri, resourceScheme) {
		return nil, tools.ErrInvalidInput("invalid URI scheme: expected " + resourceScheme)
	}

	parts := strings.Split(strings.TrimPrefix(uri, resourceScheme), "/")
	if parts[0] != "run" {
		return nil, tools.ErrInvalidInput(fmt.Sprintf("unknown resource type: %s", parts[0]))
	}
	if len(parts) != 3 || parts[1] == "" {
		return nil, tools.ErrInvalidInput("run URI requires a run ID and a view")
	}

	switch parts[2] {
	case "stats", "profile", "schema":
	default:
		return nil, tools.ErrInvalidInput(fmt.Sprintf("unknown run view: %s", parts[2]))
	}

	return map[string]string{"run_id": parts[1], "view": parts[2]}, nil
}

// toResourceResult serializes content to a ReadResourceResult.
func toResourceResult(uri string, content any) (*sdkmcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing resource: %w", err)
	}

	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: tools.MimeJSON,
				Text:     string(data),
			},
		},
	}, nil
}
