// Package mcpsrv provides an extensible MCP server for malort.
//
// The server exposes the builtin analysis tools (malort_analyze,
// malort_field_stats, malort_create_table, ...), the design_table prompt and
// the malort://run resources. Callers extend it with functional options.
//
// # Basic Usage
//
//	server, err := mcpsrv.NewServer(mcpsrv.WithDataRoot("/srv/exports"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer server.Close()
//	server.Run(ctx)
//
// # Extension
//
// Custom tools that need the analysis results use WithDepsTool:
//
//	type CountInput struct {
//	    RunID string `json:"run_id"`
//	}
//
//	type CountOutput struct {
//	    Documents int64 `json:"documents"`
//	}
//
//	server, err := mcpsrv.NewServer(
//	    mcpsrv.WithDepsTool(
//	        &mcp.Tool{Name: "count_documents", Description: "Documents in a run"},
//	        func(d *mcpsrv.Deps) func(ctx context.Context, req *mcp.CallToolRequest, in CountInput) (*mcp.CallToolResult, CountOutput, error) {
//	            return func(ctx context.Context, req *mcp.CallToolRequest, in CountInput) (*mcp.CallToolResult, CountOutput, error) {
//	                res, ok := d.Cache.Get(in.RunID)
//	                if !ok {
//	                    return nil, CountOutput{}, fmt.Errorf("unknown run %s", in.RunID)
//	                }
//	                return nil, CountOutput{Documents: res.Count}, nil
//	            }
//	        },
//	    ),
//	)
//
// # Configuration
//
// Settings are read from the environment (MALORT_*, LOG_*) and can be
// overridden per server:
//
//	server, err := mcpsrv.NewServer(
//	    mcpsrv.WithLogLevel("debug"),
//	    mcpsrv.WithLogFile("/var/log/malort.log"),
//	)
package mcpsrv
