// Package prompts contains MCP prompt implementations for malort.
package prompts

// Config holds configuration needed by prompts.
type Config struct {
	DefaultMapper string
	DataRoot      string
}
