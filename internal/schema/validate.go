// Package schema checks JSON documents against a JSON Schema, typically one
// exported from an earlier analysis run.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	invopop "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/usestring/malort/pkg/stats"
)

// Result is the outcome of validating one document.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// Validator validates documents against a compiled schema.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles a JSON Schema document.
func NewValidator(schemaJSON []byte) (*Validator, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parsing JSON Schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", doc); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return &Validator{schema: compiled}, nil
}

// FromExport compiles a schema built by the jsonschema exporter.
func FromExport(s *invopop.Schema) (*Validator, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshaling schema: %w", err)
	}
	return NewValidator(data)
}

// Validate checks every record of doc. A document fans out into several
// records when it holds arrays of objects; errors of all of them are merged.
func (v *Validator) Validate(doc stats.Value) *Result {
	var errs []string
	seen := make(map[string]bool)
	for _, rec := range Records(doc) {
		for _, msg := range extractValidationErrors(v.schema.Validate(rec)) {
			if !seen[msg] {
				seen[msg] = true
				errs = append(errs, msg)
			}
		}
	}
	sort.Strings(errs)
	return &Result{Valid: len(errs) == 0, Errors: errs}
}

func extractValidationErrors(err error) []string {
	if err == nil {
		return nil
	}
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) {
		byPath := make(map[string][]string)
		collectErrors(validationErr, byPath)

		var out []string
		for path, msgs := range byPath {
			for _, msg := range msgs {
				if path != "" {
					msg = path + ": " + msg
				}
				out = append(out, msg)
			}
		}
		return out
	}
	return []string{err.Error()}
}

var printer = message.NewPrinter(language.English)

// collectErrors gathers leaf errors keyed by instance location.
func collectErrors(err *jsonschema.ValidationError, byPath map[string][]string) {
	path := ""
	if len(err.InstanceLocation) > 0 {
		path = "/" + strings.Join(err.InstanceLocation, "/")
	}

	if err.ErrorKind != nil && len(err.Causes) == 0 {
		msg := err.ErrorKind.LocalizedString(printer)
		if !strings.HasPrefix(msg, "$ref ") && !strings.HasPrefix(msg, "doesn't validate with") {
			byPath[path] = append(byPath[path], msg)
		}
	}
	for _, cause := range err.Causes {
		collectErrors(cause, byPath)
	}
}
