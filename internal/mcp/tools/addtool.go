package tools

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// AddTool registers a malort tool after checking that the zero value of its
// output type satisfies the output schema the SDK infers for it.
//
// Panics when it does not, so a bad output type fails at registration.
func AddTool[In, Out any](srv *sdkmcp.Server, t *sdkmcp.Tool, h sdkmcp.ToolHandlerFor[In, Out]) {
	CheckOutputSchema[Out](t.Name)
	sdkmcp.AddTool(srv, t, h)
}

// CheckOutputSchema panics with the error of OutputSchemaError.
func CheckOutputSchema[T any](toolName string) {
	if err := OutputSchemaError[T](toolName); err != nil {
		panic(err.Error())
	}
}

// OutputSchemaError reports why the output type T of a tool cannot be
// serialized in a way its inferred schema accepts:
//
//   - json.RawMessage fields are inferred as arrays of bytes. Outputs that
//     carry free-form JSON (a schema document, a statistics map) hold it in
//     an any field filled by ToAny, as JSONSchemaOutput.Schema does.
//   - Slices without omitzero or omitempty marshal as null when unset.
//     ValidateOutput.Failures carries omitzero.
//
// The untyped any output, and types whose schema cannot be inferred, are
// left for the SDK to report.
func OutputSchemaError[T any](toolName string) error {
	rt := reflect.TypeFor[T]()
	if rt == reflect.TypeFor[any]() {
		return nil
	}
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}

	if paths := rawMessagePaths(rt, nil, map[reflect.Type]bool{}); len(paths) > 0 {
		return fmt.Errorf("tool %q: output %s holds json.RawMessage at %s; "+
			"declare the field as any and fill it with ToAny",
			toolName, rt, strings.Join(paths, ", "))
	}

	schema, err := jsonschema.ForType(rt, &jsonschema.ForOptions{})
	if err != nil {
		return nil
	}
	resolved, err := schema.Resolve(&jsonschema.ResolveOptions{})
	if err != nil {
		return nil
	}

	data, err := json.Marshal(reflect.Zero(rt).Interface())
	if err != nil {
		return nil
	}
	var zero map[string]any
	if err := json.Unmarshal(data, &zero); err != nil {
		return nil
	}
	if err := resolved.Validate(&zero); err != nil {
		return fmt.Errorf("tool %q: zero %s does not match its schema: %v (zero value %s); "+
			"tag unset slices with omitzero", toolName, rt, err, data)
	}
	return nil
}

var rawMessageType = reflect.TypeFor[json.RawMessage]()

// rawMessagePaths lists the dotted field paths of t that hold json.RawMessage,
// with [] for slice elements and [value] for map values.
func rawMessagePaths(t reflect.Type, path []string, seen map[reflect.Type]bool) []string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == rawMessageType {
		return []string{strings.Join(path, ".")}
	}
	if seen[t] {
		return nil
	}
	seen[t] = true
	defer delete(seen, t)

	var out []string
	switch t.Kind() {
	case reflect.Struct:
		for i := range t.NumField() {
			f := t.Field(i)
			if f.IsExported() {
				out = append(out, rawMessagePaths(f.Type, append(path[:len(path):len(path)], f.Name), seen)...)
			}
		}
	case reflect.Slice, reflect.Array:
		out = rawMessagePaths(t.Elem(), append(path[:len(path):len(path)], "[]"), seen)
	case reflect.Map:
		out = rawMessagePaths(t.Elem(), append(path[:len(path):len(path)], "[value]"), seen)
	}
	return out
}
