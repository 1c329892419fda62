// Package jsonschema exports a statistics map as a JSON Schema (Draft 2020-12)
// describing the flattened record shape.
//
// Arrays of objects are transparent in a statistics map, so they are absent
// from the exported schema too: a field reached through an array is described
// as if its parent were an object. Lists of scalars were recorded as their
// JSON text and are described as strings.
package jsonschema

import (
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/usestring/malort/pkg/profile"
	"github.com/usestring/malort/pkg/stats"
)

// Draft is the meta-schema URI stamped on exported schemas.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// ExportOptions controls schema export.
type ExportOptions struct {
	// Title is set on the root schema when non-empty.
	Title string
	// Profile, when set, marks fields present and non-null in every document
	// as required.
	Profile *profile.Profile
	// AdditionalProperties sets additionalProperties on every object schema.
	// Default: nil (not set)
	AdditionalProperties *bool
}

// node is one level of the path tree rebuilt from dotted paths.
type node struct {
	path     string
	entry    *stats.FieldEntry
	children map[string]*node
	order    []string
}

func (n *node) child(key, path string) *node {
	if n.children == nil {
		n.children = make(map[string]*node)
	}
	c, ok := n.children[key]
	if !ok {
		c = &node{path: path}
		n.children[key] = c
		n.order = append(n.order, key)
	}
	return c
}

// Export builds the schema for m. Properties appear in sorted path order.
func Export(m stats.Map, opts *ExportOptions) *jsonschema.Schema {
	if opts == nil {
		opts = &ExportOptions{}
	}

	root := &node{}
	for _, path := range m.Paths() {
		n := root
		parts := strings.Split(path, ".")
		for i, part := range parts {
			n = n.child(part, strings.Join(parts[:i+1], "."))
		}
		n.entry = m[path]
	}

	schema := objectSchema(root, opts)
	schema.Version = Draft
	if opts.Title != "" {
		schema.Title = opts.Title
	}

	if opts.AdditionalProperties != nil {
		applyAdditionalProperties(schema, *opts.AdditionalProperties)
	}
	return schema
}

func objectSchema(n *node, opts *ExportOptions) *jsonschema.Schema {
	schema := &jsonschema.Schema{
		Type:       "object",
		Properties: jsonschema.NewProperties(),
	}

	var required []string
	for _, key := range n.order {
		c := n.children[key]
		schema.Properties.Set(key, nodeSchema(c, opts))
		if c.entry != nil && opts.Profile != nil && opts.Profile.Required(c.path) {
			required = append(required, key)
		}
	}
	if len(required) > 0 {
		schema.Required = required
	}
	return schema
}

// nodeSchema describes a path that may be a leaf, an object, or both when
// the corpus disagrees.
func nodeSchema(n *node, opts *ExportOptions) *jsonschema.Schema {
	var variants []*jsonschema.Schema
	if n.entry != nil {
		for _, tag := range n.entry.TypeTags() {
			variants = append(variants, leafSchema(tag, n.entry.Types[tag]))
		}
	}
	if len(n.children) > 0 {
		variants = append(variants, objectSchema(n, opts))
	}

	if len(variants) == 1 {
		return variants[0]
	}
	return &jsonschema.Schema{AnyOf: variants}
}

func leafSchema(tag stats.Tag, s *stats.TypeStats) *jsonschema.Schema {
	schema := &jsonschema.Schema{Description: describe(tag, s)}

	switch tag {
	case stats.TagString:
		schema.Type = "string"
		for _, v := range s.Sample {
			schema.Examples = append(schema.Examples, v)
		}
	case stats.TagDatetime:
		schema.Type = "string"
		schema.Format = "date-time"
	case stats.TagInteger:
		schema.Type = "integer"
	case stats.TagFloat:
		schema.Type = "number"
	case stats.TagBoolean:
		schema.Type = "boolean"
	}
	return schema
}

func describe(tag stats.Tag, s *stats.TypeStats) string {
	desc := fmt.Sprintf("%s observed %d times", tag, s.Count)
	if s.Min == nil || s.Max == nil {
		return desc
	}
	if tag == stats.TagString {
		return fmt.Sprintf("%s, length %s to %s", desc, s.Min, s.Max)
	}
	return fmt.Sprintf("%s, range %s to %s", desc, s.Min, s.Max)
}

// applyAdditionalProperties recursively sets additionalProperties on all object schemas.
func applyAdditionalProperties(schema *jsonschema.Schema, allowed bool) {
	if schema == nil {
		return
	}

	if schema.Type == "object" {
		if allowed {
			schema.AdditionalProperties = jsonschema.TrueSchema
		} else {
			schema.AdditionalProperties = jsonschema.FalseSchema
		}

		if schema.Properties != nil {
			for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
				applyAdditionalProperties(pair.Value, allowed)
			}
		}
	}

	for _, s := range schema.AnyOf {
		applyAdditionalProperties(s, allowed)
	}
}
