package analyze

import (
	"io"
	"time"

	"github.com/invopop/jsonschema"

	schemaexport "github.com/usestring/malort/pkg/jsonschema"
	"github.com/usestring/malort/pkg/manifest"
	"github.com/usestring/malort/pkg/profile"
	"github.com/usestring/malort/pkg/stats"
	"github.com/usestring/malort/pkg/typemap"
)

// Result is the outcome of one analysis run.
type Result struct {
	Root    string
	Stats   stats.Map
	Profile *profile.Profile
	// Count is the number of documents walked.
	Count int64
	// Skipped is the number of malformed documents passed over.
	Skipped int64
	Files   int
	Bytes   int64
	Elapsed time.Duration
}

// ConflictingTypes returns the entries observed under more than one type.
func (r *Result) ConflictingTypes() stats.Map {
	return r.Stats.Conflicts()
}

// ColumnTypes maps every field path to a column type.
func (r *Result) ColumnTypes(mapper typemap.Mapper) map[string]string {
	return typemap.Infer(r.Stats, mapper)
}

// JSONPaths returns the jsonpaths manifest of every field path.
func (r *Result) JSONPaths() manifest.JSONPaths {
	return manifest.Build(r.Stats.Paths())
}

// WriteJSONPaths writes the jsonpaths manifest to w.
func (r *Result) WriteJSONPaths(w io.Writer) error {
	return manifest.Write(w, r.Stats.Paths())
}

// ColumnNames returns the cleaned column name of every field path, in path
// order.
func (r *Result) ColumnNames() []string {
	return manifest.ColumnNames(r.Stats.Paths())
}

// Schema exports the result as a JSON Schema. Fields present and non-null in
// every document are required when the run carried a profile.
func (r *Result) Schema(title string) *jsonschema.Schema {
	return schemaexport.Export(r.Stats, &schemaexport.ExportOptions{
		Title:   title,
		Profile: r.Profile,
	})
}
