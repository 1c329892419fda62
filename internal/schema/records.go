package schema

import (
	"encoding/json"
	"slices"
	"strconv"

	"github.com/usestring/malort/pkg/stats"
)

// maxRecords caps the records a single document fans out into.
const maxRecords = 64

// Records projects a document onto the flattened record shape a statistics
// map describes, as instances for the schema validator:
//
//   - arrays of containers are transparent: the objects they hold are merged
//     key by key, so a field present in any element is present in the record;
//   - a key holding several values after merging fans the document out into
//     as many records as its widest key, narrower keys repeating;
//   - an array holding a scalar adds the string of its canonical text as one
//     more alternative next to the containers it holds;
//   - nulls and empty arrays are absent.
//
// Numbers become json.Number so integer and float literals keep their text.
func Records(doc stats.Value) []any {
	return project(doc)
}

func project(v stats.Value) []any {
	switch v.Kind {
	case stats.KindBool:
		return []any{v.Bool}
	case stats.KindInt:
		return []any{json.Number(strconv.FormatInt(v.Int, 10))}
	case stats.KindFloat:
		return []any{json.Number(stats.FormatFloat(v.Float))}
	case stats.KindString:
		return []any{v.Str}
	case stats.KindArray:
		var alts []any
		for _, item := range v.Items {
			if !item.IsContainer() {
				alts = []any{stats.Canonical(v)}
				break
			}
		}
		for _, item := range v.Items {
			if item.IsContainer() {
				alts = append(alts, project(item)...)
			}
		}
		return merge(alts)
	case stats.KindObject:
		keys := make([]string, 0, len(v.Fields))
		values := make(map[string][]any, len(v.Fields))
		for _, f := range v.Fields {
			alts := project(f.Value)
			if len(alts) == 0 {
				continue
			}
			if _, ok := values[f.Key]; !ok {
				keys = append(keys, f.Key)
			}
			values[f.Key] = append(values[f.Key], alts...)
		}
		return fanOut(keys, values)
	}
	return nil
}

// merge folds the objects among alts into records; other values stay
// alternatives of their own.
func merge(alts []any) []any {
	var (
		out    []any
		keys   []string
		values = make(map[string][]any)
		maps   int
	)
	for _, a := range alts {
		m, ok := a.(map[string]any)
		if !ok {
			out = append(out, a)
			continue
		}
		maps++
		for _, key := range sortedKeys(m) {
			if _, ok := values[key]; !ok {
				keys = append(keys, key)
			}
			values[key] = append(values[key], m[key])
		}
	}
	if maps == 0 {
		return capRecords(out)
	}
	for _, key := range keys {
		values[key] = merge(values[key])
	}
	return capRecords(append(out, fanOut(keys, values)...))
}

func fanOut(keys []string, values map[string][]any) []any {
	width := 1
	for _, key := range keys {
		width = max(width, len(values[key]))
	}
	width = min(width, maxRecords)

	out := make([]any, width)
	for i := range width {
		rec := make(map[string]any, len(keys))
		for _, key := range keys {
			alts := values[key]
			rec[key] = alts[i%len(alts)]
		}
		out[i] = rec
	}
	return out
}

func capRecords(alts []any) []any {
	if len(alts) > maxRecords {
		return alts[:maxRecords]
	}
	return alts
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
