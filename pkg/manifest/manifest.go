// Package manifest renders field paths for bulk-load tooling: Redshift
// jsonpaths files and cleaned column names.
package manifest

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// JSONPaths is the document COPY ... JSON 'jsonpaths_file' expects.
type JSONPaths struct {
	Paths []string `json:"jsonpaths"`
}

// Accessor renders a dotted field path as a bracketed accessor:
// "a.b.c" becomes $['a']['b']['c'].
func Accessor(path string) string {
	var b strings.Builder
	b.WriteByte('$')
	for _, part := range strings.Split(path, ".") {
		fmt.Fprintf(&b, "['%s']", part)
	}
	return b.String()
}

// Build returns the jsonpaths document for paths, sorted by path.
func Build(paths []string) JSONPaths {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	out := JSONPaths{Paths: make([]string, 0, len(sorted))}
	for _, p := range sorted {
		out.Paths = append(out.Paths, Accessor(p))
	}
	return out
}

// Write encodes the jsonpaths document for paths to w with four-space indentation.
func Write(w io.Writer, paths []string) error {
	data, err := json.MarshalIndent(Build(paths), "", "    ")
	if err != nil {
		return fmt.Errorf("encoding jsonpaths: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing jsonpaths: %w", err)
	}
	return nil
}

// ColumnName cleans a dotted field path into a column name. Each path segment
// is split on spaces and hyphens and camel-cased; segments are joined with
// underscores. "qux.BazBoo.foo baz.Foo-bar" becomes "qux_bazBoo_fooBaz_fooBar".
func ColumnName(path string) string {
	title := cases.Title(language.Und, cases.NoLower)
	segments := strings.Split(path, ".")
	for i, seg := range segments {
		words := strings.FieldsFunc(seg, func(r rune) bool {
			return r == ' ' || r == '-'
		})
		for j, w := range words {
			if j == 0 {
				words[j] = lowerFirst(w)
				continue
			}
			words[j] = title.String(w)
		}
		segments[i] = strings.Join(words, "")
	}
	return strings.Join(segments, "_")
}

// ColumnNames cleans every path, returning names in sorted path order.
func ColumnNames(paths []string) []string {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	names := make([]string, 0, len(sorted))
	for _, p := range sorted {
		names = append(names, ColumnName(p))
	}
	return names
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
