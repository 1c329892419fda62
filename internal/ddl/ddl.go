// Package ddl turns inferred column types into a CREATE TABLE statement.
// Every generated statement is checked by the Postgres parser before it is
// returned.
package ddl

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/usestring/malort/pkg/manifest"
	"github.com/usestring/malort/pkg/stats"
	"github.com/usestring/malort/pkg/typemap"
)

// Column is one column of a generated table.
type Column struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
}

// Skipped is a field path that has no usable column type.
type Skipped struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Table is a generated table definition.
type Table struct {
	Name    string    `json:"name"`
	Columns []Column  `json:"columns"`
	Skipped []Skipped `json:"skipped,omitempty"`
}

// Build infers a table from m. Paths whose type is a conflict or too large
// for the target are listed in Skipped instead of Columns.
func Build(name string, m stats.Map, mapper typemap.Mapper) *Table {
	t := &Table{Name: name}
	types := typemap.Infer(m, mapper)
	used := make(map[string]int)

	for _, path := range m.Paths() {
		typ := types[path]
		if unusable(typ) {
			t.Skipped = append(t.Skipped, Skipped{Path: path, Reason: typ})
			continue
		}

		col := manifest.ColumnName(path)
		key := strings.ToLower(col)
		used[key]++
		if n := used[key]; n > 1 {
			col = fmt.Sprintf("%s_%d", col, n)
		}
		t.Columns = append(t.Columns, Column{Name: col, Path: path, Type: typ})
	}
	return t
}

func unusable(typ string) bool {
	return typ == "" || typ == typemap.MultipleTypes || typ == typemap.TooLargeForChar
}

// SQL renders the statement. Skipped paths follow as comments.
func (t *Table) SQL() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (", QuoteQualified(t.Name))
	for i, c := range t.Columns {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "\n    %s %s", QuoteIdent(c.Name), c.Type)
	}
	if len(t.Columns) > 0 {
		b.WriteByte('\n')
	}
	b.WriteString(");\n")

	for _, s := range t.Skipped {
		fmt.Fprintf(&b, "-- skipped %s: %s\n", s.Path, oneLine(s.Reason))
	}
	return b.String()
}

// Generate builds the table for m and returns its validated SQL.
func Generate(name string, m stats.Map, mapper typemap.Mapper) (*Table, string, error) {
	if strings.TrimSpace(name) == "" {
		return nil, "", fmt.Errorf("table name is required")
	}
	t := Build(name, m, mapper)
	sql := t.SQL()
	if err := Validate(sql, len(t.Columns)); err != nil {
		return nil, "", err
	}
	return t, sql, nil
}

// Validate parses sql and checks it is a single CREATE TABLE with the
// expected number of columns.
func Validate(sql string, columns int) error {
	result, err := pg_query.Parse(sql)
	if err != nil {
		return fmt.Errorf("failed to parse generated SQL: %w", err)
	}
	if len(result.Stmts) != 1 {
		return fmt.Errorf("expected one statement, found %d", len(result.Stmts))
	}

	create := result.Stmts[0].Stmt.GetCreateStmt()
	if create == nil {
		return fmt.Errorf("generated SQL is not a CREATE TABLE statement")
	}
	if got := len(create.TableElts); got != columns {
		return fmt.Errorf("generated SQL has %d columns, expected %d", got, columns)
	}
	return nil
}

// QuoteIdent quotes a Postgres identifier.
func QuoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// QuoteQualified quotes every dot-separated part of a possibly
// schema-qualified name.
func QuoteQualified(s string) string {
	parts := strings.Split(s, ".")
	for i, p := range parts {
		parts[i] = QuoteIdent(p)
	}
	return strings.Join(parts, ".")
}

func oneLine(s string) string {
	return strings.NewReplacer("\n", " ", "\r", " ").Replace(s)
}
