// Package report renders a statistics map as a flat table: one row per field
// path and type, in table, CSV, JSON, YAML or Parquet form.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/olekukonko/tablewriter"
	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"

	"github.com/usestring/malort/pkg/profile"
	"github.com/usestring/malort/pkg/stats"
	"github.com/usestring/malort/pkg/typemap"
)

// Format names an output encoding.
type Format string

const (
	FormatTable   Format = "table"
	FormatCSV     Format = "csv"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatParquet Format = "parquet"
)

var formats = []Format{FormatTable, FormatCSV, FormatJSON, FormatYAML, FormatParquet}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range formats {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return "", fmt.Errorf("unknown format %q (available: %s)", s, strings.Join(names, ", "))
}

// Sample is a string sample. It renders as one " | "-joined cell in CSV.
type Sample []string

// MarshalCSV implements gocsv.TypeMarshaller.
func (s Sample) MarshalCSV() (string, error) {
	return strings.Join(s, " | "), nil
}

// Row is one (path, type) pair of a statistics map.
type Row struct {
	Key          string   `csv:"key" json:"key" yaml:"key" parquet:"key"`
	BaseKey      string   `csv:"base_key" json:"base_key" yaml:"base_key" parquet:"base_key"`
	Type         string   `csv:"type" json:"type" yaml:"type" parquet:"type"`
	Count        int64    `csv:"count" json:"count" yaml:"count" parquet:"count"`
	Mean         *float64 `csv:"mean" json:"mean,omitempty" yaml:"mean,omitempty" parquet:"mean,optional"`
	Max          string   `csv:"max" json:"max,omitempty" yaml:"max,omitempty" parquet:"max,optional"`
	Min          string   `csv:"min" json:"min,omitempty" yaml:"min,omitempty" parquet:"min,optional"`
	MaxPrecision *int     `csv:"max_precision" json:"max_precision,omitempty" yaml:"max_precision,omitempty" parquet:"max_precision,optional"`
	MaxScale     *int     `csv:"max_scale" json:"max_scale,omitempty" yaml:"max_scale,omitempty" parquet:"max_scale,optional"`
	FixedLength  *bool    `csv:"fixed_length" json:"fixed_length,omitempty" yaml:"fixed_length,omitempty" parquet:"fixed_length,optional"`
	Sample       Sample   `csv:"sample" json:"sample,omitempty" yaml:"sample,omitempty" parquet:"sample"`
	ColumnType   string   `csv:"column_type" json:"column_type,omitempty" yaml:"column_type,omitempty" parquet:"column_type,optional"`
	Frequency    *float64 `csv:"frequency" json:"frequency,omitempty" yaml:"frequency,omitempty" parquet:"frequency,optional"`
	Nulls        *int64   `csv:"nulls" json:"nulls,omitempty" yaml:"nulls,omitempty" parquet:"nulls,optional"`
	Distinct     *int64   `csv:"distinct" json:"distinct,omitempty" yaml:"distinct,omitempty" parquet:"distinct,optional"`
}

// Rows flattens m into rows sorted by path, then type. The column type is
// filled when mapper is non-nil; the profile columns when prof is non-nil.
func Rows(m stats.Map, prof *profile.Profile, mapper typemap.Mapper) []Row {
	var rows []Row
	for _, path := range m.Paths() {
		e := m[path]

		var column string
		if mapper != nil {
			column = typemap.Column(e, mapper)
		}

		var summary *profile.Summary
		if prof != nil {
			if s, ok := prof.Summary(path); ok {
				summary = &s
			}
		}

		for _, tag := range e.TypeTags() {
			s := e.Types[tag]
			row := Row{
				Key:          path,
				BaseKey:      e.BaseKey,
				Type:         string(tag),
				Count:        s.Count,
				Mean:         s.Mean,
				MaxPrecision: s.MaxPrecision,
				MaxScale:     s.MaxScale,
				FixedLength:  s.FixedLength,
				Sample:       Sample(s.Sample),
				ColumnType:   column,
			}
			if s.Max != nil {
				row.Max = s.Max.String()
			}
			if s.Min != nil {
				row.Min = s.Min.String()
			}
			if summary != nil {
				freq, nulls, distinct := summary.Frequency, summary.Nulls, int64(summary.Distinct)
				row.Frequency = &freq
				row.Nulls = &nulls
				row.Distinct = &distinct
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// Write encodes rows to w in the given format.
func Write(w io.Writer, format Format, rows []Row) error {
	switch format {
	case FormatTable:
		return writeTable(w, rows)
	case FormatCSV:
		if err := gocsv.Marshal(&rows, w); err != nil {
			return fmt.Errorf("encoding csv: %w", err)
		}
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	case FormatParquet:
		pw := parquet.NewGenericWriter[Row](w)
		if _, err := pw.Write(rows); err != nil {
			return fmt.Errorf("encoding parquet: %w", err)
		}
		return pw.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writeTable(w io.Writer, rows []Row) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"key", "type", "count", "mean", "min", "max", "column type", "frequency", "distinct"})
	table.SetAutoWrapText(false)

	for _, r := range rows {
		table.Append([]string{
			r.Key,
			r.Type,
			strconv.FormatInt(r.Count, 10),
			optFloat(r.Mean),
			r.Min,
			r.Max,
			r.ColumnType,
			optFloat(r.Frequency),
			optInt(r.Distinct),
		})
	}
	table.Render()
	return nil
}

func optFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func optInt(i *int64) string {
	if i == nil {
		return ""
	}
	return strconv.FormatInt(*i, 10)
}
