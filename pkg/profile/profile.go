// Package profile keeps mergeable per-field side statistics that the core
// statistics map does not carry: how many documents contain a field, how
// often it is null, roughly how many distinct values it takes and how string
// lengths are distributed.
//
// A Profile implements stats.Observer, so it is attached to a stats.Walker
// and fed the same leaves the statistics map sees.
package profile

import (
	"log/slog"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/axiomhq/hyperloglog"

	"github.com/usestring/malort/pkg/stats"
)

const (
	maxTrackedLength = 1 << 30
	lengthSigFigs    = 3
)

// Ordinal identifies a document by its file and its position in that file.
// Partitions that use distinct file indexes never produce the same ordinal.
func Ordinal(file, doc int) uint64 {
	return uint64(uint32(file))<<32 | uint64(uint32(doc))
}

// Field is the side profile of one field path.
type Field struct {
	Present  *roaring64.Bitmap
	Nulls    int64
	Distinct *hyperloglog.Sketch
	Lengths  *hdrhistogram.Histogram
}

func newField() *Field {
	return &Field{
		Present:  roaring64.New(),
		Distinct: hyperloglog.New16(),
		Lengths:  hdrhistogram.New(1, maxTrackedLength, lengthSigFigs),
	}
}

// Profile collects Field profiles for every path of a corpus partition.
// Like stats.Map it has a single owner.
type Profile struct {
	Fields    map[string]*Field
	Documents *roaring64.Bitmap

	current uint64
}

// New returns an empty profile.
func New() *Profile {
	return &Profile{
		Fields:    make(map[string]*Field),
		Documents: roaring64.New(),
	}
}

// Begin marks the start of the document identified by ordinal. Leaves
// observed until the next Begin are attributed to it.
func (p *Profile) Begin(ordinal uint64) {
	p.current = ordinal
	p.Documents.Add(ordinal)
}

// Observe records one leaf. It satisfies stats.Observer.
func (p *Profile) Observe(path, _ string, v stats.Value, tag stats.Tag) {
	f, ok := p.Fields[path]
	if !ok {
		f = newField()
		p.Fields[path] = f
	}
	f.Present.Add(p.current)

	if v.Kind == stats.KindNull {
		f.Nulls++
		return
	}

	f.Distinct.Insert([]byte(distinctKey(v, tag)))

	if tag == stats.TagString {
		if err := recordLength(f.Lengths, int64(utf8.RuneCountInString(v.Str))); err != nil {
			slog.Debug("string length not recorded", "path", path, "error", err)
		}
	}
}

// recordLength records n, clamped to the largest tracked length.
func recordLength(h *hdrhistogram.Histogram, n int64) error {
	return h.RecordValue(min(n, maxTrackedLength))
}

// distinctKey keeps values of different kinds apart: "1" and 1 are distinct.
func distinctKey(v stats.Value, tag stats.Tag) string {
	if v.Kind == stats.KindString {
		return string(tag) + ":" + v.Str
	}
	return string(tag) + ":" + stats.Canonical(v)
}

// Merge folds o into p. o is only read.
func (p *Profile) Merge(o *Profile) error {
	if o == nil {
		return nil
	}
	p.Documents.Or(o.Documents)

	for path, in := range o.Fields {
		f, ok := p.Fields[path]
		if !ok {
			f = newField()
			p.Fields[path] = f
		}
		f.Present.Or(in.Present)
		f.Nulls += in.Nulls
		if err := f.Distinct.Merge(in.Distinct); err != nil {
			return err
		}
		f.Lengths.Merge(in.Lengths)
	}
	return nil
}

// Summary is the reportable view of a Field.
type Summary struct {
	Path      string  `json:"path"`
	Documents uint64  `json:"documents"`
	Frequency float64 `json:"frequency"`
	Nulls     int64   `json:"nulls"`
	Distinct  uint64  `json:"distinct"`
	LengthP50 int64   `json:"length_p50,omitempty"`
	LengthP95 int64   `json:"length_p95,omitempty"`
	LengthMax int64   `json:"length_max,omitempty"`
}

// Summary returns the summary for path, or false when the path was never seen.
func (p *Profile) Summary(path string) (Summary, bool) {
	f, ok := p.Fields[path]
	if !ok {
		return Summary{}, false
	}

	s := Summary{
		Path:      path,
		Documents: f.Present.GetCardinality(),
		Nulls:     f.Nulls,
		Distinct:  f.Distinct.Estimate(),
	}
	if total := p.Documents.GetCardinality(); total > 0 {
		s.Frequency = round4(float64(s.Documents) / float64(total))
	}
	if f.Lengths.TotalCount() > 0 {
		s.LengthP50 = f.Lengths.ValueAtQuantile(50)
		s.LengthP95 = f.Lengths.ValueAtQuantile(95)
		s.LengthMax = f.Lengths.Max()
	}
	return s, true
}

// Summaries returns a summary for every path, sorted by path.
func (p *Profile) Summaries() []Summary {
	paths := make([]string, 0, len(p.Fields))
	for path := range p.Fields {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	out := make([]Summary, 0, len(paths))
	for _, path := range paths {
		s, _ := p.Summary(path)
		out = append(out, s)
	}
	return out
}

// Required reports whether path appeared, non-null, in every document.
func (p *Profile) Required(path string) bool {
	f, ok := p.Fields[path]
	if !ok || f.Nulls > 0 {
		return false
	}
	return f.Present.GetCardinality() == p.Documents.GetCardinality()
}

func round4(f float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(f, 'f', 4, 64), 64)
	if err != nil {
		return f
	}
	return r
}
