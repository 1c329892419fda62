package stats

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Tag is the statistical type of an observed scalar.
type Tag string

const (
	TagString   Tag = "string"
	TagInteger  Tag = "integer"
	TagFloat    Tag = "float"
	TagBoolean  Tag = "boolean"
	TagDatetime Tag = "datetime"
)

// BaseKeyField is the reserved FieldEntry attribute holding the last path segment.
const BaseKeyField = "base_key"

// Tags lists every recognized tag in a stable order.
var Tags = []Tag{TagString, TagInteger, TagFloat, TagBoolean, TagDatetime}

// Valid reports whether t is one of the recognized tags.
func (t Tag) Valid() bool {
	switch t {
	case TagString, TagInteger, TagFloat, TagBoolean, TagDatetime:
		return true
	}
	return false
}

// Number is an exact numeric bound: either an int64 or a float64.
type Number struct {
	i       int64
	f       float64
	isFloat bool
}

// IntNumber returns an integer Number.
func IntNumber(i int64) Number { return Number{i: i} }

// FloatNumber returns a floating point Number.
func FloatNumber(f float64) Number { return Number{f: f, isFloat: true} }

// IsInt reports whether n holds an integer.
func (n Number) IsInt() bool { return !n.isFloat }

// Int64 returns n as an int64, truncating floats.
func (n Number) Int64() int64 {
	if n.isFloat {
		return int64(n.f)
	}
	return n.i
}

// Float64 returns n as a float64.
func (n Number) Float64() float64 {
	if n.isFloat {
		return n.f
	}
	return float64(n.i)
}

// Less reports whether n < o. Two integers compare exactly.
func (n Number) Less(o Number) bool {
	if !n.isFloat && !o.isFloat {
		return n.i < o.i
	}
	return n.Float64() < o.Float64()
}

func (n Number) String() string {
	if n.isFloat {
		return FormatFloat(n.f)
	}
	return strconv.FormatInt(n.i, 10)
}

func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n.String()), nil
}

func (n *Number) UnmarshalJSON(data []byte) error {
	v, err := numberValue(json.Number(bytes.TrimSpace(data)))
	if err != nil {
		return err
	}
	if v.Kind == KindInt {
		*n = IntNumber(v.Int)
	} else {
		*n = FloatNumber(v.Float)
	}
	return nil
}

// TypeStats holds the running statistics for one (field path, tag) pair.
// Count is always present; the remaining attributes depend on the tag.
type TypeStats struct {
	Count        int64    `json:"count"`
	Mean         *float64 `json:"mean,omitempty"`
	Max          *Number  `json:"max,omitempty"`
	Min          *Number  `json:"min,omitempty"`
	Sample       []string `json:"sample,omitempty"`
	MaxPrecision *int     `json:"max_precision,omitempty"`
	MaxScale     *int     `json:"max_scale,omitempty"`
	FixedLength  *bool    `json:"fixed_length,omitempty"`
}

// Clone returns a deep copy of s.
func (s *TypeStats) Clone() *TypeStats {
	if s == nil {
		return nil
	}
	c := &TypeStats{Count: s.Count}
	if s.Mean != nil {
		c.Mean = ptr(*s.Mean)
	}
	if s.Max != nil {
		c.Max = ptr(*s.Max)
	}
	if s.Min != nil {
		c.Min = ptr(*s.Min)
	}
	if s.Sample != nil {
		c.Sample = append(make([]string, 0, len(s.Sample)), s.Sample...)
	}
	if s.MaxPrecision != nil {
		c.MaxPrecision = ptr(*s.MaxPrecision)
	}
	if s.MaxScale != nil {
		c.MaxScale = ptr(*s.MaxScale)
	}
	if s.FixedLength != nil {
		c.FixedLength = ptr(*s.FixedLength)
	}
	return c
}

// FieldEntry maps each observed tag to its statistics for one field path.
// More than one tag means the field carries conflicting types.
type FieldEntry struct {
	BaseKey string
	Types   map[Tag]*TypeStats
}

// NewFieldEntry returns an empty entry for a path whose last segment is baseKey.
func NewFieldEntry(baseKey string) *FieldEntry {
	return &FieldEntry{BaseKey: baseKey, Types: make(map[Tag]*TypeStats)}
}

// TypeTags returns the entry's tags in the order of Tags.
func (e *FieldEntry) TypeTags() []Tag {
	tags := make([]Tag, 0, len(e.Types))
	for _, t := range Tags {
		if _, ok := e.Types[t]; ok {
			tags = append(tags, t)
		}
	}
	return tags
}

// Conflicting reports whether more than one tag was observed.
func (e *FieldEntry) Conflicting() bool {
	return len(e.Types) > 1
}

// Clone returns a deep copy of e.
func (e *FieldEntry) Clone() *FieldEntry {
	c := NewFieldEntry(e.BaseKey)
	for t, s := range e.Types {
		c.Types[t] = s.Clone()
	}
	return c
}

func (e *FieldEntry) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	key, _ := json.Marshal(BaseKeyField)
	val, _ := json.Marshal(e.BaseKey)
	buf.Write(key)
	buf.WriteByte(':')
	buf.Write(val)

	for _, t := range e.TypeTags() {
		data, err := json.Marshal(e.Types[t])
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, ",%q:", string(t))
		buf.Write(data)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (e *FieldEntry) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*e = FieldEntry{Types: make(map[Tag]*TypeStats)}
	for k, v := range raw {
		if k == BaseKeyField {
			if err := json.Unmarshal(v, &e.BaseKey); err != nil {
				return fmt.Errorf("decoding %s: %w", BaseKeyField, err)
			}
			continue
		}
		tag := Tag(k)
		if !tag.Valid() {
			return fmt.Errorf("unknown type tag %q", k)
		}
		var s TypeStats
		if err := json.Unmarshal(v, &s); err != nil {
			return fmt.Errorf("decoding %s stats: %w", k, err)
		}
		e.Types[tag] = &s
	}
	return nil
}

// Map is a StatisticsMap: field path to FieldEntry. A Map has a single owner;
// it is never written by two goroutines at once.
type Map map[string]*FieldEntry

// NewMap returns an empty statistics map.
func NewMap() Map {
	return make(Map)
}

// Paths returns the map's field paths sorted lexically.
func (m Map) Paths() []string {
	paths := make([]string, 0, len(m))
	for p := range m {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Clone returns a deep copy of m.
func (m Map) Clone() Map {
	c := make(Map, len(m))
	for p, e := range m {
		c[p] = e.Clone()
	}
	return c
}

// Conflicts returns the entries observed under more than one tag.
func (m Map) Conflicts() Map {
	out := make(Map)
	for p, e := range m {
		if e.Conflicting() {
			out[p] = e
		}
	}
	return out
}

// entry returns the entry for path, creating it when absent, and records
// baseKey on every touch.
func (m Map) entry(path, baseKey string) *FieldEntry {
	e, ok := m[path]
	if !ok {
		e = NewFieldEntry(baseKey)
		m[path] = e
	}
	e.BaseKey = baseKey
	return e
}

func ptr[T any](v T) *T {
	return &v
}
