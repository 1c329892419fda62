// Package typemap turns finished statistics into column type recommendations
// for a target database.
package typemap

import (
	"fmt"
	"sort"
	"strings"

	"github.com/usestring/malort/pkg/stats"
)

// MultipleTypes is reported for a field observed under more than one tag.
const MultipleTypes = "Multiple types detected."

// Mapper maps the statistics of a single type tag to a column type.
type Mapper interface {
	Name() string
	Booleans(s *stats.TypeStats) string
	Strings(s *stats.TypeStats) string
	Ints(s *stats.TypeStats) string
	Floats(s *stats.TypeStats) string
	Dates(s *stats.TypeStats) string
}

type mapFunc func(Mapper, *stats.TypeStats) string

var dispatch = map[stats.Tag]mapFunc{
	stats.TagBoolean:  Mapper.Booleans,
	stats.TagString:   Mapper.Strings,
	stats.TagInteger:  Mapper.Ints,
	stats.TagFloat:    Mapper.Floats,
	stats.TagDatetime: Mapper.Dates,
}

// Infer returns the column type for every path in m. Conflicting paths map
// to MultipleTypes.
func Infer(m stats.Map, mapper Mapper) map[string]string {
	out := make(map[string]string, len(m))
	for path, e := range m {
		out[path] = Column(e, mapper)
	}
	return out
}

// Column returns the column type for a single entry.
func Column(e *stats.FieldEntry, mapper Mapper) string {
	if e.Conflicting() {
		return MultipleTypes
	}
	for tag, s := range e.Types {
		if fn, ok := dispatch[tag]; ok {
			return fn(mapper, s)
		}
	}
	return ""
}

var mappers = map[string]Mapper{}

// Register makes a mapper available by name to Lookup.
func Register(m Mapper) {
	mappers[strings.ToLower(m.Name())] = m
}

// Lookup returns the mapper registered under name.
func Lookup(name string) (Mapper, error) {
	if m, ok := mappers[strings.ToLower(name)]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("unknown type mapper %q (available: %s)", name, strings.Join(Names(), ", "))
}

// Names lists the registered mapper names.
func Names() []string {
	names := make([]string, 0, len(mappers))
	for n := range mappers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(Redshift{})
	Register(Postgres{})
}
