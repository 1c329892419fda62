package stats

import (
	"errors"
	"fmt"
)

// ErrMalformedDocument is returned for documents that have no field path to
// record a scalar under: a bare scalar, or a top-level array holding scalars.
var ErrMalformedDocument = errors.New("malformed document: scalar without a field path")

// Observer is notified of every leaf the walker records. Nulls are reported
// with an empty tag even though they add no statistics.
type Observer interface {
	Observe(path, baseKey string, v Value, tag Tag)
}

// Walker flattens documents into dotted field paths and folds every leaf
// into a statistics map.
type Walker struct {
	Classifier  Classifier
	Accumulator Accumulator
	// Observer, when set, sees every leaf write.
	Observer Observer
}

// NewWalker returns a walker with datetime detection set as requested.
func NewWalker(parseTimestamps bool) *Walker {
	return &Walker{Classifier: Classifier{ParseTimestamps: parseTimestamps}}
}

// Walk records doc into m. The document is checked before any write, so a
// malformed document leaves m untouched.
func (w *Walker) Walk(doc Value, m Map) error {
	return w.WalkAt(doc, m, "")
}

// WalkAt records doc into m as if it were found at parentPath.
func (w *Walker) WalkAt(doc Value, m Map, parentPath string) error {
	if err := checkDocument(doc, parentPath); err != nil {
		return err
	}
	w.walk(doc, m, parentPath, lastSegment(parentPath))
	return nil
}

// Check reports whether doc can be walked from the top level. It returns an
// error wrapping ErrMalformedDocument when it cannot.
func Check(doc Value) error {
	return checkDocument(doc, "")
}

// WalkAny converts a generic Go value with FromAny and records it into m.
func (w *Walker) WalkAny(doc any, m Map) error {
	v, err := FromAny(doc)
	if err != nil {
		return err
	}
	return w.Walk(v, m)
}

func (w *Walker) walk(v Value, m Map, path, baseKey string) {
	switch v.Kind {
	case KindObject:
		for _, f := range v.Fields {
			child := f.Key
			if path != "" {
				child = path + "." + f.Key
			}
			if f.Value.IsContainer() {
				w.walk(f.Value, m, child, f.Key)
				continue
			}
			w.record(f.Value, m, child, f.Key)
		}
	case KindArray:
		recorded := false
		for _, item := range v.Items {
			if item.IsContainer() {
				w.walk(item, m, path, baseKey)
				continue
			}
			// A list holding scalars is one string observation of its text.
			if !recorded {
				w.record(String(Canonical(v)), m, path, baseKey)
				recorded = true
			}
		}
	default:
		w.record(v, m, path, baseKey)
	}
}

func (w *Walker) record(v Value, m Map, path, baseKey string) {
	tag, ok := w.Classifier.Classify(v)
	if w.Observer != nil {
		w.Observer.Observe(path, baseKey, v, tag)
	}
	if !ok {
		return
	}
	e := m.entry(path, baseKey)
	e.Types[tag] = w.Accumulator.Update(v, tag, e.Types[tag])
}

// checkDocument finds scalars that would be recorded under an empty path.
// Only arrays reached without an object key can produce one.
func checkDocument(v Value, path string) error {
	if path != "" {
		return nil
	}
	switch v.Kind {
	case KindObject:
		return nil
	case KindArray:
		for i, item := range v.Items {
			if !item.IsContainer() {
				return fmt.Errorf("%w: %s at index %d", ErrMalformedDocument, item.Kind, i)
			}
			if err := checkDocument(item, path); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: top-level %s", ErrMalformedDocument, v.Kind)
	}
}

func lastSegment(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[i+1:]
		}
	}
	return path
}
