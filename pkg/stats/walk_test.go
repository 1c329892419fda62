package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func walkJSON(t *testing.T, w *Walker, m Map, docs ...string) {
	t.Helper()
	for _, doc := range docs {
		v, err := Decode([]byte(doc))
		require.NoError(t, err)
		require.NoError(t, w.Walk(v, m))
	}
}

type recordedLeaf struct {
	path    string
	baseKey string
	value   Value
	tag     Tag
}

type recordingObserver struct {
	leaves []recordedLeaf
}

func (o *recordingObserver) Observe(path, baseKey string, v Value, tag Tag) {
	o.leaves = append(o.leaves, recordedLeaf{path, baseKey, v, tag})
}

func TestWalker_Simple(t *testing.T) {
	m := NewMap()
	walkJSON(t, NewWalker(true), m,
		`{"key1": 1, "key2": "Foo", "key3": 4.0, "key4": true, "key5": ["one", "two", "three"]}`)

	assert.Equal(t, []string{"key1", "key2", "key3", "key4", "key5"}, m.Paths())

	assert.Equal(t, &FieldEntry{BaseKey: "key1", Types: map[Tag]*TypeStats{
		TagInteger: {Count: 1, Mean: ptr(1.0), Max: ptr(IntNumber(1)), Min: ptr(IntNumber(1))},
	}}, m["key1"])

	assert.Equal(t, &FieldEntry{BaseKey: "key3", Types: map[Tag]*TypeStats{
		TagFloat: {
			Count: 1, Mean: ptr(4.0), Max: ptr(FloatNumber(4)), Min: ptr(FloatNumber(4)),
			MaxPrecision: ptr(2), MaxScale: ptr(1), FixedLength: ptr(true),
		},
	}}, m["key3"])

	assert.Equal(t, &FieldEntry{BaseKey: "key4", Types: map[Tag]*TypeStats{
		TagBoolean: {Count: 1},
	}}, m["key4"])

	key5 := m["key5"].Types[TagString]
	require.NotNil(t, key5)
	assert.Equal(t, int64(1), key5.Count)
	assert.Equal(t, IntNumber(23), *key5.Max)
	assert.Equal(t, []string{`["one", "two", "three"]`}, key5.Sample)
}

func TestWalker_UpdatesExistingEntries(t *testing.T) {
	m := NewMap()
	w := NewWalker(true)
	walkJSON(t, w, m, `{"key1": 1, "key2": "Foo"}`, `{"key1": 2}`)

	assert.Equal(t, &TypeStats{
		Count: 2, Mean: ptr(1.5), Max: ptr(IntNumber(2)), Min: ptr(IntNumber(1)),
	}, m["key1"].Types[TagInteger])
	assert.Equal(t, int64(1), m["key2"].Types[TagString].Count)
}

func TestWalker_Nested(t *testing.T) {
	nested := `{
		"key1": 1, "key2": "Foo", "key3": 4.0, "key4": true,
		"key5": {
			"key1": 2, "key2": "Foooo", "key3": 8.0, "key4": false,
			"key6": {"key1": "Foo", "key2": 3.0, "key3": 2.0, "key4": false}
		}
	}`
	withList := `{
		"key1": 1, "key2": "Foo", "key3": 4.0, "key4": true,
		"key5": [
			{"key1": 2, "key2": "Foooo", "key3": 8.0, "key4": false},
			{"key6": {"key1": "Foo", "key2": 3.0, "key3": 2.0, "key4": false}}
		]
	}`

	expectedPaths := []string{
		"key1", "key2", "key3", "key4",
		"key5.key1", "key5.key2", "key5.key3", "key5.key4",
		"key5.key6.key1", "key5.key6.key2", "key5.key6.key3", "key5.key6.key4",
	}

	for name, doc := range map[string]string{"objects": nested, "array": withList} {
		t.Run(name, func(t *testing.T) {
			m := NewMap()
			walkJSON(t, NewWalker(true), m, doc)

			assert.Equal(t, expectedPaths, m.Paths())
			assert.Equal(t, "key2", m["key5.key6.key2"].BaseKey)
			assert.Equal(t, FloatNumber(3), *m["key5.key6.key2"].Types[TagFloat].Max)
			assert.Equal(t, []string{"Foooo"}, m["key5.key2"].Types[TagString].Sample)
			assert.Equal(t, int64(1), m["key5.key4"].Types[TagBoolean].Count)
		})
	}
}

func TestWalker_ListsOfScalars(t *testing.T) {
	m := NewMap()
	walkJSON(t, NewWalker(true), m,
		`{"key1": 1, "key2": ["foo", "bar", "baz"], "key3": [{"key2": ["foo", "bar"]}]}`)

	assert.Equal(t, []string{"key1", "key2", "key3.key2"}, m.Paths())

	key2 := m["key2"].Types[TagString]
	assert.Equal(t, int64(1), key2.Count)
	assert.Equal(t, IntNumber(21), *key2.Max)
	assert.Equal(t, []string{`["foo", "bar", "baz"]`}, key2.Sample)

	nested := m["key3.key2"]
	assert.Equal(t, "key2", nested.BaseKey)
	assert.Equal(t, IntNumber(14), *nested.Types[TagString].Max)
}

func TestWalker_MixedArray(t *testing.T) {
	m := NewMap()
	walkJSON(t, NewWalker(true), m, `{"k": [{"x": 1}, 5, {"y": 2}]}`)

	assert.Equal(t, []string{"k", "k.x", "k.y"}, m.Paths())
	assert.Equal(t, int64(1), m["k"].Types[TagString].Count)
	assert.Equal(t, []string{`[{"x": 1}, 5, {"y": 2}]`}, m["k"].Types[TagString].Sample)
	assert.Equal(t, "y", m["k.y"].BaseKey)
}

func TestWalker_MixedArrayOrder(t *testing.T) {
	leading, trailing := NewMap(), NewMap()
	walkJSON(t, NewWalker(true), leading, `{"x": [2, {"a": 1}]}`)
	walkJSON(t, NewWalker(true), trailing, `{"x": [{"a": 1}, 2]}`)

	assert.Equal(t, []string{"x", "x.a"}, leading.Paths())
	assert.Equal(t, trailing.Paths(), leading.Paths())
	assert.Equal(t, int64(1), leading["x.a"].Types[TagInteger].Count)
}

func TestWalker_TopLevelArrayOfObjects(t *testing.T) {
	m := NewMap()
	walkJSON(t, NewWalker(true), m, `[{"a": 1}, [{"a": 2}]]`)

	require.Contains(t, m, "a")
	assert.Equal(t, int64(2), m["a"].Types[TagInteger].Count)
}

func TestWalker_EmptyContainers(t *testing.T) {
	m := NewMap()
	walkJSON(t, NewWalker(true), m, `{"a": [], "b": {}, "c": [[]]}`, `[]`)

	assert.Empty(t, m)
}

func TestWalker_MalformedDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"string", `"foo"`},
		{"number", `42`},
		{"null", `null`},
		{"scalar_list", `[1, 2, 3]`},
		{"trailing_scalar", `[{"a": 1}, 3]`},
		{"nested_scalar_list", `[[{"a": 1}], ["x"]]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Decode([]byte(tt.doc))
			require.NoError(t, err)

			m := NewMap()
			err = NewWalker(true).Walk(v, m)
			assert.ErrorIs(t, err, ErrMalformedDocument)
			assert.Empty(t, m)
		})
	}
}

func TestWalker_Nulls(t *testing.T) {
	obs := &recordingObserver{}
	w := NewWalker(true)
	w.Observer = obs

	m := NewMap()
	walkJSON(t, w, m, `{"a": null, "b": {"c": "x"}}`)

	assert.Equal(t, []string{"b.c"}, m.Paths())
	require.Len(t, obs.leaves, 2)
	assert.Equal(t, recordedLeaf{"a", "a", Null(), ""}, obs.leaves[0])
	assert.Equal(t, recordedLeaf{"b.c", "c", String("x"), TagString}, obs.leaves[1])
}

func TestWalker_BaseKeyStable(t *testing.T) {
	m := NewMap()
	w := NewWalker(true)
	for range 5 {
		walkJSON(t, w, m, `{"a": {"b": {"c": 1}}}`)
		assert.Equal(t, "c", m["a.b.c"].BaseKey)
	}
	assert.Equal(t, int64(5), m["a.b.c"].Types[TagInteger].Count)
}

func TestWalker_ConflictingTypes(t *testing.T) {
	m := NewMap()
	walkJSON(t, NewWalker(true), m, `{"a": "one", "b": 1}`, `{"a": 1, "b": 2}`)

	conflicts := m.Conflicts()
	assert.Equal(t, []string{"a"}, conflicts.Paths())
	assert.Equal(t, []Tag{TagString, TagInteger}, conflicts["a"].TypeTags())
}

func TestWalker_WalkAt(t *testing.T) {
	m := NewMap()
	v, err := Decode([]byte(`{"id": 1, "tags": ["x"]}`))
	require.NoError(t, err)

	require.NoError(t, NewWalker(true).WalkAt(v, m, "payload.item"))
	assert.Equal(t, []string{"payload.item.id", "payload.item.tags"}, m.Paths())
	assert.Equal(t, "tags", m["payload.item.tags"].BaseKey)
}

func TestWalker_WalkAny(t *testing.T) {
	m := NewMap()
	w := NewWalker(false)

	require.NoError(t, w.WalkAny(map[string]any{"when": "2014-08-07", "n": 1.5}, m))
	assert.Contains(t, m["when"].Types, TagString)
	assert.Contains(t, m["n"].Types, TagFloat)

	err := w.WalkAny(map[string]any{"key1": "Foo", "key2": []any{struct{}{}}}, m)
	var typeErr *UnsupportedTypeError
	assert.ErrorAs(t, err, &typeErr)
}
