package stats

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intStats(count int64, mean float64, maxVal, minVal int64) *TypeStats {
	return &TypeStats{Count: count, Mean: ptr(mean), Max: ptr(IntNumber(maxVal)), Min: ptr(IntNumber(minVal))}
}

func strStats(count int64, mean float64, maxVal, minVal int64, sample ...string) *TypeStats {
	s := intStats(count, mean, maxVal, minVal)
	s.Sample = sample
	return s
}

func floatStats(count int64, mean, maxVal, minVal float64, precision, scale int, fixed bool) *TypeStats {
	return &TypeStats{
		Count: count, Mean: ptr(mean), Max: ptr(FloatNumber(maxVal)), Min: ptr(FloatNumber(minVal)),
		MaxPrecision: ptr(precision), MaxScale: ptr(scale), FixedLength: ptr(fixed),
	}
}

func entry(baseKey string, types map[Tag]*TypeStats) *FieldEntry {
	return &FieldEntry{BaseKey: baseKey, Types: types}
}

func TestReducer_Combine_Simple(t *testing.T) {
	accum := Map{
		"key1": entry("key1", map[Tag]*TypeStats{TagInteger: intStats(1, 1.0, 1, 1)}),
		"key2": entry("key2", map[Tag]*TypeStats{TagString: strStats(1, 3.0, 3, 3, "Foo")}),
	}
	incoming := Map{
		"key1": entry("key1", map[Tag]*TypeStats{TagInteger: intStats(1, 1.0, 4, 4)}),
		"key2": entry("key2", map[Tag]*TypeStats{TagString: strStats(9, 6.0, 5, 0, "Foo")}),
	}

	var r Reducer
	combined := r.Combine(accum, incoming)

	assert.Equal(t, intStats(2, 1.0, 4, 1), combined["key1"].Types[TagInteger])
	assert.Equal(t, strStats(10, 5.7, 5, 0, "Foo", "Foo"), combined["key2"].Types[TagString])
}

func TestReducer_Combine_IncomingMissingPath(t *testing.T) {
	accum := Map{
		"key1": entry("key1", map[Tag]*TypeStats{
			TagInteger: intStats(1, 1.0, 1, 1),
			TagFloat:   floatStats(1, 4.0, 4.0, 4.0, 2, 1, true),
		}),
		"key2": entry("key2", map[Tag]*TypeStats{TagString: strStats(1, 3.0, 3, 3, "Foo")}),
	}
	incoming := Map{
		"key1": entry("key1", map[Tag]*TypeStats{
			TagInteger: intStats(1, 1.0, 4, 4),
			TagFloat:   floatStats(12, 10.0, 2.0, 1.0, 10, 0, false),
		}),
	}

	var r Reducer
	combined := r.Combine(accum, incoming)

	assert.Equal(t, intStats(2, 1.0, 4, 1), combined["key1"].Types[TagInteger])
	assert.Equal(t, floatStats(13, 9.538, 4.0, 1.0, 10, 1, false), combined["key1"].Types[TagFloat])
	assert.Equal(t, accum["key2"], combined["key2"])
}

func TestReducer_Combine_AccumulatorMissingTag(t *testing.T) {
	accum := Map{
		"key1": entry("key1", map[Tag]*TypeStats{TagInteger: intStats(1, 1.0, 1, 1)}),
	}
	incoming := Map{
		"key2": entry("key2", map[Tag]*TypeStats{TagString: strStats(1, 3.0, 3, 3, "Foo")}),
		"key1": entry("", map[Tag]*TypeStats{TagString: strStats(1, 2.0, 2, 2, "Fo")}),
	}

	var r Reducer
	combined := r.Combine(accum, incoming)

	assert.Equal(t, entry("key1", map[Tag]*TypeStats{
		TagInteger: intStats(1, 1.0, 1, 1),
		TagString:  strStats(1, 2.0, 2, 2, "Fo"),
	}), combined["key1"])
	assert.Equal(t, incoming["key2"], combined["key2"])
	assert.True(t, combined["key1"].Conflicting())
}

func TestReducer_Combine_BaseKeyFallback(t *testing.T) {
	accum := Map{"a.b": entry("", map[Tag]*TypeStats{TagBoolean: {Count: 1}})}
	incoming := Map{"a.b": entry("b", map[Tag]*TypeStats{TagBoolean: {Count: 2}})}

	var r Reducer
	combined := r.Combine(accum, incoming)

	assert.Equal(t, "b", combined["a.b"].BaseKey)
	assert.Equal(t, &TypeStats{Count: 3}, combined["a.b"].Types[TagBoolean])
}

func TestReducer_Combine_UniformSample(t *testing.T) {
	samples := []string{"foo", "bar", "baz", "qux", "Foo", "Bar"}
	accum := Map{"key1": entry("key1", map[Tag]*TypeStats{TagString: strStats(4, 3.0, 3, 3, samples[0:4]...)})}
	incoming := Map{"key1": entry("key1", map[Tag]*TypeStats{TagString: strStats(2, 3.0, 3, 3, samples[4:]...)})}

	r := Reducer{Rand: rand.New(rand.NewPCG(7, 11))}
	for range 20 {
		sample := r.Combine(accum, incoming)["key1"].Types[TagString].Sample
		assert.Len(t, sample, SampleSize)
		assert.Subset(t, samples, sample)
	}
}

func TestReducer_Combine_MissingMean(t *testing.T) {
	accum := Map{"f": entry("f", map[Tag]*TypeStats{TagFloat: {Count: 2, MaxPrecision: ptr(2), MaxScale: ptr(1), FixedLength: ptr(true)}})}
	incoming := Map{"f": entry("f", map[Tag]*TypeStats{TagFloat: floatStats(2, 2.5, 3.5, 1.5, 2, 1, true)})}

	var r Reducer
	merged := r.Combine(accum, incoming)["f"].Types[TagFloat]

	assert.Equal(t, int64(4), merged.Count)
	assert.Equal(t, 2.5, *merged.Mean)
	assert.Equal(t, FloatNumber(3.5), *merged.Max)
	assert.True(t, *merged.FixedLength)
}

func TestReducer_Combine_FixedLengthDiffers(t *testing.T) {
	accum := Map{"f": entry("f", map[Tag]*TypeStats{TagFloat: floatStats(1, 1.5, 1.5, 1.5, 2, 1, true)})}
	incoming := Map{"f": entry("f", map[Tag]*TypeStats{TagFloat: floatStats(1, 1.25, 1.25, 1.25, 3, 2, true)})}

	var r Reducer
	merged := r.Combine(accum, incoming)["f"].Types[TagFloat]

	assert.False(t, *merged.FixedLength)
	assert.Equal(t, 3, *merged.MaxPrecision)
	assert.Equal(t, 2, *merged.MaxScale)
}

func TestReducer_Combine_LeavesInputsUntouched(t *testing.T) {
	accum := Map{"key1": entry("key1", map[Tag]*TypeStats{TagString: strStats(1, 3.0, 3, 3, "Foo")})}
	incoming := Map{"key1": entry("key1", map[Tag]*TypeStats{TagString: strStats(1, 5.0, 5, 5, "Fooo!")})}
	accumBefore, incomingBefore := accum.Clone(), incoming.Clone()

	var r Reducer
	combined := r.Combine(accum, incoming)
	combined["key1"].Types[TagString].Sample[0] = "changed"

	assert.Equal(t, accumBefore, accum)
	assert.Equal(t, incomingBefore, incoming)
}

func TestReducer_Merge_CopiesNewEntries(t *testing.T) {
	dst := NewMap()
	src := Map{"key1": entry("key1", map[Tag]*TypeStats{TagString: strStats(1, 3.0, 3, 3, "Foo")})}

	var r Reducer
	r.Merge(dst, src)
	dst["key1"].Types[TagString].Count = 99

	assert.Equal(t, int64(1), src["key1"].Types[TagString].Count)
}

// withoutSamples strips the randomized attribute so maps compare exactly.
func withoutSamples(m Map) Map {
	c := m.Clone()
	for _, e := range c {
		for _, s := range e.Types {
			s.Sample = nil
		}
	}
	return c
}

func TestReducer_OrderIndependence(t *testing.T) {
	docs := []string{
		`{"n": 2, "s": "ab", "f": 1.5, "b": true, "o": {"x": "2014-08-07"}}`,
		`{"n": 4, "s": "abcd", "f": 2.5, "b": false}`,
		`{"n": 6, "s": "abcdef", "f": 3.5, "o": {"x": "2014-08-08"}}`,
		`{"n": 8, "s": "abcdefgh", "f": 4.5, "b": true}`,
	}

	all := NewMap()
	walkJSON(t, NewWalker(true), all, docs...)

	groupA, groupB := NewMap(), NewMap()
	walkJSON(t, NewWalker(true), groupA, docs[:2]...)
	walkJSON(t, NewWalker(true), groupB, docs[2:]...)

	var r Reducer
	assert.Equal(t, withoutSamples(all), withoutSamples(r.Combine(groupA, groupB)))
	assert.Equal(t, withoutSamples(all), withoutSamples(r.Combine(groupB, groupA)))

	sample := r.Combine(groupA, groupB)["s"].Types[TagString].Sample
	assert.Len(t, sample, SampleSize)
	assert.Subset(t, []string{"ab", "abcd", "abcdef", "abcdefgh"}, sample)
}

func TestReducer_AssociativeAndCommutative(t *testing.T) {
	build := func(docs ...string) Map {
		m := NewMap()
		walkJSON(t, NewWalker(true), m, docs...)
		return m
	}

	x := build(`{"n": 2, "s": "ab"}`, `{"n": 4, "s": "abcd"}`)
	y := build(`{"n": 6, "s": "abcdef", "z": false}`)
	z := build(`{"n": 8, "s": "abcdefgh"}`, `{"n": 10, "s": "abcdefghij"}`, `{"n": 12, "s": "abcdefghijkl"}`)

	var r Reducer
	left := withoutSamples(r.Combine(r.Combine(x, y), z))
	right := withoutSamples(r.Combine(x, r.Combine(y, z)))
	swapped := withoutSamples(r.Combine(y, r.Combine(x, z)))

	require.Equal(t, left, right)
	require.Equal(t, left, swapped)

	assert.Equal(t, intStats(6, 7.0, 12, 2), left["n"].Types[TagInteger])
	assert.Equal(t, intStats(6, 7.0, 12, 2), left["s"].Types[TagString])
}
