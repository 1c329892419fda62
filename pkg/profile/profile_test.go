package profile

import (
	"testing"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/malort/pkg/stats"
)

func walkDocs(t *testing.T, p *Profile, file int, docs ...string) stats.Map {
	t.Helper()

	m := stats.NewMap()
	w := stats.NewWalker(true)
	w.Observer = p
	for i, doc := range docs {
		v, err := stats.Decode([]byte(doc))
		require.NoError(t, err)
		p.Begin(Ordinal(file, i))
		require.NoError(t, w.Walk(v, m))
	}
	return m
}

func TestOrdinal_DistinctAcrossFiles(t *testing.T) {
	assert.NotEqual(t, Ordinal(0, 1), Ordinal(1, 0))
	assert.Equal(t, uint64(1)<<32|7, Ordinal(1, 7))
}

func TestProfile_Summary(t *testing.T) {
	p := New()
	walkDocs(t, p, 0,
		`{"name": "abc", "age": 1}`,
		`{"name": "abcde", "age": null}`,
		`{"name": "abcdefg"}`,
		`{"name": "abc", "age": 3}`,
	)

	name, ok := p.Summary("name")
	require.True(t, ok)
	assert.Equal(t, uint64(4), name.Documents)
	assert.Equal(t, 1.0, name.Frequency)
	assert.Equal(t, int64(0), name.Nulls)
	assert.InDelta(t, 3, name.Distinct, 1)
	assert.Equal(t, int64(3), name.LengthP50)
	assert.Equal(t, int64(7), name.LengthMax)

	age, ok := p.Summary("age")
	require.True(t, ok)
	assert.Equal(t, uint64(3), age.Documents)
	assert.Equal(t, 0.75, age.Frequency)
	assert.Equal(t, int64(1), age.Nulls)
	assert.Zero(t, age.LengthMax)

	_, ok = p.Summary("missing")
	assert.False(t, ok)
}

func TestProfile_Required(t *testing.T) {
	p := New()
	walkDocs(t, p, 0, `{"id": 1, "opt": 2, "n": 1}`, `{"id": 2, "n": null}`)

	assert.True(t, p.Required("id"))
	assert.False(t, p.Required("opt"))
	assert.False(t, p.Required("n"))
	assert.False(t, p.Required("nope"))
}

func TestProfile_DistinctKeepsKindsApart(t *testing.T) {
	p := New()
	walkDocs(t, p, 0, `{"v": "1"}`, `{"v": 1}`, `{"v": 1}`)

	s, _ := p.Summary("v")
	assert.InDelta(t, 2, s.Distinct, 0.5)
}

func TestProfile_Merge(t *testing.T) {
	a, b := New(), New()
	walkDocs(t, a, 0, `{"x": "aa"}`, `{"y": true}`)
	walkDocs(t, b, 1, `{"x": "bbbb"}`, `{"x": null}`)

	require.NoError(t, a.Merge(b))

	assert.Equal(t, uint64(4), a.Documents.GetCardinality())

	x, _ := a.Summary("x")
	assert.Equal(t, uint64(3), x.Documents)
	assert.Equal(t, 0.75, x.Frequency)
	assert.Equal(t, int64(1), x.Nulls)
	assert.Equal(t, int64(4), x.LengthMax)

	y, _ := a.Summary("y")
	assert.Equal(t, 0.25, y.Frequency)

	// b is left as it was.
	assert.Equal(t, uint64(2), b.Documents.GetCardinality())
}

func TestProfile_Summaries_Sorted(t *testing.T) {
	p := New()
	walkDocs(t, p, 0, `{"b": 1, "a": {"c": 2}}`)

	summaries := p.Summaries()
	require.Len(t, summaries, 2)
	assert.Equal(t, "a.c", summaries[0].Path)
	assert.Equal(t, "b", summaries[1].Path)
}

func TestRecordLength(t *testing.T) {
	f := newField()

	require.NoError(t, recordLength(f.Lengths, 4))
	require.NoError(t, recordLength(f.Lengths, 1<<40))
	assert.Equal(t, int64(2), f.Lengths.TotalCount())
	assert.GreaterOrEqual(t, f.Lengths.Max(), int64(maxTrackedLength))

	small := hdrhistogram.New(1, 10, 2)
	assert.Error(t, recordLength(small, 1<<20))
	assert.Zero(t, small.TotalCount())
}
