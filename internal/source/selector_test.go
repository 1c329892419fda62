package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/malort/pkg/stats"
)

func TestSelector_Identity(t *testing.T) {
	sel, err := CompileSelector(".")
	require.NoError(t, err)

	docs, err := sel.Select([]byte(`{"b": 2.0, "a": 1}`))
	require.NoError(t, err)
	require.Len(t, docs, 1)

	a, _ := docs[0].Get("a")
	assert.Equal(t, stats.Int(1), a)

	b, _ := docs[0].Get("b")
	assert.Equal(t, stats.Float(2), b)
}

func TestSelector_Iterates(t *testing.T) {
	sel, err := CompileSelector(".items[]")
	require.NoError(t, err)

	docs, err := sel.Select([]byte(`{"items": [{"name": "a"}, {"name": "b"}, null, {"name": "c"}]}`))
	require.NoError(t, err)
	require.Len(t, docs, 3)

	name, _ := docs[2].Get("name")
	assert.Equal(t, stats.String("c"), name)
}

func TestSelector_NestedPath(t *testing.T) {
	sel, err := CompileSelector(".data.records[] | {id, total: (.qty * .price)}")
	require.NoError(t, err)

	docs, err := sel.Select([]byte(`{"data": {"records": [{"id": 7, "qty": 2, "price": 1.5}]}}`))
	require.NoError(t, err)
	require.Len(t, docs, 1)

	id, _ := docs[0].Get("id")
	assert.Equal(t, stats.Int(7), id)
	total, _ := docs[0].Get("total")
	assert.Equal(t, stats.Float(3), total)
}

func TestSelector_RuntimeError(t *testing.T) {
	sel, err := CompileSelector(".items[]")
	require.NoError(t, err)

	_, err = sel.Select([]byte(`{"other": 1}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot iterate over: null")
	assert.Contains(t, err.Error(), "the path may not exist")
}

func TestSelector_InvalidJSON(t *testing.T) {
	sel, err := CompileSelector(".")
	require.NoError(t, err)

	_, err = sel.Select([]byte(`{"a": `))
	assert.ErrorContains(t, err, "invalid JSON data")
}

func TestCompileSelector_Invalid(t *testing.T) {
	_, err := CompileSelector(".items[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid jq expression")
}

func TestSelector_String(t *testing.T) {
	sel, err := CompileSelector(".a")
	require.NoError(t, err)
	assert.Equal(t, ".a", sel.String())
}
