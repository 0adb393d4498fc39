package jtree

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndAccessors(t *testing.T) {
	doc, err := Parse([]byte(`{
		"name": "hist",
		"cycle": 2,
		"weight": 3.0,
		"Keys": [{"name": "a"}],
		"Object": {"_typename": "Event"}
	}`))
	require.NoError(t, err)

	t.Run("string", func(t *testing.T) {
		s, ok := GetString(doc, "name")
		require.True(t, ok)
		assert.Equal(t, "hist", s)

		_, ok = GetString(doc, "cycle")
		assert.False(t, ok)

		_, ok = GetString(nil, "name")
		assert.False(t, ok)
	})

	t.Run("int", func(t *testing.T) {
		n, ok := GetInt(doc, "cycle")
		require.True(t, ok)
		assert.Equal(t, int64(2), n)

		// Whole floats count as integers.
		n, ok = GetInt(doc, "weight")
		require.True(t, ok)
		assert.Equal(t, int64(3), n)

		_, ok = GetInt(doc, "name")
		assert.False(t, ok)
	})

	t.Run("slice", func(t *testing.T) {
		s, ok := GetSlice(doc, "Keys")
		require.True(t, ok)
		assert.Len(t, s, 1)
	})

	t.Run("map", func(t *testing.T) {
		m, ok := GetMap(doc, "Object")
		require.True(t, ok)
		assert.Equal(t, "Event", m["_typename"])
	})
}

func TestParseError(t *testing.T) {
	_, err := Parse([]byte(`{"name": `))
	require.Error(t, err)
}

func TestWriteToDeterministic(t *testing.T) {
	doc := map[string]any{
		"zeta":  int64(1),
		"alpha": "first",
		"mid":   []any{int64(1), int64(2)},
	}

	var a, b bytes.Buffer
	require.NoError(t, WriteTo(&a, doc))
	require.NoError(t, WriteTo(&b, doc))
	assert.Equal(t, a.String(), b.String())

	// Keys come out sorted regardless of insertion order.
	assert.Less(t, bytes.Index(a.Bytes(), []byte("alpha")), bytes.Index(a.Bytes(), []byte("zeta")))
	assert.True(t, bytes.HasSuffix(a.Bytes(), []byte("\n")))
}

func TestRoundTrip(t *testing.T) {
	doc := map[string]any{
		"type":      "ROOTfile",
		"IOVersion": int64(1),
		"Keys":      []any{map[string]any{"name": "obj", "cycle": int64(1)}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTo(&buf, doc))

	back, err := Parse(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, doc, back)
}

func TestTypenames(t *testing.T) {
	doc, err := Parse([]byte(`{
		"Keys": [
			{"name": "a", "Object": {"_typename": "Event", "hit": {"_typename": "Hit"}}},
			{"name": "b", "Object": {"_typename": "Event"}},
			{"name": "sub", "Object": {"_typename": "TDirectory", "Keys": [
				{"name": "c", "Object": {"_typename": "Run"}}
			]}}
		]
	}`))
	require.NoError(t, err)

	names := Typenames(doc)
	assert.ElementsMatch(t, []string{"Event", "Hit", "TDirectory", "Run"}, names)
}

func TestTypenamesEmpty(t *testing.T) {
	assert.Empty(t, Typenames(map[string]any{"Keys": []any{}}))
	assert.Empty(t, Typenames(nil))
}
