package avro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalNative_Record(t *testing.T) {
	sch, err := Parse(`{"type":"record","name":"User","fields":[
		{"name":"name","type":"string"},
		{"name":"age","type":["null","int"],"default":null}
	]}`)
	require.NoError(t, err)

	in := map[string]interface{}{
		"name": "Ada",
		"age":  float64(36),
	}

	data, err := MarshalNative(sch, in)
	require.NoError(t, err)

	out, err := UnmarshalNative(sch, data)
	require.NoError(t, err)

	m, ok := out.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Ada", m["name"])
	assert.EqualValues(t, 36, m["age"])
}

func TestMarshalNative_MissingFieldUsesDefault(t *testing.T) {
	sch, err := Parse(`{"type":"record","name":"User","fields":[
		{"name":"name","type":"string"},
		{"name":"nickname","type":"string","default":"anon"}
	]}`)
	require.NoError(t, err)

	data, err := MarshalNative(sch, map[string]interface{}{"name": "Ada"})
	require.NoError(t, err)

	out, err := UnmarshalNative(sch, data)
	require.NoError(t, err)
	m := out.(map[string]interface{})
	assert.Equal(t, "anon", m["nickname"])
}

func TestMarshalNative_MissingFieldNoDefaultErrors(t *testing.T) {
	sch, err := Parse(`{"type":"record","name":"User","fields":[
		{"name":"name","type":"string"}
	]}`)
	require.NoError(t, err)

	_, err = MarshalNative(sch, map[string]interface{}{})
	assert.Error(t, err)
}

func TestMarshalUnmarshalNative_Array(t *testing.T) {
	sch, err := Parse(`{"type":"array","items":"string"}`)
	require.NoError(t, err)

	in := []interface{}{"a", "b", "c"}
	data, err := MarshalNative(sch, in)
	require.NoError(t, err)

	out, err := UnmarshalNative(sch, data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestMarshalUnmarshalNative_UnionSelectsBranch(t *testing.T) {
	sch, err := Parse(`["null","string","int"]`)
	require.NoError(t, err)

	t.Run("string branch", func(t *testing.T) {
		data, err := MarshalNative(sch, "hello")
		require.NoError(t, err)
		out, err := UnmarshalNative(sch, data)
		require.NoError(t, err)
		assert.Equal(t, "hello", out)
	})

	t.Run("null branch", func(t *testing.T) {
		data, err := MarshalNative(sch, nil)
		require.NoError(t, err)
		out, err := UnmarshalNative(sch, data)
		require.NoError(t, err)
		assert.Nil(t, out)
	})

	t.Run("int branch", func(t *testing.T) {
		data, err := MarshalNative(sch, float64(42))
		require.NoError(t, err)
		out, err := UnmarshalNative(sch, data)
		require.NoError(t, err)
		assert.EqualValues(t, 42, out)
	})
}

func TestMarshalNative_EnumSymbol(t *testing.T) {
	sch, err := Parse(`{"type":"enum","name":"Suit","symbols":["SPADES","HEARTS"]}`)
	require.NoError(t, err)

	data, err := MarshalNative(sch, "HEARTS")
	require.NoError(t, err)
	out, err := UnmarshalNative(sch, data)
	require.NoError(t, err)
	assert.Equal(t, "HEARTS", out)
}

func TestMarshalNative_UnknownEnumSymbolRejected(t *testing.T) {
	sch, err := Parse(`{"type":"enum","name":"Suit","symbols":["SPADES","HEARTS"]}`)
	require.NoError(t, err)

	_, err = MarshalNative(sch, "CLUBS")
	assert.Error(t, err)
}
