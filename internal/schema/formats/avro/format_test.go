package avro

import (
	"testing"

	"schemaregistry/internal/schema/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat_ValidateRejectsMalformedSchema(t *testing.T) {
	f := New()
	assert.NoError(t, f.Validate(`{"type":"record","name":"User","fields":[{"name":"name","type":"string"}]}`))
	assert.Error(t, f.Validate(`{"invalid":`))
}

func TestFormat_SerializeDeserializeRoundTrip(t *testing.T) {
	f := New()
	schemaStr := `{"type":"record","name":"User","fields":[
		{"name":"name","type":"string"},
		{"name":"age","type":"int"}
	]}`

	data, err := f.Serialize(map[string]interface{}{"name": "Ada", "age": float64(36)}, schemaStr)
	require.NoError(t, err)

	out, err := f.Deserialize(data, schemaStr)
	require.NoError(t, err)

	m, ok := out.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Ada", m["name"])
	assert.EqualValues(t, 36, m["age"])
}

func TestFormat_CheckCompatibility_AddingOptionalFieldIsBackwardCompatible(t *testing.T) {
	f := New()
	oldSchema := `{"type":"record","name":"User","fields":[
		{"name":"name","type":"string"}
	]}`
	newSchema := `{"type":"record","name":"User","fields":[
		{"name":"name","type":"string"},
		{"name":"nickname","type":["null","string"],"default":null}
	]}`

	ok, err := f.CheckCompatibility(oldSchema, newSchema, types.Backward)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFormat_CheckCompatibility_RemovingRequiredFieldIsIncompatible(t *testing.T) {
	f := New()
	oldSchema := `{"type":"record","name":"User","fields":[
		{"name":"name","type":"string"},
		{"name":"age","type":"int"}
	]}`
	newSchema := `{"type":"record","name":"User","fields":[
		{"name":"name","type":"string"}
	]}`

	ok, err := f.CheckCompatibility(oldSchema, newSchema, types.Backward)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestFormat_CheckCompatibility_NestedArrayFieldStaysCompatible(t *testing.T) {
	// Regression: a field whose type is a nested complex schema (array,
	// here) must compare by its full shape, not its bare top-level type
	// name, or every such field would wrongly report as incompatible.
	f := New()
	oldSchema := `{"type":"record","name":"Group","fields":[
		{"name":"tags","type":{"type":"array","items":"string"}}
	]}`
	newSchema := `{"type":"record","name":"Group","fields":[
		{"name":"tags","type":{"type":"array","items":"string"}}
	]}`

	ok, err := f.CheckCompatibility(oldSchema, newSchema, types.Full)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFormat_CheckCompatibility_NoneLevelAlwaysCompatible(t *testing.T) {
	f := New()
	ok, err := f.CheckCompatibility(`{"type":"string"}`, `{"type":"int"}`, types.None)
	require.NoError(t, err)
	assert.True(t, ok)
}
