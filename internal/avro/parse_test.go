package avro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Primitives(t *testing.T) {
	tests := []struct {
		name string
		json string
		want Type
	}{
		{name: "bare string", json: `"string"`, want: String},
		{name: "object form", json: `{"type": "int"}`, want: Int},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sch, err := Parse(tt.json)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sch.Type())
		})
	}
}

func TestParse_MalformedJSON(t *testing.T) {
	_, err := Parse(`{"type": "record"`)
	assert.Error(t, err)
}

func TestParse_UnknownType(t *testing.T) {
	_, err := Parse(`"notatype"`)
	assert.Error(t, err)
}

func TestParse_Record(t *testing.T) {
	sch, err := Parse(`{
		"type": "record",
		"name": "User",
		"namespace": "com.example",
		"fields": [
			{"name": "name", "type": "string"},
			{"name": "age", "type": ["null", "int"], "default": null}
		]
	}`)
	require.NoError(t, err)

	rec, ok := sch.(*RecordSchema)
	require.True(t, ok)
	assert.Equal(t, "com.example.User", rec.FullName())
	require.Len(t, rec.Fields(), 2)
	assert.Equal(t, "name", rec.Fields()[0].Name())
	assert.Equal(t, String, rec.Fields()[0].Type().Type())

	ageUnion, ok := rec.Fields()[1].Type().(*UnionSchema)
	require.True(t, ok)
	assert.True(t, ageUnion.Nullable())
	assert.True(t, rec.Fields()[1].HasDefault())
}

func TestParse_SelfReferentialRecord(t *testing.T) {
	sch, err := Parse(`{
		"type": "record",
		"name": "Node",
		"fields": [
			{"name": "value", "type": "int"},
			{"name": "next", "type": ["null", "Node"]}
		]
	}`)
	require.NoError(t, err)

	rec := sch.(*RecordSchema)
	nextUnion := rec.Fields()[1].Type().(*UnionSchema)
	var selfRef NamedSchema
	for _, branch := range nextUnion.Types() {
		if ns, ok := branch.(NamedSchema); ok {
			selfRef = ns
		}
	}
	require.NotNil(t, selfRef)
	assert.Same(t, rec, selfRef)
}

func TestParse_NamedSchemaReference(t *testing.T) {
	sch, err := Parse(`{
		"type": "record",
		"name": "Envelope",
		"fields": [
			{"name": "a", "type": {"type": "enum", "name": "Suit", "symbols": ["SPADES", "HEARTS"]}},
			{"name": "b", "type": "Suit"}
		]
	}`)
	require.NoError(t, err)

	rec := sch.(*RecordSchema)
	enumA := rec.Fields()[0].Type().(*EnumSchema)
	enumB := rec.Fields()[1].Type().(*EnumSchema)
	assert.Same(t, enumA, enumB)
}

func TestParse_ConflictingNamedSchema(t *testing.T) {
	_, err := Parse(`{
		"type": "record",
		"name": "Envelope",
		"fields": [
			{"name": "a", "type": {"type": "enum", "name": "Suit", "symbols": ["SPADES", "HEARTS"]}},
			{"name": "b", "type": {"type": "enum", "name": "Suit", "symbols": ["CLUBS"]}}
		]
	}`)
	assert.Error(t, err)
	var conflict *ConflictingSchemaError
	assert.ErrorAs(t, err, &conflict)
}

func TestParse_Fixed(t *testing.T) {
	sch, err := Parse(`{"type": "fixed", "name": "MD5", "size": 16}`)
	require.NoError(t, err)
	fs := sch.(*FixedSchema)
	assert.Equal(t, 16, fs.Size())
}

func TestParse_DecimalLogicalType(t *testing.T) {
	sch, err := Parse(`{"type": "bytes", "logicalType": "decimal", "precision": 9, "scale": 2}`)
	require.NoError(t, err)
	ps := sch.(*PrimitiveSchema)
	require.NotNil(t, ps.Logical())
	assert.Equal(t, DecimalType, ps.Logical().Type())
}
