package avro

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite_RoundTripsThroughParse(t *testing.T) {
	original := `{"type":"record","name":"com.example.User","fields":[{"name":"name","type":"string"},{"name":"age","type":["null","int"],"default":null}]}`

	sch, err := Parse(original)
	require.NoError(t, err)

	out, err := Write(sch, false)
	require.NoError(t, err)

	reparsed, err := Parse(out)
	require.NoError(t, err)
	assert.True(t, Equal(sch, reparsed))
}

func TestWrite_CanonicalFormOmitsExtras(t *testing.T) {
	sch, err := Parse(`{
		"type": "record",
		"name": "User",
		"namespace": "com.example",
		"doc": "a user",
		"aliases": ["OldUser"],
		"fields": [
			{"name": "name", "type": "string", "doc": "full name", "default": "anon"}
		]
	}`)
	require.NoError(t, err)

	canon, err := Write(sch, true)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(canon), &decoded))

	assert.Equal(t, "com.example.User", decoded["name"])
	assert.NotContains(t, decoded, "namespace")
	assert.NotContains(t, decoded, "doc")
	assert.NotContains(t, decoded, "aliases")

	fields := decoded["fields"].([]interface{})
	field := fields[0].(map[string]interface{})
	assert.NotContains(t, field, "doc")
	assert.NotContains(t, field, "default")
}

func TestWrite_SelfReferentialRecordEmitsBareName(t *testing.T) {
	sch, err := Parse(`{
		"type": "record",
		"name": "Node",
		"fields": [
			{"name": "value", "type": "int"},
			{"name": "next", "type": ["null", "Node"]}
		]
	}`)
	require.NoError(t, err)

	out, err := Write(sch, false)
	require.NoError(t, err)
	assert.Contains(t, out, `"name":"next","type":["null","Node"]`)
}

func TestWrite_ConflictingNamedSchemaOnWrite(t *testing.T) {
	n1, err := newName("Suit", "", "")
	require.NoError(t, err)
	enum1, err := NewEnumSchema(n1, nil, "", []string{"SPADES"})
	require.NoError(t, err)

	n2, err := newName("Suit", "", "")
	require.NoError(t, err)
	enum2, err := NewEnumSchema(n2, nil, "", []string{"CLUBS"})
	require.NoError(t, err)

	rec, err := NewRecordSchema(mustName("Envelope"), nil, "", []*Field{
		NewField("a", "", enum1, nil, false),
		NewField("b", "", enum2, nil, false),
	})
	require.NoError(t, err)

	_, err = Write(rec, false)
	assert.Error(t, err)
}

func mustName(simple string) name {
	n, err := newName(simple, "", "")
	if err != nil {
		panic(err)
	}
	return n
}
