package avro

import (
	"bytes"
	"math/big"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type person struct {
	Name string
	Age  int32
}

func TestCodec_PrimitiveRecordRoundTrip(t *testing.T) {
	sch, err := Parse(`{"type":"record","name":"Person","fields":[
		{"name":"Name","type":"string"},
		{"name":"Age","type":"int"}
	]}`)
	require.NoError(t, err)

	codec, err := NewCodec(sch, person{})
	require.NoError(t, err)

	var buf bytes.Buffer
	in := person{Name: "Ada", Age: 36}
	require.NoError(t, codec.Encode(&buf, in))

	var out person
	require.NoError(t, codec.Decode(&buf, &out))
	assert.Equal(t, in, out)
}

type listNode struct {
	Value int32
	Next  *listNode
}

func TestCodec_RecursiveRecordRoundTrip(t *testing.T) {
	sch, err := Parse(`{"type":"record","name":"listNode","fields":[
		{"name":"Value","type":"int"},
		{"name":"Next","type":["null","listNode"]}
	]}`)
	require.NoError(t, err)

	codec, err := NewCodec(sch, listNode{})
	require.NoError(t, err)

	in := listNode{Value: 1, Next: &listNode{Value: 2, Next: &listNode{Value: 3}}}

	var buf bytes.Buffer
	require.NoError(t, codec.Encode(&buf, in))

	var out listNode
	require.NoError(t, codec.Decode(&buf, &out))
	require.NotNil(t, out.Next)
	require.NotNil(t, out.Next.Next)
	assert.Nil(t, out.Next.Next.Next)
	assert.Equal(t, int32(1), out.Value)
	assert.Equal(t, int32(2), out.Next.Value)
	assert.Equal(t, int32(3), out.Next.Next.Value)
}

type v1Record struct {
	Name string
	Age  int32
}

func TestCodec_MissingFieldUsesDefaultOnEncode(t *testing.T) {
	// Writer schema carries a field the host type has no counterpart for;
	// the codec must fall back to the declared default rather than
	// erroring, and a reader built against the same schema must consume
	// and discard that default while decoding the host's own fields.
	sch, err := Parse(`{"type":"record","name":"v1Record","fields":[
		{"name":"Name","type":"string"},
		{"name":"Age","type":"int"},
		{"name":"Nickname","type":"string","default":"anon"}
	]}`)
	require.NoError(t, err)

	codec, err := NewCodec(sch, v1Record{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, codec.Encode(&buf, v1Record{Name: "Ada", Age: 36}))

	var out v1Record
	require.NoError(t, codec.Decode(&buf, &out))
	assert.Equal(t, v1Record{Name: "Ada", Age: 36}, out)
}

func TestCodec_ReaderSkipsUnknownWriterField(t *testing.T) {
	// Mirrors writer fields union<null,array<bool>>/array<bool>/map<bool>/
	// bool with no defaults: a reader lacking all of these must still
	// decode cleanly by consuming and discarding them.
	writerSchema, err := Parse(`{"type":"record","name":"Drift","fields":[
		{"name":"Name","type":"string"},
		{"name":"Extra","type":"int"},
		{"name":"Tags","type":["null",{"type":"array","items":"boolean"}]},
		{"name":"Flags","type":{"type":"array","items":"boolean"}},
		{"name":"Attrs","type":{"type":"map","values":"boolean"}},
		{"name":"Flag","type":"boolean"}
	]}`)
	require.NoError(t, err)

	type writerHost struct {
		Name  string
		Extra int32
		Tags  *[]bool
		Flags []bool
		Attrs map[string]bool
		Flag  bool
	}
	writerCodec, err := NewCodec(writerSchema, writerHost{})
	require.NoError(t, err)

	var buf bytes.Buffer
	in := writerHost{
		Name:  "Ada",
		Extra: 7,
		Flags: []bool{true, false},
		Attrs: map[string]bool{"a": true},
		Flag:  true,
	}
	require.NoError(t, writerCodec.Encode(&buf, in))

	type readerHost struct {
		Name string
	}
	readerCodec, err := NewCodec(writerSchema, readerHost{})
	require.NoError(t, err)

	var out readerHost
	require.NoError(t, readerCodec.Decode(&buf, &out))
	assert.Equal(t, "Ada", out.Name)
	assert.Zero(t, buf.Len())
}

func TestCodec_EncodeFieldWithNoHostCounterpartAndNoDefaultFails(t *testing.T) {
	sch, err := Parse(`{"type":"record","name":"Drift","fields":[
		{"name":"Name","type":"string"},
		{"name":"Extra","type":"int"}
	]}`)
	require.NoError(t, err)

	type host struct {
		Name string
	}
	codec, err := NewCodec(sch, host{})
	require.NoError(t, err)

	var buf bytes.Buffer
	err = codec.Encode(&buf, host{Name: "Ada"})
	assert.Error(t, err)
}

func TestCodec_FixedRoundTrip(t *testing.T) {
	sch, err := Parse(`{"type":"fixed","name":"MD5","size":4}`)
	require.NoError(t, err)

	type fixedHost = []byte
	codec, err := NewCodec(sch, fixedHost(nil))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, codec.Encode(&buf, []byte{1, 2, 3, 4}))

	var out []byte
	require.NoError(t, codec.Decode(&buf, &out))
	assert.Equal(t, []byte{1, 2, 3, 4}, out)
}

func TestCodec_DecimalLogicalTypeRoundTrip(t *testing.T) {
	sch, err := Parse(`{"type":"bytes","logicalType":"decimal","precision":10,"scale":2}`)
	require.NoError(t, err)

	codec, err := NewCodec(sch, Decimal{})
	require.NoError(t, err)

	in := Decimal{Unscaled: big.NewInt(12345), Scale: 2}
	var buf bytes.Buffer
	require.NoError(t, codec.Encode(&buf, in))

	var out Decimal
	require.NoError(t, codec.Decode(&buf, &out))
	assert.Equal(t, 0, in.Unscaled.Cmp(out.Unscaled))
	assert.Equal(t, in.Scale, out.Scale)
}

func TestCodec_UUIDLogicalTypeRoundTrip(t *testing.T) {
	sch, err := Parse(`{"type":"string","logicalType":"uuid"}`)
	require.NoError(t, err)

	codec, err := NewCodec(sch, uuid.UUID{})
	require.NoError(t, err)

	in := uuid.New()
	var buf bytes.Buffer
	require.NoError(t, codec.Encode(&buf, in))

	var out uuid.UUID
	require.NoError(t, codec.Decode(&buf, &out))
	assert.Equal(t, in, out)
}

func TestCodec_TimestampLogicalTypeRoundTrip(t *testing.T) {
	sch, err := Parse(`{"type":"long","logicalType":"timestamp-micros"}`)
	require.NoError(t, err)

	codec, err := NewCodec(sch, time.Time{})
	require.NoError(t, err)

	in := time.Date(2024, 3, 14, 9, 26, 53, 0, time.UTC)
	var buf bytes.Buffer
	require.NoError(t, codec.Encode(&buf, in))

	var out time.Time
	require.NoError(t, codec.Decode(&buf, &out))
	assert.True(t, in.Equal(out))
}

type withPointer struct {
	Name string
	Tag  *string
}

func TestCodec_NullableUnionPointerField(t *testing.T) {
	sch, err := Parse(`{"type":"record","name":"withPointer","fields":[
		{"name":"Name","type":"string"},
		{"name":"Tag","type":["null","string"]}
	]}`)
	require.NoError(t, err)

	codec, err := NewCodec(sch, withPointer{})
	require.NoError(t, err)

	t.Run("present", func(t *testing.T) {
		tag := "v2"
		var buf bytes.Buffer
		require.NoError(t, codec.Encode(&buf, withPointer{Name: "x", Tag: &tag}))
		var out withPointer
		require.NoError(t, codec.Decode(&buf, &out))
		require.NotNil(t, out.Tag)
		assert.Equal(t, "v2", *out.Tag)
	})

	t.Run("absent", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, codec.Encode(&buf, withPointer{Name: "x"}))
		var out withPointer
		require.NoError(t, codec.Decode(&buf, &out))
		assert.Nil(t, out.Tag)
	})
}
