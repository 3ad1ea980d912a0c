package avro

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type simpleStruct struct {
	Name string
	Age  int32
}

type taggedStruct struct {
	Name     string `avro:"full_name"`
	Internal string `avro:"-"`
}

type contractStruct struct {
	Visible string `avro:"visible"`
	Hidden  string
}

func (contractStruct) avroDataContract() {}

type selfRefStruct struct {
	Value int32
	Next  *selfRefStruct
}

type colorEnum int

func (colorEnum) AvroSymbols() []string { return []string{"RED", "GREEN", "BLUE"} }

func TestResolver_SimpleStruct(t *testing.T) {
	res, err := NewResolver().Resolve(reflect.TypeOf(simpleStruct{}))
	require.NoError(t, err)
	assert.Equal(t, KindRecord, res.Kind)
	require.Len(t, res.Fields, 2)
	assert.Equal(t, "Name", res.Fields[0].Name)
	assert.Equal(t, KindString, res.Fields[0].Res.Kind)
	assert.Equal(t, "Age", res.Fields[1].Name)
	assert.Equal(t, KindInteger, res.Fields[1].Res.Kind)
	assert.Equal(t, 32, res.Fields[1].Res.Bits)
}

func TestResolver_TaggedFieldNameAndSkip(t *testing.T) {
	res, err := NewResolver().Resolve(reflect.TypeOf(taggedStruct{}))
	require.NoError(t, err)
	require.Len(t, res.Fields, 1)
	assert.Equal(t, "full_name", res.Fields[0].Name)
}

func TestResolver_DataContractOptIn(t *testing.T) {
	res, err := NewResolver().Resolve(reflect.TypeOf(contractStruct{}))
	require.NoError(t, err)
	require.Len(t, res.Fields, 1)
	assert.Equal(t, "visible", res.Fields[0].Name)
}

func TestResolver_SelfReferentialStruct(t *testing.T) {
	res, err := NewResolver().Resolve(reflect.TypeOf(selfRefStruct{}))
	require.NoError(t, err)
	require.Len(t, res.Fields, 2)
	next := res.Fields[1]
	assert.Equal(t, KindRecord, next.Res.Kind)
	assert.Same(t, res, next.Res)
}

func TestResolver_Enum(t *testing.T) {
	res, err := NewResolver().Resolve(reflect.TypeOf(colorEnum(0)))
	require.NoError(t, err)
	assert.Equal(t, KindEnum, res.Kind)
	require.Len(t, res.Symbols, 3)
	assert.Equal(t, "RED", res.Symbols[0].Name)
}

func TestResolver_SpecialTypes(t *testing.T) {
	res, err := NewResolver().Resolve(reflect.TypeOf([]byte(nil)))
	require.NoError(t, err)
	assert.Equal(t, KindBytes, res.Kind)
}

func TestResolver_ArrayAndMap(t *testing.T) {
	res, err := NewResolver().Resolve(reflect.TypeOf([]string(nil)))
	require.NoError(t, err)
	assert.Equal(t, KindArray, res.Kind)
	assert.Equal(t, KindString, res.Item.Kind)

	mres, err := NewResolver().Resolve(reflect.TypeOf(map[string]int32(nil)))
	require.NoError(t, err)
	assert.Equal(t, KindMap, mres.Kind)
	assert.Equal(t, KindInteger, mres.MapValue.Kind)
}

func TestResolver_UnsupportedType(t *testing.T) {
	_, err := NewResolver().Resolve(reflect.TypeOf(make(chan int)))
	assert.Error(t, err)
	var ute *UnsupportedTypeError
	assert.ErrorAs(t, err, &ute)
}
