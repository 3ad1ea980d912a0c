package avro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrimitiveSchema(t *testing.T) {
	tests := []struct {
		name    string
		typ     Type
		wantErr bool
	}{
		{name: "valid int", typ: Int, wantErr: false},
		{name: "valid string", typ: String, wantErr: false},
		{name: "record is not primitive", typ: Record, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sch, err := NewPrimitiveSchema(tt.typ, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.typ, sch.Type())
		})
	}
}

func TestNewUnionSchema_Rules(t *testing.T) {
	null, _ := NewPrimitiveSchema(Null, nil)
	str, _ := NewPrimitiveSchema(String, nil)
	str2, _ := NewPrimitiveSchema(String, nil)

	t.Run("nullable union is valid", func(t *testing.T) {
		_, err := NewUnionSchema([]Schema{null, str})
		assert.NoError(t, err)
	})

	t.Run("duplicate primitive branch rejected", func(t *testing.T) {
		_, err := NewUnionSchema([]Schema{str, str2})
		assert.Error(t, err)
	})

	t.Run("nested union rejected", func(t *testing.T) {
		inner, err := NewUnionSchema([]Schema{null, str})
		require.NoError(t, err)
		_, err = NewUnionSchema([]Schema{inner})
		assert.Error(t, err)
	})

	t.Run("duplicate named branch rejected", func(t *testing.T) {
		n1, err := newName("Foo", "", "")
		require.NoError(t, err)
		r1, err := NewRecordSchema(n1, nil, "", nil)
		require.NoError(t, err)
		n2, err := newName("Foo", "", "")
		require.NoError(t, err)
		r2, err := NewRecordSchema(n2, nil, "", nil)
		require.NoError(t, err)
		_, err = NewUnionSchema([]Schema{r1, r2})
		assert.Error(t, err)
	})
}

func TestUnionSchema_Nullable(t *testing.T) {
	null, _ := NewPrimitiveSchema(Null, nil)
	str, _ := NewPrimitiveSchema(String, nil)
	intSch, _ := NewPrimitiveSchema(Int, nil)

	u, err := NewUnionSchema([]Schema{null, str})
	require.NoError(t, err)
	assert.True(t, u.Nullable())

	u2, err := NewUnionSchema([]Schema{str, intSch})
	require.NoError(t, err)
	assert.False(t, u2.Nullable())
}

func TestRecordSchema_SetFields_DuplicateName(t *testing.T) {
	n, err := newName("Rec", "", "")
	require.NoError(t, err)
	str, _ := NewPrimitiveSchema(String, nil)

	_, err = NewRecordSchema(n, nil, "", []*Field{
		NewField("a", "", str, nil, false),
		NewField("a", "", str, nil, false),
	})
	assert.Error(t, err)
}

func TestEnumSchema_DuplicateSymbol(t *testing.T) {
	n, err := newName("Suit", "", "")
	require.NoError(t, err)
	_, err = NewEnumSchema(n, nil, "", []string{"SPADES", "SPADES"})
	assert.Error(t, err)
}

func TestEnumSchema_InvalidSymbol(t *testing.T) {
	n, err := newName("Suit", "", "")
	require.NoError(t, err)
	_, err = NewEnumSchema(n, nil, "", []string{"not valid!"})
	assert.Error(t, err)
}
