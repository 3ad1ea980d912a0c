package wire

import (
	"testing"

	"schemaregistry/internal/avro"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeEnvelope_RoundTrip(t *testing.T) {
	payload := []byte{1, 2, 3, 4}
	data := EncodeEnvelope(7, payload)

	id, got, err := DecodeEnvelope(data)
	require.NoError(t, err)
	assert.Equal(t, int32(7), id)
	assert.Equal(t, payload, got)
}

func TestDecodeEnvelope_TooShort(t *testing.T) {
	_, _, err := DecodeEnvelope([]byte{0, 0, 0})
	require.Error(t, err)
	var invalid *avro.InvalidDataError
	assert.ErrorAs(t, err, &invalid)
}

func TestDecodeEnvelope_BadMagicByte(t *testing.T) {
	data := EncodeEnvelope(1, []byte{9})
	data[0] = 0x5

	_, _, err := DecodeEnvelope(data)
	require.Error(t, err)
	var invalid *avro.InvalidDataError
	assert.ErrorAs(t, err, &invalid)
}
