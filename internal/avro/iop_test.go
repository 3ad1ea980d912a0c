package avro

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWriteLong_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, v := range []int64{0, 1, -1, 64, -65, 1 << 40, -(1 << 40)} {
		require.NoError(t, w.WriteLong(v))
	}
	require.NoError(t, w.Flush())

	r := NewReader(&buf)
	for _, want := range []int64{0, 1, -1, 64, -65, 1 << 40, -(1 << 40)} {
		got, err := r.ReadLong()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestReadInt_RejectsVarintLongerThanFiveBytes(t *testing.T) {
	// Five continuation bytes followed by a terminator: valid as a long
	// (within the 10-byte budget) but too long for a 32-bit int.
	data := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}
	r := NewReader(bytes.NewReader(data))
	_, err := r.ReadInt()
	assert.Error(t, err)
}

func TestReadLong_AcceptsVarintUpToTenBytes(t *testing.T) {
	data := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x01}
	r := NewReader(bytes.NewReader(data))
	_, err := r.ReadLong()
	assert.NoError(t, err)
}

func TestReadInt_RoundTripsMaxInt32(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteInt(1<<31-1))
	require.NoError(t, w.WriteInt(-(1 << 31)))
	require.NoError(t, w.Flush())

	r := NewReader(&buf)
	v1, err := r.ReadInt()
	require.NoError(t, err)
	assert.EqualValues(t, 1<<31-1, v1)
	v2, err := r.ReadInt()
	require.NoError(t, err)
	assert.EqualValues(t, -(1 << 31), v2)
}
