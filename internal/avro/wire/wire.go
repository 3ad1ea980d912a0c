// Package wire implements the Confluent-style schema-registry wire
// format: a 5-byte envelope wrapping an Avro binary payload, plus
// synchronous and async serializer/deserializer builders driven by a
// RegistryClient.
package wire

import (
	"encoding/binary"

	"schemaregistry/internal/avro"
)

// MagicByte is the single leading byte every envelope carries.
const MagicByte = 0x0

// envelopeHeaderLen is the magic byte plus the 4-byte big-endian id.
const envelopeHeaderLen = 5

// EncodeEnvelope wraps payload with the magic byte and id.
func EncodeEnvelope(id int32, payload []byte) []byte {
	buf := make([]byte, envelopeHeaderLen+len(payload))
	buf[0] = MagicByte
	binary.BigEndian.PutUint32(buf[1:5], uint32(id))
	copy(buf[envelopeHeaderLen:], payload)
	return buf
}

// DecodeEnvelope splits data into its schema id and Avro payload. A
// leading byte other than MagicByte, or a header shorter than 5 bytes,
// is rejected as InvalidData.
func DecodeEnvelope(data []byte) (id int32, payload []byte, err error) {
	if len(data) < envelopeHeaderLen {
		return 0, nil, &avro.InvalidDataError{Msg: "wire envelope shorter than the 5-byte header"}
	}
	if data[0] != MagicByte {
		return 0, nil, &avro.InvalidDataError{Msg: "wire envelope has a non-zero magic byte"}
	}
	id = int32(binary.BigEndian.Uint32(data[1:5]))
	return id, data[envelopeHeaderLen:], nil
}
