package avro

import "hash/fnv"

// Fingerprint64 returns a 64-bit FNV-1a fingerprint of the schema's
// Parsing Canonical Form. The wire adapter's auto-registration path
// (internal/avro/wire's Serializer) keys a local id cache by this value,
// so a schema generated from a Go type is registered once even if it
// ends up used for more than one subject — akin to Avro's own SHA-256
// CRC-64-AVRO fingerprints but sized to fit a single cache key without
// pulling in another hash dependency.
func Fingerprint64(s Schema) (uint64, error) {
	canon, err := Write(s, true)
	if err != nil {
		return 0, err
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(canon))
	return h.Sum64(), nil
}
