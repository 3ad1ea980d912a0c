package wire

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"sync"

	"schemaregistry/internal/avro"

	"golang.org/x/sync/singleflight"
)

// SerializeFunc encodes v into a wire-format payload.
type SerializeFunc func(v interface{}) ([]byte, error)

// DeserializeFunc decodes a wire-format payload into out, a non-nil
// pointer to the deserializer's host type.
type DeserializeFunc func(data []byte, out interface{}) error

func codecFor(schemaJSON string, v interface{}) (avro.Schema, *avro.Codec, error) {
	sch, err := avro.Parse(schemaJSON)
	if err != nil {
		return nil, nil, err
	}
	codec, err := avro.NewCodec(sch, v)
	if err != nil {
		return nil, nil, err
	}
	return sch, codec, nil
}

func envelopeSerializer(id int32, codec *avro.Codec) SerializeFunc {
	return func(v interface{}) ([]byte, error) {
		var buf bytes.Buffer
		if err := codec.Encode(&buf, v); err != nil {
			return nil, err
		}
		return EncodeEnvelope(id, buf.Bytes()), nil
	}
}

// BuildSerializer compiles a codec for v against the schema registered
// under id, closing over id and the envelope prefix.
func BuildSerializer(ctx context.Context, client RegistryClient, id int32, v interface{}) (SerializeFunc, error) {
	schemaJSON, err := client.GetSchema(ctx, id)
	if err != nil {
		return nil, err
	}
	_, codec, err := codecFor(schemaJSON, v)
	if err != nil {
		return nil, err
	}
	return envelopeSerializer(id, codec), nil
}

// BuildSerializerForSubject compiles a codec for v against subject's
// schema: the latest version when version is 0, a specific one
// otherwise.
func BuildSerializerForSubject(ctx context.Context, client RegistryClient, subject string, version int, v interface{}) (SerializeFunc, error) {
	var id int32
	var schemaJSON string
	var err error
	if version > 0 {
		schemaJSON, err = client.GetSchemaByVersion(ctx, subject, version)
		if err != nil {
			return nil, err
		}
		id, err = client.GetSchemaID(ctx, subject, schemaJSON)
		if err != nil {
			return nil, err
		}
	} else {
		id, _, schemaJSON, err = client.GetLatestSchema(ctx, subject)
		if err != nil {
			return nil, err
		}
	}
	_, codec, err := codecFor(schemaJSON, v)
	if err != nil {
		return nil, err
	}
	return envelopeSerializer(id, codec), nil
}

// shouldAutoRegister reports whether err is one of the three lookup
// failures the auto-registration path recovers from: subject-not-found,
// schema-incompatible, or the host value's type not matching the latest
// registered schema.
func shouldAutoRegister(err error) bool {
	if IsNotFound(err) || IsIncompatible(err) {
		return true
	}
	var ute *avro.UnsupportedTypeError
	return errors.As(err, &ute)
}

// BuildSerializerAutoRegister builds against subject's latest schema; on
// subject-not-found, schema-incompatible, or a type mismatch against the
// latest schema, it generates a schema from v's Go type, registers it,
// and builds against that instead.
func BuildSerializerAutoRegister(ctx context.Context, client RegistryClient, subject string, v interface{}) (SerializeFunc, error) {
	return buildSerializerAutoRegister(ctx, client, subject, v, nil)
}

// buildSerializerAutoRegister is BuildSerializerAutoRegister's
// implementation, optionally consulting fpCache to skip a RegisterSchema
// round trip when the generated schema's fingerprint was already
// registered during this process's lifetime (by this call or an earlier
// one under a different subject) — mirroring a registry client keying a
// local cache by schema.Fingerprint() before registering, rather than by
// subject.
func buildSerializerAutoRegister(ctx context.Context, client RegistryClient, subject string, v interface{}, fpCache *fingerprintCache) (SerializeFunc, error) {
	fn, err := BuildSerializerForSubject(ctx, client, subject, 0, v)
	if err == nil {
		return fn, nil
	}
	if !shouldAutoRegister(err) {
		return nil, err
	}

	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	sch, err := avro.SchemaOf(t)
	if err != nil {
		return nil, err
	}

	var fp uint64
	var haveFP bool
	if fpCache != nil {
		if fp, err = avro.Fingerprint64(sch); err == nil {
			haveFP = true
			if id, ok := fpCache.lookup(fp); ok {
				codec, err := avro.NewCodec(sch, v)
				if err != nil {
					return nil, err
				}
				return envelopeSerializer(id, codec), nil
			}
		}
	}

	schemaJSON, err := avro.Write(sch, false)
	if err != nil {
		return nil, err
	}
	id, err := client.RegisterSchema(ctx, subject, schemaJSON)
	if err != nil {
		return nil, err
	}
	if fpCache != nil && haveFP {
		fpCache.store(fp, id)
	}
	codec, err := avro.NewCodec(sch, v)
	if err != nil {
		return nil, err
	}
	return envelopeSerializer(id, codec), nil
}

// fingerprintCache maps a generated schema's Fingerprint64 to the id it
// was last registered under, so BuildSerializerAutoRegister need not
// re-register the same generated schema for every subject that ends up
// auto-registering it.
type fingerprintCache struct {
	mu  sync.Mutex
	ids map[uint64]int32
}

func newFingerprintCache() *fingerprintCache {
	return &fingerprintCache{ids: map[uint64]int32{}}
}

func (c *fingerprintCache) lookup(fp uint64) (int32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.ids[fp]
	return id, ok
}

func (c *fingerprintCache) store(fp uint64, id int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids[fp] = id
}

func envelopeDeserializer(id int32, codec *avro.Codec) DeserializeFunc {
	return func(data []byte, out interface{}) error {
		gotID, payload, err := DecodeEnvelope(data)
		if err != nil {
			return err
		}
		if gotID != id {
			return &avro.InvalidDataError{Msg: fmt.Sprintf("wire envelope id %d does not match deserializer id %d", gotID, id)}
		}
		return codec.Decode(bytes.NewReader(payload), out)
	}
}

// BuildDeserializer compiles a codec for the host type of v against the
// schema registered under id; the returned func rejects any payload
// whose embedded id differs from id.
func BuildDeserializer(ctx context.Context, client RegistryClient, id int32, v interface{}) (DeserializeFunc, error) {
	schemaJSON, err := client.GetSchema(ctx, id)
	if err != nil {
		return nil, err
	}
	_, codec, err := codecFor(schemaJSON, v)
	if err != nil {
		return nil, err
	}
	return envelopeDeserializer(id, codec), nil
}

// buildCache is the async serializer/deserializer's per-key compiled-
// codec cache: singleflight.Group collapses concurrent callers racing
// for the same key onto one in-flight build, and done retains the
// outcome (success or failure) permanently once that build finishes, so
// a failed build stays cached rather than being retried by the next
// caller.
type buildCache struct {
	group singleflight.Group

	mu   sync.Mutex
	done map[string]cachedBuild
}

type cachedBuild struct {
	value interface{}
	err   error
}

func newBuildCache() *buildCache {
	return &buildCache{done: map[string]cachedBuild{}}
}

func (c *buildCache) once(key string, build func() (interface{}, error)) (interface{}, error) {
	c.mu.Lock()
	if b, ok := c.done[key]; ok {
		c.mu.Unlock()
		return b.value, b.err
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// A caller that missed done above can reach Do after an earlier
		// call for key has finished; reuse that result instead of building.
		c.mu.Lock()
		if b, ok := c.done[key]; ok {
			c.mu.Unlock()
			return b.value, b.err
		}
		c.mu.Unlock()
		value, buildErr := build()
		c.mu.Lock()
		c.done[key] = cachedBuild{value: value, err: buildErr}
		c.mu.Unlock()
		return value, buildErr
	})
	return v, err
}

// SubjectNamer derives a subject from a topic and whether the value
// being serialized is the record key or value.
type SubjectNamer func(topic string, isKey bool) string

// DefaultSubjectName is the default SubjectNamer: "{topic}-{key|value}".
func DefaultSubjectName(topic string, isKey bool) string {
	role := "value"
	if isKey {
		role = "key"
	}
	return topic + "-" + role
}

// Serializer is the async, auto-registering serializer: it compiles and
// caches one SerializeFunc per subject, building each at most once
// across concurrent callers for the adapter's lifetime.
type Serializer struct {
	client       RegistryClient
	autoRegister bool
	SubjectName  SubjectNamer
	cache        *buildCache
	fpCache      *fingerprintCache
}

// NewSerializer constructs an async Serializer over client. When
// autoRegister is true, a subject with no compatible schema yet has one
// generated from the first value serialized under it and registered; the
// generated schema's fingerprint is cached so the same generated schema
// registered for a second subject reuses its id instead of registering
// again.
func NewSerializer(client RegistryClient, autoRegister bool) *Serializer {
	return &Serializer{
		client:       client,
		autoRegister: autoRegister,
		SubjectName:  DefaultSubjectName,
		cache:        newBuildCache(),
		fpCache:      newFingerprintCache(),
	}
}

// Serialize builds (or reuses) the subject's serializer and encodes v.
func (s *Serializer) Serialize(ctx context.Context, topic string, isKey bool, v interface{}) ([]byte, error) {
	subject := s.SubjectName(topic, isKey)
	built, err := s.cache.once(subject, func() (interface{}, error) {
		if s.autoRegister {
			return buildSerializerAutoRegister(ctx, s.client, subject, v, s.fpCache)
		}
		return BuildSerializerForSubject(ctx, s.client, subject, 0, v)
	})
	if err != nil {
		return nil, err
	}
	return built.(SerializeFunc)(v)
}

// Deserializer is the async deserializer: it compiles and caches one
// DeserializeFunc per schema id embedded in the wire envelope, building
// each at most once across concurrent callers.
type Deserializer struct {
	client  RegistryClient
	newHost func() interface{}
	cache   *buildCache
}

// NewDeserializer constructs an async Deserializer over client. newHost
// returns a fresh pointer to the host type used to resolve each id's
// codec; it is only invoked during a build, never per call.
func NewDeserializer(client RegistryClient, newHost func() interface{}) *Deserializer {
	return &Deserializer{client: client, newHost: newHost, cache: newBuildCache()}
}

// Deserialize decodes data, building (or reusing) the deserializer for
// its embedded schema id.
func (d *Deserializer) Deserialize(ctx context.Context, data []byte, out interface{}) error {
	id, _, err := DecodeEnvelope(data)
	if err != nil {
		return err
	}
	key := strconv.FormatInt(int64(id), 10)
	built, err := d.cache.once(key, func() (interface{}, error) {
		return BuildDeserializer(ctx, d.client, id, d.newHost())
	})
	if err != nil {
		return err
	}
	return built.(DeserializeFunc)(data, out)
}
