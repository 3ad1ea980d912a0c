package avro

import (
	"io"
	"reflect"
)

// encodeFunc writes one schema node's worth of value from v (never a
// pointer; callers deref first) to w.
type encodeFunc func(v reflect.Value, w *Writer) error

// decodeFunc reads one schema node's worth of value from r into the
// settable value v.
type decodeFunc func(v reflect.Value, r *Reader) error

// Codec is a compiled encode/decode delegate pair for one (Schema, host
// type) combination.
type Codec struct {
	schema Schema
	typ    reflect.Type
	enc    encodeFunc
	dec    decodeFunc
}

// Schema returns the schema the codec was built from.
func (c *Codec) Schema() Schema { return c.schema }

// Encode writes v to w in Avro binary form.
func (c *Codec) Encode(w io.Writer, v interface{}) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return unsupportedType("cannot encode a nil %v", rv.Type())
		}
		rv = rv.Elem()
	}
	ww := NewWriter(w)
	if err := c.enc(rv, ww); err != nil {
		return err
	}
	return ww.Flush()
}

// Decode reads one Avro binary value from r into v, which must be a
// non-nil pointer to the codec's host type.
func (c *Codec) Decode(r io.Reader, v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return unsupportedType("Decode requires a non-nil pointer, got %v", rv.Type())
	}
	return c.dec(rv.Elem(), NewReader(r))
}

// NewCodecForType compiles s against the host type t.
func NewCodecForType(s Schema, t reflect.Type) (*Codec, error) {
	res, err := NewResolver().Resolve(t)
	if err != nil {
		return nil, err
	}
	enc, dec, err := newBuilder().build(s, res, t)
	if err != nil {
		return nil, err
	}
	return &Codec{schema: s, typ: t, enc: enc, dec: dec}, nil
}

// NewCodec compiles s against the type of v (a zero value or pointer to
// one is enough; the value itself is not inspected).
func NewCodec(s Schema, v interface{}) (*Codec, error) {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return NewCodecForType(s, t)
}

// lazyCodec is a placeholder installed in the build cache before a named
// schema's children are compiled, so that a record referencing itself
// (directly, or transitively through an array/map/union) terminates at
// build time instead of recursing forever. Every encode/decode closure
// built for a self-reference goes through the pointer indirection here
// and only resolves once the outer buildRecord call finishes and fills
// in enc/dec.
type lazyCodec struct {
	enc encodeFunc
	dec decodeFunc
}

func (lc *lazyCodec) encode(v reflect.Value, w *Writer) error { return lc.enc(v, w) }
func (lc *lazyCodec) decode(v reflect.Value, r *Reader) error { return lc.dec(v, r) }

// builder holds the per-build recursion-breaking cache. A fresh builder
// is used for each top-level NewCodec call and for each dynamically
// resolved interface{} union branch.
type builder struct {
	cache map[NamedSchema]*lazyCodec
}

func newBuilder() *builder {
	return &builder{cache: map[NamedSchema]*lazyCodec{}}
}

// build compiles one schema node. raw is the undereferenced occurrence
// type for this slot (a struct field's literal type, or a slice/map's
// declared element type) — it may differ from res.Go when res comes
// from a pointer field, since Resolver.Resolve always derefs pointers
// before resolving. The union builder consults raw, not res.Go, to
// decide how to represent a nullable union.
func (b *builder) build(s Schema, res *Resolution, raw reflect.Type) (encodeFunc, decodeFunc, error) {
	if us, ok := s.(*UnionSchema); ok {
		return b.buildUnion(us, res, raw)
	}

	if ns, ok := s.(NamedSchema); ok {
		if lc, cached := b.cache[ns]; cached {
			return lc.encode, lc.decode, nil
		}
	}

	if ls, ok := s.(LogicalSchema); ok && ls.Logical() != nil {
		return b.buildLogical(s, ls.Logical(), res)
	}

	switch v := s.(type) {
	case *PrimitiveSchema:
		return b.buildPrimitive(v, res)
	case *ArraySchema:
		return b.buildArray(v, res, raw)
	case *MapSchema:
		return b.buildMap(v, res, raw)
	case *FixedSchema:
		return b.buildFixed(v, res)
	case *EnumSchema:
		return b.buildEnum(v, res)
	case *RecordSchema:
		return b.buildRecord(v, res)
	}
	return nil, nil, unsupportedType("unhandled schema type %v", s.Type())
}

func (b *builder) buildLogical(s Schema, lt *LogicalType, res *Resolution) (encodeFunc, decodeFunc, error) {
	switch lt.Type() {
	case DecimalType:
		if fs, ok := s.(*FixedSchema); ok {
			return decimalFixedCodec(lt, fs.Size(), res)
		}
		return decimalBytesCodec(lt, res)
	case UUID:
		return uuidCodec(res)
	case Date:
		return dateCodec(res)
	case TimeMillis:
		return timeMillisCodec(res)
	case TimeMicros:
		return timeMicrosCodec(res)
	case TimestampMillis:
		return timestampMillisCodec(res)
	case TimestampMicros:
		return timestampMicrosCodec(res)
	case DurationType:
		return durationCodec(res)
	}
	return nil, nil, unsupportedType("unknown logical type %q", lt.Type())
}

// rawElem derives the raw occurrence type for an array item or map value
// slot from the enclosing slot's own raw type, falling back to the
// resolution's Go type when raw isn't available (e.g. at the top level).
func rawElem(raw, fallback reflect.Type) reflect.Type {
	if raw != nil {
		switch raw.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map:
			return raw.Elem()
		}
	}
	return fallback
}

func findField(res *Resolution, name string) (FieldResolution, bool) {
	for _, f := range res.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldResolution{}, false
}
