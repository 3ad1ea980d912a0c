package avro

import "reflect"

// nativeFunc decodes one schema node into a generic Go representation
// with no host type to guide it: primitives map to their natural Go
// type, arrays to []interface{}, maps and records to
// map[string]interface{}, enums to their symbol name, fixed/bytes to
// []byte, and unions to whichever branch's value was selected (nil for
// the null branch).
//
// This is used for three purposes: discarding a writer-schema field the
// host type dropped (discardDecode), decoding a union branch into an
// interface{} host field, which has no static Go type to decode into,
// and UnmarshalNative's host-type-free decode.
type nativeFunc func(r *Reader) (interface{}, error)

type lazyNativeFunc struct {
	fn nativeFunc
}

func (lf *lazyNativeFunc) call(r *Reader) (interface{}, error) { return lf.fn(r) }

func nativeDecodeFunc(s Schema) (nativeFunc, error) {
	return newNativeBuilder().build(s)
}

// discardDecode wraps a native decode to run and drop its result, for a
// writer-schema field the host type has no counterpart for.
func discardDecode(s Schema) (decodeFunc, error) {
	nd, err := nativeDecodeFunc(s)
	if err != nil {
		return nil, err
	}
	return func(_ reflect.Value, r *Reader) error {
		_, err := nd(r)
		return err
	}, nil
}

type nativeBuilder struct {
	cache map[NamedSchema]*lazyNativeFunc
}

func newNativeBuilder() *nativeBuilder {
	return &nativeBuilder{cache: map[NamedSchema]*lazyNativeFunc{}}
}

func (b *nativeBuilder) build(s Schema) (nativeFunc, error) {
	if ns, ok := s.(NamedSchema); ok {
		if lf, cached := b.cache[ns]; cached {
			return lf.call, nil
		}
	}
	switch v := s.(type) {
	case *PrimitiveSchema:
		return b.buildPrimitive(v)
	case *ArraySchema:
		return b.buildArray(v)
	case *MapSchema:
		return b.buildMap(v)
	case *UnionSchema:
		return b.buildUnion(v)
	case *FixedSchema:
		return b.buildFixed(v)
	case *EnumSchema:
		return b.buildEnum(v)
	case *RecordSchema:
		return b.buildRecord(v)
	}
	return nil, unsupportedType("unhandled schema type %v", s.Type())
}

func (b *nativeBuilder) buildPrimitive(s *PrimitiveSchema) (nativeFunc, error) {
	switch s.Type() {
	case Null:
		return func(r *Reader) (interface{}, error) { return nil, nil }, nil
	case Boolean:
		return func(r *Reader) (interface{}, error) { return r.ReadBool() }, nil
	case Int:
		return func(r *Reader) (interface{}, error) { return r.ReadInt() }, nil
	case Long:
		return func(r *Reader) (interface{}, error) { return r.ReadLong() }, nil
	case Float:
		return func(r *Reader) (interface{}, error) { return r.ReadFloat32() }, nil
	case Double:
		return func(r *Reader) (interface{}, error) { return r.ReadFloat64() }, nil
	case Bytes:
		return func(r *Reader) (interface{}, error) { return readAvroBytes(r) }, nil
	case String:
		return func(r *Reader) (interface{}, error) { return readAvroString(r) }, nil
	}
	return nil, unsupportedType("unhandled primitive type %v", s.Type())
}

func (b *nativeBuilder) buildArray(s *ArraySchema) (nativeFunc, error) {
	item, err := b.build(s.Items())
	if err != nil {
		return nil, err
	}
	return func(r *Reader) (interface{}, error) {
		out := []interface{}{}
		for {
			count, err := r.ReadLong()
			if err != nil {
				return nil, err
			}
			if count == 0 {
				break
			}
			if count < 0 {
				count = -count
				if _, err := r.ReadLong(); err != nil {
					return nil, err
				}
			}
			for i := int64(0); i < count; i++ {
				v, err := item(r)
				if err != nil {
					return nil, err
				}
				out = append(out, v)
			}
		}
		return out, nil
	}, nil
}

func (b *nativeBuilder) buildMap(s *MapSchema) (nativeFunc, error) {
	val, err := b.build(s.Values())
	if err != nil {
		return nil, err
	}
	return func(r *Reader) (interface{}, error) {
		out := map[string]interface{}{}
		for {
			count, err := r.ReadLong()
			if err != nil {
				return nil, err
			}
			if count == 0 {
				break
			}
			if count < 0 {
				count = -count
				if _, err := r.ReadLong(); err != nil {
					return nil, err
				}
			}
			for i := int64(0); i < count; i++ {
				key, err := readAvroString(r)
				if err != nil {
					return nil, err
				}
				v, err := val(r)
				if err != nil {
					return nil, err
				}
				out[key] = v
			}
		}
		return out, nil
	}, nil
}

func (b *nativeBuilder) buildUnion(s *UnionSchema) (nativeFunc, error) {
	branches := s.Types()
	decs := make([]nativeFunc, len(branches))
	for i, br := range branches {
		d, err := b.build(br)
		if err != nil {
			return nil, err
		}
		decs[i] = d
	}
	return func(r *Reader) (interface{}, error) {
		sel, err := r.ReadLong()
		if err != nil {
			return nil, err
		}
		if sel < 0 || int(sel) >= len(decs) {
			return nil, invalidData("unexpected union branch index %d", sel)
		}
		return decs[sel](r)
	}, nil
}

func (b *nativeBuilder) buildFixed(s *FixedSchema) (nativeFunc, error) {
	size := s.Size()
	return func(r *Reader) (interface{}, error) {
		buf := make([]byte, size)
		if err := r.Read(buf); err != nil {
			return nil, err
		}
		return buf, nil
	}, nil
}

func (b *nativeBuilder) buildEnum(s *EnumSchema) (nativeFunc, error) {
	symbols := s.Symbols()
	return func(r *Reader) (interface{}, error) {
		idx, err := r.ReadInt()
		if err != nil {
			return nil, err
		}
		if int(idx) < 0 || int(idx) >= len(symbols) {
			return nil, invalidData("enum index %d out of range", idx)
		}
		return symbols[idx], nil
	}, nil
}

func (b *nativeBuilder) buildRecord(s *RecordSchema) (nativeFunc, error) {
	lf := &lazyNativeFunc{}
	b.cache[s] = lf

	type fieldDec struct {
		name string
		fn   nativeFunc
	}
	fields := make([]fieldDec, 0, len(s.Fields()))
	for _, f := range s.Fields() {
		fn, err := b.build(f.Type())
		if err != nil {
			return nil, err
		}
		fields = append(fields, fieldDec{name: f.Name(), fn: fn})
	}
	fn := func(r *Reader) (interface{}, error) {
		out := make(map[string]interface{}, len(fields))
		for _, f := range fields {
			v, err := f.fn(r)
			if err != nil {
				return nil, err
			}
			out[f.name] = v
		}
		return out, nil
	}
	lf.fn = fn
	return fn, nil
}
