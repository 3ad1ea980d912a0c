package avro

import "bytes"

// MarshalNative encodes v against s without a host Go type to guide the
// Binary Codec Builder: v must already be in the generic representation
// encoding/json produces (map[string]interface{}, []interface{}, string,
// float64, bool, nil), the shape ad hoc registry/REST payloads arrive in.
func MarshalNative(s Schema, v interface{}) ([]byte, error) {
	fn, err := newNativeEncBuilder().build(s)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := fn(v, w); err != nil {
		return nil, err
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalNative decodes data against s into the generic representation
// nativeDecodeFunc produces, the counterpart to MarshalNative.
func UnmarshalNative(s Schema, data []byte) (interface{}, error) {
	nd, err := nativeDecodeFunc(s)
	if err != nil {
		return nil, err
	}
	return nd(NewReader(bytes.NewReader(data)))
}

// nativeEncFunc writes one schema node's worth of value, given in the
// generic Go representation, to w.
type nativeEncFunc func(v interface{}, w *Writer) error

type lazyNativeEncFunc struct{ fn nativeEncFunc }

func (lf *lazyNativeEncFunc) call(v interface{}, w *Writer) error { return lf.fn(v, w) }

type nativeEncBuilder struct {
	cache map[NamedSchema]*lazyNativeEncFunc
}

func newNativeEncBuilder() *nativeEncBuilder {
	return &nativeEncBuilder{cache: map[NamedSchema]*lazyNativeEncFunc{}}
}

// build dispatches on the schema's base shape. Logical-type refinements
// need a resolved host type to drive their coercions (decimal's
// big.Int, uuid.UUID, time.Time) and so are only available through the
// Binary Codec Builder's typed path (NewCodec); the generic native path
// here encodes a logical schema's base representation instead.
func (b *nativeEncBuilder) build(s Schema) (nativeEncFunc, error) {
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

func (b *nativeEncBuilder) buildPrimitive(s *PrimitiveSchema) (nativeEncFunc, error) {
	switch s.Type() {
	case Null:
		return func(v interface{}, w *Writer) error { return nil }, nil
	case Boolean:
		return func(v interface{}, w *Writer) error {
			bv, ok := v.(bool)
			if !ok {
				return unsupportedType("expected bool, got %T", v)
			}
			return w.WriteBool(bv)
		}, nil
	case Int:
		return func(v interface{}, w *Writer) error {
			n, err := toInt64Native(v)
			if err != nil {
				return err
			}
			return w.WriteInt(int32(n))
		}, nil
	case Long:
		return func(v interface{}, w *Writer) error {
			n, err := toInt64Native(v)
			if err != nil {
				return err
			}
			return w.WriteLong(n)
		}, nil
	case Float:
		return func(v interface{}, w *Writer) error {
			f, err := toFloat64Native(v)
			if err != nil {
				return err
			}
			return w.WriteFloat32(float32(f))
		}, nil
	case Double:
		return func(v interface{}, w *Writer) error {
			f, err := toFloat64Native(v)
			if err != nil {
				return err
			}
			return w.WriteFloat64(f)
		}, nil
	case Bytes:
		return func(v interface{}, w *Writer) error {
			buf, err := toBytesNative(v)
			if err != nil {
				return err
			}
			return writeAvroBytes(w, buf)
		}, nil
	case String:
		return func(v interface{}, w *Writer) error {
			sv, ok := v.(string)
			if !ok {
				return unsupportedType("expected string, got %T", v)
			}
			return writeAvroString(w, sv)
		}, nil
	}
	return nil, unsupportedType("unhandled primitive type %v", s.Type())
}

func toInt64Native(v interface{}) (int64, error) {
	switch n := v.(type) {
	case float64:
		return int64(n), nil
	case float32:
		return int64(n), nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	}
	return 0, unsupportedType("expected a number, got %T", v)
}

func toFloat64Native(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, unsupportedType("expected a number, got %T", v)
}

func toBytesNative(v interface{}) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	}
	return nil, unsupportedType("expected bytes, got %T", v)
}

func (b *nativeEncBuilder) buildArray(s *ArraySchema) (nativeEncFunc, error) {
	item, err := b.build(s.Items())
	if err != nil {
		return nil, err
	}
	return func(v interface{}, w *Writer) error {
		items, ok := v.([]interface{})
		if !ok {
			return unsupportedType("expected an array, got %T", v)
		}
		if len(items) > 0 {
			if err := w.WriteLong(int64(len(items))); err != nil {
				return err
			}
			for _, it := range items {
				if err := item(it, w); err != nil {
					return err
				}
			}
		}
		return w.WriteLong(0)
	}, nil
}

func (b *nativeEncBuilder) buildMap(s *MapSchema) (nativeEncFunc, error) {
	val, err := b.build(s.Values())
	if err != nil {
		return nil, err
	}
	return func(v interface{}, w *Writer) error {
		m, ok := v.(map[string]interface{})
		if !ok {
			return unsupportedType("expected a map, got %T", v)
		}
		if len(m) > 0 {
			if err := w.WriteLong(int64(len(m))); err != nil {
				return err
			}
			for k, mv := range m {
				if err := writeAvroString(w, k); err != nil {
					return err
				}
				if err := val(mv, w); err != nil {
					return err
				}
			}
		}
		return w.WriteLong(0)
	}, nil
}

func (b *nativeEncBuilder) buildFixed(s *FixedSchema) (nativeEncFunc, error) {
	size := s.Size()
	return func(v interface{}, w *Writer) error {
		buf, err := toBytesNative(v)
		if err != nil {
			return err
		}
		if len(buf) != size {
			return unsupportedType("fixed(%d) value has length %d", size, len(buf))
		}
		return w.Write(buf)
	}, nil
}

func (b *nativeEncBuilder) buildEnum(s *EnumSchema) (nativeEncFunc, error) {
	symbols := s.Symbols()
	index := make(map[string]int32, len(symbols))
	for i, sym := range symbols {
		index[sym] = int32(i)
	}
	return func(v interface{}, w *Writer) error {
		sym, ok := v.(string)
		if !ok {
			return unsupportedType("expected an enum symbol string, got %T", v)
		}
		idx, ok := index[sym]
		if !ok {
			return invalidData("enum symbol %q is not defined by the schema", sym)
		}
		return w.WriteInt(idx)
	}, nil
}

func (b *nativeEncBuilder) buildRecord(s *RecordSchema) (nativeEncFunc, error) {
	lf := &lazyNativeEncFunc{}
	b.cache[s] = lf

	type fieldEnc struct {
		name       string
		fn         nativeEncFunc
		def        interface{}
		hasDefault bool
		schema     Schema
	}
	fields := make([]fieldEnc, 0, len(s.Fields()))
	for _, f := range s.Fields() {
		fn, err := b.build(f.Type())
		if err != nil {
			return nil, err
		}
		fields = append(fields, fieldEnc{name: f.Name(), fn: fn, def: f.Default(), hasDefault: f.HasDefault(), schema: f.Type()})
	}
	fn := func(v interface{}, w *Writer) error {
		m, ok := v.(map[string]interface{})
		if !ok {
			return unsupportedType("expected a record object, got %T", v)
		}
		for _, f := range fields {
			fv, present := m[f.name]
			if !present {
				if !f.hasDefault {
					return unsupportedType("missing field %q with no default", f.name)
				}
				if err := encodeDefaultValue(f.def, f.schema, w); err != nil {
					return err
				}
				continue
			}
			if err := f.fn(fv, w); err != nil {
				return err
			}
		}
		return nil
	}
	lf.fn = fn
	return fn, nil
}

func (b *nativeEncBuilder) buildUnion(s *UnionSchema) (nativeEncFunc, error) {
	branches := s.Types()
	fns := make([]nativeEncFunc, len(branches))
	for i, br := range branches {
		fn, err := b.build(br)
		if err != nil {
			return nil, err
		}
		fns[i] = fn
	}
	return func(v interface{}, w *Writer) error {
		idx, err := selectNativeBranch(branches, v)
		if err != nil {
			return err
		}
		if err := w.WriteLong(int64(idx)); err != nil {
			return err
		}
		return fns[idx](v, w)
	}, nil
}

func selectNativeBranch(branches []Schema, v interface{}) (int, error) {
	if v == nil {
		for i, br := range branches {
			if br.Type() == Null {
				return i, nil
			}
		}
		return 0, unsupportedType("union has no null branch for a nil value")
	}
	for i, br := range branches {
		if assignableNative(br, v) {
			return i, nil
		}
	}
	return 0, unsupportedType("no union branch matches value of type %T", v)
}

func assignableNative(s Schema, v interface{}) bool {
	switch s.Type() {
	case Null:
		return v == nil
	case Boolean:
		_, ok := v.(bool)
		return ok
	case Int, Long, Float, Double:
		switch v.(type) {
		case float64, float32, int, int32, int64:
			return true
		}
		return false
	case Bytes:
		_, ok := v.([]byte)
		return ok
	case String:
		_, ok := v.(string)
		return ok
	case Array:
		_, ok := v.([]interface{})
		return ok
	case Map, Record:
		_, ok := v.(map[string]interface{})
		return ok
	case Enum:
		_, ok := v.(string)
		return ok
	case Fixed:
		_, ok := v.([]byte)
		return ok
	}
	return false
}
