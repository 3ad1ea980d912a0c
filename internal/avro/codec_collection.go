package avro

import "reflect"

func (b *builder) buildArray(s *ArraySchema, res *Resolution, raw reflect.Type) (encodeFunc, decodeFunc, error) {
	if res == nil || res.Kind != KindArray {
		return nil, nil, unsupportedType("array schema requires an array resolution, got %v", res)
	}
	itemEnc, itemDec, err := b.build(s.Items(), res.Item, rawElem(raw, res.Item.Go))
	if err != nil {
		return nil, nil, err
	}
	elemType := res.Go.Elem()

	enc := func(v reflect.Value, w *Writer) error {
		n := v.Len()
		if n > 0 {
			if err := w.WriteLong(int64(n)); err != nil {
				return err
			}
			for i := 0; i < n; i++ {
				if err := itemEnc(v.Index(i), w); err != nil {
					return err
				}
			}
		}
		return w.WriteLong(0)
	}
	dec := func(v reflect.Value, r *Reader) error {
		out := reflect.MakeSlice(res.Go, 0, 0)
		for {
			count, err := r.ReadLong()
			if err != nil {
				return err
			}
			if count == 0 {
				break
			}
			if count < 0 {
				count = -count
				if _, err := r.ReadLong(); err != nil {
					return err
				}
			}
			for i := int64(0); i < count; i++ {
				item := reflect.New(elemType).Elem()
				if err := itemDec(item, r); err != nil {
					return err
				}
				out = reflect.Append(out, item)
			}
		}
		v.Set(out)
		return nil
	}
	return enc, dec, nil
}

func (b *builder) buildMap(s *MapSchema, res *Resolution, raw reflect.Type) (encodeFunc, decodeFunc, error) {
	if res == nil || res.Kind != KindMap {
		return nil, nil, unsupportedType("map schema requires a map resolution, got %v", res)
	}
	valEnc, valDec, err := b.build(s.Values(), res.MapValue, rawElem(raw, res.MapValue.Go))
	if err != nil {
		return nil, nil, err
	}
	keyType := res.Go.Key()
	valType := res.Go.Elem()

	enc := func(v reflect.Value, w *Writer) error {
		n := v.Len()
		if n > 0 {
			if err := w.WriteLong(int64(n)); err != nil {
				return err
			}
			iter := v.MapRange()
			for iter.Next() {
				if err := writeAvroString(w, iter.Key().String()); err != nil {
					return err
				}
				if err := valEnc(iter.Value(), w); err != nil {
					return err
				}
			}
		}
		return w.WriteLong(0)
	}
	dec := func(v reflect.Value, r *Reader) error {
		out := reflect.MakeMap(res.Go)
		for {
			count, err := r.ReadLong()
			if err != nil {
				return err
			}
			if count == 0 {
				break
			}
			if count < 0 {
				count = -count
				if _, err := r.ReadLong(); err != nil {
					return err
				}
			}
			for i := int64(0); i < count; i++ {
				key, err := readAvroString(r)
				if err != nil {
					return err
				}
				val := reflect.New(valType).Elem()
				if err := valDec(val, r); err != nil {
					return err
				}
				out.SetMapIndex(reflect.ValueOf(key).Convert(keyType), val)
			}
		}
		v.Set(out)
		return nil
	}
	return enc, dec, nil
}

// buildFixed requires a KindBytes host resolution (a []byte field); the
// resolver has no dedicated fixed-array kind, so a fixed(N) schema maps
// onto a byte slice that must have exactly N bytes at encode time.
func (b *builder) buildFixed(s *FixedSchema, res *Resolution) (encodeFunc, decodeFunc, error) {
	if res == nil || res.Kind != KindBytes {
		return nil, nil, unsupportedType("fixed schema requires a bytes resolution, got %v", res)
	}
	size := s.Size()
	enc := func(v reflect.Value, w *Writer) error {
		buf := v.Bytes()
		if len(buf) != size {
			return unsupportedType("fixed(%d) value has length %d", size, len(buf))
		}
		return w.Write(buf)
	}
	dec := func(v reflect.Value, r *Reader) error {
		buf := make([]byte, size)
		if err := r.Read(buf); err != nil {
			return err
		}
		v.SetBytes(buf)
		return nil
	}
	return enc, dec, nil
}

// buildEnum matches symbols by name between the schema's declared symbol
// list and the host AvroEnum's own ordered list, rather than assuming
// the two share index assignments.
func (b *builder) buildEnum(s *EnumSchema, res *Resolution) (encodeFunc, decodeFunc, error) {
	if res == nil || res.Kind != KindEnum {
		return nil, nil, unsupportedType("enum schema requires an enum resolution, got %v", res)
	}
	schemaSymbols := s.Symbols()
	schemaIndex := make(map[string]int32, len(schemaSymbols))
	for i, sym := range schemaSymbols {
		schemaIndex[sym] = int32(i)
	}
	hostByValue := make(map[int64]string, len(res.Symbols))
	hostByName := make(map[string]int64, len(res.Symbols))
	for _, sym := range res.Symbols {
		hostByValue[sym.Value] = sym.Name
		hostByName[sym.Name] = sym.Value
	}
	isStringHost := res.Go.Kind() == reflect.String

	enc := func(v reflect.Value, w *Writer) error {
		var name string
		if isStringHost {
			name = v.String()
		} else {
			var ok bool
			name, ok = hostByValue[getInt64(v)]
			if !ok {
				return unsupportedType("enum value %d has no symbol", getInt64(v))
			}
		}
		idx, ok := schemaIndex[name]
		if !ok {
			return invalidData("enum symbol %q is not defined by the schema", name)
		}
		return w.WriteInt(idx)
	}
	dec := func(v reflect.Value, r *Reader) error {
		idx, err := r.ReadInt()
		if err != nil {
			return err
		}
		if int(idx) < 0 || int(idx) >= len(schemaSymbols) {
			return invalidData("enum index %d out of range", idx)
		}
		name := schemaSymbols[idx]
		if isStringHost {
			v.SetString(name)
			return nil
		}
		hv, ok := hostByName[name]
		if !ok {
			return unsupportedType("host enum type has no symbol %q", name)
		}
		setInt64(v, hv)
		return nil
	}
	return enc, dec, nil
}

// buildRecord compiles every declared field in schema order. A schema
// field absent from the host resolution always decodes by consuming and
// discarding the bytes on the wire, regardless of whether the field
// carries a schema default — extra writer fields must be skippable on
// read with no error. Encoding such a field falls back to its declared
// default if it has one, or fails at encode time if it doesn't; a codec
// built for decode-only use is unaffected either way.
func (b *builder) buildRecord(s *RecordSchema, res *Resolution) (encodeFunc, decodeFunc, error) {
	if res == nil || res.Kind != KindRecord {
		return nil, nil, unsupportedType("record schema requires a record resolution, got %v", res)
	}
	lc := &lazyCodec{}
	b.cache[s] = lc

	type fieldPlan struct {
		enc   encodeFunc
		dec   decodeFunc
		index []int
	}
	plans := make([]fieldPlan, 0, len(s.Fields()))
	for _, f := range s.Fields() {
		fr, ok := findField(res, f.Name())
		if !ok {
			dec, err := discardDecode(f.Type())
			if err != nil {
				return nil, nil, err
			}
			var enc encodeFunc
			if f.HasDefault() {
				def, ft := f.Default(), f.Type()
				enc = func(_ reflect.Value, w *Writer) error {
					return encodeDefaultValue(def, ft, w)
				}
			} else {
				// No host counterpart and no schema default: decoding
				// (consume-and-discard) still works, but this field can
				// never be encoded from this host type.
				name := f.Name()
				enc = func(_ reflect.Value, _ *Writer) error {
					return unsupportedType("field %q has no host counterpart and no default", name)
				}
			}
			plans = append(plans, fieldPlan{enc: enc, dec: dec})
			continue
		}
		enc, dec, err := b.build(f.Type(), fr.Res, fr.GoType)
		if err != nil {
			return nil, nil, unsupportedType("field %q: %v", f.Name(), err)
		}
		plans = append(plans, fieldPlan{enc: enc, dec: dec, index: fr.Index})
	}

	enc := func(v reflect.Value, w *Writer) error {
		for _, p := range plans {
			var fv reflect.Value
			if p.index != nil {
				fv = v.FieldByIndex(p.index)
			}
			if err := p.enc(fv, w); err != nil {
				return err
			}
		}
		return nil
	}
	dec := func(v reflect.Value, r *Reader) error {
		for _, p := range plans {
			if p.index == nil {
				if err := p.dec(reflect.Value{}, r); err != nil {
					return err
				}
				continue
			}
			if err := p.dec(v.FieldByIndex(p.index), r); err != nil {
				return err
			}
		}
		return nil
	}
	lc.enc, lc.dec = enc, dec
	return enc, dec, nil
}

// encodeDefaultValue writes a JSON-decoded schema default (as produced
// by parse.go's encoding/json unmarshal of the "default" attribute) onto
// the wire for a field whose host type has no counterpart.
func encodeDefaultValue(def interface{}, s Schema, w *Writer) error {
	switch v := s.(type) {
	case *PrimitiveSchema:
		switch v.Type() {
		case Null:
			return nil
		case Boolean:
			b, _ := def.(bool)
			return w.WriteBool(b)
		case Int:
			return w.WriteInt(int32(toFloat64(def)))
		case Long:
			return w.WriteLong(int64(toFloat64(def)))
		case Float:
			return w.WriteFloat32(float32(toFloat64(def)))
		case Double:
			return w.WriteFloat64(toFloat64(def))
		case Bytes:
			s, _ := def.(string)
			return writeAvroBytes(w, []byte(s))
		case String:
			s, _ := def.(string)
			return writeAvroString(w, s)
		}
		return unsupportedType("unhandled default for primitive type %v", v.Type())
	case *ArraySchema:
		items, _ := def.([]interface{})
		if len(items) == 0 {
			return w.WriteLong(0)
		}
		if err := w.WriteLong(int64(len(items))); err != nil {
			return err
		}
		for _, item := range items {
			if err := encodeDefaultValue(item, v.Items(), w); err != nil {
				return err
			}
		}
		return w.WriteLong(0)
	case *MapSchema:
		m, _ := def.(map[string]interface{})
		if len(m) == 0 {
			return w.WriteLong(0)
		}
		if err := w.WriteLong(int64(len(m))); err != nil {
			return err
		}
		for k, val := range m {
			if err := writeAvroString(w, k); err != nil {
				return err
			}
			if err := encodeDefaultValue(val, v.Values(), w); err != nil {
				return err
			}
		}
		return w.WriteLong(0)
	case *UnionSchema:
		branches := v.Types()
		if len(branches) == 0 {
			return unsupportedType("empty union")
		}
		if err := w.WriteLong(0); err != nil {
			return err
		}
		return encodeDefaultValue(def, branches[0], w)
	case *EnumSchema:
		sym, _ := def.(string)
		for i, s := range v.Symbols() {
			if s == sym {
				return w.WriteInt(int32(i))
			}
		}
		return invalidData("default enum symbol %q not defined", sym)
	case *FixedSchema:
		s, _ := def.(string)
		return w.Write([]byte(s))
	case *RecordSchema:
		m, _ := def.(map[string]interface{})
		for _, f := range v.Fields() {
			fv, ok := m[f.Name()]
			if !ok {
				fv = f.Default()
			}
			if err := encodeDefaultValue(fv, f.Type(), w); err != nil {
				return err
			}
		}
		return nil
	}
	return unsupportedType("cannot encode default value for schema type %v", s.Type())
}

func toFloat64(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}
