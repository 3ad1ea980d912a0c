package avro

import "reflect"

// buildUnion selects one of three branch-selection strategies depending
// on how the host slot can represent "no value":
//
//   - a pointer field: nil pointer is the null branch, the single
//     non-null branch is chosen once at build time;
//   - a slice or map field: Go slices/maps are naturally nilable, so a
//     nil slice/map already means null without needing a pointer — this
//     covers union<null, array<T>> and union<null, map<T>> directly;
//   - an interface{} (any) field: the branch is matched dynamically,
//     per value, at encode time, since any branch's concrete type could
//     show up at runtime.
//
// A union with no null branch, or a host slot that is none of the
// above, has its single assignable branch chosen statically once.
func (b *builder) buildUnion(us *UnionSchema, res *Resolution, raw reflect.Type) (encodeFunc, decodeFunc, error) {
	branches := us.Types()
	nullIdx := -1
	for i, t := range branches {
		if t.Type() == Null {
			nullIdx = i
			break
		}
	}

	if raw != nil && raw.Kind() == reflect.Interface && res != nil && res.Kind == KindAny {
		return b.buildDynamicUnion(branches, nullIdx)
	}

	if raw != nil && nullIdx >= 0 && (raw.Kind() == reflect.Ptr || raw.Kind() == reflect.Slice || raw.Kind() == reflect.Map) {
		return b.buildNullableUnion(branches, nullIdx, res, raw)
	}

	return b.buildStaticUnion(branches, res, raw)
}

func (b *builder) buildNullableUnion(branches []Schema, nullIdx int, res *Resolution, raw reflect.Type) (encodeFunc, decodeFunc, error) {
	branchRaw := raw
	if raw.Kind() == reflect.Ptr {
		branchRaw = raw.Elem()
	}
	branchIdx := -1
	for i, t := range branches {
		if i == nullIdx {
			continue
		}
		if assignable(t, res) {
			branchIdx = i
			break
		}
	}
	if branchIdx < 0 {
		return nil, nil, unsupportedType("no union branch assignable to %v", raw)
	}
	branchEnc, branchDec, err := b.build(branches[branchIdx], res, branchRaw)
	if err != nil {
		return nil, nil, err
	}
	idx, nIdx := int64(branchIdx), int64(nullIdx)

	if raw.Kind() == reflect.Ptr {
		elemType := raw.Elem()
		enc := func(v reflect.Value, w *Writer) error {
			if v.IsNil() {
				return w.WriteLong(nIdx)
			}
			if err := w.WriteLong(idx); err != nil {
				return err
			}
			return branchEnc(v.Elem(), w)
		}
		dec := func(v reflect.Value, r *Reader) error {
			sel, err := r.ReadLong()
			if err != nil {
				return err
			}
			if sel == nIdx {
				v.Set(reflect.Zero(v.Type()))
				return nil
			}
			if sel != idx {
				return invalidData("unexpected union branch index %d", sel)
			}
			nv := reflect.New(elemType)
			if err := branchDec(nv.Elem(), r); err != nil {
				return err
			}
			v.Set(nv)
			return nil
		}
		return enc, dec, nil
	}

	enc := func(v reflect.Value, w *Writer) error {
		if v.IsNil() {
			return w.WriteLong(nIdx)
		}
		if err := w.WriteLong(idx); err != nil {
			return err
		}
		return branchEnc(v, w)
	}
	dec := func(v reflect.Value, r *Reader) error {
		sel, err := r.ReadLong()
		if err != nil {
			return err
		}
		if sel == nIdx {
			v.Set(reflect.Zero(v.Type()))
			return nil
		}
		if sel != idx {
			return invalidData("unexpected union branch index %d", sel)
		}
		return branchDec(v, r)
	}
	return enc, dec, nil
}

// buildStaticUnion handles a union with no nilable host representation:
// the host type is concrete, so exactly one branch can ever apply, and
// it is chosen once at build time.
func (b *builder) buildStaticUnion(branches []Schema, res *Resolution, raw reflect.Type) (encodeFunc, decodeFunc, error) {
	branchIdx := -1
	for i, t := range branches {
		if t.Type() == Null {
			continue
		}
		if assignable(t, res) {
			branchIdx = i
			break
		}
	}
	if branchIdx < 0 {
		return nil, nil, unsupportedType("no union branch assignable to %v", res)
	}
	branchEnc, branchDec, err := b.build(branches[branchIdx], res, raw)
	if err != nil {
		return nil, nil, err
	}
	idx := int64(branchIdx)
	enc := func(v reflect.Value, w *Writer) error {
		if err := w.WriteLong(idx); err != nil {
			return err
		}
		return branchEnc(v, w)
	}
	dec := func(v reflect.Value, r *Reader) error {
		sel, err := r.ReadLong()
		if err != nil {
			return err
		}
		if sel != idx {
			return invalidData("unexpected union branch index %d", sel)
		}
		return branchDec(v, r)
	}
	return enc, dec, nil
}

// buildDynamicUnion serves an interface{} field: the branch is resolved
// fresh from the runtime value's concrete type on every encode call, and
// decoded via the schema-only native representation since there is no
// host type to guide the read.
func (b *builder) buildDynamicUnion(branches []Schema, nullIdx int) (encodeFunc, decodeFunc, error) {
	nativeDecs := make([]nativeFunc, len(branches))
	for i, br := range branches {
		if i == nullIdx {
			continue
		}
		nd, err := nativeDecodeFunc(br)
		if err != nil {
			return nil, nil, err
		}
		nativeDecs[i] = nd
	}

	enc := func(v reflect.Value, w *Writer) error {
		if !v.IsValid() || v.IsNil() {
			if nullIdx < 0 {
				return unsupportedType("union has no null branch for a nil interface value")
			}
			return w.WriteLong(int64(nullIdx))
		}
		concrete := v.Elem()
		res, err := NewResolver().Resolve(concrete.Type())
		if err != nil {
			return unsupportedType("resolving dynamic union value: %v", err)
		}
		for i, br := range branches {
			if i == nullIdx {
				continue
			}
			if !assignable(br, res) {
				continue
			}
			branchEnc, _, err := newBuilder().build(br, res, concrete.Type())
			if err != nil {
				return err
			}
			if err := w.WriteLong(int64(i)); err != nil {
				return err
			}
			return branchEnc(concrete, w)
		}
		return unsupportedType("no union branch matches runtime type %v", concrete.Type())
	}

	dec := func(v reflect.Value, r *Reader) error {
		sel, err := r.ReadLong()
		if err != nil {
			return err
		}
		if sel < 0 || int(sel) >= len(branches) {
			return invalidData("unexpected union branch index %d", sel)
		}
		if int(sel) == nullIdx {
			v.Set(reflect.Zero(v.Type()))
			return nil
		}
		val, err := nativeDecs[sel](r)
		if err != nil {
			return err
		}
		if val == nil {
			v.Set(reflect.Zero(v.Type()))
			return nil
		}
		v.Set(reflect.ValueOf(val))
		return nil
	}
	return enc, dec, nil
}

// assignable reports whether res can represent a value of schema branch
// s, used to pick a union's non-null branch.
func assignable(s Schema, res *Resolution) bool {
	if res == nil {
		return false
	}
	if ls, ok := s.(LogicalSchema); ok && ls.Logical() != nil {
		return assignableLogical(ls.Logical(), res)
	}
	switch s.Type() {
	case Null:
		return false
	case Boolean:
		return res.Kind == KindBoolean
	case Int, Long:
		return res.Kind == KindInteger || res.Kind == KindFloating
	case Float, Double:
		return res.Kind == KindFloating || res.Kind == KindInteger
	case Bytes, String:
		return res.Kind == KindBytes || res.Kind == KindString
	case Array:
		return res.Kind == KindArray
	case Map:
		return res.Kind == KindMap
	case Fixed:
		return res.Kind == KindBytes
	case Enum:
		return res.Kind == KindEnum
	case Record:
		if res.Kind != KindRecord {
			return false
		}
		if ns, ok := s.(NamedSchema); ok {
			return res.FullName == ns.FullName()
		}
		return true
	}
	return false
}

func assignableLogical(lt *LogicalType, res *Resolution) bool {
	switch lt.Type() {
	case DecimalType:
		return res.Kind == KindDecimal
	case UUID:
		return res.Kind == KindUUID
	case Date, TimeMillis, TimeMicros, TimestampMillis, TimestampMicros:
		return res.Kind == KindTimestamp
	case DurationType:
		return res.Kind == KindDuration
	}
	return false
}
