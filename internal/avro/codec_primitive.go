package avro

import (
	"reflect"
	"unicode/utf8"
)

func (b *builder) buildPrimitive(s *PrimitiveSchema, res *Resolution) (encodeFunc, decodeFunc, error) {
	switch s.Type() {
	case Null:
		return nullCodec()
	case Boolean:
		return boolCodec(res)
	case Int:
		return intCodec(32, res)
	case Long:
		return intCodec(64, res)
	case Float:
		return floatCodec(32, res)
	case Double:
		return floatCodec(64, res)
	case Bytes:
		return bytesLikeCodec(false, res)
	case String:
		return bytesLikeCodec(true, res)
	}
	return nil, nil, unsupportedType("unhandled primitive type %v", s.Type())
}

func getInt64(v reflect.Value) int64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return int64(v.Float())
	}
	return 0
}

func setInt64(v reflect.Value, n int64) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v.SetUint(uint64(n))
	case reflect.Float32, reflect.Float64:
		v.SetFloat(float64(n))
	}
}

func getFloat64(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	}
	return 0
}

func setFloat64(v reflect.Value, f float64) {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		v.SetFloat(f)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v.SetInt(int64(f))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v.SetUint(uint64(f))
	}
}

func nullCodec() (encodeFunc, decodeFunc, error) {
	enc := func(v reflect.Value, w *Writer) error { return nil }
	dec := func(v reflect.Value, r *Reader) error { return nil }
	return enc, dec, nil
}

func boolCodec(res *Resolution) (encodeFunc, decodeFunc, error) {
	if res == nil || res.Kind != KindBoolean {
		return nil, nil, unsupportedType("boolean schema requires a bool resolution, got %v", res)
	}
	enc := func(v reflect.Value, w *Writer) error { return w.WriteBool(v.Bool()) }
	dec := func(v reflect.Value, r *Reader) error {
		bit, err := r.ReadBool()
		if err != nil {
			return err
		}
		v.SetBool(bit)
		return nil
	}
	return enc, dec, nil
}

// intCodec serves both the int (bits=32) and long (bits=64) schemas. A
// host field resolved as KindFloating is also accepted, since int/long
// promoting to float/double is one of the two evolution steps this
// Non-goals explicitly carve out (see codec_logical.go's timestamp
// codecs for the similar int/long-as-time-unit case).
func intCodec(bits int, res *Resolution) (encodeFunc, decodeFunc, error) {
	if res == nil || (res.Kind != KindInteger && res.Kind != KindFloating) {
		return nil, nil, unsupportedType("int/long schema requires a numeric resolution, got %v", res)
	}
	enc := func(v reflect.Value, w *Writer) error {
		n := getInt64(v)
		if bits == 32 {
			return w.WriteInt(int32(n))
		}
		return w.WriteLong(n)
	}
	dec := func(v reflect.Value, r *Reader) error {
		var n int64
		var err error
		if bits == 32 {
			var i32 int32
			i32, err = r.ReadInt()
			n = int64(i32)
		} else {
			n, err = r.ReadLong()
		}
		if err != nil {
			return err
		}
		setInt64(v, n)
		return nil
	}
	return enc, dec, nil
}

// floatCodec serves both float (bits=32) and double (bits=64).
func floatCodec(bits int, res *Resolution) (encodeFunc, decodeFunc, error) {
	if res == nil || (res.Kind != KindFloating && res.Kind != KindInteger) {
		return nil, nil, unsupportedType("float/double schema requires a numeric resolution, got %v", res)
	}
	enc := func(v reflect.Value, w *Writer) error {
		f := getFloat64(v)
		if bits == 32 {
			return w.WriteFloat32(float32(f))
		}
		return w.WriteFloat64(f)
	}
	dec := func(v reflect.Value, r *Reader) error {
		var f float64
		var err error
		if bits == 32 {
			var f32 float32
			f32, err = r.ReadFloat32()
			f = float64(f32)
		} else {
			f, err = r.ReadFloat64()
		}
		if err != nil {
			return err
		}
		setFloat64(v, f)
		return nil
	}
	return enc, dec, nil
}

// bytesLikeCodec serves both the bytes and string schemas, in either
// direction, against either a []byte or string host field: the
// bytes<->string promotion this codec carves out. UTF-8
// validation is the only behavior specific to the string schema.
func bytesLikeCodec(isString bool, res *Resolution) (encodeFunc, decodeFunc, error) {
	if res == nil || (res.Kind != KindBytes && res.Kind != KindString) {
		return nil, nil, unsupportedType("bytes/string schema requires a bytes or string resolution, got %v", res)
	}
	hostIsString := res.Kind == KindString

	enc := func(v reflect.Value, w *Writer) error {
		if hostIsString {
			return writeAvroString(w, v.String())
		}
		return writeAvroBytes(w, v.Bytes())
	}
	dec := func(v reflect.Value, r *Reader) error {
		b, err := readAvroBytes(r)
		if err != nil {
			return err
		}
		if isString && !utf8.Valid(b) {
			return invalidData("string value is not valid UTF-8")
		}
		if hostIsString {
			v.SetString(string(b))
			return nil
		}
		v.SetBytes(append([]byte(nil), b...))
		return nil
	}
	return enc, dec, nil
}
