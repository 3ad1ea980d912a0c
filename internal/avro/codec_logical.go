package avro

import (
	"encoding/binary"
	"math/big"
	"reflect"
	"time"

	"github.com/google/uuid"
)

var epoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// bigIntToBytes renders n as the minimal two's-complement big-endian byte
// sequence, per the decimal logical-type encoding.
func bigIntToBytes(n *big.Int) []byte {
	if n.Sign() >= 0 {
		b := n.Bytes()
		if len(b) == 0 {
			return []byte{0}
		}
		if b[0]&0x80 != 0 {
			b = append([]byte{0}, b...)
		}
		return b
	}
	nBytes := n.BitLen()/8 + 1
	mod := new(big.Int).Lsh(big.NewInt(1), uint(nBytes*8))
	comp := new(big.Int).Add(mod, n)
	b := comp.Bytes()
	for len(b) < nBytes {
		b = append([]byte{0xff}, b...)
	}
	return b
}

func bytesToBigInt(b []byte) *big.Int {
	if len(b) == 0 {
		return big.NewInt(0)
	}
	n := new(big.Int).SetBytes(b)
	if b[0]&0x80 != 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8))
		n.Sub(n, mod)
	}
	return n
}

// bigIntToFixedBytes sign-extends/pads n's two's-complement form to exactly
// size bytes, for the fixed(N) decimal encoding.
func bigIntToFixedBytes(n *big.Int, size int) ([]byte, error) {
	b := bigIntToBytes(n)
	if len(b) > size {
		return nil, unsupportedType("decimal unscaled value does not fit in fixed(%d)", size)
	}
	pad := byte(0)
	if n.Sign() < 0 {
		pad = 0xff
	}
	out := make([]byte, size)
	for i := 0; i < size-len(b); i++ {
		out[i] = pad
	}
	copy(out[size-len(b):], b)
	return out, nil
}

func writeDurationBytes(d Duration) []byte {
	buf := make([]byte, 12)
	binary.LittleEndian.PutUint32(buf[0:4], d.Months)
	binary.LittleEndian.PutUint32(buf[4:8], d.Days)
	binary.LittleEndian.PutUint32(buf[8:12], d.Milliseconds)
	return buf
}

func readDurationBytes(buf []byte) Duration {
	return Duration{
		Months:       binary.LittleEndian.Uint32(buf[0:4]),
		Days:         binary.LittleEndian.Uint32(buf[4:8]),
		Milliseconds: binary.LittleEndian.Uint32(buf[8:12]),
	}
}

func decimalBytesCodec(lt *LogicalType, res *Resolution) (encodeFunc, decodeFunc, error) {
	if res == nil || res.Kind != KindDecimal {
		return nil, nil, unsupportedType("decimal schema requires a Decimal resolution, got %v", res)
	}
	enc := func(v reflect.Value, w *Writer) error {
		d := v.Interface().(Decimal)
		return writeAvroBytes(w, bigIntToBytes(d.Unscaled))
	}
	dec := func(v reflect.Value, r *Reader) error {
		buf, err := readAvroBytes(r)
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(Decimal{Unscaled: bytesToBigInt(buf), Scale: lt.Scale()}))
		return nil
	}
	return enc, dec, nil
}

func decimalFixedCodec(lt *LogicalType, size int, res *Resolution) (encodeFunc, decodeFunc, error) {
	if res == nil || res.Kind != KindDecimal {
		return nil, nil, unsupportedType("decimal schema requires a Decimal resolution, got %v", res)
	}
	enc := func(v reflect.Value, w *Writer) error {
		d := v.Interface().(Decimal)
		buf, err := bigIntToFixedBytes(d.Unscaled, size)
		if err != nil {
			return err
		}
		return w.Write(buf)
	}
	dec := func(v reflect.Value, r *Reader) error {
		buf := make([]byte, size)
		if err := r.Read(buf); err != nil {
			return err
		}
		v.Set(reflect.ValueOf(Decimal{Unscaled: bytesToBigInt(buf), Scale: lt.Scale()}))
		return nil
	}
	return enc, dec, nil
}

func uuidCodec(res *Resolution) (encodeFunc, decodeFunc, error) {
	if res == nil || res.Kind != KindUUID {
		return nil, nil, unsupportedType("uuid schema requires a uuid.UUID resolution, got %v", res)
	}
	enc := func(v reflect.Value, w *Writer) error {
		id := v.Interface().(uuid.UUID)
		return writeAvroString(w, id.String())
	}
	dec := func(v reflect.Value, r *Reader) error {
		s, err := readAvroString(r)
		if err != nil {
			return err
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return invalidData("invalid uuid %q: %v", s, err)
		}
		v.Set(reflect.ValueOf(id))
		return nil
	}
	return enc, dec, nil
}

func timestampResolution(res *Resolution) error {
	if res == nil || res.Kind != KindTimestamp {
		return unsupportedType("date/time/timestamp schema requires a time.Time resolution, got %v", res)
	}
	return nil
}

func dateCodec(res *Resolution) (encodeFunc, decodeFunc, error) {
	if err := timestampResolution(res); err != nil {
		return nil, nil, err
	}
	enc := func(v reflect.Value, w *Writer) error {
		t := v.Interface().(time.Time).UTC()
		midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		days := int32(midnight.Sub(epoch) / (24 * time.Hour))
		return w.WriteInt(days)
	}
	dec := func(v reflect.Value, r *Reader) error {
		d, err := r.ReadInt()
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(epoch.AddDate(0, 0, int(d))))
		return nil
	}
	return enc, dec, nil
}

func timeMillisCodec(res *Resolution) (encodeFunc, decodeFunc, error) {
	if err := timestampResolution(res); err != nil {
		return nil, nil, err
	}
	enc := func(v reflect.Value, w *Writer) error {
		t := v.Interface().(time.Time).UTC()
		midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return w.WriteInt(int32(t.Sub(midnight) / time.Millisecond))
	}
	dec := func(v reflect.Value, r *Reader) error {
		ms, err := r.ReadInt()
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(epoch.Add(time.Duration(ms) * time.Millisecond)))
		return nil
	}
	return enc, dec, nil
}

func timeMicrosCodec(res *Resolution) (encodeFunc, decodeFunc, error) {
	if err := timestampResolution(res); err != nil {
		return nil, nil, err
	}
	enc := func(v reflect.Value, w *Writer) error {
		t := v.Interface().(time.Time).UTC()
		midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return w.WriteLong(int64(t.Sub(midnight) / time.Microsecond))
	}
	dec := func(v reflect.Value, r *Reader) error {
		us, err := r.ReadLong()
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(epoch.Add(time.Duration(us) * time.Microsecond)))
		return nil
	}
	return enc, dec, nil
}

func timestampMillisCodec(res *Resolution) (encodeFunc, decodeFunc, error) {
	if err := timestampResolution(res); err != nil {
		return nil, nil, err
	}
	enc := func(v reflect.Value, w *Writer) error {
		return w.WriteLong(v.Interface().(time.Time).UnixMilli())
	}
	dec := func(v reflect.Value, r *Reader) error {
		ms, err := r.ReadLong()
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(time.UnixMilli(ms).UTC()))
		return nil
	}
	return enc, dec, nil
}

func timestampMicrosCodec(res *Resolution) (encodeFunc, decodeFunc, error) {
	if err := timestampResolution(res); err != nil {
		return nil, nil, err
	}
	enc := func(v reflect.Value, w *Writer) error {
		return w.WriteLong(v.Interface().(time.Time).UnixMicro())
	}
	dec := func(v reflect.Value, r *Reader) error {
		us, err := r.ReadLong()
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(time.UnixMicro(us).UTC()))
		return nil
	}
	return enc, dec, nil
}

func durationCodec(res *Resolution) (encodeFunc, decodeFunc, error) {
	if res == nil || res.Kind != KindDuration {
		return nil, nil, unsupportedType("duration schema requires a Duration resolution, got %v", res)
	}
	enc := func(v reflect.Value, w *Writer) error {
		return w.Write(writeDurationBytes(v.Interface().(Duration)))
	}
	dec := func(v reflect.Value, r *Reader) error {
		buf := make([]byte, 12)
		if err := r.Read(buf); err != nil {
			return err
		}
		v.Set(reflect.ValueOf(readDurationBytes(buf)))
		return nil
	}
	return enc, dec, nil
}
