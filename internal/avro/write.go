package avro

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Write renders a schema as JSON. canonical selects Parsing Canonical
// Form, which omits aliases, documentation, logical-type attributes,
// default values, and namespace (folded into the full name), and emits
// attributes in a fixed order.
func Write(s Schema, canonical bool) (string, error) {
	var buf strings.Builder
	names := map[string]NamedSchema{}
	if err := encodeSchema(&buf, s, canonical, names); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// writeSchema is the best-effort form used by Schema.String() methods,
// which cannot return an error. A fresh name cache means a legitimately
// constructed schema (one that passed NewUnionSchema/NewRecordSchema)
// cannot hit the conflict case.
func writeSchema(s Schema, canonical bool, names map[string]NamedSchema) string {
	var buf strings.Builder
	if names == nil {
		names = map[string]NamedSchema{}
	}
	if err := encodeSchema(&buf, s, canonical, names); err != nil {
		return ""
	}
	return buf.String()
}

func jsonStr(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

type objectWriter struct {
	buf    *strings.Builder
	fields int
}

func newObject(buf *strings.Builder) *objectWriter {
	buf.WriteByte('{')
	return &objectWriter{buf: buf}
}

func (o *objectWriter) raw(key, rawValue string) {
	if o.fields > 0 {
		o.buf.WriteByte(',')
	}
	o.buf.WriteString(jsonStr(key))
	o.buf.WriteByte(':')
	o.buf.WriteString(rawValue)
	o.fields++
}

func (o *objectWriter) str(key, value string) { o.raw(key, jsonStr(value)) }
func (o *objectWriter) int(key string, value int) {
	o.raw(key, strconv.Itoa(value))
}
func (o *objectWriter) strs(key string, values []string) {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = jsonStr(v)
	}
	o.raw(key, "["+strings.Join(parts, ",")+"]")
}

func (o *objectWriter) close() { o.buf.WriteByte('}') }

func encodeSchema(buf *strings.Builder, s Schema, canonical bool, names map[string]NamedSchema) error {
	switch v := s.(type) {
	case *PrimitiveSchema:
		return encodePrimitive(buf, v, canonical)
	case *ArraySchema:
		o := newObject(buf)
		o.str("type", "array")
		buf.WriteByte(',')
		buf.WriteString(jsonStr("items"))
		buf.WriteByte(':')
		if err := encodeSchema(buf, v.items, canonical, names); err != nil {
			return err
		}
		o.close()
		return nil
	case *MapSchema:
		o := newObject(buf)
		o.str("type", "map")
		buf.WriteByte(',')
		buf.WriteString(jsonStr("values"))
		buf.WriteByte(':')
		if err := encodeSchema(buf, v.values, canonical, names); err != nil {
			return err
		}
		o.close()
		return nil
	case *UnionSchema:
		buf.WriteByte('[')
		for i, t := range v.types {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeSchema(buf, t, canonical, names); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case *FixedSchema:
		return encodeNamed(buf, v, canonical, names, func(o *objectWriter) {
			o.str("type", "fixed")
			o.int("size", v.size)
			if !canonical && v.logical != nil {
				writeLogicalAttrs(o, v.logical)
			}
		})
	case *EnumSchema:
		return encodeNamed(buf, v, canonical, names, func(o *objectWriter) {
			o.str("type", "enum")
			if !canonical && v.doc != "" {
				o.str("doc", v.doc)
			}
			o.strs("symbols", v.symbols)
		})
	case *RecordSchema:
		return encodeRecord(buf, v, canonical, names)
	}
	return &UnsupportedSchemaError{Msg: "no writer case applies"}
}

func encodePrimitive(buf *strings.Builder, v *PrimitiveSchema, canonical bool) error {
	if canonical || v.logical == nil {
		buf.WriteString(jsonStr(string(v.typ)))
		return nil
	}
	o := newObject(buf)
	o.str("type", string(v.typ))
	writeLogicalAttrs(o, v.logical)
	o.close()
	return nil
}

func writeLogicalAttrs(o *objectWriter, lt *LogicalType) {
	o.str("logicalType", string(lt.name))
	if lt.name == DecimalType {
		o.int("precision", lt.precision)
		if lt.scale != 0 {
			o.int("scale", lt.scale)
		}
	}
}

// encodeNamed implements a write discipline where a second
// encounter of a full name already present in names is emitted as a bare
// string if structurally equal to the cached definition, else raises a
// conflict; the first encounter inserts into names and emits the full
// object via writeAttrs.
func encodeNamed(buf *strings.Builder, s NamedSchema, canonical bool, names map[string]NamedSchema, writeAttrs func(*objectWriter)) error {
	full := s.FullName()
	if cached, ok := names[full]; ok {
		if !Equal(cached, s) {
			return &InvalidSchemaError{Msg: "full name \"" + full + "\" designates two structurally distinct named schemas"}
		}
		buf.WriteString(jsonStr(full))
		return nil
	}
	names[full] = s

	o := newObject(buf)
	if canonical {
		o.str("name", full)
	} else {
		o.str("name", s.Name())
		if s.Namespace() != "" {
			o.str("namespace", s.Namespace())
		}
		if len(s.Aliases()) > 0 {
			o.strs("aliases", s.Aliases())
		}
	}
	writeAttrs(o)
	o.close()
	return nil
}

func encodeRecord(buf *strings.Builder, r *RecordSchema, canonical bool, names map[string]NamedSchema) error {
	full := r.FullName()
	if cached, ok := names[full]; ok {
		if !Equal(cached, r) {
			return &InvalidSchemaError{Msg: "full name \"" + full + "\" designates two structurally distinct named schemas"}
		}
		buf.WriteString(jsonStr(full))
		return nil
	}
	names[full] = r

	buf.WriteByte('{')
	wroteField := false
	writeKey := func(k string) {
		if wroteField {
			buf.WriteByte(',')
		}
		buf.WriteString(jsonStr(k))
		buf.WriteByte(':')
		wroteField = true
	}

	if canonical {
		writeKey("name")
		buf.WriteString(jsonStr(full))
	} else {
		writeKey("name")
		buf.WriteString(jsonStr(r.Name()))
		if r.Namespace() != "" {
			writeKey("namespace")
			buf.WriteString(jsonStr(r.Namespace()))
		}
		if len(r.Aliases()) > 0 {
			writeKey("aliases")
			parts := make([]string, len(r.Aliases()))
			for i, a := range r.Aliases() {
				parts[i] = jsonStr(a)
			}
			buf.WriteString("[" + strings.Join(parts, ",") + "]")
		}
		if r.Doc() != "" {
			writeKey("doc")
			buf.WriteString(jsonStr(r.Doc()))
		}
	}
	writeKey("type")
	buf.WriteString(jsonStr("record"))

	writeKey("fields")
	buf.WriteByte('[')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		buf.WriteString(jsonStr("name"))
		buf.WriteByte(':')
		buf.WriteString(jsonStr(f.name))
		buf.WriteByte(',')
		buf.WriteString(jsonStr("type"))
		buf.WriteByte(':')
		if err := encodeSchema(buf, f.typ, canonical, names); err != nil {
			return err
		}
		if !canonical {
			if f.doc != "" {
				buf.WriteByte(',')
				buf.WriteString(jsonStr("doc"))
				buf.WriteByte(':')
				buf.WriteString(jsonStr(f.doc))
			}
			if f.hasDefault {
				buf.WriteByte(',')
				buf.WriteString(jsonStr("default"))
				buf.WriteByte(':')
				defBytes, err := json.Marshal(f.def)
				if err != nil {
					return err
				}
				buf.Write(defBytes)
			}
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	buf.WriteByte('}')
	return nil
}
