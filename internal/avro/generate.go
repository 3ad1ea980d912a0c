package avro

import "reflect"

// SchemaOf derives an Avro schema from a host Go type via the Type
// Resolver — the inverse of NewCodecForType, used by the wire adapter's
// auto-registration path: a subject with no schema yet still needs one
// generated from the value being serialized, to register before a
// registry has ever seen the host type.
//
// A decimal field generates with precision/scale left at 0; callers that
// need a specific precision/scale should register a hand-written schema
// instead of relying on generation for that field.
func SchemaOf(t reflect.Type) (Schema, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	res, err := NewResolver().Resolve(t)
	if err != nil {
		return nil, err
	}
	g := &generator{cache: map[string]NamedSchema{}}
	return g.schemaFor(res)
}

// generator mirrors parser.buildRecord's self-reference placeholder
// pattern: a record is registered in the cache by full name before its
// fields are generated, so a struct referencing itself terminates.
type generator struct {
	cache map[string]NamedSchema
}

func (g *generator) schemaFor(res *Resolution) (Schema, error) {
	switch res.Kind {
	case KindBoolean:
		return NewPrimitiveSchema(Boolean, nil)
	case KindInteger:
		if res.Bits > 32 {
			return NewPrimitiveSchema(Long, nil)
		}
		return NewPrimitiveSchema(Int, nil)
	case KindFloating:
		if res.Bits > 32 {
			return NewPrimitiveSchema(Double, nil)
		}
		return NewPrimitiveSchema(Float, nil)
	case KindString:
		return NewPrimitiveSchema(String, nil)
	case KindBytes:
		return NewPrimitiveSchema(Bytes, nil)
	case KindDecimal:
		return NewPrimitiveSchema(Bytes, NewDecimalLogicalType(0, 0))
	case KindUUID:
		return NewPrimitiveSchema(String, NewPrimitiveLogicalType(UUID))
	case KindTimestamp:
		return NewPrimitiveSchema(Long, NewPrimitiveLogicalType(TimestampMicros))
	case KindDuration:
		return g.durationSchema()
	case KindEnum:
		return g.enumSchema(res)
	case KindArray:
		item, err := g.schemaFor(res.Item)
		if err != nil {
			return nil, err
		}
		return NewArraySchema(item), nil
	case KindMap:
		val, err := g.schemaFor(res.MapValue)
		if err != nil {
			return nil, err
		}
		return NewMapSchema(val), nil
	case KindRecord:
		return g.recordSchema(res)
	}
	return nil, unsupportedType("cannot generate a schema for resolution kind %d (dynamic any fields require an explicit schema)", res.Kind)
}

func (g *generator) durationSchema() (Schema, error) {
	n, err := newName("duration", "", "")
	if err != nil {
		return nil, err
	}
	if existing, ok := g.cache[n.FullName()]; ok {
		return existing, nil
	}
	sch, err := NewFixedSchema(n, nil, 12, NewPrimitiveLogicalType(DurationType))
	if err != nil {
		return nil, err
	}
	g.cache[n.FullName()] = sch
	return sch, nil
}

func (g *generator) enumSchema(res *Resolution) (Schema, error) {
	n, err := newName(res.FullName, "", "")
	if err != nil {
		return nil, err
	}
	if existing, ok := g.cache[n.FullName()]; ok {
		return existing, nil
	}
	symbols := make([]string, len(res.Symbols))
	for i, sym := range res.Symbols {
		symbols[i] = sym.Name
	}
	sch, err := NewEnumSchema(n, nil, "", symbols)
	if err != nil {
		return nil, err
	}
	g.cache[n.FullName()] = sch
	return sch, nil
}

func (g *generator) recordSchema(res *Resolution) (Schema, error) {
	n, err := newName(res.FullName, "", "")
	if err != nil {
		return nil, err
	}
	if existing, ok := g.cache[n.FullName()]; ok {
		return existing, nil
	}

	rec, err := NewRecordSchema(n, nil, "", nil)
	if err != nil {
		return nil, err
	}
	g.cache[n.FullName()] = rec

	fields := make([]*Field, 0, len(res.Fields))
	for _, f := range res.Fields {
		fieldSchema, err := g.schemaFor(f.Res)
		if err != nil {
			return nil, err
		}
		if f.GoType.Kind() == reflect.Ptr {
			fieldSchema, err = NewUnionSchema([]Schema{mustNullSchema(), fieldSchema})
			if err != nil {
				return nil, err
			}
		}
		fields = append(fields, NewField(f.Name, "", fieldSchema, nil, false))
	}
	if err := rec.SetFields(fields); err != nil {
		return nil, err
	}
	return rec, nil
}

func mustNullSchema() Schema {
	s, _ := NewPrimitiveSchema(Null, nil)
	return s
}
