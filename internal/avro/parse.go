package avro

import (
	"encoding/json"
	"fmt"
	"strings"
)

var primitiveNames = map[string]bool{
	"null": true, "boolean": true, "int": true, "long": true,
	"float": true, "double": true, "bytes": true, "string": true,
}

// parser carries the name -> NamedSchema cache across a single Parse
// call, for named-schema interning.
type parser struct {
	cache map[string]NamedSchema
}

// Parse reads schema JSON text into the Schema model.
func Parse(text string) (Schema, error) {
	p := &parser{cache: map[string]NamedSchema{}}
	var raw interface{}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, &InvalidSchemaError{Msg: fmt.Sprintf("malformed schema JSON: %v", err)}
	}
	return p.parseNode(raw, "")
}

func (p *parser) clone() *parser {
	c := make(map[string]NamedSchema, len(p.cache))
	for k, v := range p.cache {
		c[k] = v
	}
	return &parser{cache: c}
}

func (p *parser) parseNode(node interface{}, enclosingNS string) (Schema, error) {
	switch v := node.(type) {
	case string:
		return p.parsePrimitiveOrRef(v, enclosingNS)
	case []interface{}:
		return p.parseUnion(v, enclosingNS)
	case map[string]interface{}:
		return p.parseObject(v, enclosingNS)
	default:
		return nil, &UnknownSchemaError{Reasons: []error{fmt.Errorf("unexpected JSON node of type %T", node)}}
	}
}

func (p *parser) parsePrimitiveOrRef(s string, enclosingNS string) (Schema, error) {
	if ns, ok := p.cache[s]; ok {
		return ns, nil
	}
	if enclosingNS != "" && !strings.Contains(s, ".") {
		if ns, ok := p.cache[enclosingNS+"."+s]; ok {
			return ns, nil
		}
	}
	if primitiveNames[s] {
		sch, err := NewPrimitiveSchema(Type(s), nil)
		return sch, err
	}
	return nil, &UnknownSchemaError{Reasons: []error{fmt.Errorf("%q is neither a primitive type nor a known named schema", s)}}
}

func (p *parser) parseUnion(arr []interface{}, enclosingNS string) (Schema, error) {
	types := make([]Schema, len(arr))
	for i, item := range arr {
		t, err := p.parseNode(item, enclosingNS)
		if err != nil {
			return nil, err
		}
		types[i] = t
	}
	return NewUnionSchema(types)
}

func (p *parser) parseObject(m map[string]interface{}, enclosingNS string) (Schema, error) {
	typRaw, ok := m["type"]
	if !ok {
		return nil, &UnknownSchemaError{Reasons: []error{fmt.Errorf("object schema is missing a %q attribute", "type")}}
	}
	typStr, ok := typRaw.(string)
	if !ok {
		// A nested schema given as the "type" attribute's value.
		return p.parseNode(typRaw, enclosingNS)
	}

	switch typStr {
	case "array":
		items, err := p.parseNode(m["items"], enclosingNS)
		if err != nil {
			return nil, err
		}
		return NewArraySchema(items), nil

	case "map":
		values, err := p.parseNode(m["values"], enclosingNS)
		if err != nil {
			return nil, err
		}
		return NewMapSchema(values), nil

	case "fixed":
		return p.parseFixed(m, enclosingNS)

	case "enum":
		return p.parseEnum(m, enclosingNS)

	case "record", "error":
		return p.parseRecord(m, enclosingNS)

	default:
		if primitiveNames[typStr] {
			logical := logicalFromAttrs(typStr, m)
			return NewPrimitiveSchema(Type(typStr), logical)
		}
		return p.parsePrimitiveOrRef(typStr, enclosingNS)
	}
}

func logicalFromAttrs(base string, m map[string]interface{}) *LogicalType {
	ltRaw, ok := m["logicalType"]
	if !ok {
		return nil
	}
	ltStr, ok := ltRaw.(string)
	if !ok {
		return nil
	}
	switch LogicalTypeName(ltStr) {
	case DecimalType:
		if base != "bytes" {
			return nil
		}
		return NewDecimalLogicalType(intAttr(m, "precision"), intAttr(m, "scale"))
	case UUID:
		if base != "string" {
			return nil
		}
		return NewPrimitiveLogicalType(UUID)
	case Date, TimeMillis:
		if base != "int" {
			return nil
		}
		return NewPrimitiveLogicalType(LogicalTypeName(ltStr))
	case TimeMicros, TimestampMillis, TimestampMicros:
		if base != "long" {
			return nil
		}
		return NewPrimitiveLogicalType(LogicalTypeName(ltStr))
	}
	return nil
}

func intAttr(m map[string]interface{}, key string) int {
	if v, ok := m[key]; ok {
		if f, ok := v.(float64); ok {
			return int(f)
		}
	}
	return 0
}

func stringAttr(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func aliasesAttr(m map[string]interface{}) []string {
	v, ok := m["aliases"]
	if !ok {
		return nil
	}
	arr, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, a := range arr {
		if s, ok := a.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (p *parser) parseFixed(m map[string]interface{}, enclosingNS string) (Schema, error) {
	n, err := newName(stringAttr(m, "name"), stringAttr(m, "namespace"), enclosingNS)
	if err != nil {
		return nil, err
	}
	size := intAttr(m, "size")
	logical := logicalFixedLogical(size, m)

	if existing, ok := p.cache[n.FullName()]; ok {
		candidate, err := p.clone().buildFixed(n, m, size, logical)
		if err != nil {
			return nil, err
		}
		if !Equal(existing, candidate) {
			return nil, &ConflictingSchemaError{FullName: n.FullName()}
		}
		return existing, nil
	}
	return p.buildFixed(n, m, size, logical)
}

func (p *parser) buildFixed(n name, m map[string]interface{}, size int, logical *LogicalType) (Schema, error) {
	sch, err := NewFixedSchema(n, aliasesAttr(m), size, logical)
	if err != nil {
		return nil, err
	}
	p.cache[n.FullName()] = sch
	return sch, nil
}

func logicalFixedLogical(size int, m map[string]interface{}) *LogicalType {
	ltRaw, ok := m["logicalType"]
	if !ok {
		return nil
	}
	ltStr, _ := ltRaw.(string)
	switch LogicalTypeName(ltStr) {
	case DecimalType:
		return NewDecimalLogicalType(intAttr(m, "precision"), intAttr(m, "scale"))
	case DurationType:
		if size == 12 {
			return NewPrimitiveLogicalType(DurationType)
		}
	}
	return nil
}

func (p *parser) parseEnum(m map[string]interface{}, enclosingNS string) (Schema, error) {
	n, err := newName(stringAttr(m, "name"), stringAttr(m, "namespace"), enclosingNS)
	if err != nil {
		return nil, err
	}
	symRaw, _ := m["symbols"].([]interface{})
	symbols := make([]string, 0, len(symRaw))
	for _, s := range symRaw {
		if str, ok := s.(string); ok {
			symbols = append(symbols, str)
		}
	}

	if existing, ok := p.cache[n.FullName()]; ok {
		candidate, err := p.clone().buildEnum(n, m, symbols)
		if err != nil {
			return nil, err
		}
		if !Equal(existing, candidate) {
			return nil, &ConflictingSchemaError{FullName: n.FullName()}
		}
		return existing, nil
	}
	return p.buildEnum(n, m, symbols)
}

func (p *parser) buildEnum(n name, m map[string]interface{}, symbols []string) (Schema, error) {
	sch, err := NewEnumSchema(n, aliasesAttr(m), stringAttr(m, "doc"), symbols)
	if err != nil {
		return nil, err
	}
	p.cache[n.FullName()] = sch
	return sch, nil
}

func (p *parser) parseRecord(m map[string]interface{}, enclosingNS string) (Schema, error) {
	n, err := newName(stringAttr(m, "name"), stringAttr(m, "namespace"), enclosingNS)
	if err != nil {
		return nil, err
	}

	if existing, ok := p.cache[n.FullName()]; ok {
		candidate, err := p.clone().buildRecord(n, m)
		if err != nil {
			return nil, err
		}
		if !Equal(existing, candidate) {
			return nil, &ConflictingSchemaError{FullName: n.FullName()}
		}
		return existing, nil
	}
	return p.buildRecord(n, m)
}

// buildRecord inserts a placeholder record into the cache before parsing
// fields, so that a record field referring back to the record's own full
// name (directly, or via array/map/union) resolves.
func (p *parser) buildRecord(n name, m map[string]interface{}) (Schema, error) {
	rec, err := NewRecordSchema(n, aliasesAttr(m), stringAttr(m, "doc"), nil)
	if err != nil {
		return nil, err
	}
	p.cache[n.FullName()] = rec

	fieldsRaw, _ := m["fields"].([]interface{})
	fields := make([]*Field, 0, len(fieldsRaw))
	for _, fr := range fieldsRaw {
		fm, ok := fr.(map[string]interface{})
		if !ok {
			return nil, &UnknownSchemaError{Reasons: []error{fmt.Errorf("record %q has a non-object field entry", n.FullName())}}
		}
		ftype, err := p.parseNode(fm["type"], n.Namespace())
		if err != nil {
			return nil, err
		}
		def, hasDefault := fm["default"]
		fields = append(fields, NewField(stringAttr(fm, "name"), stringAttr(fm, "doc"), ftype, def, hasDefault))
	}

	if err := rec.SetFields(fields); err != nil {
		return nil, err
	}
	return rec, nil
}
