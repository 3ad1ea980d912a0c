// Package avro models Avro schemas as an in-memory value, reads and
// writes them in JSON form, and compiles a schema together with a host
// Go type into encoder/decoder pairs for the Avro binary format.
package avro

import "fmt"

// Type identifies an Avro schema variant.
type Type string

// The Avro schema variants.
const (
	Null    Type = "null"
	Boolean Type = "boolean"
	Int     Type = "int"
	Long    Type = "long"
	Float   Type = "float"
	Double  Type = "double"
	Bytes   Type = "bytes"
	String  Type = "string"
	Array   Type = "array"
	Map     Type = "map"
	Union   Type = "union"
	Fixed   Type = "fixed"
	Enum    Type = "enum"
	Record  Type = "record"
)

// Schema is the tagged sum over every Avro schema variant. Implementations
// are immutable after construction except for the additive field/alias
// mutation the JSON reader performs while resolving forward references.
type Schema interface {
	// Type reports the schema's variant.
	Type() Type
	// String returns the schema's non-canonical JSON representation.
	String() string
}

// NamedSchema is implemented by the three schema variants that can be
// referenced later by full name: Fixed, Enum, Record.
type NamedSchema interface {
	Schema
	Name() string
	Namespace() string
	FullName() string
	Aliases() []string
}

// LogicalSchema is implemented by any Schema that may carry a logical
// type refinement.
type LogicalSchema interface {
	Schema
	Logical() *LogicalType
}

func isNamed(t Type) bool {
	return t == Fixed || t == Enum || t == Record
}

func isPrimitive(t Type) bool {
	switch t {
	case Null, Boolean, Int, Long, Float, Double, Bytes, String:
		return true
	}
	return false
}

// PrimitiveSchema is a schema with no attributes beyond its Type, plus an
// optional logical-type refinement.
type PrimitiveSchema struct {
	typ     Type
	logical *LogicalType
}

// NewPrimitiveSchema constructs a primitive schema, optionally carrying a
// logical type. It validates the logical type's declared base type.
func NewPrimitiveSchema(typ Type, logical *LogicalType) (*PrimitiveSchema, error) {
	if !isPrimitive(typ) {
		return nil, &InvalidSchemaError{Msg: fmt.Sprintf("%q is not a primitive type", typ)}
	}
	if logical != nil {
		if err := logical.validateBase(typ, 0); err != nil {
			return nil, err
		}
	}
	return &PrimitiveSchema{typ: typ, logical: logical}, nil
}

func (s *PrimitiveSchema) Type() Type            { return s.typ }
func (s *PrimitiveSchema) Logical() *LogicalType { return s.logical }
func (s *PrimitiveSchema) String() string        { return writeSchema(s, false, nil) }

// ArraySchema represents an Avro array of Items.
type ArraySchema struct {
	items Schema
}

func NewArraySchema(items Schema) *ArraySchema { return &ArraySchema{items: items} }

func (s *ArraySchema) Type() Type     { return Array }
func (s *ArraySchema) Items() Schema  { return s.items }
func (s *ArraySchema) String() string { return writeSchema(s, false, nil) }

// MapSchema represents an Avro map with string keys and Values of the
// given schema.
type MapSchema struct {
	values Schema
}

func NewMapSchema(values Schema) *MapSchema { return &MapSchema{values: values} }

func (s *MapSchema) Type() Type     { return Map }
func (s *MapSchema) Values() Schema { return s.values }
func (s *MapSchema) String() string { return writeSchema(s, false, nil) }

// UnionSchema represents an ordered sequence of branch schemas, each
// uniquely typed per the Avro union rules.
type UnionSchema struct {
	types []Schema
}

// NewUnionSchema validates the union rules: no two
// branches are both unions, no two branches share a primitive type, no
// two branches name the same named type.
func NewUnionSchema(types []Schema) (*UnionSchema, error) {
	seenPrimitive := map[Type]bool{}
	seenNamed := map[string]bool{}
	for _, t := range types {
		if t.Type() == Union {
			return nil, &InvalidSchemaError{Msg: "union may not directly contain another union"}
		}
		if isPrimitive(t.Type()) {
			if seenPrimitive[t.Type()] {
				return nil, &InvalidSchemaError{Msg: fmt.Sprintf("union has duplicate primitive branch %q", t.Type())}
			}
			seenPrimitive[t.Type()] = true
			continue
		}
		if ns, ok := t.(NamedSchema); ok {
			if seenNamed[ns.FullName()] {
				return nil, &InvalidSchemaError{Msg: fmt.Sprintf("union has duplicate named branch %q", ns.FullName())}
			}
			seenNamed[ns.FullName()] = true
		}
	}
	return &UnionSchema{types: types}, nil
}

func (s *UnionSchema) Type() Type       { return Union }
func (s *UnionSchema) Types() []Schema  { return s.types }
func (s *UnionSchema) String() string   { return writeSchema(s, false, nil) }
func (s *UnionSchema) Nullable() bool {
	for _, t := range s.types {
		if t.Type() == Null {
			return true
		}
	}
	return false
}

// FixedSchema is a named schema of a fixed byte Size.
type FixedSchema struct {
	name
	aliases []string
	size    int
	logical *LogicalType
}

func NewFixedSchema(n name, aliases []string, size int, logical *LogicalType) (*FixedSchema, error) {
	if logical != nil {
		if err := logical.validateBase(Fixed, size); err != nil {
			return nil, err
		}
	}
	return &FixedSchema{name: n, aliases: aliases, size: size, logical: logical}, nil
}

func (s *FixedSchema) Type() Type            { return Fixed }
func (s *FixedSchema) Aliases() []string     { return s.aliases }
func (s *FixedSchema) Size() int             { return s.size }
func (s *FixedSchema) Logical() *LogicalType { return s.logical }
func (s *FixedSchema) String() string        { return writeSchema(s, false, nil) }

// EnumSchema is a named schema of ordered Symbols.
type EnumSchema struct {
	name
	aliases []string
	doc     string
	symbols []string
}

func NewEnumSchema(n name, aliases []string, doc string, symbols []string) (*EnumSchema, error) {
	seen := map[string]bool{}
	for _, sym := range symbols {
		if !validSymbol(sym) {
			return nil, &InvalidSymbolError{Symbol: sym}
		}
		if seen[sym] {
			return nil, &InvalidSchemaError{Msg: fmt.Sprintf("enum %q has duplicate symbol %q", n.FullName(), sym)}
		}
		seen[sym] = true
	}
	return &EnumSchema{name: n, aliases: aliases, doc: doc, symbols: symbols}, nil
}

func (s *EnumSchema) Type() Type        { return Enum }
func (s *EnumSchema) Aliases() []string { return s.aliases }
func (s *EnumSchema) Doc() string       { return s.doc }
func (s *EnumSchema) Symbols() []string { return s.symbols }
func (s *EnumSchema) String() string    { return writeSchema(s, false, nil) }

// Field is a single RecordSchema field.
type Field struct {
	name       string
	doc        string
	typ        Schema
	hasDefault bool
	def        interface{}
}

func NewField(fieldName, doc string, typ Schema, def interface{}, hasDefault bool) *Field {
	return &Field{name: fieldName, doc: doc, typ: typ, def: def, hasDefault: hasDefault}
}

func (f *Field) Name() string          { return f.name }
func (f *Field) Doc() string           { return f.doc }
func (f *Field) Type() Schema          { return f.typ }
func (f *Field) Default() interface{}  { return f.def }
func (f *Field) HasDefault() bool      { return f.hasDefault }

// RecordSchema is a named schema of ordered Fields. It supports mutation
// of its field list after construction, to permit the JSON reader to
// resolve forward/self references before a record's fields are known.
type RecordSchema struct {
	name
	aliases []string
	doc     string
	fields  []*Field
}

func NewRecordSchema(n name, aliases []string, doc string, fields []*Field) (*RecordSchema, error) {
	r := &RecordSchema{name: n, aliases: aliases, doc: doc}
	if err := r.SetFields(fields); err != nil {
		return nil, err
	}
	return r, nil
}

// SetFields replaces the record's field list, validating field-name
// uniqueness. Used both at construction and, during JSON parsing, once a
// self-referential record's fields become known.
func (s *RecordSchema) SetFields(fields []*Field) error {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.name] {
			return &InvalidSchemaError{Msg: fmt.Sprintf("record %q has duplicate field %q", s.FullName(), f.name)}
		}
		seen[f.name] = true
	}
	s.fields = fields
	return nil
}

func (s *RecordSchema) Type() Type        { return Record }
func (s *RecordSchema) Aliases() []string { return s.aliases }
func (s *RecordSchema) Doc() string       { return s.doc }
func (s *RecordSchema) Fields() []*Field  { return s.fields }
func (s *RecordSchema) String() string    { return writeSchema(s, false, nil) }
