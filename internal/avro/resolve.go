package avro

import (
	"math/big"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind discriminates the TypeResolution variants. A flat,
// Kind-tagged struct is used instead of a Schema-style interface
// hierarchy: resolutions are produced, read, and discarded entirely
// within one codec build, so there is no benefit to the extra
// indirection an interface sum would add.
type Kind int

const (
	KindBoolean Kind = iota
	KindInteger
	KindFloating
	KindDecimal
	KindString
	KindBytes
	KindTimestamp
	KindDuration
	KindUUID
	KindEnum
	KindArray
	KindMap
	KindRecord
	// KindAny resolves a Go `any`/interface{} field: a field that can hold
	// any of a union schema's branches, matched dynamically per value at
	// encode time (the "runtime type" union selection rule).
	KindAny
)

// EnumSymbol pairs a declared enum member's name with its raw underlying
// value.
type EnumSymbol struct {
	Name  string
	Value int64
}

// FieldResolution describes one resolved struct field: its declared
// name, its own type resolution, and the reflect.StructField index path
// used to read/write it.
type FieldResolution struct {
	Name  string
	Res   *Resolution
	Index []int

	// GoType is the field's declared Go type, before the pointer
	// dereferencing Resolve() applies to compute Res. The codec builder
	// consults this (rather than Res.Go) to decide how a union-typed
	// field represents its null branch: nil pointer, nil slice, nil map,
	// or a dynamically-matched interface{}.
	GoType reflect.Type
}

// Resolution is the structural description the Type Resolver produces
// for a host Go type.
type Resolution struct {
	Kind Kind
	Go   reflect.Type

	// KindInteger / KindFloating
	Bits   int
	Signed bool

	// Named resolutions (KindEnum, KindRecord): FullName plus whether it
	// was set explicitly via the AvroName metadata hook (true) or derived
	// implicitly from the Go type name (false). Union branch selection
	// (assignable) matches a record branch on FullName alone; it does not
	// consult NameExplicit.
	FullName     string
	NameExplicit bool

	// KindArray
	Item *Resolution

	// KindMap
	MapKey   *Resolution
	MapValue *Resolution

	// KindEnum
	Symbols []EnumSymbol

	// KindRecord
	Fields []FieldResolution
}

// AvroNamer lets a host type declare its own schema name explicitly,
// overriding the implicit name derived from the Go type's declared name.
type AvroNamer interface {
	AvroName() string
}

// AvroEnum lets a named integer type declare its ordered enum symbols.
type AvroEnum interface {
	AvroSymbols() []string
}

// AvroDataContract, when implemented (even via an embedded marker), puts
// a struct's metadata-aware resolution into opt-in mode: only fields
// individually tagged `avro:"name"` are visible.
type AvroDataContract interface {
	avroDataContract()
}

// Decimal is the canonical host representation of the decimal logical
// type: an arbitrary-precision unscaled integer plus a decimal scale.
type Decimal struct {
	Unscaled *big.Int
	Scale    int
}

// Duration is the canonical host representation of the duration logical
// type (months/days/milliseconds do not collapse to a single
// time.Duration, since months and days are not fixed-length).
type Duration struct {
	Months       uint32
	Days         uint32
	Milliseconds uint32
}

var (
	typeOfTime     = reflect.TypeOf(time.Time{})
	typeOfDuration = reflect.TypeOf(Duration{})
	typeOfDecimal  = reflect.TypeOf(Decimal{})
	typeOfUUID     = reflect.TypeOf(uuid.UUID{})
	typeOfBytes    = reflect.TypeOf([]byte(nil))
)

// Resolver resolves host Go types into Resolutions, memoizing each
// distinct reflect.Type within the Resolver's lifetime
// "Lifecycles": resolutions are produced once per host type per builder
// invocation).
type Resolver struct {
	seen map[reflect.Type]*Resolution
}

func NewResolver() *Resolver { return &Resolver{seen: map[reflect.Type]*Resolution{}} }

// Resolve inspects t (deref'd of pointers) and returns its structural
// resolution, trying each case in order and aggregating failures into a
// single UnsupportedTypeError on exhaustion.
func (r *Resolver) Resolve(t reflect.Type) (*Resolution, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if res, ok := r.seen[t]; ok {
		return res, nil
	}

	var reasons []error
	for _, c := range resolverCaseList() {
		res, err := c(r, t)
		if err == nil {
			r.seen[t] = res
			return res, nil
		}
		reasons = append(reasons, err)
	}
	return nil, &UnsupportedTypeError{Msg: joinReasons(t, reasons)}
}

func joinReasons(t reflect.Type, reasons []error) string {
	parts := make([]string, len(reasons))
	for i, r := range reasons {
		parts[i] = r.Error()
	}
	return t.String() + ": " + strings.Join(parts, "; ")
}

type resolverCase func(r *Resolver, t reflect.Type) (*Resolution, error)

// resolverCaseList returns the ordered case chain. Special-cased host types
// (time.Time, avro.Decimal, avro.Duration, uuid.UUID, []byte) are tried
// before the generic struct/slice/map/primitive cases so that, e.g., a
// []byte field resolves to KindBytes rather than KindArray; AvroEnum
// types come next, ahead of the integer and string cases their
// underlying kinds would otherwise match.
func resolverCaseList() []resolverCase {
	return []resolverCase{
		caseSpecialTypes,
		caseEnum,
		caseBoolean,
		caseInteger,
		caseFloating,
		caseString,
		caseArray,
		caseMap,
		caseRecord,
		caseAny,
	}
}

// caseAny resolves an empty interface (any) field, used for union-typed
// fields whose branch is selected dynamically per value at encode time.
func caseAny(_ *Resolver, t reflect.Type) (*Resolution, error) {
	if t.Kind() != reflect.Interface || t.NumMethod() != 0 {
		return nil, unsupportedType("not an empty interface")
	}
	return &Resolution{Kind: KindAny, Go: t}, nil
}

func caseSpecialTypes(_ *Resolver, t reflect.Type) (*Resolution, error) {
	switch t {
	case typeOfTime:
		return &Resolution{Kind: KindTimestamp, Go: t}, nil
	case typeOfDuration:
		return &Resolution{Kind: KindDuration, Go: t}, nil
	case typeOfDecimal:
		return &Resolution{Kind: KindDecimal, Go: t}, nil
	case typeOfUUID:
		return &Resolution{Kind: KindUUID, Go: t}, nil
	case typeOfBytes:
		return &Resolution{Kind: KindBytes, Go: t}, nil
	}
	return nil, unsupportedType("not a special-cased type")
}

func caseBoolean(_ *Resolver, t reflect.Type) (*Resolution, error) {
	if t.Kind() != reflect.Bool {
		return nil, unsupportedType("not bool")
	}
	return &Resolution{Kind: KindBoolean, Go: t}, nil
}

func caseInteger(_ *Resolver, t reflect.Type) (*Resolution, error) {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &Resolution{Kind: KindInteger, Go: t, Bits: t.Bits(), Signed: true}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Resolution{Kind: KindInteger, Go: t, Bits: t.Bits(), Signed: false}, nil
	}
	return nil, unsupportedType("not an integer kind")
}

func caseFloating(_ *Resolver, t reflect.Type) (*Resolution, error) {
	switch t.Kind() {
	case reflect.Float32, reflect.Float64:
		return &Resolution{Kind: KindFloating, Go: t, Bits: t.Bits()}, nil
	}
	return nil, unsupportedType("not a floating kind")
}

func caseString(_ *Resolver, t reflect.Type) (*Resolution, error) {
	if t.Kind() != reflect.String {
		return nil, unsupportedType("not string")
	}
	return &Resolution{Kind: KindString, Go: t}, nil
}

func caseEnum(_ *Resolver, t reflect.Type) (*Resolution, error) {
	zero := reflect.Zero(reflect.PtrTo(t)).Interface()
	en, ok := zero.(AvroEnum)
	if !ok {
		return nil, unsupportedType("does not implement AvroEnum")
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.String:
	default:
		return nil, unsupportedType("AvroEnum must have an integer or string underlying kind")
	}
	symbols := en.AvroSymbols()
	out := make([]EnumSymbol, len(symbols))
	for i, s := range symbols {
		out[i] = EnumSymbol{Name: s, Value: int64(i)}
	}
	return &Resolution{
		Kind:         KindEnum,
		Go:           t,
		FullName:     explicitOrImplicitName(t),
		NameExplicit: hasExplicitName(t),
		Symbols:      out,
	}, nil
}

func caseArray(r *Resolver, t reflect.Type) (*Resolution, error) {
	if t.Kind() != reflect.Slice {
		return nil, unsupportedType("not a slice")
	}
	item, err := r.Resolve(t.Elem())
	if err != nil {
		return nil, err
	}
	return &Resolution{Kind: KindArray, Go: t, Item: item}, nil
}

func caseMap(r *Resolver, t reflect.Type) (*Resolution, error) {
	if t.Kind() != reflect.Map {
		return nil, unsupportedType("not a map")
	}
	if t.Key().Kind() != reflect.String {
		return nil, unsupportedType("map key must be string")
	}
	key, err := r.Resolve(t.Key())
	if err != nil {
		return nil, err
	}
	val, err := r.Resolve(t.Elem())
	if err != nil {
		return nil, err
	}
	return &Resolution{Kind: KindMap, Go: t, MapKey: key, MapValue: val}, nil
}

func caseRecord(r *Resolver, t reflect.Type) (*Resolution, error) {
	if t.Kind() != reflect.Struct {
		return nil, unsupportedType("not a struct")
	}

	res := &Resolution{
		Kind:         KindRecord,
		Go:           t,
		FullName:     explicitOrImplicitName(t),
		NameExplicit: hasExplicitName(t),
	}
	// Insert into the cache before resolving fields so a record that
	// transitively references itself (directly or via array/map/union)
	// terminates, mirroring the codec builder's own cycle handling.
	r.seen[t] = res

	contract := implementsDataContract(t)
	var fields []fieldCandidate
	collectFields(t, nil, contract, &fields)

	out := make([]FieldResolution, 0, len(fields))
	for _, c := range fields {
		fieldRes, err := r.Resolve(c.field.Type)
		if err != nil {
			return nil, unsupportedType("field %q: %v", c.field.Name, err)
		}
		out = append(out, FieldResolution{Name: c.tag.name, Res: fieldRes, Index: c.index, GoType: c.field.Type})
	}

	// Order: declared Order (ascending) then Name, when any field
	// supplies an explicit order; else declaration order (already the
	// order collectFields walked the struct in).
	hasOrder := false
	for _, c := range fields {
		if c.tag.hasOrder {
			hasOrder = true
			break
		}
	}
	if hasOrder {
		order := make(map[string]int, len(fields))
		for _, c := range fields {
			order[c.tag.name] = c.tag.order
		}
		sort.SliceStable(out, func(i, j int) bool {
			oi, oj := order[out[i].Name], order[out[j].Name]
			if oi != oj {
				return oi < oj
			}
			return out[i].Name < out[j].Name
		})
	}

	res.Fields = out
	return res, nil
}

type fieldTag struct {
	name     string
	order    int
	hasOrder bool
	skip     bool
}

func parseFieldTag(sf reflect.StructField) fieldTag {
	raw, ok := sf.Tag.Lookup("avro")
	ft := fieldTag{name: sf.Name}
	if !ok {
		return ft
	}
	parts := strings.Split(raw, ",")
	if parts[0] == "-" {
		ft.skip = true
		return ft
	}
	if parts[0] != "" {
		ft.name = parts[0]
	}
	for _, p := range parts[1:] {
		if strings.HasPrefix(p, "order=") {
			if n, err := strconv.Atoi(strings.TrimPrefix(p, "order=")); err == nil {
				ft.order = n
				ft.hasOrder = true
			}
		}
	}
	return ft
}

// fieldCandidate is a struct field visible to the metadata-aware
// resolution policy, before its own type has been resolved.
type fieldCandidate struct {
	field reflect.StructField
	index []int
	tag   fieldTag
}

// collectFields walks t's fields (recursing into anonymous/embedded
// structs), honoring the metadata-aware visibility policy: under a
// data contract, only explicitly tagged fields are
// visible; otherwise all exported fields are visible except those
// tagged `avro:"-"`.
func collectFields(t reflect.Type, prefix []int, contract bool, out *[]fieldCandidate) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		index := append(append([]int{}, prefix...), i)

		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			collectFields(sf.Type, index, contract, out)
			continue
		}
		if !sf.IsExported() {
			continue
		}
		tag := parseFieldTag(sf)
		_, tagged := sf.Tag.Lookup("avro")
		if contract && !tagged {
			continue
		}
		if tag.skip {
			continue
		}
		*out = append(*out, fieldCandidate{field: sf, index: index, tag: tag})
	}
}

func implementsDataContract(t reflect.Type) bool {
	_, ok := reflect.Zero(reflect.PtrTo(t)).Interface().(AvroDataContract)
	return ok
}

func explicitOrImplicitName(t reflect.Type) string {
	if n, ok := reflect.Zero(reflect.PtrTo(t)).Interface().(AvroNamer); ok {
		return n.AvroName()
	}
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.Name()
}

func hasExplicitName(t reflect.Type) bool {
	_, ok := reflect.Zero(reflect.PtrTo(t)).Interface().(AvroNamer)
	return ok
}
