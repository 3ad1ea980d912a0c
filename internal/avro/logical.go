package avro

import "fmt"

// LogicalTypeName identifies an Avro logical type.
type LogicalTypeName string

// The logical types this package recognizes.
const (
	DecimalType     LogicalTypeName = "decimal"
	UUID            LogicalTypeName = "uuid"
	Date            LogicalTypeName = "date"
	TimeMillis      LogicalTypeName = "time-millis"
	TimeMicros      LogicalTypeName = "time-micros"
	TimestampMillis LogicalTypeName = "timestamp-millis"
	TimestampMicros LogicalTypeName = "timestamp-micros"
	DurationType    LogicalTypeName = "duration"
)

// LogicalType is a semantic refinement layered over a base schema, e.g.
// decimal over bytes/fixed, uuid over string.
type LogicalType struct {
	name      LogicalTypeName
	precision int
	scale     int
}

// NewDecimalLogicalType constructs a decimal logical type with the given
// precision (informational upper bound) and scale (decimal point
// position).
func NewDecimalLogicalType(precision, scale int) *LogicalType {
	return &LogicalType{name: DecimalType, precision: precision, scale: scale}
}

// NewPrimitiveLogicalType constructs a logical type with no further
// attributes (uuid, date, the time/timestamp variants, duration).
func NewPrimitiveLogicalType(name LogicalTypeName) *LogicalType {
	return &LogicalType{name: name}
}

func (l *LogicalType) Type() LogicalTypeName { return l.name }
func (l *LogicalType) Precision() int        { return l.precision }
func (l *LogicalType) Scale() int            { return l.scale }

// validateBase enforces the table of which base schema each
// logical type may be layered over. size is only meaningful for Fixed
// bases (duration requires size 12).
func (l *LogicalType) validateBase(base Type, size int) error {
	switch l.name {
	case DecimalType:
		if base != Bytes && base != Fixed {
			return &InvalidSchemaError{Msg: "decimal logical type requires a bytes or fixed base"}
		}
	case UUID:
		if base != String {
			return &InvalidSchemaError{Msg: "uuid logical type requires a string base"}
		}
	case Date, TimeMillis:
		if base != Int {
			return &InvalidSchemaError{Msg: fmt.Sprintf("%s logical type requires an int base", l.name)}
		}
	case TimeMicros, TimestampMillis, TimestampMicros:
		if base != Long {
			return &InvalidSchemaError{Msg: fmt.Sprintf("%s logical type requires a long base", l.name)}
		}
	case DurationType:
		if base != Fixed || size != 12 {
			return &InvalidSchemaError{Msg: "duration logical type requires a fixed(12) base"}
		}
	default:
		return &InvalidSchemaError{Msg: fmt.Sprintf("unknown logical type %q", l.name)}
	}
	return nil
}
