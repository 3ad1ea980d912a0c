package avro

import (
	"fmt"
	"strings"
)

// InvalidNameError reports a name or full name that fails the Avro name
// grammar ([A-Za-z_][A-Za-z0-9_]*, dot-separated for namespaces).
type InvalidNameError struct {
	Name string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("avro: invalid name %q", e.Name)
}

// InvalidSymbolError reports an enum symbol that is not a valid identifier.
type InvalidSymbolError struct {
	Symbol string
}

func (e *InvalidSymbolError) Error() string {
	return fmt.Sprintf("avro: invalid enum symbol %q", e.Symbol)
}

// InvalidSchemaError reports a structural schema violation: duplicate
// names, union rule breaks, logical-type/base-type mismatches, and
// similar.
type InvalidSchemaError struct {
	Msg string
}

func (e *InvalidSchemaError) Error() string {
	return "avro: invalid schema: " + e.Msg
}

// ConflictingSchemaError reports a full name defined twice in the same
// parse with structurally distinct definitions.
type ConflictingSchemaError struct {
	FullName string
}

func (e *ConflictingSchemaError) Error() string {
	return fmt.Sprintf("avro: conflicting schema definitions for %q", e.FullName)
}

// UnknownSchemaError wraps the reasons every reader case rejected a JSON
// node as not applicable.
type UnknownSchemaError struct {
	Reasons []error
}

func (e *UnknownSchemaError) Error() string {
	msgs := make([]string, len(e.Reasons))
	for i, r := range e.Reasons {
		msgs[i] = r.Error()
	}
	return "avro: unknown schema: " + strings.Join(msgs, "; ")
}

func (e *UnknownSchemaError) Unwrap() []error { return e.Reasons }

// UnsupportedSchemaError reports a well-formed schema no codec-builder
// case could handle.
type UnsupportedSchemaError struct {
	Msg string
}

func (e *UnsupportedSchemaError) Error() string {
	return "avro: unsupported schema: " + e.Msg
}

// UnsupportedTypeError reports a host Go type the resolver could not
// describe, or a resolution incompatible with the target schema.
type UnsupportedTypeError struct {
	Msg string
}

func (e *UnsupportedTypeError) Error() string {
	return "avro: unsupported type: " + e.Msg
}

// InvalidDataError reports a binary decode that violated the schema:
// truncation, an out-of-range union/enum index, non-UTF-8 string data,
// or a wire-format header mismatch.
type InvalidDataError struct {
	Msg string
}

func (e *InvalidDataError) Error() string {
	return "avro: invalid data: " + e.Msg
}

func invalidData(format string, args ...interface{}) error {
	return &InvalidDataError{Msg: fmt.Sprintf(format, args...)}
}

func unsupportedType(format string, args ...interface{}) error {
	return &UnsupportedTypeError{Msg: fmt.Sprintf(format, args...)}
}
