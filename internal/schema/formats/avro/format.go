package avro

import (
	"encoding/json"
	"fmt"

	"schemaregistry/internal/avro"
	"schemaregistry/internal/schema/types"
)

// Format implements types.SchemaFormat for Avro
type Format struct{}

// fieldInfo represents information about an Avro field
type fieldInfo struct {
	required bool
	type_    string
}

// New creates a new Avro format implementation
func New() *Format {
	return &Format{}
}

func (f *Format) Validate(schemaStr string) error {
	_, err := avro.Parse(schemaStr)
	if err != nil {
		return fmt.Errorf("parse schema: %w", err)
	}

	return nil
}

func (f *Format) Serialize(data interface{}, schemaStr string) ([]byte, error) {
	schema, err := avro.Parse(schemaStr)
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	native, err := f.toNative(data)
	if err != nil {
		return nil, fmt.Errorf("convert to native: %w", err)
	}

	return avro.MarshalNative(schema, native)
}

func (f *Format) Deserialize(data []byte, schemaStr string) (interface{}, error) {
	schema, err := avro.Parse(schemaStr)
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	native, err := avro.UnmarshalNative(schema, data)
	if err != nil {
		return nil, fmt.Errorf("deserialize: %w", err)
	}

	return native, nil
}

func (f *Format) CheckCompatibility(oldSchema, newSchema string, level types.CompatibilityLevel) (bool, error) {
	oldAvroSchema, err := avro.Parse(oldSchema)
	if err != nil {
		return false, fmt.Errorf("parse old schema: %w", err)
	}

	newAvroSchema, err := avro.Parse(newSchema)
	if err != nil {
		return false, fmt.Errorf("parse new schema: %w", err)
	}

	switch level {
	case types.Backward, types.BackwardTransitive:
		// New schema can read data written with old schema
		return f.isBackwardCompatible(oldAvroSchema, newAvroSchema)
	case types.Forward, types.ForwardTransitive:
		// Old schema can read data written with new schema
		return f.isForwardCompatible(oldAvroSchema, newAvroSchema)
	case types.Full, types.FullTransitive:
		// Both backward and forward compatibility
		backward, err := f.isBackwardCompatible(oldAvroSchema, newAvroSchema)
		if err != nil || !backward {
			return false, err
		}
		return f.isForwardCompatible(oldAvroSchema, newAvroSchema)
	case types.None:
		return true, nil
	default:
		return false, fmt.Errorf("unsupported compatibility level: %s", level)
	}
}

// isBackwardCompatible checks if new schema can read data written with old schema
func (f *Format) isBackwardCompatible(oldSchema, newSchema avro.Schema) (bool, error) {
	oldFields := f.getFields(oldSchema)
	newFields := f.getFields(newSchema)

	for name, oldField := range oldFields {
		newField, exists := newFields[name]
		if !exists {
			if oldField.required {
				return false, fmt.Errorf("required field %s was removed", name)
			}
			continue
		}

		if !f.isTypeCompatible(oldField.type_, newField.type_) {
			return false, fmt.Errorf("incompatible types for field %s: %s -> %s", name, oldField.type_, newField.type_)
		}

		if !oldField.required && newField.required {
			return false, fmt.Errorf("field %s became required", name)
		}
	}

	return true, nil
}

// isForwardCompatible checks if old schema can read data written with new schema
func (f *Format) isForwardCompatible(oldSchema, newSchema avro.Schema) (bool, error) {
	oldFields := f.getFields(oldSchema)
	newFields := f.getFields(newSchema)

	for name, newField := range newFields {
		oldField, exists := oldFields[name]
		if !exists {
			if newField.required {
				return false, fmt.Errorf("new required field %s was added", name)
			}
			continue
		}

		if !f.isTypeCompatible(newField.type_, oldField.type_) {
			return false, fmt.Errorf("incompatible types for field %s: %s -> %s", name, newField.type_, oldField.type_)
		}

		if oldField.required && !newField.required {
			return false, fmt.Errorf("field %s became optional", name)
		}
	}

	return true, nil
}

func (f *Format) toNative(data interface{}) (interface{}, error) {
	if _, ok := data.(map[string]interface{}); ok {
		return data, nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal to JSON: %w", err)
	}

	var native interface{}
	if err := json.Unmarshal(jsonData, &native); err != nil {
		return nil, fmt.Errorf("unmarshal to native: %w", err)
	}

	return native, nil
}

func (f *Format) getFields(schema avro.Schema) map[string]fieldInfo {
	fields := make(map[string]fieldInfo)

	recordSchema, ok := schema.(*avro.RecordSchema)
	if !ok {
		return fields
	}

	for _, field := range recordSchema.Fields() {
		name := field.Name()
		typeValue := field.Type()
		required := true // Default to required unless specified as optional

		var typeStr string
		switch t := typeValue.(type) {
		case *avro.UnionSchema:
			// Check if field is optional (union with null)
			for _, v := range t.Types() {
				if v.Type() == avro.Null {
					required = false
				} else {
					typeStr = v.String()
				}
			}
		default:
			typeStr = typeValue.String()
		}

		fields[name] = fieldInfo{
			required: required,
			type_:    typeStr,
		}
	}

	return fields
}

func (f *Format) isTypeCompatible(oldType, newType string) bool {
	oldSchema, err := avro.Parse(oldType)
	if err != nil {
		return false
	}
	newSchema, err := avro.Parse(newType)
	if err != nil {
		return false
	}

	oldTypeName := oldSchema.Type()
	newTypeName := newSchema.Type()

	switch oldTypeName {
	case avro.Null:
		return newTypeName == avro.Null
	case avro.Boolean:
		return newTypeName == avro.Boolean
	case avro.Int:
		return newTypeName == avro.Int || newTypeName == avro.Long || newTypeName == avro.Float || newTypeName == avro.Double
	case avro.Long:
		return newTypeName == avro.Long || newTypeName == avro.Float || newTypeName == avro.Double
	case avro.Float:
		return newTypeName == avro.Float || newTypeName == avro.Double
	case avro.Double:
		return newTypeName == avro.Double
	case avro.Bytes:
		return newTypeName == avro.Bytes || newTypeName == avro.String
	case avro.String:
		return newTypeName == avro.String
	case avro.Array:
		if newTypeName != avro.Array {
			return false
		}
		oldItems := oldSchema.(*avro.ArraySchema).Items()
		newItems := newSchema.(*avro.ArraySchema).Items()
		return f.isTypeCompatible(oldItems.String(), newItems.String())
	case avro.Map:
		if newTypeName != avro.Map {
			return false
		}
		oldValues := oldSchema.(*avro.MapSchema).Values()
		newValues := newSchema.(*avro.MapSchema).Values()
		return f.isTypeCompatible(oldValues.String(), newValues.String())
	case avro.Record:
		if newTypeName != avro.Record {
			return false
		}
		oldFields := oldSchema.(*avro.RecordSchema).Fields()
		newFields := newSchema.(*avro.RecordSchema).Fields()

		newFieldMap := make(map[string]*avro.Field)
		for _, field := range newFields {
			newFieldMap[field.Name()] = field
		}

		for _, oldField := range oldFields {
			newField, exists := newFieldMap[oldField.Name()]
			if !exists {
				return false
			}
			if !f.isTypeCompatible(oldField.Type().String(), newField.Type().String()) {
				return false
			}
		}
		return true
	case avro.Enum:
		if newTypeName != avro.Enum {
			return false
		}
		oldSymbols := oldSchema.(*avro.EnumSchema).Symbols()
		newSymbols := newSchema.(*avro.EnumSchema).Symbols()

		newSymbolMap := make(map[string]bool)
		for _, symbol := range newSymbols {
			newSymbolMap[symbol] = true
		}

		for _, symbol := range oldSymbols {
			if !newSymbolMap[symbol] {
				return false
			}
		}
		return true
	case avro.Union:
		if newTypeName != avro.Union {
			return false
		}
		oldTypes := oldSchema.(*avro.UnionSchema).Types()
		newTypes := newSchema.(*avro.UnionSchema).Types()

		newTypeMap := make(map[string]bool)
		for _, t := range newTypes {
			newTypeMap[t.String()] = true
		}

		for _, t := range oldTypes {
			if !newTypeMap[t.String()] {
				return false
			}
		}
		return true
	default:
		return false
	}
}
