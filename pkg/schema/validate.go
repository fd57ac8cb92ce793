package schema

import "sort"

// Schema is a map of field names to their expected types.
// Example: {"age": Number(), "shock": Select("yes", "no")}
type Schema map[string]Type

// Validate checks if data conforms to the schema.
// Returns an error with all validation failures found, ordered by field name.
func Validate(schema Schema, data map[string]any) error {
	if len(schema) == 0 {
		// No schema = no validation
		return nil
	}

	names := make([]string, 0, len(schema))
	for name := range schema {
		names = append(names, name)
	}
	sort.Strings(names)

	return ValidateFields(schema, data, names...)
}

// ValidateFields validates only specific fields from data against the schema.
// Missing fields are an error unless their type is optional.
func ValidateFields(schema Schema, data map[string]any, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}

	var errs []*FieldError

	for _, fieldName := range fields {
		fieldType, exists := schema[fieldName]
		if !exists {
			errs = append(errs, &FieldError{
				Field:  fieldName,
				Reason: "not defined in schema",
			})
			continue
		}

		value, fieldExists := data[fieldName]
		if !fieldExists {
			if _, ok := fieldType.(optionalType); ok {
				continue
			}
			errs = append(errs, &FieldError{
				Field:  fieldName,
				Reason: "required",
			})
			continue
		}

		if err := fieldType.Validate(value); err != nil {
			errs = append(errs, &FieldError{
				Field:  fieldName,
				Reason: err.Error(),
				Value:  value,
			})
		}
	}

	if len(errs) > 0 {
		return &FormError{Fields: errs}
	}

	return nil
}
