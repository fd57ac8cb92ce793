package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Type defines the contract for field validation.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "number", "select").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// --- Built-in Type Implementations ---

// NumberType validates finite numeric values. Numeric strings are accepted so that
// values typed at a prompt or posted as form fields validate the same way as JSON numbers.
type NumberType struct{}

func (t *NumberType) Name() string { return "number" }

func (t *NumberType) Validate(value any) error {
	_, err := AsNumber(value)
	return err
}

// ToggleType accepts a yes/no answer. An omitted toggle is off.
type ToggleType struct{}

func (t *ToggleType) Name() string { return "toggle" }

func (t *ToggleType) Validate(value any) error {
	_, err := AsToggle(value)
	return err
}

func (t *ToggleType) optional() {}

// SelectType accepts exactly one of a closed set of values.
type SelectType struct {
	values []string
}

func (t *SelectType) Name() string { return "select" }

func (t *SelectType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	if !contains(t.values, s) {
		return fmt.Errorf("%q is not one of %v", s, t.values)
	}
	return nil
}

// CheckboxType accepts any subset of a closed set of values.
// Values may be given as a list or as a comma-separated string.
type CheckboxType struct {
	values []string
}

func (t *CheckboxType) Name() string { return "checkbox" }

func (t *CheckboxType) Validate(value any) error {
	items, err := AsList(value)
	if err != nil {
		return err
	}
	for i, item := range items {
		if !contains(t.values, item) {
			return fmt.Errorf("element %d: %q is not one of %v", i, item, t.values)
		}
	}
	return nil
}

func (t *CheckboxType) optional() {}

// CustomType applies a user-defined validation function.
type CustomType struct {
	name     string
	validate func(any) error
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Validate(value any) error {
	return t.validate(value)
}

// optionalType marks types whose field may be omitted.
type optionalType interface {
	optional()
}

// --- Factory Functions ---

// Number creates a numeric type validator.
func Number() Type { return &NumberType{} }

// Toggle creates a yes/no validator.
func Toggle() Type { return &ToggleType{} }

// Select creates a single-choice validator.
func Select(values ...string) Type { return &SelectType{values: values} }

// Checkbox creates a multi-choice validator. An omitted checkbox field means no box is ticked.
func Checkbox(values ...string) Type { return &CheckboxType{values: values} }

// Custom creates a custom type validator with a user-defined function.
func Custom(name string, validate func(any) error) Type {
	return &CustomType{name: name, validate: validate}
}

// --- Coercion helpers ---

// AsNumber converts a numeric value (or a numeric string) to float64.
// NaN and the infinities are refused whatever their spelling.
func AsNumber(value any) (float64, error) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int8:
		f = float64(v)
	case int16:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("expected number, got %q", v.String())
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("expected number, got %q", v)
		}
		f = n
	default:
		return 0, fmt.Errorf("expected number, got %T", value)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("expected a finite number, got %v", value)
	}
	return f, nil
}

// AsToggle converts a yes/no answer to a bool. Besides booleans it accepts
// 1 and 0 and the words yes/no, true/false, on/off and y/n in any case.
func AsToggle(value any) (bool, error) {
	switch v := value.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "yes", "y", "true", "on", "1":
			return true, nil
		case "no", "n", "false", "off", "0", "":
			return false, nil
		}
		return false, fmt.Errorf("expected yes or no, got %q", v)
	}
	f, err := AsNumber(value)
	if err != nil || (f != 0 && f != 1) {
		return false, fmt.Errorf("expected yes or no, got %v", value)
	}
	return f == 1, nil
}

// AsList converts a list value or a comma-separated string to a slice of strings.
func AsList(value any) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("element %d: expected string, got %T", i, item)
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	default:
		return nil, fmt.Errorf("expected list, got %T", value)
	}
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
