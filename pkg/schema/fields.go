package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/consult/pkg/domain"
)

// FromFields derives a Schema from the fields of an input node.
func FromFields(fields []domain.InputField) Schema {
	s := make(Schema, len(fields))
	for _, f := range fields {
		switch f.Type {
		case domain.InputNumber:
			s[f.Name] = Number()
		case domain.InputSelect:
			s[f.Name] = Select(optionValues(f)...)
		case domain.InputCheckbox:
			s[f.Name] = Checkbox(optionValues(f)...)
		default:
			s[f.Name] = Custom(string(f.Type), func(any) error {
				return fmt.Errorf("unsupported input type %q", f.Type)
			})
		}
	}
	return s
}

// Canonical validates values against fields and renders them as
// "name=value; name=value" in field order. Values for unknown names are rejected.
func Canonical(fields []domain.InputField, values map[string]any) (string, error) {
	s := FromFields(fields)
	labels := make(map[string]string, len(fields))
	for _, f := range fields {
		labels[f.Name] = f.Label
	}

	var errs []*FieldError
	for _, name := range sortedNames(values) {
		if _, ok := s[name]; !ok {
			errs = append(errs, &FieldError{Field: name, Reason: "not an input of this node"})
		}
	}
	if len(errs) > 0 {
		return "", &FormError{Fields: errs}
	}

	if err := Validate(s, values); err != nil {
		return "", label(err, labels)
	}

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		v, ok := values[f.Name]
		if !ok {
			continue
		}
		parts = append(parts, f.Name+"="+formatValue(f, v))
	}
	return strings.Join(parts, "; "), nil
}

func formatValue(f domain.InputField, v any) string {
	switch f.Type {
	case domain.InputNumber:
		n, _ := AsNumber(v)
		return strconv.FormatFloat(n, 'f', -1, 64)
	case domain.InputCheckbox:
		picked, _ := AsList(v)
		// Ticked boxes are listed in option order.
		var ordered []string
		for _, o := range f.Options {
			if contains(picked, o.Value) {
				ordered = append(ordered, o.Value)
			}
		}
		return strings.Join(ordered, ",")
	default:
		return fmt.Sprint(v)
	}
}

func sortedNames(values map[string]any) []string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func optionValues(f domain.InputField) []string {
	out := make([]string, len(f.Options))
	for i, o := range f.Options {
		out[i] = o.Value
	}
	return out
}
