package schema

import (
	"errors"
	"fmt"
	"strings"
)

// FieldError reports why one submitted value was refused.
type FieldError struct {
	Field  string `json:"field"`           // input name
	Label  string `json:"label,omitempty"` // operator-facing label, when known
	Reason string `json:"reason"`
	Value  any    `json:"-"`
}

func (e *FieldError) Error() string {
	if e.Label != "" && e.Label != e.Field {
		return fmt.Sprintf("%s [%s]: %s", e.Label, e.Field, e.Reason)
	}
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

// FormError collects every refused field of one submission.
type FormError struct {
	Fields []*FieldError
}

func (e *FormError) Error() string {
	if len(e.Fields) == 1 {
		return e.Fields[0].Error()
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return fmt.Sprintf("%d invalid fields: %s", len(e.Fields), strings.Join(msgs, "; "))
}

// Fields returns the refused fields carried by err, wrapped or not.
// It returns nil when err holds no field errors.
func Fields(err error) []*FieldError {
	var form *FormError
	if errors.As(err, &form) {
		return form.Fields
	}
	var field *FieldError
	if errors.As(err, &field) {
		return []*FieldError{field}
	}
	return nil
}

// label fills in operator-facing labels from a field name lookup.
func label(err error, labels map[string]string) error {
	for _, f := range Fields(err) {
		if f.Label == "" {
			f.Label = labels[f.Field]
		}
	}
	return err
}
