package schema

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aretw0/consult/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wellsFields = []domain.InputField{
	{Name: "hr", Type: domain.InputNumber, Label: "Heart rate", Unit: "bpm"},
	{Name: "dvt", Type: domain.InputSelect, Label: "Clinical signs of DVT", Options: []domain.InputOption{
		{Label: "Yes", Value: "yes"},
		{Label: "No", Value: "no"},
	}},
	{Name: "risk", Type: domain.InputCheckbox, Label: "Risk factors", Options: []domain.InputOption{
		{Label: "Recent surgery", Value: "surgery"},
		{Label: "Malignancy", Value: "cancer"},
		{Label: "Prior VTE", Value: "vte"},
	}},
}

func TestValidate_Success(t *testing.T) {
	err := Validate(FromFields(wellsFields), map[string]any{
		"hr":   "110",
		"dvt":  "no",
		"risk": []any{"cancer"},
	})
	assert.NoError(t, err)
}

func TestValidate_MissingRequired(t *testing.T) {
	err := Validate(FromFields(wellsFields), map[string]any{"hr": 90})
	require.Error(t, err)

	var form *FormError
	require.True(t, errors.As(err, &form))
	require.Len(t, form.Fields, 1, "checkbox fields are optional")
	assert.Equal(t, "dvt", form.Fields[0].Field)
	assert.Equal(t, "required", form.Fields[0].Reason)
}

func TestValidate_Aggregates(t *testing.T) {
	err := Validate(FromFields(wellsFields), map[string]any{
		"hr":   "fast",
		"dvt":  "maybe",
		"risk": "smoking",
	})
	require.Error(t, err)

	errs := Fields(err)
	require.Len(t, errs, 3)
	// Ordered by field name.
	assert.Contains(t, errs[0].Error(), `"dvt"`)
	assert.Contains(t, errs[1].Error(), `"hr"`)
	assert.Contains(t, errs[2].Error(), `"risk"`)
}

func TestValidate_EmptySchema(t *testing.T) {
	assert.NoError(t, Validate(nil, map[string]any{"x": 1}))
}

func TestValidateFields_NotDefined(t *testing.T) {
	err := ValidateFields(FromFields(wellsFields), map[string]any{}, "spo2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not defined in schema")
}

func TestCanonical(t *testing.T) {
	answer, err := Canonical(wellsFields, map[string]any{
		"risk": "vte,surgery",
		"dvt":  "yes",
		"hr":   float64(104),
	})
	require.NoError(t, err)
	assert.Equal(t, "hr=104; dvt=yes; risk=surgery,vte", answer)

	answer, err = Canonical(wellsFields, map[string]any{"hr": "88.5", "dvt": "no"})
	require.NoError(t, err)
	assert.Equal(t, "hr=88.5; dvt=no", answer)
}

func TestCanonical_RejectsUnknownField(t *testing.T) {
	_, err := Canonical(wellsFields, map[string]any{"hr": 90, "dvt": "no", "spo2": 91})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an input of this node")
}

func TestCanonical_LabelsFieldErrors(t *testing.T) {
	_, err := Canonical(wellsFields, map[string]any{"hr": "NaN", "dvt": "no"})
	require.Error(t, err)

	fields := Fields(fmt.Errorf("submit: %w", err))
	require.Len(t, fields, 1)
	assert.Equal(t, "hr", fields[0].Field)
	assert.Equal(t, wellsFields[0].Label, fields[0].Label)
	assert.Contains(t, err.Error(), "Heart rate [hr]")
	assert.Contains(t, err.Error(), "finite")
}

func TestFields_NotAFormError(t *testing.T) {
	assert.Nil(t, Fields(errors.New("boom")))
	assert.Nil(t, Fields(nil))
}

func TestFromFields_UnsupportedType(t *testing.T) {
	s := FromFields([]domain.InputField{{Name: "x", Type: "slider"}})
	err := Validate(s, map[string]any{"x": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported input type")
}
