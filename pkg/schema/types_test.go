package schema

import (
	"encoding/json"
	"math"
	"testing"
)

func TestNumberType(t *testing.T) {
	typ := Number()

	if typ.Name() != "number" {
		t.Errorf("Name() = %q, want %q", typ.Name(), "number")
	}

	tests := []struct {
		value   any
		wantErr bool
	}{
		{42, false},
		{int64(42), false},
		{float64(42.5), false},
		{json.Number("7.25"), false},
		{"120", false},
		{" 3.5 ", false},
		{"abc", true},
		{true, true},
		{nil, true},
		{"NaN", true},
		{"Inf", true},
		{"-Infinity", true},
		{"1e400", true},
		{json.Number("NaN"), true},
		{math.NaN(), true},
		{math.Inf(1), true},
		{float32(math.Inf(-1)), true},
	}

	for _, tt := range tests {
		err := typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestSelectType(t *testing.T) {
	typ := Select("yes", "no")

	tests := []struct {
		value   any
		wantErr bool
	}{
		{"yes", false},
		{"no", false},
		{"maybe", true},
		{"", true},
		{1, true},
	}

	for _, tt := range tests {
		err := typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestCheckboxType(t *testing.T) {
	typ := Checkbox("hypotension", "hypoxia", "rv_strain")

	tests := []struct {
		value   any
		wantErr bool
	}{
		{[]string{"hypoxia"}, false},
		{[]any{"hypotension", "rv_strain"}, false},
		{"hypoxia, rv_strain", false},
		{"", false},
		{[]string{}, false},
		{[]string{"fever"}, true},
		{[]any{1}, true},
		{42, true},
	}

	for _, tt := range tests {
		err := typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestToggleType(t *testing.T) {
	typ := Toggle()

	tests := []struct {
		value any
		want  bool
		err   bool
	}{
		{true, true, false},
		{false, false, false},
		{"yes", true, false},
		{"No", false, false},
		{" on ", true, false},
		{"0", false, false},
		{1, true, false},
		{float64(0), false, false},
		{nil, false, false},
		{2, false, true},
		{"maybe", false, true},
		{math.NaN(), false, true},
	}

	for _, tt := range tests {
		got, err := AsToggle(tt.value)
		if (err != nil) != tt.err {
			t.Errorf("AsToggle(%v) error = %v, wantErr %v", tt.value, err, tt.err)
			continue
		}
		if got != tt.want {
			t.Errorf("AsToggle(%v) = %v, want %v", tt.value, got, tt.want)
		}
		if (typ.Validate(tt.value) != nil) != tt.err {
			t.Errorf("Validate(%v) disagrees with AsToggle", tt.value)
		}
	}
}

func TestCustomType(t *testing.T) {
	positive := Custom("positive", func(v any) error {
		f, err := AsNumber(v)
		if err != nil {
			return err
		}
		if f <= 0 {
			return &FieldError{Field: "value", Reason: "must be positive"}
		}
		return nil
	})

	if positive.Name() != "positive" {
		t.Errorf("Name() = %q, want %q", positive.Name(), "positive")
	}
	if err := positive.Validate(3); err != nil {
		t.Errorf("Validate(3) error = %v", err)
	}
	if err := positive.Validate(-1); err == nil {
		t.Error("Validate(-1) should fail")
	}
}

func TestAsList(t *testing.T) {
	got, err := AsList("a, b,c")
	if err != nil {
		t.Fatalf("AsList error = %v", err)
	}
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("AsList = %v", got)
	}

	got, err = AsList(nil)
	if err != nil || got != nil {
		t.Errorf("AsList(nil) = %v, %v", got, err)
	}
}
