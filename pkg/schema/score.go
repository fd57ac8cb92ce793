package schema

import (
	"fmt"
	"strconv"

	"github.com/aretw0/consult/pkg/domain"
)

// FromScoreFields derives a Schema from the criteria of a calculator.
// Toggles may be omitted; number and select criteria are required.
func FromScoreFields(fields []domain.ScoreField) Schema {
	s := make(Schema, len(fields))
	for _, f := range fields {
		switch f.Type {
		case domain.ScoreToggle:
			s[f.Name] = Toggle()
		case domain.ScoreNumber:
			s[f.Name] = Number()
		case domain.ScoreSelect:
			labels := make([]string, len(f.Options))
			for i, o := range f.Options {
				labels[i] = o.Label
			}
			s[f.Name] = Select(labels...)
		default:
			s[f.Name] = Custom(string(f.Type), func(any) error {
				return fmt.Errorf("unsupported criterion type %q", f.Type)
			})
		}
	}
	return s
}

// Score validates values against calc and sums the points of every criterion.
// Select criteria take the label of the chosen option.
func Score(calc *domain.Calculator, values map[string]any) (*domain.CalculatorResult, error) {
	s := FromScoreFields(calc.Fields)
	labels := make(map[string]string, len(calc.Fields))
	for _, f := range calc.Fields {
		labels[f.Name] = f.Label
	}

	var errs []*FieldError
	for _, name := range sortedNames(values) {
		if _, ok := s[name]; !ok {
			errs = append(errs, &FieldError{Field: name, Reason: "not a criterion of this calculator"})
		}
	}
	if len(errs) > 0 {
		return nil, &FormError{Fields: errs}
	}
	if err := Validate(s, values); err != nil {
		return nil, label(err, labels)
	}

	res := &domain.CalculatorResult{
		CalculatorID:  calc.ID,
		Title:         calc.Title,
		ThresholdNote: calc.ThresholdNote,
		Items:         make([]domain.FieldScore, 0, len(calc.Fields)),
	}
	for _, f := range calc.Fields {
		item := domain.FieldScore{Name: f.Name, Label: f.Label}
		v := values[f.Name]
		switch f.Type {
		case domain.ScoreToggle:
			on, _ := AsToggle(v)
			item.Answer = "no"
			if on {
				item.Answer = "yes"
				item.Points = f.Points
			}
		case domain.ScoreNumber:
			n, _ := AsNumber(v)
			item.Answer = strconv.FormatFloat(n, 'f', -1, 64)
			if f.ValueIsPoints {
				item.Points = n
			} else {
				item.Points = n * f.Points
			}
		case domain.ScoreSelect:
			item.Answer = fmt.Sprint(v)
			for _, o := range f.Options {
				if o.Label == item.Answer {
					item.Points = o.Points
					break
				}
			}
		}
		res.Score += item.Points
		res.Items = append(res.Items, item)
	}

	if band, ok := calc.Band(res.Score); ok {
		b := *band
		res.Band = &b
	}
	return res, nil
}
