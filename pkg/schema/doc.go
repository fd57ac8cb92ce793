// Package schema validates the values an operator submits to an input node.
//
// It defines a small type system (number, select, checkbox and toggle) and
// Schemas that map field names to types. A Schema is
// usually derived from the fields of an input node:
//
//	s := schema.FromFields(node.Inputs)
//	if err := schema.Validate(s, values); err != nil {
//	    for _, f := range schema.Fields(err) {
//	        // f.Field, f.Reason
//	    }
//	}
//
// Canonical validates the values and renders them into the stable
// "name=value; name=value" answer string recorded in a session:
//
//	answer, err := schema.Canonical(node.Inputs, map[string]any{
//	    "age":    34,
//	    "shock":  "no",
//	})
//	// answer == "age=34; shock=no"
//
// Custom validators can be registered for domain-specific checks:
//
//	positive := schema.Custom("positive", func(v any) error {
//	    f, err := schema.AsNumber(v)
//	    if err != nil {
//	        return err
//	    }
//	    if f <= 0 {
//	        return fmt.Errorf("must be positive")
//	    }
//	    return nil
//	})
package schema
