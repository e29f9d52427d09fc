package validator

import "fmt"

// NotEmpty fails for a zero-length string. Whitespace counts as content.
func NotEmpty(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return len(value) > 0
		},
		Error: ValidationError{
			Field:   field,
			Message: "field is required",
			Key:     "validation.required",
		},
	}
}

func MaxLen(field, value string, max int) Rule {
	return Rule{
		Check: func() bool {
			return len(value) <= max
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be at most %d bytes long", max),
			Key:     "validation.max_length",
			Params:  map[string]any{"max": max},
		},
	}
}

// InRange validates min <= value <= max.
func InRange[T Numeric](field string, value, min, max T) Rule {
	return Rule{
		Check: func() bool {
			return value >= min && value <= max
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be between %v and %v", min, max),
			Key:     "validation.range",
			Params:  map[string]any{"min": min, "max": max},
		},
	}
}
