package validator_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rqueue/pkg/validator"
)

func TestValidationErrors_Error(t *testing.T) {
	t.Parallel()

	t.Run("returns default message when no errors", func(t *testing.T) {
		var errs validator.ValidationErrors
		assert.Equal(t, "validation failed", errs.Error())
	})

	t.Run("joins field messages", func(t *testing.T) {
		var errs validator.ValidationErrors
		errs.Add(validator.ValidationError{Field: "contents", Message: "field is required"})
		errs.Add(validator.ValidationError{Field: "priority", Message: "must be between 0 and 255"})

		assert.Equal(t,
			"validation failed: contents: field is required; priority: must be between 0 and 255",
			errs.Error())
	})
}

func TestValidationErrors_Accessors(t *testing.T) {
	t.Parallel()

	var errs validator.ValidationErrors
	errs.Add(validator.ValidationError{Field: "digest", Message: "too short"})
	errs.Add(validator.ValidationError{Field: "digest", Message: "not hex"})
	errs.Add(validator.ValidationError{Field: "contents", Message: "field is required"})

	assert.True(t, errs.Has("digest"))
	assert.False(t, errs.Has("priority"))
	assert.Equal(t, []string{"too short", "not hex"}, errs.Get("digest"))
	assert.Equal(t, []string{"digest", "contents"}, errs.Fields())
	assert.Equal(t, map[string][]string{
		"digest":   {"too short", "not hex"},
		"contents": {"field is required"},
	}, errs.Map())
	assert.False(t, errs.IsEmpty())

	var empty validator.ValidationErrors
	assert.Nil(t, empty.Map())
}

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("nil when all rules pass", func(t *testing.T) {
		err := validator.Apply(
			validator.NotEmpty("contents", "hello"),
			validator.InRange("priority", 10, 0, 255),
		)
		assert.NoError(t, err)
	})

	t.Run("collects every failure", func(t *testing.T) {
		err := validator.Apply(
			validator.NotEmpty("contents", ""),
			validator.InRange("priority", 300, 0, 255),
			validator.NotEmpty("label", "ok"),
		)
		require.Error(t, err)

		verrs := validator.ExtractValidationErrors(err)
		require.Len(t, verrs, 2)
		assert.Equal(t, []string{"contents", "priority"}, verrs.Fields())
		assert.Equal(t, "validation.range", verrs[1].Key)
	})
}

func TestExtractValidationErrors(t *testing.T) {
	t.Parallel()

	assert.Nil(t, validator.ExtractValidationErrors(nil))
	assert.Nil(t, validator.ExtractValidationErrors(errors.New("boom")))

	wrapped := fmt.Errorf("submit: %w", validator.Apply(validator.NotEmpty("contents", "")))
	verrs := validator.ExtractValidationErrors(wrapped)
	require.Len(t, verrs, 1)
	assert.Equal(t, "contents", verrs[0].Field)

	assert.True(t, validator.IsValidationError(wrapped))
	assert.False(t, validator.IsValidationError(errors.New("boom")))
	assert.False(t, validator.IsValidationError(nil))
}

func TestNotEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, validator.NotEmpty("contents", " ").Check())
	assert.False(t, validator.NotEmpty("contents", "").Check())
}

func TestMaxLen(t *testing.T) {
	t.Parallel()

	assert.True(t, validator.MaxLen("contents", "abc", 3).Check())
	assert.False(t, validator.MaxLen("contents", "abcd", 3).Check())
}

func TestInRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value int
		want  bool
	}{
		{"lower bound", 0, true},
		{"upper bound", 255, true},
		{"below", -1, false},
		{"above", 256, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validator.InRange("priority", tt.value, 0, 255).Check())
		})
	}
}
