// Package validation provides common validation utilities for the framepipe library.
package validation

import (
	"fmt"
	"math"

	gferrors "github.com/vnykmshr/framepipe/pkg/common/errors"
)

// ValidatePositive validates that an integer value is positive (> 0).
// Returns a ValidationError if the value is not positive.
func ValidatePositive(module, field string, value int) error {
	if value <= 0 {
		return gferrors.NewValidationError(module, field, value, "must be positive").
			WithHint("value must be greater than 0")
	}
	return nil
}

// ValidatePositiveFloat validates that a float64 value is positive (> 0).
// Returns a ValidationError if the value is not positive.
func ValidatePositiveFloat(module, field string, value float64) error {
	if value <= 0 {
		return gferrors.NewValidationError(module, field, value, "must be positive").
			WithHint("value must be greater than 0")
	}
	return nil
}

// ValidateNotNil validates that an interface value is not nil.
// Returns a ValidationError if the value is nil.
func ValidateNotNil(module, field string, value interface{}) error {
	if value == nil {
		return gferrors.NewValidationError(module, field, nil, "cannot be nil").
			WithHint("provide a valid " + field)
	}
	return nil
}

// ValidateOneOf validates that value is one of allowed.
func ValidateOneOf(module, field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return gferrors.NewValidationError(module, field, value, "unsupported value").
		WithHint("use one of " + joinQuoted(allowed))
}

// ValidateRGBA validates that an interleaved 8-bit RGBA buffer of the given
// dimensions holds exactly width*height*4 bytes.
func ValidateRGBA(module string, length, width, height int) error {
	if err := ValidatePositive(module, "width", width); err != nil {
		return err
	}
	if err := ValidatePositive(module, "height", height); err != nil {
		return err
	}
	if width > math.MaxInt/4/height {
		return gferrors.NewValidationError(module, "dimensions", fmt.Sprintf("%dx%d", width, height),
			"byte size overflows int")
	}
	if length != width*height*4 {
		return gferrors.NewValidationError(module, "pixels", length, "buffer length mismatch").
			WithHint("expected width*height*4 bytes of RGBA data")
	}
	return nil
}

func joinQuoted(values []string) string {
	out := ""
	for i, v := range values {
		if i > 0 {
			out += ", "
		}
		out += "\"" + v + "\""
	}
	return out
}
