// Package validation provides common validation utilities for configuration
// parameters and caller-supplied buffers across the framepipe library.
//
// Every helper returns a *errors.ValidationError, so callers can match any
// failure with errors.Is(err, errors.ErrInvalidConfiguration).
package validation
