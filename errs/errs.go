// Package errs defines the error categories shared by the synthesis engine. Every
// specific error returned by the engine packages wraps exactly one of these so
// callers can branch with errors.Is on the category or on the specific error.
package errs

import "errors"

var (
	// ErrConfiguration covers invalid date ranges, generator parameters, polynomial
	// degrees and cadences.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidArgument covers invalid call arguments such as negative contributions
	// or a non-positive forecast horizon.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInsufficientData is returned when there are too few observations for the
	// requested fit.
	ErrInsufficientData = errors.New("insufficient data")
)
