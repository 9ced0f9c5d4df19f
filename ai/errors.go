package ai

import "errors"

var (
	// ErrDerivation is returned when a deriver fails to annotate a record.
	ErrDerivation = errors.New("derivation failed")

	// ErrInvalidAnnotation is returned when an annotation is not a JSON object.
	ErrInvalidAnnotation = errors.New("invalid annotation")

	// ErrInvalidMaxAttempts is returned when retry is configured with fewer than one attempt.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)
