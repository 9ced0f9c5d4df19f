package ai

import (
	"encoding/json"
	"fmt"
)

// Annotation is the JSON object derived for a normalized record.
type Annotation map[string]any

// Encode serializes the annotation for storage.
// A nil annotation encodes as an empty object.
func (a Annotation) Encode() (string, error) {
	if a == nil {
		return "{}", nil
	}
	data, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidAnnotation, err)
	}
	return string(data), nil
}

// DecodeAnnotation parses a stored annotation.
func DecodeAnnotation(s string) (Annotation, error) {
	var a Annotation
	if err := json.Unmarshal([]byte(s), &a); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAnnotation, err)
	}
	if a == nil {
		return nil, fmt.Errorf("%w: not an object", ErrInvalidAnnotation)
	}
	return a, nil
}
