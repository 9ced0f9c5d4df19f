package ingestion

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreRequired is returned when a pipeline is built without a store.
	ErrStoreRequired = errors.New("store required")

	// ErrRepositoryRequired is returned when a stage is built without its repositories.
	ErrRepositoryRequired = errors.New("repository required")

	// ErrDeriverRequired is returned when an enricher is built without a deriver.
	ErrDeriverRequired = errors.New("deriver required")

	// ErrCoercion is returned when a value cannot be coerced to a column type.
	ErrCoercion = errors.New("coercion failed")
)

// Stage names one pass of the pipeline.
type Stage string

const (
	StageIngest    Stage = "bronze ingestion"
	StageNormalize Stage = "silver transformation"
	StageEnrich    Stage = "gold enrichment"
)

// Result counts the records a stage handled.
type Result struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// StageError reports a stage that stopped early, with the counts it
// reached before failing.
type StageError struct {
	Stage  Stage
	Result Result
	Err    error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageError(stage Stage, result Result, err error) *StageError {
	return &StageError{Stage: stage, Result: result, Err: err}
}
