package models

import (
	"errors"
	"fmt"
)

// ErrorKind tags a pipeline failure.
type ErrorKind string

const (
	KindUnknownStrategy       ErrorKind = "UnknownStrategy"
	KindUnknownModel          ErrorKind = "UnknownModel"
	KindModelArtifactNotFound ErrorKind = "ModelArtifactNotFound"
	KindMissingInstrument     ErrorKind = "MissingInstrument"
	KindFeatureCountMismatch  ErrorKind = "FeatureCountMismatch"
	KindDegenerateColumn      ErrorKind = "DegenerateColumn"
	KindInferenceError        ErrorKind = "InferenceError"
	KindEmptyTimeline         ErrorKind = "EmptyTimeline"
	KindDataFetchError        ErrorKind = "DataFetchError"
	KindInvalidArgument       ErrorKind = "InvalidArgument"
	KindInternal              ErrorKind = "InternalError"
)

// PipelineError is the single error type surfaced by the prediction pipeline.
type PipelineError struct {
	Kind    ErrorKind
	Message string
	Params  map[string]any
	Err     error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *PipelineError) Unwrap() error { return e.Err }

// KindOf returns the kind of the first PipelineError in err's chain.
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindInternal
}

// AsPipelineError returns the first PipelineError in err's chain.
func AsPipelineError(err error) (*PipelineError, bool) {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

func ErrUnknownStrategy(id string) *PipelineError {
	return &PipelineError{
		Kind:    KindUnknownStrategy,
		Message: fmt.Sprintf("Invalid strategy: %s", id),
		Params:  map[string]any{"strategy": id},
	}
}

func ErrUnknownModel(name string) *PipelineError {
	return &PipelineError{
		Kind:    KindUnknownModel,
		Message: fmt.Sprintf("Invalid model: %s", name),
		Params:  map[string]any{"model": name},
	}
}

func ErrModelArtifactNotFound(path string) *PipelineError {
	return &PipelineError{
		Kind:    KindModelArtifactNotFound,
		Message: fmt.Sprintf("Model file not found: %s", path),
		Params:  map[string]any{"path": path},
	}
}

func ErrMissingInstrument(instrument string) *PipelineError {
	return &PipelineError{
		Kind:    KindMissingInstrument,
		Message: fmt.Sprintf("Missing required feature: %s", instrument),
		Params:  map[string]any{"instrument": instrument},
	}
}

func ErrFeatureCountMismatch(actual, expected int) *PipelineError {
	return &PipelineError{
		Kind:    KindFeatureCountMismatch,
		Message: fmt.Sprintf("Feature count mismatch: got %d, expected %d", actual, expected),
		Params:  map[string]any{"actual": actual, "expected": expected},
	}
}

func ErrDegenerateColumn(column string) *PipelineError {
	return &PipelineError{
		Kind:    KindDegenerateColumn,
		Message: fmt.Sprintf("Column %s has zero standard deviation", column),
		Params:  map[string]any{"column": column},
	}
}

func ErrInference(msg string, err error) *PipelineError {
	return &PipelineError{Kind: KindInferenceError, Message: msg, Err: err}
}

func ErrEmptyTimeline() *PipelineError {
	return &PipelineError{Kind: KindEmptyTimeline, Message: "Daily timeline is empty"}
}

func ErrDataFetch(msg string, err error) *PipelineError {
	return &PipelineError{Kind: KindDataFetchError, Message: msg, Err: err}
}

func ErrInvalidArgument(field, msg string) *PipelineError {
	return &PipelineError{
		Kind:    KindInvalidArgument,
		Message: msg,
		Params:  map[string]any{"field": field},
	}
}
