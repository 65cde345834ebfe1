package domain

import (
	"errors"
	"fmt"
)

// PersistenceError reports a failed durable read or write of the history log
// or the model artifact.
type PersistenceError struct {
	Op   string // read, write, decode, encode, remove
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ErrInsufficientData is the sentinel matched by InsufficientDataError.
var ErrInsufficientData = errors.New("insufficient training data")

// InsufficientDataError is returned when training is requested with too few
// usable banker/player sequences.
type InsufficientDataError struct {
	Sequences int // windows that could be built
	Required  int // minimum needed to train
}

func (e *InsufficientDataError) Error() string {
	if e.Sequences == 0 {
		return "insufficient training data, add more game results"
	}
	return fmt.Sprintf("insufficient training data: have %d sequences, need at least %d", e.Sequences, e.Required)
}

func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// InferenceError wraps a runtime failure while running the trained model.
// The predictor always recovers from it with the statistical fallback.
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed: %v", e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }
