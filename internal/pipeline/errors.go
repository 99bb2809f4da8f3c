package pipeline

import (
	"errors"
	"fmt"
)

// ErrNoImage is returned when ProcessImage is called without an image.
var ErrNoImage = errors.New("no image")

// LoadError reports an image that could not be read or decoded. It is the only
// fatal error of a run.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// StageError reports a failure inside one stage. Stage errors are recorded in
// Result.Warnings and the run continues with whatever the stage produced.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
