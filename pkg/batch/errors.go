package batch

import (
	"errors"
	"fmt"
	"strings"
)

// Stage names the pipeline step an image failed in
type Stage string

const (
	StageLoad     Stage = "load"
	StageCrop     Stage = "crop"
	StageSpectrum Stage = "spectrum"
)

// ErrNotDirectory is returned when the input path is not a directory
var ErrNotDirectory = errors.New("input path is not a directory")

// FileError ties a pipeline failure to the image that caused it
type FileError struct {
	Path  string
	Stage Stage
	Cause error
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Path, e.Stage, e.Cause)
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	return e.Cause
}

// BatchError collects the images skipped during a run that continues on error
type BatchError struct {
	Failures []*FileError
	Total    int
}

// Error implements the error interface
func (e *BatchError) Error() string {
	msgs := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		msgs[i] = f.Error()
	}
	return fmt.Sprintf("%d of %d images failed: %s", len(e.Failures), e.Total, strings.Join(msgs, "; "))
}

// Unwrap exposes every failure to errors.Is and errors.As
func (e *BatchError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}

// IsStage checks if err carries a FileError for the given stage
func IsStage(err error, stage Stage) bool {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Stage == stage
	}
	return false
}
