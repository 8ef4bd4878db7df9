package edgemap

import (
	"errors"
	"fmt"
)

// The three failure kinds a pipeline call can end with.
var (
	ErrValidation          = errors.New("validation failure")
	ErrResourceAcquisition = errors.New("resource acquisition failure")
	ErrProcessing          = errors.New("processing failure")
)

var (
	ErrEmptyBuffer         = errors.New("empty buffer")
	ErrUnsupportedFormat   = errors.New("unsupported pixel format")
	ErrUnsupportedChannels = errors.New("unsupported channel count")
	ErrDimensionMismatch   = errors.New("input and output dimensions differ")
	ErrBufferTooSmall      = errors.New("pixel memory is smaller than the described geometry")
	ErrScopeReleased       = errors.New("scope already released")
)

// PipelineError carries the failure kind, the step which failed and the underlying reason.
// Both the kind and the reason can be matched with errors.Is.
type PipelineError struct {
	Kind error
	Op   string
	Err  error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *PipelineError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func validationErr(op string, err error) error {
	return &PipelineError{Kind: ErrValidation, Op: op, Err: err}
}

func acquisitionErr(op string, err error) error {
	return &PipelineError{Kind: ErrResourceAcquisition, Op: op, Err: err}
}

func processingErr(op string, err error) error {
	return &PipelineError{Kind: ErrProcessing, Op: op, Err: err}
}
