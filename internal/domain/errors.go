package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput signals a request with no usable codes.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidCode signals a code that fails the digit or length rule.
	ErrInvalidCode = errors.New("invalid data")
	// ErrUnsupportedSymbology signals a symbology missing from the render table.
	ErrUnsupportedSymbology = errors.New("unsupported symbology")
	// ErrRender signals a rendering capability failure.
	ErrRender = errors.New("render failed")
	// ErrBatchExhausted signals a batch that produced no files at all.
	ErrBatchExhausted = errors.New("no barcodes were generated")
	// ErrAssembly signals an archive that could not be finalized.
	ErrAssembly = errors.New("archive assembly failed")
)

// RenderError wraps ErrRender with the output format that failed.
type RenderError struct {
	Format string
	Err    error
}

func (e *RenderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Format, ErrRender.Error())
	}
	return fmt.Sprintf("%s %s: %s", e.Format, ErrRender.Error(), e.Err.Error())
}

// Is reports ErrRender so callers can match either the sentinel or the cause.
func (e *RenderError) Is(target error) bool { return target == ErrRender }

func (e *RenderError) Unwrap() error { return e.Err }

// NewRenderError creates a render error for the given format.
func NewRenderError(format string, err error) error {
	return &RenderError{Format: format, Err: err}
}

// ItemError is one skipped code with a human-readable reason.
type ItemError struct {
	Code   string
	Reason string
}

// BatchExhaustedError wraps ErrBatchExhausted with every per-item failure.
type BatchExhaustedError struct {
	Failures []ItemError
}

func (e *BatchExhaustedError) Error() string {
	return fmt.Sprintf("%s: %d codes failed", ErrBatchExhausted.Error(), len(e.Failures))
}

func (e *BatchExhaustedError) Unwrap() error { return ErrBatchExhausted }

// NewBatchExhausted creates a batch exhaustion error.
func NewBatchExhausted(failures []ItemError) error {
	return &BatchExhaustedError{Failures: failures}
}
