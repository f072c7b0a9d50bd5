package batch

import "github.com/kailas-cloud/barcodex/internal/domain"

// Success is a code rendered to a file inside the batch directory.
type Success struct {
	code     string
	filename string
	path     string
}

// NewSuccess creates a successful outcome.
func NewSuccess(code, filename, path string) Success {
	return Success{code: code, filename: filename, path: path}
}

// Code returns the clean code that was rendered.
func (s Success) Code() string { return s.code }

// Filename returns the bare archive entry name.
func (s Success) Filename() string { return s.filename }

// Path returns the location of the file on disk.
func (s Success) Path() string { return s.path }

// Failure is a code that was skipped, with the reason shown to the user.
type Failure struct {
	code   string
	reason string
}

// NewFailure creates a failed outcome for the original raw code.
func NewFailure(code, reason string) Failure {
	return Failure{code: code, reason: reason}
}

// Code returns the code as submitted.
func (f Failure) Code() string { return f.code }

// Reason returns the human-readable cause.
func (f Failure) Reason() string { return f.reason }

// ItemErrors converts failures into the error list carried by domain errors.
func ItemErrors(failures []Failure) []domain.ItemError {
	out := make([]domain.ItemError, len(failures))
	for i, f := range failures {
		out[i] = domain.ItemError{Code: f.code, Reason: f.reason}
	}
	return out
}
