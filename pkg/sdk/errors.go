package barcodex

import "github.com/kailas-cloud/barcodex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidInput         = domain.ErrInvalidInput
	ErrInvalidCode          = domain.ErrInvalidCode
	ErrUnsupportedSymbology = domain.ErrUnsupportedSymbology
	ErrRender               = domain.ErrRender
	ErrBatchExhausted       = domain.ErrBatchExhausted
	ErrAssembly             = domain.ErrAssembly
)

// BatchExhaustedError lists every skipped code of a batch that produced no files.
// Use errors.As() to retrieve it.
type BatchExhaustedError = domain.BatchExhaustedError
