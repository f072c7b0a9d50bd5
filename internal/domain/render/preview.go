package render

import (
	"context"

	"github.com/kailas-cloud/barcodex/internal/domain/symbology"
)

// PreviewRequest asks for a single rendered code.
type PreviewRequest struct {
	Code    string
	Options Options
}

// Preview is a rendered code encoded as a data URI.
type Preview struct {
	Image     string        `json:"image"`
	Code      string        `json:"code"`
	Symbology symbology.Key `json:"type"`
	Format    Format        `json:"format"`
}

// Previewer renders single codes for display.
type Previewer interface {
	Preview(ctx context.Context, req PreviewRequest) (*Preview, error)
}
