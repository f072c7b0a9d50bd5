package batch

import (
	"context"

	"github.com/kailas-cloud/barcodex/internal/domain/render"
)

// Renderer writes one barcode image and returns its final path.
type Renderer interface {
	Render(ctx context.Context, req render.Request) (string, error)
}
