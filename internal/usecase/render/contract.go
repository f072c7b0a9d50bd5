package render

import (
	"context"

	domrender "github.com/kailas-cloud/barcodex/internal/domain/render"
)

// RasterRenderer draws a symbol as PNG.
type RasterRenderer interface {
	RenderPNG(ctx context.Context, spec domrender.Spec) ([]byte, error)
}

// VectorRenderer draws a symbol as SVG markup.
type VectorRenderer interface {
	RenderSVG(ctx context.Context, spec domrender.Spec) ([]byte, error)
}

// FallbackRenderer draws arbitrary text as a generic linear barcode PNG.
type FallbackRenderer interface {
	RenderPNG(ctx context.Context, text string) ([]byte, error)
}
