// Package linear is the generic fallback raster renderer. It draws any text as
// Code 128 on a fixed canvas and does not preserve the requested symbology.
package linear

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/boombuler/barcode/code128"

	"github.com/kailas-cloud/barcodex/internal/domain/render"
	"github.com/kailas-cloud/barcodex/internal/metrics"
	"github.com/kailas-cloud/barcodex/internal/transport/raster"
)

// Fixed visual parameters of the fallback image.
const (
	CanvasWidth  = 400
	CanvasHeight = 160
	Margin       = 10
)

const rendererLabel = "fallback"

// Renderer draws Code 128 images.
type Renderer struct{}

// New creates the fallback renderer.
func New() *Renderer { return &Renderer{} }

// RenderPNG encodes text as Code 128 and returns PNG bytes.
func (r *Renderer) RenderPNG(ctx context.Context, text string) (data []byte, err error) {
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.RenderRequestsTotal.WithLabelValues(rendererLabel, string(render.PNG), status).Inc()
		metrics.RenderDuration.WithLabelValues(rendererLabel, string(render.PNG)).Observe(time.Since(start).Seconds())
	}()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fallback render: %w", err)
	}
	bc, err := code128.Encode(text)
	if err != nil {
		return nil, fmt.Errorf("code128 %q: %w", text, err)
	}

	canvas, err := raster.NewCanvas(CanvasWidth, CanvasHeight, color.Black, color.White)
	if err != nil {
		return nil, err
	}

	b := bc.Bounds()
	n := b.Dx()
	if n == 0 {
		return nil, fmt.Errorf("code128 %q: empty symbol", text)
	}
	barsW := CanvasWidth - 2*Margin
	barsH := CanvasHeight - 2*Margin - raster.CaptionHeight
	// modules are stretched across the fixed width; each edge is rounded independently
	for x := 0; x < n; x++ {
		if !raster.Dark(bc.At(b.Min.X+x, b.Min.Y)) {
			continue
		}
		x0 := Margin + x*barsW/n
		x1 := Margin + (x+1)*barsW/n
		if x1 == x0 {
			x1++
		}
		canvas.FillRect(image.Rect(x0, Margin, x1, Margin+barsH))
	}
	canvas.DrawCaption(text, CanvasWidth/2, CanvasHeight-Margin-3)
	return canvas.EncodePNG()
}
