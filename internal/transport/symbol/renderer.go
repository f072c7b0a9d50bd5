// Package symbol is the primary rendering capability: it encodes codes with
// boombuler/barcode and paints them as PNG or SVG.
package symbol

import (
	"context"
	"fmt"
	"html"
	"image"
	"strconv"
	"strings"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/ean"
	"github.com/boombuler/barcode/twooffive"

	"github.com/kailas-cloud/barcodex/internal/domain/render"
	"github.com/kailas-cloud/barcodex/internal/metrics"
	"github.com/kailas-cloud/barcodex/internal/transport/raster"
)

const rendererLabel = "primary"

// Renderer renders EAN-13 and ITF-14 symbols.
type Renderer struct{}

// New creates the primary renderer.
func New() *Renderer { return &Renderer{} }

// RenderPNG encodes spec.Text and returns PNG bytes.
func (r *Renderer) RenderPNG(ctx context.Context, spec render.Spec) (data []byte, err error) {
	start := time.Now()
	defer func() { observe(render.PNG, start, err) }()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("render png: %w", err)
	}
	g, err := layoutFor(spec)
	if err != nil {
		return nil, err
	}

	fg, err := raster.ParseHex(spec.BarColor)
	if err != nil {
		return nil, err
	}
	bg, err := raster.ParseHex(spec.Background)
	if err != nil {
		return nil, err
	}
	canvas, err := raster.NewCanvas(g.width, g.height, fg, bg)
	if err != nil {
		return nil, err
	}
	for _, rect := range g.rects {
		canvas.FillRect(rect)
	}
	if spec.IncludeText {
		canvas.DrawCaption(spec.Text, g.textX, g.textBaseline)
	}
	return canvas.EncodePNG()
}

// RenderSVG encodes spec.Text and returns SVG markup. Output is deterministic.
func (r *Renderer) RenderSVG(ctx context.Context, spec render.Spec) (data []byte, err error) {
	start := time.Now()
	defer func() { observe(render.SVG, start, err) }()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("render svg: %w", err)
	}
	g, err := layoutFor(spec)
	if err != nil {
		return nil, err
	}

	w, h := strconv.Itoa(g.width), strconv.Itoa(g.height)
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" version="1.1" width="` + w +
		`" height="` + h + `" viewBox="0 0 ` + w + " " + h + `">` + "\n")
	fmt.Fprintf(&b, "<rect x=\"0\" y=\"0\" width=\"%s\" height=\"%s\" fill=\"%s\"/>\n", w, h, spec.Background)
	for _, rect := range g.rects {
		fmt.Fprintf(&b, "<rect x=\"%d\" y=\"%d\" width=\"%d\" height=\"%d\" fill=\"%s\"/>\n",
			rect.Min.X, rect.Min.Y, rect.Dx(), rect.Dy(), spec.BarColor)
	}
	if spec.IncludeText {
		fmt.Fprintf(&b,
			"<text x=\"%d\" y=\"%d\" text-anchor=\"middle\" font-family=\"monospace\" font-size=\"13\" fill=\"%s\">%s</text>\n",
			g.textX, g.textBaseline, spec.BarColor, html.EscapeString(spec.Text))
	}
	b.WriteString("</svg>\n")
	return []byte(b.String()), nil
}

// encode maps the renderer identifier onto a boombuler encoder.
func encode(spec render.Spec) (barcode.Barcode, error) {
	switch spec.ID {
	case "ean13":
		bc, err := ean.Encode(spec.Text)
		if err != nil {
			return nil, fmt.Errorf("ean13 %q: %w", spec.Text, err)
		}
		return bc, nil
	case "itf14":
		bc, err := twooffive.Encode(spec.Text, true)
		if err != nil {
			return nil, fmt.Errorf("itf14 %q: %w", spec.Text, err)
		}
		return bc, nil
	default:
		return nil, fmt.Errorf("unknown symbology id %q", spec.ID)
	}
}

// modules samples one row of a 1D symbol; true marks a dark module.
func modules(bc barcode.Barcode) []bool {
	b := bc.Bounds()
	out := make([]bool, 0, b.Dx())
	for x := b.Min.X; x < b.Max.X; x++ {
		out = append(out, raster.Dark(bc.At(x, b.Min.Y)))
	}
	return out
}

// geometry is the pixel layout shared by the PNG and SVG paths.
type geometry struct {
	width, height int
	rects         []image.Rectangle
	textX         int
	textBaseline  int
}

func layoutFor(spec render.Spec) (geometry, error) {
	if spec.Scale <= 0 {
		return geometry{}, fmt.Errorf("invalid scale %d", spec.Scale)
	}
	bc, err := encode(spec)
	if err != nil {
		return geometry{}, err
	}
	g := layout(modules(bc), spec)
	if int64(g.width)*int64(g.height) > raster.MaxPixels {
		return geometry{}, fmt.Errorf("image %dx%d exceeds %d pixels", g.width, g.height, raster.MaxPixels)
	}
	return g, nil
}

// layout places bars inside the quiet zone and optional bearer border; the caption sits below the box.
func layout(mods []bool, spec render.Spec) geometry {
	s := spec.Scale
	border := spec.BorderWidth * s
	padW := spec.PaddingWidth * s
	padH := spec.PaddingHeight * s
	barH := spec.BarHeightPx()

	boxW := len(mods)*s + 2*padW + 2*border
	boxH := barH + 2*padH + 2*border

	g := geometry{width: boxW, height: boxH}
	if spec.IncludeText {
		g.height += raster.CaptionHeight
		g.textX = boxW / 2
		g.textBaseline = boxH + raster.CaptionHeight - 4
	}

	x0, y0 := border+padW, border+padH
	for i := 0; i < len(mods); {
		if !mods[i] {
			i++
			continue
		}
		j := i
		for j < len(mods) && mods[j] {
			j++
		}
		g.rects = append(g.rects, image.Rect(x0+i*s, y0, x0+j*s, y0+barH))
		i = j
	}

	if border > 0 {
		g.rects = append(g.rects,
			image.Rect(0, 0, boxW, border),
			image.Rect(0, boxH-border, boxW, boxH),
			image.Rect(0, border, border, boxH-border),
			image.Rect(boxW-border, border, boxW, boxH-border),
		)
	}
	return g
}

func observe(format render.Format, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.RenderRequestsTotal.WithLabelValues(rendererLabel, string(format), status).Inc()
	metrics.RenderDuration.WithLabelValues(rendererLabel, string(format)).Observe(time.Since(start).Seconds())
}
