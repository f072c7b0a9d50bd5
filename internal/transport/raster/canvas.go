// Package raster paints bar rectangles and a caption onto a two-colour PNG canvas.
package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// CaptionFace is the glyph set used for human-readable text.
var CaptionFace font.Face = basicfont.Face7x13

// CaptionHeight is the vertical space reserved for one caption line, in pixels.
const CaptionHeight = 17

// MaxPixels bounds the area of a single canvas.
const MaxPixels = 50_000_000

// Canvas is a paletted image with a foreground and a background colour.
type Canvas struct {
	img *image.Paletted
	fg  color.Color
}

// NewCanvas creates a canvas filled with bg.
func NewCanvas(width, height int, fg, bg color.Color) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	if int64(width)*int64(height) > MaxPixels {
		return nil, fmt.Errorf("canvas %dx%d exceeds %d pixels", width, height, MaxPixels)
	}
	img := image.NewPaletted(image.Rect(0, 0, width, height), color.Palette{bg, fg})
	// index 0 is the background, so a fresh image is already filled
	return &Canvas{img: img, fg: fg}, nil
}

// Bounds returns the canvas rectangle.
func (c *Canvas) Bounds() image.Rectangle { return c.img.Bounds() }

// FillRect paints r in the foreground colour, clipped to the canvas.
func (c *Canvas) FillRect(r image.Rectangle) {
	r = r.Intersect(c.img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := c.img.PixOffset(r.Min.X, y)
		for x := 0; x < r.Dx(); x++ {
			c.img.Pix[row+x] = 1
		}
	}
}

// DrawCaption writes text horizontally centred on cx with its baseline at y.
func (c *Canvas) DrawCaption(text string, cx, y int) {
	width := font.MeasureString(CaptionFace, text)
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(c.fg),
		Face: CaptionFace,
		Dot:  fixed.P(cx, y).Sub(fixed.Point26_6{X: width / 2}),
	}
	d.DrawString(text)
}

// Image exposes the painted image for inspection.
func (c *Canvas) Image() image.Image { return c.img }

// EncodePNG serializes the canvas. Output is byte-identical for identical drawings.
func (c *Canvas) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, c.img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseHex converts #RGB or #RRGGBB into an opaque colour.
func ParseHex(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// Dark reports whether a source pixel counts as a bar.
func Dark(c color.Color) bool {
	return color.GrayModel.Convert(c).(color.Gray).Y < 0x80
}
