package render

import (
	"math"

	"github.com/kailas-cloud/barcodex/internal/domain/symbology"
)

// PointsPerMM converts millimetres to output units (1/72 inch) at scale 1.
const PointsPerMM = 72 / 25.4

// Spec is the fully resolved option set handed to a rendering capability.
type Spec struct {
	ID            string
	Text          string
	Scale         int
	BarHeightMM   float64
	IncludeText   bool
	TextXAlign    string
	PaddingWidth  int
	PaddingHeight int
	BorderWidth   int
	BarColor      string
	Background    string
}

// Resolve merges the symbology options with the computed defaults for req.
// Scale is max(3, widthMM) rounded to whole pixels per module; bar height is max(20, heightMM/3).
func Resolve(req Request, sym symbology.Symbology) Spec {
	return Spec{
		ID:            sym.ID(),
		Text:          req.Code(),
		Scale:         int(math.Round(math.Max(3, req.WidthMM()))),
		BarHeightMM:   math.Max(20, req.HeightMM()/3),
		IncludeText:   true,
		TextXAlign:    "center",
		PaddingWidth:  sym.PaddingWidth(),
		PaddingHeight: sym.PaddingHeight(),
		BorderWidth:   sym.BorderWidth(),
		BarColor:      "#000000",
		Background:    "#FFFFFF",
	}
}

// BarHeightPx returns the bar height in pixels at the resolved scale.
func (s Spec) BarHeightPx() int {
	return int(math.Round(s.BarHeightMM * PointsPerMM * float64(s.Scale)))
}
