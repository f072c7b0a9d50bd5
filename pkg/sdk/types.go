package barcodex

import (
	"github.com/kailas-cloud/barcodex/internal/domain/batch"
	"github.com/kailas-cloud/barcodex/internal/domain/render"
	"github.com/kailas-cloud/barcodex/internal/domain/symbology"
)

// Format is the output file format.
type Format string

// Supported output formats.
const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
	FormatEPS Format = "eps"
)

// Options are the render settings shared by every code of a call.
// Zero fields take the defaults: 32 mm height, 2 mm width, PNG.
type Options struct {
	HeightMM       float64
	WidthMM        float64
	Format         Format
	FilenamePrefix string
}

// Archive is a finished batch: the zip bytes and the report stored inside it.
type Archive struct {
	Data     []byte
	Filename string
	Report   Report
}

// Report mirrors the report.json entry of an archive.
type Report = batch.Report

// ReportError is one skipped code in a Report.
type ReportError = batch.ReportError

// Preview is a single rendered code encoded as a data URI.
type Preview struct {
	Image     string // data URI
	Code      string // code after whitespace removal
	Symbology string // "ITF14" or "EAN13"
	Format    Format
}

// Symbology describes one supported barcode standard.
type Symbology struct {
	Key         string
	ID          string
	Lengths     []int
	BorderWidth int
}

// toDomainOptions validates the format and dimensions and converts to render options.
func toDomainOptions(o Options) (render.Options, error) {
	f, err := render.ParseFormat(string(o.Format))
	if err != nil {
		return render.Options{}, err
	}
	ro := render.Options{
		HeightMM:       o.HeightMM,
		WidthMM:        o.WidthMM,
		Format:         f,
		FilenamePrefix: o.FilenamePrefix,
	}
	if err := ro.Validate(); err != nil {
		return render.Options{}, err
	}
	return ro.WithDefaults(), nil
}

func previewFromDomain(p *render.Preview) Preview {
	return Preview{
		Image:     p.Image,
		Code:      p.Code,
		Symbology: string(p.Symbology),
		Format:    Format(p.Format),
	}
}

func symbologyFromDomain(s symbology.Symbology) Symbology {
	return Symbology{
		Key:         string(s.Key()),
		ID:          s.ID(),
		Lengths:     s.Lengths(),
		BorderWidth: s.BorderWidth(),
	}
}
