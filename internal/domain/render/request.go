package render

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/barcodex/internal/domain/symbology"
)

// Default dimensions applied when the caller omits them.
const (
	DefaultHeightMM = 32.0
	DefaultWidthMM  = 2.0
)

// Upper bounds on the requested dimensions. Width is the module scale in
// pixels, so larger values produce canvases of hundreds of megapixels.
const (
	MaxHeightMM = 200.0
	MaxWidthMM  = 10.0
)

// Options are the batch-wide settings shared by every item.
type Options struct {
	HeightMM       float64
	WidthMM        float64
	Format         Format
	FilenamePrefix string
}

// DefaultOptions returns PNG output at the default dimensions.
func DefaultOptions() Options {
	return Options{HeightMM: DefaultHeightMM, WidthMM: DefaultWidthMM, Format: PNG}
}

// WithDefaults fills zero fields.
func (o Options) WithDefaults() Options {
	if o.HeightMM <= 0 {
		o.HeightMM = DefaultHeightMM
	}
	if o.WidthMM <= 0 {
		o.WidthMM = DefaultWidthMM
	}
	if o.Format == "" {
		o.Format = PNG
	}
	return o
}

// Validate checks that the dimensions are finite and within bounds and that
// the format is known. Zero fields are accepted and mean the default.
func (o Options) Validate() error {
	if math.IsNaN(o.HeightMM) || math.IsInf(o.HeightMM, 0) {
		return fmt.Errorf("height %v is not a finite number", o.HeightMM)
	}
	if math.IsNaN(o.WidthMM) || math.IsInf(o.WidthMM, 0) {
		return fmt.Errorf("width %v is not a finite number", o.WidthMM)
	}
	if o.HeightMM < 0 || o.HeightMM > MaxHeightMM {
		return fmt.Errorf("height %v must be between 0 and %v mm", o.HeightMM, MaxHeightMM)
	}
	if o.WidthMM < 0 || o.WidthMM > MaxWidthMM {
		return fmt.Errorf("width %v must be between 0 and %v mm", o.WidthMM, MaxWidthMM)
	}
	if o.Format != "" && !o.Format.IsValid() {
		return fmt.Errorf("invalid format %q", o.Format)
	}
	return nil
}

// Request is an immutable instruction to render one code.
type Request struct {
	code        string
	sym         symbology.Key
	heightMM    float64
	widthMM     float64
	format      Format
	destination string
}

// NewRequest validates and creates a Request.
func NewRequest(code string, sym symbology.Key, opts Options, destination string) (Request, error) {
	opts = opts.WithDefaults()
	if code == "" {
		return Request{}, fmt.Errorf("code is required")
	}
	if err := opts.Validate(); err != nil {
		return Request{}, err
	}
	return Request{
		code:        code,
		sym:         sym,
		heightMM:    opts.HeightMM,
		widthMM:     opts.WidthMM,
		format:      opts.Format,
		destination: destination,
	}, nil
}

// Code returns the clean code to encode.
func (r Request) Code() string { return r.code }

// Symbology returns the symbology key.
func (r Request) Symbology() symbology.Key { return r.sym }

// HeightMM returns the requested height.
func (r Request) HeightMM() float64 { return r.heightMM }

// WidthMM returns the requested width.
func (r Request) WidthMM() float64 { return r.widthMM }

// Format returns the output format.
func (r Request) Format() Format { return r.format }

// Destination returns the advisory output path; its extension is rewritten on write.
func (r Request) Destination() string { return r.destination }
