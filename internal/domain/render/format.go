package render

import (
	"fmt"
	"strings"
)

// Format is the output file format of a rendered barcode.
type Format string

// Output formats. PNG is the default.
const (
	PNG Format = "png"
	SVG Format = "svg"
	EPS Format = "eps"
)

// ParseFormat converts user input into a Format; empty input yields PNG.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return PNG, nil
	case PNG, SVG, EPS:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported file format %q (png, svg, eps)", s)
	}
}

// IsValid checks if the format is one of the supported values.
func (f Format) IsValid() bool {
	return f == PNG || f == SVG || f == EPS
}

// Ext returns the file extension without the dot.
func (f Format) Ext() string { return string(f) }

// MIMEType returns the media type of the format.
func (f Format) MIMEType() string {
	switch f {
	case SVG:
		return "image/svg+xml"
	case EPS:
		return "application/postscript"
	default:
		return "image/png"
	}
}

// Label is the upper-case name used in error messages.
func (f Format) Label() string { return strings.ToUpper(string(f)) }
