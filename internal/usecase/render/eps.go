package render

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// black lists the fill values converted to PostScript. Matching is literal and case-sensitive.
var black = map[string]bool{
	"#000000": true,
	"black":   true,
	"#000":    true,
}

type box struct{ x, y, w, h float64 }

// ConvertSVGToEPS translates the rectangles of an SVG document into an
// Encapsulated PostScript program. Only black-filled rects are kept; the
// y axis is flipped so the drawing is not mirrored. Output is deterministic.
func ConvertSVGToEPS(svg []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(svg))

	var (
		width, height float64
		seenRoot      bool
		rects         []box
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse svg: %w", err)
		}
		el, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch el.Name.Local {
		case "svg":
			if seenRoot {
				continue
			}
			seenRoot = true
			width, height, err = canvasSize(el)
			if err != nil {
				return nil, err
			}
		case "rect":
			if !black[attr(el, "fill")] {
				continue
			}
			r, err := parseRect(el)
			if err != nil {
				return nil, err
			}
			rects = append(rects, r)
		}
	}
	if !seenRoot {
		return nil, errors.New("parse svg: no <svg> root element")
	}

	var b bytes.Buffer
	b.WriteString("%!PS-Adobe-3.0 EPSF-3.0\n")
	fmt.Fprintf(&b, "%%%%BoundingBox: 0 0 %d %d\n", int(math.Ceil(width)), int(math.Ceil(height)))
	b.WriteString("%%Creator: barcodex\n")
	b.WriteString("%%Pages: 1\n")
	b.WriteString("%%EndComments\n")
	b.WriteString("0 setgray\n")
	for _, r := range rects {
		fmt.Fprintf(&b, "%s %s %s %s rectfill\n",
			num(r.x), num(height-r.y-r.h), num(r.w), num(r.h))
	}
	b.WriteString("showpage\n")
	b.WriteString("%%EOF")
	return b.Bytes(), nil
}

// canvasSize reads width/height from the root element, falling back to viewBox.
func canvasSize(el xml.StartElement) (float64, float64, error) {
	w, errW := length(attr(el, "width"))
	h, errH := length(attr(el, "height"))
	if errW == nil && errH == nil && w > 0 && h > 0 {
		return w, h, nil
	}

	fields := strings.Fields(strings.ReplaceAll(attr(el, "viewBox"), ",", " "))
	if len(fields) != 4 {
		return 0, 0, errors.New("svg root has neither width/height nor a viewBox")
	}
	vw, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("viewBox width: %w", err)
	}
	vh, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("viewBox height: %w", err)
	}
	return vw, vh, nil
}

func parseRect(el xml.StartElement) (box, error) {
	var r box
	var err error
	if r.x, err = optional(attr(el, "x")); err != nil {
		return box{}, fmt.Errorf("rect x: %w", err)
	}
	if r.y, err = optional(attr(el, "y")); err != nil {
		return box{}, fmt.Errorf("rect y: %w", err)
	}
	if r.w, err = length(attr(el, "width")); err != nil {
		return box{}, fmt.Errorf("rect width: %w", err)
	}
	if r.h, err = length(attr(el, "height")); err != nil {
		return box{}, fmt.Errorf("rect height: %w", err)
	}
	return r, nil
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// length parses a number with an optional "px" unit.
func length(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "px"), 64)
}

func optional(s string) (float64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	return length(s)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
