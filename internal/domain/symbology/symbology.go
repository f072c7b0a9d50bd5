package symbology

import (
	"slices"
	"strings"
	"unicode"
)

// Key identifies a supported barcode symbology.
type Key string

// Supported symbologies.
const (
	ITF14 Key = "ITF14"
	EAN13 Key = "EAN13"
)

// Symbology is an immutable table entry describing one barcode standard.
type Symbology struct {
	key           Key
	id            string
	lengths       []int
	borderWidth   int
	paddingWidth  int
	paddingHeight int
}

// Key returns the table key.
func (s Symbology) Key() Key { return s.key }

// ID returns the identifier understood by the rendering capability.
func (s Symbology) ID() string { return s.id }

// Lengths returns a copy of the accepted code lengths.
func (s Symbology) Lengths() []int { return slices.Clone(s.lengths) }

// BorderWidth returns the bearer bar width in modules (0 = no border).
func (s Symbology) BorderWidth() int { return s.borderWidth }

// PaddingWidth returns the horizontal quiet zone in modules.
func (s Symbology) PaddingWidth() int { return s.paddingWidth }

// PaddingHeight returns the vertical quiet zone in modules.
func (s Symbology) PaddingHeight() int { return s.paddingHeight }

// AcceptsLength reports whether n satisfies the length rule.
func (s Symbology) AcceptsLength(n int) bool { return slices.Contains(s.lengths, n) }

// table is built once and never mutated; lookups hand out value copies.
var table = map[Key]Symbology{
	ITF14: {key: ITF14, id: "itf14", lengths: []int{14}, borderWidth: 4, paddingWidth: 10, paddingHeight: 4},
	EAN13: {key: EAN13, id: "ean13", lengths: []int{12, 13}, paddingWidth: 10, paddingHeight: 2},
}

// order keeps All deterministic.
var order = []Key{ITF14, EAN13}

// Lookup returns the symbology registered under key.
func Lookup(key Key) (Symbology, bool) {
	s, ok := table[key]
	return s, ok
}

// All returns every supported symbology in a stable order.
func All() []Symbology {
	out := make([]Symbology, 0, len(order))
	for _, k := range order {
		out = append(out, table[k])
	}
	return out
}

// Classify maps a clean code to its symbology.
// Any character outside ASCII digits, or a length no rule accepts, yields false.
func Classify(code string) (Key, bool) {
	if !isDigits(code) {
		return "", false
	}
	switch len(code) {
	case 14:
		return ITF14, true
	case 12, 13:
		return EAN13, true
	default:
		return "", false
	}
}

// Validate checks code against the digit rule and the length rule of key.
// It does not trust key: unknown keys and non-digit codes are rejected.
func Validate(code string, key Key) bool {
	s, ok := table[key]
	if !ok {
		return false
	}
	return isDigits(code) && s.AcceptsLength(len(code))
}

// Clean removes every whitespace character from a raw code.
func Clean(raw string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
}

// Hint is the human-readable rule shown for rejected codes.
const Hint = "14 digits: ITF-14, 12-13 digits: EAN-13"

func isDigits(code string) bool {
	if code == "" {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
