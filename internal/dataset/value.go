package dataset

import (
	"math"
	"strconv"
)

type valueKind uint8

const (
	kindMissing valueKind = iota
	kindNumber
	kindText
)

// Value is a single cell: missing, a finite number, or text.
type Value struct {
	kind valueKind
	num  float64
	text string
	// raw is the source spelling of a parsed number, e.g. "007" or "1.50".
	raw string
}

// Missing returns the missing marker.
func Missing() Value { return Value{} }

// Number returns a numeric cell. NaN and ±Inf are stored as missing.
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{kind: kindNumber, num: f}
}

// Text returns a text cell. Empty text is stored as missing.
func Text(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{kind: kindText, text: s}
}

func (v Value) IsMissing() bool { return v.kind == kindMissing }
func (v Value) IsNumber() bool  { return v.kind == kindNumber }
func (v Value) IsText() bool    { return v.kind == kindText }

// Float returns the numeric payload and whether the cell is numeric.
func (v Value) Float() (float64, bool) {
	if v.kind != kindNumber {
		return math.NaN(), false
	}
	return v.num, true
}

// String renders the cell the way it is used as a group label. Parsed
// numbers keep their source spelling. Missing cells render as "".
func (v Value) String() string {
	switch v.kind {
	case kindNumber:
		if v.raw != "" {
			return v.raw
		}
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case kindText:
		return v.text
	default:
		return ""
	}
}
