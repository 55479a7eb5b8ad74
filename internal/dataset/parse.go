package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// NumberFormat controls how numeric cells are recognised.
type NumberFormat struct {
	// DecimalSeparator defaults to '.'.
	DecimalSeparator rune
	// ThousandsSeparator is stripped when set; 0 means no grouping.
	ThousandsSeparator rune
	// AutoLocale guesses the separators per value (1.234,5 vs 1,234.5)
	// and accepts a trailing percent sign.
	AutoLocale bool
}

var naTokens = map[string]struct{}{
	"na": {}, "n/a": {}, "nan": {}, "null": {}, "none": {}, "#n/a": {}, "-nan": {}, "<na>": {},
}

// IsNAToken reports whether s is one of the conventional missing-value spellings.
func IsNAToken(s string) bool {
	_, ok := naTokens[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// ParseCell turns raw text into a Value.
func ParseCell(raw string, nf NumberFormat) Value {
	s := strings.TrimSpace(raw)
	if s == "" || IsNAToken(s) {
		return Missing()
	}
	if f, ok := parseNumeric(s, nf); ok {
		v := Number(f)
		v.raw = s
		return v
	}
	return Text(s)
}

func parseNumeric(s string, nf NumberFormat) (float64, bool) {
	// Normalize spaces
	raw := strings.ReplaceAll(s, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	dec := nf.DecimalSeparator
	thou := nf.ThousandsSeparator
	if nf.AutoLocale {
		raw = strings.TrimSpace(strings.TrimSuffix(raw, "%"))
		if dec == 0 {
			cpos := strings.LastIndex(raw, ",")
			dpos := strings.LastIndex(raw, ".")
			if cpos >= 0 && dpos >= 0 {
				if cpos > dpos {
					dec, thou = ',', '.'
				} else {
					dec, thou = '.', ','
				}
			} else if cpos >= 0 {
				dec = ','
			}
		}
		if thou == 0 {
			raw = strings.ReplaceAll(raw, " ", "")
		}
	}
	if dec == 0 {
		dec = '.'
	}
	if thou != 0 && thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		if strings.Contains(raw, ".") {
			return 0, false
		}
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	// strconv accepts "Inf" and "infinity"; those are not data.
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

var timeLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
}

// LooksLikeTime reports whether s parses with one of the common date layouts.
func LooksLikeTime(s string) bool {
	for _, l := range timeLayouts {
		if _, err := time.Parse(l, s); err == nil {
			return true
		}
	}
	return false
}
