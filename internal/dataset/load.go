package dataset

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned by Load for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// LoadOptions tunes how tabular files become a Dataset.
type LoadOptions struct {
	// Delimiter for CSV; 0 sniffs from the extension (.tsv means tab).
	Delimiter rune
	NumberFormat
	// MaxRows caps data rows read; 0 means no cap.
	MaxRows int
	// SheetName selects an XLSX sheet by name (case-insensitive).
	SheetName string
	// SheetIndex is 1-based and used when SheetName is empty.
	SheetIndex int
}

// Load reads a CSV, TSV or XLSX file based on its extension.
func Load(path string, opt LoadOptions) (*Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return LoadCSV(path, opt)
	case ".xlsx", ".xlsm":
		return LoadXLSX(path, opt)
	default:
		return nil, fmt.Errorf("%s: %w (want .csv, .tsv or .xlsx)", filepath.Base(path), ErrUnsupportedFormat)
	}
}

// fromRecords turns a header plus raw string rows into a Dataset.
// Short rows are padded with missing cells; extra cells are dropped.
func fromRecords(name string, header []string, rows [][]string, opt LoadOptions) (*Dataset, error) {
	names := headerNames(header)
	ncol := len(names)
	vals := make([][]Value, ncol)
	for c := range vals {
		vals[c] = make([]Value, len(rows))
	}
	for r, rec := range rows {
		for c := 0; c < ncol; c++ {
			if c < len(rec) {
				vals[c][r] = ParseCell(rec[c], opt.NumberFormat)
			}
		}
	}
	cols := make([]Column, ncol)
	for c := range cols {
		cols[c] = Column{name: names[c], values: vals[c]}
		for _, v := range vals[c] {
			if v.IsMissing() {
				cols[c].missing++
			}
		}
	}
	return New(name, cols...)
}

// headerNames fills blank headers and suffixes repeats (a, a.1, a.2).
func headerNames(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		n := strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
		if n == "" {
			n = fmt.Sprintf("Unnamed: %d", i)
		}
		base := n
		for {
			if _, dup := seen[n]; !dup {
				break
			}
			seen[base]++
			n = fmt.Sprintf("%s.%d", base, seen[base])
		}
		seen[n] = 0
		out[i] = n
	}
	return out
}
