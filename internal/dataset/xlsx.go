package dataset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// LoadXLSX reads one worksheet of an .xlsx workbook. The first row is the header.
func LoadXLSX(path string, opt LoadOptions) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()
	return ReadXLSX(f, filepath.Base(path), opt)
}

// ReadXLSX reads a workbook from r. Cell values are read raw, so dates
// stored as serial numbers come through as numbers.
func ReadXLSX(r io.Reader, name string, opt LoadOptions) (*Dataset, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer wb.Close()

	sheet, err := pickSheet(wb.GetSheetList(), name, opt)
	if err != nil {
		return nil, err
	}
	rows, err := wb.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return New(name)
	}
	header := rows[0]
	var data [][]string
	for _, rec := range rows[1:] {
		if opt.MaxRows > 0 && len(data) >= opt.MaxRows {
			break
		}
		if isBlankRecord(rec) {
			continue
		}
		data = append(data, rec)
	}
	return fromRecords(name, header, data, opt)
}

func pickSheet(sheets []string, book string, opt LoadOptions) (string, error) {
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook '%s' has no sheets", book)
	}
	if opt.SheetName != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, opt.SheetName) {
				return s, nil
			}
		}
		return "", fmt.Errorf("sheet '%s' not found in workbook '%s'.\nAvailable sheets: %s",
			opt.SheetName, book, strings.Join(sheets, ", "))
	}
	idx := opt.SheetIndex
	if idx <= 0 {
		idx = 1
	}
	if idx > len(sheets) {
		return "", fmt.Errorf("sheet index %d out of range for workbook '%s' (%d sheets)", idx, book, len(sheets))
	}
	return sheets[idx-1], nil
}
