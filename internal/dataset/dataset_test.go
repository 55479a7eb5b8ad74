package dataset

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestNewValidatesColumns(t *testing.T) {
	a := NewColumn("a", []Value{Number(1), Number(2)})
	b := NewColumn("b", []Value{Text("x")})

	_, err := New("t", a, b)
	require.ErrorIs(t, err, ErrRaggedColumns)

	_, err = New("t", a, a)
	require.ErrorIs(t, err, ErrDuplicateColumn)

	_, err = New("t", NewColumn(" ", nil))
	require.ErrorIs(t, err, ErrEmptyColumnName)

	ds, err := New("t", a, NewColumn("b", []Value{Text("x"), Missing()}))
	require.NoError(t, err)
	assert.Equal(t, 2, ds.NumRows())
	assert.Equal(t, []string{"a", "b"}, ds.ColumnNames())
	col, ok := ds.Column("b")
	require.True(t, ok)
	assert.Equal(t, 1, col.MissingCount())
	_, ok = ds.Column("B")
	assert.False(t, ok)
}

func TestNewColumnCopiesInput(t *testing.T) {
	vals := []Value{Number(1), Number(2)}
	c := NewColumn("x", vals)
	vals[0] = Text("changed")
	f, ok := c.At(0).Float()
	require.True(t, ok)
	assert.Equal(t, 1.0, f)

	fl := c.Floats()
	fl[1] = 99
	f, _ = c.At(1).Float()
	assert.Equal(t, 2.0, f)
}

func TestValueConstructors(t *testing.T) {
	assert.True(t, Number(math.NaN()).IsMissing())
	assert.True(t, Number(math.Inf(1)).IsMissing())
	assert.True(t, Text("").IsMissing())
	assert.Equal(t, "2.5", Number(2.5).String())
	assert.Equal(t, "3", Number(3).String())
	assert.Equal(t, "", Missing().String())
}

func TestParseCell(t *testing.T) {
	std := NumberFormat{}
	tests := []struct {
		in   string
		nf   NumberFormat
		want Value
	}{
		{"12.5", std, Number(12.5)},
		{" -3e2 ", std, Number(-300)},
		{"", std, Missing()},
		{"NA", std, Missing()},
		{"n/a", std, Missing()},
		{"NaN", std, Missing()},
		{"#N/A", std, Missing()},
		{"Inf", std, Text("Inf")},
		{"1,5", std, Text("1,5")},
		{"1,234.5", std, Text("1,234.5")},
		{"1,234.5", NumberFormat{AutoLocale: true}, Number(1234.5)},
		{"1.234,5", NumberFormat{AutoLocale: true}, Number(1234.5)},
		{"0,25", NumberFormat{AutoLocale: true}, Number(0.25)},
		{"45%", NumberFormat{AutoLocale: true}, Number(45)},
		{"1 000", NumberFormat{AutoLocale: true}, Number(1000)},
		{"1.234,5", NumberFormat{DecimalSeparator: ',', ThousandsSeparator: '.'}, Number(1234.5)},
		{"1.5", NumberFormat{DecimalSeparator: ','}, Text("1.5")},
		{"true", std, Text("true")},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseCell(tt.in, tt.nf)
			assert.Equal(t, tt.want.IsMissing(), got.IsMissing())
			assert.Equal(t, tt.want.IsText(), got.IsText())
			wf, wok := tt.want.Float()
			gf, gok := got.Float()
			require.Equal(t, wok, gok)
			if wok {
				assert.Equal(t, wf, gf)
			} else {
				assert.Equal(t, tt.want.String(), got.String())
			}
		})
	}
}

func TestParseCellKeepsSourceSpelling(t *testing.T) {
	for in, want := range map[string]float64{"007": 7, "1.50": 1.5, " 010 ": 10, "-3e2": -300} {
		v := ParseCell(in, NumberFormat{})
		f, ok := v.Float()
		require.True(t, ok, in)
		assert.Equal(t, want, f)
		assert.Equal(t, strings.TrimSpace(in), v.String())
	}
	v := ParseCell("45%", NumberFormat{AutoLocale: true})
	assert.Equal(t, "45%", v.String())
}

func TestReadCSVPreservesMixedLabels(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader("store,price\n007,1.50\nA12,2\n010,3\n"), "s.csv", LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"007", "1.50"}, {"A12", "2"}, {"010", "3"}}, ds.Head(3))
}

func TestLooksLikeTime(t *testing.T) {
	assert.True(t, LooksLikeTime("2024-01-31"))
	assert.True(t, LooksLikeTime("2024-01-31T10:00:00Z"))
	assert.False(t, LooksLikeTime("alpha"))
	assert.False(t, LooksLikeTime("12"))
}

func TestReadCSV(t *testing.T) {
	in := strings.Join([]string{
		"\uFEFFgroup,score,score,",
		"A,1.5,2,x",
		"B,NA,3",
		",,,",
		"A,2.5,4,y,extra",
	}, "\n")
	ds, err := ReadCSV(strings.NewReader(in), "mem.csv", LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "mem.csv", ds.Name())
	assert.Equal(t, []string{"group", "score", "score.1", "Unnamed: 3"}, ds.ColumnNames())
	assert.Equal(t, 3, ds.NumRows())

	score, _ := ds.Column("score")
	assert.Equal(t, 1, score.MissingCount())
	last, _ := ds.Column("Unnamed: 3")
	assert.True(t, last.At(1).IsMissing())
	assert.Equal(t, "y", last.At(2).String())
}

func TestReadCSVMaxRowsAndEmpty(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader("a\n1\n2\n3\n"), "m", LoadOptions{MaxRows: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, ds.NumRows())

	ds, err = ReadCSV(strings.NewReader(""), "empty", LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, ds.NumCols())
	assert.Equal(t, 0, ds.NumRows())
}

func TestLoadTSVSniffsDelimiter(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "d.tsv")
	require.NoError(t, os.WriteFile(p, []byte("x\ty\n1\t2\n3\t4\n"), 0o644))
	ds, err := Load(p, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, ds.ColumnNames())
	assert.Equal(t, "d.tsv", ds.Name())

	_, err = Load(filepath.Join(dir, "d.parquet"), LoadOptions{})
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func buildWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	_, err := f.NewSheet("Data")
	require.NoError(t, err)
	rows := [][]any{
		{"region", "sales", "units"},
		{"north", 10.5, 3},
		{"south", 12, nil},
		{"north", 9.25, 5},
	}
	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Data", cell, v))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestReadXLSXSheetSelection(t *testing.T) {
	raw := buildWorkbook(t)

	ds, err := ReadXLSX(bytes.NewReader(raw), "book.xlsx", LoadOptions{SheetName: "data"})
	require.NoError(t, err)
	assert.Equal(t, []string{"region", "sales", "units"}, ds.ColumnNames())
	assert.Equal(t, 3, ds.NumRows())
	sales, _ := ds.Column("sales")
	assert.Equal(t, []float64{10.5, 12, 9.25}, sales.Floats())
	units, _ := ds.Column("units")
	assert.Equal(t, 1, units.MissingCount())

	// Sheet1 is the default first sheet and is empty.
	ds, err = ReadXLSX(bytes.NewReader(raw), "book.xlsx", LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, ds.NumCols())

	ds, err = ReadXLSX(bytes.NewReader(raw), "book.xlsx", LoadOptions{SheetIndex: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, ds.NumRows())

	_, err = ReadXLSX(bytes.NewReader(raw), "book.xlsx", LoadOptions{SheetName: "Missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Available sheets: Sheet1, Data")

	_, err = ReadXLSX(bytes.NewReader(raw), "book.xlsx", LoadOptions{SheetIndex: 7})
	require.Error(t, err)
}

func TestHead(t *testing.T) {
	ds, err := New("h",
		NewColumn("a", []Value{Number(1), Number(2), Number(3)}),
		NewColumn("b", []Value{Text("x"), Missing(), Text("z")}),
	)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "x"}, {"2", ""}}, ds.Head(2))
	assert.Len(t, ds.Head(10), 3)
	assert.Nil(t, ds.Head(0))
}
