package analysis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/statloom/internal/dataset"
)

// col builds a column from nil (missing), numbers and strings.
func col(name string, cells ...any) dataset.Column {
	vals := make([]dataset.Value, len(cells))
	for i, c := range cells {
		switch v := c.(type) {
		case nil:
			vals[i] = dataset.Missing()
		case int:
			vals[i] = dataset.Number(float64(v))
		case float64:
			vals[i] = dataset.Number(v)
		case string:
			vals[i] = dataset.Text(v)
		default:
			panic("unsupported cell type")
		}
	}
	return dataset.NewColumn(name, vals)
}

func floats(vs ...float64) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}

func build(t *testing.T, cols ...dataset.Column) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New("test", cols...)
	require.NoError(t, err)
	return ds
}

// sales is a small mixed dataset shared by several tests.
func sales(t *testing.T) *dataset.Dataset {
	return build(t,
		col("region", "north", "south", "north", "south", "east", "north", "south", "east"),
		col("revenue", 100, 80, 120, 90, 60, 110, 85, nil),
		col("profit", 20, 10, 25, 12, 5, 22, 11, 4),
		col("note", "a", nil, "b", "c", "d", "e", "f", "g"),
		col("quantity", 10, 8, 12, 9, 6, 11, 8, 5),
	)
}
