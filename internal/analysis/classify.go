package analysis

import (
	"math"

	"github.com/KaramelBytes/statloom/internal/dataset"
)

// Classification partitions column names by kind, in dataset order.
type Classification struct {
	Categorical []string `json:"categorical"`
	Numeric     []string `json:"numeric"`
}

// IsNumeric reports whether name was classified numeric.
func (c Classification) IsNumeric(name string) bool { return contains(c.Numeric, name) }

// IsCategorical reports whether name was classified categorical.
func (c Classification) IsCategorical(name string) bool { return contains(c.Categorical, name) }

// ClassifyOptions adjusts the classifier. The zero value gives the plain
// numeric/categorical split.
type ClassifyOptions struct {
	// MaxCodeCardinality treats integer-valued numeric columns with at most
	// this many distinct values as categorical codes. 0 disables the rule.
	MaxCodeCardinality int
	// ExcludeDatetime leaves out text columns whose values all parse as dates.
	ExcludeDatetime bool
}

// Classify splits the dataset's columns into categorical and numeric.
func Classify(ds *dataset.Dataset) Classification {
	return ClassifyWith(ds, ClassifyOptions{})
}

// ClassifyWith is Classify with options.
func ClassifyWith(ds *dataset.Dataset, opt ClassifyOptions) Classification {
	cls := Classification{Categorical: []string{}, Numeric: []string{}}
	if ds == nil {
		return cls
	}
	for i := 0; i < ds.NumCols(); i++ {
		col := ds.ColumnAt(i)
		switch kindOf(col, opt) {
		case kindNumeric:
			cls.Numeric = append(cls.Numeric, col.Name())
		case kindCategorical:
			cls.Categorical = append(cls.Categorical, col.Name())
		}
	}
	return cls
}

type columnKind int

const (
	kindCategorical columnKind = iota
	kindNumeric
	kindExcluded
)

func kindOf(col *dataset.Column, opt ClassifyOptions) columnKind {
	present, numeric, dates := 0, 0, 0
	integral := true
	for i := 0; i < col.Len(); i++ {
		v := col.At(i)
		if v.IsMissing() {
			continue
		}
		present++
		if f, ok := v.Float(); ok {
			numeric++
			if f != math.Trunc(f) {
				integral = false
			}
			continue
		}
		if opt.ExcludeDatetime && dataset.LooksLikeTime(v.String()) {
			dates++
		}
	}
	switch {
	case present == 0:
		return kindCategorical
	case numeric == present:
		if opt.MaxCodeCardinality > 0 && integral && distinct(col) <= opt.MaxCodeCardinality {
			return kindCategorical
		}
		return kindNumeric
	case opt.ExcludeDatetime && dates == present:
		return kindExcluded
	default:
		return kindCategorical
	}
}

func distinct(col *dataset.Column) int {
	seen := make(map[string]struct{})
	for i := 0; i < col.Len(); i++ {
		if v := col.At(i); !v.IsMissing() {
			seen[v.String()] = struct{}{}
		}
	}
	return len(seen)
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
