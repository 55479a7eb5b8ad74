package analysis

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyDataset               = errors.New("dataset has no rows or no columns")
	ErrNoNumericColumns           = errors.New("no numeric columns")
	ErrInsufficientNumericColumns = errors.New("fewer than two numeric columns")
	ErrUnknownColumn              = errors.New("unknown column")
	ErrUnknownLabel               = errors.New("unknown group label")
	ErrInsufficientGroups         = errors.New("grouping column has fewer than two distinct labels")
	ErrInsufficientSampleSize     = errors.New("sample too small")
	ErrNotNumeric                 = errors.New("column is not numeric")
	ErrNotCategorical             = errors.New("column is not categorical")
	ErrDegenerateVariance         = errors.New("zero variance")
	ErrUnknownMethod              = errors.New("unknown correlation method")
)

// FailureKind tags why a comparison or trend fit could not be produced.
type FailureKind string

const (
	FailureUnknownColumn          FailureKind = "unknown_column"
	FailureUnknownLabel           FailureKind = "unknown_label"
	FailureNotCategorical         FailureKind = "not_categorical"
	FailureNotNumeric             FailureKind = "not_numeric"
	FailureInsufficientGroups     FailureKind = "insufficient_groups"
	FailureInsufficientSampleSize FailureKind = "insufficient_sample_size"
	FailureDegenerateVariance     FailureKind = "degenerate_variance"
)

var kindSentinel = map[FailureKind]error{
	FailureUnknownColumn:          ErrUnknownColumn,
	FailureUnknownLabel:           ErrUnknownLabel,
	FailureNotCategorical:         ErrNotCategorical,
	FailureNotNumeric:             ErrNotNumeric,
	FailureInsufficientGroups:     ErrInsufficientGroups,
	FailureInsufficientSampleSize: ErrInsufficientSampleSize,
	FailureDegenerateVariance:     ErrDegenerateVariance,
}

// ComparisonError is returned by Compare and FitTrend. It unwraps to the
// sentinel matching Kind.
type ComparisonError struct {
	Kind   FailureKind
	Column string
	Label  string
	// Size is the offending sample size for insufficient_sample_size.
	Size int
}

func (e *ComparisonError) Error() string {
	switch e.Kind {
	case FailureUnknownColumn:
		return fmt.Sprintf("unknown column %q", e.Column)
	case FailureUnknownLabel:
		return fmt.Sprintf("label %q not found in column %q", e.Label, e.Column)
	case FailureNotCategorical:
		return fmt.Sprintf("column %q is not categorical", e.Column)
	case FailureNotNumeric:
		return fmt.Sprintf("column %q is not numeric", e.Column)
	case FailureInsufficientGroups:
		return fmt.Sprintf("column %q has fewer than two distinct labels", e.Column)
	case FailureInsufficientSampleSize:
		if e.Label != "" {
			return fmt.Sprintf("group %q of %q has %d usable values, need at least 2", e.Label, e.Column, e.Size)
		}
		return fmt.Sprintf("only %d usable values, need at least 2", e.Size)
	case FailureDegenerateVariance:
		return fmt.Sprintf("zero variance in %q", e.Column)
	default:
		return string(e.Kind)
	}
}

func (e *ComparisonError) Unwrap() error { return kindSentinel[e.Kind] }

// Failure is the serializable form of a ComparisonError.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// FailureOf converts err into a Failure. Errors that are not a
// *ComparisonError return ok=false.
func FailureOf(err error) (Failure, bool) {
	var ce *ComparisonError
	if !errors.As(err, &ce) {
		return Failure{}, false
	}
	return Failure{Kind: ce.Kind, Message: ce.Error()}, true
}
