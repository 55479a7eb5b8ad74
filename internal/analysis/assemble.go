package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/statloom/internal/dataset"
)

// Options controls what the Assembler computes.
type Options struct {
	Method   Method
	TopN     int
	Classify ClassifyOptions
	Metrics  []MetricSpec
	// Comparison and Trend are optional.
	Comparison *ComparisonRequest
	Trend      *TrendRequest
	// Concurrency bounds correlation workers; 0 means GOMAXPROCS.
	Concurrency int
}

// DefaultOptions returns pearson correlation over the top 3 numeric columns.
func DefaultOptions() Options {
	return Options{Method: Pearson, TopN: DefaultTopN}
}

// Profile is the complete statistical summary of one dataset.
type Profile struct {
	Name              string             `json:"name"`
	Classification    Classification     `json:"classification"`
	Aggregates        AggregateProfile   `json:"aggregates"`
	Metrics           []MetricValue      `json:"metrics"`
	Correlation       *CorrelationMatrix `json:"correlation"`
	Comparison        *GroupComparison   `json:"comparison"`
	ComparisonFailure *Failure           `json:"comparison_failure"`
	Trend             *TrendFit          `json:"trend"`
	Notes             []string           `json:"notes"`
	// Dataset is the input, shared and never modified.
	Dataset *dataset.Dataset `json:"-"`
}

// Assembler builds Profiles. It keeps no state between calls and is safe
// for concurrent use.
type Assembler struct {
	logger *zap.Logger
	opts   Options
}

// NewAssembler returns an Assembler. A nil logger discards logs.
func NewAssembler(logger *zap.Logger, opts Options) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{logger: logger, opts: opts}
}

// Assemble classifies ds and runs every analysis concurrently. Comparison
// and trend problems are recorded on the Profile rather than returned.
func (a *Assembler) Assemble(ctx context.Context, ds *dataset.Dataset) (*Profile, error) {
	if ds == nil || ds.NumCols() == 0 || ds.NumRows() == 0 {
		return nil, ErrEmptyDataset
	}
	method, err := ParseMethod(string(a.opts.Method))
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := a.logger.With(zap.String("dataset", ds.Name()))
	start := time.Now()

	p := &Profile{
		Name:           ds.Name(),
		Classification: ClassifyWith(ds, a.opts.Classify),
		Dataset:        ds,
	}
	cls := p.Classification
	log.Debug("classified columns",
		zap.Int("numeric", len(cls.Numeric)),
		zap.Int("categorical", len(cls.Categorical)))

	var compareErr, trendErr error
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p.Aggregates = Aggregate(ds, cls, a.opts.TopN)
		return nil
	})
	g.Go(func() error {
		p.Metrics = ExtractMetrics(ds, cls, a.opts.Metrics)
		return nil
	})
	g.Go(func() error {
		t := time.Now()
		m, err := correlate(gctx, ds, cls, method, a.opts.Concurrency)
		if err != nil {
			return fmt.Errorf("correlate: %w", err)
		}
		p.Correlation = m
		log.Debug("correlation done", zap.String("method", string(method)), zap.Duration("took", time.Since(t)))
		return nil
	})
	if req := a.opts.Comparison; req != nil {
		g.Go(func() error {
			p.Comparison, compareErr = CompareWith(ds, cls, *req)
			return nil
		})
	}
	if req := a.opts.Trend; req != nil {
		g.Go(func() error {
			p.Trend, trendErr = FitTrend(ds, cls, req.X, req.Y)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if p.Aggregates.NoNumericColumns {
		p.Notes = append(p.Notes, "No numeric columns found; aggregates are empty.")
		log.Warn("no numeric columns", zap.Error(ErrNoNumericColumns))
	}
	if p.Correlation == nil {
		p.Notes = append(p.Notes, "Fewer than two numeric columns; correlation matrix skipped.")
		log.Warn("correlation skipped", zap.Error(ErrInsufficientNumericColumns))
	}
	for _, mv := range p.Metrics {
		if !mv.Available {
			p.Notes = append(p.Notes, fmt.Sprintf("Metric %q unavailable: column %q is missing or not numeric.", mv.Name, mv.Column))
		}
	}
	if compareErr != nil {
		f, ok := FailureOf(compareErr)
		if !ok {
			return nil, compareErr
		}
		p.ComparisonFailure = &f
		p.Notes = append(p.Notes, "Group comparison skipped: "+f.Message+".")
		log.Warn("comparison failed", zap.String("kind", string(f.Kind)), zap.Error(compareErr))
	}
	if trendErr != nil {
		if !errors.As(trendErr, new(*ComparisonError)) {
			return nil, trendErr
		}
		p.Notes = append(p.Notes, "Trend fit skipped: "+trendErr.Error()+".")
		log.Warn("trend failed", zap.Error(trendErr))
	}
	if p.Notes == nil {
		p.Notes = []string{}
	}
	if p.Metrics == nil {
		p.Metrics = []MetricValue{}
	}

	log.Debug("profile assembled",
		zap.Int("rows", ds.NumRows()),
		zap.Int("cols", ds.NumCols()),
		zap.Duration("took", time.Since(start)))
	return p, nil
}
