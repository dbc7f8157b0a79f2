package forecast

import (
	"fmt"
	"log/slog"

	"github.com/aouyang1/go-paysynth/errs"
	"github.com/aouyang1/go-paysynth/timedataset"
)

const (
	DefaultDegree = 2
	MaxDegree     = 10
)

var (
	ErrInvalidDegree     = fmt.Errorf("polynomial degree out of range, %w", errs.ErrConfiguration)
	ErrInvalidPercentile = fmt.Errorf("outlier percentiles must satisfy 0 <= lower < upper <= 1, %w", errs.ErrConfiguration)
	ErrNegativePasses    = fmt.Errorf("negative number of outlier passes, %w", errs.ErrConfiguration)
	ErrNegativeTukey     = fmt.Errorf("negative tukey factor, %w", errs.ErrConfiguration)
)

// OutlierOptions configures repeated fits where points whose residuals fall outside
// Tukey fences are dropped from the next fit.
type OutlierOptions struct {
	NumPasses       int     `json:"num_passes"`
	UpperPercentile float64 `json:"upper_percentile"`
	LowerPercentile float64 `json:"lower_percentile"`
	TukeyFactor     float64 `json:"tukey_factor"`
}

func NewOutlierOptions() *OutlierOptions {
	return &OutlierOptions{
		NumPasses:       3,
		UpperPercentile: 0.9,
		LowerPercentile: 0.1,
		TukeyFactor:     1.0,
	}
}

func (o *OutlierOptions) Validate() error {
	if o.NumPasses < 0 {
		return fmt.Errorf("%d passes, %w", o.NumPasses, ErrNegativePasses)
	}
	if o.LowerPercentile < 0 || o.UpperPercentile > 1 || o.LowerPercentile >= o.UpperPercentile {
		return fmt.Errorf("lower %.3f, upper %.3f, %w", o.LowerPercentile, o.UpperPercentile, ErrInvalidPercentile)
	}
	if o.TukeyFactor < 0 {
		return fmt.Errorf("tukey factor %.3f, %w", o.TukeyFactor, ErrNegativeTukey)
	}
	return nil
}

// Options configures a polynomial trend forecast over the sequence index of a series
type Options struct {
	// Degree of the polynomial basis [1, x, ..., x^Degree]
	Degree int `json:"degree"`

	// RankTolerance is passed to the least squares fit. Zero uses the regression default.
	RankTolerance float64 `json:"rank_tolerance,omitempty"`

	// Marker pins monthly dates to a month marker when inferring the cadence. Nil infers
	// month end or month start from the history.
	Marker timedataset.MonthMarker `json:"-"`

	OutlierOptions *OutlierOptions `json:"outlier_options,omitempty"`
}

// NewDefaultOptions returns a quadratic trend with no outlier passes
func NewDefaultOptions() *Options {
	return &Options{
		Degree: DefaultDegree,
	}
}

// Validate returns a defaulted copy of the options
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	if o.Degree < 0 || o.Degree > MaxDegree {
		return nil, fmt.Errorf("degree %d not within [0, %d], %w", o.Degree, MaxDegree, ErrInvalidDegree)
	}
	if o.RankTolerance < 0 {
		return nil, fmt.Errorf("rank tolerance of %g, %w", o.RankTolerance, errs.ErrConfiguration)
	}
	opt := *o
	if o.OutlierOptions != nil {
		if err := o.OutlierOptions.Validate(); err != nil {
			return nil, err
		}
		outlierOpt := *o.OutlierOptions
		opt.OutlierOptions = &outlierOpt
	}
	if opt.Degree > 3 {
		slog.Warn("high degree polynomials extrapolate poorly", "degree", opt.Degree)
	}
	return &opt, nil
}
