// Package timedataset holds the tabular time series shapes shared by the synthesizer,
// the forecaster and the rendering layer.
package timedataset

import (
	"fmt"
	"time"

	"github.com/aouyang1/go-paysynth/errs"
)

var (
	ErrNonMonotonic       = fmt.Errorf("time feature is not strictly increasing, %w", errs.ErrInvalidArgument)
	ErrDatasetLenMismatch = fmt.Errorf("time feature has a different length than observations, %w", errs.ErrInvalidArgument)
	ErrEmptySeriesName    = fmt.Errorf("series name is empty, %w", errs.ErrInvalidArgument)
	ErrUnknownSeries      = fmt.Errorf("unknown series, %w", errs.ErrInvalidArgument)
)

// TimePoint is a single dated observation.
type TimePoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Series is an ordered sequence of time points, strictly increasing in date.
type Series []TimePoint

// NewSeries returns a Series given a time and value slice. Both must be of the same
// length and the times must be strictly increasing.
func NewSeries(t []time.Time, y []float64) (Series, error) {
	if len(t) != len(y) {
		return nil, fmt.Errorf(
			"time feature has length of %d, but values has a length of %d, %w",
			len(t), len(y), ErrDatasetLenMismatch,
		)
	}

	s := make(Series, len(t))
	for i := 0; i < len(t); i++ {
		s[i] = TimePoint{Date: t[i], Value: y[i]}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks that dates are strictly increasing with no duplicates.
func (s Series) Validate() error {
	for i := 1; i < len(s); i++ {
		if !s[i].Date.After(s[i-1].Date) {
			return fmt.Errorf("non-monotonic at %d, %w", i, ErrNonMonotonic)
		}
	}
	return nil
}

func (s Series) Len() int {
	return len(s)
}

// Dates returns a copy of the series dates
func (s Series) Dates() TimeSlice {
	t := make([]time.Time, len(s))
	for i, pnt := range s {
		t[i] = pnt.Date
	}
	return TimeSlice(t)
}

// Values returns a copy of the series values
func (s Series) Values() []float64 {
	y := make([]float64, len(s))
	for i, pnt := range s {
		y[i] = pnt.Value
	}
	return y
}

func (s Series) Copy() Series {
	if s == nil {
		return nil
	}
	dst := make(Series, len(s))
	copy(dst, s)
	return dst
}
