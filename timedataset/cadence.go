package timedataset

import (
	"fmt"
	"time"

	"github.com/aouyang1/go-paysynth/errs"
)

var ErrIrregularCadence = fmt.Errorf("dates do not follow a regular cadence, %w", errs.ErrConfiguration)

// Cadence produces dates continuing a regular series.
type Cadence interface {
	// Next returns the date the given number of steps after last
	Next(last time.Time, steps int) time.Time
	String() string
}

// Monthly steps through consecutive calendar months placing each on a marker
type Monthly struct {
	Marker MonthMarker
}

func (m Monthly) Next(last time.Time, steps int) time.Time {
	return MarkIndex(m.Marker, MonthIndex(last)+steps, last.Location())
}

func (m Monthly) String() string {
	return fmt.Sprintf("monthly_%s", m.Marker)
}

// Fixed steps by a constant duration
type Fixed struct {
	Interval time.Duration
}

func (f Fixed) Next(last time.Time, steps int) time.Time {
	return last.Add(time.Duration(steps) * f.Interval)
}

func (f Fixed) String() string {
	return fmt.Sprintf("every_%s", f.Interval)
}

// InferCadence determines the cadence of t. Consecutive calendar months produce a Monthly
// cadence using the provided marker. When marker is nil month end, month start, business
// month end and then a shared day of month are tried in turn. Otherwise all deltas must be
// equal and a Fixed cadence is returned.
func InferCadence(t TimeSlice, marker MonthMarker) (Cadence, error) {
	if len(t) < 2 {
		return nil, ErrCannotInferFreq
	}

	monthly := true
	for i := 1; i < len(t); i++ {
		if MonthIndex(t[i])-MonthIndex(t[i-1]) != 1 {
			monthly = false
			break
		}
	}

	if monthly {
		if marker != nil {
			if !followsMarker(t, marker) {
				return nil, fmt.Errorf("dates are not placed on %s, %w", marker, ErrIrregularCadence)
			}
			return Monthly{Marker: marker}, nil
		}
		for _, m := range []MonthMarker{MonthEnd, MonthStart, NewBusinessMonthEnd(), inferDayOfMonth(t)} {
			if followsMarker(t, m) {
				return Monthly{Marker: m}, nil
			}
		}
		return nil, fmt.Errorf("unable to infer month marker, %w", ErrIrregularCadence)
	}

	freq, err := t.EstimateFreq()
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(t); i++ {
		if delta := t[i].Sub(t[i-1]); delta != freq {
			return nil, fmt.Errorf("delta of %s at %d, expected %s, %w", delta, i, freq, ErrIrregularCadence)
		}
	}
	return Fixed{Interval: freq}, nil
}
