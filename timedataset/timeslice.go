package timedataset

import (
	"fmt"
	"math"
	"time"

	"github.com/aouyang1/go-paysynth/errs"
)

var ErrCannotInferFreq = fmt.Errorf("cannot infer frequency from fewer than 2 time points, %w", errs.ErrInsufficientData)

type TimeSlice []time.Time

func (t TimeSlice) StartTime() time.Time {
	var startTime time.Time
	if len(t) < 1 {
		return startTime
	}
	return t[0]
}

func (t TimeSlice) EndTime() time.Time {
	var lastTime time.Time
	if len(t) < 1 {
		return lastTime
	}
	return t[len(t)-1]
}

// EstimateFreq returns the most common delta between consecutive points, preferring
// the smaller delta on ties.
func (t TimeSlice) EstimateFreq() (time.Duration, error) {
	if len(t) < 2 {
		return 0, ErrCannotInferFreq
	}

	frequencies := make(map[time.Duration]int)
	for i := 1; i < len(t); i++ {
		delta := t[i].Sub(t[i-1])
		frequencies[delta] += 1
	}

	var maxCnt int
	maxDelta := time.Duration(math.MaxInt64)

	for delta, cnt := range frequencies {
		if cnt > maxCnt || (cnt == maxCnt && delta < maxDelta) {
			maxCnt = cnt
			maxDelta = delta
		}
	}
	return maxDelta, nil
}

// Format renders each time with the layout, e.g. for chart axes
func (t TimeSlice) Format(layout string) []string {
	out := make([]string, len(t))
	for i, tPnt := range t {
		out[i] = tPnt.Format(layout)
	}
	return out
}
