package timedataset

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// MultiSeries is a set of named series sharing one aligned date index. Series names
// keep the order in which they were set.
type MultiSeries struct {
	t      TimeSlice
	names  []string
	values map[string][]float64
}

// Record is one row of a MultiSeries: a date and the value of every series on it.
type Record struct {
	Date   time.Time          `json:"date"`
	Values map[string]float64 `json:"values"`
}

// NewMultiSeries creates an empty MultiSeries over the provided date index.
func NewMultiSeries(t []time.Time) (*MultiSeries, error) {
	tSeries := make(TimeSlice, len(t))
	copy(tSeries, t)
	for i := 1; i < len(tSeries); i++ {
		if !tSeries[i].After(tSeries[i-1]) {
			return nil, fmt.Errorf("non-monotonic at %d, %w", i, ErrNonMonotonic)
		}
	}
	return &MultiSeries{
		t:      tSeries,
		values: make(map[string][]float64),
	}, nil
}

// Set stores a copy of y under name. Replacing an existing series keeps its position.
func (m *MultiSeries) Set(name string, y []float64) error {
	if name == "" {
		return ErrEmptySeriesName
	}
	if len(y) != len(m.t) {
		return fmt.Errorf(
			"series %s has length of %d, but the date index has a length of %d, %w",
			name, len(y), len(m.t), ErrDatasetLenMismatch,
		)
	}
	if _, exists := m.values[name]; !exists {
		m.names = append(m.names, name)
	}
	ySeries := make([]float64, len(y))
	copy(ySeries, y)
	m.values[name] = ySeries
	return nil
}

// Derive adds a series computed point-wise from an existing series.
func (m *MultiSeries) Derive(name, src string, fn func(float64) float64) error {
	srcY, exists := m.values[src]
	if !exists {
		return fmt.Errorf("%s, %w", src, ErrUnknownSeries)
	}
	y := make([]float64, len(srcY))
	for i, val := range srcY {
		y[i] = fn(val)
	}
	return m.Set(name, y)
}

// Len returns the number of dates in the shared index
func (m *MultiSeries) Len() int {
	return len(m.t)
}

// Dates returns a copy of the shared date index
func (m *MultiSeries) Dates() TimeSlice {
	t := make(TimeSlice, len(m.t))
	copy(t, m.t)
	return t
}

// Names returns the series names in insertion order
func (m *MultiSeries) Names() []string {
	names := make([]string, len(m.names))
	copy(names, m.names)
	return names
}

// Values returns a copy of the values of a named series
func (m *MultiSeries) Values(name string) ([]float64, bool) {
	y, exists := m.values[name]
	if !exists {
		return nil, false
	}
	dst := make([]float64, len(y))
	copy(dst, y)
	return dst, true
}

// Series returns the named series paired with the shared date index
func (m *MultiSeries) Series(name string) (Series, bool) {
	y, exists := m.values[name]
	if !exists {
		return nil, false
	}
	s := make(Series, len(m.t))
	for i := range m.t {
		s[i] = TimePoint{Date: m.t[i], Value: y[i]}
	}
	return s, true
}

// Records returns the tabular form with one record per date.
func (m *MultiSeries) Records() []Record {
	records := make([]Record, len(m.t))
	for i, tPnt := range m.t {
		vals := make(map[string]float64, len(m.names))
		for _, name := range m.names {
			vals[name] = m.values[name][i]
		}
		records[i] = Record{Date: tPnt, Values: vals}
	}
	return records
}

// MarshalJSON encodes the series names in order along with the records
func (m *MultiSeries) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Columns []string `json:"columns"`
		Records []Record `json:"records"`
	}{
		Columns: m.Names(),
		Records: m.Records(),
	})
}
