package feature

import (
	"errors"
	"fmt"

	"github.com/aouyang1/go-paysynth/errs"
	mat_ "github.com/aouyang1/go-paysynth/mat"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrFeatureLenMismatch = fmt.Errorf("feature length does not match the set, %w", errs.ErrInvalidArgument)
	ErrRowOutOfBounds     = errors.New("row is out of bounds")
)

// Set tracks feature data keyed by the string representation of the feature, keeping
// the order features were first added in. Every feature has m observations.
type Set struct {
	m      int
	set    map[string][]float64
	labels []Feature
}

func NewSet() *Set {
	return &Set{
		set: make(map[string][]float64),
	}
}

// Len returns the number of observations of each feature
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return s.m
}

// Set adds or replaces the data of a feature. Replacing keeps the feature position.
func (s *Set) Set(f Feature, data []float64) error {
	if len(s.labels) > 0 && len(data) != s.m {
		return fmt.Errorf("%s has %d observations, set has %d, %w", f, len(data), s.m, ErrFeatureLenMismatch)
	}
	if s.set == nil {
		s.set = make(map[string][]float64)
	}
	if _, exists := s.set[f.String()]; !exists {
		s.labels = append(s.labels, f)
	}
	s.m = len(data)
	s.set[f.String()] = data
	return nil
}

func (s *Set) Get(f Feature) ([]float64, bool) {
	if s == nil {
		return nil, false
	}
	data, exists := s.set[f.String()]
	return data, exists
}

// Del removes a feature if present
func (s *Set) Del(f Feature) *Set {
	if _, exists := s.set[f.String()]; !exists {
		return s
	}
	delete(s.set, f.String())
	for i, label := range s.labels {
		if label.String() == f.String() {
			s.labels = append(s.labels[:i], s.labels[i+1:]...)
			break
		}
	}
	if len(s.labels) == 0 {
		s.m = 0
	}
	return s
}

// Labels returns the features in the order they were added
func (s *Set) Labels() *Labels {
	if s == nil {
		return nil
	}
	labels := make([]Feature, len(s.labels))
	copy(labels, s.labels)
	return NewLabels(labels)
}

// Rows returns a new set holding only the observations at the given row indices
func (s *Set) Rows(idx []int) (*Set, error) {
	res := NewSet()
	for _, label := range s.labels {
		data := s.set[label.String()]
		sub := make([]float64, len(idx))
		for i, r := range idx {
			if r < 0 || r >= len(data) {
				return nil, fmt.Errorf("row %d of %d, %w", r, len(data), ErrRowOutOfBounds)
			}
			sub[i] = data[r]
		}
		if err := res.Set(label, sub); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Matrix returns a matrix representation of the Set to be used with matrix methods.
// The matrix has m rows representing the number of observations and n columns representing
// the number of features in label order, with an optional leading column of ones.
func (s *Set) Matrix(intercept bool) *mat.Dense {
	if s == nil || len(s.labels) == 0 || s.m == 0 {
		return nil
	}

	cols := make([][]float64, 0, len(s.labels)+1)
	if intercept {
		ones := make([]float64, s.m)
		floats.AddConst(1.0, ones)
		cols = append(cols, ones)
	}
	for _, label := range s.labels {
		cols = append(cols, s.set[label.String()])
	}

	// lengths are enforced by Set
	mx, err := mat_.NewDenseFromCols(cols)
	if err != nil {
		panic(err)
	}
	return mx
}
