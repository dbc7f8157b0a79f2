package feature

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSetSet(t *testing.T) {
	testData := map[string]struct {
		init     *Set
		f        Feature
		data     []float64
		expected *Set
		err      error
	}{
		"initial set": {
			init: NewSet(),
			f:    NewPolynomial(1),
			data: []float64{1, 2, 3, 4},
			expected: &Set{
				m: 4,
				set: map[string][]float64{
					"poly_1": {1, 2, 3, 4},
				},
				labels: []Feature{NewPolynomial(1)},
			},
		},
		"appended feature keeps order": {
			init: &Set{
				m: 4,
				set: map[string][]float64{
					"poly_1": {1, 2, 3, 4},
				},
				labels: []Feature{NewPolynomial(1)},
			},
			f:    NewPolynomial(0),
			data: []float64{1, 1, 1, 1},
			expected: &Set{
				m: 4,
				set: map[string][]float64{
					"poly_1": {1, 2, 3, 4},
					"poly_0": {1, 1, 1, 1},
				},
				labels: []Feature{
					NewPolynomial(1),
					NewPolynomial(0),
				},
			},
		},
		"set with mismatched data": {
			init: &Set{
				m: 4,
				set: map[string][]float64{
					"poly_1": {1, 2, 3, 4},
				},
				labels: []Feature{NewPolynomial(1)},
			},
			f:    NewPolynomial(2),
			data: []float64{1, 4},
			err:  ErrFeatureLenMismatch,
		},
		"overwrite feature": {
			init: &Set{
				m: 4,
				set: map[string][]float64{
					"poly_1": {1, 2, 3, 4},
				},
				labels: []Feature{NewPolynomial(1)},
			},
			f:    NewPolynomial(1),
			data: []float64{5, 6, 7, 8},
			expected: &Set{
				m: 4,
				set: map[string][]float64{
					"poly_1": {5, 6, 7, 8},
				},
				labels: []Feature{
					NewPolynomial(1),
				},
			},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			err := td.init.Set(td.f, td.data)
			if td.err != nil {
				require.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, td.expected, td.init)
		})
	}
}

func TestSetDel(t *testing.T) {
	testData := map[string]struct {
		init     *Set
		f        Feature
		expected *Set
	}{
		"unknown feature": {
			init: &Set{
				m: 4,
				set: map[string][]float64{
					"poly_1": {1, 2, 3, 4},
				},
				labels: []Feature{NewPolynomial(1)},
			},
			f: NewPolynomial(5),
			expected: &Set{
				m: 4,
				set: map[string][]float64{
					"poly_1": {1, 2, 3, 4},
				},
				labels: []Feature{NewPolynomial(1)},
			},
		},
		"valid delete": {
			init: &Set{
				m: 4,
				set: map[string][]float64{
					"poly_1": {1, 2, 3, 4},
				},
				labels: []Feature{NewPolynomial(1)},
			},
			f: NewPolynomial(1),
			expected: &Set{
				set:    map[string][]float64{},
				labels: []Feature{},
			},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			s := td.init.Del(td.f)
			assert.Equal(t, td.expected, s)
		})
	}
}

func TestSetRows(t *testing.T) {
	s, err := PolynomialBasis([]float64{0, 1, 2, 3}, 1)
	require.NoError(t, err)

	sub, err := s.Rows([]int{1, 3})
	require.NoError(t, err)
	assert.Equal(t, 2, sub.Len())
	assert.Equal(t, s.Labels().Strings(), sub.Labels().Strings())

	vals, exists := sub.Get(NewPolynomial(1))
	require.True(t, exists)
	assert.Equal(t, []float64{1, 3}, vals)

	_, err = s.Rows([]int{4})
	assert.ErrorIs(t, err, ErrRowOutOfBounds)
}

func TestMatrix(t *testing.T) {
	testData := map[string]struct {
		init      *Set
		intercept bool
		expected  *mat.Dense
	}{
		"nil": {nil, true, nil},
		"initialized empty": {
			init:      &Set{},
			intercept: true,
			expected:  nil,
		},
		"with intercept": {
			init: &Set{
				m: 4,
				set: map[string][]float64{
					"poly_1": {1, 2, 3, 4},
				},
				labels: []Feature{
					NewPolynomial(1),
				},
			},
			intercept: true,
			expected: mat.NewDense(4, 2, []float64{
				1, 1,
				1, 2,
				1, 3,
				1, 4,
			}),
		},
		"without intercept keeps label order": {
			init: &Set{
				m: 3,
				set: map[string][]float64{
					"poly_2": {0, 1, 4},
					"poly_0": {1, 1, 1},
				},
				labels: []Feature{
					NewPolynomial(2),
					NewPolynomial(0),
				},
			},
			intercept: false,
			expected: mat.NewDense(3, 2, []float64{
				0, 1,
				1, 1,
				4, 1,
			}),
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res := td.init.Matrix(td.intercept)
			if td.expected == nil {
				assert.Nil(t, res)
				return
			}
			require.NotNil(t, res)
			resR, resC := res.Dims()
			expR, expC := td.expected.Dims()
			assert.Equal(t, expR, resR, "matrix rows")
			assert.Equal(t, expC, resC, "matrix columns")

			for i := 0; i < resR; i++ {
				assert.Equal(t, res.RawRowView(i), td.expected.RawRowView(i), fmt.Sprintf("row: %d", i))
			}
		})
	}
}
