package linearmodel

import (
	"errors"
	"slices"
	"testing"

	"github.com/aouyang1/go-paysynth/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestOLSOptionsValidate(t *testing.T) {
	testData := map[string]struct {
		opt      *OLSOptions
		err      error
		expected *OLSOptions
	}{
		"nil": {nil, nil, NewDefaultOLSOptions()},
		"zero tolerance defaults": {
			&OLSOptions{
				FitIntercept: false,
			}, nil,
			&OLSOptions{
				FitIntercept:  false,
				RankTolerance: DefaultRankTolerance,
			},
		},
		"negative tolerance": {
			&OLSOptions{
				RankTolerance: -1,
			},
			ErrNegativeTolerance,
			nil,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			opt, err := td.opt.Validate()
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, opt)
		})
	}
}

func TestOLSRegression(t *testing.T) {
	tol := 1e-5
	testData := map[string]struct {
		x         [][]float64
		y         []float64
		opt       *OLSOptions
		intercept float64
		coef      []float64
		err       error
		category  error
	}{
		"ols model intercept": {
			x: [][]float64{
				{0, 0},
				{3, 5},
				{9, 20},
				{12, 6},
				{15, 10},
			},
			y:         []float64{2, 31, 109, 62, 87},
			intercept: 2.0,
			coef:      []float64{3.0, 4.0},
		},
		"ols model no intercept": {
			x: [][]float64{
				{1, 0, 0},
				{1, 3, 5},
				{1, 9, 20},
				{1, 12, 6},
				{1, 15, 10},
			},
			y: []float64{2, 31, 109, 62, 87},
			opt: &OLSOptions{
				FitIntercept: false,
			},
			intercept: 0.0,
			coef:      []float64{2.0, 3.0, 4.0},
		},
		"quadratic basis exact": {
			x: [][]float64{
				{1, 0, 0},
				{1, 1, 1},
				{1, 2, 4},
			},
			y: []float64{1, 2.5, 5},
			opt: &OLSOptions{
				FitIntercept: false,
			},
			coef: []float64{1.0, 1.0, 0.5},
		},
		"collinear columns": {
			x: [][]float64{
				{1, 2, 4},
				{1, 3, 6},
				{1, 5, 10},
				{1, 7, 14},
			},
			y: []float64{1, 2, 3, 4},
			opt: &OLSOptions{
				FitIntercept: false,
			},
			err:      ErrRankDeficient,
			category: errs.ErrConfiguration,
		},
		"more features than observations": {
			x: [][]float64{
				{1, 0, 0},
				{1, 1, 1},
			},
			y: []float64{1, 2},
			opt: &OLSOptions{
				FitIntercept: false,
			},
			err:      ErrUnderdetermined,
			category: errs.ErrInsufficientData,
		},
		"target mismatch": {
			x: [][]float64{
				{1, 0},
				{1, 1},
			},
			y:        []float64{1, 2, 3},
			err:      ErrTargetLenMismatch,
			category: errs.ErrInvalidArgument,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			x := mat.NewDense(len(td.x), len(td.x[0]), slices.Concat(td.x...))
			y := mat.NewDense(len(td.y), 1, td.y)

			var model Model
			model, err := NewOLSRegression(td.opt)
			require.Nil(t, err)

			err = model.Fit(x, y)
			if td.err != nil {
				require.ErrorIs(t, err, td.err)
				assert.True(t, errors.Is(err, td.category))
				return
			}
			require.Nil(t, err)

			assert.InDelta(t, td.intercept, model.Intercept(), tol, "intercept")
			assert.InDeltaSlice(t, td.coef, model.Coef(), tol, "coefficients")

			r2, err := model.Score(x, y)
			require.Nil(t, err)
			assert.InDelta(t, 1.0, r2, tol, "score")

			pred, err := model.Predict(x)
			require.Nil(t, err)
			assert.InDeltaSlice(t, td.y, pred, tol, "prediction")
		})
	}
}

func TestOLSPredictErrors(t *testing.T) {
	model, err := NewOLSRegression(&OLSOptions{FitIntercept: false})
	require.Nil(t, err)

	x := mat.NewDense(3, 2, []float64{1, 0, 1, 1, 1, 2})
	y := mat.NewDense(3, 1, []float64{1, 3, 5})
	require.Nil(t, model.Fit(x, y))

	_, err = model.Predict(nil)
	assert.ErrorIs(t, err, ErrNoDesignMatrix)

	_, err = model.Predict(mat.NewDense(1, 3, []float64{1, 3, 9}))
	assert.ErrorIs(t, err, ErrFeatureLenMismatch)

	pred, err := model.Predict(mat.NewDense(1, 2, []float64{1, 3}))
	require.Nil(t, err)
	assert.InDeltaSlice(t, []float64{7}, pred, 1e-9)

	var uninit OLSRegression
	assert.ErrorIs(t, uninit.Fit(x, y), ErrNoOptions)
}
