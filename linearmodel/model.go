// Package linearmodel holds the linear regression fits used by the forecaster
package linearmodel

import (
	"gonum.org/v1/gonum/mat"
)

// Model is a linear fit of a target column on a feature matrix
type Model interface {
	Fit(x, y mat.Matrix) error
	Predict(x mat.Matrix) ([]float64, error)
	Score(x, y mat.Matrix) (float64, error)
	Intercept() float64
	Coef() []float64
}
