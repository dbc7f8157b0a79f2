// Package forecast extrapolates a series by fitting a polynomial trend over its sequence
// index with ordinary least squares.
package forecast

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/aouyang1/go-paysynth/errs"
	"github.com/aouyang1/go-paysynth/feature"
	"github.com/aouyang1/go-paysynth/linearmodel"
	"github.com/aouyang1/go-paysynth/stats"
	"github.com/aouyang1/go-paysynth/timedataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrUninitializedForecast = errors.New("uninitialized forecast")
	ErrUntrainedForecast     = fmt.Errorf("forecast has not been trained yet, %w", errs.ErrInvalidArgument)
	ErrNoModelCoefficients   = errors.New("no model coefficients from fit")
	ErrInvalidHorizon        = fmt.Errorf("horizon must be positive, %w", errs.ErrInvalidArgument)
	ErrInsufficientData      = fmt.Errorf("insufficient usable history for the polynomial degree, %w", errs.ErrInsufficientData)
	ErrNoTimeIndex           = fmt.Errorf("forecast was fit without dates, %w", errs.ErrInvalidArgument)

	ErrRankDeficient    = linearmodel.ErrRankDeficient
	ErrIrregularCadence = timedataset.ErrIrregularCadence
)

// Forecast is a polynomial trend model of a single series. Observations are indexed
// 0..N-1 and future points continue at N, N+1, ...
type Forecast struct {
	opt    *Options
	scores *Scores

	fLabels *feature.Labels
	coef    []float64

	n        int
	fitted   []float64
	residual []float64
	excluded []int

	lastDate time.Time
	cadence  timedataset.Cadence

	trained bool
}

// New creates a new forecast instance with the given options. If none are provided, a default
// is used
func New(opt *Options) (*Forecast, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &Forecast{opt: opt}, nil
}

// NewFromModel creates a new forecast instance given a forecast Model to initialize. This
// instance can be used for inference immediately and does not need to be trained again.
func NewFromModel(model Model) (*Forecast, error) {
	opt, err := model.Options.Validate()
	if err != nil {
		return nil, err
	}
	labels, err := model.Weights.FeatureLabels()
	if err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, ErrNoModelCoefficients
	}

	f := &Forecast{
		opt:      opt,
		scores:   model.Scores,
		fLabels:  feature.NewLabels(labels),
		coef:     model.Weights.Coefficients(),
		n:        model.TrainPoints,
		excluded: model.Excluded,
		trained:  true,
	}
	if model.Cadence != nil {
		cadence, err := model.Cadence.ToCadence()
		if err != nil {
			return nil, err
		}
		f.cadence = cadence
		f.lastDate = model.TrainEndTime
	}
	return f, nil
}

func observationMatrix(y []float64) *mat.Dense {
	return mat.NewDense(len(y), 1, y)
}

func indices(start, n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = float64(start + i)
	}
	return x
}

// Fit trains on a dated series. The dates must follow a monthly or fixed cadence so the
// forecast can continue them.
func (f *Forecast) Fit(s timedataset.Series) error {
	if f == nil {
		return ErrUninitializedForecast
	}
	if err := s.Validate(); err != nil {
		return err
	}
	if err := f.fit(s.Values()); err != nil {
		return err
	}

	cadence, err := timedataset.InferCadence(s.Dates(), f.opt.Marker)
	if err != nil {
		f.reset()
		return fmt.Errorf("unable to continue history dates, %w", err)
	}
	f.cadence = cadence
	f.lastDate = s[len(s)-1].Date
	return nil
}

// FitValues trains on values alone. Only PredictSteps can be used afterwards.
func (f *Forecast) FitValues(y []float64) error {
	if f == nil {
		return ErrUninitializedForecast
	}
	return f.fit(y)
}

func (f *Forecast) reset() {
	opt := f.opt
	*f = Forecast{opt: opt}
}

func (f *Forecast) fit(y []float64) error {
	f.reset()

	// missing observations keep their index but are left out of the fit
	usable := make([]int, 0, len(y))
	for i, v := range y {
		if math.IsNaN(v) {
			continue
		}
		if math.IsInf(v, 0) {
			return fmt.Errorf("infinite value at index %d, %w", i, errs.ErrInvalidArgument)
		}
		usable = append(usable, i)
	}
	if err := f.checkUsable(len(usable)); err != nil {
		return err
	}

	x, err := feature.PolynomialBasis(indices(0, len(y)), f.opt.Degree)
	if err != nil {
		return err
	}

	numPasses := 0
	if f.opt.OutlierOptions != nil {
		numPasses = f.opt.OutlierOptions.NumPasses
	}

	var excluded []int
	for pass := 0; pass <= numPasses; pass++ {
		coef, err := f.fitRows(x, y, usable)
		if err != nil {
			return err
		}
		f.coef = coef
		f.fLabels = x.Labels()

		if f.opt.OutlierOptions == nil || pass == numPasses {
			break
		}

		residual := make([]float64, len(usable))
		fitted := f.evaluate(x)
		for i, idx := range usable {
			residual[i] = y[idx] - fitted[idx]
		}
		outlierIdxs := stats.DetectOutliers(
			residual,
			f.opt.OutlierOptions.LowerPercentile,
			f.opt.OutlierOptions.UpperPercentile,
			f.opt.OutlierOptions.TukeyFactor,
		)

		// no more outliers detected with outlier options so break early
		if len(outlierIdxs) == 0 {
			break
		}
		if err := f.checkUsable(len(usable) - len(outlierIdxs)); err != nil {
			slog.Warn("not removing outliers, too few points would remain",
				"outliers", len(outlierIdxs), "usable", len(usable), "degree", f.opt.Degree)
			break
		}

		outlierSet := make(map[int]struct{}, len(outlierIdxs))
		for _, i := range outlierIdxs {
			outlierSet[i] = struct{}{}
		}
		next := make([]int, 0, len(usable)-len(outlierIdxs))
		for i, idx := range usable {
			if _, exists := outlierSet[i]; exists {
				excluded = append(excluded, idx)
				continue
			}
			next = append(next, idx)
		}
		slog.Debug("removed outliers from fit", "pass", pass, "outliers", len(outlierIdxs))
		usable = next
	}

	fitted := f.evaluate(x)
	residual := make([]float64, len(y))
	floats.SubTo(residual, y, fitted)

	scores, err := NewScores(fitted, y)
	if err != nil {
		return err
	}

	f.n = len(y)
	f.fitted = fitted
	f.residual = residual
	f.scores = scores
	f.excluded = excluded
	f.trained = true
	return nil
}

func (f *Forecast) checkUsable(n int) error {
	if n < 2 || n <= f.opt.Degree {
		return fmt.Errorf("%d usable points for degree %d, need at least %d, %w",
			n, f.opt.Degree, max(2, f.opt.Degree+1), ErrInsufficientData)
	}
	return nil
}

func (f *Forecast) fitRows(x *feature.Set, y []float64, rows []int) ([]float64, error) {
	xFit, err := x.Rows(rows)
	if err != nil {
		return nil, err
	}
	yFit := make([]float64, len(rows))
	for i, idx := range rows {
		yFit[i] = y[idx]
	}

	var model linearmodel.Model
	model, err = linearmodel.NewOLSRegression(&linearmodel.OLSOptions{
		FitIntercept:  false,
		RankTolerance: f.opt.RankTolerance,
	})
	if err != nil {
		return nil, err
	}
	if err := model.Fit(xFit.Matrix(false), observationMatrix(yFit)); err != nil {
		return nil, fmt.Errorf("unable to fit polynomial of degree %d, %w", f.opt.Degree, err)
	}
	return model.Coef(), nil
}

// evaluate multiplies each feature in x by its coefficient, matching features by label
func (f *Forecast) evaluate(x *feature.Set) []float64 {
	res := make([]float64, x.Len())
	for _, label := range x.Labels().Labels() {
		wIdx, exists := f.fLabels.Index(label)
		if !exists {
			continue
		}
		data, _ := x.Get(label)
		floats.AddScaled(res, f.coef[wIdx], data)
	}
	return res
}

// Predict evaluates the fitted polynomial at arbitrary sequence indices
func (f *Forecast) Predict(x []float64) ([]float64, error) {
	if f == nil {
		return nil, ErrUninitializedForecast
	}
	if !f.trained {
		return nil, ErrUntrainedForecast
	}
	basis, err := feature.PolynomialBasis(x, f.opt.Degree)
	if err != nil {
		return nil, err
	}
	return f.evaluate(basis), nil
}

// PredictSteps returns the next h values following the training history
func (f *Forecast) PredictSteps(h int) ([]float64, error) {
	if f == nil {
		return nil, ErrUninitializedForecast
	}
	if h <= 0 {
		return nil, fmt.Errorf("horizon of %d, %w", h, ErrInvalidHorizon)
	}
	if !f.trained {
		return nil, ErrUntrainedForecast
	}
	return f.Predict(indices(f.n, h))
}

// Forecast returns the next h dated points continuing the cadence of the training series
func (f *Forecast) Forecast(h int) (timedataset.Series, error) {
	if f == nil {
		return nil, ErrUninitializedForecast
	}
	y, err := f.PredictSteps(h)
	if err != nil {
		return nil, err
	}
	if f.cadence == nil {
		return nil, ErrNoTimeIndex
	}

	t := make([]time.Time, h)
	for i := range t {
		t[i] = f.cadence.Next(f.lastDate, i+1)
	}
	return timedataset.NewSeries(t, y)
}

// Extrapolate fits a forecast on the series and returns the next h dated points
func Extrapolate(s timedataset.Series, h int, opt *Options) (timedataset.Series, error) {
	if h <= 0 {
		return nil, fmt.Errorf("horizon of %d, %w", h, ErrInvalidHorizon)
	}
	f, err := New(opt)
	if err != nil {
		return nil, err
	}
	if err := f.Fit(s); err != nil {
		return nil, err
	}
	return f.Forecast(h)
}

// FeatureLabels returns the slice of feature labels in the order of the coefficients
func (f *Forecast) FeatureLabels() []feature.Feature {
	if f == nil {
		return nil
	}
	return f.fLabels.Labels()
}

// Coefficients returns a forecast model map of coefficients keyed by the string
// representation of each feature label
func (f *Forecast) Coefficients() (map[string]float64, error) {
	if f == nil {
		return nil, ErrUninitializedForecast
	}

	labels := f.fLabels.Labels()
	if len(labels) == 0 || len(f.coef) == 0 {
		return nil, ErrNoModelCoefficients
	}
	coef := make(map[string]float64)
	for i := 0; i < len(f.coef); i++ {
		coef[labels[i].String()] = f.coef[i]
	}
	return coef, nil
}

// Intercept returns the constant term of the polynomial
func (f *Forecast) Intercept() float64 {
	if f == nil {
		return 0
	}
	idx, exists := f.fLabels.Index(feature.NewPolynomial(0))
	if !exists {
		return 0
	}
	return f.coef[idx]
}

// ModelEq returns a string representation of the model equation in the format of
// y ~ b + m1*x + m2*x^2 + ...
func (f *Forecast) ModelEq() (string, error) {
	if f == nil {
		return "", ErrUninitializedForecast
	}
	if !f.trained {
		return "", ErrUntrainedForecast
	}

	eq := "y ~ "
	eq += fmt.Sprintf("%.2f", f.Intercept())
	for i, label := range f.fLabels.Labels() {
		poly, ok := label.(*feature.Polynomial)
		if !ok || poly.Degree == 0 {
			continue
		}
		w := f.coef[i]
		if w == 0 {
			continue
		}
		eq += fmt.Sprintf("+%.2f*%s", w, poly.Term())
	}
	return eq, nil
}

// Scores returns the fit scores for evaluating how well the resulting model
// fit the training data
func (f *Forecast) Scores() Scores {
	if f == nil || f.scores == nil {
		return Scores{}
	}
	return *f.scores
}

// Fitted returns the model evaluated at every training index including missing ones
func (f *Forecast) Fitted() []float64 {
	if f == nil {
		return nil
	}
	res := make([]float64, len(f.fitted))
	copy(res, f.fitted)
	return res
}

// Residuals returns a slice of values representing the difference between the
// training data and the fit data. Missing observations have NaN residuals.
func (f *Forecast) Residuals() []float64 {
	if f == nil {
		return nil
	}
	res := make([]float64, len(f.residual))
	copy(res, f.residual)
	return res
}

// Excluded returns the training indices dropped by outlier passes
func (f *Forecast) Excluded() []int {
	if f == nil {
		return nil
	}
	res := make([]int, len(f.excluded))
	copy(res, f.excluded)
	return res
}

// Model returns the serializeable format of the forecast model composing of the
// forecast options, coefficients with their feature labels, and the model fit scores
func (f *Forecast) Model() (Model, error) {
	if f == nil {
		return Model{}, ErrUninitializedForecast
	}
	if !f.trained {
		return Model{}, ErrUntrainedForecast
	}

	fws := make([]FeatureWeight, 0, len(f.coef))
	labels := f.fLabels.Labels()
	for i, c := range f.coef {
		fws = append(fws, NewFeatureWeight(labels[i], c))
	}
	m := Model{
		TrainPoints: f.n,
		Options:     f.opt,
		Weights:     Weights{Coef: fws},
		Scores:      f.scores,
		Excluded:    f.Excluded(),
	}
	if f.cadence != nil {
		m.TrainEndTime = f.lastDate
		spec := NewCadenceSpec(f.cadence)
		m.Cadence = &spec
	}
	return m, nil
}
