// Package synth generates reproducible monthly business metrics from trend, seasonal and
// noise components.
package synth

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/aouyang1/go-paysynth/errs"
	"github.com/aouyang1/go-paysynth/timedataset"
)

// SeasonalPeriod is the number of months in one seasonal cycle
const SeasonalPeriod = 12

var (
	ErrStartAfterEnd     = timedataset.ErrStartAfterEnd
	ErrEmptyRange        = fmt.Errorf("no month marker falls within the date range, %w", errs.ErrConfiguration)
	ErrNoSeries          = fmt.Errorf("no series to generate, %w", errs.ErrConfiguration)
	ErrEmptyName         = fmt.Errorf("series name is empty, %w", errs.ErrConfiguration)
	ErrDuplicateName     = fmt.Errorf("series name already used, %w", errs.ErrConfiguration)
	ErrNonFinite         = fmt.Errorf("series parameter is not finite, %w", errs.ErrConfiguration)
	ErrNegativeAmplitude = fmt.Errorf("negative seasonal amplitude, %w", errs.ErrConfiguration)
	ErrNegativeNoise     = fmt.Errorf("negative noise standard deviation, %w", errs.ErrConfiguration)
	ErrNegativeRate      = fmt.Errorf("negative poisson baseline rate, %w", errs.ErrConfiguration)
	ErrPoissonNoise      = fmt.Errorf("poisson series draw their own noise, %w", errs.ErrConfiguration)
	ErrUnknownKind       = fmt.Errorf("unknown series kind, %w", errs.ErrConfiguration)
)

// Kind selects how the noise of a series is drawn
type Kind string

const (
	// KindGaussian scales baseline*(1 + trend + seasonal + noise) with normal noise
	KindGaussian Kind = "gaussian"

	// KindPoisson draws counts with rate baseline*(1 + trend + seasonal)
	KindPoisson Kind = "poisson"
)

// GeneratorSpec describes one series. TrendEnd, SeasonalAmplitude and NoiseStdDev are
// relative to the baseline.
type GeneratorSpec struct {
	Name              string  `json:"name"`
	Kind              Kind    `json:"kind,omitempty"`
	Baseline          float64 `json:"baseline"`
	TrendEnd          float64 `json:"trend_end"`
	SeasonalAmplitude float64 `json:"seasonal_amplitude"`
	NoiseStdDev       float64 `json:"noise_stddev"`
}

func (g GeneratorSpec) kind() Kind {
	if g.Kind == "" {
		return KindGaussian
	}
	return g.Kind
}

// Validate checks the parameters of a single series
func (g GeneratorSpec) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	for label, val := range map[string]float64{
		"baseline":           g.Baseline,
		"trend_end":          g.TrendEnd,
		"seasonal_amplitude": g.SeasonalAmplitude,
		"noise_stddev":       g.NoiseStdDev,
	} {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return fmt.Errorf("%s %s of %f, %w", g.Name, label, val, ErrNonFinite)
		}
	}
	if g.SeasonalAmplitude < 0 {
		return fmt.Errorf("%s amplitude of %f, %w", g.Name, g.SeasonalAmplitude, ErrNegativeAmplitude)
	}
	if g.NoiseStdDev < 0 {
		return fmt.Errorf("%s noise of %f, %w", g.Name, g.NoiseStdDev, ErrNegativeNoise)
	}

	switch g.kind() {
	case KindGaussian:
	case KindPoisson:
		if g.NoiseStdDev != 0 {
			return fmt.Errorf("%s noise of %f, %w", g.Name, g.NoiseStdDev, ErrPoissonNoise)
		}
		if g.Baseline < 0 {
			return fmt.Errorf("%s baseline of %f, %w", g.Name, g.Baseline, ErrNegativeRate)
		}
	default:
		return fmt.Errorf("%s has kind %q, %w", g.Name, g.Kind, ErrUnknownKind)
	}
	return nil
}

// Options configures a synthesis run over the months between Start and End inclusive
type Options struct {
	Start time.Time
	End   time.Time

	// Marker places each month on the time axis, month end if nil
	Marker timedataset.MonthMarker

	// Seed initializes the random source owned by a single Generate call
	Seed uint64

	// Series are generated in order, each drawing from the shared source in turn
	Series []GeneratorSpec
}

// Validate runs basic validation on the synthesis options
func (o *Options) Validate() error {
	if o == nil || len(o.Series) == 0 {
		return ErrNoSeries
	}
	if o.End.Before(o.Start) {
		return fmt.Errorf("start %s, end %s, %w",
			o.Start.Format(time.DateOnly), o.End.Format(time.DateOnly), ErrStartAfterEnd)
	}

	names := make(map[string]struct{}, len(o.Series))
	for _, spec := range o.Series {
		if err := spec.Validate(); err != nil {
			return err
		}
		if _, exists := names[spec.Name]; exists {
			return fmt.Errorf("%q, %w", spec.Name, ErrDuplicateName)
		}
		names[spec.Name] = struct{}{}
	}
	return nil
}

// Generate produces one value per month for every series. The same options always produce
// the same values.
func Generate(opt *Options) (*timedataset.MultiSeries, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}

	t, err := timedataset.MonthRange(opt.Start, opt.End, opt.Marker)
	if err != nil {
		return nil, err
	}
	if len(t) == 0 {
		return nil, fmt.Errorf("start %s, end %s, %w",
			opt.Start.Format(time.DateOnly), opt.End.Format(time.DateOnly), ErrEmptyRange)
	}

	ms, err := timedataset.NewMultiSeries(t)
	if err != nil {
		return nil, err
	}

	src := rand.NewPCG(opt.Seed, opt.Seed)
	n := len(t)
	for _, spec := range opt.Series {
		y := generateSeries(spec, n, src)
		if err := ms.Set(spec.Name, y); err != nil {
			return nil, err
		}
		slog.Debug("generated series", "name", spec.Name, "kind", spec.kind(), "points", n)
	}
	return ms, nil
}

func generateSeries(spec GeneratorSpec, n int, src rand.Source) []float64 {
	// relative level shared by both kinds
	level := Trend(n, spec.TrendEnd).
		Add(Seasonal(n, spec.SeasonalAmplitude, SeasonalPeriod)).
		AddConst(1.0)

	switch spec.kind() {
	case KindPoisson:
		return Counts(level.Scale(spec.Baseline), src)
	default:
		return level.Add(Noise(n, spec.NoiseStdDev, src)).Scale(spec.Baseline)
	}
}
