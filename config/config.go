// Package config loads analysis requests from YAML files.
//
// A file either names a profile, whose defaults are overridden by any other field set in the
// file, or describes the series to generate in full:
//
//	profile: forecast
//	seed: 7
//	end: 2025-12-31
//	forecast:
//	  series: transaction_volume
//	  horizon: 6
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aouyang1/go-paysynth"
	"github.com/aouyang1/go-paysynth/attribution"
	"github.com/aouyang1/go-paysynth/errs"
	"github.com/aouyang1/go-paysynth/forecast"
	"github.com/aouyang1/go-paysynth/synth"
	"github.com/aouyang1/go-paysynth/timedataset"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DateLayout is the layout of start and end dates
const DateLayout = time.DateOnly

var ErrInvalidConfig = fmt.Errorf("invalid config file, %w", errs.ErrConfiguration)

var validate = validator.New(validator.WithRequiredStructEnabled())

// File is the YAML layout of one analysis request
type File struct {
	Profile string  `yaml:"profile" validate:"omitempty,oneof=overview payment_methods risk forecast custom"`
	Seed    *uint64 `yaml:"seed"`
	Start   string  `yaml:"start" validate:"omitempty,datetime=2006-01-02"`
	End     string  `yaml:"end" validate:"omitempty,datetime=2006-01-02"`
	Marker  string  `yaml:"marker" validate:"omitempty,oneof=month_end month_start business_month_end"`

	// Series replace the profile series when set and are required without a profile
	Series      []Series           `yaml:"series" validate:"required_without=Profile,dive"`
	Derived     []Derivation       `yaml:"derived" validate:"dive"`
	Forecast    *ForecastConfig    `yaml:"forecast" validate:"omitempty"`
	Attribution *AttributionConfig `yaml:"attribution" validate:"omitempty"`
}

type Series struct {
	Name              string  `yaml:"name" validate:"required"`
	Kind              string  `yaml:"kind" validate:"omitempty,oneof=gaussian poisson"`
	Baseline          float64 `yaml:"baseline"`
	TrendEnd          float64 `yaml:"trend_end"`
	SeasonalAmplitude float64 `yaml:"seasonal_amplitude" validate:"gte=0"`
	NoiseStdDev       float64 `yaml:"noise_stddev" validate:"gte=0"`
}

type Derivation struct {
	Name   string  `yaml:"name" validate:"required"`
	Source string  `yaml:"source" validate:"required"`
	Scale  float64 `yaml:"scale"`
	Offset float64 `yaml:"offset"`
}

type ForecastConfig struct {
	Series   string         `yaml:"series" validate:"required"`
	Horizon  int            `yaml:"horizon" validate:"required,gt=0"`
	Degree   *int           `yaml:"degree" validate:"omitempty,gte=0,lte=10"`
	Outliers *OutlierConfig `yaml:"outliers" validate:"omitempty"`
}

type OutlierConfig struct {
	Passes          int     `yaml:"passes" validate:"gte=0"`
	LowerPercentile float64 `yaml:"lower_percentile" validate:"gte=0,lte=1"`
	UpperPercentile float64 `yaml:"upper_percentile" validate:"gte=0,lte=1,gtfield=LowerPercentile"`
	TukeyFactor     float64 `yaml:"tukey_factor" validate:"gte=0"`
}

type AttributionConfig struct {
	Name       string   `yaml:"name" validate:"required"`
	Baseline   float64  `yaml:"baseline"`
	Unit       string   `yaml:"unit" validate:"omitempty,oneof=fraction percent"`
	UpperBound *float64 `yaml:"upper_bound"`
	Factors    []Factor `yaml:"factors" validate:"dive"`
}

type Factor struct {
	Name   string  `yaml:"name" validate:"required"`
	Amount float64 `yaml:"amount" validate:"gte=0"`
}

// Load reads and validates the YAML file at path
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s, %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s, %w", path, err)
	}
	return f, nil
}

// Parse decodes and validates a YAML request. Unknown fields are rejected.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w, %w", ErrInvalidConfig, err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks the struct tags of the file after normalizing the profile name
func (f *File) Validate() error {
	f.Profile = strings.ToLower(strings.TrimSpace(f.Profile))
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("%w, %w", ErrInvalidConfig, err)
	}
	return nil
}

// ToRequest converts the file into an analysis request starting from the defaults of its
// profile, if any
func (f *File) ToRequest() (*paysynth.Request, error) {
	seed := paysynth.DefaultSeed
	if f.Seed != nil {
		seed = *f.Seed
	}

	req := &paysynth.Request{
		Profile: paysynth.ProfileCustom,
		Synth:   &synth.Options{Seed: seed},
	}
	if f.Profile != "" {
		p, err := paysynth.ParseProfile(f.Profile)
		if err != nil {
			return nil, err
		}
		if p != paysynth.ProfileCustom {
			if req, err = paysynth.NewRequest(p, seed); err != nil {
				return nil, err
			}
		}
	}
	if req.Profile == paysynth.ProfileCustom {
		if len(f.Series) == 0 {
			return nil, fmt.Errorf("no series without a profile, %w", ErrInvalidConfig)
		}
		if f.Start == "" || f.End == "" {
			return nil, fmt.Errorf("start and end are required without a profile, %w", ErrInvalidConfig)
		}
	}

	if f.Start != "" {
		start, err := time.Parse(DateLayout, f.Start)
		if err != nil {
			return nil, fmt.Errorf("start %q, %w, %w", f.Start, ErrInvalidConfig, err)
		}
		req.Synth.Start = start
	}
	if f.End != "" {
		end, err := time.Parse(DateLayout, f.End)
		if err != nil {
			return nil, fmt.Errorf("end %q, %w, %w", f.End, ErrInvalidConfig, err)
		}
		req.Synth.End = end
	}
	if f.Marker != "" {
		marker, err := timedataset.ParseMonthMarker(f.Marker)
		if err != nil {
			return nil, err
		}
		req.Synth.Marker = marker
	}

	if len(f.Series) > 0 {
		req.Synth.Series = make([]synth.GeneratorSpec, 0, len(f.Series))
		for _, s := range f.Series {
			req.Synth.Series = append(req.Synth.Series, synth.GeneratorSpec{
				Name:              s.Name,
				Kind:              synth.Kind(s.Kind),
				Baseline:          s.Baseline,
				TrendEnd:          s.TrendEnd,
				SeasonalAmplitude: s.SeasonalAmplitude,
				NoiseStdDev:       s.NoiseStdDev,
			})
		}
	}

	for _, d := range f.Derived {
		req.Derived = append(req.Derived, paysynth.Derivation(d))
	}

	if f.Forecast != nil {
		req.Forecast = f.Forecast.toRequest()
	}
	if f.Attribution != nil {
		req.Attribution = f.Attribution.toRequest()
	}
	return req, nil
}

func (c *ForecastConfig) toRequest() *paysynth.ForecastRequest {
	opt := forecast.NewDefaultOptions()
	if c.Degree != nil {
		opt.Degree = *c.Degree
	}
	if c.Outliers != nil {
		opt.OutlierOptions = &forecast.OutlierOptions{
			NumPasses:       c.Outliers.Passes,
			UpperPercentile: c.Outliers.UpperPercentile,
			LowerPercentile: c.Outliers.LowerPercentile,
			TukeyFactor:     c.Outliers.TukeyFactor,
		}
	}
	return &paysynth.ForecastRequest{
		Series:  c.Series,
		Horizon: c.Horizon,
		Options: opt,
	}
}

func (c *AttributionConfig) toRequest() *paysynth.AttributionRequest {
	opt := &attribution.Options{Unit: attribution.Unit(c.Unit)}
	if c.UpperBound != nil {
		opt = opt.WithUpperBound(*c.UpperBound)
	}

	factors := make([]attribution.FactorContribution, 0, len(c.Factors))
	for _, fc := range c.Factors {
		factors = append(factors, attribution.FactorContribution{Name: fc.Name, Amount: fc.Amount})
	}
	return &paysynth.AttributionRequest{
		Name:     c.Name,
		Baseline: c.Baseline,
		Factors:  factors,
		Options:  opt,
	}
}
