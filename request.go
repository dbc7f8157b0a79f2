package paysynth

import (
	"fmt"

	"github.com/aouyang1/go-paysynth/attribution"
	"github.com/aouyang1/go-paysynth/errs"
	"github.com/aouyang1/go-paysynth/forecast"
	"github.com/aouyang1/go-paysynth/synth"
)

var (
	ErrNoSynthesis       = fmt.Errorf("no synthesis options, %w", errs.ErrConfiguration)
	ErrUnknownSource     = fmt.Errorf("derived series source does not exist, %w", errs.ErrConfiguration)
	ErrNoForecastSeries  = fmt.Errorf("forecast series does not exist, %w", errs.ErrConfiguration)
	ErrEmptyAttribution  = fmt.Errorf("attribution name is empty, %w", errs.ErrConfiguration)
	ErrInvalidBatchLimit = fmt.Errorf("batch limit must be positive, %w", errs.ErrConfiguration)
)

// Derivation adds a series computed as Offset + Scale*source on every date
type Derivation struct {
	Name   string  `json:"name"`
	Source string  `json:"source"`
	Scale  float64 `json:"scale"`
	Offset float64 `json:"offset"`
}

func (d Derivation) apply(v float64) float64 {
	return d.Offset + d.Scale*v
}

// ForecastRequest extrapolates one generated series
type ForecastRequest struct {
	Series  string            `json:"series"`
	Horizon int               `json:"horizon"`
	Options *forecast.Options `json:"options,omitempty"`
}

// AttributionRequest splits an improvement over a baseline across the given factors
type AttributionRequest struct {
	Name     string                           `json:"name"`
	Baseline float64                          `json:"baseline"`
	Factors  []attribution.FactorContribution `json:"factors"`
	Options  *attribution.Options             `json:"options,omitempty"`
}

// Request is one analysis. Synthesis is required, derived series, the forecast and the
// attribution are optional.
type Request struct {
	Profile     Profile             `json:"profile"`
	Synth       *synth.Options      `json:"-"`
	Derived     []Derivation        `json:"derived,omitempty"`
	Forecast    *ForecastRequest    `json:"forecast,omitempty"`
	Attribution *AttributionRequest `json:"attribution,omitempty"`
}

// Seed returns the seed of the synthesis options
func (r *Request) Seed() uint64 {
	if r == nil || r.Synth == nil {
		return 0
	}
	return r.Synth.Seed
}
