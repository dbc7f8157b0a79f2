package paysynth

import (
	"fmt"
	"strings"
	"time"

	"github.com/aouyang1/go-paysynth/attribution"
	"github.com/aouyang1/go-paysynth/errs"
	"github.com/aouyang1/go-paysynth/forecast"
	"github.com/aouyang1/go-paysynth/synth"
)

// DefaultSeed is used by the profiles when no seed is given
const DefaultSeed uint64 = 42

var (
	ErrUnknownProfile    = fmt.Errorf("unknown analysis profile, %w", errs.ErrInvalidArgument)
	ErrNoProfileDefaults = fmt.Errorf("profile has no default request, %w", errs.ErrInvalidArgument)
)

// Profile selects which view of the platform an analysis reproduces
type Profile int

const (
	ProfileOverview Profile = iota
	ProfilePaymentMethods
	ProfileRisk
	ProfileForecast

	// ProfileCustom labels requests built entirely by the caller
	ProfileCustom
)

var profileNames = []string{
	ProfileOverview:       "overview",
	ProfilePaymentMethods: "payment_methods",
	ProfileRisk:           "risk",
	ProfileForecast:       "forecast",
	ProfileCustom:         "custom",
}

// Profiles returns every profile with a default request in declaration order
func Profiles() []Profile {
	return []Profile{ProfileOverview, ProfilePaymentMethods, ProfileRisk, ProfileForecast}
}

func (p Profile) String() string {
	if p < 0 || int(p) >= len(profileNames) {
		return fmt.Sprintf("profile(%d)", int(p))
	}
	return profileNames[p]
}

// ParseProfile resolves a profile name ignoring case and surrounding space
func ParseProfile(name string) (Profile, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, pName := range profileNames {
		if pName == name {
			return Profile(i), nil
		}
	}
	return 0, fmt.Errorf("%q, %w", name, ErrUnknownProfile)
}

func (p Profile) MarshalText() ([]byte, error) {
	if p < 0 || int(p) >= len(profileNames) {
		return nil, fmt.Errorf("%d, %w", int(p), ErrUnknownProfile)
	}
	return []byte(p.String()), nil
}

func (p *Profile) UnmarshalText(text []byte) error {
	parsed, err := ParseProfile(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func overviewSeries() []synth.GeneratorSpec {
	return []synth.GeneratorSpec{
		{Name: "transaction_volume", Baseline: 1000, TrendEnd: 0.42, SeasonalAmplitude: 0.1, NoiseStdDev: 0.05},
		{Name: "merchant_count", Baseline: 50, TrendEnd: 0.4, NoiseStdDev: 0.04},
		{Name: "fraud_rate", Baseline: 0.15, TrendEnd: -0.05 / 0.15, NoiseStdDev: 0.01 / 0.15},
		{Name: "customer_satisfaction", Baseline: 4.2, TrendEnd: 0.2 / 4.2, NoiseStdDev: 0.05 / 4.2},
	}
}

func paymentMethodSeries() []synth.GeneratorSpec {
	return []synth.GeneratorSpec{
		{Name: "card", Baseline: 35, NoiseStdDev: 2.0 / 35},
		{Name: "e_wallet", Baseline: 28, TrendEnd: 5.0 / 28, NoiseStdDev: 3.0 / 28},
		{Name: "bank_transfer", Baseline: 18, NoiseStdDev: 1.0 / 18},
		{Name: "digital_bank", Baseline: 8, TrendEnd: 3.0 / 8, NoiseStdDev: 1.0 / 8},
		{Name: "bnpl", Baseline: 4, TrendEnd: 2.0 / 4, NoiseStdDev: 0.5 / 4},
	}
}

func riskSeries() []synth.GeneratorSpec {
	return []synth.GeneratorSpec{
		{Name: "fraud_rate", Baseline: 0.15, TrendEnd: -0.05 / 0.15, NoiseStdDev: 0.01 / 0.15},
		{Name: "response_time", Baseline: 1.2, NoiseStdDev: 0.1 / 1.2},
		{Name: "security_events", Kind: synth.KindPoisson, Baseline: 5},
	}
}

func successRateAttribution() *AttributionRequest {
	return &AttributionRequest{
		Name:     "payment_success_rate",
		Baseline: 0.960,
		Factors: []attribution.FactorContribution{
			{Name: "risk_prescreen", Amount: 0.005},
			{Name: "three_ds", Amount: 0.004},
			{Name: "issuer_auth", Amount: 0.006},
			{Name: "network", Amount: 0.003},
			{Name: "aml", Amount: 0.002},
		},
		Options: attribution.Options{Unit: attribution.UnitFraction}.WithUpperBound(1.0),
	}
}

// NewRequest builds the default request of a profile with the given seed
func NewRequest(p Profile, seed uint64) (*Request, error) {
	req := &Request{
		Profile: p,
		Synth: &synth.Options{
			Start: date(2023, time.January, 1),
			End:   date(2025, time.June, 30),
			Seed:  seed,
		},
	}

	switch p {
	case ProfileOverview:
		req.Synth.Series = overviewSeries()
	case ProfilePaymentMethods:
		req.Synth.End = date(2024, time.December, 31)
		req.Synth.Series = paymentMethodSeries()
		req.Attribution = successRateAttribution()
	case ProfileRisk:
		req.Synth.Series = riskSeries()
		req.Derived = []Derivation{
			{Name: "success_rate", Source: "fraud_rate", Offset: 100, Scale: -100},
		}
	case ProfileForecast:
		req.Synth.Series = overviewSeries()
		req.Forecast = &ForecastRequest{
			Series:  "transaction_volume",
			Horizon: 12,
			Options: forecast.NewDefaultOptions(),
		}
	case ProfileCustom:
		return nil, fmt.Errorf("%s, %w", p, ErrNoProfileDefaults)
	default:
		return nil, fmt.Errorf("%d, %w", int(p), ErrUnknownProfile)
	}
	return req, nil
}
