// Package attribution splits an aggregate improvement over a baseline across named factors.
//
// Each factor is credited with its own marginal improvement and the improvements are summed.
// This approximates Shapley attribution by assuming the factors act independently and
// additively; no coalitions are evaluated, so interaction effects are not captured.
package attribution

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/aouyang1/go-paysynth/errs"
)

// MethodNaiveAdditive labels attributions computed as independent additive marginal gains
const MethodNaiveAdditive = "naive_additive_shapley_approximation"

var (
	ErrNegativeContribution  = fmt.Errorf("negative contribution, %w", errs.ErrInvalidArgument)
	ErrNonFiniteContribution = fmt.Errorf("contribution is not finite, %w", errs.ErrInvalidArgument)
	ErrNonFiniteBaseline     = fmt.Errorf("baseline is not finite, %w", errs.ErrInvalidArgument)
	ErrEmptyFactorName       = fmt.Errorf("factor name is empty, %w", errs.ErrInvalidArgument)
	ErrDuplicateFactor       = fmt.Errorf("factor name already used, %w", errs.ErrInvalidArgument)
	ErrExceedsBound          = fmt.Errorf("combined value exceeds upper bound, %w", errs.ErrInvalidArgument)
	ErrUnknownUnit           = fmt.Errorf("unknown unit, %w", errs.ErrConfiguration)
)

// FactorContribution is the marginal improvement credited to one factor
type FactorContribution struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// ContributionSet is an ordered set of factor contributions with unique names
type ContributionSet struct {
	factors []FactorContribution
	idx     map[string]int
}

// NewContributionSet keeps the order of the given factors
func NewContributionSet(factors ...FactorContribution) (*ContributionSet, error) {
	s := &ContributionSet{
		idx: make(map[string]int, len(factors)),
	}
	for _, f := range factors {
		if err := s.Add(f.Name, f.Amount); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// FromMap builds a set ordered lexically by factor name
func FromMap(amounts map[string]float64) (*ContributionSet, error) {
	names := make([]string, 0, len(amounts))
	for name := range amounts {
		names = append(names, name)
	}
	sort.Strings(names)

	factors := make([]FactorContribution, 0, len(names))
	for _, name := range names {
		factors = append(factors, FactorContribution{Name: name, Amount: amounts[name]})
	}
	return NewContributionSet(factors...)
}

// Add appends a factor. Amounts are checked when allocating.
func (s *ContributionSet) Add(name string, amount float64) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyFactorName
	}
	if s.idx == nil {
		s.idx = make(map[string]int)
	}
	if _, exists := s.idx[name]; exists {
		return fmt.Errorf("%q, %w", name, ErrDuplicateFactor)
	}
	s.idx[name] = len(s.factors)
	s.factors = append(s.factors, FactorContribution{Name: name, Amount: amount})
	return nil
}

func (s *ContributionSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.factors)
}

// Factors returns a copy of the contributions in order
func (s *ContributionSet) Factors() []FactorContribution {
	if s == nil {
		return nil
	}
	out := make([]FactorContribution, len(s.factors))
	copy(out, s.factors)
	return out
}

// Unit describes the scale baseline and amounts are expressed in
type Unit string

const (
	// UnitFraction values are in [0, 1] and rendered times 100
	UnitFraction Unit = "fraction"

	// UnitPercent values are already percentages
	UnitPercent Unit = "percent"
)

func (u Unit) scale() (float64, error) {
	switch u {
	case UnitFraction:
		return 100, nil
	case UnitPercent, "":
		return 1, nil
	}
	return 0, fmt.Errorf("%q, %w", u, ErrUnknownUnit)
}

// Options configures an allocation
type Options struct {
	// UpperBound rejects allocations whose combined value is above it when Bounded is set
	UpperBound float64 `json:"upper_bound"`
	Bounded    bool    `json:"bounded"`

	Unit Unit `json:"unit"`
}

func NewDefaultOptions() *Options {
	return &Options{
		Unit: UnitPercent,
	}
}

// WithUpperBound returns a copy of the options bounded above by bound
func (o Options) WithUpperBound(bound float64) *Options {
	o.UpperBound = bound
	o.Bounded = true
	return &o
}

// Validate returns a defaulted copy of the options
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	opt := *o
	if opt.Unit == "" {
		opt.Unit = UnitPercent
	}
	if _, err := opt.Unit.scale(); err != nil {
		return nil, err
	}
	if opt.Bounded && (math.IsNaN(opt.UpperBound) || math.IsInf(opt.UpperBound, 0)) {
		return nil, fmt.Errorf("upper bound of %f, %w", opt.UpperBound, errs.ErrConfiguration)
	}
	return &opt, nil
}

// FactorShare is a factor's contribution along with its percentage of the total
type FactorShare struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Share  float64 `json:"share"`
}

// Attribution is the result of splitting the improvement over a baseline across factors
type Attribution struct {
	Baseline float64       `json:"baseline"`
	Total    float64       `json:"total"`
	Combined float64       `json:"combined"`
	Factors  []FactorShare `json:"factors"`
	Method   string        `json:"method"`
	Unit     Unit          `json:"unit"`
}

// Allocate credits each factor with its amount, sums them into the total improvement over
// baseline and computes each factor's share of the total in percent. Shares are all zero
// when the total is zero. A nil or empty set yields a zero total.
func Allocate(baseline float64, set *ContributionSet, opt *Options) (*Attribution, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	if math.IsNaN(baseline) || math.IsInf(baseline, 0) {
		return nil, fmt.Errorf("baseline of %f, %w", baseline, ErrNonFiniteBaseline)
	}

	factors := set.Factors()
	for _, f := range factors {
		if math.IsNaN(f.Amount) || math.IsInf(f.Amount, 0) {
			return nil, fmt.Errorf("%s has amount %f, %w", f.Name, f.Amount, ErrNonFiniteContribution)
		}
		if f.Amount < 0 {
			return nil, fmt.Errorf("%s has amount %f, %w", f.Name, f.Amount, ErrNegativeContribution)
		}
	}

	var total float64
	for _, f := range factors {
		total += f.Amount
	}
	combined := baseline + total
	if opt.Bounded && combined > opt.UpperBound {
		return nil, fmt.Errorf("baseline %f plus total %f is above %f, %w",
			baseline, total, opt.UpperBound, ErrExceedsBound)
	}

	shares := make([]FactorShare, 0, len(factors))
	for _, f := range factors {
		var share float64
		if total > 0 {
			share = f.Amount / total * 100
		}
		shares = append(shares, FactorShare{Name: f.Name, Amount: f.Amount, Share: share})
	}

	slog.Debug("allocated contributions", "factors", len(shares), "baseline", baseline, "total", total)
	return &Attribution{
		Baseline: baseline,
		Total:    total,
		Combined: combined,
		Factors:  shares,
		Method:   MethodNaiveAdditive,
		Unit:     opt.Unit,
	}, nil
}
