package attribution

import (
	"errors"
	"math"
	"testing"

	"github.com/aouyang1/go-paysynth/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSet(t *testing.T, factors ...FactorContribution) *ContributionSet {
	t.Helper()
	s, err := NewContributionSet(factors...)
	require.NoError(t, err)
	return s
}

func TestAllocateAdditive(t *testing.T) {
	set := mustSet(t,
		FactorContribution{Name: "A", Amount: 0.5},
		FactorContribution{Name: "B", Amount: 0.4},
		FactorContribution{Name: "C", Amount: 0.2},
	)

	res, err := Allocate(96, set, nil)
	require.NoError(t, err)

	assert.InDelta(t, 1.1, res.Total, 1e-12)
	assert.InDelta(t, 97.1, res.Combined, 1e-12)
	assert.Equal(t, 96.0, res.Baseline)
	assert.Equal(t, MethodNaiveAdditive, res.Method)

	require.Len(t, res.Factors, 3)
	var shareSum float64
	for i, name := range []string{"A", "B", "C"} {
		assert.Equal(t, name, res.Factors[i].Name)
		shareSum += res.Factors[i].Share
	}
	assert.InDelta(t, 100.0, shareSum, 1e-9)
	assert.InDelta(t, 0.5/1.1*100, res.Factors[0].Share, 1e-9)
}

func TestAllocateEdges(t *testing.T) {
	testData := map[string]struct {
		baseline float64
		set      *ContributionSet
		opt      *Options
		total    float64
		combined float64
		shares   []float64
		err      error
	}{
		"empty set": {
			baseline: 96,
			set:      mustSet(t),
			total:    0,
			combined: 96,
			shares:   []float64{},
		},
		"nil set": {
			baseline: 96,
			total:    0,
			combined: 96,
			shares:   []float64{},
		},
		"all zero amounts": {
			baseline: 96,
			set: mustSet(t,
				FactorContribution{Name: "A"},
				FactorContribution{Name: "B"},
			),
			total:    0,
			combined: 96,
			shares:   []float64{0, 0},
		},
		"negative amount": {
			baseline: 96,
			set: mustSet(t,
				FactorContribution{Name: "A", Amount: 0.5},
				FactorContribution{Name: "B", Amount: -0.1},
			),
			err: ErrNegativeContribution,
		},
		"nan amount": {
			baseline: 96,
			set:      mustSet(t, FactorContribution{Name: "A", Amount: math.NaN()}),
			err:      ErrNonFiniteContribution,
		},
		"infinite baseline": {
			baseline: math.Inf(1),
			set:      mustSet(t, FactorContribution{Name: "A", Amount: 0.1}),
			err:      ErrNonFiniteBaseline,
		},
		"within bound": {
			baseline: 0.96,
			set:      mustSet(t, FactorContribution{Name: "A", Amount: 0.04}),
			opt:      Options{Unit: UnitFraction}.WithUpperBound(1.0),
			total:    0.04,
			combined: 1.0,
			shares:   []float64{100},
		},
		"exceeds bound": {
			baseline: 0.96,
			set:      mustSet(t, FactorContribution{Name: "A", Amount: 0.05}),
			opt:      Options{Unit: UnitFraction}.WithUpperBound(1.0),
			err:      ErrExceedsBound,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := Allocate(td.baseline, td.set, td.opt)
			if td.err != nil {
				require.ErrorIs(t, err, td.err)
				assert.True(t, errors.Is(err, errs.ErrInvalidArgument))
				assert.Nil(t, res)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, td.total, res.Total, 1e-12)
			assert.InDelta(t, td.combined, res.Combined, 1e-12)

			shares := make([]float64, 0, len(res.Factors))
			for _, f := range res.Factors {
				shares = append(shares, f.Share)
			}
			assert.InDeltaSlice(t, td.shares, shares, 1e-9)
		})
	}
}

func TestContributionSet(t *testing.T) {
	_, err := NewContributionSet(
		FactorContribution{Name: "A", Amount: 1},
		FactorContribution{Name: "A", Amount: 2},
	)
	assert.ErrorIs(t, err, ErrDuplicateFactor)

	_, err = NewContributionSet(FactorContribution{Name: "", Amount: 1})
	assert.ErrorIs(t, err, ErrEmptyFactorName)

	set, err := FromMap(map[string]float64{"network": 0.003, "aml": 0.002, "three_ds": 0.004})
	require.NoError(t, err)
	assert.Equal(t, []FactorContribution{
		{Name: "aml", Amount: 0.002},
		{Name: "network", Amount: 0.003},
		{Name: "three_ds", Amount: 0.004},
	}, set.Factors())
	assert.Equal(t, 3, set.Len())

	var nilSet *ContributionSet
	assert.Equal(t, 0, nilSet.Len())
	assert.Nil(t, nilSet.Factors())
}

func TestOptionsValidate(t *testing.T) {
	opt, err := (*Options)(nil).Validate()
	require.NoError(t, err)
	assert.Equal(t, NewDefaultOptions(), opt)

	opt, err = (&Options{}).Validate()
	require.NoError(t, err)
	assert.Equal(t, UnitPercent, opt.Unit)

	_, err = (&Options{Unit: "basis_points"}).Validate()
	assert.ErrorIs(t, err, ErrUnknownUnit)
	assert.True(t, errors.Is(err, errs.ErrConfiguration))

	_, err = Options{}.WithUpperBound(math.NaN()).Validate()
	assert.True(t, errors.Is(err, errs.ErrConfiguration))
}

func TestSummary(t *testing.T) {
	testData := map[string]struct {
		baseline float64
		set      *ContributionSet
		opt      *Options
		points   []string
		expected string
	}{
		"percent": {
			baseline: 96,
			set: mustSet(t,
				FactorContribution{Name: "A", Amount: 0.5},
				FactorContribution{Name: "B", Amount: 0.4},
				FactorContribution{Name: "C", Amount: 0.2},
			),
			points: []string{"0.50", "0.40", "0.20"},
			expected: "combined 97.10% (baseline 96.00% + 1.10 pp)\n" +
				"  A +0.50 pp (45.45%)\n" +
				"  B +0.40 pp (36.36%)\n" +
				"  C +0.20 pp (18.18%)\n",
		},
		"fraction": {
			baseline: 0.960,
			set: mustSet(t,
				FactorContribution{Name: "risk_prescreen", Amount: 0.005},
				FactorContribution{Name: "three_ds", Amount: 0.004},
				FactorContribution{Name: "issuer_auth", Amount: 0.006},
				FactorContribution{Name: "network", Amount: 0.003},
				FactorContribution{Name: "aml", Amount: 0.002},
			),
			opt:    Options{Unit: UnitFraction}.WithUpperBound(1.0),
			points: []string{"0.50", "0.40", "0.60", "0.30", "0.20"},
			expected: "combined 98.00% (baseline 96.00% + 2.00 pp)\n" +
				"  risk_prescreen +0.50 pp (25.00%)\n" +
				"  three_ds +0.40 pp (20.00%)\n" +
				"  issuer_auth +0.60 pp (30.00%)\n" +
				"  network +0.30 pp (15.00%)\n" +
				"  aml +0.20 pp (10.00%)\n",
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := Allocate(td.baseline, td.set, td.opt)
			require.NoError(t, err)

			points := res.PercentagePoints()
			out := make([]string, len(points))
			for i, p := range points {
				out[i] = p.StringFixed(2)
			}
			assert.Equal(t, td.points, out)
			assert.Equal(t, td.expected, res.Summary())
		})
	}
}
