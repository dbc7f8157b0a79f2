package paysynth

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/aouyang1/go-paysynth/attribution"
	"github.com/aouyang1/go-paysynth/errs"
	"github.com/aouyang1/go-paysynth/synth"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRequest(t testing.TB, p Profile, seed uint64) *Request {
	t.Helper()
	req, err := NewRequest(p, seed)
	require.NoError(t, err)
	return req
}

func TestParseProfile(t *testing.T) {
	testData := map[string]struct {
		name     string
		expected Profile
		err      error
	}{
		"overview":        {name: "overview", expected: ProfileOverview},
		"upper case":      {name: "RISK", expected: ProfileRisk},
		"padded":          {name: "  Payment_Methods ", expected: ProfilePaymentMethods},
		"forecast":        {name: "forecast", expected: ProfileForecast},
		"custom":          {name: "custom", expected: ProfileCustom},
		"unknown":         {name: "heatmap", err: ErrUnknownProfile},
		"empty":           {name: "", err: ErrUnknownProfile},
		"hyphen not used": {name: "payment-methods", err: ErrUnknownProfile},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			p, err := ParseProfile(td.name)
			if td.err != nil {
				require.ErrorIs(t, err, td.err)
				assert.True(t, errors.Is(err, errs.ErrInvalidArgument))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, td.expected, p)
		})
	}
}

func TestProfileText(t *testing.T) {
	for _, p := range Profiles() {
		out, err := p.MarshalText()
		require.NoError(t, err)

		var parsed Profile
		require.NoError(t, parsed.UnmarshalText(out))
		assert.Equal(t, p, parsed)
	}

	_, err := Profile(9).MarshalText()
	assert.ErrorIs(t, err, ErrUnknownProfile)
	assert.Equal(t, "profile(9)", Profile(9).String())

	_, err = NewRequest(Profile(9), DefaultSeed)
	assert.ErrorIs(t, err, ErrUnknownProfile)

	_, err = NewRequest(ProfileCustom, DefaultSeed)
	assert.ErrorIs(t, err, ErrNoProfileDefaults)
	assert.NotContains(t, Profiles(), ProfileCustom)
}

func TestRunOverview(t *testing.T) {
	report, err := Run(mustRequest(t, ProfileOverview, DefaultSeed))
	require.NoError(t, err)

	assert.Equal(t, ProfileOverview, report.Profile)
	assert.Equal(t,
		[]string{"transaction_volume", "merchant_count", "fraud_rate", "customer_satisfaction"},
		report.Data.Names(),
	)
	assert.Equal(t, 30, report.Data.Len())
	assert.Equal(t, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), report.Data.Dates().EndTime())
	assert.Nil(t, report.Forecast)
	assert.Nil(t, report.Attribution)
}

func TestRunDeterministic(t *testing.T) {
	for _, p := range Profiles() {
		t.Run(p.String(), func(t *testing.T) {
			first, err := Run(mustRequest(t, p, DefaultSeed))
			require.NoError(t, err)
			second, err := Run(mustRequest(t, p, DefaultSeed))
			require.NoError(t, err)

			var firstOut, secondOut bytes.Buffer
			require.NoError(t, first.WriteJSON(&firstOut))
			require.NoError(t, second.WriteJSON(&secondOut))
			assert.Equal(t, firstOut.Bytes(), secondOut.Bytes())
			assert.True(t, json.Valid(firstOut.Bytes()))
		})
	}
}

func TestRunForecast(t *testing.T) {
	report, err := Run(mustRequest(t, ProfileForecast, DefaultSeed))
	require.NoError(t, err)
	require.NotNil(t, report.Forecast)

	points := report.Forecast.Points
	require.Len(t, points, 12)
	assert.Equal(t, time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC), points[0].Date)
	assert.Equal(t, time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC), points[11].Date)
	assert.Equal(t, 30, report.Forecast.Model.TrainPoints)
	assert.True(t, strings.HasPrefix(report.Forecast.Equation, "y ~ "))

	history, _ := report.Data.Values("transaction_volume")
	assert.Greater(t, points[0].Value, history[0])

	require.Len(t, report.Forecast.Fitted, len(history))
	for _, v := range report.Forecast.Fitted {
		assert.False(t, math.IsNaN(v))
	}
}

func TestRunRisk(t *testing.T) {
	report, err := Run(mustRequest(t, ProfileRisk, DefaultSeed))
	require.NoError(t, err)

	fraud, exists := report.Data.Values("fraud_rate")
	require.True(t, exists)
	success, exists := report.Data.Values("success_rate")
	require.True(t, exists)
	for i := range fraud {
		assert.InDelta(t, 100-100*fraud[i], success[i], 1e-9)
	}

	events, _ := report.Data.Values("security_events")
	for _, v := range events {
		assert.GreaterOrEqual(t, v, 0.0)
	}
}

func TestRunPaymentMethods(t *testing.T) {
	report, err := Run(mustRequest(t, ProfilePaymentMethods, DefaultSeed))
	require.NoError(t, err)

	assert.Equal(t, 24, report.Data.Len())
	require.NotNil(t, report.Attribution)
	assert.Equal(t, "payment_success_rate", report.Attribution.Name)
	assert.InDelta(t, 0.02, report.Attribution.Total, 1e-12)
	assert.InDelta(t, 0.98, report.Attribution.Combined, 1e-12)
	assert.Equal(t, attribution.UnitFraction, report.Attribution.Unit)
}

func TestRunErrors(t *testing.T) {
	testData := map[string]struct {
		req *Request
		err error
	}{
		"nil request": {
			err: ErrNoSynthesis,
		},
		"no synthesis": {
			req: &Request{Profile: ProfileOverview},
			err: ErrNoSynthesis,
		},
		"unknown derived source": {
			req: func() *Request {
				req := mustRequest(t, ProfileOverview, 1)
				req.Derived = []Derivation{{Name: "x", Source: "missing", Scale: 1}}
				return req
			}(),
			err: ErrUnknownSource,
		},
		"unknown forecast series": {
			req: func() *Request {
				req := mustRequest(t, ProfileForecast, 1)
				req.Forecast.Series = "missing"
				return req
			}(),
			err: ErrNoForecastSeries,
		},
		"bad horizon": {
			req: func() *Request {
				req := mustRequest(t, ProfileForecast, 1)
				req.Forecast.Horizon = 0
				return req
			}(),
			err: errs.ErrInvalidArgument,
		},
		"negative factor": {
			req: func() *Request {
				req := mustRequest(t, ProfilePaymentMethods, 1)
				req.Attribution.Factors[0].Amount = -0.1
				return req
			}(),
			err: attribution.ErrNegativeContribution,
		},
		"bound exceeded": {
			req: func() *Request {
				req := mustRequest(t, ProfilePaymentMethods, 1)
				req.Attribution.Baseline = 0.99
				return req
			}(),
			err: attribution.ErrExceedsBound,
		},
		"bad synthesis": {
			req: func() *Request {
				req := mustRequest(t, ProfileOverview, 1)
				req.Synth.Series = nil
				return req
			}(),
			err: synth.ErrNoSeries,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			report, err := Run(td.req)
			require.ErrorIs(t, err, td.err)
			assert.Nil(t, report)
		})
	}
}

func TestRunBatch(t *testing.T) {
	var reqs []*Request
	for seed := uint64(1); seed <= 3; seed++ {
		for _, p := range Profiles() {
			reqs = append(reqs, mustRequest(t, p, seed))
		}
	}

	reports, err := RunBatch(context.Background(), reqs, 3)
	require.NoError(t, err)
	require.Len(t, reports, len(reqs))

	for i, req := range reqs {
		expected, err := Run(req)
		require.NoError(t, err)

		var expectedOut, out bytes.Buffer
		require.NoError(t, expected.WriteJSON(&expectedOut))
		require.NoError(t, reports[i].WriteJSON(&out))
		assert.Equal(t, expectedOut.String(), out.String(), "request %d", i)
	}
}

func TestRunBatchErrors(t *testing.T) {
	bad := mustRequest(t, ProfileOverview, 1)
	bad.Synth.Series = nil
	reqs := []*Request{mustRequest(t, ProfileRisk, 1), bad}

	reports, err := RunBatch(context.Background(), reqs, DefaultBatchLimit)
	assert.ErrorIs(t, err, synth.ErrNoSeries)
	assert.Nil(t, reports)

	_, err = RunBatch(context.Background(), reqs, 0)
	assert.ErrorIs(t, err, ErrInvalidBatchLimit)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reports, err = RunBatch(ctx, []*Request{mustRequest(t, ProfileRisk, 1)}, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, reports)

	reports, err = RunBatch(context.Background(), nil, 1)
	require.NoError(t, err)
	assert.Empty(t, reports)
}
