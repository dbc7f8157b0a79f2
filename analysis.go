// Package paysynth composes the synthesis, forecast and attribution engines into analyses
// reproducing the views of a cross-border payments dashboard.
package paysynth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aouyang1/go-paysynth/attribution"
	"github.com/aouyang1/go-paysynth/forecast"
	"github.com/aouyang1/go-paysynth/synth"
	"github.com/aouyang1/go-paysynth/timedataset"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchLimit bounds the number of analyses running at once in a batch
const DefaultBatchLimit = 4

// Run generates the series of a request then derives, forecasts and attributes as requested
func Run(req *Request) (*Report, error) {
	if req == nil || req.Synth == nil {
		return nil, ErrNoSynthesis
	}

	ms, err := synth.Generate(req.Synth)
	if err != nil {
		return nil, fmt.Errorf("synthesizing %s, %w", req.Profile, err)
	}

	for _, d := range req.Derived {
		if err := ms.Derive(d.Name, d.Source, d.apply); err != nil {
			if errors.Is(err, timedataset.ErrUnknownSeries) {
				err = ErrUnknownSource
			}
			return nil, fmt.Errorf("deriving %s from %s, %w", d.Name, d.Source, err)
		}
	}

	report := &Report{
		Profile: req.Profile,
		Seed:    req.Synth.Seed,
		Data:    ms,
	}

	if req.Forecast != nil {
		res, err := runForecast(req.Forecast, req.Synth.Marker, report)
		if err != nil {
			return nil, err
		}
		report.Forecast = res
	}

	if req.Attribution != nil {
		res, err := runAttribution(req.Attribution)
		if err != nil {
			return nil, err
		}
		report.Attribution = res
	}

	slog.Debug("completed analysis",
		"profile", req.Profile.String(),
		"seed", req.Synth.Seed,
		"series", len(ms.Names()),
		"points", ms.Len(),
	)
	return report, nil
}

func runForecast(req *ForecastRequest, marker timedataset.MonthMarker, report *Report) (*ForecastResult, error) {
	s, exists := report.Data.Series(req.Series)
	if !exists {
		return nil, fmt.Errorf("%q, %w", req.Series, ErrNoForecastSeries)
	}

	// the history was generated on this marker so the forecast continues on it
	opt := forecast.NewDefaultOptions()
	if req.Options != nil {
		o := *req.Options
		opt = &o
	}
	if opt.Marker == nil {
		opt.Marker = marker
	}

	f, err := forecast.New(opt)
	if err != nil {
		return nil, err
	}
	if err := f.Fit(s); err != nil {
		return nil, fmt.Errorf("fitting %s, %w", req.Series, err)
	}
	points, err := f.Forecast(req.Horizon)
	if err != nil {
		return nil, fmt.Errorf("forecasting %s, %w", req.Series, err)
	}
	eq, err := f.ModelEq()
	if err != nil {
		return nil, err
	}
	model, err := f.Model()
	if err != nil {
		return nil, err
	}

	return &ForecastResult{
		Series:   req.Series,
		Horizon:  req.Horizon,
		Fitted:   f.Fitted(),
		Points:   points,
		Equation: eq,
		Model:    model,
	}, nil
}

func runAttribution(req *AttributionRequest) (*AttributionResult, error) {
	if req.Name == "" {
		return nil, ErrEmptyAttribution
	}
	set, err := attribution.NewContributionSet(req.Factors...)
	if err != nil {
		return nil, fmt.Errorf("attribution %s, %w", req.Name, err)
	}
	res, err := attribution.Allocate(req.Baseline, set, req.Options)
	if err != nil {
		return nil, fmt.Errorf("attribution %s, %w", req.Name, err)
	}
	return &AttributionResult{
		Name:        req.Name,
		Attribution: res,
	}, nil
}

// RunBatch runs the requests with at most limit in flight and returns the reports in request
// order. The first failure cancels the remaining requests and no reports are returned.
func RunBatch(ctx context.Context, reqs []*Request, limit int) ([]*Report, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit of %d, %w", limit, ErrInvalidBatchLimit)
	}

	reports := make([]*Report, len(reqs))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, req := range reqs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			report, err := Run(req)
			if err != nil {
				return fmt.Errorf("request %d, %w", i, err)
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
