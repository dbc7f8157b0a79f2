package paysynth

import (
	"context"
	"io"
	"testing"

	"github.com/pkg/profile"
)

var benchReport *Report

func BenchmarkRunForecast(b *testing.B) {
	req := mustRequest(b, ProfileForecast, DefaultSeed)

	var err error
	b.ResetTimer()
	for b.Loop() {
		benchReport, err = Run(req)
		if err != nil {
			panic(err)
		}
	}

	if err := benchReport.WriteJSON(io.Discard); err != nil {
		panic(err)
	}
}

func BenchmarkRunBatch(b *testing.B) {
	defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()

	var reqs []*Request
	for seed := uint64(0); seed < 16; seed++ {
		for _, p := range Profiles() {
			reqs = append(reqs, mustRequest(b, p, seed))
		}
	}

	b.ResetTimer()
	for b.Loop() {
		if _, err := RunBatch(context.Background(), reqs, DefaultBatchLimit); err != nil {
			panic(err)
		}
	}
}
