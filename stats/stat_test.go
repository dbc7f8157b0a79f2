package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectOutliers(t *testing.T) {
	testData := map[string]struct {
		y           []float64
		lowerPerc   float64
		upperPerc   float64
		tukeyFactor float64
		expected    []int
	}{
		"empty": {
			lowerPerc:   0.25,
			upperPerc:   0.75,
			tukeyFactor: 1.5,
		},
		"constant": {
			y:           []float64{1, 1, 1, 1},
			lowerPerc:   0.25,
			upperPerc:   0.75,
			tukeyFactor: 1.5,
		},
		"single spike": {
			y:           []float64{0.1, -0.2, 0.3, -0.1, 0.0, 50.0, 0.2, -0.3, 0.1, -0.2},
			lowerPerc:   0.25,
			upperPerc:   0.75,
			tukeyFactor: 1.5,
			expected:    []int{5},
		},
		"spikes both sides": {
			y:           []float64{-40.0, 0.1, -0.2, 0.3, -0.1, 0.0, 0.2, -0.3, 0.1, 40.0},
			lowerPerc:   0.25,
			upperPerc:   0.75,
			tukeyFactor: 1.5,
			expected:    []int{0, 9},
		},
		"full percentile range clamps": {
			y:           []float64{1, 2, 3},
			lowerPerc:   -1,
			upperPerc:   2,
			tukeyFactor: 0,
			expected:    []int{0, 2},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res := DetectOutliers(td.y, td.lowerPerc, td.upperPerc, td.tukeyFactor)
			assert.Equal(t, td.expected, res)
		})
	}
}
