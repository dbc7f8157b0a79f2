package synth

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Component is a relative contribution to a series before it is scaled by the baseline
type Component []float64

func (c Component) Add(src Component) Component {
	floats.Add(c, src)
	return c
}

func (c Component) AddConst(val float64) Component {
	floats.AddConst(val, c)
	return c
}

// Scale multiplies every value in place
func (c Component) Scale(val float64) Component {
	floats.Scale(val, c)
	return c
}

// Trend rises linearly from 0 at the first point to end at the last point
func Trend(n int, end float64) Component {
	y := make(Component, n)
	if n < 2 {
		return y
	}
	for i := 0; i < n; i++ {
		y[i] = end * float64(i) / float64(n-1)
	}
	return y
}

// Seasonal is a sine wave with the given period in points whose phase is tied to the index
func Seasonal(n int, amp, period float64) Component {
	y := make(Component, n)
	for i := 0; i < n; i++ {
		y[i] = amp * math.Sin(2.0*math.Pi*float64(i)/period)
	}
	return y
}

// Noise draws n values from a zero mean normal distribution. Exactly n draws are taken
// from src even when stddev is zero.
func Noise(n int, stddev float64, src rand.Source) Component {
	dist := distuv.Normal{Mu: 0, Sigma: stddev, Src: src}
	y := make(Component, n)
	for i := 0; i < n; i++ {
		y[i] = dist.Rand()
	}
	return y
}

// Counts draws a poisson count for every positive rate. A single count can consume several
// values from src, so the stream position afterwards depends on the rates and the values
// drawn. Non-positive rates produce 0 and consume nothing.
func Counts(rates []float64, src rand.Source) Component {
	y := make(Component, len(rates))
	for i, rate := range rates {
		if rate <= 0 {
			continue
		}
		y[i] = distuv.Poisson{Lambda: rate, Src: src}.Rand()
	}
	return y
}
