package systems

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// Clamp functions for common value ranges

// clamp clamps v between minVal and maxVal.
func clamp(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clamp01 clamps v to the [0, 1] range.
func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

// Angle normalization functions

// normalizeHeading wraps a heading to [0, 2*Pi).
func normalizeHeading(h float64) float64 {
	const twoPi = 2 * math.Pi
	h = math.Mod(h, twoPi)
	if h < 0 {
		h += twoPi
	}
	if h >= twoPi {
		h = 0
	}
	return h
}

// Random draws

// uniform returns a value drawn uniformly from [lo, hi).
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + rng.Float64()*(hi-lo)
}

// intBetween returns an integer drawn uniformly from [lo, hi].
func intBetween(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}

// Vectors

// unit returns the unit vector at angle a.
func unit(a float64) r2.Vec {
	return r2.Vec{X: math.Cos(a), Y: math.Sin(a)}
}

// pickCumulative returns the index of the first cumulative bound above u.
// Cumulative tables may end a hair below 1; the remainder goes to the last
// entry with a non-zero band.
func pickCumulative(cumulative []float64, u float64) int {
	last := 0
	prev := 0.0
	for i, bound := range cumulative {
		if u < bound {
			return i
		}
		if bound > prev {
			last = i
		}
		prev = bound
	}
	return last
}
