package engine

import (
	"math"

	"github.com/shopspring/decimal"
)

// normalize returns a smooth 0..1 pressure for a metric value.
// Returns 0 at or below warn, linear ramp to 1 at crit, capped at 1.
func normalize(value, warn, crit float64) float64 {
	if crit <= warn {
		// Degenerate: treat as binary threshold at warn
		if value >= warn {
			return 1
		}
		return 0
	}
	if value <= warn {
		return 0
	}
	if value >= crit {
		return 1
	}
	return (value - warn) / (crit - warn)
}

// round2 rounds half away from zero to two decimal places. Non-finite
// values are returned unchanged.
func round2(v float64) float64 {
	if !isFinite(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// fixed2 formats v with exactly two decimals.
func fixed2(v float64) string {
	if !isFinite(v) {
		return "NaN"
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// finite maps NaN and Inf to zero.
func finite(v float64) float64 {
	if !isFinite(v) {
		return 0
	}
	return v
}
