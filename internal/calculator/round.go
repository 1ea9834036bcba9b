package calculator

import (
	"math"

	"github.com/shopspring/decimal"
)

// RoundCents rounds half away from zero to 2 decimals.
func RoundCents(v float64) float64 { return roundTo(v, 2) }

// RoundMargin rounds half away from zero to 4 decimals (basis points).
func RoundMargin(v float64) float64 { return roundTo(v, 4) }

// RoundWhole rounds half away from zero to an integer value.
func RoundWhole(v float64) float64 { return roundTo(v, 0) }

// roundTo goes through decimal so that values like 1.005 round on their
// shortest decimal representation instead of their binary one.
func roundTo(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
