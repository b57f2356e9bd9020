package metrics

import (
	"math"

	"github.com/shopspring/decimal"
)

// Finite maps NaN and ±Inf to zero.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	v = Finite(v)
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Percent returns numerator*100/denominator rounded to two decimals, or zero
// when the denominator is not positive.
func Percent(numerator, denominator float64) float64 {
	numerator, denominator = Finite(numerator), Finite(denominator)
	if denominator <= 0 {
		return 0
	}
	return Round2(numerator * 100 / denominator)
}

// PercentageChange is the relative change from previous to current in
// percent, rounded to two decimals. A zero previous value yields zero.
func PercentageChange(current, previous float64) float64 {
	current, previous = Finite(current), Finite(previous)
	if previous == 0 {
		return 0
	}
	return Round2((current - previous) / previous * 100)
}

func clampZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
