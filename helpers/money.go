package helpers

import "github.com/shopspring/decimal"

// RoundCents rounds to 2 decimal places, half away from zero. All money
// amounts stored on transactions pass through here.
func RoundCents(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// UsdtToCny converts a USDT amount at the given rate, rounded to cents.
func UsdtToCny(amount, rate float64) float64 {
	f, _ := decimal.NewFromFloat(amount).
		Mul(decimal.NewFromFloat(rate)).
		Round(2).
		Float64()
	return f
}

// SplitAmount computes one stakeholder's cut of a net CNY amount.
func SplitAmount(netCNY, ratio float64) float64 {
	f, _ := decimal.NewFromFloat(netCNY).
		Mul(decimal.NewFromFloat(ratio)).
		Round(2).
		Float64()
	return f
}

// PercentOf computes a percentage-of-gross fee, rounded to cents.
func PercentOf(amount, pct float64) float64 {
	f, _ := decimal.NewFromFloat(amount).
		Mul(decimal.NewFromFloat(pct)).
		Round(2).
		Float64()
	return f
}

// FeeFloor subtracts fee from gross, floored at zero so a fee can never
// push a balance negative.
func FeeFloor(gross, fee float64) float64 {
	d := decimal.NewFromFloat(gross).Sub(decimal.NewFromFloat(fee))
	if d.IsNegative() {
		return 0
	}
	f, _ := d.Round(2).Float64()
	return f
}
