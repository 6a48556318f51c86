package service

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// finite maps NaN and the infinities to 0; decimal refuses to hold them.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// round2 rounds half away from zero to 2 decimal places.
func round2(v float64) float64 {
	return decimal.NewFromFloat(finite(v)).Round(2).InexactFloat64()
}

func formatMoney(currency string, v float64) string {
	amount := decimal.NewFromFloat(finite(v)).StringFixed(2)
	if currency == "" {
		return amount
	}
	return currency + " " + amount
}

func formatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

func formatPercent(p float64) string {
	return decimal.NewFromFloat(finite(p)).Round(2).String()
}
