package features

import (
	"math"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Precision is the number of decimals every derived cell is rounded to.
const Precision = 3

// Round rounds v to Precision decimals. NaN and infinities pass through.
func Round(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(Precision).InexactFloat64()
}

// RoundSeries returns a rounded copy of xs.
func RoundSeries(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, v := range xs {
		out[i] = Round(v)
	}
	return out
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// PctChange computes x_t / x_{t-period} - 1. The first period cells are NaN.
func PctChange(xs []float64, period int) []float64 {
	out := nanSeries(len(xs))
	for i := period; i < len(xs); i++ {
		out[i] = xs[i]/xs[i-period] - 1
	}
	return out
}

// rolling applies fn over every full trailing window. Cells before the first
// full window are NaN.
func rolling(xs []float64, window int, fn func([]float64) float64) []float64 {
	out := nanSeries(len(xs))
	if window <= 0 {
		return out
	}
	for i := window - 1; i < len(xs); i++ {
		out[i] = fn(xs[i-window+1 : i+1])
	}
	return out
}

// RollingMean is the trailing mean over window cells.
func RollingMean(xs []float64, window int) []float64 {
	return rolling(xs, window, func(w []float64) float64 { return stat.Mean(w, nil) })
}

// RollingStd is the trailing sample standard deviation over window cells.
// A window of one has no defined sample deviation and yields NaN.
func RollingStd(xs []float64, window int) []float64 {
	if window < 2 {
		return nanSeries(len(xs))
	}
	return rolling(xs, window, func(w []float64) float64 { return stat.StdDev(w, nil) })
}

// RollingMax is the trailing maximum over window cells.
func RollingMax(xs []float64, window int) []float64 {
	return rolling(xs, window, func(w []float64) float64 {
		for _, v := range w {
			if math.IsNaN(v) {
				return math.NaN()
			}
		}
		return floats.Max(w)
	})
}

// Ratio divides a by b elementwise.
func Ratio(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] / b[i]
	}
	return out
}

// Product multiplies a and b elementwise.
func Product(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] * b[i]
	}
	return out
}

// Deviation computes (a - b) / b elementwise.
func Deviation(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = (a[i] - b[i]) / b[i]
	}
	return out
}
