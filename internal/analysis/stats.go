package analysis

import (
	"math"
	"sort"
)

// mean returns the arithmetic mean of values, NaN for an empty slice.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// median returns the middle value of the sorted sample, averaging the
// two middle values for an even count. NaN for an empty slice.
func median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2.0
}

// sampleStdDev returns the standard deviation with Bessel's correction
// (n-1 denominator). Undefined (NaN) for fewer than two values.
func sampleStdDev(values []float64) float64 {
	return math.Sqrt(sampleVariance(values))
}

// sampleVariance returns the n-1 denominator variance, NaN for n < 2.
func sampleVariance(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return math.NaN()
	}

	m := mean(values)
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return ss / float64(n-1)
}

// sampleCovariance returns the n-1 denominator covariance of two
// equal-length samples, NaN for n < 2.
func sampleCovariance(xs, ys []float64) float64 {
	n := len(xs)
	if n < 2 || n != len(ys) {
		return math.NaN()
	}

	mx := mean(xs)
	my := mean(ys)
	var ss float64
	for i := range xs {
		ss += (xs[i] - mx) * (ys[i] - my)
	}
	return ss / float64(n-1)
}

// pearson returns the Pearson correlation coefficient of two samples.
// NaN when either sample has zero variance or fewer than two values.
func pearson(xs, ys []float64) float64 {
	cov := sampleCovariance(xs, ys)
	sx := sampleStdDev(xs)
	sy := sampleStdDev(ys)
	if sx == 0 || sy == 0 {
		return math.NaN()
	}
	return cov / (sx * sy)
}

// round2 rounds to two decimal places for reporting.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// minMax returns the smallest and largest of values.
func minMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return math.NaN(), math.NaN()
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
