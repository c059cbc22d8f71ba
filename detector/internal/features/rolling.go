package features

import "math"

// rollingStats computes causal rolling mean and sample standard deviation
// over the trailing window. Early positions use whatever history exists
// (minimum one sample); a single-sample window has std 0 by convention.
func rollingStats(values []float64, window int) (means, stds []float64) {
	n := len(values)
	means = make([]float64, n)
	stds = make([]float64, n)
	if window < 1 {
		window = 1
	}

	for i := 0; i < n; i++ {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		count := float64(i - start + 1)

		var sum float64
		for j := start; j <= i; j++ {
			sum += values[j]
		}
		mean := sum / count
		means[i] = mean

		if count < 2 {
			stds[i] = 0
			continue
		}
		var sq float64
		for j := start; j <= i; j++ {
			d := values[j] - mean
			sq += d * d
		}
		stds[i] = math.Sqrt(sq / (count - 1))
	}
	return means, stds
}

// diffSeries computes first-order differences with the first element
// defined as 0 (no prior sample).
func diffSeries(values []float64) []float64 {
	out := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		out[i] = values[i] - values[i-1]
	}
	return out
}
