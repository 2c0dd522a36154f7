package pitch

// CMNDF returns the cumulative mean normalized difference of d:
//
//	cmndf[0]   = 1
//	cmndf[tau] = d(tau) * tau / sum_{k=1}^{tau} d(k)
//
// While the running sum is still zero (silent or constant input) the value
// is 1, so the curve never holds NaN or Inf.
func CMNDF(d []float64) []float64 {
	out := make([]float64, len(d))
	if len(d) == 0 {
		return out
	}

	out[0] = 1.0
	runningSum := 0.0
	for tau := 1; tau < len(d); tau++ {
		runningSum += d[tau]
		if runningSum == 0 {
			out[tau] = 1.0
			continue
		}
		out[tau] = d[tau] * float64(tau) / runningSum
	}
	return out
}
