package pitch

// SelectPeriod scans cmndf from tauMin for the first lag below threshold,
// then follows the dip down to its local minimum. It returns that lag, or 0
// when no lag in [tauMin, tauMax) is below threshold.
func SelectPeriod(cmndf []float64, tauMin, tauMax int, threshold float64) int {
	if tauMax > len(cmndf) {
		tauMax = len(cmndf)
	}
	if tauMin < 1 {
		tauMin = 1
	}

	for tau := tauMin; tau < tauMax; tau++ {
		if cmndf[tau] < threshold {
			for tau+1 < tauMax && cmndf[tau+1] < cmndf[tau] {
				tau++
			}
			return tau
		}
	}
	return 0
}
