package pitch

// Estimate is the YIN result for one analysis frame.
type Estimate struct {
	Time            float64 `json:"time" yaml:"time"`                               // frame start (s)
	Frequency       float64 `json:"frequency_hz" yaml:"frequency_hz"`               // 0 when unvoiced
	HarmonicRate    float64 `json:"harmonic_rate" yaml:"harmonic_rate"`             // CMNDF at the period, lower is more periodic
	ArgminFrequency float64 `json:"argmin_frequency_hz" yaml:"argmin_frequency_hz"` // global CMNDF minimum as Hz, 0 if below tau_min
}

// Voiced reports whether a period was found.
func (e Estimate) Voiced() bool {
	return e.Frequency > 0
}

// Estimates is a frame-ordered analysis result.
type Estimates []Estimate

// Voiced counts frames with a detected pitch.
func (es Estimates) Voiced() int {
	n := 0
	for _, e := range es {
		if e.Voiced() {
			n++
		}
	}
	return n
}

// Series converts the estimates to parallel per-field slices.
func (es Estimates) Series() Series {
	s := Series{
		Pitches:       make([]float64, len(es)),
		HarmonicRates: make([]float64, len(es)),
		Argmins:       make([]float64, len(es)),
		Times:         make([]float64, len(es)),
	}
	for i, e := range es {
		s.Pitches[i] = e.Frequency
		s.HarmonicRates[i] = e.HarmonicRate
		s.Argmins[i] = e.ArgminFrequency
		s.Times[i] = e.Time
	}
	return s
}

// Series holds the four time-aligned output sequences of an analysis.
type Series struct {
	Pitches       []float64 `json:"pitches" yaml:"pitches"`
	HarmonicRates []float64 `json:"harmonic_rates" yaml:"harmonic_rates"`
	Argmins       []float64 `json:"argmins" yaml:"argmins"`
	Times         []float64 `json:"times" yaml:"times"`
}

// Len returns the number of frames.
func (s Series) Len() int {
	return len(s.Times)
}
