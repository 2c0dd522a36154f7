package pitch

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidConfiguration is wrapped by every configuration error so callers
// can tell a bad setup apart from a bad signal with errors.Is.
var ErrInvalidConfiguration = errors.New("pitch: invalid configuration")

// DifferenceMethod selects how the squared-difference function is evaluated.
type DifferenceMethod int

const (
	// MethodDirect is the O(w_len*tau_max) double loop.
	MethodDirect DifferenceMethod = iota
	// MethodFFT uses prefix sums of squares plus an FFT autocorrelation.
	MethodFFT
)

func (m DifferenceMethod) String() string {
	switch m {
	case MethodDirect:
		return "direct"
	case MethodFFT:
		return "fft"
	default:
		return fmt.Sprintf("DifferenceMethod(%d)", int(m))
	}
}

// MarshalText encodes the method by name for JSON and YAML output.
func (m DifferenceMethod) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText accepts the names ParseDifferenceMethod does.
func (m *DifferenceMethod) UnmarshalText(text []byte) error {
	v, err := ParseDifferenceMethod(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParseDifferenceMethod maps "direct" or "fft" to a DifferenceMethod.
// An empty name selects MethodDirect.
func ParseDifferenceMethod(name string) (DifferenceMethod, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "direct":
		return MethodDirect, nil
	case "fft":
		return MethodFFT, nil
	default:
		return MethodDirect, fmt.Errorf("%w: unknown difference method %q", ErrInvalidConfiguration, name)
	}
}

// Params contains parameters for YIN pitch detection
type Params struct {
	SampleRate int `json:"sample_rate" yaml:"sample_rate"`
	WindowSize int `json:"window_size" yaml:"window_size"` // w_len, samples per frame
	HopSize    int `json:"hop_size" yaml:"hop_size"`       // w_step, samples between frames

	// Frequency range constraints
	MinFreq float64 `json:"min_freq" yaml:"min_freq"` // f0_min (Hz), sets tau_max
	MaxFreq float64 `json:"max_freq" yaml:"max_freq"` // f0_max (Hz), sets tau_min

	// Harmonicity threshold on the CMNDF curve
	Threshold float64 `json:"threshold" yaml:"threshold"`

	Method  DifferenceMethod `json:"method" yaml:"method"`
	Workers int              `json:"workers" yaml:"workers"` // <= 1 analyses frames serially
}

// DefaultParams returns the classic YIN settings: 512-sample windows with a
// 256-sample hop, 100-500 Hz and a 0.1 threshold.
func DefaultParams(sampleRate int) Params {
	return Params{
		SampleRate: sampleRate,
		WindowSize: 512,
		HopSize:    256,
		MinFreq:    100,
		MaxFreq:    500,
		Threshold:  0.1,
		Method:     MethodDirect,
		Workers:    1,
	}
}

// TauRange returns the candidate period range [tauMin, tauMax) in samples,
// rounded from the frequency limits.
func (p Params) TauRange() (tauMin, tauMax int) {
	if p.MinFreq <= 0 || p.MaxFreq <= 0 {
		return 0, 0
	}
	sr := float64(p.SampleRate)
	return int(math.Round(sr / p.MaxFreq)), int(math.Round(sr / p.MinFreq))
}

// Validate reports the first configuration problem found, wrapped in
// ErrInvalidConfiguration.
func (p Params) Validate() error {
	if p.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive: %d", ErrInvalidConfiguration, p.SampleRate)
	}
	if p.WindowSize <= 0 {
		return fmt.Errorf("%w: window size must be positive: %d", ErrInvalidConfiguration, p.WindowSize)
	}
	if p.HopSize <= 0 {
		return fmt.Errorf("%w: hop size must be positive: %d", ErrInvalidConfiguration, p.HopSize)
	}
	if p.MinFreq <= 0 || math.IsNaN(p.MinFreq) {
		return fmt.Errorf("%w: min frequency must be positive: %v", ErrInvalidConfiguration, p.MinFreq)
	}
	if !(p.MaxFreq > p.MinFreq) || math.IsInf(p.MaxFreq, 0) {
		return fmt.Errorf("%w: max frequency (%v) must exceed min frequency (%v)", ErrInvalidConfiguration, p.MaxFreq, p.MinFreq)
	}
	if !(p.Threshold > 0) {
		return fmt.Errorf("%w: threshold must be positive: %v", ErrInvalidConfiguration, p.Threshold)
	}
	if p.Method != MethodDirect && p.Method != MethodFFT {
		return fmt.Errorf("%w: unknown difference method %d", ErrInvalidConfiguration, int(p.Method))
	}

	tauMin, tauMax := p.TauRange()
	if tauMin < 1 {
		return fmt.Errorf("%w: max frequency %v Hz is above what %d Hz sampling can resolve", ErrInvalidConfiguration, p.MaxFreq, p.SampleRate)
	}
	if tauMin >= tauMax {
		return fmt.Errorf("%w: period range [%d, %d) is empty", ErrInvalidConfiguration, tauMin, tauMax)
	}
	if tauMax > p.WindowSize {
		return fmt.Errorf("%w: tau_max (%d) exceeds window size (%d); raise min frequency or window size",
			ErrInvalidConfiguration, tauMax, p.WindowSize)
	}
	return nil
}
