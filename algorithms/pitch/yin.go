// Package pitch implements the YIN fundamental-frequency estimator.
//
// A Detector slices a buffer into overlapping frames and, for each frame,
// computes the squared-difference function, normalizes it into the
// cumulative mean normalized difference (CMNDF) and picks the first dip
// below the harmonicity threshold as the period.
//
// Reference: de Cheveigné, A., Kawahara, H. (2002). "YIN, a fundamental
// frequency estimator for speech and music"
package pitch

import (
	"fmt"
	"sync"

	"github.com/RyanBlaney/sonido-yin/algorithms/common"
	"github.com/RyanBlaney/sonido-yin/logging"
)

// Detector runs YIN over whole buffers. Its configuration is fixed at
// construction, so one Detector can serve concurrent callers.
type Detector struct {
	params  Params
	tauMin  int
	tauMax  int
	workers int
	logger  logging.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithLogger sets the logger used for debug output.
func WithLogger(logger logging.Logger) Option {
	return func(d *Detector) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithWorkers overrides Params.Workers. Values <= 1 analyse frames serially.
func WithWorkers(n int) Option {
	return func(d *Detector) {
		d.workers = n
	}
}

// New validates params and returns a Detector. Errors wrap
// ErrInvalidConfiguration.
func New(params Params, opts ...Option) (*Detector, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	tauMin, tauMax := params.TauRange()
	d := &Detector{
		params:  params,
		tauMin:  tauMin,
		tauMax:  tauMax,
		workers: params.Workers,
		logger:  logging.WithFields(logging.Fields{"component": "yin_detector"}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}

	d.logger.Debug("YIN detector configured", logging.Fields{
		"sample_rate": params.SampleRate,
		"window_size": params.WindowSize,
		"hop_size":    params.HopSize,
		"tau_min":     tauMin,
		"tau_max":     tauMax,
		"threshold":   params.Threshold,
		"method":      params.Method.String(),
		"workers":     d.workers,
	})

	return d, nil
}

// Params returns the detector configuration.
func (d *Detector) Params() Params {
	return d.params
}

// TauRange returns the derived period search range [tauMin, tauMax).
func (d *Detector) TauRange() (tauMin, tauMax int) {
	return d.tauMin, d.tauMax
}

// Analyze estimates the pitch of every complete frame in signal, in frame
// order. A signal shorter than one window yields an empty result.
func (d *Detector) Analyze(signal []float64) Estimates {
	frames := common.Frames(signal, d.params.WindowSize, d.params.HopSize, d.params.SampleRate)
	out := make(Estimates, len(frames))
	if len(frames) == 0 {
		d.logger.Debug("Signal shorter than one window", logging.Fields{
			"samples":     len(signal),
			"window_size": d.params.WindowSize,
		})
		return out
	}

	workers := min(d.workers, len(frames))
	if workers <= 1 {
		for i, f := range frames {
			out[i] = d.estimate(f.Samples, f.Time)
		}
	} else {
		jobs := make(chan int)
		var wg sync.WaitGroup
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					out[i] = d.estimate(frames[i].Samples, frames[i].Time)
				}
			}()
		}
		for i := range frames {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	d.logger.Debug("YIN analysis completed", logging.Fields{
		"samples": len(signal),
		"frames":  len(out),
		"voiced":  out.Voiced(),
		"workers": max(workers, 1),
	})
	return out
}

// AnalyzeSeries is Analyze returning the four parallel sequences.
func (d *Detector) AnalyzeSeries(signal []float64) Series {
	return d.Analyze(signal).Series()
}

// EstimateFrame estimates the pitch of a single frame. The frame must hold
// exactly WindowSize samples.
func (d *Detector) EstimateFrame(frame common.Frame) (Estimate, error) {
	if len(frame.Samples) != d.params.WindowSize {
		return Estimate{}, fmt.Errorf("frame size (%d) doesn't match window size (%d)", len(frame.Samples), d.params.WindowSize)
	}
	return d.estimate(frame.Samples, frame.Time), nil
}

// estimate assumes len(samples) == WindowSize >= tauMax, which New enforces.
func (d *Detector) estimate(samples []float64, t float64) Estimate {
	diff, err := Difference(samples, d.tauMax, d.params.Method)
	if err != nil {
		// unreachable after Validate
		panic(err)
	}
	cmndf := CMNDF(diff)
	period := SelectPeriod(cmndf, d.tauMin, d.tauMax, d.params.Threshold)

	sr := float64(d.params.SampleRate)
	est := Estimate{Time: t}
	if period != 0 {
		est.Frequency = sr / float64(period)
		est.HarmonicRate = cmndf[period]
	} else {
		est.HarmonicRate = common.Min(cmndf)
	}

	if m := common.ArgMin(cmndf); m > d.tauMin {
		est.ArgminFrequency = sr / float64(m)
	}
	return est
}

// Compute runs a one-off analysis and returns pitches, harmonic rates,
// argmin frequencies and frame times as parallel slices.
func Compute(signal []float64, params Params) (Series, error) {
	d, err := New(params)
	if err != nil {
		return Series{}, err
	}
	return d.AnalyzeSeries(signal), nil
}
