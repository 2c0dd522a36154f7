// Package tuner runs the capture, detect and note-match loop of an
// instrument tuner.
package tuner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RyanBlaney/sonido-yin/algorithms/common"
	"github.com/RyanBlaney/sonido-yin/algorithms/filters"
	"github.com/RyanBlaney/sonido-yin/algorithms/pitch"
	"github.com/RyanBlaney/sonido-yin/capture"
	"github.com/RyanBlaney/sonido-yin/config"
	"github.com/RyanBlaney/sonido-yin/logging"
	"github.com/RyanBlaney/sonido-yin/notes"
)

// Reading is the tuner state after one capture.
type Reading struct {
	Seq          int             `json:"seq" yaml:"seq"`
	Note         string          `json:"note" yaml:"note"` // notes.Unknown when unvoiced
	Frequency    float64         `json:"frequency_hz" yaml:"frequency_hz"`
	Deviation    float64         `json:"deviation_hz" yaml:"deviation_hz"`
	Cents        float64         `json:"cents" yaml:"cents"`
	HarmonicRate float64         `json:"harmonic_rate" yaml:"harmonic_rate"`
	RMS          float64         `json:"rms" yaml:"rms"`
	Frames       pitch.Estimates `json:"frames" yaml:"frames"`
}

// Voiced reports whether the reading matched a note.
func (r Reading) Voiced() bool {
	return r.Frequency > 0
}

// Tuner captures a block from its source on every step and reports the
// nearest note. It is not safe for concurrent use.
type Tuner struct {
	src        capture.Source
	detector   *pitch.Detector
	dcBlock    *filters.DCRemoval // nil when disabled
	sampleRate int
	length     int
	interval   time.Duration
	logger     logging.Logger
	seq        int
}

// Option configures a Tuner.
type Option func(*Tuner)

// WithLogger sets the logger used for per-reading debug output.
func WithLogger(logger logging.Logger) Option {
	return func(t *Tuner) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// New builds a tuner reading cfg.Capture.Length samples per step from src.
func New(src capture.Source, cfg config.Config, opts ...Option) (*Tuner, error) {
	if src == nil {
		return nil, errors.New("tuner: nil source")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("tuner: %w", err)
	}
	params, err := cfg.Params()
	if err != nil {
		return nil, fmt.Errorf("tuner: %w", err)
	}

	t := &Tuner{
		src:        src,
		sampleRate: cfg.Capture.SampleRate,
		length:     cfg.Capture.Length,
		interval:   cfg.Tuner.Interval(),
		logger:     logging.WithFields(logging.Fields{"component": "tuner"}),
	}
	for _, opt := range opts {
		opt(t)
	}

	t.detector, err = pitch.New(params, pitch.WithLogger(t.logger))
	if err != nil {
		return nil, fmt.Errorf("tuner: %w", err)
	}
	if cfg.Tuner.DCBlockHz > 0 {
		if t.dcBlock, err = filters.NewDCRemovalWithCutoff(t.sampleRate, cfg.Tuner.DCBlockHz); err != nil {
			return nil, fmt.Errorf("tuner: %w", err)
		}
	}
	return t, nil
}

// Step captures one block and resolves the pitch of its first frame.
func (t *Tuner) Step(ctx context.Context) (Reading, error) {
	samples, err := t.src.Capture(ctx, t.length, t.sampleRate)
	if err != nil {
		return Reading{}, err
	}

	t.seq++
	r := Reading{
		Seq:  t.seq,
		Note: notes.Unknown,
		RMS:  common.ACRMS(samples),
	}
	if t.dcBlock != nil {
		samples = t.dcBlock.Process(samples)
	}
	frames := t.detector.Analyze(samples)
	r.Frames = frames
	if len(frames) == 0 {
		return r, nil
	}

	first := frames[0]
	r.HarmonicRate = first.HarmonicRate
	if m, ok := notes.Nearest(first.Frequency); ok {
		r.Note = m.Note.Name
		r.Frequency = first.Frequency
		r.Deviation = m.Deviation
		r.Cents = m.Cents
	}

	t.logger.Debug("Tuner reading", logging.Fields{
		"seq":           r.Seq,
		"note":          r.Note,
		"frequency_hz":  r.Frequency,
		"deviation_hz":  r.Deviation,
		"harmonic_rate": r.HarmonicRate,
		"rms":           r.RMS,
	})
	return r, nil
}

// Run calls fn with a fresh reading every interval. It returns nil once ctx is
// cancelled or the source is exhausted, and the first other error otherwise.
func (t *Tuner) Run(ctx context.Context, fn func(Reading) error) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		r, err := t.Step(ctx)
		switch {
		case ctx.Err() != nil:
			return nil
		case errors.Is(err, capture.ErrExhausted):
			t.logger.Debug("Source exhausted", logging.Fields{"readings": t.seq})
			return nil
		case err != nil:
			return err
		}

		if err := fn(r); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
