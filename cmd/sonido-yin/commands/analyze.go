package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-yin/algorithms/pitch"
	"github.com/RyanBlaney/sonido-yin/capture"
	"github.com/RyanBlaney/sonido-yin/config"
	"github.com/RyanBlaney/sonido-yin/logging"
	"github.com/RyanBlaney/sonido-yin/notes"
)

var analyzeFlags struct {
	sampleRate int
	window     int
	hop        int
	minFreq    float64
	maxFreq    float64
	threshold  float64
	method     string
	workers    int
}

type analyzeFrame struct {
	pitch.Estimate `yaml:",inline"`
	Note           string `json:"note" yaml:"note"`
}

type analyzeResult struct {
	File   string         `json:"file" yaml:"file"`
	Params pitch.Params   `json:"params" yaml:"params"`
	Voiced int            `json:"voiced" yaml:"voiced"`
	Frames []analyzeFrame `json:"frames" yaml:"frames"`
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file|->",
	Short: "Per-frame pitch estimates for an audio file",
	Long: `Decode an audio file to mono, slice it into overlapping windows and
run YIN on each window. A file name of - reads the audio from stdin.

Columns: frame start time, detected frequency (- when unvoiced), nearest
note, harmonic rate (CMNDF at the period, lower is more periodic) and the
frequency of the global CMNDF minimum.

Examples:
  sonido-yin analyze voice.wav --min-freq 80 --max-freq 400
  sonido-yin analyze song.mp3 --method fft --workers 4 -o yaml
  arecord -f S16_LE -r 22050 -d 3 -t wav | sonido-yin analyze -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		applyDetectorFlags(cmd, &cfg)

		params, err := cfg.Params()
		if err != nil {
			return err
		}
		detector, err := pitch.New(params)
		if err != nil {
			return err
		}

		var pcm []float64
		if args[0] == "-" {
			pcm, err = capture.LoadReader(cmd.Context(), cmd.InOrStdin(), decoderConfig(cfg))
		} else {
			pcm, err = capture.LoadFile(cmd.Context(), args[0], decoderConfig(cfg))
		}
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", args[0], err)
		}

		estimates := detector.Analyze(pcm)
		logging.Info("Analysis complete", logging.Fields{
			"file":    args[0],
			"samples": len(pcm),
			"frames":  len(estimates),
			"voiced":  estimates.Voiced(),
		})

		result := analyzeResult{
			File:   args[0],
			Params: params,
			Voiced: estimates.Voiced(),
			Frames: make([]analyzeFrame, len(estimates)),
		}
		for i, e := range estimates {
			result.Frames[i] = analyzeFrame{Estimate: e, Note: notes.Unknown}
			if m, ok := notes.Nearest(e.Frequency); ok {
				result.Frames[i].Note = m.Note.Name
			}
		}

		return writeOutput(cmd.OutOrStdout(), outputFormat, result, func(tw *tabwriter.Writer) {
			fmt.Fprintln(tw, "TIME\tFREQ (Hz)\tNOTE\tHARMONIC RATE\tARGMIN (Hz)")
			for _, f := range result.Frames {
				fmt.Fprintf(tw, "%.4f\t%s\t%s\t%.4f\t%s\n",
					f.Time, formatHz(f.Frequency), f.Note, f.HarmonicRate, formatHz(f.ArgminFrequency))
			}
		})
	},
}

func init() {
	f := analyzeCmd.Flags()
	f.IntVar(&analyzeFlags.sampleRate, "sample-rate", 0, "analysis sample rate in Hz")
	f.IntVar(&analyzeFlags.window, "window", 0, "window length in samples")
	f.IntVar(&analyzeFlags.hop, "hop", 0, "hop between windows in samples")
	f.Float64Var(&analyzeFlags.minFreq, "min-freq", 0, "lowest detectable frequency in Hz")
	f.Float64Var(&analyzeFlags.maxFreq, "max-freq", 0, "highest detectable frequency in Hz")
	f.Float64Var(&analyzeFlags.threshold, "threshold", 0, "harmonicity threshold")
	f.StringVar(&analyzeFlags.method, "method", "", "difference function: direct, fft")
	f.IntVar(&analyzeFlags.workers, "workers", 0, "frames analysed in parallel")
}

// applyDetectorFlags overrides cfg with the flags set on the command line.
func applyDetectorFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("sample-rate") {
		cfg.Capture.SampleRate = analyzeFlags.sampleRate
	}
	if f.Changed("window") {
		cfg.Detector.WindowSize = analyzeFlags.window
	}
	if f.Changed("hop") {
		cfg.Detector.HopSize = analyzeFlags.hop
	}
	if f.Changed("min-freq") {
		cfg.Detector.MinFreq = analyzeFlags.minFreq
	}
	if f.Changed("max-freq") {
		cfg.Detector.MaxFreq = analyzeFlags.maxFreq
	}
	if f.Changed("threshold") {
		cfg.Detector.Threshold = analyzeFlags.threshold
	}
	if f.Changed("method") {
		cfg.Detector.Method = analyzeFlags.method
	}
	if f.Changed("workers") {
		cfg.Detector.Workers = analyzeFlags.workers
	}
}
