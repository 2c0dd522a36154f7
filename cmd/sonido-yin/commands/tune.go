package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-yin/capture"
	"github.com/RyanBlaney/sonido-yin/tuner"
)

var tuneFlags struct {
	loop  bool
	count int
}

var tuneCmd = &cobra.Command{
	Use:   "tune <file>",
	Short: "Run the tuner loop over an audio file",
	Long: `Play an audio file through the tuner: every interval the next block of
samples is captured, its first frame is pitch-detected and matched to a
note. Readings stop at the end of the file, after --count readings or on
Ctrl-C.

Examples:
  sonido-yin tune open-a.wav
  sonido-yin tune drone.flac --loop --count 50 -o json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		if cmd.Flags().Changed("loop") {
			cfg.Capture.Loop = tuneFlags.loop
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		src, err := capture.OpenFile(ctx, args[0], decoderConfig(cfg), cfg.Capture.Loop)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		t, err := tuner.New(src, cfg)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		out := cmd.OutOrStdout()
		return t.Run(ctx, func(r tuner.Reading) error {
			switch outputFormat {
			case "table":
				fmt.Fprintf(out, "%4d  %-8s %8s Hz  %+8.3f Hz  rms %.4f\n",
					r.Seq, r.Note, formatHz(r.Frequency), r.Deviation, r.RMS)
			default:
				r.Frames = nil
				if err := writeOutput(out, outputFormat, r, nil); err != nil {
					return err
				}
			}
			if tuneFlags.count > 0 && r.Seq >= tuneFlags.count {
				cancel()
			}
			return nil
		})
	},
}

func init() {
	tuneCmd.Flags().BoolVar(&tuneFlags.loop, "loop", false, "restart the file when it ends")
	tuneCmd.Flags().IntVar(&tuneFlags.count, "count", 0, "stop after this many readings (0 = no limit)")
}
