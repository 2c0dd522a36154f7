package commands

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-yin/notes"
)

type noteResult struct {
	Frequency float64      `json:"frequency_hz" yaml:"frequency_hz"`
	Match     *notes.Match `json:"match,omitempty" yaml:"match,omitempty"`
}

var noteCmd = &cobra.Command{
	Use:   "note <hz>...",
	Short: "Map frequencies to the nearest note",
	Long: `Print the closest equal-tempered note (C2 to B5, A4 = 440 Hz) for each
frequency, with the deviation in Hz and cents. Zero or negative
frequencies are reported as ??.

Examples:
  sonido-yin note 440 82.1 196.4
  sonido-yin note 261.6 -o json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		results := make([]noteResult, len(args))
		for i, arg := range args {
			f, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return fmt.Errorf("invalid frequency %q: %w", arg, err)
			}
			results[i].Frequency = f
			if m, ok := notes.Nearest(f); ok {
				results[i].Match = &m
			}
		}

		return writeOutput(cmd.OutOrStdout(), outputFormat, results, func(tw *tabwriter.Writer) {
			fmt.Fprintln(tw, "FREQ (Hz)\tNOTE\tNOTE (Hz)\tDEVIATION (Hz)\tCENTS")
			for _, r := range results {
				if r.Match == nil {
					fmt.Fprintf(tw, "%.2f\t%s\t-\t-\t-\n", r.Frequency, notes.Unknown)
					continue
				}
				m := r.Match
				fmt.Fprintf(tw, "%.2f\t%s\t%.2f\t%+.3f\t%+.1f\n",
					r.Frequency, m.Note.Name, m.Note.Frequency, m.Deviation, m.Cents)
			}
		})
	},
}
