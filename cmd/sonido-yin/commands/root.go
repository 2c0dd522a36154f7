package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-yin/config"
	"github.com/RyanBlaney/sonido-yin/logging"
)

var (
	// Global flags
	cfgFile      string
	logLevel     string
	outputFormat string

	globalConfig = config.DefaultConfig()
)

var rootCmd = &cobra.Command{
	Use:   "sonido-yin",
	Short: "YIN pitch estimation for audio files",
	Long: `sonido-yin estimates the fundamental frequency of monophonic audio
with the YIN algorithm and maps it onto the equal-tempered scale.

WAV files are decoded in-process; other formats need ffmpeg and ffprobe
on the PATH.

Examples:
  # Per-frame pitch of a recording
  sonido-yin analyze guitar.wav

  # Same, as JSON with the FFT difference function
  sonido-yin analyze guitar.mp3 --method fft -o json

  # Nearest notes
  sonido-yin note 440 329.2 97.5

  # Tuner readings every 100 ms
  sonido-yin tune low-e.wav
`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, json, yaml")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(noteCmd)
	rootCmd.AddCommand(tuneCmd)
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if cfgFile != "" {
		var err error
		if cfg, err = config.Load(cfgFile); err != nil {
			return err
		}
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	format, err := parseOutputFormat(outputFormat)
	if err != nil {
		return err
	}
	outputFormat = format

	logger, err := cfg.Logging.Logger()
	if err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	logging.SetGlobalLogger(logger)

	globalConfig = cfg
	return nil
}

// getConfig returns the loaded configuration
func getConfig() config.Config {
	return globalConfig
}
