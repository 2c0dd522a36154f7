package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-yaml"

	"github.com/RyanBlaney/sonido-yin/capture"
	"github.com/RyanBlaney/sonido-yin/config"
)

// parseOutputFormat normalizes an --output value to table, json or yaml.
func parseOutputFormat(format string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "", "table":
		return "table", nil
	case "json":
		return f, nil
	case "yaml", "yml":
		return "yaml", nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
	}
}

// writeOutput renders v in the --output format. table is only called for the
// table format.
func writeOutput(w io.Writer, format string, v any, table func(tw *tabwriter.Writer)) error {
	format, err := parseOutputFormat(format)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		if table == nil {
			return fmt.Errorf("table output is not supported here")
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		table(tw)
		return tw.Flush()
	}
}

// decoderConfig maps the capture section onto ffmpeg decoder settings.
func decoderConfig(cfg config.Config) *capture.DecoderConfig {
	dc := capture.DefaultDecoderConfig()
	dc.TargetSampleRate = cfg.Capture.SampleRate
	dc.FFmpegPath = cfg.Capture.FFmpegPath
	dc.FFprobePath = cfg.Capture.FFprobePath
	dc.Timeout = cfg.Capture.Timeout()
	dc.MaxDuration = cfg.Capture.MaxDuration()
	return dc
}

func formatHz(f float64) string {
	if f == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f", f)
}
