package main

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/GreatValueCreamSoda/govmetrics"
	"github.com/GreatValueCreamSoda/govmetrics/internal/logging"
	"github.com/GreatValueCreamSoda/govmetrics/sources"
	"github.com/spf13/pflag"
)

// initCLI parses all flags into a CompareConfig.
func initCLI(args []string) (CompareConfig, error) {
	var cfg CompareConfig
	var metrics, logLevelStr, backend, sampling string

	flags := pflag.NewFlagSet("govmetrics", pflag.ContinueOnError)
	flags.SortFlags = false

	flags.StringVarP(&cfg.ReferencePath, "reference", "r", "",
		"The reference video path the distorted video will be compared against")
	flags.StringVarP(&cfg.DistortionPath, "distortion", "d", "",
		"The distorted video path that will be compared to the reference")
	flags.StringVar(&metrics, "metrics", strings.Join(metricNames, ","),
		fmt.Sprintf("Comma seperated list of metrics that will be used %v",
			metricNames))
	flags.IntVar(&cfg.MaxFrames, "frames", 0,
		"Maximum number of frames to compare (0 = all)")
	flags.IntVar(&cfg.Jobs, "jobs", 1,
		"Number of metrics computed at the same time")
	flags.StringVar(&backend, "decoder", string(sources.BackendAuto),
		"Decoder backend: auto, y4m, ffms2, ffmpeg or image")
	flags.IntVar(&cfg.Width, "width", 0,
		"Output width of the ffmpeg decoder")
	flags.IntVar(&cfg.Height, "height", 0,
		"Output height of the ffmpeg decoder")
	flags.IntVar(&cfg.BitDepth, "bit-depth", 8,
		"Output bit depth of the ffmpeg decoder")
	flags.StringVar(&sampling, "chroma-sampling", "420",
		"Output chroma sampling of the ffmpeg decoder: 420, 422, 444 or 400")
	flags.StringVar(&logLevelStr, "loglevel", "info",
		"Log level: error, info, debug")
	flags.StringVarP(&cfg.OutputPath, "output", "o", "",
		"Path to save the JSON report")
	flags.BoolVar(&cfg.PerFrame, "per-frame", false,
		"Include per-frame scores in the JSON report")
	flags.BoolVar(&cfg.NoProgress, "no-progress", false,
		"Do not draw a progress bar")

	if err := flags.Parse(args); err != nil {
		return cfg, err
	}

	level, err := logging.ParseLevel(logLevelStr)
	if err != nil {
		return cfg, err
	}
	logging.SetLevel(level)

	cfg.Backend = sources.Backend(strings.ToLower(backend))
	if cfg.Sampling, err = parseSampling(sampling); err != nil {
		return cfg, err
	}

	for _, m := range strings.Split(metrics, ",") {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			cfg.Metrics = append(cfg.Metrics, m)
		}
	}

	if cfg.OutputPath != "" &&
		strings.HasSuffix(cfg.OutputPath, string(os.PathSeparator)) {
		return cfg, fmt.Errorf("--output cannot be a directory")
	}

	return cfg, cfg.Validate()
}

func parseSampling(s string) (govmetrics.ChromaSampling, error) {
	switch strings.ReplaceAll(s, ":", "") {
	case "420":
		return govmetrics.ChromaSampling420, nil
	case "422":
		return govmetrics.ChromaSampling422, nil
	case "444":
		return govmetrics.ChromaSampling444, nil
	case "400", "mono":
		return govmetrics.ChromaSampling400, nil
	default:
		return 0, fmt.Errorf("invalid chroma sampling: %q", s)
	}
}

func main() {
	log.SetFlags(log.LstdFlags)
	logging.SetLevel(logging.LevelInfo)

	cfg, err := initCLI(os.Args[1:])
	if err != nil {
		if err == pflag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	vc := NewVideoComparator(cfg)
	reports, err := vc.Run()
	if err != nil {
		logging.Logf(logging.LevelError, "Comparison failed: %v", err)
		os.Exit(1)
	}

	printReports(reports)
	printSummary(perFrameAverages(reports))

	if cfg.OutputPath != "" {
		if !cfg.PerFrame {
			for i := range reports {
				reports[i].PerFrame = nil
			}
		}
		if err := govmetrics.ReportsToJSONFile(reports,
			cfg.OutputPath); err != nil {
			logging.Logf(logging.LevelError,
				"Failed to save results to %s: %v", cfg.OutputPath, err)
			os.Exit(1)
		}
		logging.Logf(logging.LevelInfo, "Report saved to %s", cfg.OutputPath)
	}
}

// printReports writes the video level scores of every report to stdout.
func printReports(reports []govmetrics.Report) {
	sorted := make([]govmetrics.Report, len(reports))
	copy(sorted, reports)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Metric < sorted[j].Metric
	})

	for _, r := range sorted {
		fmt.Printf("%-9s Y: %.6f  U: %.6f  V: %.6f  Avg: %.6f  (%d frames)\n",
			r.Metric, r.Video.Y, r.Video.U, r.Video.V, r.Video.Avg, r.Frames)
	}
}

// perFrameAverages collects the averaged per-frame score of each report.
func perFrameAverages(reports []govmetrics.Report) map[string][]float64 {
	scores := make(map[string][]float64, len(reports))
	for _, r := range reports {
		values := make([]float64, len(r.PerFrame))
		for i, f := range r.PerFrame {
			values[i] = f.Avg
		}
		scores[r.Metric] = values
	}
	return scores
}
