package main

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// metricSummary holds the statistics of one metric's per-frame scores.
type metricSummary struct {
	Min, Max     float64
	Mean, StdDev float64
	Median       float64
	HarmonicMean float64
}

func summarize(values []float64) metricSummary {
	var s metricSummary
	s.Min = floats.Min(values)
	s.Max = floats.Max(values)
	s.Mean, s.StdDev = stat.PopMeanStdDev(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	s.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)

	// The harmonic mean is undefined once a score reaches zero or below.
	if s.Min > 0 {
		s.HarmonicMean = stat.HarmonicMean(values, nil)
	} else {
		s.HarmonicMean = math.NaN()
	}
	return s
}

// printSummary displays a human-readable summary of all metric scores to
// stderr, keeping stdout for the scores themselves. It includes pairwise
// absolute Pearson correlations when multiple metrics exist.
func printSummary(scores map[string][]float64) {
	if len(scores) == 0 {
		fmt.Fprintln(os.Stderr, "No scores to report")
		return
	}

	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Metric summary")
	fmt.Fprintln(os.Stderr, "==============")

	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		values := scores[name]
		if len(values) == 0 {
			continue
		}
		printMetricSummary(name, summarize(values))
	}

	if len(names) > 1 {
		printCorrelations(scores, names)
	}
}

// printMetricSummary prints statistical summary for a single metric to stderr.
func printMetricSummary(name string, s metricSummary) {
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, name)
	fmt.Fprintln(os.Stderr, strings.Repeat("-", len(name)))

	fmt.Fprintf(os.Stderr, "  min      : %.6f\n", s.Min)
	fmt.Fprintf(os.Stderr, "  max      : %.6f\n", s.Max)
	fmt.Fprintf(os.Stderr, "  average  : %.6f\n", s.Mean)
	fmt.Fprintf(os.Stderr, "  median   : %.6f\n", s.Median)
	fmt.Fprintf(os.Stderr, "  stddev   : %.6f\n", s.StdDev)
	fmt.Fprintf(os.Stderr, "  harmonic : %.6f\n", s.HarmonicMean)
}

// printCorrelations prints pairwise absolute Pearson correlations between
// metrics to stderr.
func printCorrelations(scores map[string][]float64, names []string) {
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Metric correlations")
	fmt.Fprintln(os.Stderr, "===================")

	maxLen := 0
	for _, name := range names {
		maxLen = max(maxLen, len(name))
	}

	formatStr := fmt.Sprintf("  %%-%ds ↔ %%-%ds : %% .6f\n", maxLen, maxLen)

	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			a, b := names[i], names[j]
			x, y := scores[a], scores[b]

			if len(x) < 2 || len(x) != len(y) {
				continue
			}

			r := pearsonCorrelation(x, y)
			fmt.Fprintf(os.Stderr, formatStr, a, b, math.Abs(r))
		}
	}
}

// pearsonCorrelation computes the Pearson correlation coefficient. Returns 0
// if inputs are mismatched, too short or either one is constant.
func pearsonCorrelation(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return 0
	}
	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return 0
	}
	return stat.Correlation(x, y, nil)
}
