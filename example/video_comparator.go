package main

import (
	"os"

	"github.com/GreatValueCreamSoda/govmetrics"
	"github.com/GreatValueCreamSoda/govmetrics/internal/logging"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
)

// VideoComparator runs every configured metric over the reference and the
// distortion. Each metric reads its own pair of sources, so up to cfg.Jobs
// metrics can run at once.
type VideoComparator struct {
	cfg CompareConfig
}

func NewVideoComparator(cfg CompareConfig) *VideoComparator {
	return &VideoComparator{cfg: cfg}
}

// Run computes all metrics and returns one report per metric in the
// configured order.
func (vc *VideoComparator) Run() ([]govmetrics.Report, error) {
	reports := make([]govmetrics.Report, len(vc.cfg.Metrics))

	var g errgroup.Group
	g.SetLimit(vc.cfg.Jobs)
	for i, name := range vc.cfg.Metrics {
		g.Go(func() error {
			report, err := vc.runOne(name)
			if err != nil {
				return errors.Wrap(err, name)
			}
			reports[i] = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func (vc *VideoComparator) runOne(name string) (govmetrics.Report, error) {
	ref, dist, err := vc.cfg.OpenSources()
	if err != nil {
		return govmetrics.Report{}, err
	}
	defer ref.Close()
	defer dist.Close()

	numFrames := vc.cfg.FrameCount(ref, dist)
	logging.Logf(logging.LevelInfo, "Computing %s over %d frames", name,
		numFrames)

	opts := govmetrics.VideoOptions{FrameLimit: vc.cfg.MaxFrames}
	if !vc.cfg.NoProgress {
		bar := newProgressBar(name, numFrames)
		defer bar.Finish()
		opts.Progress = func(int) { _ = bar.Add(1) }
	}

	report, err := computeReport(name, ref, dist, opts)
	if err != nil {
		return report, err
	}
	report.Reference = vc.cfg.ReferencePath
	report.Distorted = vc.cfg.DistortionPath
	return report, nil
}

// newProgressBar draws to stderr. A total of 0 gives a spinner for sources
// that cannot tell their length.
func newProgressBar(name string, total int) *progressbar.ProgressBar {
	if total <= 0 {
		total = -1
	}
	return progressbar.NewOptions(
		total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Computing "+name),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
	)
}
