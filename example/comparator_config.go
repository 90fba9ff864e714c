package main

import (
	"fmt"
	"slices"

	"github.com/GreatValueCreamSoda/govmetrics"
	"github.com/GreatValueCreamSoda/govmetrics/internal/logging"
	"github.com/GreatValueCreamSoda/govmetrics/sources"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

type CompareConfig struct {
	ReferencePath, DistortionPath string
	Metrics                       []string
	MaxFrames                     int
	Jobs                          int

	Backend       sources.Backend
	Width, Height int
	BitDepth      int
	Sampling      govmetrics.ChromaSampling

	OutputPath string
	PerFrame   bool
	NoProgress bool
}

func (c *CompareConfig) Validate() error {
	logging.Logf(logging.LevelInfo, "Validating comparator configuration")

	if c.ReferencePath == "" || c.DistortionPath == "" {
		return errors.New("both --reference and --distortion are required")
	}
	if c.Jobs <= 0 {
		logging.Logf(logging.LevelInfo, "Jobs <= 0, defaulting to 1")
		c.Jobs = 1
	}
	if c.MaxFrames < 0 {
		c.MaxFrames = 0
	}
	if len(c.Metrics) == 0 {
		err := errors.New("at least one metric must be specified")
		logging.Logf(logging.LevelError, "Validation failed: %v", err)
		return err
	}
	for _, m := range c.Metrics {
		if !slices.Contains(metricNames, m) {
			return fmt.Errorf("unknown metric %s", m)
		}
	}
	if c.Backend == sources.BackendFFmpeg && (c.Width <= 0 || c.Height <= 0) {
		return errors.New("the ffmpeg decoder needs --width and --height")
	}

	logging.Logf(logging.LevelInfo, "Configuration validated successfully: "+
		"Jobs=%d, Metrics=%v", c.Jobs, c.Metrics)
	return nil
}

func (c *CompareConfig) openOptions() sources.OpenOptions {
	return sources.OpenOptions{
		Backend:        c.Backend,
		Width:          c.Width,
		Height:         c.Height,
		BitDepth:       c.BitDepth,
		ChromaSampling: c.Sampling,
	}
}

// OpenSources opens the reference and the distortion concurrently, since
// indexing a container can take a while.
func (c *CompareConfig) OpenSources() (sources.Source, sources.Source,
	error) {
	logging.Logf(logging.LevelDebug, "Opening sources: reference='%s', "+
		"distortion='%s'", c.ReferencePath, c.DistortionPath)

	var ref, dist sources.Source
	var g errgroup.Group
	g.Go(func() (err error) {
		ref, err = sources.Open(c.ReferencePath, c.openOptions())
		return errors.Wrap(err, "opening reference")
	})
	g.Go(func() (err error) {
		dist, err = sources.Open(c.DistortionPath, c.openOptions())
		return errors.Wrap(err, "opening distortion")
	})

	if err := g.Wait(); err != nil {
		for _, s := range []sources.Source{ref, dist} {
			if s != nil {
				s.Close()
			}
		}
		return nil, nil, err
	}

	refDetails := ref.GetVideoDetails()
	distDetails := dist.GetVideoDetails()
	logging.Logf(logging.LevelDebug, "Reference: %dx%d %s %d-bit, %d frames",
		refDetails.Width, refDetails.Height, refDetails.ChromaSampling,
		refDetails.BitDepth, refDetails.NumFrames)
	logging.Logf(logging.LevelDebug, "Distortion: %dx%d %s %d-bit, %d frames",
		distDetails.Width, distDetails.Height, distDetails.ChromaSampling,
		distDetails.BitDepth, distDetails.NumFrames)
	return ref, dist, nil
}

// FrameCount returns how many frames a comparison will process, or 0 when
// neither source can tell.
func (c *CompareConfig) FrameCount(ref, dist sources.Source) int {
	n := ref.GetVideoDetails().NumFrames
	if m := dist.GetVideoDetails().NumFrames; m > 0 && (n == 0 || m < n) {
		n = m
	}
	if c.MaxFrames > 0 && (n == 0 || c.MaxFrames < n) {
		n = c.MaxFrames
	}
	return n
}
