package main

import (
	"fmt"

	"github.com/GreatValueCreamSoda/govmetrics"
	"github.com/GreatValueCreamSoda/govmetrics/sources"
)

const (
	psnrHvsName = "psnr-hvs"
	ssimName    = "ssim"
	msSsimName  = "msssim"
)

var metricNames = []string{psnrHvsName, ssimName, msSsimName}

// frameMetric is a VideoMetric that can also turn one raw frame result into
// a reportable score.
type frameMetric[T govmetrics.Pixel] interface {
	govmetrics.VideoMetric[T, govmetrics.PlanarMetrics,
		govmetrics.PlanarMetrics]
	FrameScore(raw govmetrics.PlanarMetrics) govmetrics.PlanarMetrics
}

// recordingMetric forwards to a frameMetric and keeps the score of every
// frame it processes.
type recordingMetric[T govmetrics.Pixel] struct {
	frameMetric[T]
	perFrame []govmetrics.PlanarMetrics
}

func (m *recordingMetric[T]) ProcessFrame(frame1, frame2 *govmetrics.Frame[T],
	bitDepth int, sampling govmetrics.ChromaSampling) (
	govmetrics.PlanarMetrics, error) {
	raw, err := m.frameMetric.ProcessFrame(frame1, frame2, bitDepth, sampling)
	if err != nil {
		return raw, err
	}
	m.perFrame = append(m.perFrame, m.FrameScore(raw))
	return raw, nil
}

func newMetric[T govmetrics.Pixel](name string, chromaWeight float64) (
	frameMetric[T], error) {
	switch name {
	case psnrHvsName:
		return govmetrics.NewPsnrHvs[T](chromaWeight), nil
	case ssimName:
		return govmetrics.NewSsim[T](chromaWeight), nil
	case msSsimName:
		return govmetrics.NewMsSsim[T](chromaWeight), nil
	default:
		return nil, fmt.Errorf("unknown metric %s", name)
	}
}

// runMetric scores ref against dist with the named metric using T as the
// sample type.
func runMetric[T govmetrics.Pixel](name string, ref, dist sources.Source,
	opts govmetrics.VideoOptions) (govmetrics.Report, error) {
	details := ref.GetVideoDetails()
	metric, err := newMetric[T](name, details.ChromaSampling.ChromaWeight())
	if err != nil {
		return govmetrics.Report{}, err
	}

	recorder := &recordingMetric[T]{frameMetric: metric}
	video, err := govmetrics.ProcessVideo[T, govmetrics.PlanarMetrics,
		govmetrics.PlanarMetrics](recorder, sources.AsDecoder[T](ref),
		sources.AsDecoder[T](dist), opts)
	if err != nil {
		return govmetrics.Report{}, err
	}

	return govmetrics.Report{
		Metric:   name,
		Frames:   len(recorder.perFrame),
		Video:    video,
		PerFrame: recorder.perFrame,
	}, nil
}

// computeReport picks the sample type from the reference bit depth.
func computeReport(name string, ref, dist sources.Source,
	opts govmetrics.VideoOptions) (govmetrics.Report, error) {
	if ref.GetVideoDetails().BitDepth > 8 {
		return runMetric[uint16](name, ref, dist, opts)
	}
	return runMetric[uint8](name, ref, dist, opts)
}
