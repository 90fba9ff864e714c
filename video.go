package govmetrics

import (
	"io"

	"github.com/GreatValueCreamSoda/govmetrics/internal/logging"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// PlanarMetrics holds one score per plane and their chroma weighted
// combination.
type PlanarMetrics struct {
	Y   float64 `json:"y"`
	U   float64 `json:"u"`
	V   float64 `json:"v"`
	Avg float64 `json:"avg"`
}

func sumPlanar(results []PlanarMetrics) PlanarMetrics {
	var sum PlanarMetrics
	for _, r := range results {
		sum.Y += r.Y
		sum.U += r.U
		sum.V += r.V
		sum.Avg += r.Avg
	}
	return sum
}

// Decoder is a pull based source of decoded frames.
//
// ReadVideoFrame returns io.EOF, possibly wrapped, once the stream is
// exhausted. Any other error is treated as a decode failure.
type Decoder[T Pixel] interface {
	GetVideoDetails() VideoDetails
	ReadVideoFrame() (*Frame[T], error)
}

// VideoMetric is the contract every metric implements to be driven by
// ProcessVideo.
//
// ProcessFrame scores one frame pair and must not keep references to the
// frames. AggregateFrameResults folds the per-frame results, in reading
// order, into the video score.
type VideoMetric[T Pixel, F, V any] interface {
	ProcessFrame(frame1, frame2 *Frame[T], bitDepth int,
		sampling ChromaSampling) (F, error)
	AggregateFrameResults(results []F) (V, error)
}

// VideoOptions controls ProcessVideo.
type VideoOptions struct {
	// FrameLimit stops the comparison after this many frames. Zero or less
	// compares until either stream ends.
	FrameLimit int
	// Progress, when set, is called after every processed frame with the
	// number of frames processed so far.
	Progress func(frames int)
}

// ProcessVideo reads frame pairs from both decoders in lock step, scores
// each pair with metric and returns the aggregated score.
//
// Reading stops when either decoder reports the end of its stream or after
// opts.FrameLimit frames. Frames are processed one at a time, so at most one
// frame pair is held in memory. Any error aborts the comparison; no partial
// score is returned.
func ProcessVideo[T Pixel, F, V any](metric VideoMetric[T, F, V],
	decoder1, decoder2 Decoder[T], opts VideoOptions) (V, error) {
	var zero V

	details := decoder1.GetVideoDetails()
	if err := validateDecoderPair(details,
		decoder2.GetVideoDetails()); err != nil {
		return zero, err
	}

	var results []F
	if details.NumFrames > 0 {
		capacity := details.NumFrames
		if opts.FrameLimit > 0 {
			capacity = min(capacity, opts.FrameLimit)
		}
		results = make([]F, 0, capacity)
	}

	for opts.FrameLimit <= 0 || len(results) < opts.FrameLimit {
		frame1, err := readFrame(decoder1, 1)
		if err != nil {
			return zero, err
		}
		frame2, err := readFrame(decoder2, 2)
		if err != nil {
			return zero, err
		}
		if frame1 == nil || frame2 == nil {
			break
		}

		result, err := metric.ProcessFrame(frame1, frame2, details.BitDepth,
			details.ChromaSampling)
		if err != nil {
			return zero, errors.Wrapf(err, "frame %d", len(results))
		}
		results = append(results, result)

		logging.Logf(logging.LevelDebug, "processed frame %d", len(results))
		if opts.Progress != nil {
			opts.Progress(len(results))
		}
	}

	if len(results) == 0 {
		return zero, newError(ErrorCodeUnsupportedInput,
			"No readable frames found in one or more input files")
	}

	logging.Logf(logging.LevelDebug, "aggregating %d frames", len(results))
	return metric.AggregateFrameResults(results)
}

// readFrame returns the next frame of d, or nil at the end of its stream.
func readFrame[T Pixel](d Decoder[T], which int) (*Frame[T], error) {
	frame, err := d.ReadVideoFrame()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapError(ErrorCodeVideoError, err,
			"decoding video %d", which)
	}
	if frame == nil {
		return nil, newError(ErrorCodeVideoError,
			"decoder returned neither a frame nor an error")
	}
	return frame, nil
}

// computePlanes runs fn over the three plane pairs of a frame concurrently
// and joins the scores. Each task writes only its own slot. The first error
// is returned and the other scores are discarded.
func computePlanes[T Pixel](frame1, frame2 *Frame[T], fn func(plane int,
	p1, p2 *Plane[T]) (float64, error)) (PlanarMetrics, error) {
	var scores [3]float64
	var g errgroup.Group

	for i := range frame1.Planes {
		g.Go(func() error {
			score, err := fn(i, &frame1.Planes[i], &frame2.Planes[i])
			if err != nil {
				return errors.Wrapf(err, "plane %d", i)
			}
			scores[i] = score
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return PlanarMetrics{}, err
	}
	return PlanarMetrics{Y: scores[0], U: scores[1], V: scores[2]}, nil
}
