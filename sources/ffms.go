package sources

import (
	"io"
	"runtime"

	ffms "github.com/GreatValueCreamSoda/goffms2"
	"github.com/GreatValueCreamSoda/gopixfmts"
	"github.com/GreatValueCreamSoda/govmetrics"
	"github.com/GreatValueCreamSoda/govmetrics/internal/logging"
	"github.com/pkg/errors"
)

// ffmsSource decodes any container ffms2 can index.
type ffmsSource struct {
	currentIndex int
	video        *ffms.VideoSource
	details      govmetrics.VideoDetails
	frame        RawFrame
	// monoChroma holds the placeholder chroma planes of gray formats.
	monoChroma []byte
}

// NewFFms2Reader indexes the file at path and opens its first video track.
// Frames are delivered in their encoded pixel format and resolution.
func NewFFms2Reader(path string) (Source, error) {
	var err error

	logging.Logf(logging.LevelDebug, "Indexing %s", path)

	var indexer *ffms.Indexer
	if indexer, _, err = ffms.CreateIndexer(path); err != nil {
		return nil, errors.Wrapf(err, "creating indexer for %s", path)
	}

	var index *ffms.Index
	if index, _, err = indexer.DoIndexing(ffms.IEHAbort); err != nil {
		return nil, errors.Wrapf(err, "indexing %s", path)
	}

	track, _, err := index.GetFirstTrackOfType(ffms.TypeVideo)
	if err != nil {
		return nil, errors.Wrapf(err, "finding a video track in %s", path)
	}

	var decThreads int = runtime.NumCPU() / 2
	video, _, err := ffms.CreateVideoSource(path, index, track, decThreads,
		ffms.SeekNormal)
	if err != nil {
		return nil, errors.Wrapf(err, "opening video source %s", path)
	}

	props, err := video.GetVideoProperties()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	ff, _, err := video.GetFrame(0)
	if err != nil {
		return nil, errors.Wrap(err, "decoding the first frame")
	}

	video.SetOutputFormatV2([]int{ff.EncodedPixelFormat}, ff.EncodedWidth,
		ff.EncodedHeight, ffms.ResizerBicubic)

	ff, _, err = video.GetFrame(0)
	if err != nil {
		return nil, errors.Wrap(err, "decoding the first frame")
	}

	details, err := videoDetailsFromFfmsFrame(&ff)
	if err != nil {
		return nil, err
	}
	details.NumFrames = props.NumFrames

	return &ffmsSource{video: video, details: details}, nil
}

// videoDetailsFromFfmsFrame derives the stream properties from the pixel
// format of a decoded frame.
func videoDetailsFromFfmsFrame(frame *ffms.Frame) (govmetrics.VideoDetails,
	error) {
	var details govmetrics.VideoDetails
	details.SetDefaults(int(frame.ScaledWidth), int(frame.ScaledHeight), 8)
	details.FrameRateNum, details.FrameRateDen = 0, 0

	pixFmt, err := gopixfmts.PixFmtDescGet(gopixfmts.PixelFormat(
		frame.ConvertedPixelFormat))
	if err != nil {
		return details, errors.Wrapf(err, "pixel format %d",
			frame.ConvertedPixelFormat)
	}

	logging.Logf(logging.LevelDebug, "Pixel format: %s", pixFmt.Name())

	if pixFmt.Flags()&uint64(gopixfmts.PixFmtFlagRGB) != 0 {
		return details, errors.WithStack(&govmetrics.MetricsError{
			Code:   govmetrics.ErrorCodeUnsupportedInput,
			Reason: "RGB pixel format " + pixFmt.Name() + " is not supported",
		})
	}

	comp, err := pixFmt.Component(0)
	if err != nil {
		return details, errors.WithStack(err)
	}
	details.BitDepth = int(comp.Depth)
	if details.BitDepth < 1 || details.BitDepth > 16 {
		return details, errors.WithStack(&govmetrics.MetricsError{
			Code:   govmetrics.ErrorCodeUnsupportedInput,
			Reason: "Unsupported bit depth in pixel format " + pixFmt.Name(),
		})
	}

	monochrome := len(frame.Data[1]) == 0
	details.ChromaSampling, err = govmetrics.ChromaSamplingFromLog2(
		int(pixFmt.Log2ChromaW()), int(pixFmt.Log2ChromaH()), monochrome)
	if err != nil {
		return details, err
	}

	switch frame.ChromaLocation {
	case 1: // Left
		details.ChromaSamplePosition = govmetrics.ChromaSamplePositionVertical
	case 3: // Top left
		details.ChromaSamplePosition = govmetrics.ChromaSamplePositionColocated
	}
	return details, nil
}

func (s *ffmsSource) GetVideoDetails() govmetrics.VideoDetails {
	return s.details
}

func (s *ffmsSource) ReadRawFrame() (*RawFrame, error) {
	if s.currentIndex >= s.details.NumFrames {
		return nil, io.EOF
	}

	ffmsFrame, _, err := s.video.GetFrame(s.currentIndex)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding frame %d", s.currentIndex)
	}

	for i := range 3 {
		w, h := s.details.ChromaSampling.PlaneDimensions(i, s.details.Width,
			s.details.Height)
		s.frame.Width[i], s.frame.Height[i] = w, h
		s.frame.Data[i] = ffmsFrame.Data[i]
		s.frame.Linesize[i] = ffmsFrame.Linesize[i]
	}
	if s.details.ChromaSampling == govmetrics.ChromaSampling400 {
		s.fillMonoChroma()
	}

	s.currentIndex++
	return &s.frame, nil
}

// fillMonoChroma points the absent chroma planes of a monochrome frame at a
// shared neutral plane of luma size.
func (s *ffmsSource) fillMonoChroma() {
	bytesPerSample := 1
	if s.details.BitDepth > 8 {
		bytesPerSample = 2
	}
	linesize := s.frame.Width[0] * bytesPerSample
	if s.monoChroma == nil {
		s.monoChroma = make([]byte, linesize*s.frame.Height[0])
		fillMidGray(s.monoChroma, s.details.BitDepth)
	}
	for i := 1; i < 3; i++ {
		s.frame.Data[i] = s.monoChroma
		s.frame.Linesize[i] = linesize
	}
}

// Close is a no-op.
func (s *ffmsSource) Close() error { return nil }
