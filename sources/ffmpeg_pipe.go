package sources

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"

	"github.com/GreatValueCreamSoda/govmetrics"
	"github.com/pkg/errors"
)

// FFmpegPipeReader decodes a file by running ffmpeg and reading raw planar
// YUV from its standard output.
type FFmpegPipeReader struct {
	cmd     *exec.Cmd
	reader  *bufio.Reader
	details govmetrics.VideoDetails
	planes  int
	frame   RawFrame
	exited  bool
	exitErr error
}

// NewFFmpegPipeReader starts ffmpeg on path, scaled to width x height and
// converted to the given bit depth and chroma layout. ffmpeg must be in
// PATH.
func NewFFmpegPipeReader(path string, width, height, bitDepth int,
	sampling govmetrics.ChromaSampling) (*FFmpegPipeReader, error) {
	pixFmt, err := ffmpegPixelFormat(bitDepth, sampling)
	if err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid output size %dx%d", width, height)
	}

	args := []string{"-loglevel", "panic", "-i", path, "-f", "rawvideo",
		"-pix_fmt", pixFmt, "-s", fmt.Sprintf("%dx%d", width, height), "-"}
	return startPipeReader(exec.Command("ffmpeg", args...), width, height,
		bitDepth, sampling)
}

// startPipeReader runs cmd and reads raw planar frames of the given layout
// from its standard output.
func startPipeReader(cmd *exec.Cmd, width, height, bitDepth int,
	sampling govmetrics.ChromaSampling) (*FFmpegPipeReader, error) {
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := cmd.Start(); err != nil {
		return nil, errors.Wrap(err, "starting ffmpeg")
	}

	r := &FFmpegPipeReader{
		cmd:    cmd,
		reader: bufio.NewReader(stdout),
		planes: 3,
	}
	r.details.SetDefaults(width, height, bitDepth)
	r.details.ChromaSampling = sampling
	r.details.FrameRateNum, r.details.FrameRateDen = 0, 0

	bytesPerSample := 1
	if bitDepth > 8 {
		bytesPerSample = 2
	}
	for i := range r.frame.Data {
		w, h := sampling.PlaneDimensions(i, width, height)
		r.frame.Width[i], r.frame.Height[i] = w, h
		r.frame.Linesize[i] = w * bytesPerSample
		r.frame.Data[i] = make([]byte, r.frame.Linesize[i]*h)
	}
	if sampling == govmetrics.ChromaSampling400 {
		r.planes = 1
		fillMidGray(r.frame.Data[1], bitDepth)
		fillMidGray(r.frame.Data[2], bitDepth)
	}
	return r, nil
}

// ffmpegPixelFormat returns the ffmpeg -pix_fmt name of a planar layout.
func ffmpegPixelFormat(bitDepth int, sampling govmetrics.ChromaSampling) (
	string, error) {
	var base string
	switch sampling {
	case govmetrics.ChromaSampling420:
		base = "yuv420p"
	case govmetrics.ChromaSampling422:
		base = "yuv422p"
	case govmetrics.ChromaSampling444:
		base = "yuv444p"
	case govmetrics.ChromaSampling400:
		base = "gray"
	default:
		return "", errors.Errorf("unknown chroma sampling %d", sampling)
	}

	switch bitDepth {
	case 8:
		return base, nil
	case 9, 10, 12, 14, 16:
		return fmt.Sprintf("%s%dle", base, bitDepth), nil
	default:
		return "", errors.WithStack(&govmetrics.MetricsError{
			Code:   govmetrics.ErrorCodeUnsupportedInput,
			Reason: fmt.Sprintf("ffmpeg has no %d-bit %s format", bitDepth, base),
		})
	}
}

func (r *FFmpegPipeReader) GetVideoDetails() govmetrics.VideoDetails {
	return r.details
}

// ReadRawFrame reads one frame. A truncated final frame ends the stream
// when ffmpeg exits cleanly; a non-zero exit status is returned as an error.
func (r *FFmpegPipeReader) ReadRawFrame() (*RawFrame, error) {
	for i := range r.planes {
		_, err := io.ReadFull(r.reader, r.frame.Data[i])
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, r.wait()
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading from ffmpeg")
		}
	}
	return &r.frame, nil
}

// wait reaps ffmpeg once its output is exhausted and returns io.EOF, or the
// exit error when it failed.
func (r *FFmpegPipeReader) wait() error {
	if !r.exited {
		r.exited = true
		r.exitErr = r.cmd.Wait()
	}
	if r.exitErr != nil {
		return errors.Wrap(r.exitErr, "ffmpeg failed")
	}
	return io.EOF
}

// Close stops ffmpeg and waits for it to exit. Comparisons often stop
// before the end of the stream, so the exit status is not reported.
func (r *FFmpegPipeReader) Close() error {
	if r.exited {
		return nil
	}
	r.exited = true
	_ = r.cmd.Process.Kill()
	_ = r.cmd.Wait()
	return nil
}
