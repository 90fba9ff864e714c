package sources

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/GreatValueCreamSoda/govmetrics"
	"github.com/GreatValueCreamSoda/govmetrics/internal/logging"
	"github.com/pkg/errors"
)

const (
	y4mMagic       = "YUV4MPEG2"
	y4mFrameMagic  = "FRAME"
	y4mMaxLineSize = 1 << 12
)

// Y4MReader reads a YUV4MPEG2 stream.
type Y4MReader struct {
	closer  io.Closer
	reader  *bufio.Reader
	details govmetrics.VideoDetails
	mono    bool
	frame   RawFrame
}

// OpenY4M opens the YUV4MPEG2 file at path.
func OpenY4M(path string) (*Y4MReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	r, err := NewY4MReader(f)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return r, nil
}

// NewY4MReader parses the stream header from rc. Closing the reader closes
// rc.
func NewY4MReader(rc io.ReadCloser) (*Y4MReader, error) {
	r := &Y4MReader{closer: rc, reader: bufio.NewReader(rc)}

	line, err := r.readLine()
	if err != nil {
		return nil, errors.Wrap(err, "reading y4m header")
	}
	if err := r.parseHeader(line); err != nil {
		return nil, err
	}

	bytesPerSample := 1
	if r.details.BitDepth > 8 {
		bytesPerSample = 2
	}
	for i := range r.frame.Data {
		w, h := r.details.ChromaSampling.PlaneDimensions(i, r.details.Width,
			r.details.Height)
		r.frame.Width[i], r.frame.Height[i] = w, h
		r.frame.Linesize[i] = w * bytesPerSample
		r.frame.Data[i] = make([]byte, r.frame.Linesize[i]*h)
	}
	if r.mono {
		fillMidGray(r.frame.Data[1], r.details.BitDepth)
		fillMidGray(r.frame.Data[2], r.details.BitDepth)
	}

	logging.Logf(logging.LevelDebug, "y4m stream: %dx%d %s %d-bit",
		r.details.Width, r.details.Height, r.details.ChromaSampling,
		r.details.BitDepth)
	return r, nil
}

// readLine returns the next line without its newline. On error the partial
// line read so far is returned alongside it.
func (r *Y4MReader) readLine() (string, error) {
	line, err := r.reader.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) || len(line) > y4mMaxLineSize {
		return "", errors.New("y4m header line too long")
	}
	return string(bytes.TrimSuffix(line, []byte{'\n'})), err
}

func (r *Y4MReader) parseHeader(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != y4mMagic {
		return errors.New("missing YUV4MPEG2 signature")
	}

	colorspace := "420jpeg"
	r.details.FrameRateNum, r.details.FrameRateDen = 30, 1
	for _, field := range fields[1:] {
		value := field[1:]
		var err error
		switch field[0] {
		case 'W':
			r.details.Width, err = strconv.Atoi(value)
		case 'H':
			r.details.Height, err = strconv.Atoi(value)
		case 'F':
			r.details.FrameRateNum, r.details.FrameRateDen, err =
				parseRatio(value)
		case 'C':
			colorspace = value
		}
		if err != nil {
			return errors.Wrapf(err, "parsing y4m tag %q", field)
		}
	}

	if r.details.Width <= 0 || r.details.Height <= 0 {
		return errors.Errorf("invalid y4m dimensions %dx%d", r.details.Width,
			r.details.Height)
	}

	var err error
	r.details.ChromaSampling, r.details.ChromaSamplePosition,
		r.details.BitDepth, err = parseY4MColorspace(colorspace)
	r.mono = r.details.ChromaSampling == govmetrics.ChromaSampling400
	return err
}

func parseRatio(s string) (int, int, error) {
	num, den, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, errors.Errorf("ratio %q lacks a ':'", s)
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return 0, 0, errors.WithStack(err)
	}
	d, err := strconv.Atoi(den)
	if err != nil {
		return 0, 0, errors.WithStack(err)
	}
	return n, d, nil
}

// parseY4MColorspace understands the C tag values written by ffmpeg and the
// mjpegtools: 420jpeg, 420mpeg2, 420paldv, 420, 422, 444 and mono, where the
// subsampled forms may carry a pN bit depth suffix (420p10) and mono a plain
// one (mono16).
func parseY4MColorspace(tag string) (govmetrics.ChromaSampling,
	govmetrics.ChromaSamplePosition, int, error) {
	position := govmetrics.ChromaSamplePositionUnknown

	switch tag {
	case "420jpeg", "420":
		return govmetrics.ChromaSampling420, position, 8, nil
	case "420mpeg2":
		return govmetrics.ChromaSampling420,
			govmetrics.ChromaSamplePositionVertical, 8, nil
	case "420paldv":
		return govmetrics.ChromaSampling420,
			govmetrics.ChromaSamplePositionColocated, 8, nil
	}

	if rest, ok := strings.CutPrefix(tag, "mono"); ok {
		depth := 8
		if rest != "" {
			var err error
			if depth, err = strconv.Atoi(rest); err != nil {
				return 0, 0, 0, unsupportedColorspace(tag)
			}
		}
		return govmetrics.ChromaSampling400, position, depth,
			checkY4MDepth(tag, depth)
	}

	var sampling govmetrics.ChromaSampling
	switch tag[:min(len(tag), 3)] {
	case "420":
		sampling = govmetrics.ChromaSampling420
	case "422":
		sampling = govmetrics.ChromaSampling422
	case "444":
		sampling = govmetrics.ChromaSampling444
	default:
		return 0, 0, 0, unsupportedColorspace(tag)
	}

	rest := tag[3:]
	if rest == "" {
		return sampling, position, 8, nil
	}
	digits, ok := strings.CutPrefix(rest, "p")
	if !ok {
		return 0, 0, 0, unsupportedColorspace(tag)
	}
	depth, err := strconv.Atoi(digits)
	if err != nil {
		return 0, 0, 0, unsupportedColorspace(tag)
	}
	return sampling, position, depth, checkY4MDepth(tag, depth)
}

func checkY4MDepth(tag string, depth int) error {
	if depth < 1 || depth > 16 {
		return unsupportedColorspace(tag)
	}
	return nil
}

func unsupportedColorspace(tag string) error {
	return errors.WithStack(&govmetrics.MetricsError{
		Code:   govmetrics.ErrorCodeUnsupportedInput,
		Reason: "Unsupported y4m colorspace " + strconv.Quote(tag),
	})
}

// fillMidGray sets every sample of a placeholder chroma plane to the neutral
// chroma value.
func fillMidGray(data []byte, bitDepth int) {
	if bitDepth <= 8 {
		for i := range data {
			data[i] = byte(1 << (bitDepth - 1))
		}
		return
	}
	mid := uint16(1) << (bitDepth - 1)
	for i := 0; i+1 < len(data); i += 2 {
		data[i], data[i+1] = byte(mid), byte(mid>>8)
	}
}

func (r *Y4MReader) GetVideoDetails() govmetrics.VideoDetails {
	return r.details
}

// ReadRawFrame reads the next FRAME. A stream that ends inside a frame is
// reported as io.ErrUnexpectedEOF.
func (r *Y4MReader) ReadRawFrame() (*RawFrame, error) {
	line, err := r.readLine()
	if errors.Is(err, io.EOF) {
		if line == "" {
			return nil, io.EOF
		}
		err = io.ErrUnexpectedEOF
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading y4m frame header")
	}
	if !strings.HasPrefix(line, y4mFrameMagic) {
		return nil, errors.Errorf("expected FRAME, found %q", line)
	}

	planes := 3
	if r.mono {
		planes = 1
	}
	for i := range planes {
		if _, err := io.ReadFull(r.reader, r.frame.Data[i]); err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, errors.Wrapf(err, "reading plane %d", i)
		}
	}
	return &r.frame, nil
}

func (r *Y4MReader) Close() error {
	return r.closer.Close()
}
