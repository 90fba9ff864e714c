// Package sources provides the frame readers that feed the metrics: a
// YUV4MPEG2 parser, an ffms2 backed container decoder, an ffmpeg pipe and a
// still image loader.
package sources

import (
	"path/filepath"
	"strings"

	"github.com/GreatValueCreamSoda/govmetrics"
	"github.com/GreatValueCreamSoda/govmetrics/internal/logging"
	"github.com/pkg/errors"
)

// RawFrame is one decoded picture as bytes. Samples of content deeper than 8
// bits take two little endian bytes.
type RawFrame struct {
	Data     [3][]byte
	Linesize [3]int // In bytes.
	Width    [3]int // In samples.
	Height   [3]int
}

// Source is a decoder that hands out frames as bytes.
//
// ReadRawFrame returns io.EOF once the stream is exhausted. The returned
// frame is only valid until the next call.
type Source interface {
	GetVideoDetails() govmetrics.VideoDetails
	ReadRawFrame() (*RawFrame, error)
	Close() error
}

// AsDecoder adapts s to govmetrics.Decoder with T as the sample type. T must
// match the bit depth of s: uint8 up to 8 bits, uint16 beyond.
func AsDecoder[T govmetrics.Pixel](s Source) govmetrics.Decoder[T] {
	return &decoder[T]{src: s}
}

type decoder[T govmetrics.Pixel] struct {
	src   Source
	frame *govmetrics.Frame[T]
}

func (d *decoder[T]) GetVideoDetails() govmetrics.VideoDetails {
	return d.src.GetVideoDetails()
}

func (d *decoder[T]) ReadVideoFrame() (*govmetrics.Frame[T], error) {
	raw, err := d.src.ReadRawFrame()
	if err != nil {
		return nil, err
	}

	bitDepth := d.src.GetVideoDetails().BitDepth
	if (bitDepth > 8) != (govmetrics.SampleBytes[T]() == 2) {
		return nil, errors.WithStack(&govmetrics.MetricsError{
			Code:   govmetrics.ErrorCodeInputMismatch,
			Reason: "Bit depths does not match pixel width",
		})
	}

	if d.frame == nil {
		d.frame = new(govmetrics.Frame[T])
	}
	for i := range raw.Data {
		if err := copyPlane(&d.frame.Planes[i], raw, i, bitDepth); err != nil {
			return nil, errors.Wrapf(err, "plane %d", i)
		}
	}
	return d.frame, nil
}

// copyPlane converts plane i of raw into p, reallocating p when the
// geometry changed.
func copyPlane[T govmetrics.Pixel](p *govmetrics.Plane[T], raw *RawFrame,
	i, bitDepth int) error {
	width, height := raw.Width[i], raw.Height[i]
	bytesPerSample := 1
	if bitDepth > 8 {
		bytesPerSample = 2
	}

	rowBytes := width * bytesPerSample
	if raw.Linesize[i] < rowBytes {
		return errors.Errorf("line size %d is smaller than %d bytes per row",
			raw.Linesize[i], rowBytes)
	}
	if height > 0 && len(raw.Data[i]) < (height-1)*raw.Linesize[i]+rowBytes {
		return errors.Errorf("plane holds %d bytes, %dx%d needs more",
			len(raw.Data[i]), width, height)
	}

	if p.Width != width || p.Height != height || p.Data == nil {
		*p = govmetrics.NewPlane[T](width, height)
	}

	for y := range height {
		src := raw.Data[i][y*raw.Linesize[i]:]
		dst := p.Row(y)
		if bytesPerSample == 1 {
			for x := range dst {
				dst[x] = T(src[x])
			}
			continue
		}
		for x := range dst {
			dst[x] = T(uint16(src[2*x]) | uint16(src[2*x+1])<<8)
		}
	}
	return nil
}

// Backend selects how Open decodes a file.
type Backend string

const (
	BackendAuto   Backend = "auto"
	BackendY4M    Backend = "y4m"
	BackendFFms2  Backend = "ffms2"
	BackendFFmpeg Backend = "ffmpeg"
	BackendImage  Backend = "image"
)

// OpenOptions configures Open.
type OpenOptions struct {
	Backend Backend
	// Width, Height and BitDepth describe the output of the ffmpeg backend,
	// which cannot probe its input.
	Width, Height, BitDepth int
	// ChromaSampling is the chroma layout requested from ffmpeg.
	ChromaSampling govmetrics.ChromaSampling
}

var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true,
	".tif": true, ".tiff": true, ".webp": true,
}

// Open opens path with the requested backend. BackendAuto, or an empty
// backend, picks the y4m parser for .y4m files, the image loader for common
// still image extensions and ffms2 for everything else.
func Open(path string, opts OpenOptions) (Source, error) {
	backend := opts.Backend
	if backend == "" || backend == BackendAuto {
		backend = detectBackend(path)
	}
	logging.Logf(logging.LevelDebug, "Opening %s with the %s backend", path,
		backend)

	// Typed nil readers must not leak out as non-nil Sources.
	var src Source
	var err error
	switch backend {
	case BackendY4M:
		var r *Y4MReader
		if r, err = OpenY4M(path); err == nil {
			src = r
		}
	case BackendFFms2:
		src, err = NewFFms2Reader(path)
	case BackendFFmpeg:
		var r *FFmpegPipeReader
		if r, err = NewFFmpegPipeReader(path, opts.Width, opts.Height,
			opts.BitDepth, opts.ChromaSampling); err == nil {
			src = r
		}
	case BackendImage:
		var r *ImageReader
		if r, err = NewImageReader(path); err == nil {
			src = r
		}
	default:
		err = errors.Errorf("unknown backend %q", backend)
	}
	if err != nil {
		return nil, err
	}
	return src, nil
}

func detectBackend(path string) Backend {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".y4m":
		return BackendY4M
	case imageExtensions[ext]:
		return BackendImage
	default:
		return BackendFFms2
	}
}
