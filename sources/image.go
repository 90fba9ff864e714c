package sources

import (
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/GreatValueCreamSoda/govmetrics"
	"github.com/GreatValueCreamSoda/govmetrics/internal/logging"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageReader is a one frame source backed by a still image.
type ImageReader struct {
	details govmetrics.VideoDetails
	frame   RawFrame
	done    bool
}

// NewImageReader decodes the image at path. PNG, JPEG, GIF, BMP, TIFF and
// WebP are understood.
func NewImageReader(path string) (*ImageReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	r, err := NewImageReaderFrom(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	return r, nil
}

// NewImageReaderFrom decodes an image from rd.
func NewImageReaderFrom(rd io.Reader) (*ImageReader, error) {
	img, format, err := image.Decode(rd)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	logging.Logf(logging.LevelDebug, "Decoded %s image %v", format,
		img.Bounds())
	return imageReaderFor(img)
}

func imageReaderFor(img image.Image) (*ImageReader, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, errors.New("empty image")
	}

	r := &ImageReader{}
	r.details.SetDefaults(b.Dx(), b.Dy(), 8)
	r.details.NumFrames = 1

	switch m := img.(type) {
	case *image.YCbCr:
		sampling, ok := samplingOfRatio(m.SubsampleRatio)
		if !ok {
			break
		}
		r.details.ChromaSampling = sampling
		r.setPlane(0, m.Y[m.YOffset(b.Min.X, b.Min.Y):], m.YStride)
		r.setPlane(1, m.Cb[m.COffset(b.Min.X, b.Min.Y):], m.CStride)
		r.setPlane(2, m.Cr[m.COffset(b.Min.X, b.Min.Y):], m.CStride)
		return r, nil
	case *image.Gray:
		r.details.ChromaSampling = govmetrics.ChromaSampling400
		r.setPlane(0, m.Pix[m.PixOffset(b.Min.X, b.Min.Y):], m.Stride)
		chroma := make([]byte, b.Dx()*b.Dy())
		fillMidGray(chroma, 8)
		r.setPlane(1, chroma, b.Dx())
		r.setPlane(2, chroma, b.Dx())
		return r, nil
	}

	// Anything else goes through RGB into full resolution YCbCr.
	r.details.ChromaSampling = govmetrics.ChromaSampling444
	w, h := b.Dx(), b.Dy()
	var planes [3][]byte
	for i := range planes {
		planes[i] = make([]byte, w*h)
	}
	for y := range h {
		for x := range w {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			yy, cb, cr := color.RGBToYCbCr(c.R, c.G, c.B)
			planes[0][y*w+x] = yy
			planes[1][y*w+x] = cb
			planes[2][y*w+x] = cr
		}
	}
	for i := range planes {
		r.setPlane(i, planes[i], w)
	}
	return r, nil
}

func samplingOfRatio(ratio image.YCbCrSubsampleRatio) (
	govmetrics.ChromaSampling, bool) {
	switch ratio {
	case image.YCbCrSubsampleRatio420:
		return govmetrics.ChromaSampling420, true
	case image.YCbCrSubsampleRatio422:
		return govmetrics.ChromaSampling422, true
	case image.YCbCrSubsampleRatio444:
		return govmetrics.ChromaSampling444, true
	}
	return 0, false
}

func (r *ImageReader) setPlane(i int, data []byte, stride int) {
	w, h := r.details.ChromaSampling.PlaneDimensions(i, r.details.Width,
		r.details.Height)
	r.frame.Data[i] = data
	r.frame.Linesize[i] = stride
	r.frame.Width[i], r.frame.Height[i] = w, h
}

func (r *ImageReader) GetVideoDetails() govmetrics.VideoDetails {
	return r.details
}

// ReadRawFrame returns the image once, then io.EOF.
func (r *ImageReader) ReadRawFrame() (*RawFrame, error) {
	if r.done {
		return nil, io.EOF
	}
	r.done = true
	return &r.frame, nil
}

func (r *ImageReader) Close() error { return nil }
