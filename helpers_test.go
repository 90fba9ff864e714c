package govmetrics_test

import (
	"io"
	"math/rand/v2"

	"github.com/GreatValueCreamSoda/govmetrics"
)

// texturedFrame returns a frame filled with reproducible noise below
// maxValue.
func texturedFrame[T govmetrics.Pixel](width, height int,
	sampling govmetrics.ChromaSampling, seed uint64,
	maxValue int) *govmetrics.Frame[T] {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	f := govmetrics.NewFrame[T](width, height, sampling)
	for i := range f.Planes {
		p := &f.Planes[i]
		for j := range p.Data {
			p.Data[j] = T(rng.IntN(maxValue + 1))
		}
	}
	return f
}

// offsetFrame returns a copy of f with offset added to every sample,
// clamped to maxValue.
func offsetFrame[T govmetrics.Pixel](f *govmetrics.Frame[T], offset,
	maxValue int) *govmetrics.Frame[T] {
	out := &govmetrics.Frame[T]{}
	for i := range f.Planes {
		src := f.Planes[i]
		dst := govmetrics.NewPlane[T](src.Width, src.Height)
		for y := range src.Height {
			row := dst.Row(y)
			for x, v := range src.Row(y) {
				row[x] = T(min(int(v)+offset, maxValue))
			}
		}
		out.Planes[i] = dst
	}
	return out
}

// sliceDecoder serves a fixed list of frames. When failAt is a valid index,
// reading that frame returns err instead.
type sliceDecoder[T govmetrics.Pixel] struct {
	details govmetrics.VideoDetails
	frames  []*govmetrics.Frame[T]
	pos     int
	failAt  int
	err     error
}

func newSliceDecoder[T govmetrics.Pixel](bitDepth int,
	sampling govmetrics.ChromaSampling,
	frames ...*govmetrics.Frame[T]) *sliceDecoder[T] {
	d := &sliceDecoder[T]{frames: frames, failAt: -1}
	if len(frames) > 0 {
		d.details.SetDefaults(frames[0].Planes[0].Width,
			frames[0].Planes[0].Height, bitDepth)
	}
	d.details.BitDepth = bitDepth
	d.details.ChromaSampling = sampling
	d.details.NumFrames = len(frames)
	return d
}

func (d *sliceDecoder[T]) GetVideoDetails() govmetrics.VideoDetails {
	return d.details
}

func (d *sliceDecoder[T]) ReadVideoFrame() (*govmetrics.Frame[T], error) {
	if d.pos == d.failAt {
		return nil, d.err
	}
	if d.pos >= len(d.frames) {
		return nil, io.EOF
	}
	f := d.frames[d.pos]
	d.pos++
	return f, nil
}
