package govmetrics

// Pixel is the storage type of a plane sample. uint8 holds content with a
// bit depth of at most 8, uint16 holds anything deeper.
type Pixel interface {
	~uint8 | ~uint16
}

// Plane is one color channel of a frame: a row-major grid of samples.
//
// Rows start every Stride samples and only the first Width samples of each
// row are image content, so Stride may exceed Width when rows are padded.
// Metrics never modify a plane.
type Plane[T Pixel] struct {
	Data          []T
	Width, Height int
	Stride        int
}

// NewPlane allocates a zeroed, unpadded plane.
func NewPlane[T Pixel](width, height int) Plane[T] {
	return Plane[T]{
		Data:   make([]T, width*height),
		Width:  width,
		Height: height,
		Stride: width,
	}
}

// Row returns the Width samples of row y.
func (p *Plane[T]) Row(y int) []T {
	start := y * p.Stride
	return p.Data[start : start+p.Width]
}

// Fill sets every content sample of the plane to v.
func (p *Plane[T]) Fill(v T) {
	for y := range p.Height {
		row := p.Row(y)
		for x := range row {
			row[x] = v
		}
	}
}

// Frame groups the luma plane and the two chroma planes of one picture.
// All three planes are always present.
type Frame[T Pixel] struct {
	Planes [3]Plane[T]
}

// NewFrame allocates a frame whose luma plane is width x height and whose
// chroma planes follow sampling. Monochrome frames get placeholder chroma
// planes of luma size.
func NewFrame[T Pixel](width, height int, sampling ChromaSampling) *Frame[T] {
	var f Frame[T]
	for i := range f.Planes {
		w, h := sampling.PlaneDimensions(i, width, height)
		f.Planes[i] = NewPlane[T](w, h)
	}
	return &f
}
