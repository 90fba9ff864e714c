package govmetrics

// ChromaSampling describes how the two chroma planes of a frame are
// subsampled relative to the luma plane.
type ChromaSampling int

const (
	// ChromaSampling420 halves chroma resolution horizontally and vertically.
	ChromaSampling420 ChromaSampling = iota
	// ChromaSampling422 halves chroma resolution horizontally only.
	ChromaSampling422
	// ChromaSampling444 stores chroma at full resolution.
	ChromaSampling444
	// ChromaSampling400 is monochrome content. Frames still carry two
	// placeholder chroma planes.
	ChromaSampling400
)

func (c ChromaSampling) String() string {
	switch c {
	case ChromaSampling420:
		return "4:2:0"
	case ChromaSampling422:
		return "4:2:2"
	case ChromaSampling444:
		return "4:4:4"
	case ChromaSampling400:
		return "4:0:0"
	default:
		return "unknown"
	}
}

// ChromaWeight returns how much a chroma plane counts relative to the luma
// plane when the three planes are averaged. Luma always has a weight of 1.
func (c ChromaSampling) ChromaWeight() float64 {
	switch c {
	case ChromaSampling420:
		return 0.25
	case ChromaSampling422:
		return 0.5
	case ChromaSampling400:
		return 0
	default:
		return 1
	}
}

// Log2Subsampling returns the horizontal and vertical log2 subsampling
// factors of the chroma planes.
func (c ChromaSampling) Log2Subsampling() (x, y int) {
	switch c {
	case ChromaSampling420:
		return 1, 1
	case ChromaSampling422:
		return 1, 0
	default:
		return 0, 0
	}
}

// PlaneDimensions returns the size of plane (0 = luma, 1 and 2 = chroma) for
// a frame whose luma plane is width x height. Odd luma sizes round the
// chroma size up.
func (c ChromaSampling) PlaneDimensions(plane, width, height int) (int, int) {
	if plane == 0 {
		return width, height
	}
	xdec, ydec := c.Log2Subsampling()
	return (width + (1 << xdec) - 1) >> xdec, (height + (1 << ydec) - 1) >> ydec
}

// ChromaSamplingFromLog2 maps log2 subsampling factors, as reported by pixel
// format descriptors, onto a ChromaSampling. Layouts without a matching
// constant are rejected with ErrUnsupportedInput.
func ChromaSamplingFromLog2(log2W, log2H int, monochrome bool) (
	ChromaSampling, error) {
	if monochrome {
		return ChromaSampling400, nil
	}
	switch {
	case log2W == 1 && log2H == 1:
		return ChromaSampling420, nil
	case log2W == 1 && log2H == 0:
		return ChromaSampling422, nil
	case log2W == 0 && log2H == 0:
		return ChromaSampling444, nil
	}
	return 0, newError(ErrorCodeUnsupportedInput,
		"Unsupported chroma subsampling")
}

// ChromaSamplePosition specifies where chroma samples sit relative to luma
// samples. It is informational only; no metric in this package resamples
// chroma.
type ChromaSamplePosition int

const (
	ChromaSamplePositionUnknown ChromaSamplePosition = iota
	ChromaSamplePositionVertical
	ChromaSamplePositionColocated
)

// VideoDetails contains the static properties a Decoder reports for its
// stream.
//
// ProcessVideo uses BitDepth and ChromaSampling to check that two decoders
// are comparable and ChromaSampling to weigh the chroma planes in the
// averaged score. NumFrames is zero when the source cannot tell the frame
// count up front.
type VideoDetails struct {
	Width, Height        int
	BitDepth             int
	ChromaSampling       ChromaSampling
	ChromaSamplePosition ChromaSamplePosition
	FrameRateNum         int
	FrameRateDen         int
	NumFrames            int
}

// SetDefaults fills the VideoDetails with reasonable defaults for a given
// resolution and bit depth: 4:2:0 chroma, unknown chroma position, 30 fps and
// an unknown frame count.
func (d *VideoDetails) SetDefaults(width, height, bitDepth int) {
	d.Width = width
	d.Height = height
	d.BitDepth = bitDepth
	d.ChromaSampling = ChromaSampling420
	d.ChromaSamplePosition = ChromaSamplePositionUnknown
	d.FrameRateNum = 30
	d.FrameRateDen = 1
	d.NumFrames = 0
}

// FrameRate returns the frame rate as a float, or 0 when it is unknown.
func (d *VideoDetails) FrameRate() float64 {
	if d.FrameRateDen == 0 {
		return 0
	}
	return float64(d.FrameRateNum) / float64(d.FrameRateDen)
}
