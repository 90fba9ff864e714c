package govmetrics

import "math"

// CalculateVideoMsSsim computes the MS-SSIM score between two videos in dB.
//
// MS-SSIM evaluates SSIM over a pyramid of five progressively halved
// resolutions, which tracks perceived quality more closely than single
// scale SSIM.
func CalculateVideoMsSsim[T Pixel](decoder1, decoder2 Decoder[T],
	opts VideoOptions) (PlanarMetrics, error) {
	metric := NewMsSsim[T](
		decoder1.GetVideoDetails().ChromaSampling.ChromaWeight())
	return ProcessVideo[T, PlanarMetrics, PlanarMetrics](metric, decoder1,
		decoder2, opts)
}

// CalculateFrameMsSsim computes the MS-SSIM score between two frames. Like
// CalculateFrameSsim the result is linear; see ConvertSsimToDecibels.
func CalculateFrameMsSsim[T Pixel](frame1, frame2 *Frame[T], bitDepth int,
	sampling ChromaSampling) (PlanarMetrics, error) {
	metric := NewMsSsim[T](sampling.ChromaWeight())
	raw, err := metric.ProcessFrame(frame1, frame2, bitDepth, sampling)
	if err != nil {
		return PlanarMetrics{}, err
	}
	return metric.FrameScore(raw), nil
}

const (
	msSsimKernelShift  = 10
	msSsimKernelWeight = 1 << msSsimKernelShift
	msSsimScales       = 5
)

// Exponents from the MS-SSIM paper (Wang, Simoncelli, Bovik 2003). They do
// not add up to 1 because of rounding in the paper and are used as is.
var msSsimWeights = [msSsimScales]float64{0.0448, 0.2856, 0.3001, 0.2363,
	0.1333}

// MsSsim is the MS-SSIM VideoMetric. The zero value weighs chroma planes the
// same as luma.
type MsSsim[T Pixel] struct {
	chromaWeight float64
	weighted     bool
}

// NewMsSsim returns an MsSsim that weighs each chroma plane by chromaWeight
// relative to luma.
func NewMsSsim[T Pixel](chromaWeight float64) *MsSsim[T] {
	return &MsSsim[T]{chromaWeight: chromaWeight, weighted: true}
}

func (m *MsSsim[T]) weight() float64 {
	if !m.weighted {
		return 1
	}
	return m.chromaWeight
}

// ProcessFrame returns the unweighted MS-SSIM of each plane. Avg is left at
// zero.
func (m *MsSsim[T]) ProcessFrame(frame1, frame2 *Frame[T], bitDepth int,
	_ ChromaSampling) (PlanarMetrics, error) {
	if err := ValidateFramePair(frame1, frame2, bitDepth); err != nil {
		return PlanarMetrics{}, err
	}

	score := func(_ int, p1, p2 *Plane[T]) (float64, error) {
		return calculatePlaneMsSsim(p1, p2, bitDepth), nil
	}
	return computePlanes(frame1, frame2, score)
}

// FrameScore returns the per-plane similarities with Avg set to their
// chroma weighted mean.
func (m *MsSsim[T]) FrameScore(raw PlanarMetrics) PlanarMetrics {
	return ssimFrameScore(raw, m.weight())
}

// AggregateFrameResults sums the per-frame similarities and converts them to
// dB.
func (m *MsSsim[T]) AggregateFrameResults(results []PlanarMetrics) (
	PlanarMetrics, error) {
	return ssimAggregate(results, m.weight())
}

func calculatePlaneMsSsim[T Pixel](plane1, plane2 *Plane[T],
	bitDepth int) float64 {
	var ssim, cs [msSsimScales]float64

	sampleMax := MaxSampleValue(bitDepth)
	width, height := plane1.Width, plane1.Height
	vec1, vec2 := planeToVec(plane1), planeToVec(plane2)
	kernel := BuildGaussianKernel(1.5, 5, msSsimKernelWeight)

	ssim[0], cs[0] = calculatePlaneSsimInternal(vec1, vec2, width, height,
		sampleMax, kernel, kernel)
	for i := 1; i < msSsimScales; i++ {
		vec1 = msSsimDownscale(vec1, width, height)
		vec2 = msSsimDownscale(vec2, width, height)
		width /= 2
		height /= 2
		sampleMax *= 4
		ssim[i], cs[i] = calculatePlaneSsimInternal(vec1, vec2, width, height,
			sampleMax, kernel, kernel)
	}

	result := 1.0
	for i := range msSsimScales - 1 {
		result *= math.Pow(cs[i], msSsimWeights[i])
	}
	return result * math.Pow(ssim[msSsimScales-1], msSsimWeights[msSsimScales-1])
}

// msSsimDownscale halves both dimensions by summing, not averaging, each 2x2
// block, which keeps the precision the next scale's integer kernel needs. On
// odd sizes the second row or column is clamped to the last one.
func msSsimDownscale(input []uint32, inputWidth, inputHeight int) []uint32 {
	outputWidth := inputWidth / 2
	outputHeight := inputHeight / 2
	output := make([]uint32, outputWidth*outputHeight)
	for j := range outputHeight {
		j0 := 2 * j
		j1 := min(j0+1, inputHeight-1)
		for i := range outputWidth {
			i0 := 2 * i
			i1 := min(i0+1, inputWidth-1)
			output[j*outputWidth+i] = input[j0*inputWidth+i0] +
				input[j0*inputWidth+i1] +
				input[j1*inputWidth+i0] +
				input[j1*inputWidth+i1]
		}
	}
	return output
}
