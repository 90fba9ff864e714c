package govmetrics

import "math"

// SSIM compares the local luminance, contrast and structure of two planes
// through Gaussian weighted windows. Frame level scores are the linear
// similarity in [0, 1]; video level scores are in dB. Higher is better.

// CalculateVideoSsim computes the SSIM score between two videos in dB.
func CalculateVideoSsim[T Pixel](decoder1, decoder2 Decoder[T],
	opts VideoOptions) (PlanarMetrics, error) {
	metric := NewSsim[T](
		decoder1.GetVideoDetails().ChromaSampling.ChromaWeight())
	return ProcessVideo[T, PlanarMetrics, PlanarMetrics](metric, decoder1,
		decoder2, opts)
}

// CalculateFrameSsim computes the SSIM score between two frames.
//
// Y, U and V are the linear per-plane similarities and Avg is their chroma
// weighted mean. ConvertSsimToDecibels maps the result onto the dB scale
// used for videos.
func CalculateFrameSsim[T Pixel](frame1, frame2 *Frame[T], bitDepth int,
	sampling ChromaSampling) (PlanarMetrics, error) {
	metric := NewSsim[T](sampling.ChromaWeight())
	raw, err := metric.ProcessFrame(frame1, frame2, bitDepth, sampling)
	if err != nil {
		return PlanarMetrics{}, err
	}
	return metric.FrameScore(raw), nil
}

const (
	ssimKernelShift  = 8
	ssimKernelWeight = 1 << ssimKernelShift
)

// Ssim is the SSIM VideoMetric. The zero value weighs chroma planes the same
// as luma.
type Ssim[T Pixel] struct {
	chromaWeight float64
	weighted     bool
}

// NewSsim returns an Ssim that weighs each chroma plane by chromaWeight
// relative to luma.
func NewSsim[T Pixel](chromaWeight float64) *Ssim[T] {
	return &Ssim[T]{chromaWeight: chromaWeight, weighted: true}
}

func (m *Ssim[T]) weight() float64 {
	if !m.weighted {
		return 1
	}
	return m.chromaWeight
}

// ProcessFrame returns the unweighted SSIM of each plane. Avg is left at
// zero.
func (m *Ssim[T]) ProcessFrame(frame1, frame2 *Frame[T], bitDepth int,
	_ ChromaSampling) (PlanarMetrics, error) {
	if err := ValidateFramePair(frame1, frame2, bitDepth); err != nil {
		return PlanarMetrics{}, err
	}

	sampleMax := MaxSampleValue(bitDepth)
	score := func(_ int, p1, p2 *Plane[T]) (float64, error) {
		kernel := BuildGaussianKernel(float64(p1.Height)*1.5/256,
			min(p1.Width, p1.Height), ssimKernelWeight)
		return calculatePlaneSsim(p1, p2, sampleMax, kernel, kernel), nil
	}
	return computePlanes(frame1, frame2, score)
}

// FrameScore returns the per-plane similarities with Avg set to their
// chroma weighted mean.
func (m *Ssim[T]) FrameScore(raw PlanarMetrics) PlanarMetrics {
	return ssimFrameScore(raw, m.weight())
}

// AggregateFrameResults sums the per-frame similarities and converts them to
// dB.
func (m *Ssim[T]) AggregateFrameResults(results []PlanarMetrics) (
	PlanarMetrics, error) {
	return ssimAggregate(results, m.weight())
}

func ssimFrameScore(raw PlanarMetrics, cweight float64) PlanarMetrics {
	raw.Avg = (raw.Y + cweight*(raw.U+raw.V)) / (1 + 2*cweight)
	return raw
}

func ssimAggregate(results []PlanarMetrics, cweight float64) (PlanarMetrics,
	error) {
	if len(results) == 0 {
		return PlanarMetrics{}, newError(ErrorCodeUnsupportedInput,
			"No frame results to aggregate")
	}

	sum := sumPlanar(results)
	n := float64(len(results))
	return PlanarMetrics{
		Y: ssimLog10Convert(sum.Y, n),
		U: ssimLog10Convert(sum.U, n),
		V: ssimLog10Convert(sum.V, n),
		Avg: ssimLog10Convert(sum.Y+cweight*(sum.U+sum.V),
			(1+2*cweight)*n),
	}, nil
}

// ConvertSsimToDecibels maps a frame level SSIM or MS-SSIM result onto the
// dB scale CalculateVideoSsim and CalculateVideoMsSsim report.
func ConvertSsimToDecibels(m PlanarMetrics) PlanarMetrics {
	return PlanarMetrics{
		Y:   ssimLog10Convert(m.Y, 1),
		U:   ssimLog10Convert(m.U, 1),
		V:   ssimLog10Convert(m.V, 1),
		Avg: ssimLog10Convert(m.Avg, 1),
	}
}

// ssimLog10Convert maps a sum of similarities over weight samples to dB.
// A perfect match yields the largest finite float64.
func ssimLog10Convert(score, weight float64) float64 {
	if weight-score <= 0 {
		return math.MaxFloat64
	}
	return finiteLog(10 * (math.Log10(weight) - math.Log10(weight-score)))
}

// ssimMoments accumulates kernel weighted sums over one window.
type ssimMoments struct {
	mux, muy   int64
	x2, xy, y2 int64
	w          int64
}

var (
	ssimK1Root = 0.01
	ssimK2Root = 0.03
	ssimK1     = ssimK1Root * ssimK1Root
	ssimK2     = ssimK2Root * ssimK2Root
)

// BuildGaussianKernel returns a symmetric integer approximation of a
// Gaussian with the given sigma, scaled so that its taps sum to exactly
// kernelWeight.
//
// The kernel stops at the first tap whose error would be below half a unit
// of kernelWeight and never has more than 2*maxLen-1 taps. The center tap
// absorbs the rounding error of the others. A sigma that is not positive
// yields the single tap kernel [kernelWeight].
func BuildGaussianKernel(sigma float64, maxLen, kernelWeight int) []int64 {
	maxLen = max(maxLen, 1)
	if !(sigma > 0) {
		return []int64{int64(kernelWeight)}
	}

	scale := 1 / (math.Sqrt(2*math.Pi) * sigma)
	nhisigma2 := -0.5 / (sigma * sigma)
	s := math.Sqrt(0.5*math.Pi) * sigma * (1 / float64(kernelWeight))

	var length int
	if s < 1 {
		l := math.Floor(sigma * math.Sqrt(-2*math.Log(s)))
		if l > 0 && !math.IsInf(l, 0) {
			length = int(min(l, float64(maxLen)))
		}
	}
	if length >= maxLen {
		length = maxLen - 1
	}

	kernel := make([]int64, (length<<1)|1)
	var sum int64
	for ci := 1; ci <= length; ci++ {
		val := int64(float64(kernelWeight)*scale*
			math.Exp(nhisigma2*float64(ci*ci)) + 0.5)
		kernel[length-ci] = val
		kernel[length+ci] = val
		sum += val
	}
	kernel[length] = int64(kernelWeight) - (sum << 1)
	return kernel
}

func calculatePlaneSsim[T Pixel](plane1, plane2 *Plane[T], sampleMax uint64,
	vertKernel, horizKernel []int64) float64 {
	ssim, _ := calculatePlaneSsimInternal(planeToVec(plane1),
		planeToVec(plane2), plane1.Width, plane1.Height, sampleMax, vertKernel,
		horizKernel)
	return ssim
}

// calculatePlaneSsimInternal runs the separable windowed SSIM over two dense
// width x height sample buffers and returns the weighted mean SSIM and the
// weighted mean contrast-structure term.
//
// Horizontal sums for each input row go into a ring of lineSize rows; once
// enough rows are buffered the vertical pass combines them into one output
// row. Windows are clipped at the borders, so only taps over existing
// samples contribute. A plane without windows scores 1 for both terms.
func calculatePlaneSsimInternal(plane1, plane2 []uint32, width, height int,
	sampleMax uint64, vertKernel, horizKernel []int64) (float64, float64) {
	if width == 0 || height == 0 {
		return 1, 1
	}

	vertLen := len(vertKernel)
	vertOffset := vertLen >> 1
	lineSize := nextPowerOfTwo(vertLen)
	lineMask := lineSize - 1
	lines := make([][]ssimMoments, lineSize)
	for i := range lines {
		lines[i] = make([]ssimMoments, width)
	}

	horizLen := len(horizKernel)
	horizOffset := horizLen >> 1

	maxSq := float64(sampleMax) * float64(sampleMax)
	var ssim, ssimw, cs float64

	for y := 0; y < height+vertOffset; y++ {
		if y < height {
			buf := lines[y&lineMask]
			line1 := plane1[y*width : (y+1)*width]
			line2 := plane2[y*width : (y+1)*width]
			for x := range width {
				var m ssimMoments
				kMin := max(horizOffset-x, 0)
				kMax := horizLen - max(x+horizOffset+1-width, 0)
				for k := kMin; k < kMax; k++ {
					window := horizKernel[k]
					targetX := x + k - horizOffset
					pix1 := int64(line1[targetX])
					pix2 := int64(line2[targetX])
					m.mux += window * pix1
					m.muy += window * pix2
					m.x2 += window * pix1 * pix1
					m.xy += window * pix1 * pix2
					m.y2 += window * pix2 * pix2
					m.w += window
				}
				buf[x] = m
			}
		}

		if y < vertOffset {
			continue
		}

		kMin := max(vertLen-(y+1), 0)
		kMax := vertLen - max(y+1-height, 0)
		for x := range width {
			var m ssimMoments
			for k := kMin; k < kMax; k++ {
				b := lines[(y+1+k-vertLen)&lineMask][x]
				window := vertKernel[k]
				m.mux += window * b.mux
				m.muy += window * b.muy
				m.x2 += window * b.x2
				m.xy += window * b.xy
				m.y2 += window * b.y2
				m.w += window * b.w
			}

			w := float64(m.w)
			if w == 0 {
				continue
			}
			c1 := maxSq * ssimK1 * (w * w)
			c2 := maxSq * ssimK2 * (w * w)
			mx2 := float64(m.mux) * float64(m.mux)
			mxy := float64(m.mux) * float64(m.muy)
			my2 := float64(m.muy) * float64(m.muy)
			csTmp := w * (c2 + 2*(float64(m.xy)*w-mxy)) /
				(float64(m.x2)*w - mx2 + float64(m.y2)*w - my2 + c2)
			cs += csTmp
			ssim += csTmp * (2*mxy + c1) / (mx2 + my2 + c1)
			ssimw += w
		}
	}

	if ssimw == 0 {
		return 1, 1
	}
	return ssim / ssimw, cs / ssimw
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
