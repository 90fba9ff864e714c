package govmetrics

import "math"

// PSNR-HVS is a PSNR variant that compares frames in the 8x8 DCT domain,
// weighting each frequency by a contrast sensitivity function and discounting
// errors hidden by the local contrast of the block. Scores are in dB and
// higher is better.

// CalculateVideoPsnrHvs computes the PSNR-HVS score between two videos.
//
// Frames are pulled from both decoders in lock step until either ends or
// opts.FrameLimit frames were compared. The chroma planes are weighed by the
// first decoder's chroma sampling.
func CalculateVideoPsnrHvs[T Pixel](decoder1, decoder2 Decoder[T],
	opts VideoOptions) (PlanarMetrics, error) {
	metric := NewPsnrHvs[T](
		decoder1.GetVideoDetails().ChromaSampling.ChromaWeight())
	return ProcessVideo[T, PlanarMetrics, PlanarMetrics](metric, decoder1,
		decoder2, opts)
}

// CalculateFramePsnrHvs computes the PSNR-HVS score between two frames.
func CalculateFramePsnrHvs[T Pixel](frame1, frame2 *Frame[T], bitDepth int,
	sampling ChromaSampling) (PlanarMetrics, error) {
	metric := NewPsnrHvs[T](sampling.ChromaWeight())
	raw, err := metric.ProcessFrame(frame1, frame2, bitDepth, sampling)
	if err != nil {
		return PlanarMetrics{}, err
	}
	return metric.FrameScore(raw), nil
}

// PsnrHvs is the PSNR-HVS VideoMetric. The zero value weighs chroma planes
// the same as luma.
type PsnrHvs[T Pixel] struct {
	chromaWeight float64
	weighted     bool
}

// NewPsnrHvs returns a PsnrHvs that weighs each chroma plane by chromaWeight
// relative to luma.
func NewPsnrHvs[T Pixel](chromaWeight float64) *PsnrHvs[T] {
	return &PsnrHvs[T]{chromaWeight: chromaWeight, weighted: true}
}

func (m *PsnrHvs[T]) weight() float64 {
	if !m.weighted {
		return 1
	}
	return m.chromaWeight
}

// ProcessFrame returns the unweighted, linear squared error of each plane.
// Avg is left at zero; FrameScore and AggregateFrameResults apply the
// weighting.
func (m *PsnrHvs[T]) ProcessFrame(frame1, frame2 *Frame[T], bitDepth int,
	_ ChromaSampling) (PlanarMetrics, error) {
	if err := ValidateFramePair(frame1, frame2, bitDepth); err != nil {
		return PlanarMetrics{}, err
	}

	score := func(plane int, p1, p2 *Plane[T]) (float64, error) {
		return calculatePlanePsnrHvs(p1, p2, plane, bitDepth), nil
	}
	return computePlanes(frame1, frame2, score)
}

// FrameScore converts one ProcessFrame result into dB.
func (m *PsnrHvs[T]) FrameScore(raw PlanarMetrics) PlanarMetrics {
	cweight := m.weight()
	return PlanarMetrics{
		Y: psnrHvsLog10Convert(raw.Y, 1),
		U: psnrHvsLog10Convert(raw.U, 1),
		V: psnrHvsLog10Convert(raw.V, 1),
		Avg: psnrHvsLog10Convert(raw.Y+cweight*(raw.U+raw.V),
			1/(1+2*cweight)),
	}
}

// AggregateFrameResults sums the linear per-frame errors and converts the
// totals to dB. Averaging happens before the logarithm.
func (m *PsnrHvs[T]) AggregateFrameResults(results []PlanarMetrics) (
	PlanarMetrics, error) {
	if len(results) == 0 {
		return PlanarMetrics{}, newError(ErrorCodeUnsupportedInput,
			"No frame results to aggregate")
	}

	cweight := m.weight()
	sum := sumPlanar(results)
	n := float64(len(results))
	return PlanarMetrics{
		Y: psnrHvsLog10Convert(sum.Y, 1/n),
		U: psnrHvsLog10Convert(sum.U, 1/n),
		V: psnrHvsLog10Convert(sum.V, 1/n),
		Avg: psnrHvsLog10Convert(sum.Y+cweight*(sum.U+sum.V),
			1/((1+2*cweight)*n)),
	}, nil
}

func psnrHvsLog10Convert(score, weight float64) float64 {
	return finiteLog(10 * (-1 * math.Log10(weight*score)))
}

// Normalized inverse quantization matrix for 8x8 DCT at the point of
// transparency. This is not the JPEG based matrix from the PSNR-HVS paper,
// this one gives a slightly higher MOS agreement.
var csfY = [8][8]float64{
	{1.6193873005, 2.2901594831, 2.08509755623, 1.48366094411, 1.00227514334, 0.678296995242, 0.466224900598, 0.3265091542},
	{2.2901594831, 1.94321815382, 2.04793073064, 1.68731108984, 1.2305666963, 0.868920337363, 0.61280991668, 0.436405793551},
	{2.08509755623, 2.04793073064, 1.34329019223, 1.09205635862, 0.875748795257, 0.670882927016, 0.501731932449, 0.372504254596},
	{1.48366094411, 1.68731108984, 1.09205635862, 0.772819797575, 0.605636379554, 0.48309405692, 0.380429446972, 0.295774038565},
	{1.00227514334, 1.2305666963, 0.875748795257, 0.605636379554, 0.448996256676, 0.352889268808, 0.283006984131, 0.226951348204},
	{0.678296995242, 0.868920337363, 0.670882927016, 0.48309405692, 0.352889268808, 0.27032073436, 0.215017739696, 0.17408067321},
	{0.466224900598, 0.61280991668, 0.501731932449, 0.380429446972, 0.283006984131, 0.215017739696, 0.168869545842, 0.136153931001},
	{0.3265091542, 0.436405793551, 0.372504254596, 0.295774038565, 0.226951348204, 0.17408067321, 0.136153931001, 0.109083846276},
}

var csfCb420 = [8][8]float64{
	{1.91113096927, 2.46074210438, 1.18284184739, 1.14982565193, 1.05017074788, 0.898018824055, 0.74725392039, 0.615105596242},
	{2.46074210438, 1.58529308355, 1.21363250036, 1.38190029285, 1.33100189972, 1.17428548929, 0.996404342439, 0.830890433625},
	{1.18284184739, 1.21363250036, 0.978712413627, 1.02624506078, 1.03145147362, 0.960060382087, 0.849823426169, 0.731221236837},
	{1.14982565193, 1.38190029285, 1.02624506078, 0.861317501629, 0.801821139099, 0.751437590932, 0.685398513368, 0.608694761374},
	{1.05017074788, 1.33100189972, 1.03145147362, 0.801821139099, 0.676555426187, 0.605503172737, 0.55002013668, 0.495804539034},
	{0.898018824055, 1.17428548929, 0.960060382087, 0.751437590932, 0.605503172737, 0.514674450957, 0.454353482512, 0.407050308965},
	{0.74725392039, 0.996404342439, 0.849823426169, 0.685398513368, 0.55002013668, 0.454353482512, 0.389234902883, 0.342353999733},
	{0.615105596242, 0.830890433625, 0.731221236837, 0.608694761374, 0.495804539034, 0.407050308965, 0.342353999733, 0.295530605237},
}

var csfCr420 = [8][8]float64{
	{2.03871978502, 2.62502345193, 1.26180942886, 1.11019789803, 1.01397751469, 0.867069376285, 0.721500455585, 0.593906509971},
	{2.62502345193, 1.69112867013, 1.17180569821, 1.3342742857, 1.28513006198, 1.13381474809, 0.962064122248, 0.802254508198},
	{1.26180942886, 1.17180569821, 0.944981930573, 0.990876405848, 0.995903384143, 0.926972725286, 0.820534991409, 0.706020324706},
	{1.11019789803, 1.3342742857, 0.990876405848, 0.831632933426, 0.77418706195, 0.725539939514, 0.661776842059, 0.587716619023},
	{1.01397751469, 1.28513006198, 0.995903384143, 0.77418706195, 0.653238524286, 0.584635025748, 0.531064164893, 0.478717061273},
	{0.867069376285, 1.13381474809, 0.926972725286, 0.725539939514, 0.584635025748, 0.496936637883, 0.438694579826, 0.393021669543},
	{0.721500455585, 0.962064122248, 0.820534991409, 0.661776842059, 0.531064164893, 0.438694579826, 0.375820256136, 0.330555063063},
	{0.593906509971, 0.802254508198, 0.706020324706, 0.587716619023, 0.478717061273, 0.393021669543, 0.330555063063, 0.285345396658},
}

var csfTables = [3]*[8][8]float64{&csfY, &csfCb420, &csfCr420}

// The PSNR-HVS-M masking table is the CSF scaled by this constant and
// squared. Its origin is undocumented, but moving away from it hurts MOS
// agreement.
const csfMultiplier = 0.3885746225901003

// blockStats holds the per-block statistics of one plane that drive the
// contrast masking.
type blockStats struct {
	samples [64]int64
	dct     [64]int64
	// varianceRatio is the sum of quadrant variances over the global
	// variance, or 0 for a flat block.
	varianceRatio float64
	mask          float64
}

// loadBlock reads the 8x8 block at (x, y) of p into s, computes its variance
// ratio and transforms it.
func loadBlock[T Pixel](s *blockStats, p *Plane[T], x, y int) {
	var means, vars [4]float64
	var gmean, gvar float64

	for i := range 8 {
		row := p.Data[(y+i)*p.Stride+x:]
		for j := range 8 {
			v := int64(row[j])
			s.samples[i*8+j] = v
			sub := ((i & 12) >> 2) + ((j & 12) >> 1)
			gmean += float64(v)
			means[sub] += float64(v)
		}
	}
	gmean /= 64
	for i := range means {
		means[i] /= 16
	}

	for i := range 8 {
		for j := range 8 {
			sub := ((i & 12) >> 2) + ((j & 12) >> 1)
			v := float64(s.samples[i*8+j])
			gvar += (v - gmean) * (v - gmean)
			vars[sub] += (v - means[sub]) * (v - means[sub])
		}
	}
	gvar *= 64.0 / 63.0
	for i := range vars {
		vars[i] *= 16.0 / 15.0
	}
	if gvar > 0 {
		gvar = (vars[0] + vars[1] + vars[2] + vars[3]) / gvar
	}
	s.varianceRatio = gvar

	s.dct = s.samples
	fdct8x8(&s.dct)
}

// maskEnergy computes the block's masking energy from its AC coefficients.
func (s *blockStats) maskEnergy(mask *[8][8]float64) {
	var energy float64
	for i := range 8 {
		start := 0
		if i == 0 {
			start = 1
		}
		for j := start; j < 8; j++ {
			c := s.dct[i*8+j]
			energy += float64(c*c) * mask[i][j]
		}
	}
	s.mask = math.Sqrt(energy*s.varianceRatio) / 32
}

// calculatePlanePsnrHvs returns the CSF weighted, contrast masked squared
// error between two planes normalized by the block pixel count and the
// squared maximum sample value.
func calculatePlanePsnrHvs[T Pixel](plane1, plane2 *Plane[T], planeIdx,
	bitDepth int) float64 {
	const step = 7

	csf := csfTables[planeIdx]
	var mask [8][8]float64
	for x := range 8 {
		for y := range 8 {
			v := csf[x][y] * csfMultiplier
			mask[x][y] = v * v
		}
	}

	var result float64
	var pixels int
	var b1, b2 blockStats

	for y := 0; y < plane1.Height-step; y += step {
		for x := 0; x < plane1.Width-step; x += step {
			loadBlock(&b1, plane1, x, y)
			loadBlock(&b2, plane2, x, y)
			b1.maskEnergy(&mask)
			b2.maskEnergy(&mask)

			blockMask := max(b1.mask, b2.mask)

			for i := range 8 {
				for j := range 8 {
					diff := b1.dct[i*8+j] - b2.dct[i*8+j]
					if diff < 0 {
						diff = -diff
					}
					err := float64(diff)
					if i != 0 || j != 0 {
						errMask := blockMask / mask[i][j]
						if err < errMask {
							err = 0
						} else {
							err -= errMask
						}
					}
					weighted := err * csf[i][j]
					result += weighted * weighted
					pixels++
				}
			}
		}
	}

	if pixels == 0 {
		return 0
	}

	result /= float64(pixels)
	sampleMax := float64(MaxSampleValue(bitDepth))
	result /= sampleMax * sampleMax
	return result
}
