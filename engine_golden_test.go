package govmetrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// goldenPlanes returns a deterministic textured plane and a mildly distorted
// copy of it. The scores below are pinned to 17 significant digits, so any
// change to the fixed-point arithmetic shows up here.
func goldenPlanes(width, height int) (Plane[uint8], Plane[uint8]) {
	a := NewPlane[uint8](width, height)
	b := NewPlane[uint8](width, height)
	for i := range a.Data {
		va := (i*37 + (i/13)*11) % 256
		a.Data[i] = uint8(va)
		b.Data[i] = uint8((va + (i*7)%5 + (i/width)%3) % 256)
	}
	return a, b
}

func goldenFrames(width, height int) (*Frame[uint8], *Frame[uint8]) {
	a, b := goldenPlanes(width, height)
	f1, f2 := &Frame[uint8]{}, &Frame[uint8]{}
	for i := range f1.Planes {
		f1.Planes[i], f2.Planes[i] = a, b
	}
	return f1, f2
}

const goldenEpsilon = 1e-12

func Test_calculatePlanePsnrHvs_Golden(t *testing.T) {
	want := [3]float64{
		5.63254219135381554e-3,
		4.41433499870182069e-3,
		4.67123745845984383e-3,
	}
	a, b := goldenPlanes(37, 29)
	for plane := range 3 {
		got := calculatePlanePsnrHvs(&a, &b, plane, 8)
		assert.InEpsilon(t, want[plane], got, goldenEpsilon, "plane %d", plane)
	}
}

func Test_calculatePlaneSsim_Golden(t *testing.T) {
	tests := []struct {
		width, height int
		ssim, msssim  float64
	}{
		{37, 29, 9.78432658503135877e-1, 8.05656523516727563e-1},
		{200, 150, 9.38701131910308795e-1, 8.79531000798725815e-1},
	}
	for _, tt := range tests {
		a, b := goldenPlanes(tt.width, tt.height)

		kernel := BuildGaussianKernel(float64(tt.height)*1.5/256,
			min(tt.width, tt.height), ssimKernelWeight)
		ssim := calculatePlaneSsim(&a, &b, MaxSampleValue(8), kernel, kernel)
		assert.InEpsilon(t, tt.ssim, ssim, goldenEpsilon,
			"ssim %dx%d", tt.width, tt.height)

		msssim := calculatePlaneMsSsim(&a, &b, 8)
		assert.InEpsilon(t, tt.msssim, msssim, goldenEpsilon,
			"msssim %dx%d", tt.width, tt.height)
	}
}

func Test_CalculateFrame_Golden(t *testing.T) {
	f1, f2 := goldenFrames(200, 150)

	ssim, err := CalculateFrameSsim(f1, f2, 8, ChromaSampling444)
	require.NoError(t, err)
	assert.InEpsilon(t, 9.38701131910308795e-1, ssim.Y, goldenEpsilon)
	assert.InEpsilon(t, 9.38701131910308795e-1, ssim.V, goldenEpsilon)
	assert.InEpsilon(t, 9.38701131910308795e-1, ssim.Avg, goldenEpsilon)

	msssim, err := CalculateFrameMsSsim(f1, f2, 8, ChromaSampling444)
	require.NoError(t, err)
	assert.InEpsilon(t, 8.79531000798725815e-1, msssim.U, goldenEpsilon)
	assert.InEpsilon(t, 8.79531000798725815e-1, msssim.Avg, goldenEpsilon)

	f1, f2 = goldenFrames(37, 29)
	raw, err := NewPsnrHvs[uint8](1).ProcessFrame(f1, f2, 8,
		ChromaSampling444)
	require.NoError(t, err)
	assert.InEpsilon(t, 5.63254219135381554e-3, raw.Y, goldenEpsilon)
	assert.InEpsilon(t, 4.41433499870182069e-3, raw.U, goldenEpsilon)
	assert.InEpsilon(t, 4.67123745845984383e-3, raw.V, goldenEpsilon)
}
