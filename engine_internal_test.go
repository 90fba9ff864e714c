package govmetrics

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_msSsimDownscale(t *testing.T) {
	even := []uint32{
		1, 2, 3, 4,
		5, 6, 7, 8,
	}
	if diff := cmp.Diff([]uint32{14, 22}, msSsimDownscale(even, 4, 2)); diff != "" {
		t.Fatalf("even downscale mismatch (-want +got):\n%s", diff)
	}

	odd := []uint32{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	}
	if diff := cmp.Diff([]uint32{12}, msSsimDownscale(odd, 3, 3)); diff != "" {
		t.Fatalf("odd downscale mismatch (-want +got):\n%s", diff)
	}

	assert.Empty(t, msSsimDownscale([]uint32{7}, 1, 1))
}

func Test_calculatePlaneSsimInternal_Empty(t *testing.T) {
	kernel := BuildGaussianKernel(1.5, 5, msSsimKernelWeight)

	ssim, cs := calculatePlaneSsimInternal(nil, nil, 0, 4, 255, kernel,
		kernel)
	assert.Equal(t, 1.0, ssim)
	assert.Equal(t, 1.0, cs)
}

func Test_calculatePlaneSsimInternal_ClippedWindows(t *testing.T) {
	// A kernel longer than the plane only ever uses the taps over existing
	// samples, so the score must not depend on the kernel's tail.
	plane1 := []uint32{10, 20, 30, 40, 50, 60}
	plane2 := []uint32{12, 18, 33, 41, 47, 66}

	short := []int64{64, 128, 64}
	ssimShort, _ := calculatePlaneSsimInternal(plane1, plane2, 3, 2, 255,
		short, short)
	require.Greater(t, ssimShort, 0.0)
	require.Less(t, ssimShort, 1.0)

	long := []int64{0, 0, 64, 128, 64, 0, 0}
	ssimLong, _ := calculatePlaneSsimInternal(plane1, plane2, 3, 2, 255,
		long, long)
	assert.InDelta(t, ssimShort, ssimLong, 1e-12)
}

func Test_planeToVec_Stride(t *testing.T) {
	p := Plane[uint16]{
		Data:   []uint16{1, 2, 99, 3, 4, 99},
		Width:  2,
		Height: 2,
		Stride: 3,
	}
	assert.Equal(t, []uint32{1, 2, 3, 4}, planeToVec(&p))
}

func Test_computePlanes_Error(t *testing.T) {
	f := NewFrame[uint8](8, 8, ChromaSampling444)
	boom := errors.New("boom")

	fail := func(plane int, _, _ *Plane[uint8]) (float64, error) {
		if plane == 1 {
			return 0, boom
		}
		return float64(plane), nil
	}

	_, err := computePlanes(f, f, fail)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.Contains(t, err.Error(), "plane 1")
}

func Test_computePlanes_Slots(t *testing.T) {
	f := NewFrame[uint8](8, 8, ChromaSampling420)

	score := func(plane int, p1, _ *Plane[uint8]) (float64, error) {
		return float64(plane*100 + p1.Width), nil
	}

	got, err := computePlanes(f, f, score)
	require.NoError(t, err)
	assert.Equal(t, PlanarMetrics{Y: 8, U: 104, V: 204}, got)
}

func Test_MaxSampleValue(t *testing.T) {
	assert.Equal(t, uint64(255), MaxSampleValue(8))
	assert.Equal(t, uint64(1023), MaxSampleValue(10))
	assert.Equal(t, uint64(65535), MaxSampleValue(16))
}
