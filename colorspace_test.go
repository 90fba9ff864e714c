package govmetrics_test

import (
	"testing"

	"github.com/GreatValueCreamSoda/govmetrics"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ChromaSampling_ChromaWeight(t *testing.T) {
	assert.Equal(t, 0.25, govmetrics.ChromaSampling420.ChromaWeight())
	assert.Equal(t, 0.5, govmetrics.ChromaSampling422.ChromaWeight())
	assert.Equal(t, 1.0, govmetrics.ChromaSampling444.ChromaWeight())
	assert.Equal(t, 0.0, govmetrics.ChromaSampling400.ChromaWeight())
}

func Test_ChromaSampling_PlaneDimensions(t *testing.T) {
	w, h := govmetrics.ChromaSampling420.PlaneDimensions(1, 1919, 1081)
	assert.Equal(t, []int{960, 541}, []int{w, h})

	w, h = govmetrics.ChromaSampling422.PlaneDimensions(2, 1920, 1080)
	assert.Equal(t, []int{960, 1080}, []int{w, h})

	w, h = govmetrics.ChromaSampling400.PlaneDimensions(1, 64, 48)
	assert.Equal(t, []int{64, 48}, []int{w, h})

	w, h = govmetrics.ChromaSampling420.PlaneDimensions(0, 63, 47)
	assert.Equal(t, []int{63, 47}, []int{w, h})
}

func Test_ChromaSamplingFromLog2(t *testing.T) {
	cs, err := govmetrics.ChromaSamplingFromLog2(1, 1, false)
	require.NoError(t, err)
	assert.Equal(t, govmetrics.ChromaSampling420, cs)

	cs, err = govmetrics.ChromaSamplingFromLog2(1, 0, false)
	require.NoError(t, err)
	assert.Equal(t, govmetrics.ChromaSampling422, cs)

	cs, err = govmetrics.ChromaSamplingFromLog2(0, 0, true)
	require.NoError(t, err)
	assert.Equal(t, govmetrics.ChromaSampling400, cs)

	_, err = govmetrics.ChromaSamplingFromLog2(2, 0, false)
	assert.True(t, errors.Is(err, govmetrics.ErrUnsupportedInput))
}

func Test_NewFrame_Dimensions(t *testing.T) {
	f := govmetrics.NewFrame[uint8](33, 17, govmetrics.ChromaSampling420)

	assert.Equal(t, 33, f.Planes[0].Width)
	assert.Equal(t, 17, f.Planes[0].Height)
	for _, p := range f.Planes[1:] {
		assert.Equal(t, 17, p.Width)
		assert.Equal(t, 9, p.Height)
		assert.Len(t, p.Data, 17*9)
	}
}

func Test_VideoDetails_SetDefaults(t *testing.T) {
	var d govmetrics.VideoDetails
	d.SetDefaults(1920, 1080, 10)

	assert.Equal(t, govmetrics.ChromaSampling420, d.ChromaSampling)
	assert.Equal(t, 10, d.BitDepth)
	assert.Equal(t, 30.0, d.FrameRate())
}
