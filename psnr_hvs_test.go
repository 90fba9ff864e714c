package govmetrics_test

import (
	"math"
	"testing"

	"github.com/GreatValueCreamSoda/govmetrics"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_CalculateFramePsnrHvs_Identical(t *testing.T) {
	f := texturedFrame[uint8](64, 64, govmetrics.ChromaSampling444, 1, 255)

	result, err := govmetrics.CalculateFramePsnrHvs(f, f, 8,
		govmetrics.ChromaSampling444)
	require.NoError(t, err)

	want := govmetrics.PlanarMetrics{Y: math.MaxFloat64, U: math.MaxFloat64,
		V: math.MaxFloat64, Avg: math.MaxFloat64}
	assert.Equal(t, want, result)
}

func Test_CalculateFramePsnrHvs_Distorted(t *testing.T) {
	ref := texturedFrame[uint8](64, 64, govmetrics.ChromaSampling420, 2, 200)
	small := offsetFrame(ref, 2, 255)
	large := offsetFrame(ref, 20, 255)

	smallScore, err := govmetrics.CalculateFramePsnrHvs(ref, small, 8,
		govmetrics.ChromaSampling420)
	require.NoError(t, err)
	largeScore, err := govmetrics.CalculateFramePsnrHvs(ref, large, 8,
		govmetrics.ChromaSampling420)
	require.NoError(t, err)

	assert.Less(t, smallScore.Y, math.MaxFloat64)
	assert.Greater(t, smallScore.Y, largeScore.Y)
	assert.Greater(t, smallScore.Avg, largeScore.Avg)
}

func Test_CalculateFramePsnrHvs_HighBitDepth(t *testing.T) {
	ref := texturedFrame[uint16](32, 32, govmetrics.ChromaSampling422, 3, 1023)
	dist := offsetFrame(ref, 8, 1023)

	result, err := govmetrics.CalculateFramePsnrHvs(ref, dist, 10,
		govmetrics.ChromaSampling422)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(result.Avg))
	assert.Less(t, result.Avg, math.MaxFloat64)
}

func Test_CalculateFramePsnrHvs_TooSmallForBlocks(t *testing.T) {
	ref := texturedFrame[uint8](7, 7, govmetrics.ChromaSampling444, 4, 255)
	dist := offsetFrame(ref, 30, 255)

	result, err := govmetrics.CalculateFramePsnrHvs(ref, dist, 8,
		govmetrics.ChromaSampling444)
	require.NoError(t, err)
	assert.Equal(t, math.MaxFloat64, result.Y)
}

func Test_CalculateFramePsnrHvs_Mismatch(t *testing.T) {
	a := govmetrics.NewFrame[uint8](64, 64, govmetrics.ChromaSampling420)
	b := govmetrics.NewFrame[uint8](64, 32, govmetrics.ChromaSampling420)

	_, err := govmetrics.CalculateFramePsnrHvs(a, b, 8,
		govmetrics.ChromaSampling420)
	assert.True(t, errors.Is(err, govmetrics.ErrInputMismatch))
}

func Test_PsnrHvs_AggregateFrameResults(t *testing.T) {
	ref := texturedFrame[uint8](48, 48, govmetrics.ChromaSampling420, 5, 200)
	dist := offsetFrame(ref, 6, 255)

	metric := govmetrics.NewPsnrHvs[uint8](0.25)
	raw, err := metric.ProcessFrame(ref, dist, 8,
		govmetrics.ChromaSampling420)
	require.NoError(t, err)
	require.Greater(t, raw.Y, 0.0)

	frame := metric.FrameScore(raw)
	video, err := metric.AggregateFrameResults(
		[]govmetrics.PlanarMetrics{raw, raw})
	require.NoError(t, err)

	// Two equal frames average to the frame itself only when the linear
	// errors are summed before the logarithm.
	assert.InDelta(t, frame.Y, video.Y, 1e-9)
	assert.InDelta(t, frame.U, video.U, 1e-9)
	assert.InDelta(t, frame.Avg, video.Avg, 1e-9)

	summed := -10*math.Log10(2*raw.Y) + 10*math.Log10(2)
	assert.InDelta(t, summed, video.Y, 1e-9)

	_, err = metric.AggregateFrameResults(nil)
	assert.True(t, errors.Is(err, govmetrics.ErrUnsupportedInput))
}

func Test_PsnrHvs_ZeroValueIsUnweighted(t *testing.T) {
	ref := texturedFrame[uint8](32, 32, govmetrics.ChromaSampling444, 6, 200)
	dist := offsetFrame(ref, 4, 255)

	var metric govmetrics.PsnrHvs[uint8]
	raw, err := metric.ProcessFrame(ref, dist, 8, govmetrics.ChromaSampling444)
	require.NoError(t, err)

	score := metric.FrameScore(raw)
	want := -10 * math.Log10((raw.Y+raw.U+raw.V)/3)
	assert.InDelta(t, want, score.Avg, 1e-9)
}

func Test_CalculateVideoPsnrHvs(t *testing.T) {
	f := texturedFrame[uint8](64, 64, govmetrics.ChromaSampling420, 7, 200)
	shifted := offsetFrame(f, 10, 255)

	single, err := govmetrics.CalculateVideoPsnrHvs[uint8](
		newSliceDecoder(8, govmetrics.ChromaSampling420, f),
		newSliceDecoder(8, govmetrics.ChromaSampling420, f),
		govmetrics.VideoOptions{})
	require.NoError(t, err)
	assert.Equal(t, math.MaxFloat64, single.Avg)

	forward, err := govmetrics.CalculateVideoPsnrHvs[uint8](
		newSliceDecoder(8, govmetrics.ChromaSampling420, f, f),
		newSliceDecoder(8, govmetrics.ChromaSampling420, f, shifted),
		govmetrics.VideoOptions{})
	require.NoError(t, err)
	assert.Less(t, forward.Avg, single.Avg)

	reversed, err := govmetrics.CalculateVideoPsnrHvs[uint8](
		newSliceDecoder(8, govmetrics.ChromaSampling420, f, f),
		newSliceDecoder(8, govmetrics.ChromaSampling420, shifted, f),
		govmetrics.VideoOptions{})
	require.NoError(t, err)
	assert.Equal(t, forward, reversed)
}
