package sources

import (
	"io"
	"os/exec"
	"testing"

	"github.com/GreatValueCreamSoda/govmetrics"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shellPipeReader stands a shell script in for ffmpeg, emitting 2x2 8-bit
// 4:4:4 frames of 12 bytes each.
func shellPipeReader(t *testing.T, script string) *FFmpegPipeReader {
	t.Helper()
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh is not available")
	}
	r, err := startPipeReader(exec.Command(sh, "-c", script), 2, 2, 8,
		govmetrics.ChromaSampling444)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func Test_FFmpegPipeReader_CleanExit(t *testing.T) {
	r := shellPipeReader(t, "printf abcdefghijklmn")

	raw, err := r.ReadRawFrame()
	require.NoError(t, err)
	assert.Equal(t, []byte("abcd"), raw.Data[0])
	assert.Equal(t, []byte("ijkl"), raw.Data[2])

	_, err = r.ReadRawFrame()
	assert.Equal(t, io.EOF, err)
	_, err = r.ReadRawFrame()
	assert.Equal(t, io.EOF, err)
	assert.NoError(t, r.Close())
}

func Test_FFmpegPipeReader_FailedExit(t *testing.T) {
	r := shellPipeReader(t, "printf abcdefghijklmn; exit 3")

	_, err := r.ReadRawFrame()
	require.NoError(t, err)

	_, err = r.ReadRawFrame()
	require.Error(t, err)
	assert.False(t, errors.Is(err, io.EOF))
	assert.ErrorContains(t, err, "ffmpeg failed")

	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.ExitCode())
}
