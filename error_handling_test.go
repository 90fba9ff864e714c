package govmetrics_test

import (
	"io"
	"testing"

	"github.com/GreatValueCreamSoda/govmetrics"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ErrorCode_IsNone(t *testing.T) {
	if !govmetrics.ErrorCodeNoError.IsNone() {
		t.Fatal("ErrorCodeNoError should report IsNone() == true")
	}

	if govmetrics.ErrorCodeInputMismatch.IsNone() {
		t.Fatal("non-zero ErrorCode should report IsNone() == false")
	}
}

func Test_MetricsError_Is(t *testing.T) {
	err := errors.Wrap(&govmetrics.MetricsError{
		Code:   govmetrics.ErrorCodeInputMismatch,
		Reason: "Video resolution does not match",
	}, "frame 3")

	assert.True(t, errors.Is(err, govmetrics.ErrInputMismatch))
	assert.False(t, errors.Is(err, govmetrics.ErrMalformedInput))
	assert.Equal(t, govmetrics.ErrorCodeInputMismatch, govmetrics.CodeOf(err))
	assert.Contains(t, err.Error(), "Video resolution does not match")
}

func Test_MetricsError_Unwrap(t *testing.T) {
	err := &govmetrics.MetricsError{
		Code: govmetrics.ErrorCodeVideoError,
		Err:  io.ErrUnexpectedEOF,
	}

	require.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.True(t, errors.Is(err, govmetrics.ErrVideoError))
	assert.Equal(t, "video error: unexpected EOF", err.Error())
}

func Test_CodeOf(t *testing.T) {
	assert.Equal(t, govmetrics.ErrorCodeNoError, govmetrics.CodeOf(nil))
	assert.Equal(t, govmetrics.ErrorCodeProcessError,
		govmetrics.CodeOf(errors.New("boom")))
	assert.Equal(t, govmetrics.ErrorCodeUnsupportedInput,
		govmetrics.CodeOf(govmetrics.ErrUnsupportedInput))
}
