package govmetrics

import "fmt"

// ValidateFramePair checks that a and b can be compared at bitDepth.
//
// It fails with ErrUnsupportedInput for a bit depth outside 1..16, with
// ErrInputMismatch when the sample storage width does not match bitDepth
// (uint8 storage needs bitDepth <= 8, uint16 storage needs bitDepth > 8) or
// when any plane pair differs in size, and with ErrMalformedInput when a
// plane's buffer does not cover its declared geometry.
//
// Every metric calls this before each frame, so a source that changes shape
// mid-stream is caught on the frame where it happens.
func ValidateFramePair[T Pixel](a, b *Frame[T], bitDepth int) error {
	if bitDepth < 1 || bitDepth > 16 {
		return newError(ErrorCodeUnsupportedInput,
			fmt.Sprintf("Bit depth %d is outside 1..16", bitDepth))
	}

	bytes := SampleBytes[T]()
	if (bytes == 1 && bitDepth > 8) || (bytes == 2 && bitDepth <= 8) {
		return newError(ErrorCodeInputMismatch,
			"Bit depths does not match pixel width")
	}

	for i := range a.Planes {
		if err := validatePlanePair(&a.Planes[i], &b.Planes[i]); err != nil {
			return err
		}
	}
	return nil
}

// validatePlanePair checks one plane pair for equal size and sound layout.
func validatePlanePair[T Pixel](a, b *Plane[T]) error {
	if a.Width != b.Width || a.Height != b.Height {
		return newError(ErrorCodeInputMismatch,
			"Video resolution does not match")
	}
	if err := checkPlaneLayout(a); err != nil {
		return err
	}
	return checkPlaneLayout(b)
}

func checkPlaneLayout[T Pixel](p *Plane[T]) error {
	if p.Width < 0 || p.Height < 0 || p.Stride < p.Width {
		return newError(ErrorCodeMalformedInput,
			fmt.Sprintf("Plane stride %d is smaller than width %d", p.Stride,
				p.Width))
	}
	if p.Height > 0 && len(p.Data) < (p.Height-1)*p.Stride+p.Width {
		return newError(ErrorCodeMalformedInput,
			fmt.Sprintf("Plane buffer holds %d samples, %dx%d stride %d needs "+
				"more", len(p.Data), p.Width, p.Height, p.Stride))
	}
	return nil
}

// validateDecoderPair checks the static properties of two streams before any
// frame is read.
func validateDecoderPair(a, b VideoDetails) error {
	if a.BitDepth != b.BitDepth {
		return newError(ErrorCodeInputMismatch, "Bit depths do not match")
	}
	if a.ChromaSampling != b.ChromaSampling {
		return newError(ErrorCodeInputMismatch,
			"Chroma samplings do not match")
	}
	return nil
}
