package govmetrics

import (
	"math"
	"unsafe"
)

// SampleBytes returns the storage width of T in bytes: 1 for uint8 based
// samples and 2 for uint16 based ones.
func SampleBytes[T Pixel]() int {
	var sample T
	return int(unsafe.Sizeof(sample))
}

// MaxSampleValue returns the largest sample value representable at bitDepth.
func MaxSampleValue(bitDepth int) uint64 {
	return (1 << uint(bitDepth)) - 1
}

// planeToVec copies the content samples of p, dropping row padding, into a
// dense width*height buffer.
func planeToVec[T Pixel](p *Plane[T]) []uint32 {
	out := make([]uint32, p.Width*p.Height)
	for y := range p.Height {
		row := p.Row(y)
		dst := out[y*p.Width : (y+1)*p.Width]
		for x, v := range row {
			dst[x] = uint32(v)
		}
	}
	return out
}

// finiteLog clamps an infinite decibel value to the largest finite float64 so
// that perfect matches stay representable, for example in JSON.
func finiteLog(v float64) float64 {
	if math.IsInf(v, 1) {
		return math.MaxFloat64
	}
	if math.IsInf(v, -1) {
		return -math.MaxFloat64
	}
	return v
}
