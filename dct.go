package govmetrics

const dctStride = 8

// fdct8x8 applies the Daala integer 8x8 forward DCT to data in place.
//
// This is the lifting-scheme transform PSNR-HVS reference scores are
// produced with, not a floating point DCT-II. The rounding offsets and shifts
// below must stay exactly as they are.
func fdct8x8(data *[64]int64) {
	var z [64]int64
	for i := range 8 {
		fdct8(z[dctStride*i:], data[i:])
	}
	for i := range 8 {
		fdct8(data[dctStride*i:], z[i:])
	}
}

// fdct8 transforms the 8 samples x[0], x[8], ..., x[56] into y[0..7].
func fdct8(y, x []int64) {
	var t, th [8]int64

	// Initial permutation
	t[0] = x[0]
	t[4] = x[1*dctStride]
	t[2] = x[2*dctStride]
	t[6] = x[3*dctStride]
	t[7] = x[4*dctStride]
	t[3] = x[5*dctStride]
	t[5] = x[6*dctStride]
	t[1] = x[7*dctStride]

	// +1/-1 butterflies
	t[1] = t[0] - t[1]
	th[1] = dctRshift1(t[1])
	t[0] -= th[1]
	t[4] += t[5]
	th[4] = dctRshift1(t[4])
	t[5] -= th[4]
	t[3] = t[2] - t[3]
	t[2] -= dctRshift1(t[3])
	t[6] += t[7]
	th[6] = dctRshift1(t[6])
	t[7] = th[6] - t[7]

	// Embedded 4-point type-II DCT
	t[0] += th[6]
	t[6] = t[0] - t[6]
	t[2] = th[4] - t[2]
	t[4] = t[2] - t[4]

	// Embedded 2-point type-II DCT
	t[0] -= (t[4]*13573 + 16384) >> 15
	t[4] += (t[0]*11585 + 8192) >> 14
	t[0] -= (t[4]*13573 + 16384) >> 15

	// Embedded 2-point type-IV DST
	t[6] -= (t[2]*21895 + 16384) >> 15
	t[2] += (t[6]*15137 + 8192) >> 14
	t[6] -= (t[2]*21895 + 16384) >> 15

	// Embedded 4-point type-IV DST
	t[3] += (t[5]*19195 + 16384) >> 15
	t[5] += (t[3]*11585 + 8192) >> 14
	t[3] -= (t[5]*7489 + 4096) >> 13
	t[7] = dctRshift1(t[5]) - t[7]
	t[5] -= t[7]
	t[3] = th[1] - t[3]
	t[1] -= t[3]
	t[7] += (t[1]*3227 + 16384) >> 15
	t[1] -= (t[7]*6393 + 16384) >> 15
	t[7] += (t[1]*3227 + 16384) >> 15
	t[5] += (t[3]*2485 + 4096) >> 13
	t[3] -= (t[5]*18205 + 16384) >> 15
	t[5] += (t[3]*2485 + 4096) >> 13

	copy(y[:8], t[:])
}

// dctRshift1 divides by two rounding towards zero, matching the reference
// transform's (a + sign bit) >> 1.
func dctRshift1(a int64) int64 {
	return (a + int64(uint64(a)>>63)) >> 1
}
