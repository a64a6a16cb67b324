package jpeg

import "math"

// Per-byte RGB to YCbCr contributions, scaled by 2^16.
var (
	yR, yG, yB    [256]int32
	cbR, cbG, cbB [256]int32
	crR, crG, crB [256]int32
)

func init() {
	const one = 1 << 16
	for i := 0; i < 256; i++ {
		v := float64(i)
		yR[i] = int32(math.Round(0.299 * one * v))
		yG[i] = int32(math.Round(0.587 * one * v))
		yB[i] = int32(math.Round(0.114 * one * v))
		cbR[i] = int32(math.Round(-0.168736 * one * v))
		cbG[i] = int32(math.Round(-0.331264 * one * v))
		cbB[i] = int32(math.Round(0.5 * one * v))
		crR[i] = int32(math.Round(0.5 * one * v))
		crG[i] = int32(math.Round(-0.418688 * one * v))
		crB[i] = int32(math.Round(-0.081312 * one * v))
	}
}

// rgbToYCbCr returns level-shifted samples: Y-128, Cb-128 and Cr-128, each in
// [-128, 127].
func rgbToYCbCr(r, g, b uint8) (y, cb, cr int32) {
	const half = 1 << 15
	y = clampLevel((yR[r]+yG[g]+yB[b]+half)>>16 - 128)
	cb = clampLevel((cbR[r] + cbG[g] + cbB[b] + half) >> 16)
	cr = clampLevel((crR[r] + crG[g] + crB[b] + half) >> 16)
	return y, cb, cr
}

func clampLevel(v int32) int32 {
	if v < -128 {
		return -128
	}
	if v > 127 {
		return 127
	}
	return v
}

func ycbcrToRGB(y, cb, cr uint8) (r, g, b uint8) {
	fy := float64(y)
	fcb := float64(cb) - 128
	fcr := float64(cr) - 128
	r = clampSample(math.Round(fy + 1.402*fcr))
	g = clampSample(math.Round(fy - 0.344136*fcb - 0.714136*fcr))
	b = clampSample(math.Round(fy + 1.772*fcb))
	return r, g, b
}
