package jpeg

import "math"

// aanScale are the per-frequency scale factors left in the output of the AAN
// forward transform: aanScale[0] = 1, aanScale[k] = cos(k*pi/16)*sqrt(2).
var aanScale = [8]float64{
	1.0, 1.387039845, 1.306562965, 1.175875602,
	1.0, 0.785694958, 0.541196100, 0.275899379,
}

// idctCos[x][u] = C(u)/2 * cos((2x+1)u*pi/16), with C(0) = 1/sqrt(2).
var idctCos [8][8]float64

func init() {
	for x := 0; x < 8; x++ {
		for u := 0; u < 8; u++ {
			c := 1.0
			if u == 0 {
				c = 1 / math.Sqrt2
			}
			idctCos[x][u] = c / 2 * math.Cos(float64(2*x+1)*float64(u)*math.Pi/16)
		}
	}
}

// inverseDCT transforms a dequantized natural-order block into level-shifted
// samples clamped to [0, 255]. It evaluates the direct formula separably.
func inverseDCT(in *[BlockSize]int32, out *[BlockSize]uint8) {
	var tmp [BlockSize]float64
	// Rows: tmp[v][x] = sum_u idctCos[x][u] * in[v][u].
	for v := 0; v < 8; v++ {
		row := in[v*8 : v*8+8]
		for x := 0; x < 8; x++ {
			var s float64
			for u := 0; u < 8; u++ {
				s += idctCos[x][u] * float64(row[u])
			}
			tmp[v*8+x] = s
		}
	}
	// Columns: out[y][x] = sum_v idctCos[y][v] * tmp[v][x].
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			var s float64
			for v := 0; v < 8; v++ {
				s += idctCos[y][v] * tmp[v*8+x]
			}
			out[y*8+x] = clampSample(math.Round(s) + 128)
		}
	}
}

func clampSample(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// forwardDCT is the AAN float transform (rows, then columns) in place. The
// output at (v, u) is scaled by 8*aanScale[v]*aanScale[u].
func forwardDCT(d *[BlockSize]float64) {
	for i := 0; i < 8; i++ {
		fdct1D(d, i*8, 1)
	}
	for i := 0; i < 8; i++ {
		fdct1D(d, i, 8)
	}
}

func fdct1D(d *[BlockSize]float64, off, stride int) {
	p := func(k int) *float64 { return &d[off+k*stride] }

	tmp0 := *p(0) + *p(7)
	tmp7 := *p(0) - *p(7)
	tmp1 := *p(1) + *p(6)
	tmp6 := *p(1) - *p(6)
	tmp2 := *p(2) + *p(5)
	tmp5 := *p(2) - *p(5)
	tmp3 := *p(3) + *p(4)
	tmp4 := *p(3) - *p(4)

	// Even part.
	tmp10 := tmp0 + tmp3
	tmp13 := tmp0 - tmp3
	tmp11 := tmp1 + tmp2
	tmp12 := tmp1 - tmp2

	*p(0) = tmp10 + tmp11
	*p(4) = tmp10 - tmp11

	z1 := (tmp12 + tmp13) * 0.707106781
	*p(2) = tmp13 + z1
	*p(6) = tmp13 - z1

	// Odd part.
	tmp10 = tmp4 + tmp5
	tmp11 = tmp5 + tmp6
	tmp12 = tmp6 + tmp7

	z5 := (tmp10 - tmp12) * 0.382683433
	z2 := 0.541196100*tmp10 + z5
	z4 := 1.306562965*tmp12 + z5
	z3 := tmp11 * 0.707106781

	z11 := tmp7 + z3
	z13 := tmp7 - z3

	*p(5) = z13 + z2
	*p(3) = z13 - z2
	*p(1) = z11 + z4
	*p(7) = z11 - z4
}

// quantize divides the scaled transform output by the quantizers and stores
// the result in zig-zag order. The +16384.5 bias rounds to nearest for both
// signs before truncation.
func quantize(d *[BlockSize]float64, recip *[BlockSize]float64, b *Block) {
	for i := 0; i < BlockSize; i++ {
		v := int32(d[i]*recip[i]+16384.5) - 16384
		if i == 0 {
			v = clampCoef(v, 2047)
		} else {
			v = clampCoef(v, 1023)
		}
		b[zigzag[i]] = v
	}
}

func clampCoef(v, limit int32) int32 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}
