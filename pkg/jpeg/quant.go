package jpeg

// BlockSize is the number of coefficients in an 8x8 block.
const BlockSize = 64

// DefaultScale is the quantization scale used when none is requested. At
// scale 1 every quantizer clamps to 1, so re-encoding is close to lossless.
const DefaultScale = 1

// zigzag maps a natural (row-major) block index to its zig-zag position.
var zigzag = [BlockSize]int{
	0, 1, 5, 6, 14, 15, 27, 28,
	2, 4, 7, 13, 16, 26, 29, 42,
	3, 8, 12, 17, 25, 30, 41, 43,
	9, 11, 18, 24, 31, 40, 44, 53,
	10, 19, 23, 32, 39, 45, 52, 54,
	20, 22, 33, 38, 46, 51, 55, 60,
	21, 34, 37, 47, 50, 56, 59, 61,
	35, 36, 48, 49, 57, 58, 62, 63,
}

// unzig maps a zig-zag position to its natural block index.
var unzig = [BlockSize]int{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

// LuminanceBase and ChrominanceBase are the Annex K.1 tables in natural order.
var (
	LuminanceBase = [BlockSize]uint16{
		16, 11, 10, 16, 24, 40, 51, 61,
		12, 12, 14, 19, 26, 58, 60, 55,
		14, 13, 16, 24, 40, 57, 69, 56,
		14, 17, 22, 29, 51, 87, 80, 62,
		18, 22, 37, 56, 68, 109, 103, 77,
		24, 35, 55, 64, 81, 104, 113, 92,
		49, 64, 78, 87, 103, 121, 120, 101,
		72, 92, 95, 98, 112, 100, 103, 99,
	}
	ChrominanceBase = [BlockSize]uint16{
		17, 18, 24, 47, 99, 99, 99, 99,
		18, 21, 26, 66, 99, 99, 99, 99,
		24, 26, 56, 99, 99, 99, 99, 99,
		47, 66, 99, 99, 99, 99, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
	}
)

// QuantTable holds 64 quantizers in zig-zag order, the order in which DQT
// segments carry them and in which Block stores coefficients.
type QuantTable [BlockSize]uint16

// NewQuantTable scales a natural-order base table by scale/100 and stores it
// in zig-zag order. Each quantizer is rounded and clamped to [1, 255].
func NewQuantTable(base *[BlockSize]uint16, scale int) *QuantTable {
	var q QuantTable
	for i, b := range base {
		v := (int(b)*scale + 50) / 100
		if v < 1 {
			v = 1
		} else if v > 255 {
			v = 255
		}
		q[zigzag[i]] = uint16(v)
	}
	return &q
}

// Natural returns the quantizer for the coefficient at natural index i.
func (q *QuantTable) Natural(i int) uint16 {
	return q[zigzag[i]]
}

// dequantize multiplies a zig-zag ordered block by q and de-zig-zags the
// result into natural order.
func dequantize(b *Block, q *QuantTable, out *[BlockSize]int32) {
	for k := 0; k < BlockSize; k++ {
		out[unzig[k]] = b[k] * int32(q[k])
	}
}

// reciprocals returns 1/(q*aan[row]*aan[col]*8) per natural index. The
// forward transform leaves its output scaled by those factors.
func (q *QuantTable) reciprocals() *[BlockSize]float64 {
	var t [BlockSize]float64
	for i := 0; i < BlockSize; i++ {
		t[i] = 1 / (float64(q.Natural(i)) * aanScale[i/8] * aanScale[i%8] * 8)
	}
	return &t
}
