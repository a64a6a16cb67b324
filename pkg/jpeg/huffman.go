package jpeg

import "fmt"

const maxCodeLength = 16

// Code is one canonical Huffman assignment.
type Code struct {
	Code   uint16
	Length uint8
	Value  uint8
}

// HuffmanTable is a canonical JPEG Huffman table. It is immutable once built.
type HuffmanTable struct {
	counts [maxCodeLength]uint8
	values []uint8
	codes  []Code

	// Decoding: codes of length l span [minCode[l], maxCode[l]] and their
	// symbols start at values[valPtr[l]]. maxCode[l] is -1 when unused.
	minCode [maxCodeLength + 1]int32
	maxCode [maxCodeLength + 1]int32
	valPtr  [maxCodeLength + 1]int

	// Encoding, indexed by symbol. A zero length means the symbol is absent.
	encCode [256]uint16
	encLen  [256]uint8
}

// NewHuffmanTable assigns canonical codes (Annex C) to values. counts[i] is
// the number of codes of length i+1.
func NewHuffmanTable(counts [maxCodeLength]uint8, values []uint8) (*HuffmanTable, error) {
	total := 0
	for _, c := range counts {
		total += int(c)
	}
	if total > 256 {
		return nil, fmt.Errorf("huffman table has %d codes, more than 256", total)
	}
	if total != len(values) {
		return nil, fmt.Errorf("huffman table declares %d codes but lists %d symbols", total, len(values))
	}

	h := &HuffmanTable{
		counts: counts,
		values: append([]uint8(nil), values...),
		codes:  make([]Code, 0, total),
	}

	code, k := int32(0), 0
	for l := 1; l <= maxCodeLength; l++ {
		n := int(counts[l-1])
		if n == 0 {
			h.maxCode[l] = -1
		} else {
			h.valPtr[l] = k
			h.minCode[l] = code
			for i := 0; i < n; i++ {
				v := values[k]
				if h.encLen[v] != 0 {
					return nil, fmt.Errorf("huffman symbol 0x%02x listed twice", v)
				}
				h.codes = append(h.codes, Code{Code: uint16(code), Length: uint8(l), Value: v})
				h.encCode[v] = uint16(code)
				h.encLen[v] = uint8(l)
				code++
				k++
			}
			h.maxCode[l] = code - 1
		}
		if code > 1<<l {
			return nil, fmt.Errorf("huffman codes of length %d overflow the code space", l)
		}
		code <<= 1
	}
	return h, nil
}

func mustHuffmanTable(counts [maxCodeLength]uint8, values []uint8) *HuffmanTable {
	h, err := NewHuffmanTable(counts, values)
	if err != nil {
		panic(err)
	}
	return h
}

// Codes returns the canonical (code, length, value) triples in assignment order.
func (h *HuffmanTable) Codes() []Code {
	return append([]Code(nil), h.codes...)
}

// Counts returns the code-length histogram the table was built from.
func (h *HuffmanTable) Counts() [maxCodeLength]uint8 { return h.counts }

// Values returns the symbols in code order.
func (h *HuffmanTable) Values() []uint8 { return append([]uint8(nil), h.values...) }

// Lookup returns the symbol coded by the given code of the given length.
func (h *HuffmanTable) Lookup(code uint16, length int) (uint8, bool) {
	if length < 1 || length > maxCodeLength {
		return 0, false
	}
	c := int32(code)
	if h.maxCode[length] < 0 || c < h.minCode[length] || c > h.maxCode[length] {
		return 0, false
	}
	return h.values[h.valPtr[length]+int(c-h.minCode[length])], true
}

// Encoding returns the code and length assigned to v, or a zero length.
func (h *HuffmanTable) Encoding(v uint8) (code uint16, length uint8) {
	return h.encCode[v], h.encLen[v]
}

// decode reads one symbol. It tries the shortest prefix first.
func (h *HuffmanTable) decode(br *bitReader) (uint8, error) {
	bits := br.peek(maxCodeLength)
	for l := 1; l <= maxCodeLength; l++ {
		code := int32(bits >> (maxCodeLength - l))
		if h.maxCode[l] >= 0 && code <= h.maxCode[l] && code >= h.minCode[l] {
			if err := br.consume(l); err != nil {
				return 0, err
			}
			return h.values[h.valPtr[l]+int(code-h.minCode[l])], nil
		}
	}
	if br.exhausted() {
		return 0, truncated(br.pos)
	}
	return 0, malformed(br.pos, "huffman code not found")
}

// Standard tables from Annex K.3.
var (
	StdLuminanceDC = mustHuffmanTable(
		[maxCodeLength]uint8{0, 1, 5, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0},
		[]uint8{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
	)
	StdLuminanceAC = mustHuffmanTable(
		[maxCodeLength]uint8{0, 2, 1, 3, 3, 2, 4, 3, 5, 5, 4, 4, 0, 0, 1, 125},
		[]uint8{
			0x01, 0x02, 0x03, 0x00, 0x04, 0x11, 0x05, 0x12,
			0x21, 0x31, 0x41, 0x06, 0x13, 0x51, 0x61, 0x07,
			0x22, 0x71, 0x14, 0x32, 0x81, 0x91, 0xa1, 0x08,
			0x23, 0x42, 0xb1, 0xc1, 0x15, 0x52, 0xd1, 0xf0,
			0x24, 0x33, 0x62, 0x72, 0x82, 0x09, 0x0a, 0x16,
			0x17, 0x18, 0x19, 0x1a, 0x25, 0x26, 0x27, 0x28,
			0x29, 0x2a, 0x34, 0x35, 0x36, 0x37, 0x38, 0x39,
			0x3a, 0x43, 0x44, 0x45, 0x46, 0x47, 0x48, 0x49,
			0x4a, 0x53, 0x54, 0x55, 0x56, 0x57, 0x58, 0x59,
			0x5a, 0x63, 0x64, 0x65, 0x66, 0x67, 0x68, 0x69,
			0x6a, 0x73, 0x74, 0x75, 0x76, 0x77, 0x78, 0x79,
			0x7a, 0x83, 0x84, 0x85, 0x86, 0x87, 0x88, 0x89,
			0x8a, 0x92, 0x93, 0x94, 0x95, 0x96, 0x97, 0x98,
			0x99, 0x9a, 0xa2, 0xa3, 0xa4, 0xa5, 0xa6, 0xa7,
			0xa8, 0xa9, 0xaa, 0xb2, 0xb3, 0xb4, 0xb5, 0xb6,
			0xb7, 0xb8, 0xb9, 0xba, 0xc2, 0xc3, 0xc4, 0xc5,
			0xc6, 0xc7, 0xc8, 0xc9, 0xca, 0xd2, 0xd3, 0xd4,
			0xd5, 0xd6, 0xd7, 0xd8, 0xd9, 0xda, 0xe1, 0xe2,
			0xe3, 0xe4, 0xe5, 0xe6, 0xe7, 0xe8, 0xe9, 0xea,
			0xf1, 0xf2, 0xf3, 0xf4, 0xf5, 0xf6, 0xf7, 0xf8,
			0xf9, 0xfa,
		},
	)
	StdChrominanceDC = mustHuffmanTable(
		[maxCodeLength]uint8{0, 3, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0, 0},
		[]uint8{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
	)
	StdChrominanceAC = mustHuffmanTable(
		[maxCodeLength]uint8{0, 2, 1, 2, 4, 4, 3, 4, 7, 5, 4, 4, 0, 1, 2, 119},
		[]uint8{
			0x00, 0x01, 0x02, 0x03, 0x11, 0x04, 0x05, 0x21,
			0x31, 0x06, 0x12, 0x41, 0x51, 0x07, 0x61, 0x71,
			0x13, 0x22, 0x32, 0x81, 0x08, 0x14, 0x42, 0x91,
			0xa1, 0xb1, 0xc1, 0x09, 0x23, 0x33, 0x52, 0xf0,
			0x15, 0x62, 0x72, 0xd1, 0x0a, 0x16, 0x24, 0x34,
			0xe1, 0x25, 0xf1, 0x17, 0x18, 0x19, 0x1a, 0x26,
			0x27, 0x28, 0x29, 0x2a, 0x35, 0x36, 0x37, 0x38,
			0x39, 0x3a, 0x43, 0x44, 0x45, 0x46, 0x47, 0x48,
			0x49, 0x4a, 0x53, 0x54, 0x55, 0x56, 0x57, 0x58,
			0x59, 0x5a, 0x63, 0x64, 0x65, 0x66, 0x67, 0x68,
			0x69, 0x6a, 0x73, 0x74, 0x75, 0x76, 0x77, 0x78,
			0x79, 0x7a, 0x82, 0x83, 0x84, 0x85, 0x86, 0x87,
			0x88, 0x89, 0x8a, 0x92, 0x93, 0x94, 0x95, 0x96,
			0x97, 0x98, 0x99, 0x9a, 0xa2, 0xa3, 0xa4, 0xa5,
			0xa6, 0xa7, 0xa8, 0xa9, 0xaa, 0xb2, 0xb3, 0xb4,
			0xb5, 0xb6, 0xb7, 0xb8, 0xb9, 0xba, 0xc2, 0xc3,
			0xc4, 0xc5, 0xc6, 0xc7, 0xc8, 0xc9, 0xca, 0xd2,
			0xd3, 0xd4, 0xd5, 0xd6, 0xd7, 0xd8, 0xd9, 0xda,
			0xe2, 0xe3, 0xe4, 0xe5, 0xe6, 0xe7, 0xe8, 0xe9,
			0xea, 0xf2, 0xf3, 0xf4, 0xf5, 0xf6, 0xf7, 0xf8,
			0xf9, 0xfa,
		},
	)
)
