package jpeg

import "bytes"

// bitReader reads MSB-first bits from entropy-coded data, dropping the 0x00
// stuffed after every 0xFF. It stops at the first marker and serves zero bits
// past it, so peek never fails; consume fails once it would use those bits.
type bitReader struct {
	data []byte
	pos  int

	acc   uint64
	nbits int
	fake  int // zero bits at the bottom of acc that are not stream data
	stop  bool
}

func newBitReader(data []byte, pos int) *bitReader {
	return &bitReader{data: data, pos: pos}
}

func (br *bitReader) fill(n int) {
	for br.nbits < n {
		var b byte
		if !br.stop {
			switch {
			case br.pos >= len(br.data):
				br.stop = true
			case br.data[br.pos] != 0xFF:
				b = br.data[br.pos]
				br.pos++
			case br.pos+1 < len(br.data) && br.data[br.pos+1] == 0x00:
				b = 0xFF
				br.pos += 2
			default:
				// A marker; pos stays on its 0xFF.
				br.stop = true
			}
		}
		if br.stop {
			br.fake += 8
		}
		br.acc = br.acc<<8 | uint64(b)
		br.nbits += 8
	}
}

// peek returns the next n bits (1..16) without consuming them.
func (br *bitReader) peek(n int) uint32 {
	br.fill(n)
	return uint32(br.acc>>(br.nbits-n)) & (1<<n - 1)
}

func (br *bitReader) consume(n int) error {
	br.fill(n)
	if br.nbits-br.fake < n {
		return truncated(br.pos)
	}
	br.nbits -= n
	return nil
}

func (br *bitReader) get(n int) (int32, error) {
	v := br.peek(n)
	if err := br.consume(n); err != nil {
		return 0, err
	}
	return int32(v), nil
}

// receiveExtend reads an s-bit magnitude and sign-extends it (F.2.2.1).
func (br *bitReader) receiveExtend(s uint8) (int32, error) {
	if s == 0 {
		return 0, nil
	}
	if s > maxCodeLength {
		return 0, malformed(br.pos, "coefficient size %d out of range", s)
	}
	v, err := br.get(int(s))
	if err != nil {
		return 0, err
	}
	if v < 1<<(s-1) {
		v += (-1 << s) + 1
	}
	return v, nil
}

// exhausted reports whether bits past the end of the entropy data are buffered.
func (br *bitReader) exhausted() bool { return br.fake > 0 }

// reset drops buffered bits, as required at restart boundaries.
func (br *bitReader) reset() {
	br.acc, br.nbits, br.fake, br.stop = 0, 0, 0, false
}

// bitWriter packs MSB-first bits into bytes, stuffing a 0x00 after each 0xFF.
type bitWriter struct {
	buf   *bytes.Buffer
	acc   uint32
	nbits uint
}

func (bw *bitWriter) put(value uint32, length uint8) {
	if length == 0 {
		return
	}
	bw.acc = bw.acc<<length | value&(1<<length-1)
	bw.nbits += uint(length)
	for bw.nbits >= 8 {
		b := byte(bw.acc >> (bw.nbits - 8))
		bw.buf.WriteByte(b)
		if b == 0xFF {
			bw.buf.WriteByte(0x00)
		}
		bw.nbits -= 8
	}
}

func (bw *bitWriter) putCode(h *HuffmanTable, symbol uint8) bool {
	code, length := h.Encoding(symbol)
	if length == 0 {
		return false
	}
	bw.put(uint32(code), length)
	return true
}

// flush pads the last partial byte with 1 bits.
func (bw *bitWriter) flush() {
	if bw.nbits > 0 {
		pad := uint8(8 - bw.nbits)
		bw.put(1<<pad-1, pad)
	}
}
