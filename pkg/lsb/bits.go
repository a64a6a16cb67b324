package lsb

func getBitUint8(num uint8, index int) int {
	mask := uint8(1 << index)
	if num&mask == 0 {
		return 0
	}
	return 1
}

func setBitUint8(num uint8, index int) uint8 {
	mask := uint8(1 << index)
	return num | mask
}

// Pixel channel layout of one carrier byte c: the top 3 bits go to channel
// 0, the next 2 to channel 1 and the low 3 to channel 2.
func putPixelByte(px []byte, c byte) {
	px[0] = px[0]&0xF8 | (c&0xE0)>>5
	px[1] = px[1]&0xFC | (c&0x18)>>3
	px[2] = px[2]&0xF8 | c&0x07
}

func pixelByte(px []byte) byte {
	return (px[0]&0x07)<<5 | (px[1]&0x03)<<3 | px[2]&0x07
}

// Coefficients carry one bit in the least significant bit of their
// magnitude, so |v| > 1 still holds after the write.
func magnitudeLSB(v int32) int {
	if v < 0 {
		v = -v
	}
	return int(v & 1)
}

func setMagnitudeLSB(v int32, bit int) int32 {
	if v < 0 {
		return -((-v)&^1 | int32(bit))
	}
	return v&^1 | int32(bit)
}

func eligible(v int32) bool {
	return v > 1 || v < -1
}
