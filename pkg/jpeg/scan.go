package jpeg

// decodeScan Huffman-decodes the entropy-coded segment following SOS into
// the frame's coefficient blocks and leaves d.pos at the next marker.
func (d *decoder) decodeScan() error {
	f := d.frame
	br := newBitReader(d.data, d.pos)
	pred := make([]int32, len(f.Components))
	expectedRST := 0

	mcu := 0
	for my := 0; my < f.mcusHigh; my++ {
		for mx := 0; mx < f.mcusWide; mx++ {
			if d.ri > 0 && mcu > 0 && mcu%d.ri == 0 {
				if err := d.restart(br, expectedRST); err != nil {
					return err
				}
				expectedRST = (expectedRST + 1) & 7
				for i := range pred {
					pred[i] = 0
				}
			}
			for i, c := range f.Components {
				dc, ac := d.dc[d.td[i]], d.ac[d.ta[i]]
				for v := 0; v < c.V; v++ {
					for h := 0; h < c.H; h++ {
						if err := decodeBlock(br, c.Block(mx*c.H+h, my*c.V+v), &pred[i], dc, ac); err != nil {
							return err
						}
					}
				}
			}
			mcu++
		}
	}
	d.pos = br.pos
	return nil
}

// restart drops the partial byte, consumes the expected RSTn marker and
// resumes reading after it. Stray bytes before the marker are skipped.
func (d *decoder) restart(br *bitReader, expected int) error {
	br.reset()
	pos := br.pos
	for pos < len(d.data) && !(d.data[pos] == 0xFF && pos+1 < len(d.data) && d.data[pos+1] != 0x00 && d.data[pos+1] != 0xFF) {
		pos++
	}
	if pos+1 >= len(d.data) {
		return truncated(pos)
	}
	m := d.data[pos+1]
	if m < rst0Marker || m > rst7Marker {
		return malformed(pos, "expected restart marker, found 0x%02X", m)
	}
	if int(m-rst0Marker) != expected {
		return malformed(pos, "restart marker RST%d out of sequence, want RST%d", m-rst0Marker, expected)
	}
	br.pos = pos + 2
	return nil
}

// decodeBlock decodes one block's DC difference and AC run/size symbols
// (F.2.2). 0x00 ends the block, 0xF0 skips 16 zeros.
func decodeBlock(br *bitReader, b *Block, pred *int32, dc, ac *HuffmanTable) error {
	t, err := dc.decode(br)
	if err != nil {
		return err
	}
	if t > 11 {
		return malformed(br.pos, "DC difference category %d out of range", t)
	}
	diff, err := br.receiveExtend(t)
	if err != nil {
		return err
	}
	*pred += diff
	b[0] = *pred

	for k := 1; k < BlockSize; {
		rs, err := ac.decode(br)
		if err != nil {
			return err
		}
		r, s := int(rs>>4), rs&15
		if s == 0 {
			if r != 15 {
				break
			}
			k += 16
			if k > BlockSize-1 {
				return malformed(br.pos, "zero run past the end of the block")
			}
			continue
		}
		k += r
		if k > BlockSize-1 {
			return malformed(br.pos, "coefficient index %d out of range", k)
		}
		v, err := br.receiveExtend(s)
		if err != nil {
			return err
		}
		b[k] = v
		k++
	}
	return nil
}
