package jpeg

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/bits"

	"github.com/andresmejia3/hide/v2/pkg/raster"
)

// Subsampling selects the chroma sampling of an encoded frame.
type Subsampling int

const (
	Subsample444 Subsampling = iota
	Subsample420
)

func (s Subsampling) String() string {
	switch s {
	case Subsample444:
		return "4:4:4"
	case Subsample420:
		return "4:2:0"
	}
	return fmt.Sprintf("Subsampling(%d)", int(s))
}

// ParseSubsampling accepts "4:4:4", "444", "4:2:0" and "420".
func ParseSubsampling(s string) (Subsampling, error) {
	switch s {
	case "4:4:4", "444", "":
		return Subsample444, nil
	case "4:2:0", "420":
		return Subsample420, nil
	}
	return 0, fmt.Errorf("unknown chroma subsampling %q", s)
}

// MaxScale bounds Options.Scale; every quantizer saturates at 255 well before.
const MaxScale = 5000

// Options are the encoding parameters for FromRaster.
type Options struct {
	// Scale multiplies the Annex K.1 tables by Scale/100. Zero means DefaultScale.
	Scale       int
	Subsampling Subsampling
}

// FromRaster converts an RGB or RGBA raster (alpha is dropped) into a
// quantized three-component frame. Edge blocks are padded by replicating
// the last column and row.
func FromRaster(r *raster.Raster, o *Options) (*Frame, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	scale, sub := DefaultScale, Subsample444
	if o != nil {
		if o.Scale != 0 {
			scale = o.Scale
		}
		sub = o.Subsampling
	}
	if scale < 1 || scale > MaxScale {
		return nil, fmt.Errorf("quantization scale %d out of range [1, %d]", scale, MaxScale)
	}
	if sub != Subsample444 && sub != Subsample420 {
		return nil, fmt.Errorf("unknown chroma subsampling %v", sub)
	}

	lf := 1
	if sub == Subsample420 {
		lf = 2
	}
	f := &Frame{
		Width:  r.Width,
		Height: r.Height,
		Components: []*Component{
			{ID: 1, H: lf, V: lf, Tq: 0},
			{ID: 2, H: 1, V: 1, Tq: 1},
			{ID: 3, H: 1, V: 1, Tq: 1},
		},
	}
	f.Quant[0] = NewQuantTable(&LuminanceBase, scale)
	f.Quant[1] = NewQuantTable(&ChrominanceBase, scale)
	f.layout()

	w, h := r.Width, r.Height
	yp := make([]int32, w*h)
	cbp := make([]int32, w*h)
	crp := make([]int32, w*h)
	for y := 0; y < h; y++ {
		row := r.Rows[y]
		for x := 0; x < w; x++ {
			p := row[x*r.BPP:]
			yp[y*w+x], cbp[y*w+x], crp[y*w+x] = rgbToYCbCr(p[0], p[1], p[2])
		}
	}
	cw, ch := w, h
	if sub == Subsample420 {
		cbp, cw, ch = downsample(cbp, w, h)
		crp, _, _ = downsample(crp, w, h)
	}

	planes := [][]int32{yp, cbp, crp}
	dims := [][2]int{{w, h}, {cw, ch}, {cw, ch}}
	var samples [BlockSize]float64
	for i, c := range f.Components {
		recip := f.Quant[c.Tq].reciprocals()
		pw, ph := dims[i][0], dims[i][1]
		for by := 0; by < c.BlocksHigh; by++ {
			for bx := 0; bx < c.BlocksWide; bx++ {
				for y := 0; y < 8; y++ {
					sy := min(by*8+y, ph-1)
					for x := 0; x < 8; x++ {
						sx := min(bx*8+x, pw-1)
						samples[y*8+x] = float64(planes[i][sy*pw+sx])
					}
				}
				forwardDCT(&samples)
				quantize(&samples, recip, c.Block(bx, by))
			}
		}
	}
	return f, nil
}

// downsample averages 2x2 neighbourhoods, replicating the last row and column.
func downsample(p []int32, w, h int) ([]int32, int, int) {
	dw, dh := ceilDiv(w, 2), ceilDiv(h, 2)
	out := make([]int32, dw*dh)
	for y := 0; y < dh; y++ {
		y0, y1 := 2*y, min(2*y+1, h-1)
		for x := 0; x < dw; x++ {
			x0, x1 := 2*x, min(2*x+1, w-1)
			s := p[y0*w+x0] + p[y0*w+x1] + p[y1*w+x0] + p[y1*w+x1]
			// Round half away from zero on the signed sum.
			if s >= 0 {
				out[y*dw+x] = (s + 2) / 4
			} else {
				out[y*dw+x] = (s - 2) / 4
			}
		}
	}
	return out, dw, dh
}

// Encode writes r as a baseline JPEG.
func Encode(w io.Writer, r *raster.Raster, o *Options) error {
	f, err := FromRaster(r, o)
	if err != nil {
		return err
	}
	return f.Encode(w)
}

var errCoefficientRange = errors.New("coefficient out of baseline range")

// Encode writes the frame as a single-scan baseline JPEG: SOI, APP0 (JFIF),
// DQT, SOF0, DHT with the Annex K.3 tables, DRI when RestartInterval is set,
// SOS, entropy-coded data, EOI.
func (f *Frame) Encode(w io.Writer) error {
	if len(f.Components) != 1 && len(f.Components) != 3 {
		return fmt.Errorf("cannot encode a frame with %d components", len(f.Components))
	}
	if f.Width < 1 || f.Height < 1 || f.Width > 0xFFFF || f.Height > 0xFFFF {
		return fmt.Errorf("cannot encode a %dx%d frame", f.Width, f.Height)
	}
	if f.RestartInterval < 0 || f.RestartInterval > 0xFFFF {
		return fmt.Errorf("restart interval %d out of range", f.RestartInterval)
	}

	var buf bytes.Buffer
	buf.Write([]byte{0xFF, soiMarker})
	writeAPP0(&buf)
	if err := f.writeDQT(&buf); err != nil {
		return err
	}
	f.writeSOF0(&buf)
	writeDHT(&buf)
	if f.RestartInterval > 0 {
		writeMarkerHeader(&buf, driMarker, 4)
		buf.Write([]byte{byte(f.RestartInterval >> 8), byte(f.RestartInterval)})
	}
	f.writeSOS(&buf)
	if err := f.writeScan(&buf); err != nil {
		return err
	}
	buf.Write([]byte{0xFF, eoiMarker})

	_, err := buf.WriteTo(w)
	return err
}

func writeMarkerHeader(buf *bytes.Buffer, marker byte, length int) {
	buf.Write([]byte{0xFF, marker, byte(length >> 8), byte(length)})
}

func writeAPP0(buf *bytes.Buffer) {
	writeMarkerHeader(buf, app0Marker, 16)
	buf.WriteString("JFIF\x00")
	buf.Write([]byte{
		1, 1, // version 1.01
		0,    // no density units
		0, 1, // x density
		0, 1, // y density
		0, 0, // no thumbnail
	})
}

func (f *Frame) writeDQT(buf *bytes.Buffer) error {
	var used []uint8
	for _, c := range f.Components {
		if f.Quant[c.Tq] == nil {
			return fmt.Errorf("component %d uses undefined quantization table %d", c.ID, c.Tq)
		}
		seen := false
		for _, u := range used {
			seen = seen || u == c.Tq
		}
		if !seen {
			used = append(used, c.Tq)
		}
	}
	writeMarkerHeader(buf, dqtMarker, 2+len(used)*(1+BlockSize))
	for _, tq := range used {
		buf.WriteByte(tq)
		for _, v := range f.Quant[tq] {
			if v > 255 {
				return fmt.Errorf("quantization table %d does not fit 8 bits", tq)
			}
			buf.WriteByte(byte(v))
		}
	}
	return nil
}

func (f *Frame) writeSOF0(buf *bytes.Buffer) {
	writeMarkerHeader(buf, sof0Marker, 8+3*len(f.Components))
	buf.Write([]byte{8, byte(f.Height >> 8), byte(f.Height), byte(f.Width >> 8), byte(f.Width), byte(len(f.Components))})
	for _, c := range f.Components {
		buf.Write([]byte{c.ID, byte(c.H<<4 | c.V), c.Tq})
	}
}

var stdTables = []struct {
	class, index byte
	table        *HuffmanTable
}{
	{0, 0, StdLuminanceDC},
	{1, 0, StdLuminanceAC},
	{0, 1, StdChrominanceDC},
	{1, 1, StdChrominanceAC},
}

func writeDHT(buf *bytes.Buffer) {
	n := 2
	for _, t := range stdTables {
		n += 17 + len(t.table.values)
	}
	writeMarkerHeader(buf, dhtMarker, n)
	for _, t := range stdTables {
		buf.WriteByte(t.class<<4 | t.index)
		buf.Write(t.table.counts[:])
		buf.Write(t.table.values)
	}
}

// tableIndex selects the luminance tables for the first component and the
// chrominance tables for the others.
func tableIndex(i int) byte {
	if i == 0 {
		return 0
	}
	return 1
}

func (f *Frame) writeSOS(buf *bytes.Buffer) {
	writeMarkerHeader(buf, sosMarker, 6+2*len(f.Components))
	buf.WriteByte(byte(len(f.Components)))
	for i, c := range f.Components {
		t := tableIndex(i)
		buf.Write([]byte{c.ID, t<<4 | t})
	}
	buf.Write([]byte{0, 63, 0})
}

func (f *Frame) writeScan(buf *bytes.Buffer) error {
	bw := &bitWriter{buf: buf}
	pred := make([]int32, len(f.Components))
	index := make(map[*Component]int, len(f.Components))
	for i, c := range f.Components {
		index[c] = i
	}
	encode := func(c *Component, b *Block) error {
		i := index[c]
		dc, ac := StdLuminanceDC, StdLuminanceAC
		if tableIndex(i) == 1 {
			dc, ac = StdChrominanceDC, StdChrominanceAC
		}
		return encodeBlock(bw, b, &pred[i], dc, ac)
	}

	mcu := 0
	for my := 0; my < f.mcusHigh; my++ {
		for mx := 0; mx < f.mcusWide; mx++ {
			if ri := f.RestartInterval; ri > 0 && mcu > 0 && mcu%ri == 0 {
				bw.flush()
				buf.Write([]byte{0xFF, rst0Marker + byte((mcu/ri-1)&7)})
				for i := range pred {
					pred[i] = 0
				}
			}
			if err := f.eachBlockInMCU(mx, my, encode); err != nil {
				return err
			}
			mcu++
		}
	}
	bw.flush()
	return nil
}

// category returns the SSSS size of v and its additional bits: v itself
// when positive, v-1 in two's complement (masked to the size) when negative.
func category(v int32) (uint8, uint32) {
	a := v
	if a < 0 {
		a = -a
		v--
	}
	n := uint8(bits.Len32(uint32(a)))
	return n, uint32(v) & (1<<n - 1)
}

func encodeBlock(bw *bitWriter, b *Block, pred *int32, dc, ac *HuffmanTable) error {
	diff := b[0] - *pred
	*pred = b[0]
	n, v := category(diff)
	if n > 11 || !bw.putCode(dc, n) {
		return fmt.Errorf("%w: DC difference %d", errCoefficientRange, diff)
	}
	bw.put(v, n)

	end := BlockSize - 1
	for end > 0 && b[end] == 0 {
		end--
	}
	run := 0
	for k := 1; k <= end; k++ {
		if b[k] == 0 {
			run++
			continue
		}
		for run > 15 {
			bw.putCode(ac, 0xF0)
			run -= 16
		}
		n, v := category(b[k])
		if n > 10 || !bw.putCode(ac, uint8(run<<4)|n) {
			return fmt.Errorf("%w: AC coefficient %d", errCoefficientRange, b[k])
		}
		bw.put(v, n)
		run = 0
	}
	if end != BlockSize-1 {
		bw.putCode(ac, 0x00)
	}
	return nil
}
