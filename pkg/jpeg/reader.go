package jpeg

import (
	"fmt"
	"io"

	"github.com/andresmejia3/hide/v2/pkg/raster"
	"github.com/rs/zerolog/log"
)

const (
	sof0Marker  = 0xC0 // Baseline DCT
	sof1Marker  = 0xC1 // Extended sequential, Huffman
	sof2Marker  = 0xC2 // Progressive, Huffman
	sof3Marker  = 0xC3 // Lossless, Huffman
	dhtMarker   = 0xC4
	dacMarker   = 0xCC
	rst0Marker  = 0xD0
	rst7Marker  = 0xD7
	soiMarker   = 0xD8
	eoiMarker   = 0xD9
	sosMarker   = 0xDA
	dqtMarker   = 0xDB
	dnlMarker   = 0xDC
	driMarker   = 0xDD
	dhpMarker   = 0xDE
	expMarker   = 0xDF
	app0Marker  = 0xE0
	app15Marker = 0xEF
	comMarker   = 0xFE
)

// MaxPixels bounds the frame size accepted by the decoder. Every block of
// a frame is held in memory.
const MaxPixels = 1 << 27

type decoder struct {
	data  []byte
	pos   int
	frame *Frame

	dc, ac [4]*HuffmanTable
	quant  [4]*QuantTable
	ri     int

	// Scan bindings, parallel to frame.Components.
	td, ta []uint8
}

// ReadFrame parses a baseline JPEG stream into its quantized coefficients.
func ReadFrame(r io.Reader) (*Frame, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	d := &decoder{data: data}
	if err := d.decode(); err != nil {
		return nil, err
	}
	return d.frame, nil
}

// Decode reads a baseline JPEG stream and renders it as an RGB raster.
func Decode(r io.Reader) (*raster.Raster, error) {
	f, err := ReadFrame(r)
	if err != nil {
		return nil, err
	}
	return f.Raster()
}

func (d *decoder) decode() error {
	if len(d.data) < 2 || d.data[0] != 0xFF || d.data[1] != soiMarker {
		return malformed(0, "missing SOI marker")
	}
	d.pos = 2

	scanned := false
	for {
		if d.pos >= len(d.data) {
			if scanned {
				log.Debug().Int("offset", d.pos).Msg("JPEG stream ends without EOI")
				return nil
			}
			return truncated(d.pos)
		}
		if d.data[d.pos] != 0xFF {
			if scanned {
				// Tolerate padding between the scan and EOI.
				d.pos++
				continue
			}
			return malformed(d.pos, "expected marker, found 0x%02X", d.data[d.pos])
		}
		// Fill bytes may precede a marker.
		for d.pos < len(d.data) && d.data[d.pos] == 0xFF {
			d.pos++
		}
		if d.pos >= len(d.data) {
			return truncated(d.pos)
		}
		markerOffset := d.pos - 1
		marker := d.data[d.pos]
		d.pos++

		switch {
		case marker == eoiMarker:
			if !scanned {
				return malformed(markerOffset, "EOI before any scan")
			}
			return nil

		case marker == soiMarker:
			return malformed(markerOffset, "unexpected SOI marker")

		case marker >= rst0Marker && marker <= rst7Marker:
			return malformed(markerOffset, "restart marker outside a scan")

		case marker == sof0Marker || marker == sof1Marker:
			if d.frame != nil {
				return unsupported(markerOffset, "multiple frames")
			}
			if err := d.processSOF(); err != nil {
				return err
			}

		case marker == sof2Marker:
			return unsupported(markerOffset, "progressive DCT")
		case marker == sof3Marker:
			return unsupported(markerOffset, "lossless coding")
		case marker >= 0xC5 && marker <= 0xC7, marker >= 0xCD && marker <= 0xCF:
			return unsupported(markerOffset, "hierarchical coding")
		case marker >= 0xC9 && marker <= 0xCB, marker == dacMarker:
			return unsupported(markerOffset, "arithmetic coding")
		case marker == dnlMarker:
			return unsupported(markerOffset, "DNL marker")
		case marker == dhpMarker || marker == expMarker:
			return unsupported(markerOffset, "hierarchical coding")

		case marker == dhtMarker:
			if err := d.processDHT(); err != nil {
				return err
			}
		case marker == dqtMarker:
			if err := d.processDQT(); err != nil {
				return err
			}
		case marker == driMarker:
			if err := d.processDRI(); err != nil {
				return err
			}

		case marker == sosMarker:
			if d.frame == nil {
				return malformed(markerOffset, "SOS before SOF")
			}
			if scanned {
				return unsupported(markerOffset, "multiple scans")
			}
			if err := d.processSOS(); err != nil {
				return err
			}
			if err := d.decodeScan(); err != nil {
				return err
			}
			scanned = true

		case marker >= app0Marker && marker <= app15Marker, marker == comMarker:
			if _, err := d.segment(); err != nil {
				return err
			}

		default:
			return unsupported(markerOffset, fmt.Sprintf("marker 0x%02X", marker))
		}
	}
}

// segment returns the payload of the marker segment at d.pos and advances
// past it. The length field counts itself.
func (d *decoder) segment() ([]byte, error) {
	if d.pos+2 > len(d.data) {
		return nil, truncated(d.pos)
	}
	n := int(d.data[d.pos])<<8 | int(d.data[d.pos+1])
	if n < 2 {
		return nil, malformed(d.pos, "segment length %d", n)
	}
	if d.pos+n > len(d.data) {
		return nil, truncated(len(d.data))
	}
	p := d.data[d.pos+2 : d.pos+n]
	d.pos += n
	return p, nil
}

func (d *decoder) processSOF() error {
	start := d.pos
	p, err := d.segment()
	if err != nil {
		return err
	}
	if len(p) < 6 {
		return malformed(start, "SOF segment too short")
	}
	if p[0] != 8 {
		return unsupported(start, "sample precision other than 8 bits")
	}
	height := int(p[1])<<8 | int(p[2])
	width := int(p[3])<<8 | int(p[4])
	nc := int(p[5])
	if height == 0 {
		return unsupported(start, "height defined by DNL")
	}
	if width == 0 {
		return malformed(start, "zero image width")
	}
	if nc != 1 && nc != 3 {
		return unsupported(start, "component count other than 1 or 3")
	}
	if len(p) != 6+3*nc {
		return malformed(start, "SOF length does not match %d components", nc)
	}
	if int64(width)*int64(height) > MaxPixels {
		return unsupported(start, fmt.Sprintf("dimensions %dx%d above %d pixels", width, height, MaxPixels))
	}

	f := &Frame{Width: width, Height: height}
	for i := 0; i < nc; i++ {
		b := p[6+3*i:]
		c := &Component{ID: b[0], H: int(b[1] >> 4), V: int(b[1] & 15), Tq: b[2]}
		for _, o := range f.Components {
			if o.ID == c.ID {
				return malformed(start, "duplicate component id %d", c.ID)
			}
		}
		if c.Tq > 3 {
			return malformed(start, "quantization table index %d out of range", c.Tq)
		}
		if c.H < 1 || c.H > 4 || c.V < 1 || c.V > 4 {
			return malformed(start, "invalid sampling factors %dx%d", c.H, c.V)
		}
		if nc == 3 {
			if i == 0 && (c.H > 2 || c.V > 2) {
				return unsupported(start, "luma sampling factors above 2")
			}
			if i > 0 && (c.H != 1 || c.V != 1) {
				return unsupported(start, "chroma sampling factors above 1")
			}
		}
		f.Components = append(f.Components, c)
	}
	f.layout()
	d.frame = f

	log.Debug().Int("width", width).Int("height", height).Int("components", nc).Msg("Parsed JPEG frame header")
	return nil
}

func (d *decoder) processDHT() error {
	start := d.pos
	p, err := d.segment()
	if err != nil {
		return err
	}
	for len(p) > 0 {
		if len(p) < 17 {
			return malformed(start, "DHT segment too short")
		}
		tc, th := p[0]>>4, p[0]&15
		if tc > 1 || th > 3 {
			return malformed(start, "bad Huffman table class %d or index %d", tc, th)
		}
		var counts [maxCodeLength]uint8
		copy(counts[:], p[1:17])
		n := 0
		for _, c := range counts {
			n += int(c)
		}
		if n > 256 || len(p) < 17+n {
			return malformed(start, "bad Huffman table length")
		}
		h, err := NewHuffmanTable(counts, p[17:17+n])
		if err != nil {
			return malformed(start, "%v", err)
		}
		if tc == 0 {
			d.dc[th] = h
		} else {
			d.ac[th] = h
		}
		p = p[17+n:]
	}
	return nil
}

func (d *decoder) processDQT() error {
	start := d.pos
	p, err := d.segment()
	if err != nil {
		return err
	}
	for len(p) > 0 {
		pq, tq := p[0]>>4, p[0]&15
		if pq != 0 {
			return unsupported(start, "16-bit quantization tables")
		}
		if tq > 3 {
			return malformed(start, "quantization table index %d out of range", tq)
		}
		if len(p) < 1+BlockSize {
			return malformed(start, "DQT segment too short")
		}
		var q QuantTable
		for k := 0; k < BlockSize; k++ {
			q[k] = uint16(p[1+k])
			if q[k] == 0 {
				return malformed(start, "zero quantizer in table %d", tq)
			}
		}
		d.quant[tq] = &q
		p = p[1+BlockSize:]
	}
	return nil
}

func (d *decoder) processDRI() error {
	start := d.pos
	p, err := d.segment()
	if err != nil {
		return err
	}
	if len(p) != 2 {
		return malformed(start, "DRI segment length %d", len(p)+2)
	}
	d.ri = int(p[0])<<8 | int(p[1])
	return nil
}

func (d *decoder) processSOS() error {
	start := d.pos
	p, err := d.segment()
	if err != nil {
		return err
	}
	if len(p) < 1 {
		return malformed(start, "SOS segment too short")
	}
	ns := int(p[0])
	if len(p) != 4+2*ns {
		return malformed(start, "SOS length does not match %d components", ns)
	}
	f := d.frame
	if ns != len(f.Components) {
		return unsupported(start, "scan covering a subset of the components")
	}

	d.td = make([]uint8, 0, ns)
	d.ta = make([]uint8, 0, ns)
	for i := 0; i < ns; i++ {
		id, tables := p[1+2*i], p[2+2*i]
		c := f.Components[i]
		if c.ID != id {
			known := false
			for _, fc := range f.Components {
				known = known || fc.ID == id
			}
			if !known {
				return malformed(start, "scan references unknown component %d", id)
			}
			return unsupported(start, "scan component order differs from the frame")
		}
		td, ta := tables>>4, tables&15
		if td > 3 || ta > 3 {
			return malformed(start, "Huffman table index out of range")
		}
		if d.dc[td] == nil || d.ac[ta] == nil {
			return malformed(start, "scan references undefined Huffman table")
		}
		if d.quant[c.Tq] == nil {
			return malformed(start, "component %d references undefined quantization table %d", id, c.Tq)
		}
		d.td = append(d.td, td)
		d.ta = append(d.ta, ta)
	}

	ss, se, ah, al := p[1+2*ns], p[2+2*ns], p[3+2*ns]>>4, p[3+2*ns]&15
	if ss != 0 || se != 63 || ah != 0 || al != 0 {
		return unsupported(start, "spectral selection or successive approximation")
	}

	f.Quant = d.quant
	f.RestartInterval = d.ri
	return nil
}
