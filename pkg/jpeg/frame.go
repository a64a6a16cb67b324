// Package jpeg implements a baseline sequential JPEG codec that exposes the
// quantized DCT coefficients of an image.
//
// ReadFrame parses a JFIF stream into a Frame without inverse transforming
// it, Frame.Raster renders the pixels, FromRaster builds a Frame from pixels
// and Frame.Encode writes a single-scan baseline stream. Encoding a Frame
// that came from ReadFrame is a lossless transcode of its coefficients.
package jpeg

import (
	"fmt"

	"github.com/andresmejia3/hide/v2/pkg/raster"
)

// Block holds the 64 quantized coefficients of one 8x8 block in zig-zag order.
type Block [BlockSize]int32

// Component is one colour plane of a frame.
type Component struct {
	ID uint8
	H  int // horizontal sampling factor
	V  int // vertical sampling factor
	Tq uint8

	BlocksWide int
	BlocksHigh int
	Blocks     []Block // row-major, BlocksWide*BlocksHigh
}

// Block returns the block at block column bx and block row by.
func (c *Component) Block(bx, by int) *Block {
	return &c.Blocks[by*c.BlocksWide+bx]
}

// Frame is a decoded but not inverse transformed baseline image. Components
// are kept in scan order.
type Frame struct {
	Width      int
	Height     int
	Components []*Component
	Quant      [4]*QuantTable

	// RestartInterval is the DRI value in MCUs. Encode writes RSTn markers
	// when it is nonzero.
	RestartInterval int

	hmax, vmax int
	mcusWide   int
	mcusHigh   int
}

// layout derives the MCU grid and allocates coefficient storage.
func (f *Frame) layout() {
	if len(f.Components) == 1 {
		// A non-interleaved scan codes one block per MCU whatever the factors.
		c := f.Components[0]
		c.H, c.V = 1, 1
	}
	f.hmax, f.vmax = 1, 1
	for _, c := range f.Components {
		f.hmax = max(f.hmax, c.H)
		f.vmax = max(f.vmax, c.V)
	}
	f.mcusWide = ceilDiv(f.Width, 8*f.hmax)
	f.mcusHigh = ceilDiv(f.Height, 8*f.vmax)
	for _, c := range f.Components {
		c.BlocksWide = f.mcusWide * c.H
		c.BlocksHigh = f.mcusHigh * c.V
		c.Blocks = make([]Block, c.BlocksWide*c.BlocksHigh)
	}
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }

// EachBlock calls fn for every block in the order the entropy-coded scan
// stores them: MCUs row-major, then components in scan order, then the
// component's V x H blocks within the MCU. Iteration stops at the first error.
func (f *Frame) EachBlock(fn func(c *Component, b *Block) error) error {
	for my := 0; my < f.mcusHigh; my++ {
		for mx := 0; mx < f.mcusWide; mx++ {
			if err := f.eachBlockInMCU(mx, my, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *Frame) eachBlockInMCU(mx, my int, fn func(c *Component, b *Block) error) error {
	for _, c := range f.Components {
		for v := 0; v < c.V; v++ {
			for h := 0; h < c.H; h++ {
				if err := fn(c, c.Block(mx*c.H+h, my*c.V+v)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Clone returns a deep copy of f.
func (f *Frame) Clone() *Frame {
	g := *f
	g.Components = make([]*Component, len(f.Components))
	for i, c := range f.Components {
		cc := *c
		cc.Blocks = append([]Block(nil), c.Blocks...)
		g.Components[i] = &cc
	}
	for i, q := range f.Quant {
		if q != nil {
			qq := *q
			g.Quant[i] = &qq
		}
	}
	return &g
}

// plane renders one component to 8-bit samples, BlocksWide*8 wide.
func (f *Frame) plane(c *Component) ([]uint8, error) {
	q := f.Quant[c.Tq]
	if q == nil {
		return nil, fmt.Errorf("%w: component %d uses undefined quantization table %d", ErrMalformed, c.ID, c.Tq)
	}
	stride := c.BlocksWide * 8
	out := make([]uint8, stride*c.BlocksHigh*8)
	var coef [BlockSize]int32
	var samples [BlockSize]uint8
	for by := 0; by < c.BlocksHigh; by++ {
		for bx := 0; bx < c.BlocksWide; bx++ {
			dequantize(c.Block(bx, by), q, &coef)
			inverseDCT(&coef, &samples)
			base := by*8*stride + bx*8
			for y := 0; y < 8; y++ {
				copy(out[base+y*stride:base+y*stride+8], samples[y*8:y*8+8])
			}
		}
	}
	return out, nil
}

// Raster renders the frame as 3 byte-per-pixel RGB. Chroma planes are
// upsampled by nearest neighbour according to the sampling factors.
func (f *Frame) Raster() (*raster.Raster, error) {
	planes := make([][]uint8, len(f.Components))
	for i, c := range f.Components {
		p, err := f.plane(c)
		if err != nil {
			return nil, err
		}
		planes[i] = p
	}

	r, err := raster.New(f.Width, f.Height, 3)
	if err != nil {
		return nil, err
	}
	if len(f.Components) == 1 {
		stride := f.Components[0].BlocksWide * 8
		for y := 0; y < f.Height; y++ {
			row := r.Rows[y]
			for x := 0; x < f.Width; x++ {
				v := planes[0][y*stride+x]
				row[3*x], row[3*x+1], row[3*x+2] = v, v, v
			}
		}
		return r, nil
	}

	ys, cbs, crs := f.Components[0], f.Components[1], f.Components[2]
	for y := 0; y < f.Height; y++ {
		row := r.Rows[y]
		yOff := (y * ys.V / f.vmax) * ys.BlocksWide * 8
		cbOff := (y * cbs.V / f.vmax) * cbs.BlocksWide * 8
		crOff := (y * crs.V / f.vmax) * crs.BlocksWide * 8
		for x := 0; x < f.Width; x++ {
			row[3*x], row[3*x+1], row[3*x+2] = ycbcrToRGB(
				planes[0][yOff+x*ys.H/f.hmax],
				planes[1][cbOff+x*cbs.H/f.hmax],
				planes[2][crOff+x*crs.H/f.hmax],
			)
		}
	}
	return r, nil
}
