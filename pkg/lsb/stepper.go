package lsb

import (
	"context"
	"errors"

	"github.com/andresmejia3/hide/v2/pkg/jpeg"
	"github.com/andresmejia3/hide/v2/pkg/raster"
)

var errStepperExhausted = errors.New("more steps taken than carrier positions")

// pixelStepper walks the pixels of a raster row-major. Embedding and
// extraction must enumerate positions identically, so both use it.
type pixelStepper struct {
	x      int
	y      int
	width  int
	height int
}

func makePixelStepper(r *raster.Raster) *pixelStepper {
	return &pixelStepper{width: r.Width, height: r.Height}
}

func (s *pixelStepper) rowStart() bool { return s.x == 0 }

func (s *pixelStepper) pixel(r *raster.Raster) ([]byte, error) {
	if s.y >= s.height {
		return nil, errStepperExhausted
	}
	return r.Pixel(s.x, s.y), nil
}

func (s *pixelStepper) step() {
	s.x++
	if s.x >= s.width {
		s.x = 0
		s.y++
	}
}

// coefficientStepper walks the eligible coefficients of a frame in scan
// order: MCU, component, block, then zig-zag index.
type coefficientStepper struct {
	coefs []*int32
	i     int
}

func makeCoefficientStepper(ctx context.Context, f *jpeg.Frame) (*coefficientStepper, error) {
	s := &coefficientStepper{}
	err := f.EachBlock(func(_ *jpeg.Component, b *jpeg.Block) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		for k := range b {
			if eligible(b[k]) {
				s.coefs = append(s.coefs, &b[k])
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *coefficientStepper) remaining() int { return len(s.coefs) - s.i }

func (s *coefficientStepper) next() (*int32, error) {
	if s.i >= len(s.coefs) {
		return nil, errStepperExhausted
	}
	p := s.coefs[s.i]
	s.i++
	return p, nil
}
