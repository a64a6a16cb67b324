// Package raster holds decoded images as rows of interleaved channel bytes.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
)

var ErrInvalidDimensions = errors.New("invalid raster dimensions")

// Raster is an image stored as Height rows of Width*BPP bytes. BPP is 3
// (RGB) or 4 (RGBA, non-premultiplied).
type Raster struct {
	Width  int
	Height int
	BPP    int
	Rows   [][]byte
}

// New allocates a zeroed raster.
func New(width, height, bpp int) (*Raster, error) {
	if width < 1 || height < 1 || (bpp != 3 && bpp != 4) {
		return nil, fmt.Errorf("%w: %dx%d at %d bytes per pixel", ErrInvalidDimensions, width, height, bpp)
	}
	stride := width * bpp
	pix := make([]byte, stride*height)
	rows := make([][]byte, height)
	for y := range rows {
		rows[y] = pix[y*stride : (y+1)*stride : (y+1)*stride]
	}
	return &Raster{Width: width, Height: height, BPP: bpp, Rows: rows}, nil
}

// Validate checks the row invariants.
func (r *Raster) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil raster", ErrInvalidDimensions)
	}
	if r.Width < 1 || r.Height < 1 || (r.BPP != 3 && r.BPP != 4) || len(r.Rows) != r.Height {
		return fmt.Errorf("%w: %dx%d at %d bytes per pixel with %d rows", ErrInvalidDimensions, r.Width, r.Height, r.BPP, len(r.Rows))
	}
	for y, row := range r.Rows {
		if len(row) != r.Width*r.BPP {
			return fmt.Errorf("%w: row %d has %d bytes, want %d", ErrInvalidDimensions, y, len(row), r.Width*r.BPP)
		}
	}
	return nil
}

// Pixel returns the channel bytes of the pixel at (x, y). Writes through the
// returned slice modify the raster.
func (r *Raster) Pixel(x, y int) []byte {
	return r.Rows[y][x*r.BPP : (x+1)*r.BPP]
}

// Clone returns a deep copy of r.
func (r *Raster) Clone() *Raster {
	c, _ := New(r.Width, r.Height, r.BPP)
	for y, row := range r.Rows {
		copy(c.Rows[y], row)
	}
	return c
}

// FromImage copies img into a raster. Opaque images become RGB, others RGBA.
func FromImage(img image.Image) (*Raster, error) {
	b := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}

	bpp := 4
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		bpp = 3
	}
	r, err := New(b.Dx(), b.Dy(), bpp)
	if err != nil {
		return nil, err
	}
	for y := 0; y < r.Height; y++ {
		src := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+4*r.Width]
		dst := r.Rows[y]
		if bpp == 4 {
			copy(dst, src)
			continue
		}
		for x := 0; x < r.Width; x++ {
			copy(dst[3*x:3*x+3], src[4*x:4*x+3])
		}
	}
	return r, nil
}

// Image returns an NRGBA copy of r.
func (r *Raster) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.Width, r.Height))
	for y, row := range r.Rows {
		dst := img.Pix[y*img.Stride : y*img.Stride+4*r.Width]
		if r.BPP == 4 {
			copy(dst, row)
			continue
		}
		for x := 0; x < r.Width; x++ {
			dst[4*x], dst[4*x+1], dst[4*x+2], dst[4*x+3] = row[3*x], row[3*x+1], row[3*x+2], 0xFF
		}
	}
	return img
}
