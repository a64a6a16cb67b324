package stego

import (
	"context"
	"errors"

	"github.com/andresmejia3/hide/v2/pkg/format"
	"github.com/andresmejia3/hide/v2/pkg/lsb"
)

// Info describes a carrier and the length prefix it declares.
type Info struct {
	Format     string
	Carrier    string // "pixels" or "coefficients"
	Width      int
	Height     int
	Capacity   uint64
	HasPayload bool   // the length prefix fits the carrier
	DataSize   uint64 // declared payload length, valid when HasPayload
}

// GetInfo inspects the image at the given path without extracting the
// payload. There is no magic number, so any image whose prefix decodes to a
// length within capacity reports HasPayload.
func GetInfo(ctx context.Context, reg *format.Registry, imagePath string) (*Info, error) {
	backend, err := registry(reg).Lookup(imagePath)
	if err != nil {
		return nil, err
	}
	img, err := backend.Read(ctx, imagePath, nil)
	if err != nil {
		return nil, err
	}
	defer backend.Release(img)

	info := &Info{Format: backend.Name()}
	var length uint64
	switch st := img.State.(type) {
	case *format.JPEGState:
		info.Carrier = "coefficients"
		info.Width, info.Height = st.Frame.Width, st.Frame.Height
		info.Capacity = lsb.CoefficientCapacity(st.Frame)
		length, err = lsb.CoefficientLength(ctx, st.Frame)
	default:
		info.Carrier = "pixels"
		info.Width, info.Height = img.Raster.Width, img.Raster.Height
		info.Capacity = lsb.PixelCapacity(img.Raster.Width, img.Raster.Height)
		length, err = lsb.PixelLength(img.Raster)
	}
	switch {
	case err == nil:
		info.HasPayload = true
		info.DataSize = length
	case errors.Is(err, lsb.ErrInvalidLength):
	default:
		return nil, err
	}
	return info, nil
}
