package format

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/andresmejia3/hide/v2/internal/progress"
	"github.com/andresmejia3/hide/v2/pkg/jpeg"
	"github.com/andresmejia3/hide/v2/pkg/lsb"
	"github.com/rs/zerolog/log"
)

// jpegBackend carries the payload in quantized DCT coefficients.
type jpegBackend struct {
	mode JPEGMode
	opts jpeg.Options
}

func newJPEG(o Options) Backend {
	return &jpegBackend{mode: o.JPEGMode, opts: o.JPEG}
}

func (b *jpegBackend) Name() string { return "jpeg" }
func (b *jpegBackend) Extensions() []string { return []string{".jpg", ".jpeg", ".jfif"} }
func (b *jpegBackend) Probe(path string) bool { return probe(b, path) }
func (b *jpegBackend) Release(img *Image) { release(img) }

func (b *jpegBackend) match(head []byte) bool {
	return bytes.HasPrefix(head, []byte{0xFF, 0xD8, 0xFF})
}

func (b *jpegBackend) readFrame(ctx context.Context, path string, p progress.Func) (*jpeg.Frame, error) {
	f, r, err := openCounted(path, p)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	frame, err := jpeg.ReadFrame(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode jpeg image: %w", err)
	}
	if b.mode != JPEGReencode {
		return frame, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pixels, err := frame.Raster()
	if err != nil {
		return nil, err
	}
	log.Debug().Int("scale", b.opts.Scale).Stringer("subsampling", b.opts.Subsampling).Msg("Re-encoding JPEG carrier")
	return jpeg.FromRaster(pixels, &b.opts)
}

func (b *jpegBackend) Read(ctx context.Context, path string, p progress.Func) (*Image, error) {
	frame, err := b.readFrame(ctx, path, p)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("width", frame.Width).Int("height", frame.Height).Int("components", len(frame.Components)).Msg("Decoded JPEG coefficients")
	return &Image{State: &JPEGState{Frame: frame}}, nil
}

func (b *jpegBackend) Write(ctx context.Context, img *Image, path string, p progress.Func) error {
	if img == nil {
		return errors.New("no image to write")
	}
	frame, err := b.frameOf(img)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := writeEncoded(path, p, frame.Encode); err != nil {
		return fmt.Errorf("failed to write jpeg image: %w", err)
	}
	return nil
}

// frameOf returns the coefficients to write. Pixel images from other
// backends are encoded with the backend options.
func (b *jpegBackend) frameOf(img *Image) (*jpeg.Frame, error) {
	if st, ok := img.State.(*JPEGState); ok && st.Frame != nil {
		return st.Frame, nil
	}
	if img.Raster == nil {
		return nil, errors.New("no raster or coefficients to write")
	}
	return jpeg.FromRaster(img.Raster, &b.opts)
}

func (b *jpegBackend) Capacity(path string) (uint64, error) {
	frame, err := b.readFrame(context.Background(), path, nil)
	if err != nil {
		return 0, err
	}
	return lsb.CoefficientCapacity(frame), nil
}
