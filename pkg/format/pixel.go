package format

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/andresmejia3/hide/v2/internal/progress"
	"github.com/andresmejia3/hide/v2/pkg/lsb"
	"github.com/andresmejia3/hide/v2/pkg/raster"
	"github.com/rs/zerolog/log"
)

// pixelBackend carries the payload in raster bytes. The container codec is
// delegated to an image library.
type pixelBackend struct {
	name   string
	exts   []string
	magic  func(head []byte) bool
	decode func(r io.Reader) (image.Image, error)
	config func(r io.Reader) (image.Config, error)
	encode func(w io.Writer, img image.Image) error
}

func (b *pixelBackend) Name() string { return b.name }
func (b *pixelBackend) Extensions() []string { return b.exts }
func (b *pixelBackend) match(head []byte) bool { return b.magic(head) }
func (b *pixelBackend) Probe(path string) bool { return probe(b, path) }
func (b *pixelBackend) Release(img *Image) { release(img) }

func (b *pixelBackend) Read(ctx context.Context, path string, p progress.Func) (*Image, error) {
	f, r, err := openCounted(path, p)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := b.decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s image: %w", b.name, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ras, err := raster.FromImage(img)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("format", b.name).Int("width", ras.Width).Int("height", ras.Height).Int("bpp", ras.BPP).Msg("Decoded image")
	return &Image{Raster: ras, State: &PixelState{Format: b.name}}, nil
}

func (b *pixelBackend) Write(ctx context.Context, img *Image, path string, p progress.Func) error {
	if img == nil || img.Raster == nil {
		return errors.New("no raster to write")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	err := writeEncoded(path, p, func(w io.Writer) error {
		return b.encode(w, img.Raster.Image())
	})
	if err != nil {
		return fmt.Errorf("failed to write %s image: %w", b.name, err)
	}
	return nil
}

func (b *pixelBackend) Capacity(path string) (uint64, error) {
	f, r, err := openCounted(path, nil)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	cfg, err := b.config(r)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s header: %w", b.name, err)
	}
	return lsb.PixelCapacity(cfg.Width, cfg.Height), nil
}
