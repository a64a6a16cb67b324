// Package format adapts image container formats to the carrier model used
// by package lsb. Each format is a Backend; a Registry picks the backend for
// a file by sniffing its signature.
package format

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/andresmejia3/hide/v2/internal/progress"
	"github.com/andresmejia3/hide/v2/pkg/jpeg"
	"github.com/andresmejia3/hide/v2/pkg/raster"
)

// ErrUnsupportedFormat is returned when no backend recognises a file.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Backend reads and writes one container format.
type Backend interface {
	Name() string
	Extensions() []string
	// Probe reports whether the file at path carries this format's signature.
	Probe(path string) bool
	Read(ctx context.Context, path string, p progress.Func) (*Image, error)
	// Write serializes img to path. The file appears only once it is complete.
	Write(ctx context.Context, img *Image, path string, p progress.Func) error
	// Capacity is the number of payload bytes the file can carry.
	Capacity(path string) (uint64, error)
	Release(img *Image)
}

// State is backend-private data attached to an Image. It is either a
// *PixelState or a *JPEGState.
type State interface {
	isState()
}

// PixelState marks an image whose carrier is its raster.
type PixelState struct {
	Format string
}

// JPEGState marks an image whose carrier is its quantized coefficients.
type JPEGState struct {
	Frame *jpeg.Frame
}

func (*PixelState) isState() {}
func (*JPEGState) isState() {}

// Image is a decoded carrier. Raster is nil for JPEG images until Pixels is
// called; for those the frame is authoritative.
type Image struct {
	Raster *raster.Raster
	State  State
}

// Pixels returns the image's raster, rendering JPEG coefficients if needed.
func (img *Image) Pixels() (*raster.Raster, error) {
	if img.Raster != nil {
		return img.Raster, nil
	}
	if st, ok := img.State.(*JPEGState); ok && st.Frame != nil {
		return st.Frame.Raster()
	}
	return nil, errors.New("image has no pixel data")
}

// matcher is implemented by backends that can judge a file by its first bytes.
type matcher interface {
	match(head []byte) bool
}

const sniffLen = 12

func sniff(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return head[:n], nil
}

func probe(m matcher, path string) bool {
	head, err := sniff(path)
	return err == nil && m.match(head)
}

// openCounted opens path and wraps it so reads report progress against its size.
func openCounted(path string, p progress.Func) (*os.File, io.Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	var size uint64
	if fi, err := f.Stat(); err == nil {
		size = uint64(fi.Size())
	}
	return f, bufio.NewReader(&progress.Reader{R: f, Total: size, Func: p}), nil
}

// writeChunk is the granularity of write progress.
const writeChunk = 32 << 10

// writeEncoded runs encode into memory so the byte total is known, then
// writes the result to path atomically, reporting each chunk to p.
func writeEncoded(path string, p progress.Func, encode func(w io.Writer) error) error {
	var buf bytes.Buffer
	if err := encode(&buf); err != nil {
		return err
	}
	total := uint64(buf.Len())
	p.Report(0, total)
	return WriteFileAtomic(path, func(w io.Writer) error {
		pw := &progress.Writer{W: w, Total: total, Func: p}
		for buf.Len() > 0 {
			if _, err := pw.Write(buf.Next(writeChunk)); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteFileAtomic streams write into a temporary file next to path and
// renames it over path once write and the sync have succeeded. On failure
// path is left untouched.
func WriteFileAtomic(path string, write func(w io.Writer) error) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	bw := bufio.NewWriter(f)
	if err = write(bw); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp, 0644); err != nil {
		return err
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

func release(img *Image) {
	if img != nil {
		img.Raster = nil
		img.State = nil
	}
}
