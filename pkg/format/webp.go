package format

import (
	"bytes"
	"image"
	"io"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/webp"
)

func newWEBP() Backend {
	return &pixelBackend{
		name: "webp",
		exts: []string{".webp"},
		magic: func(head []byte) bool {
			return len(head) >= 12 && bytes.Equal(head[:4], []byte("RIFF")) && bytes.Equal(head[8:12], []byte("WEBP"))
		},
		decode: webp.Decode,
		config: webp.DecodeConfig,
		// Output is always lossless VP8L, whatever the input used.
		encode: func(w io.Writer, img image.Image) error {
			return nativewebp.Encode(w, img, nil)
		},
	}
}
