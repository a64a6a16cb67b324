package format

import (
	"bytes"
	"image"
	"image/png"
	"io"
)

const pngMagic = "\x89PNG\r\n\x1a\n"

func newPNG() Backend {
	return &pixelBackend{
		name:   "png",
		exts:   []string{".png"},
		magic:  func(head []byte) bool { return bytes.HasPrefix(head, []byte(pngMagic)) },
		decode: png.Decode,
		config: png.DecodeConfig,
		encode: func(w io.Writer, img image.Image) error {
			enc := png.Encoder{CompressionLevel: png.BestCompression}
			return enc.Encode(w, img)
		},
	}
}
