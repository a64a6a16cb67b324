package format

import (
	"bytes"
	"image"
	"io"

	"golang.org/x/image/tiff"
)

func newTIFF() Backend {
	return &pixelBackend{
		name: "tiff",
		exts: []string{".tif", ".tiff"},
		magic: func(head []byte) bool {
			return bytes.HasPrefix(head, []byte("II*\x00")) || bytes.HasPrefix(head, []byte("MM\x00*"))
		},
		decode: tiff.Decode,
		config: tiff.DecodeConfig,
		encode: func(w io.Writer, img image.Image) error {
			// x/image/tiff cannot write LZMA strips; Deflate with the
			// horizontal predictor is the closest lossless option.
			return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
		},
	}
}
