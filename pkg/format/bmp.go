package format

import (
	"bytes"

	"golang.org/x/image/bmp"
)

func newBMP() Backend {
	return &pixelBackend{
		name:   "bmp",
		exts:   []string{".bmp"},
		magic:  func(head []byte) bool { return bytes.HasPrefix(head, []byte("BM")) },
		decode: bmp.Decode,
		config: bmp.DecodeConfig,
		encode: bmp.Encode,
	}
}
