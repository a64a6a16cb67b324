package jpeg

import (
	"bytes"
	"image"
	"image/color"
	stdjpeg "image/jpeg"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// requireMatchesStdlib decodes data with Decode and with image/jpeg and
// compares every RGB sample within ±2.
func requireMatchesStdlib(t *testing.T, data []byte) image.Image {
	t.Helper()
	want, err := stdjpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	got, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)

	b := want.Bounds()
	require.Equal(t, b.Dx(), got.Width)
	require.Equal(t, b.Dy(), got.Height)
	for y := 0; y < got.Height; y++ {
		for x := 0; x < got.Width; x++ {
			w := color.RGBAModel.Convert(want.At(b.Min.X+x, b.Min.Y+y)).(color.RGBA)
			p := got.Pixel(x, y)
			for i, v := range []uint8{w.R, w.G, w.B} {
				if d := int(p[i]) - int(v); d < -2 || d > 2 {
					t.Fatalf("pixel (%d,%d) channel %d = %d, image/jpeg decodes %d", x, y, i, p[i], v)
				}
			}
		}
	}
	return want
}

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: uint8((x + y) * 255 / (w + h)),
				A: 255,
			})
		}
	}
	return img
}

func TestDecodeStdlibColor(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, stdjpeg.Encode(&buf, gradient(37, 29), &stdjpeg.Options{Quality: 90}))

	f, err := ReadFrame(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, f.Components, 3)
	require.Equal(t, 2, f.Components[0].H)
	require.Equal(t, 2, f.Components[0].V)

	requireMatchesStdlib(t, buf.Bytes())
}

func TestDecodeStdlibGray(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 21, 18))
	for y := 0; y < 18; y++ {
		for x := 0; x < 21; x++ {
			src.SetGray(x, y, color.Gray{Y: uint8(40 + 8*x + 3*y)})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, stdjpeg.Encode(&buf, src, &stdjpeg.Options{Quality: 90}))

	f, err := ReadFrame(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, f.Components, 1)

	requireMatchesStdlib(t, buf.Bytes())
}

func TestDecodeHorizontalSubsampling(t *testing.T) {
	// image/jpeg only writes 4:2:0, so the 4:2:2 stream is built here and
	// image/jpeg serves as the reference decoder.
	f := &Frame{
		Width:  37,
		Height: 21,
		Components: []*Component{
			{ID: 1, H: 2, V: 1, Tq: 0},
			{ID: 2, H: 1, V: 1, Tq: 1},
			{ID: 3, H: 1, V: 1, Tq: 1},
		},
	}
	f.Quant[0] = NewQuantTable(&LuminanceBase, 50)
	f.Quant[1] = NewQuantTable(&ChrominanceBase, 50)
	f.layout()

	rng := rand.New(rand.NewSource(5))
	for _, c := range f.Components {
		for i := range c.Blocks {
			b := &c.Blocks[i]
			b[0] = int32(rng.Intn(61) - 30)
			b[1] = int32(rng.Intn(5) - 2)
			b[2] = int32(rng.Intn(5) - 2)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Encode(&buf))

	want := requireMatchesStdlib(t, buf.Bytes())
	ycc, ok := want.(*image.YCbCr)
	require.True(t, ok, "image/jpeg decoded %T", want)
	require.Equal(t, image.YCbCrSubsampleRatio422, ycc.SubsampleRatio)
}
