package stego

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/andresmejia3/hide/v2/internal/progress"
	"github.com/andresmejia3/hide/v2/pkg/format"
	"github.com/andresmejia3/hide/v2/pkg/raster"
)

type AnalyzeArgs struct {
	OriginalPath *string
	StegoPath    *string
	HeatmapPath  *string // optional

	Registry *format.Registry
	Tracker  *progress.Tracker
}

// AnalysisResult holds metrics about the comparison between two images.
type AnalysisResult struct {
	MSE      float64 // Mean Squared Error
	PSNR     float64 // Peak Signal-to-Noise Ratio (dB)
	Modified int     // pixels with at least one changed channel
	Pixels   int
}

func loadPixels(ctx context.Context, reg *format.Registry, path string, p progress.Func) (*raster.Raster, error) {
	backend, err := reg.Lookup(path)
	if err != nil {
		return nil, err
	}
	img, err := backend.Read(ctx, path, p)
	if err != nil {
		return nil, err
	}
	defer backend.Release(img)
	return img.Pixels()
}

// Analyze compares an original image with a stego image over the color
// channels. It returns metrics and, when HeatmapPath is set, writes a PNG
// difference heatmap.
func Analyze(ctx context.Context, args *AnalyzeArgs) (*AnalysisResult, error) {
	reg := registry(args.Registry)
	orig, err := loadPixels(ctx, reg, str(args.OriginalPath), args.Tracker.Stage("loading original"))
	if err != nil {
		return nil, fmt.Errorf("failed to load original: %w", err)
	}
	stego, err := loadPixels(ctx, reg, str(args.StegoPath), args.Tracker.Stage("loading stego"))
	if err != nil {
		return nil, fmt.Errorf("failed to load stego image: %w", err)
	}
	if orig.Width != stego.Width || orig.Height != stego.Height {
		return nil, fmt.Errorf("image dimensions do not match: %dx%d vs %dx%d", orig.Width, orig.Height, stego.Width, stego.Height)
	}

	width, height := orig.Width, orig.Height
	heatmap := image.NewNRGBA(image.Rect(0, 0, width, height))
	report := args.Tracker.Stage("analyzing")
	res := &AnalysisResult{Pixels: width * height}
	var sumSquaredError float64

	for y := 0; y < height; y++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report.Report(uint64(y), uint64(height))
		for x := 0; x < width; x++ {
			p1, p2 := orig.Pixel(x, y), stego.Pixel(x, y)
			var diffSum float64
			for i := 0; i < 3; i++ {
				diff := float64(p1[i]) - float64(p2[i])
				sumSquaredError += diff * diff
				diffSum += math.Abs(diff)
			}

			// Black = no change, green = slight change, red = major change.
			// A difference of 1 becomes 50 brightness.
			c := color.NRGBA{A: 255}
			if diffSum > 0 {
				res.Modified++
				intensity := uint8(math.Min(255, diffSum*50))
				c.R, c.G = intensity, 255-intensity
			}
			heatmap.SetNRGBA(x, y, c)
		}
	}
	report.Report(uint64(height), uint64(height))

	res.MSE = sumSquaredError / (float64(res.Pixels) * 3.0)
	res.PSNR = 10 * math.Log10((255*255)/res.MSE)

	if out := str(args.HeatmapPath); out != "" {
		err := format.WriteFileAtomic(out, func(w io.Writer) error {
			return png.Encode(w, heatmap)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to write heatmap: %w", err)
		}
	}
	return res, nil
}
