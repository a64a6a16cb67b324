package stego

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestAnalyzeMetrics(t *testing.T) {
	tmpDir := t.TempDir()
	origPath := filepath.Join(tmpDir, "orig.png")
	stegoPath := filepath.Join(tmpDir, "stego.png")
	heatmapPath := filepath.Join(tmpDir, "heatmap.png")

	// Case 1: Identical Images
	// MSE should be 0, PSNR should be infinite
	img1 := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for i := 3; i < len(img1.Pix); i += 4 {
		img1.Pix[i] = 255
	}
	saveImage(t, origPath, img1)
	saveImage(t, stegoPath, img1)

	args := &AnalyzeArgs{
		OriginalPath: &origPath,
		StegoPath:    &stegoPath,
		HeatmapPath:  &heatmapPath,
	}
	result, err := Analyze(context.Background(), args)
	if err != nil {
		t.Fatalf("Analyze failed for identical images: %v", err)
	}
	if result.MSE != 0 {
		t.Errorf("Expected MSE 0 for identical images, got %f", result.MSE)
	}
	if !math.IsInf(result.PSNR, 1) {
		t.Errorf("Expected PSNR +Inf for identical images, got %f", result.PSNR)
	}

	// Case 2: Known Difference
	// MSE = (10^2) / (100 * 3)
	img2 := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	copy(img2.Pix, img1.Pix)
	img2.Set(0, 0, color.NRGBA{R: 10, G: 0, B: 0, A: 255})
	saveImage(t, stegoPath, img2)

	result, err = Analyze(context.Background(), args)
	if err != nil {
		t.Fatalf("Analyze failed for modified image: %v", err)
	}
	expectedMSE := 100.0 / 300.0
	if math.Abs(result.MSE-expectedMSE) > 0.0001 {
		t.Errorf("MSE calculation incorrect. Got %f, want %f", result.MSE, expectedMSE)
	}
	expectedPSNR := 10 * math.Log10((255*255)/expectedMSE)
	if math.Abs(result.PSNR-expectedPSNR) > 0.0001 {
		t.Errorf("PSNR calculation incorrect. Got %f, want %f", result.PSNR, expectedPSNR)
	}
	if result.Modified != 1 || result.Pixels != 100 {
		t.Errorf("Modified = %d of %d, want 1 of 100", result.Modified, result.Pixels)
	}

	f, err := os.Open(heatmapPath)
	if err != nil {
		t.Fatalf("Heatmap file was not created: %v", err)
	}
	defer f.Close()
	heatmap, err := png.Decode(f)
	if err != nil {
		t.Fatalf("Failed to decode heatmap: %v", err)
	}
	if r, g, _, _ := heatmap.At(0, 0).RGBA(); r>>8 != 255 || g>>8 != 0 {
		t.Errorf("heatmap(0,0) = r%d g%d, want red", r>>8, g>>8)
	}
	if r, g, b, _ := heatmap.At(5, 5).RGBA(); r|g|b != 0 {
		t.Errorf("heatmap(5,5) is not black")
	}
}

func TestAnalyzeDimensionMismatch(t *testing.T) {
	tmpDir := t.TempDir()
	origPath := filepath.Join(tmpDir, "orig.png")
	stegoPath := filepath.Join(tmpDir, "stego.png")
	saveImage(t, origPath, image.NewNRGBA(image.Rect(0, 0, 10, 10)))
	saveImage(t, stegoPath, image.NewNRGBA(image.Rect(0, 0, 10, 11)))

	if _, err := Analyze(context.Background(), &AnalyzeArgs{OriginalPath: &origPath, StegoPath: &stegoPath}); err == nil {
		t.Error("Expected error for mismatched dimensions, got nil")
	}
}

func TestAnalyzeJPEGCarrier(t *testing.T) {
	tmpDir := t.TempDir()
	origPath := filepath.Join(tmpDir, "orig.jpg")
	stegoPath := filepath.Join(tmpDir, "stego.jpg")
	writeCarrier(t, origPath, "jpeg", noiseImage(48, 48))

	message := "analyze me"
	if err := Conceal(context.Background(), &ConcealArgs{ImagePath: &origPath, Output: &stegoPath, Message: &message}); err != nil {
		t.Fatalf("Conceal failed: %v", err)
	}
	result, err := Analyze(context.Background(), &AnalyzeArgs{OriginalPath: &origPath, StegoPath: &stegoPath})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.PSNR < 30 {
		t.Errorf("Analyze() PSNR = %f dB, want at least 30", result.PSNR)
	}
}

func saveImage(t *testing.T, path string, img image.Image) {
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create file %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode png to %s: %v", path, err)
	}
}
