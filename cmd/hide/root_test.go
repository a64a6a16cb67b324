package main

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("progress: false\nlog_level: warn\n"), 0644); err != nil {
		t.Fatal(err)
	}
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	_, err := rootCmd.ExecuteContextC(context.Background())
	return err
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 31)
		if i%4 == 3 {
			img.Pix[i] = 255
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestPositionalRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "src.png")
	payload := filepath.Join(tmpDir, "payload.txt")
	out := filepath.Join(tmpDir, "out.png")
	recovered := filepath.Join(tmpDir, "recovered.txt")
	writePNG(t, src, 10, 10)
	if err := os.WriteFile(payload, []byte("HELLO"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := execute(t, src, payload, out); err != nil {
		t.Fatalf("hide %s %s %s: %v", src, payload, out, err)
	}
	if err := execute(t, out, recovered); err != nil {
		t.Fatalf("hide %s %s: %v", out, recovered, err)
	}
	got, err := os.ReadFile(recovered)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte("HELLO")) {
		t.Errorf("recovered %q, want %q", got, "HELLO")
	}
	if err := execute(t, out); err != nil {
		t.Errorf("hide %s: %v", out, err)
	}
}

func TestExitCodes(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "src.png")
	writePNG(t, src, 10, 10)
	big := filepath.Join(tmpDir, "big.bin")
	if err := os.WriteFile(big, make([]byte, 93), 0644); err != nil {
		t.Fatal(err)
	}
	gif := filepath.Join(tmpDir, "x.gif")
	if err := os.WriteFile(gif, []byte("GIF89a\x01\x00\x01\x00"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no arguments", nil, exitInvalid},
		{"too many arguments", []string{src, big, src, src}, exitInvalid},
		{"unknown flag", []string{"--bogus", src}, exitInvalid},
		{"over capacity", []string{src, big, filepath.Join(tmpDir, "out.png")}, exitNoSpace},
		{"unsupported format", []string{gif}, exitFileType},
		{"missing image", []string{filepath.Join(tmpDir, "missing.png")}, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := execute(t, tc.args...)
			if got := exitCode(err); got != tc.want {
				t.Errorf("exitCode(%v) = %d, want %d", err, got, tc.want)
			}
		})
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "out.png")); !os.IsNotExist(err) {
		t.Errorf("output written despite insufficient capacity")
	}
}
