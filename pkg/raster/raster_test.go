package raster

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		bpp     int
		wantErr bool
	}{
		{"rgb", 3, 2, 3, false},
		{"rgba", 1, 1, 4, false},
		{"zero width", 0, 2, 3, true},
		{"zero height", 2, 0, 3, true},
		{"gray", 2, 2, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.w, tt.h, tt.bpp)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDimensions) {
					t.Errorf("New(%d, %d, %d) error = %v, want %v", tt.w, tt.h, tt.bpp, err, ErrInvalidDimensions)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if err := r.Validate(); err != nil {
				t.Errorf("Validate() error = %v", err)
			}
			if len(r.Rows) != tt.h || len(r.Rows[0]) != tt.w*tt.bpp {
				t.Errorf("New() rows = %d x %d bytes, want %d x %d", len(r.Rows), len(r.Rows[0]), tt.h, tt.w*tt.bpp)
			}
		})
	}
}

func TestRowsDoNotOverlap(t *testing.T) {
	r, _ := New(2, 2, 3)
	r.Rows[0] = append(r.Rows[0], 0xAA)
	if r.Rows[1][0] != 0 {
		t.Errorf("appending to row 0 overwrote row 1")
	}
}

func TestValidate(t *testing.T) {
	var nilRaster *Raster
	if err := nilRaster.Validate(); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("nil Validate() error = %v", err)
	}

	r, _ := New(2, 2, 3)
	r.Rows[1] = r.Rows[1][:5]
	if err := r.Validate(); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("short row Validate() error = %v", err)
	}

	r, _ = New(2, 2, 3)
	r.Rows = r.Rows[:1]
	if err := r.Validate(); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("missing row Validate() error = %v", err)
	}
}

func TestPixelAndClone(t *testing.T) {
	r, _ := New(3, 2, 4)
	copy(r.Pixel(2, 1), []byte{1, 2, 3, 4})
	if got := r.Rows[1][8:12]; got[0] != 1 || got[3] != 4 {
		t.Errorf("Pixel(2, 1) wrote %v", got)
	}

	c := r.Clone()
	c.Pixel(2, 1)[0] = 9
	if r.Pixel(2, 1)[0] != 1 {
		t.Errorf("Clone() shares memory with the original")
	}
}

func TestFromImage(t *testing.T) {
	opaque := image.NewRGBA(image.Rect(0, 0, 2, 1))
	opaque.Set(0, 0, color.RGBA{10, 20, 30, 255})
	opaque.Set(1, 0, color.RGBA{40, 50, 60, 255})

	r, err := FromImage(opaque)
	if err != nil {
		t.Fatalf("FromImage() error = %v", err)
	}
	if r.BPP != 3 {
		t.Errorf("FromImage(opaque).BPP = %d, want 3", r.BPP)
	}
	want := []byte{10, 20, 30, 40, 50, 60}
	for i, b := range want {
		if r.Rows[0][i] != b {
			t.Fatalf("FromImage(opaque) row = %v, want %v", r.Rows[0], want)
		}
	}

	translucent := image.NewNRGBA(image.Rect(5, 5, 7, 6))
	translucent.SetNRGBA(5, 5, color.NRGBA{1, 2, 3, 4})
	translucent.SetNRGBA(6, 5, color.NRGBA{5, 6, 7, 255})
	r, err = FromImage(translucent)
	if err != nil {
		t.Fatalf("FromImage() error = %v", err)
	}
	if r.BPP != 4 || r.Width != 2 || r.Height != 1 {
		t.Fatalf("FromImage(translucent) = %dx%d at %d bpp, want 2x1 at 4", r.Width, r.Height, r.BPP)
	}
	if got := r.Pixel(0, 0); got[3] != 4 {
		t.Errorf("FromImage(translucent) alpha = %d, want 4", got[3])
	}
	if got := r.Pixel(1, 0); got[0] != 5 || got[1] != 6 || got[2] != 7 || got[3] != 255 {
		t.Errorf("FromImage(translucent) pixel 1 = %v", got)
	}
}

func TestImage(t *testing.T) {
	r, _ := New(2, 1, 3)
	copy(r.Rows[0], []byte{1, 2, 3, 4, 5, 6})
	img := r.Image()
	if got := img.NRGBAAt(1, 0); got != (color.NRGBA{4, 5, 6, 255}) {
		t.Errorf("Image().NRGBAAt(1, 0) = %v", got)
	}

	back, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage() error = %v", err)
	}
	if back.BPP != 3 || back.Rows[0][5] != 6 {
		t.Errorf("FromImage(Image()) = %v at %d bpp", back.Rows, back.BPP)
	}
}
