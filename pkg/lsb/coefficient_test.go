package lsb

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/andresmejia3/hide/v2/pkg/jpeg"
)

func newFrame(t *testing.T, w, h int, sub jpeg.Subsampling) *jpeg.Frame {
	t.Helper()
	f, err := jpeg.FromRaster(newRaster(t, w, h, 3, int64(w*h)), &jpeg.Options{Subsampling: sub})
	if err != nil {
		t.Fatalf("jpeg.FromRaster() error = %v", err)
	}
	return f
}

func TestCoefficientRoundTrip(t *testing.T) {
	for _, sub := range []jpeg.Subsampling{jpeg.Subsample444, jpeg.Subsample420} {
		t.Run(sub.String(), func(t *testing.T) {
			f := newFrame(t, 48, 40, sub)
			eligibleBefore := EligibleCoefficients(f)
			capacity := CoefficientCapacity(f)
			if capacity == 0 {
				t.Fatalf("CoefficientCapacity() = 0 for a noise image")
			}
			if capacity != eligibleBefore/8-LengthSize {
				t.Errorf("CoefficientCapacity() = %d, want %d", capacity, eligibleBefore/8-LengthSize)
			}

			payload := make([]byte, capacity)
			rand.New(rand.NewSource(11)).Read(payload)
			if err := EmbedCoefficients(context.Background(), f, payload, nil); err != nil {
				t.Fatalf("EmbedCoefficients() error = %v", err)
			}
			if got := EligibleCoefficients(f); got != eligibleBefore {
				t.Errorf("EligibleCoefficients() after embed = %d, want %d", got, eligibleBefore)
			}

			var buf bytes.Buffer
			if err := f.Encode(&buf); err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			decoded, err := jpeg.ReadFrame(&buf)
			if err != nil {
				t.Fatalf("ReadFrame() error = %v", err)
			}
			if got := EligibleCoefficients(decoded); got != eligibleBefore {
				t.Errorf("EligibleCoefficients() after decode = %d, want %d", got, eligibleBefore)
			}
			got, err := ExtractCoefficients(context.Background(), decoded, nil)
			if err != nil {
				t.Fatalf("ExtractCoefficients() error = %v", err)
			}
			if !bytes.Equal(got, payload) {
				t.Errorf("ExtractCoefficients() returned a different payload")
			}
		})
	}
}

func TestCoefficientCapacityBoundary(t *testing.T) {
	f := newFrame(t, 16, 16, jpeg.Subsample444)
	before := f.Clone()
	capacity := CoefficientCapacity(f)

	err := EmbedCoefficients(context.Background(), f, make([]byte, capacity+1), nil)
	if !errors.Is(err, ErrInsufficientCapacity) {
		t.Fatalf("EmbedCoefficients(capacity+1) error = %v, want %v", err, ErrInsufficientCapacity)
	}
	for i, c := range f.Components {
		for j := range c.Blocks {
			if c.Blocks[j] != before.Components[i].Blocks[j] {
				t.Fatalf("component %d block %d modified by a rejected embed", i, j)
			}
		}
	}
}

func TestCoefficientLength(t *testing.T) {
	f := newFrame(t, 24, 24, jpeg.Subsample444)
	if err := EmbedCoefficients(context.Background(), f, []byte("len"), &Options{Fill: true}); err != nil {
		t.Fatal(err)
	}
	n, err := CoefficientLength(context.Background(), f)
	if err != nil || n != 3 {
		t.Errorf("CoefficientLength() = %d, %v, want 3", n, err)
	}
}

func TestCoefficientFlatImage(t *testing.T) {
	// A flat image has only DC terms; too few to hold the length prefix.
	r := newRaster(t, 8, 8, 3, 0)
	for _, row := range r.Rows {
		for i := range row {
			row[i] = 200
		}
	}
	f, err := jpeg.FromRaster(r, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := CoefficientCapacity(f); got != 0 {
		t.Errorf("CoefficientCapacity(flat) = %d, want 0", got)
	}
	if err := EmbedCoefficients(context.Background(), f, []byte{1}, nil); !errors.Is(err, ErrInsufficientCapacity) {
		t.Errorf("EmbedCoefficients(flat) error = %v, want %v", err, ErrInsufficientCapacity)
	}
	before := f.Clone()
	if err := EmbedCoefficients(context.Background(), f, nil, nil); !errors.Is(err, ErrInsufficientCapacity) {
		t.Errorf("EmbedCoefficients(flat, empty) error = %v, want %v", err, ErrInsufficientCapacity)
	}
	for i, c := range f.Components {
		for j := range c.Blocks {
			if c.Blocks[j] != before.Components[i].Blocks[j] {
				t.Fatalf("component %d block %d modified by a rejected embed", i, j)
			}
		}
	}
	if _, err := ExtractCoefficients(context.Background(), f, nil); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("ExtractCoefficients(flat) error = %v, want %v", err, ErrInvalidLength)
	}
}
