package stego

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestVerify(t *testing.T) {
	tmpDir := t.TempDir()
	inputPath := filepath.Join(tmpDir, "input.png")
	outputPath := filepath.Join(tmpDir, "output.png")
	writeCarrier(t, inputPath, "png", noiseImage(40, 40))

	message := "verify this payload"
	err := Conceal(context.Background(), &ConcealArgs{
		ImagePath: &inputPath,
		Output:    &outputPath,
		Message:   &message,
		ECC:       boolp(true),
		Compress:  boolp(true),
	})
	if err != nil {
		t.Fatalf("Conceal failed: %v", err)
	}

	res, err := Verify(context.Background(), &VerifyArgs{ImagePath: &outputPath, ECC: boolp(true), Compress: boolp(true)})
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if res.Format != "png" || res.DataSize != len(message) || res.Repaired {
		t.Errorf("Verify() = %+v, want png, %d bytes, not repaired", res, len(message))
	}
	if res.StoredSize%rsTotalShards != 0 {
		t.Errorf("Verify() stored size %d is not a whole number of shards", res.StoredSize)
	}

	// Without the envelope flag the plain payload is not an envelope.
	plainPath := filepath.Join(tmpDir, "plain.png")
	message = "abc"
	if err := Conceal(context.Background(), &ConcealArgs{ImagePath: &inputPath, Output: &plainPath, Message: &message}); err != nil {
		t.Fatalf("Conceal failed: %v", err)
	}
	if _, err := Verify(context.Background(), &VerifyArgs{ImagePath: &plainPath, ECC: boolp(true)}); !errors.Is(err, ErrECC) {
		t.Errorf("Verify() error = %v, want %v", err, ErrECC)
	}
}

func TestECCCapacity(t *testing.T) {
	tests := []struct {
		capacity uint64
		want     uint64
	}{
		{0, 0},
		{5, 0},
		{6, 0},
		{12, 4},
		{92, 56},
	}
	for _, tc := range tests {
		if got := ECCCapacity(tc.capacity); got != tc.want {
			t.Errorf("ECCCapacity(%d) = %d, want %d", tc.capacity, got, tc.want)
		}
	}

	for _, capacity := range []uint64{12, 50, 92, 1000} {
		n := ECCCapacity(capacity)
		enc, err := addReedSolomon(make([]byte, n))
		if err != nil {
			t.Fatal(err)
		}
		if uint64(len(enc)) > capacity {
			t.Errorf("envelope of %d bytes is %d, over capacity %d", n, len(enc), capacity)
		}
		enc, err = addReedSolomon(make([]byte, n+1))
		if err != nil {
			t.Fatal(err)
		}
		if uint64(len(enc)) <= capacity {
			t.Errorf("envelope of %d bytes is %d, still within capacity %d", n+1, len(enc), capacity)
		}
	}
}
