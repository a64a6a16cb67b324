package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/andresmejia3/hide/v2/internal/config"
	"github.com/andresmejia3/hide/v2/pkg/format"
	"github.com/andresmejia3/hide/v2/pkg/jpeg"
	"github.com/andresmejia3/hide/v2/pkg/lsb"
	"github.com/andresmejia3/hide/v2/pkg/stego"
)

func TestExitCode(t *testing.T) {
	_, statErr := os.Stat(filepath.Join(t.TempDir(), "missing.png"))

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"usage", usageError{errors.New("accepts between 1 and 3 arg(s)")}, exitInvalid},
		{"config", fmt.Errorf("%w: jpeg.scale", config.ErrInvalid), exitInvalid},
		{"capacity", fmt.Errorf("failed to conceal message: %w", lsb.ErrInsufficientCapacity), exitNoSpace},
		{"format", fmt.Errorf("%w: x.gif", format.ErrUnsupportedFormat), exitFileType},
		{"jpeg feature", &jpeg.UnsupportedError{Offset: 2, Feature: "progressive"}, exitFileType},
		{"jpeg malformed", fmt.Errorf("decode: %w", &jpeg.FormatError{Offset: 9, Reason: "bad marker"}), exitIllegalSeq},
		{"jpeg truncated", jpeg.ErrTruncated, exitIllegalSeq},
		{"length", lsb.ErrInvalidLength, exitIllegalSeq},
		{"ecc", stego.ErrECC, exitIllegalSeq},
		{"zstd", stego.ErrCompressed, exitIllegalSeq},
		{"missing file", fmt.Errorf("failed to reveal message: %w", statErr), 2},
		{"interrupted", fmt.Errorf("failed to conceal message: %w", context.Canceled), exitInterrupted},
		{"other", errors.New("boom"), exitFailure},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := exitCode(tc.err); got != tc.want {
				t.Errorf("exitCode(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}
