package stego

import (
	"context"

	"github.com/andresmejia3/hide/v2/internal/progress"
	"github.com/andresmejia3/hide/v2/pkg/format"
	"github.com/rs/zerolog/log"
)

type VerifyArgs struct {
	ImagePath *string
	ECC       *bool
	Compress  *bool
	Verbose   *bool

	Registry *format.Registry
	Tracker  *progress.Tracker
}

// VerifyResult describes an embedded payload that passed verification.
type VerifyResult struct {
	Format     string
	StoredSize int  // bytes stored in the carrier
	DataSize   int  // bytes after ECC and decompression
	Repaired   bool // ECC had to reconstruct a damaged shard
}

// Verify checks that the image carries a well-formed payload: a length
// prefix within capacity and, when enabled, an intact or recoverable
// Reed-Solomon envelope and a valid zstd frame. The payload itself is not
// written anywhere.
func Verify(ctx context.Context, args *VerifyArgs) (*VerifyResult, error) {
	stored, backend, err := extract(ctx, registry(args.Registry), str(args.ImagePath), args.Tracker)
	if err != nil {
		return nil, err
	}
	res := &VerifyResult{Format: backend.Name(), StoredSize: len(stored)}

	payload := stored
	if isSet(args.ECC) {
		intact, err := checkReedSolomon(stored)
		if err != nil {
			return nil, err
		}
		res.Repaired = !intact
		if payload, err = removeReedSolomon(stored); err != nil {
			return nil, err
		}
	}
	if isSet(args.Compress) {
		if payload, err = decompress(payload); err != nil {
			return nil, err
		}
	}
	res.DataSize = len(payload)
	if isSet(args.Verbose) {
		log.Debug().Int("stored", res.StoredSize).Int("payload", res.DataSize).Bool("repaired", res.Repaired).Msg("Verified payload")
	}
	return res, nil
}
