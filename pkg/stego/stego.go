// Package stego ties the container backends to the LSB engine: it reads a
// carrier, embeds or extracts a payload and writes the result.
package stego

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/andresmejia3/hide/v2/internal/progress"
	"github.com/andresmejia3/hide/v2/pkg/format"
	"github.com/andresmejia3/hide/v2/pkg/lsb"
	"github.com/rs/zerolog/log"
)

// Stdio is the payload path that means standard input or output.
const Stdio = "-"

type ConcealArgs struct {
	ImagePath *string
	Message   *string
	File      *string // overrides Message; "-" reads Stdin
	Output    *string
	Fill      *bool
	ECC       *bool
	Compress  *bool
	Verbose   *bool

	Stdin    io.Reader
	Registry *format.Registry
	Tracker  *progress.Tracker
}

type RevealArgs struct {
	ImagePath *string
	Output    *string // "-" writes Writer
	ECC       *bool
	Compress  *bool
	Verbose   *bool

	Writer   io.Writer
	Registry *format.Registry
	Tracker  *progress.Tracker
}

func isSet(b *bool) bool { return b != nil && *b }

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func registry(r *format.Registry) *format.Registry {
	if r == nil {
		return format.NewRegistry(format.Options{})
	}
	return r
}

func (args *ConcealArgs) payload() ([]byte, error) {
	switch file := str(args.File); file {
	case "":
		return []byte(str(args.Message)), nil
	case Stdio:
		in := args.Stdin
		if in == nil {
			in = os.Stdin
		}
		data, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("failed to read payload from stdin: %w", err)
		}
		return data, nil
	default:
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read input file: %w", err)
		}
		return data, nil
	}
}

// Conceal embeds the payload into the image and writes the result with the
// image's own backend. Nothing is written when the payload does not fit.
func Conceal(ctx context.Context, args *ConcealArgs) error {
	imagePath := str(args.ImagePath)
	output := str(args.Output)
	if output == "" {
		output = fmt.Sprintf("%s.out", imagePath)
	}

	payload, err := args.payload()
	if err != nil {
		return err
	}
	raw := len(payload)
	if isSet(args.Compress) {
		if payload, err = compress(payload); err != nil {
			return err
		}
	}
	if isSet(args.ECC) {
		if payload, err = addReedSolomon(payload); err != nil {
			return fmt.Errorf("failed to apply Reed-Solomon encoding: %w", err)
		}
	}
	if isSet(args.Verbose) {
		log.Debug().Int("payload", raw).Int("embedded", len(payload)).Msg("Prepared payload")
	}

	backend, err := registry(args.Registry).Lookup(imagePath)
	if err != nil {
		return err
	}
	img, err := backend.Read(ctx, imagePath, args.Tracker.Stage("reading"))
	if err != nil {
		return err
	}
	defer backend.Release(img)

	opts := &lsb.Options{Fill: isSet(args.Fill), Progress: args.Tracker.Stage("embedding")}
	switch st := img.State.(type) {
	case *format.JPEGState:
		err = lsb.EmbedCoefficients(ctx, st.Frame, payload, opts)
	default:
		err = lsb.EmbedPixels(ctx, img.Raster, payload, opts)
	}
	if err != nil {
		return err
	}

	if err := backend.Write(ctx, img, output, args.Tracker.Stage("writing")); err != nil {
		return err
	}
	if isSet(args.Verbose) {
		log.Info().Str("output", output).Str("format", backend.Name()).Msg("Encoded message into the image")
	}
	return nil
}

// Reveal extracts the payload from the image. It is written to Output when
// set, to Writer when Output is "-" or empty and Writer is set, and is
// always returned.
func Reveal(ctx context.Context, args *RevealArgs) ([]byte, error) {
	payload, backend, err := extract(ctx, registry(args.Registry), str(args.ImagePath), args.Tracker)
	if err != nil {
		return nil, err
	}
	if isSet(args.Verbose) {
		log.Debug().Int("length", len(payload)).Str("format", backend.Name()).Msg("Extracted payload")
	}

	if isSet(args.ECC) {
		if payload, err = removeReedSolomon(payload); err != nil {
			return nil, err
		}
	}
	if isSet(args.Compress) {
		if payload, err = decompress(payload); err != nil {
			return nil, err
		}
	}

	switch out := str(args.Output); {
	case out != "" && out != Stdio:
		err = format.WriteFileAtomic(out, func(w io.Writer) error {
			_, err := w.Write(payload)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to write revealed payload: %w", err)
		}
	case args.Writer != nil:
		if _, err := args.Writer.Write(payload); err != nil {
			return nil, fmt.Errorf("failed to write revealed payload: %w", err)
		}
	}
	return payload, nil
}

// extract reads the image and returns the embedded stream as stored.
func extract(ctx context.Context, reg *format.Registry, imagePath string, t *progress.Tracker) ([]byte, format.Backend, error) {
	backend, err := reg.Lookup(imagePath)
	if err != nil {
		return nil, nil, err
	}
	img, err := backend.Read(ctx, imagePath, t.Stage("reading"))
	if err != nil {
		return nil, nil, err
	}
	defer backend.Release(img)

	opts := &lsb.Options{Progress: t.Stage("extracting")}
	var payload []byte
	switch st := img.State.(type) {
	case *format.JPEGState:
		payload, err = lsb.ExtractCoefficients(ctx, st.Frame, opts)
	default:
		payload, err = lsb.ExtractPixels(ctx, img.Raster, opts)
	}
	if err != nil {
		return nil, nil, err
	}
	return payload, backend, nil
}

// Capacity returns how many payload bytes the image can carry.
func Capacity(reg *format.Registry, imagePath string) (uint64, error) {
	backend, err := registry(reg).Lookup(imagePath)
	if err != nil {
		return 0, err
	}
	return backend.Capacity(imagePath)
}

