package lsb

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/andresmejia3/hide/v2/pkg/raster"
	"github.com/rs/zerolog/log"
)

// PixelCapacity is the number of payload bytes a width x height pixel
// carrier holds: one byte per pixel minus the length prefix.
func PixelCapacity(width, height int) uint64 {
	n := uint64(width) * uint64(height)
	if width <= 0 || height <= 0 || n < LengthSize {
		return 0
	}
	return n - LengthSize
}

// EmbedPixels writes the framed payload into r, one byte per pixel across
// the low bits of channels 0, 1 and 2. Nothing is modified when the payload
// does not fit.
func EmbedPixels(ctx context.Context, r *raster.Raster, payload []byte, o *Options) error {
	if err := r.Validate(); err != nil {
		return err
	}
	o = o.orDefault()
	// The prefix must fit as well, even for an empty payload.
	capacity := PixelCapacity(r.Width, r.Height)
	if uint64(len(payload))+LengthSize > uint64(r.Width)*uint64(r.Height) {
		return fmt.Errorf("%w: %d bytes requested, %d available", ErrInsufficientCapacity, len(payload), capacity)
	}

	msg := newMessage(payload)
	total := msg.len()
	if o.Fill {
		total = r.Width * r.Height
	}
	log.Debug().Int("width", r.Width).Int("height", r.Height).Int("payload", len(payload)).Uint64("capacity", capacity).Bool("fill", o.Fill).Msg("Embedding into pixels")

	rng := o.Rand
	if o.Fill {
		rng = o.rand()
	}
	s := makePixelStepper(r)
	for i := 0; i < total; i++ {
		if s.rowStart() {
			if err := ctx.Err(); err != nil {
				return err
			}
			o.Progress.Report(uint64(i), uint64(total))
		}
		px, err := s.pixel(r)
		if err != nil {
			return err
		}
		var c byte
		if i < msg.len() {
			c = msg.at(i)
		} else {
			c = byte(rng.Intn(256))
		}
		putPixelByte(px, c)
		s.step()
	}
	o.Progress.Report(uint64(total), uint64(total))
	return nil
}

// ExtractPixels reads the framed payload back from r. It stops right after
// the declared number of bytes.
func ExtractPixels(ctx context.Context, r *raster.Raster, o *Options) ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	o = o.orDefault()
	s := makePixelStepper(r)
	length, err := readPixelLength(r, s)
	if err != nil {
		return nil, err
	}

	payload := make([]byte, length)
	total := uint64(LengthSize) + length
	for i := range payload {
		if s.rowStart() {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			o.Progress.Report(uint64(LengthSize+i), total)
		}
		px, err := s.pixel(r)
		if err != nil {
			return nil, err
		}
		payload[i] = pixelByte(px)
		s.step()
	}
	o.Progress.Report(total, total)
	return payload, nil
}

// PixelLength returns the payload length declared by the prefix in r.
func PixelLength(r *raster.Raster) (uint64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	return readPixelLength(r, makePixelStepper(r))
}

func readPixelLength(r *raster.Raster, s *pixelStepper) (uint64, error) {
	capacity := PixelCapacity(r.Width, r.Height)
	if uint64(r.Width)*uint64(r.Height) < LengthSize {
		return 0, fmt.Errorf("%w: carrier has fewer than %d pixels", ErrInvalidLength, LengthSize)
	}
	var header [LengthSize]byte
	for i := range header {
		px, err := s.pixel(r)
		if err != nil {
			return 0, err
		}
		header[i] = pixelByte(px)
		s.step()
	}
	length := binary.BigEndian.Uint64(header[:])
	if length > capacity {
		return 0, fmt.Errorf("%w: %d bytes declared, %d available", ErrInvalidLength, length, capacity)
	}
	log.Debug().Uint64("length", length).Uint64("capacity", capacity).Msg("Decoded pixel length prefix")
	return length, nil
}
