package lsb

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/andresmejia3/hide/v2/pkg/jpeg"
	"github.com/rs/zerolog/log"
)

// reportEvery is the number of carrier bytes between progress reports and
// cancellation checks in the coefficient engine.
const reportEvery = 512

// EligibleCoefficients counts the coefficients with magnitude above 1, DC
// included. Each one carries a single bit.
func EligibleCoefficients(f *jpeg.Frame) uint64 {
	var n uint64
	_ = f.EachBlock(func(_ *jpeg.Component, b *jpeg.Block) error {
		for _, v := range b {
			if eligible(v) {
				n++
			}
		}
		return nil
	})
	return n
}

// CoefficientCapacity is the number of payload bytes f holds.
func CoefficientCapacity(f *jpeg.Frame) uint64 {
	return bitsToCapacity(EligibleCoefficients(f))
}

func bitsToCapacity(bits uint64) uint64 {
	n := bits / 8
	if n < LengthSize {
		return 0
	}
	return n - LengthSize
}

// EmbedCoefficients writes the framed payload into the eligible coefficients
// of f, least significant bit of each byte first. Nothing is modified when
// the payload does not fit. Options.Fill is ignored.
func EmbedCoefficients(ctx context.Context, f *jpeg.Frame, payload []byte, o *Options) error {
	o = o.orDefault()
	s, err := makeCoefficientStepper(ctx, f)
	if err != nil {
		return err
	}
	capacity := bitsToCapacity(uint64(len(s.coefs)))
	if (uint64(len(payload))+LengthSize)*8 > uint64(len(s.coefs)) {
		return fmt.Errorf("%w: %d bytes requested, %d available", ErrInsufficientCapacity, len(payload), capacity)
	}
	if o.Fill {
		log.Debug().Msg("Fill mode does not apply to coefficient carriers")
	}

	msg := newMessage(payload)
	total := uint64(msg.len())
	log.Debug().Int("eligible", len(s.coefs)).Int("payload", len(payload)).Uint64("capacity", capacity).Msg("Embedding into coefficients")
	for i := 0; i < msg.len(); i++ {
		if i%reportEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			o.Progress.Report(uint64(i), total)
		}
		c := msg.at(i)
		for bit := 0; bit < 8; bit++ {
			p, err := s.next()
			if err != nil {
				return err
			}
			*p = setMagnitudeLSB(*p, getBitUint8(c, bit))
		}
	}
	o.Progress.Report(total, total)
	return nil
}

// ExtractCoefficients reads the framed payload back from f.
func ExtractCoefficients(ctx context.Context, f *jpeg.Frame, o *Options) ([]byte, error) {
	o = o.orDefault()
	s, err := makeCoefficientStepper(ctx, f)
	if err != nil {
		return nil, err
	}
	length, err := readCoefficientLength(s)
	if err != nil {
		return nil, err
	}

	payload := make([]byte, length)
	total := uint64(LengthSize) + length
	for i := range payload {
		if i%reportEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			o.Progress.Report(uint64(LengthSize+i), total)
		}
		if payload[i], err = readCoefficientByte(s); err != nil {
			return nil, err
		}
	}
	o.Progress.Report(total, total)
	return payload, nil
}

// CoefficientLength returns the payload length declared by the prefix in f.
func CoefficientLength(ctx context.Context, f *jpeg.Frame) (uint64, error) {
	s, err := makeCoefficientStepper(ctx, f)
	if err != nil {
		return 0, err
	}
	return readCoefficientLength(s)
}

func readCoefficientByte(s *coefficientStepper) (byte, error) {
	var c byte
	for bit := 0; bit < 8; bit++ {
		p, err := s.next()
		if err != nil {
			return 0, err
		}
		if magnitudeLSB(*p) != 0 {
			c = setBitUint8(c, bit)
		}
	}
	return c, nil
}

func readCoefficientLength(s *coefficientStepper) (uint64, error) {
	capacity := bitsToCapacity(uint64(len(s.coefs)))
	if s.remaining() < LengthSize*8 {
		return 0, fmt.Errorf("%w: carrier has fewer than %d eligible coefficients", ErrInvalidLength, LengthSize*8)
	}
	var header [LengthSize]byte
	for i := range header {
		c, err := readCoefficientByte(s)
		if err != nil {
			return 0, err
		}
		header[i] = c
	}
	length := binary.BigEndian.Uint64(header[:])
	if length > capacity {
		return 0, fmt.Errorf("%w: %d bytes declared, %d available", ErrInvalidLength, length, capacity)
	}
	log.Debug().Uint64("length", length).Uint64("capacity", capacity).Msg("Decoded coefficient length prefix")
	return length, nil
}
