// Package lsb hides a length-prefixed byte stream in the low-order bits of a
// carrier: pixel channel bytes of a raster, or the quantized DCT
// coefficients of a JPEG frame.
//
// The stream is an 8-byte big-endian payload length followed by the payload.
// There is no magic number and no checksum.
package lsb

import (
	"encoding/binary"
	"errors"
	"math/rand"
	"time"

	"github.com/andresmejia3/hide/v2/internal/progress"
)

// LengthSize is the size of the big-endian length prefix in carrier bytes.
const LengthSize = 8

var (
	// ErrInsufficientCapacity is returned before the carrier is touched.
	ErrInsufficientCapacity = errors.New("payload exceeds carrier capacity")
	// ErrInvalidLength is returned when an embedded length prefix cannot be
	// satisfied by the carrier.
	ErrInvalidLength = errors.New("embedded length exceeds carrier capacity")
)

// Options control embedding and extraction. The zero value is usable.
type Options struct {
	// Fill writes pseudorandom bytes into every pixel position after the
	// payload. It does not apply to coefficient carriers.
	Fill bool
	// Rand is the filler source. Nil means a time-seeded source.
	Rand *rand.Rand
	// Progress receives (positions done, positions total).
	Progress progress.Func
}

func (o *Options) orDefault() *Options {
	if o == nil {
		return &Options{}
	}
	return o
}

func (o *Options) rand() *rand.Rand {
	if o.Rand != nil {
		return o.Rand
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// message is the framed stream: length prefix, then payload.
type message struct {
	header  [LengthSize]byte
	payload []byte
}

func newMessage(payload []byte) *message {
	m := &message{payload: payload}
	binary.BigEndian.PutUint64(m.header[:], uint64(len(payload)))
	return m
}

func (m *message) len() int { return LengthSize + len(m.payload) }

func (m *message) at(i int) byte {
	if i < LengthSize {
		return m.header[i]
	}
	return m.payload[i-LengthSize]
}
