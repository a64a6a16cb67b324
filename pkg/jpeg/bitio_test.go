package jpeg

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitWriterStuffsAndPads(t *testing.T) {
	tests := []struct {
		name string
		put  func(bw *bitWriter)
		want []byte
	}{
		{"stuffing", func(bw *bitWriter) { bw.put(0xFF, 8) }, []byte{0xFF, 0x00}},
		{"padding", func(bw *bitWriter) { bw.put(0b101, 3) }, []byte{0xBF}},
		{"padding to 0xFF is stuffed", func(bw *bitWriter) { bw.put(0xAB, 8); bw.put(1, 1) }, []byte{0xAB, 0xFF, 0x00}},
		{"zero length", func(bw *bitWriter) { bw.put(0xFFFF, 0) }, nil},
		{"masked", func(bw *bitWriter) { bw.put(0xF0F, 4) }, []byte{0xFF, 0x00}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			bw := &bitWriter{buf: &buf}
			tt.put(bw)
			bw.flush()
			assert.Equal(t, tt.want, buf.Bytes())
		})
	}
}

func TestBitReaderStopsAtMarker(t *testing.T) {
	data := []byte{0xFF, 0x00, 0x12, 0xFF, 0xD9}
	br := newBitReader(data, 0)

	v, err := br.get(8)
	require.NoError(t, err)
	assert.Equal(t, int32(0xFF), v)
	v, err = br.get(8)
	require.NoError(t, err)
	assert.Equal(t, int32(0x12), v)

	// Peeking past the marker is allowed and yields zeros.
	assert.Equal(t, uint32(0), br.peek(16))
	_, err = br.get(1)
	assert.ErrorIs(t, err, ErrTruncated)
	assert.True(t, br.exhausted())
	assert.Equal(t, 3, br.pos)
}

func TestBitReaderEndOfData(t *testing.T) {
	br := newBitReader([]byte{0xA5}, 0)
	v, err := br.get(4)
	require.NoError(t, err)
	assert.Equal(t, int32(0xA), v)
	v, err = br.get(4)
	require.NoError(t, err)
	assert.Equal(t, int32(0x5), v)
	_, err = br.get(1)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestBitRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	type field struct {
		value  uint32
		length uint8
	}
	fields := make([]field, 2000)
	var buf bytes.Buffer
	bw := &bitWriter{buf: &buf}
	for i := range fields {
		n := uint8(1 + rng.Intn(16))
		fields[i] = field{uint32(rng.Intn(1 << n)), n}
		bw.put(fields[i].value, n)
	}
	bw.flush()

	br := newBitReader(buf.Bytes(), 0)
	for i, f := range fields {
		v, err := br.get(int(f.length))
		require.NoError(t, err, "field %d", i)
		require.Equal(t, int32(f.value), v, "field %d", i)
	}
}

func TestReceiveExtend(t *testing.T) {
	for v := int32(-2047); v <= 2047; v++ {
		n, bits := category(v)
		var buf bytes.Buffer
		bw := &bitWriter{buf: &buf}
		bw.put(bits, n)
		bw.flush()

		got, err := newBitReader(buf.Bytes(), 0).receiveExtend(n)
		require.NoError(t, err)
		require.Equal(t, v, got, "category %d", n)
	}

	_, err := newBitReader([]byte{0, 0, 0}, 0).receiveExtend(maxCodeLength + 1)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestCategory(t *testing.T) {
	tests := []struct {
		v    int32
		n    uint8
		bits uint32
	}{
		{0, 0, 0},
		{1, 1, 0b1},
		{-1, 1, 0b0},
		{3, 2, 0b11},
		{-3, 2, 0b00},
		{-2, 2, 0b01},
		{1023, 10, 0x3FF},
		{-1023, 10, 0},
	}
	for _, tt := range tests {
		n, bits := category(tt.v)
		if n != tt.n || bits != tt.bits {
			t.Errorf("category(%d) = %d, %b, want %d, %b", tt.v, n, bits, tt.n, tt.bits)
		}
	}
}
