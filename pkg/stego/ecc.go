package stego

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/klauspost/reedsolomon"
)

// ErrECC is returned when a Reed-Solomon envelope cannot be recovered.
var ErrECC = errors.New("reed-solomon reconstruction failed")

// Reed-Solomon Configuration
const (
	rsDataShards   = 4
	rsParityShards = 2
	rsTotalShards  = rsDataShards + rsParityShards
)

// addReedSolomon wraps data as [4-byte BE length][data] split into data
// shards, followed by the parity shards.
func addReedSolomon(data []byte) ([]byte, error) {
	enc, err := reedsolomon.New(rsDataShards, rsParityShards)
	if err != nil {
		return nil, err
	}

	header := make([]byte, 4, 4+len(data))
	binary.BigEndian.PutUint32(header, uint32(len(data)))
	payload := append(header, data...)

	shards, err := enc.Split(payload)
	if err != nil {
		return nil, err
	}
	if err := enc.Encode(shards); err != nil {
		return nil, err
	}

	output := make([]byte, 0, len(shards)*len(shards[0]))
	for _, shard := range shards {
		output = append(output, shard...)
	}
	return output, nil
}

// removeReedSolomon reverses addReedSolomon. A single damaged shard is
// located by trial reconstruction.
func removeReedSolomon(data []byte) ([]byte, error) {
	if len(data) == 0 || len(data)%rsTotalShards != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of shards", ErrECC, len(data))
	}
	enc, err := reedsolomon.New(rsDataShards, rsParityShards)
	if err != nil {
		return nil, err
	}

	size := len(data) / rsTotalShards
	shards := make([][]byte, rsTotalShards)
	for i := range shards {
		shards[i] = data[i*size : (i+1)*size]
	}

	if ok, _ := enc.Verify(shards); !ok {
		if shards, err = repair(enc, shards); err != nil {
			return nil, err
		}
	}

	joined := make([]byte, 0, rsDataShards*size)
	for i := 0; i < rsDataShards; i++ {
		joined = append(joined, shards[i]...)
	}
	if len(joined) < 4 {
		return nil, fmt.Errorf("%w: recovered data too short", ErrECC)
	}
	length := binary.BigEndian.Uint32(joined[:4])
	if uint64(len(joined)) < 4+uint64(length) {
		return nil, fmt.Errorf("%w: recovered data length mismatch", ErrECC)
	}
	return joined[4 : 4+length], nil
}

// repair drops each shard in turn and keeps the first reconstruction whose
// parity verifies. Dropping two shards leaves no redundancy to verify with.
func repair(enc reedsolomon.Encoder, shards [][]byte) ([][]byte, error) {
	try := func(missing int) [][]byte {
		trial := make([][]byte, len(shards))
		copy(trial, shards)
		trial[missing] = nil
		if err := enc.Reconstruct(trial); err != nil {
			return nil
		}
		if ok, err := enc.Verify(trial); err != nil || !ok {
			return nil
		}
		return trial
	}

	for i := 0; i < rsTotalShards; i++ {
		if fixed := try(i); fixed != nil {
			return fixed, nil
		}
	}
	return nil, ErrECC
}

// ECCCapacity is the largest payload whose Reed-Solomon envelope fits in
// capacity carrier bytes.
func ECCCapacity(capacity uint64) uint64 {
	perShard := capacity / rsTotalShards
	if perShard*rsDataShards < 4 {
		return 0
	}
	return perShard*rsDataShards - 4
}

// checkReedSolomon reports whether data is an intact envelope. A damaged but
// recoverable envelope returns false and no error.
func checkReedSolomon(data []byte) (bool, error) {
	if len(data) == 0 || len(data)%rsTotalShards != 0 {
		return false, fmt.Errorf("%w: %d bytes is not a whole number of shards", ErrECC, len(data))
	}
	enc, err := reedsolomon.New(rsDataShards, rsParityShards)
	if err != nil {
		return false, err
	}
	size := len(data) / rsTotalShards
	shards := make([][]byte, rsTotalShards)
	for i := range shards {
		shards[i] = data[i*size : (i+1)*size]
	}
	if ok, _ := enc.Verify(shards); ok {
		return true, nil
	}
	if _, err := repair(enc, shards); err != nil {
		return false, err
	}
	return false, nil
}
