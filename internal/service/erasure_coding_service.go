package service

import (
	"bytes"
	"fmt"

	"github.com/klauspost/reedsolomon"

	"github.com/zzenonn/dasim/internal/errors"
)

// Erasure coding parameters, fixed for the whole process. n = k + m and
// any k of the n shards recover the blob.
const (
	DataShards   = 4
	ParityShards = 2
	TotalShards  = DataShards + ParityShards
)

// ShardBlob pads data with trailing zeros to a multiple of DataShards,
// splits it into DataShards equal data shards and derives ParityShards
// parity shards. All returned shards have equal length.
func ShardBlob(data []byte) ([][]byte, error) {
	if len(data) == 0 {
		// The engine rejects zero-length shards; an empty blob encodes
		// to n empty shards and reconstructs to an empty blob.
		shards := make([][]byte, TotalShards)
		for i := range shards {
			shards[i] = []byte{}
		}
		return shards, nil
	}

	enc, err := reedsolomon.New(DataShards, ParityShards)
	if err != nil {
		return nil, fmt.Errorf("create encoder: %w", err)
	}

	shards, err := enc.Split(data)
	if err != nil {
		return nil, fmt.Errorf("split blob: %w", err)
	}

	if err := enc.Encode(shards); err != nil {
		return nil, fmt.Errorf("encode parity: %w", err)
	}

	return shards, nil
}

// ReconstructBlob recovers the original blob from any subset of at least
// DataShards distinct shards, truncating to originalLen. Decode problems
// are returned as errors, never panicked.
func ReconstructBlob(shards map[int][]byte, originalLen int) ([]byte, error) {
	if len(shards) < DataShards {
		return nil, errors.ErrInsufficientShards
	}

	full := make([][]byte, TotalShards)
	for index, payload := range shards {
		if index < 0 || index >= TotalShards {
			return nil, errors.ShardIndexError(index, TotalShards)
		}
		full[index] = payload
	}

	if originalLen == 0 {
		return []byte{}, nil
	}

	enc, err := reedsolomon.New(DataShards, ParityShards)
	if err != nil {
		return nil, fmt.Errorf("create encoder: %w", err)
	}

	if err := enc.Reconstruct(full); err != nil {
		return nil, fmt.Errorf("reconstruct shards: %w", err)
	}

	var buf bytes.Buffer
	if err := enc.Join(&buf, full, originalLen); err != nil {
		return nil, fmt.Errorf("join data shards: %w", err)
	}

	return buf.Bytes(), nil
}
