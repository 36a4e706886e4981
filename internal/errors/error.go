package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientShards = errors.New("insufficient shards available for reconstruction")
	ErrChecksumMismatch   = errors.New("checksum mismatch on received data")
	ErrUnknownMessage     = errors.New("line is not a known protocol message")
	ErrInvalidSignature   = errors.New("handshake signature does not verify")
)

// ShardIndexError reports a shard index outside [0, total).
func ShardIndexError(index, total int) error {
	return fmt.Errorf("shard index %d out of range [0, %d)", index, total)
}
