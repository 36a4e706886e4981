package service

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/zzenonn/dasim/internal/domain"
	"github.com/zzenonn/dasim/internal/errors"
)

// ShardAccumulator tracks arriving shards per filename and drives
// reconstruction attempts once the threshold is reached.
//
// The map is shared across connections and guarded by a single lock even
// though the accept loop only runs one connection at a time.
type ShardAccumulator struct {
	mu      sync.Mutex
	buffers map[string]map[int][]byte
}

// NewShardAccumulator creates an empty accumulator.
func NewShardAccumulator() *ShardAccumulator {
	return &ShardAccumulator{
		buffers: make(map[string]map[int][]byte),
	}
}

// Ingest records one shard and, once at least DataShards distinct
// indices have accumulated for the filename, attempts reconstruction.
//
// A duplicate index overwrites the previous payload and does not raise
// the distinct count. Below threshold, Ingest returns (nil, false, nil).
// On a successful, checksum-verified reconstruction it returns the blob
// and clears the filename's entry. On decode failure or checksum
// mismatch it returns the error and keeps the entry, so the next shard
// arrival re-attempts reconstruction.
func (a *ShardAccumulator) Ingest(shard *domain.DasShard) ([]byte, bool, error) {
	if shard.Index < 0 || shard.Index >= TotalShards {
		return nil, false, errors.ShardIndexError(shard.Index, TotalShards)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	buffer, ok := a.buffers[shard.Filename]
	if !ok {
		buffer = make(map[int][]byte)
		a.buffers[shard.Filename] = buffer
	}
	buffer[shard.Index] = shard.Data

	log.Debugf("shards for %s: %d/%d (k=%d)", shard.Filename, len(buffer), TotalShards, DataShards)

	if len(buffer) < DataShards {
		return nil, false, nil
	}

	blob, err := ReconstructBlob(buffer, shard.OriginalLen)
	if err != nil {
		return nil, false, fmt.Errorf("reconstruct %s: %w", shard.Filename, err)
	}

	if Checksum(blob) != shard.FullFileChecksum {
		return nil, false, fmt.Errorf("reconstruct %s: %w", shard.Filename, errors.ErrChecksumMismatch)
	}

	// Reset for a future transfer of the same filename.
	a.buffers[shard.Filename] = make(map[int][]byte)
	return blob, true, nil
}

// Count returns the distinct shard count accumulated for filename.
func (a *ShardAccumulator) Count(filename string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.buffers[filename])
}

// Clear drops all accumulated shards for filename.
func (a *ShardAccumulator) Clear(filename string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.buffers, filename)
}

// SampledBelowThreshold returns, per filename, the shard counts that are
// non-empty but below the reconstruction threshold. These are the
// entries reported as "availability verified via sampling" when a
// connection ends.
func (a *ShardAccumulator) SampledBelowThreshold() map[string]int {
	a.mu.Lock()
	defer a.mu.Unlock()

	sampled := make(map[string]int)
	for filename, buffer := range a.buffers {
		if len(buffer) > 0 && len(buffer) < DataShards {
			sampled[filename] = len(buffer)
		}
	}
	return sampled
}
