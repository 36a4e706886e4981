package service

import (
	"fmt"
	"math/rand"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"

	"github.com/zzenonn/dasim/internal/domain"
	"github.com/zzenonn/dasim/internal/identity"
	"github.com/zzenonn/dasim/internal/protocol"
)

// SampleShardCount is how many shards das-sample mode sends. It is
// deliberately below the reconstruction threshold.
const SampleShardCount = 2

// drainDelay gives the peer time to drain buffered frames before the
// socket closes.
const drainDelay = 500 * time.Millisecond

// ProposerService reads a blob and pushes it to one validator using the
// selected strategy.
type ProposerService struct {
	id    *identity.Identity
	quiet bool
}

// NewProposerService creates a proposer bound to a signing identity.
func NewProposerService(id *identity.Identity, quiet bool) *ProposerService {
	return &ProposerService{id: id, quiet: quiet}
}

// Send transfers the file at filePath to peer. The whole blob is read
// into memory once; its checksum travels with every message so the
// receiver can verify integrity.
func (s *ProposerService) Send(peer, filePath string, mode domain.TransferMode) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	filename := filepath.Base(filePath)
	checksum := Checksum(data)

	log.Infof("target %s", peer)
	log.Infof("payload %s (%s)", filename, FormatBytes(len(data)))
	log.Infof("strategy %s", mode)

	conn, err := net.Dial("tcp", peer)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", peer, err)
	}
	defer conn.Close()

	codec := protocol.NewCodec(conn)
	if err := codec.WriteMessage(&domain.Message{Handshake: s.id.Handshake(uint64(time.Now().Unix()))}); err != nil {
		return fmt.Errorf("send handshake: %w", err)
	}

	baseline := codec.BytesWritten()
	start := time.Now()

	switch mode {
	case domain.ModeNaive:
		err = codec.WriteMessage(&domain.Message{NaiveTransfer: &domain.NaiveTransfer{
			Filename: filename,
			Data:     domain.Bytes(data),
			Checksum: checksum,
		}})
	case domain.ModeDasFull, domain.ModeDasSample:
		err = s.sendShards(codec, filename, data, checksum, mode)
	default:
		err = fmt.Errorf("unknown transfer mode %q", mode)
	}
	if err != nil {
		return err
	}

	s.reportMetrics(mode, len(data), codec.BytesWritten()-baseline, time.Since(start))

	time.Sleep(drainDelay)
	return nil
}

// sendShards encodes the blob, shuffles the shard indices and sends the
// first k of the shuffled order (das-full) or a fixed sample below the
// threshold (das-sample). Any k distinct indices suffice for the peer to
// reconstruct, so the shuffle costs nothing in das-full mode.
func (s *ProposerService) sendShards(codec *protocol.Codec, filename string, data []byte, checksum string, mode domain.TransferMode) error {
	shards, err := ShardBlob(data)
	if err != nil {
		return err
	}

	count := DataShards
	if mode == domain.ModeDasSample {
		count = SampleShardCount
	}
	indices := rand.Perm(TotalShards)

	var bar *progressbar.ProgressBar
	if !s.quiet {
		bar = progressbar.Default(int64(count), "sending shards")
	}

	for _, index := range indices[:count] {
		msg := &domain.Message{DasShard: &domain.DasShard{
			Filename:         filename,
			OriginalLen:      len(data),
			Index:            index,
			Data:             domain.Bytes(shards[index]),
			FullFileChecksum: checksum,
		}}
		if err := codec.WriteMessage(msg); err != nil {
			return fmt.Errorf("send shard %d: %w", index, err)
		}
		if bar != nil {
			bar.Add(1)
		}
	}
	return nil
}

func (s *ProposerService) reportMetrics(mode domain.TransferMode, fileSize, wireBytes int, elapsed time.Duration) {
	throughput := 0.0
	if seconds := elapsed.Seconds(); seconds > 0 {
		throughput = float64(wireBytes) / 1024.0 / 1024.0 / seconds
	}

	log.Infof("mode %s: latency %s, throughput %.2f MB/s, total wire %s",
		mode, elapsed.Round(time.Microsecond), throughput, FormatBytes(wireBytes))

	if fileSize == 0 {
		return
	}
	if wireBytes < fileSize {
		savings := (float64(fileSize) - float64(wireBytes)) / float64(fileSize) * 100.0
		log.Infof("efficiency: %.2f%% saved vs full transfer", savings)
	} else {
		overhead := (float64(wireBytes)/float64(fileSize) - 1.0) * 100.0
		log.Infof("overhead: %.2f%% vs full transfer", overhead)
	}
}
