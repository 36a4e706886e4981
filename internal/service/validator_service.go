package service

import (
	"fmt"
	"io"
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

// ValidatorService accepts proposer connections and either reconstructs
// blobs from erasure-coded shards or records partial availability.
type ValidatorService struct {
	id          *identity.Identity
	accumulator *ShardAccumulator
	verifier    identity.HandshakeVerifier
	outputDir   string
	quiet       bool

	bars map[string]*progressbar.ProgressBar
}

// NewValidatorService creates a validator. The verifier decides whether
// incoming handshakes are accepted; identity.AcceptAll reproduces the
// reference behavior of never checking them.
func NewValidatorService(id *identity.Identity, accumulator *ShardAccumulator, verifier identity.HandshakeVerifier, outputDir string, quiet bool) *ValidatorService {
	return &ValidatorService{
		id:          id,
		accumulator: accumulator,
		verifier:    verifier,
		outputDir:   outputDir,
		quiet:       quiet,
		bars:        make(map[string]*progressbar.ProgressBar),
	}
}

// Listen binds the port and serves connections until the listener fails.
func (s *ValidatorService) Listen(port int) error {
	listener, err := net.Listen("tcp", fmt.Sprintf("0.0.0.0:%d", port))
	if err != nil {
		return fmt.Errorf("bind port %d: %w", port, err)
	}
	defer listener.Close()

	log.Infof("validator listening on :%d", port)
	return s.Serve(listener)
}

// Serve accepts connections sequentially. Each connection's message
// stream is processed to completion before the next is accepted; there
// is no concurrent session handling.
func (s *ValidatorService) Serve(listener net.Listener) error {
	for {
		conn, err := listener.Accept()
		if err != nil {
			return fmt.Errorf("accept: %w", err)
		}

		log.Infof("connection from %s", conn.RemoteAddr())
		if err := s.HandleConnection(conn); err != nil {
			log.Errorf("connection from %s failed: %v", conn.RemoteAddr(), err)
		}
		conn.Close()
	}
}

// HandleConnection sends this validator's handshake, then consumes
// messages until the stream closes or a line fails to parse. At stream
// end it reports availability for every file stuck below the
// reconstruction threshold.
func (s *ValidatorService) HandleConnection(conn io.ReadWriter) error {
	codec := protocol.NewCodec(conn)

	handshake := s.id.Handshake(uint64(time.Now().Unix()))
	if err := codec.WriteMessage(&domain.Message{Handshake: handshake}); err != nil {
		return fmt.Errorf("send handshake: %w", err)
	}
	log.Info("session secured (ed25519)")

	// Terminal observation: whatever ends the read loop, files stuck
	// below the threshold are reported as available via sampling.
	defer func() {
		s.reportSampling(codec.BytesRead())
	}()

	for {
		msg, err := codec.ReadMessage()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch {
		case msg.Handshake != nil:
			if err := s.verifier.Verify(msg.Handshake); err != nil {
				return fmt.Errorf("peer handshake rejected: %w", err)
			}
		case msg.NaiveTransfer != nil:
			s.handleNaiveTransfer(msg.NaiveTransfer)
		case msg.DasShard != nil:
			s.handleDasShard(msg.DasShard)
		}
	}

	return nil
}

func (s *ValidatorService) handleNaiveTransfer(transfer *domain.NaiveTransfer) {
	log.Infof("receiving full blob %s (naive, %s)", transfer.Filename, FormatBytes(len(transfer.Data)))

	if Checksum(transfer.Data) != transfer.Checksum {
		log.Errorf("naive transfer of %s corrupted, discarding", transfer.Filename)
		return
	}

	path := filepath.Join(s.outputDir, "recv_"+filepath.Base(transfer.Filename))
	if err := os.WriteFile(path, transfer.Data, 0644); err != nil {
		log.Errorf("write %s: %v", path, err)
		return
	}
	log.Infof("integrity verified, wrote %s", path)
}

func (s *ValidatorService) handleDasShard(shard *domain.DasShard) {
	blob, done, err := s.accumulator.Ingest(shard)
	s.updateShardProgress(shard.Filename)
	if err != nil {
		// Shard state is retained; the next arrival re-attempts.
		log.Errorf("%v", err)
		return
	}
	if !done {
		return
	}

	path := filepath.Join(s.outputDir, "reconstructed_"+filepath.Base(shard.Filename))
	if err := os.WriteFile(path, blob, 0644); err != nil {
		log.Errorf("write %s: %v", path, err)
		return
	}
	s.finishShardProgress(shard.Filename)
	log.Infof("reconstruction successful, wrote %s (%s)", path, FormatBytes(len(blob)))
}

func (s *ValidatorService) updateShardProgress(filename string) {
	if s.quiet {
		return
	}
	bar, ok := s.bars[filename]
	if !ok {
		bar = progressbar.Default(int64(TotalShards), "downloading shards")
		s.bars[filename] = bar
	}
	bar.Set(s.accumulator.Count(filename))
}

func (s *ValidatorService) finishShardProgress(filename string) {
	if bar, ok := s.bars[filename]; ok {
		bar.Finish()
		delete(s.bars, filename)
	}
}

// reportSampling emits the light client availability report for every
// filename holding some shards but fewer than the threshold. The
// threshold miss is treated as probabilistic evidence of availability,
// a structural stand-in for real sampling.
func (s *ValidatorService) reportSampling(bytesReceived int) {
	for filename, count := range s.accumulator.SampledBelowThreshold() {
		log.Infof("light client validation for %s: sampled %d random shards", filename, count)
		log.Infof("data availability verified (>99%% prob), simulated bandwidth %s", FormatBytes(bytesReceived))
	}
}
