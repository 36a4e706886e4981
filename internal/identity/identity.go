// Package identity holds the per-process ed25519 keypair and the
// handshake acceptance policy.
package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/zzenonn/dasim/internal/domain"
	"github.com/zzenonn/dasim/internal/errors"
)

// Identity is a signing keypair generated once per process run.
type Identity struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

// Generate creates a fresh keypair.
func Generate() (*Identity, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate keypair: %w", err)
	}
	return &Identity{priv: priv, pub: pub}, nil
}

// Sign signs an arbitrary message with the identity's private key.
func (id *Identity) Sign(message []byte) []byte {
	return ed25519.Sign(id.priv, message)
}

// Public returns the verification key.
func (id *Identity) Public() ed25519.PublicKey {
	return id.pub
}

// Handshake builds the handshake message for this identity. The
// signature covers the big-endian bytes of ts.
func (id *Identity) Handshake(ts uint64) *domain.Handshake {
	return &domain.Handshake{
		Pubkey: domain.Bytes(id.pub),
		Sig:    domain.Bytes(id.Sign(timestampBytes(ts))),
		Ts:     ts,
	}
}

func timestampBytes(ts uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], ts)
	return buf[:]
}

// HandshakeVerifier decides whether an incoming handshake is accepted.
// The reference behavior never inspects the peer's handshake, so the
// default is AcceptAll; StrictVerifier is the hardened drop-in.
type HandshakeVerifier interface {
	Verify(hs *domain.Handshake) error
}

// AcceptAll accepts every handshake without inspecting it.
type AcceptAll struct{}

func (AcceptAll) Verify(*domain.Handshake) error { return nil }

// StrictVerifier checks the signature over the timestamp against the
// claimed public key and rejects on mismatch.
type StrictVerifier struct{}

func (StrictVerifier) Verify(hs *domain.Handshake) error {
	if len(hs.Pubkey) != ed25519.PublicKeySize {
		return fmt.Errorf("%w: public key is %d bytes, want %d",
			errors.ErrInvalidSignature, len(hs.Pubkey), ed25519.PublicKeySize)
	}
	if !ed25519.Verify(ed25519.PublicKey(hs.Pubkey), timestampBytes(hs.Ts), hs.Sig) {
		return errors.ErrInvalidSignature
	}
	return nil
}
