package identity

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zzenonn/dasim/internal/domain"
	"github.com/zzenonn/dasim/internal/errors"
)

func TestGenerateProducesDistinctKeypairs(t *testing.T) {
	a, err := Generate()
	require.NoError(t, err)
	b, err := Generate()
	require.NoError(t, err)

	require.Len(t, a.Public(), ed25519.PublicKeySize)
	require.NotEqual(t, a.Public(), b.Public())
}

func TestSignVerifiesAgainstPublicKey(t *testing.T) {
	id, err := Generate()
	require.NoError(t, err)

	message := []byte("arbitrary bytes")
	sig := id.Sign(message)
	require.True(t, ed25519.Verify(id.Public(), message, sig))
}

func TestHandshakeSignsTimestamp(t *testing.T) {
	id, err := Generate()
	require.NoError(t, err)

	hs := id.Handshake(1000)
	require.Equal(t, uint64(1000), hs.Ts)
	require.Equal(t, domain.Bytes(id.Public()), hs.Pubkey)
	require.NoError(t, StrictVerifier{}.Verify(hs))
}

func TestStrictVerifierRejectsTampering(t *testing.T) {
	id, err := Generate()
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*domain.Handshake)
	}{
		{"flipped signature bit", func(hs *domain.Handshake) { hs.Sig[0] ^= 0x01 }},
		{"altered timestamp", func(hs *domain.Handshake) { hs.Ts++ }},
		{"truncated public key", func(hs *domain.Handshake) { hs.Pubkey = hs.Pubkey[:16] }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := id.Handshake(1000)
			tt.mutate(hs)
			require.ErrorIs(t, StrictVerifier{}.Verify(hs), errors.ErrInvalidSignature)
		})
	}
}

func TestAcceptAllNeverRejects(t *testing.T) {
	require.NoError(t, AcceptAll{}.Verify(&domain.Handshake{}))
	require.NoError(t, AcceptAll{}.Verify(&domain.Handshake{Pubkey: domain.Bytes{1, 2}, Sig: domain.Bytes{3}, Ts: 42}))
}
