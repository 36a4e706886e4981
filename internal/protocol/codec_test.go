package protocol

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zzenonn/dasim/internal/domain"
	"github.com/zzenonn/dasim/internal/errors"
)

func TestCodecRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	codec := NewCodec(&buf)

	messages := []*domain.Message{
		{Handshake: &domain.Handshake{Pubkey: domain.Bytes{1}, Sig: domain.Bytes{2}, Ts: 1000}},
		{NaiveTransfer: &domain.NaiveTransfer{Filename: "a.bin", Data: domain.Bytes{1, 2, 3}, Checksum: "ff"}},
		{DasShard: &domain.DasShard{Filename: "a.bin", OriginalLen: 3, Index: 5, Data: domain.Bytes{9}, FullFileChecksum: "ff"}},
	}

	for _, msg := range messages {
		require.NoError(t, codec.WriteMessage(msg))
	}
	require.Equal(t, buf.Len(), codec.BytesWritten())

	for _, want := range messages {
		got, err := codec.ReadMessage()
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := codec.ReadMessage()
	require.Equal(t, io.EOF, err)
}

func TestCodecSkipsBlankLines(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("\n   \n")
	buf.WriteString(`{"Handshake":{"pubkey":[1],"sig":[2],"ts":7}}` + "\n")
	buf.WriteString("\n")

	codec := NewCodec(&buf)
	msg, err := codec.ReadMessage()
	require.NoError(t, err)
	require.NotNil(t, msg.Handshake)
	require.Equal(t, uint64(7), msg.Handshake.Ts)

	_, err = codec.ReadMessage()
	require.Equal(t, io.EOF, err)
}

func TestCodecRejectsMalformedLines(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"not json", "garbage"},
		{"unknown variant", `{"Gossip":{"x":1}}`},
		{"no variant", `{}`},
		{"two variants", `{"Handshake":{"pubkey":[],"sig":[],"ts":0},"DasShard":{"filename":"a","original_len":0,"index":0,"data":[],"full_file_checksum":""}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			buf.WriteString(tt.line + "\n")

			codec := NewCodec(&buf)
			_, err := codec.ReadMessage()
			require.ErrorIs(t, err, errors.ErrUnknownMessage)
		})
	}
}

func TestCodecFramesNeverContainNewlines(t *testing.T) {
	payload := make([]byte, 1024)
	for i := range payload {
		payload[i] = byte(i % 256) // includes 0x0a
	}

	var buf bytes.Buffer
	codec := NewCodec(&buf)
	require.NoError(t, codec.WriteMessage(&domain.Message{
		NaiveTransfer: &domain.NaiveTransfer{Filename: "n", Data: payload, Checksum: "c"},
	}))

	frame := buf.Bytes()
	require.Equal(t, byte('\n'), frame[len(frame)-1])
	require.NotContains(t, string(frame[:len(frame)-1]), "\n")
}
