package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBytesMarshalsAsNumericArray(t *testing.T) {
	tests := []struct {
		name string
		in   Bytes
		want string
	}{
		{"empty", Bytes{}, "[]"},
		{"nil", nil, "[]"},
		{"values", Bytes{0, 1, 127, 255}, "[0,1,127,255]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := json.Marshal(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, string(out))
		})
	}
}

func TestBytesRoundTrip(t *testing.T) {
	in := Bytes{9, 8, 7, 0, 255}
	out, err := json.Marshal(in)
	require.NoError(t, err)

	var back Bytes
	require.NoError(t, json.Unmarshal(out, &back))
	require.Equal(t, in, back)
}

func TestBytesUnmarshalRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"value out of range", "[0,256]"},
		{"base64 string", `"AQID"`},
		{"negative", "[-1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b Bytes
			require.Error(t, json.Unmarshal([]byte(tt.in), &b))
		})
	}
}

func TestMessageVariantCount(t *testing.T) {
	require.Equal(t, 0, (&Message{}).VariantCount())
	require.Equal(t, 1, (&Message{Handshake: &Handshake{}}).VariantCount())
	require.Equal(t, 2, (&Message{
		Handshake: &Handshake{},
		DasShard:  &DasShard{},
	}).VariantCount())
}

func TestMessageMarshalOmitsUnsetVariants(t *testing.T) {
	msg := Message{DasShard: &DasShard{
		Filename:         "blob.bin",
		OriginalLen:      10,
		Index:            3,
		Data:             Bytes{1, 2, 3},
		FullFileChecksum: "abcd",
	}}

	out, err := json.Marshal(&msg)
	require.NoError(t, err)
	require.JSONEq(t,
		`{"DasShard":{"filename":"blob.bin","original_len":10,"index":3,"data":[1,2,3],"full_file_checksum":"abcd"}}`,
		string(out))
}

func TestParseTransferMode(t *testing.T) {
	for _, valid := range []string{"naive", "das-full", "das-sample"} {
		mode, err := ParseTransferMode(valid)
		require.NoError(t, err)
		require.Equal(t, TransferMode(valid), mode)
	}

	_, err := ParseTransferMode("das")
	require.Error(t, err)
}
