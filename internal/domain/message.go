// Package domain defines the wire protocol messages and transfer modes
// shared by the proposer and validator roles.
package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Bytes is a byte payload that marshals as a JSON array of numbers
// instead of base64. The line-framed transport relies on frames never
// containing a literal newline, which numeric arrays guarantee, and
// peers on the reference implementation encode payloads the same way.
type Bytes []byte

// MarshalJSON encodes the payload as [n0,n1,...].
func (b Bytes) MarshalJSON() ([]byte, error) {
	out := make([]byte, 0, len(b)*4+2)
	out = append(out, '[')
	for i, v := range b {
		if i > 0 {
			out = append(out, ',')
		}
		out = strconv.AppendUint(out, uint64(v), 10)
	}
	return append(out, ']'), nil
}

// UnmarshalJSON decodes a JSON array of numbers in [0,255].
func (b *Bytes) UnmarshalJSON(data []byte) error {
	var nums []uint16
	if err := json.Unmarshal(data, &nums); err != nil {
		return err
	}
	out := make([]byte, len(nums))
	for i, n := range nums {
		if n > 255 {
			return fmt.Errorf("byte value %d out of range at position %d", n, i)
		}
		out[i] = byte(n)
	}
	*b = out
	return nil
}

// Handshake authenticates a session. The signature covers the big-endian
// bytes of the timestamp.
type Handshake struct {
	Pubkey Bytes  `json:"pubkey"`
	Sig    Bytes  `json:"sig"`
	Ts     uint64 `json:"ts"`
}

// NaiveTransfer carries an entire blob in a single message.
type NaiveTransfer struct {
	Filename string `json:"filename"`
	Data     Bytes  `json:"data"`
	Checksum string `json:"checksum"`
}

// DasShard carries one erasure-coded shard of a blob. OriginalLen is the
// blob's pre-padding length, needed to truncate after reconstruction, and
// FullFileChecksum is the SHA-256 hex digest of the whole blob.
type DasShard struct {
	Filename         string `json:"filename"`
	OriginalLen      int    `json:"original_len"`
	Index            int    `json:"index"`
	Data             Bytes  `json:"data"`
	FullFileChecksum string `json:"full_file_checksum"`
}

// Message is the externally tagged union sent over the wire. Exactly one
// variant is set per message.
type Message struct {
	Handshake     *Handshake     `json:"Handshake,omitempty"`
	NaiveTransfer *NaiveTransfer `json:"NaiveTransfer,omitempty"`
	DasShard      *DasShard      `json:"DasShard,omitempty"`
}

// VariantCount reports how many variants are set. A well-formed message
// has exactly one.
func (m *Message) VariantCount() int {
	count := 0
	if m.Handshake != nil {
		count++
	}
	if m.NaiveTransfer != nil {
		count++
	}
	if m.DasShard != nil {
		count++
	}
	return count
}
