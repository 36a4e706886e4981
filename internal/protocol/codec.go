// Package protocol frames protocol messages as one JSON object per line
// over a byte stream.
package protocol

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/zzenonn/dasim/internal/domain"
	"github.com/zzenonn/dasim/internal/errors"
)

// MaxFrameSize bounds a single line. Naive transfers carry the whole
// blob in one frame, so this has to be generous.
const MaxFrameSize = 64 << 20

// Codec reads and writes line-delimited JSON messages on a stream and
// tracks wire byte counts for transfer metrics.
type Codec struct {
	scanner      *bufio.Scanner
	w            io.Writer
	bytesRead    int
	bytesWritten int
}

// NewCodec wraps a stream. Reads and writes are not safe for
// concurrent use.
func NewCodec(rw io.ReadWriter) *Codec {
	scanner := bufio.NewScanner(rw)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxFrameSize)
	return &Codec{scanner: scanner, w: rw}
}

// WriteMessage marshals msg and writes it as a single line.
func (c *Codec) WriteMessage(msg *domain.Message) error {
	frame, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	frame = append(frame, '\n')
	n, err := c.w.Write(frame)
	c.bytesWritten += n
	if err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// ReadMessage reads the next message, skipping blank lines. It returns
// io.EOF when the stream closes cleanly, and a non-recoverable error
// when a line fails to parse as exactly one known variant.
func (c *Codec) ReadMessage() (*domain.Message, error) {
	for c.scanner.Scan() {
		line := bytes.TrimSpace(c.scanner.Bytes())
		c.bytesRead += len(c.scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var msg domain.Message
		dec := json.NewDecoder(bytes.NewReader(line))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&msg); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrUnknownMessage, err)
		}
		if msg.VariantCount() != 1 {
			return nil, fmt.Errorf("%w: %d variants set", errors.ErrUnknownMessage, msg.VariantCount())
		}
		return &msg, nil
	}
	if err := c.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}
	return nil, io.EOF
}

// BytesRead reports total bytes consumed from the stream so far.
func (c *Codec) BytesRead() int { return c.bytesRead }

// BytesWritten reports total bytes written to the stream so far.
func (c *Codec) BytesWritten() int { return c.bytesWritten }
