package domain

import "fmt"

// TransferMode selects the proposer's send strategy.
type TransferMode string

const (
	// ModeNaive sends the whole blob in one message.
	ModeNaive TransferMode = "naive"
	// ModeDasFull sends k shards, enough for full reconstruction.
	ModeDasFull TransferMode = "das-full"
	// ModeDasSample sends a below-threshold sample of shards, so the
	// receiver can only check availability, never reconstruct.
	ModeDasSample TransferMode = "das-sample"
)

// ParseTransferMode validates a mode string from the CLI.
func ParseTransferMode(s string) (TransferMode, error) {
	switch TransferMode(s) {
	case ModeNaive, ModeDasFull, ModeDasSample:
		return TransferMode(s), nil
	}
	return "", fmt.Errorf("unknown transfer mode %q (expected naive, das-full or das-sample)", s)
}
