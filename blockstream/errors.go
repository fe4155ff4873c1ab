package blockstream

import (
	"errors"
	"fmt"

	"github.com/rony4d/go-ledger-mirror/blockstream/merkle"
)

// Structural errors. They arrive wrapped in an *InvalidStreamFileError.
var (
	ErrMissingBlockHeader       = errors.New("missing block header")
	ErrMissingBlockProof        = errors.New("missing block proof")
	ErrMissingTransactionResult = errors.New("missing transaction result")
	ErrDeserializeTransaction   = errors.New("failed to deserialize transaction")
	ErrUnresolvedParent         = errors.New("parent transaction not found")
	ErrMissingStateChange       = errors.New("missing expected state change")
	ErrUnexpectedItem           = errors.New("unexpected block item")
	ErrMalformedFile            = errors.New("malformed block file")
)

// Hash errors.
var (
	ErrMissingPrecondition = errors.New("digest precondition not set")
	ErrInvalidHashLength   = errors.New("invalid hash length")
	ErrDigestFinalized     = errors.New("digest already finalized")
)

// InvalidStreamFileError reports bad data in a block stream file. The whole
// file must be discarded; downloading it again may help.
type InvalidStreamFileError struct {
	Filename string
	Err      error
}

func (e *InvalidStreamFileError) Error() string {
	if e.Filename == "" {
		return "invalid block stream file: " + e.Err.Error()
	}
	return fmt.Sprintf("invalid block stream file %s: %v", e.Filename, e.Err)
}

func (e *InvalidStreamFileError) Unwrap() error {
	return e.Err
}

// HashMismatchError reports a block whose computed hash disagrees with the
// hash the network published. Unlike InvalidStreamFileError it is not cured
// by downloading the file again.
type HashMismatchError struct {
	Block    uint64
	Expected merkle.Hash
	Actual   merkle.Hash
}

func (e *HashMismatchError) Error() string {
	return fmt.Sprintf("block %d hash mismatch: expected %s, actual %s", e.Block, e.Expected.Hex(), e.Actual.Hex())
}

func invalidFile(filename string, err error) error {
	return &InvalidStreamFileError{Filename: filename, Err: err}
}
