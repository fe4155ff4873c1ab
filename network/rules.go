// Package network defines the per-network rules the importer applies to
// block stream files.
//
// This package provides:
//   - Network identification (ledger ids and EVM chain ids)
//   - The oldest stream version the importer understands
//   - Block limits used to reject oversized files before decoding
//   - An Ethereum chain config for signer selection
package network

import (
	"encoding/json"
	"math/big"

	"github.com/pkg/errors"
	"github.com/rony4d/go-ledger-mirror/inter"

	ethparams "github.com/ethereum/go-ethereum/params"
)

// EVM chain ids of the public networks.
const (
	MainNetChainID    uint64 = 0x127 // 295
	TestNetChainID    uint64 = 0x128 // 296
	PreviewNetChainID uint64 = 0x129 // 297
	FakeNetChainID    uint64 = 0x12a // 298
)

// DefaultMaxFileSize caps the size of a block file read into memory.
const DefaultMaxFileSize = 64 * 1024 * 1024

var (
	// ErrUnsupportedVersion is returned for files older than MinHapiVersion.
	ErrUnsupportedVersion = errors.New("unsupported block stream version")
	// ErrUnsupportedHashAlgorithm is returned for a header naming an unknown
	// digest algorithm.
	ErrUnsupportedHashAlgorithm = errors.New("unsupported hash algorithm")
	// ErrFileTooLarge is returned for files above Blocks.MaxFileSize.
	ErrFileTooLarge = errors.New("block file too large")
	// ErrUnknownNetwork is returned by RulesByName.
	ErrUnknownNetwork = errors.New("unknown network")
)

// Rules describes one ledger network as seen by the importer.
type Rules struct {
	Name     string // Network name ("mainnet", "testnet", ...)
	LedgerID []byte // Ledger id reported by the network
	ChainID  uint64 // EVM chain id used by Ethereum transactions

	// MinHapiVersion is the oldest protobuf API version a block file may carry.
	MinHapiVersion inter.SemanticVersion

	Blocks BlocksRules
}

// BlocksRules limits what a single block file may contain.
type BlocksRules struct {
	MaxItems    uint32 // Upper bound on items per file
	MaxFileSize int    // Upper bound on raw file size in bytes
}

// DefaultBlocksRules returns the limits shared by the public networks.
func DefaultBlocksRules() BlocksRules {
	return BlocksRules{
		MaxItems:    inter.MaxBlockItems,
		MaxFileSize: DefaultMaxFileSize,
	}
}

// MainNetRules returns the mainnet rules.
func MainNetRules() Rules {
	return Rules{
		Name:           "mainnet",
		LedgerID:       []byte{0x00},
		ChainID:        MainNetChainID,
		MinHapiVersion: inter.SemanticVersion{Minor: 57},
		Blocks:         DefaultBlocksRules(),
	}
}

// TestNetRules returns the testnet rules.
func TestNetRules() Rules {
	r := MainNetRules()
	r.Name = "testnet"
	r.LedgerID = []byte{0x01}
	r.ChainID = TestNetChainID
	return r
}

// PreviewNetRules returns the previewnet rules. Previewnet runs ahead of the
// other networks, so no version floor applies.
func PreviewNetRules() Rules {
	r := MainNetRules()
	r.Name = "previewnet"
	r.LedgerID = []byte{0x02}
	r.ChainID = PreviewNetChainID
	r.MinHapiVersion = inter.SemanticVersion{}
	return r
}

// FakeNetRules returns rules for local networks and tests: no version floor
// and small files.
func FakeNetRules() Rules {
	return Rules{
		Name:     "fakenet",
		LedgerID: []byte{0x03},
		ChainID:  FakeNetChainID,
		Blocks: BlocksRules{
			MaxItems:    1 << 16,
			MaxFileSize: 8 * 1024 * 1024,
		},
	}
}

// RulesByName returns the rules of a named network.
func RulesByName(name string) (Rules, error) {
	switch name {
	case "mainnet", "main":
		return MainNetRules(), nil
	case "testnet", "test":
		return TestNetRules(), nil
	case "previewnet", "preview":
		return PreviewNetRules(), nil
	case "fakenet", "fake":
		return FakeNetRules(), nil
	}
	return Rules{}, errors.Wrap(ErrUnknownNetwork, name)
}

// CheckFileSize rejects raw files above the size limit.
func (r Rules) CheckFileSize(size int) error {
	if r.Blocks.MaxFileSize > 0 && size > r.Blocks.MaxFileSize {
		return errors.Wrapf(ErrFileTooLarge, "%d > %d bytes", size, r.Blocks.MaxFileSize)
	}
	return nil
}

// CheckHeader verifies that a block header is one the importer can process.
func (r Rules) CheckHeader(h *inter.BlockHeader) error {
	if h.HapiVersion.Less(r.MinHapiVersion) {
		return errors.Wrapf(ErrUnsupportedVersion, "block %d has version %s, need %s",
			h.Number, h.HapiVersion, r.MinHapiVersion)
	}
	if h.HashAlgorithm != inter.HashAlgorithmSHA384 {
		return errors.Wrapf(ErrUnsupportedHashAlgorithm, "block %d uses %s", h.Number, h.HashAlgorithm)
	}
	return nil
}

// EvmChainConfig converts the rules into an Ethereum chain config with every
// fork active from genesis. Ethereum transaction senders are recovered with
// its signer.
func (r Rules) EvmChainConfig() *ethparams.ChainConfig {
	cfg := *ethparams.AllEthashProtocolChanges
	cfg.ChainID = new(big.Int).SetUint64(r.ChainID)
	return &cfg
}

// Copy creates a deep copy of Rules.
func (r Rules) Copy() Rules {
	cp := r
	cp.LedgerID = append([]byte(nil), r.LedgerID...)
	return cp
}

// String returns a JSON representation of Rules for logging.
func (r Rules) String() string {
	b, _ := json.Marshal(&r)
	return string(b)
}
