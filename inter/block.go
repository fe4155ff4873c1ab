// Package inter defines the ledger data the mirror node ingests: block items
// as published in block stream files, decoded transaction bodies and the
// shared value types (ids, timestamps, transfers) used by records.
//
// Block stream layout:
//
//	BlockHeader
//	  RoundHeader
//	    EventHeader
//	      SignedTransaction, TransactionResult, TransactionOutput*, StateChanges*
//	      ...
//	  StateChanges*
//	BlockProof
//
// Items are flat; the relationships above are recovered by the blockstream
// package from their order and timestamps.
package inter

import "fmt"

// HashAlgorithm identifies the digest used to link blocks.
type HashAlgorithm uint8

const (
	HashAlgorithmUnknown HashAlgorithm = iota
	HashAlgorithmSHA384
)

func (a HashAlgorithm) String() string {
	if a == HashAlgorithmSHA384 {
		return "SHA_384"
	}
	return "UNKNOWN"
}

// SemanticVersion is a major.minor.patch version.
type SemanticVersion struct {
	Major uint32
	Minor uint32
	Patch uint32
}

func (v SemanticVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Less orders versions.
func (v SemanticVersion) Less(o SemanticVersion) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	if v.Minor != o.Minor {
		return v.Minor < o.Minor
	}
	return v.Patch < o.Patch
}

// BlockHeader opens a block.
type BlockHeader struct {
	HapiVersion     SemanticVersion
	SoftwareVersion SemanticVersion
	Number          uint64
	BlockTimestamp  Timestamp
	HashAlgorithm   HashAlgorithm
}

// RoundHeader opens a consensus round.
type RoundHeader struct {
	Round uint64
}

// EventHeader opens the transactions of one gossip event.
type EventHeader struct {
	Creator    uint64
	BirthRound uint64
	Signature  []byte
}

// TransactionResult closes a transaction and carries its common outcome.
// ParentConsensusTimestamp is zero for top-level transactions.
type TransactionResult struct {
	Status                     ResponseCode
	ConsensusTimestamp         Timestamp
	ParentConsensusTimestamp   Timestamp
	ScheduleRef                EntityID
	TransactionFeeCharged      uint64
	TransferList               []AccountAmount
	TokenTransferLists         []TokenTransferList
	AutomaticTokenAssociations []TokenAssociation
	AssessedCustomFees         []AssessedCustomFee
	PaidStakingRewards         []AccountAmount
	CongestionMultiplier       uint64
}

// OutputKind tells which variant a TransactionOutput carries.
type OutputKind uint8

const (
	OutputUnknown OutputKind = iota
	OutputContractCall
	OutputContractCreate
	OutputEthereumCall
	OutputEthereumCreate
	OutputCreateSchedule
	OutputSignSchedule
	OutputUtilPrng
	OutputTokenAirdrop
	OutputDeleteSchedule
)

// TransactionOutput is a type specific outcome that follows a result.
type TransactionOutput struct {
	Kind                   OutputKind
	ContractResult         *ContractFunctionResult
	Sidecars               []SidecarRecord
	EthereumHash           []byte
	ScheduleID             EntityID
	ScheduledTransactionID *TransactionID
	PrngBytes              []byte
	PrngNumber             int32
	PendingAirdrops        []PendingAirdrop
}

// BlockProof closes a block. It carries the inputs of the block hash that are
// not derived from the block's own items.
type BlockProof struct {
	Block                     uint64
	PreviousBlockRootHash     []byte
	StartOfBlockStateRootHash []byte
	BlockSignature            []byte
	SiblingHashes             [][]byte
}

// RecordFile wraps a legacy record stream file replayed into a block.
type RecordFile struct {
	CreationTime    Timestamp
	Contents        []byte
	SidecarContents [][]byte
}
