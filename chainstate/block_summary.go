package chainstate

import (
	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/rony4d/go-ledger-mirror/blockstream"
	"github.com/rony4d/go-ledger-mirror/blockstream/merkle"
	"github.com/rony4d/go-ledger-mirror/evmcore"
	"github.com/rony4d/go-ledger-mirror/inter"
	"github.com/rony4d/go-ledger-mirror/inter/itr"
)

// BlockSummary describes an imported block without its records. Listeners
// receive it once all records of the block were emitted.
type BlockSummary struct {
	Number         idx.Block
	Name           string
	Hash           merkle.Hash
	PreviousHash   merkle.Hash
	ConsensusStart inter.Timestamp
	ConsensusEnd   inter.Timestamp
	NodeID         uint64
	Count          uint32
	GasUsed        uint64
	// EvmTxHash is the root of the block's Ethereum transaction trie.
	EvmTxHash common.Hash
	// RecordsHash commits to the canonical bytes of every record, in order.
	RecordsHash hash.Hash
}

// NewBlockSummary summarizes a verified file and its records.
func NewBlockSummary(file *blockstream.BlockFile, items []*itr.RecordItem) (*BlockSummary, error) {
	raws := make([][]byte, 0, len(items))
	for _, it := range items {
		raw, err := it.MarshalBinary()
		if err != nil {
			return nil, err
		}
		raws = append(raws, raw)
	}
	evm := EvmBlockOf(file, items)
	return &BlockSummary{
		Number:         idx.Block(file.Number()),
		Name:           file.Name,
		Hash:           file.Hash,
		PreviousHash:   file.PreviousHash,
		ConsensusStart: file.ConsensusStart,
		ConsensusEnd:   file.ConsensusEnd,
		NodeID:         file.NodeID,
		Count:          uint32(len(items)),
		GasUsed:        evm.GasUsed,
		EvmTxHash:      evm.TxHash,
		RecordsHash:    hash.Of(raws...),
	}, nil
}

// EvmBlockOf builds the EVM view of a block: its decodable Ethereum
// transactions and the gas used by every contract execution.
func EvmBlockOf(file *blockstream.BlockFile, items []*itr.RecordItem) *evmcore.EvmBlock {
	var gasUsed uint64
	var txs []*evmcore.EthereumTx
	for _, it := range items {
		for _, res := range []*inter.ContractFunctionResult{it.Record.ContractCallResult, it.Record.ContractCreateResult} {
			if res != nil {
				gasUsed += res.GasUsed
			}
		}
		data, ok := it.Body.Data.(*inter.EthereumTransactionData)
		if !ok {
			continue
		}
		if etx, err := evmcore.DecodeEthereumTransaction(data.EthereumData); err == nil {
			txs = append(txs, etx)
		}
	}
	h := evmcore.ToEvmHeader(file.Number(), file.Hash, file.PreviousHash, file.ConsensusStart, gasUsed)
	ethTxs := make(types.Transactions, 0, len(txs))
	for _, etx := range txs {
		ethTxs = append(ethTxs, etx.Tx)
	}
	return evmcore.NewEvmBlock(h, ethTxs)
}

// State returns the chain position the summary leaves behind.
func (s *BlockSummary) State() BlockState {
	return BlockState{
		Number:       s.Number,
		Hash:         s.Hash,
		PreviousHash: s.PreviousHash,
		ConsensusEnd: s.ConsensusEnd,
		Records:      s.Count,
	}
}

// Fingerprint combines every field into a single hash.
func (s *BlockSummary) Fingerprint() hash.Hash {
	return hash.Of(
		bigendian.Uint64ToBytes(uint64(s.Number)),
		s.Hash.Bytes(),
		s.PreviousHash.Bytes(),
		s.ConsensusStart.Bytes(),
		s.ConsensusEnd.Bytes(),
		bigendian.Uint64ToBytes(s.NodeID),
		bigendian.Uint32ToBytes(s.Count),
		bigendian.Uint64ToBytes(s.GasUsed),
		s.EvmTxHash.Bytes(),
		s.RecordsHash.Bytes(),
	)
}
