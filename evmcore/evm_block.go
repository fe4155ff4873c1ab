// Copyright 2015 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package evmcore gives blocks and Ethereum transactions of the ledger an
// EVM-compatible view, the shape JSON-RPC style consumers expect.
//
// Key concepts:
//   - EvmHeader/EvmBlock: a block as Ethereum tooling sees it
//   - Block hashes are 48 byte SHA-384 roots; the EVM view keeps the first 32
//   - Gas limits are not tracked per block, so GasLimit is MaxUint64
package evmcore

import (
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/trie"

	"github.com/rony4d/go-ledger-mirror/blockstream/merkle"
	"github.com/rony4d/go-ledger-mirror/inter"
)

// EvmHeader is the EVM-compatible header of a block.
type EvmHeader struct {
	Number     *big.Int        // Block number
	Hash       common.Hash     // Truncated block root hash
	ParentHash common.Hash     // Truncated previous block root hash
	TxHash     common.Hash     // Root of the Ethereum transaction trie
	Time       inter.Timestamp // First consensus timestamp of the block

	GasLimit uint64 // Always MaxUint64
	GasUsed  uint64 // Gas consumed by the block's contract executions
}

// EvmBlock is a header plus the Ethereum transactions the block carried.
type EvmBlock struct {
	EvmHeader
	Transactions types.Transactions
}

// ToEvmHash truncates a block hash to the 32 bytes used by EVM tooling.
func ToEvmHash(h merkle.Hash) common.Hash {
	return common.BytesToHash(h[:common.HashLength])
}

// ToEvmHeader converts block facts into an EvmHeader.
func ToEvmHeader(number uint64, hash, prevHash merkle.Hash, time inter.Timestamp, gasUsed uint64) *EvmHeader {
	return &EvmHeader{
		Number:     new(big.Int).SetUint64(number),
		Hash:       ToEvmHash(hash),
		ParentHash: ToEvmHash(prevHash),
		Time:       time,
		GasLimit:   math.MaxUint64,
		GasUsed:    gasUsed,
	}
}

// NewEvmBlock constructs an EvmBlock and computes its transaction root.
// The TxHash is EmptyRootHash when there are no transactions.
func NewEvmBlock(h *EvmHeader, txs types.Transactions) *EvmBlock {
	b := &EvmBlock{
		EvmHeader:    *h,
		Transactions: txs,
	}
	if len(txs) == 0 {
		b.EvmHeader.TxHash = types.EmptyRootHash
	} else {
		// StackTrie hashes without a backing database
		b.EvmHeader.TxHash = types.DeriveSha(txs, trie.NewStackTrie(nil))
	}
	return b
}

// EthHeader returns the block as a go-ethereum header.
func (h *EvmHeader) EthHeader() *types.Header {
	if h == nil {
		return nil
	}
	secs, _ := h.Time.Unix()
	return &types.Header{
		Number:     h.Number,
		ParentHash: h.ParentHash,
		TxHash:     h.TxHash,
		Time:       uint64(secs),
		GasLimit:   h.GasLimit,
		GasUsed:    h.GasUsed,
		Extra:      h.Hash.Bytes(),
	}
}
