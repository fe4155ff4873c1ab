package blockstream

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-ledger-mirror/blockstream/merkle"
	"github.com/rony4d/go-ledger-mirror/inter"
)

func testBody(memo string, data inter.TransactionData) *inter.TransactionBody {
	return &inter.TransactionBody{
		TransactionID: inter.TransactionID{Payer: inter.NewEntityID(1001), ValidStart: inter.FromUnix(1700000000, 0)},
		NodeAccountID: inter.NewEntityID(3),
		Memo:          memo,
		Data:          data,
	}
}

func signedBytes(t *testing.T, body *inter.TransactionBody) []byte {
	raw, err := inter.EncodeTransaction(body)
	require.NoError(t, err)
	return raw
}

func result(ts, parent inter.Timestamp) *inter.TransactionResult {
	return &inter.TransactionResult{Status: inter.StatusSuccess, ConsensusTimestamp: ts, ParentConsensusTimestamp: parent}
}

func readBuilder(t *testing.T, b *BlockFileBuilder) (*BlockFile, error) {
	raw, err := b.Build()
	require.NoError(t, err)
	return NewReader(nil).Read(raw, ReadOptions{Filename: "000000000000000000000000000000000007.blk"})
}

func TestReader_StructuralErrors(t *testing.T) {
	transfer := signedBytes(t, testBody("transfer", &inter.CryptoTransferData{}))
	proof := &inter.BlockItem{Kind: inter.KindBlockProof, Proof: &inter.BlockProof{
		PreviousBlockRootHash:     merkle.EmptyHash.Bytes(),
		StartOfBlockStateRootHash: merkle.EmptyHash.Bytes(),
	}}

	tests := []struct {
		name  string
		build func() *BlockFileBuilder
		want  error
	}{
		{
			name: "proof only",
			build: func() *BlockFileBuilder {
				return (&BlockFileBuilder{}).Item(proof)
			},
			want: ErrMissingBlockHeader,
		},
		{
			name: "header only",
			build: func() *BlockFileBuilder {
				return NewBlockFileBuilder(7, 1)
			},
			want: ErrMissingBlockProof,
		},
		{
			name: "transaction without result",
			build: func() *BlockFileBuilder {
				return NewBlockFileBuilder(7, 1).Round(1).Event(3).
					SignedTransaction(transfer).
					Proof(merkle.EmptyHash, merkle.EmptyHash)
			},
			want: ErrMissingTransactionResult,
		},
		{
			name: "result missing before next transaction",
			build: func() *BlockFileBuilder {
				return NewBlockFileBuilder(7, 1).
					SignedTransaction(transfer).
					SignedTransaction(transfer).Result(result(10, 0)).
					Proof(merkle.EmptyHash, merkle.EmptyHash)
			},
			want: ErrMissingTransactionResult,
		},
		{
			name: "corrupted signed transaction",
			build: func() *BlockFileBuilder {
				return NewBlockFileBuilder(7, 1).
					SignedTransaction([]byte{0x01}).Result(result(10, 0)).
					Proof(merkle.EmptyHash, merkle.EmptyHash)
			},
			want: ErrDeserializeTransaction,
		},
		{
			name: "corrupted transaction body",
			build: func() *BlockFileBuilder {
				envelope, err := (&inter.SignedTransaction{BodyBytes: []byte{0x01}}).MarshalBinary()
				require.NoError(t, err)
				return NewBlockFileBuilder(7, 1).
					SignedTransaction(envelope).Result(result(10, 0)).
					Proof(merkle.EmptyHash, merkle.EmptyHash)
			},
			want: ErrDeserializeTransaction,
		},
		{
			name: "unknown parent",
			build: func() *BlockFileBuilder {
				return NewBlockFileBuilder(7, 1).
					SignedTransaction(transfer).Result(result(10, 9)).
					Proof(merkle.EmptyHash, merkle.EmptyHash)
			},
			want: ErrUnresolvedParent,
		},
		{
			name: "result without transaction",
			build: func() *BlockFileBuilder {
				return NewBlockFileBuilder(7, 1).
					Result(result(10, 0)).
					Proof(merkle.EmptyHash, merkle.EmptyHash)
			},
			want: ErrUnexpectedItem,
		},
		{
			name: "second header",
			build: func() *BlockFileBuilder {
				b := NewBlockFileBuilder(7, 1)
				items, _ := b.Items()
				return b.Item(items[0]).Proof(merkle.EmptyHash, merkle.EmptyHash)
			},
			want: ErrUnexpectedItem,
		},
		{
			name: "proof in the middle",
			build: func() *BlockFileBuilder {
				return NewBlockFileBuilder(7, 1).Item(proof).Round(1).Item(proof)
			},
			want: ErrUnexpectedItem,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readBuilder(t, tt.build())
			require.ErrorIs(t, err, tt.want)

			var invalid *InvalidStreamFileError
			require.ErrorAs(t, err, &invalid)
			require.Equal(t, "000000000000000000000000000000000007.blk", invalid.Filename)
		})
	}
}

func TestReader_MalformedFile(t *testing.T) {
	_, err := NewReader(nil).Read([]byte{0x01}, ReadOptions{})
	require.ErrorIs(t, err, ErrMalformedFile)
}

func TestReader_BatchLinking(t *testing.T) {
	require := require.New(t)

	inner1Bytes := signedBytes(t, testBody("inner1", &inter.CryptoTransferData{}))
	inner2Bytes := signedBytes(t, testBody("inner2", &inter.CryptoTransferData{}))
	inner3Bytes := signedBytes(t, testBody("inner3", &inter.CryptoTransferData{}))
	batch := signedBytes(t, testBody("batch", &inter.AtomicBatchData{Transactions: [][]byte{inner1Bytes, inner2Bytes, inner3Bytes}}))

	b := NewBlockFileBuilder(7, 1).Round(1).Event(3).
		SignedTransaction(signedBytes(t, testBody("first", &inter.CryptoTransferData{}))).Result(result(100, 0)).
		SignedTransaction(batch).Result(result(200, 0)).
		SignedTransaction(signedBytes(t, testBody("child", &inter.CryptoTransferData{}))).Result(result(201, 200)).
		SignedTransaction(inner1Bytes).Result(result(202, 200)).
		SignedTransaction(signedBytes(t, testBody("grandchild", &inter.CryptoTransferData{}))).Result(result(203, 202)).
		SignedTransaction(inner2Bytes).Result(result(204, 200)).
		SignedTransaction(inner3Bytes).Result(result(205, 200)).
		SignedTransaction(signedBytes(t, testBody("last", &inter.CryptoTransferData{}))).Result(result(300, 0)).
		Proof(merkle.EmptyHash, merkle.EmptyHash)

	file, err := readBuilder(t, b)
	require.NoError(err)
	require.Len(file.Transactions, 8)

	const (
		P      = 1
		inner1 = 3
		inner2 = 5
		inner3 = 6
		none   = NoIndex
	)
	parents := make([]int, 0, 8)
	next := make([]int, 0, 8)
	previous := make([]int, 0, 8)
	for _, tx := range file.Transactions {
		parents = append(parents, tx.Parent)
		next = append(next, tx.NextInBatch)
		previous = append(previous, tx.Previous)
	}
	require.Equal([]int{none, none, P, P, inner1, P, P, none}, parents)
	require.Equal([]int{none, none, none, inner2, none, inner3, none, none}, next)
	require.Equal([]int{none, 0, 1, 2, 3, 4, 5, 6}, previous)

	require.True(file.Transactions[inner1].BatchInner)
	require.False(file.Transactions[2].BatchInner)
	require.Same(file.Transactions[P], file.Transactions[inner1].ParentTransaction())
	require.Same(file.Transactions[inner2], file.Transactions[inner1].NextInBatchTransaction())
	require.Nil(file.Transactions[0].PreviousTransaction())

	require.Equal(inter.Timestamp(100), file.ConsensusStart)
	require.Equal(inter.Timestamp(300), file.ConsensusEnd)
	require.Equal(uint64(1), file.RoundStart)
	require.Equal(uint64(3), file.NodeID)
}

func TestReader_BatchCountMismatch(t *testing.T) {
	inner1 := signedBytes(t, testBody("inner1", &inter.CryptoTransferData{}))
	inner2 := signedBytes(t, testBody("inner2", &inter.CryptoTransferData{}))
	batch := signedBytes(t, testBody("batch", &inter.AtomicBatchData{Transactions: [][]byte{inner1, inner2}}))

	t.Run("closed by next top-level transaction", func(t *testing.T) {
		b := NewBlockFileBuilder(7, 1).
			SignedTransaction(batch).Result(result(200, 0)).
			SignedTransaction(inner1).Result(result(201, 200)).
			SignedTransaction(signedBytes(t, testBody("next", &inter.CryptoTransferData{}))).Result(result(300, 0)).
			Proof(merkle.EmptyHash, merkle.EmptyHash)
		_, err := readBuilder(t, b)
		require.ErrorIs(t, err, ErrMissingTransactionResult)
	})

	t.Run("closed by block end", func(t *testing.T) {
		b := NewBlockFileBuilder(7, 1).
			SignedTransaction(batch).Result(result(200, 0)).
			SignedTransaction(inner1).Result(result(201, 200)).
			Proof(merkle.EmptyHash, merkle.EmptyHash)
		_, err := readBuilder(t, b)
		require.ErrorIs(t, err, ErrMissingTransactionResult)
	})

	t.Run("complete", func(t *testing.T) {
		b := NewBlockFileBuilder(7, 1).
			SignedTransaction(batch).Result(result(200, 0)).
			SignedTransaction(inner1).Result(result(201, 200)).
			SignedTransaction(inner2).Result(result(202, 200)).
			Proof(merkle.EmptyHash, merkle.EmptyHash)
		file, err := readBuilder(t, b)
		require.NoError(t, err)
		require.Equal(t, 2, file.Transactions[1].NextInBatch)
	})
}

func TestReader_StateChanges(t *testing.T) {
	topic := inter.StateChange{
		StateID: inter.StateTopics,
		Op:      inter.OpMapUpdate,
		Key:     inter.StateKey{Entity: inter.NewEntityID(700)},
		Value:   inter.StateValue{Entity: inter.NewEntityID(700), SequenceNumber: 1},
	}
	transfer := signedBytes(t, testBody("transfer", &inter.CryptoTransferData{}))

	t.Run("state changes only", func(t *testing.T) {
		require := require.New(t)
		b := NewBlockFileBuilder(7, 1).Round(1).
			StateChanges(50, topic).
			Proof(merkle.EmptyHash, merkle.EmptyHash)

		file, err := readBuilder(t, b)
		require.NoError(err)
		require.Empty(file.Transactions)
		require.Len(file.StandaloneStateChanges, 1)
		require.Equal(inter.Timestamp(50), file.ConsensusStart)
		require.Equal(inter.Timestamp(50), file.ConsensusEnd)

		fact, ok := file.StateChangeContext.Lookup(CategoryTopic, Key{Timestamp: 50})
		require.True(ok)
		require.Equal(inter.NewEntityID(700), fact.Entity)
	})

	t.Run("empty block uses header time", func(t *testing.T) {
		file, err := readBuilder(t, NewBlockFileBuilder(7, 42).Proof(merkle.EmptyHash, merkle.EmptyHash))
		require.NoError(t, err)
		require.Equal(t, inter.Timestamp(42), file.ConsensusStart)
		require.Equal(t, inter.Timestamp(42), file.ConsensusEnd)
	})

	t.Run("attached by timestamp", func(t *testing.T) {
		require := require.New(t)
		b := NewBlockFileBuilder(7, 1).Round(1).
			StateChanges(5, topic).
			SignedTransaction(transfer).
			StateChanges(10, topic).
			Result(result(10, 0)).
			StateChanges(10, topic).
			StateChanges(11, topic).
			Proof(merkle.EmptyHash, merkle.EmptyHash)

		file, err := readBuilder(t, b)
		require.NoError(err)
		require.Len(file.Transactions, 1)
		require.Len(file.Transactions[0].StateChanges, 2)
		require.Len(file.Transactions[0].StateChangesOf(inter.StateTopics), 2)
		require.Len(file.StandaloneStateChanges, 2)
		require.Equal(inter.Timestamp(5), file.StandaloneStateChanges[0].ConsensusTimestamp)
		require.Equal(inter.Timestamp(11), file.StandaloneStateChanges[1].ConsensusTimestamp)
		require.Equal(inter.Timestamp(10), file.ConsensusStart)
		require.Same(file.StateChangeContext, file.Transactions[0].Context)
	})
}

func TestReader_Outputs(t *testing.T) {
	require := require.New(t)
	call := signedBytes(t, testBody("call", &inter.ContractCallData{Contract: inter.NewEntityID(900)}))

	b := NewBlockFileBuilder(7, 1).
		SignedTransaction(call).Result(result(10, 0)).
		Output(&inter.TransactionOutput{Kind: inter.OutputContractCall, ContractResult: &inter.ContractFunctionResult{GasUsed: 1}}).
		Proof(merkle.EmptyHash, merkle.EmptyHash)
	file, err := readBuilder(t, b)
	require.NoError(err)
	require.NotNil(file.Transactions[0].Output(inter.OutputContractCall))
	require.Nil(file.Transactions[0].Output(inter.OutputUtilPrng))

	_, err = readBuilder(t, NewBlockFileBuilder(7, 1).
		Output(&inter.TransactionOutput{Kind: inter.OutputUtilPrng}).
		Proof(merkle.EmptyHash, merkle.EmptyHash))
	require.ErrorIs(err, ErrUnexpectedItem)
}

func TestReader_Hash(t *testing.T) {
	transfer := signedBytes(t, testBody("transfer", &inter.CryptoTransferData{}))
	b := NewBlockFileBuilder(7, 1).Round(1).Event(3).
		SignedTransaction(transfer).Result(result(10, 0)).
		StateChanges(10).
		Proof(merkle.EmptyHash, merkle.EmptyHash)
	raw, err := b.Build()
	require.NoError(t, err)
	items, err := b.Items()
	require.NoError(t, err)

	digest := NewRootHashDigest()
	require.NoError(t, digest.SetPreviousHash(merkle.EmptyHash.Bytes()))
	require.NoError(t, digest.SetStartOfBlockStateHash(merkle.EmptyHash.Bytes()))
	for _, it := range items {
		require.NoError(t, digest.AddBlockItem(it))
	}
	want, err := digest.Digest()
	require.NoError(t, err)

	t.Run("hash from proof inputs", func(t *testing.T) {
		file, err := NewReader(nil).Read(raw, ReadOptions{})
		require.NoError(t, err)
		require.Equal(t, want, file.Hash)
		require.Equal(t, merkle.EmptyHash, file.PreviousHash)
		require.Equal(t, len(raw), file.Size)
	})

	t.Run("expected hash matches", func(t *testing.T) {
		_, err := NewReader(nil).Read(raw, ReadOptions{ExpectedHash: want.Bytes()})
		require.NoError(t, err)
	})

	t.Run("expected hash differs", func(t *testing.T) {
		_, err := NewReader(nil).Read(raw, ReadOptions{ExpectedHash: merkle.EmptyHash.Bytes()})
		var mismatch *HashMismatchError
		require.ErrorAs(t, err, &mismatch)
		require.Equal(t, uint64(7), mismatch.Block)
		require.Equal(t, want, mismatch.Actual)
	})

	t.Run("previous hash differs from proof", func(t *testing.T) {
		var other merkle.Hash
		_, err := NewReader(nil).Read(raw, ReadOptions{PreviousHash: other.Bytes()})
		var mismatch *HashMismatchError
		require.ErrorAs(t, err, &mismatch)
		require.Equal(t, uint64(6), mismatch.Block)
	})

	t.Run("short proof previous hash", func(t *testing.T) {
		proof := &inter.BlockProof{Block: 7, PreviousBlockRootHash: []byte{1, 2, 3}, StartOfBlockStateRootHash: merkle.EmptyHash.Bytes()}
		raw, err := NewBlockFileBuilder(7, 1).Item(&inter.BlockItem{Kind: inter.KindBlockProof, Proof: proof}).Build()
		require.NoError(t, err)

		for _, opts := range []ReadOptions{{}, {PreviousHash: merkle.EmptyHash.Bytes()}} {
			_, err = NewReader(nil).Read(raw, opts)
			require.ErrorIs(t, err, ErrInvalidHashLength)
			var mismatch *HashMismatchError
			require.False(t, errors.As(err, &mismatch))
		}
	})

	t.Run("short caller previous hash", func(t *testing.T) {
		_, err := NewReader(nil).Read(raw, ReadOptions{PreviousHash: []byte{9}})
		require.ErrorIs(t, err, ErrInvalidHashLength)
	})

	t.Run("missing proof hashes", func(t *testing.T) {
		raw, err := NewBlockFileBuilder(7, 1).Item(&inter.BlockItem{Kind: inter.KindBlockProof, Proof: &inter.BlockProof{Block: 7}}).Build()
		require.NoError(t, err)
		_, err = NewReader(nil).Read(raw, ReadOptions{})
		require.ErrorIs(t, err, ErrMissingPrecondition)

		var invalid *InvalidStreamFileError
		require.False(t, errors.As(err, &invalid))
	})
}
