package transformer

import (
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	ethparams "github.com/ethereum/go-ethereum/params"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-ledger-mirror/blockstream"
	"github.com/rony4d/go-ledger-mirror/evmcore"
	"github.com/rony4d/go-ledger-mirror/inter"
	"github.com/rony4d/go-ledger-mirror/inter/itr"
)

type contractCallTransformer struct{}

func (contractCallTransformer) Type() inter.TransactionType { return inter.TxContractCall }

func (contractCallTransformer) Transform(tx *blockstream.BlockTransaction, item *itr.RecordItem) error {
	rec := item.Record
	if out := tx.Output(inter.OutputContractCall); out != nil && out.ContractResult != nil {
		rec.ContractCallResult = out.ContractResult
		rec.Receipt.ContractID = out.ContractResult.ContractID
	}
	if !rec.Receipt.ContractID.IsZero() {
		return nil
	}

	data, _ := tx.Body.Data.(*inter.ContractCallData)
	if data == nil {
		return nil
	}
	switch {
	case !data.Contract.IsZero():
		rec.Receipt.ContractID = data.Contract
	case len(data.EvmAddress) > 0:
		// called by EVM address: the contract may have been created in this block
		if fact, ok := tx.Context.Lookup(blockstream.CategoryContractByEvmAddress, blockstream.Key{Alias: data.EvmAddress}); ok {
			rec.Receipt.ContractID = fact.Entity
		}
	}
	return nil
}

type contractCreateTransformer struct{}

func (contractCreateTransformer) Type() inter.TransactionType { return inter.TxContractCreate }

func (contractCreateTransformer) Transform(tx *blockstream.BlockTransaction, item *itr.RecordItem) error {
	rec := item.Record
	if out := tx.Output(inter.OutputContractCreate); out != nil && out.ContractResult != nil {
		rec.ContractCreateResult = out.ContractResult
		rec.Receipt.ContractID = out.ContractResult.ContractID
		rec.EvmAddress = out.ContractResult.EvmAddress
	}
	if !rec.Receipt.ContractID.IsZero() || !tx.IsSuccessful() {
		return nil
	}
	fact, ok := tx.Context.Lookup(blockstream.CategoryContract, blockstream.Key{Timestamp: tx.ConsensusTimestamp})
	if !ok {
		return missingStateChange(tx, "created contract")
	}
	rec.Receipt.ContractID = fact.Entity
	if len(rec.EvmAddress) == 0 {
		rec.EvmAddress = fact.Value.EvmAddress
	}
	return nil
}

// ethereumTransformer recovers senders with the signer of chain. Without a
// chain config any chain id the transaction claims is accepted.
type ethereumTransformer struct {
	chain *ethparams.ChainConfig
	log   logrus.FieldLogger
}

func (ethereumTransformer) Type() inter.TransactionType { return inter.TxEthereumTransaction }

func (t ethereumTransformer) signer(blockNumber uint64, etx *evmcore.EthereumTx) types.Signer {
	if t.chain == nil {
		return types.LatestSignerForChainID(etx.ChainID())
	}
	return types.MakeSigner(t.chain, new(big.Int).SetUint64(blockNumber))
}

func (t ethereumTransformer) Transform(tx *blockstream.BlockTransaction, item *itr.RecordItem) error {
	rec := item.Record

	var (
		result *inter.ContractFunctionResult
		hash   []byte
	)
	if out := tx.Output(inter.OutputEthereumCall); out != nil {
		result, hash = out.ContractResult, out.EthereumHash
		rec.ContractCallResult = result
	} else if out := tx.Output(inter.OutputEthereumCreate); out != nil {
		result, hash = out.ContractResult, out.EthereumHash
		rec.ContractCreateResult = result
	}
	// a transaction rejected before execution reports no contract
	if result != nil && result.GasUsed > 0 {
		rec.Receipt.ContractID = result.ContractID
	}

	data, _ := tx.Body.Data.(*inter.EthereumTransactionData)
	if data == nil || len(data.EthereumData) == 0 {
		rec.EthereumHash = hash
		return nil
	}
	etx, err := evmcore.DecodeEthereumTransaction(data.EthereumData)
	if len(hash) == 0 {
		if err == nil {
			hash = etx.Hash.Bytes()
		} else {
			hash = crypto.Keccak256(data.EthereumData)
		}
	}
	rec.EthereumHash = hash

	if err == nil && rec.ContractCreateResult != nil && len(rec.ContractCreateResult.EvmAddress) == 0 && result.GasUsed > 0 {
		addr, err := etx.CreatedAddressWith(t.signer(item.BlockNumber, etx))
		switch {
		case errors.Is(err, types.ErrInvalidChainId):
			t.log.WithFields(logrus.Fields{
				"timestamp": tx.ConsensusTimestamp,
				"chain":     etx.ChainID(),
				"expected":  t.chain.ChainID,
			}).Warn("Ethereum transaction signed for another chain")
			recoverableErrors.WithLabelValues(tx.Type().String()).Inc()
		case err == nil && addr != nil:
			rec.EvmAddress = addr.Bytes()
		}
	}
	return nil
}
