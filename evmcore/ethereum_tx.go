package evmcore

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// ErrInvalidEthereumData is returned for bytes that are not an Ethereum
// transaction envelope.
var ErrInvalidEthereumData = errors.New("invalid ethereum transaction data")

// EthereumTx is a decoded Ethereum transaction with its derived hash.
type EthereumTx struct {
	Tx   *types.Transaction
	Hash common.Hash
}

// DecodeEthereumTransaction decodes a legacy RLP or typed (EIP-2718)
// transaction.
func DecodeEthereumTransaction(raw []byte) (*EthereumTx, error) {
	if len(raw) == 0 {
		return nil, ErrInvalidEthereumData
	}
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return nil, errors.Wrap(ErrInvalidEthereumData, err.Error())
	}
	return &EthereumTx{Tx: tx, Hash: tx.Hash()}, nil
}

// Nonce returns the sender nonce.
func (t *EthereumTx) Nonce() uint64 { return t.Tx.Nonce() }

// To returns the recipient, nil for contract creation.
func (t *EthereumTx) To() *common.Address { return t.Tx.To() }

// ChainID returns the chain id the transaction was signed for.
func (t *EthereumTx) ChainID() *big.Int { return t.Tx.ChainId() }

// Sender recovers the signer address for the chain id the transaction
// claims.
func (t *EthereumTx) Sender() (common.Address, error) {
	return t.SenderWith(types.LatestSignerForChainID(t.Tx.ChainId()))
}

// SenderWith recovers the signer address with signer. A replay protected
// transaction signed for another chain fails with types.ErrInvalidChainId.
func (t *EthereumTx) SenderWith(signer types.Signer) (common.Address, error) {
	return types.Sender(signer, t.Tx)
}

// CreatedAddress returns the address a contract creation deploys to, or nil
// when the transaction calls an existing address.
func (t *EthereumTx) CreatedAddress() (*common.Address, error) {
	return t.CreatedAddressWith(types.LatestSignerForChainID(t.Tx.ChainId()))
}

// CreatedAddressWith is CreatedAddress with the sender recovered by signer.
func (t *EthereumTx) CreatedAddressWith(signer types.Signer) (*common.Address, error) {
	if t.Tx.To() != nil {
		return nil, nil
	}
	sender, err := t.SenderWith(signer)
	if err != nil {
		return nil, err
	}
	addr := crypto.CreateAddress(sender, t.Tx.Nonce())
	return &addr, nil
}
