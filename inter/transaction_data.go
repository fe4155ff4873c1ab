package inter

import (
	"github.com/rony4d/go-ledger-mirror/utils/cser"
)

// TransactionData is the type-specific part of a transaction body.
type TransactionData interface {
	Type() TransactionType
	MarshalCSER(w *cser.Writer)
	UnmarshalCSER(r *cser.Reader)
}

// NewTransactionData returns an empty payload for t, ready to be decoded into.
func NewTransactionData(t TransactionType) (TransactionData, error) {
	switch t {
	case TxCryptoCreateAccount:
		return &CryptoCreateAccountData{}, nil
	case TxCryptoTransfer:
		return &CryptoTransferData{}, nil
	case TxContractCall:
		return &ContractCallData{}, nil
	case TxContractCreate:
		return &ContractCreateData{}, nil
	case TxEthereumTransaction:
		return &EthereumTransactionData{}, nil
	case TxConsensusCreateTopic:
		return &ConsensusCreateTopicData{}, nil
	case TxConsensusSubmitMessage:
		return &ConsensusSubmitMessageData{}, nil
	case TxFileCreate:
		return &FileCreateData{}, nil
	case TxTokenCreate:
		return &TokenCreateData{}, nil
	case TxTokenMint:
		return &TokenMintData{}, nil
	case TxTokenBurn:
		return &TokenBurnData{}, nil
	case TxTokenWipe:
		return &TokenWipeData{}, nil
	case TxTokenAirdrop:
		return &TokenAirdropData{}, nil
	case TxScheduleCreate:
		return &ScheduleCreateData{}, nil
	case TxNodeCreate:
		return &NodeCreateData{}, nil
	case TxUtilPrng:
		return &UtilPrngData{}, nil
	case TxAtomicBatch:
		return &AtomicBatchData{}, nil
	}
	if t.Valid() {
		return &TargetData{TxType: t}, nil
	}
	return nil, ErrUnknownTransactionType
}

// TargetData serves the transaction types whose payload is an entity plus
// opaque update content: updates, deletes, allowances, appends, associations,
// schedule sign/delete and freeze.
type TargetData struct {
	TxType  TransactionType
	Target  EntityID
	Payload []byte
}

func (d *TargetData) Type() TransactionType { return d.TxType }

func (d *TargetData) MarshalCSER(w *cser.Writer) {
	d.Target.MarshalCSER(w)
	w.SliceBytes(d.Payload)
}

func (d *TargetData) UnmarshalCSER(r *cser.Reader) {
	d.Target.UnmarshalCSER(r)
	d.Payload = r.SliceBytes(ProtocolMaxMsgSize)
}

type CryptoCreateAccountData struct {
	Key            []byte
	Alias          []byte
	InitialBalance uint64
	Memo           string
}

func (d *CryptoCreateAccountData) Type() TransactionType { return TxCryptoCreateAccount }

func (d *CryptoCreateAccountData) MarshalCSER(w *cser.Writer) {
	w.SliceBytes(d.Key)
	w.OptionalBytes(d.Alias)
	w.U64(d.InitialBalance)
	w.String(d.Memo)
}

func (d *CryptoCreateAccountData) UnmarshalCSER(r *cser.Reader) {
	d.Key = r.SliceBytes(ProtocolMaxMsgSize)
	d.Alias = r.OptionalBytes(ProtocolMaxMsgSize)
	d.InitialBalance = r.U64()
	d.Memo = r.String(ProtocolMaxMsgSize)
}

type CryptoTransferData struct {
	Transfers      []AccountAmount
	TokenTransfers []TokenTransferList
}

func (d *CryptoTransferData) Type() TransactionType { return TxCryptoTransfer }

func (d *CryptoTransferData) MarshalCSER(w *cser.Writer) {
	WriteAccountAmounts(w, d.Transfers)
	WriteTokenTransferLists(w, d.TokenTransfers)
}

func (d *CryptoTransferData) UnmarshalCSER(r *cser.Reader) {
	d.Transfers = ReadAccountAmounts(r)
	d.TokenTransfers = ReadTokenTransferLists(r)
}

// ContractCallData calls a contract either by id or, when EvmAddress is set,
// by its 20 byte EVM address.
type ContractCallData struct {
	Contract           EntityID
	EvmAddress         []byte
	Gas                uint64
	Amount             int64
	FunctionParameters []byte
}

func (d *ContractCallData) Type() TransactionType { return TxContractCall }

func (d *ContractCallData) MarshalCSER(w *cser.Writer) {
	d.Contract.MarshalCSER(w)
	w.OptionalBytes(d.EvmAddress)
	w.U64(d.Gas)
	w.I64(d.Amount)
	w.SliceBytes(d.FunctionParameters)
}

func (d *ContractCallData) UnmarshalCSER(r *cser.Reader) {
	d.Contract.UnmarshalCSER(r)
	d.EvmAddress = r.OptionalBytes(ProtocolMaxMsgSize)
	d.Gas = r.U64()
	d.Amount = r.I64()
	d.FunctionParameters = r.SliceBytes(ProtocolMaxMsgSize)
}

type ContractCreateData struct {
	FileID                EntityID
	Initcode              []byte
	Gas                   uint64
	InitialBalance        int64
	ConstructorParameters []byte
	Memo                  string
}

func (d *ContractCreateData) Type() TransactionType { return TxContractCreate }

func (d *ContractCreateData) MarshalCSER(w *cser.Writer) {
	d.FileID.MarshalCSER(w)
	w.SliceBytes(d.Initcode)
	w.U64(d.Gas)
	w.I64(d.InitialBalance)
	w.SliceBytes(d.ConstructorParameters)
	w.String(d.Memo)
}

func (d *ContractCreateData) UnmarshalCSER(r *cser.Reader) {
	d.FileID.UnmarshalCSER(r)
	d.Initcode = r.SliceBytes(ProtocolMaxMsgSize)
	d.Gas = r.U64()
	d.InitialBalance = r.I64()
	d.ConstructorParameters = r.SliceBytes(ProtocolMaxMsgSize)
	d.Memo = r.String(ProtocolMaxMsgSize)
}

// EthereumTransactionData wraps a raw RLP encoded ethereum transaction.
// Large call data may be stored in a file referenced by CallData.
type EthereumTransactionData struct {
	EthereumData    []byte
	CallData        EntityID
	MaxGasAllowance int64
}

func (d *EthereumTransactionData) Type() TransactionType { return TxEthereumTransaction }

func (d *EthereumTransactionData) MarshalCSER(w *cser.Writer) {
	w.SliceBytes(d.EthereumData)
	d.CallData.MarshalCSER(w)
	w.I64(d.MaxGasAllowance)
}

func (d *EthereumTransactionData) UnmarshalCSER(r *cser.Reader) {
	d.EthereumData = r.SliceBytes(ProtocolMaxMsgSize)
	d.CallData.UnmarshalCSER(r)
	d.MaxGasAllowance = r.I64()
}

type ConsensusCreateTopicData struct {
	Memo             string
	AdminKey         []byte
	AutoRenewAccount EntityID
}

func (d *ConsensusCreateTopicData) Type() TransactionType { return TxConsensusCreateTopic }

func (d *ConsensusCreateTopicData) MarshalCSER(w *cser.Writer) {
	w.String(d.Memo)
	w.OptionalBytes(d.AdminKey)
	d.AutoRenewAccount.MarshalCSER(w)
}

func (d *ConsensusCreateTopicData) UnmarshalCSER(r *cser.Reader) {
	d.Memo = r.String(ProtocolMaxMsgSize)
	d.AdminKey = r.OptionalBytes(ProtocolMaxMsgSize)
	d.AutoRenewAccount.UnmarshalCSER(r)
}

type ConsensusSubmitMessageData struct {
	Topic   EntityID
	Message []byte
}

func (d *ConsensusSubmitMessageData) Type() TransactionType { return TxConsensusSubmitMessage }

func (d *ConsensusSubmitMessageData) MarshalCSER(w *cser.Writer) {
	d.Topic.MarshalCSER(w)
	w.SliceBytes(d.Message)
}

func (d *ConsensusSubmitMessageData) UnmarshalCSER(r *cser.Reader) {
	d.Topic.UnmarshalCSER(r)
	d.Message = r.SliceBytes(ProtocolMaxMsgSize)
}

type FileCreateData struct {
	Contents []byte
	Memo     string
}

func (d *FileCreateData) Type() TransactionType { return TxFileCreate }

func (d *FileCreateData) MarshalCSER(w *cser.Writer) {
	w.SliceBytes(d.Contents)
	w.String(d.Memo)
}

func (d *FileCreateData) UnmarshalCSER(r *cser.Reader) {
	d.Contents = r.SliceBytes(ProtocolMaxMsgSize)
	d.Memo = r.String(ProtocolMaxMsgSize)
}

type TokenCreateData struct {
	Name          string
	Symbol        string
	Treasury      EntityID
	InitialSupply uint64
	Decimals      uint32
	NonFungible   bool
}

func (d *TokenCreateData) Type() TransactionType { return TxTokenCreate }

func (d *TokenCreateData) MarshalCSER(w *cser.Writer) {
	w.String(d.Name)
	w.String(d.Symbol)
	d.Treasury.MarshalCSER(w)
	w.U64(d.InitialSupply)
	w.U32(d.Decimals)
	w.Bool(d.NonFungible)
}

func (d *TokenCreateData) UnmarshalCSER(r *cser.Reader) {
	d.Name = r.String(ProtocolMaxMsgSize)
	d.Symbol = r.String(ProtocolMaxMsgSize)
	d.Treasury.UnmarshalCSER(r)
	d.InitialSupply = r.U64()
	d.Decimals = r.U32()
	d.NonFungible = r.Bool()
}

// TokenMintData mints Amount fungible units, or one NFT per Metadata entry.
type TokenMintData struct {
	Token    EntityID
	Amount   uint64
	Metadata [][]byte
}

func (d *TokenMintData) Type() TransactionType { return TxTokenMint }

func (d *TokenMintData) MarshalCSER(w *cser.Writer) {
	d.Token.MarshalCSER(w)
	w.U64(d.Amount)
	WriteByteSlices(w, d.Metadata)
}

func (d *TokenMintData) UnmarshalCSER(r *cser.Reader) {
	d.Token.UnmarshalCSER(r)
	d.Amount = r.U64()
	d.Metadata = ReadByteSlices(r)
}

type TokenBurnData struct {
	Token   EntityID
	Amount  uint64
	Serials []int64
}

func (d *TokenBurnData) Type() TransactionType { return TxTokenBurn }

func (d *TokenBurnData) MarshalCSER(w *cser.Writer) {
	d.Token.MarshalCSER(w)
	w.U64(d.Amount)
	WriteInt64s(w, d.Serials)
}

func (d *TokenBurnData) UnmarshalCSER(r *cser.Reader) {
	d.Token.UnmarshalCSER(r)
	d.Amount = r.U64()
	d.Serials = ReadInt64s(r)
}

type TokenWipeData struct {
	Token   EntityID
	Account EntityID
	Amount  uint64
	Serials []int64
}

func (d *TokenWipeData) Type() TransactionType { return TxTokenWipe }

func (d *TokenWipeData) MarshalCSER(w *cser.Writer) {
	d.Token.MarshalCSER(w)
	d.Account.MarshalCSER(w)
	w.U64(d.Amount)
	WriteInt64s(w, d.Serials)
}

func (d *TokenWipeData) UnmarshalCSER(r *cser.Reader) {
	d.Token.UnmarshalCSER(r)
	d.Account.UnmarshalCSER(r)
	d.Amount = r.U64()
	d.Serials = ReadInt64s(r)
}

type TokenAirdropData struct {
	TokenTransfers []TokenTransferList
}

func (d *TokenAirdropData) Type() TransactionType { return TxTokenAirdrop }

func (d *TokenAirdropData) MarshalCSER(w *cser.Writer) {
	WriteTokenTransferLists(w, d.TokenTransfers)
}

func (d *TokenAirdropData) UnmarshalCSER(r *cser.Reader) {
	d.TokenTransfers = ReadTokenTransferLists(r)
}

// ScheduleCreateData carries the encoded body of the scheduled transaction.
type ScheduleCreateData struct {
	ScheduledBody []byte
	Memo          string
	Payer         EntityID
}

func (d *ScheduleCreateData) Type() TransactionType { return TxScheduleCreate }

func (d *ScheduleCreateData) MarshalCSER(w *cser.Writer) {
	w.SliceBytes(d.ScheduledBody)
	w.String(d.Memo)
	d.Payer.MarshalCSER(w)
}

func (d *ScheduleCreateData) UnmarshalCSER(r *cser.Reader) {
	d.ScheduledBody = r.SliceBytes(ProtocolMaxMsgSize)
	d.Memo = r.String(ProtocolMaxMsgSize)
	d.Payer.UnmarshalCSER(r)
}

type NodeCreateData struct {
	Account     EntityID
	Description string
	GossipCert  []byte
}

func (d *NodeCreateData) Type() TransactionType { return TxNodeCreate }

func (d *NodeCreateData) MarshalCSER(w *cser.Writer) {
	d.Account.MarshalCSER(w)
	w.String(d.Description)
	w.SliceBytes(d.GossipCert)
}

func (d *NodeCreateData) UnmarshalCSER(r *cser.Reader) {
	d.Account.UnmarshalCSER(r)
	d.Description = r.String(ProtocolMaxMsgSize)
	d.GossipCert = r.SliceBytes(ProtocolMaxMsgSize)
}

// UtilPrngData asks for a pseudo random number in [0, Range), or 48 random
// bytes when Range is zero.
type UtilPrngData struct {
	Range int32
}

func (d *UtilPrngData) Type() TransactionType { return TxUtilPrng }

func (d *UtilPrngData) MarshalCSER(w *cser.Writer) {
	w.I32(d.Range)
}

func (d *UtilPrngData) UnmarshalCSER(r *cser.Reader) {
	d.Range = r.I32()
}

// AtomicBatchData lists the signed bytes of the inner transactions, in
// execution order.
type AtomicBatchData struct {
	Transactions [][]byte
}

func (d *AtomicBatchData) Type() TransactionType { return TxAtomicBatch }

func (d *AtomicBatchData) MarshalCSER(w *cser.Writer) {
	WriteByteSlices(w, d.Transactions)
}

func (d *AtomicBatchData) UnmarshalCSER(r *cser.Reader) {
	d.Transactions = ReadByteSlices(r)
}
