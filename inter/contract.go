package inter

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/go-ledger-mirror/utils/cser"
)

// ContractLog is a single EVM log emitted during a contract execution.
type ContractLog struct {
	ContractID EntityID
	Bloom      []byte
	Topics     []common.Hash
	Data       []byte
}

// ContractFunctionResult is the outcome of a contract call or create.
type ContractFunctionResult struct {
	ContractID         EntityID
	CallResult         []byte
	ErrorMessage       string
	Bloom              []byte
	GasUsed            uint64
	Gas                uint64
	Amount             int64
	FunctionParameters []byte
	Logs               []ContractLog
	CreatedContractIDs []EntityID
	EvmAddress         []byte
	SenderID           EntityID
	SignerNonce        int64
}

// SidecarKind classifies sidecar records.
type SidecarKind uint8

const (
	SidecarStateChanges SidecarKind = iota + 1
	SidecarActions
	SidecarBytecode
)

// SidecarRecord carries contract execution traces delivered next to the
// transaction's main record.
type SidecarRecord struct {
	ConsensusTimestamp Timestamp
	Kind               SidecarKind
	Migration          bool
	Payload            []byte
}

// MarshalCSER writes the result.
func (res *ContractFunctionResult) MarshalCSER(w *cser.Writer) {
	res.ContractID.MarshalCSER(w)
	w.SliceBytes(res.CallResult)
	w.String(res.ErrorMessage)
	w.SliceBytes(res.Bloom)
	w.U64(res.GasUsed)
	w.U64(res.Gas)
	w.I64(res.Amount)
	w.SliceBytes(res.FunctionParameters)
	writeList(w, res.Logs, func(w *cser.Writer, l ContractLog) {
		l.ContractID.MarshalCSER(w)
		w.SliceBytes(l.Bloom)
		writeList(w, l.Topics, func(w *cser.Writer, h common.Hash) {
			w.FixedBytes(h[:])
		})
		w.SliceBytes(l.Data)
	})
	WriteEntityIDs(w, res.CreatedContractIDs)
	w.OptionalBytes(res.EvmAddress)
	res.SenderID.MarshalCSER(w)
	w.I64(res.SignerNonce)
}

// UnmarshalCSER reads a value written by MarshalCSER.
func (res *ContractFunctionResult) UnmarshalCSER(r *cser.Reader) {
	res.ContractID.UnmarshalCSER(r)
	res.CallResult = r.SliceBytes(ProtocolMaxMsgSize)
	res.ErrorMessage = r.String(ProtocolMaxMsgSize)
	res.Bloom = r.SliceBytes(ProtocolMaxMsgSize)
	res.GasUsed = r.U64()
	res.Gas = r.U64()
	res.Amount = r.I64()
	res.FunctionParameters = r.SliceBytes(ProtocolMaxMsgSize)
	res.Logs = readList(r, func(r *cser.Reader) (l ContractLog) {
		l.ContractID.UnmarshalCSER(r)
		l.Bloom = r.SliceBytes(ProtocolMaxMsgSize)
		l.Topics = readList(r, func(r *cser.Reader) (h common.Hash) {
			r.FixedBytes(h[:])
			return h
		})
		l.Data = r.SliceBytes(ProtocolMaxMsgSize)
		return l
	})
	res.CreatedContractIDs = ReadEntityIDs(r)
	res.EvmAddress = r.OptionalBytes(common.AddressLength)
	res.SenderID.UnmarshalCSER(r)
	res.SignerNonce = r.I64()
}

// WriteSidecars encodes sidecar records.
func WriteSidecars(w *cser.Writer, list []SidecarRecord) {
	writeList(w, list, func(w *cser.Writer, s SidecarRecord) {
		w.U64(uint64(s.ConsensusTimestamp))
		w.U8(uint8(s.Kind))
		w.Bool(s.Migration)
		w.SliceBytes(s.Payload)
	})
}

// ReadSidecars decodes records written by WriteSidecars.
func ReadSidecars(r *cser.Reader) []SidecarRecord {
	return readList(r, func(r *cser.Reader) (s SidecarRecord) {
		s.ConsensusTimestamp = Timestamp(r.U64())
		s.Kind = SidecarKind(r.U8())
		s.Migration = r.Bool()
		s.Payload = r.SliceBytes(ProtocolMaxMsgSize)
		return s
	})
}
