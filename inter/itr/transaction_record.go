// Package itr (Inter-Transaction Records) defines the canonical transaction
// record the mirror node produces for every ledger transaction, whatever
// stream format it was read from. Records encode with cser, so two records
// are equal exactly when their bytes are.
package itr

import (
	"github.com/rony4d/go-ledger-mirror/inter"
	"github.com/rony4d/go-ledger-mirror/utils/cser"
)

// TransactionReceipt holds the entity and status facts of a transaction.
// Optional numbers are pointers: nil means "not reported".
type TransactionReceipt struct {
	Status                  inter.ResponseCode
	AccountID               inter.EntityID
	FileID                  inter.EntityID
	ContractID              inter.EntityID
	TopicID                 inter.EntityID
	TokenID                 inter.EntityID
	ScheduleID              inter.EntityID
	NodeID                  *uint64
	ScheduledTransactionID  *inter.TransactionID
	TopicRunningHash        []byte
	TopicRunningHashVersion uint64
	TopicSequenceNumber     uint64
	NewTotalSupply          *uint64
	SerialNumbers           []int64
}

// TransactionRecord is the canonical outcome of one transaction.
type TransactionRecord struct {
	Receipt                    TransactionReceipt
	TransactionHash            []byte
	ConsensusTimestamp         inter.Timestamp
	TransactionID              inter.TransactionID
	Memo                       string
	TransactionFee             uint64
	ContractCallResult         *inter.ContractFunctionResult
	ContractCreateResult       *inter.ContractFunctionResult
	TransferList               []inter.AccountAmount
	TokenTransferLists         []inter.TokenTransferList
	ScheduleRef                inter.EntityID
	AssessedCustomFees         []inter.AssessedCustomFee
	AutomaticTokenAssociations []inter.TokenAssociation
	ParentConsensusTimestamp   inter.Timestamp
	Alias                      []byte
	EthereumHash               []byte
	PaidStakingRewards         []inter.AccountAmount
	PrngBytes                  []byte
	PrngNumber                 *int32
	EvmAddress                 []byte
	NewPendingAirdrops         []inter.PendingAirdrop
}

func writeOptionalU64(w *cser.Writer, v *uint64) {
	w.Bool(v != nil)
	if v != nil {
		w.U64(*v)
	}
}

func readOptionalU64(r *cser.Reader) *uint64 {
	if !r.Bool() {
		return nil
	}
	v := r.U64()
	return &v
}

func writeOptionalResult(w *cser.Writer, res *inter.ContractFunctionResult) {
	w.Bool(res != nil)
	if res != nil {
		res.MarshalCSER(w)
	}
}

func readOptionalResult(r *cser.Reader) *inter.ContractFunctionResult {
	if !r.Bool() {
		return nil
	}
	res := &inter.ContractFunctionResult{}
	res.UnmarshalCSER(r)
	return res
}

// MarshalCSER writes the receipt.
func (rc *TransactionReceipt) MarshalCSER(w *cser.Writer) {
	w.U16(uint16(rc.Status))
	rc.AccountID.MarshalCSER(w)
	rc.FileID.MarshalCSER(w)
	rc.ContractID.MarshalCSER(w)
	rc.TopicID.MarshalCSER(w)
	rc.TokenID.MarshalCSER(w)
	rc.ScheduleID.MarshalCSER(w)
	writeOptionalU64(w, rc.NodeID)
	w.Bool(rc.ScheduledTransactionID != nil)
	if rc.ScheduledTransactionID != nil {
		rc.ScheduledTransactionID.MarshalCSER(w)
	}
	w.OptionalBytes(rc.TopicRunningHash)
	w.U64(rc.TopicRunningHashVersion)
	w.U64(rc.TopicSequenceNumber)
	writeOptionalU64(w, rc.NewTotalSupply)
	inter.WriteInt64s(w, rc.SerialNumbers)
}

// UnmarshalCSER reads a receipt written by MarshalCSER.
func (rc *TransactionReceipt) UnmarshalCSER(r *cser.Reader) {
	rc.Status = inter.ResponseCode(r.U16())
	rc.AccountID.UnmarshalCSER(r)
	rc.FileID.UnmarshalCSER(r)
	rc.ContractID.UnmarshalCSER(r)
	rc.TopicID.UnmarshalCSER(r)
	rc.TokenID.UnmarshalCSER(r)
	rc.ScheduleID.UnmarshalCSER(r)
	rc.NodeID = readOptionalU64(r)
	if r.Bool() {
		rc.ScheduledTransactionID = &inter.TransactionID{}
		rc.ScheduledTransactionID.UnmarshalCSER(r)
	}
	rc.TopicRunningHash = r.OptionalBytes(inter.ProtocolMaxMsgSize)
	rc.TopicRunningHashVersion = r.U64()
	rc.TopicSequenceNumber = r.U64()
	rc.NewTotalSupply = readOptionalU64(r)
	rc.SerialNumbers = inter.ReadInt64s(r)
}

// MarshalCSER writes the record.
func (rec *TransactionRecord) MarshalCSER(w *cser.Writer) error {
	rec.Receipt.MarshalCSER(w)
	w.OptionalBytes(rec.TransactionHash)
	w.U64(uint64(rec.ConsensusTimestamp))
	rec.TransactionID.MarshalCSER(w)
	w.String(rec.Memo)
	w.U64(rec.TransactionFee)
	writeOptionalResult(w, rec.ContractCallResult)
	writeOptionalResult(w, rec.ContractCreateResult)
	inter.WriteAccountAmounts(w, rec.TransferList)
	inter.WriteTokenTransferLists(w, rec.TokenTransferLists)
	rec.ScheduleRef.MarshalCSER(w)
	inter.WriteAssessedCustomFees(w, rec.AssessedCustomFees)
	inter.WriteTokenAssociations(w, rec.AutomaticTokenAssociations)
	w.U64(uint64(rec.ParentConsensusTimestamp))
	w.OptionalBytes(rec.Alias)
	w.OptionalBytes(rec.EthereumHash)
	inter.WriteAccountAmounts(w, rec.PaidStakingRewards)
	w.OptionalBytes(rec.PrngBytes)
	w.Bool(rec.PrngNumber != nil)
	if rec.PrngNumber != nil {
		w.I32(*rec.PrngNumber)
	}
	w.OptionalBytes(rec.EvmAddress)
	inter.WritePendingAirdrops(w, rec.NewPendingAirdrops)
	return nil
}

// UnmarshalCSER reads a record written by MarshalCSER.
func (rec *TransactionRecord) UnmarshalCSER(r *cser.Reader) error {
	rec.Receipt.UnmarshalCSER(r)
	rec.TransactionHash = r.OptionalBytes(inter.ProtocolMaxMsgSize)
	rec.ConsensusTimestamp = inter.Timestamp(r.U64())
	rec.TransactionID.UnmarshalCSER(r)
	rec.Memo = r.String(inter.ProtocolMaxMsgSize)
	rec.TransactionFee = r.U64()
	rec.ContractCallResult = readOptionalResult(r)
	rec.ContractCreateResult = readOptionalResult(r)
	rec.TransferList = inter.ReadAccountAmounts(r)
	rec.TokenTransferLists = inter.ReadTokenTransferLists(r)
	rec.ScheduleRef.UnmarshalCSER(r)
	rec.AssessedCustomFees = inter.ReadAssessedCustomFees(r)
	rec.AutomaticTokenAssociations = inter.ReadTokenAssociations(r)
	rec.ParentConsensusTimestamp = inter.Timestamp(r.U64())
	rec.Alias = r.OptionalBytes(inter.ProtocolMaxMsgSize)
	rec.EthereumHash = r.OptionalBytes(inter.ProtocolMaxMsgSize)
	rec.PaidStakingRewards = inter.ReadAccountAmounts(r)
	rec.PrngBytes = r.OptionalBytes(inter.ProtocolMaxMsgSize)
	if r.Bool() {
		n := r.I32()
		rec.PrngNumber = &n
	}
	rec.EvmAddress = r.OptionalBytes(inter.ProtocolMaxMsgSize)
	rec.NewPendingAirdrops = inter.ReadPendingAirdrops(r)
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (rec *TransactionRecord) MarshalBinary() ([]byte, error) {
	return cser.MarshalBinaryAdapter(rec.MarshalCSER)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (rec *TransactionRecord) UnmarshalBinary(raw []byte) error {
	return cser.UnmarshalBinaryAdapter(raw, rec.UnmarshalCSER)
}
