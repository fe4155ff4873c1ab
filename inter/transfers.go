package inter

import (
	"github.com/rony4d/go-ledger-mirror/utils/cser"
)

// Limits applied while decoding untrusted lists.
const (
	ProtocolMaxMsgSize = 10 * 1024 * 1024
	maxListLen         = 64 * 1024
)

// AccountAmount is one leg of a hbar or fungible token transfer.
type AccountAmount struct {
	Account    EntityID
	Amount     int64
	IsApproval bool
}

// NftTransfer moves one serial of a non-fungible token.
type NftTransfer struct {
	Sender     EntityID
	Receiver   EntityID
	Serial     int64
	IsApproval bool
}

// TokenTransferList groups the transfers of a single token.
type TokenTransferList struct {
	Token            EntityID
	Transfers        []AccountAmount
	NftTransfers     []NftTransfer
	ExpectedDecimals uint32
}

// AssessedCustomFee is a custom fee charged while executing a transfer.
type AssessedCustomFee struct {
	Amount          int64
	Token           EntityID
	Collector       EntityID
	EffectivePayers []EntityID
}

// TokenAssociation records an automatic token association.
type TokenAssociation struct {
	Token   EntityID
	Account EntityID
}

// PendingAirdrop is an airdrop the receiver has not claimed yet.
type PendingAirdrop struct {
	Sender   EntityID
	Receiver EntityID
	Token    EntityID
	Serial   int64
	Amount   uint64
}

func writeList[T any](w *cser.Writer, list []T, write func(*cser.Writer, T)) {
	w.Len(len(list))
	for _, v := range list {
		write(w, v)
	}
}

func readList[T any](r *cser.Reader, read func(*cser.Reader) T) []T {
	n := r.Len(maxListLen)
	if n == 0 {
		return nil
	}
	list := make([]T, n)
	for i := range list {
		list[i] = read(r)
	}
	return list
}

// WriteAccountAmounts encodes a transfer list.
func WriteAccountAmounts(w *cser.Writer, list []AccountAmount) {
	writeList(w, list, func(w *cser.Writer, v AccountAmount) {
		v.Account.MarshalCSER(w)
		w.I64(v.Amount)
		w.Bool(v.IsApproval)
	})
}

// ReadAccountAmounts decodes a list written by WriteAccountAmounts.
func ReadAccountAmounts(r *cser.Reader) []AccountAmount {
	return readList(r, func(r *cser.Reader) (v AccountAmount) {
		v.Account.UnmarshalCSER(r)
		v.Amount = r.I64()
		v.IsApproval = r.Bool()
		return v
	})
}

// WriteEntityIDs encodes a list of ids.
func WriteEntityIDs(w *cser.Writer, list []EntityID) {
	writeList(w, list, func(w *cser.Writer, v EntityID) {
		v.MarshalCSER(w)
	})
}

// ReadEntityIDs decodes a list written by WriteEntityIDs.
func ReadEntityIDs(r *cser.Reader) []EntityID {
	return readList(r, func(r *cser.Reader) (v EntityID) {
		v.UnmarshalCSER(r)
		return v
	})
}

// WriteInt64s encodes a list of signed integers, e.g. NFT serial numbers.
func WriteInt64s(w *cser.Writer, list []int64) {
	writeList(w, list, func(w *cser.Writer, v int64) {
		w.I64(v)
	})
}

// ReadInt64s decodes a list written by WriteInt64s.
func ReadInt64s(r *cser.Reader) []int64 {
	return readList(r, func(r *cser.Reader) int64 {
		return r.I64()
	})
}

// WriteByteSlices encodes a list of byte slices.
func WriteByteSlices(w *cser.Writer, list [][]byte) {
	writeList(w, list, func(w *cser.Writer, v []byte) {
		w.SliceBytes(v)
	})
}

// ReadByteSlices decodes a list written by WriteByteSlices.
func ReadByteSlices(r *cser.Reader) [][]byte {
	return readList(r, func(r *cser.Reader) []byte {
		return r.SliceBytes(ProtocolMaxMsgSize)
	})
}

// WriteTokenTransferLists encodes token transfer lists.
func WriteTokenTransferLists(w *cser.Writer, list []TokenTransferList) {
	writeList(w, list, func(w *cser.Writer, v TokenTransferList) {
		v.Token.MarshalCSER(w)
		WriteAccountAmounts(w, v.Transfers)
		writeList(w, v.NftTransfers, func(w *cser.Writer, n NftTransfer) {
			n.Sender.MarshalCSER(w)
			n.Receiver.MarshalCSER(w)
			w.I64(n.Serial)
			w.Bool(n.IsApproval)
		})
		w.U32(v.ExpectedDecimals)
	})
}

// ReadTokenTransferLists decodes lists written by WriteTokenTransferLists.
func ReadTokenTransferLists(r *cser.Reader) []TokenTransferList {
	return readList(r, func(r *cser.Reader) (v TokenTransferList) {
		v.Token.UnmarshalCSER(r)
		v.Transfers = ReadAccountAmounts(r)
		v.NftTransfers = readList(r, func(r *cser.Reader) (n NftTransfer) {
			n.Sender.UnmarshalCSER(r)
			n.Receiver.UnmarshalCSER(r)
			n.Serial = r.I64()
			n.IsApproval = r.Bool()
			return n
		})
		v.ExpectedDecimals = r.U32()
		return v
	})
}

// WriteAssessedCustomFees encodes assessed custom fees.
func WriteAssessedCustomFees(w *cser.Writer, list []AssessedCustomFee) {
	writeList(w, list, func(w *cser.Writer, v AssessedCustomFee) {
		w.I64(v.Amount)
		v.Token.MarshalCSER(w)
		v.Collector.MarshalCSER(w)
		WriteEntityIDs(w, v.EffectivePayers)
	})
}

// ReadAssessedCustomFees decodes fees written by WriteAssessedCustomFees.
func ReadAssessedCustomFees(r *cser.Reader) []AssessedCustomFee {
	return readList(r, func(r *cser.Reader) (v AssessedCustomFee) {
		v.Amount = r.I64()
		v.Token.UnmarshalCSER(r)
		v.Collector.UnmarshalCSER(r)
		v.EffectivePayers = ReadEntityIDs(r)
		return v
	})
}

// WriteTokenAssociations encodes automatic token associations.
func WriteTokenAssociations(w *cser.Writer, list []TokenAssociation) {
	writeList(w, list, func(w *cser.Writer, v TokenAssociation) {
		v.Token.MarshalCSER(w)
		v.Account.MarshalCSER(w)
	})
}

// ReadTokenAssociations decodes associations written by WriteTokenAssociations.
func ReadTokenAssociations(r *cser.Reader) []TokenAssociation {
	return readList(r, func(r *cser.Reader) (v TokenAssociation) {
		v.Token.UnmarshalCSER(r)
		v.Account.UnmarshalCSER(r)
		return v
	})
}

// WritePendingAirdrops encodes pending airdrops.
func WritePendingAirdrops(w *cser.Writer, list []PendingAirdrop) {
	writeList(w, list, func(w *cser.Writer, v PendingAirdrop) {
		v.Sender.MarshalCSER(w)
		v.Receiver.MarshalCSER(w)
		v.Token.MarshalCSER(w)
		w.I64(v.Serial)
		w.U64(v.Amount)
	})
}

// ReadPendingAirdrops decodes airdrops written by WritePendingAirdrops.
func ReadPendingAirdrops(r *cser.Reader) []PendingAirdrop {
	return readList(r, func(r *cser.Reader) (v PendingAirdrop) {
		v.Sender.UnmarshalCSER(r)
		v.Receiver.UnmarshalCSER(r)
		v.Token.UnmarshalCSER(r)
		v.Serial = r.I64()
		v.Amount = r.U64()
		return v
	})
}
