package inter

import (
	"errors"

	"github.com/rony4d/go-ledger-mirror/utils/cser"
)

/*
	Every block item is its own cser blob:

	[ kind (U8) ][ kind specific payload ]

	A block stream file is a container blob holding the count of items followed
	by each item blob as a length prefixed slice. The item blob, not the
	decoded struct, is what the block hash is computed over, so decoding keeps
	it in BlockItem.Raw.
*/

var (
	ErrUnknownItemKind = errors.New("unknown block item kind")
	ErrEmptyItem       = errors.New("block item has no payload for its kind")
)

// MaxBlockItems bounds the item count of a single block file.
const MaxBlockItems = 1 << 20

// ItemKind is the tag of a block item.
type ItemKind uint8

const (
	KindUnknown ItemKind = iota
	KindBlockHeader
	KindRoundHeader
	KindEventHeader
	KindSignedTransaction
	KindTransactionResult
	KindTransactionOutput
	KindStateChanges
	KindBlockProof
	KindRecordFile
)

var itemKindNames = [...]string{
	KindUnknown:           "unknown",
	KindBlockHeader:       "block_header",
	KindRoundHeader:       "round_header",
	KindEventHeader:       "event_header",
	KindSignedTransaction: "signed_transaction",
	KindTransactionResult: "transaction_result",
	KindTransactionOutput: "transaction_output",
	KindStateChanges:      "state_changes",
	KindBlockProof:        "block_proof",
	KindRecordFile:        "record_file",
}

func (k ItemKind) String() string {
	if int(k) < len(itemKindNames) {
		return itemKindNames[k]
	}
	return "unknown"
}

// BlockItem is one tagged unit of a block stream. Exactly the field matching
// Kind is set.
type BlockItem struct {
	Kind ItemKind
	// Raw is the canonical encoding of the item.
	Raw []byte

	Header            *BlockHeader
	RoundHeader       *RoundHeader
	EventHeader       *EventHeader
	SignedTransaction []byte
	Result            *TransactionResult
	Output            *TransactionOutput
	StateChanges      *StateChanges
	Proof             *BlockProof
	RecordFile        *RecordFile
}

// MarshalCSER writes the kind byte and the payload.
func (it *BlockItem) MarshalCSER(w *cser.Writer) error {
	w.U8(uint8(it.Kind))
	switch it.Kind {
	case KindBlockHeader:
		if it.Header == nil {
			return ErrEmptyItem
		}
		marshalBlockHeader(w, it.Header)
	case KindRoundHeader:
		if it.RoundHeader == nil {
			return ErrEmptyItem
		}
		w.U64(it.RoundHeader.Round)
	case KindEventHeader:
		if it.EventHeader == nil {
			return ErrEmptyItem
		}
		w.U64(it.EventHeader.Creator)
		w.U64(it.EventHeader.BirthRound)
		w.SliceBytes(it.EventHeader.Signature)
	case KindSignedTransaction:
		if it.SignedTransaction == nil {
			return ErrEmptyItem
		}
		w.SliceBytes(it.SignedTransaction)
	case KindTransactionResult:
		if it.Result == nil {
			return ErrEmptyItem
		}
		marshalResult(w, it.Result)
	case KindTransactionOutput:
		if it.Output == nil {
			return ErrEmptyItem
		}
		marshalOutput(w, it.Output)
	case KindStateChanges:
		if it.StateChanges == nil {
			return ErrEmptyItem
		}
		it.StateChanges.MarshalCSER(w)
	case KindBlockProof:
		if it.Proof == nil {
			return ErrEmptyItem
		}
		w.U64(it.Proof.Block)
		w.OptionalBytes(it.Proof.PreviousBlockRootHash)
		w.OptionalBytes(it.Proof.StartOfBlockStateRootHash)
		w.SliceBytes(it.Proof.BlockSignature)
		WriteByteSlices(w, it.Proof.SiblingHashes)
	case KindRecordFile:
		if it.RecordFile == nil {
			return ErrEmptyItem
		}
		w.U64(uint64(it.RecordFile.CreationTime))
		w.SliceBytes(it.RecordFile.Contents)
		WriteByteSlices(w, it.RecordFile.SidecarContents)
	default:
		return ErrUnknownItemKind
	}
	return nil
}

// UnmarshalCSER reads an item written by MarshalCSER. Raw is not touched.
func (it *BlockItem) UnmarshalCSER(r *cser.Reader) error {
	it.Kind = ItemKind(r.U8())
	switch it.Kind {
	case KindBlockHeader:
		it.Header = unmarshalBlockHeader(r)
	case KindRoundHeader:
		it.RoundHeader = &RoundHeader{Round: r.U64()}
	case KindEventHeader:
		it.EventHeader = &EventHeader{
			Creator:    r.U64(),
			BirthRound: r.U64(),
			Signature:  r.SliceBytes(ProtocolMaxMsgSize),
		}
	case KindSignedTransaction:
		it.SignedTransaction = r.SliceBytes(ProtocolMaxMsgSize)
	case KindTransactionResult:
		it.Result = unmarshalResult(r)
	case KindTransactionOutput:
		it.Output = unmarshalOutput(r)
	case KindStateChanges:
		it.StateChanges = &StateChanges{}
		it.StateChanges.UnmarshalCSER(r)
	case KindBlockProof:
		it.Proof = &BlockProof{
			Block:                     r.U64(),
			PreviousBlockRootHash:     r.OptionalBytes(ProtocolMaxMsgSize),
			StartOfBlockStateRootHash: r.OptionalBytes(ProtocolMaxMsgSize),
			BlockSignature:            r.SliceBytes(ProtocolMaxMsgSize),
			SiblingHashes:             ReadByteSlices(r),
		}
	case KindRecordFile:
		it.RecordFile = &RecordFile{
			CreationTime:    Timestamp(r.U64()),
			Contents:        r.SliceBytes(ProtocolMaxMsgSize),
			SidecarContents: ReadByteSlices(r),
		}
	default:
		return ErrUnknownItemKind
	}
	return nil
}

// MarshalBinary encodes the item and stores the result in Raw.
func (it *BlockItem) MarshalBinary() ([]byte, error) {
	raw, err := cser.MarshalBinaryAdapter(it.MarshalCSER)
	if err != nil {
		return nil, err
	}
	it.Raw = raw
	return raw, nil
}

// DecodeBlockItem decodes one item blob and keeps raw as its Raw bytes.
func DecodeBlockItem(raw []byte) (*BlockItem, error) {
	it := &BlockItem{}
	if err := cser.UnmarshalBinaryAdapter(raw, it.UnmarshalCSER); err != nil {
		return nil, err
	}
	it.Raw = raw
	return it, nil
}

// EncodeBlockItems builds a block stream file from items. Items without Raw
// bytes are encoded first.
func EncodeBlockItems(items []*BlockItem) ([]byte, error) {
	for _, it := range items {
		if it.Raw != nil {
			continue
		}
		if _, err := it.MarshalBinary(); err != nil {
			return nil, err
		}
	}
	return cser.MarshalBinaryAdapter(func(w *cser.Writer) error {
		w.U32(uint32(len(items)))
		for _, it := range items {
			w.SliceBytes(it.Raw)
		}
		return nil
	})
}

// DecodeBlockItems splits a block stream file into decoded items.
func DecodeBlockItems(raw []byte) ([]*BlockItem, error) {
	var blobs [][]byte
	err := cser.UnmarshalBinaryAdapter(raw, func(r *cser.Reader) error {
		n := r.U32()
		if n > MaxBlockItems {
			return cser.ErrTooLargeAlloc
		}
		blobs = make([][]byte, n)
		for i := range blobs {
			blobs[i] = r.SliceBytes(ProtocolMaxMsgSize)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	items := make([]*BlockItem, len(blobs))
	for i, blob := range blobs {
		if items[i], err = DecodeBlockItem(blob); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func marshalVersion(w *cser.Writer, v SemanticVersion) {
	w.U32(v.Major)
	w.U32(v.Minor)
	w.U32(v.Patch)
}

func unmarshalVersion(r *cser.Reader) SemanticVersion {
	return SemanticVersion{Major: r.U32(), Minor: r.U32(), Patch: r.U32()}
}

func marshalBlockHeader(w *cser.Writer, h *BlockHeader) {
	marshalVersion(w, h.HapiVersion)
	marshalVersion(w, h.SoftwareVersion)
	w.U64(h.Number)
	w.U64(uint64(h.BlockTimestamp))
	w.U8(uint8(h.HashAlgorithm))
}

func unmarshalBlockHeader(r *cser.Reader) *BlockHeader {
	return &BlockHeader{
		HapiVersion:     unmarshalVersion(r),
		SoftwareVersion: unmarshalVersion(r),
		Number:          r.U64(),
		BlockTimestamp:  Timestamp(r.U64()),
		HashAlgorithm:   HashAlgorithm(r.U8()),
	}
}

func marshalResult(w *cser.Writer, res *TransactionResult) {
	w.U16(uint16(res.Status))
	w.U64(uint64(res.ConsensusTimestamp))
	w.U64(uint64(res.ParentConsensusTimestamp))
	res.ScheduleRef.MarshalCSER(w)
	w.U64(res.TransactionFeeCharged)
	WriteAccountAmounts(w, res.TransferList)
	WriteTokenTransferLists(w, res.TokenTransferLists)
	WriteTokenAssociations(w, res.AutomaticTokenAssociations)
	WriteAssessedCustomFees(w, res.AssessedCustomFees)
	WriteAccountAmounts(w, res.PaidStakingRewards)
	w.U64(res.CongestionMultiplier)
}

func unmarshalResult(r *cser.Reader) *TransactionResult {
	res := &TransactionResult{}
	res.Status = ResponseCode(r.U16())
	res.ConsensusTimestamp = Timestamp(r.U64())
	res.ParentConsensusTimestamp = Timestamp(r.U64())
	res.ScheduleRef.UnmarshalCSER(r)
	res.TransactionFeeCharged = r.U64()
	res.TransferList = ReadAccountAmounts(r)
	res.TokenTransferLists = ReadTokenTransferLists(r)
	res.AutomaticTokenAssociations = ReadTokenAssociations(r)
	res.AssessedCustomFees = ReadAssessedCustomFees(r)
	res.PaidStakingRewards = ReadAccountAmounts(r)
	res.CongestionMultiplier = r.U64()
	return res
}

func marshalOutput(w *cser.Writer, out *TransactionOutput) {
	w.U8(uint8(out.Kind))
	w.Bool(out.ContractResult != nil)
	if out.ContractResult != nil {
		out.ContractResult.MarshalCSER(w)
	}
	WriteSidecars(w, out.Sidecars)
	w.OptionalBytes(out.EthereumHash)
	out.ScheduleID.MarshalCSER(w)
	w.Bool(out.ScheduledTransactionID != nil)
	if out.ScheduledTransactionID != nil {
		out.ScheduledTransactionID.MarshalCSER(w)
	}
	w.OptionalBytes(out.PrngBytes)
	w.I32(out.PrngNumber)
	WritePendingAirdrops(w, out.PendingAirdrops)
}

func unmarshalOutput(r *cser.Reader) *TransactionOutput {
	out := &TransactionOutput{Kind: OutputKind(r.U8())}
	if r.Bool() {
		out.ContractResult = &ContractFunctionResult{}
		out.ContractResult.UnmarshalCSER(r)
	}
	out.Sidecars = ReadSidecars(r)
	out.EthereumHash = r.OptionalBytes(ProtocolMaxMsgSize)
	out.ScheduleID.UnmarshalCSER(r)
	if r.Bool() {
		out.ScheduledTransactionID = &TransactionID{}
		out.ScheduledTransactionID.UnmarshalCSER(r)
	}
	out.PrngBytes = r.OptionalBytes(ProtocolMaxMsgSize)
	out.PrngNumber = r.I32()
	out.PendingAirdrops = ReadPendingAirdrops(r)
	return out
}
