package inter

import (
	"errors"

	"github.com/rony4d/go-ledger-mirror/utils/cser"
)

/*
	A transaction travels as two nested cser blobs:

	SignedTransaction: [ body bytes ][ signature pairs ]
	TransactionBody:   [ transaction id ][ node ][ fee ][ valid duration ][ memo ][ batch key ][ type ][ payload ]

	The body is kept as bytes inside the signed envelope so that the bytes the
	payer signed, and the bytes inner batch transactions are matched by, stay
	exactly as produced.
*/

// ErrUnknownTransactionType is returned for a body whose type byte is not known.
var ErrUnknownTransactionType = errors.New("unknown transaction type")

// SignaturePair is one signature of the body bytes.
type SignaturePair struct {
	PubKeyPrefix []byte
	Signature    []byte
}

// SignedTransaction is the envelope carried by a signed transaction block item.
type SignedTransaction struct {
	BodyBytes  []byte
	Signatures []SignaturePair
}

// TransactionBody is the decoded content of SignedTransaction.BodyBytes.
type TransactionBody struct {
	TransactionID  TransactionID
	NodeAccountID  EntityID
	TransactionFee uint64
	ValidDuration  int64
	Memo           string
	BatchKey       []byte
	Data           TransactionData
}

// Type returns the type of the payload, TxUnknown if there is none.
func (b *TransactionBody) Type() TransactionType {
	if b == nil || b.Data == nil {
		return TxUnknown
	}
	return b.Data.Type()
}

// MarshalCSER writes the envelope.
func (s *SignedTransaction) MarshalCSER(w *cser.Writer) error {
	w.SliceBytes(s.BodyBytes)
	writeList(w, s.Signatures, func(w *cser.Writer, p SignaturePair) {
		w.SliceBytes(p.PubKeyPrefix)
		w.SliceBytes(p.Signature)
	})
	return nil
}

// UnmarshalCSER reads an envelope written by MarshalCSER.
func (s *SignedTransaction) UnmarshalCSER(r *cser.Reader) error {
	s.BodyBytes = r.SliceBytes(ProtocolMaxMsgSize)
	s.Signatures = readList(r, func(r *cser.Reader) (p SignaturePair) {
		p.PubKeyPrefix = r.SliceBytes(ProtocolMaxMsgSize)
		p.Signature = r.SliceBytes(ProtocolMaxMsgSize)
		return p
	})
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (s *SignedTransaction) MarshalBinary() ([]byte, error) {
	return cser.MarshalBinaryAdapter(s.MarshalCSER)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (s *SignedTransaction) UnmarshalBinary(raw []byte) error {
	return cser.UnmarshalBinaryAdapter(raw, s.UnmarshalCSER)
}

// MarshalCSER writes the body. A body without payload cannot be encoded.
func (b *TransactionBody) MarshalCSER(w *cser.Writer) error {
	if !b.Type().Valid() {
		return ErrUnknownTransactionType
	}
	b.TransactionID.MarshalCSER(w)
	b.NodeAccountID.MarshalCSER(w)
	w.U64(b.TransactionFee)
	w.I64(b.ValidDuration)
	w.String(b.Memo)
	w.OptionalBytes(b.BatchKey)
	w.U8(uint8(b.Data.Type()))
	b.Data.MarshalCSER(w)
	return nil
}

// UnmarshalCSER reads a body written by MarshalCSER.
func (b *TransactionBody) UnmarshalCSER(r *cser.Reader) error {
	b.TransactionID.UnmarshalCSER(r)
	b.NodeAccountID.UnmarshalCSER(r)
	b.TransactionFee = r.U64()
	b.ValidDuration = r.I64()
	b.Memo = r.String(ProtocolMaxMsgSize)
	b.BatchKey = r.OptionalBytes(ProtocolMaxMsgSize)

	data, err := NewTransactionData(TransactionType(r.U8()))
	if err != nil {
		return err
	}
	data.UnmarshalCSER(r)
	b.Data = data
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (b *TransactionBody) MarshalBinary() ([]byte, error) {
	return cser.MarshalBinaryAdapter(b.MarshalCSER)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (b *TransactionBody) UnmarshalBinary(raw []byte) error {
	return cser.UnmarshalBinaryAdapter(raw, b.UnmarshalCSER)
}

// DecodeTransaction decodes signed transaction bytes and the body inside.
func DecodeTransaction(signedBytes []byte) (*SignedTransaction, *TransactionBody, error) {
	signed := &SignedTransaction{}
	if err := signed.UnmarshalBinary(signedBytes); err != nil {
		return nil, nil, err
	}
	body := &TransactionBody{}
	if err := body.UnmarshalBinary(signed.BodyBytes); err != nil {
		return nil, nil, err
	}
	return signed, body, nil
}

// EncodeTransaction encodes body and wraps it into a signed envelope with the
// given signatures. It returns the signed transaction bytes.
func EncodeTransaction(body *TransactionBody, sigs ...SignaturePair) ([]byte, error) {
	bodyBytes, err := body.MarshalBinary()
	if err != nil {
		return nil, err
	}
	signed := &SignedTransaction{BodyBytes: bodyBytes, Signatures: sigs}
	return signed.MarshalBinary()
}
