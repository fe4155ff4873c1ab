package inter

import (
	"github.com/rony4d/go-ledger-mirror/utils/cser"
)

// StateID names the ledger state a change applies to.
type StateID uint8

const (
	StateUnknown StateID = iota
	StateAccounts
	StateAliases
	StateContracts
	StateFiles
	StateNodes
	StateTopics
	StateTokens
	StateNfts
	StateSchedules
	StateTokenRelations
	StateBlockInfo
	StateRunningHashes
)

// ChangeOp is the kind of mutation a StateChange describes.
type ChangeOp uint8

const (
	OpMapUpdate ChangeOp = iota + 1
	OpMapDelete
	OpSingletonUpdate
)

// StateKey addresses an entry of a map state. Only the fields meaningful for
// the StateID are set: NFTs use Entity (the token) plus Serial, aliases use
// Alias.
type StateKey struct {
	Entity EntityID
	Serial int64
	Alias  []byte
}

// StateValue is the new content of a state entry. Like StateKey it is a flat
// record where each StateID uses its own subset of fields.
type StateValue struct {
	Entity             EntityID
	Alias              []byte
	EvmAddress         []byte
	TotalSupply        uint64
	SequenceNumber     uint64
	RunningHash        []byte
	RunningHashVersion uint64
	Metadata           []byte
	NodeID             uint64
	Deleted            bool
}

// StateChange is one reported mutation of ledger state.
type StateChange struct {
	StateID StateID
	Op      ChangeOp
	Key     StateKey
	Value   StateValue
}

// StateChanges is a batch of mutations sharing a consensus timestamp.
type StateChanges struct {
	ConsensusTimestamp Timestamp
	Changes            []StateChange
}

// MarshalCSER writes the batch.
func (sc *StateChanges) MarshalCSER(w *cser.Writer) {
	w.U64(uint64(sc.ConsensusTimestamp))
	writeList(w, sc.Changes, func(w *cser.Writer, c StateChange) {
		w.U8(uint8(c.StateID))
		w.U8(uint8(c.Op))
		c.Key.Entity.MarshalCSER(w)
		w.I64(c.Key.Serial)
		w.OptionalBytes(c.Key.Alias)

		v := c.Value
		v.Entity.MarshalCSER(w)
		w.OptionalBytes(v.Alias)
		w.OptionalBytes(v.EvmAddress)
		w.U64(v.TotalSupply)
		w.U64(v.SequenceNumber)
		w.OptionalBytes(v.RunningHash)
		w.U64(v.RunningHashVersion)
		w.OptionalBytes(v.Metadata)
		w.U64(v.NodeID)
		w.Bool(v.Deleted)
	})
}

// UnmarshalCSER reads a batch written by MarshalCSER.
func (sc *StateChanges) UnmarshalCSER(r *cser.Reader) {
	sc.ConsensusTimestamp = Timestamp(r.U64())
	sc.Changes = readList(r, func(r *cser.Reader) (c StateChange) {
		c.StateID = StateID(r.U8())
		c.Op = ChangeOp(r.U8())
		c.Key.Entity.UnmarshalCSER(r)
		c.Key.Serial = r.I64()
		c.Key.Alias = r.OptionalBytes(ProtocolMaxMsgSize)

		v := &c.Value
		v.Entity.UnmarshalCSER(r)
		v.Alias = r.OptionalBytes(ProtocolMaxMsgSize)
		v.EvmAddress = r.OptionalBytes(ProtocolMaxMsgSize)
		v.TotalSupply = r.U64()
		v.SequenceNumber = r.U64()
		v.RunningHash = r.OptionalBytes(ProtocolMaxMsgSize)
		v.RunningHashVersion = r.U64()
		v.Metadata = r.OptionalBytes(ProtocolMaxMsgSize)
		v.NodeID = r.U64()
		v.Deleted = r.Bool()
		return c
	})
}
