package blockstream

import (
	"github.com/rony4d/go-ledger-mirror/inter"
)

// Category groups state facts by entity kind.
type Category uint8

const (
	CategoryAccount Category = iota + 1
	CategoryContract
	CategoryContractByEvmAddress
	CategoryFile
	CategoryNode
	CategoryTopic
	CategoryToken
	CategoryNft
	CategorySchedule
)

// Key selects a fact. The populated fields choose the index:
//
//	Alias                 -> entity resolved from an alias or EVM address
//	Timestamp and Entity  -> the entity's value changed at that timestamp
//	Timestamp only        -> the first entity changed at that timestamp
//	Entity only           -> the entity's latest value in the block
type Key struct {
	Timestamp inter.Timestamp
	Entity    inter.EntityID
	Alias     []byte
}

// Fact is a state change as seen by the context.
type Fact struct {
	Entity    inter.EntityID
	Timestamp inter.Timestamp
	Value     inter.StateValue
	Deleted   bool
}

type (
	tsKey struct {
		cat Category
		ts  inter.Timestamp
	}
	tsEntityKey struct {
		cat    Category
		ts     inter.Timestamp
		entity inter.EntityID
	}
	entityKey struct {
		cat    Category
		entity inter.EntityID
	}
	aliasKey struct {
		cat   Category
		alias string
	}
)

// StateChangeContext answers which entities a block created or updated. It
// is filled while the block is read and frozen before records are built;
// after that it is safe for concurrent readers.
type StateChangeContext struct {
	first      map[tsKey]Fact
	byTsEntity map[tsEntityKey]Fact
	latest     map[entityKey]Fact
	aliases    map[aliasKey]Fact
	frozen     bool
}

func newStateChangeContext() *StateChangeContext {
	return &StateChangeContext{
		first:      make(map[tsKey]Fact),
		byTsEntity: make(map[tsEntityKey]Fact),
		latest:     make(map[entityKey]Fact),
		aliases:    make(map[aliasKey]Fact),
	}
}

// NewStateChangeContext builds a frozen context from batches.
func NewStateChangeContext(batches ...*inter.StateChanges) *StateChangeContext {
	ctx := newStateChangeContext()
	for _, b := range batches {
		ctx.add(b)
	}
	ctx.freeze()
	return ctx
}

func stateCategory(id inter.StateID) (Category, bool) {
	switch id {
	case inter.StateAccounts, inter.StateAliases:
		return CategoryAccount, true
	case inter.StateContracts:
		return CategoryContract, true
	case inter.StateFiles:
		return CategoryFile, true
	case inter.StateNodes:
		return CategoryNode, true
	case inter.StateTopics:
		return CategoryTopic, true
	case inter.StateTokens:
		return CategoryToken, true
	case inter.StateNfts:
		return CategoryNft, true
	case inter.StateSchedules:
		return CategorySchedule, true
	}
	return 0, false
}

func (c *StateChangeContext) add(batch *inter.StateChanges) {
	if c.frozen {
		panic("blockstream: state change context is frozen")
	}
	ts := batch.ConsensusTimestamp
	for _, change := range batch.Changes {
		cat, ok := stateCategory(change.StateID)
		if !ok {
			continue
		}
		entity := change.Value.Entity
		if entity.IsZero() {
			entity = change.Key.Entity
		}
		fact := Fact{
			Entity:    entity,
			Timestamp: ts,
			Value:     change.Value,
			Deleted:   change.Op == inter.OpMapDelete || change.Value.Deleted,
		}

		if change.StateID == inter.StateAliases {
			// alias -> account mapping only
			if len(change.Key.Alias) > 0 {
				c.aliases[aliasKey{CategoryAccount, string(change.Key.Alias)}] = fact
			}
			continue
		}

		if _, ok := c.first[tsKey{cat, ts}]; !ok {
			c.first[tsKey{cat, ts}] = fact
		}
		c.byTsEntity[tsEntityKey{cat, ts, entity}] = fact
		c.latest[entityKey{cat, entity}] = fact

		if len(change.Value.Alias) > 0 {
			c.aliases[aliasKey{cat, string(change.Value.Alias)}] = fact
		}
		if len(change.Value.EvmAddress) > 0 {
			aliasCat := cat
			if cat == CategoryContract {
				aliasCat = CategoryContractByEvmAddress
			}
			c.aliases[aliasKey{aliasCat, string(change.Value.EvmAddress)}] = fact
		}
	}
}

func (c *StateChangeContext) freeze() {
	c.frozen = true
}

// Lookup returns the fact selected by key.
func (c *StateChangeContext) Lookup(cat Category, key Key) (Fact, bool) {
	if c == nil {
		return Fact{}, false
	}
	var (
		fact Fact
		ok   bool
	)
	switch {
	case len(key.Alias) > 0:
		fact, ok = c.aliases[aliasKey{cat, string(key.Alias)}]
	case !key.Timestamp.IsZero() && !key.Entity.IsZero():
		fact, ok = c.byTsEntity[tsEntityKey{cat, key.Timestamp, key.Entity}]
	case !key.Timestamp.IsZero():
		fact, ok = c.first[tsKey{cat, key.Timestamp}]
	case !key.Entity.IsZero():
		fact, ok = c.latest[entityKey{cat, key.Entity}]
	}
	return fact, ok
}

// Len returns the number of distinct entities seen.
func (c *StateChangeContext) Len() int {
	if c == nil {
		return 0
	}
	return len(c.latest)
}
