package blockstream

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-ledger-mirror/inter"
)

func TestStateChangeContext_Lookup(t *testing.T) {
	evm := []byte{0xde, 0xad, 0xbe, 0xef}
	ctx := NewStateChangeContext(
		&inter.StateChanges{ConsensusTimestamp: 10, Changes: []inter.StateChange{
			{StateID: inter.StateTopics, Op: inter.OpMapUpdate, Value: inter.StateValue{Entity: inter.NewEntityID(700), SequenceNumber: 1}},
			{StateID: inter.StateTopics, Op: inter.OpMapUpdate, Value: inter.StateValue{Entity: inter.NewEntityID(701)}},
			{StateID: inter.StateContracts, Op: inter.OpMapUpdate, Key: inter.StateKey{Entity: inter.NewEntityID(900)}, Value: inter.StateValue{EvmAddress: evm}},
			{StateID: inter.StateAliases, Op: inter.OpMapUpdate, Key: inter.StateKey{Alias: []byte{1, 2}}, Value: inter.StateValue{Entity: inter.NewEntityID(1500)}},
			{StateID: inter.StateBlockInfo, Op: inter.OpSingletonUpdate},
		}},
		&inter.StateChanges{ConsensusTimestamp: 20, Changes: []inter.StateChange{
			{StateID: inter.StateTopics, Op: inter.OpMapUpdate, Value: inter.StateValue{Entity: inter.NewEntityID(700), SequenceNumber: 2}},
			{StateID: inter.StateTokens, Op: inter.OpMapDelete, Key: inter.StateKey{Entity: inter.NewEntityID(500)}},
		}},
	)

	tests := []struct {
		name   string
		cat    Category
		key    Key
		found  bool
		entity inter.EntityID
		check  func(t *testing.T, f Fact)
	}{
		{"first at timestamp", CategoryTopic, Key{Timestamp: 10}, true, inter.NewEntityID(700), nil},
		{"entity at timestamp", CategoryTopic, Key{Timestamp: 10, Entity: inter.NewEntityID(701)}, true, inter.NewEntityID(701), nil},
		{"latest value", CategoryTopic, Key{Entity: inter.NewEntityID(700)}, true, inter.NewEntityID(700), func(t *testing.T, f Fact) {
			require.Equal(t, uint64(2), f.Value.SequenceNumber)
			require.Equal(t, inter.Timestamp(20), f.Timestamp)
		}},
		{"value at older timestamp", CategoryTopic, Key{Timestamp: 10, Entity: inter.NewEntityID(700)}, true, inter.NewEntityID(700), func(t *testing.T, f Fact) {
			require.Equal(t, uint64(1), f.Value.SequenceNumber)
		}},
		{"contract by evm address", CategoryContractByEvmAddress, Key{Alias: evm}, true, inter.NewEntityID(900), nil},
		{"account by alias", CategoryAccount, Key{Alias: []byte{1, 2}}, true, inter.NewEntityID(1500), nil},
		{"deleted token", CategoryToken, Key{Entity: inter.NewEntityID(500)}, true, inter.NewEntityID(500), func(t *testing.T, f Fact) {
			require.True(t, f.Deleted)
		}},
		{"wrong category", CategoryFile, Key{Timestamp: 10}, false, inter.EntityID{}, nil},
		{"unknown timestamp", CategoryTopic, Key{Timestamp: 11}, false, inter.EntityID{}, nil},
		{"empty key", CategoryTopic, Key{}, false, inter.EntityID{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fact, ok := ctx.Lookup(tt.cat, tt.key)
			require.Equal(t, tt.found, ok)
			require.Equal(t, tt.entity, fact.Entity)
			if tt.check != nil {
				tt.check(t, fact)
			}
		})
	}
	require.Equal(t, 4, ctx.Len())
}

func TestStateChangeContext_Frozen(t *testing.T) {
	ctx := NewStateChangeContext()
	require.Panics(t, func() {
		ctx.add(&inter.StateChanges{ConsensusTimestamp: 1})
	})

	var none *StateChangeContext
	_, ok := none.Lookup(CategoryTopic, Key{Timestamp: 1})
	require.False(t, ok)
}
