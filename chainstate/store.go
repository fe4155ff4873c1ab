package chainstate

import (
	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

// ErrNoState is returned when nothing was stored yet.
var ErrNoState = errors.New("no chain state")

// Store persists chain positions.
type Store interface {
	// Tip returns the latest state, ErrNoState when empty.
	Tip() (*BlockState, error)
	// Block returns the state stored for a block number.
	Block(number idx.Block) (*BlockState, error)
	// Commit stores the state and makes it the tip.
	Commit(bs BlockState) error
	Close() error
}

var (
	tipKey      = []byte("tip")
	blockPrefix = []byte("b")
)

func blockKey(n idx.Block) []byte {
	return append(append([]byte(nil), blockPrefix...), bigendian.Uint64ToBytes(uint64(n))...)
}

// LevelStore is a Store on goleveldb.
type LevelStore struct {
	db *leveldb.DB
}

// OpenLevelStore opens or creates a store in dir.
func OpenLevelStore(dir string) (*LevelStore, error) {
	db, err := leveldb.OpenFile(dir, &opt.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "open chain state %s", dir)
	}
	return &LevelStore{db: db}, nil
}

// NewMemoryStore returns a LevelStore kept in memory.
func NewMemoryStore() *LevelStore {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		// memory storage can't fail to open
		panic(err)
	}
	return &LevelStore{db: db}
}

func (s *LevelStore) get(key []byte) (*BlockState, error) {
	raw, err := s.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrNoState
	}
	if err != nil {
		return nil, err
	}
	bs := new(BlockState)
	if err := bs.UnmarshalBinary(raw); err != nil {
		return nil, errors.Wrap(err, "decode chain state")
	}
	return bs, nil
}

// Tip implements Store.
func (s *LevelStore) Tip() (*BlockState, error) {
	return s.get(tipKey)
}

// Block implements Store.
func (s *LevelStore) Block(number idx.Block) (*BlockState, error) {
	return s.get(blockKey(number))
}

// Commit implements Store. The block entry and the tip are written in one
// batch.
func (s *LevelStore) Commit(bs BlockState) error {
	raw, err := bs.MarshalBinary()
	if err != nil {
		return err
	}
	batch := new(leveldb.Batch)
	batch.Put(blockKey(bs.Number), raw)
	batch.Put(tipKey, raw)
	return s.db.Write(batch, &opt.WriteOptions{Sync: true})
}

// Close implements Store.
func (s *LevelStore) Close() error {
	return s.db.Close()
}
