// Package postgres stores imported blocks and their records in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	// registers the "pgx" database/sql driver
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-ledger-mirror/blockstream/merkle"
	"github.com/rony4d/go-ledger-mirror/chainstate"
	"github.com/rony4d/go-ledger-mirror/inter"
	"github.com/rony4d/go-ledger-mirror/inter/itr"
)

// DriverName is the database/sql driver used by Open.
const DriverName = "pgx"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS record_file (
	number          BIGINT PRIMARY KEY,
	name            TEXT NOT NULL,
	hash            BYTEA NOT NULL,
	previous_hash   BYTEA NOT NULL,
	consensus_start BIGINT NOT NULL,
	consensus_end   BIGINT NOT NULL,
	node_id         BIGINT NOT NULL,
	count           BIGINT NOT NULL,
	gas_used        BIGINT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS transaction (
	consensus_timestamp        BIGINT PRIMARY KEY,
	block_number               BIGINT NOT NULL,
	index                      INT NOT NULL,
	type                       SMALLINT NOT NULL,
	result                     SMALLINT NOT NULL,
	payer_account_id           TEXT NOT NULL,
	memo                       TEXT NOT NULL,
	charged_tx_fee             BIGINT NOT NULL,
	transaction_hash           BYTEA NOT NULL,
	parent_consensus_timestamp BIGINT,
	record_bytes               BYTEA NOT NULL
)`,
}

const (
	insertRecord = `INSERT INTO transaction (consensus_timestamp, block_number, index, type, result, payer_account_id, memo, charged_tx_fee, transaction_hash, parent_consensus_timestamp, record_bytes) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) ON CONFLICT (consensus_timestamp) DO NOTHING`
	insertBlock  = `INSERT INTO record_file (number, name, hash, previous_hash, consensus_start, consensus_end, node_id, count, gas_used) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) ON CONFLICT (number) DO NOTHING`
	selectLatest = `SELECT number, hash, previous_hash, consensus_end, count FROM record_file ORDER BY number DESC LIMIT 1`
)

// Listener writes every block in one database transaction. Records are held
// until OnBlock.
type Listener struct {
	db      *sql.DB
	log     logrus.FieldLogger
	pending []*itr.RecordItem
}

// Open connects to dsn with the pgx driver.
func Open(dsn string, log logrus.FieldLogger) (*Listener, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	return New(db, log), nil
}

// New wraps an open database.
func New(db *sql.DB, log logrus.FieldLogger) *Listener {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Listener{db: db, log: log}
}

// Migrate creates the tables when missing.
func (l *Listener) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := l.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "migrate")
		}
	}
	return nil
}

// OnRecord implements sink.Listener.
func (l *Listener) OnRecord(_ context.Context, item *itr.RecordItem) error {
	l.pending = append(l.pending, item)
	return nil
}

// OnBlock implements sink.Listener.
func (l *Listener) OnBlock(ctx context.Context, s *chainstate.BlockSummary) (err error) {
	items := l.pending
	l.pending = nil

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				l.log.WithError(rbErr).Warn("Rollback failed")
			}
		}
	}()

	for _, item := range items {
		if err = insertRecordRow(ctx, tx, item); err != nil {
			return errors.Wrapf(err, "insert record %s", item.ConsensusTimestamp())
		}
	}
	_, err = tx.ExecContext(ctx, insertBlock,
		int64(s.Number), s.Name, s.Hash.Bytes(), s.PreviousHash.Bytes(),
		int64(s.ConsensusStart), int64(s.ConsensusEnd), int64(s.NodeID), int64(s.Count), int64(s.GasUsed))
	if err != nil {
		return errors.Wrapf(err, "insert block %d", s.Number)
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit")
	}
	l.log.WithFields(logrus.Fields{"block": s.Number, "records": len(items)}).Debug("Stored block")
	return nil
}

func insertRecordRow(ctx context.Context, tx *sql.Tx, item *itr.RecordItem) error {
	raw, err := item.MarshalBinary()
	if err != nil {
		return err
	}
	rec := item.Record
	var parent sql.NullInt64
	if !rec.ParentConsensusTimestamp.IsZero() {
		parent = sql.NullInt64{Int64: int64(rec.ParentConsensusTimestamp), Valid: true}
	}
	_, err = tx.ExecContext(ctx, insertRecord,
		int64(rec.ConsensusTimestamp), int64(item.BlockNumber), item.Index,
		int16(item.TransactionType), int16(rec.Receipt.Status),
		rec.TransactionID.Payer.String(), rec.Memo, int64(rec.TransactionFee),
		rec.TransactionHash, parent, raw)
	return err
}

// LatestBlock returns the newest stored block as a chain position, or
// chainstate.ErrNoState for an empty database.
func (l *Listener) LatestBlock(ctx context.Context) (*chainstate.BlockState, error) {
	var (
		number, end, count int64
		hash, prev         []byte
	)
	err := l.db.QueryRowContext(ctx, selectLatest).Scan(&number, &hash, &prev, &end, &count)
	if err == sql.ErrNoRows {
		return nil, chainstate.ErrNoState
	}
	if err != nil {
		return nil, errors.Wrap(err, "latest block")
	}
	bs := &chainstate.BlockState{
		Number:       idx.Block(number),
		ConsensusEnd: inter.Timestamp(end),
		Records:      uint32(count),
	}
	var ok bool
	if bs.Hash, ok = merkle.BytesToHash(hash); !ok {
		return nil, errors.Errorf("stored hash of block %d has %d bytes", number, len(hash))
	}
	if bs.PreviousHash, ok = merkle.BytesToHash(prev); !ok {
		return nil, errors.Errorf("stored previous hash of block %d has %d bytes", number, len(prev))
	}
	return bs, nil
}

// Close closes the database.
func (l *Listener) Close() error {
	return l.db.Close()
}
