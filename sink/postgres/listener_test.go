package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-ledger-mirror/blockstream/merkle"
	"github.com/rony4d/go-ledger-mirror/chainstate"
	"github.com/rony4d/go-ledger-mirror/inter"
	"github.com/rony4d/go-ledger-mirror/inter/itr"
)

func newMock(t *testing.T) (*Listener, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return New(db, nil), mock
}

func testItem(ts inter.Timestamp, parent inter.Timestamp) *itr.RecordItem {
	item := itr.NewRecordItem(5, 0, inter.TxCryptoTransfer)
	item.Record.ConsensusTimestamp = ts
	item.Record.ParentConsensusTimestamp = parent
	item.Record.Receipt.Status = inter.StatusSuccess
	item.Record.TransactionID.Payer = inter.NewEntityID(1001)
	item.Record.Memo = "memo"
	item.Record.TransactionFee = 7
	item.Record.TransactionHash = []byte{1, 2, 3}
	return item
}

func testSummary() *chainstate.BlockSummary {
	return &chainstate.BlockSummary{
		Number:         5,
		Name:           "5.blk",
		Hash:           merkle.Leaf([]byte{5}),
		PreviousHash:   merkle.Leaf([]byte{4}),
		ConsensusStart: 100,
		ConsensusEnd:   101,
		NodeID:         3,
		Count:          2,
	}
}

func TestListener_Migrate(t *testing.T) {
	l, mock := newMock(t)
	for range schema {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	require.NoError(t, l.Migrate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListener_OnBlock(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	l, mock := newMock(t)
	s := testSummary()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO transaction")).
		WithArgs(int64(100), int64(5), 0, int16(inter.TxCryptoTransfer), int16(inter.StatusSuccess),
			"0.0.1001", "memo", int64(7), []byte{1, 2, 3}, sql.NullInt64{}, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO transaction")).
		WithArgs(int64(101), int64(5), 0, int16(inter.TxCryptoTransfer), int16(inter.StatusSuccess),
			"0.0.1001", "memo", int64(7), []byte{1, 2, 3}, sql.NullInt64{Int64: 100, Valid: true}, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO record_file")).
		WithArgs(int64(5), "5.blk", s.Hash.Bytes(), s.PreviousHash.Bytes(), int64(100), int64(101), int64(3), int64(2), int64(0)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(l.OnRecord(ctx, testItem(100, 0)))
	require.NoError(l.OnRecord(ctx, testItem(101, 100)))
	require.NoError(l.OnBlock(ctx, s))
	require.Empty(l.pending)
	require.NoError(mock.ExpectationsWereMet())
}

func TestListener_OnBlockRollback(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	l, mock := newMock(t)
	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO transaction")).WillReturnError(boom)
	mock.ExpectRollback()

	require.NoError(l.OnRecord(ctx, testItem(100, 0)))
	err := l.OnBlock(ctx, testSummary())
	require.ErrorIs(err, boom)
	require.Empty(l.pending)
	require.NoError(mock.ExpectationsWereMet())
}

func TestListener_LatestBlock(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	l, mock := newMock(t)
	s := testSummary()
	mock.ExpectQuery(regexp.QuoteMeta(selectLatest)).
		WillReturnRows(sqlmock.NewRows([]string{"number", "hash", "previous_hash", "consensus_end", "count"}).
			AddRow(int64(5), s.Hash.Bytes(), s.PreviousHash.Bytes(), int64(101), int64(2)))
	bs, err := l.LatestBlock(ctx)
	require.NoError(err)
	require.Equal(s.State(), *bs)

	mock.ExpectQuery(regexp.QuoteMeta(selectLatest)).
		WillReturnRows(sqlmock.NewRows([]string{"number", "hash", "previous_hash", "consensus_end", "count"}))
	_, err = l.LatestBlock(ctx)
	require.ErrorIs(err, chainstate.ErrNoState)

	mock.ExpectClose()
	require.NoError(l.Close())
	require.NoError(mock.ExpectationsWereMet())
}
