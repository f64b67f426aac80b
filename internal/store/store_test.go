package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"

	"github.com/hiveio/hive-indexer/internal/model"
)

func newMockGateway(t *testing.T) (*Gateway, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("new mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return New(mock, nil), mock
}

func TestDBLastBlockEmpty(t *testing.T) {
	g, mock := newMockGateway(t)
	mock.ExpectQuery("SELECT COALESCE\\(MAX\\(num\\), 0\\) FROM hive_blocks").
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(uint32(0)))

	got, err := g.DBLastBlock(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetBlockAbsentReturnsNilNil(t *testing.T) {
	g, mock := newMockGateway(t)
	mock.ExpectQuery("SELECT num, hash, prev, txs, op_count, created_at FROM hive_blocks").
		WithArgs(uint32(42)).
		WillReturnError(pgx.ErrNoRows)

	got, err := g.GetBlock(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil block, got %+v", got)
	}
}

func TestInsertBlockThenGetBlockRoundTrip(t *testing.T) {
	g, mock := newMockGateway(t)
	ts := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO hive_blocks").
		WithArgs(uint32(1), "aabbccdd", "00000000", 1, 1, ts).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	tx, err := g.Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := tx.InsertBlock(context.Background(), &model.BlockRecord{
		Num: 1, Hash: "aabbccdd", PrevHash: "00000000", TxCount: 1, OpCount: 1, Timestamp: ts,
	}); err != nil {
		t.Fatalf("insert block: %v", err)
	}
	if err := tx.Commit(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}

	mock.ExpectQuery("SELECT num, hash, prev, txs, op_count, created_at FROM hive_blocks").
		WithArgs(uint32(1)).
		WillReturnRows(pgxmock.NewRows([]string{"num", "hash", "prev", "txs", "op_count", "created_at"}).
			AddRow(uint32(1), "aabbccdd", "00000000", 1, 1, ts))

	br, err := g.GetBlock(context.Background(), 1)
	if err != nil {
		t.Fatalf("get block: %v", err)
	}
	if br == nil || br.Hash != "aabbccdd" {
		t.Fatalf("unexpected block record: %+v", br)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
