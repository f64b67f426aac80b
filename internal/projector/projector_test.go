package projector

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"

	"github.com/hiveio/hive-indexer/internal/model"
	"github.com/hiveio/hive-indexer/internal/store"
)

func newMockProjector(t *testing.T) (*Projector, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("new mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	mock.MatchExpectationsInOrder(false)
	return New(store.New(mock, nil), nil), mock
}

func rootCommentBlock(blockID string, ts time.Time) *model.Block {
	return &model.Block{
		BlockID:   blockID,
		Previous:  "00000000",
		Timestamp: ts,
		Transactions: []model.Transaction{{Operations: []model.Operation{
			{Type: "comment", Body: `{"author":"alice","permlink":"hello","parent_author":"","parent_permlink":"life","json_metadata":"{}"}`},
		}}},
	}
}

// TestProcessBlockRootPost covers spec scenario S1: a fresh root post is
// inserted, gets root_id set to its own id, and a feed-cache row appears
// under the author.
func TestProcessBlockRootPost(t *testing.T) {
	p, mock := newMockProjector(t)
	ts := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	b := rootCommentBlock("00000001aabbccdd", ts)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO hive_blocks").
		WithArgs(uint32(1), b.BlockID, b.Previous, 1, 1, ts).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	mock.ExpectQuery("SELECT id, author, permlink, parent_id, root_id, depth, category, community, is_valid, is_deleted, created_at FROM hive_posts").
		WithArgs("alice", "hello").
		WillReturnError(pgx.ErrNoRows)

	mock.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM hive_accounts WHERE name = \\$1\\)").
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	mock.ExpectQuery("SELECT banned FROM hive_community_rules").
		WithArgs("alice").
		WillReturnError(pgx.ErrNoRows)

	mock.ExpectQuery("INSERT INTO hive_posts").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))

	mock.ExpectExec("UPDATE hive_posts SET root_id").
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	mock.ExpectExec("INSERT INTO hive_feed_cache").
		WithArgs("alice", int64(1), ts).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	mock.ExpectCommit()

	dirty, err := p.ProcessBlock(context.Background(), b)
	if err != nil {
		t.Fatalf("process block: %v", err)
	}
	if _, ok := dirty[model.PostKey{Author: "alice", Permlink: "hello"}]; !ok {
		t.Fatalf("expected alice/hello to be dirty")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// TestProcessBlockEditSkipsMutation covers scenario S3: a repeated comment
// op for an existing non-deleted post must not touch hive_posts.
func TestProcessBlockEditSkipsMutation(t *testing.T) {
	p, mock := newMockProjector(t)
	ts := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	b := rootCommentBlock("00000002aabbccdd", ts)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO hive_blocks").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	mock.ExpectQuery("SELECT id, author, permlink, parent_id, root_id, depth, category, community, is_valid, is_deleted, created_at FROM hive_posts").
		WithArgs("alice", "hello").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "author", "permlink", "parent_id", "root_id", "depth", "category", "community", "is_valid", "is_deleted", "created_at",
		}).AddRow(int64(1), "alice", "hello", nil, int64(1), 0, "life", "alice", true, false, ts))

	mock.ExpectCommit()

	dirty, err := p.ProcessBlock(context.Background(), b)
	if err != nil {
		t.Fatalf("process block: %v", err)
	}
	if dirty.Len() != 1 {
		t.Fatalf("expected dirty set of 1, got %d", dirty.Len())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
