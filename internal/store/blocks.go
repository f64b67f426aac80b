package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/hiveio/hive-indexer/internal/model"
	"github.com/hiveio/hive-indexer/pkg/utils"
)

// InsertBlock records br, failing on a duplicate num — block application
// must be idempotent per block number (spec.md §5, §8 invariant 5), so a
// duplicate insert inside the same replay is a programming error rather
// than something to silently ignore.
func (t *Tx) InsertBlock(ctx context.Context, br *model.BlockRecord) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO hive_blocks (num, hash, prev, txs, op_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, br.Num, br.Hash, br.PrevHash, br.TxCount, br.OpCount, br.Timestamp)
	return utils.Wrap(err, "insert block")
}

// GetBlock looks up a persisted block row by number. Returns (nil, nil) if
// absent.
func (g *Gateway) GetBlock(ctx context.Context, num uint32) (*model.BlockRecord, error) {
	var br model.BlockRecord
	err := g.pool.QueryRow(ctx, `
		SELECT num, hash, prev, txs, op_count, created_at FROM hive_blocks WHERE num = $1
	`, num).Scan(&br.Num, &br.Hash, &br.PrevHash, &br.TxCount, &br.OpCount, &br.Timestamp)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, utils.Wrap(err, "get block")
	}
	return &br, nil
}
