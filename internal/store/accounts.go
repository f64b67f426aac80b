package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hiveio/hive-indexer/internal/model"
	"github.com/hiveio/hive-indexer/pkg/utils"
)

// AccountExists reports whether name is already registered. Used outside a
// transaction by callers that only need to check existence (e.g. community
// fallback-to-author validation).
func (g *Gateway) AccountExists(ctx context.Context, name string) (bool, error) {
	return accountExists(ctx, g.pool, name)
}

// RegisterAccount inserts name with createdAt if it is not already present;
// a pre-existing row is left untouched (accounts are never deleted,
// spec.md §3).
func (t *Tx) RegisterAccount(ctx context.Context, name string, createdAt time.Time) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO hive_accounts (name, created_at) VALUES ($1, $2)
		ON CONFLICT (name) DO NOTHING
	`, name, createdAt)
	return utils.Wrap(err, "register account")
}

// AccountExists reports whether name is registered, as seen within tx.
func (t *Tx) AccountExists(ctx context.Context, name string) (bool, error) {
	return accountExists(ctx, t.tx, name)
}

func accountExists(ctx context.Context, q querier, name string) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM hive_accounts WHERE name = $1)`, name).Scan(&exists)
	if err != nil {
		return false, utils.Wrap(err, "account exists")
	}
	return exists, nil
}

// GetAccount looks up an account by name. Returns (nil, nil) if absent.
func (g *Gateway) GetAccount(ctx context.Context, name string) (*model.Account, error) {
	return getAccount(ctx, g.pool, name)
}

func getAccount(ctx context.Context, q querier, name string) (*model.Account, error) {
	var a model.Account
	err := q.QueryRow(ctx, `SELECT id, name, created_at FROM hive_accounts WHERE name = $1`, name).
		Scan(&a.ID, &a.Name, &a.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, utils.Wrap(err, "get account")
	}
	return &a, nil
}
