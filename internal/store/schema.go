package store

import (
	"context"

	"github.com/hiveio/hive-indexer/pkg/utils"
)

// schemaDDL is the logical schema from spec.md §6, plus the two additive
// columns from SPEC_FULL.md §3/§6 (hive_posts.root_id, hive_blocks.op_count)
// and indexes on the columns the cache maintainer and store gateway query
// by. Issued with CREATE TABLE/INDEX IF NOT EXISTS: this is bootstrap, not
// a migration tool (out of scope per spec.md §1).
const schemaDDL = `
CREATE TABLE IF NOT EXISTS hive_blocks (
	num        INTEGER PRIMARY KEY,
	hash       TEXT NOT NULL,
	prev       TEXT NOT NULL,
	txs        INTEGER NOT NULL DEFAULT 0,
	op_count   INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS hive_accounts (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS hive_posts (
	id         BIGSERIAL PRIMARY KEY,
	author     TEXT NOT NULL,
	permlink   TEXT NOT NULL,
	parent_id  BIGINT,
	root_id    BIGINT NOT NULL,
	category   TEXT NOT NULL,
	community  TEXT NOT NULL,
	depth      INTEGER NOT NULL DEFAULT 0,
	is_valid   BOOLEAN NOT NULL DEFAULT TRUE,
	is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	UNIQUE (author, permlink)
);
CREATE INDEX IF NOT EXISTS hive_posts_parent_id_idx ON hive_posts (parent_id);
CREATE INDEX IF NOT EXISTS hive_posts_is_deleted_idx ON hive_posts (is_deleted);

CREATE TABLE IF NOT EXISTS hive_follows (
	follower   TEXT NOT NULL,
	following  TEXT NOT NULL,
	state      SMALLINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (follower, following)
);

CREATE TABLE IF NOT EXISTS hive_reblogs (
	account    TEXT NOT NULL,
	post_id    BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (account, post_id)
);

CREATE TABLE IF NOT EXISTS hive_feed_cache (
	account    TEXT NOT NULL,
	post_id    BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (account, post_id)
);
CREATE INDEX IF NOT EXISTS hive_feed_cache_account_created_idx ON hive_feed_cache (account, created_at);

CREATE TABLE IF NOT EXISTS hive_posts_cache (
	post_id          BIGINT PRIMARY KEY,
	author           TEXT NOT NULL,
	permlink         TEXT NOT NULL,
	pending_payout   DOUBLE PRECISION NOT NULL DEFAULT 0,
	total_payout     DOUBLE PRECISION NOT NULL DEFAULT 0,
	is_paidout       BOOLEAN NOT NULL DEFAULT FALSE,
	refreshed_at     TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS hive_community_rules (
	community  TEXT PRIMARY KEY,
	banned     BOOLEAN NOT NULL DEFAULT FALSE,
	updated_at TIMESTAMPTZ NOT NULL
);
`

// Init creates the schema if it doesn't already exist (spec.md §4.F step 1).
func (g *Gateway) Init(ctx context.Context) error {
	_, err := g.pool.Exec(ctx, schemaDDL)
	return utils.Wrap(err, "init schema")
}
