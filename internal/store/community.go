package store

import (
	"context"
	"time"

	"github.com/hiveio/hive-indexer/pkg/utils"
)

// UpsertCommunityRule records the banned verdict for community, as seeded
// by com.steemit.community custom_json ops (spec.md §4.D step 6, §4.G).
func (t *Tx) UpsertCommunityRule(ctx context.Context, community string, banned bool, ts time.Time) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO hive_community_rules (community, banned, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (community) DO UPDATE SET banned = EXCLUDED.banned, updated_at = EXCLUDED.updated_at
	`, community, banned, ts)
	return utils.Wrap(err, "upsert community rule")
}

// IsCommunityBanned reports whether community has been marked banned. An
// unknown community is not banned.
func (g *Gateway) IsCommunityBanned(ctx context.Context, community string) (bool, error) {
	var banned bool
	err := g.pool.QueryRow(ctx, `SELECT banned FROM hive_community_rules WHERE community = $1`, community).Scan(&banned)
	if err != nil {
		return false, nil
	}
	return banned, nil
}

// IsCommunityBanned reports whether community has been marked banned, as
// seen within tx (used by the projector mid-block).
func (t *Tx) IsCommunityBanned(ctx context.Context, community string) (bool, error) {
	var banned bool
	err := t.tx.QueryRow(ctx, `SELECT banned FROM hive_community_rules WHERE community = $1`, community).Scan(&banned)
	if err != nil {
		return false, nil
	}
	return banned, nil
}
