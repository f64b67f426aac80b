package projector

import (
	"context"
	"time"

	"github.com/hiveio/hive-indexer/internal/model"
	"github.com/hiveio/hive-indexer/internal/store"
)

// applyCustomJSONs processes follow, reblog, and community custom_json ops
// (spec.md §4.D step 6). Every other id is ignored.
func (p *Projector) applyCustomJSONs(ctx context.Context, tx *store.Tx, blockNum uint32, ops []model.CustomJSONOp, ts time.Time) error {
	for _, cj := range ops {
		if cj.ID != "follow" && cj.ID != "com.steemit.community" {
			continue
		}
		if len(cj.RequiredPostingAuths) != 1 {
			p.logger.WithField("id", cj.ID).Warn("custom_json requires exactly one posting auth, skipping")
			continue
		}
		acting := cj.RequiredPostingAuths[0]

		if cj.ID == "com.steemit.community" {
			if blockNum <= communityOpCutoff {
				continue
			}
			if err := p.applyCommunityOp(ctx, tx, cj.JSON, ts); err != nil {
				return err
			}
			continue
		}

		cmd, data, ok := followCommand(cj.JSON, blockNum)
		if !ok {
			continue
		}
		switch cmd {
		case "follow":
			if err := p.applyFollow(ctx, tx, acting, data, ts); err != nil {
				return err
			}
		case "reblog":
			if err := p.applyReblog(ctx, tx, acting, data, ts); err != nil {
				return err
			}
		}
	}
	return nil
}

// followCommand extracts the (cmd, data) pair from a follow custom_json
// body, applying the pre-legacyFollowCutoff wrapping rule (spec.md §4.D
// step 6). An array body must be exactly [cmd, data]; any other length is
// skipped rather than guessed at.
func followCommand(body model.JSON, blockNum uint32) (string, model.JSON, bool) {
	if body.IsArray() {
		if body.Len() != 2 {
			return "", model.JSON{}, false
		}
		return body.String("0"), body.Index(1), true
	}
	if body.IsObject() && blockNum < legacyFollowCutoff {
		return "follow", body, true
	}
	return "", model.JSON{}, false
}

// applyFollow upserts (follower, following) to the requested state, after
// checking the account regex and that follower matches the acting account
// (spec.md §4.D "Follow op semantics").
func (p *Projector) applyFollow(ctx context.Context, tx *store.Tx, acting string, data model.JSON, ts time.Time) error {
	what := "clear"
	if items := data.Array("what"); len(items) > 0 {
		what = items[0].String()
	}
	state, ok := model.ParseFollowState(what)
	if !ok {
		return nil
	}

	follower := data.String("follower")
	following := data.String("following")
	if !model.ValidAccountName(follower) || !model.ValidAccountName(following) {
		return nil
	}
	if follower != acting {
		// Impersonation: dropped silently (spec.md §7).
		return nil
	}
	return tx.UpsertFollow(ctx, follower, following, state, ts)
}

// applyReblog inserts or removes a reblog and its mirrored feed-cache row.
// Only root posts may be reblogged (spec.md §4.D "Follow op semantics").
func (p *Projector) applyReblog(ctx context.Context, tx *store.Tx, acting string, data model.JSON, ts time.Time) error {
	account := data.String("account")
	author := data.String("author")
	permlink := data.String("permlink")
	if account != acting {
		return nil
	}
	if !model.ValidAccountName(account) || !model.ValidAccountName(author) {
		return nil
	}

	post, err := tx.GetPost(ctx, author, permlink)
	if err != nil {
		return err
	}
	if post == nil || post.Depth != 0 || post.IsDeleted {
		return nil
	}

	if data.String("delete") == "delete" {
		if err := tx.DeleteReblog(ctx, account, post.ID); err != nil {
			return err
		}
		return tx.DeleteFeedCache(ctx, account, post.ID)
	}
	if err := tx.InsertReblog(ctx, account, post.ID, ts); err != nil {
		return err
	}
	return tx.InsertFeedCache(ctx, account, post.ID, ts)
}

// applyCommunityOp records a minimal ban/unban verdict for the named
// community. Full community governance is out of scope (spec.md §1, §4.G);
// this is the concrete seam the pluggable predicate reads from.
func (p *Projector) applyCommunityOp(ctx context.Context, tx *store.Tx, data model.JSON, ts time.Time) error {
	communityName := data.String("community")
	if communityName == "" {
		return nil
	}
	action := data.String("action")
	banned := action == "banCommunity" || action == "mute"
	return tx.UpsertCommunityRule(ctx, communityName, banned, ts)
}
