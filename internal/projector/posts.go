package projector

import (
	"context"
	"time"

	"github.com/hiveio/hive-indexer/internal/community"
	"github.com/hiveio/hive-indexer/internal/model"
	"github.com/hiveio/hive-indexer/internal/store"
)

// registerPosts applies every comment op: a first sighting inserts a new
// post row, a re-sighting of a non-deleted post is an edit (skipped — the
// dirty set already carries it for cache refresh), and a re-sighting of a
// deleted post reinstates it (spec.md §4.D step 4).
func (p *Projector) registerPosts(ctx context.Context, tx *store.Tx, predicate community.Predicate, comments []model.CommentOp, createdAt time.Time) error {
	for _, c := range comments {
		existing, err := tx.GetPost(ctx, c.Author, c.Permlink)
		if err != nil {
			return err
		}
		if existing != nil && !existing.IsDeleted {
			// Edit: hive_posts is not mutated, the dirty set already covers it.
			continue
		}

		var parentID *int64
		var parentRootID int64
		var depth int
		var category, communityName string

		if c.ParentAuthor == "" {
			depth = 0
			category = c.ParentPermlink
			communityName = c.JSONMetadata.String("community")
			if communityName == "" {
				communityName = c.Author
			}
		} else {
			parent, err := tx.GetPost(ctx, c.ParentAuthor, c.ParentPermlink)
			if err != nil {
				return err
			}
			if parent == nil {
				p.logger.WithFields(map[string]interface{}{
					"author": c.Author, "permlink": c.Permlink,
					"parent_author": c.ParentAuthor, "parent_permlink": c.ParentPermlink,
				}).Warn("comment references unknown parent, skipping")
				continue
			}
			parentID = &parent.ID
			parentRootID = parent.RootID
			depth = parent.Depth + 1
			category = parent.Category
			communityName = parent.Community
		}

		exists, err := tx.AccountExists(ctx, communityName)
		if err != nil {
			return err
		}
		if !exists {
			communityName = c.Author
		}
		isValid := predicate.IsValid(ctx, communityName, c)

		if existing != nil {
			// Reinstate: same id, stale feed-cache row removed first.
			rootID := parentRootID
			if parentID == nil {
				rootID = existing.ID
			}
			if err := tx.ReinstatePost(ctx, existing.ID, &model.Post{
				ParentID: parentID, RootID: rootID, Depth: depth,
				Category: category, Community: communityName, IsValid: isValid,
			}); err != nil {
				return err
			}
			if err := tx.DeleteFeedCacheForPost(ctx, existing.ID); err != nil {
				return err
			}
			if depth == 0 {
				if err := tx.InsertFeedCache(ctx, c.Author, existing.ID, createdAt); err != nil {
					return err
				}
			}
			continue
		}

		id, err := tx.InsertPost(ctx, &model.Post{
			Author: c.Author, Permlink: c.Permlink,
			ParentID: parentID, RootID: parentRootID, Depth: depth,
			Category: category, Community: communityName, IsValid: isValid,
			CreatedAt: createdAt,
		})
		if err != nil {
			return err
		}
		if parentID == nil {
			if err := tx.SetRootSelf(ctx, id); err != nil {
				return err
			}
		}
		if depth == 0 {
			if err := tx.InsertFeedCache(ctx, c.Author, id, createdAt); err != nil {
				return err
			}
		}
	}
	return nil
}

// deletePosts marks each referenced post deleted and removes its cache
// rows. A delete for an unknown or already-deleted post is a tolerated
// no-op (spec.md §4.D step 5).
func (p *Projector) deletePosts(ctx context.Context, tx *store.Tx, deletes []model.DeleteCommentOp) error {
	for _, d := range deletes {
		existing, err := tx.GetPost(ctx, d.Author, d.Permlink)
		if err != nil {
			return err
		}
		if existing == nil || existing.IsDeleted {
			continue
		}
		if err := tx.MarkPostDeleted(ctx, existing.ID); err != nil {
			return err
		}
		if err := tx.DeletePostCache(ctx, existing.ID); err != nil {
			return err
		}
		if err := tx.DeleteFeedCacheForPost(ctx, existing.ID); err != nil {
			return err
		}
	}
	return nil
}
