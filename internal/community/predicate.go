// Package community implements the pluggable admissibility predicate the
// projector consults when registering a post (spec.md §4.G). Full
// community-rule semantics are out of scope; this package provides the
// plug point plus a permissive default grounded on a single internal
// banned-community table.
package community

import (
	"context"

	"github.com/hiveio/hive-indexer/internal/model"
)

// Predicate decides whether a post is admissible under communityAccount.
// Implementations must be pure, fast, and side-effect-free — the projector
// calls it inline inside a block transaction (spec.md §4.D step 4, §4.G).
type Predicate interface {
	IsValid(ctx context.Context, communityAccount string, op model.CommentOp) bool
}

// rulesStore is the narrow slice of internal/store.Gateway/Tx this package
// depends on, so community does not import store's concrete types and
// create an import cycle with projector.
type rulesStore interface {
	IsCommunityBanned(ctx context.Context, community string) (bool, error)
}

// DefaultPredicate is permissive: a post is valid unless its community
// account has been explicitly marked banned by a prior
// com.steemit.community op (spec.md §4.D step 6).
type DefaultPredicate struct {
	rules rulesStore
}

// NewDefaultPredicate builds a DefaultPredicate backed by rules, which may
// be an *internal/store.Gateway or *internal/store.Tx.
func NewDefaultPredicate(rules rulesStore) *DefaultPredicate {
	return &DefaultPredicate{rules: rules}
}

var _ Predicate = (*DefaultPredicate)(nil)

// IsValid reports true unless communityAccount is on record as banned. A
// lookup failure (rules store unreachable) is treated as not-banned, since
// the predicate must never fail the surrounding block (spec.md §4.D step 4:
// "does NOT prevent insertion").
func (p *DefaultPredicate) IsValid(ctx context.Context, communityAccount string, op model.CommentOp) bool {
	if p.rules == nil {
		return true
	}
	banned, err := p.rules.IsCommunityBanned(ctx, communityAccount)
	if err != nil {
		return true
	}
	return !banned
}
