package model

import "time"

// Post is keyed by (Author, Permlink); ID is a stable numeric surrogate used
// as a foreign key by follows, reblogs, and the feed/post caches.
type Post struct {
	ID       int64
	Author   string
	Permlink string

	// ParentID is nil for a root post (depth 0).
	ParentID *int64
	// RootID denormalizes the depth-0 ancestor so the cache maintainer and
	// store gateway don't need to walk ParentID repeatedly; for a root post
	// RootID equals ID.
	RootID int64

	Depth     int
	Category  string
	Community string

	IsValid   bool
	IsDeleted bool
	CreatedAt time.Time
}

// IsRoot reports whether p is a top-level post.
func (p *Post) IsRoot() bool {
	return p.ParentID == nil
}
