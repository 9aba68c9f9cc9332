package types

import (
	"time"
)

// UserSignals holds the per-user affinity signals used to bias ranking.
// One row per user, created lazily on first read and updated by the
// follow resync, visit tracking, and preference refresh paths.
type UserSignals struct {
	UserID uint64 `bun:",pk,notnull" json:"userId"`
	// Authoritative follow list, resynced from the social graph on every read.
	FollowedUserIDs []uint64 `bun:"followed_user_ids,array" json:"followedUserIds"`
	// Most-visited authors first, derived from the trailing 30-day visit log.
	FrequentlyVisitedUserIDs []uint64 `bun:"frequently_visited_user_ids,array" json:"frequentlyVisitedUserIds"`
	// Lowercased, weight-ordered preference terms from engagement history.
	PreferredHashtags []string `bun:"preferred_hashtags,array" json:"preferredHashtags"`
	PreferredKeywords []string `bun:"preferred_keywords,array" json:"preferredKeywords"`
	// Time of the last preference recomputation. The zero value marks a row
	// whose preferences have never been computed.
	UpdatedAt time.Time `bun:"updated_at" json:"updatedAt"`
}

// ProfileVisit is an append-only record of one user viewing another's profile.
// Rows are never mutated or deleted; visit frequency is derived from
// rolling-window counts. Self-visits are never recorded.
type ProfileVisit struct {
	ID        int64     `bun:",pk,autoincrement" json:"id"`
	VisitorID uint64    `bun:",notnull"          json:"visitorId"`
	VisitedID uint64    `bun:",notnull"          json:"visitedId"`
	VisitedAt time.Time `bun:",notnull"          json:"visitedAt"`
}

// TermCount is a scan target for weighted tag/keyword aggregations.
type TermCount struct {
	Term  string `bun:"term"  json:"term"`
	Count int64  `bun:"count" json:"count"`
}
