package recommend

import (
	"context"
	"time"

	"github.com/stylhelpr/styliq/internal/database/types"
)

// SocialGraph provides read access to follow, block, and mute relationships.
type SocialGraph interface {
	// FollowedIDs returns the ids of users the given user follows.
	FollowedIDs(ctx context.Context, userID uint64) ([]uint64, error)

	// BlockedIDs returns the ids of users the given user has blocked.
	BlockedIDs(ctx context.Context, userID uint64) ([]uint64, error)

	// MutedIDs returns the ids of users the given user has muted.
	MutedIDs(ctx context.Context, userID uint64) ([]uint64, error)
}

// PostSource provides bounded, filtered, newest-first read access to posts.
type PostSource interface {
	// CandidatesByAuthors returns the newest posts by any of the given authors.
	CandidatesByAuthors(ctx context.Context, authorIDs, excludeAuthors []uint64, limit int) ([]*types.Post, error)

	// CandidatesByHashtags returns the newest posts whose hashtags intersect the given tags.
	CandidatesByHashtags(ctx context.Context, tags []string, excludeAuthors []uint64, limit int) ([]*types.Post, error)

	// CandidatesByKeywords returns the newest posts whose keywords intersect the given keywords.
	CandidatesByKeywords(ctx context.Context, keywords []string, excludeAuthors []uint64, limit int) ([]*types.Post, error)

	// NewestCandidates returns the globally newest posts.
	NewestCandidates(ctx context.Context, excludeAuthors []uint64, limit int) ([]*types.Post, error)

	// GlobalTopHashtags returns the most-used hashtags since the cutoff.
	GlobalTopHashtags(ctx context.Context, since time.Time, limit int) ([]string, error)
}

// SignalRepository persists user signal rows and the profile visit log.
type SignalRepository interface {
	// GetRow returns the signal row for a user, or nil when none exists.
	GetRow(ctx context.Context, userID uint64) (*types.UserSignals, error)

	// UpsertFollowed persists a freshly resolved follow list.
	UpsertFollowed(ctx context.Context, userID uint64, followedIDs []uint64) error

	// UpsertFrequentlyVisited persists a recomputed frequent-visit list.
	UpsertFrequentlyVisited(ctx context.Context, userID uint64, visitedIDs []uint64) error

	// UpsertPreferences persists recomputed preferences with a fresh timestamp.
	UpsertPreferences(ctx context.Context, userID uint64, hashtags, keywords []string, updatedAt time.Time) error

	// InsertVisit appends a profile visit to the log.
	InsertVisit(ctx context.Context, visitorID, visitedID uint64, visitedAt time.Time) error

	// TopVisited returns the most-visited profile ids over the trailing window.
	TopVisited(ctx context.Context, visitorID uint64, since time.Time, limit int) ([]uint64, error)
}

// EngagementSource aggregates tag/keyword counts from like and save history.
type EngagementSource interface {
	LikedTagCounts(ctx context.Context, userID uint64, since time.Time) ([]types.TermCount, error)
	LikedKeywordCounts(ctx context.Context, userID uint64, since time.Time) ([]types.TermCount, error)
	SavedTagCounts(ctx context.Context, userID uint64, since time.Time) ([]types.TermCount, error)
	SavedKeywordCounts(ctx context.Context, userID uint64, since time.Time) ([]types.TermCount, error)
}

// Signals is the read-path view of a user's affinity signals. The follow
// list is always freshly resolved; the derived fields may lag up to the
// staleness threshold.
type Signals struct {
	FollowedUserIDs          []uint64
	FrequentlyVisitedUserIDs []uint64
	PreferredHashtags        []string
	PreferredKeywords        []string
	UpdatedAt                time.Time
}

// IsColdStart reports whether the user has no usable signals at all.
// Cold-start users get the global trending substitution for the hashtag pool.
func (s *Signals) IsColdStart() bool {
	return len(s.FollowedUserIDs) == 0 &&
		len(s.FrequentlyVisitedUserIDs) == 0 &&
		len(s.PreferredHashtags) == 0 &&
		len(s.PreferredKeywords) == 0
}

// RankedPost is one entry of the final recommendation list.
type RankedPost struct {
	PostID     uint64    `json:"postId"`
	AuthorID   uint64    `json:"authorId"`
	Score      float64   `json:"score"`
	Caption    string    `json:"caption"`
	ImageURL   string    `json:"imageUrl"`
	Hashtags   []string  `json:"hashtags"`
	Keywords   []string  `json:"keywords"`
	LikesCount int64     `json:"likesCount"`
	ViewsCount int64     `json:"viewsCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

// scoredPost pairs a candidate with its rank score for the duration of
// one request.
type scoredPost struct {
	post  *types.Post
	score float64
}
