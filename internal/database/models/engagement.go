package models

import (
	"context"
	"fmt"
	"time"

	"github.com/stylhelpr/styliq/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// EngagementModel aggregates tag and keyword occurrence counts from a user's
// like and save history for preference recomputation.
type EngagementModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewEngagement creates a new engagement model.
func NewEngagement(db *bun.DB, logger *zap.Logger) *EngagementModel {
	return &EngagementModel{
		db:     db,
		logger: logger.Named("db_engagement"),
	}
}

// LikedTagCounts returns hashtag occurrence counts from posts the user liked
// since the cutoff, ordered by count descending then term ascending.
func (r *EngagementModel) LikedTagCounts(
	ctx context.Context, userID uint64, since time.Time,
) ([]types.TermCount, error) {
	return r.termCounts(ctx, "post_likes", "hashtags", userID, since)
}

// LikedKeywordCounts returns keyword occurrence counts from liked posts.
func (r *EngagementModel) LikedKeywordCounts(
	ctx context.Context, userID uint64, since time.Time,
) ([]types.TermCount, error) {
	return r.termCounts(ctx, "post_likes", "keywords", userID, since)
}

// SavedTagCounts returns hashtag occurrence counts from saved posts.
func (r *EngagementModel) SavedTagCounts(
	ctx context.Context, userID uint64, since time.Time,
) ([]types.TermCount, error) {
	return r.termCounts(ctx, "post_saves", "hashtags", userID, since)
}

// SavedKeywordCounts returns keyword occurrence counts from saved posts.
func (r *EngagementModel) SavedKeywordCounts(
	ctx context.Context, userID uint64, since time.Time,
) ([]types.TermCount, error) {
	return r.termCounts(ctx, "post_saves", "keywords", userID, since)
}

// termCounts unnests the given array column of posts joined through an
// engagement table and counts lowercased terms. The engagement window is
// bounded by the engagement row's created_at, not the post's.
func (r *EngagementModel) termCounts(
	ctx context.Context, sourceTable, column string, userID uint64, since time.Time,
) ([]types.TermCount, error) {
	var counts []types.TermCount

	query := fmt.Sprintf(`
		SELECT lower(term) AS term, COUNT(*) AS count
		FROM %s e
		JOIN posts p ON p.id = e.post_id, unnest(p.%s) AS term
		WHERE e.user_id = ? AND e.created_at >= ?
		GROUP BY lower(term)
		ORDER BY count DESC, term ASC`,
		sourceTable, column,
	)

	err := r.db.NewRaw(query, userID, since).Scan(ctx, &counts)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s counts from %s: %w", column, sourceTable, err)
	}

	return counts, nil
}
