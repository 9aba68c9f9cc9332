package models

import (
	"context"
	"fmt"
	"time"

	"github.com/stylhelpr/styliq/internal/database/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"go.uber.org/zap"
)

// PostModel handles bounded, filtered read access to the post store for
// candidate generation.
type PostModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewPost creates a new post model.
func NewPost(db *bun.DB, logger *zap.Logger) *PostModel {
	return &PostModel{
		db:     db,
		logger: logger.Named("db_post"),
	}
}

// CandidatesByAuthors returns the newest posts authored by any of the given
// users, excluding the given author ids.
func (r *PostModel) CandidatesByAuthors(
	ctx context.Context, authorIDs, excludeAuthors []uint64, limit int,
) ([]*types.Post, error) {
	var posts []*types.Post

	q := r.db.NewSelect().
		Model(&posts).
		Where("author_id IN (?)", bun.In(authorIDs))

	err := applyCandidateBounds(q, excludeAuthors, limit).Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get posts by authors: %w", err)
	}

	return posts, nil
}

// CandidatesByHashtags returns the newest posts whose hashtag set intersects
// the given tags.
func (r *PostModel) CandidatesByHashtags(
	ctx context.Context, tags []string, excludeAuthors []uint64, limit int,
) ([]*types.Post, error) {
	var posts []*types.Post

	q := r.db.NewSelect().
		Model(&posts).
		Where("hashtags && ?", pgdialect.Array(tags))

	err := applyCandidateBounds(q, excludeAuthors, limit).Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get posts by hashtags: %w", err)
	}

	return posts, nil
}

// CandidatesByKeywords returns the newest posts whose keyword set intersects
// the given keywords.
func (r *PostModel) CandidatesByKeywords(
	ctx context.Context, keywords []string, excludeAuthors []uint64, limit int,
) ([]*types.Post, error) {
	var posts []*types.Post

	q := r.db.NewSelect().
		Model(&posts).
		Where("keywords && ?", pgdialect.Array(keywords))

	err := applyCandidateBounds(q, excludeAuthors, limit).Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get posts by keywords: %w", err)
	}

	return posts, nil
}

// NewestCandidates returns the globally newest posts. This is the recency
// fallback pool and runs on every request.
func (r *PostModel) NewestCandidates(
	ctx context.Context, excludeAuthors []uint64, limit int,
) ([]*types.Post, error) {
	var posts []*types.Post

	q := r.db.NewSelect().
		Model(&posts)

	err := applyCandidateBounds(q, excludeAuthors, limit).Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get newest posts: %w", err)
	}

	return posts, nil
}

// GlobalTopHashtags returns the most-used hashtags across all posts created
// since the cutoff, by occurrence count. Terms are lowercased; ties resolve
// alphabetically for cross-run determinism.
func (r *PostModel) GlobalTopHashtags(ctx context.Context, since time.Time, limit int) ([]string, error) {
	var tags []string

	err := r.db.NewRaw(`
		SELECT lower(tag) AS term
		FROM posts, unnest(hashtags) AS tag
		WHERE created_at >= ?
		GROUP BY term
		ORDER BY COUNT(*) DESC, term ASC
		LIMIT ?`,
		since, limit,
	).Scan(ctx, &tags)
	if err != nil {
		return nil, fmt.Errorf("failed to get global top hashtags: %w", err)
	}

	return tags, nil
}

// applyCandidateBounds applies the shared candidate constraints: excluded
// authors, newest-first ordering, and the pool bound.
func applyCandidateBounds(q *bun.SelectQuery, excludeAuthors []uint64, limit int) *bun.SelectQuery {
	if len(excludeAuthors) > 0 {
		q = q.Where("author_id NOT IN (?)", bun.In(excludeAuthors))
	}

	return q.Order("created_at DESC").Limit(limit)
}
