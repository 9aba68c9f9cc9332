package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/stylhelpr/styliq/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// SignalModel handles database operations for user signal rows and the
// profile visit log.
type SignalModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewSignal creates a new signal model.
func NewSignal(db *bun.DB, logger *zap.Logger) *SignalModel {
	return &SignalModel{
		db:     db,
		logger: logger.Named("db_signal"),
	}
}

// GetRow retrieves the signal row for a user.
// Returns nil without error when no row exists yet.
func (r *SignalModel) GetRow(ctx context.Context, userID uint64) (*types.UserSignals, error) {
	var row types.UserSignals

	err := r.db.NewSelect().
		Model(&row).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to get signal row: %w", err)
	}

	return &row, nil
}

// UpsertFollowed persists the freshly resolved follow list. Creates the row
// when absent; never touches the derived preference columns, so a row created
// here starts with empty preferences and a zero updated_at.
func (r *SignalModel) UpsertFollowed(ctx context.Context, userID uint64, followedIDs []uint64) error {
	row := &types.UserSignals{
		UserID:                   userID,
		FollowedUserIDs:          emptyIfNil(followedIDs),
		FrequentlyVisitedUserIDs: []uint64{},
		PreferredHashtags:        []string{},
		PreferredKeywords:        []string{},
	}

	_, err := r.db.NewInsert().
		Model(row).
		On("CONFLICT (user_id) DO UPDATE").
		Set("followed_user_ids = EXCLUDED.followed_user_ids").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert followed ids: %w", err)
	}

	return nil
}

// UpsertFrequentlyVisited persists the recomputed frequent-visit list.
func (r *SignalModel) UpsertFrequentlyVisited(ctx context.Context, userID uint64, visitedIDs []uint64) error {
	row := &types.UserSignals{
		UserID:                   userID,
		FollowedUserIDs:          []uint64{},
		FrequentlyVisitedUserIDs: emptyIfNil(visitedIDs),
		PreferredHashtags:        []string{},
		PreferredKeywords:        []string{},
	}

	_, err := r.db.NewInsert().
		Model(row).
		On("CONFLICT (user_id) DO UPDATE").
		Set("frequently_visited_user_ids = EXCLUDED.frequently_visited_user_ids").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert frequently visited ids: %w", err)
	}

	return nil
}

// UpsertPreferences persists recomputed hashtag and keyword preferences with
// a fresh updated_at. Last write wins; recomputation is idempotent given the
// same history window, so concurrent refreshes are safe.
func (r *SignalModel) UpsertPreferences(
	ctx context.Context, userID uint64, hashtags, keywords []string, updatedAt time.Time,
) error {
	row := &types.UserSignals{
		UserID:                   userID,
		FollowedUserIDs:          []uint64{},
		FrequentlyVisitedUserIDs: []uint64{},
		PreferredHashtags:        emptyIfNilStr(hashtags),
		PreferredKeywords:        emptyIfNilStr(keywords),
		UpdatedAt:                updatedAt,
	}

	_, err := r.db.NewInsert().
		Model(row).
		On("CONFLICT (user_id) DO UPDATE").
		Set("preferred_hashtags = EXCLUDED.preferred_hashtags").
		Set("preferred_keywords = EXCLUDED.preferred_keywords").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert preferences: %w", err)
	}

	return nil
}

// InsertVisit appends a profile visit to the log.
func (r *SignalModel) InsertVisit(ctx context.Context, visitorID, visitedID uint64, visitedAt time.Time) error {
	visit := &types.ProfileVisit{
		VisitorID: visitorID,
		VisitedID: visitedID,
		VisitedAt: visitedAt,
	}

	_, err := r.db.NewInsert().
		Model(visit).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert profile visit: %w", err)
	}

	return nil
}

// TopVisited returns the most-visited profile ids for a visitor over the
// trailing window, most-visited first. Ties resolve by visited id for
// cross-run determinism.
func (r *SignalModel) TopVisited(
	ctx context.Context, visitorID uint64, since time.Time, limit int,
) ([]uint64, error) {
	var ids []uint64

	err := r.db.NewSelect().
		Model((*types.ProfileVisit)(nil)).
		Column("visited_id").
		Where("visitor_id = ?", visitorID).
		Where("visited_at >= ?", since).
		Group("visited_id").
		OrderExpr("COUNT(*) DESC, visited_id ASC").
		Limit(limit).
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get top visited ids: %w", err)
	}

	return ids, nil
}

// StaleUserIDs returns ids of signal rows whose preferences were last
// recomputed before the cutoff, oldest first. Used by the sweep worker.
func (r *SignalModel) StaleUserIDs(ctx context.Context, cutoff time.Time, limit int) ([]uint64, error) {
	var ids []uint64

	err := r.db.NewSelect().
		Model((*types.UserSignals)(nil)).
		Column("user_id").
		Where("updated_at < ?", cutoff).
		Order("updated_at ASC").
		Limit(limit).
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get stale signal rows: %w", err)
	}

	return ids, nil
}

func emptyIfNil(ids []uint64) []uint64 {
	if ids == nil {
		return []uint64{}
	}

	return ids
}

func emptyIfNilStr(terms []string) []string {
	if terms == nil {
		return []string{}
	}

	return terms
}
