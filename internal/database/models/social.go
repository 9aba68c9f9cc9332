package models

import (
	"context"
	"fmt"

	"github.com/stylhelpr/styliq/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// SocialModel handles read access to the social graph: follows, blocks,
// and mutes.
type SocialModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewSocial creates a new social graph model.
func NewSocial(db *bun.DB, logger *zap.Logger) *SocialModel {
	return &SocialModel{
		db:     db,
		logger: logger.Named("db_social"),
	}
}

// FollowedIDs returns the ids of users the given user follows.
func (r *SocialModel) FollowedIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64

	err := r.db.NewSelect().
		Model((*types.Follow)(nil)).
		Column("followee_id").
		Where("follower_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get followed ids: %w", err)
	}

	return ids, nil
}

// BlockedIDs returns the ids of users the given user has blocked.
func (r *SocialModel) BlockedIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64

	err := r.db.NewSelect().
		Model((*types.Block)(nil)).
		Column("blocked_id").
		Where("blocker_id = ?", userID).
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get blocked ids: %w", err)
	}

	return ids, nil
}

// MutedIDs returns the ids of users the given user has muted.
func (r *SocialModel) MutedIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64

	err := r.db.NewSelect().
		Model((*types.Mute)(nil)).
		Column("muted_id").
		Where("muter_id = ?", userID).
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get muted ids: %w", err)
	}

	return ids, nil
}
