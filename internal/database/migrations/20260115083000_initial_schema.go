package migrations

import (
	"context"
	"fmt"

	"github.com/stylhelpr/styliq/internal/database/types"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		// Create tables
		models := []struct {
			model any
			name  string
		}{
			{(*types.UserSignals)(nil), "user_signals"},
			{(*types.ProfileVisit)(nil), "profile_visits"},
			{(*types.Post)(nil), "posts"},
			{(*types.Follow)(nil), "follows"},
			{(*types.Block)(nil), "blocks"},
			{(*types.Mute)(nil), "mutes"},
			{(*types.PostLike)(nil), "post_likes"},
			{(*types.PostSave)(nil), "post_saves"},
		}

		for _, m := range models {
			_, err := db.NewCreateTable().
				Model(m.model).
				IfNotExists().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to create table %s: %w", m.name, err)
			}
		}

		// Create indexes for the hot query paths
		indexes := []string{
			// Visit aggregation scans a visitor's trailing window
			`CREATE INDEX IF NOT EXISTS idx_profile_visits_visitor_time
				ON profile_visits (visitor_id, visited_at DESC)`,
			// Candidate pools order by recency, filtered by author
			`CREATE INDEX IF NOT EXISTS idx_posts_created_at
				ON posts (created_at DESC)`,
			`CREATE INDEX IF NOT EXISTS idx_posts_author_created_at
				ON posts (author_id, created_at DESC)`,
			// Array-overlap filters for hashtag and keyword pools
			`CREATE INDEX IF NOT EXISTS idx_posts_hashtags
				ON posts USING GIN (hashtags)`,
			`CREATE INDEX IF NOT EXISTS idx_posts_keywords
				ON posts USING GIN (keywords)`,
			// Engagement aggregation scans a user's trailing window
			`CREATE INDEX IF NOT EXISTS idx_post_likes_user_time
				ON post_likes (user_id, created_at DESC)`,
			`CREATE INDEX IF NOT EXISTS idx_post_saves_user_time
				ON post_saves (user_id, created_at DESC)`,
			// Stale-row sweep walks rows oldest first
			`CREATE INDEX IF NOT EXISTS idx_user_signals_updated_at
				ON user_signals (updated_at ASC)`,
		}

		for _, idx := range indexes {
			if _, err := db.NewRaw(idx).Exec(ctx); err != nil {
				return fmt.Errorf("failed to create index: %w", err)
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		return nil
	})
}
