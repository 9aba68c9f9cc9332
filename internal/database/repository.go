package database

import (
	"github.com/stylhelpr/styliq/internal/database/models"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Repository provides access to all database models.
type Repository struct {
	signal     *models.SignalModel
	post       *models.PostModel
	social     *models.SocialModel
	engagement *models.EngagementModel
}

// NewRepository creates a new repository instance with all models.
func NewRepository(db *bun.DB, logger *zap.Logger) *Repository {
	return &Repository{
		signal:     models.NewSignal(db, logger),
		post:       models.NewPost(db, logger),
		social:     models.NewSocial(db, logger),
		engagement: models.NewEngagement(db, logger),
	}
}

// Signal returns the signal model repository.
func (r *Repository) Signal() *models.SignalModel {
	return r.signal
}

// Post returns the post model repository.
func (r *Repository) Post() *models.PostModel {
	return r.post
}

// Social returns the social graph model repository.
func (r *Repository) Social() *models.SocialModel {
	return r.social
}

// Engagement returns the engagement model repository.
func (r *Repository) Engagement() *models.EngagementModel {
	return r.engagement
}
