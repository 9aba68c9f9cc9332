package database

import (
	"context"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// slowQueryThreshold marks queries worth surfacing at Warn. The request path
// fans out several candidate pools in parallel, so a single slow pool drags
// the whole recommendation response.
const slowQueryThreshold = 250 * time.Millisecond

// Hook implements bun.QueryHook, logging queries through zap.
type Hook struct {
	logger *zap.Logger
}

// NewHook creates a query hook backed by the database logger.
func NewHook(logger *zap.Logger) *Hook {
	return &Hook{logger: logger.Named("query")}
}

// BeforeQuery passes the context through unchanged.
func (h *Hook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

// AfterQuery logs the query at a level based on outcome and duration.
func (h *Hook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	elapsed := time.Since(event.StartTime)
	fields := []zap.Field{
		zap.String("operation", event.Operation()),
		zap.Duration("duration", elapsed),
		zap.String("query", truncateQuery(event.Query)),
	}

	switch {
	case event.Err != nil:
		h.logger.Error("Query failed", append(fields, zap.Error(event.Err))...)
	case elapsed >= slowQueryThreshold:
		h.logger.Warn("Slow query", fields...)
	default:
		h.logger.Debug("Query executed", fields...)
	}
}

// truncateQuery bounds logged SQL; array-overlap candidate queries can carry
// long term lists.
func truncateQuery(query string) string {
	const maxLen = 512
	if len(query) <= maxLen {
		return query
	}

	return query[:maxLen] + "..."
}
