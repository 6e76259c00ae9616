package dataloader

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"findash/internal/models"
)

// Usage returns the stored usage stats for a user; a missing file means zero views
func (l *Loader) Usage(ctx context.Context, userID string) (models.UsageStats, error) {
	stats := models.UsageStats{UserID: userID}
	if err := l.readOptional(l.userPath(userID, "usage.json"), &stats); err != nil {
		return models.UsageStats{}, err
	}
	return stats, nil
}

// RecordDashboardView counts a dashboard computation for the user and stamps
// it with a fresh event ID
func (l *Loader) RecordDashboardView(ctx context.Context, userID, rangeKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.usageMu.Lock()
	defer l.usageMu.Unlock()

	stats, err := l.Usage(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to read usage: %w", err)
	}

	stats.UserID = userID
	stats.Views++
	stats.LastViewedAt = l.now().UTC()
	stats.LastRangeKey = rangeKey
	stats.LastEventID = uuid.NewString()

	if err := l.store.WriteJSON(l.userPath(userID, "usage.json"), stats); err != nil {
		return fmt.Errorf("failed to write usage: %w", err)
	}
	l.logger.Debug("recorded dashboard view",
		zap.String("user", userID),
		zap.Int("views", stats.Views),
		zap.String("event", stats.LastEventID),
	)
	return nil
}
