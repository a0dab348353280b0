package service

import (
	"context"
	"time"

	"github.com/junwei-lu/scoreroom/internal/models"
	"github.com/junwei-lu/scoreroom/internal/stats"
	"github.com/junwei-lu/scoreroom/internal/storage"
)

// DefaultTrendDays is the trailing window for the score trend.
const DefaultTrendDays = 7

// StatsService derives player statistics from settled room history rather
// than the persisted aggregate, so best-effort settlement misses do not show
// up in what the player sees.
type StatsService struct {
	store storage.Store
}

// NewStatsService creates a new StatsService.
func NewStatsService(store storage.Store) *StatsService {
	return &StatsService{store: store}
}

// Overall returns the lifetime summary computed from settled rooms.
func (s *StatsService) Overall(ctx context.Context, openID string) (stats.Overall, error) {
	rooms, err := s.settledRooms(ctx, openID)
	if err != nil {
		return stats.Overall{}, err
	}
	return stats.ComputeOverall(rooms, openID), nil
}

// Trend returns the cumulative per-day score series over the trailing window.
// Non-positive days falls back to the default window.
func (s *StatsService) Trend(ctx context.Context, openID string, days int) (stats.Trend, error) {
	if days <= 0 {
		days = DefaultTrendDays
	}
	rooms, err := s.settledRooms(ctx, openID)
	if err != nil {
		return stats.Trend{}, err
	}
	return stats.ComputeTrend(rooms, openID, days, time.Now()), nil
}

func (s *StatsService) settledRooms(ctx context.Context, openID string) ([]*models.Room, error) {
	return s.store.ListRoomsByMember(ctx, openID, models.StatusSettled)
}
