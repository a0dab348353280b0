package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/junwei-lu/scoreroom/internal/metrics"
	"github.com/junwei-lu/scoreroom/internal/models"
	"github.com/junwei-lu/scoreroom/internal/storage"
)

// Settler is the contract between the unprivileged room lifecycle and the
// trusted settlement path. Settlement writes to other users' profiles, so it
// runs in a distinct trust context; lifecycle code only ever reaches it
// through this interface.
type Settler interface {
	Settle(ctx context.Context, roomID string) (*SettleResult, error)
}

// SettleResult reports the outcome of a settlement.
type SettleResult struct {
	Success      bool `json:"success"`
	UpdatedUsers int  `json:"updatedUsers"`
}

// SettleService is the privileged settlement implementation: it finalizes a
// room, rolls its balances into each member's lifetime statistics, and
// updates every member's opponent records.
type SettleService struct {
	store   storage.Store
	friends *FriendService
}

// NewSettleService creates the privileged settlement service.
func NewSettleService(store storage.Store) *SettleService {
	return &SettleService{store: store, friends: NewFriendService(store)}
}

var _ Settler = (*SettleService)(nil)

// Settle marks the room settled, flags every member as left, and increments
// each member's profile aggregate by their final balance. Calling it on an
// already-settled room is an idempotent no-op reporting zero updates.
// Per-member profile failures are logged and skipped, never fatal.
func (s *SettleService) Settle(ctx context.Context, roomID string) (*SettleResult, error) {
	var room *models.Room
	for attempt := 0; ; attempt++ {
		var err error
		room, err = s.store.GetRoom(ctx, roomID)
		if err != nil {
			return nil, err
		}

		if room.Status == models.StatusSettled {
			return &SettleResult{Success: true, UpdatedUsers: 0}, nil
		}

		for i := range room.Members {
			room.Members[i].Status = models.MemberLeft
		}
		room.Status = models.StatusSettled
		room.SettledAt = time.Now().Unix()

		err = s.store.UpdateRoom(ctx, room)
		if err == nil {
			break
		}
		if errors.Is(err, storage.ErrVersionConflict) && attempt < maxWriteRetries {
			metrics.TransferConflicts.Inc()
			continue
		}
		return nil, fmt.Errorf("failed to settle room: %w", err)
	}

	// Finalize balances into profiles, best-effort per member.
	updated := 0
	for i := range room.Members {
		member := &room.Members[i]
		if err := s.rollupMember(ctx, member); err != nil {
			slog.Error("failed to update member stats during settlement",
				"room_id", roomID,
				"openid", member.OpenID,
				"error", err,
			)
			continue
		}
		updated++
	}

	s.updateFriends(ctx, room)

	slog.Info("room settled", "room_id", roomID, "updated_users", updated)
	return &SettleResult{Success: true, UpdatedUsers: updated}, nil
}

// updateFriends records the settled game on every (member, opponent) pair,
// best-effort like the stat rollup.
func (s *SettleService) updateFriends(ctx context.Context, room *models.Room) {
	for i := range room.Members {
		owner := &room.Members[i]
		for j := range room.Members {
			if i == j {
				continue
			}
			if err := s.friends.RecordGame(ctx, owner.OpenID, &room.Members[j], owner.CurrentBalance); err != nil {
				slog.Error("failed to update friend record during settlement",
					"room_id", room.ID,
					"openid", owner.OpenID,
					"friend", room.Members[j].OpenID,
					"error", err,
				)
			}
		}
	}
}

func (s *SettleService) rollupMember(ctx context.Context, member *models.Member) error {
	user, err := s.store.GetUser(ctx, member.OpenID)
	if err != nil {
		return err
	}
	if user == nil {
		// Guest entries added by the creator may have no profile.
		return fmt.Errorf("no profile for %s", member.OpenID)
	}

	stats := user.Stats
	stats.TotalGames++
	if member.CurrentBalance > 0 {
		stats.TotalWins++
	} else if member.CurrentBalance < 0 {
		stats.TotalLosses++
	}
	stats.TotalScoreChange += member.CurrentBalance
	stats.TotalMoneyChange += member.CurrentBalance

	return s.store.UpdateUserStats(ctx, member.OpenID, stats)
}
