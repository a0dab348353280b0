package service

import (
	"context"
	"time"

	"github.com/junwei-lu/scoreroom/internal/models"
	"github.com/junwei-lu/scoreroom/internal/storage"
)

// FriendService tracks frequent opponents per user. Settlement records one
// game per (member, opponent) pair; the list powers the friends screen,
// ordered by how often the two have played.
type FriendService struct {
	store storage.Store
}

// NewFriendService creates a new FriendService.
func NewFriendService(store storage.Store) *FriendService {
	return &FriendService{store: store}
}

// List returns the user's opponent records, most frequent first.
func (s *FriendService) List(ctx context.Context, ownerID string) ([]*models.Friend, error) {
	return s.store.ListFriends(ctx, ownerID)
}

// Get returns the record for one opponent, or (nil, nil) if the two have
// never shared a settled game.
func (s *FriendService) Get(ctx context.Context, ownerID, friendOpenID string) (*models.Friend, error) {
	return s.store.GetFriend(ctx, ownerID, friendOpenID)
}

// RecordGame folds one settled game into the owner's record of the opponent.
// scoreChange is the owner's own final balance in that game; its sign drives
// the win/loss tally regardless of how the opponent fared.
func (s *FriendService) RecordGame(ctx context.Context, ownerID string, opponent *models.Member, scoreChange float64) error {
	friend, err := s.store.GetFriend(ctx, ownerID, opponent.OpenID)
	if err != nil {
		return err
	}
	now := time.Now().Unix()
	if friend == nil {
		friend = &models.Friend{
			OwnerID:      ownerID,
			FriendOpenID: opponent.OpenID,
			AddedAt:      now,
		}
	}

	friend.Nickname = opponent.Nickname
	friend.AvatarURL = opponent.AvatarURL
	friend.Frequency++
	friend.Stats.GamesPlayed++
	if scoreChange > 0 {
		friend.Stats.Wins++
	} else if scoreChange < 0 {
		friend.Stats.Losses++
	}
	friend.Stats.TotalScoreChange += scoreChange
	friend.LastPlayedAt = now

	return s.store.SaveFriend(ctx, friend)
}
