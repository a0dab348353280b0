package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/junwei-lu/scoreroom/internal/auth"
	"github.com/junwei-lu/scoreroom/internal/metrics"
	"github.com/junwei-lu/scoreroom/internal/models"
	"github.com/junwei-lu/scoreroom/internal/storage"
)

// UserService resolves runtime sessions to user profiles. It is the only
// place profiles are created: an unknown OpenID at login means first
// contact, and a record is minted on the spot.
type UserService struct {
	store storage.Store
}

// NewUserService creates a new UserService with the given storage backend.
func NewUserService(store storage.Store) *UserService {
	return &UserService{store: store}
}

// Login resolves the OpenID to a profile, creating it on first contact.
// The device secret is registered on creation and verified on every later
// login. Optional nickname/avatar are used only when creating.
func (s *UserService) Login(ctx context.Context, openID, secret, nickname, avatarURL string) (*models.User, error) {
	user, err := s.store.GetUser(ctx, openID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	if user == nil {
		return s.createUser(ctx, openID, secret, nickname, avatarURL)
	}

	if err := auth.VerifySecret(user.SecretHash, secret); err != nil {
		return nil, err
	}
	return user, nil
}

// GetProfile returns the profile for an OpenID.
func (s *UserService) GetProfile(ctx context.Context, openID string) (*models.User, error) {
	user, err := s.store.GetUser(ctx, openID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", openID, storage.ErrNotFound)
	}
	return user, nil
}

// UpdateProfile changes the display name and avatar.
func (s *UserService) UpdateProfile(ctx context.Context, openID, nickname, avatarURL string) error {
	if nickname == "" {
		return fmt.Errorf("nickname must not be empty")
	}
	return s.store.UpdateUserProfile(ctx, openID, nickname, avatarURL)
}

func (s *UserService) createUser(ctx context.Context, openID, secret, nickname, avatarURL string) (*models.User, error) {
	if err := auth.ValidateSecret(secret); err != nil {
		return nil, err
	}
	hash, err := auth.HashSecret(secret)
	if err != nil {
		return nil, err
	}

	if nickname == "" {
		nickname = randomNickname()
	}
	user := &models.User{
		OpenID:     openID,
		Nickname:   nickname,
		AvatarURL:  avatarURL,
		SecretHash: hash,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	metrics.UsersCreated.Inc()
	slog.Info("user created on first contact", "openid", openID, "nickname", nickname)
	return user, nil
}

// Nickname parts for profiles created without a display name. Mahjong hands
// and winds, matching the game types the rooms track.
var (
	nicknamePrefixes = []string{
		"PureSuit", "SevenPairs", "BigDragon", "EastWind", "SouthWind",
		"WestWind", "NorthWind", "RedCenter", "Fortune", "WhiteBoard",
		"ThirteenOrphans", "HeavenlyHand", "SelfDraw", "KongBloom", "MoonBottom",
	}
	nicknameSuffixes = []string{
		"Ace", "Master", "Rookie", "Champ", "Pro",
		"Legend", "Shark", "Novice", "Star", "Whiz",
	}
)

func randomNickname() string {
	prefix := nicknamePrefixes[rand.Intn(len(nicknamePrefixes))]
	suffix := nicknameSuffixes[rand.Intn(len(nicknameSuffixes))]
	return prefix + suffix
}
