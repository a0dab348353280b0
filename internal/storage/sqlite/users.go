package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/junwei-lu/scoreroom/internal/models"
)

const userColumns = `openid, nickname, avatar_url, secret_hash,
	total_games, total_wins, total_losses, total_score_change, total_money_change,
	created_at, updated_at`

// CreateUser inserts a new user profile.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now().Unix()
	if user.CreatedAt == 0 {
		user.CreatedAt = now
	}
	if user.UpdatedAt == 0 {
		user.UpdatedAt = now
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.OpenID, user.Nickname, user.AvatarURL, user.SecretHash,
		user.Stats.TotalGames, user.Stats.TotalWins, user.Stats.TotalLosses,
		user.Stats.TotalScoreChange, user.Stats.TotalMoneyChange,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by OpenID. Returns (nil, nil) when absent so the
// identity resolver can distinguish "new user" from a real failure.
func (s *SQLiteStore) GetUser(ctx context.Context, openID string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE openid = ?`, openID,
	).Scan(
		&user.OpenID, &user.Nickname, &user.AvatarURL, &user.SecretHash,
		&user.Stats.TotalGames, &user.Stats.TotalWins, &user.Stats.TotalLosses,
		&user.Stats.TotalScoreChange, &user.Stats.TotalMoneyChange,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateUserProfile updates display fields only.
func (s *SQLiteStore) UpdateUserProfile(ctx context.Context, openID, nickname, avatarURL string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET nickname = ?, avatar_url = ?, updated_at = ? WHERE openid = ?`,
		nickname, avatarURL, time.Now().Unix(), openID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}
	return nil
}

// UpdateUserStats replaces the lifetime aggregate.
func (s *SQLiteStore) UpdateUserStats(ctx context.Context, openID string, stats models.UserStats) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET
			total_games = ?, total_wins = ?, total_losses = ?,
			total_score_change = ?, total_money_change = ?, updated_at = ?
		 WHERE openid = ?`,
		stats.TotalGames, stats.TotalWins, stats.TotalLosses,
		stats.TotalScoreChange, stats.TotalMoneyChange, time.Now().Unix(),
		openID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user stats: %w", err)
	}
	return nil
}
