package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/junwei-lu/scoreroom/internal/models"
)

const friendColumns = `owner_id, friend_openid, nickname, avatar_url,
	frequency, games_played, wins, losses, total_score_change,
	last_played_at, added_at`

// GetFriend retrieves one opponent record, (nil, nil) when absent.
func (s *SQLiteStore) GetFriend(ctx context.Context, ownerID, friendOpenID string) (*models.Friend, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+friendColumns+` FROM friends WHERE owner_id = ? AND friend_openid = ?`,
		ownerID, friendOpenID)
	friend, err := scanFriend(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get friend: %w", err)
	}
	return friend, nil
}

// SaveFriend inserts or replaces the opponent record for the pair.
func (s *SQLiteStore) SaveFriend(ctx context.Context, friend *models.Friend) error {
	if friend.AddedAt == 0 {
		friend.AddedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO friends (`+friendColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(owner_id, friend_openid) DO UPDATE SET
			nickname = excluded.nickname,
			avatar_url = excluded.avatar_url,
			frequency = excluded.frequency,
			games_played = excluded.games_played,
			wins = excluded.wins,
			losses = excluded.losses,
			total_score_change = excluded.total_score_change,
			last_played_at = excluded.last_played_at`,
		friend.OwnerID, friend.FriendOpenID, friend.Nickname, friend.AvatarURL,
		friend.Frequency, friend.Stats.GamesPlayed, friend.Stats.Wins,
		friend.Stats.Losses, friend.Stats.TotalScoreChange,
		friend.LastPlayedAt, friend.AddedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save friend: %w", err)
	}
	return nil
}

// ListFriends returns a user's opponent records, most frequent first.
func (s *SQLiteStore) ListFriends(ctx context.Context, ownerID string) ([]*models.Friend, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+friendColumns+` FROM friends WHERE owner_id = ? ORDER BY frequency DESC`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	var friends []*models.Friend
	for rows.Next() {
		friend, err := scanFriend(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		friends = append(friends, friend)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate friends: %w", err)
	}
	return friends, nil
}

func scanFriend(row rowScanner) (*models.Friend, error) {
	friend := &models.Friend{}
	err := row.Scan(
		&friend.OwnerID, &friend.FriendOpenID, &friend.Nickname, &friend.AvatarURL,
		&friend.Frequency, &friend.Stats.GamesPlayed, &friend.Stats.Wins,
		&friend.Stats.Losses, &friend.Stats.TotalScoreChange,
		&friend.LastPlayedAt, &friend.AddedAt,
	)
	if err != nil {
		return nil, err
	}
	return friend, nil
}
