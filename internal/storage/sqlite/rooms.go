package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/junwei-lu/scoreroom/internal/models"
	"github.com/junwei-lu/scoreroom/internal/storage"
)

const roomColumns = `id, owner_id, room_name, game_type, settlement_mode, base_point,
	status, invite_code, total_rounds, members, balance_history, version, created_at, settled_at`

// CreateRoom persists a new room document.
func (s *SQLiteStore) CreateRoom(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.New().String()
	}
	if room.CreatedAt == 0 {
		room.CreatedAt = time.Now().Unix()
	}
	if room.Version == 0 {
		room.Version = 1
	}

	members, history, err := marshalRoomDocs(room)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO rooms (`+roomColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		room.ID, room.OwnerID, room.RoomName, room.GameType, room.SettlementMode,
		room.BasePoint, room.Status, room.InviteCode, room.TotalRounds,
		members, history, room.Version, room.CreatedAt, nullableUnix(room.SettledAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert room: %w", err)
	}
	return nil
}

// GetRoom retrieves a room by ID.
func (s *SQLiteStore) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE id = ?`, roomID)
	room, err := scanRoom(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("room %s: %w", roomID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return room, nil
}

// GetActiveRoomByCode looks up an active room by its invite code.
func (s *SQLiteStore) GetActiveRoomByCode(ctx context.Context, code string) (*models.Room, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE invite_code = ? AND status = ?`,
		code, models.StatusActive)
	room, err := scanRoom(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("invite code %s: %w", code, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room by code: %w", err)
	}
	return room, nil
}

// ActiveCodeInUse reports whether an active room already uses the code.
// Settled and archived rooms are ignored on purpose: their codes may recur.
func (s *SQLiteStore) ActiveCodeInUse(ctx context.Context, code string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM rooms WHERE invite_code = ? AND status = ?",
		code, models.StatusActive,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to count invite codes: %w", err)
	}
	return count > 0, nil
}

// ListRoomsByMember returns rooms where the user appears in the members
// document, newest first. The membership test runs over the JSON column.
func (s *SQLiteStore) ListRoomsByMember(ctx context.Context, openID, status string) ([]*models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms
		WHERE EXISTS (
			SELECT 1 FROM json_each(rooms.members)
			WHERE json_extract(json_each.value, '$.openid') = ?
		)`
	args := []any{openID}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms by member: %w", err)
	}
	defer rows.Close()

	var rooms []*models.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rooms: %w", err)
	}
	return rooms, nil
}

// UpdateRoom rewrites the whole room document conditional on the version
// read by the caller. Members and history always travel together so a lost
// update can never split them.
func (s *SQLiteStore) UpdateRoom(ctx context.Context, room *models.Room) error {
	members, history, err := marshalRoomDocs(room)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE rooms SET
			room_name = ?, status = ?, total_rounds = ?,
			members = ?, balance_history = ?, settled_at = ?,
			version = version + 1
		 WHERE id = ? AND version = ?`,
		room.RoomName, room.Status, room.TotalRounds,
		members, history, nullableUnix(room.SettledAt),
		room.ID, room.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update room: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		// Either the room is gone or someone wrote in between.
		if _, err := s.GetRoom(ctx, room.ID); err != nil {
			return err
		}
		return storage.ErrVersionConflict
	}

	room.Version++
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (*models.Room, error) {
	room := &models.Room{}
	var members, history []byte
	var settledAt sql.NullInt64

	err := row.Scan(
		&room.ID, &room.OwnerID, &room.RoomName, &room.GameType,
		&room.SettlementMode, &room.BasePoint, &room.Status, &room.InviteCode,
		&room.TotalRounds, &members, &history, &room.Version,
		&room.CreatedAt, &settledAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(members, &room.Members); err != nil {
		return nil, fmt.Errorf("failed to decode members: %w", err)
	}
	if err := json.Unmarshal(history, &room.BalanceHistory); err != nil {
		return nil, fmt.Errorf("failed to decode balance history: %w", err)
	}
	if settledAt.Valid {
		room.SettledAt = settledAt.Int64
	}
	return room, nil
}

func marshalRoomDocs(room *models.Room) (members, history []byte, err error) {
	if room.Members == nil {
		room.Members = []models.Member{}
	}
	if room.BalanceHistory == nil {
		room.BalanceHistory = []models.BalanceChange{}
	}
	members, err = json.Marshal(room.Members)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode members: %w", err)
	}
	history, err = json.Marshal(room.BalanceHistory)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode balance history: %w", err)
	}
	return members, history, nil
}

func nullableUnix(ts int64) any {
	if ts == 0 {
		return nil
	}
	return ts
}
