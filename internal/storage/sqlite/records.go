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

// CreateRecord persists a round record.
func (s *SQLiteStore) CreateRecord(ctx context.Context, record *models.GameRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.PlayedAt == 0 {
		record.PlayedAt = time.Now().Unix()
	}

	scores, err := json.Marshal(record.Scores)
	if err != nil {
		return fmt.Errorf("failed to encode scores: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO game_records (id, room_id, round_number, scores, is_balanced, played_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		record.ID, record.RoomID, record.RoundNumber, scores,
		boolToInt(record.IsBalanced), record.PlayedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

// GetRecord retrieves a round record by ID.
func (s *SQLiteStore) GetRecord(ctx context.Context, recordID string) (*models.GameRecord, error) {
	record := &models.GameRecord{}
	var scores []byte
	var balanced int

	err := s.db.QueryRowContext(ctx,
		`SELECT id, room_id, round_number, scores, is_balanced, played_at
		 FROM game_records WHERE id = ?`, recordID,
	).Scan(&record.ID, &record.RoomID, &record.RoundNumber, &scores, &balanced, &record.PlayedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("record %s: %w", recordID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	if err := json.Unmarshal(scores, &record.Scores); err != nil {
		return nil, fmt.Errorf("failed to decode scores: %w", err)
	}
	record.IsBalanced = balanced != 0
	return record, nil
}

// ListRecordsByRoom returns all records for a room, highest round first.
func (s *SQLiteStore) ListRecordsByRoom(ctx context.Context, roomID string) ([]*models.GameRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, room_id, round_number, scores, is_balanced, played_at
		 FROM game_records WHERE room_id = ? ORDER BY round_number DESC`, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []*models.GameRecord
	for rows.Next() {
		record := &models.GameRecord{}
		var scores []byte
		var balanced int
		if err := rows.Scan(&record.ID, &record.RoomID, &record.RoundNumber,
			&scores, &balanced, &record.PlayedAt); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		if err := json.Unmarshal(scores, &record.Scores); err != nil {
			return nil, fmt.Errorf("failed to decode scores: %w", err)
		}
		record.IsBalanced = balanced != 0
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}
	return records, nil
}

// DeleteRecord removes a round record by ID.
func (s *SQLiteStore) DeleteRecord(ctx context.Context, recordID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM game_records WHERE id = ?", recordID)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("record %s: %w", recordID, storage.ErrNotFound)
	}
	return nil
}

// CreatePersonalRecord persists a personal score sheet.
func (s *SQLiteStore) CreatePersonalRecord(ctx context.Context, record *models.PersonalRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.PlayedAt == 0 {
		record.PlayedAt = time.Now().Unix()
	}

	players, err := json.Marshal(record.Players)
	if err != nil {
		return fmt.Errorf("failed to encode players: %w", err)
	}

	var note any
	if record.Note != "" {
		note = record.Note
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO personal_records (id, owner_id, game_type, settlement_mode, players, note, played_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.OwnerID, record.GameType, record.SettlementMode,
		players, note, record.PlayedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert personal record: %w", err)
	}
	return nil
}

// ListPersonalRecords returns a user's personal sheets, newest first.
func (s *SQLiteStore) ListPersonalRecords(ctx context.Context, ownerID string) ([]*models.PersonalRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, game_type, settlement_mode, players, note, played_at
		 FROM personal_records WHERE owner_id = ? ORDER BY played_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list personal records: %w", err)
	}
	defer rows.Close()

	var records []*models.PersonalRecord
	for rows.Next() {
		record := &models.PersonalRecord{}
		var players []byte
		var note sql.NullString
		if err := rows.Scan(&record.ID, &record.OwnerID, &record.GameType,
			&record.SettlementMode, &players, &note, &record.PlayedAt); err != nil {
			return nil, fmt.Errorf("failed to scan personal record: %w", err)
		}
		if err := json.Unmarshal(players, &record.Players); err != nil {
			return nil, fmt.Errorf("failed to decode players: %w", err)
		}
		if note.Valid {
			record.Note = note.String
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate personal records: %w", err)
	}
	return records, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
