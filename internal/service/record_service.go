package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/junwei-lu/scoreroom/internal/ledger"
	"github.com/junwei-lu/scoreroom/internal/metrics"
	"github.com/junwei-lu/scoreroom/internal/models"
	"github.com/junwei-lu/scoreroom/internal/storage"
)

var ErrNoScores = errors.New("a round needs at least one score entry")

// RecordService manages per-round score records and the freeform personal
// score sheets kept outside rooms.
type RecordService struct {
	store storage.Store
}

// NewRecordService creates a new RecordService.
func NewRecordService(store storage.Store) *RecordService {
	return &RecordService{store: store}
}

// AddRecord appends one round to the room on behalf of a member: the deltas
// are applied to member balances, the round counter advances, and the record
// is stored with its balance flag. Unbalanced rounds are accepted and merely
// flagged. Non-members cannot write rounds.
func (s *RecordService) AddRecord(ctx context.Context, roomID, actorOpenID string, scores []models.ScoreEntry) (*models.GameRecord, error) {
	if len(scores) == 0 {
		return nil, ErrNoScores
	}

	var record *models.GameRecord
	for attempt := 0; ; attempt++ {
		room, err := s.store.GetRoom(ctx, roomID)
		if err != nil {
			return nil, err
		}
		if room.Status != models.StatusActive {
			return nil, ledger.ErrRoomNotActive
		}
		if room.FindMember(actorOpenID) < 0 {
			return nil, ErrNotMember
		}

		ledger.ApplyScores(room, scores)
		room.TotalRounds++

		record = &models.GameRecord{
			RoomID:      roomID,
			RoundNumber: room.TotalRounds,
			Scores:      scores,
			IsBalanced:  ledger.Balanced(scores),
			PlayedAt:    time.Now().Unix(),
		}

		err = s.store.UpdateRoom(ctx, room)
		if err == nil {
			break
		}
		if errors.Is(err, storage.ErrVersionConflict) && attempt < maxWriteRetries {
			metrics.TransferConflicts.Inc()
			continue
		}
		if errors.Is(err, storage.ErrVersionConflict) {
			return nil, ErrTooManyWrites
		}
		return nil, err
	}

	if err := s.store.CreateRecord(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save round record: %w", err)
	}

	balanced := "true"
	if !record.IsBalanced {
		balanced = "false"
		slog.Warn("recorded unbalanced round", "room_id", roomID, "round", record.RoundNumber)
	}
	metrics.RoundsRecorded.WithLabelValues(balanced).Inc()
	return record, nil
}

// ListRecords returns the room's rounds, most recent round first.
func (s *RecordService) ListRecords(ctx context.Context, roomID string) ([]*models.GameRecord, error) {
	return s.store.ListRecordsByRoom(ctx, roomID)
}

// DeleteRecord removes a round on behalf of a member and subtracts its
// deltas from the member balances. Members who joined after the round are
// unaffected; their entries in the record simply no longer match anyone and
// are skipped. Non-members cannot delete rounds.
func (s *RecordService) DeleteRecord(ctx context.Context, recordID, actorOpenID string) error {
	record, err := s.store.GetRecord(ctx, recordID)
	if err != nil {
		return err
	}

	for attempt := 0; ; attempt++ {
		room, err := s.store.GetRoom(ctx, record.RoomID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				// Orphaned record, the room is gone. Just drop it.
				return s.store.DeleteRecord(ctx, recordID)
			}
			return err
		}
		if room.Status != models.StatusActive {
			return ledger.ErrRoomNotActive
		}
		if room.FindMember(actorOpenID) < 0 {
			return ErrNotMember
		}

		ledger.ReverseScores(room, record.Scores)
		if room.TotalRounds > 0 {
			room.TotalRounds--
		}

		err = s.store.UpdateRoom(ctx, room)
		if err == nil {
			break
		}
		if errors.Is(err, storage.ErrVersionConflict) && attempt < maxWriteRetries {
			metrics.TransferConflicts.Inc()
			continue
		}
		if errors.Is(err, storage.ErrVersionConflict) {
			return ErrTooManyWrites
		}
		return err
	}

	if err := s.store.DeleteRecord(ctx, recordID); err != nil {
		return fmt.Errorf("failed to delete round record: %w", err)
	}
	slog.Info("round record deleted", "room_id", record.RoomID, "round", record.RoundNumber)
	return nil
}

// AddPersonalRecord stores a freeform score sheet for the owner.
func (s *RecordService) AddPersonalRecord(ctx context.Context, ownerID string, record *models.PersonalRecord) (*models.PersonalRecord, error) {
	if len(record.Players) == 0 {
		return nil, ErrNoScores
	}
	record.OwnerID = ownerID
	if record.PlayedAt == 0 {
		record.PlayedAt = time.Now().Unix()
	}
	if err := s.store.CreatePersonalRecord(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// ListPersonalRecords returns the owner's score sheets, newest first.
func (s *RecordService) ListPersonalRecords(ctx context.Context, ownerID string) ([]*models.PersonalRecord, error) {
	return s.store.ListPersonalRecords(ctx, ownerID)
}
