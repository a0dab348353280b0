package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/junwei-lu/scoreroom/internal/ledger"
	"github.com/junwei-lu/scoreroom/internal/models"
)

func TestAddRecord(t *testing.T) {
	rooms, _, store := newTestEnv(t)
	records := NewRecordService(store)
	ctx := context.Background()
	owner := &models.User{OpenID: "u1", Nickname: "Host"}
	friend := &models.User{OpenID: "u2", Nickname: "Guest"}

	room, err := rooms.Create(ctx, owner, CreateRoomInput{RoomName: "Friday Night"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := rooms.Join(ctx, friend, room.InviteCode); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	t.Run("balanced round", func(t *testing.T) {
		rec, err := records.AddRecord(ctx, room.ID, "u1", []models.ScoreEntry{
			{OpenID: "u1", Nickname: "Host", ScoreChange: 20},
			{OpenID: "u2", Nickname: "Guest", ScoreChange: -20},
		})
		if err != nil {
			t.Fatalf("AddRecord failed: %v", err)
		}
		if rec.RoundNumber != 1 {
			t.Errorf("RoundNumber = %d, want 1", rec.RoundNumber)
		}
		if !rec.IsBalanced {
			t.Error("Expected round to be flagged balanced")
		}

		got, err := store.GetRoom(ctx, room.ID)
		if err != nil {
			t.Fatalf("GetRoom failed: %v", err)
		}
		if got.TotalRounds != 1 {
			t.Errorf("TotalRounds = %d, want 1", got.TotalRounds)
		}
		if got.Members[0].CurrentBalance != 20 || got.Members[1].CurrentBalance != -20 {
			t.Errorf("Balances = %v/%v, want 20/-20",
				got.Members[0].CurrentBalance, got.Members[1].CurrentBalance)
		}
	})

	t.Run("unbalanced round is accepted and flagged", func(t *testing.T) {
		rec, err := records.AddRecord(ctx, room.ID, "u2", []models.ScoreEntry{
			{OpenID: "u1", ScoreChange: 10},
			{OpenID: "u2", ScoreChange: -5},
		})
		if err != nil {
			t.Fatalf("AddRecord failed: %v", err)
		}
		if rec.IsBalanced {
			t.Error("Expected round to be flagged unbalanced")
		}
		if rec.RoundNumber != 2 {
			t.Errorf("RoundNumber = %d, want 2", rec.RoundNumber)
		}
	})

	t.Run("empty round rejected", func(t *testing.T) {
		if _, err := records.AddRecord(ctx, room.ID, "u1", nil); !errors.Is(err, ErrNoScores) {
			t.Errorf("AddRecord with no scores = %v, want ErrNoScores", err)
		}
	})

	t.Run("non-member cannot write rounds", func(t *testing.T) {
		_, err := records.AddRecord(ctx, room.ID, "stranger", []models.ScoreEntry{
			{OpenID: "u1", ScoreChange: 10},
			{OpenID: "u2", ScoreChange: -10},
		})
		if !errors.Is(err, ErrNotMember) {
			t.Errorf("AddRecord as non-member = %v, want ErrNotMember", err)
		}
	})
}

func TestDeleteRecordReversesScores(t *testing.T) {
	rooms, _, store := newTestEnv(t)
	records := NewRecordService(store)
	ctx := context.Background()
	owner := &models.User{OpenID: "u1", Nickname: "Host"}
	friend := &models.User{OpenID: "u2", Nickname: "Guest"}

	room, err := rooms.Create(ctx, owner, CreateRoomInput{RoomName: "Friday Night"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := rooms.Join(ctx, friend, room.InviteCode); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	rec, err := records.AddRecord(ctx, room.ID, "u1", []models.ScoreEntry{
		{OpenID: "u1", ScoreChange: 40},
		{OpenID: "u2", ScoreChange: -40},
	})
	if err != nil {
		t.Fatalf("AddRecord failed: %v", err)
	}

	if err := records.DeleteRecord(ctx, rec.ID, "stranger"); !errors.Is(err, ErrNotMember) {
		t.Fatalf("DeleteRecord as non-member = %v, want ErrNotMember", err)
	}

	if err := records.DeleteRecord(ctx, rec.ID, "u2"); err != nil {
		t.Fatalf("DeleteRecord failed: %v", err)
	}

	got, err := store.GetRoom(ctx, room.ID)
	if err != nil {
		t.Fatalf("GetRoom failed: %v", err)
	}
	if got.TotalRounds != 0 {
		t.Errorf("TotalRounds = %d after delete, want 0", got.TotalRounds)
	}
	if got.Members[0].CurrentBalance != 0 || got.Members[1].CurrentBalance != 0 {
		t.Errorf("Balances = %v/%v after delete, want 0/0",
			got.Members[0].CurrentBalance, got.Members[1].CurrentBalance)
	}

	listed, err := records.ListRecords(ctx, room.ID)
	if err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("ListRecords = %d entries after delete, want 0", len(listed))
	}
}

func TestAddRecordOnSettledRoom(t *testing.T) {
	rooms, settler, store := newTestEnv(t)
	records := NewRecordService(store)
	ctx := context.Background()
	owner := seedUser(t, store, "u1", "Host")

	room, err := rooms.Create(ctx, owner, CreateRoomInput{RoomName: "Friday Night"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := settler.Settle(ctx, room.ID); err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	_, err = records.AddRecord(ctx, room.ID, "u1", []models.ScoreEntry{{OpenID: "u1", ScoreChange: 10}})
	if !errors.Is(err, ledger.ErrRoomNotActive) {
		t.Errorf("AddRecord on settled room = %v, want ErrRoomNotActive", err)
	}
}

func TestDeleteRecordOnSettledRoom(t *testing.T) {
	rooms, settler, store := newTestEnv(t)
	records := NewRecordService(store)
	ctx := context.Background()
	owner := seedUser(t, store, "u1", "Host")

	room, err := rooms.Create(ctx, owner, CreateRoomInput{RoomName: "Friday Night"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	rec, err := records.AddRecord(ctx, room.ID, "u1", []models.ScoreEntry{{OpenID: "u1", ScoreChange: 10}})
	if err != nil {
		t.Fatalf("AddRecord failed: %v", err)
	}
	if _, err := settler.Settle(ctx, room.ID); err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	// Settled balances are final; the round stays on the books.
	if err := records.DeleteRecord(ctx, rec.ID, "u1"); !errors.Is(err, ledger.ErrRoomNotActive) {
		t.Errorf("DeleteRecord on settled room = %v, want ErrRoomNotActive", err)
	}
}

func TestPersonalRecords(t *testing.T) {
	_, _, store := newTestEnv(t)
	records := NewRecordService(store)
	ctx := context.Background()

	sheet := &models.PersonalRecord{
		GameType:       "majiang",
		SettlementMode: models.ModeScore,
		Players: []models.PersonalPlayer{
			{Name: "East", FinalScore: 64},
			{Name: "South", FinalScore: -64},
		},
		Note:     "home game",
		PlayedAt: time.Now().Unix(),
	}
	saved, err := records.AddPersonalRecord(ctx, "u1", sheet)
	if err != nil {
		t.Fatalf("AddPersonalRecord failed: %v", err)
	}
	if saved.OwnerID != "u1" {
		t.Errorf("OwnerID = %q, want u1", saved.OwnerID)
	}

	listed, err := records.ListPersonalRecords(ctx, "u1")
	if err != nil {
		t.Fatalf("ListPersonalRecords failed: %v", err)
	}
	if len(listed) != 1 || listed[0].Players[0].Name != "East" {
		t.Errorf("ListPersonalRecords = %+v, want the saved sheet", listed)
	}

	t.Run("empty sheet rejected", func(t *testing.T) {
		_, err := records.AddPersonalRecord(ctx, "u1", &models.PersonalRecord{})
		if !errors.Is(err, ErrNoScores) {
			t.Errorf("AddPersonalRecord with no players = %v, want ErrNoScores", err)
		}
	})
}
