package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/junwei-lu/scoreroom/internal/models"
	"github.com/junwei-lu/scoreroom/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "scoreroom-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRoom(owner string) *models.Room {
	return &models.Room{
		OwnerID:        owner,
		RoomName:       "Friday Night",
		GameType:       "majiang",
		SettlementMode: models.ModeScore,
		BasePoint:      1,
		Status:         models.StatusActive,
		InviteCode:     "ABC123",
		Members: []models.Member{
			{OpenID: owner, Nickname: "Host", Role: models.RoleCreator},
		},
	}
}

func TestRoomRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateRoom populates ID, version and timestamp", func(t *testing.T) {
		room := sampleRoom("u1")
		if err := store.CreateRoom(ctx, room); err != nil {
			t.Fatalf("CreateRoom failed: %v", err)
		}
		if room.ID == "" {
			t.Error("Expected room ID to be generated")
		}
		if room.Version != 1 {
			t.Errorf("Version = %d, want 1", room.Version)
		}
		if room.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("GetRoom retrieves complete document", func(t *testing.T) {
		room := sampleRoom("u2")
		room.InviteCode = "XYZ789"
		room.BalanceHistory = []models.BalanceChange{
			{
				Timestamp: 1700000000, FromOpenID: "u2", ToOpenID: "u3",
				FromNickname: "A", ToNickname: "B", Amount: 25,
				Balances: map[string]float64{"u2": -25, "u3": 25},
			},
		}
		if err := store.CreateRoom(ctx, room); err != nil {
			t.Fatalf("CreateRoom failed: %v", err)
		}

		got, err := store.GetRoom(ctx, room.ID)
		if err != nil {
			t.Fatalf("GetRoom failed: %v", err)
		}
		if got.RoomName != room.RoomName || got.InviteCode != "XYZ789" {
			t.Errorf("room mismatch: %+v", got)
		}
		if len(got.Members) != 1 || got.Members[0].OpenID != "u2" {
			t.Errorf("members mismatch: %+v", got.Members)
		}
		if len(got.BalanceHistory) != 1 || got.BalanceHistory[0].Amount != 25 {
			t.Errorf("history mismatch: %+v", got.BalanceHistory)
		}
		if got.BalanceHistory[0].Balances["u3"] != 25 {
			t.Errorf("snapshot mismatch: %+v", got.BalanceHistory[0].Balances)
		}
	})

	t.Run("GetRoom unknown ID returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetRoom(ctx, "nope")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})
}

func TestUpdateRoomVersionConflict(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	room := sampleRoom("u1")
	if err := store.CreateRoom(ctx, room); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	// Two readers grab the same version.
	first, err := store.GetRoom(ctx, room.ID)
	if err != nil {
		t.Fatalf("GetRoom failed: %v", err)
	}
	second, err := store.GetRoom(ctx, room.ID)
	if err != nil {
		t.Fatalf("GetRoom failed: %v", err)
	}

	first.Members[0].CurrentBalance = 10
	if err := store.UpdateRoom(ctx, first); err != nil {
		t.Fatalf("first update failed: %v", err)
	}
	if first.Version != 2 {
		t.Errorf("version after update = %d, want 2", first.Version)
	}

	second.Members[0].CurrentBalance = -10
	err = store.UpdateRoom(ctx, second)
	if !errors.Is(err, storage.ErrVersionConflict) {
		t.Fatalf("second update error = %v, want ErrVersionConflict", err)
	}

	// The first write won; nothing from the second leaked through.
	got, err := store.GetRoom(ctx, room.ID)
	if err != nil {
		t.Fatalf("GetRoom failed: %v", err)
	}
	if got.Members[0].CurrentBalance != 10 {
		t.Errorf("balance = %v, want 10", got.Members[0].CurrentBalance)
	}
}

func TestInviteCodeQueries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	active := sampleRoom("u1")
	active.InviteCode = "AAAAAA"
	if err := store.CreateRoom(ctx, active); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	settled := sampleRoom("u2")
	settled.InviteCode = "BBBBBB"
	settled.Status = models.StatusSettled
	settled.SettledAt = 1700000000
	if err := store.CreateRoom(ctx, settled); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	t.Run("ActiveCodeInUse sees only active rooms", func(t *testing.T) {
		inUse, err := store.ActiveCodeInUse(ctx, "AAAAAA")
		if err != nil || !inUse {
			t.Errorf("ActiveCodeInUse(AAAAAA) = %v, %v, want true, nil", inUse, err)
		}
		inUse, err = store.ActiveCodeInUse(ctx, "BBBBBB")
		if err != nil || inUse {
			t.Errorf("ActiveCodeInUse(BBBBBB) = %v, %v, want false, nil (settled room)", inUse, err)
		}
	})

	t.Run("GetActiveRoomByCode skips settled rooms", func(t *testing.T) {
		got, err := store.GetActiveRoomByCode(ctx, "AAAAAA")
		if err != nil {
			t.Fatalf("GetActiveRoomByCode failed: %v", err)
		}
		if got.ID != active.ID {
			t.Errorf("room ID = %s, want %s", got.ID, active.ID)
		}

		_, err = store.GetActiveRoomByCode(ctx, "BBBBBB")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("settled code lookup error = %v, want ErrNotFound", err)
		}
	})
}

func TestListRoomsByMember(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mine := sampleRoom("me")
	mine.Members = append(mine.Members, models.Member{OpenID: "friend", Role: models.RoleMember})
	if err := store.CreateRoom(ctx, mine); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	joined := sampleRoom("someone")
	joined.InviteCode = "CCCCCC"
	joined.Status = models.StatusSettled
	joined.SettledAt = 1700000000
	joined.Members = append(joined.Members, models.Member{OpenID: "me", Role: models.RoleMember})
	if err := store.CreateRoom(ctx, joined); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	other := sampleRoom("stranger")
	other.InviteCode = "DDDDDD"
	if err := store.CreateRoom(ctx, other); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	all, err := store.ListRoomsByMember(ctx, "me", "")
	if err != nil {
		t.Fatalf("ListRoomsByMember failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all statuses: got %d rooms, want 2", len(all))
	}

	activeOnly, err := store.ListRoomsByMember(ctx, "me", models.StatusActive)
	if err != nil {
		t.Fatalf("ListRoomsByMember failed: %v", err)
	}
	if len(activeOnly) != 1 || activeOnly[0].ID != mine.ID {
		t.Errorf("active only: got %+v, want just the owned room", activeOnly)
	}
}

func TestUserCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("missing user returns nil, nil", func(t *testing.T) {
		user, err := store.GetUser(ctx, "ghost")
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if user != nil {
			t.Errorf("expected nil user, got %+v", user)
		}
	})

	user := &models.User{OpenID: "u1", Nickname: "DragonAce", AvatarURL: "http://a/b.png"}
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.CreatedAt == 0 {
		t.Error("Expected CreatedAt to be set")
	}

	t.Run("profile update", func(t *testing.T) {
		if err := store.UpdateUserProfile(ctx, "u1", "NewName", "http://a/c.png"); err != nil {
			t.Fatalf("UpdateUserProfile failed: %v", err)
		}
		got, err := store.GetUser(ctx, "u1")
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if got.Nickname != "NewName" || got.AvatarURL != "http://a/c.png" {
			t.Errorf("profile = %q/%q, want NewName/http://a/c.png", got.Nickname, got.AvatarURL)
		}
	})

	t.Run("stats update", func(t *testing.T) {
		stats := models.UserStats{TotalGames: 3, TotalWins: 2, TotalLosses: 1, TotalScoreChange: 40, TotalMoneyChange: 40}
		if err := store.UpdateUserStats(ctx, "u1", stats); err != nil {
			t.Fatalf("UpdateUserStats failed: %v", err)
		}
		got, err := store.GetUser(ctx, "u1")
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if got.Stats != stats {
			t.Errorf("stats = %+v, want %+v", got.Stats, stats)
		}
	})
}

func TestGameRecords(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := &models.GameRecord{
		RoomID:      "room-1",
		RoundNumber: 1,
		Scores: []models.ScoreEntry{
			{OpenID: "u1", Nickname: "A", ScoreChange: 10},
			{OpenID: "u2", Nickname: "B", ScoreChange: -10, Note: "dealer"},
		},
		IsBalanced: true,
	}
	if err := store.CreateRecord(ctx, record); err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}

	got, err := store.GetRecord(ctx, record.ID)
	if err != nil {
		t.Fatalf("GetRecord failed: %v", err)
	}
	if !got.IsBalanced || len(got.Scores) != 2 || got.Scores[1].Note != "dealer" {
		t.Errorf("record mismatch: %+v", got)
	}

	second := &models.GameRecord{RoomID: "room-1", RoundNumber: 2, IsBalanced: false}
	if err := store.CreateRecord(ctx, second); err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}

	list, err := store.ListRecordsByRoom(ctx, "room-1")
	if err != nil {
		t.Fatalf("ListRecordsByRoom failed: %v", err)
	}
	if len(list) != 2 || list[0].RoundNumber != 2 {
		t.Errorf("expected rounds ordered desc, got %+v", list)
	}

	if err := store.DeleteRecord(ctx, record.ID); err != nil {
		t.Fatalf("DeleteRecord failed: %v", err)
	}
	if err := store.DeleteRecord(ctx, record.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("double delete error = %v, want ErrNotFound", err)
	}
}

func TestFriendUpsertAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	missing, err := store.GetFriend(ctx, "me", "nobody")
	if err != nil {
		t.Fatalf("GetFriend failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown pair, got %+v", missing)
	}

	friend := &models.Friend{
		OwnerID:      "me",
		FriendOpenID: "u2",
		Nickname:     "Guest",
		Frequency:    1,
		Stats:        models.FriendStats{GamesPlayed: 1, Wins: 1, TotalScoreChange: 30},
		LastPlayedAt: 100,
	}
	if err := store.SaveFriend(ctx, friend); err != nil {
		t.Fatalf("SaveFriend failed: %v", err)
	}
	if friend.AddedAt == 0 {
		t.Error("expected AddedAt to be populated")
	}

	friend.Frequency = 2
	friend.Stats.GamesPlayed = 2
	friend.Stats.Losses = 1
	friend.Stats.TotalScoreChange = 10
	if err := store.SaveFriend(ctx, friend); err != nil {
		t.Fatalf("SaveFriend upsert failed: %v", err)
	}

	got, err := store.GetFriend(ctx, "me", "u2")
	if err != nil {
		t.Fatalf("GetFriend failed: %v", err)
	}
	if got.Frequency != 2 || got.Stats.Losses != 1 || got.Stats.TotalScoreChange != 10 {
		t.Errorf("upserted friend mismatch: %+v", got)
	}

	rare := &models.Friend{OwnerID: "me", FriendOpenID: "u3", Frequency: 1, LastPlayedAt: 50}
	if err := store.SaveFriend(ctx, rare); err != nil {
		t.Fatalf("SaveFriend failed: %v", err)
	}

	list, err := store.ListFriends(ctx, "me")
	if err != nil {
		t.Fatalf("ListFriends failed: %v", err)
	}
	if len(list) != 2 || list[0].FriendOpenID != "u2" {
		t.Errorf("expected friends ordered by frequency, got %+v", list)
	}

	other, err := store.ListFriends(ctx, "someone-else")
	if err != nil {
		t.Fatalf("ListFriends failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("expected no friends for other owner, got %+v", other)
	}
}
