package ledger

import (
	"errors"
	"math"
	"testing"

	"github.com/junwei-lu/scoreroom/internal/models"
)

func testRoom(balances ...float64) *models.Room {
	room := &models.Room{
		ID:     "room-1",
		Status: models.StatusActive,
	}
	names := []string{"u1", "u2", "u3", "u4"}
	for i, b := range balances {
		room.Members = append(room.Members, models.Member{
			OpenID:         names[i],
			Nickname:       "Player " + names[i],
			Role:           models.RoleMember,
			CurrentBalance: b,
		})
	}
	if len(room.Members) > 0 {
		room.Members[0].Role = models.RoleCreator
	}
	return room
}

func TestTransferValidation(t *testing.T) {
	tests := []struct {
		name    string
		setup   func() *models.Room
		from    string
		to      string
		amount  float64
		wantErr error
	}{
		{
			name:    "zero amount",
			setup:   func() *models.Room { return testRoom(0, 0) },
			from:    "u1", to: "u2", amount: 0,
			wantErr: ErrNonPositiveAmount,
		},
		{
			name:    "negative amount",
			setup:   func() *models.Room { return testRoom(0, 0) },
			from:    "u1", to: "u2", amount: -10,
			wantErr: ErrNonPositiveAmount,
		},
		{
			name:    "fractional amount",
			setup:   func() *models.Room { return testRoom(0, 0) },
			from:    "u1", to: "u2", amount: 1.5,
			wantErr: ErrNonIntegerAmount,
		},
		{
			name:    "self transfer",
			setup:   func() *models.Room { return testRoom(0, 0) },
			from:    "u1", to: "u1", amount: 10,
			wantErr: ErrSelfTransfer,
		},
		{
			name:    "unknown source",
			setup:   func() *models.Room { return testRoom(0, 0) },
			from:    "ghost", to: "u2", amount: 10,
			wantErr: ErrMemberNotFound,
		},
		{
			name:    "unknown destination",
			setup:   func() *models.Room { return testRoom(0, 0) },
			from:    "u1", to: "ghost", amount: 10,
			wantErr: ErrMemberNotFound,
		},
		{
			name: "settled room",
			setup: func() *models.Room {
				r := testRoom(0, 0)
				r.Status = models.StatusSettled
				return r
			},
			from: "u1", to: "u2", amount: 10,
			wantErr: ErrRoomNotActive,
		},
		{
			name: "source has left",
			setup: func() *models.Room {
				r := testRoom(0, 0)
				r.Members[0].Status = models.MemberLeft
				return r
			},
			from: "u1", to: "u2", amount: 10,
			wantErr: ErrMemberLeft,
		},
		{
			name: "destination has left",
			setup: func() *models.Room {
				r := testRoom(0, 0)
				r.Members[1].Status = models.MemberLeft
				return r
			},
			from: "u1", to: "u2", amount: 10,
			wantErr: ErrMemberLeft,
		},
		{
			name:    "below balance floor",
			setup:   func() *models.Room { return testRoom(-995, 995) },
			from:    "u1", to: "u2", amount: 10,
			wantErr: ErrInsufficientBalance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room := tt.setup()
			before := Sum(room.Members)
			_, err := Transfer(room, tt.from, tt.to, tt.amount)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Transfer error = %v, want %v", err, tt.wantErr)
			}
			if len(room.BalanceHistory) != 0 {
				t.Error("failed transfer must not append history")
			}
			if got := Sum(room.Members); got != before {
				t.Errorf("failed transfer changed balances: sum %v -> %v", before, got)
			}
		})
	}
}

func TestTransferRoundTrip(t *testing.T) {
	// The scenario: U1 creates, U2 joins, U1 sends 50, U2 sends 50 back.
	room := testRoom(0, 0)

	change, err := Transfer(room, "u1", "u2", 50)
	if err != nil {
		t.Fatalf("first transfer failed: %v", err)
	}
	if change.Amount != 50 {
		t.Errorf("amount = %v, want 50", change.Amount)
	}
	if room.Members[0].CurrentBalance != -50 || room.Members[1].CurrentBalance != 50 {
		t.Errorf("balances = %v, %v, want -50, 50",
			room.Members[0].CurrentBalance, room.Members[1].CurrentBalance)
	}
	if got := change.Balances["u1"]; got != -50 {
		t.Errorf("snapshot u1 = %v, want -50", got)
	}

	if _, err := Transfer(room, "u2", "u1", 50); err != nil {
		t.Fatalf("return transfer failed: %v", err)
	}
	if room.Members[0].CurrentBalance != 0 || room.Members[1].CurrentBalance != 0 {
		t.Errorf("balances did not return to zero: %v, %v",
			room.Members[0].CurrentBalance, room.Members[1].CurrentBalance)
	}
	if len(room.BalanceHistory) != 2 {
		t.Errorf("history length = %d, want 2", len(room.BalanceHistory))
	}
}

func TestTransferSequenceKeepsZeroSum(t *testing.T) {
	room := testRoom(0, 0, 0, 0)
	transfers := []struct {
		from, to string
		amount   float64
	}{
		{"u1", "u2", 100},
		{"u3", "u1", 40},
		{"u2", "u4", 75},
		{"u4", "u3", 5},
		{"u1", "u3", 200},
	}

	for _, tr := range transfers {
		if _, err := Transfer(room, tr.from, tr.to, tr.amount); err != nil {
			t.Fatalf("Transfer(%s -> %s, %v) failed: %v", tr.from, tr.to, tr.amount, err)
		}
		if sum := Sum(room.Members); math.Abs(sum) > Tolerance {
			t.Fatalf("sum = %v after transfer %s -> %s, want 0", sum, tr.from, tr.to)
		}
	}
	if len(room.BalanceHistory) != len(transfers) {
		t.Errorf("history length = %d, want %d", len(room.BalanceHistory), len(transfers))
	}
}

func TestTransferAllowedAtFloorBoundary(t *testing.T) {
	// Exactly reaching the floor is allowed; crossing it is not.
	room := testRoom(0, 0)
	if _, err := Transfer(room, "u1", "u2", 1000); err != nil {
		t.Fatalf("transfer to exactly the floor failed: %v", err)
	}
	if _, err := Transfer(room, "u1", "u2", 1); !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("transfer past the floor: error = %v, want ErrInsufficientBalance", err)
	}
}

func TestBalanced(t *testing.T) {
	tests := []struct {
		name   string
		deltas []float64
		want   bool
	}{
		{"exact zero", []float64{10, -4, -6}, true},
		{"within tolerance", []float64{10.004, -10}, true},
		{"house rake", []float64{10, -4, -5}, false},
		{"single positive", []float64{5}, false},
		{"empty", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scores := make([]models.ScoreEntry, len(tt.deltas))
			for i, d := range tt.deltas {
				scores[i] = models.ScoreEntry{OpenID: "u1", ScoreChange: d}
			}
			if got := Balanced(scores); got != tt.want {
				t.Errorf("Balanced(%v) = %v, want %v", tt.deltas, got, tt.want)
			}
		})
	}
}

func TestApplyAndReverseScores(t *testing.T) {
	room := testRoom(10, -10, 0)
	scores := []models.ScoreEntry{
		{OpenID: "u1", ScoreChange: 25},
		{OpenID: "u2", ScoreChange: -20},
		{OpenID: "u3", ScoreChange: -5},
		{OpenID: "ghost", ScoreChange: 99}, // unknown members are skipped
	}

	ApplyScores(room, scores)
	if room.Members[0].CurrentBalance != 35 {
		t.Errorf("u1 balance = %v, want 35", room.Members[0].CurrentBalance)
	}
	if room.Members[1].CurrentBalance != -30 {
		t.Errorf("u2 balance = %v, want -30", room.Members[1].CurrentBalance)
	}

	ReverseScores(room, scores)
	want := []float64{10, -10, 0}
	for i, w := range want {
		if room.Members[i].CurrentBalance != w {
			t.Errorf("member %d balance = %v, want %v after reverse", i, room.Members[i].CurrentBalance, w)
		}
	}
}
