// Package ledger implements the zero-sum balance arithmetic for rooms:
// point transfers between members and round score application.
//
// Functions here mutate the room value they are given but perform no I/O;
// callers persist the whole room afterwards (or discard it on error) so a
// failed operation never leaves partial state behind.
package ledger

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/junwei-lu/scoreroom/internal/models"
)

// BalanceFloor is the hard lower bound on a member's post-transfer balance.
// Transfers that would push the source below it are rejected.
const BalanceFloor = -1000

// Tolerance absorbs floating point noise when checking sums against zero.
const Tolerance = 0.01

var (
	ErrRoomNotActive       = errors.New("room is not active")
	ErrMemberNotFound      = errors.New("member not found in room")
	ErrMemberLeft          = errors.New("member has left the room")
	ErrSelfTransfer        = errors.New("cannot transfer points to yourself")
	ErrNonPositiveAmount   = errors.New("transfer amount must be greater than zero")
	ErrNonIntegerAmount    = errors.New("transfer amount must be a whole number")
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrUnbalancedLedger signals a violated zero-sum post-condition.
	// This is a correctness assertion, not a business error: the operation
	// aborts and nothing is persisted.
	ErrUnbalancedLedger = errors.New("ledger out of balance after transfer")
)

// Sum returns the total of all member balances in the room.
func Sum(members []models.Member) float64 {
	var sum float64
	for i := range members {
		sum += members[i].CurrentBalance
	}
	return sum
}

// Balanced reports whether the score deltas sum to (approximately) zero.
func Balanced(scores []models.ScoreEntry) bool {
	var sum float64
	for i := range scores {
		sum += scores[i].ScoreChange
	}
	return math.Abs(sum) < Tolerance
}

// Transfer moves amount points from one member to another inside the room,
// appending a BalanceChange with a full balance snapshot. The room is
// mutated in place only on success.
func Transfer(room *models.Room, fromOpenID, toOpenID string, amount float64) (*models.BalanceChange, error) {
	if amount <= 0 {
		return nil, ErrNonPositiveAmount
	}
	if amount != math.Trunc(amount) {
		return nil, ErrNonIntegerAmount
	}
	if room.Status != models.StatusActive {
		return nil, ErrRoomNotActive
	}
	if fromOpenID == toOpenID {
		return nil, ErrSelfTransfer
	}

	fromIdx := room.FindMember(fromOpenID)
	toIdx := room.FindMember(toOpenID)
	if fromIdx < 0 || toIdx < 0 {
		return nil, ErrMemberNotFound
	}

	from := &room.Members[fromIdx]
	to := &room.Members[toIdx]
	if from.Left() || to.Left() {
		return nil, ErrMemberLeft
	}

	// Advisory only: a nonzero pre-transfer sum means the ledger was already
	// inconsistent (likely a historical lost update). The transfer proceeds.
	if beforeSum := Sum(room.Members); math.Abs(beforeSum) > Tolerance {
		slog.Warn("ledger sum nonzero before transfer",
			"room_id", room.ID,
			"sum", beforeSum,
		)
	}

	if from.CurrentBalance-amount < BalanceFloor {
		return nil, fmt.Errorf("%w: current balance %.0f", ErrInsufficientBalance, from.CurrentBalance)
	}

	next := make([]models.Member, len(room.Members))
	copy(next, room.Members)
	next[fromIdx].CurrentBalance -= amount
	next[toIdx].CurrentBalance += amount

	if afterSum := Sum(next); math.Abs(afterSum) > Tolerance {
		return nil, fmt.Errorf("%w: sum %.2f", ErrUnbalancedLedger, afterSum)
	}

	change := models.BalanceChange{
		Timestamp:    time.Now().Unix(),
		FromOpenID:   from.OpenID,
		FromNickname: from.Nickname,
		ToOpenID:     to.OpenID,
		ToNickname:   to.Nickname,
		Amount:       amount,
		Balances:     snapshot(next),
	}

	room.Members = next
	room.BalanceHistory = append(room.BalanceHistory, change)
	return &room.BalanceHistory[len(room.BalanceHistory)-1], nil
}

// ApplyScores adds each score delta to the matching member's balance.
// Entries naming unknown members are skipped. No balance check is performed:
// unbalanced rounds (house rake etc.) are legitimate.
func ApplyScores(room *models.Room, scores []models.ScoreEntry) {
	for i := range scores {
		if idx := room.FindMember(scores[i].OpenID); idx >= 0 {
			room.Members[idx].CurrentBalance += scores[i].ScoreChange
		}
	}
}

// ReverseScores is the exact inverse of ApplyScores, used when a round
// record is deleted.
func ReverseScores(room *models.Room, scores []models.ScoreEntry) {
	for i := range scores {
		if idx := room.FindMember(scores[i].OpenID); idx >= 0 {
			room.Members[idx].CurrentBalance -= scores[i].ScoreChange
		}
	}
}

func snapshot(members []models.Member) map[string]float64 {
	balances := make(map[string]float64, len(members))
	for i := range members {
		balances[members[i].OpenID] = members[i].CurrentBalance
	}
	return balances
}
