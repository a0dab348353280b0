// Package stats recomputes player statistics from settled rooms.
//
// The persisted User.Stats aggregate is updated best-effort during settlement
// and can silently miss members, so room history is the source of truth here:
// every read scans the caller's settled rooms and derives the numbers fresh.
package stats

import (
	"time"

	"github.com/junwei-lu/scoreroom/internal/models"
)

// Overall is the derived lifetime summary for one player.
type Overall struct {
	TotalGames       int     `json:"totalGames"`
	TotalWins        int     `json:"totalWins"`
	TotalLosses      int     `json:"totalLosses"`
	WinRate          float64 `json:"winRate"`
	TotalScoreChange float64 `json:"totalScoreChange"`
	AverageScore     float64 `json:"averageScore"`
}

// Trend is a per-day cumulative score series over a trailing window.
type Trend struct {
	Dates  []string  `json:"dates"`
	Scores []float64 `json:"scores"`
}

// ComputeOverall derives the lifetime summary for openID from its settled
// rooms. Rooms where the player is not a member are skipped.
func ComputeOverall(rooms []*models.Room, openID string) Overall {
	var out Overall
	for _, room := range rooms {
		idx := room.FindMember(openID)
		if idx < 0 {
			continue
		}
		balance := room.Members[idx].CurrentBalance
		out.TotalGames++
		out.TotalScoreChange += balance
		if balance > 0 {
			out.TotalWins++
		} else if balance < 0 {
			out.TotalLosses++
		}
	}
	if out.TotalGames > 0 {
		out.WinRate = float64(out.TotalWins) / float64(out.TotalGames) * 100
		out.AverageScore = out.TotalScoreChange / float64(out.TotalGames)
	}
	return out
}

// ComputeTrend buckets the player's settled rooms by settlement day over the
// trailing window ending at now and returns a cumulative running sum. Days
// without settlements carry the previous cumulative value forward.
func ComputeTrend(rooms []*models.Room, openID string, days int, now time.Time) Trend {
	perDay := make(map[string]float64)

	// The cutoff is midnight of the first displayed day, so inclusion
	// matches the rendered buckets exactly.
	first := now.AddDate(0, 0, -(days - 1))
	cutoff := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, first.Location())

	for _, room := range rooms {
		if room.SettledAt == 0 {
			continue
		}
		settled := time.Unix(room.SettledAt, 0)
		if settled.Before(cutoff) {
			continue
		}
		idx := room.FindMember(openID)
		if idx < 0 {
			continue
		}
		perDay[dayKey(settled)] += room.Members[idx].CurrentBalance
	}

	trend := Trend{
		Dates:  make([]string, 0, days),
		Scores: make([]float64, 0, days),
	}
	var cumulative float64
	for i := days - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		key := dayKey(day)
		cumulative += perDay[key]
		trend.Dates = append(trend.Dates, key)
		trend.Scores = append(trend.Scores, cumulative)
	}
	return trend
}

func dayKey(t time.Time) string {
	return t.Format("1/2")
}
