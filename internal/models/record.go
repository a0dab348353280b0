package models

// GameRecord is a batch of per-member score deltas for one round, recorded
// independently of point transfers. It references its room by ID only.
type GameRecord struct {
	// ID is the unique identifier for the record (UUID format).
	ID string `json:"id"`

	// RoomID is a weak reference; deleting the room leaves records behind.
	RoomID string `json:"roomId"`

	// RoundNumber is sequential per room, starting at 1.
	RoundNumber int `json:"roundNumber"`

	Scores []ScoreEntry `json:"scores"`

	// IsBalanced records whether the round's deltas summed to (approximately)
	// zero at creation time. Unbalanced rounds are recorded regardless:
	// intentional imbalance such as a house rake is allowed.
	IsBalanced bool `json:"isBalanced"`

	// PlayedAt is a Unix timestamp.
	PlayedAt int64 `json:"playedAt"`
}

// ScoreEntry is one member's delta within a round.
type ScoreEntry struct {
	OpenID      string  `json:"openid"`
	Nickname    string  `json:"nickname"`
	ScoreChange float64 `json:"scoreChange"`
	Note        string  `json:"note,omitempty"`
}

// PersonalRecord is a freeform score sheet a user keeps for games played
// outside any tracked room.
type PersonalRecord struct {
	ID             string           `json:"id"`
	OwnerID        string           `json:"ownerId"`
	GameType       string           `json:"gameType"`
	SettlementMode string           `json:"settlementMode"`
	Players        []PersonalPlayer `json:"players"`
	Note           string           `json:"note,omitempty"`
	PlayedAt       int64            `json:"playedAt"`
}

// PersonalPlayer is one line of a personal score sheet.
type PersonalPlayer struct {
	Name       string  `json:"name"`
	FinalScore float64 `json:"finalScore"`
}
