package models

// Friend is one user's running record of a frequent opponent. A row exists
// per (owner, opponent) direction and is updated after every settled game the
// two shared.
type Friend struct {
	// OwnerID is the OpenID of the user the record belongs to.
	OwnerID string `json:"-"`

	FriendOpenID string `json:"friendOpenid"`
	Nickname     string `json:"friendNickname"`
	AvatarURL    string `json:"friendAvatarUrl"`

	// Frequency counts settled games played together, used for ordering.
	Frequency int `json:"frequency"`

	Stats FriendStats `json:"stats"`

	// LastPlayedAt and AddedAt are Unix timestamps.
	LastPlayedAt int64 `json:"lastPlayedAt"`
	AddedAt      int64 `json:"addedAt"`
}

// FriendStats tracks the owner's results across games shared with this
// opponent. Wins and losses follow the owner's own score change sign, not a
// head-to-head comparison.
type FriendStats struct {
	GamesPlayed      int     `json:"gamesPlayed"`
	Wins             int     `json:"wins"`
	Losses           int     `json:"losses"`
	TotalScoreChange float64 `json:"totalScoreChange"`
}
