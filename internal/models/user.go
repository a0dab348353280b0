package models

// User represents a player profile.
// Profiles are created automatically on first contact: the identity resolver
// sees an unknown OpenID, generates a nickname and persists the record.
type User struct {
	// OpenID is the stable per-person key assigned by the identity provider.
	OpenID string `json:"openid"`

	// Nickname is the display name. Generated on first contact, editable later.
	Nickname string `json:"nickname"`

	// AvatarURL is a reference to the user's avatar image.
	AvatarURL string `json:"avatarUrl"`

	// SecretHash is the bcrypt hash of the device secret presented at login.
	// Never serialized to clients.
	SecretHash string `json:"-"`

	// Stats is the incrementally-updated lifetime aggregate. Updates are
	// best-effort during settlement, so readers that need exact numbers
	// recompute from settled rooms instead (see the stats package).
	Stats UserStats `json:"stats"`

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}

// UserStats is the lifetime aggregate finalized into a profile at settlement.
type UserStats struct {
	TotalGames       int     `json:"totalGames"`
	TotalWins        int     `json:"totalWins"`
	TotalLosses      int     `json:"totalLosses"`
	TotalScoreChange float64 `json:"totalScoreChange"`
	TotalMoneyChange float64 `json:"totalMoneyChange"`
}
