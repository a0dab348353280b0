package models

// Room status values. A room is created active and settles exactly once.
// StatusArchived is reserved: no transition into it exists yet.
const (
	StatusActive   = "active"
	StatusSettled  = "settled"
	StatusArchived = "archived"
)

// Member roles within a room.
const (
	RoleCreator = "creator"
	RoleMember  = "member"
)

// Member participation status. Leaving a room flips the flag; the member row
// itself is retained so the ledger stays attributable.
const (
	MemberActive = "active"
	MemberLeft   = "left"
)

// Settlement modes.
const (
	ModeScore = "score"
	ModeMoney = "money"
)

// Room represents a game session with a zero-sum balance ledger.
// The member list and balance history are embedded documents owned by the
// room; every mutation rewrites both together in a single conditional write.
type Room struct {
	// ID is the unique identifier for the room (UUID format).
	ID string `json:"id"`

	// OwnerID is the OpenID of the creator.
	OwnerID string `json:"ownerId"`

	RoomName       string `json:"roomName"`
	GameType       string `json:"gameType"`
	SettlementMode string `json:"settlementMode"`
	BasePoint      int    `json:"basePoint"`

	// Status is one of StatusActive, StatusSettled, StatusArchived.
	Status string `json:"status"`

	// Members is the ordered participation list. Entries are appended on
	// join and never removed.
	Members []Member `json:"members"`

	// InviteCode is a 6-character shareable join token, unique among
	// active rooms only.
	InviteCode string `json:"inviteCode"`

	// TotalRounds counts GameRecords attached to this room.
	TotalRounds int `json:"totalRounds"`

	// BalanceHistory is the append-only transfer log, insertion order is
	// chronological order.
	BalanceHistory []BalanceChange `json:"balanceHistory"`

	// Version increments on every write. Conditional updates compare it to
	// detect concurrent read-modify-write cycles.
	Version int64 `json:"version"`

	// CreatedAt and SettledAt are Unix timestamps. SettledAt is zero while
	// the room is active.
	CreatedAt int64 `json:"createdAt"`
	SettledAt int64 `json:"settledAt,omitempty"`
}

// Member is one user's participation record inside a room.
type Member struct {
	OpenID    string `json:"openid"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatarUrl"`
	Role      string `json:"role"`

	// CurrentBalance is the running signed balance. Across all members of
	// an active or settled room these sum to zero.
	CurrentBalance float64 `json:"currentBalance"`

	// Status is MemberActive or MemberLeft. Empty means active (rooms
	// written before the flag existed).
	Status string `json:"memberStatus,omitempty"`
}

// Left reports whether the member has left the room.
func (m *Member) Left() bool {
	return m.Status == MemberLeft
}

// BalanceChange is one append-only ledger entry: a point transfer plus a full
// balance snapshot taken immediately after it was applied. Never mutated.
type BalanceChange struct {
	// Timestamp is a Unix timestamp.
	Timestamp    int64  `json:"timestamp"`
	FromOpenID   string `json:"fromOpenid"`
	FromNickname string `json:"fromNickname"`
	ToOpenID     string `json:"toOpenid"`
	ToNickname   string `json:"toNickname"`

	// Amount moved from source to destination, always positive.
	Amount float64 `json:"amount"`

	// Balances maps every member OpenID to their balance after the change.
	Balances map[string]float64 `json:"balances"`
}

// FindMember returns the index of the member with the given OpenID, or -1.
func (r *Room) FindMember(openID string) int {
	for i := range r.Members {
		if r.Members[i].OpenID == openID {
			return i
		}
	}
	return -1
}

// AllLeft reports whether every member of the room has left.
// False for a room with no members.
func (r *Room) AllLeft() bool {
	if len(r.Members) == 0 {
		return false
	}
	for i := range r.Members {
		if !r.Members[i].Left() {
			return false
		}
	}
	return true
}

// LastActivity returns the timestamp of the most recent balance change, or
// the creation time if the ledger is empty. Used by the idle sweep.
func (r *Room) LastActivity() int64 {
	if n := len(r.BalanceHistory); n > 0 {
		return r.BalanceHistory[n-1].Timestamp
	}
	return r.CreatedAt
}
