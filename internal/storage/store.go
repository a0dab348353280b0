// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/junwei-lu/scoreroom/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrVersionConflict is returned by UpdateRoom when the room was
	// modified since it was read. Callers re-read and retry.
	ErrVersionConflict = errors.New("room version conflict")
)

// Store defines the interface for scoreroom storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateUser persists a new user profile keyed by OpenID.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUser retrieves a user by OpenID. Returns (nil, nil) if the user
	// does not exist.
	GetUser(ctx context.Context, openID string) (*models.User, error)

	// UpdateUserProfile updates a user's display name and avatar.
	UpdateUserProfile(ctx context.Context, openID, nickname, avatarURL string) error

	// UpdateUserStats replaces a user's lifetime aggregate.
	UpdateUserStats(ctx context.Context, openID string, stats models.UserStats) error

	// CreateRoom persists a new room. ID, CreatedAt and Version are
	// populated by the store if unset.
	CreateRoom(ctx context.Context, room *models.Room) error

	// GetRoom retrieves a room by ID, including members and history.
	// Returns ErrNotFound if it does not exist.
	GetRoom(ctx context.Context, roomID string) (*models.Room, error)

	// GetActiveRoomByCode looks up an active room by invite code.
	// Returns ErrNotFound if no active room carries the code.
	GetActiveRoomByCode(ctx context.Context, code string) (*models.Room, error)

	// ActiveCodeInUse reports whether any active room uses the code.
	ActiveCodeInUse(ctx context.Context, code string) (bool, error)

	// ListRoomsByMember returns rooms the user is a member of, newest
	// first. An empty status matches all statuses.
	ListRoomsByMember(ctx context.Context, openID, status string) ([]*models.Room, error)

	// UpdateRoom rewrites the whole room document (members and history
	// together) conditional on room.Version matching the stored value.
	// On success the version is incremented, both in the database and on
	// the passed room. Returns ErrVersionConflict on a concurrent write.
	UpdateRoom(ctx context.Context, room *models.Room) error

	// CreateRecord persists a round record.
	CreateRecord(ctx context.Context, record *models.GameRecord) error

	// GetRecord retrieves a round record by ID.
	GetRecord(ctx context.Context, recordID string) (*models.GameRecord, error)

	// ListRecordsByRoom returns a room's records, highest round first.
	ListRecordsByRoom(ctx context.Context, roomID string) ([]*models.GameRecord, error)

	// DeleteRecord removes a round record.
	DeleteRecord(ctx context.Context, recordID string) error

	// GetFriend retrieves one opponent record. Returns (nil, nil) when the
	// pair has no history yet.
	GetFriend(ctx context.Context, ownerID, friendOpenID string) (*models.Friend, error)

	// SaveFriend inserts or replaces an opponent record keyed by
	// (owner, opponent).
	SaveFriend(ctx context.Context, friend *models.Friend) error

	// ListFriends returns a user's opponent records, most frequent first.
	ListFriends(ctx context.Context, ownerID string) ([]*models.Friend, error)

	// CreatePersonalRecord persists a freeform personal score sheet.
	CreatePersonalRecord(ctx context.Context, record *models.PersonalRecord) error

	// ListPersonalRecords returns a user's personal sheets, newest first.
	ListPersonalRecords(ctx context.Context, ownerID string) ([]*models.PersonalRecord, error)

	// Close releases any resources held by the store.
	Close() error
}
