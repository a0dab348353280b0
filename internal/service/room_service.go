package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/junwei-lu/scoreroom/internal/invite"
	"github.com/junwei-lu/scoreroom/internal/ledger"
	"github.com/junwei-lu/scoreroom/internal/metrics"
	"github.com/junwei-lu/scoreroom/internal/models"
	"github.com/junwei-lu/scoreroom/internal/storage"
	"github.com/junwei-lu/scoreroom/internal/watch"
)

// maxWriteRetries bounds the read-modify-write retry loop used by every
// room mutation. Conflicts are rare (one room, a handful of players) so a
// small bound is plenty.
const maxWriteRetries = 3

var (
	ErrNotMember     = errors.New("you are not a member of this room")
	ErrTooManyWrites = errors.New("room is being updated concurrently, try again")
)

// CreateRoomInput carries the caller-provided room settings. Zero values
// fall back to defaults matching the classic score room.
type CreateRoomInput struct {
	RoomName       string
	GameType       string
	SettlementMode string
	BasePoint      int
	InitialMembers []models.Member
}

// RoomService implements the unprivileged room lifecycle: create, join,
// leave, read, and ledger mutations within a single room. Settlement is
// delegated to the privileged Settler.
type RoomService struct {
	store       storage.Store
	codes       *invite.Generator
	settler     Settler
	hub         *watch.Hub
	idleTimeout time.Duration
}

// NewRoomService creates a new RoomService.
func NewRoomService(store storage.Store, settler Settler, hub *watch.Hub, idleTimeout time.Duration) *RoomService {
	return &RoomService{
		store:       store,
		codes:       invite.NewGenerator(store.ActiveCodeInUse),
		settler:     settler,
		hub:         hub,
		idleTimeout: idleTimeout,
	}
}

// Create allocates a new active room owned by the user, with the creator as
// its first member at zero balance and a fresh invite code.
func (s *RoomService) Create(ctx context.Context, owner *models.User, in CreateRoomInput) (*models.Room, error) {
	if in.RoomName == "" {
		return nil, fmt.Errorf("room name must not be empty")
	}
	if in.GameType == "" {
		in.GameType = "majiang"
	}
	if in.SettlementMode == "" {
		in.SettlementMode = models.ModeScore
	}
	if in.BasePoint == 0 {
		in.BasePoint = 1
	}

	code, err := s.codes.Generate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate invite code: %w", err)
	}

	members := []models.Member{{
		OpenID:    owner.OpenID,
		Nickname:  owner.Nickname,
		AvatarURL: owner.AvatarURL,
		Role:      models.RoleCreator,
	}}
	for _, m := range in.InitialMembers {
		if m.OpenID == owner.OpenID {
			continue
		}
		members = append(members, models.Member{
			OpenID:    m.OpenID,
			Nickname:  m.Nickname,
			AvatarURL: m.AvatarURL,
			Role:      models.RoleMember,
		})
	}

	room := &models.Room{
		OwnerID:        owner.OpenID,
		RoomName:       in.RoomName,
		GameType:       in.GameType,
		SettlementMode: in.SettlementMode,
		BasePoint:      in.BasePoint,
		Status:         models.StatusActive,
		Members:        members,
		InviteCode:     code,
		BalanceHistory: []models.BalanceChange{},
	}
	if err := s.store.CreateRoom(ctx, room); err != nil {
		return nil, err
	}

	metrics.RoomsCreated.Inc()
	slog.Info("room created", "room_id", room.ID, "owner", owner.OpenID, "invite_code", code)
	return room, nil
}

// Join adds the user to the active room carrying the invite code. If the
// user is already a member the existing room is returned unchanged.
func (s *RoomService) Join(ctx context.Context, user *models.User, code string) (*models.Room, error) {
	for attempt := 0; ; attempt++ {
		room, err := s.store.GetActiveRoomByCode(ctx, code)
		if err != nil {
			return nil, err
		}

		if room.FindMember(user.OpenID) >= 0 {
			return room, nil
		}

		room.Members = append(room.Members, models.Member{
			OpenID:    user.OpenID,
			Nickname:  user.Nickname,
			AvatarURL: user.AvatarURL,
			Role:      models.RoleMember,
		})

		err = s.store.UpdateRoom(ctx, room)
		if err == nil {
			slog.Info("member joined room", "room_id", room.ID, "openid", user.OpenID)
			s.hub.Publish(room)
			return room, nil
		}
		if errors.Is(err, storage.ErrVersionConflict) && attempt < maxWriteRetries {
			metrics.TransferConflicts.Inc()
			continue
		}
		if errors.Is(err, storage.ErrVersionConflict) {
			return nil, ErrTooManyWrites
		}
		return nil, err
	}
}

// Get returns the room, first sweeping it into settlement if it has idled
// past the timeout or every member has already left. Reads double as the
// settlement sweep because no server-side timer owns room lifecycles.
func (s *RoomService) Get(ctx context.Context, roomID string) (*models.Room, error) {
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return s.sweepIfStale(ctx, room)
}

// ListMine returns the user's rooms, sweeping stale active rooms on the way.
// An empty status matches all statuses.
func (s *RoomService) ListMine(ctx context.Context, openID, status string) ([]*models.Room, error) {
	rooms, err := s.store.ListRoomsByMember(ctx, openID, status)
	if err != nil {
		return nil, err
	}
	for i, room := range rooms {
		swept, err := s.sweepIfStale(ctx, room)
		if err != nil {
			slog.Warn("idle sweep failed", "room_id", room.ID, "error", err)
			continue
		}
		rooms[i] = swept
	}
	return rooms, nil
}

// Leave flags the member as left, keeping their balance on the books. When
// the last active member leaves, settlement fires automatically.
func (s *RoomService) Leave(ctx context.Context, roomID, openID string) error {
	var room *models.Room
	for attempt := 0; ; attempt++ {
		var err error
		room, err = s.store.GetRoom(ctx, roomID)
		if err != nil {
			return err
		}
		if room.Status != models.StatusActive {
			return ledger.ErrRoomNotActive
		}
		idx := room.FindMember(openID)
		if idx < 0 {
			return ErrNotMember
		}

		room.Members[idx].Status = models.MemberLeft

		err = s.store.UpdateRoom(ctx, room)
		if err == nil {
			break
		}
		if errors.Is(err, storage.ErrVersionConflict) && attempt < maxWriteRetries {
			metrics.TransferConflicts.Inc()
			continue
		}
		if errors.Is(err, storage.ErrVersionConflict) {
			return ErrTooManyWrites
		}
		return err
	}

	slog.Info("member left room", "room_id", roomID, "openid", openID)
	s.hub.Publish(room)

	if room.AllLeft() {
		s.settle(ctx, roomID, "all_left")
	}
	return nil
}

// Transfer moves points between two members with a version-checked write,
// retrying the whole read-modify-write cycle on conflict.
func (s *RoomService) Transfer(ctx context.Context, roomID, fromOpenID, toOpenID string, amount float64) (*models.Room, error) {
	for attempt := 0; ; attempt++ {
		room, err := s.store.GetRoom(ctx, roomID)
		if err != nil {
			return nil, err
		}

		if _, err := ledger.Transfer(room, fromOpenID, toOpenID, amount); err != nil {
			return nil, err
		}

		err = s.store.UpdateRoom(ctx, room)
		if err == nil {
			metrics.TransfersTotal.Inc()
			s.hub.Publish(room)
			return room, nil
		}
		if errors.Is(err, storage.ErrVersionConflict) && attempt < maxWriteRetries {
			metrics.TransferConflicts.Inc()
			continue
		}
		if errors.Is(err, storage.ErrVersionConflict) {
			return nil, ErrTooManyWrites
		}
		return nil, err
	}
}

// Settle triggers settlement through the privileged path, falling back to
// the degraded status-only flip when it fails.
func (s *RoomService) Settle(ctx context.Context, roomID string) (*SettleResult, error) {
	result, err := s.settler.Settle(ctx, roomID)
	if err != nil {
		slog.Warn("privileged settlement failed, degrading to status flip",
			"room_id", roomID, "error", err)
		if err := s.ForceSettle(ctx, roomID); err != nil {
			return nil, err
		}
		metrics.RoomsSettled.WithLabelValues("degraded").Inc()
		return &SettleResult{Success: true, UpdatedUsers: 0}, nil
	}
	metrics.RoomsSettled.WithLabelValues("manual").Inc()
	s.publishRoom(ctx, roomID)
	return result, nil
}

// ForceSettle is the degraded fallback: it flips the room to settled without
// touching anyone's lifetime stats, leaving the aggregates inconsistent until
// a later recompute. Used when the privileged path is unreachable.
func (s *RoomService) ForceSettle(ctx context.Context, roomID string) error {
	for attempt := 0; ; attempt++ {
		room, err := s.store.GetRoom(ctx, roomID)
		if err != nil {
			return err
		}
		if room.Status == models.StatusSettled {
			return nil
		}
		room.Status = models.StatusSettled
		room.SettledAt = time.Now().Unix()

		err = s.store.UpdateRoom(ctx, room)
		if err == nil {
			s.hub.Publish(room)
			return nil
		}
		if errors.Is(err, storage.ErrVersionConflict) && attempt < maxWriteRetries {
			continue
		}
		return err
	}
}

// sweepIfStale settles an active room whose ledger has been quiet past the
// idle timeout, or whose members have all left, then returns the fresh
// document. Settlement here is idempotent so concurrent readers can race
// harmlessly.
func (s *RoomService) sweepIfStale(ctx context.Context, room *models.Room) (*models.Room, error) {
	if room.Status != models.StatusActive {
		return room, nil
	}

	idle := time.Since(time.Unix(room.LastActivity(), 0)) > s.idleTimeout
	if !idle && !room.AllLeft() {
		return room, nil
	}

	trigger := "idle"
	if room.AllLeft() {
		trigger = "all_left"
	}
	slog.Info("sweeping stale room into settlement", "room_id", room.ID, "trigger", trigger)
	s.settle(ctx, room.ID, trigger)
	return s.store.GetRoom(ctx, room.ID)
}

func (s *RoomService) settle(ctx context.Context, roomID, trigger string) {
	if _, err := s.settler.Settle(ctx, roomID); err != nil {
		slog.Warn("settlement failed, degrading to status flip",
			"room_id", roomID, "trigger", trigger, "error", err)
		if err := s.ForceSettle(ctx, roomID); err != nil {
			slog.Error("degraded settlement failed", "room_id", roomID, "error", err)
			return
		}
		metrics.RoomsSettled.WithLabelValues("degraded").Inc()
		return
	}
	metrics.RoomsSettled.WithLabelValues(trigger).Inc()
	s.publishRoom(ctx, roomID)
}

func (s *RoomService) publishRoom(ctx context.Context, roomID string) {
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return
	}
	s.hub.Publish(room)
}
