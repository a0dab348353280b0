// Package watch fans room updates out to websocket subscribers.
//
// Services publish the room document after every successful mutation; each
// subscriber holds a buffered channel and slow consumers are dropped rather
// than allowed to stall the publisher.
package watch

import (
	"log/slog"
	"sync"

	"github.com/junwei-lu/scoreroom/internal/metrics"
	"github.com/junwei-lu/scoreroom/internal/models"
)

const subscriberBuffer = 8

// Hub tracks subscribers per room.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[chan *models.Room]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[chan *models.Room]struct{})}
}

// Subscribe registers interest in a room and returns the update channel plus
// a cancel function. The channel closes when cancel is called.
func (h *Hub) Subscribe(roomID string) (<-chan *models.Room, func()) {
	ch := make(chan *models.Room, subscriberBuffer)

	h.mu.Lock()
	subs, ok := h.rooms[roomID]
	if !ok {
		subs = make(map[chan *models.Room]struct{})
		h.rooms[roomID] = subs
	}
	subs[ch] = struct{}{}
	h.mu.Unlock()
	metrics.WatchSubscribers.Inc()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if subs, ok := h.rooms[roomID]; ok {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(h.rooms, roomID)
				}
			}
			h.mu.Unlock()
			close(ch)
			metrics.WatchSubscribers.Dec()
		})
	}
	return ch, cancel
}

// Publish delivers the room snapshot to every subscriber. Subscribers whose
// buffer is full miss this update; they catch up on the next one.
func (h *Hub) Publish(room *models.Room) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.rooms[room.ID] {
		select {
		case ch <- room:
		default:
			slog.Debug("dropping room update for slow watcher", "room_id", room.ID)
		}
	}
}
