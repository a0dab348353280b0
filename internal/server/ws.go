package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/junwei-lu/scoreroom/internal/auth"
	"github.com/junwei-lu/scoreroom/internal/service"
	"github.com/junwei-lu/scoreroom/internal/watch"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const writeTimeout = 10 * time.Second

// WatchHandler streams room snapshots to websocket clients. Each successful
// mutation publishes the full room document; the socket just relays them.
type WatchHandler struct {
	rooms      *service.RoomService
	hub        *watch.Hub
	jwtManager *auth.JWTManager
}

func NewWatchHandler(rooms *service.RoomService, hub *watch.Hub, jwtManager *auth.JWTManager) *WatchHandler {
	return &WatchHandler{rooms: rooms, hub: hub, jwtManager: jwtManager}
}

// Watch upgrades the connection and forwards room updates until the client
// disconnects. Browsers cannot set headers on websocket dials, so the token
// rides in the query string.
func (h *WatchHandler) Watch(c *gin.Context) {
	claims, err := h.jwtManager.Validate(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidToken.Error()})
		return
	}

	roomID := c.Param("id")
	room, err := h.rooms.Get(c.Request.Context(), roomID)
	if err != nil {
		writeError(c, err)
		return
	}
	if room.FindMember(claims.OpenID) < 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": service.ErrNotMember.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "room_id", roomID, "error", err)
		return
	}

	updates, cancel := h.hub.Subscribe(roomID)
	defer cancel()
	defer conn.Close()

	// Reader goroutine: we never expect client messages, but reading is how
	// close frames and dead peers are noticed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Initial snapshot so the client doesn't wait for the first mutation.
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(room); err != nil {
		return
	}

	for {
		select {
		case <-done:
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(update); err != nil {
				slog.Debug("watcher write failed", "room_id", roomID, "error", err)
				return
			}
		}
	}
}
