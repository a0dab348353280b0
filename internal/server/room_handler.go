package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/junwei-lu/scoreroom/internal/models"
	"github.com/junwei-lu/scoreroom/internal/service"
)

type RoomHandler struct {
	rooms *service.RoomService
	users *service.UserService
}

func NewRoomHandler(rooms *service.RoomService, users *service.UserService) *RoomHandler {
	return &RoomHandler{rooms: rooms, users: users}
}

type createRoomRequest struct {
	RoomName       string          `json:"roomName" binding:"required"`
	GameType       string          `json:"gameType"`
	SettlementMode string          `json:"settlementMode"`
	BasePoint      int             `json:"basePoint"`
	InitialMembers []models.Member `json:"initialMembers"`
}

// CreateRoom opens a new room owned by the session user.
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	owner, err := h.users.GetProfile(c.Request.Context(), sessionOpenID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	room, err := h.rooms.Create(c.Request.Context(), owner, service.CreateRoomInput{
		RoomName:       req.RoomName,
		GameType:       req.GameType,
		SettlementMode: req.SettlementMode,
		BasePoint:      req.BasePoint,
		InitialMembers: req.InitialMembers,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

type joinRoomRequest struct {
	InviteCode string `json:"inviteCode" binding:"required"`
}

// JoinRoom adds the session user to the room behind an invite code.
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	var req joinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.GetProfile(c.Request.Context(), sessionOpenID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	room, err := h.rooms.Join(c.Request.Context(), user, req.InviteCode)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// GetRoom returns one room. Reading an idle room may settle it first.
func (h *RoomHandler) GetRoom(c *gin.Context) {
	room, err := h.rooms.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// ListRooms returns the session user's rooms, optionally filtered by status.
func (h *RoomHandler) ListRooms(c *gin.Context) {
	rooms, err := h.rooms.ListMine(c.Request.Context(), sessionOpenID(c), c.Query("status"))
	if err != nil {
		writeError(c, err)
		return
	}
	if rooms == nil {
		rooms = []*models.Room{}
	}
	c.JSON(http.StatusOK, rooms)
}

// LeaveRoom flags the session user as left.
func (h *RoomHandler) LeaveRoom(c *gin.Context) {
	if err := h.rooms.Leave(c.Request.Context(), c.Param("id"), sessionOpenID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type transferRequest struct {
	ToOpenID string  `json:"toOpenid" binding:"required"`
	Amount   float64 `json:"amount" binding:"required"`
}

// Transfer moves points from the session user to another member.
func (h *RoomHandler) Transfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.rooms.Transfer(c.Request.Context(), c.Param("id"), sessionOpenID(c), req.ToOpenID, req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// Settle finalizes the room through the privileged settlement path. Routed
// behind the settle key, not the user session.
func (h *RoomHandler) Settle(c *gin.Context) {
	result, err := h.rooms.Settle(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
