package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/junwei-lu/scoreroom/internal/models"
	"github.com/junwei-lu/scoreroom/internal/service"
	"github.com/junwei-lu/scoreroom/internal/storage"
)

type FriendHandler struct {
	friends *service.FriendService
}

func NewFriendHandler(friends *service.FriendService) *FriendHandler {
	return &FriendHandler{friends: friends}
}

// ListFriends returns the session user's opponent records, most frequent
// first.
func (h *FriendHandler) ListFriends(c *gin.Context) {
	friends, err := h.friends.List(c.Request.Context(), sessionOpenID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if friends == nil {
		friends = []*models.Friend{}
	}
	c.JSON(http.StatusOK, friends)
}

// GetFriend returns the record for one opponent.
func (h *FriendHandler) GetFriend(c *gin.Context) {
	friend, err := h.friends.Get(c.Request.Context(), sessionOpenID(c), c.Param("openid"))
	if err != nil {
		writeError(c, err)
		return
	}
	if friend == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": storage.ErrNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, friend)
}
