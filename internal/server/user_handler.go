package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/junwei-lu/scoreroom/internal/auth"
	"github.com/junwei-lu/scoreroom/internal/service"
)

type UserHandler struct {
	users      *service.UserService
	jwtManager *auth.JWTManager
}

func NewUserHandler(users *service.UserService, jwtManager *auth.JWTManager) *UserHandler {
	return &UserHandler{users: users, jwtManager: jwtManager}
}

type loginRequest struct {
	OpenID    string `json:"openid" binding:"required"`
	Secret    string `json:"secret" binding:"required"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatarUrl"`
}

// Login resolves the OpenID plus device secret to a session token, creating
// the profile on first contact.
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Login(c.Request.Context(), req.OpenID, req.Secret, req.Nickname, req.AvatarURL)
	if err != nil {
		writeError(c, err)
		return
	}

	token, err := h.jwtManager.Generate(user)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// GetProfile returns the session user's profile.
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.users.GetProfile(c.Request.Context(), sessionOpenID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type updateProfileRequest struct {
	Nickname  string `json:"nickname" binding:"required"`
	AvatarURL string `json:"avatarUrl"`
}

// UpdateProfile changes the session user's display name and avatar.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	openID := sessionOpenID(c)
	if err := h.users.UpdateProfile(c.Request.Context(), openID, req.Nickname, req.AvatarURL); err != nil {
		writeError(c, err)
		return
	}

	user, err := h.users.GetProfile(c.Request.Context(), openID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
