package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/junwei-lu/scoreroom/internal/auth"
	"github.com/junwei-lu/scoreroom/internal/ledger"
	"github.com/junwei-lu/scoreroom/internal/service"
	"github.com/junwei-lu/scoreroom/internal/storage"
)

// writeError maps domain errors onto HTTP status codes. Anything unmapped is
// a 500 with a generic message so internals never leak to clients.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrInvalidSecret),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotMember):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrTooManyWrites),
		errors.Is(err, ledger.ErrRoomNotActive):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrWeakSecret),
		errors.Is(err, service.ErrNoScores),
		errors.Is(err, ledger.ErrMemberNotFound),
		errors.Is(err, ledger.ErrMemberLeft),
		errors.Is(err, ledger.ErrSelfTransfer),
		errors.Is(err, ledger.ErrNonPositiveAmount),
		errors.Is(err, ledger.ErrNonIntegerAmount),
		errors.Is(err, ledger.ErrInsufficientBalance):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
