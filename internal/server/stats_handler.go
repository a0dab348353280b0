package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/junwei-lu/scoreroom/internal/service"
)

type StatsHandler struct {
	stats *service.StatsService
}

func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Overall returns the session user's lifetime summary derived from settled
// rooms.
func (h *StatsHandler) Overall(c *gin.Context) {
	overall, err := h.stats.Overall(c.Request.Context(), sessionOpenID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, overall)
}

// Trend returns the cumulative per-day score series. The window comes from
// the days query parameter, defaulting to a week.
func (h *StatsHandler) Trend(c *gin.Context) {
	days, _ := strconv.Atoi(c.Query("days"))
	trend, err := h.stats.Trend(c.Request.Context(), sessionOpenID(c), days)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, trend)
}
