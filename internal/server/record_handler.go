package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/junwei-lu/scoreroom/internal/models"
	"github.com/junwei-lu/scoreroom/internal/service"
)

type RecordHandler struct {
	records *service.RecordService
}

func NewRecordHandler(records *service.RecordService) *RecordHandler {
	return &RecordHandler{records: records}
}

type addRecordRequest struct {
	Scores []models.ScoreEntry `json:"scores" binding:"required"`
}

// AddRecord appends a round of score deltas to the room.
func (h *RecordHandler) AddRecord(c *gin.Context) {
	var req addRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.records.AddRecord(c.Request.Context(), c.Param("id"), sessionOpenID(c), req.Scores)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// ListRecords returns the room's rounds, most recent first.
func (h *RecordHandler) ListRecords(c *gin.Context) {
	records, err := h.records.ListRecords(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if records == nil {
		records = []*models.GameRecord{}
	}
	c.JSON(http.StatusOK, records)
}

// DeleteRecord removes a round and reverses its deltas.
func (h *RecordHandler) DeleteRecord(c *gin.Context) {
	if err := h.records.DeleteRecord(c.Request.Context(), c.Param("recordId"), sessionOpenID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AddPersonalRecord stores a freeform score sheet for the session user.
func (h *RecordHandler) AddPersonalRecord(c *gin.Context) {
	var record models.PersonalRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saved, err := h.records.AddPersonalRecord(c.Request.Context(), sessionOpenID(c), &record)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// ListPersonalRecords returns the session user's score sheets, newest first.
func (h *RecordHandler) ListPersonalRecords(c *gin.Context) {
	records, err := h.records.ListPersonalRecords(c.Request.Context(), sessionOpenID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if records == nil {
		records = []*models.PersonalRecord{}
	}
	c.JSON(http.StatusOK, records)
}
