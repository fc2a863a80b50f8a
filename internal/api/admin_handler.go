package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"habitpact/pkg/outbox"
)

// AdminHandler exposes operational endpoints for the outbox: inspecting
// parked events and replaying them onto the exchange.
type AdminHandler struct {
	replay     *outbox.ReplayService
	outboxRepo *outbox.Repository
}

func NewAdminHandler(replay *outbox.ReplayService, outboxRepo *outbox.Repository) *AdminHandler {
	return &AdminHandler{replay: replay, outboxRepo: outboxRepo}
}

func (h *AdminHandler) ListFailedEvents(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	events, err := h.outboxRepo.GetFailedEvents(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if events == nil {
		events = []*outbox.Event{}
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *AdminHandler) ReplayEvent(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid event id")
		return
	}

	if err := h.replay.ReplayEvent(c.Request.Context(), eventID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"replayed": eventID})
}

func (h *AdminHandler) ReplayFailedEvents(c *gin.Context) {
	count, err := h.replay.ReplayFailedEvents(c.Request.Context(), 100)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"replayed": count})
}
