package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// OutboxReplayer resets a dead outbox event so the dispatcher picks it
// up again. The outbox repository satisfies it.
type OutboxReplayer interface {
	ReplayEvent(ctx context.Context, eventID int64) error
}

// AdminHandler exposes operator-only maintenance endpoints.
type AdminHandler struct {
	outbox OutboxReplayer
}

func NewAdminHandler(outbox OutboxReplayer) *AdminHandler {
	return &AdminHandler{outbox: outbox}
}

// ReplayOutboxEvent handles POST /api/admin/outbox/:id/replay. Used
// after inspecting a DLQ'd or failed event to queue it for redelivery.
func (h *AdminHandler) ReplayOutboxEvent(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	if err := h.outbox.ReplayEvent(c.Request.Context(), eventID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to replay event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Event queued for redelivery",
		"event_id": eventID,
	})
}
