// README: WhatsApp webhook receiver; dedupes redeliveries and acks. The agent lives elsewhere.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"colis/internal/notify"
)

type WebhookHandler struct {
	dedupe *notify.Dedupe
}

func NewWebhookHandler(dedupe *notify.Dedupe) *WebhookHandler {
	return &WebhookHandler{dedupe: dedupe}
}

type webhookReq struct {
	MessageID string `json:"message_id"`
}

// Receive acks every delivery; duplicates are flagged so downstream consumers
// never process the same message twice.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var req webhookReq
	if err := c.ShouldBindJSON(&req); err != nil || req.MessageID == "" {
		writeError(c, http.StatusBadRequest, "missing message_id")
		return
	}
	seen, err := h.dedupe.Seen(c.Request.Context(), req.MessageID)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"duplicate": seen})
}
