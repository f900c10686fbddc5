package intake

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"intake-backend/internal/shared/metrics"
	"intake-backend/internal/shared/server/respond"
	"intake-backend/internal/telegram"
)

// Handler receives webhook updates and feeds them to the engine.
type Handler struct {
	Engine *Engine
}

// NewHandler constructs a webhook handler.
func NewHandler(engine *Engine) *Handler {
	return &Handler{Engine: engine}
}

// RegisterRoutes attaches the webhook route at the given path.
func (h *Handler) RegisterRoutes(r *gin.Engine, path string) {
	r.POST(path, h.webhook)
}

func (h *Handler) webhook(c *gin.Context) {
	var upd telegram.Update
	if err := c.ShouldBindJSON(&upd); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_update", "malformed update payload", nil)
		return
	}

	c.Set("updateId", upd.UpdateID)
	if upd.Message != nil {
		c.Set("chatId", upd.Message.Chat.ID)
	} else if upd.CallbackQuery != nil && upd.CallbackQuery.Message != nil {
		c.Set("chatId", upd.CallbackQuery.Message.Chat.ID)
	}
	metrics.IncUpdatesReceived()

	// The transport redelivers on non-2xx; handler outcomes are reported to
	// the submitter in-band, so the webhook always acknowledges.
	h.Engine.HandleUpdate(c.Request.Context(), upd)
	respond.OK(c, gin.H{"ok": true})
}
