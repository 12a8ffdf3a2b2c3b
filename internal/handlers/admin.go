package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursebridge-backend/internal/platform/logger"
	"github.com/yungbote/coursebridge-backend/internal/services"
)

type AdminHandler struct {
	log     *logger.Logger
	sweeper *services.RetentionSweeper
}

func NewAdminHandler(log *logger.Logger, sweeper *services.RetentionSweeper) *AdminHandler {
	return &AdminHandler{
		log:     log.With("handler", "AdminHandler"),
		sweeper: sweeper,
	}
}

// TriggerSweep runs a retention sweep immediately instead of waiting for the
// next tick.
func (h *AdminHandler) TriggerSweep(c *gin.Context) {
	if err := h.sweeper.RunOnce(c.Request.Context()); err != nil {
		h.log.Error("Manual retention sweep failed", "error", err)
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"status": "completed"})
}
