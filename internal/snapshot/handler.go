package snapshot

import (
	"net/http"

	"github.com/KevinAcruz/acru/internal/logger"

	"github.com/gin-gonic/gin"
)

// defaultHistoryLimit covers 24h of 15-minute snapshots.
const defaultHistoryLimit = 96

type Handler struct {
	repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/api/telemetry/history", h.history)
}

func (h *Handler) history(c *gin.Context) {
	snapshots, err := h.repo.Recent(c.Request.Context(), defaultHistoryLimit)
	if err != nil {
		logger.Error("telemetry history failed", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history_unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"snapshots": snapshots})
}
