package telemetry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/KevinAcruz/acru/internal/logger"

	"github.com/gin-gonic/gin"
)

// storeCallBudget bounds the store round trips of one request so a stalled
// presence store can never hang the caller.
const storeCallBudget = 5 * time.Second

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/api/telemetry/heartbeat", h.heartbeat)
	r.GET("/api/telemetry/summary", h.summary)
}

type heartbeatRequest struct {
	SessionID string `json:"sessionId"`
}

func (h *Handler) heartbeat(c *gin.Context) {
	if IsBotUserAgent(c.GetHeader("User-Agent")) {
		c.JSON(http.StatusAccepted, gin.H{"ignored": true, "reason": "bot"})
		return
	}

	var req heartbeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sessionId is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeCallBudget)
	defer cancel()

	err := h.service.Heartbeat(ctx, Beat{
		SessionID: req.SessionID,
		ClientIP:  c.ClientIP(),
		Geo:       resolveGeo(c.Request.Header),
	})

	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"ok": true})
	case errors.Is(err, ErrInvalidSession):
		c.JSON(http.StatusBadRequest, gin.H{"error": "sessionId is required"})
	case errors.Is(err, ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate_limited"})
	default:
		logger.Error("telemetry heartbeat failed", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "telemetry_heartbeat_unavailable"})
	}
}

func (h *Handler) summary(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), storeCallBudget)
	defer cancel()

	summary, err := h.service.Summary(ctx)
	if err != nil {
		logger.Error("telemetry summary failed", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "telemetry_unavailable"})
		return
	}

	c.JSON(http.StatusOK, summary)
}
