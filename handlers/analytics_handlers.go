package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sthar2820/portfolio-website/analytics"
	"github.com/sthar2820/portfolio-website/models"
	"github.com/sthar2820/portfolio-website/utils"
)

// SnapshotSource produces the dashboard snapshot. It never fails; problems
// upstream show up as an all-zero snapshot.
type SnapshotSource interface {
	Snapshot(ctx context.Context, days int) models.Snapshot
}

type AnalyticsHandlers struct {
	Source SnapshotSource
}

func NewAnalyticsHandlers(source SnapshotSource) *AnalyticsHandlers {
	return &AnalyticsHandlers{Source: source}
}

// GetAnalytics serves the dashboard snapshot for the last ?days=N days. It is
// registered for every method and answers 405 to anything but GET.
func (h *AnalyticsHandlers) GetAnalytics(c *gin.Context) {
	if c.Request.Method != http.MethodGet {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
		return
	}

	days := utils.ParseDays(c.Query("days"), analytics.DefaultDays)
	snap := h.Source.Snapshot(c.Request.Context(), days)

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, snap)
}
