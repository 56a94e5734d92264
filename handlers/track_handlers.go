package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sthar2820/portfolio-website/analytics"
	"github.com/sthar2820/portfolio-website/metrics"
	"github.com/sthar2820/portfolio-website/models"
	"github.com/sthar2820/portfolio-website/utils"
)

const maxTrackBatch = 100

// EventSink is where accepted tracking events go. It is nil when no event
// store is configured.
type EventSink interface {
	InsertEvents(ctx context.Context, events []models.TrackedEvent) error
	CountEventsByName(ctx context.Context, since time.Time) ([]models.EventCount, error)
}

type TrackHandlers struct {
	Events  EventSink
	Metrics *metrics.Metrics
	now     func() time.Time
}

func NewTrackHandlers(events EventSink, m *metrics.Metrics) *TrackHandlers {
	return &TrackHandlers{Events: events, Metrics: m, now: time.Now}
}

type linkParams struct {
	LinkType models.LinkKind `json:"link_type"`
}

// Track accepts a batch of tracking events from the site. Unknown event names
// and link types reject the whole batch.
func (h *TrackHandlers) Track(c *gin.Context) {
	var incoming []models.TrackedEvent
	if err := c.ShouldBindJSON(&incoming); err != nil {
		log.Printf("Error binding incoming tracking JSON: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if len(incoming) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	if len(incoming) > maxTrackBatch {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Too many events in one batch"})
		return
	}

	now := h.now().UTC()
	for i := range incoming {
		event := &incoming[i]
		if !models.KnownEventNames[event.EventName] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown event name", "eventName": event.EventName})
			return
		}
		if event.EventName == models.EventExternalLinkClick {
			var p linkParams
			if len(event.Params) > 0 {
				if err := json.Unmarshal(event.Params, &p); err != nil {
					c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event params"})
					return
				}
			}
			if !models.ValidLinkKind(p.LinkType) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown link_type", "linkType": p.LinkType})
				return
			}
		}

		event.EventID = uuid.New().String()
		event.IPAddress = c.ClientIP()
		if event.UserAgent == "" {
			event.UserAgent = c.Request.UserAgent()
		}
		if event.Timestamp.IsZero() {
			event.Timestamp = now
		}
	}

	if h.Metrics != nil {
		for _, event := range incoming {
			h.Metrics.TrackedEventsTotal.WithLabelValues(event.EventName).Inc()
		}
	}

	if h.Events == nil {
		c.Status(http.StatusNoContent)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	if err := h.Events.InsertEvents(ctx, incoming); err != nil {
		log.Printf("ERROR: inserting tracking events into ClickHouse: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record tracking events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"accepted": len(incoming)})
}

// EventCounts returns per-event totals from the event store for the last
// ?days=N days.
func (h *TrackHandlers) EventCounts(c *gin.Context) {
	if h.Events == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Event store not configured"})
		return
	}

	days := utils.ParseDays(c.Query("days"), analytics.DefaultDays)
	since := h.now().UTC().Add(-time.Duration(days) * 24 * time.Hour)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	counts, err := h.Events.CountEventsByName(ctx, since)
	if err != nil {
		log.Printf("ERROR: getting event counts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve event counts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"days":   days,
		"since":  since.Format(time.RFC3339),
		"counts": counts,
	})
}
