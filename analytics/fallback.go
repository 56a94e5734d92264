package analytics

import (
	"time"

	"github.com/sthar2820/portfolio-website/models"
)

// Fallback returns the all-zero Snapshot served when live data is
// unavailable. It has exactly the shape Normalize produces.
func Fallback(projects []string, now time.Time) models.Snapshot {
	return newSnapshot(projects, now)
}

func newSnapshot(projects []string, now time.Time) models.Snapshot {
	snap := models.Snapshot{
		PageViews:      make([]models.PageViewCount, 0, len(models.PageBuckets)),
		ProjectViews:   make([]models.ProjectViewCount, 0, len(projects)),
		ExternalClicks: make([]models.ExternalClickCount, 0, len(models.ExternalLinks)),
		LastUpdated:    now.UTC(),
	}
	for _, page := range models.PageBuckets {
		snap.PageViews = append(snap.PageViews, models.PageViewCount{Page: page})
	}
	for _, title := range projects {
		snap.ProjectViews = append(snap.ProjectViews, models.ProjectViewCount{Title: title})
	}
	for _, link := range models.ExternalLinks {
		snap.ExternalClicks = append(snap.ExternalClicks, models.ExternalClickCount{Type: link.Label})
	}
	return snap
}
