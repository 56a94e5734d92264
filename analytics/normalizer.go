// Package analytics turns raw report payloads into the fixed-shape Snapshot
// the admin dashboard reads, and falls back to an all-zero Snapshot whenever
// live data cannot be had.
package analytics

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sthar2820/portfolio-website/models"
	"github.com/sthar2820/portfolio-website/reporting"
)

// pageRule assigns a lower-cased page title to bucket when match is true.
type pageRule struct {
	bucket string
	match  func(title string) bool
}

func containsRule(bucket, keyword string) pageRule {
	return pageRule{bucket: bucket, match: func(title string) bool {
		return strings.Contains(title, keyword)
	}}
}

// Normalizer classifies page titles and maps event counts onto a Snapshot.
type Normalizer struct {
	rules    []pageRule
	projects []string
}

// NewNormalizer builds the page rules for a site owned by ownerName. Rules
// are evaluated in order and the first match wins, so a title such as
// "Home | Projects" lands in Home.
func NewNormalizer(ownerName string, projects []string) *Normalizer {
	owner := strings.ToLower(ownerName)
	return &Normalizer{
		projects: projects,
		rules: []pageRule{
			{bucket: models.PageHome, match: func(title string) bool {
				// Bare titles without the " | Section" suffix are the landing page.
				return strings.Contains(title, "home") ||
					title == owner ||
					title == "/" ||
					!strings.Contains(title, "|")
			}},
			containsRule(models.PageProjects, "project"),
			containsRule(models.PageExperience, "experience"),
			containsRule(models.PageBlog, "blog"),
		},
	}
}

// Classify returns the bucket for a raw page title, or false when no rule
// matches. Unmatched titles are not counted anywhere.
func (n *Normalizer) Classify(pageTitle string) (string, bool) {
	title := strings.ToLower(pageTitle)
	for _, rule := range n.rules {
		if rule.match(title) {
			return rule.bucket, true
		}
	}
	return "", false
}

// Normalize builds a Snapshot from the three raw reports. It never fails:
// missing rows, missing fields and unparsable numbers all count as zero.
func (n *Normalizer) Normalize(r reporting.Reports, now time.Time) models.Snapshot {
	snap := newSnapshot(n.projects, now)

	views := make(map[string]int64, len(models.PageBuckets))
	for _, row := range r.PageViews.Rows {
		if len(row.DimensionValues) == 0 {
			continue
		}
		bucket, ok := n.Classify(row.Dimension(0))
		if !ok {
			continue
		}
		views[bucket] += parseCount(row.Metric(0))
	}
	for i := range snap.PageViews {
		snap.PageViews[i].Views = views[snap.PageViews[i].Page]
	}

	events := flattenEvents(r.Events)
	snap.ResumeStats = models.ResumeStats{
		Opens:     events[models.EventResumeOpened],
		Downloads: events[models.EventResumeDownloaded],
	}
	// project_viewed carries no per-project dimension in this query, so the
	// whole count goes to the primary (first) project.
	if len(snap.ProjectViews) > 0 {
		snap.ProjectViews[0].Views = events[models.EventProjectViewed]
	}
	for i, link := range models.ExternalLinks {
		snap.ExternalClicks[i].Clicks = firstNonZero(events, models.ExternalClickKey(link.Kind), string(link.Kind))
	}

	if len(r.Users.Rows) > 0 {
		snap.TotalVisitors = parseCount(r.Users.Rows[0].Metric(0))
	}
	return snap
}

// flattenEvents maps event name to count. A later row for the same name
// replaces an earlier one.
func flattenEvents(r reporting.Report) map[string]int64 {
	events := make(map[string]int64, len(r.Rows))
	for _, row := range r.Rows {
		name := row.Dimension(0)
		if name == "" {
			continue
		}
		events[name] = parseCount(row.Metric(0))
	}
	return events
}

func firstNonZero(events map[string]int64, keys ...string) int64 {
	for _, k := range keys {
		if v := events[k]; v != 0 {
			return v
		}
	}
	return 0
}

// parseCount reads a numeric-as-string metric value. Anything unparsable,
// negative or beyond int64 is 0.
func parseCount(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0
		}
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f < 0 || f >= math.MaxInt64 {
		return 0
	}
	return int64(f)
}
