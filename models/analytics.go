// models/analytics.go
package models

import "time"

// Page buckets every page-title row is classified into.
const (
	PageHome       = "Home"
	PageProjects   = "Projects"
	PageExperience = "Experience"
	PageBlog       = "Blog"
)

// PageBuckets is the fixed order of Snapshot.PageViews.
var PageBuckets = []string{PageHome, PageProjects, PageExperience, PageBlog}

// ExternalLink pairs a display label with the link kind whose clicks it counts.
type ExternalLink struct {
	Label string
	Kind  LinkKind
}

// ExternalLinks is the fixed order of Snapshot.ExternalClicks.
var ExternalLinks = []ExternalLink{
	{Label: "LinkedIn", Kind: LinkLinkedIn},
	{Label: "GitHub", Kind: LinkGitHub},
	{Label: "Email", Kind: LinkEmail},
	{Label: "Live Demo", Kind: LinkLiveDemo},
}

type PageViewCount struct {
	Page  string `json:"page"`
	Views int64  `json:"views"`
}

type ResumeStats struct {
	Opens     int64 `json:"opens"`
	Downloads int64 `json:"downloads"`
}

type ProjectViewCount struct {
	Title string `json:"title"`
	Views int64  `json:"views"`
}

type ExternalClickCount struct {
	Type   string `json:"type"`
	Clicks int64  `json:"clicks"`
}

// Snapshot is the normalized analytics document served by GET /api/analytics.
// Its fields and counter identities are fixed; only the numbers change.
type Snapshot struct {
	PageViews      []PageViewCount      `json:"pageViews"`
	ResumeStats    ResumeStats          `json:"resumeStats"`
	ProjectViews   []ProjectViewCount   `json:"projectViews"`
	ExternalClicks []ExternalClickCount `json:"externalClicks"`
	TotalVisitors  int64                `json:"totalVisitors"`
	LastUpdated    time.Time            `json:"lastUpdated"`
}
