// models/event.go
package models

import (
	"encoding/json"
	"time"
)

// Event names sent by the site's tracking snippet. The analytics normalizer
// reads counters back under these same names, so both ends import them from here.
const (
	EventPageView          = "page_view"
	EventResumeOpened      = "resume_opened"
	EventResumeDownloaded  = "resume_downloaded"
	EventProjectViewed     = "project_viewed"
	EventExternalLinkClick = "external_link_click"
	EventNavigationClick   = "navigation_click"
)

// LinkKind is the link_type parameter of an external_link_click event.
type LinkKind string

const (
	LinkGitHub        LinkKind = "github"
	LinkLinkedIn      LinkKind = "linkedin"
	LinkEmail         LinkKind = "email"
	LinkLiveDemo      LinkKind = "live_demo"
	LinkProjectGitHub LinkKind = "project_github"
)

// KnownEventNames lists every event name the tracking endpoint accepts.
var KnownEventNames = map[string]bool{
	EventPageView:          true,
	EventResumeOpened:      true,
	EventResumeDownloaded:  true,
	EventProjectViewed:     true,
	EventExternalLinkClick: true,
	EventNavigationClick:   true,
}

// ValidLinkKind reports whether k is one of the link kinds the site sends.
func ValidLinkKind(k LinkKind) bool {
	switch k {
	case LinkGitHub, LinkLinkedIn, LinkEmail, LinkLiveDemo, LinkProjectGitHub:
		return true
	default:
		return false
	}
}

// ExternalClickKey is the primary reporting key for an external link click of
// the given kind, e.g. "external_link_click_github".
func ExternalClickKey(k LinkKind) string {
	return EventExternalLinkClick + "_" + string(k)
}

// TrackedEvent is a single tracking event mirrored into the event store.
type TrackedEvent struct {
	EventID   string          `json:"eventId"`
	EventName string          `json:"eventName"`
	PagePath  string          `json:"pagePath"`
	Params    json.RawMessage `json:"params,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	UserAgent string          `json:"userAgent"`
	IPAddress string          `json:"ipAddress"`
}

// EventCount is one row of the event-count breakdown.
type EventCount struct {
	EventName string `json:"eventName"`
	Count     uint64 `json:"count"`
}
