package analytics

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sthar2820/portfolio-website/models"
	"github.com/sthar2820/portfolio-website/reporting"
)

const DefaultDays = 30

// Snapshot sources, reported to the Recorder.
const (
	SourceLive         = "live"
	SourceUnconfigured = "unconfigured"
	SourceFallback     = "fallback"
)

// ReportClient is the upstream half of the pipeline.
type ReportClient interface {
	ExchangeToken(ctx context.Context, assertion string) (string, error)
	FetchReports(ctx context.Context, token, propertyID string, days int) (reporting.Reports, error)
}

// Recorder observes where each snapshot came from and how long it took.
type Recorder interface {
	ObserveSnapshot(source string, elapsed time.Duration)
}

// Service runs the sign, exchange, fetch and normalize pipeline for each
// request. Credentials are checked on every call and nothing is cached.
type Service struct {
	creds      reporting.Credentials
	client     ReportClient
	normalizer *Normalizer
	projects   []string
	recorder   Recorder
	now        func() time.Time
}

func NewService(creds reporting.Credentials, client ReportClient, ownerName string, projects []string, recorder Recorder) *Service {
	return &Service{
		creds:      creds,
		client:     client,
		normalizer: NewNormalizer(ownerName, projects),
		projects:   projects,
		recorder:   recorder,
		now:        time.Now,
	}
}

// Snapshot always returns a well-formed Snapshot. Missing credentials and any
// upstream failure both yield the Fallback.
func (s *Service) Snapshot(ctx context.Context, days int) models.Snapshot {
	start := s.now()
	if days <= 0 {
		days = DefaultDays
	}

	if !s.creds.Configured() {
		s.observe(SourceUnconfigured, start)
		return Fallback(s.projects, s.now())
	}

	snap, err := s.fetch(ctx, days)
	if err != nil {
		log.Printf("ERROR: analytics pipeline failed, serving fallback: %v", err)
		s.observe(SourceFallback, start)
		return Fallback(s.projects, s.now())
	}

	s.observe(SourceLive, start)
	return snap
}

func (s *Service) fetch(ctx context.Context, days int) (models.Snapshot, error) {
	assertion, err := reporting.SignAssertion(s.creds.ClientEmail, s.creds.PrivateKey, s.now())
	if err != nil {
		return models.Snapshot{}, err
	}

	token, err := s.client.ExchangeToken(ctx, assertion)
	if err != nil {
		return models.Snapshot{}, err
	}

	reports, err := s.client.FetchReports(ctx, token, s.creds.PropertyID, days)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("fetching reports: %w", err)
	}

	log.Printf("Analytics reports fetched: %d page rows, %d event rows, %d user rows",
		len(reports.PageViews.Rows), len(reports.Events.Rows), len(reports.Users.Rows))
	return s.normalizer.Normalize(reports, s.now()), nil
}

func (s *Service) observe(source string, start time.Time) {
	if s.recorder != nil {
		s.recorder.ObserveSnapshot(source, s.now().Sub(start))
	}
}
