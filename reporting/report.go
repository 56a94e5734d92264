package reporting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/sync/errgroup"
)

type dateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type field struct {
	Name string `json:"name"`
}

// ReportRequest is the runReport body. Row limits are left to the server.
type ReportRequest struct {
	DateRanges []dateRange `json:"dateRanges"`
	Dimensions []field     `json:"dimensions,omitempty"`
	Metrics    []field     `json:"metrics"`
}

func lastDays(days int) []dateRange {
	return []dateRange{{StartDate: fmt.Sprintf("%ddaysAgo", days), EndDate: "today"}}
}

func PageViewsQuery(days int) ReportRequest {
	return ReportRequest{
		DateRanges: lastDays(days),
		Dimensions: []field{{Name: "pageTitle"}},
		Metrics:    []field{{Name: "screenPageViews"}},
	}
}

func EventsQuery(days int) ReportRequest {
	return ReportRequest{
		DateRanges: lastDays(days),
		Dimensions: []field{{Name: "eventName"}},
		Metrics:    []field{{Name: "eventCount"}},
	}
}

func TotalUsersQuery(days int) ReportRequest {
	return ReportRequest{
		DateRanges: lastDays(days),
		Metrics:    []field{{Name: "totalUsers"}},
	}
}

func (c *Client) reportURL(propertyID string) string {
	return fmt.Sprintf("%s/v1beta/properties/%s:runReport", c.baseURL, url.PathEscape(propertyID))
}

// RunReport issues a single report query with the bearer token.
func (c *Client) RunReport(ctx context.Context, token, propertyID string, q ReportRequest) (Report, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	body, err := json.Marshal(q)
	if err != nil {
		return Report{}, fmt.Errorf("failed to encode report request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.reportURL(propertyID), bytes.NewReader(body))
	if err != nil {
		return Report{}, fmt.Errorf("failed to build report request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	var report Report
	if err := c.do(req, &report); err != nil {
		return Report{}, err
	}
	return report, nil
}

// FetchReports runs the page-view, event and total-user queries concurrently
// and returns once all three are in. The first failure cancels the others.
func (c *Client) FetchReports(ctx context.Context, token, propertyID string, days int) (Reports, error) {
	var reports Reports
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r, err := c.RunReport(gctx, token, propertyID, PageViewsQuery(days))
		if err != nil {
			return fmt.Errorf("page views report: %w", err)
		}
		reports.PageViews = r
		return nil
	})
	g.Go(func() error {
		r, err := c.RunReport(gctx, token, propertyID, EventsQuery(days))
		if err != nil {
			return fmt.Errorf("events report: %w", err)
		}
		reports.Events = r
		return nil
	})
	g.Go(func() error {
		r, err := c.RunReport(gctx, token, propertyID, TotalUsersQuery(days))
		if err != nil {
			return fmt.Errorf("total users report: %w", err)
		}
		reports.Users = r
		return nil
	})

	if err := g.Wait(); err != nil {
		return Reports{}, err
	}
	return reports, nil
}
