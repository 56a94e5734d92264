package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sthar2820/portfolio-website/database"
	"github.com/sthar2820/portfolio-website/models"
)

// EventStore mirrors client tracking events into ClickHouse.
type EventStore struct {
	DB *database.ClickHouseClient
}

func NewEventStore(chClient *database.ClickHouseClient) *EventStore {
	return &EventStore{DB: chClient}
}

func (s *EventStore) InsertEvents(ctx context.Context, events []models.TrackedEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO tracked_events (
			event_id, event_name, page_path, params, timestamp, user_agent, ip_address
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	for _, event := range events {
		params := string(event.Params)
		if params == "" {
			params = "{}"
		}
		err := batch.Append(
			event.EventID,
			event.EventName,
			event.PagePath,
			params,
			event.Timestamp,
			event.UserAgent,
			event.IPAddress,
		)
		if err != nil {
			log.Printf("Error appending event to batch (EventID: %s): %v", event.EventID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	log.Printf("Successfully inserted %d tracked events.", len(events))
	return nil
}

// CountEventsByName returns per-event totals since the given time. External
// link clicks are split by their link_type parameter using the same
// external_link_click_<kind> keys the dashboard reads.
func (s *EventStore) CountEventsByName(ctx context.Context, since time.Time) ([]models.EventCount, error) {
	query := `
		SELECT
			if(event_name = 'external_link_click' AND JSONExtractString(params, 'link_type') != '',
			   concat('external_link_click_', JSONExtractString(params, 'link_type')),
			   event_name) AS name,
			count() AS total
		FROM tracked_events
		WHERE timestamp >= ?
		GROUP BY name
		ORDER BY total DESC, name ASC
	`
	rows, err := s.DB.Conn.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query event counts: %w", err)
	}
	defer rows.Close()

	results := []models.EventCount{}
	for rows.Next() {
		var ec models.EventCount
		if err := rows.Scan(&ec.EventName, &ec.Count); err != nil {
			log.Printf("Error scanning row for event counts: %v", err)
			continue
		}
		results = append(results, ec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during event counts query: %w", err)
	}
	return results, nil
}
