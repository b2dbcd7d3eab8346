/* import.go
 * Contains the importer that pulls an event's results from its upstream feed into the event_results collection
 */

package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fight-records/api/store"
	"fight-records/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
)

// ImportEventResults downloads an event's results and stores them as the event's results document, replacing any
// previous import. The raw entries are stored as received; they are normalized when a run reads them
// Preconditions: Receives a context, the event id and an optional feed url. An empty url uses the event's results_url
// Postconditions: Returns the number of entries stored, mongo.ErrNoDocuments if the event is unknown, or another error
func (a *API) ImportEventResults(ctx context.Context, eventID string, feedURL string) (int, error) {
	if a.Feed == nil {
		return 0, fmt.Errorf("no results feed configured")
	}

	event, err := a.Store.GetEvent(ctx, eventID)
	if err != nil {
		return 0, err
	}

	url := strings.TrimSpace(feedURL)
	if url == "" {
		url = event.ResultsURL
	}
	if url == "" {
		return 0, ErrNoFeedURL
	}

	raws, err := a.Feed.FetchResults(ctx, url)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch results for event %s: %w", eventID, err)
	}

	results := make([]bson.M, 0, len(raws))
	for _, raw := range raws {
		results = append(results, bson.M(raw))
	}

	err = a.Store.StoreEventResults(ctx, store.EventResults{
		EventID:         event.EventID,
		SanctioningBody: event.SanctioningBody,
		Year:            event.Year,
		Results:         results,
		UpdatedAt:       time.Now().UTC(),
	})
	if err != nil {
		return 0, err
	}

	a.Metrics.RecordEventImported()
	a.log.Info(ctx, "event_results_imported", logger.String("event_id", eventID), logger.Int("entries", len(results)))
	return len(results), nil
}
