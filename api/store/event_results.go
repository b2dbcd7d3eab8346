/* event_results.go
 * Contains the methods for interacting with the event_results collection
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// GetEventResults returns the raw bout result entries stored for an event, in stored order.
// The entries are untyped documents, they should be passed through the normalizer before use
// Preconditions: Receives a context and the event id
// Postconditions: Returns the raw entries, mongo.ErrNoDocuments if the event has no results document, or another
// error if the lookup failed
func (s *Store) GetEventResults(ctx context.Context, eventID string) ([]map[string]interface{}, error) {
	var doc EventResults
	err := s.Collections.EventResults.FindOne(ctx, bson.M{"event_id": eventID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}
		return nil, fmt.Errorf("error fetching results for event %s: %w", eventID, err)
	}

	entries := make([]map[string]interface{}, 0, len(doc.Results))
	for _, r := range doc.Results {
		entries = append(entries, map[string]interface{}(r))
	}
	return entries, nil
}

// StoreEventResults inserts or replaces the results document for an event
// Preconditions: Receives a context and the EventResults to be stored, event id must be set
// Postconditions: Updates the event_results collection and returns nil, or an error if it occurs
func (s *Store) StoreEventResults(ctx context.Context, results EventResults) error {
	if results.EventID == "" {
		return fmt.Errorf("event results are missing an event id")
	}
	if results.UpdatedAt.IsZero() {
		results.UpdatedAt = time.Now().UTC()
	}

	// Attempt to find an existing document
	var raw bson.M
	filter := bson.M{"event_id": results.EventID}
	err := s.Collections.EventResults.FindOne(ctx, filter).Decode(&raw)
	notFound := errors.Is(err, mongo.ErrNoDocuments)

	if err != nil && !notFound {
		return fmt.Errorf("lookup for existing results failed: %w", err)
	}

	// Perform insert or update
	if notFound {
		if _, err := s.Collections.EventResults.InsertOne(ctx, results); err != nil {
			return fmt.Errorf("failed to insert event results: %w", err)
		}
		return nil
	}

	update := bson.M{"$set": results}
	if _, err = s.Collections.EventResults.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to update event results: %w", err)
	}
	return nil
}
