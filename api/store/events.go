/* events.go
 * Contains the methods for interacting with the events collection
 */

package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListEvents returns every event sanctioned by body in year, oldest first
// Preconditions: Receives a context, the sanctioning body and year
// Postconditions: Returns slice of events (empty if there are none), or an error if the lookup failed
func (s *Store) ListEvents(ctx context.Context, body string, year int) ([]Event, error) {
	filter := bson.D{
		{Key: "sanctioning_body", Value: body},
		{Key: "year", Value: year},
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "event_id", Value: 1}})

	cursor, err := s.Collections.Events.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching events from db: %w", err)
	}

	var events []Event
	if err = cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("error unpacking cursor into slice of events: %w", err)
	}
	return events, nil
}

// GetEvent returns a single event by its id. mongo.ErrNoDocuments is returned unwrapped when it does not exist
func (s *Store) GetEvent(ctx context.Context, eventID string) (Event, error) {
	var event Event
	err := s.Collections.Events.FindOne(ctx, bson.M{"event_id": eventID}).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Event{}, err
		}
		return Event{}, fmt.Errorf("error fetching event from db: %w", err)
	}
	return event, nil
}
