/* store.go
 * Contains the store struct and NewStore function. The methods for this package are split by collection:
 * events, event_results, fighter_records and record_runs. Each of these files contain methods for interacting with
 * that part of the database
 */

package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	EventsCollection         = "events"
	EventResultsCollection   = "event_results"
	FighterRecordsCollection = "fighter_records"
	RecordRunsCollection     = "record_runs"
)

// Collections groups the collection handles used by the store
type Collections struct {
	Events         *mongo.Collection
	EventResults   *mongo.Collection
	FighterRecords *mongo.Collection
	RecordRuns     *mongo.Collection
}

type Store struct {
	Client      *mongo.Client
	Database    *mongo.Database
	Collections Collections
}

// NewStore connects to mongo and binds the collections used by the record pipeline.
// Preconditions: Receives a context, the database name and mongo connection uri
// Postconditions: Returns pointer to the Store object, or error if it occurs
func NewStore(ctx context.Context, dbName string, mongoURI string) (*Store, error) {
	if dbName == "" || mongoURI == "" {
		return nil, fmt.Errorf("dbName and mongoURI cannot be empty")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	return newStoreFromClient(client, dbName), nil
}

func newStoreFromClient(client *mongo.Client, dbName string) *Store {
	db := client.Database(dbName)
	return &Store{
		Client:   client,
		Database: db,
		Collections: Collections{
			Events:         db.Collection(EventsCollection),
			EventResults:   db.Collection(EventResultsCollection),
			FighterRecords: db.Collection(FighterRecordsCollection),
			RecordRuns:     db.Collection(RecordRunsCollection),
		},
	}
}
