/* store_interface.go
 * Contains the Store interface for dependency injection and testing
 */

package store

import "context"

// Interface defines the methods that Store implements.
// This allows for mocking in tests.
type Interface interface {
	ListEvents(ctx context.Context, body string, year int) ([]Event, error)
	GetEvent(ctx context.Context, eventID string) (Event, error)
	GetEventResults(ctx context.Context, eventID string) ([]map[string]interface{}, error)
	StoreEventResults(ctx context.Context, results EventResults) error
	UpsertFighterRecord(ctx context.Context, record FighterRecord) error
	GetFighterRecord(ctx context.Context, body string, year int, fighterKey string) (FighterRecord, error)
	GetFighterRecords(ctx context.Context, body string, year int) ([]FighterRecord, error)
	DeleteStaleFighterRecords(ctx context.Context, body string, year int, keep []string) (int64, error)
	StoreRunSummary(ctx context.Context, summary RunSummary) error

	// Getter methods for accessing fields
	GetDatabase() interface{ Name() string }
	GetClient() interface{ Disconnect(context.Context) error }
}

// Ensure Store implements Interface
var _ Interface = (*Store)(nil)

// GetDatabase returns the database instance
func (s *Store) GetDatabase() interface{ Name() string } {
	return s.Database
}

// GetClient returns the MongoDB client
func (s *Store) GetClient() interface{ Disconnect(context.Context) error } {
	return s.Client
}
