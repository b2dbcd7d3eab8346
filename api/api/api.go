/* api.go
 * This file contains the public methods for interacting with this package. Callers such as the web server and the
 * bot should go through the API rather than the store or logic packages directly
 */

package api

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"fight-records/api/logic"
	"fight-records/api/notify"
	"fight-records/api/shared"
	"fight-records/api/store"
	"fight-records/pkg/logger"
	"fight-records/pkg/metrics"
)

const defaultWriteConcurrency = 8

// API provides methods for aggregating and reading fighter records
type API struct {
	Store    store.Interface
	Feed     ResultsFetcher
	Notifier notify.Notifier
	Metrics  *metrics.Manager

	disciplines      map[string]shared.Discipline
	writeConcurrency int
	writesPerSecond  float64
	log              logger.Logger
}

// NewAPI connects to the database and creates a new API instance
// Preconditions: Receives a context, database name and mongo uri, both required
// Postconditions: Returns a connected API or an error if the store could not be initialised
func NewAPI(ctx context.Context, dbName string, mongoURI string, opts ...Option) (*API, error) {
	s, err := store.NewStore(ctx, dbName, mongoURI)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	return New(s, opts...), nil
}

// New creates an API around an existing store. Used by tests and by NewAPI
func New(s store.Interface, opts ...Option) *API {
	a := &API{
		Store:            s,
		Notifier:         notify.NoopNotifier{},
		disciplines:      map[string]shared.Discipline{},
		writeConcurrency: defaultWriteConcurrency,
		log:              logger.Named("api"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// GetFighterRecord fetches one fighter's record
// Preconditions: Receives a context, the sanctioning body, year and fighter identity key
// Postconditions: Returns the record, mongo.ErrNoDocuments if the fighter has no record that year, or another error
func (a *API) GetFighterRecord(ctx context.Context, body string, year int, fighterKey string) (store.FighterRecord, error) {
	body = normalizeBody(body)
	if body == "" || year <= 0 {
		return store.FighterRecord{}, ErrInvalidRequest
	}
	return a.Store.GetFighterRecord(ctx, body, year, strings.ToUpper(strings.TrimSpace(fighterKey)))
}

// GetRecords returns every record for a sanctioning body year ordered by wins descending, then losses ascending,
// then fighter key
func (a *API) GetRecords(ctx context.Context, body string, year int) ([]store.FighterRecord, error) {
	body = normalizeBody(body)
	if body == "" || year <= 0 {
		return nil, ErrInvalidRequest
	}
	records, err := a.Store.GetFighterRecords(ctx, body, year)
	if err != nil {
		return nil, err
	}
	SortRecords(records)
	return records, nil
}

// SearchFighters finds the records whose fighter name best matches query
func (a *API) SearchFighters(ctx context.Context, body string, year int, query string) ([]store.FighterRecord, error) {
	records, err := a.GetRecords(ctx, body, year)
	if err != nil {
		return nil, err
	}
	return logic.FindFighters(query, records), nil
}

// SortRecords orders records by wins descending, then losses ascending, then fighter key
func SortRecords(records []store.FighterRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Win != records[j].Win {
			return records[i].Win > records[j].Win
		}
		if records[i].Loss != records[j].Loss {
			return records[i].Loss < records[j].Loss
		}
		return records[i].FighterKey < records[j].FighterKey
	})
}

// DatabaseName returns the name of the backing database
func (a *API) DatabaseName() string {
	return a.Store.GetDatabase().Name()
}

// Close disconnects the backing store
func (a *API) Close(ctx context.Context) error {
	return a.Store.GetClient().Disconnect(ctx)
}

func normalizeBody(body string) string {
	return strings.ToUpper(strings.TrimSpace(body))
}
