/* test_mocks.go
 * Contains mock structures for testing the API package and its consumers
 */

package api

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"fight-records/api/store"

	"go.mongodb.org/mongo-driver/mongo"
)

// MockStore implements store.Interface in memory. It is safe for the concurrent writes a run issues
type MockStore struct {
	mu sync.Mutex

	// Storage for mock data
	Events  []store.Event
	Results map[string][]map[string]interface{} // by event id
	Records map[string]store.FighterRecord      // by recordKey
	Runs    []store.RunSummary

	// Error injection for testing error paths
	ListEventsError        error
	GetEventResultsErrors  map[string]error // by event id
	UpsertErrors           map[string]error // by fighter key
	GetFighterRecordsError error
	StoreEventResultsError error
	StoreRunSummaryError   error
	DeleteStaleError       error

	UpsertCalls      int
	DeleteStaleCalls int

	Database interface{ Name() string }
}

// mockDatabase implements the minimal Database interface needed for tests
type mockDatabase struct {
	name string
}

func (m *mockDatabase) Name() string {
	return m.name
}

// NewMockStore creates an empty MockStore
func NewMockStore() *MockStore {
	return &MockStore{
		Results:               make(map[string][]map[string]interface{}),
		Records:               make(map[string]store.FighterRecord),
		GetEventResultsErrors: make(map[string]error),
		UpsertErrors:          make(map[string]error),
		Database:              &mockDatabase{name: "test_db"},
	}
}

func recordKey(body string, year int, fighterKey string) string {
	return fmt.Sprintf("%s/%d/%s", body, year, fighterKey)
}

// AddEvent registers an event and its raw results
func (m *MockStore) AddEvent(event store.Event, results ...map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	if results != nil {
		m.Results[event.EventID] = results
	}
}

// ListEvents mock implementation
func (m *MockStore) ListEvents(ctx context.Context, body string, year int) ([]store.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListEventsError != nil {
		return nil, m.ListEventsError
	}
	var events []store.Event
	for _, e := range m.Events {
		if e.SanctioningBody == body && e.Year == year {
			events = append(events, e)
		}
	}
	return events, nil
}

// GetEvent mock implementation
func (m *MockStore) GetEvent(ctx context.Context, eventID string) (store.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Events {
		if e.EventID == eventID {
			return e, nil
		}
	}
	return store.Event{}, mongo.ErrNoDocuments
}

// GetEventResults mock implementation
func (m *MockStore) GetEventResults(ctx context.Context, eventID string) ([]map[string]interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.GetEventResultsErrors[eventID]; err != nil {
		return nil, err
	}
	results, ok := m.Results[eventID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return results, nil
}

// StoreEventResults mock implementation
func (m *MockStore) StoreEventResults(ctx context.Context, results store.EventResults) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StoreEventResultsError != nil {
		return m.StoreEventResultsError
	}
	entries := make([]map[string]interface{}, 0, len(results.Results))
	for _, r := range results.Results {
		entries = append(entries, map[string]interface{}(r))
	}
	m.Results[results.EventID] = entries
	return nil
}

// UpsertFighterRecord mock implementation. Replaces the stored record, keeping its creation time
func (m *MockStore) UpsertFighterRecord(ctx context.Context, record store.FighterRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertCalls++
	if err := m.UpsertErrors[record.FighterKey]; err != nil {
		return err
	}
	key := recordKey(record.SanctioningBody, record.Year, record.FighterKey)
	if existing, ok := m.Records[key]; ok {
		record.CreatedAt = existing.CreatedAt
	}
	m.Records[key] = record
	return nil
}

// GetFighterRecord mock implementation
func (m *MockStore) GetFighterRecord(ctx context.Context, body string, year int, fighterKey string) (store.FighterRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.Records[recordKey(body, year, fighterKey)]
	if !ok {
		return store.FighterRecord{}, mongo.ErrNoDocuments
	}
	return record, nil
}

// GetFighterRecords mock implementation. Records are returned in key order
func (m *MockStore) GetFighterRecords(ctx context.Context, body string, year int) ([]store.FighterRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetFighterRecordsError != nil {
		return nil, m.GetFighterRecordsError
	}
	var records []store.FighterRecord
	for _, r := range m.Records {
		if r.SanctioningBody == body && r.Year == year {
			records = append(records, r)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].FighterKey < records[j].FighterKey
	})
	return records, nil
}

// DeleteStaleFighterRecords mock implementation. Removes the body year records whose key is not in keep
func (m *MockStore) DeleteStaleFighterRecords(ctx context.Context, body string, year int, keep []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteStaleCalls++
	if m.DeleteStaleError != nil {
		return 0, m.DeleteStaleError
	}
	kept := make(map[string]bool, len(keep))
	for _, k := range keep {
		kept[k] = true
	}
	var removed int64
	for key, record := range m.Records {
		if record.SanctioningBody == body && record.Year == year && !kept[record.FighterKey] {
			delete(m.Records, key)
			removed++
		}
	}
	return removed, nil
}

// StoreRunSummary mock implementation
func (m *MockStore) StoreRunSummary(ctx context.Context, summary store.RunSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StoreRunSummaryError != nil {
		return m.StoreRunSummaryError
	}
	m.Runs = append(m.Runs, summary)
	return nil
}

// GetDatabase returns the mock database
func (m *MockStore) GetDatabase() interface{ Name() string } {
	return m.Database
}

// mockClient implements minimal client interface
type mockClient struct{}

func (mc *mockClient) Disconnect(ctx context.Context) error {
	return nil
}

// GetClient returns a client whose Disconnect always succeeds
func (m *MockStore) GetClient() interface{ Disconnect(context.Context) error } {
	return &mockClient{}
}

var _ store.Interface = (*MockStore)(nil)

// MockFeed is a ResultsFetcher returning canned entries
type MockFeed struct {
	Entries []map[string]interface{}
	Err     error
	URLs    []string
}

// FetchResults records the url and returns the canned entries
func (f *MockFeed) FetchResults(ctx context.Context, url string) ([]map[string]interface{}, error) {
	f.URLs = append(f.URLs, url)
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Entries, nil
}

// RecordingNotifier keeps every summary it is given
type RecordingNotifier struct {
	mu        sync.Mutex
	Summaries []store.RunSummary
	Err       error
}

// NotifyRun records the summary and returns the configured error
func (n *RecordingNotifier) NotifyRun(ctx context.Context, summary store.RunSummary) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Summaries = append(n.Summaries, summary)
	return n.Err
}
