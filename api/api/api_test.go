/* api_test.go
 * Contains unit tests for the public API methods
 */

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"fight-records/api/shared"
	"fight-records/api/store"
	"fight-records/pkg/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	janeKey = "JANEDOE02012000"
	amyKey  = "AMYLEE06052001"
)

func raw(first, last, dob, result string, bout int) map[string]interface{} {
	return map[string]interface{}{
		"first":  first,
		"last":   last,
		"dob":    dob,
		"result": result,
		"mat":    int32(1),
		"bout":   int32(bout),
		"gym":    "tiger gym",
	}
}

func aauEvent(id string) store.Event {
	return store.Event{EventID: id, SanctioningBody: "AAU", Year: 2024}
}

// region NewAPI tests

func TestNewAPI_MissingParameters(t *testing.T) {
	_, err := NewAPI(context.Background(), "", "")
	assert.Error(t, err)
}

func TestNew_Defaults(t *testing.T) {
	a := New(NewMockStore())
	assert.Equal(t, defaultWriteConcurrency, a.writeConcurrency)
	assert.NotNil(t, a.Notifier)
	assert.Equal(t, "test_db", a.DatabaseName())
	assert.NoError(t, a.Close(context.Background()))
}

// endregion

// region CalculateAllFighterRecords tests

func TestCalculate_TwoBoutsOneFighter(t *testing.T) {
	s := NewMockStore()
	s.AddEvent(aauEvent("ev-1"),
		raw("jane", "doe", "01/02/2000", "W", 1),
		raw("JANE", "DOE", "01/02/2000", "L", 2),
	)
	a := New(s)

	summary, err := a.CalculateAllFighterRecords(context.Background(), "aau", 2024)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.FightersProcessed)
	assert.Equal(t, 1, summary.FightersWritten)
	assert.Equal(t, 0, summary.FightersFailed)
	assert.Empty(t, summary.Failures)

	record, err := a.GetFighterRecord(context.Background(), "AAU", 2024, janeKey)
	require.NoError(t, err)
	assert.Equal(t, 1, record.Win)
	assert.Equal(t, 1, record.Loss)
	assert.Equal(t, 1, record.PMTWin)
	assert.Equal(t, 1, record.PMTLoss)
	assert.Equal(t, "TIGER GYM", record.Gym)
}

func TestCalculate_CreditIgnored(t *testing.T) {
	s := NewMockStore()
	s.AddEvent(aauEvent("ev-1"),
		raw("jane", "doe", "01/02/2000", "credit", 1),
		raw("jane", "doe", "01/02/2000", "W", 2),
	)
	a := New(s)

	summary, err := a.CalculateAllFighterRecords(context.Background(), "AAU", 2024)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Credits)
	record, err := a.GetFighterRecord(context.Background(), "AAU", 2024, janeKey)
	require.NoError(t, err)
	assert.Equal(t, 1, record.Win)
	assert.Equal(t, 0, record.Loss+record.NC+record.DQ+record.MMAWin+record.BoxingWin)
}

func TestCalculate_Idempotent(t *testing.T) {
	s := NewMockStore()
	s.AddEvent(aauEvent("ev-1"),
		raw("jane", "doe", "01/02/2000", "W", 1),
		raw("amy", "lee", "05/06/2001", "L", 1),
	)
	s.AddEvent(aauEvent("ev-2"),
		raw("jane", "doe", "01/02/2000", "DQ", 1),
		raw("amy", "lee", "05/06/2001", "NC", 2),
	)
	a := New(s)
	ctx := context.Background()

	_, err := a.CalculateAllFighterRecords(ctx, "AAU", 2024)
	require.NoError(t, err)
	first, err := a.GetRecords(ctx, "AAU", 2024)
	require.NoError(t, err)

	_, err = a.CalculateAllFighterRecords(ctx, "AAU", 2024)
	require.NoError(t, err)
	second, err := a.GetRecords(ctx, "AAU", 2024)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 4, s.UpsertCalls)
	assert.Len(t, s.Runs, 2)
}

func TestCalculate_PartialFailureIsolated(t *testing.T) {
	s := NewMockStore()
	s.AddEvent(aauEvent("ev-1"),
		raw("jane", "doe", "01/02/2000", "W", 1),
		raw("amy", "lee", "05/06/2001", "L", 1),
	)
	s.UpsertErrors[amyKey] = errors.New("write timeout")
	a := New(s, WithWriteConcurrency(2))

	summary, err := a.CalculateAllFighterRecords(context.Background(), "AAU", 2024)

	require.NoError(t, err)
	assert.Equal(t, 2, summary.FightersProcessed)
	assert.Equal(t, 1, summary.FightersWritten)
	assert.Equal(t, 1, summary.FightersFailed)
	assert.Equal(t, []store.WriteFailure{{FighterKey: amyKey, Reason: "write timeout"}}, summary.Failures)

	_, err = a.GetFighterRecord(context.Background(), "AAU", 2024, janeKey)
	assert.NoError(t, err)
}

func TestCalculate_ManyFightersConcurrently(t *testing.T) {
	s := NewMockStore()
	var entries []map[string]interface{}
	for i := 1; i <= 28; i++ {
		entries = append(entries, raw("fighter", fmt.Sprintf("l%02d", i), "01/02/2000", "W", i))
	}
	s.AddEvent(aauEvent("ev-1"), entries...)
	s.UpsertErrors["FIGHTERL0302012000"] = errors.New("boom")
	s.UpsertErrors["FIGHTERL0202012000"] = errors.New("boom")
	a := New(s, WithWriteConcurrency(4), WithWritesPerSecond(0))

	summary, err := a.CalculateAllFighterRecords(context.Background(), "AAU", 2024)

	require.NoError(t, err)
	assert.Equal(t, 28, summary.FightersProcessed)
	assert.Equal(t, 26, summary.FightersWritten)
	require.Len(t, summary.Failures, 2)
	assert.Equal(t, "FIGHTERL0202012000", summary.Failures[0].FighterKey)
	assert.Equal(t, "FIGHTERL0302012000", summary.Failures[1].FighterKey)
	assert.Len(t, s.Records, 26)
}

func TestCalculate_SkipsUnreadableEvents(t *testing.T) {
	s := NewMockStore()
	s.AddEvent(aauEvent("ev-1"), raw("jane", "doe", "01/02/2000", "W", 1))
	s.AddEvent(aauEvent("ev-2")) // no results document
	s.AddEvent(aauEvent("ev-3"), raw("jane", "doe", "01/02/2000", "W", 1))
	s.GetEventResultsErrors["ev-3"] = errors.New("connection reset")
	a := New(s)

	summary, err := a.CalculateAllFighterRecords(context.Background(), "AAU", 2024)

	require.NoError(t, err)
	assert.Equal(t, 3, summary.EventsSeen)
	assert.Equal(t, 2, summary.EventsSkipped)
	assert.Equal(t, []store.SkippedEvent{
		{EventID: "ev-2", Reason: "no results document"},
		{EventID: "ev-3", Reason: "connection reset"},
	}, summary.SkippedEvents)
	assert.Equal(t, 1, summary.FightersWritten)
}

func TestCalculate_EntryCounters(t *testing.T) {
	s := NewMockStore()
	s.AddEvent(aauEvent("ev-1"),
		raw("jane", "doe", "01/02/2000", "W", 1),
		raw("jane", "doe", "01/02/2000", "bye", 2),
		raw("", "doe", "01/02/2000", "W", 3),
		raw("amy", "lee", "05/06/2001", "x", 3),
	)
	a := New(s)

	summary, err := a.CalculateAllFighterRecords(context.Background(), "AAU", 2024)

	require.NoError(t, err)
	assert.Equal(t, 4, summary.EntriesSeen)
	assert.Equal(t, 2, summary.EntriesCounted)
	assert.Equal(t, 1, summary.Unclassified)
	assert.Equal(t, 1, summary.Unattributable)
	assert.Equal(t, 2, summary.FightersProcessed)
}

func TestCalculate_Disciplines(t *testing.T) {
	s := NewMockStore()
	mmaEvent := aauEvent("ev-mma")
	mmaEvent.Discipline = "MMA"
	s.AddEvent(mmaEvent, raw("jane", "doe", "01/02/2000", "W", 1))
	s.AddEvent(aauEvent("ev-default"), raw("jane", "doe", "01/02/2000", "L", 1))
	a := New(s, WithDisciplines(map[string]shared.Discipline{"AAU": shared.DisciplineBoxing}))

	_, err := a.CalculateAllFighterRecords(context.Background(), "AAU", 2024)
	require.NoError(t, err)

	record, err := a.GetFighterRecord(context.Background(), "AAU", 2024, janeKey)
	require.NoError(t, err)
	assert.Equal(t, 1, record.MMAWin)
	assert.Equal(t, 1, record.BoxingLoss)
	assert.Equal(t, 0, record.PMTWin+record.PMTLoss)
}

func TestCalculate_EnumerationFailureIsFatal(t *testing.T) {
	s := NewMockStore()
	s.ListEventsError = errors.New("server selection timeout")
	n := &RecordingNotifier{}
	a := New(s, WithNotifier(n))

	_, err := a.CalculateAllFighterRecords(context.Background(), "AAU", 2024)

	assert.True(t, errors.Is(err, ErrEnumerateEvents))
	assert.Empty(t, s.Runs)
	assert.Empty(t, n.Summaries)
	assert.Zero(t, s.UpsertCalls)
}

func TestCalculate_InvalidRequest(t *testing.T) {
	a := New(NewMockStore())

	_, err := a.CalculateAllFighterRecords(context.Background(), " ", 2024)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = a.CalculateAllFighterRecords(context.Background(), "AAU", 0)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestCalculate_SummaryStoredAndNotified(t *testing.T) {
	s := NewMockStore()
	s.AddEvent(aauEvent("ev-1"), raw("jane", "doe", "01/02/2000", "W", 1))
	n := &RecordingNotifier{}
	a := New(s, WithNotifier(n))

	summary, err := a.CalculateAllFighterRecords(context.Background(), "AAU", 2024)

	require.NoError(t, err)
	assert.NotEmpty(t, summary.RunID)
	assert.False(t, summary.FinishedAt.Before(summary.StartedAt))
	require.Len(t, s.Runs, 1)
	assert.Equal(t, summary.RunID, s.Runs[0].RunID)
	require.Len(t, n.Summaries, 1)
	assert.Equal(t, summary.RunID, n.Summaries[0].RunID)
}

func TestCalculate_SideEffectFailuresDoNotFailRun(t *testing.T) {
	s := NewMockStore()
	s.AddEvent(aauEvent("ev-1"), raw("jane", "doe", "01/02/2000", "W", 1))
	s.StoreRunSummaryError = errors.New("insert failed")
	a := New(s, WithNotifier(&RecordingNotifier{Err: errors.New("mail down")}))

	summary, err := a.CalculateAllFighterRecords(context.Background(), "AAU", 2024)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.FightersWritten)
}

func TestCalculate_CorrectedDOBRemovesOldRecord(t *testing.T) {
	s := NewMockStore()
	s.AddEvent(aauEvent("ev-1"), raw("jane", "doe", "01/02/2000", "W", 1))
	a := New(s)
	ctx := context.Background()

	_, err := a.CalculateAllFighterRecords(ctx, "AAU", 2024)
	require.NoError(t, err)
	require.Contains(t, s.Records, recordKey("AAU", 2024, janeKey))

	s.Results["ev-1"] = []map[string]interface{}{raw("jane", "doe", "01/03/2000", "W", 1)}
	summary, err := a.CalculateAllFighterRecords(ctx, "AAU", 2024)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.FightersProcessed)
	assert.Equal(t, 1, summary.FightersRemoved)
	assert.False(t, summary.StaleRecordsKept)
	records, err := a.GetRecords(ctx, "AAU", 2024)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "JANEDOE03012000", records[0].FighterKey)
	assert.Equal(t, 1, records[0].Win)
}

func TestCalculate_StaleRemovalScopedToBodyYear(t *testing.T) {
	s := NewMockStore()
	ctx := context.Background()
	require.NoError(t, s.UpsertFighterRecord(ctx, store.FighterRecord{SanctioningBody: "AAU", Year: 2023, FighterKey: amyKey, Win: 4}))
	require.NoError(t, s.UpsertFighterRecord(ctx, store.FighterRecord{SanctioningBody: "IKF", Year: 2024, FighterKey: amyKey, Win: 2}))
	s.AddEvent(aauEvent("ev-1"), raw("jane", "doe", "01/02/2000", "W", 1))

	summary, err := New(s).CalculateAllFighterRecords(ctx, "AAU", 2024)

	require.NoError(t, err)
	assert.Zero(t, summary.FightersRemoved)
	assert.Len(t, s.Records, 3)
}

func TestCalculate_StaleRecordsKeptWhenEventSkipped(t *testing.T) {
	s := NewMockStore()
	ctx := context.Background()
	require.NoError(t, s.UpsertFighterRecord(ctx, store.FighterRecord{SanctioningBody: "AAU", Year: 2024, FighterKey: amyKey, Win: 3}))
	s.AddEvent(aauEvent("ev-1"), raw("jane", "doe", "01/02/2000", "W", 1))
	s.AddEvent(aauEvent("ev-2"), raw("amy", "lee", "05/06/2001", "W", 1))
	s.GetEventResultsErrors["ev-2"] = errors.New("connection reset")

	summary, err := New(s).CalculateAllFighterRecords(ctx, "AAU", 2024)

	require.NoError(t, err)
	assert.True(t, summary.StaleRecordsKept)
	assert.Zero(t, summary.FightersRemoved)
	assert.Zero(t, s.DeleteStaleCalls)
	assert.Contains(t, s.Records, recordKey("AAU", 2024, amyKey))
}

func TestCalculate_StaleRecordsKeptWhenWriteFails(t *testing.T) {
	s := NewMockStore()
	ctx := context.Background()
	require.NoError(t, s.UpsertFighterRecord(ctx, store.FighterRecord{SanctioningBody: "AAU", Year: 2024, FighterKey: "OLDKEY01012000", Win: 1}))
	s.AddEvent(aauEvent("ev-1"),
		raw("jane", "doe", "01/02/2000", "W", 1),
		raw("amy", "lee", "05/06/2001", "L", 1),
	)
	s.UpsertErrors[amyKey] = errors.New("write timeout")

	summary, err := New(s).CalculateAllFighterRecords(ctx, "AAU", 2024)

	require.NoError(t, err)
	assert.True(t, summary.StaleRecordsKept)
	assert.Zero(t, s.DeleteStaleCalls)
	assert.Contains(t, s.Records, recordKey("AAU", 2024, "OLDKEY01012000"))
}

func TestCalculate_StaleRemovalFailureDoesNotFailRun(t *testing.T) {
	s := NewMockStore()
	s.AddEvent(aauEvent("ev-1"), raw("jane", "doe", "01/02/2000", "W", 1))
	s.DeleteStaleError = errors.New("delete timeout")

	summary, err := New(s).CalculateAllFighterRecords(context.Background(), "AAU", 2024)

	require.NoError(t, err)
	assert.Equal(t, 1, s.DeleteStaleCalls)
	assert.Equal(t, 1, summary.FightersWritten)
	assert.True(t, summary.StaleRecordsKept)
	require.Len(t, s.Runs, 1)
	assert.True(t, s.Runs[0].StaleRecordsKept)
}

func TestCalculate_RecordsMetrics(t *testing.T) {
	s := NewMockStore()
	s.AddEvent(aauEvent("ev-1"),
		raw("jane", "doe", "01/02/2000", "W", 1),
		raw("jane", "doe", "01/02/2000", "credit", 2),
	)
	m := metrics.NewManager()
	a := New(s, WithMetrics(m))

	_, err := a.CalculateAllFighterRecords(context.Background(), "AAU", 2024)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `fightrec_records_runs_total{outcome="success"} 1`)
	assert.Contains(t, string(body), `fightrec_records_entries_skipped_total{reason="credit"} 1`)
	assert.Contains(t, string(body), `fightrec_records_fighters_written_total 1`)
}

func TestCalculate_RemovedFightersMetric(t *testing.T) {
	s := NewMockStore()
	require.NoError(t, s.UpsertFighterRecord(context.Background(), store.FighterRecord{SanctioningBody: "AAU", Year: 2024, FighterKey: amyKey}))
	s.AddEvent(aauEvent("ev-1"), raw("jane", "doe", "01/02/2000", "W", 1))
	m := metrics.NewManager()

	_, err := New(s, WithMetrics(m)).CalculateAllFighterRecords(context.Background(), "AAU", 2024)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `fightrec_records_fighters_removed_total 1`)
}

// endregion

// region query tests

func TestGetRecords_Sorted(t *testing.T) {
	s := NewMockStore()
	for _, r := range []store.FighterRecord{
		{FighterKey: "C", Win: 2, Loss: 1},
		{FighterKey: "A", Win: 2, Loss: 1},
		{FighterKey: "B", Win: 2, Loss: 0},
		{FighterKey: "D", Win: 5, Loss: 4},
	} {
		r.SanctioningBody, r.Year = "AAU", 2024
		require.NoError(t, s.UpsertFighterRecord(context.Background(), r))
	}
	a := New(s)

	records, err := a.GetRecords(context.Background(), "aau", 2024)

	require.NoError(t, err)
	var keys []string
	for _, r := range records {
		keys = append(keys, r.FighterKey)
	}
	assert.Equal(t, []string{"D", "B", "A", "C"}, keys)
}

func TestGetRecords_StoreError(t *testing.T) {
	s := NewMockStore()
	s.GetFighterRecordsError = errors.New("boom")

	_, err := New(s).GetRecords(context.Background(), "AAU", 2024)
	assert.Error(t, err)
}

func TestGetFighterRecord_NotFound(t *testing.T) {
	_, err := New(NewMockStore()).GetFighterRecord(context.Background(), "AAU", 2024, "nobody")
	assert.True(t, errors.Is(err, mongo.ErrNoDocuments))
}

func TestSearchFighters(t *testing.T) {
	s := NewMockStore()
	s.AddEvent(aauEvent("ev-1"),
		raw("jane", "doe", "01/02/2000", "W", 1),
		raw("amy", "lee", "05/06/2001", "L", 1),
	)
	a := New(s)
	_, err := a.CalculateAllFighterRecords(context.Background(), "AAU", 2024)
	require.NoError(t, err)

	found, err := a.SearchFighters(context.Background(), "AAU", 2024, "jane doe")

	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, janeKey, found[0].FighterKey)
}

// endregion

// region ImportEventResults tests

func TestImportEventResults_UsesEventURL(t *testing.T) {
	s := NewMockStore()
	event := aauEvent("ev-1")
	event.ResultsURL = "https://feed.example.com/ev-1"
	s.AddEvent(event)
	feed := &MockFeed{Entries: []map[string]interface{}{raw("jane", "doe", "01/02/2000", "W", 1)}}
	a := New(s, WithFeed(feed))

	n, err := a.ImportEventResults(context.Background(), "ev-1", "")

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"https://feed.example.com/ev-1"}, feed.URLs)
	assert.Len(t, s.Results["ev-1"], 1)

	// the imported results feed the next run
	summary, err := a.CalculateAllFighterRecords(context.Background(), "AAU", 2024)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.FightersWritten)
}

func TestImportEventResults_ExplicitURL(t *testing.T) {
	s := NewMockStore()
	s.AddEvent(aauEvent("ev-1"))
	feed := &MockFeed{}
	a := New(s, WithFeed(feed))

	_, err := a.ImportEventResults(context.Background(), "ev-1", " https://other.example.com ")

	require.NoError(t, err)
	assert.Equal(t, []string{"https://other.example.com"}, feed.URLs)
}

func TestImportEventResults_Errors(t *testing.T) {
	s := NewMockStore()
	s.AddEvent(aauEvent("ev-1"))
	ctx := context.Background()

	_, err := New(s).ImportEventResults(ctx, "ev-1", "https://x")
	assert.Error(t, err, "no feed configured")

	_, err = New(s, WithFeed(&MockFeed{})).ImportEventResults(ctx, "ev-1", "")
	assert.ErrorIs(t, err, ErrNoFeedURL)

	_, err = New(s, WithFeed(&MockFeed{})).ImportEventResults(ctx, "missing", "https://x")
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)

	_, err = New(s, WithFeed(&MockFeed{Err: errors.New("503")})).ImportEventResults(ctx, "ev-1", "https://x")
	assert.ErrorContains(t, err, "503")

	s.StoreEventResultsError = errors.New("write failed")
	_, err = New(s, WithFeed(&MockFeed{})).ImportEventResults(ctx, "ev-1", "https://x")
	assert.ErrorContains(t, err, "write failed")
}

// endregion
