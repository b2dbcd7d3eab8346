/* records.go
 * Contains the fighter record aggregation run: list the events of a sanctioning body year, fold their results into
 * one record per fighter and write every record back to the store
 */

package api

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"fight-records/api/logic"
	"fight-records/api/store"
	"fight-records/pkg/logger"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// CalculateAllFighterRecords recomputes every fighter record for a sanctioning body year from the stored event
// results and writes them back. Records are always rebuilt from source so running it twice gives the same records.
// Events whose results cannot be read are skipped, and a failed write for one fighter does not stop the others.
// After a clean run, stored records no source entry produces any more are removed.
// Preconditions: Receives a context, the sanctioning body and the year
// Postconditions: Returns the run summary, or ErrEnumerateEvents / ErrInvalidRequest when the run could not start
func (a *API) CalculateAllFighterRecords(ctx context.Context, body string, year int) (store.RunSummary, error) {
	body = normalizeBody(body)
	if body == "" || year <= 0 {
		return store.RunSummary{}, ErrInvalidRequest
	}

	start := time.Now()
	summary := store.RunSummary{
		RunID:           uuid.NewString(),
		SanctioningBody: body,
		Year:            year,
		StartedAt:       start.UTC(),
		Failures:        []store.WriteFailure{},
	}
	log := a.log.With(
		logger.String("run_id", summary.RunID),
		logger.String("sanctioning_body", body),
		logger.Int("year", year),
	)
	log.Info(ctx, "run_started")

	events, err := a.Store.ListEvents(ctx, body, year)
	if err != nil {
		log.Error(ctx, "run_aborted", logger.Error(err))
		a.Metrics.RecordRun(body, false, time.Since(start), 0, 0, 0)
		return store.RunSummary{}, fmt.Errorf("%w: %w", ErrEnumerateEvents, err)
	}
	summary.EventsSeen = len(events)

	agg := logic.NewAggregator(body, year)
	for _, event := range events {
		a.aggregateEvent(ctx, log, agg, event, &summary)
	}

	a.Metrics.RecordEntriesSkipped("credit", summary.Credits)
	a.Metrics.RecordEntriesSkipped("unclassified", summary.Unclassified)
	a.Metrics.RecordEntriesSkipped("unattributable", summary.Unattributable)

	records := agg.Records()
	summary.FightersProcessed = len(records)
	summary.Failures = a.writeRecords(ctx, log, records)
	summary.FightersFailed = len(summary.Failures)
	summary.FightersWritten = summary.FightersProcessed - summary.FightersFailed
	a.removeStaleRecords(ctx, log, records, &summary)
	summary.FinishedAt = time.Now().UTC()

	if err := a.Store.StoreRunSummary(ctx, summary); err != nil {
		log.Error(ctx, "run_summary_not_stored", logger.Error(err))
	}
	a.Metrics.RecordRun(body, true, time.Since(start), summary.FightersProcessed, summary.FightersWritten, summary.FightersFailed)
	if err := a.Notifier.NotifyRun(ctx, summary); err != nil {
		log.Warn(ctx, "run_notification_failed", logger.Error(err))
	}

	log.Info(ctx, "run_finished",
		logger.Int("events_seen", summary.EventsSeen),
		logger.Int("events_skipped", summary.EventsSkipped),
		logger.Int("fighters_processed", summary.FightersProcessed),
		logger.Int("fighters_written", summary.FightersWritten),
		logger.Int("fighters_failed", summary.FightersFailed),
		logger.Int("fighters_removed", summary.FightersRemoved),
	)
	return summary, nil
}

// aggregateEvent reads one event's results and folds them into agg. A read failure skips the event
func (a *API) aggregateEvent(ctx context.Context, log logger.Logger, agg *logic.Aggregator, event store.Event, summary *store.RunSummary) {
	raws, err := a.Store.GetEventResults(ctx, event.EventID)
	if err != nil {
		reason := err.Error()
		if errors.Is(err, mongo.ErrNoDocuments) {
			reason = "no results document"
		}
		log.Warn(ctx, "event_skipped", logger.String("event_id", event.EventID), logger.String("reason", reason))
		summary.EventsSkipped++
		summary.SkippedEvents = append(summary.SkippedEvents, store.SkippedEvent{EventID: event.EventID, Reason: reason})
		a.Metrics.RecordEventSkipped()
		return
	}

	discipline := logic.ResolveDiscipline("", event.Discipline, a.disciplines[summary.SanctioningBody])
	stats := agg.Add(logic.NormalizeEntries(raws), discipline)

	summary.EntriesSeen += stats.Seen
	summary.EntriesCounted += stats.Counted
	summary.Credits += stats.Credits
	summary.Unclassified += stats.Unclassified
	summary.Unattributable += stats.Unattributable
	for _, reason := range stats.Skipped {
		log.Warn(ctx, "entry_unattributable", logger.String("event_id", event.EventID), logger.String("reason", reason))
	}
	log.Debug(ctx, "event_aggregated",
		logger.String("event_id", event.EventID),
		logger.String("discipline", string(discipline)),
		logger.Int("entries", stats.Seen),
		logger.Int("counted", stats.Counted),
	)
}

// removeStaleRecords deletes stored records of the run's body and year that this run did not produce. It only runs
// when every event was read and every record was written. A failed delete is logged and leaves the stale records
// for the next run
func (a *API) removeStaleRecords(ctx context.Context, log logger.Logger, records map[string]store.FighterRecord, summary *store.RunSummary) {
	if summary.EventsSkipped > 0 || summary.FightersFailed > 0 {
		summary.StaleRecordsKept = true
		log.Warn(ctx, "stale_records_kept",
			logger.Int("events_skipped", summary.EventsSkipped),
			logger.Int("fighters_failed", summary.FightersFailed),
		)
		return
	}

	keep := make([]string, 0, len(records))
	for key := range records {
		keep = append(keep, key)
	}
	sort.Strings(keep)

	removed, err := a.Store.DeleteStaleFighterRecords(ctx, summary.SanctioningBody, summary.Year, keep)
	if err != nil {
		summary.StaleRecordsKept = true
		log.Error(ctx, "stale_records_not_removed", logger.Error(err))
		return
	}
	summary.FightersRemoved = int(removed)
	a.Metrics.RecordFightersRemoved(summary.FightersRemoved)
	if removed > 0 {
		log.Info(ctx, "stale_records_removed", logger.Int("removed", summary.FightersRemoved))
	}
}

// writeRecords upserts every record. Writes run concurrently up to the configured limit and are paced by the
// configured rate. Each write captures its own error; the returned failures are sorted by fighter key
func (a *API) writeRecords(ctx context.Context, log logger.Logger, records map[string]store.FighterRecord) []store.WriteFailure {
	keys := make([]string, 0, len(records))
	for key := range records {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	limit := rate.Inf
	if a.writesPerSecond > 0 {
		limit = rate.Limit(a.writesPerSecond)
	}
	limiter := rate.NewLimiter(limit, a.writeConcurrency)

	var (
		mu       sync.Mutex
		failures = []store.WriteFailure{}
	)
	// Tasks never return an error so one failed write cannot cancel the rest.
	var g errgroup.Group
	g.SetLimit(a.writeConcurrency)
	for _, key := range keys {
		record := records[key]
		g.Go(func() error {
			err := limiter.Wait(ctx)
			if err == nil {
				err = a.Store.UpsertFighterRecord(ctx, record)
			}
			if err != nil {
				log.Error(ctx, "record_write_failed", logger.String("fighter_key", key), logger.Error(err))
				mu.Lock()
				failures = append(failures, store.WriteFailure{FighterKey: key, Reason: err.Error()})
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(failures, func(i, j int) bool {
		return failures[i].FighterKey < failures[j].FighterKey
	})
	return failures
}
