/* aggregate.go
 * Contains the aggregator that folds normalized bout entries into per fighter records for a sanctioning body year
 */

package logic

import (
	"strings"

	"fight-records/api/shared"
	"fight-records/api/store"
)

// outcome of classifying a single entry
type outcome int

const (
	outcomeCounted outcome = iota
	outcomeCredit
	outcomeUnclassified
	outcomeUnattributable
)

// AddStats counts what happened to the entries passed to one Add call
type AddStats struct {
	Seen           int
	Counted        int
	Credits        int
	Unclassified   int
	Unattributable int
	// Skipped holds the reason for every unattributable entry so the caller can log it
	Skipped []string
}

// Aggregator accumulates fighter records across every event of a sanctioning body year. It is not safe for
// concurrent use; events are fed in one at a time
type Aggregator struct {
	body    string
	year    int
	records map[string]*store.FighterRecord
}

// NewAggregator creates an empty aggregator for body and year
func NewAggregator(body string, year int) *Aggregator {
	return &Aggregator{
		body:    body,
		year:    year,
		records: make(map[string]*store.FighterRecord),
	}
}

// ClassifyResult upper-cases a result code and reports whether it is one of W, L, NC, DQ or X
func ClassifyResult(code string) (string, bool) {
	c := strings.ToUpper(strings.TrimSpace(code))
	switch c {
	case shared.ResultWin, shared.ResultLoss, shared.ResultNoContest, shared.ResultDisqualified, shared.ResultExhibition:
		return c, true
	}
	return c, false
}

// IsCredit reports whether a result code is the administrative credit placeholder
func IsCredit(code string) bool {
	return strings.EqualFold(strings.TrimSpace(code), shared.ResultCredit)
}

// ResolveDiscipline picks the counter bucket for an entry: the entry's own discipline, then the event's, then
// the sanctioning body default. Point muay thai is used when none of them are set
func ResolveDiscipline(entry, event string, bodyDefault shared.Discipline) shared.Discipline {
	if d, ok := shared.ParseDiscipline(entry); ok {
		return d
	}
	if d, ok := shared.ParseDiscipline(event); ok {
		return d
	}
	if d, ok := shared.ParseDiscipline(string(bodyDefault)); ok {
		return d
	}
	return shared.DisciplinePMT
}

// Add folds one event's entries into the running records.
// Preconditions: Receives normalized entries for one event and the discipline configured for that event
// (the event's own discipline, falling back to the body default)
// Postconditions: Records are updated, returns the stats for this batch of entries
func (a *Aggregator) Add(entries []BoutEntry, eventDiscipline shared.Discipline) AddStats {
	var stats AddStats
	for _, entry := range entries {
		stats.Seen++
		result, reason := a.addEntry(entry, eventDiscipline)
		switch result {
		case outcomeCounted:
			stats.Counted++
		case outcomeCredit:
			stats.Credits++
		case outcomeUnclassified:
			stats.Unclassified++
		case outcomeUnattributable:
			stats.Unattributable++
			stats.Skipped = append(stats.Skipped, reason)
		}
	}
	return stats
}

func (a *Aggregator) addEntry(entry BoutEntry, eventDiscipline shared.Discipline) (outcome, string) {
	if IsCredit(entry.Result) {
		return outcomeCredit, ""
	}

	code, ok := ClassifyResult(entry.Result)
	if !ok {
		return outcomeUnclassified, ""
	}

	key, err := FighterKey(entry.First, entry.Last, entry.DOB)
	if err != nil {
		return outcomeUnattributable, err.Error()
	}

	record, exists := a.records[key]
	if !exists {
		record = &store.FighterRecord{
			SanctioningBody: a.body,
			Year:            a.year,
			FighterKey:      key,
		}
		a.records[key] = record
	}
	applyProfile(record, entry)

	discipline := ResolveDiscipline(entry.Discipline, "", eventDiscipline)
	switch code {
	case shared.ResultWin:
		record.Win++
		switch discipline {
		case shared.DisciplineMMA:
			record.MMAWin++
		case shared.DisciplineBoxing:
			record.BoxingWin++
		default:
			record.PMTWin++
		}
	case shared.ResultLoss:
		record.Loss++
		switch discipline {
		case shared.DisciplineMMA:
			record.MMALoss++
		case shared.DisciplineBoxing:
			record.BoxingLoss++
		default:
			record.PMTLoss++
		}
	case shared.ResultNoContest:
		record.NC++
	case shared.ResultDisqualified:
		record.DQ++
	case shared.ResultExhibition:
		// attributed to the fighter but not counted
	}
	return outcomeCounted, ""
}

// applyProfile copies the non-empty profile fields of an entry onto the record. Later entries win
func applyProfile(record *store.FighterRecord, entry BoutEntry) {
	setIfPresent(&record.First, entry.First)
	setIfPresent(&record.Last, entry.Last)
	setIfPresent(&record.DOB, entry.DOB)
	setIfPresent(&record.Gender, entry.Gender)
	setIfPresent(&record.Gym, entry.Gym)
	setIfPresent(&record.City, entry.City)
	setIfPresent(&record.State, entry.State)
	setIfPresent(&record.Photo, entry.Photo)
	if entry.WeightClass > 0 {
		record.WeightClass = entry.WeightClass
	}
}

func setIfPresent(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Records returns a copy of the accumulated records keyed by fighter identity key
func (a *Aggregator) Records() map[string]store.FighterRecord {
	out := make(map[string]store.FighterRecord, len(a.records))
	for k, r := range a.records {
		out[k] = *r
	}
	return out
}
