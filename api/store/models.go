/* models.go
 * This file contain the structs that relate to DB objects
 */

package store

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is one sanctioned event. Events are owned by the event management flows, this service only reads them
type Event struct {
	Id              primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	EventID         string             `bson:"event_id" json:"event_id"`
	SanctioningBody string             `bson:"sanctioning_body" json:"sanctioning_body"`
	Year            int                `bson:"year" json:"year"`
	Name            string             `bson:"name,omitempty" json:"name,omitempty"`
	Date            time.Time          `bson:"date,omitempty" json:"date,omitempty"`
	City            string             `bson:"city" json:"city,omitempty"`
	State           string             `bson:"state" json:"state,omitempty"`
	Discipline      string             `bson:"discipline,omitempty" json:"discipline,omitempty"` // overrides the body default
	ResultsURL      string             `bson:"results_url,omitempty" json:"results_url,omitempty"`
}

// EventResults holds the ordered raw bout result entries for one event. Entries are left untyped here, they are
// normalized before any aggregation runs
type EventResults struct {
	EventID         string    `bson:"event_id"`
	SanctioningBody string    `bson:"sanctioning_body,omitempty"`
	Year            int       `bson:"year,omitempty"`
	Results         []bson.M  `bson:"results"`
	UpdatedAt       time.Time `bson:"updated_at,omitempty"`
}

// FighterRecord is the aggregate record for one fighter in one sanctioning body year
type FighterRecord struct {
	Id              primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	SanctioningBody string             `bson:"sanctioning_body" json:"sanctioning_body"`
	Year            int                `bson:"year" json:"year"`
	FighterKey      string             `bson:"fighter_key" json:"fighter_key"`

	// Profile. Every profile field is always written so a value cleared at the source is cleared here too
	First       string `bson:"first" json:"first"`
	Last        string `bson:"last" json:"last"`
	DOB         string `bson:"dob" json:"dob"`
	Gender      string `bson:"gender" json:"gender,omitempty"`
	Gym         string `bson:"gym" json:"gym,omitempty"`
	City        string `bson:"city" json:"city,omitempty"`
	State       string `bson:"state" json:"state,omitempty"`
	Photo       string `bson:"photo" json:"photo,omitempty"`
	WeightClass int    `bson:"weightclass" json:"weightclass,omitempty"`

	// Counters
	Win        int `bson:"win" json:"win"`
	Loss       int `bson:"loss" json:"loss"`
	MMAWin     int `bson:"mma_win" json:"mma_win"`
	MMALoss    int `bson:"mma_loss" json:"mma_loss"`
	BoxingWin  int `bson:"boxing_win" json:"boxing_win"`
	BoxingLoss int `bson:"boxing_loss" json:"boxing_loss"`
	PMTWin     int `bson:"pmt_win" json:"pmt_win"`
	PMTLoss    int `bson:"pmt_loss" json:"pmt_loss"`
	NC         int `bson:"nc" json:"nc"`
	DQ         int `bson:"dq" json:"dq"`

	CreatedAt time.Time `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// WriteFailure reports one fighter whose record could not be written
type WriteFailure struct {
	FighterKey string `bson:"fighter_key" json:"fighter_key"`
	Reason     string `bson:"reason" json:"reason"`
}

// SkippedEvent reports one event whose results could not be read
type SkippedEvent struct {
	EventID string `bson:"event_id" json:"event_id"`
	Reason  string `bson:"reason" json:"reason"`
}

// RunSummary is the outcome of one aggregation run. It is returned to the caller and kept in record_runs
type RunSummary struct {
	RunID           string    `bson:"run_id" json:"run_id"`
	SanctioningBody string    `bson:"sanctioning_body" json:"sanctioning_body"`
	Year            int       `bson:"year" json:"year"`
	StartedAt       time.Time `bson:"started_at" json:"started_at"`
	FinishedAt      time.Time `bson:"finished_at" json:"finished_at"`

	EventsSeen    int            `bson:"events_seen" json:"events_seen"`
	EventsSkipped int            `bson:"events_skipped" json:"events_skipped"`
	SkippedEvents []SkippedEvent `bson:"skipped_events,omitempty" json:"skipped_events,omitempty"`

	EntriesSeen    int `bson:"entries_seen" json:"entries_seen"`
	EntriesCounted int `bson:"entries_counted" json:"entries_counted"`
	Credits        int `bson:"credits" json:"credits"`
	Unclassified   int `bson:"unclassified" json:"unclassified"`
	Unattributable int `bson:"unattributable" json:"unattributable"`

	FightersProcessed int            `bson:"fighters_processed" json:"fighters_processed"`
	FightersWritten   int            `bson:"fighters_written" json:"fighters_written"`
	FightersFailed    int            `bson:"fighters_failed" json:"fighters_failed"`
	Failures          []WriteFailure `bson:"failures,omitempty" json:"failures"`
	// FightersRemoved counts stored records dropped because no source entry produces their key any more.
	// Removal only runs when every event was read and every record was written
	FightersRemoved  int  `bson:"fighters_removed" json:"fighters_removed"`
	StaleRecordsKept bool `bson:"stale_records_kept,omitempty" json:"stale_records_kept,omitempty"`
}
