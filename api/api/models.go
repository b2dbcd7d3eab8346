/* models.go
 * This file contain the errors, interfaces and options that are used by api consumers
 */

package api

import (
	"context"
	"errors"

	"fight-records/api/notify"
	"fight-records/api/shared"
	"fight-records/pkg/metrics"
)

var (
	// ErrEnumerateEvents is returned when the events for a run cannot be listed. The run is aborted
	ErrEnumerateEvents = errors.New("could not enumerate events")
	// ErrInvalidRequest is returned when a caller leaves out the sanctioning body or year
	ErrInvalidRequest = errors.New("sanctioning body and year are required")
	// ErrNoFeedURL is returned by ImportEventResults when neither the caller nor the event names a feed
	ErrNoFeedURL = errors.New("event has no results feed url")
)

// ResultsFetcher downloads the raw result entries for one event. Implemented by external.Client
type ResultsFetcher interface {
	FetchResults(ctx context.Context, url string) ([]map[string]interface{}, error)
}

// Option configures an API
type Option func(*API)

// WithFeed sets the client used by ImportEventResults
func WithFeed(feed ResultsFetcher) Option {
	return func(a *API) {
		a.Feed = feed
	}
}

// WithNotifier sets the notifier told about every finished run
func WithNotifier(n notify.Notifier) Option {
	return func(a *API) {
		if n != nil {
			a.Notifier = n
		}
	}
}

// WithMetrics sets the metrics manager runs are recorded on
func WithMetrics(m *metrics.Manager) Option {
	return func(a *API) {
		a.Metrics = m
	}
}

// WithDisciplines sets the per sanctioning body default discipline. Keys must be upper case
func WithDisciplines(d map[string]shared.Discipline) Option {
	return func(a *API) {
		if d != nil {
			a.disciplines = d
		}
	}
}

// WithWriteConcurrency bounds how many fighter records are written at once
func WithWriteConcurrency(n int) Option {
	return func(a *API) {
		if n > 0 {
			a.writeConcurrency = n
		}
	}
}

// WithWritesPerSecond paces fighter record writes. 0 disables pacing
func WithWritesPerSecond(perSecond float64) Option {
	return func(a *API) {
		if perSecond >= 0 {
			a.writesPerSecond = perSecond
		}
	}
}
