/* models.go
 * Contains the server configuration and the JSON bodies used by the HTTP handlers
 */

package web

import (
	"time"

	"fight-records/api/api"
	"fight-records/api/store"
	"fight-records/pkg/logger"
	"fight-records/pkg/metrics"
)

// Config holds the configuration for the web server
type Config struct {
	Addr        string
	API         *api.API
	Metrics     *metrics.Manager
	DefaultBody string
	DefaultYear int

	// RunTimeout bounds one aggregation run triggered over HTTP. 0 uses the default
	RunTimeout time.Duration
}

// Server is the HTTP server exposing the record endpoints
type Server struct {
	api         *api.API
	metrics     *metrics.Manager
	defaultBody string
	defaultYear int
	runTimeout  time.Duration
	log         logger.Logger
}

// calculateRequest is the optional body of POST /records/calculate
type calculateRequest struct {
	SanctioningBody string `json:"sanctioning_body"`
	Year            int    `json:"year"`
}

// importRequest is the optional body of POST /events/{id}/import
type importRequest struct {
	URL string `json:"url"`
}

type importResponse struct {
	EventID string `json:"event_id"`
	Entries int    `json:"entries"`
}

// recordView is a fighter record with its weight division name
type recordView struct {
	store.FighterRecord
	Division string `json:"division"`
}

type errorResponse struct {
	Error string `json:"error"`
}
