/* handlers.go
 * Contains the HTTP handlers for triggering aggregation runs and reading fighter records
 */

package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"fight-records/api/api"
	"fight-records/api/logic"
	"fight-records/api/store"
	"fight-records/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
)

const maxBodyBytes = 1 << 16

// CalculateRecordsHandler recomputes every fighter record for a sanctioning body year. The body and year may be given
// as query parameters or as a JSON body; both are optional and fall back to the configured defaults
// Preconditions: HTTP server has been started, receives HTTP ResponseWriter and Http Request
// Postconditions: Writes the run summary with 200, a JSON error with 400 for a bad request, or a generic JSON error
// with 500 when the run could not complete
func (s *Server) CalculateRecordsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	defer r.Body.Close()

	var req calculateRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	sanctioningBody, year, err := s.bodyAndYear(r, req.SanctioningBody, req.Year)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.runTimeout)
	defer cancel()

	summary, err := s.api.CalculateAllFighterRecords(ctx, sanctioningBody, year)
	if err != nil {
		if errors.Is(err, api.ErrInvalidRequest) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Error(ctx, "calculate_records_failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to calculate fighter records")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// ListRecordsHandler lists every record for a sanctioning body year, best record first
func (s *Server) ListRecordsHandler(w http.ResponseWriter, r *http.Request) {
	sanctioningBody, year, err := s.bodyAndYear(r, "", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.api.GetRecords(r.Context(), sanctioningBody, year)
	if err != nil {
		s.log.Error(r.Context(), "list_records_failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list fighter records")
		return
	}
	writeJSON(w, http.StatusOK, views(records))
}

// SearchRecordsHandler fuzzy matches fighter names against the records of a sanctioning body year
func (s *Server) SearchRecordsHandler(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	sanctioningBody, year, err := s.bodyAndYear(r, "", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.api.SearchFighters(r.Context(), sanctioningBody, year, query)
	if err != nil {
		s.log.Error(r.Context(), "search_records_failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to search fighter records")
		return
	}
	writeJSON(w, http.StatusOK, views(records))
}

// GetRecordHandler returns one fighter's record, 404 when the fighter has none that year
func (s *Server) GetRecordHandler(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil || year <= 0 {
		writeError(w, http.StatusBadRequest, "year must be a positive number")
		return
	}

	record, err := s.api.GetFighterRecord(r.Context(), r.PathValue("body"), year, r.PathValue("key"))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeError(w, http.StatusNotFound, "fighter record not found")
			return
		}
		s.log.Error(r.Context(), "get_record_failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to get fighter record")
		return
	}
	writeJSON(w, http.StatusOK, view(record))
}

// ImportEventHandler pulls an event's results from its feed into the store. The body may name a feed url that
// overrides the event's own
func (s *Server) ImportEventHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	eventID := r.PathValue("id")

	var req importRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	n, err := s.api.ImportEventResults(r.Context(), eventID, req.URL)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, importResponse{EventID: eventID, Entries: n})
	case errors.Is(err, mongo.ErrNoDocuments):
		writeError(w, http.StatusNotFound, "event not found")
	case errors.Is(err, api.ErrNoFeedURL):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error(r.Context(), "import_event_failed", logger.String("event_id", eventID), logger.Error(err))
		writeError(w, http.StatusBadGateway, "failed to import event results")
	}
}

// HealthHandler reports that the process is serving
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// bodyAndYear resolves the sanctioning body and year from the query string, then the given fallbacks, then the
// server defaults
func (s *Server) bodyAndYear(r *http.Request, body string, year int) (string, int, error) {
	q := r.URL.Query()
	if v := strings.TrimSpace(q.Get("body")); v != "" {
		body = v
	}
	if v := strings.TrimSpace(q.Get("year")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return "", 0, fmt.Errorf("year must be a positive number")
		}
		year = parsed
	}
	if body == "" {
		body = s.defaultBody
	}
	if year == 0 {
		year = s.defaultYear
	}
	return body, year, nil
}

func view(record store.FighterRecord) recordView {
	return recordView{FighterRecord: record, Division: logic.DivisionName(record.Gender, record.WeightClass)}
}

func views(records []store.FighterRecord) []recordView {
	out := make([]recordView, 0, len(records))
	for _, r := range records {
		out = append(out, view(r))
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
