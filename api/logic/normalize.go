/* normalize.go
 * Contains the normalizer that turns raw bout result documents into typed entries. Raw entries come straight from the
 * event_results collection or the results feed, so any field may be missing or carry the wrong type
 */

package logic

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BoutEntry is one fighter's normalized outcome in one bout of one event
type BoutEntry struct {
	First       string
	Last        string
	DOB         string
	Gym         string
	City        string
	State       string
	Photo       string
	Gender      string
	Discipline  string
	Result      string
	WeightClass int
	Mat         int
	Bout        int
	Age         int
}

// NormalizeEntry coerces a raw entry into a BoutEntry. Every field has a default so this never fails:
// strings default to "" and numbers to 0. Names and gym are upper-cased
func NormalizeEntry(raw map[string]interface{}) BoutEntry {
	return BoutEntry{
		First:       strings.ToUpper(stringField(raw, "first")),
		Last:        strings.ToUpper(stringField(raw, "last")),
		DOB:         stringField(raw, "dob"),
		Gym:         strings.ToUpper(stringField(raw, "gym")),
		City:        stringField(raw, "city"),
		State:       strings.ToUpper(stringField(raw, "state")),
		Photo:       stringField(raw, "photo"),
		Gender:      strings.ToUpper(stringField(raw, "gender")),
		Discipline:  stringField(raw, "discipline"),
		Result:      stringField(raw, "result"),
		WeightClass: intField(raw, "weightclass"),
		Mat:         intField(raw, "mat"),
		Bout:        intField(raw, "bout"),
		Age:         intField(raw, "age"),
	}
}

// NormalizeEntries normalizes an event's raw entries and orders them by mat then bout. The order only matters for
// display, counts do not depend on it
func NormalizeEntries(raws []map[string]interface{}) []BoutEntry {
	entries := make([]BoutEntry, 0, len(raws))
	for _, raw := range raws {
		entries = append(entries, NormalizeEntry(raw))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Mat != entries[j].Mat {
			return entries[i].Mat < entries[j].Mat
		}
		return entries[i].Bout < entries[j].Bout
	})
	return entries
}

func stringField(raw map[string]interface{}, key string) string {
	v, ok := raw[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case time.Time:
		return s.UTC().Format("2006-01-02")
	case primitive.DateTime:
		return s.Time().UTC().Format("2006-01-02")
	case fmt.Stringer:
		return strings.TrimSpace(s.String())
	case int, int32, int64, float64:
		return fmt.Sprint(s)
	}
	return ""
}

func intField(raw map[string]interface{}, key string) int {
	v, ok := raw[key]
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float32:
		return truncate(float64(n))
	case float64:
		return truncate(n)
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.Atoi(s); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return truncate(f)
		}
	}
	return 0
}

func truncate(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}
