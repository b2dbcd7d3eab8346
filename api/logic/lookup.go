/* lookup.go
 * Contains the fuzzy fighter lookup used by the bot and the search endpoint
 */

package logic

import (
	"sort"
	"strings"

	"fight-records/api/store"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// FindFighters matches a free-form name against the "FIRST LAST" name of each record.
// An exact name match is returned on its own, otherwise matches are ordered best first
// Preconditions: Receives the query string and the records to search
// Postconditions: Returns the matching records, empty if nothing matched
func FindFighters(query string, records []store.FighterRecord) []store.FighterRecord {
	q := strings.ToLower(strings.Join(strings.Fields(query), " "))
	if q == "" {
		return nil
	}

	names := make([]string, 0, len(records))
	byName := make(map[string][]int)
	for i, r := range records {
		name := strings.ToLower(strings.TrimSpace(r.First + " " + r.Last))
		if _, seen := byName[name]; !seen {
			names = append(names, name)
		}
		byName[name] = append(byName[name], i)
	}

	// Exact match on the full name, same as how team names are resolved
	if idx, ok := byName[q]; ok {
		out := make([]store.FighterRecord, 0, len(idx))
		for _, i := range idx {
			out = append(out, records[i])
		}
		return out
	}

	ranks := fuzzy.RankFind(q, names)
	sort.Sort(ranks)

	var out []store.FighterRecord
	for _, rank := range ranks {
		for _, i := range byName[rank.Target] {
			out = append(out, records[i])
		}
	}
	return out
}
