/* models.go
 * This file contain the types and constants that are shared between sub packages
 */

package shared

import "strings"

// Discipline selects which win/loss counter pair a bout result increments
type Discipline string

const (
	DisciplinePMT    Discipline = "pmt" // point muay thai
	DisciplineMMA    Discipline = "mma"
	DisciplineBoxing Discipline = "boxing"
)

// ParseDiscipline maps a free-form discipline string onto a known Discipline. The second return value is false when
// the input is empty or unknown
func ParseDiscipline(s string) (Discipline, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pmt", "point muay thai", "point-muay-thai", "muay thai", "muaythai", "kickboxing":
		return DisciplinePMT, true
	case "mma":
		return DisciplineMMA, true
	case "boxing", "box":
		return DisciplineBoxing, true
	}
	return "", false
}

// Result codes recorded against a bout
const (
	ResultWin          = "W"
	ResultLoss         = "L"
	ResultNoContest    = "NC"
	ResultDisqualified = "DQ"
	ResultExhibition   = "X"
	ResultCredit       = "CREDIT"
)
