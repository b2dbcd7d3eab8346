/* divisions.go
 * Contains the weight division lookup tables used when displaying records
 */

package logic

import "strings"

type division struct {
	max  int // upper bound in lbs, inclusive
	name string
}

// Divisions are ordered by upper bound. Weights above the last bound fall into the open class
var (
	maleDivisions = []division{
		{115, "Flyweight"},
		{125, "Bantamweight"},
		{135, "Featherweight"},
		{145, "Lightweight"},
		{155, "Super Lightweight"},
		{165, "Welterweight"},
		{175, "Middleweight"},
		{185, "Light Heavyweight"},
		{205, "Cruiserweight"},
		{265, "Heavyweight"},
	}
	femaleDivisions = []division{
		{105, "Atomweight"},
		{115, "Strawweight"},
		{125, "Flyweight"},
		{135, "Bantamweight"},
		{145, "Featherweight"},
		{155, "Lightweight"},
		{170, "Welterweight"},
	}
)

// DivisionName returns the division a weight class falls in for the given gender. Unknown or empty genders use
// the male table. A weight class of 0 or less returns "Unknown"
func DivisionName(gender string, weightClass int) string {
	if weightClass <= 0 {
		return "Unknown"
	}

	table := maleDivisions
	open := "Super Heavyweight"
	switch strings.ToUpper(strings.TrimSpace(gender)) {
	case "F", "FEMALE", "W", "WOMEN":
		table = femaleDivisions
		open = "Open Weight"
	}

	for _, d := range table {
		if weightClass <= d.max {
			return d.name
		}
	}
	return open
}
