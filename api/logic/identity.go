/* identity.go
 * Contains the helpers used to derive the stable key a fighter's aggregate record is stored under
 */

package logic

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// ErrUnattributable is returned when a bout entry cannot be tied to a fighter
var ErrUnattributable = errors.New("unattributable entry")

// Accepted date of birth layouts. US month-first layouts are tried before ISO
var dobLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"2006-01-02",
	time.RFC3339,
}

// FighterKey derives the identity key for a fighter: upper-cased first name, last name, then day, month and year
// of birth with no separators. Whitespace in names is dropped so "Mary Ann" and "maryann" collide on purpose.
// Preconditions: Receives first name, last name and date of birth strings
// Postconditions: Returns the identity key, or ErrUnattributable if a field is missing or the dob cannot be parsed
func FighterKey(first, last, dob string) (string, error) {
	f := squash(first)
	l := squash(last)
	if f == "" {
		return "", fmt.Errorf("%w: missing first name", ErrUnattributable)
	}
	if l == "" {
		return "", fmt.Errorf("%w: missing last name", ErrUnattributable)
	}

	born, err := ParseDOB(dob)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%s%02d%02d%04d", f, l, born.Day(), int(born.Month()), born.Year()), nil
}

// ParseDOB parses a date of birth in any of the accepted layouts
func ParseDOB(dob string) (time.Time, error) {
	dob = strings.TrimSpace(dob)
	if dob == "" {
		return time.Time{}, fmt.Errorf("%w: missing date of birth", ErrUnattributable)
	}
	for _, layout := range dobLayouts {
		if t, err := time.Parse(layout, dob); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised date of birth %q", ErrUnattributable, dob)
}

// squash upper-cases a name and removes every whitespace rune
func squash(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
