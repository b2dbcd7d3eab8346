/* identity_test.go
 * Contains unit tests for identity.go
 */

package logic

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFighterKey_Format(t *testing.T) {
	key, err := FighterKey("jane", "doe", "01/02/2000")
	require.NoError(t, err)
	// day, month, year
	assert.Equal(t, "JANEDOE02012000", key)
}

func TestFighterKey_StableUnderCaseAndWhitespace(t *testing.T) {
	tests := []struct {
		name  string
		first string
		last  string
		dob   string
	}{
		{"lower case", "jane", "doe", "01/02/2000"},
		{"upper case", "JANE", "DOE", "01/02/2000"},
		{"mixed case and padding", "  JaNe ", " dOe  ", " 01/02/2000 "},
		{"unpadded dob", "jane", "doe", "1/2/2000"},
		{"iso dob", "jane", "doe", "2000-01-02"},
		{"dashed dob", "jane", "doe", "01-02-2000"},
		{"timestamp dob", "jane", "doe", "2000-01-02T00:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := FighterKey(tt.first, tt.last, tt.dob)
			require.NoError(t, err)
			assert.Equal(t, "JANEDOE02012000", key)
		})
	}
}

func TestFighterKey_RepeatedComputation(t *testing.T) {
	first, err := FighterKey("Mary Ann", "Smith", "12/31/1999")
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := FighterKey("Mary Ann", "Smith", "12/31/1999")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, "MARYANNSMITH31121999", first)
}

func TestFighterKey_InnerWhitespaceStripped(t *testing.T) {
	a, err := FighterKey("Mary Ann", "Van Der Berg", "03/04/2005")
	require.NoError(t, err)
	b, err := FighterKey("maryann", "vanderberg", "03/04/2005")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFighterKey_Unattributable(t *testing.T) {
	tests := []struct {
		name  string
		first string
		last  string
		dob   string
	}{
		{"missing first", "", "doe", "01/02/2000"},
		{"blank first", "   ", "doe", "01/02/2000"},
		{"missing last", "jane", "", "01/02/2000"},
		{"missing dob", "jane", "doe", ""},
		{"garbage dob", "jane", "doe", "sometime in 2000"},
		{"impossible dob", "jane", "doe", "13/45/2000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := FighterKey(tt.first, tt.last, tt.dob)
			assert.Empty(t, key)
			assert.True(t, errors.Is(err, ErrUnattributable))
		})
	}
}
