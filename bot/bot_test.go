/* bot_test.go
 * Contains unit tests for bot.go functions
 */

package bot

import (
	"testing"

	"fight-records/api/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStartsWith_ExactMatch tests when input exactly matches the substring
func TestStartsWith_ExactMatch(t *testing.T) {
	result := startsWith("hello", "hello")
	assert.True(t, result)
}

// TestStartsWith_StartsWithSubstring tests when input starts with substring
func TestStartsWith_StartsWithSubstring(t *testing.T) {
	result := startsWith("hello world", "hello")
	assert.True(t, result)
}

// TestStartsWith_DoesNotStartWith tests when substring is present but not at start
func TestStartsWith_DoesNotStartWith(t *testing.T) {
	result := startsWith("world hello", "hello")
	assert.False(t, result)
}

// TestStartsWith_SubstringNotPresent tests when substring is not present at all
func TestStartsWith_SubstringNotPresent(t *testing.T) {
	result := startsWith("hello world", "goodbye")
	assert.False(t, result)
}

// TestStartsWith_EmptySubstring tests with empty substring
func TestStartsWith_EmptySubstring(t *testing.T) {
	result := startsWith("hello", "")
	assert.True(t, result) // Empty string starts every string
}

// TestStartsWith_EmptyInput tests with empty input string
func TestStartsWith_EmptyInput(t *testing.T) {
	result := startsWith("", "hello")
	assert.False(t, result)
}

// TestStartsWith_BothEmpty tests when both strings are empty
func TestStartsWith_BothEmpty(t *testing.T) {
	result := startsWith("", "")
	assert.True(t, result)
}

// TestStartsWith_DiscordCommand tests with Discord command prefix
func TestStartsWith_DiscordCommand(t *testing.T) {
	result := startsWith("$help", "$")
	assert.True(t, result)
}

// TestStartsWith_LongerSubstring tests when substring is longer than input
func TestStartsWith_LongerSubstring(t *testing.T) {
	result := startsWith("hi", "hello")
	assert.False(t, result)
}

// TestStartsWith_CaseSensitive tests that function is case-sensitive
func TestStartsWith_CaseSensitive(t *testing.T) {
	result := startsWith("Hello", "hello")
	assert.False(t, result)
}

// TestStartsWith_PartialMatch tests partial matching at the beginning
func TestStartsWith_PartialMatch(t *testing.T) {
	result := startsWith("$record jane doe", "$record")
	assert.True(t, result)
}

// TestStartsWith_SpecialCharacters tests with special characters
func TestStartsWith_SpecialCharacters(t *testing.T) {
	result := startsWith("$top-10", "$top")
	assert.True(t, result)
}

func TestNewBot_MissingToken(t *testing.T) {
	b, err := NewBot(Config{API: api.New(api.NewMockStore())})
	assert.Nil(t, b)
	assert.EqualError(t, err, "botToken is required but none was provided")
}

func TestNewBot_Defaults(t *testing.T) {
	b, err := NewBot(Config{Token: "t", SanctioningBody: "aau", Year: 2024, AdminIDs: []string{"a1", "a2"}})
	require.NoError(t, err)
	assert.Equal(t, "AAU", b.SanctioningBody)
	assert.Equal(t, 2024, b.Year)
	assert.Equal(t, defaultRecalcTimeout, b.recalcTimeout)
	assert.True(t, b.isAdmin("a2"))
	assert.False(t, b.isAdmin("someone"))
	assert.False(t, b.isAdmin(""))
}
