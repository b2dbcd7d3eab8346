/* bot.go
 * Contains the Bot type and command routing. Requires a discord bot token and an API, both of which are passed in
 * from main.go
 */

package bot

import (
	"fmt"
	"strings"
	"time"

	"fight-records/api/api"
	"fight-records/pkg/logger"

	"github.com/bwmarrin/discordgo"
)

const defaultRecalcTimeout = 5 * time.Minute

// Config holds what the bot needs to answer commands
type Config struct {
	Token           string
	API             *api.API
	SanctioningBody string // default body for lookups
	Year            int    // default year for lookups
	AdminIDs        []string
}

// Bot answers record commands in Discord channels
type Bot struct {
	BotToken        string
	APIPtr          *api.API
	SanctioningBody string
	Year            int

	admins        map[string]bool
	recalcTimeout time.Duration
	log           logger.Logger
}

// NewBot creates a Bot from cfg
// Preconditions: cfg.Token is the Discord bot token, cfg.API is a ready API
// Postconditions: Returns the Bot, or an error if the token is missing
func NewBot(cfg Config) (*Bot, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("botToken is required but none was provided")
	}

	admins := make(map[string]bool, len(cfg.AdminIDs))
	for _, id := range cfg.AdminIDs {
		admins[id] = true
	}

	return &Bot{
		BotToken:        cfg.Token,
		APIPtr:          cfg.API,
		SanctioningBody: strings.ToUpper(cfg.SanctioningBody),
		Year:            cfg.Year,
		admins:          admins,
		recalcTimeout:   defaultRecalcTimeout,
		log:             logger.Named("bot"),
	}, nil
}

// newMessageHandler routes messages to the command handlers. botUserID is the bot's own id so it never answers
// itself
func (b *Bot) newMessageHandler(session DiscordSession, message *discordgo.MessageCreate, botUserID string) {
	if message.Author == nil || message.Author.ID == botUserID {
		return
	}

	switch {
	case startsWith(message.Content, "$help"):
		b.helpMessageHandler(session, message)

	case startsWith(message.Content, "$record"):
		b.recordHandler(session, message)

	case startsWith(message.Content, "$top"):
		b.topHandler(session, message)

	case startsWith(message.Content, "$recalc"):
		b.recalcHandler(session, message)
	}
}

// isAdmin reports whether a discord user may trigger a recalculation
func (b *Bot) isAdmin(userID string) bool {
	return b.admins[userID]
}

// Helper function to check if a string starts with a given substring
// Preconditions: Recieves an input string and a substring
// Postconditions: Returns true if the substring is at the start of the string, else returns false
func startsWith(inputString string, substring string) bool {
	return strings.HasPrefix(inputString, substring)
}
