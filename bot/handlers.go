/* handlers.go
 * Contains the command handlers. They take the DiscordSession interface so they can be tested without Discord
 */

package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fight-records/api/api"
	"fight-records/api/logic"
	"fight-records/api/store"
	"fight-records/pkg/logger"

	"github.com/bwmarrin/discordgo"
	"github.com/go-andiamo/splitter"
)

const (
	defaultTop    = 10
	maxTop        = 25
	maxRecordHits = 5
)

// helpMessageHandler handles the $help command
func (b *Bot) helpMessageHandler(session DiscordSession, message *discordgo.MessageCreate) {
	var res strings.Builder
	res.WriteString("Fight Records Bot\n")
	res.WriteString(fmt.Sprintf("Records are for %s %d unless a year is given.\n", b.SanctioningBody, b.Year))
	res.WriteString("`$record name [year]`: shows a fighter's record. There is fuzzy matching on names. Names with a space can be wrapped in \" (e.g. \"Mary Ann Smith\")\n")
	res.WriteString("`$top [n] [year]`: shows the n fighters with the best records (default 10, at most 25)\n")
	res.WriteString("`$recalc [body] [year]`: recalculates every fighter record from the event results. Admins only\n")
	session.ChannelMessageSend(message.ChannelID, res.String())
}

// recordHandler handles the $record command
func (b *Bot) recordHandler(session DiscordSession, message *discordgo.MessageCreate) {
	args := commandArgs(message.Content)
	year, args := trailingYear(args, b.Year)
	if len(args) == 0 {
		session.ChannelMessageSend(message.ChannelID, "Usage: `$record name [year]`")
		return
	}
	query := strings.Join(args, " ")

	ctx := context.Background()
	found, err := b.APIPtr.SearchFighters(ctx, b.SanctioningBody, year, query)
	if err != nil {
		b.log.Error(ctx, "record_lookup_failed", logger.String("query", query), logger.Error(err))
		session.ChannelMessageSend(message.ChannelID, "An error occured looking up that fighter")
		return
	}
	if len(found) == 0 {
		session.ChannelMessageSend(message.ChannelID, fmt.Sprintf("No %s %d record found for %s", b.SanctioningBody, year, query))
		return
	}

	var res strings.Builder
	if len(found) > maxRecordHits {
		found = found[:maxRecordHits]
	}
	for _, record := range found {
		res.WriteString(FormatRecord(record))
		res.WriteString("\n")
	}
	session.ChannelMessageSend(message.ChannelID, res.String())
}

// topHandler handles the $top command
func (b *Bot) topHandler(session DiscordSession, message *discordgo.MessageCreate) {
	args := commandArgs(message.Content)
	year, args := trailingYear(args, b.Year)
	n := defaultTop
	if len(args) > 0 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil || parsed < 1 {
			session.ChannelMessageSend(message.ChannelID, "Usage: `$top [n] [year]`")
			return
		}
		n = min(parsed, maxTop)
	}

	ctx := context.Background()
	records, err := b.APIPtr.GetRecords(ctx, b.SanctioningBody, year)
	if err != nil {
		b.log.Error(ctx, "top_records_failed", logger.Error(err))
		session.ChannelMessageSend(message.ChannelID, "An error occured getting the records")
		return
	}
	if len(records) == 0 {
		session.ChannelMessageSend(message.ChannelID, fmt.Sprintf("No records for %s %d yet", b.SanctioningBody, year))
		return
	}
	if len(records) > n {
		records = records[:n]
	}

	var res strings.Builder
	res.WriteString(fmt.Sprintf("Top %d fighters for %s %d:\n", len(records), b.SanctioningBody, year))
	for i, record := range records {
		res.WriteString(fmt.Sprintf("%d. %s\n", i+1, FormatRecord(record)))
	}
	session.ChannelMessageSend(message.ChannelID, res.String())
}

// recalcHandler handles the $recalc command. Only configured admins may run it
func (b *Bot) recalcHandler(session DiscordSession, message *discordgo.MessageCreate) {
	author := message.Author
	if !b.isAdmin(author.ID) {
		session.ChannelMessageSend(message.ChannelID, fmt.Sprintf("%s is not allowed to recalculate records", author.Username))
		return
	}

	args := commandArgs(message.Content)
	year, args := trailingYear(args, b.Year)
	body := b.SanctioningBody
	if len(args) > 0 {
		body = strings.ToUpper(args[0])
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.recalcTimeout)
	defer cancel()
	b.log.Info(ctx, "recalc_requested", logger.String("user_id", author.ID), logger.String("user", author.Username), logger.String("sanctioning_body", body), logger.Int("year", year))

	summary, err := b.APIPtr.CalculateAllFighterRecords(ctx, body, year)
	if err != nil {
		b.log.Error(ctx, "recalc_failed", logger.Error(err))
		if errors.Is(err, api.ErrInvalidRequest) {
			session.ChannelMessageSend(message.ChannelID, "Usage: `$recalc [body] [year]`")
			return
		}
		session.ChannelMessageSend(message.ChannelID, "An error occured recalculating the records")
		return
	}
	session.ChannelMessageSend(message.ChannelID, FormatSummary(summary))
}

// FormatRecord renders a record as one line
func FormatRecord(r store.FighterRecord) string {
	name := strings.TrimSpace(r.First + " " + r.Last)
	var res strings.Builder
	res.WriteString(fmt.Sprintf("**%s**", name))
	if r.Gym != "" {
		res.WriteString(fmt.Sprintf(" (%s)", r.Gym))
	}
	res.WriteString(fmt.Sprintf(" %s: %d-%d", logic.DivisionName(r.Gender, r.WeightClass), r.Win, r.Loss))
	res.WriteString(fmt.Sprintf(" [PMT %d-%d, MMA %d-%d, Boxing %d-%d]", r.PMTWin, r.PMTLoss, r.MMAWin, r.MMALoss, r.BoxingWin, r.BoxingLoss))
	if r.NC > 0 || r.DQ > 0 {
		res.WriteString(fmt.Sprintf(" NC %d, DQ %d", r.NC, r.DQ))
	}
	return res.String()
}

// FormatSummary renders a run summary for a channel message
func FormatSummary(s store.RunSummary) string {
	var res strings.Builder
	res.WriteString(fmt.Sprintf("Recalculated %s %d: %d fighters, %d written, %d failed\n",
		s.SanctioningBody, s.Year, s.FightersProcessed, s.FightersWritten, s.FightersFailed))
	res.WriteString(fmt.Sprintf("Events: %d, skipped: %d\n", s.EventsSeen, s.EventsSkipped))
	if s.FightersRemoved > 0 {
		res.WriteString(fmt.Sprintf("Removed %d stale records\n", s.FightersRemoved))
	}
	for _, f := range s.Failures {
		res.WriteString(fmt.Sprintf("- %s: %s\n", f.FighterKey, f.Reason))
	}
	return res.String()
}

// commandArgs splits a command message into its arguments, dropping the command itself. Double quoted arguments
// may contain spaces
func commandArgs(content string) []string {
	spaceSplitter, _ := splitter.NewSplitter(' ', splitter.DoubleQuotes, splitter.LeftRightDoubleDoubleQuotes)
	parts, err := spaceSplitter.Split(strings.TrimSpace(content))
	if err != nil {
		parts = strings.Fields(content)
	}

	var args []string
	for i, p := range parts {
		if i == 0 {
			continue
		}
		p = strings.Trim(strings.TrimSpace(p), "\"“”")
		if p != "" {
			args = append(args, p)
		}
	}
	return args
}

// trailingYear pops a four digit year off the end of args, falling back to def
func trailingYear(args []string, def int) (int, []string) {
	if len(args) == 0 {
		return def, args
	}
	last := args[len(args)-1]
	if len(last) != 4 {
		return def, args
	}
	year, err := strconv.Atoi(last)
	if err != nil || year < 1900 {
		return def, args
	}
	return year, args[:len(args)-1]
}
