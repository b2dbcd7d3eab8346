/* session_interface.go
 * Contains the subset of the Discord session the handlers need
 */

package bot

import "github.com/bwmarrin/discordgo"

// DiscordSession is the part of *discordgo.Session the command handlers send through
type DiscordSession interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Ensure *discordgo.Session implements DiscordSession
var _ DiscordSession = (*discordgo.Session)(nil)
