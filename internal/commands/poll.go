package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

const (
	voteUp   = "👍"
	voteDown = "👎"
)

// poll posts the question as an embed and seeds it with the two vote
// reactions, up first.
func poll(c *Context) error {
	if c.Args == "" {
		return ErrMissingArgument
	}

	embed := &discordgo.MessageEmbed{
		Title:       "New Poll",
		Description: c.Args,
	}
	msg, err := c.Client.Send(c, c.Message.ChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
	if err != nil {
		return fmt.Errorf("failed to send embed: %w", err)
	}

	for _, vote := range []string{voteUp, voteDown} {
		if err := c.Client.React(c, msg.ChannelID, msg.ID, vote); err != nil {
			return fmt.Errorf("failed to add reaction %s: %w", vote, err)
		}
	}
	return nil
}
