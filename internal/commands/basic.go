package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

func hello(c *Context) error {
	_, err := c.Send(fmt.Sprintf("Hello %s!", c.Author().Mention()))
	return err
}

// dm echoes the argument back to the invoker in a direct message.
func dm(c *Context) error {
	if c.Args == "" {
		return ErrMissingArgument
	}
	return c.Client.DirectMessage(c, c.Author().ID, "You said "+c.Args)
}

func reply(c *Context) error {
	_, err := c.Client.Send(c, c.Message.ChannelID, &discordgo.MessageSend{
		Content:   "This is a reply to your message!",
		Reference: c.Message.Reference(),
	})
	return err
}
