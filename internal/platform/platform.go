// Package platform is the slice of the Discord API the bot's handlers use.
package platform

import (
	"context"
	"errors"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

// ErrNotFound is returned by lookups when the object is not visible to the bot.
var ErrNotFound = errors.New("not found")

// Client is implemented by Session and by the fake in platformtest.
type Client interface {
	// BotUser is the account the bot is logged in as.
	BotUser() *discordgo.User

	Channel(ctx context.Context, channelID string) (*discordgo.Channel, error)
	Guild(ctx context.Context, guildID string) (*discordgo.Guild, error)
	GuildRoles(ctx context.Context, guildID string) ([]*discordgo.Role, error)
	GuildMembers(ctx context.Context, guildID, after string, limit int) ([]*discordgo.Member, error)
	Emoji(emojiID string) (*discordgo.Emoji, bool)

	AddRole(ctx context.Context, guildID, userID, roleID string) error
	RemoveRole(ctx context.Context, guildID, userID, roleID string) error

	Send(ctx context.Context, channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error)
	Delete(ctx context.Context, channelID, messageID string) error
	React(ctx context.Context, channelID, messageID, emoji string) error
	DirectMessage(ctx context.Context, userID, content string) error
}

// Session adapts a live gateway session. Lookups hit the state cache first
// and fall back to REST.
type Session struct {
	s *discordgo.Session
}

var _ Client = (*Session)(nil)

func NewSession(s *discordgo.Session) *Session {
	return &Session{s: s}
}

func (c *Session) BotUser() *discordgo.User {
	if c.s.State == nil {
		return nil
	}
	return c.s.State.User
}

func (c *Session) Channel(ctx context.Context, channelID string) (*discordgo.Channel, error) {
	if ch, err := c.s.State.Channel(channelID); err == nil {
		return ch, nil
	}
	ch, err := c.s.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, notFound(err)
	}
	return ch, nil
}

func (c *Session) Guild(ctx context.Context, guildID string) (*discordgo.Guild, error) {
	if g, err := c.s.State.Guild(guildID); err == nil {
		return g, nil
	}
	g, err := c.s.GuildWithCounts(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, notFound(err)
	}
	if g.MemberCount == 0 {
		g.MemberCount = g.ApproximateMemberCount
	}
	return g, nil
}

func (c *Session) GuildRoles(ctx context.Context, guildID string) ([]*discordgo.Role, error) {
	if g, err := c.s.State.Guild(guildID); err == nil && len(g.Roles) > 0 {
		return g.Roles, nil
	}
	return c.s.GuildRoles(guildID, discordgo.WithContext(ctx))
}

func (c *Session) GuildMembers(ctx context.Context, guildID, after string, limit int) ([]*discordgo.Member, error) {
	return c.s.GuildMembers(guildID, after, limit, discordgo.WithContext(ctx))
}

// Emoji searches every cached guild, like a client-wide emoji cache would.
func (c *Session) Emoji(emojiID string) (*discordgo.Emoji, bool) {
	if c.s.State == nil {
		return nil, false
	}
	c.s.State.RLock()
	defer c.s.State.RUnlock()
	for _, g := range c.s.State.Guilds {
		for _, e := range g.Emojis {
			if e.ID == emojiID {
				return e, true
			}
		}
	}
	return nil, false
}

func (c *Session) AddRole(ctx context.Context, guildID, userID, roleID string) error {
	return c.s.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx))
}

func (c *Session) RemoveRole(ctx context.Context, guildID, userID, roleID string) error {
	return c.s.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx))
}

func (c *Session) Send(ctx context.Context, channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	return c.s.ChannelMessageSendComplex(channelID, msg, discordgo.WithContext(ctx))
}

func (c *Session) Delete(ctx context.Context, channelID, messageID string) error {
	return c.s.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
}

func (c *Session) React(ctx context.Context, channelID, messageID, emoji string) error {
	return c.s.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx))
}

func (c *Session) DirectMessage(ctx context.Context, userID, content string) error {
	// Create or fetch DM channel
	channel, err := c.s.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return err
	}

	_, err = c.s.ChannelMessageSend(channel.ID, content, discordgo.WithContext(ctx))
	return err
}

// notFound maps "does not exist" and "cannot see it" REST answers to
// ErrNotFound. Other failures, including missing permissions, pass through.
func notFound(err error) error {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Response == nil {
		return err
	}
	switch restErr.Response.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusForbidden:
		if restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeMissingAccess {
			return ErrNotFound
		}
	}
	return err
}
