// Package platformtest provides an in-memory platform.Client for handler tests.
package platformtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/tmek2/sflrp-bot/internal/platform"
)

// Call records one side effect in the order it happened.
type Call struct {
	Op        string
	ChannelID string
	MessageID string
	UserID    string
	RoleID    string
	Emoji     string
	Content   string
	Message   *discordgo.MessageSend
}

// Fake is a guild-state double. Populate the maps before use; inject failures
// through the error fields.
type Fake struct {
	mu sync.Mutex

	User     *discordgo.User
	Channels map[string]*discordgo.Channel
	Guilds   map[string]*discordgo.Guild
	Emojis   map[string]*discordgo.Emoji

	// MemberRoles tracks role ids per user id.
	MemberRoles map[string]map[string]bool

	AddRoleErr map[string]error
	SendErr    error
	DeleteErr  error
	DMErr      error

	Calls []Call

	nextID int
}

var _ platform.Client = (*Fake)(nil)

func New() *Fake {
	return &Fake{
		User:        &discordgo.User{ID: "900", Username: "sflrp-bot", Bot: true},
		Channels:    make(map[string]*discordgo.Channel),
		Guilds:      make(map[string]*discordgo.Guild),
		Emojis:      make(map[string]*discordgo.Emoji),
		MemberRoles: make(map[string]map[string]bool),
		AddRoleErr:  make(map[string]error),
	}
}

// AddGuild registers a guild and its roles and members.
func (f *Fake) AddGuild(g *discordgo.Guild) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Guilds[g.ID] = g
	for _, ch := range g.Channels {
		f.Channels[ch.ID] = ch
	}
	for _, e := range g.Emojis {
		f.Emojis[e.ID] = e
	}
}

func (f *Fake) HasRole(userID, roleID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.MemberRoles[userID][roleID]
}

// Ops lists recorded operation names in order.
func (f *Fake) Ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ops := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		ops[i] = c.Op
	}
	return ops
}

// CallsOf returns the recorded calls with the given op.
func (f *Fake) CallsOf(op string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (f *Fake) record(c Call) {
	f.Calls = append(f.Calls, c)
}

func (f *Fake) BotUser() *discordgo.User { return f.User }

func (f *Fake) Channel(_ context.Context, channelID string) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.Channels[channelID]
	if !ok {
		return nil, platform.ErrNotFound
	}
	return ch, nil
}

func (f *Fake) Guild(_ context.Context, guildID string) (*discordgo.Guild, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.Guilds[guildID]
	if !ok {
		return nil, platform.ErrNotFound
	}
	return g, nil
}

func (f *Fake) GuildRoles(_ context.Context, guildID string) ([]*discordgo.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.Guilds[guildID]
	if !ok {
		return nil, platform.ErrNotFound
	}
	return g.Roles, nil
}

// GuildMembers pages by position: after is the user id of the last member of
// the previous page.
func (f *Fake) GuildMembers(_ context.Context, guildID, after string, limit int) ([]*discordgo.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.Guilds[guildID]
	if !ok {
		return nil, platform.ErrNotFound
	}

	start := 0
	if after != "" {
		for i, m := range g.Members {
			if m.User.ID == after {
				start = i + 1
				break
			}
		}
	}
	end := start + limit
	if end > len(g.Members) {
		end = len(g.Members)
	}
	f.record(Call{Op: "members", Content: after})
	return g.Members[start:end], nil
}

func (f *Fake) Emoji(emojiID string) (*discordgo.Emoji, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.Emojis[emojiID]
	return e, ok
}

func (f *Fake) AddRole(_ context.Context, guildID, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Op: "role_add", UserID: userID, RoleID: roleID})
	if err := f.AddRoleErr[roleID]; err != nil {
		return err
	}
	if f.MemberRoles[userID] == nil {
		f.MemberRoles[userID] = make(map[string]bool)
	}
	f.MemberRoles[userID][roleID] = true
	return nil
}

func (f *Fake) RemoveRole(_ context.Context, guildID, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Op: "role_remove", UserID: userID, RoleID: roleID})
	delete(f.MemberRoles[userID], roleID)
	return nil
}

func (f *Fake) Send(_ context.Context, channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Op: "send", ChannelID: channelID, Content: msg.Content, Message: msg})
	if f.SendErr != nil {
		return nil, f.SendErr
	}
	f.nextID++
	return &discordgo.Message{
		ID:        fmt.Sprintf("m%d", f.nextID),
		ChannelID: channelID,
		Content:   msg.Content,
		Embeds:    msg.Embeds,
	}, nil
}

func (f *Fake) Delete(_ context.Context, channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Op: "delete", ChannelID: channelID, MessageID: messageID})
	return f.DeleteErr
}

func (f *Fake) React(_ context.Context, channelID, messageID, emoji string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Op: "react", ChannelID: channelID, MessageID: messageID, Emoji: emoji})
	return nil
}

func (f *Fake) DirectMessage(_ context.Context, userID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Op: "dm", UserID: userID, Content: content})
	return f.DMErr
}
