// Package commands implements the prefix chat commands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
	"github.com/tmek2/sflrp-bot/internal/metrics"
	"github.com/tmek2/sflrp-bot/internal/models"
	"github.com/tmek2/sflrp-bot/internal/platform"
)

var (
	ErrMissingArgument = errors.New("missing required argument")
	ErrNoGuild         = errors.New("command only works in a server")
)

// Context is what a command sees of its invocation.
type Context struct {
	context.Context
	Client  platform.Client
	Message *discordgo.MessageCreate
	// Args is everything after the command name, trimmed.
	Args string
}

func (c *Context) Author() *discordgo.User {
	return c.Message.Author
}

// Send posts plain text to the invoking channel.
func (c *Context) Send(content string) (*discordgo.Message, error) {
	return c.Client.Send(c, c.Message.ChannelID, &discordgo.MessageSend{Content: content})
}

type HandlerFunc func(c *Context) error

// Router dispatches messages that start with the prefix to named commands.
type Router struct {
	prefix   string
	handlers map[string]HandlerFunc
}

// New returns a router with the bot's command set registered.
func New(cfg *models.Config) *Router {
	r := NewRouter(cfg.CommandPrefix)
	r.Register("hello", hello)
	r.Register("assign", assignRole(cfg.SecretRoleName))
	r.Register("remove", removeRole(cfg.SecretRoleName))
	r.Register("dm", dm)
	r.Register("reply", reply)
	r.Register("poll", poll)
	return r
}

func NewRouter(prefix string) *Router {
	return &Router{prefix: prefix, handlers: make(map[string]HandlerFunc)}
}

func (r *Router) Register(name string, h HandlerFunc) {
	r.handlers[name] = h
}

// Handle runs the command named in m, if any. Messages from bot accounts and
// unknown commands are ignored.
func (r *Router) Handle(ctx context.Context, c platform.Client, m *discordgo.MessageCreate) error {
	if m.Author == nil || m.Author.Bot {
		return nil
	}

	name, args, ok := Parse(r.prefix, m.Content)
	if !ok {
		return nil
	}
	h, found := r.handlers[name]
	if !found {
		log.Debug().Str("command", name).Str("user", m.Author.ID).Msg("unknown command")
		return nil
	}

	err := h(&Context{Context: ctx, Client: c, Message: m, Args: args})
	metrics.RecordCommand(name, err == nil)
	if err != nil {
		return fmt.Errorf("command %s: %w", name, err)
	}
	log.Debug().Str("command", name).Str("user", m.Author.ID).Msg("command ran")
	return nil
}

// Parse splits "<prefix>name rest of text" into name and trimmed rest. The
// name must follow the prefix directly.
func Parse(prefix, content string) (name, args string, ok bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", "", false
	}
	rest := content[len(prefix):]
	if rest == "" || unicode.IsSpace([]rune(rest)[0]) {
		return "", "", false
	}

	end := strings.IndexFunc(rest, unicode.IsSpace)
	if end < 0 {
		return rest, "", true
	}
	return rest[:end], strings.TrimSpace(rest[end:]), true
}
