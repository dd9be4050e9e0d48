package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
	"github.com/tmek2/sflrp-bot/internal/commands"
	"github.com/tmek2/sflrp-bot/internal/metrics"
	"github.com/tmek2/sflrp-bot/internal/models"
	"github.com/tmek2/sflrp-bot/internal/moderation"
	"github.com/tmek2/sflrp-bot/internal/platform"
	"github.com/tmek2/sflrp-bot/internal/welcome"
)

const intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsDirectMessages |
	discordgo.IntentsMessageContent

const (
	EventReady         = "ready"
	EventMemberJoin    = "member_join"
	EventMessageCreate = "message_create"
)

// Outcome is the result of one handler invocation.
type Outcome struct {
	Event string
	Err   error
}

func (o Outcome) Succeeded() bool { return o.Err == nil }

// Bot wires the gateway session to the handlers.
type Bot struct {
	session *discordgo.Session
	client  platform.Client
	ctx     context.Context

	greeter *welcome.Greeter
	filter  *moderation.Filter
	router  *commands.Router
}

// New creates the session; nothing connects until Open.
func New(cfg *models.Config) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("invalid bot parameters: %w", err)
	}

	// Enable intents for message content and member events
	session.Identify.Intents = intents

	b := newBot(cfg, platform.NewSession(session))
	b.session = session
	return b, nil
}

func newBot(cfg *models.Config, client platform.Client) *Bot {
	return &Bot{
		client:  client,
		ctx:     context.Background(),
		greeter: welcome.New(cfg),
		filter:  moderation.New(cfg),
		router:  commands.New(cfg),
	}
}

// Open registers the handlers and connects. ctx is handed to every handler
// and should live as long as the session.
func (b *Bot) Open(ctx context.Context) error {
	b.ctx = ctx

	b.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		b.onReady(r)
	})
	b.session.AddHandler(func(_ *discordgo.Session, m *discordgo.GuildMemberAdd) {
		b.onMemberJoin(m)
	})
	b.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		b.onMessageCreate(m)
	})

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("cannot open Discord session: %w", err)
	}
	return nil
}

func (b *Bot) Close() error {
	if b.session == nil {
		return nil
	}
	return b.session.Close()
}

func (b *Bot) onReady(r *discordgo.Ready) Outcome {
	return run(EventReady, func() error {
		name := ""
		if r.User != nil {
			name = r.User.Username
		}
		log.Info().Str("user", name).Int("guilds", len(r.Guilds)).
			Msgf("We are ready to go in, %s", name)
		return nil
	})
}

func (b *Bot) onMemberJoin(m *discordgo.GuildMemberAdd) Outcome {
	return run(EventMemberJoin, func() error {
		return b.greeter.OnMemberJoin(b.ctx, b.client, m)
	})
}

// onMessageCreate moderates first, then runs commands. A moderation failure
// ends the invocation before any command runs.
func (b *Bot) onMessageCreate(m *discordgo.MessageCreate) Outcome {
	return run(EventMessageCreate, func() error {
		if m.Author == nil || b.isSelf(m.Author) {
			return nil
		}

		if _, err := b.filter.OnMessageCreate(b.ctx, b.client, m); err != nil {
			return err
		}
		return b.router.Handle(b.ctx, b.client, m)
	})
}

func (b *Bot) isSelf(u *discordgo.User) bool {
	me := b.client.BotUser()
	return me != nil && me.ID == u.ID
}

// run invokes fn and converts its error, or a panic, into an Outcome. Failed
// outcomes are logged; the process keeps going either way.
func run(event string, fn func() error) (out Outcome) {
	out.Event = event
	defer func() {
		if r := recover(); r != nil {
			out.Err = fmt.Errorf("panic: %v", r)
		}
		metrics.RecordEvent(event, out.Succeeded())
		if !out.Succeeded() {
			log.Error().Err(out.Err).Str("event", event).Msg("handler failed")
		}
	}()

	out.Err = fn()
	return out
}
