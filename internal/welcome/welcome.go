package welcome

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
	"github.com/tmek2/sflrp-bot/internal/emoji"
	"github.com/tmek2/sflrp-bot/internal/models"
	"github.com/tmek2/sflrp-bot/internal/platform"
)

const (
	memberPageSize = 1000
	counterID      = "welcome_member_count"
)

// ErrChannelNotFound means the configured welcome channel is not in the guild.
var ErrChannelNotFound = errors.New("welcome channel not found")

// Greeter handles new members: auto roles, then the welcome message.
type Greeter struct {
	cfg     *models.Config
	counter emoji.Spec
	link    emoji.Spec
}

func New(cfg *models.Config) *Greeter {
	return &Greeter{
		cfg:     cfg,
		counter: emoji.Parse(cfg.CounterEmoji),
		link:    emoji.Parse(cfg.LinkEmoji),
	}
}

// OnMemberJoin grants the auto roles and posts the welcome message. A missing
// welcome channel stops the handler without error; a failed role grant is
// logged and the remaining grants and the message still go out.
func (g *Greeter) OnMemberJoin(ctx context.Context, c platform.Client, m *discordgo.GuildMemberAdd) error {
	if m.Member == nil || m.User == nil {
		return nil
	}

	channel, err := g.welcomeChannel(ctx, c, m.GuildID)
	if err != nil {
		if errors.Is(err, ErrChannelNotFound) {
			log.Warn().
				Str("guild", m.GuildID).
				Str("channel", g.cfg.WelcomeChannelID).
				Msg("welcome channel not found, check WELCOME_CHANNEL_ID")
			return nil
		}
		return err
	}

	g.assignRoles(ctx, c, m.Member, m.GuildID)

	components, err := g.BuildView(ctx, c, m.GuildID)
	if err != nil {
		return fmt.Errorf("build welcome view: %w", err)
	}

	_, err = c.Send(ctx, channel.ID, &discordgo.MessageSend{
		Content:    g.Message(m.User),
		Components: components,
	})
	if err != nil {
		return fmt.Errorf("send welcome: %w", err)
	}

	log.Info().Str("guild", m.GuildID).Str("user", m.User.ID).Msg("welcomed new member")
	return nil
}

// Message renders the welcome template for a user.
func (g *Greeter) Message(u *discordgo.User) string {
	return strings.ReplaceAll(g.cfg.WelcomeTemplate, "{mention}", u.Mention())
}

func (g *Greeter) welcomeChannel(ctx context.Context, c platform.Client, guildID string) (*discordgo.Channel, error) {
	ch, err := c.Channel(ctx, g.cfg.WelcomeChannelID)
	if errors.Is(err, platform.ErrNotFound) {
		return nil, ErrChannelNotFound
	}
	if err != nil {
		return nil, err
	}
	if ch.GuildID != guildID {
		return nil, ErrChannelNotFound
	}
	return ch, nil
}

func (g *Greeter) assignRoles(ctx context.Context, c platform.Client, member *discordgo.Member, guildID string) {
	roles, err := c.GuildRoles(ctx, guildID)
	if err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("could not list guild roles, trying grants anyway")
		roles = nil
	}

	for _, roleID := range g.cfg.AutoRoleIDs {
		if hasRole(member, roleID) {
			continue
		}
		if roles != nil && findRole(roles, roleID) == nil {
			log.Warn().Str("guild", guildID).Str("role", roleID).Msg("auto role not found in guild")
			continue
		}

		if err := c.AddRole(ctx, guildID, member.User.ID, roleID); err != nil {
			log.Warn().Err(err).
				Str("guild", guildID).
				Str("user", member.User.ID).
				Str("role", roleID).
				Msg("could not assign role")
			continue
		}
		log.Info().Str("user", member.User.ID).Str("role", roleID).Msg("assigned role to new member")
	}
}

// BuildView returns the welcome components: a disabled member counter and a
// link button.
func (g *Greeter) BuildView(ctx context.Context, c platform.Client, guildID string) ([]discordgo.MessageComponent, error) {
	count, err := CountMembers(ctx, c, guildID, g.cfg.CountHumansOnly)
	if err != nil {
		return nil, err
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    strconv.Itoa(count),
					Style:    discordgo.SecondaryButton,
					Disabled: true,
					CustomID: counterID,
					Emoji:    emoji.Resolve(g.counter, c.Emoji),
				},
				discordgo.Button{
					Label: g.cfg.LinkLabel,
					Style: discordgo.LinkButton,
					URL:   g.cfg.LinkURL,
					Emoji: emoji.Resolve(g.link, c.Emoji),
				},
			},
		},
	}, nil
}

// CountMembers returns the guild's member count, excluding bots when
// humansOnly is set. The human count walks the full member list.
func CountMembers(ctx context.Context, c platform.Client, guildID string, humansOnly bool) (int, error) {
	if !humansOnly {
		guild, err := c.Guild(ctx, guildID)
		if err != nil {
			return 0, fmt.Errorf("guild %s: %w", guildID, err)
		}
		if guild.MemberCount > 0 {
			return guild.MemberCount, nil
		}
		return len(guild.Members), nil
	}

	count := 0
	after := ""
	for {
		batch, err := c.GuildMembers(ctx, guildID, after, memberPageSize)
		if err != nil {
			return 0, fmt.Errorf("list members: %w", err)
		}
		for _, member := range batch {
			if member.User != nil && !member.User.Bot {
				count++
			}
		}
		if len(batch) < memberPageSize {
			break
		}
		after = batch[len(batch)-1].User.ID
	}
	return count, nil
}

// hasRole checks if a member already has a specific role
func hasRole(member *discordgo.Member, roleID string) bool {
	return slices.Contains(member.Roles, roleID)
}

func findRole(roles []*discordgo.Role, roleID string) *discordgo.Role {
	for _, r := range roles {
		if r.ID == roleID {
			return r
		}
	}
	return nil
}
