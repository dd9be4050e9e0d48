package moderation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
	"github.com/tmek2/sflrp-bot/internal/metrics"
	"github.com/tmek2/sflrp-bot/internal/models"
	"github.com/tmek2/sflrp-bot/internal/platform"
)

// Filter deletes messages containing the banned phrase and warns the author.
type Filter struct {
	phrase    string
	logChanID string
}

func New(cfg *models.Config) *Filter {
	return &Filter{
		phrase:    strings.ToLower(cfg.BannedPhrase),
		logChanID: cfg.ModLogChannelID,
	}
}

// Matches reports whether content contains the banned phrase, ignoring case.
func (f *Filter) Matches(content string) bool {
	return strings.Contains(strings.ToLower(content), f.phrase)
}

// OnMessageCreate returns true when the message was removed.
func (f *Filter) OnMessageCreate(ctx context.Context, c platform.Client, m *discordgo.MessageCreate) (bool, error) {
	if m.Author == nil || !f.Matches(m.Content) {
		return false, nil
	}

	if err := c.Delete(ctx, m.ChannelID, m.ID); err != nil {
		return false, fmt.Errorf("delete message: %w", err)
	}
	metrics.RecordModerationDeletion()

	_, err := c.Send(ctx, m.ChannelID, &discordgo.MessageSend{
		Content: fmt.Sprintf("%s - don't use naughty language!", m.Author.Mention()),
	})
	if err != nil {
		return true, fmt.Errorf("send warning: %w", err)
	}

	log.Info().
		Str("guild", m.GuildID).
		Str("channel", m.ChannelID).
		Str("user", m.Author.ID).
		Msg("removed message with banned phrase")

	f.report(ctx, c, m)
	return true, nil
}

// report posts the removed message to the moderation log channel, if one is
// configured. Failures are only logged.
func (f *Filter) report(ctx context.Context, c platform.Client, m *discordgo.MessageCreate) {
	if f.logChanID == "" {
		return
	}

	clickableLink := "Unknown"
	if m.GuildID != "" {
		messageLink := fmt.Sprintf("https://discord.com/channels/%s/%s/%s", m.GuildID, m.ChannelID, m.ID)
		clickableLink = fmt.Sprintf("[<#%s>](%s)", m.ChannelID, messageLink)
	}

	embed := &discordgo.MessageEmbed{
		Title: "Message Deleted",
		Color: 0xff0000,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Channel", Value: clickableLink, Inline: true},
			{Name: "Author", Value: fmt.Sprintf("%s (%s)", m.Author.Mention(), m.Author.Username), Inline: true},
			{Name: "Content", Value: truncate(m.Content, 1024), Inline: false},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	if _, err := c.Send(ctx, f.logChanID, &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{embed}}); err != nil {
		log.Warn().Err(err).Str("channel", f.logChanID).Msg("could not post to moderation log")
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
