package welcome

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/tmek2/sflrp-bot/internal/models"
	"github.com/tmek2/sflrp-bot/internal/platform/platformtest"
)

const (
	guildID   = "100"
	channelID = "200"
	role1     = "301"
	role2     = "302"
)

func testConfig() *models.Config {
	return &models.Config{
		WelcomeChannelID: channelID,
		AutoRoleIDs:      []string{role1, role2},
		WelcomeTemplate:  "Hello {mention}, welcome!",
		CounterEmoji:     "<:peoples12:1416376261290491904>",
		LinkEmoji:        "📘",
		LinkLabel:        "Information",
		LinkURL:          "https://discord.com/channels/1/2",
		CountHumansOnly:  true,
	}
}

func members(humans, bots int) []*discordgo.Member {
	out := make([]*discordgo.Member, 0, humans+bots)
	for i := 0; i < humans+bots; i++ {
		out = append(out, &discordgo.Member{
			User: &discordgo.User{ID: fmt.Sprintf("u%d", i), Bot: i >= humans},
		})
	}
	return out
}

func newFake(humans, bots int) *platformtest.Fake {
	f := platformtest.New()
	f.AddGuild(&discordgo.Guild{
		ID:          guildID,
		MemberCount: humans + bots,
		Members:     members(humans, bots),
		Channels:    []*discordgo.Channel{{ID: channelID, GuildID: guildID}},
		Roles:       []*discordgo.Role{{ID: role1, Name: "Civilian"}, {ID: role2, Name: "Member"}},
	})
	return f
}

func joinEvent(userID string) *discordgo.GuildMemberAdd {
	return &discordgo.GuildMemberAdd{Member: &discordgo.Member{
		GuildID: guildID,
		User:    &discordgo.User{ID: userID},
	}}
}

func counterButton(t *testing.T, components []discordgo.MessageComponent) discordgo.Button {
	t.Helper()
	row, ok := components[0].(discordgo.ActionsRow)
	if !ok || len(row.Components) != 2 {
		t.Fatalf("unexpected components: %#v", components)
	}
	return row.Components[0].(discordgo.Button)
}

func TestCounterLabel(t *testing.T) {
	cases := []struct{ total, bots int }{
		{0, 0}, {1, 0}, {5, 5}, {10, 3}, {1000, 1}, {2500, 40},
	}
	for _, humansOnly := range []bool{true, false} {
		for _, tc := range cases {
			f := newFake(tc.total-tc.bots, tc.bots)
			cfg := testConfig()
			cfg.CountHumansOnly = humansOnly

			components, err := New(cfg).BuildView(context.Background(), f, guildID)
			if err != nil {
				t.Fatalf("build view: %v", err)
			}

			want := tc.total
			if humansOnly {
				want = tc.total - tc.bots
			}
			if got := counterButton(t, components).Label; got != fmt.Sprint(want) {
				t.Fatalf("humansOnly=%v total=%d bots=%d: label %q, want %d", humansOnly, tc.total, tc.bots, got, want)
			}
		}
	}
}

func TestBuildViewButtons(t *testing.T) {
	f := newFake(3, 1)
	components, err := New(testConfig()).BuildView(context.Background(), f, guildID)
	if err != nil {
		t.Fatalf("build view: %v", err)
	}
	row := components[0].(discordgo.ActionsRow)

	counter := row.Components[0].(discordgo.Button)
	if !counter.Disabled || counter.Style != discordgo.SecondaryButton {
		t.Fatalf("counter should be a disabled secondary button: %+v", counter)
	}
	if counter.Emoji == nil || counter.Emoji.Name != "peoples12" || counter.Emoji.ID != "1416376261290491904" {
		t.Fatalf("unexpected counter emoji: %+v", counter.Emoji)
	}

	link := row.Components[1].(discordgo.Button)
	if link.Style != discordgo.LinkButton || link.URL != "https://discord.com/channels/1/2" || link.Label != "Information" {
		t.Fatalf("unexpected link button: %+v", link)
	}
	if link.Emoji == nil || link.Emoji.Name != "📘" {
		t.Fatalf("unexpected link emoji: %+v", link.Emoji)
	}
}

func TestOnMemberJoinGrantsRolesAndWelcomes(t *testing.T) {
	f := newFake(2, 0)
	if err := New(testConfig()).OnMemberJoin(context.Background(), f, joinEvent("42")); err != nil {
		t.Fatalf("member join: %v", err)
	}

	if !f.HasRole("42", role1) || !f.HasRole("42", role2) {
		t.Fatalf("expected both auto roles granted, calls=%v", f.Ops())
	}
	sends := f.CallsOf("send")
	if len(sends) != 1 {
		t.Fatalf("expected one welcome message, got %d", len(sends))
	}
	if sends[0].ChannelID != channelID || sends[0].Content != "Hello <@42>, welcome!" {
		t.Fatalf("unexpected welcome: %+v", sends[0])
	}
	if len(sends[0].Message.Components) != 1 {
		t.Fatalf("expected welcome view attached")
	}
}

func TestOnMemberJoinRoleFailureIsolated(t *testing.T) {
	for _, failing := range []string{role1, role2} {
		f := newFake(2, 0)
		f.AddRoleErr[failing] = errors.New("missing permissions")

		if err := New(testConfig()).OnMemberJoin(context.Background(), f, joinEvent("42")); err != nil {
			t.Fatalf("member join should not fail on role error: %v", err)
		}

		if got := len(f.CallsOf("role_add")); got != 2 {
			t.Fatalf("failing=%s: expected two grant attempts, got %d", failing, got)
		}
		other := role2
		if failing == role2 {
			other = role1
		}
		if !f.HasRole("42", other) {
			t.Fatalf("failing=%s: expected %s still granted", failing, other)
		}
		if len(f.CallsOf("send")) != 1 {
			t.Fatalf("failing=%s: expected welcome still sent", failing)
		}
	}
}

func TestOnMemberJoinMissingChannel(t *testing.T) {
	f := newFake(1, 0)
	cfg := testConfig()
	cfg.WelcomeChannelID = "999"

	if err := New(cfg).OnMemberJoin(context.Background(), f, joinEvent("42")); err != nil {
		t.Fatalf("missing channel should not be an error: %v", err)
	}
	if len(f.Calls) != 0 {
		t.Fatalf("expected no side effects, got %v", f.Ops())
	}
}

func TestOnMemberJoinChannelInOtherGuild(t *testing.T) {
	f := newFake(1, 0)
	f.Channels[channelID] = &discordgo.Channel{ID: channelID, GuildID: "other"}

	if err := New(testConfig()).OnMemberJoin(context.Background(), f, joinEvent("42")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.CallsOf("send")) != 0 {
		t.Fatalf("expected no welcome in a foreign channel")
	}
}

func TestOnMemberJoinSkipsUnknownAndHeldRoles(t *testing.T) {
	f := newFake(1, 0)
	cfg := testConfig()
	cfg.AutoRoleIDs = []string{role1, role2, "404"}

	ev := joinEvent("42")
	ev.Roles = []string{role1}

	if err := New(cfg).OnMemberJoin(context.Background(), f, ev); err != nil {
		t.Fatalf("member join: %v", err)
	}
	grants := f.CallsOf("role_add")
	if len(grants) != 1 || grants[0].RoleID != role2 {
		t.Fatalf("expected only %s granted, got %+v", role2, grants)
	}
}

func TestOnMemberJoinSendFailureSurfaces(t *testing.T) {
	f := newFake(1, 0)
	f.SendErr = errors.New("rate limited")

	err := New(testConfig()).OnMemberJoin(context.Background(), f, joinEvent("42"))
	if err == nil || !strings.Contains(err.Error(), "send welcome") {
		t.Fatalf("expected send error, got %v", err)
	}
}
