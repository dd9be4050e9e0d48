package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// assignRole and removeRole are self-service: any member may toggle the role
// on themselves. There is no permission check beyond the role existing.
func assignRole(roleName string) HandlerFunc {
	return func(c *Context) error {
		role, err := lookupRole(c, roleName)
		if err != nil || role == nil {
			return err
		}

		if err := c.Client.AddRole(c, c.Message.GuildID, c.Author().ID, role.ID); err != nil {
			return fmt.Errorf("add role %s: %w", role.ID, err)
		}
		log.Info().Str("user", c.Author().ID).Str("role", role.ID).Msg("self-assigned role")

		_, err = c.Send(fmt.Sprintf("%s is now assigned to %s", c.Author().Mention(), roleName))
		return err
	}
}

func removeRole(roleName string) HandlerFunc {
	return func(c *Context) error {
		role, err := lookupRole(c, roleName)
		if err != nil || role == nil {
			return err
		}

		if err := c.Client.RemoveRole(c, c.Message.GuildID, c.Author().ID, role.ID); err != nil {
			return fmt.Errorf("remove role %s: %w", role.ID, err)
		}
		log.Info().Str("user", c.Author().ID).Str("role", role.ID).Msg("self-removed role")

		_, err = c.Send(fmt.Sprintf("%s has had the %s removed", c.Author().Mention(), roleName))
		return err
	}
}

// lookupRole finds the role by name in the invoking guild. When it does not
// exist the user is told so and a nil role with nil error is returned.
func lookupRole(c *Context, name string) (*discordgo.Role, error) {
	if c.Message.GuildID == "" {
		return nil, ErrNoGuild
	}

	roles, err := c.Client.GuildRoles(c, c.Message.GuildID)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	for _, r := range roles {
		if r.Name == name {
			return r, nil
		}
	}

	_, err = c.Send("Role doesn't exist")
	return nil, err
}
