// Package emoji parses configured emoji specifiers and resolves them into
// component emoji for buttons.
package emoji

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Kind tags the variant held by a Spec.
type Kind int

const (
	Absent Kind = iota
	Literal
	Mention
	ID
)

// Spec is a parsed emoji specifier. Only the fields of its Kind are set.
type Spec struct {
	Kind     Kind
	Text     string // Literal
	Name     string // Mention
	ID       string // Mention, ID
	Animated bool   // Mention
}

var mentionRe = regexp.MustCompile(`^<(a?):([A-Za-z0-9_~]+):(\d+)>$`)

// Parse classifies a raw specifier. Custom emoji mentions look like
// <:name:id> or <a:name:id>; a bare number is an emoji id; anything else is
// taken as a unicode emoji.
func Parse(raw string) Spec {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Spec{Kind: Absent}
	}
	if m := mentionRe.FindStringSubmatch(s); m != nil {
		return Spec{
			Kind:     Mention,
			Animated: m[1] == "a",
			Name:     m[2],
			ID:       m[3],
		}
	}
	if _, err := strconv.ParseUint(s, 10, 64); err == nil {
		return Spec{Kind: ID, ID: s}
	}
	return Spec{Kind: Literal, Text: raw}
}

// Lookup finds a custom emoji the bot can see by id.
type Lookup func(id string) (*discordgo.Emoji, bool)

// Resolve turns a Spec into a button emoji. Absent specs resolve to nil.
// Ids the lookup does not know still resolve to a partial emoji carrying the id.
func Resolve(spec Spec, lookup Lookup) *discordgo.ComponentEmoji {
	switch spec.Kind {
	case Mention:
		return &discordgo.ComponentEmoji{Name: spec.Name, ID: spec.ID, Animated: spec.Animated}
	case Literal:
		return &discordgo.ComponentEmoji{Name: spec.Text}
	case ID:
		if lookup != nil {
			if e, ok := lookup(spec.ID); ok {
				return &discordgo.ComponentEmoji{Name: e.Name, ID: e.ID, Animated: e.Animated}
			}
		}
		return &discordgo.ComponentEmoji{ID: spec.ID}
	default:
		return nil
	}
}

// String renders the spec the way it would appear in message text.
func (s Spec) String() string {
	switch s.Kind {
	case Mention:
		prefix := ""
		if s.Animated {
			prefix = "a"
		}
		return "<" + prefix + ":" + s.Name + ":" + s.ID + ">"
	case Literal:
		return s.Text
	case ID:
		return s.ID
	default:
		return ""
	}
}
