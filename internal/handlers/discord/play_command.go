package discord

import (
	"errors"
	"strings"

	"github.com/KirkDiggler/crowdplay/internal/command"
	"github.com/KirkDiggler/crowdplay/internal/models"
	"github.com/bwmarrin/discordgo"
)

const (
	playCommandName = "play"
	playOptionInput = "input"
)

// dispatchFunc runs a parsed command and returns the reply. A reply that
// arrives too late is sent to channelID instead.
type dispatchFunc func(channelID string, cmd *models.Command) (string, error)

// PlayCommand lets players send game commands through a slash command
type PlayCommand struct {
	BaseCommand
	prefix   string
	dispatch dispatchFunc
}

// NewPlayCommand creates the /play command
func NewPlayCommand(prefix string, dispatch dispatchFunc) *PlayCommand {
	return &PlayCommand{
		BaseCommand: BaseCommand{
			Name:        playCommandName,
			Description: "Send a game command, e.g. guess 42",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        playOptionInput,
					Description: "The command and its arguments",
					Required:    true,
				},
			},
		},
		prefix:   prefix,
		dispatch: dispatch,
	}
}

// Handle routes the slash command input like a chat message
func (c *PlayCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	cmd, err := c.parse(i)
	if err != nil {
		return RespondWithEphemeralMessage(s, i, "Try something like `/play guess 42`.")
	}

	reply, err := c.dispatch(i.ChannelID, cmd)
	if err != nil {
		return RespondWithEphemeralMessage(s, i, "The game is busy right now, please try again!")
	}
	if reply == "" {
		return RespondWithEphemeralMessage(s, i, "👍")
	}

	return RespondWithMessage(s, i, reply)
}

func (c *PlayCommand) parse(i *discordgo.InteractionCreate) (*models.Command, error) {
	var input string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == playOptionInput {
			input = strings.TrimSpace(opt.StringValue())
		}
	}

	if !strings.HasPrefix(input, c.prefix) {
		input = c.prefix + input
	}

	user := interactionUser(i)
	if user == nil {
		return nil, errors.New("interaction has no user")
	}

	cmd := command.Parse(c.prefix, input, user.ID)
	if cmd == nil {
		return nil, errors.New("empty play input")
	}
	cmd.DisplayName = displayName(i.Member, user)
	return cmd, nil
}

// interactionUser is the member's user in guilds and the user in DMs
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}
