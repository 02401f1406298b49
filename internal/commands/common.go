// Package commands implements the bot's chat commands.
package commands

import (
	"fmt"

	"loopbox/internal/command"
)

// findUserVoiceChannel returns the channel the invoking user currently
// occupies in the guild.
func findUserVoiceChannel(ctx *command.Context) (string, error) {
	guild, err := ctx.Session.State.Guild(ctx.Event.GuildID)
	if err != nil {
		return "", fmt.Errorf("retrieving guild: %w", err)
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID == ctx.Event.Author.ID {
			return vs.ChannelID, nil
		}
	}
	return "", fmt.Errorf("user is not in any voice channel")
}

// All returns the full command set in registration order.
func All() []command.Command {
	return []command.Command{
		&pingCommand{},
		&playCommand{},
		&playStageCommand{},
		&stopCommand{},
		&skipCommand{},
		&listCommand{},
		&reloadCommand{},
		&helpCommand{},
		&aboutCommand{},
	}
}
