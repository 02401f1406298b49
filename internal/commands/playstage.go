package commands

import (
	"context"
	"fmt"
	"log"
	"os"

	"loopbox/internal/command"
)

type playStageCommand struct{}

func (c *playStageCommand) Name() string { return "play-stage" }
func (c *playStageCommand) Description() string {
	return "Plays a random track on loop in an auto-provisioned stage channel."
}
func (c *playStageCommand) Aliases() []string { return nil }

func (c *playStageCommand) Run(ctx *command.Context) error {
	entry, ok := ctx.Deps.Catalog.PickRandom()
	if !ok {
		return ctx.ReplyError("No audio files available.")
	}
	if _, err := os.Stat(entry.Path); err != nil {
		log.Printf("[WARN] Guild %s: media file %s is unreadable: %v", ctx.Event.GuildID, entry.Path, err)
		return ctx.ReplyError(fmt.Sprintf("Track `%s` is currently unavailable.", entry.DisplayName))
	}

	channel, err := ctx.Deps.Provisioner.Ensure(context.Background(), ctx.Event.GuildID, true)
	if err != nil {
		log.Printf("[ERR] Guild %s: provisioning stage channel: %v", ctx.Event.GuildID, err)
		return ctx.ReplyError("Could not set up a stage channel.")
	}

	if _, err := ctx.Deps.Sessions.Start(context.Background(), ctx.Event.GuildID, channel.ID, entry, true, channel); err != nil {
		channel.Release()
		log.Printf("[ERR] Guild %s: starting stage playback: %v", ctx.Event.GuildID, err)
		return ctx.ReplyError("Could not start playback. Try again in a moment.")
	}

	recordTrackPlayed(ctx, entry.DisplayName)
	return ctx.Reply(fmt.Sprintf("🎙️ Now looping `%s` on stage.", entry.DisplayName))
}
