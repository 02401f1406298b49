package commands

import (
	"errors"
	"fmt"
	"log"

	"loopbox/internal/command"
	"loopbox/internal/session"
)

type stopCommand struct{}

func (c *stopCommand) Name() string        { return "stop" }
func (c *stopCommand) Description() string { return "Stops playback and leaves the voice channel." }
func (c *stopCommand) Aliases() []string   { return nil }

func (c *stopCommand) Run(ctx *command.Context) error {
	track, err := ctx.Deps.Sessions.Stop(ctx.Event.GuildID)
	if errors.Is(err, session.ErrNothingPlaying) {
		return ctx.Reply("Nothing is playing right now.")
	}
	if err != nil {
		log.Printf("[ERR] Guild %s: stopping playback: %v", ctx.Event.GuildID, err)
		return ctx.ReplyError("Could not stop playback cleanly.")
	}
	return ctx.Reply(fmt.Sprintf("⏹️ Stopped `%s`.", track.DisplayName))
}
