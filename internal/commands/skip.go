package commands

import (
	"errors"
	"fmt"
	"log"
	"os"

	"loopbox/internal/command"
	"loopbox/internal/session"
)

type skipCommand struct{}

func (c *skipCommand) Name() string        { return "skip" }
func (c *skipCommand) Description() string { return "Swaps the current track for another random one." }
func (c *skipCommand) Aliases() []string   { return nil }

func (c *skipCommand) Run(ctx *command.Context) error {
	if _, ok := ctx.Deps.Sessions.Get(ctx.Event.GuildID); !ok {
		return ctx.Reply("Nothing is playing right now.")
	}

	entry, ok := ctx.Deps.Catalog.PickRandom()
	if !ok {
		return ctx.ReplyError("No audio files available.")
	}
	if _, err := os.Stat(entry.Path); err != nil {
		log.Printf("[WARN] Guild %s: media file %s is unreadable: %v", ctx.Event.GuildID, entry.Path, err)
		return ctx.ReplyError(fmt.Sprintf("Track `%s` is currently unavailable.", entry.DisplayName))
	}

	err := ctx.Deps.Sessions.Skip(ctx.Event.GuildID, entry)
	if errors.Is(err, session.ErrNothingPlaying) {
		return ctx.Reply("Nothing is playing right now.")
	}
	if err != nil {
		log.Printf("[ERR] Guild %s: skipping track: %v", ctx.Event.GuildID, err)
		return ctx.ReplyError("Could not skip the current track.")
	}

	recordTrackPlayed(ctx, entry.DisplayName)
	return ctx.Reply(fmt.Sprintf("⏭️ Switched to `%s`.", entry.DisplayName))
}
