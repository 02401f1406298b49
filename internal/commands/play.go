package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"loopbox/internal/command"
	"loopbox/internal/storage"
)

type playCommand struct{}

func (c *playCommand) Name() string        { return "play" }
func (c *playCommand) Description() string { return "Plays a random track on loop in your voice channel." }
func (c *playCommand) Aliases() []string   { return []string{"testplay"} }

func (c *playCommand) Run(ctx *command.Context) error {
	channelID, err := findUserVoiceChannel(ctx)
	if err != nil {
		return ctx.ReplyError("Join a voice channel first, then ask again.")
	}

	entry, ok := ctx.Deps.Catalog.PickRandom()
	if !ok {
		return ctx.ReplyError("No audio files available.")
	}
	if _, err := os.Stat(entry.Path); err != nil {
		log.Printf("[WARN] Guild %s: media file %s is unreadable: %v", ctx.Event.GuildID, entry.Path, err)
		return ctx.ReplyError(fmt.Sprintf("Track `%s` is currently unavailable.", entry.DisplayName))
	}

	if _, err := ctx.Deps.Sessions.Start(context.Background(), ctx.Event.GuildID, channelID, entry, true, nil); err != nil {
		log.Printf("[ERR] Guild %s: starting playback: %v", ctx.Event.GuildID, err)
		return ctx.ReplyError("Could not start playback. Try again in a moment.")
	}

	recordTrackPlayed(ctx, entry.DisplayName)
	return ctx.Reply(fmt.Sprintf("▶️ Now looping `%s`.", entry.DisplayName))
}

func recordTrackPlayed(ctx *command.Context, trackName string) {
	if ctx.Deps.Storage == nil {
		return
	}
	userID, username := "", ""
	if ctx.Event.Author != nil {
		userID = ctx.Event.Author.ID
		username = ctx.Event.Author.Username
	}
	err := ctx.Deps.Storage.AppendTrackToHistory(ctx.Event.GuildID, storage.TrackHistoryRecord{
		TrackName: trackName,
		UserID:    userID,
		Username:  username,
		PlayedAt:  time.Now().Unix(),
	})
	if err != nil {
		log.Printf("[WARN] Guild %s: recording track history: %v", ctx.Event.GuildID, err)
	}
}
